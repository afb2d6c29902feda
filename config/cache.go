package config

import (
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
)

var (
	// StatsCache holds dashboard aggregation results so repeated polls
	// do not hit three CountDocuments calls each time.
	StatsCache *cache.Cache
)

const (
	statsCacheDuration   = 1 * time.Minute
	statsCleanupInterval = 5 * time.Minute
)

func InitCache() {
	StatsCache = cache.New(statsCacheDuration, statsCleanupInterval)
}

func ClearAllCaches() {
	StatsCache.Flush()
}

func GetCacheKey(prefix string, params ...interface{}) string {
	key := prefix
	for _, param := range params {
		key += ":" + fmt.Sprintf("%v", param)
	}
	return key
}
