package utils

import (
	"net/url"
	"strings"
)

// IsAllowedCDNURL reports whether raw is a URL served from the configured
// CDN: the host must equal hostname and the path must start with
// /<accountID>/. Anything that fails to parse is rejected.
func IsAllowedCDNURL(raw, hostname, accountID string) bool {
	if hostname == "" || accountID == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Host != hostname {
		return false
	}
	return strings.HasPrefix(u.Path, "/"+accountID+"/")
}
