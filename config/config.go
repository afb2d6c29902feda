package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// LoadEnv loads environment variables from a .env file when one exists.
// Missing files are not fatal: deployment environments set variables
// directly.
func LoadEnv() error {
	possiblePaths := []string{
		".env",
		"../.env",
		os.Getenv("CABLENET_ENV"),
	}

	for _, path := range possiblePaths {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err == nil {
			log.Printf("Loading environment variables from %s", path)
			return godotenv.Load(path)
		}
	}

	return nil
}

func Port() string {
	return getEnvWithDefault("PORT", "8080")
}

func MongoURI() string {
	return getEnvWithDefault("MONGO_URI", "mongodb://localhost:27017")
}

func MongoDBName() string {
	return getEnvWithDefault("MONGO_DB_NAME", "cablenet")
}

// JWTSecret returns the HMAC signing key for bearer tokens. The fallback
// is for local development only and is logged loudly when used.
func JWTSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Printf("Warning: JWT_SECRET not set, using insecure development default")
		secret = "cablenet-dev-secret"
	}
	return []byte(secret)
}

// CDNHostname is the only host accepted for location image URLs.
func CDNHostname() string {
	return getEnvWithDefault("CDN_HOSTNAME", "res.cloudinary.com")
}

// CDNAccountID is the account path prefix required on image URLs. With no
// account configured every image URL is rejected.
func CDNAccountID() string {
	return os.Getenv("CDN_ACCOUNT_ID")
}

func AllowedOrigins() []string {
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		parts := strings.Split(v, ",")
		origins := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				origins = append(origins, p)
			}
		}
		return origins
	}
	return []string{
		"http://localhost:3000",
		"http://localhost:5173",
		"http://localhost:8080",
		"http://127.0.0.1:3000",
	}
}

// Helper functions
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
