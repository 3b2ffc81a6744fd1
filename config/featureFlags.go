package config

import (
	"os"
	"strings"
	"time"
)

// StrictPurchaseEditing blocks edit sessions for purchases that are already
// completed or cancelled; they must be recreated instead.
//
// Set via env:
// - STRICT_PURCHASE_EDITING=true
func StrictPurchaseEditing() bool {
	return BoolFromEnv("STRICT_PURCHASE_EDITING")
}

// PurchaseSessionTTL is how long an idle composition session is kept.
//
// Set via env:
// - PURCHASE_SESSION_TTL_MINUTES (default 120)
func PurchaseSessionTTL() time.Duration {
	minutes := IntFromEnv("PURCHASE_SESSION_TTL_MINUTES", 120)
	if minutes <= 0 {
		minutes = 120
	}
	return time.Duration(minutes) * time.Minute
}

// CacheLifespan bounds how long catalog entries live in redis.
//
// Set via env:
// - CACHE_LIFESPAN_MINUTES (default 60)
func CacheLifespan() time.Duration {
	minutes := IntFromEnv("CACHE_LIFESPAN_MINUTES", 60)
	if minutes <= 0 {
		return time.Hour
	}
	return time.Duration(minutes) * time.Minute
}

// SkipMigrations disables AutoMigrate on startup.
func SkipMigrations() bool {
	return BoolFromEnv("SKIP_MIGRATIONS")
}

// AllowedOrigins is the CORS allow-list from CORS_ALLOWED_ORIGINS (comma separated).
func AllowedOrigins() []string {
	raw := os.Getenv("CORS_ALLOWED_ORIGINS")
	var origins []string
	for _, part := range strings.Split(raw, ",") {
		if o := strings.TrimSpace(part); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{"http://localhost:3000"}
	}
	return origins
}
