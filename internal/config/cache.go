package config

import (
	"strings"
	"time"
)

// CacheConfig tunes the Redis response cache in front of admin reports.
type CacheConfig struct {
	Enabled      bool          `env:"CACHE_ENABLED, default=true"`
	Methods      []string      `env:"CACHE_METHODS, default=GET"`
	TTL          time.Duration `env:"CACHE_TTL, default=30s"`
	KeyStrategy  string        `env:"CACHE_KEY_STRATEGY, default=route_query"`
	Prefix       string        `env:"CACHE_PREFIX, default=cache"`
	MaxBodyBytes int           `env:"CACHE_MAX_BODY_BYTES, default=1048576"`
}

// Caches reports whether responses to method are cached.
func (c CacheConfig) Caches(method string) bool {
	for _, m := range c.Methods {
		if strings.EqualFold(strings.TrimSpace(m), method) {
			return true
		}
	}
	return false
}
