package config

import "fmt"

// RedisConfig locates a shared Redis instance.
type RedisConfig struct {
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`
	Prefix   string `json:"prefix"`
}

// CacheConfig tunes the explanation cache.
type CacheConfig struct {
	// Backend selects the cache type: "memory" or "redis".
	Backend    string      `json:"backend"`
	TTLSeconds int         `json:"ttl_seconds"`
	Redis      RedisConfig `json:"redis"`
}

// SetDefaults applies sane defaults.
func (c *CacheConfig) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "memory"
	}
	if c.TTLSeconds <= 0 {
		c.TTLSeconds = 300
	}
}

// Validate checks mandatory fields.
func (c CacheConfig) Validate() error {
	switch c.Backend {
	case "memory":
	case "redis":
		if c.Redis.Addr == "" {
			return fmt.Errorf("cache: redis addr is required")
		}
	default:
		return fmt.Errorf("cache: unknown backend %s", c.Backend)
	}
	return nil
}
