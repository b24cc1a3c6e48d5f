package cache

import "time"

// Config holds configuration for the Redis mapping cache.
type Config struct {
	// Addr is host:port of the Redis server. Empty disables the cache.
	Addr string `mapstructure:"addr" default:""`
	// Password is the Redis AUTH password.
	Password string `mapstructure:"password" default:""`
	// DB is the Redis database index.
	DB int `mapstructure:"db" default:"0"`
	// TTLSeconds is how long a cached mapping lives. Zero keeps entries until overwritten.
	TTLSeconds int `mapstructure:"ttl_seconds" default:"3600"`
	// Prefix namespaces mapping keys.
	Prefix string `mapstructure:"prefix" default:"material_mapping:"`
	// TimeoutSeconds bounds dialing and each command.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"2"`
}

// Enabled reports whether a Redis address is configured.
func (c Config) Enabled() bool {
	return c.Addr != ""
}

// TTL returns the entry lifetime.
func (c Config) TTL() time.Duration {
	if c.TTLSeconds <= 0 {
		return 0
	}
	return time.Duration(c.TTLSeconds) * time.Second
}
