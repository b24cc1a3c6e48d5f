package server

import "time"

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API.
	ApiKey string `mapstructure:"api_key" default:""`
	// JWTSecret verifies operator bearer tokens issued by the CRM.
	JWTSecret string `mapstructure:"jwt_secret" default:""`
	// RateLimit is the sustained number of requests per second per client IP.
	// Zero disables rate limiting.
	RateLimit float64 `mapstructure:"rate_limit" default:"20"`
	// RateBurst is the number of requests a client may send at once.
	RateBurst int `mapstructure:"rate_burst" default:"40"`
	// RequestTimeoutSeconds bounds a single reconciliation batch.
	RequestTimeoutSeconds int `mapstructure:"request_timeout_seconds" default:"30"`
	// SessionTTLMinutes is how long a reconciliation session stays available for review.
	SessionTTLMinutes int `mapstructure:"session_ttl_minutes" default:"60"`
}

// RequestTimeout returns the batch deadline, defaulting to 30 seconds.
func (c Config) RequestTimeout() time.Duration {
	if c.RequestTimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// SessionTTL returns the session retention, defaulting to one hour.
func (c Config) SessionTTL() time.Duration {
	if c.SessionTTLMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}
