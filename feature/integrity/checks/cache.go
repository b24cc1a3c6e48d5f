package checks

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheReport describes the mapping cache connection.
type CacheReport struct {
	Enabled bool   `json:"enabled"`
	Status  string `json:"status"` // "ok", "disabled", "error"
	Latency string `json:"latency,omitempty"`
	Error   string `json:"error,omitempty"`
}

// CheckCache pings the mapping cache. A nil client reports a disabled cache.
func CheckCache(ctx context.Context, client *redis.Client) *CacheReport {
	if client == nil {
		return &CacheReport{Status: "disabled"}
	}

	start := time.Now()
	if err := client.Ping(ctx).Err(); err != nil {
		return &CacheReport{Enabled: true, Status: "error", Error: err.Error()}
	}
	return &CacheReport{Enabled: true, Status: "ok", Latency: time.Since(start).String()}
}
