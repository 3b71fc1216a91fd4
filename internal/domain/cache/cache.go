// Package cache short-circuits repeat validations of identical photos.
// Results are keyed by content hash so the engine stays pure.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"photocheck-server-go/internal/domain/compliance"
)

// Cache stores validation results for a short TTL.
type Cache interface {
	Get(ctx context.Context, key string) (*compliance.Result, bool, error)
	Set(ctx context.Context, key string, result *compliance.Result) error
	Stats(ctx context.Context) (map[string]any, error)
	Close(ctx context.Context) error
}

// Config selects and tunes the cache driver.
type Config struct {
	Driver string
	TTL    time.Duration
	Redis  *RedisConfig
	Memory *MemoryConfig
}

// MemoryConfig holds in-memory tuning knobs.
type MemoryConfig struct {
	GCInterval time.Duration
}

// RedisConfig captures connection options.
type RedisConfig struct {
	Addr     string
	Username string
	Password string
	DB       int
	Prefix   string
}

// Key derives the cache key from the raw image bytes and the mode the
// result was computed under.
func Key(data []byte, mode string) string {
	sum := sha256.Sum256(data)
	if mode == "" {
		mode = "standard"
	}
	return hex.EncodeToString(sum[:]) + ":" + mode
}
