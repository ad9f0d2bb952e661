package cache

import (
	"context"
	"errors"
	"time"
)

// Cache defines the byte-level cache used by the schema lookups
type Cache interface {
	// Get retrieves a value from cache by key
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in cache with TTL
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value from cache by key
	Delete(ctx context.Context, key string) error

	// Close closes the cache connection
	Close() error
}

// CacheConfig holds configuration for cache instances
type CacheConfig struct {
	Enabled         bool
	TTL             time.Duration
	Prefix          string
	Backend         CacheType
	CleanupInterval time.Duration
	Redis           RedisConfig
}

// RedisConfig holds Redis-specific configuration
type RedisConfig struct {
	Address      string
	Password     string
	Database     int
	PoolSize     int
	MinIdleConns int
	MaxConnAge   time.Duration
}

// Common cache errors
var (
	ErrKeyNotFound      = errors.New("key not found")
	ErrCacheUnavailable = errors.New("cache unavailable")
	ErrInvalidCacheType = errors.New("invalid cache type")
	ErrCacheDisabled    = errors.New("cache disabled")
	ErrInvalidKey       = errors.New("invalid cache key")
	ErrCorruptEntry     = errors.New("cache entry does not decode")
)

// DefaultCacheConfig returns default cache configuration
func DefaultCacheConfig() *CacheConfig {
	return &CacheConfig{
		Enabled:         true,
		TTL:             5 * time.Minute,
		Prefix:          "exchange:",
		Backend:         CacheTypeMemory,
		CleanupInterval: time.Minute,
		Redis: RedisConfig{
			Address:      "localhost:6379",
			PoolSize:     10,
			MinIdleConns: 5,
			MaxConnAge:   30 * time.Minute,
		},
	}
}

// CacheType represents different cache backend types
type CacheType string

const (
	CacheTypeMemory CacheType = "memory"
	CacheTypeRedis  CacheType = "redis"
)

// IsValid checks if the cache type is valid
func (ct CacheType) IsValid() bool {
	switch ct {
	case CacheTypeMemory, CacheTypeRedis:
		return true
	default:
		return false
	}
}
