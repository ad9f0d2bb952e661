package cache

import "fmt"

// NewCache builds the configured backend. A nil config means the in-memory
// defaults; a disabled config yields ErrCacheDisabled so callers can run
// uncached.
func NewCache(config *CacheConfig) (Cache, error) {
	if config == nil {
		config = DefaultCacheConfig()
	}
	if !config.Enabled {
		return nil, ErrCacheDisabled
	}
	if !config.Backend.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidCacheType, config.Backend)
	}
	if config.Backend == CacheTypeRedis {
		return NewRedisCache(config)
	}
	return NewMemoryCache(config), nil
}
