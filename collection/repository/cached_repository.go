package repository

import (
	"context"
	"errors"
	"net/url"

	"github.com/drapcode/exchange-engine/collection/models"
	"github.com/drapcode/exchange-engine/internal/cache"
	"github.com/drapcode/exchange-engine/internal/pkg/log"
	"github.com/drapcode/exchange-engine/internal/types"
)

type cachedRepository struct {
	next  Repository
	cache *cache.GenericCacheService
}

// NewCachedRepository serves GetCollection from cache. Entries expire with
// the cache TTL. A nil or disabled cache leaves next unwrapped.
func NewCachedRepository(next Repository, cacheService *cache.GenericCacheService) Repository {
	if cacheService == nil || !cacheService.IsEnabled() {
		return next
	}
	return &cachedRepository{next: next, cache: cacheService}
}

// collectionKey escapes both parts so no project and collection pair can
// produce the key of another.
func collectionKey(projectID, collectionName string) string {
	return "collection:" + url.QueryEscape(projectID) + ":" + url.QueryEscape(collectionName)
}

func (r *cachedRepository) GetCollection(ctx context.Context, projectID, collectionName string) (types.Optional[models.Collection], error) {
	key := collectionKey(projectID, collectionName)

	var cached models.Collection
	err := r.cache.GetCached(ctx, key, &cached)
	switch {
	case err == nil:
		return types.Some(cached), nil
	case errors.Is(err, cache.ErrCorruptEntry):
		log.WarnWithContext(ctx, "evicting collection cache entry %s: %v", key, err)
		if err := r.cache.Invalidate(ctx, key); err != nil {
			log.WarnWithContext(ctx, "collection cache eviction failed for %s: %v", key, err)
		}
	case !errors.Is(err, cache.ErrKeyNotFound):
		log.WarnWithContext(ctx, "collection cache read failed for %s: %v", key, err)
	}

	found, err := r.next.GetCollection(ctx, projectID, collectionName)
	if err != nil {
		return found, err
	}
	if collection, ok := found.Get(); ok {
		if err := r.cache.CacheData(ctx, key, collection); err != nil {
			log.WarnWithContext(ctx, "collection cache write failed for %s: %v", key, err)
		}
	}
	return found, nil
}
