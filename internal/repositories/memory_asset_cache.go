package repositories

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/tenantdesk/mediagate/internal/models"
	"go.uber.org/zap"
)

const defaultMemoryCacheSize = 1024

// AssetStore is the interface that wraps a persistent asset cache behind the memory tier
type AssetStore interface {
	Upsert(ctx context.Context, asset *models.MediaAsset) error
	GetByID(ctx context.Context, id string) (*models.MediaAsset, error)
	DeleteByID(ctx context.Context, id string) error
}

type memoryEntry struct {
	asset    models.MediaAsset
	storedAt time.Time
}

// memoryAssetCache is an LRU tier in front of an optional persistent store.
// Entries older than the TTL are treated as missing.
type memoryAssetCache struct {
	entries *lru.Cache[string, memoryEntry]
	store   AssetStore
	ttl     time.Duration
	logger  *zap.Logger
	now     func() time.Time
}

// NewMemoryAssetCache creates a memory cache holding up to size assets.
// store may be nil, in which case the memory tier is the whole cache.
func NewMemoryAssetCache(store AssetStore, size int, ttl time.Duration, logger *zap.Logger) (*memoryAssetCache, error) {
	if size <= 0 {
		size = defaultMemoryCacheSize
	}
	entries, err := lru.New[string, memoryEntry](size)
	if err != nil {
		return nil, err
	}

	return &memoryAssetCache{
		entries: entries,
		store:   store,
		ttl:     ttl,
		logger:  logger,
		now:     time.Now,
	}, nil
}

// Upsert stores the asset in memory and in the backing store
func (c *memoryAssetCache) Upsert(ctx context.Context, asset *models.MediaAsset) error {
	c.entries.Add(asset.ID, memoryEntry{asset: *asset, storedAt: c.now()})
	if c.store == nil {
		return nil
	}
	return c.store.Upsert(ctx, asset)
}

// GetByID returns a fresh copy from memory, falling back to the backing store.
// A store hit is promoted to memory.
func (c *memoryAssetCache) GetByID(ctx context.Context, id string) (*models.MediaAsset, error) {
	if entry, ok := c.entries.Get(id); ok {
		if c.now().Sub(entry.storedAt) <= c.ttl {
			asset := entry.asset
			return &asset, nil
		}
		c.entries.Remove(id)
	}

	if c.store == nil {
		return nil, nil
	}

	asset, err := c.store.GetByID(ctx, id)
	if err != nil || asset == nil {
		return nil, err
	}
	c.entries.Add(id, memoryEntry{asset: *asset, storedAt: c.now()})
	c.logger.Debug("asset cache promoted", zap.String("media_id", id))
	return asset, nil
}

// DeleteByID evicts the asset from memory and from the backing store
func (c *memoryAssetCache) DeleteByID(ctx context.Context, id string) error {
	c.entries.Remove(id)
	if c.store == nil {
		return nil
	}
	return c.store.DeleteByID(ctx, id)
}

// Len returns the number of assets held in memory
func (c *memoryAssetCache) Len() int {
	return c.entries.Len()
}
