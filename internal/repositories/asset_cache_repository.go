package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/tenantdesk/mediagate/internal/models"
	"go.uber.org/zap"
)

// assetCacheRepository implements a write-through cache of media assets.
// Entries older than ttl are treated as missing.
type assetCacheRepository struct {
	db     *sql.DB
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

// NewAssetCacheRepository creates a new asset cache repository
func NewAssetCacheRepository(db *sql.DB, ttl time.Duration, logger *zap.Logger) *assetCacheRepository {
	return &assetCacheRepository{
		db:     db,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

// Upsert stores the latest known copy of an asset
func (r *assetCacheRepository) Upsert(ctx context.Context, asset *models.MediaAsset) error {
	payload, err := json.Marshal(asset)
	if err != nil {
		return fmt.Errorf("failed to encode asset: %w", err)
	}

	query := `
		INSERT INTO media_cache (id, mime_type, access_level, owner_id, payload, cached_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			mime_type = VALUES(mime_type),
			access_level = VALUES(access_level),
			owner_id = VALUES(owner_id),
			payload = VALUES(payload),
			cached_at = VALUES(cached_at)
	`

	_, err = r.db.ExecContext(ctx, query,
		asset.ID,
		asset.MimeType,
		asset.AccessLevel,
		asset.OwnerID,
		payload,
		r.now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert cached asset: %w", err)
	}

	return nil
}

// GetByID retrieves a cached asset by ID. Missing and stale entries return nil without error.
func (r *assetCacheRepository) GetByID(ctx context.Context, id string) (*models.MediaAsset, error) {
	query := `
		SELECT payload, cached_at
		FROM media_cache
		WHERE id = ?
		LIMIT 1
	`

	var payload []byte
	var cachedAt time.Time
	err := r.db.QueryRowContext(ctx, query, id).Scan(&payload, &cachedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cached asset by id: %w", err)
	}

	if r.ttl > 0 && r.now().Sub(cachedAt) > r.ttl {
		r.logger.Debug("cached asset is stale", zap.String("media_id", id), zap.Time("cached_at", cachedAt))
		return nil, nil
	}

	asset := &models.MediaAsset{}
	if err := json.Unmarshal(payload, asset); err != nil {
		return nil, fmt.Errorf("failed to decode cached asset: %w", err)
	}

	return asset, nil
}

// DeleteByID evicts an asset. Evicting a missing entry is not an error.
func (r *assetCacheRepository) DeleteByID(ctx context.Context, id string) error {
	query := `DELETE FROM media_cache WHERE id = ?`

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete cached asset: %w", err)
	}

	return nil
}

// PurgeExpired removes every entry older than the TTL and returns the number of removed rows
func (r *assetCacheRepository) PurgeExpired(ctx context.Context) (int64, error) {
	query := `DELETE FROM media_cache WHERE cached_at < ?`

	result, err := r.db.ExecContext(ctx, query, r.now().Add(-r.ttl).UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to purge cached assets: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}
