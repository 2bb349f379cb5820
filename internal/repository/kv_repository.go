package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/truckledger/service-logistics/internal/domain/kv"
	"github.com/truckledger/service-logistics/internal/platform/apperror"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// KVModel is the GORM model for the kv_entries table.
type KVModel struct {
	Key       string          `gorm:"primaryKey;size:255"`
	Value     json.RawMessage `gorm:"type:jsonb;not null"`
	Stamp     int64           `gorm:"not null;default:0"`
	UpdatedAt time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (KVModel) TableName() string {
	return "kv_entries"
}

// GormKVRepository implements kv.Repository using GORM.
type GormKVRepository struct {
	db *gorm.DB
}

// NewGormKVRepository creates a new GormKVRepository.
func NewGormKVRepository(db *gorm.DB) *GormKVRepository {
	return &GormKVRepository{db: db}
}

// List returns every entry ordered by key.
func (r *GormKVRepository) List(ctx context.Context) ([]kv.Entry, error) {
	var models []KVModel
	if err := r.db.WithContext(ctx).Order("key ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list kv entries: %w", err)
	}
	entries := make([]kv.Entry, len(models))
	for i, m := range models {
		entries[i] = toKVEntry(m)
	}
	return entries, nil
}

func (r *GormKVRepository) Get(ctx context.Context, key string) (kv.Entry, error) {
	var m KVModel
	if err := r.db.WithContext(ctx).Where("key = ?", key).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return kv.Entry{}, apperror.NewNotFoundError("KV", key)
		}
		return kv.Entry{}, fmt.Errorf("failed to get kv entry: %w", err)
	}
	return toKVEntry(m), nil
}

// Put upserts e in one statement. The conflict branch only fires when the incoming
// stamp is not older than the stored one, mirroring kv.Merge.
func (r *GormKVRepository) Put(ctx context.Context, e kv.Entry) (kv.Entry, error) {
	model := KVModel{Key: e.Key, Value: e.Value, Stamp: e.Stamp, UpdatedAt: e.UpdatedAt}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "key"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"value":      gorm.Expr("excluded.value"),
				"stamp":      gorm.Expr("GREATEST(kv_entries.stamp, excluded.stamp)"),
				"updated_at": gorm.Expr("excluded.updated_at"),
			}),
			Where: clause.Where{Exprs: []clause.Expression{
				gorm.Expr("excluded.stamp = 0 OR excluded.stamp >= kv_entries.stamp"),
			}},
		}).
		Create(&model).Error
	if err != nil {
		return kv.Entry{}, fmt.Errorf("failed to put kv entry: %w", err)
	}
	return r.Get(ctx, e.Key)
}

func (r *GormKVRepository) Delete(ctx context.Context, key string) error {
	if err := r.db.WithContext(ctx).Where("key = ?", key).Delete(&KVModel{}).Error; err != nil {
		return fmt.Errorf("failed to delete kv entry: %w", err)
	}
	return nil
}

func toKVEntry(m KVModel) kv.Entry {
	return kv.Entry{Key: m.Key, Value: m.Value, Stamp: m.Stamp, UpdatedAt: m.UpdatedAt}
}
