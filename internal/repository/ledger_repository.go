package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/truckledger/service-logistics/internal/domain/ledger"
	"github.com/truckledger/service-logistics/internal/platform/apperror"
	"gorm.io/gorm"
)

// LedgerEntryModel is the GORM model for the ledger_entries table.
// Rows with a trip_id are trip transactions; the rest form the vehicle ledger.
type LedgerEntryModel struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Plate     string     `gorm:"not null;size:16;index"`
	TripID    *uuid.UUID `gorm:"type:uuid;index"`
	Kind      string     `gorm:"not null;size:10"`
	Amount    int64      `gorm:"not null"`
	Date      time.Time  `gorm:"type:date;not null"`
	Note      string     `gorm:"size:500"`
	CreatedAt time.Time  `gorm:"not null"`
	UpdatedAt time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (LedgerEntryModel) TableName() string {
	return "ledger_entries"
}

// GormLedgerRepository implements ledger.Repository using GORM.
type GormLedgerRepository struct {
	db *gorm.DB
}

// NewGormLedgerRepository creates a new GormLedgerRepository.
func NewGormLedgerRepository(db *gorm.DB) *GormLedgerRepository {
	return &GormLedgerRepository{db: db}
}

// FindByPlate returns the vehicle ledger of plate, newest date first.
func (r *GormLedgerRepository) FindByPlate(ctx context.Context, plate string) ([]*ledger.Entry, error) {
	var models []LedgerEntryModel
	if err := r.db.WithContext(ctx).
		Where("plate = ? AND trip_id IS NULL", plate).
		Order("date DESC, created_at DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	return toDomainEntries(models), nil
}

// FindByTrip returns the transactions of a trip, newest date first.
func (r *GormLedgerRepository) FindByTrip(ctx context.Context, tripID uuid.UUID) ([]*ledger.Entry, error) {
	var models []LedgerEntryModel
	if err := r.db.WithContext(ctx).
		Where("trip_id = ?", tripID).
		Order("date DESC, created_at DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list trip transactions: %w", err)
	}
	return toDomainEntries(models), nil
}

func (r *GormLedgerRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Entry, error) {
	var m LedgerEntryModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewNotFoundError("LedgerEntry", id.String())
		}
		return nil, fmt.Errorf("failed to find ledger entry: %w", err)
	}
	return toDomainEntry(&m), nil
}

func (r *GormLedgerRepository) Save(ctx context.Context, e *ledger.Entry) error {
	if err := r.db.WithContext(ctx).Create(toLedgerModel(e)).Error; err != nil {
		return fmt.Errorf("failed to save ledger entry: %w", err)
	}
	return nil
}

func (r *GormLedgerRepository) Update(ctx context.Context, e *ledger.Entry) error {
	result := r.db.WithContext(ctx).
		Model(&LedgerEntryModel{}).
		Where("id = ?", e.ID()).
		Updates(map[string]interface{}{
			"kind":       string(e.Kind()),
			"amount":     e.Amount(),
			"date":       e.Date(),
			"note":       e.Note(),
			"updated_at": e.UpdatedAt(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update ledger entry: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NewNotFoundError("LedgerEntry", e.ID().String())
	}
	return nil
}

func (r *GormLedgerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&LedgerEntryModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete ledger entry: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NewNotFoundError("LedgerEntry", id.String())
	}
	return nil
}

// DeleteByTrip removes every transaction of a trip.
func (r *GormLedgerRepository) DeleteByTrip(ctx context.Context, tripID uuid.UUID) error {
	if err := r.db.WithContext(ctx).Where("trip_id = ?", tripID).Delete(&LedgerEntryModel{}).Error; err != nil {
		return fmt.Errorf("failed to delete trip transactions: %w", err)
	}
	return nil
}

func toLedgerModel(e *ledger.Entry) *LedgerEntryModel {
	return &LedgerEntryModel{
		ID:        e.ID(),
		Plate:     e.Plate(),
		TripID:    e.TripID(),
		Kind:      string(e.Kind()),
		Amount:    e.Amount(),
		Date:      e.Date(),
		Note:      e.Note(),
		CreatedAt: e.CreatedAt(),
		UpdatedAt: e.UpdatedAt(),
	}
}

func toDomainEntry(m *LedgerEntryModel) *ledger.Entry {
	return ledger.Reconstruct(m.ID, m.Plate, m.TripID, ledger.Kind(m.Kind), m.Amount, m.Date, m.Note, m.CreatedAt, m.UpdatedAt)
}

func toDomainEntries(models []LedgerEntryModel) []*ledger.Entry {
	entries := make([]*ledger.Entry, len(models))
	for i := range models {
		entries[i] = toDomainEntry(&models[i])
	}
	return entries
}
