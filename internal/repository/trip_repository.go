package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/truckledger/service-logistics/internal/domain/trip"
	"github.com/truckledger/service-logistics/internal/platform/apperror"
	"github.com/truckledger/service-logistics/internal/platform/database"
	"gorm.io/gorm"
)

// TripModel is the GORM model for the trips table.
type TripModel struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Code        string     `gorm:"uniqueIndex;not null;size:12"`
	Plate       string     `gorm:"not null;size:16;index"`
	Name        string     `gorm:"not null;size:200"`
	Status      string     `gorm:"not null;size:20;index"`
	StartDate   time.Time  `gorm:"type:date;not null"`
	EndDate     *time.Time `gorm:"type:date"`
	ActivatedAt *time.Time `gorm:""`
	ClosedAt    *time.Time `gorm:""`
	Version     int64      `gorm:"not null;default:1"`
	CreatedAt   time.Time  `gorm:"not null"`
	UpdatedAt   time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (TripModel) TableName() string {
	return "trips"
}

// GormTripRepository is the GORM-based implementation of TripRepository.
type GormTripRepository struct {
	db *gorm.DB
}

// NewGormTripRepository creates a new GormTripRepository.
func NewGormTripRepository(db *gorm.DB) *GormTripRepository {
	return &GormTripRepository{db: db}
}

// FindByID retrieves a trip by its unique identifier.
func (r *GormTripRepository) FindByID(ctx context.Context, id uuid.UUID) (*trip.Trip, error) {
	var model TripModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewNotFoundError("Trip", id.String())
		}
		return nil, fmt.Errorf("failed to find trip by ID: %w", err)
	}
	return toDomainTrip(&model), nil
}

// FindAll retrieves trips, optionally for one plate, newest start date first.
func (r *GormTripRepository) FindAll(ctx context.Context, plate string) ([]*trip.Trip, error) {
	q := r.db.WithContext(ctx).Order("start_date DESC, created_at DESC")
	if plate != "" {
		q = q.Where("plate = ?", plate)
	}
	var models []TripModel
	if err := q.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list trips: %w", err)
	}
	trips := make([]*trip.Trip, len(models))
	for i := range models {
		trips[i] = toDomainTrip(&models[i])
	}
	return trips, nil
}

// FindActiveByPlate returns the active trip of plate.
func (r *GormTripRepository) FindActiveByPlate(ctx context.Context, plate string) (*trip.Trip, error) {
	var model TripModel
	if err := r.db.WithContext(ctx).
		Where("plate = ? AND status = ?", plate, string(trip.StatusActive)).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewNotFoundError("ActiveTrip", plate)
		}
		return nil, fmt.Errorf("failed to find active trip: %w", err)
	}
	return toDomainTrip(&model), nil
}

// Save persists a new trip.
func (r *GormTripRepository) Save(ctx context.Context, t *trip.Trip) error {
	if err := r.db.WithContext(ctx).Create(toTripModel(t)).Error; err != nil {
		return fmt.Errorf("failed to save trip: %w", err)
	}
	return nil
}

// Update persists changes to an existing trip with optimistic locking.
// The partial unique index on active trips turns a second activation into a Conflict.
func (r *GormTripRepository) Update(ctx context.Context, t *trip.Trip) error {
	model := toTripModel(t)

	expectedVersion := t.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&TripModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"name":         model.Name,
			"status":       model.Status,
			"start_date":   model.StartDate,
			"end_date":     model.EndDate,
			"activated_at": model.ActivatedAt,
			"closed_at":    model.ClosedAt,
			"version":      model.Version,
			"updated_at":   model.UpdatedAt,
		})

	if result.Error != nil {
		if database.IsUniqueViolation(result.Error) {
			return apperror.NewConflictError(fmt.Sprintf("vehicle %s already has an active trip", t.Plate()))
		}
		return fmt.Errorf("failed to update trip: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return apperror.NewConflictError("trip was modified by another transaction")
	}

	return nil
}

// Delete removes a trip together with its transactions.
func (r *GormTripRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("trip_id = ?", id).Delete(&LedgerEntryModel{}).Error; err != nil {
			return fmt.Errorf("failed to delete trip transactions: %w", err)
		}
		result := tx.Where("id = ?", id).Delete(&TripModel{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete trip: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return apperror.NewNotFoundError("Trip", id.String())
		}
		return nil
	})
}

func toTripModel(t *trip.Trip) *TripModel {
	return &TripModel{
		ID:          t.ID(),
		Code:        t.Code(),
		Plate:       t.Plate(),
		Name:        t.Name(),
		Status:      t.Status().String(),
		StartDate:   t.StartDate(),
		EndDate:     t.EndDate(),
		ActivatedAt: t.ActivatedAt(),
		ClosedAt:    t.ClosedAt(),
		Version:     t.Version(),
		CreatedAt:   t.CreatedAt(),
		UpdatedAt:   t.UpdatedAt(),
	}
}

func toDomainTrip(m *TripModel) *trip.Trip {
	return trip.ReconstructTrip(
		m.ID, m.Code, m.Plate, m.Name,
		trip.TripStatus(m.Status),
		m.StartDate, m.EndDate, m.ActivatedAt, m.ClosedAt,
		m.Version, m.CreatedAt, m.UpdatedAt,
	)
}
