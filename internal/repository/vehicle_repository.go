package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/truckledger/service-logistics/internal/domain/vehicle"
	"github.com/truckledger/service-logistics/internal/platform/apperror"
	"github.com/truckledger/service-logistics/internal/platform/database"
	"gorm.io/gorm"
)

// VehicleModel is the GORM model for the vehicles table.
type VehicleModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Plate          string    `gorm:"uniqueIndex;not null;size:16"`
	AllowedCargoKg float64   `gorm:"not null;default:0"`
	CreatedAt      time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (VehicleModel) TableName() string {
	return "vehicles"
}

// GormVehicleRepository implements vehicle.Repository using GORM.
type GormVehicleRepository struct {
	db *gorm.DB
}

// NewGormVehicleRepository creates a new GormVehicleRepository.
func NewGormVehicleRepository(db *gorm.DB) *GormVehicleRepository {
	return &GormVehicleRepository{db: db}
}

// FindAll returns vehicles, newest first.
func (r *GormVehicleRepository) FindAll(ctx context.Context) ([]*vehicle.Vehicle, error) {
	var models []VehicleModel
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list vehicles: %w", err)
	}
	vehicles := make([]*vehicle.Vehicle, len(models))
	for i, m := range models {
		vehicles[i] = vehicle.Reconstruct(m.ID, m.Plate, m.AllowedCargoKg, m.CreatedAt)
	}
	return vehicles, nil
}

func (r *GormVehicleRepository) FindByID(ctx context.Context, id uuid.UUID) (*vehicle.Vehicle, error) {
	return r.findOne(ctx, "id = ?", id, id.String())
}

func (r *GormVehicleRepository) FindByPlate(ctx context.Context, plate string) (*vehicle.Vehicle, error) {
	return r.findOne(ctx, "plate = ?", vehicle.NormalizePlate(plate), plate)
}

func (r *GormVehicleRepository) findOne(ctx context.Context, query string, arg interface{}, label string) (*vehicle.Vehicle, error) {
	var m VehicleModel
	if err := r.db.WithContext(ctx).Where(query, arg).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewNotFoundError("Vehicle", label)
		}
		return nil, fmt.Errorf("failed to find vehicle: %w", err)
	}
	return vehicle.Reconstruct(m.ID, m.Plate, m.AllowedCargoKg, m.CreatedAt), nil
}

// Save persists a new vehicle. The plate must be unique.
func (r *GormVehicleRepository) Save(ctx context.Context, v *vehicle.Vehicle) error {
	model := &VehicleModel{
		ID:             v.ID(),
		Plate:          v.Plate(),
		AllowedCargoKg: v.AllowedCargoKg(),
		CreatedAt:      v.CreatedAt(),
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return apperror.NewConflictError(fmt.Sprintf("vehicle %s is already registered", v.Plate()))
		}
		return fmt.Errorf("failed to save vehicle: %w", err)
	}
	return nil
}

// Delete removes a vehicle. Ledgers, routes and trips keyed by its plate are kept.
func (r *GormVehicleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&VehicleModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete vehicle: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NewNotFoundError("Vehicle", id.String())
	}
	return nil
}
