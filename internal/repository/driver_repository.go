package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/truckledger/service-logistics/internal/domain/driver"
	"github.com/truckledger/service-logistics/internal/platform/apperror"
	"github.com/truckledger/service-logistics/internal/platform/database"
	"gorm.io/gorm"
)

// DriverModel is the GORM model for the drivers table.
type DriverModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"not null;size:120"`
	Phone     string    `gorm:"size:40"`
	Plate     string    `gorm:"uniqueIndex;not null;size:16"`
	Version   int64     `gorm:"not null;default:1"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (DriverModel) TableName() string {
	return "drivers"
}

// GormDriverRepository implements driver.Repository using GORM.
type GormDriverRepository struct {
	db *gorm.DB
}

// NewGormDriverRepository creates a new GormDriverRepository.
func NewGormDriverRepository(db *gorm.DB) *GormDriverRepository {
	return &GormDriverRepository{db: db}
}

// FindAll returns every driver ordered by name.
func (r *GormDriverRepository) FindAll(ctx context.Context) ([]*driver.Driver, error) {
	var models []DriverModel
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list drivers: %w", err)
	}
	drivers := make([]*driver.Driver, len(models))
	for i := range models {
		drivers[i] = toDomainDriver(&models[i])
	}
	return drivers, nil
}

// FindByID retrieves a driver by id.
func (r *GormDriverRepository) FindByID(ctx context.Context, id uuid.UUID) (*driver.Driver, error) {
	var model DriverModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewNotFoundError("Driver", id.String())
		}
		return nil, fmt.Errorf("failed to find driver by ID: %w", err)
	}
	return toDomainDriver(&model), nil
}

// FindByPlate retrieves the driver linked to plate.
func (r *GormDriverRepository) FindByPlate(ctx context.Context, plate string) (*driver.Driver, error) {
	var model DriverModel
	if err := r.db.WithContext(ctx).Where("plate = ?", plate).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewNotFoundError("Driver", plate)
		}
		return nil, fmt.Errorf("failed to find driver by plate: %w", err)
	}
	return toDomainDriver(&model), nil
}

// Save persists a new driver.
func (r *GormDriverRepository) Save(ctx context.Context, d *driver.Driver) error {
	if err := r.db.WithContext(ctx).Create(toDriverModel(d)).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return apperror.NewConflictError(fmt.Sprintf("a driver is already linked to plate %s", d.Plate()))
		}
		return fmt.Errorf("failed to save driver: %w", err)
	}
	return nil
}

// Update persists changes with optimistic locking.
func (r *GormDriverRepository) Update(ctx context.Context, d *driver.Driver) error {
	expectedVersion := d.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&DriverModel{}).
		Where("id = ? AND version = ?", d.ID(), expectedVersion).
		Updates(map[string]interface{}{
			"name":       d.Name(),
			"phone":      d.Phone(),
			"plate":      d.Plate(),
			"version":    d.Version(),
			"updated_at": d.UpdatedAt(),
		})
	if result.Error != nil {
		if database.IsUniqueViolation(result.Error) {
			return apperror.NewConflictError(fmt.Sprintf("a driver is already linked to plate %s", d.Plate()))
		}
		return fmt.Errorf("failed to update driver: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NewConflictError("driver was modified by another transaction")
	}
	return nil
}

// Delete removes a driver.
func (r *GormDriverRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&DriverModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete driver: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NewNotFoundError("Driver", id.String())
	}
	return nil
}

func toDriverModel(d *driver.Driver) *DriverModel {
	return &DriverModel{
		ID:        d.ID(),
		Name:      d.Name(),
		Phone:     d.Phone(),
		Plate:     d.Plate(),
		Version:   d.Version(),
		CreatedAt: d.CreatedAt(),
		UpdatedAt: d.UpdatedAt(),
	}
}

func toDomainDriver(m *DriverModel) *driver.Driver {
	return driver.Reconstruct(m.ID, m.Name, m.Phone, m.Plate, m.Version, m.CreatedAt, m.UpdatedAt)
}
