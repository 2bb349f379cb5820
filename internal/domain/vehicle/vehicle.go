package vehicle

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/truckledger/service-logistics/internal/platform/apperror"
)

// Vehicle is a registered truck. Its plate is the natural key used across the system.
type Vehicle struct {
	id             uuid.UUID
	plate          string
	allowedCargoKg float64
	createdAt      time.Time
}

// NormalizePlate trims and upper-cases a license plate.
func NormalizePlate(plate string) string {
	return strings.ToUpper(strings.TrimSpace(plate))
}

// NewVehicle creates a vehicle with validated fields.
func NewVehicle(plate string, allowedCargoKg float64) (*Vehicle, error) {
	plate = NormalizePlate(plate)
	if plate == "" {
		return nil, apperror.NewValidationError("plate is required")
	}
	if len(plate) > 16 {
		return nil, apperror.NewValidationError("plate is too long")
	}
	if allowedCargoKg < 0 || math.IsNaN(allowedCargoKg) {
		return nil, apperror.NewValidationError("allowed cargo must not be negative")
	}

	return &Vehicle{
		id:             uuid.New(),
		plate:          plate,
		allowedCargoKg: allowedCargoKg,
		createdAt:      time.Now().UTC(),
	}, nil
}

// Reconstruct rebuilds a Vehicle from persistence data (no validation).
func Reconstruct(id uuid.UUID, plate string, allowedCargoKg float64, createdAt time.Time) *Vehicle {
	return &Vehicle{
		id:             id,
		plate:          plate,
		allowedCargoKg: allowedCargoKg,
		createdAt:      createdAt,
	}
}

func (v *Vehicle) ID() uuid.UUID           { return v.id }
func (v *Vehicle) Plate() string           { return v.plate }
func (v *Vehicle) AllowedCargoKg() float64 { return v.allowedCargoKg }
func (v *Vehicle) CreatedAt() time.Time    { return v.createdAt }

// CanCarry reports whether weightKg fits the vehicle's allowance. A zero allowance is unlimited.
func (v *Vehicle) CanCarry(weightKg float64) bool {
	return v.allowedCargoKg == 0 || weightKg <= v.allowedCargoKg
}

// Repository defines persistence operations for vehicles.
type Repository interface {
	FindAll(ctx context.Context) ([]*Vehicle, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Vehicle, error)
	FindByPlate(ctx context.Context, plate string) (*Vehicle, error)
	// Save inserts v. A duplicate plate is a Conflict.
	Save(ctx context.Context, v *Vehicle) error
	Delete(ctx context.Context, id uuid.UUID) error
}
