package driver

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/truckledger/service-logistics/internal/platform/apperror"
)

// Driver is an entry in the drivers directory, linked to a truck by plate.
type Driver struct {
	id        uuid.UUID
	name      string
	phone     string
	plate     string
	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewDriver creates a directory entry. Phone may be filled in later.
func NewDriver(name, phone, plate string) (*Driver, error) {
	name = strings.TrimSpace(name)
	plate = strings.ToUpper(strings.TrimSpace(plate))
	if name == "" {
		return nil, apperror.NewValidationError("driver name is required")
	}
	if plate == "" {
		return nil, apperror.NewValidationError("plate is required")
	}

	now := time.Now().UTC()
	return &Driver{
		id:        uuid.New(),
		name:      name,
		phone:     strings.TrimSpace(phone),
		plate:     plate,
		version:   1,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// Reconstruct rebuilds a Driver from persistence data (no validation).
func Reconstruct(id uuid.UUID, name, phone, plate string, version int64, createdAt, updatedAt time.Time) *Driver {
	return &Driver{
		id:        id,
		name:      name,
		phone:     phone,
		plate:     plate,
		version:   version,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

func (d *Driver) ID() uuid.UUID        { return d.id }
func (d *Driver) Name() string         { return d.name }
func (d *Driver) Phone() string        { return d.phone }
func (d *Driver) Plate() string        { return d.plate }
func (d *Driver) Version() int64       { return d.version }
func (d *Driver) CreatedAt() time.Time { return d.createdAt }
func (d *Driver) UpdatedAt() time.Time { return d.updatedAt }

// Update replaces the editable fields. Empty values keep the current ones.
func (d *Driver) Update(name, phone, plate string) {
	if n := strings.TrimSpace(name); n != "" {
		d.name = n
	}
	if p := strings.TrimSpace(phone); p != "" {
		d.phone = p
	}
	if p := strings.ToUpper(strings.TrimSpace(plate)); p != "" {
		d.plate = p
	}
	d.updatedAt = time.Now().UTC()
}

// IncrementVersion bumps the optimistic-locking version.
func (d *Driver) IncrementVersion() {
	d.version++
}

// Repository defines persistence operations for drivers.
type Repository interface {
	FindAll(ctx context.Context) ([]*Driver, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Driver, error)
	FindByPlate(ctx context.Context, plate string) (*Driver, error)
	Save(ctx context.Context, d *Driver) error
	// Update persists d if its stored version is Version()-1.
	Update(ctx context.Context, d *Driver) error
	Delete(ctx context.Context, id uuid.UUID) error
}
