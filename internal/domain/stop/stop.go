package stop

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/truckledger/service-logistics/internal/domain/geo"
	"github.com/truckledger/service-logistics/internal/platform/apperror"
)

// Stop is a point of interest on a vehicle's itinerary with a delivery flag.
// Ids are unique per plate and only ever grow; delivered flips false to true once.
type Stop struct {
	plate       string
	id          int
	label       string
	position    geo.Point
	delivered   bool
	cargo       string
	destination string
	deliveredAt *time.Time
	createdAt   time.Time
}

// New creates an undelivered stop.
func New(plate string, id int, label string, position geo.Point, cargo, destination string) (*Stop, error) {
	plate = strings.ToUpper(strings.TrimSpace(plate))
	label = strings.TrimSpace(label)
	if plate == "" {
		return nil, apperror.NewValidationError("plate is required")
	}
	if label == "" {
		return nil, apperror.NewValidationError("stop label is required")
	}
	if id < 1 {
		return nil, apperror.NewValidationError("stop id must be positive")
	}
	if err := position.Validate(); err != nil {
		return nil, apperror.NewValidationError(err.Error())
	}

	return &Stop{
		plate:       plate,
		id:          id,
		label:       label,
		position:    position,
		cargo:       strings.TrimSpace(cargo),
		destination: strings.TrimSpace(destination),
		createdAt:   time.Now().UTC(),
	}, nil
}

// Reconstruct rebuilds a Stop from persistence data (no validation).
func Reconstruct(
	plate string,
	id int,
	label string,
	position geo.Point,
	delivered bool,
	cargo, destination string,
	deliveredAt *time.Time,
	createdAt time.Time,
) *Stop {
	return &Stop{
		plate:       plate,
		id:          id,
		label:       label,
		position:    position,
		delivered:   delivered,
		cargo:       cargo,
		destination: destination,
		deliveredAt: deliveredAt,
		createdAt:   createdAt,
	}
}

func (s *Stop) Plate() string           { return s.plate }
func (s *Stop) ID() int                 { return s.id }
func (s *Stop) Label() string           { return s.label }
func (s *Stop) Position() geo.Point     { return s.position }
func (s *Stop) Delivered() bool         { return s.delivered }
func (s *Stop) Cargo() string           { return s.cargo }
func (s *Stop) Destination() string     { return s.destination }
func (s *Stop) DeliveredAt() *time.Time { return s.deliveredAt }
func (s *Stop) CreatedAt() time.Time    { return s.createdAt }

// MarkDelivered records the delivery. It is a one-way transition.
func (s *Stop) MarkDelivered(at time.Time) error {
	if s.delivered {
		return apperror.NewInvalidStateError(fmt.Sprintf("stop %d of %s is already delivered", s.id, s.plate))
	}
	at = at.UTC()
	s.delivered = true
	s.deliveredAt = &at
	return nil
}

// NextID returns max(id)+1 over stops, or 1 when there are none.
func NextID(stops []*Stop) int {
	next := 1
	for _, s := range stops {
		if s.id >= next {
			next = s.id + 1
		}
	}
	return next
}

// Repository defines persistence operations for stops.
type Repository interface {
	// FindByPlate returns the plate's stops in creation order.
	FindByPlate(ctx context.Context, plate string) ([]*Stop, error)
	FindOne(ctx context.Context, plate string, id int) (*Stop, error)
	// Save inserts a new stop. A duplicate (plate, id) is a Conflict.
	Save(ctx context.Context, s *Stop) error
	Update(ctx context.Context, s *Stop) error
}
