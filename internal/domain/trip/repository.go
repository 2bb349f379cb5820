package trip

import (
	"context"

	"github.com/google/uuid"
)

// TripRepository defines the persistence contract for trip aggregates.
type TripRepository interface {
	// FindByID retrieves a trip by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Trip, error)

	// FindAll retrieves trips, optionally restricted to one plate, newest first.
	FindAll(ctx context.Context, plate string) ([]*Trip, error)

	// FindActiveByPlate returns the plate's active trip, or a NotFound error.
	FindActiveByPlate(ctx context.Context, plate string) (*Trip, error)

	// Save persists a new trip.
	Save(ctx context.Context, t *Trip) error

	// Update persists changes to an existing trip with optimistic locking.
	Update(ctx context.Context, t *Trip) error

	// Delete removes a trip.
	Delete(ctx context.Context, id uuid.UUID) error
}
