// Package live describes the last known position of each tracked vehicle.
package live

import (
	"context"
	"time"

	"github.com/truckledger/service-logistics/internal/domain/geo"
)

// Position is the last reported position of a vehicle.
type Position struct {
	Plate      string    `json:"plate"`
	Point      geo.Point `json:"position"`
	RecordedAt time.Time `json:"recordedAt"`
	// DistanceMeters is only set by Nearby.
	DistanceMeters float64 `json:"distanceMeters,omitempty"`
}

// Store indexes live positions for lookup by plate and by area.
type Store interface {
	Set(ctx context.Context, plate string, point geo.Point, at time.Time) error
	// Get returns a NotFound error for a plate that never reported.
	Get(ctx context.Context, plate string) (Position, error)
	// Nearby lists vehicles within radiusKm of center, closest first.
	Nearby(ctx context.Context, center geo.Point, radiusKm float64) ([]Position, error)
	Remove(ctx context.Context, plate string) error
}
