// Package proximity decides when a tracked vehicle has reached its next stop.
package proximity

import (
	"github.com/truckledger/service-logistics/internal/domain/geo"
	"github.com/truckledger/service-logistics/internal/domain/stop"
)

// DefaultThresholdMeters is the arrival radius around a stop.
const DefaultThresholdMeters = 250.0

// NextUndelivered returns the first stop, in slice order, that is not delivered.
// Geographic order is irrelevant.
func NextUndelivered(stops []*stop.Stop) *stop.Stop {
	for _, s := range stops {
		if !s.Delivered() {
			return s
		}
	}
	return nil
}

// Check is the result of CheckArrival.
type Check struct {
	Arrived        bool    `json:"arrived"`
	DistanceMeters float64 `json:"distanceMeters"`
}

// CheckArrival reports whether position is within thresholdMeters of s (inclusive).
func CheckArrival(position geo.Point, s *stop.Stop, thresholdMeters float64) Check {
	d := geo.DistanceMeters(position, s.Position())
	return Check{Arrived: d <= thresholdMeters, DistanceMeters: d}
}
