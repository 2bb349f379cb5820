// Package quote prices a shipment by great-circle distance and cargo weight.
package quote

import (
	"github.com/truckledger/service-logistics/internal/domain/geo"
	"github.com/truckledger/service-logistics/internal/platform/apperror"
)

// Quote is a derived, non-persisted price for moving WeightKg from Origin to Destination.
type Quote struct {
	Origin       geo.Point `json:"origin"`
	Destination  geo.Point `json:"destination"`
	DistanceKm   float64   `json:"distanceKm"`
	WeightKg     float64   `json:"weightKg"`
	DistanceCost int64     `json:"distanceCost"`
	WeightCost   int64     `json:"weightCost"`
	TotalPrice   int64     `json:"totalPrice"`
}

// New prices a shipment between two resolved points.
func New(strategy PricingStrategy, origin, destination geo.Point, weightKg float64) (Quote, error) {
	if err := origin.Validate(); err != nil {
		return Quote{}, apperror.NewValidationError("origin: " + err.Error())
	}
	if err := destination.Validate(); err != nil {
		return Quote{}, apperror.NewValidationError("destination: " + err.Error())
	}

	distanceKm := geo.DistanceKm(origin, destination)
	b, err := strategy.Calculate(PricingParams{DistanceKm: distanceKm, WeightKg: weightKg})
	if err != nil {
		return Quote{}, apperror.NewValidationError(err.Error())
	}

	return Quote{
		Origin:       origin,
		Destination:  destination,
		DistanceKm:   distanceKm,
		WeightKg:     weightKg,
		DistanceCost: b.DistanceCost,
		WeightCost:   b.WeightCost,
		TotalPrice:   b.Total,
	}, nil
}

// Midpoint is where a map should center to show both ends of the quote.
func (q Quote) Midpoint() geo.Point {
	c, _ := geo.Centroid([]geo.Point{q.Origin, q.Destination})
	return c
}
