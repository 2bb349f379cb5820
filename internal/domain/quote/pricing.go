package quote

import (
	"fmt"
	"math"
)

// PricingStrategy defines the interface for pricing a shipment.
type PricingStrategy interface {
	// Calculate returns the cost breakdown in whole pesos for the given parameters.
	Calculate(params PricingParams) (Breakdown, error)
}

// PricingParams holds the inputs for price calculation.
type PricingParams struct {
	DistanceKm float64
	WeightKg   float64
}

// Breakdown is the priced result of a PricingStrategy.
type Breakdown struct {
	DistanceCost int64
	WeightCost   int64
	Total        int64
}

// Tariff is a pair of linear rates: DistanceRate per DistanceUnitKm and WeightRate per WeightUnitKg.
type Tariff struct {
	DistanceUnitKm float64
	DistanceRate   int64
	WeightUnitKg   float64
	WeightRate     int64
}

// StandardTariff charges 2000 per 100 km and 20000 per 60 kg.
var StandardTariff = Tariff{
	DistanceUnitKm: 100,
	DistanceRate:   2000,
	WeightUnitKg:   60,
	WeightRate:     20000,
}

// StandardPricingStrategy prices distance and weight independently and adds them.
type StandardPricingStrategy struct {
	tariff Tariff
}

// NewStandardPricingStrategy creates a strategy using StandardTariff.
func NewStandardPricingStrategy() *StandardPricingStrategy {
	return &StandardPricingStrategy{tariff: StandardTariff}
}

// NewPricingStrategy creates a strategy for a custom tariff.
func NewPricingStrategy(t Tariff) *StandardPricingStrategy {
	return &StandardPricingStrategy{tariff: t}
}

// Calculate computes the quote.
//
// Pricing formula:
//   - Distance: round(distanceKm / 100 * 2000)
//   - Weight:   round(weightKg / 60 * 20000)
//   - Total:    distance + weight
//
// Rounding is half away from zero.
func (s *StandardPricingStrategy) Calculate(params PricingParams) (Breakdown, error) {
	if params.DistanceKm < 0 || math.IsNaN(params.DistanceKm) {
		return Breakdown{}, fmt.Errorf("distance cannot be negative")
	}
	if !(params.WeightKg > 0) {
		return Breakdown{}, fmt.Errorf("weight must be greater than zero")
	}

	distanceCost := roundHalfAwayFromZero(params.DistanceKm / s.tariff.DistanceUnitKm * float64(s.tariff.DistanceRate))
	weightCost := roundHalfAwayFromZero(params.WeightKg / s.tariff.WeightUnitKg * float64(s.tariff.WeightRate))

	return Breakdown{
		DistanceCost: distanceCost,
		WeightCost:   weightCost,
		Total:        distanceCost + weightCost,
	}, nil
}

func roundHalfAwayFromZero(x float64) int64 {
	return int64(math.Round(x))
}
