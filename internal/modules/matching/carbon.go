// README: Illustrative carbon estimates. Savings are a fixed share, not a model.
package matching

import (
	"math"

	"cargoshare/internal/modules/location"
	"cargoshare/internal/modules/shipment"
)

// SharedSavingsPercent is the assumed emission cut from sharing a truck.
const SharedSavingsPercent = 30.0

const sharedSavingsFraction = SharedSavingsPercent / 100

// EstimateCarbon returns the per-km savings (2 dp) and the percentage for a footprint.
// Both are nil when the footprint is unknown.
func EstimateCarbon(footprintPerKm *float64) (savings, percent *float64) {
	if footprintPerKm == nil {
		return nil, nil
	}
	s := round(*footprintPerKm*sharedSavingsFraction, 2)
	p := SharedSavingsPercent
	return &s, &p
}

// Impact is the pairwise estimate for two shipments sharing a truck.
type Impact struct {
	SeparateEmissions     float64 `json:"separate_emissions"`
	SharedEmissions       float64 `json:"shared_emissions"`
	SavingsPerKm          float64 `json:"carbon_savings_per_km"`
	SavingsPercent        float64 `json:"savings_percent"`
	ApproximateDistanceKm float64 `json:"approximate_distance"`
	TotalSavings          float64 `json:"total_carbon_savings"`
}

// CarbonImpact estimates the savings of a and b travelling together over a's route.
// It reports false when either footprint is missing.
func CarbonImpact(a, b shipment.Shipment) (Impact, bool) {
	if a.CarbonFootprintPerKm == nil || b.CarbonFootprintPerKm == nil {
		return Impact{}, false
	}
	separate := *a.CarbonFootprintPerKm + *b.CarbonFootprintPerKm
	savings := separate * sharedSavingsFraction
	distance := location.DistanceKm(a.SourcePos, a.DestPos)
	return Impact{
		SeparateEmissions:     round(separate, 2),
		SharedEmissions:       round(separate-savings, 2),
		SavingsPerKm:          round(savings, 2),
		SavingsPercent:        SharedSavingsPercent,
		ApproximateDistanceKm: round(distance, 1),
		TotalSavings:          round(savings*distance, 1),
	}, true
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
