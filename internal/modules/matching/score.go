// README: Weighted match score out of 100 points.
package matching

import (
	"math"

	"cargoshare/internal/modules/location"
	"cargoshare/internal/modules/shipment"
)

const (
	sourceThresholdKm   = 30
	postingWindowHours  = 48
	deliveryWindowHours = 24

	// The capacity weight splits into a base for a full fit and a bonus for spare room.
	capacityBaseShare  = 20.0 / 35.0
	capacitySlopeShare = 15.0 / 35.0
)

// Weights are the maximum points of each sub-score.
type Weights struct {
	Capacity     float64
	Destination  float64
	Source       float64
	Timing       float64
	CrossCompany float64
	Delivery     float64
}

func DefaultWeights() Weights {
	return Weights{
		Capacity:     35,
		Destination:  20,
		Source:       15,
		Timing:       10,
		CrossCompany: 5,
		Delivery:     15,
	}
}

func (w Weights) Total() float64 {
	return w.Capacity + w.Destination + w.Source + w.Timing + w.CrossCompany + w.Delivery
}

// Score rates candidate c for query q. Higher is better.
func Score(q, c shipment.Shipment, destThresholdKm float64, w Weights) float64 {
	score := capacityScore(c.StorageLeft, q.Units, w.Capacity)
	score += linearDecay(location.DistanceKm(q.DestPos, c.DestPos), destThresholdKm, w.Destination)
	score += linearDecay(location.DistanceKm(q.SourcePos, c.SourcePos), sourceThresholdKm, w.Source)
	score += linearDecay(hoursApart(q.Timestamp, c.Timestamp), postingWindowHours, w.Timing)
	if q.Company != c.Company {
		score += w.CrossCompany
	}
	if q.ScheduledDelivery != nil && c.ScheduledDelivery != nil {
		score += linearDecay(hoursApart(*q.ScheduledDelivery, *c.ScheduledDelivery), deliveryWindowHours, w.Delivery)
	}
	return score
}

func capacityScore(storageLeft, units, weight float64) float64 {
	base := weight * capacityBaseShare
	ratio := storageLeft / units
	if ratio >= 1 {
		return math.Min(weight, base+weight*capacitySlopeShare*(ratio-1))
	}
	return base * ratio
}

// linearDecay awards weight at zero, falling to nothing at threshold and beyond.
func linearDecay(value, threshold, weight float64) float64 {
	if threshold <= 0 || value > threshold {
		return 0
	}
	return math.Max(0, weight*(1-value/threshold))
}
