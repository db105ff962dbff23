// README: Matching parameters, ranked results and the typed errors of a recommendation request.
package matching

import (
	"fmt"
	"time"

	"cargoshare/internal/modules/shipment"
	"cargoshare/internal/types"
)

const (
	DefaultNumRecommendations = 5
	DefaultDestThresholdKm    = 50
	DefaultTimeThresholdHours = 48
	// DefaultParallelMin is the filtered-set size from which the scan is sharded.
	DefaultParallelMin = 2048
)

// Params controls a single ranking call.
type Params struct {
	N                  int
	DestThresholdKm    float64
	TimeThresholdHours float64
	TempOverlap        int
	// Weights left at the zero value means DefaultWeights.
	Weights Weights
	// Workers <= 1 scans sequentially.
	Workers     int
	ParallelMin int
}

func DefaultParams() Params {
	return Params{
		N:                  DefaultNumRecommendations,
		DestThresholdKm:    DefaultDestThresholdKm,
		TimeThresholdHours: DefaultTimeThresholdHours,
		TempOverlap:        DefaultTempOverlap,
		Weights:            DefaultWeights(),
		Workers:            1,
		ParallelMin:        DefaultParallelMin,
	}
}

func (p Params) Validate() error {
	switch {
	case p.N <= 0:
		return &ConfigurationError{Field: "num_recommendations", Reason: "must be positive"}
	case p.DestThresholdKm <= 0:
		return &ConfigurationError{Field: "dest_threshold_km", Reason: "must be positive"}
	case p.TimeThresholdHours < 0:
		return &ConfigurationError{Field: "time_threshold_hours", Reason: "must not be negative"}
	case p.TempOverlap < 0:
		return &ConfigurationError{Field: "temp_overlap", Reason: "must not be negative"}
	case p.Workers < 0:
		return &ConfigurationError{Field: "workers", Reason: "must not be negative"}
	}
	return nil
}

func (p Params) weights() Weights {
	if p.Weights == (Weights{}) {
		return DefaultWeights()
	}
	return p.Weights
}

// Result is one ranked recommendation. Distance is only set on the
// nearest-match fallback, which also carries ExceedsThreshold.
type Result struct {
	ShipmentID           types.ID           `json:"shipment_id"`
	Company              string             `json:"company"`
	TruckType            string             `json:"truck_type"`
	GoodsType            shipment.GoodsType `json:"goods_type"`
	Source               string             `json:"source"`
	Destination          string             `json:"destination"`
	StorageLeft          float64            `json:"storage_left"`
	Score                float64            `json:"score"`
	SpaceUsagePercent    float64            `json:"space_usage_percent"`
	ScheduledDelivery    *time.Time         `json:"scheduled_delivery_time,omitempty"`
	CarbonFootprintPerKm *float64           `json:"carbon_footprint_per_km,omitempty"`
	CarbonSavings        *float64           `json:"carbon_savings,omitempty"`
	CarbonSavingsPercent *float64           `json:"carbon_savings_percent,omitempty"`
	ExceedsThreshold     bool               `json:"exceeds_threshold,omitempty"`
	Distance             float64            `json:"distance,omitempty"`
}

// ValidationError reports a query shipment that cannot be matched.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid query shipment: %s %s", e.Field, e.Reason)
}

// ConfigurationError reports unusable ranking parameters.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid matching parameter: %s %s", e.Field, e.Reason)
}

// ValidateQuery checks the fields the engine relies on before scanning.
func ValidateQuery(q shipment.Shipment) error {
	switch {
	case q.GoodsType == "":
		return &ValidationError{Field: "goods_type", Reason: "is required"}
	case q.Units <= 0:
		return &ValidationError{Field: "units", Reason: "must be positive"}
	case q.Temp.Min > q.Temp.Max:
		return &ValidationError{Field: "temp_min", Reason: "must not exceed temp_max"}
	case q.Timestamp.IsZero():
		return &ValidationError{Field: "timestamp", Reason: "is required"}
	case q.Source != "" && q.Source == q.Destination:
		return &ValidationError{Field: "destination", Reason: "must differ from source"}
	}
	return nil
}

// candidate is a compatible pool entry with its destination distance to the query.
type candidate struct {
	shipment         *shipment.Shipment
	index            int
	distanceKm       float64
	exceedsThreshold bool
}
