// README: Shipment record and goods catalog definitions.
package shipment

import (
	"time"

	"cargoshare/internal/types"
)

type GoodsType string

type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// TemperatureRange is an inclusive range in whole degrees Celsius.
type TemperatureRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Shipment is either a truck posting residual capacity or cargo looking for space.
type Shipment struct {
	ID                   types.ID         `json:"shipment_id"`
	Timestamp            time.Time        `json:"timestamp"`
	Company              string           `json:"company"`
	GoodsType            GoodsType        `json:"goods_type"`
	Source               string           `json:"source"`
	Destination          string           `json:"destination"`
	SourcePos            types.Point      `json:"source_pos"`
	DestPos              types.Point      `json:"dest_pos"`
	Units                float64          `json:"units"`
	TruckType            string           `json:"truck_type,omitempty"`
	StorageLeft          float64          `json:"storage_left"`
	TruckCapacity        float64          `json:"truck_capacity,omitempty"`
	Temp                 TemperatureRange `json:"temp"`
	ETA                  *time.Time       `json:"eta,omitempty"`
	Priority             Priority         `json:"priority,omitempty"`
	ScheduledDelivery    *time.Time       `json:"scheduled_delivery_time,omitempty"`
	CarbonFootprintPerKm *float64         `json:"carbon_footprint_per_km,omitempty"`
	TotalEmissions       *float64         `json:"total_emissions,omitempty"`
}

// GoodsCategory is one entry of the goods catalog.
type GoodsCategory struct {
	Name       GoodsType        `json:"name"`
	Temp       TemperatureRange `json:"temp_range"`
	Compatible []GoodsType      `json:"compatibility"`
}

// Catalog is the set of goods categories in use, in declaration order.
type Catalog []GoodsCategory

func (c Catalog) Lookup(name GoodsType) (GoodsCategory, bool) {
	for _, g := range c {
		if g.Name == name {
			return g, true
		}
	}
	return GoodsCategory{}, false
}
