// README: JSON shipment payload shared by the recommendation and shipment endpoints.
package handlers

import (
	"time"

	"cargoshare/internal/modules/matching"
	"cargoshare/internal/modules/shipment"
	"cargoshare/internal/types"
)

// shipmentPayload uses the dataset's flat column names.
type shipmentPayload struct {
	ShipmentID           string   `json:"shipment_id"`
	Timestamp            string   `json:"timestamp"`
	Company              string   `json:"company"`
	GoodsType            string   `json:"goods_type"`
	Source               string   `json:"source"`
	Destination          string   `json:"destination"`
	SourceLat            float64  `json:"source_lat"`
	SourceLon            float64  `json:"source_lon"`
	DestLat              float64  `json:"dest_lat"`
	DestLon              float64  `json:"dest_lon"`
	Units                float64  `json:"units"`
	TruckType            string   `json:"truck_type"`
	StorageLeft          float64  `json:"storage_left"`
	TruckCapacity        float64  `json:"truck_capacity"`
	TempMin              *int     `json:"temp_min"`
	TempMax              *int     `json:"temp_max"`
	ETA                  string   `json:"eta"`
	Priority             string   `json:"priority"`
	ScheduledDelivery    string   `json:"scheduled_delivery_time"`
	CarbonFootprintPerKm *float64 `json:"carbon_footprint_per_km"`
	TotalEmissions       *float64 `json:"total_emissions"`
}

// toShipment converts the payload. Missing temperature bounds fall back to the
// goods category's range from catalog. An unparsable timestamp is a *matching.ValidationError.
func (p shipmentPayload) toShipment(catalog shipment.Catalog) (shipment.Shipment, error) {
	sh := shipment.Shipment{
		ID:                   types.ID(p.ShipmentID),
		Company:              p.Company,
		GoodsType:            shipment.GoodsType(p.GoodsType),
		Source:               p.Source,
		Destination:          p.Destination,
		SourcePos:            types.Point{Lat: p.SourceLat, Lng: p.SourceLon},
		DestPos:              types.Point{Lat: p.DestLat, Lng: p.DestLon},
		Units:                p.Units,
		TruckType:            p.TruckType,
		StorageLeft:          p.StorageLeft,
		TruckCapacity:        p.TruckCapacity,
		Priority:             shipment.Priority(p.Priority),
		CarbonFootprintPerKm: p.CarbonFootprintPerKm,
		TotalEmissions:       p.TotalEmissions,
	}

	ts, err := optionalTime("timestamp", p.Timestamp)
	if err != nil {
		return shipment.Shipment{}, err
	}
	if ts != nil {
		sh.Timestamp = *ts
	}
	if sh.ETA, err = optionalTime("eta", p.ETA); err != nil {
		return shipment.Shipment{}, err
	}
	if sh.ScheduledDelivery, err = optionalTime("scheduled_delivery_time", p.ScheduledDelivery); err != nil {
		return shipment.Shipment{}, err
	}

	if g, ok := catalog.Lookup(sh.GoodsType); ok {
		sh.Temp = g.Temp
	}
	if p.TempMin != nil {
		sh.Temp.Min = *p.TempMin
	}
	if p.TempMax != nil {
		sh.Temp.Max = *p.TempMax
	}
	return sh, nil
}

func optionalTime(field, raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := shipment.ParseTime(raw)
	if err != nil {
		return nil, &matching.ValidationError{Field: field, Reason: "is unparsable: " + err.Error()}
	}
	return &t, nil
}
