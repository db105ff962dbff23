// README: Destination index hits returned by GEO lookups.
package location

import "cargoshare/internal/types"

// DestinationHit is a shipment whose destination lies near a queried point.
type DestinationHit struct {
	ShipmentID types.ID    `json:"shipment_id"`
	Position   types.Point `json:"position"`
	DistanceKm float64     `json:"distance_km"`
}
