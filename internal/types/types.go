// README: Common value objects shared across modules.
package types

// ID identifies a shipment (or any other record) across modules.
type ID string

// Point is a WGS84 coordinate in decimal degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
