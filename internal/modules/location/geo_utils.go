// README: Pure geographic helpers for great-circle distance and travel time.
package location

import (
	"cmp"
	"math"
	"slices"

	"cargoshare/internal/types"
)

const earthRadiusKm = 6371.0

// DefaultAverageSpeedKmh converts straight-line distance into a rough travel time.
// It is a proxy, not a routed estimate.
const DefaultAverageSpeedKmh = 80.0

// HaversineKm returns the great-circle distance in kilometres between two
// points specified in decimal degrees. Coordinates are not validated.
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	if lat1 == lat2 && lng1 == lng2 {
		return 0
	}
	dLat := degreesToRadians(lat2 - lat1)
	dLng := degreesToRadians(lng2 - lng1)

	rLat1 := degreesToRadians(lat1)
	rLat2 := degreesToRadians(lat2)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// DistanceKm is HaversineKm over two points.
func DistanceKm(a, b types.Point) float64 {
	return HaversineKm(a.Lat, a.Lng, b.Lat, b.Lng)
}

// TravelHours converts a straight-line distance into hours at DefaultAverageSpeedKmh.
func TravelHours(km float64) float64 {
	if km <= 0 {
		return 0
	}
	return km / DefaultAverageSpeedKmh
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// sortByDistance orders items nearest first. Equal distances keep their input order.
func sortByDistance[T any](items []T, dist func(T) float64) {
	slices.SortStableFunc(items, func(a, b T) int {
		return cmp.Compare(dist(a), dist(b))
	})
}
