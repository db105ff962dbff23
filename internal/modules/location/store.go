// README: Destination index backed by Redis GEO.
package location

import (
	"context"

	"github.com/redis/go-redis/v9"

	"cargoshare/internal/types"
)

const destinationGeoKey = "shipments:destinations"

type Store struct {
	redis *redis.Client
}

func NewStore(redis *redis.Client) *Store {
	return &Store{redis: redis}
}

func (s *Store) SetDestination(ctx context.Context, id types.ID, pos types.Point) error {
	return s.redis.GeoAdd(ctx, destinationGeoKey, &redis.GeoLocation{
		Name:      string(id),
		Longitude: pos.Lng,
		Latitude:  pos.Lat,
	}).Err()
}

func (s *Store) RemoveDestination(ctx context.Context, id types.ID) error {
	return s.redis.ZRem(ctx, destinationGeoKey, string(id)).Err()
}

// NearbyDestinations returns up to limit indexed destinations within radiusKm of p, nearest first.
func (s *Store) NearbyDestinations(ctx context.Context, p types.Point, radiusKm float64, limit int) ([]DestinationHit, error) {
	results, err := s.redis.GeoSearchLocation(ctx, destinationGeoKey, &redis.GeoSearchLocationQuery{
		GeoSearchQuery: redis.GeoSearchQuery{
			Longitude:  p.Lng,
			Latitude:   p.Lat,
			Radius:     radiusKm,
			RadiusUnit: "km",
			Sort:       "ASC",
			Count:      limit,
		},
		WithCoord: true,
		WithDist:  true,
	}).Result()
	if err != nil {
		return nil, err
	}
	hits := make([]DestinationHit, len(results))
	for i, r := range results {
		hits[i] = DestinationHit{
			ShipmentID: types.ID(r.Name),
			Position:   types.Point{Lat: r.Latitude, Lng: r.Longitude},
			DistanceKm: r.Dist,
		}
	}
	return hits, nil
}
