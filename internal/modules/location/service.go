// README: Location service maintains the shipment destination index and answers proximity lookups.
package location

import (
	"context"
	"errors"

	"cargoshare/internal/types"
)

var ErrBadRequest = errors.New("bad request")

const defaultNearbyLimit = 20

// Index is the GEO backend of the service; *Store satisfies it.
type Index interface {
	SetDestination(ctx context.Context, id types.ID, pos types.Point) error
	RemoveDestination(ctx context.Context, id types.ID) error
	NearbyDestinations(ctx context.Context, p types.Point, radiusKm float64, limit int) ([]DestinationHit, error)
}

type Service struct {
	index Index
}

func NewService(index Index) *Service {
	return &Service{index: index}
}

func (s *Service) IndexDestination(ctx context.Context, id types.ID, pos types.Point) error {
	if id == "" {
		return ErrBadRequest
	}
	return s.index.SetDestination(ctx, id, pos)
}

func (s *Service) RemoveDestination(ctx context.Context, id types.ID) error {
	return s.index.RemoveDestination(ctx, id)
}

// Nearby lists indexed destinations within radiusKm of p, nearest first.
func (s *Service) Nearby(ctx context.Context, p types.Point, radiusKm float64, limit int) ([]DestinationHit, error) {
	if radiusKm <= 0 {
		return nil, ErrBadRequest
	}
	if limit <= 0 {
		limit = defaultNearbyLimit
	}
	hits, err := s.index.NearbyDestinations(ctx, p, radiusKm, limit)
	if err != nil {
		return nil, err
	}
	// Redis measures with its own earth radius; recompute so distances agree with the matcher.
	for i := range hits {
		hits[i].DistanceKm = DistanceKm(p, hits[i].Position)
	}
	sortByDistance(hits, func(h DestinationHit) float64 { return h.DistanceKm })
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}
