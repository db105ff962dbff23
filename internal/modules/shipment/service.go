// README: Shipment service owns the pool snapshot, its persistence and destination indexing.
package shipment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"cargoshare/internal/modules/location"
	"cargoshare/internal/types"
)

var (
	ErrNotFound   = errors.New("shipment not found")
	ErrBadRequest = errors.New("bad request")
)

// Persister is the durable backend of the pool; *Store satisfies it.
type Persister interface {
	Create(ctx context.Context, sh Shipment) error
	Get(ctx context.Context, id types.ID) (Shipment, error)
	ListAll(ctx context.Context) ([]Shipment, error)
	LoadCatalog(ctx context.Context) (Catalog, error)
}

// DestinationIndexer tracks the destinations of pooled shipments; *location.Service satisfies it.
type DestinationIndexer interface {
	IndexDestination(ctx context.Context, id types.ID, pos types.Point) error
	RemoveDestination(ctx context.Context, id types.ID) error
}

type Service struct {
	store Persister
	pool  *Pool
	index DestinationIndexer
	log   zerolog.Logger

	mu      sync.RWMutex
	catalog Catalog
}

// NewService wires the pool. store and index may be nil when Postgres or Redis are not configured.
func NewService(store Persister, pool *Pool, index DestinationIndexer, log zerolog.Logger) *Service {
	return &Service{store: store, pool: pool, index: index, log: log, catalog: DefaultCatalog()}
}

// Validate checks the invariants every pooled shipment must satisfy.
func Validate(sh Shipment) error {
	switch {
	case sh.ID == "":
		return fmt.Errorf("%w: shipment_id is required", ErrBadRequest)
	case sh.GoodsType == "":
		return fmt.Errorf("%w: goods_type is required", ErrBadRequest)
	case sh.StorageLeft < 0:
		return fmt.Errorf("%w: storage_left must not be negative", ErrBadRequest)
	case sh.Units < 0:
		return fmt.Errorf("%w: units must not be negative", ErrBadRequest)
	case sh.Temp.Min > sh.Temp.Max:
		return fmt.Errorf("%w: temp_min must not exceed temp_max", ErrBadRequest)
	case sh.Source != "" && sh.Source == sh.Destination:
		return fmt.Errorf("%w: source and destination must differ", ErrBadRequest)
	case sh.Timestamp.IsZero():
		return fmt.Errorf("%w: timestamp is required", ErrBadRequest)
	case sh.CarbonFootprintPerKm != nil && *sh.CarbonFootprintPerKm <= 0:
		return fmt.Errorf("%w: carbon_footprint_per_km must be positive", ErrBadRequest)
	}
	return nil
}

// Create adds sh to the pool, assigning an ID and a travel-time ETA when missing.
func (s *Service) Create(ctx context.Context, sh Shipment) (Shipment, error) {
	if sh.ID == "" {
		sh.ID = types.ID(uuid.NewString())
	}
	withETA(&sh)
	if err := Validate(sh); err != nil {
		return Shipment{}, err
	}
	if s.store != nil {
		if err := s.store.Create(ctx, sh); err != nil {
			return Shipment{}, fmt.Errorf("persist shipment: %w", err)
		}
	}
	s.pool.Add(sh)
	s.indexDestination(ctx, sh)
	return sh, nil
}

// Get serves id from the pool, then from the store for rows written since the last refresh.
func (s *Service) Get(ctx context.Context, id types.ID) (Shipment, error) {
	sh, err := s.pool.Get(ctx, id)
	if !errors.Is(err, ErrNotFound) || s.store == nil {
		return sh, err
	}
	return s.store.Get(ctx, id)
}

// Snapshot returns the current immutable pool.
func (s *Service) Snapshot() []Shipment {
	return s.pool.Snapshot()
}

func (s *Service) Catalog() Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog
}

// LoadCSV replaces the pool with the shipments read from r. Invalid rows are
// skipped and logged. With a store configured the rows are persisted first, so
// later refreshes keep them.
func (s *Service) LoadCSV(ctx context.Context, r io.Reader) (int, error) {
	rows, err := ReadCSV(r)
	if err != nil {
		return 0, err
	}
	valid := s.validRows(rows)
	if s.store != nil {
		for _, sh := range valid {
			if err := s.store.Create(ctx, sh); err != nil {
				return 0, fmt.Errorf("persist shipment %s: %w", sh.ID, err)
			}
		}
	}
	s.publish(ctx, valid)
	return len(valid), nil
}

// Reload refreshes the catalog and the pool from the store.
func (s *Service) Reload(ctx context.Context) (int, error) {
	if s.store == nil {
		return s.pool.Len(), nil
	}
	catalog, err := s.store.LoadCatalog(ctx)
	if err != nil {
		return 0, err
	}
	if len(catalog) > 0 {
		s.mu.Lock()
		s.catalog = catalog
		s.mu.Unlock()
	}
	rows, err := s.store.ListAll(ctx)
	if err != nil {
		return 0, err
	}
	valid := s.validRows(rows)
	s.publish(ctx, valid)
	return len(valid), nil
}

// RunRefresher reloads the pool from the store every interval until ctx is done.
func (s *Service) RunRefresher(ctx context.Context, interval time.Duration) {
	if s.store == nil || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.Reload(ctx)
			if err != nil {
				s.log.Error().Err(err).Msg("pool refresh failed")
				continue
			}
			s.log.Debug().Int("shipments", n).Msg("pool refreshed")
		}
	}
}

func (s *Service) validRows(rows []Shipment) []Shipment {
	valid := make([]Shipment, 0, len(rows))
	for _, sh := range rows {
		withETA(&sh)
		if err := Validate(sh); err != nil {
			s.log.Warn().Err(err).Str("shipment_id", string(sh.ID)).Msg("skipping invalid shipment")
			continue
		}
		valid = append(valid, sh)
	}
	return valid
}

// publish swaps in valid as the snapshot and moves the destination index along:
// entries for shipments that left the pool are removed, the rest are (re)indexed.
func (s *Service) publish(ctx context.Context, valid []Shipment) {
	previous := s.pool.Snapshot()
	s.pool.Replace(valid)
	if s.index == nil {
		return
	}

	kept := make(map[types.ID]struct{}, len(valid))
	for _, sh := range valid {
		kept[sh.ID] = struct{}{}
		s.indexDestination(ctx, sh)
	}
	for _, sh := range previous {
		if _, ok := kept[sh.ID]; ok {
			continue
		}
		if err := s.index.RemoveDestination(ctx, sh.ID); err != nil {
			s.log.Warn().Err(err).Str("shipment_id", string(sh.ID)).Msg("destination index removal failed")
		}
	}
}

func (s *Service) indexDestination(ctx context.Context, sh Shipment) {
	if s.index == nil {
		return
	}
	if err := s.index.IndexDestination(ctx, sh.ID, sh.DestPos); err != nil {
		s.log.Warn().Err(err).Str("shipment_id", string(sh.ID)).Msg("destination index update failed")
	}
}

func withETA(sh *Shipment) {
	if sh.ETA != nil || sh.Timestamp.IsZero() {
		return
	}
	hours := location.TravelHours(location.DistanceKm(sh.SourcePos, sh.DestPos))
	eta := sh.Timestamp.Add(time.Duration(hours * float64(time.Hour)))
	sh.ETA = &eta
}
