// README: Matching service runs recommendation requests against the live shipment pool.
package matching

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"cargoshare/internal/config"
	"cargoshare/internal/modules/shipment"
	"cargoshare/internal/types"
)

var ErrCarbonUnavailable = errors.New("carbon footprint missing")

const (
	OutcomeMatched  = "matched"
	OutcomeFallback = "fallback"
	OutcomeEmpty    = "empty"
	OutcomeInvalid  = "invalid"
	OutcomeError    = "error"
)

// ShipmentSource exposes the pool snapshot and the goods catalog; *shipment.Service satisfies it.
type ShipmentSource interface {
	Snapshot() []shipment.Shipment
	Catalog() shipment.Catalog
	Get(ctx context.Context, id types.ID) (shipment.Shipment, error)
}

// Recorder receives one observation per recommendation request.
type Recorder interface {
	ObserveRecommendation(outcome string, scanned int, elapsed time.Duration)
}

type Service struct {
	source  ShipmentSource
	cfg     config.MatchingConfig
	metrics Recorder
	log     zerolog.Logger
}

func NewService(source ShipmentSource, cfg config.MatchingConfig, metrics Recorder, log zerolog.Logger) *Service {
	return &Service{source: source, cfg: cfg, metrics: metrics, log: log}
}

// RecommendCommand is a query shipment plus optional per-request overrides.
type RecommendCommand struct {
	Query              shipment.Shipment
	N                  *int
	DestThresholdKm    *float64
	TimeThresholdHours *float64
}

type Recommendation struct {
	Results  []Result
	Fallback bool
	// Scanned is the number of candidates left after filtering.
	Scanned int
}

// Params returns the configured defaults with cmd's overrides applied.
func (s *Service) Params(cmd RecommendCommand) Params {
	p := Params{
		N:                  s.cfg.NumRecommendations,
		DestThresholdKm:    s.cfg.DestThresholdKm,
		TimeThresholdHours: s.cfg.TimeThresholdHours,
		TempOverlap:        s.cfg.TempOverlap,
		Weights:            DefaultWeights(),
		Workers:            s.cfg.Workers,
		ParallelMin:        s.cfg.ParallelMin,
	}
	if cmd.N != nil {
		p.N = *cmd.N
	}
	if cmd.DestThresholdKm != nil {
		p.DestThresholdKm = *cmd.DestThresholdKm
	}
	if cmd.TimeThresholdHours != nil {
		p.TimeThresholdHours = *cmd.TimeThresholdHours
	}
	return p
}

// Table returns the compatibility table built from the catalog in use.
func (s *Service) Table() CompatibilityTable {
	t := NewCompatibilityTable(s.source.Catalog())
	if s.cfg.SymmetricGoods {
		return t.Symmetrize()
	}
	return t
}

func (s *Service) Recommend(ctx context.Context, cmd RecommendCommand) (Recommendation, error) {
	start := time.Now()
	if s.cfg.ScanTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.ScanTimeout)
		defer cancel()
	}

	out, err := rank(ctx, s.source.Snapshot(), cmd.Query, s.Table(), s.Params(cmd))
	outcome := outcomeOf(out, err)
	if s.metrics != nil {
		s.metrics.ObserveRecommendation(outcome, out.filtered, time.Since(start))
	}
	if err != nil {
		ev := s.log.Warn()
		if outcome == OutcomeError {
			ev = s.log.Error()
		}
		ev.Err(err).Str("goods_type", string(cmd.Query.GoodsType)).Msg("recommendation failed")
		return Recommendation{}, err
	}

	s.log.Debug().
		Str("query_id", string(cmd.Query.ID)).
		Int("scanned", out.filtered).
		Int("results", len(out.results)).
		Bool("fallback", out.fallback).
		Dur("elapsed", time.Since(start)).
		Msg("recommendation served")
	return Recommendation{Results: out.results, Fallback: out.fallback, Scanned: out.filtered}, nil
}

// CarbonImpact estimates the pairwise savings of two pooled shipments.
func (s *Service) CarbonImpact(ctx context.Context, a, b types.ID) (Impact, error) {
	first, err := s.source.Get(ctx, a)
	if err != nil {
		return Impact{}, err
	}
	second, err := s.source.Get(ctx, b)
	if err != nil {
		return Impact{}, err
	}
	impact, ok := CarbonImpact(first, second)
	if !ok {
		return Impact{}, ErrCarbonUnavailable
	}
	return impact, nil
}

func outcomeOf(out ranking, err error) string {
	var verr *ValidationError
	var cerr *ConfigurationError
	switch {
	case errors.As(err, &verr), errors.As(err, &cerr):
		return OutcomeInvalid
	case err != nil:
		return OutcomeError
	case out.fallback:
		return OutcomeFallback
	case len(out.results) == 0:
		return OutcomeEmpty
	}
	return OutcomeMatched
}
