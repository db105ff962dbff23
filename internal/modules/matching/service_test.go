package matching

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"cargoshare/internal/config"
	"cargoshare/internal/modules/shipment"
	"cargoshare/internal/types"
)

type fakeSource struct {
	pool    []shipment.Shipment
	catalog shipment.Catalog
}

func (f *fakeSource) Snapshot() []shipment.Shipment { return f.pool }
func (f *fakeSource) Catalog() shipment.Catalog     { return f.catalog }

func (f *fakeSource) Get(_ context.Context, id types.ID) (shipment.Shipment, error) {
	for _, s := range f.pool {
		if s.ID == id {
			return s, nil
		}
	}
	return shipment.Shipment{}, shipment.ErrNotFound
}

type observation struct {
	outcome string
	scanned int
}

type fakeRecorder struct {
	seen []observation
}

func (f *fakeRecorder) ObserveRecommendation(outcome string, scanned int, _ time.Duration) {
	f.seen = append(f.seen, observation{outcome: outcome, scanned: scanned})
}

func testConfig() config.MatchingConfig {
	return config.MatchingConfig{
		NumRecommendations: 5,
		DestThresholdKm:    50,
		TimeThresholdHours: 48,
		TempOverlap:        DefaultTempOverlap,
		Workers:            2,
		ParallelMin:        DefaultParallelMin,
		ScanTimeout:        time.Second,
	}
}

func newTestService(pool []shipment.Shipment, cfg config.MatchingConfig) (*Service, *fakeRecorder) {
	rec := &fakeRecorder{}
	src := &fakeSource{pool: pool, catalog: shipment.DefaultCatalog()}
	return NewService(src, cfg, rec, zerolog.Nop()), rec
}

func TestService_RecommendOutcomes(t *testing.T) {
	pool := []shipment.Shipment{
		truck("A", "Garments", 40, 10),
		truck("far", "Garments", 40, 300),
	}
	svc, rec := newTestService(pool, testConfig())

	got, err := svc.Recommend(context.Background(), RecommendCommand{Query: query()})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if got.Fallback || len(got.Results) != 1 || got.Results[0].ShipmentID != "A" {
		t.Fatalf("recommendation = %+v", got)
	}

	tight := 1.0
	got, err = svc.Recommend(context.Background(), RecommendCommand{Query: query(), DestThresholdKm: &tight})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if !got.Fallback || got.Results[0].ShipmentID != "A" {
		t.Fatalf("fallback recommendation = %+v", got)
	}

	bad := query()
	bad.Units = 0
	if _, err := svc.Recommend(context.Background(), RecommendCommand{Query: bad}); err == nil {
		t.Fatal("expected validation error")
	}

	noRoom := query()
	noRoom.Units = 1000
	got, err = svc.Recommend(context.Background(), RecommendCommand{Query: noRoom})
	if err != nil || len(got.Results) != 0 {
		t.Fatalf("expected empty result, got %+v, %v", got, err)
	}

	want := []observation{
		{OutcomeMatched, 2},
		{OutcomeFallback, 2},
		{OutcomeInvalid, 0},
		{OutcomeEmpty, 0},
	}
	if len(rec.seen) != len(want) {
		t.Fatalf("observations = %+v", rec.seen)
	}
	for i := range want {
		if rec.seen[i] != want[i] {
			t.Errorf("observation %d = %+v, want %+v", i, rec.seen[i], want[i])
		}
	}
}

func TestService_ParamsOverrides(t *testing.T) {
	svc, _ := newTestService(nil, testConfig())
	n := 2
	hours := 0.0
	p := svc.Params(RecommendCommand{N: &n, TimeThresholdHours: &hours})
	if p.N != 2 || p.TimeThresholdHours != 0 || p.DestThresholdKm != 50 {
		t.Fatalf("params = %+v", p)
	}
}

func TestService_SymmetricGoods(t *testing.T) {
	q := query()
	q.GoodsType = "Accessories"
	pool := []shipment.Shipment{truck("E", "Electronics", 40, 5)}

	svc, _ := newTestService(pool, testConfig())
	got, err := svc.Recommend(context.Background(), RecommendCommand{Query: q})
	if err != nil || len(got.Results) != 0 {
		t.Fatalf("directional table should reject Accessories -> Electronics: %+v, %v", got, err)
	}

	cfg := testConfig()
	cfg.SymmetricGoods = true
	svc, _ = newTestService(pool, cfg)
	got, err = svc.Recommend(context.Background(), RecommendCommand{Query: q})
	if err != nil || len(got.Results) != 1 {
		t.Fatalf("symmetric table should accept: %+v, %v", got, err)
	}
}

func TestService_CarbonImpact(t *testing.T) {
	a := truck("a", "Garments", 10, 0)
	b := truck("b", "Garments", 10, 0)
	svc, _ := newTestService([]shipment.Shipment{a, b}, testConfig())

	if _, err := svc.CarbonImpact(context.Background(), "a", "b"); !errors.Is(err, ErrCarbonUnavailable) {
		t.Fatalf("err = %v, want ErrCarbonUnavailable", err)
	}
	if _, err := svc.CarbonImpact(context.Background(), "a", "missing"); !errors.Is(err, shipment.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
