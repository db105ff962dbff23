package shipment

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cargoshare/internal/types"
)

const sampleCSV = `shipment_id,timestamp,company,goods_type,source,destination,units,truck_type,storage_left,source_lat,source_lon,dest_lat,dest_lon,temp_min,temp_max,eta,priority,carbon_footprint_per_km,total_emissions,scheduled_delivery_time,truck_capacity
a1b2c3d4,2025-03-01 08:00:00,EcoTrans,Garments,Chicago,Milwaukee,40,Medium Truck,210,41.8781,-87.6298,43.0389,-87.9065,15,25,2025-03-01 10:00:00,High,1.02,132.6,2025-03-02 12:00:00,250
e5f6a7b8,2025-03-01T09:30:00,GlobalMove,Frozen Food,Chicago,Houston,100,Refrigerated Large,300,41.8781,-87.6298,29.7604,-95.3698,-25,-15,,Low,,,,400
`

func TestReadCSV(t *testing.T) {
	rows, err := ReadCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	first := rows[0]
	assert.Equal(t, types.ID("a1b2c3d4"), first.ID)
	assert.Equal(t, GoodsType("Garments"), first.GoodsType)
	assert.Equal(t, 210.0, first.StorageLeft)
	assert.Equal(t, TemperatureRange{Min: 15, Max: 25}, first.Temp)
	assert.Equal(t, PriorityHigh, first.Priority)
	require.NotNil(t, first.ScheduledDelivery)
	assert.Equal(t, time.Date(2025, 3, 2, 12, 0, 0, 0, time.UTC), *first.ScheduledDelivery)
	require.NotNil(t, first.CarbonFootprintPerKm)
	assert.InDelta(t, 1.02, *first.CarbonFootprintPerKm, 1e-9)
	assert.Equal(t, 250.0, first.TruckCapacity)

	second := rows[1]
	assert.Nil(t, second.ETA)
	assert.Nil(t, second.ScheduledDelivery)
	assert.Nil(t, second.CarbonFootprintPerKm)
	assert.Equal(t, TemperatureRange{Min: -25, Max: -15}, second.Temp)
}

func TestReadCSV_MissingColumn(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("shipment_id,timestamp\nx,2025-03-01 08:00:00\n"))
	assert.ErrorContains(t, err, "missing column")
}

func TestReadCSV_BadTimestamp(t *testing.T) {
	bad := strings.Replace(sampleCSV, "2025-03-01 08:00:00", "yesterday", 1)
	_, err := ReadCSV(strings.NewReader(bad))
	assert.ErrorContains(t, err, "line 2")
	assert.ErrorContains(t, err, "timestamp")
}

func TestParseTime_Layouts(t *testing.T) {
	for _, raw := range []string{"2025-03-01T08:00:00Z", "2025-03-01 08:00:00", "2025-03-01T08:00:00"} {
		got, err := ParseTime(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, 8, got.Hour())
	}
	_, err := ParseTime("03/01/2025")
	assert.Error(t, err)
}

func TestPool_SnapshotIsImmutable(t *testing.T) {
	p := NewPool()
	p.Replace([]Shipment{{ID: "a"}, {ID: "b"}})

	before := p.Snapshot()
	p.Add(Shipment{ID: "c"})
	p.Add(Shipment{ID: "a", Company: "updated"})

	assert.Len(t, before, 2)
	assert.Equal(t, "", before[0].Company)

	after := p.Snapshot()
	require.Len(t, after, 3)
	assert.Equal(t, "updated", after[0].Company)

	got, err := p.Get(context.Background(), "c")
	require.NoError(t, err)
	assert.Equal(t, types.ID("c"), got.ID)

	_, err = p.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPool_ConcurrentReadersAndWriters(t *testing.T) {
	p := NewPool()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			p.Add(Shipment{ID: types.ID(string(rune('a' + i)))})
		}(i)
		go func() {
			defer wg.Done()
			for _, s := range p.Snapshot() {
				_ = s.ID
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 8, p.Len())
}

type recordingIndex struct {
	mu      sync.Mutex
	ids     []types.ID
	removed []types.ID
}

func (r *recordingIndex) RemoveDestination(_ context.Context, id types.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removed = append(r.removed, id)
	return nil
}

func (r *recordingIndex) IndexDestination(_ context.Context, id types.ID, _ types.Point) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, id)
	return nil
}

func validShipment() Shipment {
	return Shipment{
		Timestamp:   time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC),
		Company:     "EcoTrans",
		GoodsType:   "Garments",
		Source:      "Chicago",
		Destination: "Milwaukee",
		SourcePos:   types.Point{Lat: 41.8781, Lng: -87.6298},
		DestPos:     types.Point{Lat: 43.0389, Lng: -87.9065},
		Units:       10,
		StorageLeft: 90,
		Temp:        TemperatureRange{Min: 15, Max: 25},
	}
}

func TestService_CreateAssignsIDAndETA(t *testing.T) {
	idx := &recordingIndex{}
	svc := NewService(nil, NewPool(), idx, zerolog.Nop())

	sh, err := svc.Create(context.Background(), validShipment())
	require.NoError(t, err)

	assert.NotEmpty(t, sh.ID)
	require.NotNil(t, sh.ETA)
	// ~130 km at 80 km/h
	assert.InDelta(t, 1.6, sh.ETA.Sub(sh.Timestamp).Hours(), 0.1)
	assert.Equal(t, []types.ID{sh.ID}, idx.ids)
	assert.Len(t, svc.Snapshot(), 1)
}

func TestService_CreateRejectsInvariantViolations(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Shipment)
	}{
		{"negative storage", func(s *Shipment) { s.StorageLeft = -1 }},
		{"inverted temperature", func(s *Shipment) { s.Temp = TemperatureRange{Min: 30, Max: 10} }},
		{"same source and destination", func(s *Shipment) { s.Destination = s.Source }},
		{"missing goods type", func(s *Shipment) { s.GoodsType = "" }},
		{"non-positive footprint", func(s *Shipment) { f := 0.0; s.CarbonFootprintPerKm = &f }},
	}
	svc := NewService(nil, NewPool(), nil, zerolog.Nop())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sh := validShipment()
			tt.mutate(&sh)
			_, err := svc.Create(context.Background(), sh)
			assert.ErrorIs(t, err, ErrBadRequest)
		})
	}
	assert.Empty(t, svc.Snapshot())
}

func TestService_LoadCSVPublishesAndIndexes(t *testing.T) {
	idx := &recordingIndex{}
	svc := NewService(nil, NewPool(), idx, zerolog.Nop())

	n, err := svc.LoadCSV(context.Background(), strings.NewReader(sampleCSV))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, svc.Snapshot(), 2)
	assert.Len(t, idx.ids, 2)
	assert.Equal(t, DefaultCatalog(), svc.Catalog())
}

type stubPersister struct {
	rows    []Shipment
	catalog Catalog
}

func (s *stubPersister) Create(_ context.Context, sh Shipment) error {
	s.rows = append(s.rows, sh)
	return nil
}
func (s *stubPersister) Get(_ context.Context, id types.ID) (Shipment, error) {
	for _, sh := range s.rows {
		if sh.ID == id {
			return sh, nil
		}
	}
	return Shipment{}, ErrNotFound
}

func (s *stubPersister) ListAll(_ context.Context) ([]Shipment, error) { return s.rows, nil }
func (s *stubPersister) LoadCatalog(_ context.Context) (Catalog, error) {
	return s.catalog, nil
}

func TestService_ReloadUsesStoredCatalog(t *testing.T) {
	sh := validShipment()
	sh.ID = "stored"
	store := &stubPersister{
		rows:    []Shipment{sh},
		catalog: Catalog{{Name: "Garments", Temp: TemperatureRange{15, 25}}},
	}
	svc := NewService(store, NewPool(), nil, zerolog.Nop())

	n, err := svc.Reload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Len(t, svc.Catalog(), 1)

	got, err := svc.Get(context.Background(), "stored")
	require.NoError(t, err)
	assert.Equal(t, "EcoTrans", got.Company)
}

func TestService_RefreshKeepsCSVSeed(t *testing.T) {
	store := &stubPersister{}
	svc := NewService(store, NewPool(), nil, zerolog.Nop())

	n, err := svc.LoadCSV(context.Background(), strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Equal(t, 2, n)
	assert.Len(t, store.rows, 2)

	n, err = svc.Reload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, svc.Snapshot(), 2)
}

func TestService_ReloadDropsStaleDestinations(t *testing.T) {
	store := &stubPersister{}
	idx := &recordingIndex{}
	svc := NewService(store, NewPool(), idx, zerolog.Nop())

	_, err := svc.LoadCSV(context.Background(), strings.NewReader(sampleCSV))
	require.NoError(t, err)
	assert.Empty(t, idx.removed)

	store.rows = store.rows[:1]
	n, err := svc.Reload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []types.ID{"e5f6a7b8"}, idx.removed)
}

func TestService_GetFallsBackToStore(t *testing.T) {
	sh := validShipment()
	sh.ID = "late"
	store := &stubPersister{}
	svc := NewService(store, NewPool(), nil, zerolog.Nop())
	require.NoError(t, store.Create(context.Background(), sh))

	got, err := svc.Get(context.Background(), "late")
	require.NoError(t, err)
	assert.Equal(t, types.ID("late"), got.ID)

	_, err = svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDefaultCatalog_HasTwentyCategories(t *testing.T) {
	c := DefaultCatalog()
	assert.Len(t, c, 20)
	g, ok := c.Lookup("Frozen Food")
	require.True(t, ok)
	assert.Equal(t, TemperatureRange{Min: -25, Max: -15}, g.Temp)
}
