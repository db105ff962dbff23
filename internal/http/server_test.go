// README: Route tests for the HTTP API against an in-memory pool.
package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cargoshare/internal/config"
	apihttp "cargoshare/internal/http"
	"cargoshare/internal/metrics"
	"cargoshare/internal/modules/location"
	"cargoshare/internal/modules/matching"
	"cargoshare/internal/modules/shipment"
	"cargoshare/internal/types"
)

type memoryIndex struct {
	points map[types.ID]types.Point
}

func (m *memoryIndex) SetDestination(_ context.Context, id types.ID, pos types.Point) error {
	m.points[id] = pos
	return nil
}

func (m *memoryIndex) RemoveDestination(_ context.Context, id types.ID) error {
	delete(m.points, id)
	return nil
}

func (m *memoryIndex) NearbyDestinations(_ context.Context, p types.Point, radiusKm float64, _ int) ([]location.DestinationHit, error) {
	var hits []location.DestinationHit
	for id, pos := range m.points {
		if location.DistanceKm(p, pos) <= radiusKm {
			hits = append(hits, location.DestinationHit{ShipmentID: id, Position: pos})
		}
	}
	return hits, nil
}

var (
	posted    = time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	chicago   = types.Point{Lat: 41.8781, Lng: -87.6298}
	milwaukee = types.Point{Lat: 43.0389, Lng: -87.9065}
	houston   = types.Point{Lat: 29.7604, Lng: -95.3698}
)

func seed() []shipment.Shipment {
	footprint := 1.1
	return []shipment.Shipment{
		{
			ID: "A", Timestamp: posted, Company: "GlobalMove", GoodsType: "Garments",
			Source: "Chicago", Destination: "Milwaukee", SourcePos: chicago, DestPos: milwaukee,
			Units: 20, StorageLeft: 40, Temp: shipment.TemperatureRange{Min: 15, Max: 25},
			CarbonFootprintPerKm: &footprint,
		},
		{
			ID: "B", Timestamp: posted, Company: "FastFreight", GoodsType: "Textiles",
			Source: "Chicago", Destination: "Houston", SourcePos: chicago, DestPos: houston,
			Units: 20, StorageLeft: 80, Temp: shipment.TemperatureRange{Min: 15, Max: 30},
			CarbonFootprintPerKm: &footprint,
		},
	}
}

func newTestAPI(t *testing.T, withIndex bool) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := zerolog.Nop()

	var locSvc *location.Service
	var indexer shipment.DestinationIndexer
	if withIndex {
		locSvc = location.NewService(&memoryIndex{points: map[types.ID]types.Point{}})
		indexer = locSvc
	}
	shipSvc := shipment.NewService(nil, shipment.NewPool(), indexer, log)
	for _, sh := range seed() {
		_, err := shipSvc.Create(context.Background(), sh)
		require.NoError(t, err)
	}

	reg := prometheus.NewRegistry()
	m := metrics.New(reg, func() int { return len(shipSvc.Snapshot()) })
	matchSvc := matching.NewService(shipSvc, config.MatchingConfig{
		NumRecommendations: 5,
		DestThresholdKm:    50,
		TimeThresholdHours: 48,
		TempOverlap:        matching.DefaultTempOverlap,
		Workers:            1,
		ScanTimeout:        time.Second,
	}, m, log)

	return apihttp.NewServer(apihttp.ServerDeps{
		Shipments: shipSvc,
		Matching:  matchSvc,
		Location:  locSvc,
		Gatherer:  reg,
		Log:       log,
	}).Routes()
}

func do(h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func queryBody() map[string]any {
	return map[string]any{
		"shipment_id": "NEW001",
		"timestamp":   "2025-03-01 10:00:00",
		"company":     "EcoTrans",
		"goods_type":  "Garments",
		"source":      "Chicago",
		"destination": "Milwaukee",
		"source_lat":  chicago.Lat,
		"source_lon":  chicago.Lng,
		"dest_lat":    milwaukee.Lat + 0.05,
		"dest_lon":    milwaukee.Lng,
		"units":       30,
	}
}

type recommendResponse struct {
	Recommendations []matching.Result `json:"recommendations"`
	Fallback        bool              `json:"fallback"`
}

func TestRecommend_Matched(t *testing.T) {
	api := newTestAPI(t, false)
	w := do(api, http.MethodPost, "/api/recommendations", queryBody())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp recommendResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Recommendations, 1)
	assert.False(t, resp.Fallback)

	r := resp.Recommendations[0]
	assert.Equal(t, types.ID("A"), r.ShipmentID)
	assert.Equal(t, r.Score, float64(int(r.Score*10+0.5))/10, "score rounded to one decimal")
	require.NotNil(t, r.CarbonSavings)
	assert.Equal(t, 0.33, *r.CarbonSavings)
	assert.Equal(t, 75.0, r.SpaceUsagePercent)
}

func TestRecommend_Fallback(t *testing.T) {
	api := newTestAPI(t, false)
	body := queryBody()
	body["dest_threshold_km"] = 1.0
	w := do(api, http.MethodPost, "/api/recommendations", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp recommendResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Recommendations, 1)
	assert.True(t, resp.Fallback)
	assert.True(t, resp.Recommendations[0].ExceedsThreshold)
	assert.Greater(t, resp.Recommendations[0].Distance, 1.0)
}

func TestRecommend_ErrorMapping(t *testing.T) {
	api := newTestAPI(t, false)

	tests := []struct {
		name   string
		mutate func(map[string]any)
		want   int
	}{
		{"unparsable timestamp", func(b map[string]any) { b["timestamp"] = "tomorrow" }, http.StatusUnprocessableEntity},
		{"unparsable delivery time", func(b map[string]any) { b["scheduled_delivery_time"] = "soon" }, http.StatusUnprocessableEntity},
		{"missing timestamp", func(b map[string]any) { delete(b, "timestamp") }, http.StatusUnprocessableEntity},
		{"bad parameter", func(b map[string]any) { b["num_recommendations"] = 0 }, http.StatusBadRequest},
		{"zero units", func(b map[string]any) { b["units"] = 0 }, http.StatusUnprocessableEntity},
		{"missing goods", func(b map[string]any) { delete(b, "goods_type") }, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := queryBody()
			tt.mutate(body)
			w := do(api, http.MethodPost, "/api/recommendations", body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}

	for _, mutate := range []func(map[string]any){
		func(b map[string]any) { b["timestamp"] = "tomorrow" },
		func(b map[string]any) { delete(b, "timestamp") },
	} {
		body := queryBody()
		mutate(body)
		w := do(api, http.MethodPost, "/api/recommendations", body)
		var resp struct {
			Field string `json:"field"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "timestamp", resp.Field, w.Body.String())
	}

	req := httptest.NewRequest(http.MethodPost, "/api/recommendations", strings.NewReader("{"))
	w := httptest.NewRecorder()
	api.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecommend_Export(t *testing.T) {
	api := newTestAPI(t, false)
	w := do(api, http.MethodPost, "/api/recommendations/export", queryBody())
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "recommendations-NEW001.xlsx")
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")), "xlsx is a zip archive")
}

func TestShipments_CreateAndGet(t *testing.T) {
	api := newTestAPI(t, true)
	body := queryBody()
	body["shipment_id"] = ""
	body["storage_left"] = 120

	w := do(api, http.MethodPost, "/api/shipments", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created shipment.Shipment
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, shipment.TemperatureRange{Min: 15, Max: 25}, created.Temp, "temperature defaults from the catalog")
	assert.NotNil(t, created.ETA)

	w = do(api, http.MethodGet, "/api/shipments/"+string(created.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(api, http.MethodGet, "/api/shipments/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	body["destination"] = body["source"]
	w = do(api, http.MethodPost, "/api/shipments", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestShipments_Nearby(t *testing.T) {
	api := newTestAPI(t, true)
	w := do(api, http.MethodGet, "/api/shipments/nearby?lat=43.04&lng=-87.91&radius_km=25", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Shipments []location.DestinationHit `json:"shipments"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Shipments, 1)
	assert.Equal(t, types.ID("A"), resp.Shipments[0].ShipmentID)

	w = do(api, http.MethodGet, "/api/shipments/nearby?lat=x&lng=1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	noIndex := newTestAPI(t, false)
	w = do(noIndex, http.MethodGet, "/api/shipments/nearby?lat=43&lng=-87", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestShipments_CarbonImpact(t *testing.T) {
	api := newTestAPI(t, false)
	w := do(api, http.MethodGet, "/api/shipments/A/carbon-impact?with=B", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var impact matching.Impact
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &impact))
	assert.Equal(t, 2.2, impact.SeparateEmissions)
	assert.Equal(t, 30.0, impact.SavingsPercent)

	w = do(api, http.MethodGet, "/api/shipments/A/carbon-impact", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGoodsTypesHealthAndMetrics(t *testing.T) {
	api := newTestAPI(t, false)

	w := do(api, http.MethodGet, "/api/goods-types", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Frozen Food")

	w = do(api, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	do(api, http.MethodPost, "/api/recommendations", queryBody())
	w = do(api, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `cargoshare_recommendations_total{outcome="matched"} 1`)
	assert.Contains(t, w.Body.String(), "cargoshare_pool_size 2")
}
