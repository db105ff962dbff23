// README: Bench cases: environment, API contract and recommendation throughput.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"cargoshare/migrations"
)

type Status string

const (
	StatusPass Status = "PASS"
	StatusFail Status = "FAIL"
	StatusSkip Status = "SKIP"
)

type Runner struct {
	cfg   Config
	httpc *http.Client
	db    *pgxpool.Pool
	redis *redis.Client
}

type Result struct {
	Status  Status
	Latency time.Duration
	Note    string
}

type TestCase struct {
	Name string
	Run  func(ctx context.Context, r *Runner) Result
}

func NewRunner(cfg Config) *Runner {
	return &Runner{cfg: cfg, httpc: &http.Client{Timeout: 10 * time.Second}}
}

func (r *Runner) RunAll(ctx context.Context) []Result {
	if r.cfg.DSN != "" {
		if db, err := pgxpool.New(ctx, r.cfg.DSN); err == nil {
			r.db = db
			defer db.Close()
		}
	}
	if r.cfg.RedisAddr != "" {
		r.redis = redis.NewClient(&redis.Options{Addr: r.cfg.RedisAddr})
		defer r.redis.Close()
	}

	tests := r.cases()
	results := make([]Result, 0, len(tests))
	for _, tc := range tests {
		res := tc.Run(ctx, r)
		results = append(results, res)
		fmt.Printf("%-5s %s", res.Status, tc.Name)
		if res.Latency > 0 {
			fmt.Printf(" (%s)", res.Latency.Round(time.Microsecond))
		}
		if res.Note != "" {
			fmt.Printf(" - %s", res.Note)
		}
		fmt.Println()
	}
	return results
}

// benchShipment is a pool entry the API cases create and then query against.
var benchShipment = map[string]any{
	"shipment_id":             "BENCH-TRUCK",
	"timestamp":               "2025-03-01 08:00:00",
	"company":                 "Bench Freight",
	"goods_type":              "Garments",
	"source":                  "Chicago",
	"destination":             "Milwaukee",
	"source_lat":              41.8781,
	"source_lon":              -87.6298,
	"dest_lat":                43.0389,
	"dest_lon":                -87.9065,
	"units":                   20,
	"storage_left":            150,
	"truck_type":              "Medium Truck",
	"scheduled_delivery_time": "2025-03-02 12:00:00",
	"carbon_footprint_per_km": 1.1,
}

var benchQuery = map[string]any{
	"shipment_id": "BENCH-QUERY",
	"timestamp":   "2025-03-01 09:00:00",
	"company":     "Bench Shipper",
	"goods_type":  "Garments",
	"source":      "Chicago",
	"destination": "Milwaukee",
	"source_lat":  41.88,
	"source_lon":  -87.63,
	"dest_lat":    43.05,
	"dest_lon":    -87.91,
	"units":       30,
}

func withField(body map[string]any, key string, value any) map[string]any {
	out := make(map[string]any, len(body)+1)
	for k, v := range body {
		out[k] = v
	}
	out[key] = value
	return out
}

func (r *Runner) cases() []TestCase {
	base := r.cfg.BaseURL
	return []TestCase{
		{Name: "Env: Postgres connect", Run: pingPostgres},
		{Name: "Env: Redis connect", Run: pingRedis},
		{Name: "Migration: tables exist", Run: tablesExist},

		httpCase("API: health", http.MethodGet, base+"/health", nil, http.StatusOK),
		httpCase("API: goods types", http.MethodGet, base+"/api/goods-types", nil, http.StatusOK),
		httpCase("Shipment: create truck", http.MethodPost, base+"/api/shipments", benchShipment, http.StatusCreated),
		httpCase("Shipment: get truck", http.MethodGet, base+"/api/shipments/BENCH-TRUCK", nil, http.StatusOK),
		httpCase("Shipment: unknown id -> 404", http.MethodGet, base+"/api/shipments/does-not-exist", nil, http.StatusNotFound),
		httpCase("Shipment: same source and destination -> 400", http.MethodPost, base+"/api/shipments",
			withField(benchShipment, "destination", "Chicago"), http.StatusBadRequest),
		httpCase("Matching: recommend", http.MethodPost, base+"/api/recommendations", benchQuery, http.StatusOK),
		httpCase("Matching: zero units -> 422", http.MethodPost, base+"/api/recommendations",
			withField(benchQuery, "units", 0), http.StatusUnprocessableEntity),
		httpCase("Matching: bad timestamp -> 400", http.MethodPost, base+"/api/recommendations",
			withField(benchQuery, "timestamp", "soon"), http.StatusBadRequest),
		httpCase("Matching: zero n -> 400", http.MethodPost, base+"/api/recommendations",
			withField(benchQuery, "num_recommendations", 0), http.StatusBadRequest),
		httpCase("Matching: export xlsx", http.MethodPost, base+"/api/recommendations/export", benchQuery, http.StatusOK),
		httpCase("Carbon: unknown pair -> 404", http.MethodGet, base+"/api/shipments/BENCH-TRUCK/carbon-impact?with=does-not-exist", nil, http.StatusNotFound),
		{
			Name: "Location: nearby destinations",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.redis == nil {
					return Result{Status: StatusSkip, Note: "redis not configured"}
				}
				return httpCase("", http.MethodGet, base+"/api/shipments/nearby?lat=43.04&lng=-87.91&radius_km=10", nil, http.StatusOK).Run(ctx, r)
			},
		},
		{
			Name: "Perf: recommendation throughput",
			Run: func(ctx context.Context, r *Runner) Result {
				return perfLoad(ctx, r, base+"/api/recommendations", benchQuery)
			},
		},
	}
}

func pingPostgres(ctx context.Context, r *Runner) Result {
	if r.db == nil {
		return Result{Status: StatusSkip, Note: "db not configured"}
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := r.db.Ping(ctx); err != nil {
		return Result{Status: StatusFail, Note: err.Error()}
	}
	return Result{Status: StatusPass}
}

func pingRedis(ctx context.Context, r *Runner) Result {
	if r.redis == nil {
		return Result{Status: StatusSkip, Note: "redis not configured"}
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := r.redis.Ping(ctx).Err(); err != nil {
		return Result{Status: StatusFail, Note: err.Error()}
	}
	return Result{Status: StatusPass}
}

func tablesExist(ctx context.Context, r *Runner) Result {
	if r.db == nil {
		return Result{Status: StatusSkip, Note: "db not configured"}
	}
	tables, err := migrationTables(migrations.FS)
	if err != nil {
		return Result{Status: StatusFail, Note: err.Error()}
	}
	for _, t := range tables {
		var exists bool
		err := r.db.QueryRow(ctx,
			"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name=$1)", t,
		).Scan(&exists)
		if err != nil {
			return Result{Status: StatusFail, Note: err.Error()}
		}
		if !exists {
			return Result{Status: StatusFail, Note: "missing table: " + t}
		}
	}
	return Result{Status: StatusPass, Note: strings.Join(tables, ",")}
}

func httpCase(name, method, url string, body any, want int) TestCase {
	return TestCase{
		Name: name,
		Run: func(ctx context.Context, r *Runner) Result {
			var reader io.Reader
			if body != nil {
				b, _ := json.Marshal(body)
				reader = strings.NewReader(string(b))
			}
			req, err := http.NewRequestWithContext(ctx, method, url, reader)
			if err != nil {
				return Result{Status: StatusFail, Note: err.Error()}
			}
			req.Header.Set("Content-Type", "application/json")
			start := time.Now()
			resp, err := r.httpc.Do(req)
			if err != nil {
				return Result{Status: StatusFail, Note: err.Error()}
			}
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
			latency := time.Since(start)

			status := StatusPass
			if resp.StatusCode != want {
				status = StatusFail
			}
			return Result{Status: status, Latency: latency, Note: fmt.Sprintf("status=%d", resp.StatusCode)}
		},
	}
}

func perfLoad(ctx context.Context, r *Runner, url string, payload any) Result {
	b, _ := json.Marshal(payload)
	end := time.Now().Add(r.cfg.Duration)
	var count, errCount, throttled atomic.Int64
	var wg sync.WaitGroup

	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(end) && ctx.Err() == nil {
				req, _ := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(b)))
				req.Header.Set("Content-Type", "application/json")
				resp, err := r.httpc.Do(req)
				if err != nil {
					errCount.Add(1)
					continue
				}
				_, _ = io.Copy(io.Discard, resp.Body)
				_ = resp.Body.Close()
				if resp.StatusCode == http.StatusTooManyRequests {
					throttled.Add(1)
					continue
				}
				count.Add(1)
			}
		}()
	}
	wg.Wait()

	if count.Load() == 0 {
		return Result{Status: StatusFail, Note: "no requests completed"}
	}
	rps := float64(count.Load()) / r.cfg.Duration.Seconds()
	return Result{Status: StatusPass, Note: fmt.Sprintf("rps=%.1f errors=%d throttled=%d", rps, errCount.Load(), throttled.Load())}
}

var createTableRe = regexp.MustCompile(`(?i)create\s+table\s+if\s+not\s+exists\s+([a-zA-Z0-9_]+)`)

func migrationTables(fsys fs.FS) ([]string, error) {
	names, err := fs.Glob(fsys, "*.sql")
	if err != nil {
		return nil, err
	}
	var tables []string
	for _, name := range names {
		b, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, err
		}
		for _, m := range createTableRe.FindAllStringSubmatch(string(b), -1) {
			tables = append(tables, m[1])
		}
	}
	return tables, nil
}
