// README: Entry point; loads config, wires services, starts HTTP server and the pool refresher.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"cargoshare/internal/config"
	httptransport "cargoshare/internal/http"
	"cargoshare/internal/infra"
	"cargoshare/internal/logger"
	"cargoshare/internal/metrics"
	"cargoshare/internal/modules/location"
	"cargoshare/internal/modules/matching"
	"cargoshare/internal/modules/shipment"
	"cargoshare/migrations"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := zerolog.New(os.Stderr)
		boot.Fatal().Err(err).Msg("load config")
	}
	log := logger.New(cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store shipment.Persister
	if cfg.DB.DSN != "" {
		db, err := infra.NewDB(ctx, cfg.DB.DSN)
		if err != nil {
			log.Fatal().Err(err).Msg("connect postgres")
		}
		defer db.Close()
		if err := infra.Migrate(ctx, db, migrations.FS); err != nil {
			log.Fatal().Err(err).Msg("migrate postgres")
		}
		store = shipment.NewStore(db)
	}

	var locationSvc *location.Service
	var indexer shipment.DestinationIndexer
	if cfg.Redis.Addr != "" {
		redisClient, err := infra.NewRedis(ctx, cfg.Redis.Addr)
		if err != nil {
			log.Fatal().Err(err).Msg("connect redis")
		}
		defer redisClient.Close()
		locationSvc = location.NewService(location.NewStore(redisClient))
		indexer = locationSvc
	}

	pool := shipment.NewPool()
	shipmentSvc := shipment.NewService(store, pool, indexer, log.With().Str("module", "shipment").Logger())
	loadPool(ctx, cfg, shipmentSvc, log)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg, pool.Len)

	matchingSvc := matching.NewService(shipmentSvc, cfg.Matching, m, log.With().Str("module", "matching").Logger())

	if cfg.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	api := httptransport.NewServer(httptransport.ServerDeps{
		Shipments: shipmentSvc,
		Matching:  matchingSvc,
		Location:  locationSvc,
		Gatherer:  reg,
		RateLimit: cfg.RateLimit,
		Log:       log,
	})
	server := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           api.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go shipmentSvc.RunRefresher(ctx, time.Duration(cfg.Pool.RefreshSeconds)*time.Second)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("http shutdown")
		}
	}()

	log.Info().Str("addr", cfg.HTTP.Addr).Int("shipments", pool.Len()).Msg("cargoshare api listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("http server")
	}
	log.Info().Msg("cargoshare api stopped")
}

// loadPool fills the pool from Postgres, falling back to the seed CSV when the store is empty or absent.
func loadPool(ctx context.Context, cfg config.Config, svc *shipment.Service, log zerolog.Logger) {
	n, err := svc.Reload(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("load shipment pool")
	}
	if n > 0 || cfg.Pool.SeedCSV == "" {
		log.Info().Int("shipments", n).Msg("shipment pool loaded")
		return
	}

	f, err := os.Open(cfg.Pool.SeedCSV)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Pool.SeedCSV).Msg("open seed csv")
	}
	defer f.Close()
	n, err = svc.LoadCSV(ctx, f)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Pool.SeedCSV).Msg("read seed csv")
	}
	log.Info().Int("shipments", n).Str("path", cfg.Pool.SeedCSV).Msg("shipment pool seeded from csv")
}
