// README: API gateway; builds the gin engine and delegates to module services.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"cargoshare/internal/config"
	"cargoshare/internal/http/handlers"
	"cargoshare/internal/http/middleware"
	"cargoshare/internal/modules/location"
	"cargoshare/internal/modules/matching"
	"cargoshare/internal/modules/shipment"
)

type ServerDeps struct {
	Shipments *shipment.Service
	Matching  *matching.Service
	// Location is nil when no Redis GEO index is configured.
	Location  *location.Service
	Gatherer  prometheus.Gatherer
	RateLimit config.RateLimitConfig
	Log       zerolog.Logger
}

type Server struct {
	deps ServerDeps
}

func NewServer(deps ServerDeps) *Server {
	return &Server{deps: deps}
}

func (s *Server) Routes() http.Handler {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Recovery(s.deps.Log),
		middleware.Logging(s.deps.Log),
	)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	if s.deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.deps.Gatherer, promhttp.HandlerOpts{})))
	}

	api := r.Group("/api", middleware.RateLimit(s.deps.RateLimit.RPS, s.deps.RateLimit.Burst))

	recommendations := handlers.NewRecommendationHandler(s.deps.Matching, s.deps.Shipments)
	api.POST("/recommendations", recommendations.Recommend)
	api.POST("/recommendations/export", recommendations.Export)

	shipments := handlers.NewShipmentHandler(s.deps.Shipments, s.deps.Matching)
	api.POST("/shipments", shipments.Create)
	api.GET("/shipments/:id", shipments.Get)
	api.GET("/shipments/:id/carbon-impact", shipments.CarbonImpact)
	api.GET("/goods-types", shipments.GoodsTypes)

	locations := handlers.NewLocationHandler(s.deps.Location)
	api.GET("/shipments/nearby", locations.Nearby)

	return r
}
