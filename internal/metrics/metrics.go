// README: Prometheus collectors for recommendation traffic and pool size.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	recommendations *prometheus.CounterVec
	scanned         prometheus.Histogram
	latency         prometheus.Histogram
	poolSize        prometheus.GaugeFunc
}

// New creates the collectors and registers them on reg. poolSize is read at scrape time.
func New(reg prometheus.Registerer, poolSize func() int) *Metrics {
	m := &Metrics{
		recommendations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cargoshare_recommendations_total",
			Help: "Recommendation requests by outcome.",
		}, []string{"outcome"}),
		scanned: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cargoshare_candidates_scanned",
			Help:    "Candidates left after the capacity, identity and time filters.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cargoshare_recommendation_seconds",
			Help:    "Time spent ranking a recommendation request.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
		}),
		poolSize: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "cargoshare_pool_size",
			Help: "Shipments in the current pool snapshot.",
		}, func() float64 { return float64(poolSize()) }),
	}
	reg.MustRegister(m.recommendations, m.scanned, m.latency, m.poolSize)
	return m
}

func (m *Metrics) ObserveRecommendation(outcome string, scanned int, elapsed time.Duration) {
	m.recommendations.WithLabelValues(outcome).Inc()
	m.scanned.Observe(float64(scanned))
	m.latency.Observe(elapsed.Seconds())
}
