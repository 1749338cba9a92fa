package providers

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"signalkit/internal/models"
	"signalkit/internal/structures"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	ObservePersistenceDuration(duration time.Duration)
	IncBannerEvent(bannerType string, event string)
	IncBannerHidden(bannerType string, reason string)
}

type MetricsProvider struct {
	requestsTotal       *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	cacheHits           prometheus.Counter
	cacheMisses         prometheus.Counter
	persistenceDuration prometheus.Histogram
	bannerEvents        *prometheus.CounterVec
	bannerHidden        *prometheus.CounterVec
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *MetricsProvider) ObservePersistenceDuration(duration time.Duration) {
	m.persistenceDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) IncBannerEvent(bannerType string, event string) {
	m.bannerEvents.WithLabelValues(bannerType, event).Inc()
}

func (m *MetricsProvider) IncBannerHidden(bannerType string, reason string) {
	m.bannerHidden.WithLabelValues(bannerType, reason).Inc()
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config, store models.OptionStoreInterface) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	m := &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "signalkit_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "signalkit_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "signalkit_cache_hits_total",
			Help: "Total number of cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "signalkit_cache_misses_total",
			Help: "Total number of cache misses",
		}),

		persistenceDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "signalkit_persistence_duration_seconds",
			Help:    "Duration of options store persistence in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		bannerEvents: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "signalkit_banner_events_total",
			Help: "Banner impressions, clicks and dismissals",
		}, []string{"banner", "event"}),

		bannerHidden: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "signalkit_banner_hidden_total",
			Help: "Banner evaluations that ended hidden, by the rule that hid them",
		}, []string{"banner", "reason"}),
	}

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "signalkit_options_total",
		Help: "Number of keys in the options store",
	}, func() float64 {
		return float64(store.Len())
	})

	return m
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) ObservePersistenceDuration(_ time.Duration)       {}
func (n *noopMetrics) IncBannerEvent(_ string, _ string)                {}
func (n *noopMetrics) IncBannerHidden(_ string, _ string)               {}
