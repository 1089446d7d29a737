package http

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	cacheMetricsMu          sync.Mutex
	cacheMetricsInitialized bool

	cacheHitCounter      *prometheus.CounterVec
	cacheMissCounter     *prometheus.CounterVec
	reportBuildHistogram *prometheus.HistogramVec
	cacheMetricsError    error
)

// SetupCacheMetrics registers Prometheus metrics observing the report cache.
// Registration happens once; subsequent calls return the first outcome.
func SetupCacheMetrics(reg prometheus.Registerer) error {
	cacheMetricsMu.Lock()
	defer cacheMetricsMu.Unlock()
	if cacheMetricsInitialized {
		return cacheMetricsError
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	cacheHitCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "finclose_consol_cache_hits_total",
		Help: "Number of cache hits for consolidation reports.",
	}, []string{"report", "company", "period"})
	cacheMissCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "finclose_consol_cache_miss_total",
		Help: "Number of cache misses for consolidation reports.",
	}, []string{"report", "company", "period"})
	reportBuildHistogram = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "finclose_consol_report_build_duration_seconds",
		Help:    "Duration required to build consolidation reports.",
		Buckets: prometheus.DefBuckets,
	}, []string{"report", "company", "period"})

	for _, collector := range []prometheus.Collector{cacheHitCounter, cacheMissCounter, reportBuildHistogram} {
		if err := reg.Register(collector); err != nil {
			var already prometheus.AlreadyRegisteredError
			if errors.As(err, &already) {
				switch c := already.ExistingCollector.(type) {
				case *prometheus.CounterVec:
					if collector == cacheHitCounter {
						cacheHitCounter = c
					} else {
						cacheMissCounter = c
					}
				case *prometheus.HistogramVec:
					reportBuildHistogram = c
				default:
					cacheMetricsError = fmt.Errorf("consol cache metrics: unexpected collector type %T", c)
				}
				continue
			}
			cacheMetricsError = err
			cacheHitCounter = nil
			cacheMissCounter = nil
			reportBuildHistogram = nil
			cacheMetricsInitialized = true
			return cacheMetricsError
		}
	}

	cacheMetricsInitialized = true
	return cacheMetricsError
}

func recordCacheHit(report string, companyID int64, period string) {
	if cacheHitCounter == nil {
		return
	}
	cacheHitCounter.WithLabelValues(report, strconv.FormatInt(companyID, 10), period).Inc()
}

func recordCacheMiss(report string, companyID int64, period string) {
	if cacheMissCounter == nil {
		return
	}
	cacheMissCounter.WithLabelValues(report, strconv.FormatInt(companyID, 10), period).Inc()
}

func observeReportBuild(report string, companyID int64, period string, duration time.Duration) {
	if reportBuildHistogram == nil {
		return
	}
	reportBuildHistogram.WithLabelValues(report, strconv.FormatInt(companyID, 10), period).Observe(duration.Seconds())
}
