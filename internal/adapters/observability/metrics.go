package observability

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/rs/zerolog/log"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "airports", Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "airports", Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	Lookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "airports", Name: "lookups_total", Help: "Page lookups by outcome."},
		[]string{"page", "outcome"}, // outcome: found|not_found|empty
	)
	CacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "airports", Name: "cache_events_total", Help: "Cache hits/misses/sets/dels."},
		[]string{"cache", "event"}, // event: hit|miss|set|del|error
	)
	DatasetRecords = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Namespace: "airports", Name: "dataset_records", Help: "Records loaded per collection."},
		[]string{"collection"},
	)
	ExportedPages = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "airports", Name: "exported_pages_total", Help: "Static pages written."},
		[]string{"kind"},
	)
)

// Serve exposes reg on a separate listener and returns the running server.
// Empty addr disables it and returns nil.
func Serve(addr string, reg *prometheus.Registry) (*http.Server, error) {
	if addr == "" {
		return nil, nil
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics listen %s: %w", addr, err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", MetricsHandler(reg))
	srv := &http.Server{
		Addr:              ln.Addr().String(),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("metrics server listening")
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
	return srv, nil
}

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(HTTPRequests, HTTPLatency, Lookups, CacheEvents, DatasetRecords, ExportedPages)
	return reg
}

// Push sends every series in reg to a Pushgateway under job. Batch commands
// use it since nothing scrapes them.
func Push(ctx context.Context, url, job string, reg *prometheus.Registry) error {
	if err := push.New(url, job).Gatherer(reg).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics to %s: %w", url, err)
	}
	return nil
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func ObserveLookup(page, outcome string) {
	Lookups.WithLabelValues(page, outcome).Inc()
}

func ObserveCache(cache, event string) {
	CacheEvents.WithLabelValues(cache, event).Inc()
}

func SetDatasetSize(airports, countries int) {
	DatasetRecords.WithLabelValues("airports").Set(float64(airports))
	DatasetRecords.WithLabelValues("countries").Set(float64(countries))
}

func ObserveExport(kind string, n int) {
	ExportedPages.WithLabelValues(kind).Add(float64(n))
}
