// Package metrics defines the Prometheus collectors for pipeline runs and
// exposes them either over HTTP (cron mode) or through a Pushgateway (one-shot mode).
package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"

	"ContentPipeline/internal/domain"
)

// Metrics holds all Prometheus collectors for the pipeline.
type Metrics struct {
	registry *prometheus.Registry

	ItemsCollected  *prometheus.CounterVec
	CategoryErrors  *prometheus.CounterVec
	ItemsEnriched   prometheus.Counter
	ItemsDropped    prometheus.Counter
	RowsInserted    prometheus.Counter
	RunsTotal       *prometheus.CounterVec
	StageDuration   *prometheus.HistogramVec
	LastSuccessTime prometheus.Gauge
}

// New creates the collectors on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ItemsCollected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "content_pipeline_items_collected_total",
				Help: "Accepted news items by category.",
			},
			[]string{"category"},
		),
		CategoryErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "content_pipeline_category_errors_total",
				Help: "Failed category searches by category.",
			},
			[]string{"category"},
		),
		ItemsEnriched: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "content_pipeline_items_enriched_total",
				Help: "Items that received generated fields.",
			},
		),
		ItemsDropped: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "content_pipeline_items_dropped_total",
				Help: "Items dropped because generation or parsing failed.",
			},
		),
		RowsInserted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "content_pipeline_rows_inserted_total",
				Help: "Suggestion rows inserted.",
			},
		),
		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "content_pipeline_runs_total",
				Help: "Pipeline runs by outcome (published, no_articles, no_enriched, error).",
			},
			[]string{"outcome"},
		),
		StageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "content_pipeline_stage_duration_seconds",
				Help:    "Stage latency in seconds.",
				Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"stage"},
		),
		LastSuccessTime: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "content_pipeline_last_success_timestamp_seconds",
				Help: "Unix time of the last run that finished without error.",
			},
		),
	}

	m.registry.MustRegister(
		m.ItemsCollected,
		m.CategoryErrors,
		m.ItemsEnriched,
		m.ItemsDropped,
		m.RowsInserted,
		m.RunsTotal,
		m.StageDuration,
		m.LastSuccessTime,
	)

	return m
}

// ObserveStage records how long a stage took.
func (m *Metrics) ObserveStage(stage string, started time.Time) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(stage).Observe(time.Since(started).Seconds())
}

// AddCollected counts accepted items for a category.
func (m *Metrics) AddCollected(category string, n int) {
	if m == nil {
		return
	}
	m.ItemsCollected.WithLabelValues(category).Add(float64(n))
}

// IncCategoryError counts a failed category search.
func (m *Metrics) IncCategoryError(category string) {
	if m == nil {
		return
	}
	m.CategoryErrors.WithLabelValues(category).Inc()
}

// AddEnrichment counts enriched and dropped items.
func (m *Metrics) AddEnrichment(enriched, dropped int) {
	if m == nil {
		return
	}
	m.ItemsEnriched.Add(float64(enriched))
	m.ItemsDropped.Add(float64(dropped))
}

// AddInserted counts inserted suggestion rows.
func (m *Metrics) AddInserted(n int) {
	if m == nil {
		return
	}
	m.RowsInserted.Add(float64(n))
}

// ObserveRun records the outcome of a finished run.
func (m *Metrics) ObserveRun(report domain.RunReport, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.RunsTotal.WithLabelValues("error").Inc()
		return
	}
	m.RunsTotal.WithLabelValues(string(report.Outcome)).Inc()
	m.LastSuccessTime.SetToCurrentTime()
}

// Registry exposes the private registry for tests and exporters.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the Prometheus scrape HTTP handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Push sends the current values to a Pushgateway.
func (m *Metrics) Push(ctx context.Context, gatewayURL, job string) error {
	if err := push.New(gatewayURL, job).Gatherer(m.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}

// StartServer serves /metrics on addr until the returned shutdown func is called.
func (m *Metrics) StartServer(addr string, logger *slog.Logger) (shutdown func(context.Context) error) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("metrics server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server error", "error", err)
		}
	}()

	return server.Shutdown
}
