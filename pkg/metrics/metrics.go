// Package metrics provides Prometheus metrics for the panel.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"tableflip.dev/syncpanel/pkg/logging"
)

var (
	passesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "syncpanel_reconcile_passes_total",
			Help: "Total number of reconciliation passes by result",
		},
		[]string{"result"},
	)

	passDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "syncpanel_reconcile_duration_seconds",
			Help:    "Duration of reconciliation passes including daemon calls",
			Buckets: prometheus.DefBuckets,
		},
	)

	tableChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "syncpanel_table_changes_total",
			Help: "Rows created, updated or deleted by reconciliation",
		},
		[]string{"table", "action"},
	)

	tableRows = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "syncpanel_table_rows",
			Help: "Current number of rows per table",
		},
		[]string{"table"},
	)

	transferRate = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "syncpanel_transfer_bytes_per_second",
			Help: "Transfer rate reported by the daemon",
		},
		[]string{"direction"},
	)

	mutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "syncpanel_mutations_total",
			Help: "User initiated daemon mutations by operation and result",
		},
		[]string{"operation", "result"},
	)
)

// RecordPass records a finished reconciliation pass.
func RecordPass(result string, duration time.Duration) {
	passesTotal.WithLabelValues(result).Inc()
	passDuration.Observe(duration.Seconds())
}

// RecordChange records a row change in table ("folders" or "devices").
func RecordChange(table, action string) {
	tableChanges.WithLabelValues(table, action).Inc()
}

// SetRows updates the row gauges.
func SetRows(folders, devices int) {
	tableRows.WithLabelValues("folders").Set(float64(folders))
	tableRows.WithLabelValues("devices").Set(float64(devices))
}

// SetTransfer updates the transfer gauges.
func SetTransfer(upload, download float64) {
	transferRate.WithLabelValues("up").Set(upload)
	transferRate.WithLabelValues("down").Set(download)
}

// RecordMutation records the outcome of a user initiated operation.
func RecordMutation(operation, result string) {
	mutationsTotal.WithLabelValues(operation, result).Inc()
}

// Handler returns the HTTP handler for the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Serve exposes Handler on addr until ctx is done.
func Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()
	logging.Info("metrics server listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
