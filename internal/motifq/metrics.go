package motifq

import (
	"context"
	"errors"
	"net/http"
	"time"

	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	selectionSyncsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "motifq_selection_syncs_total",
		Help: "Number of pick synchronization runs against the selection history.",
	})

	trackedPicks = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "motifq_tracked_picks",
		Help: "Number of picks currently tracked by the workbench.",
	})

	submissionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "motifq_submissions_total",
		Help: "Number of motif queries submitted to the search service.",
	})

	validationFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "motifq_validation_failures_total",
		Help: "Number of query builds rejected by validation, by failure kind.",
	}, []string{"kind"})

	motifSavesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "motifq_motif_saves_total",
		Help: "Number of motifs saved to the catalog.",
	})
)

// ServeMetrics exposes Prometheus metrics on addr until the context is
// cancelled. Used by watch mode; one-shot commands have nothing to scrape.
func ServeMetrics(ctx context.Context, addr string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{Addr: addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	logger.Info("Serving metrics", "addr", addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
