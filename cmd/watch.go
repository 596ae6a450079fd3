package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"log/slog"

	"github.com/spf13/cobra"

	"github.com/strucbio/motifq/internal/motifq"
)

// watchCmd keeps pick state synchronized while the viewer is in use.
var watchCmd = &cobra.Command{
	Use:                        "watch",
	Short:                      "Watch the selection document and re-sync picks on change",
	SuggestionsMinimumDistance: 2,
	Example:                    "  motifq watch",
	Long: `Watch the selection document and reconcile pick state every time the
viewer rewrites it. New picks are seeded with their native residue type,
removed picks are pruned.

With watch.metrics-addr configured, Prometheus metrics are served for the
lifetime of the watch.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		w, cfg, cleanup, err := openWorkbench(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if cfg.Watch.MetricsAddr != "" {
			go func() {
				if err := motifq.ServeMetrics(ctx, cfg.Watch.MetricsAddr, slog.Default()); err != nil && !errors.Is(err, context.Canceled) {
					slog.Error("Metrics server stopped", "error", err)
				}
			}()
		}

		err = w.WatchSelection(ctx, cfg.Selection, cfg.Watch.Debounce)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
