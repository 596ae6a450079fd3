package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/strucbio/motifq/internal/motif"
	"github.com/strucbio/motifq/internal/motifq"
)

var showSettings bool

// statusCmd summarizes workbench state.
var statusCmd = &cobra.Command{
	Use:                        "status",
	Short:                      "Show workbench state: picks, submissions, saved motifs, failures",
	SuggestionsMinimumDistance: 2,
	Example:                    "  motifq status",
	RunE: func(cmd *cobra.Command, args []string) error {
		if showSettings {
			b, err := json.MarshalIndent(viper.AllSettings(), "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(b))
			return nil
		}

		ctx := cmd.Context()
		w, cfg, cleanup, err := openWorkbench(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		views, err := w.Picks()
		if err != nil {
			return err
		}

		fmt.Printf("selection: %s\n", cfg.Selection)
		fmt.Printf("database:  %s\n", cfg.DB)

		if motif.CanSubmit(len(views)) {
			fmt.Printf("picks:     %d (submittable)\n", len(views))
		} else {
			fmt.Printf("picks:     %d (need %d to submit)\n", len(views), motif.MinMotifSize)
		}

		latest, err := w.LatestSubmission(ctx)
		switch {
		case errors.Is(err, motifq.ErrNoSubmissions):
			fmt.Println("submitted: never")
		case err != nil:
			return err
		default:
			fmt.Printf("submitted: %s (%d residues)\n", latest.SubmittedAt.Format("2006-01-02 15:04:05"), latest.ResidueCount)
		}

		motifs, err := w.ListMotifs(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("motifs:    %d saved\n", len(motifs))

		failures, err := w.Failures(ctx)
		if err != nil {
			return err
		}
		for _, f := range failures {
			fmt.Printf("FAILED %s: %s (%s)\n", f.Op, f.Detail, f.FailedAt.Format("2006-01-02 15:04:05"))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().BoolVar(&showSettings, "settings", false, "dump the resolved settings as JSON and exit")
}
