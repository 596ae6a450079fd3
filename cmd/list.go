package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/strucbio/motifq/internal/motif"
	"github.com/strucbio/motifq/internal/motifq"
)

// listCmd renders the visible window of the selection history.
var listCmd = &cobra.Command{
	Use:                        "list",
	Short:                      "List picked residues in history order",
	Aliases:                    []string{"ls"},
	SuggestionsMinimumDistance: 2,
	Example:                    "  motifq list",
	Long: `List the picked residues motifq is tracking, in history order.

Each line shows the pick's position, id, resolved location, and its current
exchange set. Positions are what move, remove, and exchange accept as pick
references.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		w, _, cleanup, err := openWorkbench(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		views, err := w.Picks()
		if err != nil {
			return err
		}
		if len(views) == 0 {
			fmt.Println("no picked residues")
			return nil
		}

		for _, v := range views {
			fmt.Println(formatPick(v))
		}
		if len(views) >= motif.MinMotifSize {
			fmt.Printf("\n%d picks, submittable\n", len(views))
		} else {
			fmt.Printf("\n%d picks, need %d to submit\n", len(views), motif.MinMotifSize)
		}
		return nil
	},
}

func formatPick(v motifq.PickView) string {
	loc := "unresolved"
	if v.Resolved {
		loc = fmt.Sprintf("%s %s/%d op:%s %s", v.Location.ModelID, v.Location.ChainID, v.Location.SeqID, v.Location.OperatorID, v.Location.ResidueType)
	}
	return fmt.Sprintf("%2d  %-8s  %-32s  [%s]", v.Position, shortID(v.Entry.ID), loc, formatExchanges(v.Exchanges))
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func shortID(id motif.EntryID) string {
	s := string(id)
	if len(s) > 8 {
		return s[:8]
	}
	return s
}

func formatExchanges(exchanges []string) string {
	if len(exchanges) == 0 {
		return "-"
	}
	return strings.Join(exchanges, ",")
}
