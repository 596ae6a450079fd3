package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/strucbio/motifq/internal/selection"
)

// moveCmd shifts a pick one position within the visible window.
var moveCmd = &cobra.Command{
	Use:                        "move [pick] [up|down]",
	Short:                      "Move a pick one position in the history",
	Args:                       cobra.ExactArgs(2),
	SuggestionsMinimumDistance: 2,
	Example:                    "  motifq move 3 up",
	Long: `Move a pick one position up or down within the visible window.

The pick is a 1-based position from "motifq list" or a unique prefix of the
pick's id. Moves that would leave the window do nothing.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		w, _, cleanup, err := openWorkbench(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		id, err := w.FindPick(args[0])
		if err != nil {
			return err
		}
		dir, err := selection.ParseDirection(args[1])
		if err != nil {
			return err
		}

		if err := w.MovePick(ctx, id, dir); err != nil {
			return err
		}
		fmt.Printf("moved %s %s\n", shortID(id), dir)
		return nil
	},
}

// removeCmd deletes a pick from the history.
var removeCmd = &cobra.Command{
	Use:                        "remove [pick]",
	Short:                      "Remove a pick from the history",
	Aliases:                    []string{"rm"},
	Args:                       cobra.ExactArgs(1),
	SuggestionsMinimumDistance: 2,
	Example:                    "  motifq remove 2",
	Long: `Remove a pick from the selection history.

The pick's exchange set is pruned with it; re-picking the same residue later
starts over with a fresh state.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		w, _, cleanup, err := openWorkbench(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		id, err := w.FindPick(args[0])
		if err != nil {
			return err
		}
		if err := w.RemovePick(ctx, id); err != nil {
			return err
		}
		fmt.Printf("removed %s\n", shortID(id))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(moveCmd)
	rootCmd.AddCommand(removeCmd)
}
