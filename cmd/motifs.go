package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	motifDescription string
	searchLimit      int64
)

// motifsCmd groups the saved-motif catalog commands.
var motifsCmd = &cobra.Command{
	Use:                        "motifs",
	Short:                      "Manage the saved motif catalog",
	Aliases:                    []string{"motif"},
	SuggestionsMinimumDistance: 2,
	Long: `Manage named motif queries saved from the workbench.

Saved motifs live in the workbench database and are mirrored to the
configured sync targets (a Meilisearch index, a shell command) whenever they
change.`,
}

var motifsSaveCmd = &cobra.Command{
	Use:                        "save [name]",
	Short:                      "Save the current picks as a named motif",
	Args:                       cobra.ExactArgs(1),
	SuggestionsMinimumDistance: 2,
	Example:                    `  motifq motifs save "catalytic triad" --description "his-asp-ser"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		w, _, cleanup, err := openWorkbench(ctx)
		if err != nil {
			return err
		}
		defer cleanup()
		w.InitSyncTargets(ctx)

		saved, err := w.SaveMotif(ctx, args[0], motifDescription)
		if err != nil {
			return err
		}
		fmt.Printf("saved %s (%s, %d residues)\n", saved.Name, saved.ID, saved.ResidueCount)
		return nil
	},
}

var motifsListCmd = &cobra.Command{
	Use:                        "list",
	Short:                      "List saved motifs",
	Aliases:                    []string{"ls"},
	SuggestionsMinimumDistance: 2,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		w, _, cleanup, err := openWorkbench(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		motifs, err := w.ListMotifs(ctx)
		if err != nil {
			return err
		}
		if len(motifs) == 0 {
			fmt.Println("no saved motifs")
			return nil
		}
		for _, m := range motifs {
			desc := m.Description
			if desc != "" {
				desc = "  " + desc
			}
			fmt.Printf("%s  %-24s  %d residues%s\n", m.ID, m.Name, m.ResidueCount, desc)
		}
		return nil
	},
}

var motifsDeleteCmd = &cobra.Command{
	Use:                        "delete [motif]",
	Short:                      "Delete a saved motif",
	Aliases:                    []string{"rm"},
	Args:                       cobra.ExactArgs(1),
	SuggestionsMinimumDistance: 2,
	Example:                    "  motifq motifs delete \"catalytic triad\"",
	Long: `Delete a saved motif by exact name or a unique prefix of its id.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		w, _, cleanup, err := openWorkbench(ctx)
		if err != nil {
			return err
		}
		defer cleanup()
		w.InitSyncTargets(ctx)

		m, err := w.FindMotif(ctx, args[0])
		if err != nil {
			return err
		}
		if err := w.DeleteMotif(ctx, m.ID); err != nil {
			return err
		}
		fmt.Printf("deleted %s (%s)\n", m.Name, m.ID)
		return nil
	},
}

var motifsSearchCmd = &cobra.Command{
	Use:                        "search [query]",
	Short:                      "Search saved motifs by name and description",
	Args:                       cobra.ExactArgs(1),
	SuggestionsMinimumDistance: 2,
	Example:                    "  motifq motifs search triad",
	Long: `Search the motif catalog through the configured Meilisearch index.

Requires meilisearch.index to be configured; populate the index with
"motifq motifs reindex" after changing it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		w, _, cleanup, err := openWorkbench(ctx)
		if err != nil {
			return err
		}
		defer cleanup()
		w.InitSyncTargets(ctx)

		hits, err := w.SearchMotifs(ctx, args[0], searchLimit)
		if err != nil {
			return err
		}
		if len(hits) == 0 {
			fmt.Println("no matches")
			return nil
		}
		for _, h := range hits {
			desc := h.Description
			if desc != "" {
				desc = "  " + desc
			}
			fmt.Printf("%s  %-24s  %d residues%s\n", h.ID, h.Name, h.ResidueCount, desc)
		}
		return nil
	},
}

var motifsReindexCmd = &cobra.Command{
	Use:                        "reindex",
	Short:                      "Push the full motif catalog to the sync targets",
	SuggestionsMinimumDistance: 2,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		w, _, cleanup, err := openWorkbench(ctx)
		if err != nil {
			return err
		}
		defer cleanup()
		w.InitSyncTargets(ctx)

		n, err := w.ReindexMotifs(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("reindexed %d motifs\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(motifsCmd)
	motifsCmd.AddCommand(motifsSaveCmd)
	motifsCmd.AddCommand(motifsListCmd)
	motifsCmd.AddCommand(motifsDeleteCmd)
	motifsCmd.AddCommand(motifsSearchCmd)
	motifsCmd.AddCommand(motifsReindexCmd)

	motifsSaveCmd.Flags().StringVarP(&motifDescription, "description", "d", "", "free-form description stored with the motif")
	motifsSearchCmd.Flags().Int64Var(&searchLimit, "limit", 20, "maximum number of results")
}
