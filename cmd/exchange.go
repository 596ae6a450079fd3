package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/strucbio/motifq/internal/motif"
)

var showVocabulary bool

// exchangeCmd toggles a residue type in a pick's exchange set.
var exchangeCmd = &cobra.Command{
	Use:                        "exchange [pick] [residue-type]",
	Short:                      "Toggle an allowed residue type for a pick",
	Aliases:                    []string{"ex"},
	SuggestionsMinimumDistance: 2,
	Example: `  motifq exchange 1 THR
  motifq exchange 1 thr
  motifq exchange --vocabulary`,
	Long: `Toggle a residue type in a pick's exchange set.

A pick's exchange set lists the residue types allowed at that motif position.
New picks start with their native type allowed; toggling adds or removes a
type. An empty set is legal and means the position takes no exchange filter.

Accepted types are the standard amino acids, nucleotides, and UNK; see
--vocabulary.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVocabulary {
			fmt.Println(strings.Join(motif.ExchangeVocabulary(), " "))
			return nil
		}
		if len(args) != 2 {
			return fmt.Errorf("expected a pick and a residue type, got %d arguments", len(args))
		}

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
		enabled, err := w.ToggleExchange(ctx, id, args[1])
		if err != nil {
			return err
		}

		verb := "removed"
		if enabled {
			verb = "allowed"
		}
		canonical, _ := motif.CanonicalResidueType(args[1])
		fmt.Printf("%s %s on %s, exchange set now [%s]\n", verb, canonical, shortID(id), formatExchanges(w.Exchanges(id)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exchangeCmd)

	exchangeCmd.Flags().BoolVar(&showVocabulary, "vocabulary", false, "list accepted residue types and exit")
}
