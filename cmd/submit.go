package cmd

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/strucbio/motifq/internal/motifq"
)

var openInBrowser bool

// submitCmd compiles the current picks into a query and records the search
// URL.
var submitCmd = &cobra.Command{
	Use:                        "submit",
	Short:                      "Build a motif query from the current picks and print its search URL",
	SuggestionsMinimumDistance: 2,
	Example: `  motifq submit
  motifq submit --open`,
	Long: `Compile the current picks into a structural motif query, validate it, and
print the search URL.

Validation rejects picks that span multiple structures and picks of
non-polymeric components (ligands, waters, ions). On validation failure
nothing changes: fix the picks and submit again. Successful submissions are
recorded and can be re-checked with "motifq check".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		w, _, cleanup, err := openWorkbench(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		result, err := w.Dispatch(ctx, motifq.ActionSubmit)
		if err != nil {
			return err
		}

		fmt.Println(result.URL)
		if openInBrowser {
			if err := openBrowser(result.URL); err != nil {
				return fmt.Errorf("open browser: %w", err)
			}
		}
		return nil
	},
}

// checkCmd re-validates the most recent submission against the service.
var checkCmd = &cobra.Command{
	Use:                        "check",
	Short:                      "Check the most recent submission against the search service",
	SuggestionsMinimumDistance: 2,
	Example:                    "  motifq check",
	Long: `Fetch the most recently submitted search URL and report the service's
response. A failing check is tagged and shown by "motifq status" until a
later check succeeds.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		w, _, cleanup, err := openWorkbench(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		result, err := w.Dispatch(ctx, motifq.ActionCheck)
		if err != nil {
			return err
		}
		fmt.Printf("%s\n%s\n", result.Detail, result.URL)
		return nil
	},
}

func openBrowser(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return exec.Command("xdg-open", url).Start()
	}
}

func init() {
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(checkCmd)

	submitCmd.Flags().BoolVar(&openInBrowser, "open", false, "open the search URL in a browser")
}
