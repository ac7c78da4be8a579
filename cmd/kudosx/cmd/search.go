package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kudosx/kudosx/internal/status"
)

var searchJSON bool

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the skill registry",
	Long: `List registry skills whose name or repository contains the query.
Without a query every skill is listed.

Examples:
  kudosx search
  kudosx search browser`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	var query string
	if len(args) == 1 {
		query = args[0]
	}

	descs, err := a.manager.Search(cmd.Context(), query)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if searchJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(descs)
	}

	fmt.Fprint(out, status.FormatSearch(descs, status.FormatOptions{NoColor: colorOff(out)}))
	return nil
}
