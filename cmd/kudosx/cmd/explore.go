package cmd

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/kudosx/kudosx/internal/browser"
)

var exploreCmd = &cobra.Command{
	Use:   "explore",
	Short: "Browse, install and remove skills interactively",
	Long: `Open the interactive skill browser.

Keys:
  g / l    install globally / into the project
  enter    install or update
  d        delete
  r        refresh the registry and versions
  tab      switch between skills and commands
  q        quit`,
	Args: cobra.NoArgs,
	RunE: runExplore,
}

func init() {
	rootCmd.AddCommand(exploreCmd)
}

func runExplore(cmd *cobra.Command, args []string) error {
	// Console logging would draw over the screen; the log file still applies.
	a, err := newApp(io.Discard)
	if err != nil {
		return err
	}
	defer a.Close()

	return browser.Run(cmd.Context(), a.manager, a.logger)
}
