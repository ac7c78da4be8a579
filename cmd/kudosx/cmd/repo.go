package cmd

import (
	"github.com/spf13/cobra"
)

var repoCmd = &cobra.Command{
	Use:   "repo",
	Short: "Maintain the skill registry",
	Long: `Commands for maintainers of the kudosx repository.

The bundled registry (internal/registry/bundled/skills.yaml) lists every
published skill with its latest version. Keep it current with 'repo sync'
before cutting a release.`,
}

func init() {
	rootCmd.AddCommand(repoCmd)
}
