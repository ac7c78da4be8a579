package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kudosx/kudosx/internal/install"
)

var removeLocal bool

var removeCmd = &cobra.Command{
	Use:     "remove <name>",
	Aliases: []string{"rm"},
	Short:   "Remove an installed skill",
	Long: `Remove an installed skill.

Examples:
  kudosx remove skill-browser-use
  kudosx remove skill-browser-use --local`,
	Args: cobra.ExactArgs(1),
	RunE: runRemove,
}

func init() {
	removeCmd.Flags().BoolVarP(&removeLocal, "local", "l", false, "remove from the project (./.claude/skills)")
	rootCmd.AddCommand(removeCmd)
}

func runRemove(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	name := args[0]
	scope := install.ScopeFor(removeLocal)

	d, err := a.manager.Describe(ctx, name)
	if err != nil {
		return err
	}
	path, err := a.manager.TargetPath(d, scope)
	if err != nil {
		return err
	}
	if install.IsInstalled(path) {
		fmt.Fprintf(out, "Removing '%s' from %s...\n", name, path)
	}

	if _, err := a.manager.Remove(ctx, name, scope); err != nil {
		return err
	}
	fmt.Fprintf(out, "Successfully removed %s (%s)\n", name, scope)
	return nil
}
