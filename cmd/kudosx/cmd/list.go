package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	kerrors "github.com/kudosx/kudosx/internal/errors"
	"github.com/kudosx/kudosx/internal/install"
	"github.com/kudosx/kudosx/internal/status"
)

var (
	listLocal    bool
	listGlobal   bool
	listCommands bool
	listSkills   bool
	listJSON     bool
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List installed skills and commands",
	Long: `List the skills and commands installed globally and in the project.

Examples:
  kudosx list
  kudosx list --local
  kudosx list --skills --global
  kudosx list --json`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().BoolVarP(&listLocal, "local", "l", false, "only the project (./.claude)")
	listCmd.Flags().BoolVarP(&listGlobal, "global", "g", false, "only the home directory (~/.claude)")
	listCmd.Flags().BoolVarP(&listCommands, "commands", "c", false, "only commands")
	listCmd.Flags().BoolVarP(&listSkills, "skills", "s", false, "only skills")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(listCmd)
}

// listScopes returns the scopes selected by --local and --global.
func listScopes() ([]install.Scope, error) {
	switch {
	case listLocal && listGlobal:
		return nil, kerrors.New(kerrors.CodeUsage, "--local and --global cannot be combined")
	case listLocal:
		return []install.Scope{install.ScopeProject}, nil
	case listGlobal:
		return []install.Scope{install.ScopeGlobal}, nil
	}
	return []install.Scope{install.ScopeGlobal, install.ScopeProject}, nil
}

// listKinds returns whether to list skills and commands.
func listKinds() (skills, commands bool, err error) {
	switch {
	case listSkills && listCommands:
		return false, false, kerrors.New(kerrors.CodeUsage, "--skills and --commands cannot be combined")
	case listSkills:
		return true, false, nil
	case listCommands:
		return false, true, nil
	}
	return true, true, nil
}

func runList(cmd *cobra.Command, args []string) error {
	scopes, err := listScopes()
	if err != nil {
		return err
	}
	skills, commands, err := listKinds()
	if err != nil {
		return err
	}

	a, err := newApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	invs, err := a.manager.Inventory(scopes, skills, commands)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if listJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(invs)
	}

	fmt.Fprint(out, status.FormatInventory(invs, skills, commands, status.FormatOptions{NoColor: colorOff(out)}))
	return nil
}
