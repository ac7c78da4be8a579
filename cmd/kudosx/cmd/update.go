package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	kerrors "github.com/kudosx/kudosx/internal/errors"
	"github.com/kudosx/kudosx/internal/install"
	"github.com/kudosx/kudosx/internal/manager"
)

var (
	updateAll   bool
	updateLocal bool
	updateForce bool
)

var updateCmd = &cobra.Command{
	Use:   "update [name]",
	Short: "Update installed skills to the latest version",
	Long: `Update a skill, or every installed skill with --all.

A skill is reinstalled only when a newer version is available, unless
--force is given.

Examples:
  kudosx update skill-browser-use
  kudosx update --all
  kudosx update --all --local
  kudosx update skill-browser-use --force`,
	Args: cobra.MaximumNArgs(1),
	RunE: runUpdate,
}

func init() {
	updateCmd.Flags().BoolVarP(&updateAll, "all", "a", false, "update every installed skill")
	updateCmd.Flags().BoolVarP(&updateLocal, "local", "l", false, "update project skills (./.claude/skills)")
	updateCmd.Flags().BoolVarP(&updateForce, "force", "f", false, "reinstall even when up to date")
	rootCmd.AddCommand(updateCmd)
}

func runUpdate(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && !updateAll {
		return kerrors.New(kerrors.CodeUsage, "specify a skill name or use --all")
	}
	if len(args) == 1 && updateAll {
		return kerrors.New(kerrors.CodeUsage, "a skill name and --all cannot be combined")
	}

	a, err := newApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	scope := install.ScopeFor(updateLocal)
	if updateAll {
		return updateEverything(cmd, a, scope)
	}

	name := args[0]
	fmt.Fprintf(cmd.OutOrStdout(), "Checking %s (%s)...\n", name, scope)
	outcome, err := a.manager.Update(cmd.Context(), name, scope, updateForce)
	if err != nil {
		return err
	}
	printOutcome(cmd.OutOrStdout(), outcome)
	return nil
}

func updateEverything(cmd *cobra.Command, a *app, scope install.Scope) error {
	out := cmd.OutOrStdout()

	outcomes, err := a.manager.UpdateAll(cmd.Context(), scope, updateForce)
	if err != nil {
		return err
	}
	if len(outcomes) == 0 {
		fmt.Fprintf(out, "No skills installed (%s)\n", scope)
		return nil
	}

	var (
		updated  int
		firstErr error
		failed   int
	)
	for _, o := range outcomes {
		if o.Err != nil {
			fmt.Fprintf(out, "  %s: failed: %v\n", o.Name, o.Err)
			if firstErr == nil {
				firstErr = o.Err
			}
			failed++
			continue
		}
		printOutcome(out, o)
		if o.Result == manager.ResultUpdated {
			updated++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d skill(s) failed to update: %w", failed, firstErr)
	}
	if updated > 0 {
		fmt.Fprintf(out, "Updated %d skill(s)\n", updated)
	} else {
		fmt.Fprintln(out, "All skills are up-to-date")
	}
	return nil
}

func printOutcome(w io.Writer, o manager.Outcome) {
	switch o.Result {
	case manager.ResultUpToDate:
		fmt.Fprintf(w, "  %s is up-to-date (%s)\n", o.Name, displayVersion(o.To))
	case manager.ResultUpdated:
		fmt.Fprintf(w, "  %s updated %s → %s\n", o.Name, displayVersion(o.From), displayVersion(o.To))
	default:
		fmt.Fprintf(w, "  %s %s\n", o.Name, o.Result)
	}
	warnManifest(w, o)
}

func displayVersion(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
