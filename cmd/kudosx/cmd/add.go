package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kudosx/kudosx/internal/cli"
	kerrors "github.com/kudosx/kudosx/internal/errors"
	"github.com/kudosx/kudosx/internal/install"
	"github.com/kudosx/kudosx/internal/manager"
)

var (
	addForce bool
	addLocal bool
)

var addCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Install a skill",
	Long: `Install a skill from its source repository.

Skills are installed into ~/.claude/skills, or ./.claude/skills with --local.
The latest released version is recorded next to the skill. Without a name,
kudosx asks which skill to install when running in a terminal.

Examples:
  kudosx add skill-browser-use
  kudosx add skill-browser-use --local
  kudosx add skill-browser-use --force`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().BoolVarP(&addForce, "force", "f", false, "reinstall over an existing installation")
	addCmd.Flags().BoolVarP(&addLocal, "local", "l", false, "install into the project (./.claude/skills)")
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	var name string
	if len(args) == 1 {
		name = args[0]
	} else {
		name, err = chooseSkill(cmd, a)
		if err != nil {
			return err
		}
		if name == "" {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
	}

	d, err := a.manager.Describe(ctx, name)
	if err != nil {
		return err
	}

	scope := install.ScopeFor(addLocal)
	fmt.Fprintf(out, "Installing '%s' from %s (%s)...\n", name, d.Repo, scope)

	outcome, err := a.manager.Add(ctx, name, scope, addForce)
	if err != nil {
		return err
	}

	if outcome.To != "" {
		fmt.Fprintf(out, "Successfully installed %s %s to %s\n", name, outcome.To, outcome.Path)
	} else {
		fmt.Fprintf(out, "Successfully installed %s to %s\n", name, outcome.Path)
	}
	warnManifest(out, outcome)
	return nil
}

// warnManifest reports an installed skill whose SKILL.md will not load.
func warnManifest(w io.Writer, o manager.Outcome) {
	if o.ManifestErr != nil {
		fmt.Fprintf(w, "Warning: %s has an unusable SKILL.md: %v\n", o.Name, o.ManifestErr)
	}
}

// chooseSkill asks for a registry skill on an interactive terminal.
func chooseSkill(cmd *cobra.Command, a *app) (string, error) {
	if !isTerminal() {
		return "", kerrors.New(kerrors.CodeUsage, "requires a skill name")
	}

	reg, err := a.manager.Registry(cmd.Context())
	if err != nil {
		return "", err
	}

	var options []cli.SelectOption
	for _, d := range reg.Sorted() {
		options = append(options, cli.SelectOption{
			Value: d.Name,
			Label: fmt.Sprintf("%s (%s)", d.Name, d.Repo),
		})
	}

	p := cli.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
	return p.Select("Which skill do you want to install?", options)
}
