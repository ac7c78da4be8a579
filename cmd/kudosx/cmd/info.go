package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kudosx/kudosx/internal/install"
	"github.com/kudosx/kudosx/internal/skill"
	"github.com/kudosx/kudosx/internal/version"
)

var infoCmd = &cobra.Command{
	Use:   "info <name>",
	Short: "Show details of a skill",
	Long: `Show the registry entry of a skill, where it is installed and, for an
installed copy, the description from its SKILL.md.

Examples:
  kudosx info skill-browser-use`,
	Args: cobra.ExactArgs(1),
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	d, err := a.manager.Describe(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Name:\t%s\n", d.Name)
	fmt.Fprintf(w, "Repository:\t%s\n", d.Repo)
	fmt.Fprintf(w, "Source path:\t%s\n", d.SourcePath)
	fmt.Fprintf(w, "Declared latest:\t%s\n", version.Format(d.Latest))

	var (
		manifest    *skill.Skill
		manifestErr error
	)
	for _, scope := range []install.Scope{install.ScopeGlobal, install.ScopeProject} {
		path, err := a.manager.TargetPath(d, scope)
		if err != nil {
			return err
		}
		if !install.IsInstalled(path) {
			fmt.Fprintf(w, "Installed (%s):\tno\n", scope)
			continue
		}
		fmt.Fprintf(w, "Installed (%s):\t%s at %s\n", scope, displayVersion(install.InstalledVersion(path)), path)
		if manifest == nil && manifestErr == nil {
			manifest, manifestErr = skill.LoadFromDir(path)
			if manifestErr != nil {
				a.logger.Debug("skill manifest unreadable", "path", path, "error", manifestErr)
			}
		}
	}

	switch {
	case manifestErr != nil:
		fmt.Fprintf(w, "Manifest:\tunreadable (%v)\n", manifestErr)
	case manifest != nil:
		fmt.Fprintf(w, "Description:\t%s\n", manifest.Description)
		if manifest.AllowedTools != "" {
			fmt.Fprintf(w, "Allowed tools:\t%s\n", manifest.AllowedTools)
		}
		if result := manifest.Validate(); result.HasErrors() {
			fmt.Fprintf(w, "Manifest:\t%d problem(s)\n", len(result.Errors))
			for _, e := range result.Errors {
				fmt.Fprintf(w, "\t- %s\n", e.Error())
			}
		} else {
			fmt.Fprintf(w, "Manifest:\tvalid\n")
		}
	}
	return w.Flush()
}
