package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kudosx/kudosx/internal/cli"
	"github.com/kudosx/kudosx/internal/scaffold"
)

var (
	initDir      string
	initTemplate string
	initForce    bool
)

var initCmd = &cobra.Command{
	Use:   "init [name]",
	Short: "Create a new project from a template",
	Long: `Create a project directory with a CLAUDE.md and starter skills.

NAME is the project directory name (default: my-project).

Examples:
  kudosx init
  kudosx init my-project
  kudosx init my-project --dir samples
  kudosx init my-project --force`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringVarP(&initDir, "dir", "d", ".", "parent directory of the project")
	initCmd.Flags().StringVarP(&initTemplate, "template", "t", "default",
		fmt.Sprintf("project template (%s)", strings.Join(scaffold.Templates(), ", ")))
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "delete an existing directory and reinitialize")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	name := scaffold.DefaultName
	if len(args) == 1 {
		name = args[0]
	}

	dir := initDir
	if !filepath.IsAbs(dir) {
		base, err := getWorkDir()
		if err != nil {
			return err
		}
		dir = filepath.Join(base, dir)
	}

	out := cmd.OutOrStdout()
	target := filepath.Join(dir, name)
	fmt.Fprintf(out, "Initializing project '%s' in '%s' with template '%s'...\n", name, target, initTemplate)

	force := initForce
	if _, err := os.Stat(target); err == nil && !force && isTerminal() {
		p := cli.NewPrompter(cmd.InOrStdin(), out)
		ok, err := p.Confirm(fmt.Sprintf("Directory '%s' already exists. Replace it?", target), false)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
		force = true
	}

	res, err := scaffold.Create(scaffold.Options{
		Name:     name,
		Dir:      dir,
		Template: initTemplate,
		Force:    force,
	})
	if err != nil {
		return err
	}

	if res.Replaced {
		fmt.Fprintf(out, "Deleted existing directory '%s'.\n", res.Target)
	}
	fmt.Fprintf(out, "Copied %d file(s) from template %s\n", len(res.Files), res.Template)
	fmt.Fprintln(out, "Project initialized successfully!")
	return nil
}
