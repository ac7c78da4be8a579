package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	kerrors "github.com/kudosx/kudosx/internal/errors"
	"github.com/kudosx/kudosx/internal/registry"
)

var (
	syncFile   string
	syncDryRun bool
)

var repoSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Record the newest tagged version of every skill",
	Long: `Resolve the newest release tag of every skill repository and write it
to the latest field of the registry file. Key order and comments are kept.
Declared versions are ignored; tags are always consulted.

Examples:
  kudosx repo sync
  kudosx repo sync --file path/to/skills.yaml
  kudosx repo sync --dry-run`,
	Args: cobra.NoArgs,
	RunE: runRepoSync,
}

func init() {
	repoSyncCmd.Flags().StringVar(&syncFile, "file", registry.BundledPath, "registry file to update")
	repoSyncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "show changes without writing")
	repoCmd.AddCommand(repoSyncCmd)
}

func runRepoSync(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	path := syncFile
	if !filepath.IsAbs(path) {
		path = filepath.Join(a.workDir, path)
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return kerrors.IOFileNotFound(path)
	}
	if err != nil {
		return kerrors.IOReadError(path, err)
	}
	reg, err := registry.Parse(data, path)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Syncing skill versions...")

	descs := reg.Sorted()
	if len(descs) == 0 {
		fmt.Fprintf(out, "No skills found in %s\n", syncFile)
		return nil
	}

	repos := make([]string, 0, len(descs))
	for _, d := range descs {
		repos = append(repos, d.Repo)
	}
	lookups := a.resolver.LatestAll(cmd.Context(), repos, true)

	changes := make(map[string]string)
	for _, d := range descs {
		fmt.Fprintf(out, "  Fetching %s...", d.Name)
		lookup := lookups[d.Repo]
		switch {
		case lookup.Err != nil:
			a.logger.Debug("tag lookup failed", "skill", d.Name, "repo", d.Repo, "error", lookup.Err)
			fmt.Fprintln(out, " failed to fetch")
		case d.Latest == lookup.Version:
			fmt.Fprintf(out, " %s (unchanged)\n", lookup.Version)
		case d.Latest == "":
			fmt.Fprintf(out, " %s (new)\n", lookup.Version)
			changes[d.Name] = lookup.Version
		default:
			fmt.Fprintf(out, " %s → %s\n", d.Latest, lookup.Version)
			changes[d.Name] = lookup.Version
		}
	}

	if len(changes) == 0 {
		fmt.Fprintln(out, "\nNo changes to sync.")
		return nil
	}
	if syncDryRun {
		fmt.Fprintf(out, "\nWould update %d skill(s) in %s\n", len(changes), syncFile)
		return nil
	}

	updated, err := registry.SetLatest(data, changes)
	if err != nil {
		return err
	}
	if err := registry.WriteFileAtomic(path, updated); err != nil {
		return kerrors.IOWriteError(path, err)
	}

	fmt.Fprintf(out, "\nUpdated %s\n", syncFile)
	fmt.Fprintln(out, "Don't forget to commit and push the changes!")
	return nil
}
