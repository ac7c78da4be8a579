package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kudosx/kudosx/internal/status"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show installed and latest versions of every skill",
	Long: `Show every registry skill with its installed versions and the latest
released version. This is the non-interactive view of the browser.

Examples:
  kudosx status
  kudosx status --json`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	latest, err := a.manager.LatestVersions(ctx)
	if err != nil {
		return err
	}
	statuses, err := a.manager.Statuses(ctx, latest)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if statusJSON {
		type entry struct {
			status.SkillStatus
			State status.State `json:"state"`
		}
		entries := make([]entry, 0, len(statuses))
		for _, s := range statuses {
			entries = append(entries, entry{SkillStatus: s, State: s.State()})
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	fmt.Fprint(out, status.FormatSkillTable(statuses, status.FormatOptions{NoColor: colorOff(out)}))
	return nil
}
