package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	kerrors "github.com/kudosx/kudosx/internal/errors"
	"github.com/kudosx/kudosx/internal/usage"
)

var (
	usagePeriod string
	usageJSON   bool
)

// usageNow is the clock that marks the current period.
var usageNow = time.Now

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show Claude Code token usage",
	Long: `Total the token usage recorded in Claude Code session logs
(~/.claude/projects/*/*.jsonl) by day, ISO week or month, with an estimated
cost per period. The current period is marked with an asterisk.

Examples:
  kudosx usage
  kudosx usage --period week
  kudosx usage -p month --json`,
	Args: cobra.NoArgs,
	RunE: runUsage,
}

func init() {
	usageCmd.Flags().StringVarP(&usagePeriod, "period", "p", string(usage.PeriodDay), "group by day, week or month")
	usageCmd.Flags().BoolVar(&usageJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(usageCmd)
}

// usageOutput is the JSON form of the report.
type usageOutput struct {
	Period   usage.Period `json:"period"`
	Sessions int          `json:"sessions"`
	Messages int          `json:"messages"`
	Rows     []usage.Row  `json:"rows"`
	Total    usage.Tokens `json:"total"`
	Cost     float64      `json:"cost_usd"`
}

func runUsage(cmd *cobra.Command, args []string) error {
	period, err := usage.ParsePeriod(usagePeriod)
	if err != nil {
		return kerrors.Wrap(kerrors.CodeUsage, "invalid --period", err)
	}

	a, err := newApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	report, err := a.manager.Usage(cmd.Context())
	if err != nil {
		return err
	}
	rows := report.Aggregate(period, usageNow())

	out := cmd.OutOrStdout()
	if usageJSON {
		total, cost := usage.Sum(rows)
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(usageOutput{
			Period:   period,
			Sessions: report.Sessions,
			Messages: report.Messages,
			Rows:     rows,
			Total:    total,
			Cost:     cost,
		})
	}

	fmt.Fprint(out, usage.FormatTable(period, rows))
	if report.Skipped > 0 {
		fmt.Fprintf(out, "\nSkipped %d unreadable line(s) or file(s).\n", report.Skipped)
	}
	return nil
}
