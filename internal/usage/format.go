package usage

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
)

// Count renders a token count with thousands separators.
func Count(n int64) string {
	return humanize.Comma(n)
}

// USD renders a cost in dollars with cents.
func USD(cost float64) string {
	return "$" + humanize.FormatFloat("#,###.##", cost)
}

// FormatTable renders rows and a total line. The current period is marked
// with an asterisk.
func FormatTable(p Period, rows []Row) string {
	if len(rows) == 0 {
		return "No usage data.\n"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Claude Code token usage (%s)\n\n", strings.ToLower(p.Title()))

	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "PERIOD\tMODELS\tINPUT\tOUTPUT\tCACHE CREATE\tCACHE READ\tTOTAL\tCOST\t")
	for _, r := range rows {
		label := r.Label
		if r.Current {
			label += "*"
		}
		models := "-"
		if len(r.Models) > 0 {
			models = strings.Join(r.Models, ",")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			label, models,
			Count(r.Tokens.Input), Count(r.Tokens.Output),
			Count(r.Tokens.CacheCreate), Count(r.Tokens.CacheRead),
			Count(r.Tokens.Total()), USD(r.Cost))
	}
	total, cost := Sum(rows)
	fmt.Fprintf(w, "Total\t\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
		Count(total.Input), Count(total.Output),
		Count(total.CacheCreate), Count(total.CacheRead),
		Count(total.Total()), USD(cost))
	w.Flush()

	return sb.String()
}
