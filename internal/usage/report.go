package usage

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Period selects how days are grouped.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// Periods lists the periods in display order.
var Periods = []Period{PeriodDay, PeriodWeek, PeriodMonth}

// ParsePeriod accepts day, week and month, and their -ly forms.
func ParsePeriod(s string) (Period, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "day", "daily", "d":
		return PeriodDay, nil
	case "week", "weekly", "w":
		return PeriodWeek, nil
	case "month", "monthly", "m":
		return PeriodMonth, nil
	}
	return "", fmt.Errorf("unknown period %q (want day, week or month)", s)
}

// Title is the capitalized adjective form, e.g. "Daily".
func (p Period) Title() string {
	switch p {
	case PeriodWeek:
		return "Weekly"
	case PeriodMonth:
		return "Monthly"
	default:
		return "Daily"
	}
}

// key returns the period key a YYYY-MM-DD day falls into.
func (p Period) key(day time.Time) string {
	switch p {
	case PeriodWeek:
		year, week := day.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	case PeriodMonth:
		return day.Format("2006-01")
	default:
		return day.Format(time.DateOnly)
	}
}

// Row is the usage of one period.
type Row struct {
	// Key sorts rows: YYYY-MM-DD, YYYY-Www or YYYY-MM.
	Key string `json:"period"`
	// Label is the short display form of Key.
	Label   string   `json:"label"`
	Models  []string `json:"models"`
	Tokens  Tokens   `json:"tokens"`
	Cost    float64  `json:"cost_usd"`
	Current bool     `json:"current"`
}

// Aggregate groups the dated usage of r by period, oldest first. now marks
// the row holding the current day, week or month.
func (r *Report) Aggregate(p Period, now time.Time) []Row {
	type bucket struct {
		tokens Tokens
		models map[string]struct{}
	}
	buckets := make(map[string]*bucket)

	for date, day := range r.ByDate {
		t, err := time.Parse(time.DateOnly, date)
		if err != nil {
			continue
		}
		k := p.key(t)
		b := buckets[k]
		if b == nil {
			b = &bucket{models: make(map[string]struct{})}
			buckets[k] = b
		}
		b.tokens.Add(day.Tokens)
		for m := range day.Models {
			b.models[m] = struct{}{}
		}
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	current := p.key(now)
	rows := make([]Row, 0, len(keys))
	for _, k := range keys {
		b := buckets[k]
		models := make([]string, 0, len(b.models))
		for m := range b.models {
			models = append(models, m)
		}
		sort.Strings(models)

		label := k
		if p == PeriodDay {
			label = k[5:]
		}
		rows = append(rows, Row{
			Key:     k,
			Label:   label,
			Models:  models,
			Tokens:  b.tokens,
			Cost:    Cost(b.tokens, models),
			Current: k == current,
		})
	}
	return rows
}

// Sum totals rows.
func Sum(rows []Row) (Tokens, float64) {
	var (
		total Tokens
		cost  float64
	)
	for _, r := range rows {
		total.Add(r.Tokens)
		cost += r.Cost
	}
	return total, cost
}
