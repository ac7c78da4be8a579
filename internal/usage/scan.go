// Package usage totals Claude Code token usage from the session logs Claude
// Code keeps under <global root>/projects/<project>/<session>.jsonl.
//
// Every assistant message in a session log carries the token counts of the
// request that produced it. Scan sums them per model and per day; Aggregate
// rolls the days up into days, ISO weeks or months and prices each row.
package usage

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/tidwall/gjson"
)

// ProjectsDir is the folder below the global root holding session logs.
const ProjectsDir = "projects"

// Tokens counts the tokens of one or more requests.
type Tokens struct {
	Input       int64 `json:"input_tokens"`
	Output      int64 `json:"output_tokens"`
	CacheCreate int64 `json:"cache_creation_tokens"`
	CacheRead   int64 `json:"cache_read_tokens"`
}

// Total is the sum of all four counters.
func (t Tokens) Total() int64 {
	return t.Input + t.Output + t.CacheCreate + t.CacheRead
}

// Add accumulates o into t.
func (t *Tokens) Add(o Tokens) {
	t.Input += o.Input
	t.Output += o.Output
	t.CacheCreate += o.CacheCreate
	t.CacheRead += o.CacheRead
}

// Day is the usage recorded on one calendar day (UTC).
type Day struct {
	Tokens
	// Models holds the model families seen that day.
	Models map[string]struct{}
}

// Report is the result of scanning session logs.
type Report struct {
	Sessions int
	Messages int
	Totals   Tokens

	// ByModel is keyed by the model id as logged.
	ByModel map[string]Tokens
	// ByDate is keyed by YYYY-MM-DD. Messages without a usable timestamp
	// count toward Totals and ByModel only.
	ByDate map[string]*Day

	// Skipped counts lines that were not valid JSON and files that could
	// not be read.
	Skipped int
}

func newReport() *Report {
	return &Report{
		ByModel: make(map[string]Tokens),
		ByDate:  make(map[string]*Day),
	}
}

// Empty reports whether no dated usage was found.
func (r *Report) Empty() bool {
	return len(r.ByDate) == 0
}

// Scan reads every <projectsDir>/*/*.jsonl file. A missing projectsDir yields
// an empty report. Unreadable files and malformed lines are logged, counted
// in Skipped and otherwise ignored.
func Scan(ctx context.Context, projectsDir string, logger *slog.Logger) (*Report, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	report := newReport()

	projects, err := os.ReadDir(projectsDir)
	if errors.Is(err, os.ErrNotExist) {
		return report, nil
	}
	if err != nil {
		return nil, err
	}

	for _, project := range projects {
		if !project.IsDir() {
			continue
		}
		sessions, err := filepath.Glob(filepath.Join(projectsDir, project.Name(), "*.jsonl"))
		if err != nil {
			return nil, err
		}
		sort.Strings(sessions)

		for _, path := range sessions {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			report.Sessions++
			if err := report.readSession(path); err != nil {
				logger.Warn("skipping unreadable session log", "path", path, "error", err)
				report.Skipped++
			}
		}
	}

	logger.Debug("scanned session logs", "dir", projectsDir, "sessions", report.Sessions, "messages", report.Messages)
	return report, nil
}

func (r *Report) readSession(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	// Lines holding tool output can run to megabytes; ReadBytes has no
	// line limit.
	br := bufio.NewReader(f)
	for {
		line, err := br.ReadBytes('\n')
		if len(bytes.TrimSpace(line)) > 0 {
			r.addLine(line)
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (r *Report) addLine(line []byte) {
	if !gjson.ValidBytes(line) {
		r.Skipped++
		return
	}
	entry := gjson.ParseBytes(line)
	if entry.Get("type").String() != "assistant" {
		return
	}

	u := entry.Get("message.usage")
	if !u.IsObject() || len(u.Map()) == 0 {
		return
	}
	tokens := Tokens{
		Input:       u.Get("input_tokens").Int(),
		Output:      u.Get("output_tokens").Int(),
		CacheCreate: u.Get("cache_creation_input_tokens").Int(),
		CacheRead:   u.Get("cache_read_input_tokens").Int(),
	}

	model := entry.Get("message.model").String()
	if model == "" {
		model = "unknown"
	}

	r.Messages++
	r.Totals.Add(tokens)
	byModel := r.ByModel[model]
	byModel.Add(tokens)
	r.ByModel[model] = byModel

	date, ok := dayOf(entry.Get("timestamp").String())
	if !ok {
		return
	}
	day := r.ByDate[date]
	if day == nil {
		day = &Day{Models: make(map[string]struct{})}
		r.ByDate[date] = day
	}
	day.Add(tokens)
	day.Models[Family(model)] = struct{}{}
}

// dayOf returns the UTC calendar day of an RFC 3339 timestamp.
func dayOf(ts string) (string, bool) {
	if ts == "" {
		return "", false
	}
	if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
		return t.UTC().Format(time.DateOnly), true
	}
	if len(ts) >= 10 {
		if t, err := time.Parse(time.DateOnly, ts[:10]); err == nil {
			return t.Format(time.DateOnly), true
		}
	}
	return "", false
}
