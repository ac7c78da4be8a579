// Package browser is the interactive terminal browser for skills and
// commands.
//
// The model never performs blocking I/O in Update or View. Version lookups,
// installs, deletions and usage scans are submitted to a tasks.Runner; the model waits on
// the runner's completion channel with a tea.Cmd and applies each result as
// it arrives.
package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kudosx/kudosx/internal/install"
	"github.com/kudosx/kudosx/internal/manager"
	"github.com/kudosx/kudosx/internal/registry"
	"github.com/kudosx/kudosx/internal/status"
	"github.com/kudosx/kudosx/internal/tasks"
	"github.com/kudosx/kudosx/internal/usage"
)

// Service is the subset of manager.Manager the browser drives.
type Service interface {
	Reload(ctx context.Context) (registry.Registry, error)
	LatestVersions(ctx context.Context) (map[string]string, error)
	Statuses(ctx context.Context, latest map[string]string) ([]status.SkillStatus, error)
	Inventory(scopes []install.Scope, skills, commands bool) ([]status.Inventory, error)
	Add(ctx context.Context, name string, scope install.Scope, force bool) (manager.Outcome, error)
	Remove(ctx context.Context, name string, scope install.Scope) (manager.Outcome, error)
	Usage(ctx context.Context) (*usage.Report, error)
}

type view int

const (
	viewSkills view = iota
	viewCommands
	viewUsage

	viewCount = 3
)

func (v view) String() string {
	switch v {
	case viewCommands:
		return "Commands"
	case viewUsage:
		return "Usage"
	default:
		return "Skills"
	}
}

// resultMsg carries a finished task into Update.
type resultMsg tasks.Result

// snapshot is everything the skills and commands views render. latest is
// set by refreshes only; install and remove tasks leave it nil.
type snapshot struct {
	statuses []status.SkillStatus
	commands []status.Inventory
	latest   map[string]string
	reloaded bool
}

// opResult is the value of install and remove tasks.
type opResult struct {
	outcome manager.Outcome
	snap    *snapshot
}

type commandRow struct {
	name  string
	scope install.Scope
	path  string
}

// usageResult is the value of usage tasks.
type usageResult struct {
	report   *usage.Report
	reloaded bool
}

var (
	refreshOp = tasks.Op{Action: tasks.ActionRefresh}
	usageOp   = tasks.Op{Action: tasks.ActionUsage}
)

// Model is the bubbletea model of the browser.
type Model struct {
	ctx    context.Context
	svc    Service
	runner *tasks.Runner
	styles *StyleSet
	keys   KeyMap
	logger *slog.Logger

	table   table.Model
	spinner spinner.Model
	help    help.Model
	view    view

	statuses []status.SkillStatus
	commands []commandRow
	latest   map[string]string

	report   *usage.Report
	period   usage.Period
	scanning bool
	now      func() time.Time

	notice    string
	noticeErr bool
}

// New creates a browser model.
func New(ctx context.Context, svc Service, runner *tasks.Runner, styles *StyleSet, logger *slog.Logger) *Model {
	t := table.New(
		table.WithColumns(skillColumns()),
		table.WithFocused(true),
		table.WithHeight(12),
		table.WithKeyMap(tableKeyMap()),
	)
	t.SetStyles(styles.Table)

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = lipgloss.NewStyle().Foreground(styles.Theme.Accent)

	return &Model{
		ctx:     ctx,
		svc:     svc,
		runner:  runner,
		styles:  styles,
		keys:    DefaultKeyMap(),
		logger:  logger,
		table:   t,
		spinner: sp,
		help:    help.New(),
		period:  usage.PeriodDay,
		now:     time.Now,
	}
}

// Init starts the first refresh.
func (m *Model) Init() tea.Cmd {
	m.submitRefresh(false)
	return tea.Batch(m.spinner.Tick, m.waitForResult())
}

// waitForResult blocks on the completion channel outside Update.
func (m *Model) waitForResult() tea.Cmd {
	results := m.runner.Results()
	return func() tea.Msg {
		return resultMsg(<-results)
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		m.table.SetHeight(max(msg.Height-8, 3))
		m.table.SetWidth(max(msg.Width-2, 20))
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case resultMsg:
		m.applyResult(tasks.Result(msg))
		return m, m.waitForResult()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Refresh):
		if m.view == viewUsage {
			m.submitUsage(true)
		} else {
			m.submitRefresh(true)
		}
	case key.Matches(msg, m.keys.NextView):
		m.switchView((m.view + 1) % viewCount)
	case key.Matches(msg, m.keys.Skills):
		m.switchView(viewSkills)
	case key.Matches(msg, m.keys.Commands):
		m.switchView(viewCommands)
	case key.Matches(msg, m.keys.Usage):
		m.switchView(viewUsage)
	case m.view == viewUsage && key.Matches(msg, m.keys.Daily):
		m.setPeriod(usage.PeriodDay)
	case m.view == viewUsage && key.Matches(msg, m.keys.Weekly):
		m.setPeriod(usage.PeriodWeek)
	case m.view == viewUsage && key.Matches(msg, m.keys.Monthly):
		m.setPeriod(usage.PeriodMonth)
	case key.Matches(msg, m.keys.InstallGlobal):
		m.installSelected(install.ScopeGlobal)
	case key.Matches(msg, m.keys.InstallLocal):
		m.installSelected(install.ScopeProject)
	case key.Matches(msg, m.keys.Install):
		if sel, ok := m.selected(); ok {
			m.installSelected(preferredScope(sel))
		}
	case key.Matches(msg, m.keys.Delete):
		m.deleteSelected()
	default:
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}
	return m, nil
}

// preferredScope is where an existing install lives, global first, or
// global for a skill installed nowhere.
func preferredScope(s status.SkillStatus) install.Scope {
	if !s.Global.Installed && s.Local.Installed {
		return install.ScopeProject
	}
	return install.ScopeGlobal
}

func (m *Model) selected() (status.SkillStatus, bool) {
	if m.view != viewSkills {
		return status.SkillStatus{}, false
	}
	i := m.table.Cursor()
	if i < 0 || i >= len(m.statuses) {
		return status.SkillStatus{}, false
	}
	return m.statuses[i], true
}

func (m *Model) setNotice(msg string, isErr bool) {
	m.notice = msg
	m.noticeErr = isErr
}

// submit starts fn and reports a busy key as a notice.
func (m *Model) submit(op tasks.Op, fn tasks.Func) bool {
	_, err := m.runner.Submit(m.ctx, op, fn)
	if errors.Is(err, tasks.ErrBusy) {
		m.setNotice(fmt.Sprintf("%s is already in progress", op), true)
		return false
	}
	if err != nil {
		m.setNotice(err.Error(), true)
		return false
	}
	return true
}

func (m *Model) submitRefresh(reload bool) {
	svc := m.svc
	if m.submit(refreshOp, func(ctx context.Context) (any, error) {
		if reload {
			if _, err := svc.Reload(ctx); err != nil {
				return nil, err
			}
		}
		latest, err := svc.LatestVersions(ctx)
		if err != nil {
			return nil, err
		}
		if latest == nil {
			latest = map[string]string{}
		}
		snap, err := scan(ctx, svc, latest)
		if err != nil {
			return nil, err
		}
		snap.reloaded = reload
		return snap, nil
	}) {
		m.logger.Debug("refresh submitted", "reload", reload)
		m.refreshRows()
	}
}

// submitUsage scans the session logs. Without reload a report already in
// memory, or a scan in flight, is reused.
func (m *Model) submitUsage(reload bool) {
	if !reload && (m.report != nil || m.scanning) {
		return
	}
	svc := m.svc
	if m.submit(usageOp, func(ctx context.Context) (any, error) {
		report, err := svc.Usage(ctx)
		if err != nil {
			return nil, err
		}
		return usageResult{report: report, reloaded: reload}, nil
	}) {
		m.scanning = true
		m.refreshRows()
	}
}

func (m *Model) setPeriod(p usage.Period) {
	if m.period == p {
		return
	}
	m.period = p
	m.table.SetCursor(0)
	m.refreshRows()
}

func (m *Model) installSelected(scope install.Scope) {
	sel, ok := m.selected()
	if !ok {
		return
	}

	op := tasks.Op{
		Action: tasks.ActionInstall,
		Skill:  sel.Name,
		Scope:  string(scope),
		Path:   sel.At(scope).Path,
	}
	svc := m.svc
	if m.submit(op, func(ctx context.Context) (any, error) {
		out, err := svc.Add(ctx, op.Skill, scope, true)
		snap, scanErr := scan(ctx, svc, nil)
		if scanErr != nil {
			snap = nil
		}
		return opResult{outcome: out, snap: snap}, err
	}) {
		m.setNotice(fmt.Sprintf("Installing %s (%s)...", sel.Name, scope), false)
	}
}

func (m *Model) deleteSelected() {
	sel, ok := m.selected()
	if !ok {
		return
	}

	var scope install.Scope
	switch {
	case sel.Global.Installed:
		scope = install.ScopeGlobal
	case sel.Local.Installed:
		scope = install.ScopeProject
	default:
		m.setNotice(fmt.Sprintf("%s is not installed", sel.Name), true)
		return
	}

	op := tasks.Op{
		Action: tasks.ActionRemove,
		Skill:  sel.Name,
		Scope:  string(scope),
		Path:   sel.At(scope).Path,
	}
	svc := m.svc
	if m.submit(op, func(ctx context.Context) (any, error) {
		out, err := svc.Remove(ctx, op.Skill, scope)
		snap, scanErr := scan(ctx, svc, nil)
		if scanErr != nil {
			snap = nil
		}
		return opResult{outcome: out, snap: snap}, err
	}) {
		m.setNotice(fmt.Sprintf("Deleting %s (%s)...", sel.Name, scope), false)
	}
}

// scan reads installation state. It runs on task goroutines only.
func scan(ctx context.Context, svc Service, latest map[string]string) (*snapshot, error) {
	statuses, err := svc.Statuses(ctx, latest)
	if err != nil {
		return nil, err
	}
	commands, err := svc.Inventory([]install.Scope{install.ScopeGlobal, install.ScopeProject}, false, true)
	if err != nil {
		return nil, err
	}
	return &snapshot{statuses: statuses, commands: commands, latest: latest}, nil
}

func (m *Model) applyResult(res tasks.Result) {
	switch res.Op.Action {
	case tasks.ActionRefresh:
		if res.Err != nil {
			m.setNotice("Refresh failed: "+res.Err.Error(), true)
			return
		}
		snap, _ := res.Value.(*snapshot)
		if snap == nil {
			return
		}
		m.applySnapshot(snap)
		if snap.reloaded {
			m.setNotice(m.view.String()+" refreshed", false)
		}

	case tasks.ActionUsage:
		m.scanning = false
		if res.Err != nil {
			m.setNotice("Usage scan failed: "+res.Err.Error(), true)
			m.refreshRows()
			return
		}
		payload, _ := res.Value.(usageResult)
		if payload.report == nil {
			return
		}
		m.report = payload.report
		m.refreshRows()
		if payload.reloaded {
			m.setNotice("Usage refreshed", false)
		}

	case tasks.ActionInstall, tasks.ActionRemove:
		payload, _ := res.Value.(opResult)
		if payload.snap != nil {
			m.applySnapshot(payload.snap)
		}
		verb := "install"
		if res.Op.Action == tasks.ActionRemove {
			verb = "delete"
		}
		if res.Err != nil {
			m.setNotice(fmt.Sprintf("Failed to %s %s: %v", verb, res.Op.Skill, res.Err), true)
			return
		}
		out := payload.outcome
		if res.Op.Action == tasks.ActionRemove {
			m.setNotice(fmt.Sprintf("Deleted %s (%s)", out.Name, out.Scope), false)
		} else if out.To != "" {
			m.setNotice(fmt.Sprintf("Installed %s %s to %s", out.Name, out.To, out.Path), false)
		} else {
			m.setNotice(fmt.Sprintf("Installed %s to %s", out.Name, out.Path), false)
		}
	}
}

// applySnapshot replaces the rendered state. Latest versions come from the
// most recent refresh, whichever task produced snap.
func (m *Model) applySnapshot(snap *snapshot) {
	if snap.latest != nil {
		m.latest = snap.latest
	}
	m.statuses = snap.statuses
	for i := range m.statuses {
		m.statuses[i].Latest = m.latest[m.statuses[i].Name]
	}
	m.commands = m.commands[:0]
	for _, inv := range snap.commands {
		for _, name := range inv.Commands {
			m.commands = append(m.commands, commandRow{
				name:  name,
				scope: inv.Scope,
				path:  filepath.Join(inv.Root, "commands", name+".md"),
			})
		}
	}
	m.refreshRows()
}

func (m *Model) switchView(v view) {
	if m.view == v {
		return
	}
	m.view = v
	m.table.SetRows(nil)
	switch v {
	case viewCommands:
		m.table.SetColumns(commandColumns())
	case viewUsage:
		m.table.SetColumns(usageColumns())
	default:
		m.table.SetColumns(skillColumns())
	}
	m.table.SetCursor(0)
	m.refreshRows()
	if v == viewUsage {
		m.submitUsage(false)
	}
}

func skillColumns() []table.Column {
	return []table.Column{
		{Title: "NAME", Width: 28},
		{Title: "STATUS", Width: 13},
		{Title: "GLOBAL", Width: 10},
		{Title: "LOCAL", Width: 10},
		{Title: "LATEST", Width: 10},
	}
}

func commandColumns() []table.Column {
	return []table.Column{
		{Title: "NAME", Width: 28},
		{Title: "LOCATION", Width: 10},
		{Title: "PATH", Width: 60},
	}
}

func usageColumns() []table.Column {
	return []table.Column{
		{Title: "DATE", Width: 10},
		{Title: "MODELS", Width: 14},
		{Title: "INPUT", Width: 12},
		{Title: "OUTPUT", Width: 12},
		{Title: "CACHE CREATE", Width: 13},
		{Title: "CACHE READ", Width: 14},
		{Title: "TOTAL", Width: 14},
		{Title: "COST", Width: 10},
	}
}

func (m *Model) refreshRows() {
	var rows []table.Row
	switch m.view {
	case viewCommands:
		for _, c := range m.commands {
			rows = append(rows, table.Row{c.name, string(c.scope), c.path})
		}
	case viewUsage:
		rows = m.usageRows()
	default:
		refreshing := m.runner.Busy(refreshOp)
		for _, s := range m.statuses {
			latest := s.Latest
			if latest == "" {
				latest = "-"
				if refreshing {
					latest = "..."
				}
			}
			rows = append(rows, table.Row{
				s.Name,
				StateLabel(s.State()),
				versionCell(s.Global),
				versionCell(s.Local),
				latest,
			})
		}
	}
	m.table.SetRows(rows)
}

// usageRows renders the report for the selected period. The current period
// is marked with an asterisk and a total row closes the table.
func (m *Model) usageRows() []table.Row {
	blank := func(first string) table.Row {
		return table.Row{first, "", "", "", "", "", "", ""}
	}
	if m.report == nil {
		if m.scanning {
			return []table.Row{blank("Loading...")}
		}
		return nil
	}
	if m.report.Empty() {
		return []table.Row{blank("No usage data")}
	}

	tokenCells := func(t usage.Tokens) []string {
		return []string{
			usage.Count(t.Input),
			usage.Count(t.Output),
			usage.Count(t.CacheCreate),
			usage.Count(t.CacheRead),
			usage.Count(t.Total()),
		}
	}

	data := m.report.Aggregate(m.period, m.now())
	rows := make([]table.Row, 0, len(data)+1)
	for _, r := range data {
		label := r.Label
		if r.Current {
			label += "*"
		}
		models := "-"
		if len(r.Models) > 0 {
			models = strings.Join(r.Models, ",")
		}
		row := append(table.Row{label, models}, tokenCells(r.Tokens)...)
		rows = append(rows, append(row, usage.USD(r.Cost)))
	}
	total, cost := usage.Sum(data)
	row := append(table.Row{"Total", ""}, tokenCells(total)...)
	return append(rows, append(row, usage.USD(cost)))
}

func versionCell(inst status.Installation) string {
	switch {
	case !inst.Installed:
		return "-"
	case inst.Version == "":
		return "?"
	default:
		return inst.Version
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	var tabs []string
	for _, v := range []view{viewSkills, viewCommands, viewUsage} {
		if v == m.view {
			tabs = append(tabs, m.styles.ActiveTab.Render(v.String()))
		} else {
			tabs = append(tabs, m.styles.Tab.Render(v.String()))
		}
	}
	header := m.styles.Title.Render("kudosx") + "  " + strings.Join(tabs, "  ")

	parts := []string{header}
	if m.view == viewUsage {
		parts = append(parts, m.periodTabs())
	}
	parts = append(parts,
		m.styles.Frame.Render(m.table.View()),
		m.statusLine(),
		m.help.View(m.keys),
	)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *Model) periodTabs() string {
	tabs := make([]string, 0, len(usage.Periods))
	for _, p := range usage.Periods {
		if p == m.period {
			tabs = append(tabs, m.styles.ActiveTab.Render(p.Title()))
		} else {
			tabs = append(tabs, m.styles.Tab.Render(p.Title()))
		}
	}
	return "Token usage: " + strings.Join(tabs, "  ")
}

func (m *Model) statusLine() string {
	if running := m.runner.InFlight(); len(running) > 0 {
		ops := make([]string, 0, len(running))
		for _, h := range running {
			ops = append(ops, h.Op.String())
		}
		return m.spinner.View() + " " + strings.Join(ops, ", ")
	}
	if m.notice == "" {
		return ""
	}
	if m.noticeErr {
		return m.styles.ErrNotice.Render(m.notice)
	}
	return m.styles.Notice.Render(m.notice)
}

// Run starts the browser on the terminal and blocks until it quits.
func Run(ctx context.Context, svc Service, logger *slog.Logger) error {
	runner := tasks.NewRunner(logger, 16)
	m := New(ctx, svc, runner, NewStyleSet(DefaultTheme), logger)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("browser: %w", err)
	}
	return nil
}
