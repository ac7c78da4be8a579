package browser

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	kerrors "github.com/kudosx/kudosx/internal/errors"
	"github.com/kudosx/kudosx/internal/install"
	"github.com/kudosx/kudosx/internal/logging"
	"github.com/kudosx/kudosx/internal/manager"
	"github.com/kudosx/kudosx/internal/registry"
	"github.com/kudosx/kudosx/internal/status"
	"github.com/kudosx/kudosx/internal/tasks"
	"github.com/kudosx/kudosx/internal/usage"
)

// fakeService keeps installation state in memory.
type fakeService struct {
	mu        sync.Mutex
	names     []string
	installed map[string]install.Scope
	latest    map[string]string
	addGate   chan struct{}
	addErr    error
	calls     []string
	reloads   int
	scans     int
	usage     *usage.Report
}

func newFakeService() *fakeService {
	return &fakeService{
		names:     []string{"skill-a", "skill-b"},
		installed: map[string]install.Scope{},
		latest:    map[string]string{"skill-a": "1.0.0"},
	}
}

func (f *fakeService) Reload(ctx context.Context) (registry.Registry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reloads++
	return registry.Registry{}, nil
}

func (f *fakeService) LatestVersions(ctx context.Context) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[string]string{}
	for k, v := range f.latest {
		out[k] = v
	}
	return out, nil
}

func (f *fakeService) Statuses(ctx context.Context, latest map[string]string) ([]status.SkillStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []status.SkillStatus
	for _, name := range f.names {
		s := status.SkillStatus{
			Name:   name,
			Global: status.Installation{Path: "/g/skills/" + name},
			Local:  status.Installation{Path: "/p/skills/" + name},
			Latest: latest[name],
		}
		switch f.installed[name] {
		case install.ScopeGlobal:
			s.Global.Installed, s.Global.Version = true, latest[name]
		case install.ScopeProject:
			s.Local.Installed, s.Local.Version = true, latest[name]
		}
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeService) Inventory(scopes []install.Scope, skills, commands bool) ([]status.Inventory, error) {
	return []status.Inventory{
		{Scope: install.ScopeGlobal, Root: "/g", Commands: []string{"review"}},
		{Scope: install.ScopeProject, Root: "/p"},
	}, nil
}

func (f *fakeService) Add(ctx context.Context, name string, scope install.Scope, force bool) (manager.Outcome, error) {
	if f.addGate != nil {
		<-f.addGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "add "+name+" "+string(scope))
	if f.addErr != nil {
		return manager.Outcome{Name: name, Scope: scope, Result: manager.ResultFailed}, f.addErr
	}
	f.installed[name] = scope
	return manager.Outcome{Name: name, Scope: scope, Path: "/" + string(scope) + "/" + name, Result: manager.ResultInstalled, To: f.latest[name]}, nil
}

func (f *fakeService) Remove(ctx context.Context, name string, scope install.Scope) (manager.Outcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "remove "+name+" "+string(scope))
	delete(f.installed, name)
	return manager.Outcome{Name: name, Scope: scope, Result: manager.ResultRemoved}, nil
}

func (f *fakeService) Usage(ctx context.Context) (*usage.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scans++
	if f.usage == nil {
		return &usage.Report{ByDate: map[string]*usage.Day{}}, nil
	}
	return f.usage, nil
}

func (f *fakeService) scanCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.scans
}

func (f *fakeService) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func newTestModel(t *testing.T, svc Service) *Model {
	t.Helper()
	runner := tasks.NewRunner(logging.NewForTest(), 8)
	return New(context.Background(), svc, runner, NewStyleSet(DefaultTheme), logging.NewForTest())
}

// next feeds the next completed task into the model.
func next(t *testing.T, m *Model) {
	t.Helper()
	select {
	case res := <-m.runner.Results():
		m.Update(resultMsg(res))
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a task")
	}
}

func press(m *Model, k string) tea.Cmd {
	var msg tea.KeyMsg
	switch k {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	_, cmd := m.Update(msg)
	return cmd
}

func loaded(t *testing.T, svc Service) *Model {
	t.Helper()
	m := newTestModel(t, svc)
	if cmd := m.Init(); cmd == nil {
		t.Fatal("Init should return a command")
	}
	next(t, m)
	return m
}

func TestInitialRefresh(t *testing.T) {
	m := loaded(t, newFakeService())

	if len(m.statuses) != 2 {
		t.Fatalf("statuses = %d, want 2", len(m.statuses))
	}
	view := m.View()
	for _, want := range []string{"skill-a", "skill-b", "1.0.0", "available"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestInstallGlobal(t *testing.T) {
	svc := newFakeService()
	m := loaded(t, svc)

	press(m, "g")
	if !strings.Contains(m.notice, "Installing skill-a (global)") {
		t.Errorf("notice = %q", m.notice)
	}
	next(t, m)

	if calls := svc.Calls(); len(calls) != 1 || calls[0] != "add skill-a global" {
		t.Errorf("calls = %v", calls)
	}
	if !strings.HasPrefix(m.notice, "Installed skill-a 1.0.0") || m.noticeErr {
		t.Errorf("notice = %q", m.notice)
	}
	if !m.statuses[0].Global.Installed {
		t.Error("status should be refreshed after install")
	}
}

func TestInstall_SamePathIsSerialized(t *testing.T) {
	svc := newFakeService()
	m := loaded(t, svc)
	svc.addGate = make(chan struct{})

	press(m, "g")
	press(m, "g")
	if !m.noticeErr || !strings.Contains(m.notice, "already in progress") {
		t.Errorf("second install notice = %q", m.notice)
	}

	press(m, "l")
	if len(m.runner.InFlight()) != 2 {
		t.Errorf("in flight = %v, want global and local installs", m.runner.InFlight())
	}
	if view := m.View(); !strings.Contains(view, "install skill-a (global)") || !strings.Contains(view, "install skill-a (project)") {
		t.Errorf("status line should list running tasks:\n%s", view)
	}

	close(svc.addGate)
	next(t, m)
	next(t, m)
	if len(svc.Calls()) != 2 {
		t.Errorf("calls = %v, want 2", svc.Calls())
	}
}

func TestInstall_KeepsNewerLatestFromRefresh(t *testing.T) {
	svc := newFakeService()
	m := loaded(t, svc)

	svc.mu.Lock()
	svc.latest["skill-a"] = "2.0.0"
	svc.mu.Unlock()
	svc.addGate = make(chan struct{})

	press(m, "g")
	press(m, "r")
	next(t, m)
	if got := m.latest["skill-a"]; got != "2.0.0" {
		t.Fatalf("latest after refresh = %q, want 2.0.0", got)
	}

	close(svc.addGate)
	next(t, m)
	if !strings.HasPrefix(m.notice, "Installed skill-a") {
		t.Fatalf("notice = %q", m.notice)
	}
	if got := m.latest["skill-a"]; got != "2.0.0" {
		t.Errorf("latest after install = %q, want 2.0.0", got)
	}
	if got := m.statuses[0].Latest; got != "2.0.0" {
		t.Errorf("status latest after install = %q, want 2.0.0", got)
	}
	if !m.statuses[0].Global.Installed {
		t.Error("install result should still update installation state")
	}
}

func TestInstallFailure(t *testing.T) {
	svc := newFakeService()
	svc.addErr = kerrors.DownloadFailed("acme/a", "https://example.invalid/a.zip", nil)
	m := loaded(t, svc)

	press(m, "enter")
	next(t, m)

	if !m.noticeErr || !strings.Contains(m.notice, "Failed to install skill-a") {
		t.Errorf("notice = %q", m.notice)
	}
}

func TestDelete(t *testing.T) {
	svc := newFakeService()
	svc.installed["skill-b"] = install.ScopeProject
	m := loaded(t, svc)

	press(m, "d")
	if !m.noticeErr || !strings.Contains(m.notice, "skill-a is not installed") {
		t.Errorf("notice = %q", m.notice)
	}
	if len(m.runner.InFlight()) != 0 {
		t.Error("deleting an absent skill should not start a task")
	}

	press(m, "down")
	if m.table.Cursor() != 1 {
		t.Fatalf("cursor = %d, want 1", m.table.Cursor())
	}
	press(m, "d")
	next(t, m)

	if calls := svc.Calls(); len(calls) != 1 || calls[0] != "remove skill-b project" {
		t.Errorf("calls = %v", calls)
	}
	if m.notice != "Deleted skill-b (project)" {
		t.Errorf("notice = %q", m.notice)
	}
}

func TestEnterUpdatesWhereInstalled(t *testing.T) {
	svc := newFakeService()
	svc.installed["skill-a"] = install.ScopeProject
	m := loaded(t, svc)

	press(m, "enter")
	next(t, m)
	if calls := svc.Calls(); len(calls) != 1 || calls[0] != "add skill-a project" {
		t.Errorf("calls = %v", calls)
	}
}

func TestRefreshReloadsRegistry(t *testing.T) {
	svc := newFakeService()
	m := loaded(t, svc)

	press(m, "r")
	next(t, m)
	if svc.reloads != 1 {
		t.Errorf("reloads = %d, want 1", svc.reloads)
	}
	if m.notice != "Skills refreshed" {
		t.Errorf("notice = %q", m.notice)
	}
}

func TestCommandsView(t *testing.T) {
	m := loaded(t, newFakeService())

	press(m, "c")
	if m.view != viewCommands {
		t.Fatal("c should switch to the commands view")
	}
	view := m.View()
	if !strings.Contains(view, "review") || !strings.Contains(view, "/g/commands/review.md") {
		t.Errorf("commands view:\n%s", view)
	}

	press(m, "g")
	if len(m.runner.InFlight()) != 0 {
		t.Error("install keys should do nothing in the commands view")
	}

	press(m, "tab")
	if m.view != viewSkills {
		t.Error("tab should switch back to skills")
	}
}

func testReport() *usage.Report {
	day := func(input int64, models ...string) *usage.Day {
		d := &usage.Day{Tokens: usage.Tokens{Input: input, Output: 1000}, Models: map[string]struct{}{}}
		for _, m := range models {
			d.Models[m] = struct{}{}
		}
		return d
	}
	return &usage.Report{ByDate: map[string]*usage.Day{
		"2026-03-02": day(1000000, "opus"),
		"2026-03-09": day(2000, "sonnet"),
		"2026-04-01": day(3000, "haiku", "sonnet"),
	}}
}

func TestUsageView(t *testing.T) {
	svc := newFakeService()
	svc.usage = testReport()
	m := loaded(t, svc)
	m.now = func() time.Time { return time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC) }

	press(m, "u")
	if m.view != viewUsage {
		t.Fatal("u should switch to the usage view")
	}
	next(t, m)
	if svc.scanCount() != 1 {
		t.Fatalf("scans = %d, want 1", svc.scanCount())
	}

	view := m.View()
	for _, want := range []string{"Usage", "Daily", "03-02", "03-09*", "1,000,000", "Total", "1,005,000"} {
		if !strings.Contains(view, want) {
			t.Errorf("daily view missing %q:\n%s", want, view)
		}
	}

	press(m, "w")
	if m.period != usage.PeriodWeek {
		t.Fatalf("period = %s, want week", m.period)
	}
	if view := m.View(); !strings.Contains(view, "2026-W11*") || !strings.Contains(view, "2026-W14") {
		t.Errorf("weekly view:\n%s", view)
	}

	press(m, "m")
	if view := m.View(); !strings.Contains(view, "2026-03*") || !strings.Contains(view, "haiku,sonnet") {
		t.Errorf("monthly view:\n%s", view)
	}

	// d selects the daily period here instead of deleting.
	press(m, "d")
	if m.period != usage.PeriodDay {
		t.Errorf("period = %s, want day", m.period)
	}
	if len(m.runner.InFlight()) != 0 || len(svc.Calls()) != 0 {
		t.Error("d in the usage view must not start a delete")
	}

	// Switching back reuses the report; r rescans.
	press(m, "s")
	press(m, "u")
	if len(m.runner.InFlight()) != 0 {
		t.Error("returning to the usage view should reuse the report")
	}
	press(m, "r")
	next(t, m)
	if svc.scanCount() != 2 {
		t.Errorf("scans = %d, want 2", svc.scanCount())
	}
	if m.notice != "Usage refreshed" {
		t.Errorf("notice = %q", m.notice)
	}
}

func TestUsageView_Empty(t *testing.T) {
	m := loaded(t, newFakeService())

	press(m, "u")
	if rows := m.table.Rows(); len(rows) != 1 || rows[0][0] != "Loading..." {
		t.Errorf("rows while scanning = %v", rows)
	}
	next(t, m)
	if rows := m.table.Rows(); len(rows) != 1 || rows[0][0] != "No usage data" {
		t.Errorf("rows = %v", rows)
	}
}

func TestPeriodKeysOutsideUsageView(t *testing.T) {
	m := loaded(t, newFakeService())

	press(m, "w")
	press(m, "m")
	if m.period != usage.PeriodDay {
		t.Errorf("period = %s; period keys only apply in the usage view", m.period)
	}
}

func TestQuit(t *testing.T) {
	m := loaded(t, newFakeService())

	cmd := press(m, "q")
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestWindowResize(t *testing.T) {
	m := loaded(t, newFakeService())
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	if m.help.Width != 120 {
		t.Errorf("help width = %d, want 120", m.help.Width)
	}
	if !strings.Contains(m.View(), "skill-a") {
		t.Error("rows should survive a resize")
	}
}

func TestStateLabel(t *testing.T) {
	tests := map[status.State]string{
		status.StateAvailable: "· available",
		status.StateInstalled: "✓ installed",
		status.StateUpdate:    "↑ update",
	}
	for state, want := range tests {
		if got := StateLabel(state); got != want {
			t.Errorf("StateLabel(%s) = %q, want %q", state, got, want)
		}
	}
}
