// Package manager implements the skill operations shared by the command line
// and the interactive browser: add, update, remove, status and search.
//
// It ties the registry, the version resolver and the installer together.
// Every method re-reads installation state from disk; nothing is cached here
// beyond the registry memo.
package manager

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/kudosx/kudosx/internal/config"
	kerrors "github.com/kudosx/kudosx/internal/errors"
	"github.com/kudosx/kudosx/internal/install"
	"github.com/kudosx/kudosx/internal/logging"
	"github.com/kudosx/kudosx/internal/registry"
	"github.com/kudosx/kudosx/internal/resolver"
	"github.com/kudosx/kudosx/internal/skill"
	"github.com/kudosx/kudosx/internal/status"
	"github.com/kudosx/kudosx/internal/usage"
	"github.com/kudosx/kudosx/internal/version"
)

// RegistryCache supplies the merged registry.
type RegistryCache interface {
	Get(ctx context.Context) (registry.Registry, error)
	Reload(ctx context.Context) (registry.Registry, error)
}

// Installer materializes a skill from its repository.
type Installer interface {
	Install(ctx context.Context, repo, sourcePath, targetPath, version string) error
}

// Result names what an operation did.
type Result string

const (
	ResultInstalled Result = "installed"
	ResultUpdated   Result = "updated"
	ResultUpToDate  Result = "up-to-date"
	ResultRemoved   Result = "removed"
	ResultFailed    Result = "failed"
)

// Outcome describes the effect of an operation on one skill.
type Outcome struct {
	Name   string
	Scope  install.Scope
	Path   string
	Result Result

	// From is the version installed before the operation, To the version
	// after it. Either may be empty when unknown.
	From string
	To   string

	// Err is set for failed entries of UpdateAll.
	Err error

	// ManifestErr is set when the installed SKILL.md is missing or invalid.
	// The install itself succeeded.
	ManifestErr error
}

// Options configures a Manager.
type Options struct {
	Config    *config.Config
	WorkDir   string
	Registry  RegistryCache
	Resolver  *resolver.Resolver
	Installer Installer
	Logger    *slog.Logger
}

// Manager performs skill operations.
type Manager struct {
	cfg       *config.Config
	workDir   string
	registry  RegistryCache
	resolver  *resolver.Resolver
	installer Installer
	logger    *slog.Logger
}

// New creates a Manager.
func New(opts Options) *Manager {
	return &Manager{
		cfg:       opts.Config,
		workDir:   opts.WorkDir,
		registry:  opts.Registry,
		resolver:  opts.Resolver,
		installer: opts.Installer,
		logger:    opts.Logger,
	}
}

// Registry returns the merged registry.
func (m *Manager) Registry(ctx context.Context) (registry.Registry, error) {
	return m.registry.Get(ctx)
}

// Reload discards the registry memo and rebuilds it.
func (m *Manager) Reload(ctx context.Context) (registry.Registry, error) {
	return m.registry.Reload(ctx)
}

// Describe looks up a skill by name.
func (m *Manager) Describe(ctx context.Context, name string) (registry.Descriptor, error) {
	reg, err := m.registry.Get(ctx)
	if err != nil {
		return registry.Descriptor{}, err
	}
	d, ok := reg.Lookup(name)
	if !ok {
		return registry.Descriptor{}, kerrors.UnknownSkill(name, reg.Names())
	}
	return d, nil
}

// Layout returns the installation layout for scope.
func (m *Manager) Layout(scope install.Scope) (install.Layout, error) {
	l, err := install.NewLayout(m.cfg, scope, m.workDir)
	if err != nil {
		return install.Layout{}, kerrors.Wrap(kerrors.CodeConfigInvalidValue, "cannot resolve installation root", err)
	}
	return l, nil
}

// TargetPath returns where d is installed for scope.
func (m *Manager) TargetPath(d registry.Descriptor, scope install.Scope) (string, error) {
	l, err := m.Layout(scope)
	if err != nil {
		return "", err
	}
	return l.SkillPath(d.TargetDir), nil
}

// Add installs a skill. An installed target is only replaced with force.
// An unresolvable latest version does not block the install; the skill is
// installed without a VERSION marker.
func (m *Manager) Add(ctx context.Context, name string, scope install.Scope, force bool) (Outcome, error) {
	d, err := m.Describe(ctx, name)
	if err != nil {
		return Outcome{Name: name, Scope: scope, Result: ResultFailed}, err
	}
	path, err := m.TargetPath(d, scope)
	if err != nil {
		return Outcome{Name: name, Scope: scope, Result: ResultFailed}, err
	}

	out := Outcome{Name: name, Scope: scope, Path: path, Result: ResultFailed}
	if install.IsInstalled(path) {
		if !force {
			return out, kerrors.AlreadyInstalled(name, path)
		}
		out.From = install.InstalledVersion(path)
	}

	logger := logging.WithSkill(m.logger, name)
	latest, err := m.resolver.Latest(ctx, d.Repo)
	if err != nil {
		logger.Warn("latest version unknown, installing without version marker", "error", err)
		latest = ""
	}

	if err := m.installer.Install(ctx, d.Repo, d.SourcePath, path, latest); err != nil {
		return out, err
	}
	logger.Info("skill installed", "path", path, "version", latest)

	out.Result = ResultInstalled
	out.To = latest
	out.ManifestErr = checkManifest(logger, path)
	return out, nil
}

// Update reinstalls a skill when a newer version is available, or always
// with force. The latest version must be resolvable. A skill without a
// VERSION marker is never considered outdated.
func (m *Manager) Update(ctx context.Context, name string, scope install.Scope, force bool) (Outcome, error) {
	d, err := m.Describe(ctx, name)
	if err != nil {
		return Outcome{Name: name, Scope: scope, Result: ResultFailed}, err
	}
	path, err := m.TargetPath(d, scope)
	if err != nil {
		return Outcome{Name: name, Scope: scope, Result: ResultFailed}, err
	}
	if !install.IsInstalled(path) {
		return Outcome{Name: name, Scope: scope, Path: path, Result: ResultFailed}, kerrors.NotInstalled(name, path)
	}

	latest, err := m.resolver.Latest(ctx, d.Repo)
	return m.update(ctx, d, scope, path, latest, err, force)
}

// UpdateAll updates every registry skill installed in scope. Latest
// versions are resolved concurrently up front; installs run one at a time.
// Per-skill failures are recorded on the outcomes.
func (m *Manager) UpdateAll(ctx context.Context, scope install.Scope, force bool) ([]Outcome, error) {
	reg, err := m.registry.Get(ctx)
	if err != nil {
		return nil, err
	}
	layout, err := m.Layout(scope)
	if err != nil {
		return nil, err
	}

	var (
		installed []registry.Descriptor
		repos     []string
	)
	for _, d := range reg.Sorted() {
		if install.IsInstalled(layout.SkillPath(d.TargetDir)) {
			installed = append(installed, d)
			repos = append(repos, d.Repo)
		}
	}
	if len(installed) == 0 {
		return nil, nil
	}

	lookups := m.resolver.LatestAll(ctx, repos, false)

	outcomes := make([]Outcome, 0, len(installed))
	for _, d := range installed {
		lookup := lookups[d.Repo]
		out, err := m.update(ctx, d, scope, layout.SkillPath(d.TargetDir), lookup.Version, lookup.Err, force)
		out.Err = err
		outcomes = append(outcomes, out)
	}
	return outcomes, nil
}

func (m *Manager) update(ctx context.Context, d registry.Descriptor, scope install.Scope, path, latest string, resolveErr error, force bool) (Outcome, error) {
	logger := logging.WithSkill(m.logger, d.Name)
	out := Outcome{
		Name:   d.Name,
		Scope:  scope,
		Path:   path,
		Result: ResultFailed,
		From:   install.InstalledVersion(path),
	}
	if resolveErr != nil {
		return out, resolveErr
	}
	out.To = latest

	if !force && !version.IsUpdateAvailable(out.From, latest) {
		logger.Debug("skill up to date", "installed", out.From, "latest", latest)
		out.Result = ResultUpToDate
		out.To = out.From
		return out, nil
	}

	if err := m.installer.Install(ctx, d.Repo, d.SourcePath, path, latest); err != nil {
		return out, err
	}
	logger.Info("skill updated", "path", path, "from", out.From, "to", latest)
	out.Result = ResultUpdated
	out.ManifestErr = checkManifest(logger, path)
	return out, nil
}

// checkManifest parses and validates the SKILL.md of an installed skill,
// logging a warning when it would not load in Claude Code.
func checkManifest(logger *slog.Logger, path string) error {
	s, err := skill.LoadFromDir(path)
	if err != nil {
		logger.Warn("installed skill has no usable SKILL.md", "path", path, "error", err)
		return err
	}
	if result := s.Validate(); result.HasErrors() {
		logger.Warn("installed SKILL.md is invalid", "path", path, "problems", len(result.Errors))
		return result
	}
	return nil
}

// Remove deletes an installed skill.
func (m *Manager) Remove(ctx context.Context, name string, scope install.Scope) (Outcome, error) {
	d, err := m.Describe(ctx, name)
	if err != nil {
		return Outcome{Name: name, Scope: scope, Result: ResultFailed}, err
	}
	path, err := m.TargetPath(d, scope)
	if err != nil {
		return Outcome{Name: name, Scope: scope, Result: ResultFailed}, err
	}

	out := Outcome{Name: name, Scope: scope, Path: path, Result: ResultFailed, From: install.InstalledVersion(path)}
	if err := install.Remove(name, path); err != nil {
		return out, err
	}
	logging.WithSkill(m.logger, name).Info("skill removed", "path", path)
	out.Result = ResultRemoved
	return out, nil
}

// LatestVersions resolves the latest version of every registry skill,
// keyed by skill name. Skills whose version cannot be resolved are absent.
func (m *Manager) LatestVersions(ctx context.Context) (map[string]string, error) {
	reg, err := m.registry.Get(ctx)
	if err != nil {
		return nil, err
	}

	descs := reg.Sorted()
	repos := make([]string, 0, len(descs))
	for _, d := range descs {
		repos = append(repos, d.Repo)
	}
	lookups := m.resolver.LatestAll(ctx, repos, false)

	versions := make(map[string]string, len(descs))
	for _, d := range descs {
		lookup := lookups[d.Repo]
		if lookup.Err != nil {
			m.logger.Debug("latest version unknown", "skill", d.Name, "error", lookup.Err)
			continue
		}
		versions[d.Name] = lookup.Version
	}
	return versions, nil
}

// Statuses reports every registry skill under both installation roots.
// latest may be nil.
func (m *Manager) Statuses(ctx context.Context, latest map[string]string) ([]status.SkillStatus, error) {
	reg, err := m.registry.Get(ctx)
	if err != nil {
		return nil, err
	}
	global, err := m.Layout(install.ScopeGlobal)
	if err != nil {
		return nil, err
	}
	local, err := m.Layout(install.ScopeProject)
	if err != nil {
		return nil, err
	}

	descs := reg.Sorted()
	out := make([]status.SkillStatus, 0, len(descs))
	for _, d := range descs {
		out = append(out, status.Inspect(d, global, local, latest[d.Name]))
	}
	return out, nil
}

// Search returns registry skills whose name or repository contains query,
// case-insensitively. An empty query matches everything.
func (m *Manager) Search(ctx context.Context, query string) ([]registry.Descriptor, error) {
	reg, err := m.registry.Get(ctx)
	if err != nil {
		return nil, err
	}

	query = strings.ToLower(strings.TrimSpace(query))
	var out []registry.Descriptor
	for _, d := range reg.Sorted() {
		if query == "" ||
			strings.Contains(strings.ToLower(d.Name), query) ||
			strings.Contains(strings.ToLower(d.Repo), query) {
			out = append(out, d)
		}
	}
	return out, nil
}

// Inventory lists skills and commands under each of scopes.
func (m *Manager) Inventory(scopes []install.Scope, skills, commands bool) ([]status.Inventory, error) {
	invs := make([]status.Inventory, 0, len(scopes))
	for _, scope := range scopes {
		l, err := m.Layout(scope)
		if err != nil {
			return nil, err
		}
		inv, err := status.TakeInventory(l, skills, commands)
		if err != nil {
			return nil, kerrors.IOReadError(l.Root, err)
		}
		invs = append(invs, inv)
	}
	return invs, nil
}

// InstalledScopes returns the scopes where d is installed, global first.
func (m *Manager) InstalledScopes(d registry.Descriptor) []install.Scope {
	var scopes []install.Scope
	for _, scope := range []install.Scope{install.ScopeGlobal, install.ScopeProject} {
		path, err := m.TargetPath(d, scope)
		if err == nil && install.IsInstalled(path) {
			scopes = append(scopes, scope)
		}
	}
	return scopes
}

// Usage scans the Claude Code session logs kept below the global root.
func (m *Manager) Usage(ctx context.Context) (*usage.Report, error) {
	l, err := m.Layout(install.ScopeGlobal)
	if err != nil {
		return nil, err
	}
	dir := filepath.Join(l.Root, usage.ProjectsDir)
	report, err := usage.Scan(ctx, dir, m.logger)
	if err != nil {
		return nil, kerrors.IOReadError(dir, err)
	}
	return report, nil
}
