package cmd

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/kudosx/kudosx/internal/config"
	"github.com/kudosx/kudosx/internal/hosting"
	"github.com/kudosx/kudosx/internal/registry"
	"github.com/kudosx/kudosx/internal/testutil"
)

const testRegistry = `# Test registry
skills:
  skill-declared:
    repo: acme/declared
    source_path: .claude/skills/declared
    target_dir: declared
    latest: "1.2.0"
  skill-tagged:
    repo: acme/tagged
    source_path: skills/tagged
    target_dir: tagged
`

const declaredSkillMD = `---
name: declared
description: Declares its version in the registry.
allowed-tools: Bash
---

# Declared
`

type fakeTags struct {
	mu   sync.Mutex
	tags map[string][]string
}

func (f *fakeTags) ListTags(ctx context.Context, repo string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tags, ok := f.tags[repo]
	if !ok {
		return nil, fmt.Errorf("repository %s not found", repo)
	}
	return tags, nil
}

func (f *fakeTags) set(repo string, tags ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tags[repo] = tags
}

// testEnv is a home directory, a project and a hosting server serving the
// registry and skill archives.
type testEnv struct {
	dir     string
	home    string
	project string
	config  string
	srv     *testutil.HostingServer
	tags    *fakeTags
	stdin   string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dir := t.TempDir()
	e := &testEnv{
		dir:     dir,
		home:    filepath.Join(dir, "home"),
		project: filepath.Join(dir, "project"),
		config:  filepath.Join(dir, "config.toml"),
		srv:     testutil.NewHostingServer(t),
		tags:    &fakeTags{tags: map[string][]string{"acme/tagged": {"v0.9.0", "v1.0.0", "v1.0.0^{}"}}},
	}
	t.Setenv("HOME", e.home)
	t.Setenv("NO_COLOR", "1")
	for _, d := range []string{e.home, e.project} {
		if err := os.MkdirAll(d, 0755); err != nil {
			t.Fatal(err)
		}
	}

	e.srv.SetFile("/registry/skills.yaml", []byte(testRegistry))
	e.srv.SetArchive("acme/declared", "main", testutil.SkillArchive(t, "acme/declared", "main", map[string]string{
		".claude/skills/declared/SKILL.md": declaredSkillMD,
		"README.md":                        "readme",
	}))
	e.srv.SetArchive("acme/tagged", "main", testutil.SkillArchive(t, "acme/tagged", "main", map[string]string{
		"skills/tagged/SKILL.md": "# tagged",
	}))

	cfg := fmt.Sprintf(`[registry]
remote_url = %q
local_file = %q
timeout = "5s"

[hosting]
base_url = %q
branch = "main"

[paths]
global_root = "~/.claude"
project_root = ".claude"

[logging]
level = "error"
`, e.srv.URL+"/registry/skills.yaml", filepath.Join(dir, "no-local.yaml"), e.srv.URL)
	if err := os.WriteFile(e.config, []byte(cfg), 0644); err != nil {
		t.Fatal(err)
	}

	origTags, origTerminal := newTagLister, isTerminal
	newTagLister = func(*config.Config, *slog.Logger) hosting.TagLister { return e.tags }
	isTerminal = func() bool { return false }
	t.Cleanup(func() {
		newTagLister, isTerminal = origTags, origTerminal
	})
	return e
}

// resetFlags restores every flag variable to its default. Cobra binds flags
// to package variables, so values would otherwise leak between runs.
func resetFlags() {
	verbose, workDir, configPath, noColor = false, "", "", false
	addForce, addLocal = false, false
	removeLocal = false
	updateAll, updateLocal, updateForce = false, false, false
	listLocal, listGlobal, listCommands, listSkills, listJSON = false, false, false, false, false
	searchJSON = false
	statusJSON = false
	syncFile, syncDryRun = registry.BundledPath, false
	initDir, initTemplate, initForce = ".", "default", false
	usagePeriod, usageJSON = "day", false
}

// run executes the command line against the environment and returns stdout.
func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(strings.NewReader(e.stdin))
	rootCmd.SetArgs(append([]string{"--config", e.config, "-C", e.project}, args...))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

// mustRun is run that fails the test on error.
func (e *testEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := e.run(t, args...)
	if err != nil {
		t.Fatalf("kudosx %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

func (e *testEnv) globalSkill(name string) string {
	return filepath.Join(e.home, ".claude", "skills", name)
}

func (e *testEnv) projectSkill(name string) string {
	return filepath.Join(e.project, ".claude", "skills", name)
}
