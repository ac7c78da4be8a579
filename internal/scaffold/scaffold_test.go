package scaffold

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	kerrors "github.com/kudosx/kudosx/internal/errors"
	"github.com/kudosx/kudosx/internal/skill"
)

func TestTemplates(t *testing.T) {
	names := Templates()
	if len(names) == 0 || names[0] != DefaultTemplate {
		t.Errorf("Templates() = %v, want %q first", names, DefaultTemplate)
	}
}

func TestCreate(t *testing.T) {
	dir := t.TempDir()

	res, err := Create(Options{Name: "demo", Dir: dir})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if res.Target != filepath.Join(dir, "demo") || res.Replaced {
		t.Errorf("result = %+v", res)
	}

	claude, err := os.ReadFile(filepath.Join(res.Target, "CLAUDE.md"))
	if err != nil {
		t.Fatalf("CLAUDE.md not written: %v", err)
	}
	if !strings.HasPrefix(string(claude), "# demo\n") {
		t.Errorf("CLAUDE.md not rendered:\n%s", claude)
	}
	if _, err := os.Stat(filepath.Join(res.Target, "CLAUDE.md.tmpl")); !os.IsNotExist(err) {
		t.Error("template suffix should be stripped")
	}

	script := filepath.Join(res.Target, "technical-design", "scripts", "render_mermaid_diagram.sh")
	info, err := os.Stat(script)
	if err != nil {
		t.Fatalf("script not written: %v", err)
	}
	if info.Mode().Perm()&0100 == 0 {
		t.Errorf("script mode = %v, want executable", info.Mode())
	}

	s, err := skill.LoadFromDir(filepath.Join(res.Target, "technical-design"))
	if err != nil {
		t.Fatalf("template skill: %v", err)
	}
	if result := s.Validate(); result.HasErrors() {
		t.Errorf("template skill invalid: %v", result.Error())
	}
}

func TestCreate_DefaultName(t *testing.T) {
	dir := t.TempDir()
	res, err := Create(Options{Dir: dir, Template: "default"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if filepath.Base(res.Target) != DefaultName || res.Template != DefaultTemplate {
		t.Errorf("result = %+v", res)
	}
}

func TestCreate_Existing(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "demo")
	if err := os.MkdirAll(target, 0755); err != nil {
		t.Fatal(err)
	}
	stale := filepath.Join(target, "stale.txt")
	if err := os.WriteFile(stale, []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Create(Options{Name: "demo", Dir: dir})
	if !kerrors.HasCode(err, kerrors.CodeTemplateExists) {
		t.Fatalf("error = %v, want %s", err, kerrors.CodeTemplateExists)
	}
	if _, err := os.Stat(stale); err != nil {
		t.Error("existing directory must be left alone without force")
	}

	res, err := Create(Options{Name: "demo", Dir: dir, Force: true})
	if err != nil {
		t.Fatalf("Create(force) error = %v", err)
	}
	if !res.Replaced {
		t.Error("Replaced should be set")
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("force should delete the old directory")
	}
}

func TestCreate_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code string
	}{
		{"unknown template", Options{Name: "x", Template: "v9"}, kerrors.CodeIOFileNotFound},
		{"nested name", Options{Name: "a/b"}, kerrors.CodeUsage},
		{"parent name", Options{Name: ".."}, kerrors.CodeUsage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.Dir = t.TempDir()
			_, err := Create(tt.opts)
			if !kerrors.HasCode(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestCreate_BadTemplateSyntax(t *testing.T) {
	fsys := fstest.MapFS{
		"templates/v1/README.md.tmpl": {Data: []byte("{{.Missing}}")},
	}
	if _, err := create(fsys, Options{Name: "x", Dir: t.TempDir()}); err == nil {
		t.Error("expected error for unknown template field")
	}
}
