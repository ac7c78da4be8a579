package install

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/kudosx/kudosx/internal/config"
	"github.com/kudosx/kudosx/internal/testutil"
)

func TestNewLayout(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	cfg := config.Default()

	global, err := NewLayout(cfg, ScopeGlobal, "/work")
	if err != nil {
		t.Fatalf("NewLayout(global) failed: %v", err)
	}
	if global.Root != filepath.Join(home, ".claude") {
		t.Errorf("global root = %s, want %s", global.Root, filepath.Join(home, ".claude"))
	}
	if got := global.SkillPath("cloud-aws"); got != filepath.Join(home, ".claude", "skills", "cloud-aws") {
		t.Errorf("SkillPath = %s", got)
	}

	project, err := NewLayout(cfg, ScopeProject, "/work")
	if err != nil {
		t.Fatalf("NewLayout(project) failed: %v", err)
	}
	if project.Root != filepath.Join("/work", ".claude") {
		t.Errorf("project root = %s", project.Root)
	}
	if project.CommandsDir() != filepath.Join("/work", ".claude", "commands") {
		t.Errorf("CommandsDir = %s", project.CommandsDir())
	}

	if _, err := NewLayout(cfg, Scope("elsewhere"), "/work"); err == nil {
		t.Error("NewLayout should reject an unknown scope")
	}
}

func TestScopeFor(t *testing.T) {
	if ScopeFor(true) != ScopeProject || ScopeFor(false) != ScopeGlobal {
		t.Error("ScopeFor mapping is wrong")
	}
}

func TestLayout_SkillsAndCommands(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFiles(t, root, map[string]string{
		"skills/cloud-aws/SKILL.md":              "x",
		"skills/browser-use/SKILL.md":            "x",
		"skills/.hidden/SKILL.md":                "x",
		"skills/cloud-aws.incoming.1700000000/x": "x",
		"skills/stray-file.txt":                  "x",
		"commands/review.md":                     "x",
		"commands/deploy.md":                     "x",
		"commands/notes.txt":                     "x",
		"commands/.draft.md":                     "x",
	})
	l := Layout{Scope: ScopeProject, Root: root}

	skills, err := l.Skills()
	if err != nil {
		t.Fatalf("Skills failed: %v", err)
	}
	if !reflect.DeepEqual(skills, []string{"browser-use", "cloud-aws"}) {
		t.Errorf("Skills() = %v", skills)
	}

	commands, err := l.Commands()
	if err != nil {
		t.Fatalf("Commands failed: %v", err)
	}
	if !reflect.DeepEqual(commands, []string{"deploy", "review"}) {
		t.Errorf("Commands() = %v", commands)
	}
}

func TestLayout_MissingDirectories(t *testing.T) {
	l := Layout{Scope: ScopeGlobal, Root: filepath.Join(t.TempDir(), "absent")}

	skills, err := l.Skills()
	if err != nil || len(skills) != 0 {
		t.Errorf("Skills() = %v, %v; want empty", skills, err)
	}
	commands, err := l.Commands()
	if err != nil || len(commands) != 0 {
		t.Errorf("Commands() = %v, %v; want empty", commands, err)
	}
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	tests := []struct {
		in   string
		want string
	}{
		{"~", home},
		{"~/.claude", filepath.Join(home, ".claude")},
		{"/abs/path", "/abs/path"},
		{"rel/~/x", "rel/~/x"},
	}
	for _, tt := range tests {
		if got := ExpandPath(tt.in); got != tt.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
