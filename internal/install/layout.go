package install

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kudosx/kudosx/internal/config"
)

// Scope selects the installation root.
type Scope string

const (
	// ScopeGlobal installs under the user's home (~/.claude).
	ScopeGlobal Scope = "global"
	// ScopeProject installs under the working directory (./.claude).
	ScopeProject Scope = "project"
)

// ScopeFor maps the --local flag to a scope.
func ScopeFor(local bool) Scope {
	if local {
		return ScopeProject
	}
	return ScopeGlobal
}

const (
	skillsDir   = "skills"
	commandsDir = "commands"
)

// Layout locates skills and commands below one installation root.
type Layout struct {
	Scope Scope
	Root  string
}

// NewLayout resolves the installation root for scope. workDir anchors a
// relative project root.
func NewLayout(cfg *config.Config, scope Scope, workDir string) (Layout, error) {
	switch scope {
	case ScopeGlobal:
		root := ExpandPath(cfg.Paths.GlobalRoot)
		if strings.HasPrefix(root, "~") {
			return Layout{}, fmt.Errorf("cannot expand %s: home directory unknown", cfg.Paths.GlobalRoot)
		}
		return Layout{Scope: scope, Root: root}, nil
	case ScopeProject:
		return Layout{Scope: scope, Root: cfg.ProjectRoot(workDir)}, nil
	default:
		return Layout{}, fmt.Errorf("unknown scope %q", scope)
	}
}

// SkillsDir returns <root>/skills.
func (l Layout) SkillsDir() string {
	return filepath.Join(l.Root, skillsDir)
}

// CommandsDir returns <root>/commands.
func (l Layout) CommandsDir() string {
	return filepath.Join(l.Root, commandsDir)
}

// SkillPath returns <root>/skills/<targetDir>.
func (l Layout) SkillPath(targetDir string) string {
	return filepath.Join(l.SkillsDir(), targetDir)
}

// Skills lists the installed skill folders, sorted, skipping hidden entries
// and leftovers of interrupted installs.
func (l Layout) Skills() ([]string, error) {
	entries, err := readDir(l.SkillsDir())
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") || isScratch(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Commands lists the installed command names (*.md without extension), sorted.
func (l Layout) Commands() ([]string, error) {
	entries, err := readDir(l.CommandsDir())
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".md") {
			continue
		}
		names = append(names, strings.TrimSuffix(name, ".md"))
	}
	sort.Strings(names)
	return names, nil
}

// readDir returns no entries for a missing directory.
func readDir(dir string) ([]os.DirEntry, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	return entries, err
}

// ExpandPath expands ~ at the start of a path to the user's home directory.
// If ~ is not at the start or home directory cannot be determined, returns path unchanged.
func ExpandPath(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	return filepath.Join(home, path[2:])
}
