package status

import (
	"github.com/kudosx/kudosx/internal/install"
	"github.com/kudosx/kudosx/internal/registry"
	"github.com/kudosx/kudosx/internal/version"
)

// State is the derived condition of a skill across both installation roots.
type State string

const (
	StateAvailable State = "available"
	StateInstalled State = "installed"
	StateUpdate    State = "update"
)

// Installation describes a skill at one installation root.
type Installation struct {
	Path      string `json:"path"`
	Installed bool   `json:"installed"`
	Version   string `json:"version,omitempty"`
}

// SkillStatus contains computed information about a skill for display.
type SkillStatus struct {
	Name   string       `json:"name"`
	Repo   string       `json:"repo"`
	Global Installation `json:"global"`
	Local  Installation `json:"local"`
	Latest string       `json:"latest,omitempty"`
}

// Inspect reads the installation state of d under both layouts.
func Inspect(d registry.Descriptor, global, local install.Layout, latest string) SkillStatus {
	return SkillStatus{
		Name:   d.Name,
		Repo:   d.Repo,
		Global: inspectPath(global.SkillPath(d.TargetDir)),
		Local:  inspectPath(local.SkillPath(d.TargetDir)),
		Latest: latest,
	}
}

func inspectPath(path string) Installation {
	inst := Installation{Path: path, Installed: install.IsInstalled(path)}
	if inst.Installed {
		inst.Version = install.InstalledVersion(path)
	}
	return inst
}

// InstalledVersion returns the global version, else the local one.
func (s SkillStatus) InstalledVersion() string {
	if s.Global.Version != "" {
		return s.Global.Version
	}
	return s.Local.Version
}

// State reports available, installed, or update. A skill whose latest
// version is unknown is never reported as needing an update.
func (s SkillStatus) State() State {
	if !s.Global.Installed && !s.Local.Installed {
		return StateAvailable
	}
	if version.IsUpdateAvailable(s.Global.Version, s.Latest) || version.IsUpdateAvailable(s.Local.Version, s.Latest) {
		return StateUpdate
	}
	return StateInstalled
}

// At returns the installation for the given scope.
func (s SkillStatus) At(scope install.Scope) Installation {
	if scope == install.ScopeProject {
		return s.Local
	}
	return s.Global
}

// Inventory lists what is present under one installation root.
type Inventory struct {
	Scope    install.Scope `json:"scope"`
	Root     string        `json:"root"`
	Skills   []string      `json:"skills,omitempty"`
	Commands []string      `json:"commands,omitempty"`
}

// TakeInventory lists skills and commands under l. Either listing can be
// skipped.
func TakeInventory(l install.Layout, skills, commands bool) (Inventory, error) {
	inv := Inventory{Scope: l.Scope, Root: l.Root}
	var err error
	if skills {
		if inv.Skills, err = l.Skills(); err != nil {
			return inv, err
		}
	}
	if commands {
		if inv.Commands, err = l.Commands(); err != nil {
			return inv, err
		}
	}
	return inv, nil
}
