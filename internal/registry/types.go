// Package registry loads and merges the skill registry.
//
// The registry maps a skill name to the repository that publishes it and to
// the folder it is installed into. Two documents contribute to it:
//   - the bundled registry shipped inside the binary (or a local override file)
//   - the remote registry published at a fixed URL
//
// Remote entries replace local entries with the same name as a whole; fields
// are never merged. A failing remote is logged and the local registry is used
// on its own.
package registry

import (
	"sort"
)

// Descriptor describes where a skill lives and where it is installed.
type Descriptor struct {
	// Name is the registry key. It is filled from the map key, not the document.
	Name string `yaml:"-" json:"name"`

	// Repo is the upstream repository in "owner/repo" form.
	Repo string `yaml:"repo" json:"repo"`

	// SourcePath is the folder within the repository archive to install.
	SourcePath string `yaml:"source_path" json:"source_path"`

	// TargetDir is the folder name under <root>/skills/.
	TargetDir string `yaml:"target_dir" json:"target_dir"`

	// Latest is the declared newest version. Empty means unknown.
	Latest string `yaml:"latest,omitempty" json:"latest,omitempty"`
}

// Registry maps skill names to descriptors.
// A Registry is never mutated after it is built; build a new one instead.
type Registry map[string]Descriptor

// document is the on-disk shape of a registry file.
type document struct {
	Skills map[string]Descriptor `yaml:"skills"`
}

// Names returns the skill names in sorted order.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the descriptor for name.
func (r Registry) Lookup(name string) (Descriptor, bool) {
	d, ok := r[name]
	return d, ok
}

// Sorted returns the descriptors ordered by name.
func (r Registry) Sorted() []Descriptor {
	out := make([]Descriptor, 0, len(r))
	for _, name := range r.Names() {
		out = append(out, r[name])
	}
	return out
}

// DeclaredLatest returns the first non-empty declared latest version among
// descriptors that point at repo, checking names in sorted order.
func (r Registry) DeclaredLatest(repo string) (string, bool) {
	for _, name := range r.Names() {
		d := r[name]
		if d.Repo == repo && d.Latest != "" {
			return d.Latest, true
		}
	}
	return "", false
}

// Merge overlays remote on local. Remote descriptors replace local ones with
// the same name. Neither input is modified.
func Merge(local, remote Registry) Registry {
	merged := make(Registry, len(local)+len(remote))
	for name, d := range local {
		merged[name] = d
	}
	for name, d := range remote {
		merged[name] = d
	}
	return merged
}
