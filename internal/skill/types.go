// Package skill reads the SKILL.md manifest at the root of an installed skill.
package skill

// Skill is a parsed SKILL.md: YAML frontmatter followed by markdown
// instructions.
type Skill struct {
	// Name is the identifier Claude Code shows for the skill (required).
	Name string `yaml:"name" json:"name"`

	// Description tells Claude Code when to use the skill (required).
	Description string `yaml:"description" json:"description"`

	// AllowedTools restricts the tools available while the skill is active.
	AllowedTools string `yaml:"allowed-tools,omitempty" json:"allowed_tools,omitempty"`

	// License names the license the skill is published under.
	License string `yaml:"license,omitempty" json:"license,omitempty"`

	// Body is the markdown after the frontmatter.
	Body string `yaml:"-" json:"-"`
}
