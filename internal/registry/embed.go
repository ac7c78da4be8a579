package registry

import (
	_ "embed"
)

// BundledPath is the repository-relative location of the bundled registry.
// Maintainers rewrite it with `kudosx repo sync`.
const BundledPath = "internal/registry/bundled/skills.yaml"

//go:embed bundled/skills.yaml
var bundled []byte

// Bundled returns the registry document compiled into the binary.
func Bundled() []byte {
	return bundled
}
