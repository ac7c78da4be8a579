package registry

import (
	"bytes"
	"strings"

	"gopkg.in/yaml.v3"

	kerrors "github.com/kudosx/kudosx/internal/errors"
)

// Parse decodes a registry document. source names the document in errors.
// An empty document yields an empty registry.
func Parse(data []byte, source string) (Registry, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Registry{}, nil
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, kerrors.RegistryInvalid(source, err)
	}

	reg := make(Registry, len(doc.Skills))
	for name, d := range doc.Skills {
		d.Name = name
		d.Latest = strings.TrimSpace(d.Latest)
		reg[name] = d
	}

	if result := ValidateRegistry(reg); result.HasErrors() {
		return nil, kerrors.RegistryInvalid(source, result)
	}

	return reg, nil
}
