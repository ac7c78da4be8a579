package registry

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SetLatest rewrites the latest field of the named skills in a registry
// document. Key order and comments of the document are preserved; skills
// missing from versions are left as they are.
func SetLatest(data []byte, versions map[string]string) ([]byte, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing registry document: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("registry document is not a mapping")
	}

	skills := mappingValue(doc.Content[0], "skills")
	if skills == nil || skills.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("registry document has no skills mapping")
	}

	for i := 0; i+1 < len(skills.Content); i += 2 {
		name := skills.Content[i].Value
		entry := skills.Content[i+1]
		v, ok := versions[name]
		if !ok || entry.Kind != yaml.MappingNode {
			continue
		}

		if latest := mappingValue(entry, "latest"); latest != nil {
			latest.Kind = yaml.ScalarNode
			latest.Tag = "!!str"
			latest.Value = v
			latest.Style = 0
			continue
		}
		entry.Content = append(entry.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: "latest"},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v},
		)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return nil, fmt.Errorf("encoding registry document: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding registry document: %w", err)
	}
	return buf.Bytes(), nil
}

// mappingValue returns the value node for key in a mapping node.
func mappingValue(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

// WriteFileAtomic writes data to a temp file beside path and renames it into place.
func WriteFileAtomic(path string, data []byte) error {
	mode := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, mode); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath) // Clean up on failure
		return fmt.Errorf("renaming temp file: %w", err)
	}

	return nil
}
