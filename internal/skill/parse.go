package skill

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ManifestName is the expected skill manifest filename.
const ManifestName = "SKILL.md"

const delimiter = "---"

// LoadFromDir loads the skill manifest of a skill directory.
func LoadFromDir(dir string) (*Skill, error) {
	return ParseFile(filepath.Join(dir, ManifestName))
}

// ParseFile parses a skill manifest from a file path.
func ParseFile(path string) (*Skill, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open skill manifest: %w", err)
	}
	defer file.Close()

	return Parse(file)
}

// Parse parses a skill manifest from a reader. The frontmatter must open on
// the first line.
func Parse(reader io.Reader) (*Skill, error) {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if !scanner.Scan() || strings.TrimSpace(scanner.Text()) != delimiter {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read skill manifest: %w", err)
		}
		return nil, fmt.Errorf("skill manifest has no frontmatter")
	}

	var (
		front  strings.Builder
		body   strings.Builder
		closed bool
	)
	for scanner.Scan() {
		line := scanner.Text()
		if !closed {
			if strings.TrimSpace(line) == delimiter {
				closed = true
				continue
			}
			front.WriteString(line)
			front.WriteByte('\n')
			continue
		}
		body.WriteString(line)
		body.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read skill manifest: %w", err)
	}
	if !closed {
		return nil, fmt.Errorf("skill manifest frontmatter is not closed")
	}

	var s Skill
	if err := yaml.Unmarshal([]byte(front.String()), &s); err != nil {
		return nil, fmt.Errorf("decode skill manifest: %w", err)
	}
	s.Body = strings.TrimLeft(body.String(), "\n")
	return &s, nil
}

// ParseString parses a skill manifest from a string.
func ParseString(content string) (*Skill, error) {
	return Parse(strings.NewReader(content))
}
