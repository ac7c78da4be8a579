// Package testutil provides test infrastructure, fixtures, and helpers for kudosx.
package testutil

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/kudosx/kudosx/internal/config"
)

// NewTestConfig creates a configuration whose installation roots live in a
// temporary directory. The remote registry points at an unroutable address
// so tests never reach the network unless they override it.
func NewTestConfig(t *testing.T) *config.Config {
	t.Helper()
	tmpDir := t.TempDir()

	cfg := config.Default()
	cfg.Registry.RemoteURL = "http://127.0.0.1:1/skills.yaml"
	cfg.Paths.GlobalRoot = filepath.Join(tmpDir, "home", ".claude")
	cfg.Paths.ProjectRoot = filepath.Join(tmpDir, "project", ".claude")
	cfg.Logging.Level = config.LogLevelDebug
	return cfg
}

// BuildZip builds a zip archive from a map of slash-separated paths to
// contents. Paths ending in "/" become directory entries.
func BuildZip(t *testing.T, files map[string]string) []byte {
	t.Helper()

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range names {
		if strings.HasSuffix(name, "/") {
			if _, err := zw.Create(name); err != nil {
				t.Fatalf("adding %s to zip: %v", name, err)
			}
			continue
		}
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("adding %s to zip: %v", name, err)
		}
		if _, err := w.Write([]byte(files[name])); err != nil {
			t.Fatalf("writing %s to zip: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("closing zip: %v", err)
	}
	return buf.Bytes()
}

// SkillArchive builds a branch archive the way the hosting service lays it
// out: one top-level "<repo>-<branch>/" directory holding the repository.
// files are relative to the repository root.
func SkillArchive(t *testing.T, repo, branch string, files map[string]string) []byte {
	t.Helper()

	top := repo[strings.LastIndex(repo, "/")+1:] + "-" + branch + "/"
	entries := map[string]string{top: ""}
	for name, content := range files {
		entries[top+name] = content
	}
	return BuildZip(t, entries)
}

// WriteFiles writes files (relative path to content) below dir.
func WriteFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()

	for relPath, content := range files {
		fullPath := filepath.Join(dir, filepath.FromSlash(relPath))
		if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
			t.Fatalf("Failed to create parent dir for %s: %v", relPath, err)
		}
		if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write file %s: %v", relPath, err)
		}
	}
}

// ReadTree returns every regular file below dir as relative slash path to content.
func ReadTree(t *testing.T, dir string) map[string]string {
	t.Helper()

	tree := make(map[string]string)
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		tree[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	if err != nil {
		t.Fatalf("reading tree %s: %v", dir, err)
	}
	return tree
}

// AssertFileExists asserts that a file exists.
func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("Expected file %s to exist", path)
	}
}

// AssertFileNotExists asserts that a file does not exist.
func AssertFileNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("Expected file %s to not exist", path)
	}
}

// AssertFileContains asserts that a file contains a substring.
func AssertFileContains(t *testing.T, path, substring string) {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Errorf("Failed to read file %s: %v", path, err)
		return
	}
	if !strings.Contains(string(content), substring) {
		t.Errorf("Expected file %s to contain %q, got %q", path, substring, content)
	}
}
