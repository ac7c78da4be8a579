// Package scaffold creates new projects from the templates compiled into
// the binary.
package scaffold

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	kerrors "github.com/kudosx/kudosx/internal/errors"
)

//go:embed all:templates
var embedded embed.FS

const (
	// DefaultTemplate is used when no template is named.
	DefaultTemplate = "v1"

	// DefaultName is the project directory created when no name is given.
	DefaultName = "my-project"

	templateSuffix = ".tmpl"
)

// Options configures Create.
type Options struct {
	// Name is the project directory created under Dir.
	Name string

	// Dir is the parent directory. Defaults to the current directory.
	Dir string

	// Template names the template to copy. "default" selects DefaultTemplate.
	Template string

	// Force deletes an existing project directory first.
	Force bool
}

// Result describes a created project.
type Result struct {
	Target   string
	Template string
	Replaced bool
	Files    []string
}

// data is what .tmpl files are rendered with.
type data struct {
	Name string
}

// Templates returns the names of the available templates.
func Templates() []string {
	return templateNames(embedded)
}

func templateNames(fsys fs.FS) []string {
	entries, err := fs.ReadDir(fsys, "templates")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names
}

// Create copies a template into Dir/Name. Files ending in .tmpl are
// rendered with the project name and written without the suffix.
func Create(opts Options) (*Result, error) {
	return create(embedded, opts)
}

func create(fsys fs.FS, opts Options) (*Result, error) {
	name := opts.Name
	if name == "" {
		name = DefaultName
	}
	if name != filepath.Base(name) || name == "." || name == ".." {
		return nil, kerrors.Newf(kerrors.CodeUsage, "invalid project name %q", name)
	}
	tmpl := opts.Template
	if tmpl == "" || tmpl == "default" {
		tmpl = DefaultTemplate
	}

	root := path.Join("templates", tmpl)
	if info, err := fs.Stat(fsys, root); err != nil || !info.IsDir() {
		return nil, kerrors.IOFileNotFound(root).
			WithDetail("available", templateNames(fsys))
	}

	dir := opts.Dir
	if dir == "" {
		dir = "."
	}
	target := filepath.Join(dir, name)
	res := &Result{Target: target, Template: tmpl}

	if _, err := os.Stat(target); err == nil {
		if !opts.Force {
			return nil, kerrors.Newf(kerrors.CodeTemplateExists, "directory %s already exists (use --force to replace it)", target).
				WithDetail("path", target)
		}
		if err := os.RemoveAll(target); err != nil {
			return nil, kerrors.RemovalFailed(target, err)
		}
		res.Replaced = true
	}

	err := fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel := strings.TrimPrefix(strings.TrimPrefix(p, root), "/")
		dest := filepath.Join(target, filepath.FromSlash(rel))
		if d.IsDir() {
			return os.MkdirAll(dest, 0755)
		}

		content, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		if strings.HasSuffix(rel, templateSuffix) {
			rel = strings.TrimSuffix(rel, templateSuffix)
			dest = strings.TrimSuffix(dest, templateSuffix)
			if content, err = render(p, content, data{Name: name}); err != nil {
				return err
			}
		}

		perm := os.FileMode(0644)
		if strings.HasSuffix(rel, ".sh") {
			perm = 0755
		}
		if err := os.WriteFile(dest, content, perm); err != nil {
			return kerrors.IOWriteError(dest, err)
		}
		res.Files = append(res.Files, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("copying template %s: %w", tmpl, err)
	}
	return res, nil
}

func render(name string, content []byte, d data) ([]byte, error) {
	t, err := template.New(name).Option("missingkey=error").Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, d); err != nil {
		return nil, fmt.Errorf("rendering %s: %w", name, err)
	}
	return buf.Bytes(), nil
}
