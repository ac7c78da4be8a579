package install

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// extractZip extracts every entry of the archive at src below dest.
// Entries that would land outside dest fail the whole extraction.
// Symbolic links are skipped.
func extractZip(src, dest string) (int, error) {
	zr, err := zip.OpenReader(src)
	if err != nil {
		return 0, err
	}
	defer zr.Close()

	if err := os.MkdirAll(dest, 0755); err != nil {
		return 0, err
	}

	skipped := 0
	for _, zf := range zr.File {
		name := strings.TrimSpace(zf.Name)
		if name == "" {
			continue
		}

		rel := path.Clean(strings.ReplaceAll(name, `\`, "/"))
		if rel == "." {
			continue
		}
		if path.IsAbs(rel) || rel == ".." || strings.HasPrefix(rel, "../") {
			return 0, fmt.Errorf("archive entry %q escapes extraction root", zf.Name)
		}

		target := filepath.Join(dest, filepath.FromSlash(rel))
		if err := ensurePathWithinRoot(dest, target); err != nil {
			return 0, fmt.Errorf("archive entry %q: %w", zf.Name, err)
		}

		mode := zf.Mode()
		switch {
		case mode&os.ModeSymlink != 0:
			skipped++
			continue
		case zf.FileInfo().IsDir():
			if err := os.MkdirAll(target, 0755); err != nil {
				return 0, err
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return 0, err
		}
		if err := extractFile(zf, target, mode.Perm()); err != nil {
			return 0, fmt.Errorf("extracting %q: %w", zf.Name, err)
		}
	}
	return skipped, nil
}

func extractFile(zf *zip.File, target string, perm os.FileMode) error {
	if perm == 0 {
		perm = 0644
	}

	rc, err := zf.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, perm|0600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// singleTopLevelDir returns the only directory directly below dir.
// found reports how many directories were seen.
func singleTopLevelDir(dir string) (top string, found int, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", 0, err
	}
	for _, e := range entries {
		if e.IsDir() {
			found++
			top = filepath.Join(dir, e.Name())
		}
	}
	if found != 1 {
		return "", found, nil
	}
	return top, found, nil
}

// copyDirectory copies the tree at src to dst, keeping file permissions.
func copyDirectory(src, dst string) error {
	src = filepath.Clean(src)
	dst = filepath.Clean(dst)
	if err := os.RemoveAll(dst); err != nil {
		return err
	}

	return filepath.WalkDir(src, func(pathAbs string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(src, pathAbs)
		if err != nil {
			return err
		}
		if rel == "." {
			return os.MkdirAll(dst, 0755)
		}

		target := filepath.Join(dst, rel)
		if err := ensurePathWithinRoot(dst, target); err != nil {
			return err
		}
		if d.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		if !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		data, err := os.ReadFile(pathAbs)
		if err != nil {
			return err
		}
		return os.WriteFile(target, data, info.Mode().Perm())
	})
}

func ensurePathWithinRoot(root, target string) error {
	rel, err := filepath.Rel(filepath.Clean(root), filepath.Clean(target))
	if err != nil {
		return err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return fmt.Errorf("path %s escapes %s", target, root)
	}
	return nil
}
