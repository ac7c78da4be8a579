package install

import (
	"os"
	"path/filepath"
	"strings"

	kerrors "github.com/kudosx/kudosx/internal/errors"
)

// VersionFile is the marker written into an installed skill folder.
const VersionFile = "VERSION"

// IsInstalled reports whether a skill folder exists at path.
func IsInstalled(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// InstalledVersion returns the trimmed contents of the VERSION marker at
// path, or "" when the skill or its marker is missing or unreadable.
func InstalledVersion(path string) string {
	data, err := os.ReadFile(filepath.Join(path, VersionFile))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// Remove deletes the skill folder at path.
func Remove(name, path string) error {
	unlock := pathLocks.Lock(path)
	defer unlock()

	if !IsInstalled(path) {
		return kerrors.NotInstalled(name, path)
	}
	if err := os.RemoveAll(path); err != nil {
		return kerrors.RemovalFailed(path, err)
	}
	return nil
}
