// Package install materializes skills from repository archives and inspects
// what is installed.
//
// An installed skill is nothing more than a folder at <root>/skills/<target_dir>
// with an optional VERSION marker. Installs stage the payload beside the
// target and swap it in with renames, so a failure leaves the previous state.
package install

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	kerrors "github.com/kudosx/kudosx/internal/errors"
	"github.com/kudosx/kudosx/internal/hosting"
	"github.com/kudosx/kudosx/internal/logging"
)

// Downloader streams a URL into a writer.
type Downloader interface {
	Download(ctx context.Context, url string, w io.Writer) (int64, error)
}

// Fetcher installs skills from branch archives of the hosting service.
type Fetcher struct {
	client  Downloader
	baseURL string
	branch  string
	logger  *slog.Logger

	// TempDir holds download scratch space. Empty means os.TempDir().
	TempDir string
}

// NewFetcher creates a Fetcher. A nil logger discards output.
func NewFetcher(client Downloader, baseURL, branch string, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Fetcher{
		client:  client,
		baseURL: baseURL,
		branch:  branch,
		logger:  logger,
	}
}

// Install downloads repo, extracts sourcePath from it and puts it at
// targetPath, writing version into VERSION when non-empty. An existing
// target is replaced only once the new payload is fully staged.
func (f *Fetcher) Install(ctx context.Context, repo, sourcePath, targetPath, version string) error {
	logger := logging.WithRepo(f.logger, repo).With("target", targetPath)

	tmp, err := os.MkdirTemp(f.TempDir, "kudosx-")
	if err != nil {
		return kerrors.CopyFailed(f.TempDir, err)
	}
	defer os.RemoveAll(tmp)

	url := hosting.ArchiveURL(f.baseURL, repo, f.branch)
	archive := filepath.Join(tmp, "archive.zip")
	logger.Info("downloading archive", "url", url)
	if err := f.download(ctx, url, archive); err != nil {
		return kerrors.DownloadFailed(repo, url, err)
	}

	extractDir := filepath.Join(tmp, "extract")
	skipped, err := extractZip(archive, extractDir)
	if err != nil {
		return kerrors.ExtractFailed(repo, err)
	}
	if skipped > 0 {
		logger.Debug("skipped symbolic links in archive", "count", skipped)
	}

	top, found, err := singleTopLevelDir(extractDir)
	if err != nil {
		return kerrors.ExtractFailed(repo, err)
	}
	if found != 1 {
		return kerrors.MalformedArchive(repo, found)
	}

	src := filepath.Join(top, filepath.FromSlash(sourcePath))
	if ensurePathWithinRoot(top, src) != nil {
		return kerrors.SubpathNotFound(repo, sourcePath)
	}
	if info, err := os.Stat(src); err != nil || !info.IsDir() {
		return kerrors.SubpathNotFound(repo, sourcePath)
	}

	unlock := pathLocks.Lock(targetPath)
	defer unlock()

	if err := os.MkdirAll(filepath.Dir(targetPath), 0755); err != nil {
		return kerrors.CopyFailed(filepath.Dir(targetPath), err)
	}

	staging := scratchPath(targetPath, "incoming")
	defer os.RemoveAll(staging)

	if err := copyDirectory(src, staging); err != nil {
		return kerrors.CopyFailed(staging, err)
	}
	if version != "" {
		if err := os.WriteFile(filepath.Join(staging, VersionFile), []byte(version+"\n"), 0644); err != nil {
			return kerrors.CopyFailed(filepath.Join(staging, VersionFile), err)
		}
	}

	if err := swapInto(staging, targetPath); err != nil {
		return err
	}

	logger.Info("installed skill", "version", version)
	return nil
}

func (f *Fetcher) download(ctx context.Context, url, dest string) error {
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := f.client.Download(ctx, url, out); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// swapInto moves staging to target. An existing target is moved aside first
// and restored if the final rename fails.
func swapInto(staging, target string) error {
	_, statErr := os.Stat(target)
	if statErr != nil && !os.IsNotExist(statErr) {
		return kerrors.RemovalFailed(target, statErr)
	}

	if os.IsNotExist(statErr) {
		if err := os.Rename(staging, target); err != nil {
			return kerrors.CopyFailed(target, err)
		}
		return nil
	}

	backup := scratchPath(target, "backup")
	if err := os.Rename(target, backup); err != nil {
		return kerrors.RemovalFailed(target, err)
	}
	if err := os.Rename(staging, target); err != nil {
		_ = os.Rename(backup, target)
		return kerrors.RemovalFailed(target, err)
	}
	_ = os.RemoveAll(backup)
	return nil
}

func scratchPath(target, kind string) string {
	return target + "." + kind + "." + strconv.FormatInt(time.Now().UnixNano(), 10)
}

// isScratch reports whether name is a staging or backup folder left by an
// interrupted install.
func isScratch(name string) bool {
	return strings.Contains(name, ".incoming.") || strings.Contains(name, ".backup.")
}
