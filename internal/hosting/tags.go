package hosting

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"
)

// TagLister lists the tag names of a repository.
type TagLister interface {
	ListTags(ctx context.Context, repo string) ([]string, error)
}

// GitTagLister lists tags with `git ls-remote --tags`.
type GitTagLister struct {
	// BaseURL is the hosting service root, e.g. https://github.com.
	BaseURL string

	// Timeout bounds the whole listing.
	Timeout time.Duration

	// Git is the git executable. Defaults to "git".
	Git string

	Logger *slog.Logger
}

// ListTags returns the tag names of repo in the order git reports them,
// without dereferenced "^{}" entries.
func (l *GitTagLister) ListTags(ctx context.Context, repo string) ([]string, error) {
	if l.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.Timeout)
		defer cancel()
	}

	git := l.Git
	if git == "" {
		git = "git"
	}

	url := RepoURL(l.BaseURL, repo)
	cmd := exec.CommandContext(ctx, git, "ls-remote", "--tags", url)
	// Never block on a credential prompt for a missing repository.
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")

	output, err := cmd.Output()
	if ctx.Err() != nil {
		return nil, fmt.Errorf("git ls-remote %s: %w", url, ctx.Err())
	}
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return nil, fmt.Errorf("git ls-remote %s failed: %w\n%s", url, err, exitErr.Stderr)
		}
		return nil, fmt.Errorf("git ls-remote %s: %w", url, err)
	}

	tags := ParseRefs(string(output))
	if l.Logger != nil {
		l.Logger.Debug("listed tags", "repo", repo, "count", len(tags))
	}
	return tags, nil
}

// ParseRefs parses `git ls-remote --tags` output ("<sha>\trefs/tags/<name>"
// per line) into tag names. Dereferenced "^{}" entries are dropped.
func ParseRefs(output string) []string {
	var tags []string
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		ref := fields[1]
		if strings.HasSuffix(ref, "^{}") {
			continue
		}
		tags = append(tags, strings.TrimPrefix(ref, "refs/tags/"))
	}
	return tags
}
