// Package resolver determines the latest released version of a skill repository.
//
// A version declared in the registry wins and costs no network access.
// Otherwise the repository's tags are listed once and the highest one, by
// numeric tuple ordering, is taken.
package resolver

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	kerrors "github.com/kudosx/kudosx/internal/errors"
	"github.com/kudosx/kudosx/internal/hosting"
	"github.com/kudosx/kudosx/internal/registry"
	"github.com/kudosx/kudosx/internal/version"
)

// DefaultConcurrency bounds parallel lookups in LatestAll.
const DefaultConcurrency = 4

// errNoTags is the cause reported when a repository has no usable tags.
var errNoTags = errors.New("repository has no tags")

// RegistryProvider returns the current merged registry.
type RegistryProvider interface {
	Get(ctx context.Context) (registry.Registry, error)
}

// Resolver resolves latest versions.
type Resolver struct {
	Registry RegistryProvider
	Tags     hosting.TagLister
	Logger   *slog.Logger

	// Concurrency bounds LatestAll. Zero means DefaultConcurrency.
	Concurrency int
}

// New creates a Resolver. reg may be nil to always consult tags.
// A nil logger discards output.
func New(reg RegistryProvider, tags hosting.TagLister, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = discard
	}
	return &Resolver{
		Registry: reg,
		Tags:     tags,
		Logger:   logger,
	}
}

// Latest returns the latest version of repo: the declared version of any
// registry entry for repo, else the highest tag.
func (r *Resolver) Latest(ctx context.Context, repo string) (string, error) {
	if r.Registry != nil {
		reg, err := r.Registry.Get(ctx)
		if err != nil {
			r.log().Debug("registry unavailable for declared version", "repo", repo, "error", err)
		} else if v, ok := reg.DeclaredLatest(repo); ok {
			r.log().Debug("using declared version", "repo", repo, "version", v)
			return strings.TrimSpace(v), nil
		}
	}
	return r.LatestFromTags(ctx, repo)
}

// LatestFromTags returns the highest tag of repo with a leading "v" removed.
// The registry is not consulted.
func (r *Resolver) LatestFromTags(ctx context.Context, repo string) (string, error) {
	tags, err := r.Tags.ListTags(ctx, repo)
	if err != nil {
		return "", kerrors.VersionUnresolvable(repo, err)
	}

	latest := LatestTag(tags)
	if latest == "" {
		return "", kerrors.VersionUnresolvable(repo, errNoTags)
	}

	r.log().Debug("resolved version from tags", "repo", repo, "version", latest, "tags", len(tags))
	return latest, nil
}

// LatestTag picks the highest tag by numeric tuple ordering and strips a
// leading "v". Dereferenced "^{}" entries are ignored. Among tags with equal
// tuples the first one listed wins. It returns "" for an empty list.
func LatestTag(tags []string) string {
	candidates := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || strings.HasSuffix(tag, "^{}") {
			continue
		}
		candidates = append(candidates, tag)
	}
	if len(candidates) == 0 {
		return ""
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return version.CompareTuples(version.ParseTag(candidates[i]), version.ParseTag(candidates[j])) > 0
	})
	return strings.TrimPrefix(candidates[0], "v")
}

// Lookup is the outcome of resolving one repository.
type Lookup struct {
	Repo    string
	Version string
	Err     error
}

// LatestAll resolves every repo concurrently. fromTags skips declared
// versions. Failures are recorded per repository and never abort the others.
func (r *Resolver) LatestAll(ctx context.Context, repos []string, fromTags bool) map[string]Lookup {
	limit := r.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	var (
		mu      sync.Mutex
		results = make(map[string]Lookup, len(repos))
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, repo := range repos {
		mu.Lock()
		_, seen := results[repo]
		if !seen {
			results[repo] = Lookup{Repo: repo}
		}
		mu.Unlock()
		if seen {
			continue
		}

		repo := repo // per-iteration copy (go.mod targets go1.21)
		g.Go(func() error {
			var (
				v   string
				err error
			)
			if fromTags {
				v, err = r.LatestFromTags(ctx, repo)
			} else {
				v, err = r.Latest(ctx, repo)
			}

			mu.Lock()
			results[repo] = Lookup{Repo: repo, Version: v, Err: err}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() // goroutines never return errors

	return results
}

// log returns the configured logger, or a discarding one for resolvers built
// as struct literals.
func (r *Resolver) log() *slog.Logger {
	if r.Logger == nil {
		return discard
	}
	return r.Logger
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))
