package registry

import (
	"context"
	"log/slog"
	"os"
	"time"

	kerrors "github.com/kudosx/kudosx/internal/errors"
)

// Source produces a registry.
type Source interface {
	Load(ctx context.Context) (Registry, error)
}

// Getter fetches a document over HTTP(S).
type Getter interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// LocalSource reads the bundled registry, or an override file when Path is set.
type LocalSource struct {
	// Path replaces the bundled document when non-empty.
	Path string
}

// Load returns the local registry. A missing override file yields an empty
// registry rather than an error.
func (s LocalSource) Load(ctx context.Context) (Registry, error) {
	if s.Path == "" {
		return Parse(Bundled(), BundledPath)
	}

	data, err := os.ReadFile(s.Path)
	if os.IsNotExist(err) {
		return Registry{}, nil
	}
	if err != nil {
		return nil, kerrors.IOReadError(s.Path, err)
	}
	return Parse(data, s.Path)
}

// RemoteSource fetches the published registry.
type RemoteSource struct {
	URL     string
	Timeout time.Duration
	Client  Getter
	Logger  *slog.Logger
}

// Load fetches and parses the remote registry. Every failure, including a
// timeout or an unparsable body, is reported as REGISTRY_UNAVAILABLE.
func (s RemoteSource) Load(ctx context.Context) (Registry, error) {
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	data, err := s.Client.Get(ctx, s.URL)
	if err != nil {
		return nil, kerrors.RegistryUnavailable(s.URL, err)
	}

	reg, err := Parse(data, s.URL)
	if err != nil {
		return nil, kerrors.RegistryUnavailable(s.URL, err)
	}

	if s.Logger != nil {
		s.Logger.Debug("loaded remote registry", "url", s.URL, "skills", len(reg))
	}
	return reg, nil
}
