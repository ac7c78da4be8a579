package registry

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Cache memoizes the merged registry for the life of the process.
// The memo is replaced as a whole; readers holding an older Registry keep a
// consistent view.
type Cache struct {
	local  Source
	remote Source
	logger *slog.Logger

	mu      sync.Mutex // serializes builds
	current atomic.Pointer[Registry]
}

// NewCache creates a cache over a local and an optional remote source.
// A nil logger discards output.
func NewCache(local, remote Source, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Cache{
		local:  local,
		remote: remote,
		logger: logger,
	}
}

// Get returns the merged registry, building it on first use.
// A failing remote source is logged and ignored; a failing local source is
// returned as an error.
func (c *Cache) Get(ctx context.Context) (Registry, error) {
	if reg := c.current.Load(); reg != nil {
		return *reg, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if reg := c.current.Load(); reg != nil {
		return *reg, nil
	}

	reg, err := c.build(ctx)
	if err != nil {
		return nil, err
	}
	c.current.Store(&reg)
	return reg, nil
}

// Invalidate drops the memo. The next Get rebuilds it.
func (c *Cache) Invalidate() {
	c.current.Store(nil)
}

// Reload rebuilds the registry from its sources.
func (c *Cache) Reload(ctx context.Context) (Registry, error) {
	c.Invalidate()
	return c.Get(ctx)
}

func (c *Cache) build(ctx context.Context) (Registry, error) {
	local, err := c.local.Load(ctx)
	if err != nil {
		return nil, err
	}

	if c.remote == nil {
		return local, nil
	}

	remote, err := c.remote.Load(ctx)
	if err != nil {
		c.logger.Warn("remote registry unavailable, using local registry", "error", err)
		return local, nil
	}

	return Merge(local, remote), nil
}
