package manifest

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vladimir-polyakov/esencia/internal/component"
	"github.com/vladimir-polyakov/esencia/internal/logging"
	"github.com/vladimir-polyakov/esencia/internal/metrics"
	"github.com/vladimir-polyakov/esencia/internal/watcher"
)

// Catalog holds the registry built from manifest paths. Reloads build a new
// registry and swap it in, so readers never see a half-loaded registry.
type Catalog struct {
	paths   []string
	logger  *logging.Logger
	metrics *metrics.Metrics

	reloadMu sync.Mutex
	current  atomic.Pointer[component.Registry]
}

// CatalogOption customizes catalog construction.
type CatalogOption func(*Catalog)

// WithLogger routes reload messages to l.
func WithLogger(l *logging.Logger) CatalogOption {
	return func(c *Catalog) {
		c.logger = l
	}
}

// WithMetrics records reload outcomes on m.
func WithMetrics(m *metrics.Metrics) CatalogOption {
	return func(c *Catalog) {
		c.metrics = m
	}
}

// NewCatalog prepares a catalog over paths. It starts with an empty registry
// until Reload is called.
func NewCatalog(paths []string, opts ...CatalogOption) *Catalog {
	c := &Catalog{paths: append([]string(nil), paths...)}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	c.current.Store(component.NewRegistry())
	return c
}

// Reload rebuilds the registry from disk. On failure the previous registry
// stays active.
func (c *Catalog) Reload() (*component.Registry, error) {
	c.reloadMu.Lock()
	defer c.reloadMu.Unlock()
	reg, overrides, err := Build(c.paths...)
	if err != nil {
		c.logger.ErrorErr(logging.CatManifest, "reload failed", err)
		c.metrics.RecordReload(0, err)
		return nil, err
	}
	for _, o := range overrides {
		c.logger.Warn(logging.CatManifest, "component overridden", "name", o.Name, "previous", o.PreviousPath, "by", o.Path)
	}
	c.current.Store(reg)
	c.metrics.RecordReload(reg.Len(), nil)
	c.logger.Info(logging.CatRegistry, "registry loaded", "components", reg.Len(), "registry", reg.ID())
	return reg, nil
}

// Registry returns the active registry.
func (c *Catalog) Registry() *component.Registry {
	return c.current.Load()
}

// Resolve resolves names against the active registry.
func (c *Catalog) Resolve(names ...string) (component.Forest, error) {
	return c.Registry().Resolve(names...)
}

// WatchDirs returns the existing directories that hold the catalog's
// manifests: the paths themselves when they are directories, otherwise their
// parent directories.
func (c *Catalog) WatchDirs() []string {
	seen := map[string]struct{}{}
	var dirs []string
	for _, path := range c.paths {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		dir := path
		if !info.IsDir() {
			dir = filepath.Dir(path)
		}
		dir = filepath.Clean(dir)
		if _, ok := seen[dir]; ok {
			continue
		}
		seen[dir] = struct{}{}
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)
	return dirs
}

// Watch reloads the catalog whenever a manifest changes, until ctx is done.
// onReload, if set, is called after every reload attempt.
func (c *Catalog) Watch(ctx context.Context, debounce time.Duration, onReload func(*component.Registry, error)) error {
	cfg := watcher.DefaultConfig(c.WatchDirs()...)
	if debounce > 0 {
		cfg.DebounceDur = debounce
	}
	w, err := watcher.New(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = w.Stop() }()
	changes, err := w.Start()
	if err != nil {
		return err
	}
	c.logger.Info(logging.CatWatch, "watching manifests", "dirs", len(cfg.Dirs))
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changes:
			reg, err := c.Reload()
			if onReload != nil {
				onReload(reg, err)
			}
		case err := <-w.Errors():
			c.logger.ErrorErr(logging.CatWatch, "watch error", err)
		}
	}
}
