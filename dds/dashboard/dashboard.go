// Package dashboard wires the directory size subsystem together from a Config.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/dashboard-directory-size/dds/cache"
	"github.com/ZanzyTHEbar/dashboard-directory-size/dds/catalog"
	"github.com/ZanzyTHEbar/dashboard-directory-size/dds/config"
	"github.com/ZanzyTHEbar/dashboard-directory-size/dds/db"
	"github.com/ZanzyTHEbar/dashboard-directory-size/dds/report"
	"github.com/ZanzyTHEbar/dashboard-directory-size/dds/sizer"
	"github.com/ZanzyTHEbar/dashboard-directory-size/dds/triggers"
	"github.com/ZanzyTHEbar/dashboard-directory-size/dds/types"
	"github.com/ZanzyTHEbar/dashboard-directory-size/dds/watcher"

	"github.com/rs/zerolog"
)

// Cache backends accepted in cache.backend.
const (
	BackendMemory = "memory"
	BackendLibSQL = "libsql"
)

// ErrUnknownBackend is returned for an unsupported cache.backend value.
var ErrUnknownBackend = errors.New("unknown cache backend")

// Option customizes a Dashboard before it is wired
type Option func(*settings)

type settings struct {
	env               catalog.Environment
	sizer             sizer.Sizer
	store             cache.Store
	catalogTransforms []catalog.Transform
	reportTransforms  []report.Transform
}

// WithEnvironment replaces the config-derived hosting environment.
func WithEnvironment(env catalog.Environment) Option {
	return func(s *settings) { s.env = env }
}

// WithSizer replaces the filesystem sizer.
func WithSizer(sz sizer.Sizer) Option {
	return func(s *settings) { s.sizer = sz }
}

// WithStore replaces the configured cache store.
func WithStore(store cache.Store) Option {
	return func(s *settings) { s.store = store }
}

// WithCatalogTransforms registers directory list transforms.
func WithCatalogTransforms(transforms ...catalog.Transform) Option {
	return func(s *settings) { s.catalogTransforms = append(s.catalogTransforms, transforms...) }
}

// WithReportTransforms registers report row transforms.
func WithReportTransforms(transforms ...report.Transform) Option {
	return func(s *settings) { s.reportTransforms = append(s.reportTransforms, transforms...) }
}

// Dashboard is the assembled subsystem: catalog, cache, sizer, report builder
// and invalidation triggers, plus the optional database and watcher.
type Dashboard struct {
	cfg      *config.Config
	catalog  *catalog.Catalog
	cache    *cache.SizeCache
	builder  *report.Builder
	triggers *triggers.Triggers
	database *db.SchemaSizer
	watcher  *watcher.FSNotifyWatcher
	baseLog  zerolog.Logger
	log      zerolog.Logger
}

// New wires a Dashboard from cfg.
func New(cfg *config.Config, log zerolog.Logger, opts ...Option) (*Dashboard, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}

	var s settings
	for _, opt := range opts {
		opt(&s)
	}

	if s.env == nil {
		s.env = catalog.NewSiteEnvironment(cfg.Site)
	}
	if s.sizer == nil {
		s.sizer = sizer.NewFSSizer(log,
			sizer.WithWorkers(cfg.General.Workers),
			sizer.WithExcludePatterns(cfg.General.ExcludePatterns...))
	}

	d := &Dashboard{
		cfg:     cfg,
		baseLog: log,
		log:     log.With().Str("component", "dashboard").Logger(),
	}

	if s.store == nil {
		store, err := d.openStore(cfg.Cache)
		if err != nil {
			return nil, err
		}
		s.store = store
	}

	if cfg.General.ShowDatabaseSize && cfg.Site.Database.DSN != "" {
		conn, err := db.ConnectToDB(cfg.Site.Database.DSN)
		if err != nil {
			// the database row reports Missing
			d.log.Warn().Err(err).Str("schema", cfg.Site.Database.Name).Msg("site database unavailable")
		} else {
			d.database = db.NewSchemaSizer(conn, cfg.Site.Database.Name, log)
		}
	}

	d.catalog = catalog.New(s.env, catalog.Options{
		CommonDirectories: cfg.General.CommonDirectories,
		CustomDirectories: cfg.General.CustomDirectories,
		ShowDatabaseSize:  cfg.General.ShowDatabaseSize,
		ShowSum:           cfg.General.ShowSum,
	}, log, s.catalogTransforms...)

	d.cache = cache.NewSizeCache(s.store, cfg.General.TransientTimeMinutes, log)

	var database report.DatabaseSizer
	if d.database != nil {
		database = d.database
	}
	d.builder = report.NewBuilder(d.catalog, d.cache, s.sizer, database, report.Options{
		DecimalPlaces: cfg.General.DecimalPlaces,
		Transforms:    s.reportTransforms,
	}, log)

	d.triggers = triggers.New(d.catalog, d.cache, log)

	d.log.Debug().
		Str("backend", cfg.Cache.Backend).
		Int("ttl_minutes", cfg.General.TransientTimeMinutes).
		Bool("database", d.database != nil).
		Msg("dashboard ready")
	return d, nil
}

// openStore opens the configured backend. An unreachable libsql backend falls
// back to process memory; only an unknown backend name is an error.
func (d *Dashboard) openStore(cfg config.CacheConfig) (cache.Store, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", BackendMemory:
		return cache.NewMemoryStore(), nil
	case BackendLibSQL:
		store, err := cache.NewLibSQLStore(cfg.DSN)
		if err != nil {
			d.log.Warn().Err(err).Str("dsn", cfg.DSN).Msg("cache backend unavailable, using memory store")
			return cache.NewMemoryStore(), nil
		}
		return store, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}

// Report builds a report. headless callers get no sum row.
func (d *Dashboard) Report(ctx context.Context, headless bool) (report.Report, error) {
	return d.builder.WithHeadless(headless).BuildReport(ctx)
}

// DirectorySize returns one path's row, optionally dropping its cached size first.
func (d *Dashboard) DirectorySize(ctx context.Context, path string, refresh bool) (types.Row, error) {
	return d.builder.DirectorySize(ctx, path, refresh)
}

// Placeholders returns the unresolved rows for the current catalog.
func (d *Dashboard) Placeholders(ctx context.Context, headless bool) []types.Row {
	return d.builder.WithHeadless(headless).Placeholders(ctx)
}

// Refresh invalidates every cached size in the catalog.
func (d *Dashboard) Refresh(ctx context.Context) int {
	return d.triggers.Refresh(ctx)
}

// OnEvent dispatches a named lifecycle event.
func (d *Dashboard) OnEvent(ctx context.Context, name, payload string) (bool, error) {
	return d.triggers.HandleEvent(ctx, name, payload)
}

// TrimPath shortens path for display using the configured install root and length.
func (d *Dashboard) TrimPath(path string) report.TrimmedPath {
	return report.TrimPath(path, d.cfg.Site.InstallRoot, d.cfg.General.TrimmedPathLength)
}

// CacheStats returns the size cache counters.
func (d *Dashboard) CacheStats() cache.Stats {
	return d.cache.Stats()
}

// Watch starts the filesystem watcher over the catalog's directories. It is a
// no-op returning false when the watcher is disabled.
func (d *Dashboard) Watch(ctx context.Context) (bool, error) {
	if !d.cfg.Watcher.Enabled {
		return false, nil
	}
	if d.watcher != nil {
		return true, nil
	}

	wcfg := watcher.DefaultConfig()
	if d.cfg.Watcher.DebounceMS > 0 {
		wcfg.DebounceDelay = time.Duration(d.cfg.Watcher.DebounceMS) * time.Millisecond
	}
	if d.cfg.Watcher.MaxDebounceMS > 0 {
		wcfg.MaxDebounceDelay = time.Duration(d.cfg.Watcher.MaxDebounceMS) * time.Millisecond
	}

	w, err := watcher.NewFSNotifyWatcher(wcfg, d.triggers, d.baseLog)
	if err != nil {
		return false, err
	}

	roots := d.watchRoots(ctx)
	if err := w.Start(ctx, roots); err != nil {
		_ = w.Close()
		return false, err
	}
	d.watcher = w
	return true, nil
}

// watchRoots are the catalog's filesystem paths; the database and sum rows are skipped.
func (d *Dashboard) watchRoots(ctx context.Context) []string {
	var roots []string
	for _, desc := range d.catalog.Resolve(ctx) {
		if desc.Cacheable() {
			roots = append(roots, desc.Path)
		}
	}
	return roots
}

// Close releases the watcher, the database and the cache store.
func (d *Dashboard) Close() error {
	var errs []error
	if d.watcher != nil {
		errs = append(errs, d.watcher.Close())
	}
	if d.database != nil {
		errs = append(errs, d.database.Close())
	}
	errs = append(errs, d.cache.Close())
	return errors.Join(errs...)
}

var _ report.DatabaseSizer = (*db.SchemaSizer)(nil)
