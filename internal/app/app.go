package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/google/uuid"

	"github.com/AmauryD/garden/internal/cache"
	"github.com/AmauryD/garden/internal/config"
	"github.com/AmauryD/garden/internal/ctxlog"
	"github.com/AmauryD/garden/internal/fingerprint"
	"github.com/AmauryD/garden/internal/graph"
	"github.com/AmauryD/garden/internal/router"
	"github.com/AmauryD/garden/internal/scheduler"
	"github.com/AmauryD/garden/internal/version"
)

// App encapsulates the engine's dependencies, configuration and lifecycle
// for one process.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	cfg      *Config
	registry *router.Registry
	closers  []func() error
}

// New constructs an App with its own isolated logger and handler registry.
// Custom modules replace the compiled-in core modules when given.
func New(outW io.Writer, cfg *Config, modules ...router.Module) *App {
	logger := newLogger(cfg, outW)

	if cfg.RunID == "" {
		cfg.RunID = "run-" + uuid.New().String()[:8]
	}
	logger = logger.With("runID", cfg.RunID)

	registry := router.NewRegistry()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(registry)
	}
	logger.Debug("Handler modules registered.", "count", len(modules))

	return &App{
		outW:     outW,
		logger:   logger,
		cfg:      cfg,
		registry: registry,
	}
}

// Validate loads the project configuration and builds the graph without
// executing anything. It surfaces the whole class of structural errors
// (duplicates, unresolved references, cycles) the engine detects before any
// execution.
func (a *App) Validate(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	model, err := config.Load(ctx, a.cfg.ProjectPath)
	if err != nil {
		return err
	}
	g, err := graph.Build(ctx, model.Actions)
	if err != nil {
		return err
	}
	a.logger.Info("Project is valid.", "project", model.ProjectName, "actions", g.Len())
	return nil
}

// CleanCache discards every entry of the configured result cache backend, so
// the next run re-executes everything regardless of versions.
func (a *App) CleanCache(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	defer a.close()

	store, err := a.newCacheStore()
	if err != nil {
		return err
	}
	if err := store.InvalidateAll(ctx); err != nil {
		return fmt.Errorf("clearing result cache: %w", err)
	}
	a.logger.Info("Result cache cleared.", "backend", a.cfg.CacheBackend)
	return nil
}

// Run loads the project, builds and versions the graph, executes it, and
// returns the complete per-node result map. The returned error covers
// structural and setup failures only; node-local failures live inside the
// result map.
func (a *App) Run(ctx context.Context) (scheduler.ResultMap, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	defer a.close()

	model, err := config.Load(ctx, a.cfg.ProjectPath)
	if err != nil {
		return nil, err
	}

	g, err := graph.Build(ctx, model.Actions)
	if err != nil {
		return nil, fmt.Errorf("invalid project graph: %w", err)
	}
	if g.Len() == 0 {
		a.logger.Warn("No actions declared, nothing to do.")
		return scheduler.ResultMap{}, nil
	}

	fp := fingerprint.NewLocal(osfs.New(a.projectRoot()))
	versions := version.NewResolver(fp).Resolve(ctx, g)

	store, err := a.newCacheStore()
	if err != nil {
		return nil, err
	}

	sched := scheduler.New(router.New(a.registry), scheduler.Options{
		Workers: a.cfg.Workers,
		Cache:   store,
	})

	a.logger.Info("Starting graph execution.", "project", model.ProjectName, "actions", g.Len())
	results := sched.Run(ctx, g, versions)
	a.renderSummary(results)
	return results, nil
}

// projectRoot is the directory fingerprint source paths are relative to: the
// configured directory itself, or the parent of a single project file.
func (a *App) projectRoot() string {
	info, err := os.Stat(a.cfg.ProjectPath)
	if err == nil && info.IsDir() {
		return a.cfg.ProjectPath
	}
	return filepath.Dir(a.cfg.ProjectPath)
}

// newCacheStore constructs the configured result cache backend.
func (a *App) newCacheStore() (cache.Store, error) {
	switch a.cfg.CacheBackend {
	case "file":
		return cache.NewFile(a.cfg.CacheDir)
	case "redis":
		store, err := cache.NewRedis(a.cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, store.Close)
		return store, nil
	default:
		return cache.NewMemory(), nil
	}
}

func (a *App) close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.logger.Error("Cleanup failed.", "error", err)
		}
	}
	a.closers = nil
}
