package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/mmcdole/wubba/internal/adapter"
	"github.com/mmcdole/wubba/internal/adapter/source"
	"github.com/mmcdole/wubba/internal/domain"
	"github.com/mmcdole/wubba/internal/favourites"
	"github.com/mmcdole/wubba/internal/service"
	"github.com/mmcdole/wubba/internal/store"
)

// app bundles the wired services for one invocation.
type app struct {
	cfg        *adapter.Config
	logger     *slog.Logger
	catalog    *service.CatalogService
	views      *service.Views
	characters *service.CharacterService
	favs       *favourites.Store

	closers []io.Closer
}

type appOptions struct {
	configDir string
	offline   bool
}

func newApp(opts appOptions) (*app, error) {
	cfg, err := adapter.LoadConfigFrom(opts.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	a := &app{cfg: cfg}

	logger, logCloser, err := adapter.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = adapter.NullLogger()
	} else {
		a.closers = append(a.closers, logCloser)
	}
	slog.SetDefault(logger)
	a.logger = logger

	logger.Info("starting wubba", "version", Version, "backend", cfg.Storage.Backend)

	kv, err := openKV(cfg)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}
	a.closers = append(a.closers, kv)

	client, err := source.NewClientFromConfig(cfg, logger)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create catalog client: %w", err)
	}

	var conn domain.ConnectivityChecker = adapter.NewNetChecker(cfg.Connectivity, cfg.API.BaseURL, logger)
	if opts.offline {
		conn = adapter.StaticChecker(false)
	}

	a.favs = favourites.NewStore(kv, logger)
	a.favs.Load()

	a.catalog = service.NewCatalogService(client, conn, logger)
	a.views = service.NewViews(a.catalog, favourites.NewReconciler(a.favs, logger), logger)
	a.characters = service.NewCharacterService(client, logger)
	return a, nil
}

// openKV selects the durable store for the configured backend.
func openKV(cfg *adapter.Config) (domain.KVStore, error) {
	switch cfg.Storage.Backend {
	case adapter.StorageFile:
		return store.NewOSFileKV(cfg.Storage.Path)
	case adapter.StorageMemory:
		return store.NewBoltKV("")
	default:
		return store.NewBoltKV(cfg.Storage.Path)
	}
}

// Close drains pending favourites writes before releasing storage.
func (a *app) Close() {
	if a.favs != nil {
		a.favs.Close()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil && a.logger != nil {
			a.logger.Warn("close failed", "error", err)
		}
	}
	a.closers = nil
}
