package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/samvad-hq/jsonfetch/internal/config"
	"github.com/samvad-hq/jsonfetch/internal/logger"
	"github.com/samvad-hq/jsonfetch/internal/server"
	"github.com/samvad-hq/jsonfetch/internal/storage"
	"github.com/samvad-hq/jsonfetch/pkg/publishers"
)

const shutdownTimeout = 10 * time.Second

// APIServer is the example API runtime. It owns the store, the publisher fan-out
// and the HTTP listener, and releases all of them when Run returns.
type APIServer struct {
	cfg    *config.Config
	store  storage.Store
	fanout *publishers.Fanout
	http   *http.Server
	log    logger.Logger
}

// NewAPIServer builds the runtime from config and the optional seed and publishers files.
func NewAPIServer(ctx context.Context, cfg *config.Config, log logger.Logger) (*APIServer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	store, err := storage.NewStore(cfg.StorageType, cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type": cfg.StorageType,
		"path": cfg.StoragePath,
	})

	if err := seedStore(store, cfg.SeedFile, log); err != nil {
		store.Close()
		return nil, err
	}

	fanout, err := buildFanout(ctx, cfg.PublishersFile, log)
	if err != nil {
		store.Close()
		return nil, err
	}

	var events server.EventPublisher
	if fanout != nil {
		events = fanout
	}
	srv := server.New(cfg, store, events, log)
	return &APIServer{
		cfg:    cfg,
		store:  store,
		fanout: fanout,
		http: &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           srv.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		},
		log: log,
	}, nil
}

func seedStore(store storage.Store, path string, log logger.Logger) error {
	if path == "" {
		return nil
	}
	examples, err := storage.LoadSeed(path)
	if err != nil {
		return fmt.Errorf("load seed file: %w", err)
	}
	n, err := storage.SeedIfEmpty(store, examples)
	if err != nil {
		return fmt.Errorf("seed store: %w", err)
	}
	log.InfoObj("seed applied", "seed_meta", map[string]any{
		"file":     path,
		"inserted": n,
	})
	return nil
}

// buildFanout returns nil when no publishers file is configured; the server then
// skips event publishing.
func buildFanout(ctx context.Context, path string, log logger.Logger) (*publishers.Fanout, error) {
	if path == "" {
		return nil, nil
	}

	cfgs, err := publishers.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load publishers file: %w", err)
	}
	enabled := publishers.Enabled(cfgs)
	if len(enabled) == 0 {
		log.WarnObj("no publishers enabled; change events disabled", "publishers_file", path)
		return nil, nil
	}

	fanout, err := publishers.DefaultBuilders().BuildFanout(ctx, enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}
	log.InfoObj("publishers ready", "publishers_meta", map[string]any{
		"count":      fanout.Size(),
		"configured": len(cfgs),
		"publishers": fanout.Describe(),
	})
	return fanout, nil
}

// Handler exposes the router, mainly for tests.
func (a *APIServer) Handler() http.Handler {
	return a.http.Handler
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (a *APIServer) Run(ctx context.Context) error {
	if a == nil || a.http == nil {
		return fmt.Errorf("api server is not initialized")
	}
	defer a.close()

	errCh := make(chan error, 1)
	go func() {
		a.log.InfoObj("api server listening", "http_addr", a.http.Addr)
		errCh <- a.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
		a.log.InfoObj("api server shutting down", "reason", ctx.Err().Error())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// close releases the store and publisher clients, logging any errors encountered.
func (a *APIServer) close() {
	if err := a.fanout.Close(); err != nil {
		a.log.ErrorObj("publishers close failed", "error", err.Error())
	}
	if a.store == nil {
		return
	}
	if err := a.store.Close(); err != nil {
		a.log.ErrorObj("storage close failed", "error", err.Error())
	}
}
