package internal

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/starford/raido/internal/cache"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/remote"
	"github.com/starford/raido/internal/search"
	"github.com/starford/raido/internal/service"
	"github.com/starford/raido/internal/syncer"
	"github.com/starford/raido/internal/undo"
)

// NewStack builds the core engine (cache, search index, coordinator,
// ledger, service) without any HTTP surface and loads the initial state.
// Used by the MCP stdio command, which shares the same cache and remote
// as the HTTP server. The returned cleanup flushes and closes everything.
func NewStack(ctx context.Context, cfg *Config) (*service.Service, func(), error) {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))

	dir, err := cache.New(cfg.Cache.Dir)
	if err != nil {
		return nil, nil, fmt.Errorf("init cache: %w", err)
	}

	db, err := search.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("init search index: %w", err)
	}

	var remoteClient *remote.Client
	if cfg.Remote.Configured() {
		remoteClient = remote.NewClient(cfg.Remote.URL, cfg.Remote.Token)
	}

	ledger := undo.NewLedger(cfg.Undo.Grace())

	var svc *service.Service
	coord := syncer.New(dir, remoteClient, logger, cfg.Sync.Debounce(), func() models.Document {
		return svc.Snapshot()
	})
	svc = service.New(coord, ledger, db, cfg.App.LocaleTag(), logger)
	svc.Load(ctx)

	cleanup := func() {
		coord.Flush(context.Background())
		coord.Close()
		ledger.Close()
		_ = db.Close()
	}
	return svc, cleanup, nil
}
