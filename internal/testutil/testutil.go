// Package testutil provides shared test helpers for setting up caches,
// search databases, and full service stacks.
package testutil

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"golang.org/x/text/language"

	"github.com/starford/raido/internal/cache"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/remote"
	"github.com/starford/raido/internal/search"
	"github.com/starford/raido/internal/service"
	"github.com/starford/raido/internal/syncer"
	"github.com/starford/raido/internal/undo"
)

// TestDB creates a temporary SQLite search index that is automatically cleaned up.
func TestDB(t *testing.T) *search.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "raido-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := search.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestCache creates a temporary document cache directory.
func TestCache(t *testing.T) *cache.Dir {
	t.Helper()
	dir, err := cache.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return dir
}

// Env is a full engine stack wired against a temp cache, optionally
// pushing to a remote at remoteURL.
type Env struct {
	Svc   *service.Service
	Coord *syncer.Coordinator
	Dir   *cache.Dir
}

// NewEnv builds a service stack. remoteURL empty means no remote
// configured; debounce/grace zero pick the defaults.
func NewEnv(t *testing.T, remoteURL string, debounce, grace time.Duration) *Env {
	t.Helper()

	dir := TestCache(t)
	db := TestDB(t)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	var remoteClient *remote.Client
	if remoteURL != "" {
		remoteClient = remote.NewClient(remoteURL, "")
	}

	ledger := undo.NewLedger(grace)
	t.Cleanup(ledger.Close)

	var svc *service.Service
	coord := syncer.New(dir, remoteClient, logger, debounce, func() models.Document {
		return svc.Snapshot()
	})
	t.Cleanup(coord.Close)

	svc = service.New(coord, ledger, db, language.Spanish, logger)
	return &Env{Svc: svc, Coord: coord, Dir: dir}
}
