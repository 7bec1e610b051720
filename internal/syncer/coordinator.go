// Package syncer implements the sync coordinator: it loads state
// remote-first with a local fallback, writes every mutation through to the
// local cache synchronously, and pushes the entire four-collection
// document to the remote store behind a trailing-edge debounce window.
//
// Failure semantics are deliberately weak: a failed remote push is logged
// and counted, never retried or queued. Local-first correctness holds
// regardless of remote availability, at the cost of silent divergence
// until the next successful push overwrites the remote document.
package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/starford/raido/internal/cache"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/remote"
)

// DefaultDebounce is the trailing-edge window for remote pushes.
const DefaultDebounce = 600 * time.Millisecond

// Snapshot returns the full document as of the moment the push fires. The
// service supplies this; it must be safe to call from the push goroutine.
type Snapshot func() models.Document

// Coordinator orchestrates the local cache and the optional remote store.
// Remote presence is a static configuration fact: a nil remote client
// means every load and save is local-only.
type Coordinator struct {
	cache    *cache.Dir
	remote   *remote.Client
	logger   *slog.Logger
	debounce time.Duration
	snapshot Snapshot

	mu       sync.Mutex
	timer    *time.Timer
	written  map[string]string
	obs      map[int]func()
	nextObs  int
	statusFn func(pushErr error)
	closed   bool
}

// New creates a coordinator. remoteClient may be nil (no remote
// configured); snapshot supplies the document serialized at push time.
func New(dir *cache.Dir, remoteClient *remote.Client, logger *slog.Logger, debounce time.Duration, snapshot Snapshot) *Coordinator {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Coordinator{
		cache:    dir,
		remote:   remoteClient,
		logger:   logger,
		debounce: debounce,
		snapshot: snapshot,
		written:  make(map[string]string),
		obs:      make(map[int]func()),
	}
}

// SetStatusFunc installs an optional hook invoked with the outcome of each
// remote push, for a transient status indicator. Must be called before the
// first mutation.
func (c *Coordinator) SetStatusFunc(fn func(pushErr error)) {
	c.statusFn = fn
}

// Load produces the active state. With a remote configured it fetches the
// remote document and, on success, overwrites the local cache with it; on
// any failure it falls back to whatever the cache holds, logging but never
// surfacing a hard error. Without a remote it always reads the cache.
func (c *Coordinator) Load(ctx context.Context) models.Document {
	if c.remote != nil {
		doc, err := c.remote.Fetch(ctx)
		if err == nil {
			c.saveAllLocal(doc)
			return doc
		}
		c.logger.Warn("sync: remote fetch failed, falling back to local cache",
			slog.String("error", err.Error()))
	}
	return c.loadLocal()
}

// LoadLocal reads the cache only, regardless of remote configuration.
func (c *Coordinator) LoadLocal() models.Document {
	return c.loadLocal()
}

func (c *Coordinator) loadLocal() models.Document {
	var doc models.Document
	readInto(c, cache.DocNotes, &doc.Notes)
	readInto(c, cache.DocClients, &doc.Clients)
	readInto(c, cache.DocQuickNotes, &doc.QuickNotes)
	readInto(c, cache.DocTasks, &doc.Tasks)
	doc.Normalize()
	return doc
}

// readInto decodes one cached collection. A missing document is an empty
// collection; a malformed one is substituted with empty and logged.
func readInto[T any](c *Coordinator, name string, out *[]T) {
	data, err := c.cache.Read(name)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			c.logger.Warn("sync: cache read failed", slog.String("doc", name), slog.String("error", err.Error()))
		}
		return
	}
	if err := json.Unmarshal(data, out); err != nil {
		c.logger.Warn("sync: malformed cache document, using empty collection",
			slog.String("doc", name), slog.String("error", err.Error()))
		*out = nil
	}
}

// SaveLocal writes one collection through to the cache immediately. This
// runs synchronously relative to the triggering mutation so that a crash
// right after the mutation still has it reflected in the cache.
func (c *Coordinator) SaveLocal(name string, collection any) error {
	data, err := json.Marshal(collection)
	if err != nil {
		return err
	}
	if err := c.cache.Write(name, data); err != nil {
		return err
	}
	c.mu.Lock()
	c.written[name] = cache.Sum(data)
	c.mu.Unlock()
	return nil
}

func (c *Coordinator) saveAllLocal(doc models.Document) {
	doc.Normalize()
	for name, collection := range map[string]any{
		cache.DocNotes:      doc.Notes,
		cache.DocClients:    doc.Clients,
		cache.DocQuickNotes: doc.QuickNotes,
		cache.DocTasks:      doc.Tasks,
	} {
		if err := c.SaveLocal(name, collection); err != nil {
			c.logger.Warn("sync: cache write failed", slog.String("doc", name), slog.String("error", err.Error()))
		}
	}
}

// OwnChecksum reports the digest of the last cache write this coordinator
// issued for a document. The cache watcher uses it to ignore our own
// renames.
func (c *Coordinator) OwnChecksum(name string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.written[name]
}

// SchedulePush (re)starts the debounce timer for a remote push. Each new
// mutation within the window cancels and restarts the timer; when it
// fires, the entire document is serialized and sent as a full overwrite.
// Without a remote this is a no-op.
func (c *Coordinator) SchedulePush() {
	if c.remote == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if c.timer == nil {
		c.timer = time.AfterFunc(c.debounce, func() { c.push(context.Background()) })
	} else {
		c.timer.Reset(c.debounce)
	}
}

// Flush cancels any pending debounce and pushes immediately. Used at
// shutdown so the last quiet-window of edits still reaches the remote.
func (c *Coordinator) Flush(ctx context.Context) {
	if c.remote == nil {
		return
	}
	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.mu.Unlock()
	c.push(ctx)
}

// push serializes the full document read at push time and PUTs it. Two
// instances pushing concurrently race at the remote; whichever response
// lands last wins, independent of mutation order. That lost-update hazard
// is inherent to whole-document overwrite and accepted here.
func (c *Coordinator) push(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	doc := c.snapshot()
	err := c.remote.Put(ctx, doc)
	if err != nil {
		// Not retried, not queued: the next successful push supersedes.
		c.logger.Warn("sync: remote push failed", slog.String("error", err.Error()))
	} else {
		c.logger.Debug("sync: pushed document",
			slog.Int("notes", len(doc.Notes)),
			slog.Int("quick_notes", len(doc.QuickNotes)),
			slog.Int("tasks", len(doc.Tasks)),
			slog.Int("clients", len(doc.Clients)))
	}
	if c.statusFn != nil {
		c.statusFn(err)
	}
}

// Subscribe registers an observer for the payload-less "data changed"
// signal and returns its cancel function. Dependents subscribe here
// instead of listening on any ambient channel.
func (c *Coordinator) Subscribe(fn func()) (cancel func()) {
	c.mu.Lock()
	id := c.nextObs
	c.nextObs++
	c.obs[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.obs, id)
		c.mu.Unlock()
	}
}

// Notify broadcasts the "data changed" signal to all subscribers. It
// carries no payload; subscribers reload from the authoritative source.
func (c *Coordinator) Notify() {
	c.mu.Lock()
	fns := make([]func(), 0, len(c.obs))
	for _, fn := range c.obs {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Close cancels any pending push timer. It does not flush; callers that
// want a final push call Flush first.
func (c *Coordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}
