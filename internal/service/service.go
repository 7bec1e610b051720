// Package service is the mutation layer: it validates input, applies
// changes to the in-memory stores, records undo slots, and hands the
// affected collections to the sync coordinator for persistence. All
// mutations are serialized behind one mutex; reads take snapshots.
package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"

	"github.com/starford/raido/internal/cache"
	"github.com/starford/raido/internal/mention"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/search"
	"github.com/starford/raido/internal/store"
	"github.com/starford/raido/internal/syncer"
	"github.com/starford/raido/internal/undo"
)

// Service owns the four collections and coordinates every mutation.
type Service struct {
	mu      sync.Mutex
	notes   *store.Store[models.Note]
	quick   *store.Store[models.QuickNote]
	tasks   *store.Store[models.Task]
	clients *store.ClientRegistry

	coord  *syncer.Coordinator
	ledger *undo.Ledger
	index  *search.DB
	logger *slog.Logger

	now   func() time.Time
	newID func() string
}

// New creates a service. index may be nil (search disabled, e.g. the MCP
// read paths in tests).
func New(coord *syncer.Coordinator, ledger *undo.Ledger, index *search.DB, locale language.Tag, logger *slog.Logger) *Service {
	return &Service{
		notes:   store.NewNotes(),
		quick:   store.NewQuickNotes(),
		tasks:   store.NewTasks(),
		clients: store.NewClientRegistry(locale),
		coord:   coord,
		ledger:  ledger,
		index:   index,
		logger:  logger,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// Load populates the stores from the coordinator's authoritative source
// (remote-first when configured, local cache otherwise) and rebuilds the
// search index.
func (s *Service) Load(ctx context.Context) {
	doc := s.coord.Load(ctx)
	s.adopt(doc)
}

// Reload re-reads the authoritative source and broadcasts the change
// signal. Invoked when another process writes the shared cache.
func (s *Service) Reload(ctx context.Context) {
	doc := s.coord.Load(ctx)
	s.adopt(doc)
	s.coord.Notify()
}

func (s *Service) adopt(doc models.Document) {
	s.mu.Lock()
	s.notes.Replace(doc.Notes)
	s.quick.Replace(doc.QuickNotes)
	s.tasks.Replace(doc.Tasks)
	s.clients.Replace(doc.Clients)
	notes := s.notes.List()
	s.mu.Unlock()

	s.reindex(notes)
}

// Snapshot returns the full document in canonical order. The coordinator
// calls this when the debounced push fires.
func (s *Service) Snapshot() models.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := models.Document{
		Notes:      s.notes.List(),
		Clients:    s.clients.List(),
		QuickNotes: s.quick.List(),
		Tasks:      s.tasks.List(),
	}
	doc.Normalize()
	return doc
}

// Undo re-applies the pending inverse operation, if any. Calling it with
// an empty slot (or after the grace period elapsed) is a no-op.
func (s *Service) Undo() bool {
	return s.ledger.Undo()
}

// PendingUndo reports the pending undo slot for status display.
func (s *Service) PendingUndo() (undo.Op, string, bool) {
	return s.ledger.Pending()
}

// SearchNotes runs a full-text query over the note index, serving mention
// search.
func (s *Service) SearchNotes(query string, limit int) ([]search.Result, error) {
	if s.index == nil {
		return nil, nil
	}
	return s.index.Search(query, limit)
}

// Mentions extracts the weak references embedded in a note's rich-text
// payloads.
func (s *Service) Mentions(noteID string) ([]mention.Mention, bool) {
	s.mu.Lock()
	n, ok := s.notes.Get(noteID)
	s.mu.Unlock()
	if !ok {
		return nil, false
	}
	out := mention.Extract(n.PreNotesHTML)
	out = append(out, mention.Extract(n.ContentHTML)...)
	out = append(out, mention.Extract(n.NextStepsHTML)...)
	return out, true
}

// ResolveMention resolves a mention target against the live collection. A
// deleted target returns ok=false: the caller treats the click as a no-op.
func (s *Service) ResolveMention(noteID string) (models.Note, bool) {
	s.mu.Lock()
	snapshot := s.notes.List()
	s.mu.Unlock()
	return mention.Resolve(snapshot, noteID)
}

// persist writes the named collections through to the local cache. Runs
// with s.mu held so the cache write is synchronous relative to the
// mutation.
func (s *Service) persist(names ...string) {
	for _, name := range names {
		var payload any
		switch name {
		case cache.DocNotes:
			payload = s.notes.List()
		case cache.DocQuickNotes:
			payload = s.quick.List()
		case cache.DocTasks:
			payload = s.tasks.List()
		case cache.DocClients:
			payload = s.clients.List()
		}
		if err := s.coord.SaveLocal(name, payload); err != nil {
			s.logger.Warn("service: cache write failed",
				slog.String("doc", name), slog.String("error", err.Error()))
		}
	}
}

// commit schedules the debounced remote push and broadcasts the change
// signal. Called after the mutex is released.
func (s *Service) commit() {
	s.coord.SchedulePush()
	s.coord.Notify()
}

func (s *Service) reindex(notes []models.Note) {
	if s.index == nil {
		return
	}
	if err := s.index.Rebuild(notes); err != nil {
		s.logger.Warn("service: index rebuild failed", slog.String("error", err.Error()))
	}
}

func (s *Service) indexNote(n models.Note) {
	if s.index == nil {
		return
	}
	if err := s.index.IndexNote(n); err != nil {
		s.logger.Warn("service: index note failed",
			slog.String("id", n.ID), slog.String("error", err.Error()))
	}
}

func (s *Service) unindexNote(id string) {
	if s.index == nil {
		return
	}
	if err := s.index.DeleteNote(id); err != nil {
		s.logger.Warn("service: unindex note failed",
			slog.String("id", id), slog.String("error", err.Error()))
	}
}
