package service

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/cache"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/undo"
)

// NoteInput carries the editable fields of a note. Ids and timestamps are
// owned by the service, never by the caller.
type NoteInput struct {
	Title         string                 `json:"title"`
	Client        string                 `json:"client"`
	Date          string                 `json:"date"`
	MeetingType   models.MeetingType     `json:"meetingType"`
	PreNotesHTML  string                 `json:"preNotesHtml"`
	ContentHTML   string                 `json:"contentHtml"`
	NextStepsHTML string                 `json:"nextStepsHtml"`
	NextTasks     []models.ChecklistItem `json:"nextTasks"`
}

// Validate rejects missing required input before it reaches the store.
func (in NoteInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required),
		validation.Field(&in.MeetingType, validation.In(models.MeetingClient, models.MeetingInternal)),
	)
}

func (s *Service) noteFromInput(in NoteInput, base models.Note) models.Note {
	base.Title = in.Title
	base.Client = in.Client
	base.Date = in.Date
	if base.Date == "" {
		base.Date = s.now().Format("2006-01-02")
	}
	base.MeetingType = in.MeetingType
	if base.MeetingType == "" {
		base.MeetingType = models.MeetingClient
	}
	base.PreNotesHTML = in.PreNotesHTML
	base.ContentHTML = in.ContentHTML
	base.NextStepsHTML = in.NextStepsHTML
	base.NextTasks = in.NextTasks
	return base
}

// CreateNote creates a note with a fresh id and timestamps.
func (s *Service) CreateNote(in NoteInput) (models.Note, error) {
	if err := in.Validate(); err != nil {
		return models.Note{}, fmt.Errorf("%w: %s", apperr.ErrInvalid, err)
	}

	now := s.now()
	n := s.noteFromInput(in, models.Note{ID: s.newID(), CreatedAt: now, UpdatedAt: now})

	s.mu.Lock()
	s.notes.Upsert(n)
	s.persist(cache.DocNotes)
	s.mu.Unlock()

	s.indexNote(n)
	s.commit()
	return n, nil
}

// UpdateNote replaces a note's editable fields, rewriting updatedAt. The
// id and createdAt are never reassigned.
func (s *Service) UpdateNote(id string, in NoteInput) (models.Note, error) {
	if err := in.Validate(); err != nil {
		return models.Note{}, fmt.Errorf("%w: %s", apperr.ErrInvalid, err)
	}

	s.mu.Lock()
	existing, ok := s.notes.Get(id)
	if !ok {
		s.mu.Unlock()
		return models.Note{}, apperr.ErrNotFound
	}
	n := s.noteFromInput(in, existing)
	n.UpdatedAt = s.now()
	s.notes.Upsert(n)
	s.persist(cache.DocNotes)
	s.mu.Unlock()

	s.indexNote(n)
	s.commit()
	return n, nil
}

// DeleteNote removes a note and records its last-known value in the undo
// slot for the grace period.
func (s *Service) DeleteNote(id string) error {
	s.mu.Lock()
	removed, ok := s.notes.Remove(id)
	if !ok {
		s.mu.Unlock()
		return apperr.ErrNotFound
	}
	s.persist(cache.DocNotes)
	s.mu.Unlock()

	s.unindexNote(id)
	s.ledger.Record(undo.OpDelete, cache.DocNotes, func() {
		s.mu.Lock()
		s.notes.Upsert(removed)
		s.persist(cache.DocNotes)
		s.mu.Unlock()
		s.indexNote(removed)
		s.commit()
	})
	s.commit()
	return nil
}

// GetNote returns one note by id.
func (s *Service) GetNote(id string) (models.Note, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notes.Get(id)
}

// ListNotes returns all notes in canonical order (date descending, then
// createdAt descending).
func (s *Service) ListNotes() []models.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notes.List()
}
