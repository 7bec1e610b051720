package service

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/cache"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/undo"
)

// QuickNoteInput carries the editable fields of a quick note.
type QuickNoteInput struct {
	Title       string `json:"title"`
	Client      string `json:"client"`
	Date        string `json:"date"`
	ContentHTML string `json:"contentHtml"`
}

// Validate rejects missing required input.
func (in QuickNoteInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required),
	)
}

// CreateQuickNote creates a quick note with a fresh id and timestamps.
func (s *Service) CreateQuickNote(in QuickNoteInput) (models.QuickNote, error) {
	if err := in.Validate(); err != nil {
		return models.QuickNote{}, fmt.Errorf("%w: %s", apperr.ErrInvalid, err)
	}

	now := s.now()
	q := models.QuickNote{
		ID:          s.newID(),
		Title:       in.Title,
		Client:      in.Client,
		Date:        in.Date,
		ContentHTML: in.ContentHTML,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if q.Date == "" {
		q.Date = now.Format("2006-01-02")
	}

	s.mu.Lock()
	s.quick.Upsert(q)
	s.persist(cache.DocQuickNotes)
	s.mu.Unlock()

	s.commit()
	return q, nil
}

// UpdateQuickNote replaces a quick note's editable fields.
func (s *Service) UpdateQuickNote(id string, in QuickNoteInput) (models.QuickNote, error) {
	if err := in.Validate(); err != nil {
		return models.QuickNote{}, fmt.Errorf("%w: %s", apperr.ErrInvalid, err)
	}

	s.mu.Lock()
	q, ok := s.quick.Get(id)
	if !ok {
		s.mu.Unlock()
		return models.QuickNote{}, apperr.ErrNotFound
	}
	q.Title = in.Title
	q.Client = in.Client
	if in.Date != "" {
		q.Date = in.Date
	}
	q.ContentHTML = in.ContentHTML
	q.UpdatedAt = s.now()
	s.quick.Upsert(q)
	s.persist(cache.DocQuickNotes)
	s.mu.Unlock()

	s.commit()
	return q, nil
}

// DeleteQuickNote removes a quick note and records the undo slot.
func (s *Service) DeleteQuickNote(id string) error {
	s.mu.Lock()
	removed, ok := s.quick.Remove(id)
	if !ok {
		s.mu.Unlock()
		return apperr.ErrNotFound
	}
	s.persist(cache.DocQuickNotes)
	s.mu.Unlock()

	s.ledger.Record(undo.OpDelete, cache.DocQuickNotes, func() {
		s.mu.Lock()
		s.quick.Upsert(removed)
		s.persist(cache.DocQuickNotes)
		s.mu.Unlock()
		s.commit()
	})
	s.commit()
	return nil
}

// GetQuickNote returns one quick note by id.
func (s *Service) GetQuickNote(id string) (models.QuickNote, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quick.Get(id)
}

// ListQuickNotes returns all quick notes in canonical order.
func (s *Service) ListQuickNotes() []models.QuickNote {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quick.List()
}
