package service

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/cache"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/ordering"
	"github.com/starford/raido/internal/undo"
)

// TaskInput carries the editable fields of a task.
type TaskInput struct {
	Title  string        `json:"title"`
	Client string        `json:"client"`
	Bucket models.Bucket `json:"bucket"`
}

// Validate rejects missing required input.
func (in TaskInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required),
		validation.Field(&in.Bucket, validation.In(models.BucketToday, models.BucketWeek, models.BucketNone)),
	)
}

// CreateTask creates a task with a fresh id. New tasks default to bucket
// "none" and carry no order until they are first dropped somewhere.
func (s *Service) CreateTask(in TaskInput) (models.Task, error) {
	if err := in.Validate(); err != nil {
		return models.Task{}, fmt.Errorf("%w: %s", apperr.ErrInvalid, err)
	}

	t := models.Task{
		ID:        s.newID(),
		Title:     in.Title,
		Client:    in.Client,
		Bucket:    in.Bucket,
		CreatedAt: s.now(),
	}
	if t.Bucket == "" {
		t.Bucket = models.BucketNone
	}

	s.mu.Lock()
	s.tasks.Upsert(t)
	s.persist(cache.DocTasks)
	s.mu.Unlock()

	s.commit()
	return t, nil
}

// UpdateTask replaces a task's editable fields. Bucket and order moves go
// through MoveTask instead.
func (s *Service) UpdateTask(id string, in TaskInput) (models.Task, error) {
	if err := in.Validate(); err != nil {
		return models.Task{}, fmt.Errorf("%w: %s", apperr.ErrInvalid, err)
	}

	s.mu.Lock()
	t, ok := s.tasks.Get(id)
	if !ok {
		s.mu.Unlock()
		return models.Task{}, apperr.ErrNotFound
	}
	t.Title = in.Title
	t.Client = in.Client
	s.tasks.Upsert(t)
	s.persist(cache.DocTasks)
	s.mu.Unlock()

	s.commit()
	return t, nil
}

// DeleteTask removes a task and records the undo slot.
func (s *Service) DeleteTask(id string) error {
	s.mu.Lock()
	removed, ok := s.tasks.Remove(id)
	if !ok {
		s.mu.Unlock()
		return apperr.ErrNotFound
	}
	s.persist(cache.DocTasks)
	s.mu.Unlock()

	s.ledger.Record(undo.OpDelete, cache.DocTasks, func() {
		s.mu.Lock()
		s.tasks.Upsert(removed)
		s.persist(cache.DocTasks)
		s.mu.Unlock()
		s.commit()
	})
	s.commit()
	return nil
}

// ToggleTask flips a task's done flag and records the prior value in the
// undo slot.
func (s *Service) ToggleTask(id string) (models.Task, error) {
	s.mu.Lock()
	t, ok := s.tasks.Get(id)
	if !ok {
		s.mu.Unlock()
		return models.Task{}, apperr.ErrNotFound
	}
	prior := t.Done
	t.Done = !prior
	s.tasks.Upsert(t)
	s.persist(cache.DocTasks)
	s.mu.Unlock()

	s.ledger.Record(undo.OpToggle, cache.DocTasks, func() {
		s.mu.Lock()
		if cur, ok := s.tasks.Get(id); ok {
			cur.Done = prior
			s.tasks.Upsert(cur)
			s.persist(cache.DocTasks)
		}
		s.mu.Unlock()
		s.commit()
	})
	s.commit()
	return t, nil
}

// MoveTask applies a drag-and-drop reorder. With beforeID empty the task
// is dropped into the bucket's empty area (sparse append, siblings
// untouched); with beforeID set it is spliced before that sibling and the
// destination bucket is renumbered to dense zero-based order. Either way
// the task's bucket field changes as part of the move.
func (s *Service) MoveTask(id string, bucket models.Bucket, beforeID string) (models.Task, error) {
	switch bucket {
	case models.BucketToday, models.BucketWeek, models.BucketNone:
	default:
		return models.Task{}, fmt.Errorf("%w: unknown bucket %q", apperr.ErrInvalid, bucket)
	}

	s.mu.Lock()
	moved, ok := s.tasks.Get(id)
	if !ok {
		s.mu.Unlock()
		return models.Task{}, apperr.ErrNotFound
	}

	all := s.tasks.List()
	if beforeID == "" {
		moved = ordering.AppendToBucket(all, moved, bucket)
		s.tasks.Upsert(moved)
	} else {
		renumbered, err := ordering.InsertBeforeSibling(all, moved, bucket, beforeID)
		if err != nil {
			s.mu.Unlock()
			return models.Task{}, err
		}
		for _, t := range renumbered {
			s.tasks.Upsert(t)
			if t.ID == id {
				moved = t
			}
		}
	}
	s.persist(cache.DocTasks)
	s.mu.Unlock()

	s.commit()
	return moved, nil
}

// GetTask returns one task by id.
func (s *Service) GetTask(id string) (models.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tasks.Get(id)
}

// ListTasks returns all tasks in canonical order. Pass a bucket to filter;
// an empty bucket returns everything.
func (s *Service) ListTasks(bucket models.Bucket) []models.Task {
	s.mu.Lock()
	all := s.tasks.List()
	s.mu.Unlock()

	if bucket == "" {
		return all
	}
	out := make([]models.Task, 0, len(all))
	for _, t := range all {
		if t.Bucket == bucket {
			out = append(out, t)
		}
	}
	return out
}
