// Package store holds the in-memory entity collections and their canonical
// sort orders. Stores are plain containers: they never touch the cache or
// the remote, and list order is recomputed on every read rather than
// persisted.
package store

import (
	"sort"

	"github.com/starford/raido/internal/models"
)

// Store is a generic id-keyed collection of one entity type.
type Store[T models.Entity] struct {
	items map[string]T
	less  func(a, b T) bool
}

// New creates an empty store with the given canonical sort.
func New[T models.Entity](less func(a, b T) bool) *Store[T] {
	return &Store[T]{items: make(map[string]T), less: less}
}

// Upsert inserts the entity if its id is unseen, otherwise replaces the
// previous value wholesale. Entities are value snapshots: a mutation always
// replaces the whole entity, never patches a field in place.
func (s *Store[T]) Upsert(e T) {
	s.items[e.EntityID()] = e
}

// Remove deletes the entity and returns the removed value. A missing id is
// not an error; ok is false.
func (s *Store[T]) Remove(id string) (T, bool) {
	e, ok := s.items[id]
	if ok {
		delete(s.items, id)
	}
	return e, ok
}

// Get returns the entity with the given id.
func (s *Store[T]) Get(id string) (T, bool) {
	e, ok := s.items[id]
	return e, ok
}

// List returns all entities in canonical sort order. The result is a fresh
// slice; mutating it does not affect the store.
func (s *Store[T]) List() []T {
	out := make([]T, 0, len(s.items))
	for _, e := range s.items {
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return s.less(out[i], out[j]) })
	return out
}

// Len returns the number of entities.
func (s *Store[T]) Len() int { return len(s.items) }

// Replace swaps the whole collection, e.g. after a load or an import merge.
func (s *Store[T]) Replace(items []T) {
	s.items = make(map[string]T, len(items))
	for _, e := range items {
		s.items[e.EntityID()] = e
	}
}

// NoteLess is the canonical sort for notes: date descending, ties broken by
// createdAt descending.
func NoteLess(a, b models.Note) bool {
	if a.Date != b.Date {
		return a.Date > b.Date
	}
	return a.CreatedAt.After(b.CreatedAt)
}

// QuickNoteLess is the canonical sort for quick notes: date descending,
// then createdAt descending.
func QuickNoteLess(a, b models.QuickNote) bool {
	if a.Date != b.Date {
		return a.Date > b.Date
	}
	return a.CreatedAt.After(b.CreatedAt)
}

// TaskLess is the canonical sort for tasks: order ascending with a missing
// order sorting last, then createdAt descending. Order values are only
// comparable within a bucket; callers filter by bucket before relying on
// positions.
func TaskLess(a, b models.Task) bool {
	switch {
	case a.Order != nil && b.Order != nil:
		if *a.Order != *b.Order {
			return *a.Order < *b.Order
		}
	case a.Order != nil:
		return true
	case b.Order != nil:
		return false
	}
	return a.CreatedAt.After(b.CreatedAt)
}

// NewNotes creates a note store with the canonical sort.
func NewNotes() *Store[models.Note] { return New(NoteLess) }

// NewQuickNotes creates a quick-note store with the canonical sort.
func NewQuickNotes() *Store[models.QuickNote] { return New(QuickNoteLess) }

// NewTasks creates a task store with the canonical sort.
func NewTasks() *Store[models.Task] { return New(TaskLess) }
