package service

import (
	"fmt"
	"io"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/cache"
	"github.com/starford/raido/internal/importer"
	"github.com/starford/raido/internal/models"
)

// ImportResult summarizes one import batch.
type ImportResult struct {
	Imported int `json:"imported"`
	Total    int `json:"total"`
}

func (s *Service) importDefaults() importer.Defaults {
	return importer.Defaults{Now: s.now, NewID: s.newID}
}

// ImportCSV merges a CSV batch into the named collection: imported rows
// win on id collision, everything else is a union, and new client names
// surfaced by the batch extend the registry.
func (s *Service) ImportCSV(collection string, r io.Reader) (ImportResult, error) {
	switch collection {
	case cache.DocNotes:
		batch, err := importer.DecodeNotes(r, s.importDefaults())
		if err != nil {
			return ImportResult{}, err
		}

		s.mu.Lock()
		merged := importer.Merge(s.notes.List(), batch)
		s.notes.Replace(merged)
		s.clients.Merge(importer.ClientNames(batch, func(n models.Note) string { return n.Client }))
		s.persist(cache.DocNotes, cache.DocClients)
		notes := s.notes.List()
		s.mu.Unlock()

		s.reindex(notes)
		s.commit()
		return ImportResult{Imported: len(batch), Total: len(merged)}, nil

	case cache.DocQuickNotes:
		batch, err := importer.DecodeQuickNotes(r, s.importDefaults())
		if err != nil {
			return ImportResult{}, err
		}

		s.mu.Lock()
		merged := importer.Merge(s.quick.List(), batch)
		s.quick.Replace(merged)
		s.clients.Merge(importer.ClientNames(batch, func(q models.QuickNote) string { return q.Client }))
		s.persist(cache.DocQuickNotes, cache.DocClients)
		s.mu.Unlock()

		s.commit()
		return ImportResult{Imported: len(batch), Total: len(merged)}, nil

	case cache.DocTasks:
		batch, err := importer.DecodeTasks(r, s.importDefaults())
		if err != nil {
			return ImportResult{}, err
		}

		s.mu.Lock()
		merged := importer.Merge(s.tasks.List(), batch)
		s.tasks.Replace(merged)
		s.clients.Merge(importer.ClientNames(batch, func(t models.Task) string { return t.Client }))
		s.persist(cache.DocTasks, cache.DocClients)
		s.mu.Unlock()

		s.commit()
		return ImportResult{Imported: len(batch), Total: len(merged)}, nil
	}
	return ImportResult{}, fmt.Errorf("%w: unknown collection %q", apperr.ErrInvalid, collection)
}

// ExportCSV writes the named collection as CSV in canonical order.
func (s *Service) ExportCSV(collection string, w io.Writer) error {
	switch collection {
	case cache.DocNotes:
		return importer.EncodeNotes(w, s.ListNotes())
	case cache.DocQuickNotes:
		return importer.EncodeQuickNotes(w, s.ListQuickNotes())
	case cache.DocTasks:
		return importer.EncodeTasks(w, s.ListTasks(""))
	}
	return fmt.Errorf("%w: unknown collection %q", apperr.ErrInvalid, collection)
}
