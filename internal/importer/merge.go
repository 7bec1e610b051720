// Package importer reconciles batches of externally-sourced rows against
// the existing collections. Rows are never rejected: missing ids are
// generated, missing scalar fields are defaulted, and on an id collision
// the imported version wins while everything else is a union.
package importer

import "github.com/starford/raido/internal/models"

// Merge applies the import policy: every existing entity whose id appears
// in the imported batch is replaced by the imported version, imported
// entities with unseen ids are added, and all other existing entities are
// returned unchanged.
func Merge[T models.Entity](existing, imported []T) []T {
	byID := make(map[string]T, len(imported))
	for _, e := range imported {
		byID[e.EntityID()] = e
	}

	out := make([]T, 0, len(existing)+len(imported))
	seen := make(map[string]struct{}, len(existing))
	for _, e := range existing {
		id := e.EntityID()
		seen[id] = struct{}{}
		if imp, ok := byID[id]; ok {
			out = append(out, imp)
		} else {
			out = append(out, e)
		}
	}
	for _, e := range imported {
		if _, ok := seen[e.EntityID()]; !ok {
			out = append(out, e)
		}
	}
	return out
}

// ClientNames collects the non-empty client labels surfaced by a batch,
// in input order. The registry decides which of them are actually new.
func ClientNames[T any](batch []T, clientOf func(T) string) []string {
	var out []string
	for _, e := range batch {
		if c := clientOf(e); c != "" {
			out = append(out, c)
		}
	}
	return out
}
