package store

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/starford/raido/internal/apperr"
)

// ClientRegistry holds the set of known client names. Names are unique
// under locale-aware case-insensitive comparison and listed in collated
// ascending order. Entities keep a denormalized copy of the client name,
// so renaming a client here does not cascade to existing entities.
type ClientRegistry struct {
	coll  *collate.Collator
	names []string
}

// NewClientRegistry creates a registry collating with the given locale.
func NewClientRegistry(locale language.Tag) *ClientRegistry {
	return &ClientRegistry{coll: collate.New(locale, collate.IgnoreCase)}
}

// Has reports whether an equivalent name (case-insensitive) is registered.
func (r *ClientRegistry) Has(name string) bool {
	for _, n := range r.names {
		if r.coll.CompareString(n, name) == 0 {
			return true
		}
	}
	return false
}

// Add registers a new client name. Duplicate names (under the registry's
// comparison) return apperr.ErrAlreadyExists.
func (r *ClientRegistry) Add(name string) error {
	if r.Has(name) {
		return apperr.ErrAlreadyExists
	}
	r.names = append(r.names, name)
	return nil
}

// Merge registers every name not already present. Used by imports, which
// surface new client names but must not fail on known ones.
func (r *ClientRegistry) Merge(names []string) {
	for _, n := range names {
		if n == "" || r.Has(n) {
			continue
		}
		r.names = append(r.names, n)
	}
}

// Rename replaces old with new. The caller decides whether to touch the
// denormalized copies on existing entities (they are not cascaded here).
func (r *ClientRegistry) Rename(old, new string) error {
	idx := -1
	for i, n := range r.names {
		if r.coll.CompareString(n, old) == 0 {
			idx = i
			break
		}
	}
	if idx < 0 {
		return apperr.ErrNotFound
	}
	// Renaming to a different spelling of the same name is allowed.
	if r.coll.CompareString(old, new) != 0 && r.Has(new) {
		return apperr.ErrAlreadyExists
	}
	r.names[idx] = new
	return nil
}

// Remove deletes a client name. Missing names are a no-op.
func (r *ClientRegistry) Remove(name string) bool {
	for i, n := range r.names {
		if r.coll.CompareString(n, name) == 0 {
			r.names = append(r.names[:i], r.names[i+1:]...)
			return true
		}
	}
	return false
}

// List returns the names in locale-collated ascending order.
func (r *ClientRegistry) List() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	sort.SliceStable(out, func(i, j int) bool {
		return r.coll.CompareString(out[i], out[j]) < 0
	})
	return out
}

// Replace swaps the whole set, dropping duplicates while keeping the first
// occurrence of each equivalent name.
func (r *ClientRegistry) Replace(names []string) {
	r.names = nil
	r.Merge(names)
}
