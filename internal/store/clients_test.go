package store

import (
	"errors"
	"testing"

	"golang.org/x/text/language"

	"github.com/starford/raido/internal/apperr"
)

func TestClientRegistryCaseInsensitiveAdd(t *testing.T) {
	r := NewClientRegistry(language.Spanish)
	if err := r.Add("Acme"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := r.Add("acme"); !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists for case-variant duplicate, got %v", err)
	}
	if !r.Has("ACME") {
		t.Error("expected Has to match case-insensitively")
	}
}

func TestClientRegistryCollatedList(t *testing.T) {
	r := NewClientRegistry(language.Spanish)
	for _, n := range []string{"zeta", "Acme", "beta"} {
		if err := r.Add(n); err != nil {
			t.Fatalf("add %s: %v", n, err)
		}
	}

	got := r.List()
	want := []string{"Acme", "beta", "zeta"}
	if len(got) != len(want) {
		t.Fatalf("expected %d names, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestClientRegistryRename(t *testing.T) {
	r := NewClientRegistry(language.Spanish)
	r.Merge([]string{"Acme", "Beta"})

	if err := r.Rename("ghost", "x"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := r.Rename("Acme", "beta"); !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists for collision, got %v", err)
	}
	// Respelling the same name is allowed.
	if err := r.Rename("Acme", "ACME Corp"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if !r.Has("ACME Corp") {
		t.Error("expected renamed entry present")
	}
	if r.Has("Acme") {
		t.Error("expected old name gone after rename")
	}
}

func TestClientRegistryRespellSameName(t *testing.T) {
	r := NewClientRegistry(language.Spanish)
	r.Merge([]string{"acme"})
	if err := r.Rename("acme", "Acme"); err != nil {
		t.Fatalf("respelling the same name must succeed: %v", err)
	}
	got := r.List()
	if len(got) != 1 || got[0] != "Acme" {
		t.Errorf("expected [Acme], got %v", got)
	}
}

func TestClientRegistryMergeAndRemove(t *testing.T) {
	r := NewClientRegistry(language.Spanish)
	r.Merge([]string{"Acme", "acme", "", "Beta"})
	if len(r.List()) != 2 {
		t.Errorf("expected merge to drop duplicates and empties, got %v", r.List())
	}

	if !r.Remove("ACME") {
		t.Error("expected Remove to match case-insensitively")
	}
	if r.Remove("ghost") {
		t.Error("expected Remove of unknown name to report false")
	}
	if len(r.List()) != 1 {
		t.Errorf("expected 1 name left, got %v", r.List())
	}
}

func TestClientRegistryReplaceDropsDuplicates(t *testing.T) {
	r := NewClientRegistry(language.Spanish)
	r.Merge([]string{"Old"})
	r.Replace([]string{"Acme", "ACME", "Beta"})

	got := r.List()
	if len(got) != 2 {
		t.Fatalf("expected 2 names after replace, got %v", got)
	}
	if got[0] != "Acme" {
		t.Errorf("expected first occurrence kept, got %v", got)
	}
}
