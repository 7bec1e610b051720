package search

import (
	"os"
	"testing"
	"time"

	"github.com/starford/raido/internal/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "raido-search-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func note(id, title, client, date, content string) models.Note {
	return models.Note{
		ID: id, Title: title, Client: client, Date: date,
		ContentHTML: content, UpdatedAt: time.Now(),
	}
}

func TestIndexAndSearch(t *testing.T) {
	db := testDB(t)

	if err := db.IndexNote(note("n1", "Quarterly planning", "Acme", "2025-06-01", "<p>budget review</p>")); err != nil {
		t.Fatalf("index: %v", err)
	}
	if err := db.IndexNote(note("n2", "Standup", "Beta", "2025-06-02", "<p>daily sync</p>")); err != nil {
		t.Fatalf("index: %v", err)
	}

	results, err := db.Search("budget", 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 || results[0].ID != "n1" {
		t.Fatalf("expected n1, got %+v", results)
	}
	if results[0].Title != "Quarterly planning" {
		t.Errorf("expected title in result, got %q", results[0].Title)
	}
}

func TestSearchMatchesTitleAndClient(t *testing.T) {
	db := testDB(t)
	if err := db.IndexNote(note("n1", "Kickoff", "Acme", "2025-06-01", "")); err != nil {
		t.Fatal(err)
	}

	for _, q := range []string{"Kickoff", "Acme"} {
		results, err := db.Search(q, 10)
		if err != nil {
			t.Fatalf("search %q: %v", q, err)
		}
		if len(results) != 1 {
			t.Errorf("query %q: expected 1 result, got %d", q, len(results))
		}
	}
}

func TestIndexNoteUpsert(t *testing.T) {
	db := testDB(t)
	if err := db.IndexNote(note("n1", "Old title", "", "2025-06-01", "")); err != nil {
		t.Fatal(err)
	}
	if err := db.IndexNote(note("n1", "New title", "", "2025-06-01", "")); err != nil {
		t.Fatal(err)
	}

	if results, _ := db.Search("Old title", 10); len(results) != 0 {
		t.Errorf("expected old title gone after upsert, got %+v", results)
	}
	results, err := db.Search("New title", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Errorf("expected new title indexed, got %+v", results)
	}
}

func TestDeleteNote(t *testing.T) {
	db := testDB(t)
	if err := db.IndexNote(note("n1", "Doomed", "", "2025-06-01", "")); err != nil {
		t.Fatal(err)
	}
	if err := db.DeleteNote("n1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if results, _ := db.Search("Doomed", 10); len(results) != 0 {
		t.Errorf("expected no results after delete, got %+v", results)
	}
}

func TestRebuildReplacesIndex(t *testing.T) {
	db := testDB(t)
	if err := db.IndexNote(note("stale", "Stale note", "", "2025-06-01", "")); err != nil {
		t.Fatal(err)
	}

	fresh := []models.Note{
		note("n1", "Fresh one", "", "2025-06-02", ""),
		note("n2", "Fresh two", "", "2025-06-03", ""),
	}
	if err := db.Rebuild(fresh); err != nil {
		t.Fatalf("rebuild: %v", err)
	}

	if results, _ := db.Search("Stale", 10); len(results) != 0 {
		t.Errorf("expected stale entry dropped, got %+v", results)
	}
	results, err := db.Search("Fresh", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Errorf("expected 2 fresh entries, got %+v", results)
	}
}

func TestSearchStripsMarkup(t *testing.T) {
	db := testDB(t)
	if err := db.IndexNote(note("n1", "Note", "", "2025-06-01", "<p>alpha <strong>beta</strong></p>")); err != nil {
		t.Fatal(err)
	}

	// Tag names are not part of the indexed body.
	if results, _ := db.Search("strong", 10); len(results) != 0 {
		t.Errorf("expected markup stripped from index, got %+v", results)
	}
	results, err := db.Search("beta", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Errorf("expected text content indexed, got %+v", results)
	}
}
