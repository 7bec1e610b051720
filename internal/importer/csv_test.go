package importer

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/starford/raido/internal/models"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func testDefaults() Defaults {
	n := 0
	return Defaults{
		Now: func() time.Time { return testNow },
		NewID: func() string {
			n++
			return "gen-" + string(rune('0'+n))
		},
	}
}

func TestDecodeNotesDefaulting(t *testing.T) {
	// A row with everything absent is still accepted.
	csv := "id,title,client,date,meeting_type\n,,,,\n"
	got, err := DecodeNotes(strings.NewReader(csv), testDefaults())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 note, got %d", len(got))
	}

	n := got[0]
	if n.ID == "" {
		t.Error("expected generated id")
	}
	if n.Title != PlaceholderTitle {
		t.Errorf("expected placeholder title, got %q", n.Title)
	}
	if n.Client != PlaceholderClient {
		t.Errorf("expected placeholder client, got %q", n.Client)
	}
	if n.Date != "2025-06-15" {
		t.Errorf("expected today's date, got %q", n.Date)
	}
	if n.MeetingType != models.MeetingClient {
		t.Errorf("expected default meeting type, got %q", n.MeetingType)
	}
	if !n.CreatedAt.Equal(testNow) || !n.UpdatedAt.Equal(testNow) {
		t.Errorf("expected now timestamps, got %v / %v", n.CreatedAt, n.UpdatedAt)
	}
}

func TestDecodeNotesReorderedColumns(t *testing.T) {
	csv := "title,id,client\nPlanning,n1,Acme\n"
	got, err := DecodeNotes(strings.NewReader(csv), testDefaults())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got[0].ID != "n1" || got[0].Title != "Planning" || got[0].Client != "Acme" {
		t.Errorf("expected header-based mapping, got %+v", got[0])
	}
}

func TestDecodeNotesBadChecklistJSON(t *testing.T) {
	csv := "id,title,next_tasks_json\nn1,Planning,{not json\n"
	got, err := DecodeNotes(strings.NewReader(csv), testDefaults())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got[0].NextTasks) != 0 {
		t.Errorf("expected defective checklist to degrade to empty, got %+v", got[0].NextTasks)
	}
}

func TestDecodeEmptyInput(t *testing.T) {
	got, err := DecodeTasks(strings.NewReader(""), testDefaults())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no tasks, got %d", len(got))
	}
}

func TestDecodeTasks(t *testing.T) {
	csv := "id,title,client,bucket,order,done,created_at\n" +
		"t1,Ship it,Acme,today,3,true,2025-06-01T09:00:00Z\n" +
		"t2,Later,,bogus,,false,\n"
	got, err := DecodeTasks(strings.NewReader(csv), testDefaults())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if got[0].Bucket != models.BucketToday || got[0].Order == nil || *got[0].Order != 3 || !got[0].Done {
		t.Errorf("first task: got %+v", got[0])
	}
	if got[1].Bucket != models.BucketNone {
		t.Errorf("expected unknown bucket coerced to none, got %q", got[1].Bucket)
	}
	if got[1].Order != nil {
		t.Errorf("expected absent order to stay nil, got %v", got[1].Order)
	}
	if got[1].Client != PlaceholderClient {
		t.Errorf("expected placeholder client, got %q", got[1].Client)
	}
}

func TestNoteRoundTrip(t *testing.T) {
	in := []models.Note{{
		ID:            "n1",
		Title:         "Quarterly, \"planning\"",
		Client:        "Acme",
		Date:          "2025-06-01",
		MeetingType:   models.MeetingInternal,
		PreNotesHTML:  "<p>before</p>",
		ContentHTML:   "<p>line one\nline two</p>",
		NextStepsHTML: "<ul><li>follow up</li></ul>",
		NextTasks:     []models.ChecklistItem{{ID: "c1", Text: "send deck", Done: true}},
		CreatedAt:     testNow,
		UpdatedAt:     testNow.Add(time.Hour),
	}}

	var buf bytes.Buffer
	if err := EncodeNotes(&buf, in); err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := DecodeNotes(&buf, testDefaults())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected 1 note, got %d", len(out))
	}

	got, want := out[0], in[0]
	if got.ID != want.ID || got.Title != want.Title || got.ContentHTML != want.ContentHTML {
		t.Errorf("scalar fields did not round-trip: %+v", got)
	}
	if !got.CreatedAt.Equal(want.CreatedAt) || !got.UpdatedAt.Equal(want.UpdatedAt) {
		t.Errorf("timestamps did not round-trip: %v / %v", got.CreatedAt, got.UpdatedAt)
	}
	if len(got.NextTasks) != 1 || got.NextTasks[0] != want.NextTasks[0] {
		t.Errorf("checklist did not round-trip: %+v", got.NextTasks)
	}
}

func TestTaskRoundTripKeepsNilOrder(t *testing.T) {
	in := []models.Task{
		{ID: "t1", Title: "a", Client: "Acme", Bucket: models.BucketWeek, CreatedAt: testNow},
	}
	var buf bytes.Buffer
	if err := EncodeTasks(&buf, in); err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := DecodeTasks(&buf, testDefaults())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out[0].Order != nil {
		t.Errorf("expected nil order preserved, got %v", out[0].Order)
	}
}

func TestQuickNoteRoundTrip(t *testing.T) {
	in := []models.QuickNote{{
		ID: "q1", Title: "Idea", Client: "Beta", Date: "2025-06-10",
		ContentHTML: "<p>jot</p>", CreatedAt: testNow, UpdatedAt: testNow,
	}}
	var buf bytes.Buffer
	if err := EncodeQuickNotes(&buf, in); err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := DecodeQuickNotes(&buf, testDefaults())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out[0] != in[0] {
		t.Errorf("quick note did not round-trip: %+v", out[0])
	}
}
