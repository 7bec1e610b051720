// Package models defines the domain types for Raido.
package models

import "time"

// MeetingType classifies a meeting note.
type MeetingType string

// Meeting types.
const (
	MeetingClient   MeetingType = "client"
	MeetingInternal MeetingType = "internal"
)

// Bucket is one of the three task lanes on the board.
type Bucket string

// Task buckets.
const (
	BucketToday Bucket = "today"
	BucketWeek  Bucket = "week"
	BucketNone  Bucket = "none"
)

// ChecklistItem is one entry in a note's next-steps checklist.
type ChecklistItem struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	Done bool   `json:"done"`
}

// Note represents a meeting note. The three rich-text fields are opaque
// HTML produced by the editor; Raido never interprets them beyond mention
// extraction.
type Note struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	Client        string          `json:"client,omitempty"`
	Date          string          `json:"date"` // calendar date, YYYY-MM-DD
	MeetingType   MeetingType     `json:"meetingType"`
	PreNotesHTML  string          `json:"preNotesHtml,omitempty"`
	ContentHTML   string          `json:"contentHtml,omitempty"`
	NextStepsHTML string          `json:"nextStepsHtml,omitempty"`
	NextTasks     []ChecklistItem `json:"nextTasks,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// EntityID implements Entity.
func (n Note) EntityID() string { return n.ID }

// QuickNote is a lightweight note with a single rich-text payload.
type QuickNote struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Client      string    `json:"client,omitempty"`
	Date        string    `json:"date"`
	ContentHTML string    `json:"contentHtml,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// EntityID implements Entity.
func (q QuickNote) EntityID() string { return q.ID }

// Task is one board item. Order is optional: a task without an order sorts
// after every task that has one, and order is only meaningful relative to
// tasks sharing the same bucket.
type Task struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Client    string    `json:"client,omitempty"`
	Bucket    Bucket    `json:"bucket"`
	Order     *int      `json:"order,omitempty"`
	Done      bool      `json:"done"`
	CreatedAt time.Time `json:"createdAt"`
}

// EntityID implements Entity.
func (t Task) EntityID() string { return t.ID }

// Entity is anything held by an id-keyed store.
type Entity interface {
	EntityID() string
}

// Document is the full four-collection state exchanged with the remote
// store and mirrored in the local cache. A write always replaces the
// previous remote content wholesale (last full write wins).
type Document struct {
	Notes      []Note      `json:"notes"`
	Clients    []string    `json:"clients"`
	QuickNotes []QuickNote `json:"quickNotes"`
	Tasks      []Task      `json:"tasks"`
}

// Normalize replaces nil collections with empty ones so that a missing or
// malformed field decodes to an empty collection rather than an error.
func (d *Document) Normalize() {
	if d.Notes == nil {
		d.Notes = []Note{}
	}
	if d.Clients == nil {
		d.Clients = []string{}
	}
	if d.QuickNotes == nil {
		d.QuickNotes = []QuickNote{}
	}
	if d.Tasks == nil {
		d.Tasks = []Task{}
	}
}
