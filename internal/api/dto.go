package api

import (
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/service"
)

// NoteInput is the request body for creating or updating a note (aliased
// from the domain layer).
type NoteInput = service.NoteInput

// QuickNoteInput is the request body for quick notes.
type QuickNoteInput = service.QuickNoteInput

// TaskInput is the request body for tasks.
type TaskInput = service.TaskInput

// MoveTaskRequest is the request body for a drag-and-drop move. BeforeID
// empty means a drop into the bucket's empty area.
type MoveTaskRequest struct {
	Bucket   models.Bucket `json:"bucket"`
	BeforeID string        `json:"beforeId,omitempty"`
}

// ClientRequest is the request body for client registry operations.
type ClientRequest struct {
	Name string `json:"name"`
}

// RenameClientRequest is the request body for a client rename.
type RenameClientRequest struct {
	Name string `json:"name"`
}

// NoteListResponse wraps note listings.
type NoteListResponse struct {
	Notes []models.Note `json:"notes"`
	Total int           `json:"total"`
}

// QuickNoteListResponse wraps quick-note listings.
type QuickNoteListResponse struct {
	QuickNotes []models.QuickNote `json:"quickNotes"`
	Total      int                `json:"total"`
}

// TaskListResponse wraps task listings.
type TaskListResponse struct {
	Tasks []models.Task `json:"tasks"`
	Total int           `json:"total"`
}

// ClientListResponse wraps the client registry.
type ClientListResponse struct {
	Clients []string `json:"clients"`
}

// UndoResponse reports whether an undo was applied.
type UndoResponse struct {
	Applied bool `json:"applied"`
}
