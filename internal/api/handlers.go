package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/cache"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/service"
)

// Handler holds API route handlers.
type Handler struct {
	svc *service.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// decodeBody decodes a JSON request body into v, with a size cap.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return false
	}
	return true
}

// writeServiceError maps service errors to HTTP statuses.
func writeServiceError(w http.ResponseWriter, what string, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrInvalid):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrAlreadyExists):
		writeJSON(w, http.StatusConflict, errorBody("already exists"))
	default:
		slog.Error(what+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

// --- Notes ---

// ListNotes handles GET /notes.
func (h *Handler) ListNotes(w http.ResponseWriter, _ *http.Request) {
	notes := h.svc.ListNotes()
	writeJSON(w, http.StatusOK, NoteListResponse{Notes: notes, Total: len(notes)})
}

// GetNote handles GET /notes/{id}.
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	n, ok := h.svc.GetNote(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// CreateNote handles POST /notes.
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var in NoteInput
	if !decodeBody(w, r, &in) {
		return
	}
	n, err := h.svc.CreateNote(in)
	if err != nil {
		writeServiceError(w, "create note", err)
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

// UpdateNote handles PUT /notes/{id}.
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	var in NoteInput
	if !decodeBody(w, r, &in) {
		return
	}
	n, err := h.svc.UpdateNote(chi.URLParam(r, "id"), in)
	if err != nil {
		writeServiceError(w, "update note", err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// DeleteNote handles DELETE /notes/{id}. The deletion stays undoable for
// the grace period.
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteNote(chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, "delete note", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// NoteMentions handles GET /notes/{id}/mentions.
func (h *Handler) NoteMentions(w http.ResponseWriter, r *http.Request) {
	mentions, ok := h.svc.Mentions(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"mentions": mentions})
}

// ResolveMention handles GET /mentions/{id}: looks up the referenced note
// in the live collection. A deleted target yields 204, not an error, so
// the client treats the click as a no-op.
func (h *Handler) ResolveMention(w http.ResponseWriter, r *http.Request) {
	n, ok := h.svc.ResolveMention(chi.URLParam(r, "id"))
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// --- Quick notes ---

// ListQuickNotes handles GET /quicknotes.
func (h *Handler) ListQuickNotes(w http.ResponseWriter, _ *http.Request) {
	notes := h.svc.ListQuickNotes()
	writeJSON(w, http.StatusOK, QuickNoteListResponse{QuickNotes: notes, Total: len(notes)})
}

// GetQuickNote handles GET /quicknotes/{id}.
func (h *Handler) GetQuickNote(w http.ResponseWriter, r *http.Request) {
	q, ok := h.svc.GetQuickNote(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	writeJSON(w, http.StatusOK, q)
}

// CreateQuickNote handles POST /quicknotes.
func (h *Handler) CreateQuickNote(w http.ResponseWriter, r *http.Request) {
	var in QuickNoteInput
	if !decodeBody(w, r, &in) {
		return
	}
	q, err := h.svc.CreateQuickNote(in)
	if err != nil {
		writeServiceError(w, "create quick note", err)
		return
	}
	writeJSON(w, http.StatusCreated, q)
}

// UpdateQuickNote handles PUT /quicknotes/{id}.
func (h *Handler) UpdateQuickNote(w http.ResponseWriter, r *http.Request) {
	var in QuickNoteInput
	if !decodeBody(w, r, &in) {
		return
	}
	q, err := h.svc.UpdateQuickNote(chi.URLParam(r, "id"), in)
	if err != nil {
		writeServiceError(w, "update quick note", err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

// DeleteQuickNote handles DELETE /quicknotes/{id}.
func (h *Handler) DeleteQuickNote(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteQuickNote(chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, "delete quick note", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Tasks ---

// ListTasks handles GET /tasks with an optional bucket filter.
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	bucket := models.Bucket(r.URL.Query().Get("bucket"))
	tasks := h.svc.ListTasks(bucket)
	writeJSON(w, http.StatusOK, TaskListResponse{Tasks: tasks, Total: len(tasks)})
}

// CreateTask handles POST /tasks.
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var in TaskInput
	if !decodeBody(w, r, &in) {
		return
	}
	t, err := h.svc.CreateTask(in)
	if err != nil {
		writeServiceError(w, "create task", err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// UpdateTask handles PUT /tasks/{id}.
func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	var in TaskInput
	if !decodeBody(w, r, &in) {
		return
	}
	t, err := h.svc.UpdateTask(chi.URLParam(r, "id"), in)
	if err != nil {
		writeServiceError(w, "update task", err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// DeleteTask handles DELETE /tasks/{id}.
func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteTask(chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, "delete task", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ToggleTask handles POST /tasks/{id}/toggle.
func (h *Handler) ToggleTask(w http.ResponseWriter, r *http.Request) {
	t, err := h.svc.ToggleTask(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, "toggle task", err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// MoveTask handles POST /tasks/{id}/move.
func (h *Handler) MoveTask(w http.ResponseWriter, r *http.Request) {
	var req MoveTaskRequest
	if !decodeBody(w, r, &req) {
		return
	}
	t, err := h.svc.MoveTask(chi.URLParam(r, "id"), req.Bucket, req.BeforeID)
	if err != nil {
		writeServiceError(w, "move task", err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// --- Clients ---

// ListClients handles GET /clients.
func (h *Handler) ListClients(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, ClientListResponse{Clients: h.svc.ListClients()})
}

// CreateClient handles POST /clients.
func (h *Handler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var req ClientRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.svc.AddClient(req.Name); err != nil {
		writeServiceError(w, "create client", err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// RenameClient handles PUT /clients/{name}.
func (h *Handler) RenameClient(w http.ResponseWriter, r *http.Request) {
	var req RenameClientRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.svc.RenameClient(chi.URLParam(r, "name"), req.Name); err != nil {
		writeServiceError(w, "rename client", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteClient handles DELETE /clients/{name}.
func (h *Handler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	h.svc.RemoveClient(chi.URLParam(r, "name"))
	w.WriteHeader(http.StatusNoContent)
}

// --- Undo, search, import/export ---

// Undo handles POST /undo. An empty slot is a no-op, reported as
// applied=false.
func (h *Handler) Undo(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, UndoResponse{Applied: h.svc.Undo()})
}

// Search handles GET /search.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.SearchNotes(q, limit)
	if err != nil {
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

// Import handles POST /import/{collection} with a CSV body.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 50<<20)
	res, err := h.svc.ImportCSV(chi.URLParam(r, "collection"), r.Body)
	if err != nil {
		writeServiceError(w, "import", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Export handles GET /export/{collection}, streaming CSV.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	switch collection {
	case cache.DocNotes, cache.DocQuickNotes, cache.DocTasks:
	default:
		writeJSON(w, http.StatusBadRequest, errorBody("unknown collection"))
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+collection+`.csv"`)
	if err := h.svc.ExportCSV(collection, w); err != nil {
		slog.Error("export failed", slog.String("collection", collection), slog.String("error", err.Error()))
	}
}
