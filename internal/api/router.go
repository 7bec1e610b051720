package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/raido/internal/service"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *service.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Notes.
	r.Get("/notes", h.ListNotes)
	r.Post("/notes", h.CreateNote)
	r.Get("/notes/{id}", h.GetNote)
	r.Put("/notes/{id}", h.UpdateNote)
	r.Delete("/notes/{id}", h.DeleteNote)
	r.Get("/notes/{id}/mentions", h.NoteMentions)
	r.Get("/mentions/{id}", h.ResolveMention)

	// Quick notes.
	r.Get("/quicknotes", h.ListQuickNotes)
	r.Post("/quicknotes", h.CreateQuickNote)
	r.Get("/quicknotes/{id}", h.GetQuickNote)
	r.Put("/quicknotes/{id}", h.UpdateQuickNote)
	r.Delete("/quicknotes/{id}", h.DeleteQuickNote)

	// Tasks and the board.
	r.Get("/tasks", h.ListTasks)
	r.Post("/tasks", h.CreateTask)
	r.Put("/tasks/{id}", h.UpdateTask)
	r.Delete("/tasks/{id}", h.DeleteTask)
	r.Post("/tasks/{id}/toggle", h.ToggleTask)
	r.Post("/tasks/{id}/move", h.MoveTask)

	// Client registry.
	r.Get("/clients", h.ListClients)
	r.Post("/clients", h.CreateClient)
	r.Put("/clients/{name}", h.RenameClient)
	r.Delete("/clients/{name}", h.DeleteClient)

	// Undo and search.
	r.Post("/undo", h.Undo)
	r.Get("/search", h.Search)

	// CSV import/export.
	r.Post("/import/{collection}", h.Import)
	r.Get("/export/{collection}", h.Export)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
