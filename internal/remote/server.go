package remote

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
)

// Server is a reference implementation of the document store contract,
// holding a single document in memory. It backs the sync tests and can be
// self-hosted as a minimal remote for a handful of clients.
type Server struct {
	token string

	mu  sync.Mutex
	doc Document
}

// NewServer creates a store server. token, when non-empty, is required as
// a Bearer credential on every request.
func NewServer(token string) *Server {
	s := &Server{token: token}
	s.doc.Normalize()
	return s
}

// Handler returns the chi router serving the contract at "/".
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.auth)
	r.Get("/", s.get)
	r.Put("/", s.put)
	return r
}

// Snapshot returns a copy of the current document, for tests.
func (s *Server) Snapshot() Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc
}

func (s *Server) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.token != "" {
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") || strings.TrimPrefix(auth, "Bearer ") != s.token {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) get(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	doc := s.doc
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(doc); err != nil {
		slog.Error("remote server: encode failed", slog.String("error", err.Error()))
	}
}

func (s *Server) put(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 50<<20)

	var doc Document
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	doc.Normalize()

	// Whole-document replace; no merge.
	s.mu.Lock()
	s.doc = doc
	s.mu.Unlock()

	w.WriteHeader(http.StatusNoContent)
}
