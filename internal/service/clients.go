package service

import (
	"fmt"
	"strings"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/cache"
)

// AddClient registers a client name. Names are unique under the registry's
// locale-aware case-insensitive comparison.
func (s *Service) AddClient(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: name is required", apperr.ErrInvalid)
	}

	s.mu.Lock()
	if err := s.clients.Add(name); err != nil {
		s.mu.Unlock()
		return err
	}
	s.persist(cache.DocClients)
	s.mu.Unlock()

	s.commit()
	return nil
}

// RenameClient replaces a registered name. Entities hold denormalized
// copies of the client string, so the rename does not cascade to them.
func (s *Service) RenameClient(old, new string) error {
	new = strings.TrimSpace(new)
	if new == "" {
		return fmt.Errorf("%w: name is required", apperr.ErrInvalid)
	}

	s.mu.Lock()
	if err := s.clients.Rename(old, new); err != nil {
		s.mu.Unlock()
		return err
	}
	s.persist(cache.DocClients)
	s.mu.Unlock()

	s.commit()
	return nil
}

// RemoveClient deletes a client name. Removing an unknown name is a no-op.
func (s *Service) RemoveClient(name string) {
	s.mu.Lock()
	removed := s.clients.Remove(name)
	if removed {
		s.persist(cache.DocClients)
	}
	s.mu.Unlock()

	if removed {
		s.commit()
	}
}

// ListClients returns the client names in locale-collated ascending order.
func (s *Service) ListClients() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clients.List()
}
