// Package memory provides in-memory implementations of the walkout
// ports. The store backs unit tests and single-process deployments;
// the fixture sources back the CLI demo mode.
package memory

import (
	"context"
	"sync"

	"github.com/claritydental/walkout/pkg/domain"
)

// Store implements ports.WalkoutStore backed by maps. Safe for
// concurrent use.
type Store struct {
	mu            sync.RWMutex
	byID          map[string]*domain.Walkout
	byAppointment map[string]string
}

// NewStore creates an empty in-memory walkout store.
func NewStore() *Store {
	return &Store{
		byID:          make(map[string]*domain.Walkout),
		byAppointment: make(map[string]string),
	}
}

// Create persists a new walkout, enforcing one per appointment.
func (s *Store) Create(ctx context.Context, w *domain.Walkout) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.byAppointment[w.AppointmentID]; ok {
		return &domain.ConflictError{AppointmentID: w.AppointmentID, WalkoutID: existing}
	}
	s.byID[w.ID] = w.Clone()
	s.byAppointment[w.AppointmentID] = w.ID
	return nil
}

// Update replaces a stored walkout.
func (s *Store) Update(ctx context.Context, w *domain.Walkout) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[w.ID]; !ok {
		return domain.ErrWalkoutNotFound
	}
	s.byID[w.ID] = w.Clone()
	s.byAppointment[w.AppointmentID] = w.ID
	return nil
}

// Get retrieves a walkout by identity.
func (s *Store) Get(ctx context.Context, id string) (*domain.Walkout, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrWalkoutNotFound
	}
	return w.Clone(), nil
}

// GetByAppointment retrieves the walkout attached to an appointment.
func (s *Store) GetByAppointment(ctx context.Context, appointmentID string) (*domain.Walkout, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byAppointment[appointmentID]
	if !ok {
		return nil, domain.ErrWalkoutNotFound
	}
	return s.byID[id].Clone(), nil
}

// List returns all stored walkout identities.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.byID))
	for id := range s.byID {
		ids = append(ids, id)
	}
	return ids, nil
}

// Delete removes a walkout and its appointment index entry.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.byID[id]
	if !ok {
		return domain.ErrWalkoutNotFound
	}
	delete(s.byID, id)
	delete(s.byAppointment, w.AppointmentID)
	return nil
}
