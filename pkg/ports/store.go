package ports

import (
	"context"

	"github.com/claritydental/walkout/pkg/domain"
)

// WalkoutStore persists walkout aggregates. There is at most one
// active walkout per appointment; Create must refuse a second one.
type WalkoutStore interface {
	// Create persists a new walkout. It returns *domain.ConflictError
	// when the appointment already has one.
	Create(ctx context.Context, w *domain.Walkout) error

	// Update replaces the stored aggregate identified by w.ID.
	// Returns domain.ErrWalkoutNotFound for an unknown identity.
	Update(ctx context.Context, w *domain.Walkout) error

	// Get retrieves a walkout by its own identity.
	Get(ctx context.Context, id string) (*domain.Walkout, error)

	// GetByAppointment retrieves the walkout attached to the
	// appointment, or domain.ErrWalkoutNotFound.
	GetByAppointment(ctx context.Context, appointmentID string) (*domain.Walkout, error)

	// List returns the identities of all stored walkouts.
	List(ctx context.Context) ([]string, error)

	// Delete removes a walkout. Operational tooling only; the engine
	// has no deletion path.
	Delete(ctx context.Context, id string) error
}

// AppointmentSource reads appointment references. Appointments are
// owned externally and never written through this port.
type AppointmentSource interface {
	Get(ctx context.Context, id string) (*domain.Appointment, error)
}
