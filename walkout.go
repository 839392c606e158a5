package walkout

import (
	"context"
	"log/slog"
	"time"

	"github.com/claritydental/walkout/internal/logging"
	"github.com/claritydental/walkout/internal/runtime"
	"github.com/claritydental/walkout/pkg/adapters/memory"
	"github.com/claritydental/walkout/pkg/domain"
	"github.com/claritydental/walkout/pkg/fields"
	"github.com/claritydental/walkout/pkg/observability"
	"github.com/claritydental/walkout/pkg/ports"
	"github.com/claritydental/walkout/pkg/session"
)

// Version is the library version reported by the CLI.
const Version = "0.3.0"

// Submission is one section submission handed to the service.
type Submission = runtime.SubmissionInput

// Result is the outcome of a persisted submission.
type Result = runtime.SubmissionResult

// PendingConfirmation is a submission suspended on the escalation
// question. Answer it with Resume or discard it with Cancel.
type PendingConfirmation = runtime.PendingConfirmation

// Service is the high-level entry point for embedding the walkout
// engine. It wraps the submission orchestrator and the form session
// manager behind one constructor.
type Service struct {
	store        ports.WalkoutStore
	appointments ports.AppointmentSource
	registry     *fields.Registry
	metrics      *observability.Metrics
	logger       *slog.Logger

	engine   *runtime.Engine
	sessions *session.Manager

	engineOpts  []runtime.Option
	sessionOpts []session.Option
}

// Option configures the Service.
type Option func(*Service)

// WithStore injects a persistence backend. The default is in-memory.
func WithStore(store ports.WalkoutStore) Option {
	return func(s *Service) { s.store = store }
}

// WithAppointments injects the appointment source the engine verifies
// submissions against.
func WithAppointments(src ports.AppointmentSource) Option {
	return func(s *Service) { s.appointments = src }
}

// WithRegistry injects the field definition registry. The default is
// the stock option sets.
func WithRegistry(reg *fields.Registry) Option {
	return func(s *Service) { s.registry = reg }
}

// WithLogger sets the structured logger shared by the engine and the
// session manager.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithMetrics attaches a metrics sink.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithImageStore enables check-image presence verification.
func WithImageStore(images ports.ImageStore) Option {
	return func(s *Service) {
		s.engineOpts = append(s.engineOpts, runtime.WithImageStore(images))
	}
}

// WithClock injects a deterministic time source for tests.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		s.engineOpts = append(s.engineOpts, runtime.WithClock(clock))
		s.sessionOpts = append(s.sessionOpts, session.WithClock(clock))
	}
}

// WithDistributedLocker guards form sessions with a cross-process
// lock, for deployments running more than one instance.
func WithDistributedLocker(locker ports.DistributedLocker) Option {
	return func(s *Service) {
		s.sessionOpts = append(s.sessionOpts, session.WithLocker(locker))
	}
}

// New wires a walkout service. With no options everything runs in
// memory, which is what the demo mode and most tests want.
func New(opts ...Option) (*Service, error) {
	s := &Service{}
	for _, opt := range opts {
		opt(s)
	}

	if s.store == nil {
		s.store = memory.NewStore()
	}
	if s.appointments == nil {
		s.appointments = memory.NewAppointments()
	}
	if s.registry == nil {
		s.registry = fields.Default()
	}
	if s.logger == nil {
		s.logger = logging.NewNop()
	}

	engineOpts := append([]runtime.Option{runtime.WithLogger(s.logger)}, s.engineOpts...)
	if s.metrics != nil {
		engineOpts = append(engineOpts, runtime.WithMetrics(s.metrics))
	}
	s.engine = runtime.NewEngine(s.store, s.appointments, s.registry, engineOpts...)

	sessionOpts := append([]session.Option{session.WithLogger(s.logger)}, s.sessionOpts...)
	s.sessions = session.NewManager(sessionOpts...)

	return s, nil
}

// Submit runs a section submission. It returns either a result or a
// pending confirmation, never both.
func (s *Service) Submit(ctx context.Context, in Submission) (*Result, *PendingConfirmation, error) {
	return s.engine.BeginSubmission(ctx, in)
}

// Resume answers a pending confirmation's question and completes the
// suspended submission.
func (s *Service) Resume(ctx context.Context, pendingID string, answer domain.YesNo) (*Result, error) {
	return s.engine.ResumeSubmission(ctx, pendingID, answer)
}

// Cancel discards a pending confirmation with no persisted effect.
func (s *Service) Cancel(pendingID string) error {
	return s.engine.CancelSubmission(pendingID)
}

// Walkout reads the walkout attached to an appointment.
func (s *Service) Walkout(ctx context.Context, appointmentID string) (*domain.Walkout, error) {
	return s.engine.Walkout(ctx, appointmentID)
}

// Engine exposes the underlying orchestrator for transport adapters.
func (s *Service) Engine() *runtime.Engine { return s.engine }

// Sessions exposes the form session manager.
func (s *Service) Sessions() *session.Manager { return s.sessions }

// Registry exposes the field definition registry.
func (s *Service) Registry() *fields.Registry { return s.registry }

// Close releases resources held by the configured backends.
func (s *Service) Close() error {
	if closer, ok := s.store.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
