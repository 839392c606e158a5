package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/claritydental/walkout/internal/logging"
	"github.com/claritydental/walkout/pkg/domain"
	"github.com/claritydental/walkout/pkg/fields"
	"github.com/claritydental/walkout/pkg/observability"
	"github.com/claritydental/walkout/pkg/ports"
)

// SubmissionInput is one section submission as handed to the engine.
type SubmissionInput struct {
	AppointmentID string          `json:"appointmentId"`
	Section       domain.Section  `json:"section"`
	Fields        domain.FieldSet `json:"fields"`
	Remarks       string          `json:"remarks,omitempty"`
	Note          string          `json:"note,omitempty"`
	SubmittedBy   string          `json:"submittedBy,omitempty"`

	// LastFetchedLookupKey is the uniqueID the caller's cached
	// rule-engine results belong to; drives staleness detection.
	LastFetchedLookupKey string `json:"lastFetchedLookupKey,omitempty"`
}

// SubmissionResult is the outcome of a persisted submission.
type SubmissionResult struct {
	Walkout *domain.Walkout `json:"walkout"`
	Created bool            `json:"created"`
}

// PendingConfirmation is a submission suspended by the escalation
// protocol. It holds everything needed to resume at the transition
// step once the single boolean is answered. Cancelling discards it
// with no persisted side effect.
type PendingConfirmation struct {
	ID     string             `json:"id"`
	Prompt ConfirmationPrompt `json:"prompt"`

	input  SubmissionInput
	fields domain.FieldSet
	appt   *domain.Appointment
	prev   *domain.Walkout
}

// Engine is the submission orchestrator. It sequences normalization,
// validation, the escalation check, the status transition and the
// persistence call, and guarantees only one in-flight submission per
// appointment section.
type Engine struct {
	store        ports.WalkoutStore
	appointments ports.AppointmentSource
	registry     *fields.Registry
	images       ports.ImageStore
	metrics      *observability.Metrics
	clock        func() time.Time
	logger       *slog.Logger

	mu       sync.Mutex
	inflight map[string]bool
	pending  map[string]*PendingConfirmation
}

// Option configures the Engine.
type Option func(*Engine)

// WithClock injects a deterministic time source for tests.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) { e.clock = clock }
}

// WithLogger attaches a logger for submission events.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithImageStore enables presence verification of check images.
func WithImageStore(images ports.ImageStore) Option {
	return func(e *Engine) { e.images = images }
}

// WithMetrics attaches submission counters.
func WithMetrics(m *observability.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// NewEngine wires the orchestrator with its collaborators.
func NewEngine(store ports.WalkoutStore, appointments ports.AppointmentSource, registry *fields.Registry, opts ...Option) *Engine {
	e := &Engine{
		store:        store,
		appointments: appointments,
		registry:     registry,
		clock:        time.Now,
		logger:       logging.NewNop(),
		inflight:     make(map[string]bool),
		pending:      make(map[string]*PendingConfirmation),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Registry exposes the field definition registry the engine resolves
// against, for presentation layers.
func (e *Engine) Registry() *fields.Registry { return e.registry }

// Walkout reads the walkout attached to an appointment.
func (e *Engine) Walkout(ctx context.Context, appointmentID string) (*domain.Walkout, error) {
	return e.store.GetByAppointment(ctx, appointmentID)
}

func inflightKey(appointmentID string, section domain.Section) string {
	return appointmentID + "/" + string(section)
}

func (e *Engine) acquire(key string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.inflight[key] {
		return false
	}
	e.inflight[key] = true
	return true
}

func (e *Engine) release(key string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.inflight, key)
}

// BeginSubmission runs steps one through three of a submission. It
// returns either a result (the submission went through) or a pending
// confirmation (the escalation protocol needs an answer); never both.
// A validation failure is returned as *domain.ValidationError with no
// persistence call made.
func (e *Engine) BeginSubmission(ctx context.Context, in SubmissionInput) (*SubmissionResult, *PendingConfirmation, error) {
	if !in.Section.Valid() {
		return nil, nil, fmt.Errorf("unknown section %q", in.Section)
	}

	key := inflightKey(in.AppointmentID, in.Section)
	if !e.acquire(key) {
		return nil, nil, domain.ErrSubmissionInFlight
	}
	held := false
	defer func() {
		if !held {
			e.release(key)
		}
	}()

	appt, err := e.appointments.Get(ctx, in.AppointmentID)
	if err != nil {
		return nil, nil, fmt.Errorf("load appointment %s: %w", in.AppointmentID, err)
	}

	prev, err := e.store.GetByAppointment(ctx, in.AppointmentID)
	if err != nil {
		if !errors.Is(err, domain.ErrWalkoutNotFound) {
			return nil, nil, fmt.Errorf("load walkout for %s: %w", in.AppointmentID, err)
		}
		prev = nil
	}
	if prev == nil && in.Section != domain.SectionOffice {
		return nil, nil, fmt.Errorf("%s submission for appointment %s: %w", in.Section, in.AppointmentID, domain.ErrWalkoutNotFound)
	}

	var officeFields domain.FieldSet
	if prev != nil && prev.Office != nil {
		officeFields = prev.Office.Fields
	}

	f, dep := Normalize(in.Section, in.Fields.Clone(), officeFields, e.registry.Bindings())

	pre := Prereqs{LastFetchedLookupKey: in.LastFetchedLookupKey}
	if e.images != nil && dep.Required[domain.FieldCheckImageID] && !f.Empty(domain.FieldCheckImageID) {
		exists, err := e.images.Exists(ctx, f.String(domain.FieldCheckImageID))
		if err != nil {
			return nil, nil, &domain.NetworkError{Op: "verify check image", Err: err}
		}
		pre.CheckImageVerified = &exists
	}

	if errs := Validate(in.Section, f, dep, pre); len(errs) > 0 {
		e.count(in.Section, "validation_failed")
		return nil, nil, &domain.ValidationError{Section: in.Section, Fields: errs}
	}

	if prompt := escalationPrompt(in.Section, f, prev); prompt != nil {
		p := &PendingConfirmation{
			ID:     uuid.NewString(),
			Prompt: *prompt,
			input:  in,
			fields: f,
			appt:   appt,
			prev:   prev,
		}
		e.mu.Lock()
		e.pending[p.ID] = p
		e.mu.Unlock()
		held = true
		e.count(in.Section, "suspended")
		e.logger.Info("submission suspended for confirmation",
			"appointment", in.AppointmentID, "section", in.Section, "pending", p.ID)
		return nil, p, nil
	}

	res, err := e.finalize(ctx, in, f, appt, prev, domain.YesNoUnset)
	return res, nil, err
}

// ResumeSubmission completes a suspended submission with the dialog
// answer. The answer must be Yes or No; resuming an unknown or already
// settled pending returns ErrSubmissionCancelled.
func (e *Engine) ResumeSubmission(ctx context.Context, pendingID string, answer domain.YesNo) (*SubmissionResult, error) {
	if answer != domain.Yes && answer != domain.No {
		return nil, fmt.Errorf("confirmation answer must be Yes or No, got %q", answer)
	}

	e.mu.Lock()
	p, ok := e.pending[pendingID]
	if ok {
		delete(e.pending, pendingID)
	}
	e.mu.Unlock()
	if !ok {
		return nil, domain.ErrSubmissionCancelled
	}
	defer e.release(inflightKey(p.input.AppointmentID, p.input.Section))

	return e.finalize(ctx, p.input, p.fields, p.appt, p.prev, answer)
}

// CancelSubmission aborts a suspended submission. Nothing was
// persisted, so cancellation has zero state change.
func (e *Engine) CancelSubmission(pendingID string) error {
	e.mu.Lock()
	p, ok := e.pending[pendingID]
	if ok {
		delete(e.pending, pendingID)
	}
	e.mu.Unlock()
	if !ok {
		return domain.ErrSubmissionCancelled
	}
	e.release(inflightKey(p.input.AppointmentID, p.input.Section))
	e.count(p.input.Section, "cancelled")
	e.logger.Info("submission cancelled", "appointment", p.input.AppointmentID, "section", p.input.Section)
	return nil
}

// finalize runs the transition and the persistence call. All failures
// before the store call leave the aggregate untouched; a store failure
// is surfaced for manual retry rather than retried silently.
func (e *Engine) finalize(
	ctx context.Context,
	in SubmissionInput,
	f domain.FieldSet,
	appt *domain.Appointment,
	prev *domain.Walkout,
	confirmation domain.YesNo,
) (*SubmissionResult, error) {
	now := e.clock().UTC()
	tr := Transition(in.Section, f, prev, appt, now, confirmation, e.registry)

	w := prev.Clone()
	created := false
	if w == nil {
		created = true
		w = &domain.Walkout{
			ID:            uuid.NewString(),
			AppointmentID: in.AppointmentID,
			CreatedAt:     now,
		}
	}

	section := w.Section(in.Section)
	if section == nil {
		section = &domain.SectionData{}
	}
	section.Fields = f
	section.Remarks = in.Remarks
	section.SubmittedAt = &now
	section.SubmittedBy = in.SubmittedBy
	if in.Note != "" {
		section.Notes = append(section.Notes, domain.Note{
			Author:    in.SubmittedBy,
			Body:      in.Note,
			CreatedAt: now,
		})
	}
	w.SetSection(in.Section, section)

	w.Status = tr.Status
	w.Owner = tr.Owner
	w.OnHoldAddressed = tr.OnHoldAddressed
	w.OnHoldReasons = tr.OnHoldReasons
	if !w.Status.OnHold() {
		w.OnHoldReasons = nil
	}
	w.UpdatedAt = now

	if created {
		err := e.store.Create(ctx, w)
		var conflict *domain.ConflictError
		if errors.As(err, &conflict) {
			// Another writer created the walkout first. Resolve to an
			// update against the existing identity instead of dropping
			// the submission.
			existing, getErr := e.store.Get(ctx, conflict.WalkoutID)
			if getErr != nil {
				return nil, fmt.Errorf("resolve submission conflict: %w", getErr)
			}
			w.ID = existing.ID
			w.CreatedAt = existing.CreatedAt
			created = false
			e.logger.Warn("duplicate create resolved to update",
				"appointment", in.AppointmentID, "walkout", w.ID)
			err = e.store.Update(ctx, w)
		}
		if err != nil {
			e.count(in.Section, "store_error")
			return nil, err
		}
	} else {
		if err := e.store.Update(ctx, w); err != nil {
			e.count(in.Section, "store_error")
			return nil, err
		}
	}

	e.count(in.Section, "submitted")
	e.logger.Info("walkout submission persisted",
		"appointment", in.AppointmentID, "section", in.Section,
		"status", w.Status, "owner", w.Owner, "created", created)

	return &SubmissionResult{Walkout: w, Created: created}, nil
}

func (e *Engine) count(section domain.Section, outcome string) {
	if e.metrics != nil {
		e.metrics.CountSubmission(string(section), outcome)
	}
}
