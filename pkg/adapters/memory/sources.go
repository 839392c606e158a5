package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/claritydental/walkout/pkg/domain"
	"github.com/claritydental/walkout/pkg/fields"
)

// Appointments implements ports.AppointmentSource over a fixed set.
type Appointments struct {
	mu   sync.RWMutex
	byID map[string]*domain.Appointment
}

// NewAppointments creates a source seeded with the given appointments.
func NewAppointments(appts ...*domain.Appointment) *Appointments {
	s := &Appointments{byID: make(map[string]*domain.Appointment, len(appts))}
	for _, a := range appts {
		s.byID[a.ID] = a
	}
	return s
}

// Add registers a further appointment.
func (s *Appointments) Add(a *domain.Appointment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[a.ID] = a
}

// Get returns the appointment or domain.ErrAppointmentNotFound.
func (s *Appointments) Get(ctx context.Context, id string) (*domain.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrAppointmentNotFound
	}
	cp := *a
	return &cp, nil
}

// FieldDefinitions implements ports.FieldDefinitionSource over static
// option sets.
type FieldDefinitions struct {
	sets []fields.OptionSet
}

// NewFieldDefinitions creates a source over the given sets; with none
// given it serves the stock definitions.
func NewFieldDefinitions(sets ...fields.OptionSet) *FieldDefinitions {
	if len(sets) == 0 {
		sets = fields.DefaultSets()
	}
	return &FieldDefinitions{sets: sets}
}

// List returns the option sets, filtering inactive options when
// activeOnly is set.
func (s *FieldDefinitions) List(ctx context.Context, activeOnly bool) ([]fields.OptionSet, error) {
	out := make([]fields.OptionSet, 0, len(s.sets))
	for _, set := range s.sets {
		if !activeOnly {
			out = append(out, set)
			continue
		}
		filtered := set
		filtered.Options = nil
		for _, opt := range set.Options {
			if opt.IsActive {
				filtered.Options = append(filtered.Options, opt)
			}
		}
		out = append(out, filtered)
	}
	return out, nil
}

// Images implements ports.ImageStore over an in-memory id set.
type Images struct {
	mu  sync.RWMutex
	ids map[string]bool
}

// NewImages creates an image store seeded with the given identifiers.
func NewImages(ids ...string) *Images {
	s := &Images{ids: make(map[string]bool, len(ids))}
	for _, id := range ids {
		s.ids[id] = true
	}
	return s
}

// Put registers an image identifier.
func (s *Images) Put(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids[id] = true
}

// Exists reports presence of an image.
func (s *Images) Exists(ctx context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ids[id], nil
}

// RuleEngine is a canned ports.RuleEngineClient for demo mode: it
// returns the configured messages for any query.
type RuleEngine struct {
	Messages []domain.RuleMessage
}

// Query returns the canned messages.
func (r *RuleEngine) Query(ctx context.Context, patientID, uniqueID, office string) ([]domain.RuleMessage, error) {
	out := make([]domain.RuleMessage, len(r.Messages))
	copy(out, r.Messages)
	return out, nil
}

// NoteAnalyzer is a heuristic ports.NoteAnalyzer for demo mode: a
// finding is present when the note text mentions it. Real deployments
// call the analysis service over HTTP.
type NoteAnalyzer struct{}

// Analyze scans both note texts for the tracked markers.
func (NoteAnalyzer) Analyze(ctx context.Context, providerText, hygienistText string) (domain.NoteFindings, error) {
	scan := func(text string) (tooth, name, procedure, surgical bool) {
		lower := strings.ToLower(text)
		return strings.Contains(lower, "tooth"),
			strings.Contains(lower, "dr."),
			strings.Contains(lower, "procedure"),
			strings.Contains(lower, "surgical")
	}
	var f domain.NoteFindings
	f.ProviderToothNumber, f.ProviderName, f.ProviderProcedure, f.ProviderSurgical = scan(providerText)
	f.HygienistToothNumber, f.HygienistName, f.HygienistProcedure, f.HygienistSurgical = scan(hygienistText)
	return f, nil
}
