package middleware

import (
	"context"
	"regexp"

	"github.com/claritydental/walkout/pkg/domain"
	"github.com/claritydental/walkout/pkg/ports"
)

// DefaultPIIPatterns match the identifiers that must never reach the
// store in free text: social security numbers and payment card
// numbers. Remarks and note bodies are the fields patients' data leaks
// into in practice.
var DefaultPIIPatterns = []string{
	`\b\d{3}-\d{2}-\d{4}\b`,
	`\b(?:\d[ -]?){13,16}\b`,
}

const piiMask = "***"

type piiMiddleware struct {
	next     ports.WalkoutStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks pattern matches in
// the free-text fields of every persisted walkout. Reads pass through
// untouched; masking is irreversible by design of the store contents.
func NewPIIMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.WalkoutStore) ports.WalkoutStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}
}

func (m *piiMiddleware) Create(ctx context.Context, w *domain.Walkout) error {
	return m.next.Create(ctx, m.scrub(w))
}

func (m *piiMiddleware) Update(ctx context.Context, w *domain.Walkout) error {
	return m.next.Update(ctx, m.scrub(w))
}

func (m *piiMiddleware) Get(ctx context.Context, id string) (*domain.Walkout, error) {
	return m.next.Get(ctx, id)
}

func (m *piiMiddleware) GetByAppointment(ctx context.Context, appointmentID string) (*domain.Walkout, error) {
	return m.next.GetByAppointment(ctx, appointmentID)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func (m *piiMiddleware) Delete(ctx context.Context, id string) error {
	return m.next.Delete(ctx, id)
}

// scrub works on a clone so the engine's in-memory aggregate keeps the
// text the caller submitted.
func (m *piiMiddleware) scrub(w *domain.Walkout) *domain.Walkout {
	cloned := w.Clone()
	for _, section := range []*domain.SectionData{cloned.Office, cloned.LC3, cloned.Audit} {
		if section == nil {
			continue
		}
		section.Remarks = m.mask(section.Remarks)
		for i := range section.Notes {
			section.Notes[i].Body = m.mask(section.Notes[i].Body)
		}
		for id, v := range section.Fields {
			if s, ok := v.(string); ok {
				section.Fields[id] = m.mask(s)
			}
		}
	}
	return cloned
}

func (m *piiMiddleware) mask(text string) string {
	for _, p := range m.patterns {
		text = p.ReplaceAllString(text, piiMask)
	}
	return text
}
