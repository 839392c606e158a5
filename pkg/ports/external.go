package ports

import (
	"context"

	"github.com/claritydental/walkout/pkg/domain"
	"github.com/claritydental/walkout/pkg/fields"
)

// FieldDefinitionSource lists the option sets behind the walkout
// forms. With activeOnly set, inactive options are filtered out.
type FieldDefinitionSource interface {
	List(ctx context.Context, activeOnly bool) ([]fields.OptionSet, error)
}

// RuleEngineClient queries the external rule-engine service for
// messages attached to a patient's walkout. Results are keyed by the
// uniqueID they were fetched for; callers track that key to detect
// staleness.
type RuleEngineClient interface {
	Query(ctx context.Context, patientID, uniqueID, office string) ([]domain.RuleMessage, error)
}

// NoteAnalyzer runs the external AI analysis over the provider and
// hygienist note texts. Implementations may return
// *domain.RateLimitError when the upstream window is exhausted.
type NoteAnalyzer interface {
	Analyze(ctx context.Context, providerText, hygienistText string) (domain.NoteFindings, error)
}

// ImageStore exposes attachment presence. The engine only ever checks
// that a referenced image exists; capture and retrieval are out of
// scope.
type ImageStore interface {
	Exists(ctx context.Context, id string) (bool, error)
}
