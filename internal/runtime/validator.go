package runtime

import (
	"regexp"

	"github.com/claritydental/walkout/pkg/domain"
)

// checkReferencePattern is the 4-digit reference written on a personal
// check.
var checkReferencePattern = regexp.MustCompile(`^\d{4}$`)

// Prereqs carries the per-session facts validation needs beyond the
// field values themselves: the lookup key the rule-engine results were
// last fetched for, and (when an image store is wired) whether the
// referenced check image actually exists.
type Prereqs struct {
	// LastFetchedLookupKey is the uniqueID the cached rule-engine
	// results belong to. Empty means nothing was fetched yet.
	LastFetchedLookupKey string

	// CheckImageVerified is nil when no external presence check ran;
	// otherwise it reports whether the referenced image exists.
	CheckImageVerified *bool
}

// Validate checks a section's fields against the resolver output. It
// never fails; it returns a possibly empty violation map. A field is
// flagged exactly when it is required and its stored value is empty;
// numeric zero is a valid answer.
func Validate(section domain.Section, f domain.FieldSet, dep DependencyState, pre Prereqs) domain.ValidationErrorMap {
	errs := make(domain.ValidationErrorMap)

	for _, id := range dep.RequiredFields() {
		if f.Empty(id) {
			errs[id] = domain.ViolationRequired
		}
	}

	if dep.Visible[domain.FieldCheckReference] {
		if ref := f.String(domain.FieldCheckReference); ref != "" && !checkReferencePattern.MatchString(ref) {
			errs[domain.FieldCheckReference] = domain.ViolationFormat
		}
	}

	if dep.Required[domain.FieldCheckImageID] && !f.Empty(domain.FieldCheckImageID) {
		if pre.CheckImageVerified != nil && !*pre.CheckImageVerified {
			errs[domain.FieldCheckImageID] = domain.ViolationImageMissing
		}
	}

	// The rule-engine results on screen must belong to the lookup key
	// being submitted; a changed key without a re-fetch blocks the
	// submission until the caller refreshes.
	if section == domain.SectionOffice && dep.Visible[domain.FieldRuleEngineUniqueID] {
		if key := f.String(domain.FieldRuleEngineUniqueID); key != "" && key != pre.LastFetchedLookupKey {
			errs[domain.FieldUpdateButtonPending] = domain.ViolationStaleLookup
		}
	}

	return errs
}
