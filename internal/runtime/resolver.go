package runtime

import (
	"sort"

	"github.com/claritydental/walkout/pkg/domain"
	"github.com/claritydental/walkout/pkg/fields"
)

// DependencyState is the ephemeral resolver output: which fields are
// currently shown and which of those carry a value requirement. It is
// a pure function of the section's field values and is never stored.
type DependencyState struct {
	Visible  map[domain.FieldID]bool
	Required map[domain.FieldID]bool
}

func newDependencyState() DependencyState {
	return DependencyState{
		Visible:  make(map[domain.FieldID]bool),
		Required: make(map[domain.FieldID]bool),
	}
}

func (d DependencyState) show(ids ...domain.FieldID) {
	for _, id := range ids {
		d.Visible[id] = true
	}
}

func (d DependencyState) require(ids ...domain.FieldID) {
	for _, id := range ids {
		d.Visible[id] = true
		d.Required[id] = true
	}
}

// RequiredFields returns the required set in stable order.
func (d DependencyState) RequiredFields() []domain.FieldID {
	out := make([]domain.FieldID, 0, len(d.Required))
	for id := range d.Required {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Resolve computes the dependency state for a section. It is
// idempotent and order-independent: re-evaluating after any subset of
// assignments converges to the same result as evaluating once.
func Resolve(section domain.Section, f domain.FieldSet, b fields.Bindings) DependencyState {
	dep := newDependencyState()
	switch section {
	case domain.SectionOffice:
		resolveOffice(f, b, dep)
	case domain.SectionLC3:
		resolveLC3(f, b, dep)
	case domain.SectionAudit:
		resolveAudit(f, dep)
	}
	return dep
}

func resolveOffice(f domain.FieldSet, b fields.Bindings, dep DependencyState) {
	dep.require(domain.FieldPatientPresent)

	// The patient-presence gate hides the remainder of the section.
	if f.YesNo(domain.FieldPatientPresent) != domain.Yes {
		return
	}

	dep.require(domain.FieldZeroProduction)

	// A confirmed zero-production walkout has no patient portion and
	// no rule-engine check. The secondary confirmation before storing
	// Yes here is a caller obligation.
	if f.YesNo(domain.FieldZeroProduction) == domain.Yes {
		return
	}

	dep.require(
		domain.FieldPrimaryPaymentMode,
		domain.FieldPrimaryAmount,
		domain.FieldExpectedAmount,
		domain.FieldTotalProductionOffice,
		domain.FieldEstInsuranceOffice,
		domain.FieldPPCollectedOffice,
	)
	dep.show(
		domain.FieldSecondaryPaymentMode,
		domain.FieldSecondaryAmount,
		domain.FieldCollectedAmount,
		domain.FieldCollectionDifference,
		domain.FieldExpectedPPOffice,
		domain.FieldPPDifferenceOffice,
	)

	// A chosen secondary mode makes its amount mandatory.
	if _, ok := f.Option(domain.FieldSecondaryPaymentMode); ok {
		dep.require(domain.FieldSecondaryAmount)
	}

	// Personal check in either payment slot demands the 4-digit check
	// reference and the check image for both.
	primary, _ := f.Option(domain.FieldPrimaryPaymentMode)
	secondary, _ := f.Option(domain.FieldSecondaryPaymentMode)
	if primary == b.PersonalCheck || secondary == b.PersonalCheck {
		dep.require(domain.FieldCheckReference, domain.FieldCheckImageID)
	}

	// A non-zero patient portion difference needs a signed NVD.
	if diff, ok := f.Number(domain.FieldPPDifferenceOffice); ok && diff != 0 {
		dep.require(domain.FieldSignedNVDForDifference)
	}

	dep.require(domain.FieldRuleEngineUniqueID, domain.FieldCheckedByAI)
	dep.show(domain.FieldProviderNotes, domain.FieldHygienistNotes)
}

func resolveLC3(f domain.FieldSet, b fields.Bindings, dep DependencyState) {
	dep.require(
		domain.FieldTotalProductionLC3,
		domain.FieldEstInsuranceLC3,
		domain.FieldContainsCrownDentureImplant,
		domain.FieldWalkoutOnHold,
	)
	dep.show(
		domain.FieldExpectedPPLC3,
		domain.FieldTotalProductionDifference,
		domain.FieldEstInsuranceDifference,
		domain.FieldExpectedPPDifference,
		domain.FieldPPDifferenceLC3,
	)

	// The two production differences are independent triggers.
	if tpd, ok := f.Number(domain.FieldTotalProductionDifference); ok && tpd != 0 {
		dep.require(domain.FieldTotalProductionDiffReason, domain.FieldTotalProductionDiffExplanation)
	}
	if eid, ok := f.Number(domain.FieldEstInsuranceDifference); ok && eid != 0 {
		dep.require(domain.FieldEstInsuranceDiffReason, domain.FieldEstInsuranceDiffExplanation)
	}

	// Crown chain: contains -> paid on -> (delivery only) delivered as
	// per notes. Strictly downstream; clearing flows through
	// ClearHidden, never upward.
	if f.YesNo(domain.FieldContainsCrownDentureImplant) == domain.Yes {
		dep.require(domain.FieldCrownPaidOn)
		if paidOn, ok := f.Option(domain.FieldCrownPaidOn); ok && paidOn == b.CrownPaidOnDelivery {
			dep.require(domain.FieldDeliveredAsPerNotes)
		}
	}

	// Mutually exclusive branches of the on-hold gate.
	switch f.YesNo(domain.FieldWalkoutOnHold) {
	case domain.Yes:
		dep.require(domain.FieldOnHoldReasons, domain.FieldOnHoldNotes)
	case domain.No:
		dep.require(domain.FieldCompletingWithDeficiency)
	}
}

func resolveAudit(f domain.FieldSet, dep DependencyState) {
	dep.show(domain.FieldDiscrepancyFound, domain.FieldDiscrepancyFixedByLC3)

	if f.YesNo(domain.FieldDiscrepancyFound) == domain.Yes {
		dep.require(domain.FieldDiscrepancyRemarks)
	}
	if f.YesNo(domain.FieldDiscrepancyFixedByLC3) == domain.Yes {
		dep.require(domain.FieldResolutionRemarks)
	}
}

// sectionFields lists every field belonging to a section, used by
// ClearHidden to wipe values whose gates have closed.
var sectionFields = map[domain.Section][]domain.FieldID{
	domain.SectionOffice: {
		domain.FieldPatientPresent, domain.FieldZeroProduction,
		domain.FieldPrimaryPaymentMode, domain.FieldSecondaryPaymentMode,
		domain.FieldPrimaryAmount, domain.FieldSecondaryAmount,
		domain.FieldCollectedAmount, domain.FieldExpectedAmount,
		domain.FieldCollectionDifference,
		domain.FieldCheckReference, domain.FieldCheckImageID,
		domain.FieldTotalProductionOffice, domain.FieldEstInsuranceOffice,
		domain.FieldExpectedPPOffice, domain.FieldPPCollectedOffice,
		domain.FieldPPDifferenceOffice, domain.FieldSignedNVDForDifference,
		domain.FieldRuleEngineUniqueID, domain.FieldProviderNotes,
		domain.FieldHygienistNotes, domain.FieldCheckedByAI,
	},
	domain.SectionLC3: {
		domain.FieldTotalProductionLC3, domain.FieldEstInsuranceLC3,
		domain.FieldExpectedPPLC3, domain.FieldTotalProductionDifference,
		domain.FieldEstInsuranceDifference, domain.FieldExpectedPPDifference,
		domain.FieldPPDifferenceLC3,
		domain.FieldTotalProductionDiffReason, domain.FieldTotalProductionDiffExplanation,
		domain.FieldEstInsuranceDiffReason, domain.FieldEstInsuranceDiffExplanation,
		domain.FieldContainsCrownDentureImplant, domain.FieldCrownPaidOn,
		domain.FieldDeliveredAsPerNotes,
		domain.FieldWalkoutOnHold, domain.FieldOnHoldReasons,
		domain.FieldOnHoldNotes, domain.FieldCompletingWithDeficiency,
	},
	domain.SectionAudit: {
		domain.FieldDiscrepancyFound, domain.FieldDiscrepancyRemarks,
		domain.FieldDiscrepancyFixedByLC3, domain.FieldResolutionRemarks,
	},
}

// Normalize brings a section's field set to its canonical form:
// derived fields recomputed and every value whose gate is closed
// cleared. The loop runs to a fixpoint because clearing an upstream
// answer can close further gates downstream (the crown chain is the
// deepest at three levels).
func Normalize(section domain.Section, f, office domain.FieldSet, b fields.Bindings) (domain.FieldSet, DependencyState) {
	var dep DependencyState
	for range 4 {
		Recalculate(section, f, office)
		dep = Resolve(section, f, b)
		if !clearHidden(section, f, dep) {
			break
		}
	}
	return f, dep
}

// clearHidden removes values for fields the resolver no longer shows.
// Returns true when anything was cleared.
func clearHidden(section domain.Section, f domain.FieldSet, dep DependencyState) bool {
	changed := false
	for _, id := range sectionFields[section] {
		if dep.Visible[id] {
			continue
		}
		if _, present := f[id]; present {
			f.Clear(id)
			changed = true
		}
	}
	return changed
}
