package domain

// FieldID identifies a single input of a walkout section. The
// identifiers are stable across persistence and the HTTP surface;
// validation error maps and dependency states are keyed by them.
type FieldID string

// Office section fields.
const (
	FieldPatientPresent FieldID = "patientPresent"
	FieldZeroProduction FieldID = "zeroProduction"

	FieldPrimaryPaymentMode   FieldID = "primaryPaymentMode"
	FieldSecondaryPaymentMode FieldID = "secondaryPaymentMode"
	FieldPrimaryAmount        FieldID = "primaryAmount"
	FieldSecondaryAmount      FieldID = "secondaryAmount"
	FieldCollectedAmount      FieldID = "collectedAmount"      // derived
	FieldExpectedAmount       FieldID = "expectedAmount"
	FieldCollectionDifference FieldID = "collectionDifference" // derived

	FieldCheckReference FieldID = "checkReference"
	FieldCheckImageID   FieldID = "checkImageID"

	FieldTotalProductionOffice  FieldID = "totalProductionOffice"
	FieldEstInsuranceOffice     FieldID = "estInsuranceOffice"
	FieldExpectedPPOffice       FieldID = "expectedPPOffice" // derived
	FieldPPCollectedOffice      FieldID = "ppCollectedOffice"
	FieldPPDifferenceOffice     FieldID = "ppDifferenceOffice" // derived
	FieldSignedNVDForDifference FieldID = "signedNVDForDifference"

	FieldRuleEngineUniqueID FieldID = "ruleEngineUniqueID"
	FieldProviderNotes      FieldID = "providerNotes"
	FieldHygienistNotes     FieldID = "hygienistNotes"
	FieldCheckedByAI        FieldID = "checkedByAi"
)

// LC3 section fields.
const (
	FieldTotalProductionLC3 FieldID = "totalProductionLC3"
	FieldEstInsuranceLC3    FieldID = "estInsuranceLC3"
	FieldExpectedPPLC3      FieldID = "expectedPPLC3" // derived

	FieldTotalProductionDifference FieldID = "totalProductionDifference" // derived
	FieldEstInsuranceDifference    FieldID = "estInsuranceDifference"    // derived
	FieldExpectedPPDifference      FieldID = "expectedPPDifference"      // derived
	FieldPPDifferenceLC3           FieldID = "ppDifferenceLC3"           // derived

	FieldTotalProductionDiffReason      FieldID = "totalProductionDiffReason"
	FieldTotalProductionDiffExplanation FieldID = "totalProductionDiffExplanation"
	FieldEstInsuranceDiffReason         FieldID = "estInsuranceDiffReason"
	FieldEstInsuranceDiffExplanation    FieldID = "estInsuranceDiffExplanation"

	FieldContainsCrownDentureImplant FieldID = "containsCrownDentureImplant"
	FieldCrownPaidOn                 FieldID = "crownPaidOn"
	FieldDeliveredAsPerNotes         FieldID = "deliveredAsPerNotes"

	FieldWalkoutOnHold            FieldID = "walkoutOnHold"
	FieldOnHoldReasons            FieldID = "onHoldReasons"
	FieldOnHoldNotes              FieldID = "onHoldNotes"
	FieldCompletingWithDeficiency FieldID = "completingWithDeficiency"
)

// Audit section fields.
const (
	FieldDiscrepancyFound      FieldID = "discrepancyFound"
	FieldDiscrepancyRemarks    FieldID = "discrepancyRemarks"
	FieldDiscrepancyFixedByLC3 FieldID = "discrepancyFixedByLC3"
	FieldResolutionRemarks     FieldID = "resolutionRemarks"
)

// FieldUpdateButtonPending is the non-field validation key reported
// when rule-engine lookup results are stale relative to the current
// lookup key. It blocks submission until the caller re-fetches.
const FieldUpdateButtonPending FieldID = "updateButtonPending"

// FieldSet holds the current values of a section keyed by field.
//
// Value types are restricted to: YesNo, float64 (numeric inputs and
// derived amounts), string (free text, image and lookup identifiers),
// int (a selected option identity) and []int (a multi-select of option
// identities). Absent keys mean "never answered".
type FieldSet map[FieldID]any

// Clone returns a deep copy. Slices are copied so that downstream
// clearing never aliases the caller's data.
func (f FieldSet) Clone() FieldSet {
	out := make(FieldSet, len(f))
	for k, v := range f {
		switch t := v.(type) {
		case []int:
			cp := make([]int, len(t))
			copy(cp, t)
			out[k] = cp
		case []any:
			cp := make([]any, len(t))
			copy(cp, t)
			out[k] = cp
		default:
			out[k] = v
		}
	}
	return out
}

// YesNo returns the tri-state answer stored under id.
func (f FieldSet) YesNo(id FieldID) YesNo {
	switch v := f[id].(type) {
	case YesNo:
		return v
	case string:
		return YesNo(v)
	}
	return YesNoUnset
}

// Number returns the numeric value stored under id. ok is false when
// the field is absent or not numeric; a stored zero is a valid answer.
func (f FieldSet) Number(id FieldID) (float64, bool) {
	switch v := f[id].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}

// String returns the text value stored under id ("" when absent).
func (f FieldSet) String(id FieldID) string {
	s, _ := f[id].(string)
	return s
}

// Option returns the selected option identity stored under id.
func (f FieldSet) Option(id FieldID) (int, bool) {
	switch v := f[id].(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	}
	return 0, false
}

// Options returns the multi-select option identities stored under id.
func (f FieldSet) Options(id FieldID) []int {
	switch v := f[id].(type) {
	case []int:
		return v
	case []any:
		out := make([]int, 0, len(v))
		for _, e := range v {
			switch n := e.(type) {
			case int:
				out = append(out, n)
			case float64:
				out = append(out, int(n))
			}
		}
		return out
	}
	return nil
}

// Empty reports whether the value stored under id counts as "no
// answer" for validation: absent, empty string, empty collection, or
// an unset YesNo. Numeric zero is a valid answer and is not empty.
func (f FieldSet) Empty(id FieldID) bool {
	v, ok := f[id]
	if !ok || v == nil {
		return true
	}
	switch t := v.(type) {
	case string:
		return t == ""
	case YesNo:
		return t == YesNoUnset
	case []int:
		return len(t) == 0
	case []any:
		return len(t) == 0
	}
	return false
}

// Clear removes the stored values for the given fields. Used by the
// dependency resolver when an upstream gate obscures its dependents.
func (f FieldSet) Clear(ids ...FieldID) {
	for _, id := range ids {
		delete(f, id)
	}
}
