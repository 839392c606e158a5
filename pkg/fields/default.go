package fields

import "github.com/claritydental/walkout/pkg/domain"

// Default returns a registry built from the stock option sets. Used by
// the CLI, the memory adapter and tests; deployments normally load
// definitions from a FieldDefinitionSource instead.
//
// The on-hold reason identities 13 and 142 are the two reserved
// insurance-verification codes; their names carry the prefix the
// binding resolution keys on.
func Default() *Registry {
	r, err := New(DefaultSets())
	if err != nil {
		// The stock sets are compiled in; failing to resolve them is a
		// programming error, not a runtime condition.
		panic(err)
	}
	return r
}

// DefaultSets returns the stock option set definitions.
func DefaultSets() []OptionSet {
	return []OptionSet{
		{
			SetID:  1,
			Name:   "Payment Mode",
			UsedIn: []domain.FieldID{domain.FieldPrimaryPaymentMode, domain.FieldSecondaryPaymentMode},
			Options: []Option{
				{ID: 1, Name: "Cash", IsActive: true, Visible: true},
				{ID: 2, Name: "Credit Card", IsActive: true, Visible: true},
				{ID: 3, Name: "Personal Check", IsActive: true, Visible: true},
				{ID: 4, Name: "Care Credit", IsActive: true, Visible: true},
				{ID: 5, Name: "Money Order", IsActive: true, Visible: true},
			},
		},
		{
			SetID:  2,
			Name:   "Crown Paid On",
			UsedIn: []domain.FieldID{domain.FieldCrownPaidOn},
			Options: []Option{
				{ID: 21, Name: "Preparation", IsActive: true, Visible: true},
				{ID: 22, Name: "Delivery", IsActive: true, Visible: true},
				{ID: 23, Name: "Split", IsActive: true, Visible: true},
			},
		},
		{
			SetID:  3,
			Name:   "On Hold Reason",
			UsedIn: []domain.FieldID{domain.FieldOnHoldReasons},
			Options: []Option{
				{ID: 11, Name: "Missing X-Ray", IsActive: true, Visible: true},
				{ID: 12, Name: "Missing Signed Treatment Plan", IsActive: true, Visible: true},
				{ID: 13, Name: "Insurance Verification Pending", IsActive: true, Visible: true},
				{ID: 14, Name: "Fee Schedule Mismatch", IsActive: true, Visible: true},
				{ID: 15, Name: "Provider Notes Incomplete", IsActive: true, Visible: true},
				{ID: 141, Name: "Refund Pending", IsActive: true, Visible: true},
				{ID: 142, Name: "Insurance Verification Missing Documents", IsActive: true, Visible: true},
			},
		},
		{
			SetID:  4,
			Name:   "Production Difference Reason",
			UsedIn: []domain.FieldID{domain.FieldTotalProductionDiffReason, domain.FieldEstInsuranceDiffReason},
			Options: []Option{
				{ID: 31, Name: "Procedure Added After Walkout", IsActive: true, Visible: true},
				{ID: 32, Name: "Procedure Removed After Walkout", IsActive: true, Visible: true},
				{ID: 33, Name: "Fee Correction", IsActive: true, Visible: true},
				{ID: 34, Name: "Insurance Estimate Adjusted", IsActive: true, Visible: true},
				{ID: 35, Name: "Posting Error", IsActive: true, Visible: true},
			},
		},
	}
}
