package runtime

import "github.com/claritydental/walkout/pkg/domain"

// Recalculate recomputes the derived numeric fields of a section in
// place and returns the set. A derived field is only written when all
// of its inputs are present; manually seeded values survive otherwise.
//
// Whenever a difference recomputes to exactly zero its dependent
// reason and explanation fields are cleared, not merely hidden.
//
// For the LC3 section, office carries the office section's fields so
// the cross-section differences can be formed; it may be nil.
func Recalculate(section domain.Section, f, office domain.FieldSet) domain.FieldSet {
	switch section {
	case domain.SectionOffice:
		recalcOffice(f)
	case domain.SectionLC3:
		recalcLC3(f, office)
	}
	return f
}

func recalcOffice(f domain.FieldSet) {
	primary, hasPrimary := f.Number(domain.FieldPrimaryAmount)
	secondary, hasSecondary := f.Number(domain.FieldSecondaryAmount)
	if hasPrimary || hasSecondary {
		f[domain.FieldCollectedAmount] = primary + secondary
	} else {
		f.Clear(domain.FieldCollectedAmount)
	}

	if expected, ok := f.Number(domain.FieldExpectedAmount); ok {
		if collected, ok := f.Number(domain.FieldCollectedAmount); ok {
			f[domain.FieldCollectionDifference] = expected - collected
		}
	}

	if tp, ok := f.Number(domain.FieldTotalProductionOffice); ok {
		if ei, ok := f.Number(domain.FieldEstInsuranceOffice); ok {
			f[domain.FieldExpectedPPOffice] = tp - ei
		}
	}

	if collected, ok := f.Number(domain.FieldPPCollectedOffice); ok {
		if expected, ok := f.Number(domain.FieldExpectedPPOffice); ok {
			f[domain.FieldPPDifferenceOffice] = collected - expected
		}
	}

	if diff, ok := f.Number(domain.FieldPPDifferenceOffice); ok && diff == 0 {
		f.Clear(domain.FieldSignedNVDForDifference)
	}
}

func recalcLC3(f, office domain.FieldSet) {
	if tp, ok := f.Number(domain.FieldTotalProductionLC3); ok {
		if ei, ok := f.Number(domain.FieldEstInsuranceLC3); ok {
			f[domain.FieldExpectedPPLC3] = tp - ei
		}
	}

	if office != nil {
		if lc3, ok := f.Number(domain.FieldTotalProductionLC3); ok {
			if off, ok := office.Number(domain.FieldTotalProductionOffice); ok {
				f[domain.FieldTotalProductionDifference] = lc3 - off
			}
		}
		if lc3, ok := f.Number(domain.FieldEstInsuranceLC3); ok {
			if off, ok := office.Number(domain.FieldEstInsuranceOffice); ok {
				f[domain.FieldEstInsuranceDifference] = lc3 - off
			}
		}
		if lc3, ok := f.Number(domain.FieldExpectedPPLC3); ok {
			if off, ok := office.Number(domain.FieldExpectedPPOffice); ok {
				f[domain.FieldPPDifferenceLC3] = lc3 - off
			}
		}
	}

	if tpd, ok := f.Number(domain.FieldTotalProductionDifference); ok {
		if eid, ok := f.Number(domain.FieldEstInsuranceDifference); ok {
			f[domain.FieldExpectedPPDifference] = tpd - eid
		}
	}

	if tpd, ok := f.Number(domain.FieldTotalProductionDifference); ok && tpd == 0 {
		f.Clear(domain.FieldTotalProductionDiffReason, domain.FieldTotalProductionDiffExplanation)
	}
	if eid, ok := f.Number(domain.FieldEstInsuranceDifference); ok && eid == 0 {
		f.Clear(domain.FieldEstInsuranceDiffReason, domain.FieldEstInsuranceDiffExplanation)
	}
}
