package runtime

import "github.com/claritydental/walkout/pkg/domain"

// ConfirmationPrompt describes the single boolean question the
// escalation protocol interposes before an on-hold record may advance.
type ConfirmationPrompt struct {
	// Question is the text shown to the submitter.
	Question string `json:"question"`

	// Prefill pre-answers the dialog with the opposite party's prior
	// claim where the original workflow did so. Unset means the dialog
	// opens unanswered. The asymmetry between the LC3 paths is
	// deliberate and preserved.
	Prefill domain.YesNo `json:"prefill,omitempty"`
}

const (
	officeQuestion = "Have the on-hold issues for this walkout been addressed?"
	lc3Question    = "The office has marked the on-hold issues as addressed. Confirm?"
	reholdQuestion = "This walkout was marked addressed but is being placed on hold again. Confirm?"
)

// escalationPrompt decides whether a submission against prev must
// suspend for a confirmation. It returns nil when the submission may
// proceed directly. Completing submissions (walkoutOnHold = No) always
// bypass the dialog.
func escalationPrompt(section domain.Section, f domain.FieldSet, prev *domain.Walkout) *ConfirmationPrompt {
	if prev == nil || !prev.Status.OnHold() {
		return nil
	}

	switch section {
	case domain.SectionOffice:
		// The office resubmitting a record it holds must state whether
		// the hold reasons are resolved before any status is computed.
		holder := prev.Owner == domain.OwnerOffice || prev.Owner == domain.OwnerIVTeamOffice
		if holder && prev.OnHoldAddressed != domain.Yes {
			return &ConfirmationPrompt{Question: officeQuestion}
		}

	case domain.SectionLC3:
		if f.YesNo(domain.FieldWalkoutOnHold) == domain.No {
			return nil
		}
		if prev.OnHoldAddressed != domain.Yes {
			return nil
		}
		// The office claimed resolution: LC3 confirms the claim with a
		// pre-filled Yes. When LC3 is re-placing an addressed record on
		// hold, the re-confirmation opens unanswered.
		if prev.Owner == domain.OwnerOffice || prev.Owner == domain.OwnerIVTeamOffice {
			return &ConfirmationPrompt{Question: lc3Question, Prefill: domain.Yes}
		}
		return &ConfirmationPrompt{Question: reholdQuestion}
	}

	return nil
}
