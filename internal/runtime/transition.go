package runtime

import (
	"time"

	"github.com/claritydental/walkout/pkg/domain"
	"github.com/claritydental/walkout/pkg/fields"
)

// TransitionResult is the lifecycle outcome of one section submission.
type TransitionResult struct {
	Status          domain.Status
	Owner           domain.Owner
	OnHoldAddressed domain.YesNo
	OnHoldReasons   []int
}

// Transition computes the walkout's next status and owner from the
// just-submitted section. It is evaluated only after validation has
// passed. prev is nil for the very first office submission;
// confirmation carries the escalation dialog answer and is unset when
// the dialog was not shown.
func Transition(
	section domain.Section,
	f domain.FieldSet,
	prev *domain.Walkout,
	appt *domain.Appointment,
	now time.Time,
	confirmation domain.YesNo,
	reg *fields.Registry,
) TransitionResult {
	switch section {
	case domain.SectionOffice:
		return transitionOffice(f, prev, confirmation)
	case domain.SectionLC3:
		return transitionLC3(f, prev, appt, now, confirmation, reg)
	default:
		return carryOver(prev)
	}
}

func transitionOffice(f domain.FieldSet, prev *domain.Walkout, confirmation domain.YesNo) TransitionResult {
	if prev != nil && prev.Status.OnHold() {
		res := carryOver(prev)
		switch confirmation {
		case domain.Yes:
			// The office claims its hold reasons are resolved: the
			// record moves forward one step and stays on hold with the
			// next party.
			switch prev.Owner {
			case domain.OwnerOffice:
				res.Owner = domain.OwnerLC3
			case domain.OwnerIVTeamOffice:
				res.Owner = domain.OwnerIVTeam
			}
			if s, ok := res.Owner.OnHoldStatus(); ok {
				res.Status = s
			}
			res.OnHoldAddressed = domain.Yes
		case domain.No:
			res.OnHoldAddressed = domain.No
		}
		return res
	}

	if f.YesNo(domain.FieldPatientPresent) == domain.No {
		return TransitionResult{
			Status: domain.StatusNoShowCancel,
			Owner:  domain.OwnerNoShowCancel,
		}
	}

	if f.YesNo(domain.FieldZeroProduction) == domain.Yes {
		return TransitionResult{
			Status: domain.StatusCompletedByOffice,
			Owner:  domain.OwnerCompleted,
		}
	}

	return TransitionResult{
		Status: domain.StatusNotStarted,
		Owner:  domain.OwnerLC3,
	}
}

func transitionLC3(
	f domain.FieldSet,
	prev *domain.Walkout,
	appt *domain.Appointment,
	now time.Time,
	confirmation domain.YesNo,
	reg *fields.Registry,
) TransitionResult {
	if f.YesNo(domain.FieldWalkoutOnHold) == domain.Yes {
		reasons := f.Options(domain.FieldOnHoldReasons)
		ivTeam, office := reg.PartitionReasons(reasons)

		var owner domain.Owner
		switch {
		case len(ivTeam) > 0 && len(office) > 0:
			owner = domain.OwnerIVTeamOffice
		case len(ivTeam) > 0:
			owner = domain.OwnerIVTeam
		default:
			owner = domain.OwnerOffice
		}
		status, _ := owner.OnHoldStatus()

		addressed := domain.No
		if confirmation != domain.YesNoUnset {
			addressed = confirmation
		}

		return TransitionResult{
			Status:          status,
			Owner:           owner,
			OnHoldAddressed: addressed,
			OnHoldReasons:   reasons,
		}
	}

	// Completing: the calendar day of service crossed with the
	// deficiency answer selects one of four labels. onHoldAddressed is
	// cleared for a completed record.
	sameDay := appt != nil && appt.SameServiceDay(now)
	deficiency := f.YesNo(domain.FieldCompletingWithDeficiency) == domain.Yes

	var status domain.Status
	switch {
	case sameDay && !deficiency:
		status = domain.StatusCompletedSameDay
	case sameDay && deficiency:
		status = domain.StatusCompletedSameDayDeficiency
	case !sameDay && !deficiency:
		status = domain.StatusCompletedWithDelay
	default:
		status = domain.StatusCompletedDelayDeficiency
	}

	return TransitionResult{
		Status: status,
		Owner:  domain.OwnerCompleted,
	}
}

// carryOver keeps the lifecycle untouched; used by the audit section
// and by office edits to a record that is on hold but not being
// escalated.
func carryOver(prev *domain.Walkout) TransitionResult {
	if prev == nil {
		return TransitionResult{Status: domain.StatusNotStarted, Owner: domain.OwnerLC3}
	}
	return TransitionResult{
		Status:          prev.Status,
		Owner:           prev.Owner,
		OnHoldAddressed: prev.OnHoldAddressed,
		OnHoldReasons:   append([]int(nil), prev.OnHoldReasons...),
	}
}
