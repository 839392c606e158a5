package domain

import "strings"

// Status is the human-readable lifecycle label of a walkout.
// The label set is closed; persistence stores the label verbatim.
type Status string

const (
	StatusNotStarted        Status = "Not Started"
	StatusNoShowCancel      Status = "No Show/Cancel"
	StatusCompletedByOffice Status = "Completed by Office"

	StatusOnHoldOffice       Status = "On Hold – Office"
	StatusOnHoldLC3          Status = "On Hold – LC3"
	StatusOnHoldIVTeam       Status = "On Hold – IV Team"
	StatusOnHoldIVTeamOffice Status = "On Hold – IV Team & Office"

	StatusCompletedSameDay           Status = "Completed – Same Day"
	StatusCompletedSameDayDeficiency Status = "Completed – Same Day with Deficiency"
	StatusCompletedWithDelay         Status = "Completed – With Delay"
	StatusCompletedDelayDeficiency   Status = "Completed – With Delay & Deficiency"
)

// OnHold reports whether the status is one of the on-hold labels.
// The onHoldReasons invariant is keyed off this predicate: reasons are
// non-empty exactly while OnHold() is true.
func (s Status) OnHold() bool {
	return strings.HasPrefix(string(s), "On Hold")
}

// Completed reports whether the walkout has reached a terminal
// completed label (either by the office or by LC3).
func (s Status) Completed() bool {
	return s == StatusCompletedByOffice || strings.HasPrefix(string(s), "Completed –")
}

// Owner identifies the party a walkout is currently pending with.
type Owner string

const (
	OwnerNone         Owner = ""
	OwnerOffice       Owner = "Office"
	OwnerLC3          Owner = "LC3"
	OwnerIVTeam       Owner = "IV Team"
	OwnerIVTeamOffice Owner = "IV Team & Office"
	OwnerCompleted    Owner = "Completed"
	OwnerNoShowCancel Owner = "No Show/Cancel"
)

// Label returns the display form used in listings ("pending with").
func (o Owner) Label() string {
	if o == OwnerLC3 {
		return "Pending with LC3"
	}
	return string(o)
}

// onHoldStatusFor maps an owner to its on-hold label.
var onHoldStatusFor = map[Owner]Status{
	OwnerOffice:       StatusOnHoldOffice,
	OwnerLC3:          StatusOnHoldLC3,
	OwnerIVTeam:       StatusOnHoldIVTeam,
	OwnerIVTeamOffice: StatusOnHoldIVTeamOffice,
}

// OnHoldStatus returns the "On Hold – <owner>" label for the owner.
// The second return is false for owners that cannot hold a record.
func (o Owner) OnHoldStatus() (Status, bool) {
	s, ok := onHoldStatusFor[o]
	return s, ok
}

// YesNo is the tri-state answer used across the walkout forms.
// The zero value means unanswered.
type YesNo string

const (
	YesNoUnset YesNo = ""
	Yes        YesNo = "Yes"
	No         YesNo = "No"
)

// Section identifies one of the three independently submitted field
// groups of a walkout.
type Section string

const (
	SectionOffice Section = "office"
	SectionLC3    Section = "lc3"
	SectionAudit  Section = "audit"
)

// Valid reports whether s names a known section.
func (s Section) Valid() bool {
	switch s {
	case SectionOffice, SectionLC3, SectionAudit:
		return true
	}
	return false
}
