package domain

import "time"

// Note is one entry of a section's append-only note history. Histories
// only ever grow; nothing in the engine rewrites or removes entries.
type Note struct {
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

// SectionData is the independently submitted state of one section.
type SectionData struct {
	Fields      FieldSet   `json:"fields"`
	Remarks     string     `json:"remarks,omitempty"`
	Notes       []Note     `json:"notes,omitempty"`
	SubmittedAt *time.Time `json:"submittedAt,omitempty"`
	SubmittedBy string     `json:"submittedBy,omitempty"`
}

// Clone deep-copies the section, including the note history.
func (s *SectionData) Clone() *SectionData {
	if s == nil {
		return nil
	}
	cp := *s
	cp.Fields = s.Fields.Clone()
	cp.Notes = append([]Note(nil), s.Notes...)
	if s.SubmittedAt != nil {
		t := *s.SubmittedAt
		cp.SubmittedAt = &t
	}
	return &cp
}

// Walkout is the billing-reconciliation aggregate for one appointment.
// A walkout is created on the first successful office submission and
// mutated by later office, LC3 and audit submissions. There is one
// active walkout per appointment.
type Walkout struct {
	ID            string `json:"id"`
	AppointmentID string `json:"appointmentId"`

	Status Status `json:"status"`
	Owner  Owner  `json:"owner"`

	// OnHoldAddressed records whether the party holding the record
	// claims the hold reasons are resolved. Unset outside escalation.
	OnHoldAddressed YesNo `json:"onHoldAddressed,omitempty"`

	// OnHoldReasons is non-empty exactly while Status.OnHold().
	OnHoldReasons []int `json:"onHoldReasons,omitempty"`

	Office *SectionData `json:"office,omitempty"`
	LC3    *SectionData `json:"lc3,omitempty"`
	Audit  *SectionData `json:"audit,omitempty"`

	// Envelope holds the opaque ciphertext of the section payloads when
	// a store is wrapped in the encryption middleware. Mutually
	// exclusive with the plaintext sections; empty otherwise.
	Envelope string `json:"envelope,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Section returns the stored data for the named section, or nil if it
// has never been submitted.
func (w *Walkout) Section(s Section) *SectionData {
	switch s {
	case SectionOffice:
		return w.Office
	case SectionLC3:
		return w.LC3
	case SectionAudit:
		return w.Audit
	}
	return nil
}

// SetSection replaces the stored data for the named section.
func (w *Walkout) SetSection(s Section, data *SectionData) {
	switch s {
	case SectionOffice:
		w.Office = data
	case SectionLC3:
		w.LC3 = data
	case SectionAudit:
		w.Audit = data
	}
}

// Clone deep-copies the aggregate. The engine works on clones so that
// a failed submission leaves the loaded aggregate untouched.
func (w *Walkout) Clone() *Walkout {
	if w == nil {
		return nil
	}
	cp := *w
	cp.OnHoldReasons = append([]int(nil), w.OnHoldReasons...)
	cp.Office = w.Office.Clone()
	cp.LC3 = w.LC3.Clone()
	cp.Audit = w.Audit.Clone()
	return &cp
}
