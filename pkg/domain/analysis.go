package domain

import "time"

// RuleMessage is one result row of the external rule-engine lookup.
type RuleMessage struct {
	Message     string    `json:"message"`
	CreatedDate time.Time `json:"createdDate"`
}

// NoteFindings is the result of the external AI note analysis: for
// each of the provider and hygienist notes, whether a tooth number, a
// provider name, a procedure name and a surgical indicator were found.
// The validation engine only consumes the aggregate as the checkedByAi
// prerequisite; it never computes these itself.
type NoteFindings struct {
	ProviderToothNumber  bool `json:"providerToothNumber"`
	ProviderName         bool `json:"providerName"`
	ProviderProcedure    bool `json:"providerProcedure"`
	ProviderSurgical     bool `json:"providerSurgical"`
	HygienistToothNumber bool `json:"hygienistToothNumber"`
	HygienistName        bool `json:"hygienistName"`
	HygienistProcedure   bool `json:"hygienistProcedure"`
	HygienistSurgical    bool `json:"hygienistSurgical"`
}

// Flags returns the findings in wire order, matching the 8-boolean
// vector the analysis service responds with.
func (f NoteFindings) Flags() [8]bool {
	return [8]bool{
		f.ProviderToothNumber, f.ProviderName, f.ProviderProcedure, f.ProviderSurgical,
		f.HygienistToothNumber, f.HygienistName, f.HygienistProcedure, f.HygienistSurgical,
	}
}
