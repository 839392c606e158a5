package domain

import "time"

// Appointment is the read-only reference a walkout hangs off. It is
// owned by the scheduling system; the engine only reads it.
type Appointment struct {
	ID                 string    `json:"id"`
	PatientID          string    `json:"patientId"`
	PatientName        string    `json:"patientName"`
	Office             string    `json:"office"`
	DateOfService      time.Time `json:"dateOfService"`
	ScheduledProviders []string  `json:"scheduledProviders,omitempty"`
}

// SameServiceDay reports whether the appointment's date of service
// falls on the same calendar day as now. Both sides are compared in
// the appointment's own location to avoid midnight skew.
func (a *Appointment) SameServiceDay(now time.Time) bool {
	y1, m1, d1 := a.DateOfService.Date()
	y2, m2, d2 := now.In(a.DateOfService.Location()).Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
