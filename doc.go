/*
Package walkout is the billing-reconciliation lifecycle engine used by
dental offices to close out an appointment's production against what
was actually collected.

A walkout moves through three sections. The office submits first, on
the day of the appointment; the LC3 billing team reconciles afterwards
and either completes the record or places it on hold; an auditor may
attach a final review. The engine owns the field dependency rules (what
is visible and required given the answers so far), validation, status
transitions and the two-phase confirmation used when an office
addresses its own hold reasons.

# Usage

Construct a Service and submit sections through it:

	package main

	import (
		"context"
		"log"

		"github.com/claritydental/walkout"
		"github.com/claritydental/walkout/pkg/domain"
	)

	func main() {
		svc, err := walkout.New()
		if err != nil {
			log.Fatal(err)
		}
		defer svc.Close()

		result, pending, err := svc.Submit(context.Background(), walkout.Submission{
			AppointmentID: "appt-1001",
			Section:       domain.SectionOffice,
			SubmittedBy:   "front-desk",
			Fields:        domain.FieldSet{domain.FieldPatientPresent: domain.Yes},
		})
		if err != nil {
			log.Fatal(err)
		}
		if pending != nil {
			// The submission suspended on a confirmation question.
			result, err = svc.Resume(context.Background(), pending.ID, domain.Yes)
		}
		_ = result
	}

Persistence, field definitions and the upstream lookup services are all
pluggable through functional options; the defaults run entirely in
memory.
*/
package walkout
