package runtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/claritydental/walkout/pkg/domain"
	"github.com/claritydental/walkout/pkg/fields"
)

var registry = fields.Default()

func apptOn(dos time.Time) *domain.Appointment {
	return &domain.Appointment{
		ID:            "appt-1",
		PatientID:     "pat-1",
		PatientName:   "Ada Perez",
		Office:        "Maple Grove",
		DateOfService: dos,
	}
}

func TestTransition_OfficeNoShowDominates(t *testing.T) {
	now := time.Now()
	// No other field value may override a no-show.
	f := domain.FieldSet{
		domain.FieldPatientPresent: domain.No,
		domain.FieldZeroProduction: domain.Yes,
	}
	tr := Transition(domain.SectionOffice, f, nil, apptOn(now), now, domain.YesNoUnset, registry)

	assert.Equal(t, domain.StatusNoShowCancel, tr.Status)
	assert.Equal(t, domain.OwnerNoShowCancel, tr.Owner)
}

func TestTransition_OfficeZeroProductionCompletes(t *testing.T) {
	now := time.Now()
	f := domain.FieldSet{
		domain.FieldPatientPresent: domain.Yes,
		domain.FieldZeroProduction: domain.Yes,
	}
	tr := Transition(domain.SectionOffice, f, nil, apptOn(now), now, domain.YesNoUnset, registry)

	assert.Equal(t, domain.StatusCompletedByOffice, tr.Status)
	assert.Equal(t, domain.OwnerCompleted, tr.Owner)
}

func TestTransition_OfficeHandsToLC3(t *testing.T) {
	now := time.Now()
	f := domain.FieldSet{
		domain.FieldPatientPresent: domain.Yes,
		domain.FieldZeroProduction: domain.No,
	}
	tr := Transition(domain.SectionOffice, f, nil, apptOn(now), now, domain.YesNoUnset, registry)

	assert.Equal(t, domain.StatusNotStarted, tr.Status)
	assert.Equal(t, domain.OwnerLC3, tr.Owner)
	assert.Equal(t, "Pending with LC3", tr.Owner.Label())
}

func TestTransition_OfficeEscalationAdvancesOneStep(t *testing.T) {
	now := time.Now()
	f := domain.FieldSet{domain.FieldPatientPresent: domain.Yes}

	t.Run("office to lc3", func(t *testing.T) {
		prev := &domain.Walkout{
			Status:        domain.StatusOnHoldOffice,
			Owner:         domain.OwnerOffice,
			OnHoldReasons: []int{11},
		}
		tr := Transition(domain.SectionOffice, f, prev, apptOn(now), now, domain.Yes, registry)
		assert.Equal(t, domain.StatusOnHoldLC3, tr.Status)
		assert.Equal(t, domain.OwnerLC3, tr.Owner)
		assert.Equal(t, domain.Yes, tr.OnHoldAddressed)
		assert.Equal(t, []int{11}, tr.OnHoldReasons)
	})

	t.Run("iv team and office to iv team", func(t *testing.T) {
		prev := &domain.Walkout{
			Status:        domain.StatusOnHoldIVTeamOffice,
			Owner:         domain.OwnerIVTeamOffice,
			OnHoldReasons: []int{11, 13},
		}
		tr := Transition(domain.SectionOffice, f, prev, apptOn(now), now, domain.Yes, registry)
		assert.Equal(t, domain.StatusOnHoldIVTeam, tr.Status)
		assert.Equal(t, domain.OwnerIVTeam, tr.Owner)
	})

	t.Run("answer no keeps the record in place", func(t *testing.T) {
		prev := &domain.Walkout{
			Status:        domain.StatusOnHoldOffice,
			Owner:         domain.OwnerOffice,
			OnHoldReasons: []int{11},
		}
		tr := Transition(domain.SectionOffice, f, prev, apptOn(now), now, domain.No, registry)
		assert.Equal(t, domain.StatusOnHoldOffice, tr.Status)
		assert.Equal(t, domain.OwnerOffice, tr.Owner)
		assert.Equal(t, domain.No, tr.OnHoldAddressed)
	})
}

func TestTransition_LC3ReasonPartition(t *testing.T) {
	now := time.Now()
	cases := []struct {
		name    string
		reasons []int
		status  domain.Status
		owner   domain.Owner
	}{
		{"office reasons only", []int{11, 14}, domain.StatusOnHoldOffice, domain.OwnerOffice},
		{"iv team reasons only", []int{13, 142}, domain.StatusOnHoldIVTeam, domain.OwnerIVTeam},
		{"both kinds", []int{11, 142}, domain.StatusOnHoldIVTeamOffice, domain.OwnerIVTeamOffice},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := domain.FieldSet{
				domain.FieldWalkoutOnHold: domain.Yes,
				domain.FieldOnHoldReasons: tc.reasons,
				domain.FieldOnHoldNotes:   "pending",
			}
			tr := Transition(domain.SectionLC3, f, nil, apptOn(now), now, domain.YesNoUnset, registry)
			assert.Equal(t, tc.status, tr.Status)
			assert.Equal(t, tc.owner, tr.Owner)
			assert.Equal(t, tc.reasons, tr.OnHoldReasons)
			assert.Equal(t, domain.No, tr.OnHoldAddressed,
				"addressed defaults to No when the dialog was not shown")
		})
	}
}

func TestTransition_LC3CompletedLabels(t *testing.T) {
	now := time.Date(2026, 8, 28, 15, 0, 0, 0, time.UTC)
	past := now.AddDate(0, 0, -3)

	cases := []struct {
		name       string
		dos        time.Time
		deficiency domain.YesNo
		status     domain.Status
	}{
		{"same day clean", now, domain.No, domain.StatusCompletedSameDay},
		{"same day with deficiency", now, domain.Yes, domain.StatusCompletedSameDayDeficiency},
		{"delayed clean", past, domain.No, domain.StatusCompletedWithDelay},
		{"delayed with deficiency", past, domain.Yes, domain.StatusCompletedDelayDeficiency},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := domain.FieldSet{
				domain.FieldWalkoutOnHold:            domain.No,
				domain.FieldCompletingWithDeficiency: tc.deficiency,
			}
			tr := Transition(domain.SectionLC3, f, nil, apptOn(tc.dos), now, domain.YesNoUnset, registry)
			assert.Equal(t, tc.status, tr.Status)
			assert.Equal(t, domain.OwnerCompleted, tr.Owner)
			assert.Equal(t, domain.YesNoUnset, tr.OnHoldAddressed,
				"addressed is cleared for a completed record")
			assert.Empty(t, tr.OnHoldReasons)
		})
	}
}

func TestTransition_AuditNeverChangesLifecycle(t *testing.T) {
	now := time.Now()
	prev := &domain.Walkout{
		Status:          domain.StatusOnHoldIVTeam,
		Owner:           domain.OwnerIVTeam,
		OnHoldAddressed: domain.Yes,
		OnHoldReasons:   []int{13},
	}
	f := domain.FieldSet{
		domain.FieldDiscrepancyFound:   domain.Yes,
		domain.FieldDiscrepancyRemarks: "posted to wrong provider",
	}
	tr := Transition(domain.SectionAudit, f, prev, apptOn(now), now, domain.YesNoUnset, registry)

	assert.Equal(t, prev.Status, tr.Status)
	assert.Equal(t, prev.Owner, tr.Owner)
	assert.Equal(t, prev.OnHoldAddressed, tr.OnHoldAddressed)
	assert.Equal(t, prev.OnHoldReasons, tr.OnHoldReasons)
}
