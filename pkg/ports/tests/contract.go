// Package tests provides reusable contract suites for ports
// implementations. Every store adapter runs the same suite so that
// memory, redis and sqlite agree on semantics.
package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/claritydental/walkout/pkg/domain"
	"github.com/claritydental/walkout/pkg/ports"
)

// RunWalkoutStoreContract verifies that a WalkoutStore implementation
// complies with the port semantics: one walkout per appointment,
// not-found sentinels, and round-trip fidelity of the aggregate.
func RunWalkoutStoreContract(t *testing.T, store ports.WalkoutStore) {
	t.Helper()
	ctx := context.Background()

	newWalkout := func(appointmentID string) *domain.Walkout {
		now := time.Now().UTC().Truncate(time.Second)
		return &domain.Walkout{
			ID:            uuid.NewString(),
			AppointmentID: appointmentID,
			Status:        domain.StatusNotStarted,
			Owner:         domain.OwnerLC3,
			Office: &domain.SectionData{
				Fields: domain.FieldSet{
					domain.FieldPatientPresent: domain.Yes,
					domain.FieldPrimaryAmount:  float64(120),
				},
				Remarks: "first visit",
				Notes: []domain.Note{
					{Author: "front-desk", Body: "walkout opened", CreatedAt: now},
				},
			},
			CreatedAt: now,
			UpdatedAt: now,
		}
	}

	t.Run("Get_NotFound", func(t *testing.T) {
		if _, err := store.Get(ctx, "missing"); !errors.Is(err, domain.ErrWalkoutNotFound) {
			t.Fatalf("expected ErrWalkoutNotFound, got %v", err)
		}
		if _, err := store.GetByAppointment(ctx, "missing"); !errors.Is(err, domain.ErrWalkoutNotFound) {
			t.Fatalf("expected ErrWalkoutNotFound by appointment, got %v", err)
		}
	})

	t.Run("Create_RoundTrip", func(t *testing.T) {
		w := newWalkout("appt-contract-1")
		if err := store.Create(ctx, w); err != nil {
			t.Fatalf("create failed: %v", err)
		}

		got, err := store.Get(ctx, w.ID)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if got.AppointmentID != w.AppointmentID || got.Status != w.Status || got.Owner != w.Owner {
			t.Errorf("round trip mismatch: got %+v", got)
		}
		if got.Office == nil || got.Office.Fields.YesNo(domain.FieldPatientPresent) != domain.Yes {
			t.Errorf("office section lost in round trip: %+v", got.Office)
		}
		if len(got.Office.Notes) != 1 || got.Office.Notes[0].Body != "walkout opened" {
			t.Errorf("note history lost in round trip: %+v", got.Office.Notes)
		}

		byAppt, err := store.GetByAppointment(ctx, w.AppointmentID)
		if err != nil {
			t.Fatalf("get by appointment failed: %v", err)
		}
		if byAppt.ID != w.ID {
			t.Errorf("appointment index points at %s, want %s", byAppt.ID, w.ID)
		}
	})

	t.Run("Create_DuplicateAppointment", func(t *testing.T) {
		first := newWalkout("appt-contract-dup")
		if err := store.Create(ctx, first); err != nil {
			t.Fatalf("create failed: %v", err)
		}

		second := newWalkout("appt-contract-dup")
		err := store.Create(ctx, second)
		var conflict *domain.ConflictError
		if !errors.As(err, &conflict) {
			t.Fatalf("expected ConflictError, got %v", err)
		}
		if conflict.WalkoutID != first.ID {
			t.Errorf("conflict names walkout %s, want %s", conflict.WalkoutID, first.ID)
		}
	})

	t.Run("Update", func(t *testing.T) {
		w := newWalkout("appt-contract-2")
		if err := store.Create(ctx, w); err != nil {
			t.Fatalf("create failed: %v", err)
		}

		w.Status = domain.StatusOnHoldOffice
		w.Owner = domain.OwnerOffice
		w.OnHoldReasons = []int{11, 13}
		if err := store.Update(ctx, w); err != nil {
			t.Fatalf("update failed: %v", err)
		}

		got, err := store.Get(ctx, w.ID)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if got.Status != domain.StatusOnHoldOffice || len(got.OnHoldReasons) != 2 {
			t.Errorf("update not persisted: %+v", got)
		}
	})

	t.Run("Update_NotFound", func(t *testing.T) {
		w := newWalkout("appt-contract-3")
		if err := store.Update(ctx, w); !errors.Is(err, domain.ErrWalkoutNotFound) {
			t.Fatalf("expected ErrWalkoutNotFound, got %v", err)
		}
	})

	t.Run("List_And_Delete", func(t *testing.T) {
		w := newWalkout("appt-contract-4")
		if err := store.Create(ctx, w); err != nil {
			t.Fatalf("create failed: %v", err)
		}

		ids, err := store.List(ctx)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		found := false
		for _, id := range ids {
			if id == w.ID {
				found = true
			}
		}
		if !found {
			t.Errorf("created walkout missing from list: %v", ids)
		}

		if err := store.Delete(ctx, w.ID); err != nil {
			t.Fatalf("delete failed: %v", err)
		}
		if _, err := store.Get(ctx, w.ID); !errors.Is(err, domain.ErrWalkoutNotFound) {
			t.Fatalf("expected ErrWalkoutNotFound after delete, got %v", err)
		}
		if _, err := store.GetByAppointment(ctx, w.AppointmentID); !errors.Is(err, domain.ErrWalkoutNotFound) {
			t.Fatalf("appointment index not cleaned after delete, got %v", err)
		}
	})
}
