package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claritydental/walkout/pkg/adapters/sqlite"
	"github.com/claritydental/walkout/pkg/domain"
	"github.com/claritydental/walkout/pkg/ports/tests"
)

func TestSQLiteStore_Contract(t *testing.T) {
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "walkouts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	tests.RunWalkoutStoreContract(t, store)
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "walkouts.db")
	ctx := context.Background()

	store, err := sqlite.Open(path)
	require.NoError(t, err)

	w := &domain.Walkout{
		ID:            "wo-1",
		AppointmentID: "appt-1",
		Status:        domain.StatusOnHoldOffice,
		Owner:         domain.OwnerOffice,
		OnHoldReasons: []int{11, 14},
		Office: &domain.SectionData{
			Fields: domain.FieldSet{
				domain.FieldPatientPresent: domain.Yes,
				domain.FieldPrimaryAmount:  float64(120),
			},
		},
	}
	require.NoError(t, store.Create(ctx, w))
	require.NoError(t, store.Close())

	reopened, err := sqlite.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { reopened.Close() })

	got, err := reopened.GetByAppointment(ctx, "appt-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusOnHoldOffice, got.Status)
	assert.Equal(t, []int{11, 14}, got.OnHoldReasons)
	assert.Equal(t, domain.Yes, got.Office.Fields.YesNo(domain.FieldPatientPresent))
}
