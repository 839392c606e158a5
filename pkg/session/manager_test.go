package session_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claritydental/walkout/pkg/domain"
	"github.com/claritydental/walkout/pkg/session"
)

func TestManager_SingleActiveEditor(t *testing.T) {
	mgr := session.NewManager()
	ctx := context.Background()

	form, err := mgr.Open(ctx, "appt-1", domain.SectionOffice, "alex", "office")
	require.NoError(t, err)
	require.NotNil(t, form)
	assert.Equal(t, "alex", form.Editor)

	_, err = mgr.Open(ctx, "appt-1", domain.SectionOffice, "sam", "office")
	assert.ErrorIs(t, err, session.ErrEditorActive)

	// A different section of the same appointment is a separate form.
	_, err = mgr.Open(ctx, "appt-1", domain.SectionLC3, "sam", "office")
	assert.NoError(t, err)
}

func TestManager_DraftRoundTrip(t *testing.T) {
	mgr := session.NewManager()
	ctx := context.Background()

	_, err := mgr.Open(ctx, "appt-1", domain.SectionOffice, "alex", "office")
	require.NoError(t, err)

	draft := domain.FieldSet{
		domain.FieldPatientPresent:     domain.Yes,
		domain.FieldRuleEngineUniqueID: "wo-7",
	}
	require.NoError(t, mgr.SaveDraft(ctx, "appt-1", domain.SectionOffice, draft, "wo-7"))

	// Mutating the caller's copy must not leak into the session.
	draft[domain.FieldPatientPresent] = domain.No

	form, err := mgr.Get("appt-1", domain.SectionOffice)
	require.NoError(t, err)
	assert.Equal(t, domain.Yes, form.Draft.YesNo(domain.FieldPatientPresent))
	assert.Equal(t, "wo-7", form.LookupKey)
}

func TestManager_TimedRolesGetATimer(t *testing.T) {
	mgr := session.NewManager(session.WithTick(5 * time.Millisecond))
	ctx := context.Background()

	office, err := mgr.Open(ctx, "appt-1", domain.SectionOffice, "alex", "office")
	require.NoError(t, err)
	assert.Nil(t, office.Timer, "office review time is not tracked")

	lc3, err := mgr.Open(ctx, "appt-1", domain.SectionLC3, "sam", "lc3")
	require.NoError(t, err)
	require.NotNil(t, lc3.Timer)
	assert.True(t, lc3.Timer.Running())

	rec, err := mgr.Close(ctx, "appt-1", domain.SectionLC3)
	require.NoError(t, err)
	assert.False(t, rec.StoppedAt.IsZero())
	assert.False(t, lc3.Timer.Running())
}

func TestManager_CloseFreesTheForm(t *testing.T) {
	mgr := session.NewManager()
	ctx := context.Background()

	_, err := mgr.Open(ctx, "appt-1", domain.SectionOffice, "alex", "office")
	require.NoError(t, err)

	_, err = mgr.Close(ctx, "appt-1", domain.SectionOffice)
	require.NoError(t, err)

	_, err = mgr.Get("appt-1", domain.SectionOffice)
	assert.ErrorIs(t, err, session.ErrSessionNotFound)

	_, err = mgr.Open(ctx, "appt-1", domain.SectionOffice, "sam", "office")
	assert.NoError(t, err, "a closed form accepts the next editor")

	_, err = mgr.Close(ctx, "appt-2", domain.SectionOffice)
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestManager_ConcurrentOpensAdmitExactlyOne(t *testing.T) {
	mgr := session.NewManager()
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := mgr.Open(ctx, "appt-1", domain.SectionLC3, "editor", "lc3"); err == nil {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, admitted)

	_, err := mgr.Close(ctx, "appt-1", domain.SectionLC3)
	require.NoError(t, err)
}
