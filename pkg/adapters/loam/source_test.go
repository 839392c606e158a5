package loam

import (
	"context"
	"testing"

	aretwloam "github.com/aretw0/loam"
	"github.com/aretw0/loam/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claritydental/walkout/internal/testutils"
	"github.com/claritydental/walkout/pkg/domain"
	"github.com/claritydental/walkout/pkg/fields"
)

const paymentModeDoc = `---
setId: 1
name: Payment Mode
usedInFieldIds: [primaryPaymentMode, secondaryPaymentMode]
options:
  - id: 1
    name: Cash
    isActive: true
    visible: true
  - id: 3
    name: Personal Check
    isActive: true
    visible: true
  - id: 5
    name: Money Order
    isActive: false
    visible: false
---
Payment modes accepted at the front desk.
`

const crownPaidOnDoc = `---
setId: 2
name: Crown Paid On
usedInFieldIds: [crownPaidOn]
options:
  - id: 21
    name: Preparation
    isActive: true
    visible: true
  - id: 22
    name: Delivery
    isActive: true
    visible: true
---
When the crown fee was collected.
`

const onHoldReasonDoc = `---
setId: 3
name: On Hold Reason
usedInFieldIds: [onHoldReasons]
options:
  - id: 11
    name: Missing X-Ray
    isActive: true
    visible: true
  - id: 13
    name: Insurance Verification Pending
    isActive: true
    visible: true
  - id: 142
    name: Insurance Verification Missing Documents
    isActive: true
    visible: true
---
Reasons a walkout can be placed on hold.
`

func seedSource(t *testing.T, docs map[string]string) *Source {
	t.Helper()
	_, repo := testutils.SetupTestRepo(t)
	ctx := context.Background()
	for id, content := range docs {
		require.NoError(t, repo.Save(ctx, core.Document{ID: id, Content: content}))
	}
	return New(aretwloam.NewTypedRepository[fields.OptionSet](repo))
}

func TestSource_ListDecodesFrontmatter(t *testing.T) {
	src := seedSource(t, map[string]string{
		"payment-mode.md":   paymentModeDoc,
		"crown-paid-on.md":  crownPaidOnDoc,
		"on-hold-reason.md": onHoldReasonDoc,
	})

	sets, err := src.List(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, sets, 3)

	assert.Equal(t, 1, sets[0].SetID)
	assert.Equal(t, "Payment Mode", sets[0].Name)
	assert.Equal(t, []domain.FieldID{domain.FieldPrimaryPaymentMode, domain.FieldSecondaryPaymentMode}, sets[0].UsedIn)
	assert.Len(t, sets[0].Options, 3)
}

func TestSource_ActiveOnlyFiltersRetiredOptions(t *testing.T) {
	src := seedSource(t, map[string]string{"payment-mode.md": paymentModeDoc})

	sets, err := src.List(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, sets, 1)
	require.Len(t, sets[0].Options, 2)
	for _, opt := range sets[0].Options {
		assert.True(t, opt.IsActive)
	}
}

func TestSource_DuplicateSetIDIsRejected(t *testing.T) {
	src := seedSource(t, map[string]string{
		"payment-mode.md": paymentModeDoc,
		"shadow.md":       paymentModeDoc,
	})

	_, err := src.List(context.Background(), false)
	assert.ErrorContains(t, err, "set id 1")
}

func TestSource_MissingSetIDIsRejected(t *testing.T) {
	src := seedSource(t, map[string]string{
		"broken.md": "---\nname: Broken\n---\nNo set id.\n",
	})

	_, err := src.List(context.Background(), false)
	assert.ErrorContains(t, err, "missing setId")
}

func TestSource_RegistryResolvesBindings(t *testing.T) {
	src := seedSource(t, map[string]string{
		"payment-mode.md":   paymentModeDoc,
		"crown-paid-on.md":  crownPaidOnDoc,
		"on-hold-reason.md": onHoldReasonDoc,
	})

	reg, err := src.Registry(context.Background())
	require.NoError(t, err)

	b := reg.Bindings()
	assert.Equal(t, 3, b.PersonalCheck)
	assert.Equal(t, 22, b.CrownPaidOnDelivery)
	assert.True(t, b.IVTeamReasons[13])
	assert.True(t, b.IVTeamReasons[142])
}
