package cli_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claritydental/walkout/internal/cli"
	"github.com/claritydental/walkout/pkg/domain"
	"github.com/claritydental/walkout/pkg/fields"
)

func TestWalkoutMarkdown_ResolvesHoldReasonNames(t *testing.T) {
	at := time.Date(2026, 8, 28, 15, 0, 0, 0, time.UTC)
	w := &domain.Walkout{
		ID:            "wo-1",
		AppointmentID: "appt-1",
		Status:        domain.StatusOnHoldIVTeam,
		Owner:         domain.OwnerIVTeam,
		OnHoldReasons: []int{13, 9999},
		Office: &domain.SectionData{
			SubmittedAt: &at,
			SubmittedBy: "front-desk",
			Remarks:     "waiting on carrier",
		},
		CreatedAt: at,
		UpdatedAt: at,
	}

	doc := cli.WalkoutMarkdown(w, fields.Default())

	assert.Contains(t, doc, "# Walkout wo-1")
	assert.Contains(t, doc, "On Hold – IV Team")
	assert.Contains(t, doc, "Insurance Verification")
	assert.Contains(t, doc, "reason 9999")
	assert.Contains(t, doc, "by front-desk")
	assert.Contains(t, doc, "> waiting on carrier")
}

func TestWalkoutMarkdown_SkipsUnsubmittedSections(t *testing.T) {
	w := &domain.Walkout{ID: "wo-2", AppointmentID: "appt-2", Status: domain.StatusCompletedByOffice}

	doc := cli.WalkoutMarkdown(w, fields.Default())

	assert.NotContains(t, doc, "## LC3")
	assert.NotContains(t, doc, "## Audit")
}

func TestFieldSetsMarkdown_MarksInactiveOptions(t *testing.T) {
	doc := cli.FieldSetsMarkdown([]fields.OptionSet{{
		SetID:  1,
		Name:   "Payment Mode",
		UsedIn: []domain.FieldID{domain.FieldPrimaryPaymentMode},
		Options: []fields.Option{
			{ID: 1, Name: "Cash", IsActive: true},
			{ID: 5, Name: "Money Order", IsActive: false},
		},
	}})

	assert.Contains(t, doc, "## Payment Mode (set 1)")
	assert.Contains(t, doc, "Used in: primaryPaymentMode")
	assert.Contains(t, doc, "- 1: Cash\n")
	assert.Contains(t, doc, "- 5: Money Order (inactive)")
}

func TestRenderer_PlainOnNonTerminal(t *testing.T) {
	var buf bytes.Buffer
	r := cli.NewRenderer(&buf)

	require.NoError(t, r.Markdown("# Heading\n"))
	assert.Equal(t, "# Heading\n", buf.String())

	// No escape sequences when output is piped.
	line := r.StatusLine(domain.StatusOnHoldOffice)
	assert.Equal(t, string(domain.StatusOnHoldOffice), line)
}
