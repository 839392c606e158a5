package graph

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/claritydental/walkout/pkg/domain"
)

func TestGenerateMermaid_DeclaresEveryStatus(t *testing.T) {
	out := GenerateMermaid(nil)

	assert.True(t, strings.HasPrefix(out, "graph TD\n"))
	for _, e := range LifecycleEdges() {
		assert.Contains(t, out, string(e.From))
		assert.Contains(t, out, string(e.To))
	}
}

func TestGenerateMermaid_Shapes(t *testing.T) {
	out := GenerateMermaid(nil)

	// Entry is a circle, a hold is a parallelogram, a completion is a
	// subroutine box.
	assert.Contains(t, out, `Not_Started(("Not Started"))`)
	assert.Contains(t, out, `[/"On Hold – Office"/]`)
	assert.Contains(t, out, `[["Completed – Same Day"]]`)
}

func TestGenerateMermaid_SanitizesIdentifiers(t *testing.T) {
	out := GenerateMermaid(nil)

	// The en-dash and ampersand in status labels never leak into node
	// identifiers.
	for _, line := range strings.Split(out, "\n") {
		if id, _, ok := strings.Cut(strings.TrimSpace(line), "["); ok {
			assert.NotContains(t, id, "–")
			assert.NotContains(t, id, "&")
		}
	}
}

func TestGenerateMermaid_Overlay(t *testing.T) {
	out := GenerateMermaid(&Overlay{Current: domain.StatusOnHoldIVTeam})

	assert.Contains(t, out, "classDef current")
	assert.Contains(t, out, "class On_Hold___IV_Team current;")
}
