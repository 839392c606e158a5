// Package graph renders the walkout status lifecycle as a Mermaid
// flowchart, for documentation and for the graph CLI command.
package graph

import (
	"fmt"
	"strings"

	"github.com/claritydental/walkout/pkg/domain"
)

// Edge is one lifecycle transition between status labels.
type Edge struct {
	From  domain.Status
	To    domain.Status
	Label string
}

// Overlay highlights dynamic state on the diagram.
type Overlay struct {
	Current domain.Status
}

// LifecycleEdges returns the full transition table of the status
// machine. The table is declarative; the engine's Transition function
// is the authority, this is its documentation.
func LifecycleEdges() []Edge {
	completions := []domain.Status{
		domain.StatusCompletedSameDay,
		domain.StatusCompletedSameDayDeficiency,
		domain.StatusCompletedWithDelay,
		domain.StatusCompletedDelayDeficiency,
	}
	holds := []domain.Status{
		domain.StatusOnHoldOffice,
		domain.StatusOnHoldLC3,
		domain.StatusOnHoldIVTeam,
		domain.StatusOnHoldIVTeamOffice,
	}

	edges := []Edge{
		{domain.StatusNotStarted, domain.StatusNoShowCancel, "patient not present"},
		{domain.StatusNotStarted, domain.StatusCompletedByOffice, "zero production"},
		{domain.StatusNotStarted, domain.StatusOnHoldOffice, "office hold reasons"},
		{domain.StatusNotStarted, domain.StatusOnHoldIVTeam, "IV team hold reasons"},
		{domain.StatusNotStarted, domain.StatusOnHoldIVTeamOffice, "both hold reasons"},
		{domain.StatusOnHoldOffice, domain.StatusOnHoldLC3, "office addressed"},
		{domain.StatusOnHoldIVTeamOffice, domain.StatusOnHoldIVTeam, "office addressed"},
	}
	for _, to := range completions {
		edges = append(edges, Edge{domain.StatusNotStarted, to, "LC3 completes"})
	}
	for _, hold := range holds {
		for _, to := range completions {
			edges = append(edges, Edge{hold, to, "LC3 completes"})
		}
	}
	return edges
}

// GenerateMermaid produces a Mermaid flowchart of the lifecycle.
// Shapes carry meaning: the entry status is a circle, holds are
// parallelograms, terminal labels are subroutine boxes.
func GenerateMermaid(overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	seen := make(map[domain.Status]bool)
	declare := func(s domain.Status) {
		if seen[s] {
			return
		}
		seen[s] = true

		opener, closer := "[", "]"
		switch {
		case s == domain.StatusNotStarted:
			opener, closer = "((", "))"
		case s.OnHold():
			opener, closer = "[/", "/]"
		case s.Completed(), s == domain.StatusNoShowCancel:
			opener, closer = "[[", "]]"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", mermaidID(s), opener, s, closer)
	}

	edges := LifecycleEdges()
	for _, e := range edges {
		declare(e.From)
		declare(e.To)
	}
	for _, e := range edges {
		fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", mermaidID(e.From), e.Label, mermaidID(e.To))
	}

	if overlay != nil && overlay.Current != "" {
		sb.WriteString("\n    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		fmt.Fprintf(&sb, "    class %s current;\n", mermaidID(overlay.Current))
	}

	return sb.String()
}

func mermaidID(s domain.Status) string {
	id := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, string(s))
	return id
}
