package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/claritydental/walkout/pkg/domain"
	"github.com/claritydental/walkout/pkg/fields"
)

// Renderer writes walkout summaries to a terminal. On a TTY the
// markdown goes through glamour and status lines are colored; piped
// output stays plain so it can be grepped.
type Renderer struct {
	out      io.Writer
	isTTY    bool
	profile  termenv.Profile
	markdown func(string) (string, error)
}

// NewRenderer builds a renderer for the given writer, detecting
// whether it is a terminal.
func NewRenderer(out io.Writer) *Renderer {
	r := &Renderer{out: out, profile: termenv.Ascii}
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		r.isTTY = true
		r.profile = termenv.ColorProfile()
		if g, err := glamour.NewTermRenderer(glamour.WithAutoStyle()); err == nil {
			r.markdown = g.Render
		}
	}
	return r
}

// Markdown renders the document, styled when possible.
func (r *Renderer) Markdown(doc string) error {
	if r.markdown != nil {
		if styled, err := r.markdown(doc); err == nil {
			_, err = io.WriteString(r.out, styled)
			return err
		}
	}
	_, err := io.WriteString(r.out, doc)
	return err
}

// StatusLine formats a status label, colored by lifecycle phase on a
// TTY.
func (r *Renderer) StatusLine(s domain.Status) string {
	label := termenv.String(string(s))
	switch {
	case s.OnHold():
		label = label.Foreground(r.profile.Color("#f59e0b"))
	case s.Completed():
		label = label.Foreground(r.profile.Color("#22c55e"))
	default:
		label = label.Foreground(r.profile.Color("#818cf8"))
	}
	return label.String()
}

// WalkoutMarkdown builds the summary document shown by the show
// command. The registry resolves hold reason ids to their names.
func WalkoutMarkdown(w *domain.Walkout, reg *fields.Registry) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Walkout %s\n\n", w.ID)
	fmt.Fprintf(&b, "- **Appointment:** %s\n", w.AppointmentID)
	fmt.Fprintf(&b, "- **Status:** %s\n", w.Status)
	if w.Owner != domain.OwnerNone {
		fmt.Fprintf(&b, "- **Pending with:** %s\n", w.Owner)
	}
	fmt.Fprintf(&b, "- **Created:** %s\n", w.CreatedAt.Format("2006-01-02 15:04 MST"))
	fmt.Fprintf(&b, "- **Updated:** %s\n", w.UpdatedAt.Format("2006-01-02 15:04 MST"))

	if len(w.OnHoldReasons) > 0 {
		b.WriteString("\n## Hold reasons\n\n")
		for _, id := range w.OnHoldReasons {
			name, ok := reg.OptionName(domain.FieldOnHoldReasons, id)
			if !ok {
				name = fmt.Sprintf("reason %d", id)
			}
			fmt.Fprintf(&b, "- %s\n", name)
		}
		if w.OnHoldAddressed != "" {
			fmt.Fprintf(&b, "\nAddressed: %s\n", w.OnHoldAddressed)
		}
	}

	for _, s := range []struct {
		title string
		data  *domain.SectionData
	}{
		{"Office", w.Office},
		{"LC3", w.LC3},
		{"Audit", w.Audit},
	} {
		if s.data == nil {
			continue
		}
		fmt.Fprintf(&b, "\n## %s\n\n", s.title)
		if s.data.SubmittedAt != nil {
			fmt.Fprintf(&b, "Submitted %s", s.data.SubmittedAt.Format("2006-01-02 15:04 MST"))
			if s.data.SubmittedBy != "" {
				fmt.Fprintf(&b, " by %s", s.data.SubmittedBy)
			}
			b.WriteString("\n")
		}
		if s.data.Remarks != "" {
			fmt.Fprintf(&b, "\n> %s\n", s.data.Remarks)
		}
		for _, n := range s.data.Notes {
			fmt.Fprintf(&b, "\n- *%s* (%s): %s\n",
				n.Author, n.CreatedAt.Format("2006-01-02 15:04"), n.Body)
		}
	}

	return b.String()
}

// FieldSetsMarkdown builds the document shown by the fields command.
func FieldSetsMarkdown(sets []fields.OptionSet) string {
	var b strings.Builder

	b.WriteString("# Field option sets\n")
	for _, set := range sets {
		fmt.Fprintf(&b, "\n## %s (set %d)\n\n", set.Name, set.SetID)
		if len(set.UsedIn) > 0 {
			ids := make([]string, len(set.UsedIn))
			for i, id := range set.UsedIn {
				ids[i] = string(id)
			}
			fmt.Fprintf(&b, "Used in: %s\n\n", strings.Join(ids, ", "))
		}
		for _, opt := range set.Options {
			if opt.IsActive {
				fmt.Fprintf(&b, "- %d: %s\n", opt.ID, opt.Name)
			} else {
				fmt.Fprintf(&b, "- %d: %s (inactive)\n", opt.ID, opt.Name)
			}
		}
	}

	return b.String()
}
