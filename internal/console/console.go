// Package console prints batch summaries and notices for humans.
package console

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/rgonek/dokuwiki-md-converter/converter"
	"github.com/rgonek/dokuwiki-md-converter/internal/batch"
)

// Styles used when the output is a terminal.
type Styles struct {
	Title   lipgloss.Style
	Label   lipgloss.Style
	Good    lipgloss.Style
	Warn    lipgloss.Style
	Bad     lipgloss.Style
	Dim     lipgloss.Style
	Summary lipgloss.Style
}

// DefaultStyles returns the built-in palette.
func DefaultStyles() Styles {
	return Styles{
		Title:   lipgloss.NewStyle().Bold(true),
		Label:   lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		Good:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Warn:    lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Bad:     lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		Dim:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Summary: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1),
	}
}

// Printer writes human-readable reports. Styling is applied only when the
// writer is a terminal.
type Printer struct {
	w      io.Writer
	styles Styles
	color  bool
}

// NewPrinter returns a Printer for w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w, styles: DefaultStyles(), color: IsTerminal(w)}
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func (p *Printer) paint(style lipgloss.Style, s string) string {
	if !p.color {
		return s
	}
	return style.Render(s)
}

// Notices writes one line per notice.
func (p *Printer) Notices(notices []converter.Notice) error {
	for _, n := range notices {
		location := n.File
		if location == "" {
			location = "<input>"
		}
		line := fmt.Sprintf("%s %s %s\n",
			p.paint(p.styles.Dim, fmt.Sprintf("%s:%d", location, n.Line)),
			p.paint(p.styles.Warn, string(n.Type)),
			n.Message,
		)
		if _, err := io.WriteString(p.w, line); err != nil {
			return err
		}
	}
	return nil
}

// Summary writes the totals of a batch run followed by any failures.
func (p *Printer) Summary(s batch.Summary) error {
	rows := []struct {
		label string
		value int
		style lipgloss.Style
	}{
		{"converted", s.Converted, p.styles.Good},
		{"copied", s.Copied, p.styles.Good},
		{"skipped", s.Skipped, p.styles.Dim},
		{"notices", len(s.Notices), p.styles.Warn},
		{"failed", s.Failed, p.styles.Bad},
	}

	var sb strings.Builder
	sb.WriteString(p.paint(p.styles.Title, "run "+s.RunID))
	sb.WriteByte('\n')
	for _, row := range rows {
		value := fmt.Sprintf("%d", row.value)
		if row.value > 0 {
			value = p.paint(row.style, value)
		}
		fmt.Fprintf(&sb, "%s %s\n", p.paint(p.styles.Label, fmt.Sprintf("%-9s", row.label)), value)
	}
	fmt.Fprintf(&sb, "%s %s", p.paint(p.styles.Label, fmt.Sprintf("%-9s", "duration")), s.Duration.Round(time.Millisecond))

	body := sb.String()
	if p.color {
		body = p.styles.Summary.Render(body)
	}
	if _, err := fmt.Fprintln(p.w, body); err != nil {
		return err
	}

	for _, f := range s.Failures {
		if _, err := fmt.Fprintf(p.w, "%s %s: %v\n", p.paint(p.styles.Bad, "failed"), f.Path, f.Err); err != nil {
			return err
		}
	}
	return nil
}
