package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const ruleWidth = 60

// Printer writes user-facing messages. Results go to out, diagnostics to errOut.
type Printer struct {
	out    io.Writer
	errOut io.Writer
	alert  lipgloss.Style
	strong lipgloss.Style
}

// NewPrinter creates a printer; styling is dropped when out is not a terminal
func NewPrinter(out, errOut io.Writer) *Printer {
	r := lipgloss.NewRenderer(out)
	alert := r.NewStyle().Foreground(lipgloss.Color("9"))
	return &Printer{
		out:    out,
		errOut: errOut,
		alert:  alert,
		strong: alert.Bold(true),
	}
}

// Println writes a line to the result stream
func (p *Printer) Println(message string) {
	fmt.Fprintln(p.out, message)
}

// Section prints a heading framed by horizontal rules
func (p *Printer) Section(title string) {
	rule := strings.Repeat("=", ruleWidth)
	fmt.Fprintf(p.out, "\n%s\n%s\n%s\n", rule, title, rule)
}

// CachedBanner warns that the shown values come from the cache
func (p *Printer) CachedBanner() {
	rule := strings.Repeat("=", ruleWidth)
	fmt.Fprintf(p.out, "\n%s\n", rule)
	fmt.Fprintln(p.out, p.strong.Render("USING CACHED DATA"))
	fmt.Fprintln(p.out, p.alert.Render("(Data from last login - less than 4 hours old)"))
	fmt.Fprintln(p.out, p.strong.Render("To refresh, run with --force-refresh"))
	fmt.Fprintln(p.out, rule)
}

// PrintSuccess prints a success message with checkmark
func (p *Printer) PrintSuccess(message string) {
	fmt.Fprintf(p.out, "✓ %s\n", message)
}

// PrintWarning prints a warning message
func (p *Printer) PrintWarning(message string) {
	fmt.Fprintf(p.errOut, "⚠ %s\n", message)
}
