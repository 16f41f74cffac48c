package diag

import (
	"fmt"
	"io"

	"github.com/pterm/pterm"
)

// Render writes diagnostics to w, colored by severity.
func Render(w io.Writer, ds []Diagnostic) {
	for _, d := range ds {
		fmt.Fprintln(w, Format(d))
	}
}

// Format renders one diagnostic for a terminal.
func Format(d Diagnostic) string {
	var sev string
	switch d.Severity {
	case SeverityError:
		sev = pterm.Red(d.Severity.String())
	case SeverityWarning:
		sev = pterm.Yellow(d.Severity.String())
	default:
		sev = pterm.Cyan(d.Severity.String())
	}
	return fmt.Sprintf("%s %s %s: %s", sev, pterm.Gray(string(d.Code)), pterm.Bold.Sprint(d.Subject), d.Message)
}
