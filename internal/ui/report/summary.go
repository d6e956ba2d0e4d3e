package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"cppbind/internal/core/ports"
	"cppbind/internal/engine/binding"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FBBF24")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)
)

// Summary renders the outcome of one generation run for a terminal. With
// color off the styles are skipped and the text is plain.
func Summary(res ports.GenerateResult, color bool) string {
	style := func(s lipgloss.Style, text string) string {
		if !color {
			return text
		}
		return s.Render(text)
	}

	var b strings.Builder
	output := res.Output
	switch {
	case output == "":
		output = "stdout"
	case res.Unchanged:
		output += " (unchanged)"
	}
	b.WriteString(style(titleStyle, "cppbind"))
	fmt.Fprintf(&b, " %d inputs, %d classes -> %s\n", len(res.Inputs), res.Classes, output)

	warnings := binding.CountWarnings(res.Diagnostics)
	for _, d := range res.Diagnostics {
		if d.Severity == binding.SeverityWarning {
			b.WriteString(style(warningStyle, "warning: "))
		} else {
			b.WriteString(style(infoStyle, "note: "))
		}
		b.WriteString(diagnosticText(d))
		b.WriteByte('\n')
	}

	if warnings == 0 {
		b.WriteString(style(successStyle, "no warnings"))
	} else {
		b.WriteString(style(warningStyle, fmt.Sprintf("%d warnings", warnings)))
	}
	b.WriteByte('\n')
	return b.String()
}

// diagnosticText is the diagnostic without its severity prefix.
func diagnosticText(d binding.Diagnostic) string {
	loc := d.Location
	switch {
	case loc.File == "":
		return d.Message
	case loc.Line == 0:
		return loc.File + ": " + d.Message
	}
	return fmt.Sprintf("%s:%d: %s", loc.File, loc.Line, d.Message)
}
