package cmd

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"korka/pkg/compiler"
)

var (
	colorError = lipgloss.Color("#EF4444") // Red
	colorMuted = lipgloss.Color("#6B7280") // Gray
	colorOK    = lipgloss.Color("#10B981") // Emerald
	colorFile  = lipgloss.Color("#06B6D4") // Cyan
)

var (
	fileStyle = lipgloss.NewStyle().
			Foreground(colorFile).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorError).
			Bold(true)

	snippetStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	okStyle = lipgloss.NewStyle().
			Foreground(colorOK)
)

// diagnostic renders a lex or parse failure for name.
func (o *options) diagnostic(name string, err error, src string) string {
	msg := err.Error()
	if o.cfg.Diagnostics.Snippet {
		msg = compiler.Diagnostic(err, src)
	}

	if !o.color() {
		return name + ": " + msg
	}

	head, snippet, hasSnippet := strings.Cut(msg, "\n")
	out := fileStyle.Render(name+":") + " " + errorStyle.Render(head)
	if hasSnippet {
		out += "\n" + snippetStyle.Render(snippet)
	}
	return out
}

func (o *options) ok(text string) string {
	if !o.color() {
		return text
	}
	return okStyle.Render(text)
}
