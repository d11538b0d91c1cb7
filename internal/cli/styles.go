// Package cli holds the terminal styling shared by the command-line tools.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
var (
	primaryColor = lipgloss.Color("#1E88E5")
	warnColor    = lipgloss.Color("#FFA500")
	errorColor   = lipgloss.Color("#A40000")
	mutedColor   = lipgloss.Color("#888888")
	textColor    = lipgloss.Color("#FFFFFF")
)

// Styles
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(errorColor)

	WarnStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(warnColor)

	KeyStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	ValueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(textColor)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedColor).
			Padding(0, 1)
)

// Field is one key/value row of a report.
type Field struct {
	Key   string
	Value string
}

// F builds a Field with a formatted value.
func F(key, format string, args ...any) Field {
	return Field{Key: key, Value: fmt.Sprintf(format, args...)}
}

// Render lays fields out as aligned key/value rows.
func Render(fields []Field) string {
	width := 0
	for _, f := range fields {
		width = max(width, len(f.Key))
	}

	rows := make([]string, len(fields))
	for i, f := range fields {
		key := KeyStyle.Render(f.Key + ":" + strings.Repeat(" ", width-len(f.Key)))
		rows[i] = key + " " + ValueStyle.Render(f.Value)
	}
	return strings.Join(rows, "\n")
}

// PrintReport writes a titled box of fields to w.
func PrintReport(w io.Writer, title string, fields []Field) {
	fmt.Fprintln(w, TitleStyle.Render(title))
	fmt.Fprintln(w, BoxStyle.Render(Render(fields)))
}

// PrintWarning prints a warning to stderr.
func PrintWarning(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "%s %s\n", WarnStyle.Render("Warning:"), fmt.Sprintf(format, args...))
}

// PrintError prints an error message to stderr.
func PrintError(message string) {
	fmt.Fprintf(os.Stderr, "%s %s\n", ErrorStyle.Render("Error:"), message)
}
