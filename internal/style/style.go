// Package style centralizes console styling for command output.
package style

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	header = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("15")).
		Background(lipgloss.Color("62")).
		Padding(0, 1)

	success = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warning = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	failure = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	muted   = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	accent  = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
)

// Header renders the banner line for a run.
func Header(text string) string {
	return header.Render(text)
}

// Success renders a completed-action line.
func Success(format string, args ...any) string {
	return success.Render("✓ ") + fmt.Sprintf(format, args...)
}

// Warn renders a warning line.
func Warn(format string, args ...any) string {
	return warning.Render("! ") + fmt.Sprintf(format, args...)
}

// Error renders a failure line.
func Error(format string, args ...any) string {
	return failure.Render("✗ ") + fmt.Sprintf(format, args...)
}

// Muted renders secondary detail such as dry-run previews.
func Muted(text string) string {
	return muted.Render(text)
}

// File renders a file path for listings.
func File(path string) string {
	return accent.Render(path)
}

// Summary renders a key/value run summary, one pair per line.
func Summary(pairs ...string) string {
	var b strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		b.WriteString(muted.Render(pairs[i]+": ") + pairs[i+1] + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
