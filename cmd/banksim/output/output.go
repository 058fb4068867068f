package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	// Color styles for terminal output
	colorSuccess = lipgloss.Color("#10B981")
	colorWarning = lipgloss.Color("#F59E0B")
	colorError   = lipgloss.Color("#EF4444")
	colorInfo    = lipgloss.Color("#3B82F6")
	colorMuted   = lipgloss.Color("#6B7280")
	colorPrimary = lipgloss.Color("#7C3AED")

	successStyle = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(colorWarning).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(colorInfo)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	primaryStyle = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
)

// Out is where every helper writes. Tests swap it for a buffer.
var Out io.Writer = os.Stdout

// Success prints a success message
func Success(format string, args ...interface{}) {
	fmt.Fprint(Out, successStyle.Render("✓ "))
	fmt.Fprintf(Out, format+"\n", args...)
}

// Warning prints a warning message
func Warning(format string, args ...interface{}) {
	fmt.Fprint(Out, warningStyle.Render("⚠ "))
	fmt.Fprintf(Out, format+"\n", args...)
}

// Error prints an error message
func Error(format string, args ...interface{}) {
	fmt.Fprint(Out, errorStyle.Render("✗ "))
	fmt.Fprintf(Out, format+"\n", args...)
}

// Info prints an info message
func Info(format string, args ...interface{}) {
	fmt.Fprint(Out, infoStyle.Render("ℹ "))
	fmt.Fprintf(Out, format+"\n", args...)
}

// Muted prints a muted message
func Muted(format string, args ...interface{}) {
	fmt.Fprintln(Out, mutedStyle.Render(fmt.Sprintf(format, args...)))
}

// Section prints a section header
func Section(title string) {
	fmt.Fprintln(Out)
	fmt.Fprintln(Out, primaryStyle.Render(title))
	fmt.Fprintln(Out, mutedStyle.Render(strings.Repeat("═", lipgloss.Width(title))))
}
