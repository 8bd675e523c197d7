// Package output prints styled vitrinectl messages.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
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
	labelStyle   = lipgloss.NewStyle().Width(16)
)

// Writer receives all output. Tests swap it.
var Writer io.Writer = os.Stdout

// Success prints a success message.
func Success(format string, args ...any) {
	fmt.Fprintf(Writer, "%s%s\n", successStyle.Render("✓ "), fmt.Sprintf(format, args...))
}

// Warning prints a warning message.
func Warning(format string, args ...any) {
	fmt.Fprintf(Writer, "%s%s\n", warningStyle.Render("⚠ "), fmt.Sprintf(format, args...))
}

// Error prints an error message.
func Error(format string, args ...any) {
	fmt.Fprintf(Writer, "%s%s\n", errorStyle.Render("✗ "), fmt.Sprintf(format, args...))
}

// Info prints an info message.
func Info(format string, args ...any) {
	fmt.Fprintf(Writer, "%s%s\n", infoStyle.Render("ℹ "), fmt.Sprintf(format, args...))
}

// Muted prints a dimmed message.
func Muted(format string, args ...any) {
	fmt.Fprintln(Writer, mutedStyle.Render(fmt.Sprintf(format, args...)))
}

// Section prints a section header.
func Section(title string) {
	fmt.Fprintln(Writer)
	fmt.Fprintln(Writer, primaryStyle.Render(title))
	fmt.Fprintln(Writer, mutedStyle.Render(strings.Repeat("═", lipgloss.Width(title))))
}

// Count prints one labelled row count.
func Count(label string, n int) {
	fmt.Fprintf(Writer, "  %s%d\n", labelStyle.Render(label), n)
}
