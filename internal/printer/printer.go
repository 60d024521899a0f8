// Package printer renders styled console output. Styling degrades to plain
// text when stdout is not a terminal, when the terminal reports no color
// support, or when the user asks for it with --no-color.
package printer

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Style definitions for consistent console output across the application.
var (
	faintStyle   = lipgloss.NewStyle().Faint(true)
	boldStyle    = lipgloss.NewStyle().Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2")) // Green
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")) // Red
	keyStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("6")) // Cyan
)

var noColor = !colorCapable()

// colorCapable reports whether stdout is a terminal with a color profile.
// CI environments get plain output even when a pty is attached.
func colorCapable() bool {
	if os.Getenv("CI") != "" {
		return false
	}
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return false
	}
	return termenv.ColorProfile() != termenv.Ascii
}

// SetNoColor forces styling off (or back to auto-detection when false).
func SetNoColor(disable bool) {
	if disable {
		noColor = true
		return
	}
	noColor = !colorCapable()
}

func render(style lipgloss.Style, text string) string {
	if noColor {
		return text
	}
	return style.Render(text)
}

// Faint returns text with faint styling.
func Faint(text string) string {
	return render(faintStyle, text)
}

// Bold returns text with bold styling.
func Bold(text string) string {
	return render(boldStyle, text)
}

// Success returns text with success (green) styling.
func Success(text string) string {
	return render(successStyle, text)
}

// Error returns text with error (red) styling.
func Error(text string) string {
	return render(errorStyle, text)
}

// Key returns text styled as a field label.
func Key(text string) string {
	return render(keyStyle, text)
}

// PrintError prints text with error styling to stderr.
func PrintError(text string) {
	fmt.Fprintln(os.Stderr, Error(text))
}

// PrintField prints a "label: value" line with the label styled.
func PrintField(label, value string) {
	fmt.Printf("%s %s\n", Key(label+":"), value)
}
