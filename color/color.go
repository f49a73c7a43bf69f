// Package color names the terminal colors the CLI uses.
package color

import "github.com/charmbracelet/lipgloss"

// New initializes a lipgloss.Color from an ANSI index or a hex value.
func New(value string) lipgloss.Color {
	return lipgloss.Color(value)
}

var (
	Red    = New("1")
	Green  = New("2")
	Yellow = New("3")
	Purple = New("5")
)

var (
	HiRed    = New("9")
	HiPurple = New("13")
)
