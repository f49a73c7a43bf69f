// Package style wraps lipgloss for the few decorations the CLI prints.
package style

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/malcr/malcr/key"
	"github.com/spf13/viper"
)

// New returns an empty style.
func New() lipgloss.Style {
	return lipgloss.NewStyle()
}

// Fg returns a renderer painting text in c. It is a no-op with colors disabled.
func Fg(c lipgloss.Color) func(string) string {
	return func(s string) string {
		if !viper.GetBool(key.CliColored) {
			return s
		}
		return New().Foreground(c).Render(s)
	}
}

var (
	Faint  = func(s string) string { return New().Faint(true).Render(s) }
	Bold   = func(s string) string { return New().Bold(true).Render(s) }
	Italic = func(s string) string { return New().Italic(true).Render(s) }
)
