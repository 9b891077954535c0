package tui

import (
	huh "github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// NewHuhTheme returns the huh theme used by every interactive flow.
func NewHuhTheme() *huh.Theme {
	theme := huh.ThemeCharm()

	purple := lipgloss.Color("#7D56F4")
	green := lipgloss.Color("#04B575")

	theme.Focused.Title = theme.Focused.Title.Foreground(purple).Bold(true)
	theme.Focused.SelectedOption = theme.Focused.SelectedOption.Foreground(purple)
	theme.Focused.SelectSelector = theme.Focused.SelectSelector.Foreground(purple)
	theme.Focused.MultiSelectSelector = theme.Focused.MultiSelectSelector.Foreground(purple)
	theme.Focused.SelectedPrefix = theme.Focused.SelectedPrefix.Foreground(green)
	theme.Focused.FocusedButton = theme.Focused.FocusedButton.Background(purple)

	return theme
}
