package tui

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	huh "github.com/charmbracelet/huh"

	"github.com/docforge/docforge/internal/upload"
)

// SelectBranch asks the user to pick a branch, preselecting the resolved
// default. An empty string with nil error means the user aborted.
func SelectBranch(info *upload.RepositoryInfo) (string, error) {
	selected := info.DefaultBranch

	opts := make([]huh.Option[string], 0, len(info.Branches))
	for _, branch := range info.Branches {
		label := branch
		if branch == info.DefaultBranch {
			label = branch + " (default)"
		}
		opts = append(opts, huh.NewOption(label, branch))
	}

	keyMap := huh.NewDefaultKeyMap()
	keyMap.Select.Filter.SetEnabled(false)
	keyMap.Select.Submit.SetKeys("enter", " ")
	keyMap.Select.Submit.SetHelp("space/enter", "select")

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Options(opts...).
				Value(&selected),
		).
			Title("Branch Selection").
			Description(fmt.Sprintf("Pick the branch of %s/%s to document.", info.Owner, info.Name)),
	).
		WithTheme(NewHuhTheme()).
		WithShowHelp(true).
		WithProgramOptions(tea.WithAltScreen()).
		WithKeyMap(keyMap)

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return "", nil
		}
		return "", err
	}

	return selected, nil
}
