package tui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	huh "github.com/charmbracelet/huh"

	"github.com/docforge/docforge/internal/models"
)

// commonToggleLabels are the descriptions shown in the editor, keyed by
// the closed toggle set.
var commonToggleLabels = map[models.CommonToggle]string{
	models.TogglePycache:        "__pycache__ directories",
	models.ToggleTestFiles:      "test files",
	models.ToggleInitFiles:      "__init__ files",
	models.TogglePrivateMethods: "private methods",
	models.ToggleImports:        "import statements",
}

// ExclusionFlow edits an exclusion config interactively. Nothing is
// persisted here; the caller saves the returned config explicitly.
type ExclusionFlow struct {
	theme *huh.Theme
}

// NewExclusionFlow constructs the editor flow.
func NewExclusionFlow() *ExclusionFlow {
	return &ExclusionFlow{theme: NewHuhTheme()}
}

// Run presents the editor pre-filled from current and returns the edited
// config. A nil config with nil error means the user aborted; the
// confirmed flag reports whether the user asked to save.
func (f *ExclusionFlow) Run(current *models.ExclusionConfig) (*models.ExclusionConfig, bool, error) {
	selectedToggles := make([]string, 0)
	for _, toggle := range models.CommonToggles() {
		if current.Common(toggle) {
			selectedToggles = append(selectedToggles, string(toggle))
		}
	}

	functions := strings.Join(current.Functions(), ", ")
	files := strings.Join(current.Files(), ", ")
	directories := strings.Join(current.Directories(), ", ")
	save := true

	opts := make([]huh.Option[string], 0, len(commonToggleLabels))
	for _, toggle := range models.CommonToggles() {
		opts = append(opts, huh.NewOption(commonToggleLabels[toggle], string(toggle)))
	}

	keyMap := huh.NewDefaultKeyMap()
	keyMap.MultiSelect.Filter.SetEnabled(false)
	keyMap.MultiSelect.Toggle.SetKeys(" ")
	keyMap.MultiSelect.Toggle.SetHelp("space", "toggle exclusion")

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Common exclusions").
				Options(opts...).
				Value(&selectedToggles),
		).
			Title("Exclusion Configuration").
			Description("Choose what to leave out of the generated documentation."),
		huh.NewGroup(
			huh.NewInput().
				Title("Excluded functions").
				Description("Comma-separated. Matching is case-insensitive.").
				Value(&functions),
			huh.NewInput().
				Title("Excluded files").
				Description("Comma-separated paths.").
				Value(&files),
			huh.NewInput().
				Title("Excluded directories").
				Description("Comma-separated paths.").
				Value(&directories),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save exclusions?").
				Affirmative("Save").
				Negative("Discard").
				Value(&save),
		),
	).
		WithTheme(f.theme).
		WithShowHelp(true).
		WithProgramOptions(tea.WithAltScreen()).
		WithKeyMap(keyMap)

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil, false, nil
		}
		return nil, false, err
	}

	edited := models.NewExclusionConfig()
	for _, name := range splitList(functions) {
		edited.AddFunction(name)
	}
	for _, path := range splitList(files) {
		edited.AddFile(path)
	}
	for _, dir := range splitList(directories) {
		edited.AddDirectory(dir)
	}
	for _, raw := range selectedToggles {
		if err := edited.SetCommon(models.CommonToggle(raw), true); err != nil {
			return nil, false, fmt.Errorf("failed to apply toggle: %w", err)
		}
	}

	return edited, save, nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
