// Package tui holds the interactive surfaces of the CLI: the progress
// displays, the exclusion editor and the shared styling.
package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/docforge/docforge/internal/generation"
	"github.com/docforge/docforge/internal/models"
	"github.com/docforge/docforge/internal/upload"
)

// progressItem is the common shape both progress sources reduce to.
type progressItem struct {
	Percent int
	Label   string
}

type (
	progressItemMsg   progressItem
	progressClosedMsg struct{}
)

// stopFunc abandons the underlying operation when the user quits.
type stopFunc func()

// progressModel renders one percent-based progress sequence.
type progressModel struct {
	title    string
	items    <-chan progressItem
	stop     stopFunc
	progress progress.Model

	current  progressItem
	done     bool
	quitting bool
}

func newProgressModel(title string, items <-chan progressItem, stop stopFunc) progressModel {
	return progressModel{
		title: title,
		items: items,
		stop:  stop,
		progress: progress.New(
			progress.WithDefaultGradient(),
			progress.WithWidth(40),
		),
	}
}

func (m progressModel) Init() tea.Cmd {
	return m.waitForItem()
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			if m.stop != nil {
				m.stop()
			}
			return m, tea.Quit
		}

	case progressItemMsg:
		m.current = progressItem(msg)
		return m, tea.Batch(
			m.progress.SetPercent(float64(m.current.Percent)/100),
			m.waitForItem(),
		)

	case progressClosedMsg:
		m.done = true
		return m, tea.Quit

	case progress.FrameMsg:
		updated, cmd := m.progress.Update(msg)
		m.progress = updated.(progress.Model)
		return m, cmd
	}

	return m, nil
}

func (m progressModel) View() string {
	if m.quitting {
		return SubtleStyle.Render("Continuing in the background.\n")
	}
	if m.done {
		return ""
	}

	label := m.current.Label
	if label == "" {
		label = "working"
	}

	return fmt.Sprintf("%s\n%s %s %3d%%\n%s\n",
		TitleStyle.Render(m.title),
		StepStyle.Render(label),
		m.progress.View(),
		m.current.Percent,
		HelpStyle.Render("q to continue in background"),
	)
}

// waitForItem blocks on the sequence outside Update.
func (m progressModel) waitForItem() tea.Cmd {
	return func() tea.Msg {
		item, ok := <-m.items
		if !ok {
			return progressClosedMsg{}
		}
		return progressItemMsg(item)
	}
}

// RunJobProgress displays a generation job until it settles or the user
// backgrounds it. The job's terminal error, if any, is returned.
func RunJobProgress(title string, job *generation.Job) error {
	items := make(chan progressItem)
	go func() {
		defer close(items)
		for event := range job.Events() {
			items <- progressItem{
				Percent: event.Percent,
				Label:   stepLabel(event.Step),
			}
		}
	}()

	model := newProgressModel(title, items, job.Stop)
	_, runErr := tea.NewProgram(model).Run()
	// unblock the forwarder if the display quit early
	go func() {
		for range items {
		}
	}()
	if runErr != nil {
		return fmt.Errorf("progress display failed: %w", runErr)
	}

	_, err := job.Wait()
	return err
}

// RunIngestionProgress displays an ingestion until it settles. Unlike a
// generation job an ingestion cannot be backgrounded meaningfully, so
// quitting just detaches the display.
func RunIngestionProgress(title string, ingestion *upload.Ingestion) (*upload.IngestResult, error) {
	items := make(chan progressItem)
	go func() {
		defer close(items)
		for update := range ingestion.Progress() {
			item := progressItem{Percent: update.Percent, Label: "uploading"}
			if update.TotalBytes > 0 {
				item.Label = fmt.Sprintf("uploading %d/%d bytes", update.SentBytes, update.TotalBytes)
			}
			items <- item
		}
	}()

	model := newProgressModel(title, items, nil)
	_, runErr := tea.NewProgram(model).Run()
	go func() {
		for range items {
		}
	}()
	if runErr != nil {
		return nil, fmt.Errorf("progress display failed: %w", runErr)
	}

	return ingestion.Wait()
}

func stepLabel(step models.JobStep) string {
	switch step {
	case models.StepInitializing:
		return "initializing"
	case models.StepProcessingFiles:
		return "processing files"
	case models.StepGenerating:
		return "generating content"
	case models.StepFinalizing:
		return "finalizing"
	case models.StepDone:
		return "done"
	default:
		return string(step)
	}
}
