package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/tunedex/internal/models"
	"github.com/desertthunder/tunedex/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	RunView ViewState = iota
	ResultView
)

// recentLines caps the scrollback of per-entry outcome lines.
const recentLines = 8

// Model represents the TUI application state for a pipeline run.
type Model struct {
	ctx          context.Context
	view         ViewState
	engine       *tasks.EnhanceEngine
	opts         tasks.EnhanceOpts
	width        int
	spin         spinner.Model
	bar          progress.Model
	progressChan chan tasks.ProgressUpdate
	update       tasks.ProgressUpdate
	recent       []string
	result       *tasks.EnhanceResult
	err          error
}

type progressUpdateMsg tasks.ProgressUpdate

type runCompleteMsg struct {
	result *tasks.EnhanceResult
	err    error
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, engine *tasks.EnhanceEngine, opts tasks.EnhanceOpts) *Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.title

	return &Model{
		ctx:    ctx,
		view:   RunView,
		engine: engine,
		opts:   opts,
		spin:   sp,
		bar:    progress.New(progress.WithDefaultGradient()),
	}
}

// Init starts the enhancement run and the spinner tick.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.startRun(), m.spin.Tick)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.bar.Width = msg.Width - 8
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case progressUpdateMsg:
		m.update = tasks.ProgressUpdate(msg)
		if m.update.Phase == tasks.Enhance && m.update.Data != nil {
			m.recent = append(m.recent, m.update.Message)
			if len(m.recent) > recentLines {
				m.recent = m.recent[len(m.recent)-recentLines:]
			}
		}
		return m, m.waitForProgress()

	case runCompleteMsg:
		m.result = msg.result
		m.err = msg.err
		m.view = ResultView
		if m.progressChan != nil {
			m.progressChan = nil
		}
		return m, tea.Quit
	}

	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case RunView:
		return m.renderRun()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) startRun() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)
	progressChan := m.progressChan

	go func() {
		result, err := m.engine.Run(m.ctx, progressChan, m.opts)
		m.result = result
		m.err = err
		close(progressChan)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		if m.progressChan == nil {
			return runCompleteMsg{result: m.result, err: m.err}
		}

		update, ok := <-m.progressChan
		if !ok {
			return runCompleteMsg{result: m.result, err: m.err}
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderRun() string {
	title := styles.title.Render("Enhancing titles")

	var bar string
	if m.update.Phase == tasks.Enhance && m.update.Total > 0 {
		bar = m.bar.ViewAs(float64(m.update.Step) / float64(m.update.Total))
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s\n%s %s\n", title, m.spin.View(), m.update.Message))
	if bar != "" {
		b.WriteString(fmt.Sprintf("\n%s\n", bar))
	}
	if len(m.recent) > 0 {
		b.WriteString("\n")
		for _, line := range m.recent {
			b.WriteString(styles.help.Render(line) + "\n")
		}
	}
	b.WriteString("\n" + styles.help.Render("q to quit"))
	return b.String()
}

func (m *Model) renderResult() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Run failed: %v", m.err))
	}
	if m.result == nil {
		return styles.err.Render("No result available")
	}

	header := styles.ok.Render("✓ Run complete")
	if !m.result.Completed {
		header = styles.warn.Render("Run interrupted - progress saved, rerun to resume")
	}

	return fmt.Sprintf("%s\n%s", header, statsBlock(m.result.Stats))
}

func statsBlock(stats models.RunStats) string {
	return fmt.Sprintf(
		"Processed: %d\nMatched: %d\nExpanded: %d\nUnmatched: %d\nFiltered: %d\nRows out: %d",
		stats.Processed, stats.Matched, stats.Expanded, stats.Unmatched, stats.Filtered, stats.Rows,
	)
}
