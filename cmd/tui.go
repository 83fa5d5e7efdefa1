package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/tunedex/internal/shared"
	"github.com/desertthunder/tunedex/internal/tasks"
	"github.com/desertthunder/tunedex/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI for an enhancement run.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if r.engine == nil {
		return fmt.Errorf("%w: enhancement engine not initialized", shared.ErrServiceUnavailable)
	}

	outputPath := cmd.String("output")
	if outputPath == "" {
		outputPath = r.config.Output.Path
	}

	opts := tasks.EnhanceOpts{
		InputPath:  cmd.String("input"),
		OutputPath: outputPath,
		Resume:     cmd.Bool("resume"),
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/tunedex-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	model := ui.NewModel(ctx, r.engine, opts)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
