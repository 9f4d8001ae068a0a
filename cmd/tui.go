package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/refinery/internal/review"
	"github.com/desertthunder/refinery/internal/shared"
	"github.com/desertthunder/refinery/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the full-screen review interface.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensureAuthenticated(ctx, cmd); err != nil {
		return err
	}

	cutoff := int(cmd.Int("cutoff"))
	if cutoff <= 0 {
		cutoff = r.config.Review.CutoffYear
	}
	if cutoff <= 0 {
		cutoff = review.DefaultCutoffYear
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/refinery-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	model := ui.NewModel(ctx, r.spotify, cutoff)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
