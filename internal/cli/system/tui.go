package system

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/apptbook/internal/cli"
	"github.com/julianstephens/apptbook/internal/logger"
	"github.com/julianstephens/apptbook/internal/tui"
)

type TuiCmd struct {
	Route string `arg:"" optional:"" default:"list" help:"Screen to open: list, add, edit/{id} or details/{id}."`
}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	route, err := tui.ParseRoute(c.Route)
	if err != nil {
		return err
	}

	// Perform automatic backup on TUI startup (after successful load)
	ctx.PerformAutomaticBackup()

	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := ctx.Appointments().WatchExternal(runCtx); err != nil {
			logger.Warn("External change feed stopped", "error", err)
		}
	}()

	ctrl := ctx.Controller(runCtx)
	defer ctrl.Close()

	p := tea.NewProgram(tui.NewModel(runCtx, ctrl, route), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui exited: %w", err)
	}

	if err := ctrl.Wait(); err != nil {
		return fmt.Errorf("some changes were not saved: %w", err)
	}
	return nil
}
