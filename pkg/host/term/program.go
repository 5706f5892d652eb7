package term

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/entrhq/ghostchat/pkg/logging"
)

// Run draws the host until Quit is called or ctx ends. Warnings logged by
// any component while it runs show in the status bar.
func (h *Host) Run(ctx context.Context, opts ...tea.ProgramOption) error {
	defer logging.Mirror(logging.LevelWarn, h.showEntry)()

	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	program := tea.NewProgram(newModel(h), opts...)

	done := make(chan struct{})
	defer close(done)
	go func() {
		// Forward host changes to the program as redraws.
		for {
			select {
			case <-done:
				return
			case <-h.changes:
				program.Send(refreshMsg{})
			}
		}
	}()

	if _, err := program.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("failed to run terminal host: %w", err)
	}
	return nil
}

func (h *Host) showEntry(e logging.Entry) {
	h.setStatus(fmt.Sprintf("%s %s: %s", e.Level, e.Component, e.Message))
}
