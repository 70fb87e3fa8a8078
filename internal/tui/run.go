package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/BuzzLyutic/task-sync/internal/engine"
)

// Run shows the TUI until the user quits or ctx is cancelled.
func Run(ctx context.Context, e *engine.Engine) error {
	p := tea.NewProgram(New(ctx, e), tea.WithAltScreen(), tea.WithContext(ctx))

	unsubscribe := e.State.Subscribe(func() {
		// Send блокируется, пока цикл событий занят Update, поэтому из горутины.
		go p.Send(stateChangedMsg{})
	})
	defer unsubscribe()

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
