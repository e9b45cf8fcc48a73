package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"xianxia/internal/play"
	"xianxia/internal/session"
)

// Run boots the terminal client and blocks until it exits. saves may be nil.
func Run(ctx context.Context, p *play.Playthrough, saves session.Store[play.SaveData]) error {
	program := tea.NewProgram(newModel(ctx, p, saves), tea.WithContext(ctx), tea.WithAltScreen())
	_, err := program.Run()
	return err
}
