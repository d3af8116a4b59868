// Package tui содержит текстовый пользовательский интерфейс плейлиста
package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hazadus/go-playlist/internal/data"
	"github.com/hazadus/go-playlist/internal/tui/app"
)

// App представляет основное TUI приложение
type App struct {
	library *data.Library
	options app.Options
}

// NewApp создает новый экземпляр TUI приложения
func NewApp(library *data.Library, options app.Options) *App {
	return &App{
		library: library,
		options: options,
	}
}

// Run запускает TUI и блокируется до выхода. Аудиоэлемент закрывает вызывающий.
func (tuiApp *App) Run(ctx context.Context) error {
	model := app.NewMainModel(ctx, tuiApp.library, tuiApp.options)

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
