// Package app содержит главную модель TUI: список, поиск и панель воспроизведения
package app

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/hazadus/go-playlist/internal/data"
	"github.com/hazadus/go-playlist/internal/playback"
	tuiPlayer "github.com/hazadus/go-playlist/internal/tui/player"
	"github.com/hazadus/go-playlist/internal/tui/tracklist"
)

// chromeHeight строки, занятые поиском, панелью и подсказкой
const chromeHeight = 10

var helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).PaddingLeft(2)

const helpText = "space: play/pause • enter: play • ctrl+←/→: prev/next • ctrl+↑/↓: volume • 0-9: seek • /: search • q: quit"

// Media аудиоэлемент с каналом событий
type Media interface {
	playback.MediaElement
	Events() <-chan playback.Event
}

// Options зависимости главной модели
type Options struct {
	Media        Media
	Prober       playback.Prober
	Logger       *zap.Logger
	ProbeTimeout time.Duration
	// Volume - начальная громкость; nil означает громкость по умолчанию
	Volume       *float64
}

// continuationMsg возвращает результат фоновой работы в цикл событий
type continuationMsg struct {
	done func(error)
	err  error
}

// mediaEventMsg событие аудиоэлемента; ok=false, если канал закрыт
type mediaEventMsg struct {
	event playback.Event
	ok    bool
}

// scheduler копит фоновые задачи контроллера до конца текущего Update
type scheduler struct {
	pending []tea.Cmd
}

func (s *scheduler) Go(work func() error, done func(err error)) {
	s.pending = append(s.pending, func() tea.Msg {
		return continuationMsg{done: done, err: work()}
	})
}

func (s *scheduler) flush() tea.Cmd {
	cmds := s.pending
	s.pending = nil
	return tea.Batch(cmds...)
}

// MainModel главная модель. Реализует playback.View.
type MainModel struct {
	controller *playback.Controller
	media      Media
	scheduler  *scheduler
	logger     *zap.Logger

	tracklist *tracklist.Model
	panel     *tuiPlayer.Model
	search    textinput.Model

	// followedID - трек, к строке которого список прокручивался последним
	followedID int
	quitting   bool
}

// NewMainModel создает модель и контроллер поверх библиотеки
func NewMainModel(ctx context.Context, library *data.Library, opts Options) *MainModel {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "Search songs..."
	search.CharLimit = 64

	m := &MainModel{
		media:     opts.Media,
		scheduler: &scheduler{},
		logger:    logger.Named("tui"),
		tracklist: tracklist.NewModel(),
		panel:     tuiPlayer.NewModel(),
		search:    search,
	}

	m.controller = playback.New(ctx, library, playback.Options{
		Media:        opts.Media,
		View:         m,
		Prober:       opts.Prober,
		Scheduler:    m.scheduler,
		Logger:       logger,
		ProbeTimeout: opts.ProbeTimeout,
		Volume:       opts.Volume,
	})
	m.controller.Start()

	return m
}

// Init подписывается на события аудиоэлемента
func (m *MainModel) Init() tea.Cmd {
	return tea.Batch(m.listen(), m.scheduler.flush())
}

func (m *MainModel) listen() tea.Cmd {
	events := m.media.Events()
	return func() tea.Msg {
		event, ok := <-events
		return mediaEventMsg{event: event, ok: ok}
	}
}

// Update обрабатывает сообщения
func (m *MainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.tracklist.SetSize(msg.Width, max(msg.Height-chromeHeight, 3))
		m.panel.SetWidth(msg.Width)
		m.search.Width = max(msg.Width-4, 10)

	case continuationMsg:
		msg.done(msg.err)

	case mediaEventMsg:
		if !msg.ok {
			m.logger.Debug("канал событий аудиоэлемента закрыт")
			break
		}
		m.controller.HandleEvent(msg.event)
		cmds = append(cmds, m.listen())

	case tea.KeyMsg:
		cmds = append(cmds, m.handleKey(msg))

	default:
		if m.search.Focused() {
			var cmd tea.Cmd
			m.search, cmd = m.search.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	cmds = append(cmds, m.scheduler.flush())
	return m, tea.Batch(cmds...)
}

// handleKey обрабатывает клавиши. Обработанные клавиши дальше не передаются.
func (m *MainModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	if key == "ctrl+c" {
		return m.quit()
	}

	m.panel.ClearNotice()

	if m.search.Focused() {
		switch key {
		case "esc", "enter":
			m.search.Blur()
			return nil
		}

		before := m.search.Value()
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		if m.search.Value() != before {
			m.controller.Search(m.search.Value())
		}
		return cmd
	}

	switch key {
	case "q":
		return m.quit()
	case " ":
		m.controller.TogglePlayPause()
	case "enter":
		if index := m.tracklist.Index(); index >= 0 {
			m.controller.SelectTrack(index)
		}
	case "ctrl+right":
		m.controller.Next()
	case "ctrl+left":
		m.controller.Previous()
	case "ctrl+up":
		m.controller.VolumeUp()
	case "ctrl+down":
		m.controller.VolumeDown()
	case "/":
		return m.search.Focus()
	case "esc":
		if m.search.Value() != "" {
			m.search.SetValue("")
			m.controller.Search("")
		}
	case "0", "1", "2", "3", "4", "5", "6", "7", "8", "9":
		m.controller.Seek(float64(key[0]-'0') / 10)
	default:
		var cmd tea.Cmd
		m.tracklist, cmd = m.tracklist.Update(msg)
		return cmd
	}
	return nil
}

func (m *MainModel) quit() tea.Cmd {
	m.quitting = true
	m.media.Pause()
	return tea.Quit
}

// View отображает интерфейс
func (m *MainModel) View() string {
	if m.quitting {
		return ""
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.search.View(),
		"",
		m.tracklist.View(),
		"",
		m.panel.View(),
		helpStyle.Render(helpText),
	)
}

// RenderList отмечает текущий трек, только если он есть в выборке
func (m *MainModel) RenderList(tracks []data.Track, cursor int, playing bool) {
	current, ok := m.controller.Current()
	if !ok || cursor < 0 || cursor >= len(tracks) || tracks[cursor].ID != current.ID {
		cursor = -1
	}
	m.tracklist.SetTracks(tracks, cursor, playing)

	// Новый текущий трек прокручивается в видимую область
	if cursor >= 0 && current.ID != m.followedID {
		m.followedID = current.ID
		m.tracklist.Select(cursor)
	}
}

func (m *MainModel) SetProgress(fraction float64)        { m.panel.SetProgress(fraction) }
func (m *MainModel) SetTimeLabels(elapsed, total string) { m.panel.SetTimeLabels(elapsed, total) }
func (m *MainModel) SetNowPlaying(text string)           { m.panel.SetNowPlaying(text) }
func (m *MainModel) SetTransport(playing bool)           { m.panel.SetTransport(playing) }
func (m *MainModel) SetVolumeLabel(text string)          { m.panel.SetVolumeLabel(text) }
func (m *MainModel) Notify(text string)                  { m.panel.Notify(text) }
