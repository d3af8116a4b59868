// Package player содержит панель воспроизведения: текущий трек, прогресс, громкость
package player

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

const (
	// PlayLabel и PauseLabel подписи кнопки транспорта
	PlayLabel  = "▶ Play"
	PauseLabel = "⏸ Pause"

	maxBarWidth = 60
)

var (
	nowPlayingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5f87ff"))

	transportStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder())

	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff5f5f")).
			Italic(true)
)

// Model панель воспроизведения. Состояние задает контроллер через сеттеры.
type Model struct {
	bar        progress.Model
	fraction   float64
	elapsed    string
	total      string
	nowPlaying string
	playing    bool
	volume     string
	notice     string
}

// NewModel создает панель
func NewModel() *Model {
	bar := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	bar.Width = 40

	return &Model{
		bar:     bar,
		elapsed: "0:00",
		total:   "0:00",
	}
}

// SetWidth подгоняет ширину прогресс-бара под окно
func (m *Model) SetWidth(width int) {
	m.bar.Width = max(10, min(maxBarWidth, width-24))
}

func (m *Model) SetProgress(fraction float64) { m.fraction = fraction }

func (m *Model) SetTimeLabels(elapsed, total string) {
	m.elapsed = elapsed
	m.total = total
}

func (m *Model) SetNowPlaying(text string)  { m.nowPlaying = text }
func (m *Model) SetTransport(playing bool)  { m.playing = playing }
func (m *Model) SetVolumeLabel(text string) { m.volume = text }
func (m *Model) Notify(text string)         { m.notice = text }

// ClearNotice убирает уведомление
func (m *Model) ClearNotice() { m.notice = "" }

// Notice возвращает текст уведомления
func (m *Model) Notice() string { return m.notice }

// NowPlaying возвращает строку текущего трека
func (m *Model) NowPlaying() string { return m.nowPlaying }

// Fraction возвращает заполнение прогресс-бара
func (m *Model) Fraction() float64 { return m.fraction }

// TransportLabel возвращает подпись кнопки транспорта
func (m *Model) TransportLabel() string {
	if m.playing {
		return PauseLabel
	}
	return PlayLabel
}

// View отображает панель
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(nowPlayingStyle.Render(m.nowPlaying))
	b.WriteString("\n")

	controls := lipgloss.JoinHorizontal(lipgloss.Center,
		transportStyle.Render(m.TransportLabel()),
		"  ",
		m.bar.ViewAs(m.fraction),
		"  ",
		timeStyle.Render(fmt.Sprintf("%s / %s", m.elapsed, m.total)),
		"  ",
		timeStyle.Render(m.volume),
	)
	b.WriteString(controls)

	if m.notice != "" {
		b.WriteString("\n")
		b.WriteString(noticeStyle.Render(m.notice))
	}

	return b.String()
}
