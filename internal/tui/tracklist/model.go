// Package tracklist содержит список треков текущей выборки
package tracklist

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hazadus/go-playlist/internal/data"
	"github.com/hazadus/go-playlist/internal/utils"
)

// EmptyMessage показывается, когда поиск ничего не нашел
const EmptyMessage = "No songs found. Try a different search."

var (
	titleStyle        = lipgloss.NewStyle().MarginLeft(2)
	itemStyle         = lipgloss.NewStyle().PaddingLeft(4)
	selectedItemStyle = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("170"))
	currentStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	emptyStyle        = lipgloss.NewStyle().PaddingLeft(4).Foreground(lipgloss.Color("241"))
	paginationStyle   = list.DefaultStyles().PaginationStyle.PaddingLeft(4)
)

// trackItem строка списка
type trackItem struct {
	track   data.Track
	current bool // позиция курсора воспроизведения
	playing bool
}

func (i trackItem) FilterValue() string {
	return i.track.Title + " " + i.track.Artist
}

// trackItemDelegate рисует строку как таблицу: отметка | исполнитель | название | длительность
type trackItemDelegate struct{}

func (d trackItemDelegate) Height() int                             { return 1 }
func (d trackItemDelegate) Spacing() int                            { return 0 }
func (d trackItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d trackItemDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(trackItem)
	if !ok {
		return
	}

	fmt.Fprint(w, renderRow(i, index == m.Index()))
}

func renderRow(i trackItem, selected bool) string {
	mark := " "
	if i.current {
		mark = "♪"
		if !i.playing {
			mark = "‖"
		}
	}

	str := fmt.Sprintf("%s %-24s %-40s %s",
		mark,
		utils.TruncateString(i.track.Artist, 24),
		utils.TruncateString(i.track.Title, 40),
		i.track.Duration)

	if i.current && i.playing {
		str = currentStyle.Render(str)
	}
	if selected {
		return selectedItemStyle.Render("> " + str)
	}
	return itemStyle.Render(str)
}

// Model список треков. Фильтрация выполняется контроллером, встроенная отключена.
type Model struct {
	list list.Model
}

// NewModel создает пустой список
func NewModel() *Model {
	l := list.New(nil, trackItemDelegate{}, 0, 0)
	l.Title = "Playlist"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = titleStyle
	l.Styles.PaginationStyle = paginationStyle

	return &Model{list: l}
}

// SetTracks заменяет строки. cursor - позиция текущего трека в выборке или -1.
func (m *Model) SetTracks(tracks []data.Track, cursor int, playing bool) {
	items := make([]list.Item, len(tracks))
	for i, track := range tracks {
		items[i] = trackItem{
			track:   track,
			current: i == cursor,
			playing: playing,
		}
	}

	selected := m.list.Index()
	m.list.SetItems(items)
	if selected >= len(items) {
		selected = len(items) - 1
	}
	if selected >= 0 {
		m.list.Select(selected)
	}
}

// Index возвращает выделенную строку или -1 для пустого списка
func (m *Model) Index() int {
	if m.Len() == 0 {
		return -1
	}
	return m.list.Index()
}

// Select выделяет строку и прокручивает список к ней
func (m *Model) Select(index int) {
	if index < 0 || index >= m.Len() {
		return
	}
	m.list.Select(index)
}

// Len возвращает количество строк
func (m *Model) Len() int {
	return len(m.list.Items())
}

// SetSize задает размеры списка
func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}

// Update обрабатывает навигацию по списку
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View отображает список
func (m *Model) View() string {
	if len(m.list.Items()) == 0 {
		return titleStyle.Render(m.list.Title) + "\n\n" + emptyStyle.Render(EmptyMessage)
	}
	return m.list.View()
}
