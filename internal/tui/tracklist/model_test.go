package tracklist

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hazadus/go-playlist/internal/data"
)

func testTracks() []data.Track {
	return []data.Track{
		{ID: 1, Artist: "Test Artist 1", Title: "Test Track 1", Duration: "3:00"},
		{ID: 2, Artist: "Test Artist 2", Title: "Test Track 2", Duration: "4:00"},
		{ID: 3, Artist: "Test Artist 3", Title: "Test Track 3", Duration: "5:00"},
	}
}

func TestSetTracks(t *testing.T) {
	model := NewModel()
	model.SetSize(80, 20)

	if model.Index() != -1 {
		t.Errorf("Пустой список должен возвращать -1, получено: %d", model.Index())
	}

	model.SetTracks(testTracks(), 1, true)

	if model.Len() != 3 {
		t.Fatalf("Expected 3 items, got %d", model.Len())
	}

	items := model.list.Items()
	for i, item := range items {
		row := item.(trackItem)
		if row.current != (i == 1) {
			t.Errorf("Строка %d: current = %v", i, row.current)
		}
		if !row.playing {
			t.Errorf("Строка %d: ожидался флаг playing", i)
		}
	}
}

func TestSelectionKeptOnRefresh(t *testing.T) {
	model := NewModel()
	model.SetSize(80, 20)
	model.SetTracks(testTracks(), -1, false)

	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyDown})
	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyDown})
	if model.Index() != 2 {
		t.Fatalf("Ожидалась строка 2, получено: %d", model.Index())
	}

	// Выборка сократилась - выделение прижимается к последней строке
	model.SetTracks(testTracks()[:2], -1, false)
	if model.Index() != 1 {
		t.Errorf("Ожидалась строка 1, получено: %d", model.Index())
	}
}

func TestEmptyView(t *testing.T) {
	model := NewModel()
	model.SetSize(80, 20)
	model.SetTracks(nil, -1, false)

	if !strings.Contains(model.View(), EmptyMessage) {
		t.Errorf("Пустой список должен показывать %q", EmptyMessage)
	}
}

func TestRenderRow(t *testing.T) {
	track := data.Track{ID: 1, Artist: "Artist", Title: "Title", Duration: "3:15"}

	row := renderRow(trackItem{track: track, current: true, playing: true}, false)
	if !strings.Contains(row, "♪") || !strings.Contains(row, "3:15") {
		t.Errorf("Строка текущего трека без отметки или длительности: %q", row)
	}

	row = renderRow(trackItem{track: track, current: true, playing: false}, true)
	if !strings.Contains(row, "‖") || !strings.Contains(row, ">") {
		t.Errorf("Строка на паузе должна быть выделена: %q", row)
	}

	row = renderRow(trackItem{track: track}, false)
	if strings.Contains(row, "♪") || strings.Contains(row, "‖") {
		t.Errorf("Обычная строка не должна иметь отметку: %q", row)
	}
}

func TestSelectScrollsToRow(t *testing.T) {
	model := NewModel()
	model.SetSize(80, 6)

	tracks := make([]data.Track, 0, 30)
	for i := 1; i <= 30; i++ {
		tracks = append(tracks, data.Track{ID: i, Artist: "Artist", Title: "Track", Duration: "1:00"})
	}
	model.SetTracks(tracks, -1, false)

	model.Select(25)
	if model.Index() != 25 {
		t.Errorf("Ожидалась строка 25, получено: %d", model.Index())
	}
	if model.list.Paginator.Page == 0 {
		t.Error("Список должен перейти на страницу с выделенной строкой")
	}

	// Строки вне списка игнорируются
	model.Select(99)
	if model.Index() != 25 {
		t.Errorf("Выделение не должно меняться, получено: %d", model.Index())
	}
}
