package app

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hazadus/go-playlist/internal/data"
	"github.com/hazadus/go-playlist/internal/playback"
)

// fakeMedia аудиоэлемент, который сразу готов к запуску
type fakeMedia struct {
	source   string
	playing  bool
	current  time.Duration
	duration time.Duration
	volume   float64
	origins  []playback.PlayOrigin
	events   chan playback.Event
}

func newFakeMedia() *fakeMedia {
	events := make(chan playback.Event)
	close(events)
	return &fakeMedia{duration: 3 * time.Minute, events: events}
}

func (f *fakeMedia) SetSource(uri string) {
	f.source = uri
	f.playing = false
	f.current = 0
}
func (f *fakeMedia) Source() string { return f.source }
func (f *fakeMedia) Play(origin playback.PlayOrigin) error {
	f.origins = append(f.origins, origin)
	f.playing = true
	return nil
}
func (f *fakeMedia) Pause()                        { f.playing = false }
func (f *fakeMedia) CurrentTime() time.Duration    { return f.current }
func (f *fakeMedia) Seek(pos time.Duration) error  { f.current = pos; return nil }
func (f *fakeMedia) Duration() time.Duration       { return f.duration }
func (f *fakeMedia) Ready() bool                   { return f.source != "" }
func (f *fakeMedia) SetVolume(level float64)       { f.volume = level }
func (f *fakeMedia) Events() <-chan playback.Event { return f.events }
func (f *fakeMedia) Generation() uint64            { return 0 }

type fakeProber struct {
	missing map[string]bool
}

func (f *fakeProber) Probe(ctx context.Context, uri string) error {
	if f.missing[uri] {
		return playback.ErrNotFound
	}
	return nil
}

func testLibrary(n int) *data.Library {
	library := data.NewLibrary()
	for i := 1; i <= n; i++ {
		library.AddTrack(data.Track{
			Title:    fmt.Sprintf("Song %d", i),
			Artist:   fmt.Sprintf("Artist %d", i),
			Duration: "3:00",
			Source:   fmt.Sprintf("https://example.com/song%d.mp3", i),
		})
	}
	return library
}

func newTestModel(t *testing.T, n int) (*MainModel, *fakeMedia, *fakeProber) {
	t.Helper()
	media := newFakeMedia()
	prober := &fakeProber{missing: map[string]bool{}}
	volume := 0.8
	model := NewMainModel(context.Background(), testLibrary(n), Options{
		Media:  media,
		Prober: prober,
		Volume: &volume,
	})
	model.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	// Мигающий курсор порождает команды с таймером
	model.search.Cursor.SetMode(cursor.CursorStatic)
	return model, media, prober
}

// drain выполняет команды и возвращает продолжения в модель, как это делает цикл bubbletea
func drain(t *testing.T, m *MainModel, cmd tea.Cmd) {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 1000 {
			t.Fatal("Слишком много команд")
		}
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		switch msg := next().(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case continuationMsg:
			_, more := m.Update(msg)
			queue = append(queue, more)
		}
	}
}

func press(t *testing.T, m *MainModel, key tea.KeyMsg) {
	t.Helper()
	_, cmd := m.Update(key)
	drain(t, m, cmd)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestInitialView(t *testing.T) {
	model, media, _ := newTestModel(t, 3)

	view := model.View()
	if !strings.Contains(view, "Select a song from the playlist to play") {
		t.Error("Ожидалось начальное приглашение")
	}
	if !strings.Contains(view, "Volume: 80%") {
		t.Error("Ожидалась метка громкости")
	}
	if model.tracklist.Len() != 3 {
		t.Errorf("Ожидалось 3 строки, получено: %d", model.tracklist.Len())
	}
	if media.volume != 0.8 {
		t.Errorf("Громкость не передана аудиоэлементу: %v", media.volume)
	}
}

func TestEnterPlaysSelectedRow(t *testing.T) {
	model, media, _ := newTestModel(t, 3)

	press(t, model, tea.KeyMsg{Type: tea.KeyDown})
	press(t, model, tea.KeyMsg{Type: tea.KeyEnter})

	if media.source != "https://example.com/song2.mp3" {
		t.Errorf("Ожидался источник song2, получено: %s", media.source)
	}
	if !media.playing {
		t.Error("Трек должен играть")
	}
	if model.panel.NowPlaying() != "Now Playing: Song 2 by Artist 2" {
		t.Errorf("Неверная строка: %s", model.panel.NowPlaying())
	}
	if model.panel.TransportLabel() != "⏸ Pause" {
		t.Errorf("Ожидалась подпись паузы, получено: %s", model.panel.TransportLabel())
	}

	// Повторный выбор играющего трека ставит паузу
	press(t, model, tea.KeyMsg{Type: tea.KeyEnter})
	if media.playing {
		t.Error("Повторный выбор должен поставить паузу")
	}
}

func TestSpaceToggles(t *testing.T) {
	model, media, _ := newTestModel(t, 3)

	press(t, model, tea.KeyMsg{Type: tea.KeySpace})
	if media.source != "https://example.com/song1.mp3" || !media.playing {
		t.Fatalf("Пробел без источника должен запускать первый трек: %s, %v", media.source, media.playing)
	}

	press(t, model, tea.KeyMsg{Type: tea.KeySpace})
	if media.playing {
		t.Error("Пробел должен ставить паузу")
	}
	if model.panel.NowPlaying() != "Paused: Song 1" {
		t.Errorf("Неверная строка: %s", model.panel.NowPlaying())
	}

	press(t, model, tea.KeyMsg{Type: tea.KeySpace})
	if !media.playing {
		t.Error("Пробел должен возобновлять воспроизведение")
	}
}

func TestNextPreviousKeys(t *testing.T) {
	model, media, _ := newTestModel(t, 3)

	press(t, model, tea.KeyMsg{Type: tea.KeyEnter})
	press(t, model, tea.KeyMsg{Type: tea.KeyCtrlLeft})
	if media.source != "https://example.com/song3.mp3" {
		t.Errorf("Previous с первого трека должен переходить на последний, получено: %s", media.source)
	}

	press(t, model, tea.KeyMsg{Type: tea.KeyCtrlRight})
	if media.source != "https://example.com/song1.mp3" {
		t.Errorf("Next с последнего трека должен переходить на первый, получено: %s", media.source)
	}
}

func TestTransportKeysFollowPlayingRow(t *testing.T) {
	model, media, _ := newTestModel(t, 30)
	model.Update(tea.WindowSizeMsg{Width: 120, Height: 16})

	press(t, model, tea.KeyMsg{Type: tea.KeyEnter})
	press(t, model, tea.KeyMsg{Type: tea.KeyCtrlLeft})

	if media.source != "https://example.com/song30.mp3" {
		t.Fatalf("Ожидался последний трек, получено: %s", media.source)
	}
	if model.tracklist.Index() != 29 {
		t.Errorf("Выделение должно перейти к играющей строке 29, получено: %d", model.tracklist.Index())
	}
	if !strings.Contains(model.View(), "Song 30") {
		t.Error("Играющая строка должна быть видна")
	}

	// Ручная навигация не сбрасывается, пока трек не сменился
	press(t, model, tea.KeyMsg{Type: tea.KeyUp})
	press(t, model, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	if model.tracklist.Index() != 28 {
		t.Errorf("Пауза не должна двигать выделение, получено: %d", model.tracklist.Index())
	}
}

func TestTrackEndedAdvances(t *testing.T) {
	model, media, _ := newTestModel(t, 2)

	press(t, model, tea.KeyMsg{Type: tea.KeyEnter})

	_, cmd := model.Update(mediaEventMsg{event: playback.Event{Kind: playback.EventEnded}, ok: true})
	drain(t, model, cmd)

	if media.source != "https://example.com/song2.mp3" {
		t.Errorf("После окончания должен играть следующий трек, получено: %s", media.source)
	}
	if last := media.origins[len(media.origins)-1]; last != playback.OriginAuto {
		t.Errorf("Запуск по окончании должен быть автоматическим, получено: %v", last)
	}
}

func TestVolumeKeys(t *testing.T) {
	model, media, _ := newTestModel(t, 1)

	press(t, model, tea.KeyMsg{Type: tea.KeyCtrlUp})
	if !strings.Contains(model.View(), "Volume: 90%") {
		t.Error("Ожидалась громкость 90%")
	}

	press(t, model, tea.KeyMsg{Type: tea.KeyCtrlDown})
	press(t, model, tea.KeyMsg{Type: tea.KeyCtrlDown})
	if !strings.Contains(model.View(), "Volume: 70%") {
		t.Error("Ожидалась громкость 70%")
	}
	if media.volume < 0.69 || media.volume > 0.71 {
		t.Errorf("Громкость аудиоэлемента: %v", media.volume)
	}
}

func TestDigitSeeks(t *testing.T) {
	model, media, _ := newTestModel(t, 1)

	press(t, model, tea.KeyMsg{Type: tea.KeyEnter})
	press(t, model, runes("5"))

	if media.current != 90*time.Second {
		t.Errorf("Ожидалась позиция 1:30, получено: %v", media.current)
	}
	if model.panel.Fraction() != 0.5 {
		t.Errorf("Ожидался прогресс 0.5, получено: %v", model.panel.Fraction())
	}
}

func TestSearchFocus(t *testing.T) {
	model, media, _ := newTestModel(t, 3)

	press(t, model, runes("/"))
	if !model.search.Focused() {
		t.Fatal("Поиск должен получить фокус")
	}

	press(t, model, runes("2"))
	if model.tracklist.Len() != 1 {
		t.Errorf("Ожидалась 1 строка после поиска, получено: %d", model.tracklist.Len())
	}

	// Пробел в поиске - это символ, а не пауза
	press(t, model, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	if media.source != "" {
		t.Error("Пробел в поле поиска не должен запускать воспроизведение")
	}
	if model.tracklist.Len() != 0 {
		t.Errorf("Запрос '2 ' не должен ничего находить, получено: %d", model.tracklist.Len())
	}

	press(t, model, tea.KeyMsg{Type: tea.KeyBackspace})
	if model.tracklist.Len() != 1 {
		t.Errorf("Ожидалась 1 строка после удаления пробела, получено: %d", model.tracklist.Len())
	}

	press(t, model, tea.KeyMsg{Type: tea.KeyEsc})
	if model.search.Focused() {
		t.Error("Esc должен снимать фокус с поиска")
	}

	press(t, model, tea.KeyMsg{Type: tea.KeyEnter})
	if media.source != "https://example.com/song2.mp3" {
		t.Errorf("Enter должен запускать найденный трек, получено: %s", media.source)
	}

	// Esc вне поиска сбрасывает запрос
	press(t, model, tea.KeyMsg{Type: tea.KeyEsc})
	if model.tracklist.Len() != 3 {
		t.Errorf("Ожидалось 3 строки после сброса, получено: %d", model.tracklist.Len())
	}
}

func TestSearchEmptyResult(t *testing.T) {
	model, _, _ := newTestModel(t, 3)

	press(t, model, runes("/"))
	press(t, model, runes("zzz"))

	if !strings.Contains(model.View(), "No songs found. Try a different search.") {
		t.Error("Ожидалось сообщение о пустом результате")
	}

	// Enter в пустой выборке ничего не делает
	press(t, model, tea.KeyMsg{Type: tea.KeyEnter})
	press(t, model, tea.KeyMsg{Type: tea.KeyEnter})
}

func TestMissingFileNotice(t *testing.T) {
	model, media, prober := newTestModel(t, 2)
	prober.missing["https://example.com/song1.mp3"] = true

	press(t, model, tea.KeyMsg{Type: tea.KeyEnter})

	if media.source != "" {
		t.Error("Отсутствующий файл не должен привязываться")
	}
	if model.panel.Notice() != "File not found: Song 1" {
		t.Errorf("Неверное уведомление: %s", model.panel.Notice())
	}

	// Следующая клавиша убирает уведомление
	press(t, model, tea.KeyMsg{Type: tea.KeyDown})
	if model.panel.Notice() != "" {
		t.Error("Уведомление должно исчезнуть после нажатия клавиши")
	}
}

func TestQuit(t *testing.T) {
	model, _, _ := newTestModel(t, 1)

	_, cmd := model.Update(runes("q"))
	if cmd == nil {
		t.Fatal("Ожидалась команда выхода")
	}

	found := false
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		switch msg := next().(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case tea.QuitMsg:
			found = true
		}
	}
	if !found {
		t.Error("Ожидалось сообщение tea.QuitMsg")
	}
	if model.View() != "" {
		t.Error("После выхода экран должен быть пустым")
	}
}
