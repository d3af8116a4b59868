package data

import (
	"os"
	"path/filepath"
	"testing"
)

const testLibrary = `tracks:
  - id: 1
    title: Song 1
    artist: Artist 1
    duration: "3:45"
    src: Songs/song1.mp3
  - id: 2
    title: Song 2
    artist: Artist 2
    duration: "4:20"
    src: https://example.com/song2.mp3
`

func writeLibrary(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "library.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Ошибка записи библиотеки: %v", err)
	}
	return path
}

func TestLoadLibrary(t *testing.T) {
	path := writeLibrary(t, testLibrary)

	lib, err := LoadLibrary(path)
	if err != nil {
		t.Fatalf("Ошибка загрузки библиотеки: %v", err)
	}

	if len(lib.Tracks) != 2 {
		t.Fatalf("Ожидалось 2 трека, получено %d", len(lib.Tracks))
	}

	// Относительный путь раскрывается относительно файла библиотеки
	expected := filepath.Join(filepath.Dir(path), "Songs/song1.mp3")
	if got := lib.Tracks[0].URI(); got != expected {
		t.Errorf("Ожидался URI %s, получен %s", expected, got)
	}

	// Сетевые источники не меняются
	if got := lib.Tracks[1].URI(); got != "https://example.com/song2.mp3" {
		t.Errorf("Неожиданный URI: %s", got)
	}
}

func TestLoadLibraryMissingFile(t *testing.T) {
	lib, err := LoadLibrary(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Отсутствующий файл не должен быть ошибкой: %v", err)
	}
	if len(lib.Tracks) != 0 {
		t.Errorf("Ожидалась пустая библиотека, получено %d треков", len(lib.Tracks))
	}
}

func TestLoadLibraryDuplicateID(t *testing.T) {
	path := writeLibrary(t, `tracks:
  - id: 1
    title: A
  - id: 1
    title: B
`)

	if _, err := LoadLibrary(path); err == nil {
		t.Error("Ожидалась ошибка для повторяющихся ID")
	}
}

func TestAddTrackAndSave(t *testing.T) {
	path := writeLibrary(t, testLibrary)

	lib, err := LoadLibrary(path)
	if err != nil {
		t.Fatalf("Ошибка загрузки библиотеки: %v", err)
	}

	added := lib.AddTrack(Track{Title: "Song 3", Artist: "Artist 3", Source: "song3.mp3"})
	if added.ID != 3 {
		t.Errorf("Ожидался ID 3, получен %d", added.ID)
	}

	if err := lib.SaveLibrary(path); err != nil {
		t.Fatalf("Ошибка сохранения библиотеки: %v", err)
	}

	reloaded, err := LoadLibrary(path)
	if err != nil {
		t.Fatalf("Ошибка повторной загрузки: %v", err)
	}
	if len(reloaded.Tracks) != 3 {
		t.Fatalf("Ожидалось 3 трека, получено %d", len(reloaded.Tracks))
	}
	// В файл пишется исходный относительный путь
	if reloaded.Tracks[2].Source != "song3.mp3" {
		t.Errorf("Ожидался src song3.mp3, получен %s", reloaded.Tracks[2].Source)
	}
}

func TestTrackByIDAndDelete(t *testing.T) {
	lib := NewLibrary()
	lib.AddTrack(Track{Title: "A"})
	lib.AddTrack(Track{Title: "B"})

	track, err := lib.TrackByID(2)
	if err != nil {
		t.Fatalf("Трек не найден: %v", err)
	}
	if track.Title != "B" {
		t.Errorf("Ожидался трек B, получен %s", track.Title)
	}

	if err := lib.DeleteTrackByID(1); err != nil {
		t.Fatalf("Ошибка удаления: %v", err)
	}
	if _, err := lib.TrackByID(1); err == nil {
		t.Error("Удаленный трек не должен находиться")
	}
	if err := lib.DeleteTrackByID(42); err == nil {
		t.Error("Ожидалась ошибка при удалении несуществующего трека")
	}
}
