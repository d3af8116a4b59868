// Package data содержит модель библиотеки треков и её загрузку из YAML файла
package data

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Track описывает один трек библиотеки
type Track struct {
	ID       int    `yaml:"id"`
	Title    string `yaml:"title"`
	Artist   string `yaml:"artist"`
	Album    string `yaml:"album,omitempty"`
	Duration string `yaml:"duration"` // Отображаемая длительность "M:SS", может быть неточной до загрузки файла
	Source   string `yaml:"src"`      // Путь к файлу, http(s):// или s3:// URI

	resolved string
}

// URI возвращает адрес источника с учетом каталога библиотеки
func (t *Track) URI() string {
	if t.resolved != "" {
		return t.resolved
	}
	return t.Source
}

// Library хранит упорядоченный список треков
type Library struct {
	Tracks []Track `yaml:"tracks"`

	baseDir string
}

// NewLibrary создает пустую библиотеку
func NewLibrary() *Library {
	return &Library{
		Tracks: make([]Track, 0),
	}
}

// LoadLibrary загружает библиотеку из файла; отсутствующий файл дает пустую библиотеку
func LoadLibrary(filePath string) (*Library, error) {
	path, err := ExpandHome(filePath)
	if err != nil {
		return nil, err
	}

	lib := NewLibrary()
	lib.baseDir = filepath.Dir(path)

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return lib, nil
		}
		return nil, fmt.Errorf("ошибка чтения файла библиотеки: %w", err)
	}
	if len(raw) == 0 {
		return lib, nil
	}

	if err := yaml.Unmarshal(raw, lib); err != nil {
		return nil, fmt.Errorf("ошибка разбора библиотеки: %w", err)
	}
	if lib.Tracks == nil {
		lib.Tracks = make([]Track, 0)
	}

	seen := make(map[int]bool, len(lib.Tracks))
	for i := range lib.Tracks {
		t := &lib.Tracks[i]
		if seen[t.ID] {
			return nil, fmt.Errorf("повторяющийся ID трека: %d", t.ID)
		}
		seen[t.ID] = true
		t.resolved = lib.resolve(t.Source)
	}

	return lib, nil
}

// SaveLibrary сохраняет библиотеку в файл
func (l *Library) SaveLibrary(filePath string) error {
	path, err := ExpandHome(filePath)
	if err != nil {
		return err
	}

	raw, err := yaml.Marshal(l)
	if err != nil {
		return fmt.Errorf("ошибка сериализации библиотеки: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("ошибка создания каталога библиотеки: %w", err)
	}
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return fmt.Errorf("ошибка записи файла библиотеки: %w", err)
	}
	return nil
}

// AddTrack добавляет трек, назначая ему следующий свободный ID
func (l *Library) AddTrack(track Track) Track {
	maxID := 0
	for _, t := range l.Tracks {
		if t.ID > maxID {
			maxID = t.ID
		}
	}
	track.ID = maxID + 1
	track.resolved = l.resolve(track.Source)

	l.Tracks = append(l.Tracks, track)
	return track
}

// TrackByID возвращает трек по ID
func (l *Library) TrackByID(id int) (*Track, error) {
	for i := range l.Tracks {
		if l.Tracks[i].ID == id {
			return &l.Tracks[i], nil
		}
	}
	return nil, fmt.Errorf("трека с ID %d не найдено", id)
}

// DeleteTrackByID удаляет трек по ID
func (l *Library) DeleteTrackByID(id int) error {
	for i := range l.Tracks {
		if l.Tracks[i].ID == id {
			l.Tracks = append(l.Tracks[:i], l.Tracks[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("трека с ID %d не найдено", id)
}

// resolve превращает относительный локальный путь в абсолютный относительно файла библиотеки
func (l *Library) resolve(src string) string {
	if src == "" || IsRemote(src) || filepath.IsAbs(src) || l.baseDir == "" {
		return src
	}
	return filepath.Join(l.baseDir, src)
}

// IsRemote сообщает, указывает ли источник на сетевой ресурс
func IsRemote(src string) bool {
	return strings.HasPrefix(src, "http://") ||
		strings.HasPrefix(src, "https://") ||
		strings.HasPrefix(src, "s3://")
}

// ExpandHome раскрывает тильду в начале пути
func ExpandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return strings.Replace(path, "~", home, 1), nil
}
