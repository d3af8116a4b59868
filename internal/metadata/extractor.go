// Package metadata читает теги и длительность аудиофайлов для пополнения библиотеки
package metadata

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dhowden/tag"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/wav"
)

// UnknownArtist подставляется, если исполнителя не удалось определить
const UnknownArtist = "Unknown Artist"

// Info сведения о файле трека
type Info struct {
	Artist   string
	Title    string
	Album    string
	Duration time.Duration
	Size     int64
}

// Read собирает теги, размер и длительность файла.
// Отсутствие тегов не ошибка: исполнитель и название берутся из имени файла.
func Read(filePath string) (*Info, error) {
	stat, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения информации о файле: %w", err)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия файла: %w", err)
	}
	defer file.Close()

	info := FromReader(file, filePath)
	info.Size = stat.Size()

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("ошибка чтения файла: %w", err)
	}
	info.Duration, err = decodeDuration(file, filePath)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения длительности: %w", err)
	}

	return &info, nil
}

// FromReader читает теги. Пустые поля дополняются из имени source.
func FromReader(reader io.ReadSeeker, source string) Info {
	fallback := fromFileName(source)

	if _, err := reader.Seek(0, io.SeekStart); err != nil {
		return fallback
	}
	tags, err := tag.ReadFrom(reader)
	if err != nil {
		return fallback
	}

	info := Info{
		Artist: strings.TrimSpace(tags.Artist()),
		Title:  strings.TrimSpace(tags.Title()),
		Album:  strings.TrimSpace(tags.Album()),
	}
	if info.Title == "" {
		info.Title = fallback.Title
		if info.Artist == "" {
			info.Artist = fallback.Artist
		}
	}
	if info.Artist == "" {
		info.Artist = UnknownArtist
	}
	return info
}

func decodeDuration(file *os.File, filePath string) (time.Duration, error) {
	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
		err      error
	)
	if strings.EqualFold(filepath.Ext(filePath), ".wav") {
		streamer, format, err = wav.Decode(file)
	} else {
		// Без Seek декодер не сможет посчитать длину
		streamer, format, err = mp3.Decode(keepOpen{file})
	}
	if err != nil {
		return 0, err
	}
	defer streamer.Close()

	return format.SampleRate.D(streamer.Len()), nil
}

// keepOpen не дает декодеру закрыть файл, его закрывает Read
type keepOpen struct {
	*os.File
}

func (keepOpen) Close() error { return nil }

// fromFileName разбирает имя вида "Artist - Title"
func fromFileName(source string) Info {
	name := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))

	if artist, title, ok := strings.Cut(name, " - "); ok {
		return Info{
			Artist: strings.TrimSpace(artist),
			Title:  strings.TrimSpace(title),
		}
	}

	return Info{
		Artist: UnknownArtist,
		Title:  name,
	}
}
