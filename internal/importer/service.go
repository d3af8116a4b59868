// Package importer добавляет аудиофайлы в библиотеку, при необходимости загружая их в S3
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/hazadus/go-playlist/internal/data"
	"github.com/hazadus/go-playlist/internal/metadata"
	"github.com/hazadus/go-playlist/internal/playback"
)

// Uploader загружает данные в хранилище и возвращает адрес источника
type Uploader interface {
	UploadFile(ctx context.Context, reader io.Reader, key string) (string, error)
}

// Options параметры импорта одного файла
type Options struct {
	Upload     bool
	OnProgress func(read, total int64)
}

// Result содержит добавленный трек и прочитанные сведения о файле
type Result struct {
	Track data.Track
	Info  *metadata.Info
}

// Service управляет добавлением треков
type Service struct {
	uploader Uploader
	library  *data.Library
	logger   *zap.Logger
}

// NewService создает сервис импорта. uploader может быть nil, если S3 не настроен.
func NewService(uploader Uploader, library *data.Library, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		uploader: uploader,
		library:  library,
		logger:   logger.Named("importer"),
	}
}

// Import читает метаданные файла, загружает его при opts.Upload и добавляет трек в библиотеку.
// Сохранение библиотеки остается вызывающему.
func (s *Service) Import(ctx context.Context, filePath string, opts Options) (*Result, error) {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return nil, fmt.Errorf("некорректный путь %s: %w", filePath, err)
	}
	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("файл не найден: %s", filePath)
	}

	info, err := metadata.Read(absPath)
	if err != nil {
		return nil, err
	}

	source := absPath
	if opts.Upload {
		source, err = s.upload(ctx, absPath, info.Size, opts.OnProgress)
		if err != nil {
			return nil, err
		}
	}

	track := s.library.AddTrack(data.Track{
		Title:    info.Title,
		Artist:   info.Artist,
		Album:    info.Album,
		Duration: playback.FormatDuration(info.Duration.Seconds()),
		Source:   source,
	})

	s.logger.Info("трек добавлен",
		zap.Int("id", track.ID),
		zap.String("title", track.Title),
		zap.String("src", track.Source))

	return &Result{Track: track, Info: info}, nil
}

func (s *Service) upload(ctx context.Context, path string, size int64, onProgress func(read, total int64)) (string, error) {
	if s.uploader == nil {
		return "", errors.New("загрузка невозможна: S3 не настроен")
	}

	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("ошибка открытия файла: %w", err)
	}
	defer file.Close()

	var reader io.Reader = file
	if onProgress != nil {
		reader = &ProgressReader{
			Reader:     file,
			Size:       size,
			OnProgress: onProgress,
		}
	}

	uri, err := s.uploader.UploadFile(ctx, reader, ObjectKey(path))
	if err != nil {
		return "", fmt.Errorf("ошибка загрузки в S3: %w", err)
	}
	return uri, nil
}

// ObjectKey формирует ключ объекта из имени файла
func ObjectKey(path string) string {
	name := filepath.Base(path)
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		ext = ".mp3"
	}
	return strings.TrimSuffix(name, filepath.Ext(name)) + ext
}

// ProgressReader сообщает о количестве прочитанных байт
type ProgressReader struct {
	io.Reader
	Size       int64
	OnProgress func(read, total int64)
	bytesRead  int64
}

func (pr *ProgressReader) Read(p []byte) (n int, err error) {
	n, err = pr.Reader.Read(p)
	pr.bytesRead += int64(n)
	if pr.OnProgress != nil {
		pr.OnProgress(pr.bytesRead, pr.Size)
	}
	return n, err
}
