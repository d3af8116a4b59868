// Package probe проверяет существование источника трека до его загрузки
package probe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hazadus/go-playlist/internal/data"
	"github.com/hazadus/go-playlist/internal/playback"
	"github.com/hazadus/go-playlist/internal/s3"
	"github.com/hazadus/go-playlist/internal/streaming"
)

// ObjectStore проверяет наличие объекта в S3
type ObjectStore interface {
	Head(ctx context.Context, bucket, key string) error
}

// Prober выполняет HEAD-запросы, HeadObject и stat в зависимости от схемы адреса
type Prober struct {
	client  *http.Client
	store   ObjectStore
	timeout time.Duration
	logger  *zap.Logger
}

// New создает пробу. store может быть nil, если S3 не настроен.
func New(client *http.Client, store ObjectStore, timeout time.Duration, logger *zap.Logger) *Prober {
	if client == nil {
		client = streaming.NewClient()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Prober{
		client:  client,
		store:   store,
		timeout: timeout,
		logger:  logger.Named("probe"),
	}
}

// Probe возвращает playback.ErrNotFound, если ресурса нет, и обернутую ошибку при прочих сбоях
func (p *Prober) Probe(ctx context.Context, uri string) error {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	var err error
	switch {
	case strings.HasPrefix(uri, "http://"), strings.HasPrefix(uri, "https://"):
		err = p.head(ctx, uri)
	case s3.IsURI(uri):
		err = p.headObject(ctx, uri)
	default:
		err = p.stat(uri)
	}

	if err != nil {
		p.logger.Debug("проверка источника не пройдена", zap.String("uri", uri), zap.Error(err))
	}
	return err
}

func (p *Prober) head(ctx context.Context, uri string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, uri, nil)
	if err != nil {
		return fmt.Errorf("ошибка создания запроса: %w", err)
	}
	req.Header.Set("User-Agent", streaming.UserAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("ошибка HEAD запроса: %w", err)
	}
	resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound, resp.StatusCode == http.StatusGone:
		return playback.ErrNotFound
	case resp.StatusCode >= 400:
		return &streaming.StatusError{Code: resp.StatusCode, Status: resp.Status}
	}
	return nil
}

func (p *Prober) headObject(ctx context.Context, uri string) error {
	if p.store == nil {
		return errors.New("хранилище S3 не настроено")
	}
	bucket, key, err := s3.ParseURI(uri)
	if err != nil {
		return err
	}
	if err := p.store.Head(ctx, bucket, key); err != nil {
		if errors.Is(err, s3.ErrNotFound) {
			return playback.ErrNotFound
		}
		return err
	}
	return nil
}

func (p *Prober) stat(uri string) error {
	path := strings.TrimPrefix(uri, "file://")
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return playback.ErrNotFound
		}
		return fmt.Errorf("ошибка проверки файла: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s является каталогом", path)
	}
	return nil
}

// Result итог проверки одного трека
type Result struct {
	Track data.Track
	Err   error
}

// Missing сообщает, что ресурс трека отсутствует
func (r Result) Missing() bool {
	return errors.Is(r.Err, playback.ErrNotFound)
}

// All проверяет все треки, не более workers запросов одновременно.
// Результаты идут в порядке треков.
func (p *Prober) All(ctx context.Context, tracks []data.Track, workers int) []Result {
	results := make([]Result, len(tracks))

	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}

	for i := range tracks {
		track := tracks[i]
		results[i].Track = track
		g.Go(func() error {
			results[i].Err = p.Probe(ctx, track.URI())
			return nil
		})
	}
	_ = g.Wait()

	return results
}
