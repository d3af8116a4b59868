// Package player содержит аудиоэлемент на основе beep
package player

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/speaker"
	"github.com/gopxl/beep/wav"
	"go.uber.org/zap"

	"github.com/hazadus/go-playlist/internal/playback"
	"github.com/hazadus/go-playlist/internal/s3"
	"github.com/hazadus/go-playlist/internal/streaming"
)

const (
	// OutputRate частота дискретизации динамиков, все потоки приводятся к ней
	OutputRate = beep.SampleRate(44100)

	tickInterval = 500 * time.Millisecond
	bufferSize   = 256 * 1024
	// maxPrealloc ограничивает заранее выделяемую память под сетевой источник
	maxPrealloc  = 256 << 20
)

// ObjectOpener открывает объект из S3
type ObjectOpener interface {
	Open(ctx context.Context, bucket, key string) (io.ReadCloser, error)
}

// Options настройки плеера
type Options struct {
	// Autoplay разрешает запуск с playback.OriginAuto
	Autoplay   bool
	Volume     float64
	HTTPClient *http.Client
	Store      ObjectOpener
	Logger     *zap.Logger
}

// loadState результат открытия источника одного поколения
type loadState struct {
	done     chan struct{}
	err      error
	finished bool
}

// Player реализует playback.MediaElement.
// Каждый SetSource начинает новое поколение, события старых поколений отбрасываются.
type Player struct {
	opts   Options
	logger *zap.Logger
	events chan playback.Event
	done   chan struct{}

	mu         sync.Mutex
	generation uint64
	source     string
	cancel     context.CancelFunc
	load       *loadState
	streamer   beep.StreamSeekCloser
	format     beep.Format
	ctrl       *beep.Ctrl
	volume     *effects.Volume
	level      float64
	playing    bool
	ended      bool
	tickGen    uint64 // поколение работающего тикера; 0 - тикера нет
	speakerOn  bool
	closed     bool
}

// New создает плеер. Динамики инициализируются при первом запуске.
func New(opts Options) *Player {
	if opts.HTTPClient == nil {
		opts.HTTPClient = streaming.NewClient()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Player{
		opts:   opts,
		logger: logger.Named("player"),
		events: make(chan playback.Event, 32),
		done:   make(chan struct{}),
		level:  opts.Volume,
	}
}

// Events возвращает канал событий жизненного цикла
func (p *Player) Events() <-chan playback.Event {
	return p.events
}

// Generation возвращает номер текущего источника
func (p *Player) Generation() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.generation
}

// SetSource заменяет источник и начинает его асинхронную загрузку
func (p *Player) SetSource(uri string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}

	p.resetLocked()
	p.source = uri
	if uri == "" {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	load := &loadState{done: make(chan struct{})}
	p.load = load

	go p.open(ctx, p.generation, load, uri)
}

// resetLocked завершает текущее поколение и освобождает его ресурсы
func (p *Player) resetLocked() {
	p.generation++

	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	if p.load != nil {
		finish(p.load, playback.ErrSuperseded)
		p.load = nil
	}
	if p.ctrl != nil && p.speakerOn {
		speaker.Clear()
	}
	if p.streamer != nil {
		p.streamer.Close()
	}

	p.streamer = nil
	p.ctrl = nil
	p.volume = nil
	p.playing = false
	p.ended = false
}

func finish(load *loadState, err error) {
	if load.finished {
		return
	}
	load.err = err
	load.finished = true
	close(load.done)
}

func (p *Player) open(ctx context.Context, gen uint64, load *loadState, uri string) {
	streamer, format, err := p.decode(ctx, uri)

	p.mu.Lock()
	if gen != p.generation {
		p.mu.Unlock()
		if streamer != nil {
			streamer.Close()
		}
		return
	}
	if err != nil {
		finish(load, err)
		p.mu.Unlock()
		p.logger.Warn("ошибка загрузки источника", zap.String("uri", uri), zap.Error(err))
		return
	}
	p.streamer = streamer
	p.format = format
	finish(load, nil)
	p.mu.Unlock()

	p.logger.Debug("источник загружен",
		zap.String("uri", uri),
		zap.Duration("duration", format.SampleRate.D(streamer.Len())))

	p.emit(gen, playback.EventMetadataLoaded)
	p.emit(gen, playback.EventReadyToPlay)
}

// decode открывает источник и декодирует его в поток с перемоткой
func (p *Player) decode(ctx context.Context, uri string) (beep.StreamSeekCloser, beep.Format, error) {
	rc, err := p.openSource(ctx, uri)
	if err != nil {
		return nil, beep.Format{}, err
	}

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	if decoderFor(uri) == decoderWAV {
		streamer, format, err = wav.Decode(rc)
	} else {
		streamer, format, err = mp3.Decode(rc)
	}
	if err != nil {
		rc.Close()
		return nil, beep.Format{}, fmt.Errorf("ошибка декодирования: %w", err)
	}
	return streamer, format, nil
}

func (p *Player) openSource(ctx context.Context, uri string) (io.ReadCloser, error) {
	switch kindOf(uri) {
	case sourceHTTP:
		reader, err := streaming.NewReader(ctx, p.opts.HTTPClient, uri, bufferSize)
		if err != nil {
			return nil, fmt.Errorf("ошибка создания потокового ридера: %w", err)
		}
		return buffer(reader, reader.ContentLength())
	case sourceS3:
		if p.opts.Store == nil {
			return nil, errors.New("хранилище S3 не настроено")
		}
		bucket, key, err := s3.ParseURI(uri)
		if err != nil {
			return nil, err
		}
		body, err := p.opts.Store.Open(ctx, bucket, key)
		if err != nil {
			return nil, err
		}
		return buffer(body, -1)
	default:
		file, err := os.Open(strings.TrimPrefix(uri, "file://"))
		if err != nil {
			return nil, fmt.Errorf("ошибка открытия файла: %w", err)
		}
		return file, nil
	}
}

// seekableBuffer нужен декодерам для перемотки сетевых источников
type seekableBuffer struct {
	*bytes.Reader
}

func (seekableBuffer) Close() error { return nil }

// buffer читает поток в память. size - ожидаемый размер или -1.
func buffer(rc io.ReadCloser, size int64) (io.ReadCloser, error) {
	defer rc.Close()

	var buf bytes.Buffer
	if size > 0 && size <= maxPrealloc {
		buf.Grow(int(size))
	}
	if _, err := buf.ReadFrom(rc); err != nil {
		return nil, fmt.Errorf("ошибка чтения потока: %w", err)
	}
	return seekableBuffer{bytes.NewReader(buf.Bytes())}, nil
}

// Source возвращает текущий источник
func (p *Player) Source() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.source
}

// Play ждет загрузки текущего источника и запускает вывод
func (p *Player) Play(origin playback.PlayOrigin) error {
	p.mu.Lock()
	if p.closed || p.load == nil {
		p.mu.Unlock()
		return playback.ErrNoSource
	}
	gen, load := p.generation, p.load
	p.mu.Unlock()

	select {
	case <-load.done:
	case <-p.done:
		return playback.ErrSuperseded
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if gen != p.generation {
		return playback.ErrSuperseded
	}
	if load.err != nil {
		return load.err
	}
	if origin == playback.OriginAuto && !p.opts.Autoplay {
		return playback.ErrAutoplayBlocked
	}

	if err := p.initSpeakerLocked(); err != nil {
		return err
	}

	if p.ended {
		if err := p.streamer.Seek(0); err != nil {
			return fmt.Errorf("ошибка перемотки: %w", err)
		}
		p.ctrl = nil
		p.ended = false
	}

	if p.ctrl == nil {
		p.volume = &effects.Volume{
			Streamer: beep.Resample(4, p.format.SampleRate, OutputRate, p.streamer),
			Base:     2,
		}
		p.applyVolumeLocked()
		p.ctrl = &beep.Ctrl{Streamer: p.volume}
		speaker.Play(beep.Seq(p.ctrl, beep.Callback(func() {
			// Колбэк выполняется под блокировкой динамиков
			go p.finished(gen)
		})))
	} else {
		speaker.Lock()
		p.ctrl.Paused = false
		speaker.Unlock()
	}

	p.playing = true
	if p.tickGen != gen {
		p.tickGen = gen
		go p.tick(gen)
	}
	return nil
}

func (p *Player) initSpeakerLocked() error {
	if p.speakerOn {
		return nil
	}
	if err := speaker.Init(OutputRate, OutputRate.N(time.Second/10)); err != nil {
		return fmt.Errorf("ошибка инициализации динамиков: %w", err)
	}
	p.speakerOn = true
	return nil
}

func (p *Player) finished(gen uint64) {
	p.mu.Lock()
	if gen != p.generation {
		p.mu.Unlock()
		return
	}
	p.playing = false
	p.ended = true
	p.mu.Unlock()

	p.emit(gen, playback.EventEnded)
}

func (p *Player) tick(gen uint64) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.done:
			return
		case <-ticker.C:
			p.mu.Lock()
			if gen != p.generation || !p.playing {
				// Тикер нового поколения уже мог запуститься
				if p.tickGen == gen {
					p.tickGen = 0
				}
				p.mu.Unlock()
				return
			}
			p.mu.Unlock()
			p.emit(gen, playback.EventTimeUpdated)
		}
	}
}

// Pause останавливает вывод, позиция сохраняется
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ctrl != nil {
		speaker.Lock()
		p.ctrl.Paused = true
		speaker.Unlock()
	}
	p.playing = false
}

// CurrentTime возвращает позицию воспроизведения
func (p *Player) CurrentTime() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.streamer == nil {
		return 0
	}
	speaker.Lock()
	position := p.streamer.Position()
	speaker.Unlock()
	return p.format.SampleRate.D(position)
}

// Seek перематывает поток. Позиция за концом трека ограничивается последним сэмплом.
func (p *Player) Seek(pos time.Duration) error {
	p.mu.Lock()
	if p.streamer == nil {
		p.mu.Unlock()
		return playback.ErrNoSource
	}

	sample := p.format.SampleRate.N(pos)
	if sample < 0 {
		sample = 0
	}
	if last := p.streamer.Len() - 1; sample > last {
		sample = max(last, 0)
	}

	speaker.Lock()
	err := p.streamer.Seek(sample)
	speaker.Unlock()
	gen := p.generation
	p.mu.Unlock()

	if err != nil {
		return fmt.Errorf("ошибка перемотки: %w", err)
	}
	p.emit(gen, playback.EventTimeUpdated)
	return nil
}

// Duration возвращает длительность или 0, если источник еще не загружен
func (p *Player) Duration() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.streamer == nil {
		return 0
	}
	return p.format.SampleRate.D(p.streamer.Len())
}

// Ready сообщает, что источник декодирован и может стартовать сразу
func (p *Player) Ready() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.streamer != nil
}

// SetVolume задает громкость от 0 до 1
func (p *Player) SetVolume(level float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.level = level
	if p.volume != nil {
		speaker.Lock()
		p.applyVolumeLocked()
		speaker.Unlock()
	}
}

func (p *Player) applyVolumeLocked() {
	p.volume.Volume, p.volume.Silent = volumeParams(p.level)
}

// volumeParams переводит линейную громкость в показатель степени по основанию 2
func volumeParams(level float64) (volume float64, silent bool) {
	if level <= 0 || math.IsNaN(level) {
		return 0, true
	}
	if level > 1 {
		level = 1
	}
	return math.Log2(level), false
}

// Close останавливает воспроизведение и освобождает ресурсы
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.resetLocked()
	p.source = ""
	p.closed = true
	close(p.done)
	return nil
}

func (p *Player) emit(gen uint64, kind playback.EventKind) {
	p.mu.Lock()
	stale := gen != p.generation || p.closed
	p.mu.Unlock()
	if stale {
		return
	}

	event := playback.Event{Kind: kind, Generation: gen}
	if kind == playback.EventTimeUpdated {
		// Пропущенный тик догонит следующий
		select {
		case p.events <- event:
		default:
		}
		return
	}

	select {
	case p.events <- event:
	case <-p.done:
	}
}

type sourceKind int

const (
	sourceFile sourceKind = iota
	sourceHTTP
	sourceS3
)

func kindOf(uri string) sourceKind {
	switch {
	case strings.HasPrefix(uri, "http://"), strings.HasPrefix(uri, "https://"):
		return sourceHTTP
	case s3.IsURI(uri):
		return sourceS3
	default:
		return sourceFile
	}
}

type decoderKind int

const (
	decoderMP3 decoderKind = iota
	decoderWAV
)

func decoderFor(uri string) decoderKind {
	// Query строка не относится к расширению
	if i := strings.IndexAny(uri, "?#"); i >= 0 && kindOf(uri) == sourceHTTP {
		uri = uri[:i]
	}
	if strings.EqualFold(filepath.Ext(uri), ".wav") {
		return decoderWAV
	}
	return decoderMP3
}
