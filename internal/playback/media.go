package playback

import (
	"context"
	"errors"
	"time"

	"github.com/hazadus/go-playlist/internal/data"
)

var (
	// ErrNotFound возвращается пробой, если ресурс трека отсутствует
	ErrNotFound = errors.New("ресурс не найден")
	// ErrAutoplayBlocked возвращается элементом, если автоматический запуск запрещен
	ErrAutoplayBlocked = errors.New("автовоспроизведение заблокировано")
	// ErrNoSource возвращается при попытке воспроизведения без источника
	ErrNoSource = errors.New("источник не задан")
	// ErrSuperseded возвращается, если источник сменился во время ожидания
	ErrSuperseded = errors.New("источник заменен")
)

// PlayOrigin указывает, кто инициировал запуск воспроизведения
type PlayOrigin int

const (
	// OriginUser - запуск по действию пользователя
	OriginUser PlayOrigin = iota
	// OriginAuto - запуск после загрузки или по окончании предыдущего трека
	OriginAuto
)

// MediaElement - аудиоэлемент, которым управляет контроллер.
// Play блокируется и вызывается только через Scheduler; остальные методы не блокируются.
type MediaElement interface {
	SetSource(uri string)
	Source() string
	Play(origin PlayOrigin) error
	Pause()
	CurrentTime() time.Duration
	Seek(pos time.Duration) error
	// Duration возвращает 0, если длительность еще неизвестна
	Duration() time.Duration
	// Ready сообщает, что данных достаточно для немедленного старта
	Ready() bool
	SetVolume(level float64)
	// Generation возвращает номер текущего источника, он растет с каждым SetSource
	Generation() uint64
}

// View - набор целей отрисовки, в которые пишет контроллер
type View interface {
	RenderList(tracks []data.Track, cursor int, playing bool)
	SetProgress(fraction float64)
	SetTimeLabels(elapsed, total string)
	SetNowPlaying(text string)
	SetTransport(playing bool)
	SetVolumeLabel(text string)
	Notify(text string)
}

// Prober проверяет существование ресурса до привязки источника
type Prober interface {
	Probe(ctx context.Context, uri string) error
}

// Scheduler выполняет work вне цикла событий, а done - внутри него
type Scheduler interface {
	Go(work func() error, done func(err error))
}

// EventKind - тип события жизненного цикла аудиоэлемента
type EventKind int

const (
	EventMetadataLoaded EventKind = iota
	EventTimeUpdated
	EventEnded
	EventReadyToPlay
)

func (k EventKind) String() string {
	switch k {
	case EventMetadataLoaded:
		return "metadata-loaded"
	case EventTimeUpdated:
		return "time-updated"
	case EventEnded:
		return "ended"
	case EventReadyToPlay:
		return "ready-to-play"
	default:
		return "unknown"
	}
}

// Event - событие аудиоэлемента
type Event struct {
	Kind EventKind
	// Generation - номер источника, к которому относится событие; 0 - без привязки
	Generation uint64
}
