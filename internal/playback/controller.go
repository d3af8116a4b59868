// Package playback содержит контроллер, который синхронизирует курсор воспроизведения,
// отфильтрованный список треков, аудиоэлемент и экран.
//
// Все методы Controller вызываются из одного цикла событий. Блокирующая работа
// (проверка источника, запрос воспроизведения) уходит в Scheduler, а её результат
// возвращается в цикл и сверяется с токенами, чтобы устаревшие продолжения отбрасывались.
package playback

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/hazadus/go-playlist/internal/data"
)

const (
	defaultProbeTimeout = 5 * time.Second
	defaultVolume       = 1.0
	volumeStep          = 0.1

	initialMessage = "Select a song from the playlist to play"
)

// Options содержит зависимости контроллера
type Options struct {
	Media        MediaElement
	View         View
	Prober       Prober
	Scheduler    Scheduler
	Logger       *zap.Logger
	ProbeTimeout time.Duration
	// Volume - начальная громкость; nil означает громкость по умолчанию
	Volume       *float64
}

// Controller владеет библиотекой, отфильтрованным списком и курсором воспроизведения
type Controller struct {
	ctx          context.Context
	media        MediaElement
	view         View
	prober       Prober
	scheduler    Scheduler
	log          *zap.Logger
	probeTimeout time.Duration

	library  *data.Library
	filtered []int // позиции в library.Tracks
	cursor   Cursor
	state    State
	// prevState - состояние до начала текущей загрузки, восстанавливается при ошибке
	prevState State
	volume    float64
	lastErr   error

	current    *data.Track // трек, привязанный к аудиоэлементу
	loadTarget int

	// Токены для отбрасывания устаревших продолжений
	loadToken uint64
	bindToken uint64
	playToken uint64

	pendingPlay   uint64 // bindToken источника, ожидающего готовности; 0 - нет
	pendingOrigin PlayOrigin

	filled map[int]bool // треки, чья длительность уже уточнена
}

// New создает контроллер. Библиотека не копируется: уточненная длительность
// записывается прямо в её треки.
func New(ctx context.Context, library *data.Library, opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	probeTimeout := opts.ProbeTimeout
	if probeTimeout <= 0 {
		probeTimeout = defaultProbeTimeout
	}
	volume := defaultVolume
	if opts.Volume != nil {
		volume = clamp(*opts.Volume)
	}
	if library == nil {
		library = data.NewLibrary()
	}

	return &Controller{
		ctx:          ctx,
		media:        opts.Media,
		view:         opts.View,
		prober:       opts.Prober,
		scheduler:    opts.Scheduler,
		log:          logger.Named("playback"),
		probeTimeout: probeTimeout,
		library:      library,
		filtered:     Filter(library.Tracks, ""),
		state:        StateIdle,
		volume:       volume,
		filled:       make(map[int]bool),
	}
}

// Start выполняет первичную отрисовку
func (c *Controller) Start() {
	c.media.SetVolume(c.volume)
	c.view.SetVolumeLabel(volumeLabel(c.volume))
	c.view.SetTransport(false)
	c.view.SetProgress(0)
	c.view.SetTimeLabels("0:00", "0:00")
	c.view.SetNowPlaying(initialMessage)
	c.render()
}

// Search пересчитывает отфильтрованный список и сбрасывает курсор
func (c *Controller) Search(query string) {
	c.filtered = Filter(c.library.Tracks, query)
	c.cursor.Index = 0

	// Незавершенная загрузка ссылается на позицию в старом списке
	if c.state == StateLoading {
		c.loadToken++
		c.state = c.prevState
		c.view.SetNowPlaying(c.statusText())
	}

	if c.current != nil && !c.inView(c.current.ID) {
		if c.cursor.IsPlaying || c.pendingPlay != 0 {
			c.log.Debug("играющий трек исключен поиском", zap.Int("track_id", c.current.ID))
			c.stop()
		}
	}

	c.render()
}

// SelectTrack выбирает трек по позиции в отфильтрованном списке.
// Повторный выбор играющего трека ставит его на паузу.
func (c *Controller) SelectTrack(index int) {
	if index < 0 || index >= len(c.filtered) {
		c.log.Debug("выбор вне диапазона", zap.Int("index", index), zap.Int("size", len(c.filtered)))
		return
	}

	if index == c.cursor.Index && c.cursor.IsPlaying && c.isCurrent(index) {
		c.Pause()
		return
	}

	c.load(index, true, OriginUser)
}

// Play запускает воспроизведение привязанного источника
func (c *Controller) Play() {
	c.play(OriginUser)
}

// Pause останавливает воспроизведение; повторный вызов ничего не меняет
func (c *Controller) Pause() {
	c.media.Pause()
	c.playToken++
	c.pendingPlay = 0
	c.cursor.IsPlaying = false
	if c.current != nil {
		c.settle(StateReadyPaused)
		c.view.SetNowPlaying("Paused: " + c.current.Title)
	}
	c.view.SetTransport(false)
	c.render()
}

// TogglePlayPause переключает паузу; без источника запускает первый трек
func (c *Controller) TogglePlayPause() {
	if c.media.Source() == "" {
		c.SelectTrack(0)
		return
	}
	if c.cursor.IsPlaying {
		c.Pause()
		return
	}
	c.Play()
}

// Next переходит к следующему треку по кругу
func (c *Controller) Next() {
	c.step(1, OriginUser)
}

// Previous переходит к предыдущему треку по кругу
func (c *Controller) Previous() {
	c.step(-1, OriginUser)
}

// OnTrackEnded обрабатывает окончание трека.
// Во время загрузки не переходит дальше: загружаемый трек заменит закончившийся.
func (c *Controller) OnTrackEnded() {
	if c.state == StateLoading {
		c.log.Debug("окончание трека во время загрузки", zap.Int("target", c.loadTarget))
		if c.current != nil {
			c.cursor.IsPlaying = false
			c.settle(StateReadyPaused)
			c.view.SetTransport(false)
		}
		return
	}
	c.step(1, OriginAuto)
}

// OnTimeUpdate обновляет прогресс и метки времени
func (c *Controller) OnTimeUpdate() {
	total := c.media.Duration()
	elapsed := c.media.CurrentTime()

	var fraction float64
	if total > 0 {
		fraction = clamp(float64(elapsed) / float64(total))
	}

	c.view.SetProgress(fraction)
	c.view.SetTimeLabels(FormatDuration(elapsed.Seconds()), c.totalLabel(total))
}

// OnMetadataLoaded уточняет длительность текущего трека
func (c *Controller) OnMetadataLoaded() {
	total := c.media.Duration()
	if total <= 0 || c.current == nil {
		return
	}

	label := FormatDuration(total.Seconds())
	if !c.filled[c.current.ID] {
		c.filled[c.current.ID] = true
		c.current.Duration = label
		c.render()
	}
	c.view.SetTimeLabels(FormatDuration(c.media.CurrentTime().Seconds()), label)
}

// OnReadyToPlay выполняет отложенный запуск, если он относится к текущему источнику
func (c *Controller) OnReadyToPlay() {
	if c.pendingPlay == 0 {
		return
	}
	if c.pendingPlay != c.bindToken {
		c.pendingPlay = 0
		return
	}

	c.pendingPlay = 0
	c.play(c.pendingOrigin)
}

// HandleEvent передает событие аудиоэлемента соответствующему обработчику
func (c *Controller) HandleEvent(ev Event) {
	if ev.Generation != 0 && ev.Generation != c.media.Generation() {
		c.log.Debug("событие прежнего источника", zap.Stringer("kind", ev.Kind), zap.Uint64("generation", ev.Generation))
		return
	}

	switch ev.Kind {
	case EventMetadataLoaded:
		c.OnMetadataLoaded()
	case EventTimeUpdated:
		c.OnTimeUpdate()
	case EventEnded:
		c.OnTrackEnded()
	case EventReadyToPlay:
		c.OnReadyToPlay()
	default:
		c.log.Debug("неизвестное событие", zap.Stringer("kind", ev.Kind))
	}
}

// Seek перематывает на долю fraction от длительности трека
func (c *Controller) Seek(fraction float64) {
	total := c.media.Duration()
	if total <= 0 {
		return
	}

	pos := time.Duration(clamp(fraction) * float64(total))
	if err := c.media.Seek(pos); err != nil {
		c.log.Warn("ошибка перемотки", zap.Duration("position", pos), zap.Error(err))
		return
	}
	c.OnTimeUpdate()
}

// SetVolume устанавливает громкость в диапазоне [0,1]
func (c *Controller) SetVolume(level float64) {
	c.volume = clamp(level)
	c.media.SetVolume(c.volume)
	c.view.SetVolumeLabel(volumeLabel(c.volume))
}

// VolumeUp увеличивает громкость на 10%
func (c *Controller) VolumeUp() {
	c.SetVolume(c.volume + volumeStep)
}

// VolumeDown уменьшает громкость на 10%
func (c *Controller) VolumeDown() {
	c.SetVolume(c.volume - volumeStep)
}

// Cursor возвращает текущий курсор
func (c *Controller) Cursor() Cursor {
	return c.cursor
}

// State возвращает состояние курсора
func (c *Controller) State() State {
	return c.state
}

// Volume возвращает последнюю установленную громкость
func (c *Controller) Volume() float64 {
	return c.volume
}

// LastError возвращает ошибку последней неудачной загрузки или запуска
func (c *Controller) LastError() error {
	return c.lastErr
}

// Current возвращает привязанный трек
func (c *Controller) Current() (data.Track, bool) {
	if c.current == nil {
		return data.Track{}, false
	}
	return *c.current, true
}

// Tracks возвращает отфильтрованный список
func (c *Controller) Tracks() []data.Track {
	tracks := make([]data.Track, len(c.filtered))
	for i, pos := range c.filtered {
		tracks[i] = c.library.Tracks[pos]
	}
	return tracks
}

// load проверяет источник трека и привязывает его при успехе.
// Курсор сдвигается только после успешной проверки.
func (c *Controller) load(index int, autoplay bool, origin PlayOrigin) {
	track := c.trackAt(index)

	c.loadToken++
	token := c.loadToken
	c.pendingPlay = 0
	if c.state != StateLoading {
		c.prevState = c.state
	}
	c.state = StateLoading
	c.loadTarget = index

	c.view.SetNowPlaying(fmt.Sprintf("Loading: %s...", track.Title))

	uri := track.URI()
	c.scheduler.Go(func() error {
		ctx, cancel := context.WithTimeout(c.ctx, c.probeTimeout)
		defer cancel()
		return c.prober.Probe(ctx, uri)
	}, func(err error) {
		if token != c.loadToken {
			c.log.Debug("результат проверки устарел", zap.String("uri", uri))
			return
		}
		if err != nil {
			c.loadFailed(track, err)
			return
		}
		c.bind(index, track, autoplay, origin)
	})
}

// bind привязывает проверенный трек к аудиоэлементу
func (c *Controller) bind(index int, track *data.Track, autoplay bool, origin PlayOrigin) {
	c.bindToken++
	c.playToken++
	c.current = track
	c.cursor.Index = index
	c.cursor.IsPlaying = false
	c.state = StateReadyPaused
	c.lastErr = nil

	c.media.SetSource(track.URI())
	c.log.Info("источник привязан", zap.Int("track_id", track.ID), zap.String("uri", track.URI()))

	c.view.SetTransport(false)
	c.view.SetProgress(0)
	c.view.SetTimeLabels("0:00", c.totalLabel(0))
	c.view.SetNowPlaying(fmt.Sprintf("Loaded: %s by %s", track.Title, track.Artist))
	c.render()

	if !autoplay {
		return
	}
	if c.media.Ready() {
		c.play(origin)
		return
	}
	c.pendingPlay = c.bindToken
	c.pendingOrigin = origin
}

func (c *Controller) loadFailed(track *data.Track, err error) {
	c.state = c.prevState
	if c.state == StateIdle {
		c.state = StateError
	}
	c.lastErr = fmt.Errorf("ошибка загрузки %q: %w", track.Title, err)
	c.log.Warn("источник недоступен", zap.Int("track_id", track.ID), zap.Error(err))

	if errors.Is(err, ErrNotFound) {
		c.view.SetNowPlaying("Error: File not found - " + track.Title)
		c.view.Notify("File not found: " + track.Title)
		return
	}
	c.view.SetNowPlaying("Error loading: " + track.Title)
	c.view.Notify("Error loading: " + track.Title)
}

func (c *Controller) play(origin PlayOrigin) {
	if c.current == nil || c.media.Source() == "" {
		c.log.Warn("нет источника для воспроизведения")
		return
	}

	c.playToken++
	token, bound := c.playToken, c.bindToken
	track := c.current

	c.scheduler.Go(func() error {
		return c.media.Play(origin)
	}, func(err error) {
		if bound != c.bindToken {
			c.log.Debug("запуск относится к прежнему источнику", zap.Int("track_id", track.ID))
			return
		}
		if token != c.playToken {
			// После запуска успела прийти пауза
			if err == nil {
				c.media.Pause()
			}
			return
		}
		if err != nil {
			c.playRejected(track, err)
			return
		}

		c.cursor.IsPlaying = true
		c.settle(StateReadyPlaying)
		c.view.SetTransport(true)
		c.view.SetNowPlaying(fmt.Sprintf("Now Playing: %s by %s", track.Title, track.Artist))
		c.render()
	})
}

func (c *Controller) playRejected(track *data.Track, err error) {
	c.cursor.IsPlaying = false
	c.settle(StateReadyPaused)
	c.view.SetTransport(false)

	if errors.Is(err, ErrSuperseded) {
		c.log.Debug("запуск прерван сменой источника", zap.Int("track_id", track.ID))
		return
	}

	c.lastErr = fmt.Errorf("ошибка воспроизведения %q: %w", track.Title, err)
	c.log.Warn("воспроизведение отклонено", zap.Int("track_id", track.ID), zap.Error(err))

	if errors.Is(err, ErrAutoplayBlocked) {
		c.view.SetNowPlaying("Press space to start playback (autoplay blocked)")
		c.view.Notify("Autoplay is blocked: press space to start playback")
	} else {
		c.view.SetNowPlaying("Playback failed: " + track.Title)
		c.view.Notify("Playback failed: " + track.Title)
	}
	c.render()
}

// statusText возвращает строку состояния без учета загрузки
func (c *Controller) statusText() string {
	switch {
	case c.current == nil:
		return initialMessage
	case c.cursor.IsPlaying:
		return fmt.Sprintf("Now Playing: %s by %s", c.current.Title, c.current.Artist)
	default:
		return "Paused: " + c.current.Title
	}
}

// stop останавливает трек, который исчез из отфильтрованного списка
func (c *Controller) stop() {
	c.media.Pause()
	c.playToken++
	c.pendingPlay = 0
	c.cursor.IsPlaying = false
	c.settle(StateReadyPaused)
	c.view.SetTransport(false)
	c.view.SetNowPlaying("Paused: " + c.current.Title)
}

func (c *Controller) step(delta int, origin PlayOrigin) {
	n := len(c.filtered)
	if n == 0 {
		return
	}

	base := c.cursor.Index
	if c.state == StateLoading {
		base = c.loadTarget
	}
	c.load(((base+delta)%n+n)%n, true, origin)
}

// settle меняет состояние; во время загрузки меняется состояние для отката
func (c *Controller) settle(s State) {
	if c.state == StateLoading {
		c.prevState = s
		return
	}
	c.state = s
}

func (c *Controller) render() {
	c.view.RenderList(c.Tracks(), c.cursor.Index, c.cursor.IsPlaying)
}

func (c *Controller) trackAt(index int) *data.Track {
	return &c.library.Tracks[c.filtered[index]]
}

func (c *Controller) isCurrent(index int) bool {
	return c.current != nil && c.trackAt(index).ID == c.current.ID
}

func (c *Controller) inView(id int) bool {
	for _, pos := range c.filtered {
		if c.library.Tracks[pos].ID == id {
			return true
		}
	}
	return false
}

func (c *Controller) totalLabel(total time.Duration) string {
	if total > 0 {
		return FormatDuration(total.Seconds())
	}
	if c.current != nil && c.current.Duration != "" {
		return c.current.Duration
	}
	return "0:00"
}

func volumeLabel(level float64) string {
	return fmt.Sprintf("Volume: %d%%", int(math.Round(level*100)))
}

func clamp(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
