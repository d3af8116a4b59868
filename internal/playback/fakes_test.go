package playback

import (
	"context"
	"fmt"
	"time"

	"github.com/hazadus/go-playlist/internal/data"
)

// fakeMedia - аудиоэлемент в памяти
type fakeMedia struct {
	source    string
	ready     bool
	playErr   error
	playing   bool
	playCalls []string
	pauses    int
	current   time.Duration
	duration  time.Duration
	seekErr   error
	seekedTo  time.Duration
	volume    float64
	origins   []PlayOrigin
	gen       uint64
}

func (m *fakeMedia) SetSource(uri string) {
	m.gen++
	m.source = uri
	m.playing = false
	m.current = 0
}

func (m *fakeMedia) Source() string { return m.source }

func (m *fakeMedia) Play(origin PlayOrigin) error {
	m.playCalls = append(m.playCalls, m.source)
	m.origins = append(m.origins, origin)
	if m.playErr != nil {
		return m.playErr
	}
	m.playing = true
	return nil
}

func (m *fakeMedia) Pause() {
	m.pauses++
	m.playing = false
}

func (m *fakeMedia) CurrentTime() time.Duration { return m.current }

func (m *fakeMedia) Seek(pos time.Duration) error {
	if m.seekErr != nil {
		return m.seekErr
	}
	m.seekedTo = pos
	m.current = pos
	return nil
}

func (m *fakeMedia) Duration() time.Duration { return m.duration }
func (m *fakeMedia) Ready() bool             { return m.ready }
func (m *fakeMedia) SetVolume(level float64) { m.volume = level }
func (m *fakeMedia) Generation() uint64      { return m.gen }

// fakeView запоминает последнее состояние каждой цели отрисовки
type fakeView struct {
	tracks        []data.Track
	cursor        int
	playing       bool
	renders       int
	progress      float64
	elapsed       string
	total         string
	nowPlaying    string
	transport     bool
	volumeLabel   string
	notifications []string
}

func (v *fakeView) RenderList(tracks []data.Track, cursor int, playing bool) {
	v.tracks = tracks
	v.cursor = cursor
	v.playing = playing
	v.renders++
}

func (v *fakeView) SetProgress(fraction float64)        { v.progress = fraction }
func (v *fakeView) SetTimeLabels(elapsed, total string) { v.elapsed, v.total = elapsed, total }
func (v *fakeView) SetNowPlaying(text string)           { v.nowPlaying = text }
func (v *fakeView) SetTransport(playing bool)           { v.transport = playing }
func (v *fakeView) SetVolumeLabel(text string)          { v.volumeLabel = text }
func (v *fakeView) Notify(text string)                  { v.notifications = append(v.notifications, text) }

// fakeProber возвращает ошибку для URI из missing
type fakeProber struct {
	missing map[string]error
	probed  []string
}

func (p *fakeProber) Probe(_ context.Context, uri string) error {
	p.probed = append(p.probed, uri)
	if err, ok := p.missing[uri]; ok {
		return err
	}
	return nil
}

// syncScheduler выполняет работу и продолжение сразу
type syncScheduler struct{}

func (syncScheduler) Go(work func() error, done func(error)) {
	done(work())
}

// queueScheduler откладывает задания до явного вызова run
type queueScheduler struct {
	jobs []func()
}

func (s *queueScheduler) Go(work func() error, done func(error)) {
	s.jobs = append(s.jobs, func() { done(work()) })
}

// step выполняет одно задание
func (s *queueScheduler) step() {
	job := s.jobs[0]
	s.jobs = s.jobs[1:]
	job()
}

// run выполняет все накопленные задания по порядку, включая новые
func (s *queueScheduler) run() {
	for len(s.jobs) > 0 {
		job := s.jobs[0]
		s.jobs = s.jobs[1:]
		job()
	}
}

func testLibrary(n int) *data.Library {
	lib := data.NewLibrary()
	for i := 1; i <= n; i++ {
		lib.AddTrack(data.Track{
			Title:    fmt.Sprintf("Song %d", i),
			Artist:   fmt.Sprintf("Artist %d", i),
			Duration: "3:00",
			Source:   fmt.Sprintf("https://example.com/song%d.mp3", i),
		})
	}
	return lib
}

type fixture struct {
	ctrl   *Controller
	media  *fakeMedia
	view   *fakeView
	prober *fakeProber
}

func newFixture(lib *data.Library, scheduler Scheduler) *fixture {
	f := &fixture{
		media:  &fakeMedia{},
		view:   &fakeView{},
		prober: &fakeProber{missing: map[string]error{}},
	}
	f.ctrl = New(context.Background(), lib, Options{
		Media:     f.media,
		View:      f.view,
		Prober:    f.prober,
		Scheduler: scheduler,
	})
	f.ctrl.Start()
	return f
}
