// SPDX-License-Identifier: EPL-2.0

package audwave

import (
	"context"
	"image"
	"image/draw"
	"runtime"
	"sync"

	"github.com/ik5/audwave/channeldata"
	"github.com/ik5/audwave/cursor"
	"github.com/ik5/audwave/decoder"
	"github.com/ik5/audwave/events"
	"github.com/ik5/audwave/frame"
	"github.com/ik5/audwave/loader"
	"github.com/ik5/audwave/media"
	"github.com/ik5/audwave/player"
	"github.com/ik5/audwave/playhead"
	"github.com/ik5/audwave/regions"
	"github.com/ik5/audwave/visual"
	"github.com/rs/zerolog"
)

// Waveform ties decoding, drawing, playback and regions together behind
// one lock. Events raised while the lock is held are delivered after it is
// released, so handlers may call back into the Waveform.
type Waveform struct {
	opts Options
	log  zerolog.Logger

	mu     sync.Mutex
	bus    *events.Bus
	queue  *events.Queue
	emit   events.Emitter
	sched  frame.Scheduler
	ticker *frame.Ticker

	cursor   *cursor.Cursor
	vis      *visual.Visualizer
	player   *player.Player
	regions  *regions.Regions
	playhead *playhead.Playhead

	loader  *loader.Loader
	audio   *media.Audio
	data    *channeldata.ChannelData
	element *player.StreamElement
	loadGen int
	loadErr error

	press     press
	destroyed bool
}

type press int

const (
	pressNone press = iota
	pressPlayhead
	pressRegions
	pressSeek
)

func New(opts Options) (*Waveform, error) {
	opts = opts.withDefaults()

	w := &Waveform{
		opts:   opts,
		log:    opts.Logger,
		bus:    events.NewBus(),
		cursor: cursor.New(cursor.Default),
	}
	w.queue = events.NewQueue(w.bus)
	w.emit = events.EmitterFunc(w.dispatch)

	base := opts.Scheduler
	if base == nil {
		w.ticker = frame.NewTicker(opts.FPS)
		base = w.ticker
	}
	w.sched = frame.Wrap(base, w.locked)

	w.player = player.New(player.Options{
		Scheduler: w.sched,
		Emitter:   w.emit,
		SeekStep:  opts.SeekStep,
		Logger:    w.log.With().Str("component", "player").Logger(),
	})

	vis, err := visual.New(visual.Options{
		Width:          opts.Width,
		Height:         opts.Height,
		Zoom:           opts.Zoom,
		MaxZoom:        opts.MaxZoom,
		ZoomToCursor:   opts.ZoomToCursor,
		AutoCenter:     opts.AutoCenter,
		SplitChannels:  opts.SplitChannels,
		Padding:        opts.Padding,
		ResizeDebounce: opts.ResizeDebounce,
		Logger:         w.log.With().Str("component", "visual").Logger(),
	}, visual.Deps{
		Scheduler: w.sched,
		Emitter:   w.emit,
		Clock:     w.player,
		Post:      w.locked,
	})
	if err != nil {
		w.stopTicker()
		return nil, err
	}
	w.vis = vis

	w.regions = regions.New(regions.Config{
		Select: true,
		Logger: w.log.With().Str("component", "regions").Logger(),
	}, regions.Deps{
		Timeline: vis,
		Duration: w.player.Duration,
		Cursor:   w.cursor,
		Emitter:  w.emit,
		Redraw:   func() { w.vis.RequestDraw(true) },
	})
	if err := w.regions.Load(opts.Regions); err != nil {
		w.stopTicker()
		return nil, err
	}
	w.player.SetSelection(w.regions)

	w.playhead = playhead.New(playhead.Deps{
		Timeline: vis,
		Clock:    w.player,
		Cursor:   w.cursor,
		Seek:     w.player.Seek,
	})

	vis.Layer(visual.LayerRegions).SetRenderer(func(img *image.RGBA) error {
		w.regions.Paint(img)
		return nil
	})
	vis.Layer(visual.LayerControls).SetRenderer(func(img *image.RGBA) error {
		w.cursor.Paint(img)
		w.playhead.Paint(img)
		return nil
	})

	w.player.SetVolume(opts.Volume)
	w.player.SetMuted(opts.Muted)
	w.player.SetRate(opts.Rate)
	// the initial settings are not news to the host
	w.queue = events.NewQueue(w.bus)

	return w, nil
}

// locked runs fn under the lock and delivers what it emitted.
func (w *Waveform) locked(fn func()) {
	w.mu.Lock()
	if w.destroyed {
		w.mu.Unlock()
		return
	}
	fn()
	w.unlock()
}

func (w *Waveform) unlock() {
	w.mu.Unlock()
	w.queue.Flush()
}

// dispatch runs under the lock: it keeps the views in step with the
// player, then queues e for the host.
func (w *Waveform) dispatch(e events.Event) {
	switch e.Name {
	case events.Playing, events.Seek:
		w.vis.Follow(e.Value)
		w.playhead.Update()
		w.vis.RequestDraw(true)
	case events.Play, events.Pause, events.PlayEnd, events.Zoom, events.Scroll:
		w.playhead.Update()
		w.vis.RequestDraw(true)
	}
	w.queue.Emit(e)
}

// On subscribes h to name and returns a function that unsubscribes it.
func (w *Waveform) On(name events.Name, h events.Handler) (off func()) {
	return w.bus.On(name, h)
}

func (w *Waveform) Once(name events.Name, h events.Handler) (off func()) {
	return w.bus.Once(name, h)
}

func (w *Waveform) OnAny(h events.Handler) (off func()) {
	return w.bus.OnAny(h)
}

// Load fetches and decodes Src. It returns false when loading failed or a
// newer Load or Destroy superseded it; Err tells the two apart. A failed
// load leaves the previous state untouched.
func (w *Waveform) Load(ctx context.Context) bool {
	w.mu.Lock()
	if w.destroyed {
		w.mu.Unlock()
		return false
	}
	w.loadGen++
	gen := w.loadGen
	if w.loader != nil {
		w.loader.Destroy()
	}
	l := loader.New(w.loaderOptions())
	w.loader = l
	w.unlock()

	a := l.Load(ctx)
	var data *channeldata.ChannelData
	if a != nil {
		data = w.channelData(a)
		if err := data.Recalc(ctx); err != nil {
			w.log.Error().Err(err).Msg("computing channel data")
			a.Destroy()
			a = nil
		}
	}

	w.mu.Lock()
	defer w.unlock()

	if w.destroyed || gen != w.loadGen {
		if a != nil {
			a.Destroy()
		}
		return false
	}
	if a == nil {
		w.loadErr = l.Err()
		if w.loadErr != nil {
			w.emit.Emit(events.Event{Name: events.Error, Subject: w.loadErr})
		}
		return false
	}

	w.attach(a, data)
	w.emit.Emit(events.Event{Name: events.Load, Value: a.Duration()})
	return true
}

func (w *Waveform) loaderOptions() loader.Options {
	dec := decoder.Options{
		Backend:       w.opts.Backend,
		WindowSeconds: w.opts.WindowSeconds,
		Registry:      DefaultRegistry(),
		Logger:        w.log,
	}
	if w.opts.Sink != nil {
		dec.SampleRate = int(w.opts.Sink.SampleRate())
	}

	return loader.Options{
		URL:     w.opts.Src,
		Decoder: dec,
		Pool:    w.opts.Pool,
		Client:  w.opts.Client,
		OnProgress: func(p loader.Progress) {
			var frac float64
			if p.Total > 0 {
				frac = float64(p.Loaded) / float64(p.Total)
			}
			w.queue.Emit(events.Event{Name: events.Loading, Value: frac, Subject: p})
			w.queue.Flush()
		},
		OnDecodeProgress: func(chunk, total int) {
			w.queue.Emit(events.Event{Name: events.Decode, Value: float64(chunk), Subject: total})
			w.queue.Flush()
		},
		Logger: w.log,
	}
}

func (w *Waveform) channelData(a *media.Audio) *channeldata.ChannelData {
	worker := channeldata.Inline()
	if w.opts.Experimental.BackgroundCompute {
		worker = channeldata.Background(runtime.NumCPU())
	}
	return channeldata.New(a.Decoder(), channeldata.Options{
		Denoise: w.opts.Experimental.Denoise,
		Enabled: w.opts.EnabledChannels,
		Worker:  worker,
		Logger:  w.log,
	})
}

// attach swaps in a freshly loaded source. The old one is released only
// after the player has let go of it.
func (w *Waveform) attach(a *media.Audio, data *channeldata.ChannelData) {
	oldAudio, oldElement := w.audio, w.element
	w.element = nil

	sink := w.opts.Sink
	if sink == nil {
		sink = silentSink{}
	}

	var backend player.Backend
	switch a.Decoder().Backend() {
	case decoder.BackendContext:
		backend = player.NewGraphBackend(a, sink)
	default:
		w.element = player.NewStreamElement(a, sink)
		backend = player.NewElementBackend(w.element)
	}

	w.audio = a
	w.data = data
	w.loadErr = nil
	w.player.Attach(a, backend)

	if oldElement != nil {
		oldElement.Close()
	}
	if oldAudio != nil {
		oldAudio.Destroy()
	}
	w.vis.SetData(data)
}

func (w *Waveform) release() {
	if w.element != nil {
		w.element.Close()
		w.element = nil
	}
	if w.audio != nil {
		w.audio.Destroy()
		w.audio = nil
	}
	w.data = nil
}

// Loaded reports whether audio is attached.
func (w *Waveform) Loaded() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.audio != nil
}

// Err is the error of the last failed Load.
func (w *Waveform) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.loadErr
}

// SetDenoise switches smoothing and recomputes the channel data.
func (w *Waveform) SetDenoise(ctx context.Context, on bool) error {
	w.mu.Lock()
	w.opts.Experimental.Denoise = on
	data := w.data
	w.mu.Unlock()
	if data == nil {
		return nil
	}

	data.SetDenoise(on)
	if err := data.Recalc(ctx); err != nil {
		return err
	}

	w.mu.Lock()
	defer w.unlock()
	if w.data == data {
		w.vis.SetData(data)
	}
	return nil
}

// Transport.

func (w *Waveform) Play() {
	w.mu.Lock()
	defer w.unlock()
	w.player.Play()
}

// PlayRange plays [from, to) and pauses at to.
func (w *Waveform) PlayRange(from, to float64) {
	w.mu.Lock()
	defer w.unlock()
	w.player.PlayRange(from, to)
}

func (w *Waveform) Pause() {
	w.mu.Lock()
	defer w.unlock()
	w.player.Pause()
}

// PlayPause toggles playback.
func (w *Waveform) PlayPause() {
	w.mu.Lock()
	defer w.unlock()
	if w.player.Playing() {
		w.player.Pause()
		return
	}
	w.player.Play()
}

func (w *Waveform) Stop() {
	w.mu.Lock()
	defer w.unlock()
	w.player.Stop()
}

func (w *Waveform) Seek(t float64) {
	w.mu.Lock()
	defer w.unlock()
	w.player.Seek(t)
}

// SkipForward moves by step seconds, or SeekStep when step is not positive.
func (w *Waveform) SkipForward(step float64) {
	w.mu.Lock()
	defer w.unlock()
	w.player.SkipForward(step)
}

func (w *Waveform) SkipBackward(step float64) {
	w.mu.Lock()
	defer w.unlock()
	w.player.SkipBackward(step)
}

func (w *Waveform) SetVolume(v float64) {
	w.mu.Lock()
	defer w.unlock()
	w.player.SetVolume(v)
}

func (w *Waveform) SetMuted(m bool) {
	w.mu.Lock()
	defer w.unlock()
	w.player.SetMuted(m)
}

func (w *Waveform) SetRate(r float64) {
	w.mu.Lock()
	defer w.unlock()
	w.player.SetRate(r)
}

func (w *Waveform) CurrentTime() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.player.CurrentTime()
}

func (w *Waveform) Duration() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.player.Duration()
}

func (w *Waveform) Playing() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.player.Playing()
}

func (w *Waveform) Volume() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.player.Volume()
}

// View.

func (w *Waveform) SetZoom(z float64) {
	w.mu.Lock()
	defer w.unlock()
	w.vis.SetZoom(z)
}

func (w *Waveform) SetScroll(f float64) {
	w.mu.Lock()
	defer w.unlock()
	w.vis.SetScroll(f)
}

func (w *Waveform) Zoom() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.vis.Zoom()
}

func (w *Waveform) Scroll() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.vis.Scroll()
}

// Resize relayouts once the size has settled.
func (w *Waveform) Resize(width, height int) error {
	w.mu.Lock()
	defer w.unlock()
	return w.vis.Resize(width, height)
}

// Render draws a full frame now and returns a copy of it.
func (w *Waveform) Render() *image.RGBA {
	w.mu.Lock()
	defer w.unlock()
	w.vis.Draw(false)
	return w.snapshot()
}

// Surface returns a copy of the last composited frame.
func (w *Waveform) Surface() *image.RGBA {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshot()
}

func (w *Waveform) snapshot() *image.RGBA {
	src := w.vis.Surface()
	out := image.NewRGBA(src.Bounds())
	draw.Draw(out, out.Bounds(), src, src.Bounds().Min, draw.Src)
	return out
}

// Cursor is the glyph the host should show.
func (w *Waveform) Cursor() cursor.Glyph {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cursor.Glyph()
}

// Destroy stops playback, releases the audio and drops every subscriber.
// It is idempotent.
func (w *Waveform) Destroy() {
	w.mu.Lock()
	if w.destroyed {
		w.mu.Unlock()
		return
	}
	w.destroyed = true
	if w.loader != nil {
		w.loader.Destroy()
	}
	w.player.Destroy()
	w.release()
	w.regions.Destroy()
	w.vis.Destroy()
	w.stopTicker()
	w.unlock()

	w.bus.Clear()
}

func (w *Waveform) stopTicker() {
	if w.ticker != nil {
		w.ticker.Stop()
	}
}
