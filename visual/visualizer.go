// SPDX-License-Identifier: EPL-2.0

package visual

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ik5/audwave/events"
	"github.com/ik5/audwave/frame"
	"github.com/ik5/audwave/utils"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultMaxZoom        = 150.0
	DefaultResizeDebounce = 100 * time.Millisecond
)

// Clock reports the playback position the viewport follows.
type Clock interface {
	CurrentTime() float64
	Duration() float64
}

// Data is the processed sample data the waveform is drawn from.
type Data interface {
	Channels() int
	Channel(i int) []float32
	Len() int
}

type Options struct {
	Width, Height int

	Zoom    float64
	MaxZoom float64

	// ZoomToCursor recenters on the playback position when zooming.
	ZoomToCursor bool
	// AutoCenter keeps the playback position centered while following.
	AutoCenter bool
	// SplitChannels draws one band per channel instead of the first only.
	SplitChannels bool

	// Padding is the vertical space kept free around each band, in pixels.
	Padding int

	WaveColor       color.Color
	BackgroundColor color.Color
	GridColor       color.Color

	ResizeDebounce time.Duration
	Logger         zerolog.Logger
}

type Deps struct {
	Scheduler frame.Scheduler
	Emitter   events.Emitter
	Clock     Clock
	// Post runs fn on the goroutine that owns the visualizer. Debounced
	// resizes arrive through it. Defaults to calling fn directly.
	Post func(fn func())
}

// Visualizer composites named layers onto one surface.
type Visualizer struct {
	opts  Options
	log   zerolog.Logger
	sched frame.Scheduler
	emit  events.Emitter
	clock Clock
	post  func(func())

	width, height int
	zoom, scroll  float64

	layers  map[string]*Layer
	surface *image.RGBA
	data    Data

	drawing    atomic.Bool
	queued     bool
	queuedDry  bool
	cancelDraw func()

	resizeMu    sync.Mutex
	resizeTimer *time.Timer
	pendingW    int
	pendingH    int

	destroyed bool
}

type noClock struct{}

func (noClock) CurrentTime() float64 { return 0 }
func (noClock) Duration() float64    { return 0 }

func New(opts Options, deps Deps) (*Visualizer, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, opts.Width, opts.Height)
	}
	if opts.MaxZoom < 1 {
		opts.MaxZoom = DefaultMaxZoom
	}
	if opts.ResizeDebounce <= 0 {
		opts.ResizeDebounce = DefaultResizeDebounce
	}
	if opts.WaveColor == nil {
		opts.WaveColor = color.NRGBA{R: 0x60, G: 0x9c, B: 0xf0, A: 0xff}
	}
	if opts.BackgroundColor == nil {
		opts.BackgroundColor = color.NRGBA{R: 0x18, G: 0x1a, B: 0x1f, A: 0xff}
	}
	if opts.GridColor == nil {
		opts.GridColor = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0x18}
	}
	if deps.Scheduler == nil {
		deps.Scheduler = frame.NewTicker(frame.DefaultRate)
	}
	if deps.Emitter == nil {
		deps.Emitter = events.Discard
	}
	if deps.Clock == nil {
		deps.Clock = noClock{}
	}
	if deps.Post == nil {
		deps.Post = func(fn func()) { fn() }
	}

	v := &Visualizer{
		opts:    opts,
		log:     opts.Logger,
		sched:   deps.Scheduler,
		emit:    deps.Emitter,
		clock:   deps.Clock,
		post:    deps.Post,
		width:   opts.Width,
		height:  opts.Height,
		zoom:    utils.Clamp(opts.Zoom, 1, opts.MaxZoom),
		layers:  make(map[string]*Layer),
		surface: image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height)),
	}

	for _, l := range []struct {
		name      string
		z         int
		offscreen bool
		render    RenderFunc
	}{
		{LayerBackground, 0, true, v.renderBackground},
		{LayerWaveform, 10, true, v.renderWaveform},
		{LayerRegions, 20, false, nil},
		{LayerControls, 30, false, nil},
	} {
		if _, err := v.CreateLayer(l.name, l.z, l.offscreen, l.render); err != nil {
			return nil, err
		}
	}

	return v, nil
}

// CreateLayer adds a layer. Names are unique.
func (v *Visualizer) CreateLayer(name string, z int, offscreen bool, render RenderFunc) (*Layer, error) {
	if _, ok := v.layers[name]; ok {
		return nil, fmt.Errorf("%w: %q", ErrLayerExists, name)
	}
	l := newLayer(name, z, offscreen, render, v.width, v.height)
	v.layers[name] = l
	return l, nil
}

// Layer returns the named layer or nil.
func (v *Visualizer) Layer(name string) *Layer { return v.layers[name] }

func (v *Visualizer) RemoveLayer(name string) error {
	if _, ok := v.layers[name]; !ok {
		return fmt.Errorf("%w: %q", ErrNoLayer, name)
	}
	delete(v.layers, name)
	return nil
}

// Layers lists layer names bottom to top.
func (v *Visualizer) Layers() []string {
	sorted := v.sorted()
	out := make([]string, len(sorted))
	for i, l := range sorted {
		out[i] = l.name
	}
	return out
}

func (v *Visualizer) sorted() []*Layer {
	out := make([]*Layer, 0, len(v.layers))
	for _, l := range v.layers {
		out = append(out, l)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].z != out[j].z {
			return out[i].z < out[j].z
		}
		return out[i].name < out[j].name
	})
	return out
}

// SetData replaces the sample data and schedules a full draw.
func (v *Visualizer) SetData(d Data) {
	v.data = d
	v.RequestDraw(false)
}

// Draw renders a frame. A dry draw skips the offscreen layers and only
// repaints the live ones. A Draw that starts while another is running is
// dropped and returns false.
func (v *Visualizer) Draw(dry bool) bool {
	if !v.drawing.CompareAndSwap(false, true) {
		v.log.Warn().Bool("dry", dry).Msg("draw already running, frame dropped")
		return false
	}
	defer v.drawing.Store(false)

	if v.destroyed {
		return false
	}

	layers := v.sorted()
	if !dry {
		var g errgroup.Group
		for _, l := range layers {
			if l.offscreen {
				g.Go(l.paint)
			}
		}
		if err := g.Wait(); err != nil {
			v.log.Error().Err(err).Msg("rendering offscreen layers")
		}
	}

	v.emit.Emit(events.Event{Name: events.Draw, Flag: dry})

	for _, l := range layers {
		if l.offscreen {
			continue
		}
		if err := l.paint(); err != nil {
			v.log.Error().Err(err).Str("layer", l.name).Msg("rendering layer")
		}
	}

	draw.Draw(v.surface, v.surface.Bounds(), image.Transparent, image.Point{}, draw.Src)
	for _, l := range layers {
		composite(v.surface, l)
	}
	return true
}

// RequestDraw schedules one draw on the next frame. Requests made before
// it runs are merged; it is dry only if all of them were.
func (v *Visualizer) RequestDraw(dry bool) {
	if v.destroyed {
		return
	}
	if v.queued {
		v.queuedDry = v.queuedDry && dry
		return
	}
	v.queued = true
	v.queuedDry = dry
	v.cancelDraw = v.sched.Request(func(time.Time) {
		v.queued = false
		v.cancelDraw = nil
		v.Draw(v.queuedDry)
	})
}

func (v *Visualizer) renderBackground(img *image.RGBA) error {
	return grid{vp: v.Viewport(), background: v.opts.BackgroundColor, line: v.opts.GridColor}.render(img)
}

func (v *Visualizer) renderWaveform(img *image.RGBA) error {
	if v.data == nil || v.data.Len() == 0 {
		return nil
	}
	vp := v.Viewport()

	n := v.data.Channels()
	if !v.opts.SplitChannels {
		n = min(n, 1)
	}
	channels := make([][]float32, 0, n)
	for i := range n {
		channels = append(channels, v.data.Channel(i))
	}

	spp := vp.SamplesPerPixel(v.data.Len())
	return trace{
		channels: channels,
		spp:      spp,
		start:    int(vp.ScrollPixels()) * spp,
		width:    vp.Width,
		height:   vp.Height,
		padding:  v.opts.Padding,
		color:    v.opts.WaveColor,
	}.render(img)
}

// Viewport is the current time/pixel mapping.
func (v *Visualizer) Viewport() Viewport {
	return Viewport{
		Width:    v.width,
		Height:   v.height,
		Zoom:     v.zoom,
		Scroll:   v.scroll,
		Duration: v.clock.Duration(),
	}
}

func (v *Visualizer) Zoom() float64   { return v.zoom }
func (v *Visualizer) Scroll() float64 { return v.scroll }
func (v *Visualizer) Width() int      { return v.width }
func (v *Visualizer) Height() int     { return v.height }

func (v *Visualizer) FullWidth() float64                 { return v.Viewport().FullWidth() }
func (v *Visualizer) TimeToX(t float64) float64          { return v.Viewport().TimeToX(t) }
func (v *Visualizer) XToTime(x float64) float64          { return v.Viewport().XToTime(x) }
func (v *Visualizer) PixelsToSeconds(px float64) float64 { return v.Viewport().PixelsToSeconds(px) }

func (v *Visualizer) SamplesPerPixel() int {
	if v.data == nil {
		return 1
	}
	return v.Viewport().SamplesPerPixel(v.data.Len())
}

// SetZoom clamps z to [1, MaxZoom]. With ZoomToCursor the view is centered
// on the playback position, otherwise the scroll fraction is kept.
func (v *Visualizer) SetZoom(z float64) {
	if v.destroyed {
		return
	}
	z = utils.Clamp(z, 1, v.opts.MaxZoom)
	if z == v.zoom {
		return
	}
	v.zoom = z

	scroll := v.scroll
	if v.opts.ZoomToCursor {
		scroll = v.Viewport().ScrollFor(v.clock.CurrentTime(), float64(v.width)/2)
	}
	if z == 1 {
		scroll = 0
	}

	v.emit.Emit(events.Event{Name: events.Zoom, Value: z})
	v.setScroll(scroll)
	v.RequestDraw(false)
}

// SetScroll clamps f to [0, 1].
func (v *Visualizer) SetScroll(f float64) {
	if v.destroyed {
		return
	}
	if v.setScroll(f) {
		v.RequestDraw(false)
	}
}

func (v *Visualizer) setScroll(f float64) bool {
	f = utils.Clamp(f, 0, 1)
	if f == v.scroll {
		return false
	}
	v.scroll = f
	v.emit.Emit(events.Event{Name: events.Scroll, Value: f})
	return true
}

// ScrollToTime centers the view on t.
func (v *Visualizer) ScrollToTime(t float64) {
	v.SetScroll(v.Viewport().ScrollFor(t, float64(v.width)/2))
}

// Follow keeps t in view while playing. With AutoCenter t stays centered;
// otherwise the view pages once t leaves it.
func (v *Visualizer) Follow(t float64) {
	if v.destroyed || v.zoom <= 1 {
		return
	}
	vp := v.Viewport()
	if v.opts.AutoCenter {
		v.SetScroll(vp.ScrollFor(t, float64(vp.Width)/2))
		return
	}
	if x := vp.TimeToX(t); x >= 0 && x < float64(vp.Width) {
		return
	}
	v.SetScroll(vp.ScrollFor(t, 0))
}

// Resize relayouts after the size has been stable for the debounce period.
func (v *Visualizer) Resize(w, h int) error {
	if w <= 0 || h <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, w, h)
	}

	v.resizeMu.Lock()
	defer v.resizeMu.Unlock()

	v.pendingW, v.pendingH = w, h
	if v.resizeTimer != nil {
		v.resizeTimer.Stop()
	}
	v.resizeTimer = time.AfterFunc(v.opts.ResizeDebounce, func() {
		v.post(v.applyResize)
	})
	return nil
}

func (v *Visualizer) applyResize() {
	v.resizeMu.Lock()
	w, h := v.pendingW, v.pendingH
	v.resizeTimer = nil
	v.resizeMu.Unlock()

	if err := v.Relayout(w, h); err != nil {
		v.log.Warn().Err(err).Msg("resize")
	}
}

// Relayout resizes every layer at once and redraws.
func (v *Visualizer) Relayout(w, h int) error {
	if w <= 0 || h <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, w, h)
	}
	if v.destroyed {
		return nil
	}

	v.width, v.height = w, h
	for _, l := range v.layers {
		l.resize(w, h)
	}
	v.surface = image.NewRGBA(image.Rect(0, 0, w, h))
	v.log.Debug().Int("width", w).Int("height", h).Msg("relayout")

	v.emit.Emit(events.Event{Name: events.Resize, Value: float64(w)})
	v.Draw(false)
	return nil
}

// Surface is the composited frame.
func (v *Visualizer) Surface() *image.RGBA { return v.surface }

func (v *Visualizer) Destroy() {
	if v.destroyed {
		return
	}
	v.destroyed = true
	if v.cancelDraw != nil {
		v.cancelDraw()
		v.cancelDraw = nil
	}
	v.queued = false

	v.resizeMu.Lock()
	if v.resizeTimer != nil {
		v.resizeTimer.Stop()
		v.resizeTimer = nil
	}
	v.resizeMu.Unlock()
}
