// SPDX-License-Identifier: EPL-2.0

package visual

import (
	"errors"
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/ik5/audwave/events"
	"github.com/ik5/audwave/frame"
	"github.com/stretchr/testify/require"
)

type fixedClock struct{ cur, dur float64 }

func (c fixedClock) CurrentTime() float64 { return c.cur }
func (c fixedClock) Duration() float64    { return c.dur }

type sliceData [][]float32

func (d sliceData) Channels() int           { return len(d) }
func (d sliceData) Channel(i int) []float32 { return d[i] }
func (d sliceData) Len() int {
	if len(d) == 0 {
		return 0
	}
	return len(d[0])
}

// manual runs frame callbacks only when flushed.
type manual struct{ pending []func(time.Time) }

func (m *manual) Request(cb func(time.Time)) func() {
	m.pending = append(m.pending, cb)
	i := len(m.pending) - 1
	return func() { m.pending[i] = nil }
}

func (m *manual) flush() {
	due := m.pending
	m.pending = nil
	for _, cb := range due {
		if cb != nil {
			cb(time.Time{})
		}
	}
}

type recorder struct{ got []events.Event }

func (r *recorder) Emit(e events.Event) { r.got = append(r.got, e) }

func (r *recorder) names() []events.Name {
	out := make([]events.Name, len(r.got))
	for i, e := range r.got {
		out[i] = e.Name
	}
	return out
}

func newVisualizer(t *testing.T, opts Options, clock Clock) (*Visualizer, *manual, *recorder) {
	t.Helper()

	if opts.Width == 0 {
		opts.Width, opts.Height = 100, 40
	}
	sched := &manual{}
	rec := &recorder{}
	v, err := New(opts, Deps{Scheduler: sched, Emitter: rec, Clock: clock})
	require.NoError(t, err)
	t.Cleanup(v.Destroy)
	return v, sched, rec
}

func TestNew_InvalidDimensions(t *testing.T) {
	t.Parallel()

	for _, sz := range [][2]int{{0, 10}, {10, 0}, {-1, -1}} {
		_, err := New(Options{Width: sz[0], Height: sz[1]}, Deps{})
		require.ErrorIs(t, err, ErrInvalidDimensions)
	}
}

func TestNew_DefaultLayers(t *testing.T) {
	t.Parallel()

	v, _, _ := newVisualizer(t, Options{}, nil)

	want := []string{LayerBackground, LayerWaveform, LayerRegions, LayerControls}
	if diff := cmp.Diff(want, v.Layers()); diff != "" {
		t.Fatalf("layers (-want +got):\n%s", diff)
	}
	require.True(t, v.Layer(LayerWaveform).Offscreen())
	require.False(t, v.Layer(LayerControls).Offscreen())
}

func TestLayers_CreateRemove(t *testing.T) {
	t.Parallel()

	v, _, _ := newVisualizer(t, Options{}, nil)

	_, err := v.CreateLayer(LayerRegions, 5, false, nil)
	require.ErrorIs(t, err, ErrLayerExists)

	l, err := v.CreateLayer("minimap", 40, false, nil)
	require.NoError(t, err)
	require.Equal(t, 40, l.Z())
	require.Equal(t, "minimap", v.Layers()[4])

	require.NoError(t, v.RemoveLayer("minimap"))
	require.ErrorIs(t, v.RemoveLayer("minimap"), ErrNoLayer)
	require.Nil(t, v.Layer("minimap"))
}

func TestSetZoom_ToCursor(t *testing.T) {
	t.Parallel()

	v, _, rec := newVisualizer(t, Options{ZoomToCursor: true}, fixedClock{cur: 50, dur: 100})

	v.SetZoom(5)
	require.Equal(t, 5.0, v.Zoom())
	require.InDelta(t, 0.5, v.Scroll(), 1e-9)
	require.Equal(t, []events.Name{events.Zoom, events.Scroll}, rec.names())

	// the playhead ends up in the middle of the view
	require.InDelta(t, 50, v.TimeToX(50), 1e-9)
}

func TestSetZoom_KeepsScrollFraction(t *testing.T) {
	t.Parallel()

	v, _, _ := newVisualizer(t, Options{}, fixedClock{cur: 90, dur: 100})

	v.SetZoom(4)
	v.SetScroll(0.25)
	v.SetZoom(8)
	require.InDelta(t, 0.25, v.Scroll(), 1e-9)

	v.SetZoom(1000)
	require.Equal(t, DefaultMaxZoom, v.Zoom())

	v.SetZoom(0)
	require.Equal(t, 1.0, v.Zoom())
	require.Zero(t, v.Scroll())
}

func TestFollow(t *testing.T) {
	t.Parallel()

	t.Run("paging", func(t *testing.T) {
		t.Parallel()

		v, _, _ := newVisualizer(t, Options{Zoom: 4}, fixedClock{dur: 100})

		v.Follow(10)
		require.Zero(t, v.Scroll())

		// 30s sits at x=120, past the right edge
		v.Follow(30)
		require.InDelta(t, 120.0/300, v.Scroll(), 1e-9)
		require.InDelta(t, 0, v.TimeToX(30), 1e-9)
	})

	t.Run("auto center", func(t *testing.T) {
		t.Parallel()

		v, _, _ := newVisualizer(t, Options{Zoom: 4, AutoCenter: true}, fixedClock{dur: 100})

		v.Follow(50)
		require.InDelta(t, 50, v.TimeToX(50), 1e-9)
	})
}

func TestDraw_OffscreenOnlyOnFullDraw(t *testing.T) {
	t.Parallel()

	v, _, rec := newVisualizer(t, Options{}, fixedClock{dur: 1})

	var offscreen, live int
	v.Layer(LayerWaveform).SetRenderer(func(*image.RGBA) error { offscreen++; return nil })
	v.Layer(LayerControls).SetRenderer(func(*image.RGBA) error { live++; return nil })

	require.True(t, v.Draw(false))
	require.True(t, v.Draw(true))
	require.True(t, v.Draw(true))

	require.Equal(t, 1, offscreen)
	require.Equal(t, 3, live)

	require.Len(t, rec.got, 3)
	require.False(t, rec.got[0].Flag)
	require.True(t, rec.got[1].Flag)
}

func TestDraw_RejectsReentrant(t *testing.T) {
	t.Parallel()

	v, _, _ := newVisualizer(t, Options{}, nil)

	var nested bool
	v.Layer(LayerControls).SetRenderer(func(*image.RGBA) error {
		nested = v.Draw(true)
		return nil
	})

	require.True(t, v.Draw(true))
	require.False(t, nested)
}

func TestDraw_RendererErrorIsLogged(t *testing.T) {
	t.Parallel()

	v, _, _ := newVisualizer(t, Options{}, nil)
	v.Layer(LayerBackground).SetRenderer(func(*image.RGBA) error { return errors.New("boom") })

	require.True(t, v.Draw(false))
}

func TestRequestDraw_Coalesces(t *testing.T) {
	t.Parallel()

	v, sched, rec := newVisualizer(t, Options{}, nil)

	v.RequestDraw(true)
	v.RequestDraw(false)
	v.RequestDraw(true)
	require.Len(t, sched.pending, 1)

	sched.flush()
	require.Len(t, rec.got, 1)
	require.False(t, rec.got[0].Flag)
}

func TestRequestDraw_CancelledByDestroy(t *testing.T) {
	t.Parallel()

	v, sched, rec := newVisualizer(t, Options{}, nil)

	v.RequestDraw(false)
	v.Destroy()
	sched.flush()
	require.Empty(t, rec.got)
}

func TestComposite(t *testing.T) {
	t.Parallel()

	red := color.RGBA{R: 200, A: 255}
	blue := color.RGBA{B: 100, A: 255}

	fill := func(c color.RGBA) RenderFunc {
		return func(img *image.RGBA) error {
			b := img.Bounds()
			for y := b.Min.Y; y < b.Max.Y; y++ {
				for x := b.Min.X; x < b.Max.X; x++ {
					img.SetRGBA(x, y, c)
				}
			}
			return nil
		}
	}

	tests := []struct {
		name    string
		mode    CompositeMode
		opacity float64
		want    color.RGBA
	}{
		{"over", CompositeOver, 1, blue},
		{"lighter", CompositeLighter, 1, color.RGBA{R: 200, B: 100, A: 255}},
		{"hidden by opacity", CompositeOver, 0, red},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			v, _, _ := newVisualizer(t, Options{Width: 4, Height: 4}, nil)
			v.Layer(LayerBackground).SetRenderer(fill(red))
			v.Layer(LayerWaveform).SetRenderer(nil)

			top := v.Layer(LayerControls)
			top.SetRenderer(fill(blue))
			top.SetMode(tt.mode)
			top.SetOpacity(tt.opacity)

			require.True(t, v.Draw(false))
			require.Equal(t, tt.want, v.Surface().RGBAAt(1, 1))
		})
	}
}

func TestWaveform_Rendered(t *testing.T) {
	t.Parallel()

	v, _, _ := newVisualizer(t, Options{Width: 50, Height: 20, WaveColor: color.White}, fixedClock{dur: 1})
	v.Layer(LayerBackground).SetVisible(false)

	samples := make([]float32, 500)
	for i := range samples {
		samples[i] = 0.8
		if i%2 == 1 {
			samples[i] = -0.8
		}
	}
	v.SetData(sliceData{samples})
	require.Equal(t, 10, v.SamplesPerPixel())

	require.True(t, v.Draw(false))
	img := v.Layer(LayerWaveform).Image()
	require.NotZero(t, img.RGBAAt(25, 10).A)
	require.Zero(t, img.RGBAAt(25, 0).A)
}

func TestGridStep(t *testing.T) {
	t.Parallel()

	g := grid{vp: Viewport{Width: 1000, Zoom: 1, Duration: 100}}
	require.Equal(t, 5.0, g.step())

	g.vp.Zoom = 10
	require.Equal(t, 0.5, g.step())

	g.vp.Duration = 0
	require.Zero(t, g.step())
}

func TestViewport(t *testing.T) {
	t.Parallel()

	vp := Viewport{Width: 100, Zoom: 2, Scroll: 1, Duration: 10}

	require.Equal(t, 200.0, vp.FullWidth())
	require.Equal(t, 100.0, vp.ScrollPixels())
	require.Equal(t, 0.0, vp.TimeToX(5))
	require.Equal(t, 7.5, vp.XToTime(50))
	require.Equal(t, 10.0, vp.XToTime(500))
	require.Equal(t, 0.5, vp.PixelsToSeconds(10))
	require.Equal(t, 3, vp.SamplesPerPixel(500))
	require.Equal(t, 1, vp.SamplesPerPixel(0))
}

func TestResize_Debounced(t *testing.T) {
	t.Parallel()

	posted := make(chan func(), 4)
	rec := &recorder{}
	v, err := New(Options{Width: 100, Height: 40, ResizeDebounce: 20 * time.Millisecond}, Deps{
		Scheduler: frame.SchedulerFunc(func(func(time.Time)) func() { return func() {} }),
		Emitter:   rec,
		Post:      func(fn func()) { posted <- fn },
	})
	require.NoError(t, err)
	defer v.Destroy()

	require.ErrorIs(t, v.Resize(0, 10), ErrInvalidDimensions)
	require.NoError(t, v.Resize(200, 50))
	require.NoError(t, v.Resize(300, 60))

	var fn func()
	select {
	case fn = <-posted:
	case <-time.After(time.Second):
		t.Fatal("resize never applied")
	}
	fn()

	require.Equal(t, 300, v.Width())
	require.Equal(t, 60, v.Height())
	require.Equal(t, image.Rect(0, 0, 300, 60), v.Layer(LayerControls).Image().Bounds())
	require.Equal(t, image.Rect(0, 0, 300, 60), v.Surface().Bounds())
	require.Contains(t, rec.names(), events.Resize)

	select {
	case <-posted:
		t.Fatal("second resize was not debounced")
	case <-time.After(60 * time.Millisecond):
	}
}
