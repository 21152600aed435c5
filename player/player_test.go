// SPDX-License-Identifier: EPL-2.0

package player

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ik5/audwave/events"
	"github.com/ik5/audwave/internal/audiotest"
	"github.com/stretchr/testify/require"
)

type fakeMedia struct {
	duration float64
	volume   float64
	muted    bool
	rate     float64
}

func (m *fakeMedia) Duration() float64   { return m.duration }
func (m *fakeMedia) SetVolume(v float64) { m.volume = v }
func (m *fakeMedia) SetMuted(b bool)     { m.muted = b }
func (m *fakeMedia) SetRate(r float64)   { m.rate = r }

type fakeBackend struct {
	calls     []string
	connected bool
	playErr   error
}

func (b *fakeBackend) PlayAudio() error {
	b.calls = append(b.calls, "play")
	return b.playErr
}

func (b *fakeBackend) ConnectSource(at float64) {
	b.connected = true
	b.calls = append(b.calls, fmt.Sprintf("connect %.2f", at))
}

func (b *fakeBackend) DisconnectSource() {
	b.connected = false
	b.calls = append(b.calls, "disconnect")
}

func (b *fakeBackend) UpdateCurrentSourceTime(t float64) {
	b.calls = append(b.calls, fmt.Sprintf("update %.2f", t))
}

func (b *fakeBackend) CanPause() bool    { return b.connected }
func (b *fakeBackend) SetVolume(float64) {}
func (b *fakeBackend) SetMuted(bool)     {}
func (b *fakeBackend) SetRate(float64)   {}

type ranges []Range

func (r ranges) SelectedRanges() []Range { return r }

type recorder struct {
	events []events.Event
}

func (r *recorder) Emit(e events.Event) { r.events = append(r.events, e) }

func (r *recorder) names() []events.Name {
	out := make([]events.Name, len(r.events))
	for i, e := range r.events {
		out[i] = e.Name
	}
	return out
}

func (r *recorder) count(n events.Name) int {
	c := 0
	for _, e := range r.events {
		if e.Name == n {
			c++
		}
	}
	return c
}

type fixture struct {
	p       *Player
	frames  *audiotest.Frames
	backend *fakeBackend
	media   *fakeMedia
	rec     *recorder
}

func newFixture(duration float64, sel Selection) *fixture {
	f := &fixture{
		frames:  audiotest.NewFrames(),
		backend: &fakeBackend{},
		media:   &fakeMedia{duration: duration},
		rec:     &recorder{},
	}
	f.p = New(Options{Scheduler: f.frames, Emitter: f.rec, Selection: sel})
	f.p.Attach(f.media, f.backend)
	return f
}

func TestSeek_Clamps(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want float64
	}{
		{in: -5, want: 0},
		{in: 0, want: 0},
		{in: 42.5, want: 42.5},
		{in: 100, want: 100},
		{in: 250, want: 100},
	}

	for _, tt := range tests {
		f := newFixture(100, nil)
		f.p.Seek(tt.in)
		require.Equal(t, tt.want, f.p.CurrentTime(), "Seek(%v)", tt.in)
		require.Equal(t, tt.want, f.rec.events[0].Value)
	}
}

func TestPlay_AdvancesClock(t *testing.T) {
	t.Parallel()

	f := newFixture(100, nil)
	f.p.Seek(10)
	f.p.Play()
	require.True(t, f.p.Playing())
	require.Equal(t, []string{"connect 10.00", "play"}, f.backend.calls)

	// first frame only resyncs the source
	f.frames.Step(500 * time.Millisecond)
	require.Equal(t, 10.0, f.p.CurrentTime())
	require.Equal(t, "update 10.00", f.backend.calls[2])

	f.frames.Run(10, 100*time.Millisecond)
	require.InDelta(t, 11, f.p.CurrentTime(), 1e-9)

	f.p.SetRate(2)
	f.frames.Run(10, 100*time.Millisecond)
	require.InDelta(t, 13, f.p.CurrentTime(), 1e-9)
	require.Equal(t, 2.0, f.media.rate)
}

func TestPlay_NoopWhenPlaying(t *testing.T) {
	t.Parallel()

	f := newFixture(100, nil)
	f.p.Play()
	f.p.Play()
	require.Equal(t, 1, f.rec.count(events.Play))
	require.Equal(t, 1, f.frames.Pending())
}

func TestPlay_BackendFailure(t *testing.T) {
	t.Parallel()

	f := newFixture(100, nil)
	f.backend.playErr = errors.New("device busy")
	f.p.Play()

	require.False(t, f.p.Playing())
	require.Zero(t, f.frames.Pending())
	require.Zero(t, f.rec.count(events.Play))
}

func TestPlay_Ends(t *testing.T) {
	t.Parallel()

	f := newFixture(1, nil)
	f.p.Play()
	f.frames.Run(20, 100*time.Millisecond)

	require.Equal(t, 1.0, f.p.CurrentTime())
	require.True(t, f.p.Ended())
	require.Equal(t, Paused, f.p.State())
	require.Equal(t, 1, f.rec.count(events.PlayEnd))
	require.Zero(t, f.frames.Pending())

	names := f.rec.names()
	last := f.rec.events[len(names)-2]
	require.Equal(t, events.Playing, last.Name, "terminal playing event precedes playend")
	require.Equal(t, 1.0, last.Value)

	// playing again after the end starts over
	f.p.Play()
	require.Equal(t, 0.0, f.p.CurrentTime())
	require.False(t, f.p.Ended())
}

func TestPlay_AfterEndSeeksToFrom(t *testing.T) {
	t.Parallel()

	f := newFixture(1, nil)
	f.p.Play()
	f.frames.Run(20, 100*time.Millisecond)
	require.True(t, f.p.Ended())

	f.p.PlayRange(0.25, 0)
	require.Equal(t, 0.25, f.p.CurrentTime())
	require.True(t, f.p.Playing())
}

func TestLoop_SuppressesEnd(t *testing.T) {
	t.Parallel()

	f := newFixture(100, ranges{{Start: 40, End: 60}})
	f.p.Seek(40)
	f.p.Play()

	loop, ok := f.p.Loop()
	require.True(t, ok)
	require.Equal(t, Range{40, 60}, loop)

	f.frames.Run(251, 100*time.Millisecond)

	require.GreaterOrEqual(t, f.p.CurrentTime(), 40.0)
	require.Less(t, f.p.CurrentTime(), 60.0)
	require.Zero(t, f.rec.count(events.PlayEnd))
	require.True(t, f.p.Playing())
}

func TestLoop_NextObservedTimeIsStart(t *testing.T) {
	t.Parallel()

	f := newFixture(100, ranges{{Start: 2, End: 3}, {Start: 1, End: 1.5}})
	f.p.Play()
	require.Equal(t, 1.0, f.p.CurrentTime(), "play jumps into the selected span")

	f.frames.Run(40, 150*time.Millisecond)

	var prev float64
	wrapped := 0
	for _, e := range f.rec.events {
		if e.Name != events.Playing {
			continue
		}
		require.Less(t, e.Value, 3.0)
		if e.Value < prev {
			wrapped++
			require.Equal(t, 1.0, e.Value)
		}
		prev = e.Value
	}
	require.Positive(t, wrapped)
	require.Zero(t, f.rec.count(events.Pause))
}

func TestPlayRange_PausesAtEnd(t *testing.T) {
	t.Parallel()

	f := newFixture(100, nil)
	f.p.PlayRange(10, 12)
	f.frames.Run(40, 100*time.Millisecond)

	require.Equal(t, 12.0, f.p.CurrentTime())
	require.Equal(t, Paused, f.p.State())
	require.False(t, f.p.Ended())
	require.Equal(t, 1, f.rec.count(events.Pause))
	require.Zero(t, f.rec.count(events.PlayEnd))
}

func TestPauseAndStop(t *testing.T) {
	t.Parallel()

	f := newFixture(100, nil)
	f.p.Play()
	f.frames.Run(11, 100*time.Millisecond)
	f.p.Pause()

	require.Equal(t, Paused, f.p.State())
	require.False(t, f.backend.connected)
	require.Zero(t, f.frames.Pending())
	n := len(f.rec.events)
	require.Equal(t, events.Pause, f.rec.events[n-2].Name)
	require.Equal(t, events.Seek, f.rec.events[n-1].Name)
	require.InDelta(t, 1, f.rec.events[n-1].Value, 1e-9)

	f.p.Play()
	f.rec.events = nil
	f.p.Stop()
	require.Equal(t, Stopped, f.p.State())
	require.Equal(t, 0.0, f.p.CurrentTime())
	require.Equal(t, []events.Name{events.Pause}, f.rec.names())
}

func TestSeek_WhilePlayingReconnects(t *testing.T) {
	t.Parallel()

	f := newFixture(100, nil)
	f.p.Play()
	f.backend.calls = nil
	f.p.Seek(30)

	require.True(t, f.p.Playing())
	require.Equal(t, []string{"disconnect", "connect 30.00", "play"}, f.backend.calls)
}

func TestSkip(t *testing.T) {
	t.Parallel()

	f := newFixture(100, nil)
	f.p.SkipForward(0)
	require.Equal(t, DefaultSeekStep, f.p.CurrentTime())
	f.p.SkipBackward(2)
	require.Equal(t, 3.0, f.p.CurrentTime())
	f.p.SkipBackward(10)
	require.Equal(t, 0.0, f.p.CurrentTime())
}

func TestSettings(t *testing.T) {
	t.Parallel()

	f := newFixture(100, nil)
	f.p.SetVolume(2)
	f.p.SetMuted(true)
	f.p.SetRate(-1)

	require.Equal(t, 1.0, f.media.volume)
	require.True(t, f.media.muted)
	require.Equal(t, 1.0, f.p.Rate())
	require.Equal(t, []events.Name{events.VolumeChange, events.Muted}, f.rec.names())
}

func TestNoopsWithoutAudio(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	frames := audiotest.NewFrames()
	p := New(Options{Scheduler: frames, Emitter: rec})

	p.Play()
	p.Seek(10)
	p.Pause()
	p.Stop()
	require.Empty(t, rec.events)
	require.Zero(t, frames.Pending())

	f := newFixture(100, nil)
	f.p.Play()
	f.p.Destroy()
	f.p.Destroy()
	f.rec.events = nil
	f.p.Play()
	f.p.Seek(3)
	f.p.SetVolume(0.5)
	f.frames.Run(3, time.Second)
	require.Empty(t, f.rec.events)
	require.Equal(t, 0.0, f.p.CurrentTime())
}
