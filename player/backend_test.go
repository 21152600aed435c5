// SPDX-License-Identifier: EPL-2.0

package player

import (
	"context"
	"testing"
	"time"

	"github.com/ik5/audwave/audio"
	"github.com/ik5/audwave/decoder"
	"github.com/ik5/audwave/formats/wav"
	"github.com/ik5/audwave/internal/audiotest"
	"github.com/ik5/audwave/media"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// constantAudio decodes one second of a constant half-scale mono signal.
func constantAudio(t *testing.T) *media.Audio {
	t.Helper()

	samples := make([]int16, 8000)
	for i := range samples {
		samples[i] = 16384
	}
	reg := audio.NewRegistry()
	reg.Register(audio.FormatWAV, wav.Decoder{})

	pool := decoder.NewPool(time.Minute, zerolog.Nop())
	a := media.New(pool.Open(t.Name(), decoder.Options{Registry: reg}), zerolog.Nop())
	require.NoError(t, a.DecodeAudioData(context.Background(), audiotest.WAV(8000, 1, samples)))
	t.Cleanup(a.Destroy)
	return a
}

func TestGraphBackend(t *testing.T) {
	t.Parallel()

	sink := audiotest.NewSink(8000)
	g := NewGraphBackend(constantAudio(t), sink)

	require.ErrorIs(t, g.PlayAudio(), ErrNotConnected)
	require.False(t, g.CanPause())

	g.ConnectSource(0.25)
	require.True(t, g.CanPause())
	require.Equal(t, 1, sink.Plays())
	require.Equal(t, [2]float64{}, sink.Pull(100)[50], "connected graph must wait for PlayAudio")

	require.NoError(t, g.PlayAudio())
	out := sink.Pull(100)
	require.InDelta(t, 0.5, out[50][0], 1e-3)
	require.InDelta(t, 0.5, out[50][1], 1e-3)

	// every connect builds a new graph and drops the old one
	g.ConnectSource(0)
	sink.Pull(1)
	require.Equal(t, 2, sink.Plays())
	require.Equal(t, 1, sink.Active())

	require.NoError(t, g.PlayAudio())
	g.UpdateCurrentSourceTime(0.5)
	require.Equal(t, 3, sink.Plays())
	require.InDelta(t, 0.5, sink.Pull(100)[50][0], 1e-3, "resynced graph keeps playing")

	g.DisconnectSource()
	sink.Pull(1)
	require.Zero(t, sink.Active())
	require.False(t, g.CanPause())
}

func TestGraphBackend_VolumeAndMute(t *testing.T) {
	t.Parallel()

	sink := audiotest.NewSink(8000)
	g := NewGraphBackend(constantAudio(t), sink)
	g.SetVolume(0.5)
	g.ConnectSource(0)
	require.NoError(t, g.PlayAudio())
	require.InDelta(t, 0.25, sink.Pull(100)[50][0], 1e-3)

	g.SetMuted(true)
	require.Equal(t, 0.0, sink.Pull(100)[50][0])

	g.SetMuted(false)
	g.SetVolume(0)
	require.Equal(t, 0.0, sink.Pull(100)[50][0])
}

func TestStreamElement(t *testing.T) {
	t.Parallel()

	sink := audiotest.NewSink(8000)
	el := NewStreamElement(constantAudio(t), sink)
	b := NewElementBackend(el)

	require.False(t, b.CanPause())
	b.ConnectSource(0.5)
	require.Equal(t, 0.5, el.CurrentTime())

	require.NoError(t, b.PlayAudio())
	require.True(t, b.CanPause())
	require.InDelta(t, 0.5, sink.Pull(100)[50][0], 1e-3)
	require.Greater(t, el.CurrentTime(), 0.5)

	b.DisconnectSource()
	require.True(t, el.Paused())
	require.Equal(t, [2]float64{}, sink.Pull(10)[5])

	// the element reuses its stream
	b.UpdateCurrentSourceTime(0.1)
	require.NoError(t, b.PlayAudio())
	require.Equal(t, 1, sink.Plays())

	el.SetCurrentTime(5)
	require.LessOrEqual(t, el.CurrentTime(), 1.0)

	el.Close()
	sink.Pull(1)
	require.Zero(t, sink.Active())
}

func TestPlayer_WithGraphBackend(t *testing.T) {
	t.Parallel()

	a := constantAudio(t)
	sink := audiotest.NewSink(8000)
	frames := audiotest.NewFrames()

	p := New(Options{Scheduler: frames})
	p.Attach(a, NewGraphBackend(a, sink))
	p.Play()
	frames.Run(12, 100*time.Millisecond)
	require.Greater(t, sink.Plays(), 0)

	require.Eventually(t, func() bool {
		frames.Step(100 * time.Millisecond)
		return p.Ended()
	}, time.Second, time.Millisecond)
	sink.Pull(1)
	require.Zero(t, sink.Active())
}
