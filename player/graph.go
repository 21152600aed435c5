// SPDX-License-Identifier: EPL-2.0

package player

import (
	"time"

	"github.com/ik5/audwave/media"
	"github.com/ik5/audwave/utils"
)

// GraphBackend builds a fresh playback graph on every connect, since a
// started graph cannot be rewound.
type GraphBackend struct {
	audio *media.Audio
	sink  Sink

	c   *chain
	set settings
}

func NewGraphBackend(a *media.Audio, sink Sink) *GraphBackend {
	return &GraphBackend{audio: a, sink: sink, set: defaultSettings()}
}

func (g *GraphBackend) ConnectSource(at float64) {
	g.DisconnectSource()

	at = utils.Clamp(at, 0, g.audio.Duration())
	g.c = newChain(g.audio.Streamer(at), g.audio.Format().SampleRate, g.sink.SampleRate(), g.set)
	g.sink.Play(g.c.ctrl)
}

func (g *GraphBackend) PlayAudio() error {
	if g.c == nil {
		return ErrNotConnected
	}
	g.sink.Lock()
	g.c.ctrl.Paused = false
	g.sink.Unlock()
	return nil
}

func (g *GraphBackend) DisconnectSource() {
	if g.c == nil {
		return
	}
	g.sink.Lock()
	g.c.stop()
	g.sink.Unlock()
	g.c = nil
}

func (g *GraphBackend) UpdateCurrentSourceTime(t float64) {
	if g.c == nil {
		return
	}
	g.sink.Lock()
	playing := !g.c.ctrl.Paused
	g.sink.Unlock()

	g.ConnectSource(t)
	if playing {
		_ = g.PlayAudio()
	}
}

func (g *GraphBackend) CanPause() bool { return g.c != nil }

// SourceTime is the position of the connected graph in seconds.
func (g *GraphBackend) SourceTime() (float64, bool) {
	if g.c == nil {
		return 0, false
	}
	g.sink.Lock()
	defer g.sink.Unlock()
	return g.c.position(), true
}

func (g *GraphBackend) SetVolume(v float64) {
	g.set.volume = utils.Clamp(v, 0, 1)
	g.update()
}

func (g *GraphBackend) SetMuted(m bool) {
	g.set.muted = m
	g.update()
}

func (g *GraphBackend) SetRate(r float64) {
	if r <= 0 {
		return
	}
	g.set.rate = r
	g.update()
}

func (g *GraphBackend) update() {
	if g.c == nil {
		return
	}
	g.sink.Lock()
	g.c.apply(g.set)
	g.sink.Unlock()
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
