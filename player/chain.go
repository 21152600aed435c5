// SPDX-License-Identifier: EPL-2.0

package player

import (
	"math"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

// resampleQuality is the beep resampler quality used for rate changes.
const resampleQuality = 4

// Sink is an audio output. Lock guards the streamers it is playing.
type Sink interface {
	SampleRate() beep.SampleRate
	Play(s beep.Streamer)
	Clear()
	Lock()
	Unlock()
}

// chain is one single-use playback graph:
// source -> resampler -> volume -> ctrl.
type chain struct {
	src  beep.StreamSeeker
	res  *beep.Resampler
	vol  *effects.Volume
	ctrl *beep.Ctrl

	srcRate  beep.SampleRate
	sinkRate beep.SampleRate
}

func newChain(src beep.StreamSeeker, srcRate, sinkRate beep.SampleRate, s settings) *chain {
	c := &chain{src: src, srcRate: srcRate, sinkRate: sinkRate}
	c.res = beep.ResampleRatio(resampleQuality, c.ratio(s.rate), src)
	c.vol = &effects.Volume{Streamer: c.res, Base: 2}
	c.ctrl = &beep.Ctrl{Streamer: c.vol, Paused: true}
	c.apply(s)
	return c
}

func (c *chain) ratio(rate float64) float64 {
	if c.srcRate <= 0 || c.sinkRate <= 0 {
		return rate
	}
	return float64(c.srcRate) / float64(c.sinkRate) * rate
}

// apply must be called with the sink locked once the chain is playing.
func (c *chain) apply(s settings) {
	c.res.SetRatio(c.ratio(s.rate))
	c.vol.Silent = s.muted || s.volume <= 0
	if s.volume > 0 {
		c.vol.Volume = math.Log2(s.volume)
	}
}

// stop detaches the graph so the sink drops it.
func (c *chain) stop() {
	c.ctrl.Paused = true
	c.ctrl.Streamer = nil
}

// position in seconds of the source.
func (c *chain) position() float64 {
	if c.srcRate <= 0 {
		return 0
	}
	return float64(c.src.Position()) / float64(c.srcRate)
}

type settings struct {
	volume float64
	muted  bool
	rate   float64
}

func defaultSettings() settings {
	return settings{volume: 1, rate: 1}
}
