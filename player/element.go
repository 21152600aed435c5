// SPDX-License-Identifier: EPL-2.0

package player

import (
	"github.com/ik5/audwave/media"
	"github.com/ik5/audwave/utils"
)

// StreamElement is a MediaElement that plays a media.Audio into a Sink.
// Unlike the graph backend it keeps one stream for its whole life and
// pauses and seeks it in place.
type StreamElement struct {
	audio *media.Audio
	sink  Sink

	c      *chain
	paused bool
	pos    float64
	set    settings
}

func NewStreamElement(a *media.Audio, sink Sink) *StreamElement {
	return &StreamElement{audio: a, sink: sink, paused: true, set: defaultSettings()}
}

func (e *StreamElement) Play() error {
	if e.c == nil {
		e.c = newChain(e.audio.Streamer(e.pos), e.audio.Format().SampleRate, e.sink.SampleRate(), e.set)
		e.c.ctrl.Paused = false
		e.sink.Play(e.c.ctrl)
		e.paused = false
		return nil
	}

	e.sink.Lock()
	e.c.ctrl.Paused = false
	e.sink.Unlock()
	e.paused = false
	return nil
}

func (e *StreamElement) Pause() {
	if e.c != nil {
		e.sink.Lock()
		e.c.ctrl.Paused = true
		e.sink.Unlock()
	}
	e.paused = true
}

func (e *StreamElement) Paused() bool { return e.paused }

func (e *StreamElement) CurrentTime() float64 {
	if e.c == nil {
		return e.pos
	}
	e.sink.Lock()
	defer e.sink.Unlock()
	return e.c.position()
}

func (e *StreamElement) SetCurrentTime(t float64) {
	t = utils.Clamp(t, 0, e.audio.Duration())
	if e.c == nil {
		e.pos = t
		return
	}

	e.sink.Lock()
	defer e.sink.Unlock()
	frames := e.c.srcRate.N(secondsToDuration(t))
	_ = e.c.src.Seek(utils.Clamp(frames, 0, e.c.src.Len()))
}

func (e *StreamElement) SetVolume(v float64) {
	e.set.volume = utils.Clamp(v, 0, 1)
	e.update()
}

func (e *StreamElement) SetMuted(m bool) {
	e.set.muted = m
	e.update()
}

func (e *StreamElement) SetPlaybackRate(r float64) {
	if r <= 0 {
		return
	}
	e.set.rate = r
	e.update()
}

func (e *StreamElement) update() {
	if e.c == nil {
		return
	}
	e.sink.Lock()
	e.c.apply(e.set)
	e.sink.Unlock()
}

// Close removes the stream from the sink.
func (e *StreamElement) Close() {
	if e.c == nil {
		return
	}
	e.sink.Lock()
	e.pos = e.c.position()
	e.c.stop()
	e.sink.Unlock()
	e.c = nil
	e.paused = true
}

var _ MediaElement = (*StreamElement)(nil)
