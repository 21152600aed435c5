// SPDX-License-Identifier: EPL-2.0

package media

import (
	"context"
	"sync"

	"github.com/gopxl/beep"
	"github.com/ik5/audwave/decoder"
	"github.com/ik5/audwave/utils"
	"github.com/rs/zerolog"
)

// Audio is a playable resource backed by a pooled decoder. It keeps the
// volume, mute and rate settings the players apply.
type Audio struct {
	handle *decoder.Handle
	dec    *decoder.Decoder
	log    zerolog.Logger

	mu        sync.Mutex
	volume    float64
	muted     bool
	rate      float64
	destroyed bool
}

func New(h *decoder.Handle, log zerolog.Logger) *Audio {
	return &Audio{
		handle: h,
		dec:    h.Decoder(),
		log:    log,
		volume: 1,
		rate:   1,
	}
}

// DecodeAudioData decodes data into the shared decoder. It returns nil when
// the decode was cancelled or the Audio destroyed meanwhile.
func (a *Audio) DecodeAudioData(ctx context.Context, data []byte) error {
	if a.Destroyed() {
		return nil
	}
	return a.dec.Decode(ctx, data)
}

func (a *Audio) Decoder() *decoder.Decoder { return a.dec }
func (a *Audio) Duration() float64         { return a.dec.Duration() }
func (a *Audio) SampleRate() int           { return a.dec.SampleRate() }
func (a *Audio) Channels() int             { return a.dec.Channels() }

// Format is the stream format of Streamer.
func (a *Audio) Format() beep.Format {
	return beep.Format{
		SampleRate:  beep.SampleRate(a.dec.SampleRate()),
		NumChannels: 2,
		Precision:   2,
	}
}

// Streamer returns a new single-use stream positioned at from seconds.
func (a *Audio) Streamer(from float64) beep.StreamSeeker {
	s := newChunkStreamer(a.dec.Chunks())
	pos := int(from * float64(a.dec.SampleRate()))
	_ = s.Seek(utils.Clamp(pos, 0, s.Len()))
	return s
}

func (a *Audio) Volume() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.volume
}

// SetVolume clamps v to [0, 1].
func (a *Audio) SetVolume(v float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.volume = utils.Clamp(v, 0, 1)
}

func (a *Audio) Muted() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.muted
}

func (a *Audio) SetMuted(m bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.muted = m
}

func (a *Audio) Rate() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.rate
}

// SetRate ignores rates that are not positive.
func (a *Audio) SetRate(r float64) {
	if r <= 0 {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rate = r
}

func (a *Audio) Destroyed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.destroyed
}

// Destroy returns the decoder to the pool. It is safe to call twice.
func (a *Audio) Destroy() {
	a.mu.Lock()
	if a.destroyed {
		a.mu.Unlock()
		return
	}
	a.destroyed = true
	a.mu.Unlock()

	a.handle.Destroy()
	a.log.Debug().Str("url", a.dec.URL()).Msg("audio destroyed")
}
