// SPDX-License-Identifier: EPL-2.0

// Package speakersink plays through the system audio device.
package speakersink

import (
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

// DefaultBuffer is the device buffer length.
const DefaultBuffer = 100 * time.Millisecond

var (
	initMu   sync.Mutex
	initRate beep.SampleRate
)

// Sink is the speaker. The device can only be opened once per process, so
// every Sink shares it.
type Sink struct {
	rate beep.SampleRate
}

// New opens the speaker at rate, or reuses it when it is already open at
// that rate.
func New(rate int, buffer time.Duration) (*Sink, error) {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	sr := beep.SampleRate(rate)

	initMu.Lock()
	defer initMu.Unlock()

	if initRate != sr {
		if initRate != 0 {
			speaker.Close()
		}
		if err := speaker.Init(sr, sr.N(buffer)); err != nil {
			initRate = 0
			return nil, fmt.Errorf("opening speaker at %d Hz: %w", rate, err)
		}
		initRate = sr
	}

	return &Sink{rate: sr}, nil
}

func (s *Sink) SampleRate() beep.SampleRate { return s.rate }
func (s *Sink) Play(st beep.Streamer)       { speaker.Play(st) }
func (s *Sink) Clear()                      { speaker.Clear() }
func (s *Sink) Lock()                       { speaker.Lock() }
func (s *Sink) Unlock()                     { speaker.Unlock() }
