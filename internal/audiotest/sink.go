// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"sync"

	"github.com/gopxl/beep"
)

// Sink is an in-memory audio output. Streamers given to Play are mixed and
// only advance when the test pulls samples.
type Sink struct {
	mu     sync.Mutex
	rate   beep.SampleRate
	mixer  beep.Mixer
	plays  int
	clears int
}

func NewSink(rate int) *Sink {
	return &Sink{rate: beep.SampleRate(rate)}
}

func (s *Sink) SampleRate() beep.SampleRate { return s.rate }

func (s *Sink) Play(st beep.Streamer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plays++
	s.mixer.Add(st)
}

func (s *Sink) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clears++
	s.mixer.Clear()
}

func (s *Sink) Lock()   { s.mu.Lock() }
func (s *Sink) Unlock() { s.mu.Unlock() }

// Pull streams n frames out of the mix.
func (s *Sink) Pull(n int) [][2]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	buf := make([][2]float64, n)
	s.mixer.Stream(buf)
	return buf
}

// Active is the number of streamers still in the mix.
func (s *Sink) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mixer.Len()
}

// Plays counts the calls to Play.
func (s *Sink) Plays() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.plays
}
