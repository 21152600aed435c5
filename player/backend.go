// SPDX-License-Identifier: EPL-2.0

package player

// Backend is the audio side of a Player. The Player owns the clock; the
// backend only starts, stops and repositions the sound.
type Backend interface {
	// PlayAudio starts the connected source.
	PlayAudio() error
	// ConnectSource prepares playback from at seconds.
	ConnectSource(at float64)
	DisconnectSource()
	// UpdateCurrentSourceTime moves the audible position to t without
	// changing whether it plays.
	UpdateCurrentSourceTime(t float64)
	// CanPause reports whether there is a started source to stop.
	CanPause() bool

	SetVolume(v float64)
	SetMuted(m bool)
	SetRate(r float64)
}

// MediaElement is a self-clocked playable, like an HTML audio element.
type MediaElement interface {
	Play() error
	Pause()
	Paused() bool
	CurrentTime() float64
	SetCurrentTime(t float64)
	SetVolume(v float64)
	SetMuted(m bool)
	SetPlaybackRate(r float64)
}

// ElementBackend lets a MediaElement produce the sound. The element keeps
// its own position; the Player mirrors it.
type ElementBackend struct {
	el MediaElement
}

func NewElementBackend(el MediaElement) *ElementBackend {
	return &ElementBackend{el: el}
}

func (b *ElementBackend) Element() MediaElement { return b.el }

func (b *ElementBackend) PlayAudio() error                  { return b.el.Play() }
func (b *ElementBackend) ConnectSource(at float64)          { b.el.SetCurrentTime(at) }
func (b *ElementBackend) DisconnectSource()                 { b.el.Pause() }
func (b *ElementBackend) UpdateCurrentSourceTime(t float64) { b.el.SetCurrentTime(t) }
func (b *ElementBackend) CanPause() bool                    { return !b.el.Paused() }
func (b *ElementBackend) SetVolume(v float64)               { b.el.SetVolume(v) }
func (b *ElementBackend) SetMuted(m bool)                   { b.el.SetMuted(m) }
func (b *ElementBackend) SetRate(r float64)                 { b.el.SetPlaybackRate(r) }
