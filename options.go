// SPDX-License-Identifier: EPL-2.0

package audwave

import (
	"net/http"
	"time"

	"github.com/ik5/audwave/decoder"
	"github.com/ik5/audwave/frame"
	"github.com/ik5/audwave/player"
	"github.com/ik5/audwave/regions"
	"github.com/ik5/audwave/visual"
	"github.com/rs/zerolog"
)

// Experimental switches features that change how data is computed.
type Experimental struct {
	// BackgroundCompute runs the smoothing pass on worker goroutines.
	BackgroundCompute bool
	// Denoise smooths samples with a 10ms box filter before drawing.
	Denoise bool
}

// Options configures a Waveform. Start from DefaultOptions; zero values
// for volume and padding are taken literally.
type Options struct {
	// Src is an http(s) URL, a file:// URL or a local path.
	Src string

	Width  int
	Height int

	Zoom    float64
	MaxZoom float64

	Volume float64
	Muted  bool
	Rate   float64

	AutoCenter    bool
	SplitChannels bool
	// EnabledChannels lists the channels drawn when split. Empty means all.
	EnabledChannels []int
	ZoomToCursor    bool
	// SeekStep is the default skip distance in seconds.
	SeekStep float64
	// Regions are loaded at construction without creation events.
	Regions []regions.Record
	Padding int

	Experimental Experimental

	// Backend picks the decoder and the matching player backend.
	Backend decoder.Backend
	// WindowSeconds is the decode chunk length for the stream backend.
	WindowSeconds float64

	// Sink plays the audio. Without one playback is silent; the context
	// backend has no output context then and loading fails.
	Sink player.Sink

	// FPS drives the internal frame ticker when Scheduler is nil.
	FPS       int
	Scheduler frame.Scheduler

	ResizeDebounce time.Duration

	Pool   *decoder.Pool
	Client *http.Client
	Logger zerolog.Logger
}

// DefaultOptions returns the settings a host starts from.
func DefaultOptions() Options {
	return Options{
		Width:          800,
		Height:         96,
		Zoom:           1,
		MaxZoom:        visual.DefaultMaxZoom,
		Volume:         1,
		Rate:           1,
		AutoCenter:     true,
		ZoomToCursor:   true,
		SeekStep:       player.DefaultSeekStep,
		Padding:        2,
		Backend:        decoder.BackendStream,
		WindowSeconds:  30,
		FPS:            frame.DefaultRate,
		ResizeDebounce: visual.DefaultResizeDebounce,
	}
}

// withDefaults fills zero values a host left out.
func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.Zoom <= 0 {
		o.Zoom = def.Zoom
	}
	if o.MaxZoom <= 0 {
		o.MaxZoom = def.MaxZoom
	}
	if o.Rate <= 0 {
		o.Rate = def.Rate
	}
	if o.SeekStep <= 0 {
		o.SeekStep = def.SeekStep
	}
	if o.Backend == "" {
		o.Backend = def.Backend
	}
	if o.FPS <= 0 {
		o.FPS = def.FPS
	}
	if o.Pool == nil {
		o.Pool = decoder.DefaultPool
	}
	return o
}
