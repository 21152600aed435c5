// SPDX-License-Identifier: EPL-2.0

package decoder

import (
	"fmt"

	"github.com/ik5/audwave/audio"
	"github.com/rs/zerolog"
)

// Backend selects how a file is turned into chunks.
type Backend string

const (
	// BackendStream decodes at the file's own rate in fixed windows.
	BackendStream Backend = "ffmpeg"
	// BackendContext decodes the whole file at the output context rate and
	// delivers it as a single chunk.
	BackendContext Backend = "webaudio"
)

// ParseBackend accepts the backend names used in host options.
func ParseBackend(s string) (Backend, error) {
	switch Backend(s) {
	case "", BackendStream:
		return BackendStream, nil
	case BackendContext:
		return BackendContext, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownBackend, s)
}

// MaxWindow is the longest chunk, in seconds.
const MaxWindow = 1800.0

type Options struct {
	Backend Backend

	// SampleRate is the output context rate. Required by BackendContext.
	SampleRate int

	// Mono mixes all channels into one at decode time. Playback reads the
	// same chunks, so it turns mono too.
	Mono bool

	// WindowSeconds is the chunk length for BackendStream, capped at MaxWindow.
	WindowSeconds float64

	Registry *audio.Registry
	Logger   zerolog.Logger
}

func (o Options) window() float64 {
	if o.WindowSeconds <= 0 || o.WindowSeconds > MaxWindow {
		return MaxWindow
	}
	return o.WindowSeconds
}
