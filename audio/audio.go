// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"io"
	"sort"
	"sync"
)

// Source is the native decoder output consumed by the decode pipeline.
type Source interface {
	// SampleRate of the PCM stream in Hz.
	SampleRate() int
	// Channels count (e.g., 1=mono, 2=stereo).
	Channels() int
	// ReadSamples fills dst with interleaved float32 samples in [-1,1].
	// Returns number of float32 values written (not frames). When n == 0 with err == io.EOF, the stream is finished.
	ReadSamples(dst []float32) (n int, err error)

	BufSize() int

	// Close releases any resources.
	Close() error
}

// Lengther is implemented by sources that know their length up front.
type Lengther interface {
	// Frames returns the number of frames per channel, or 0 when unknown.
	Frames() int64
}

// Frames reports the length of src in frames, or 0 when src cannot tell.
func Frames(src Source) int64 {
	if l, ok := src.(Lengther); ok {
		return l.Frames()
	}
	return 0
}

// Decoder constructs a Source from an input reader.
type Decoder interface {
	Decode(r io.Reader) (Source, error)
}

// Registry for decoders by format key (see the Format constants).
type Registry struct {
	codecs map[string]Decoder

	mtx *sync.Mutex
}

func NewRegistry() *Registry {
	return &Registry{
		codecs: make(map[string]Decoder),
		mtx:    &sync.Mutex{},
	}
}

func (r *Registry) Register(format string, d Decoder) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.codecs[format] = d
}

func (r *Registry) Get(format string) (Decoder, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	d, ok := r.codecs[format]
	return d, ok
}

// Formats lists the registered format keys in sorted order.
func (r *Registry) Formats() []string {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	out := make([]string, 0, len(r.codecs))
	for k := range r.codecs {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Lookup sniffs header and returns the matching decoder.
func (r *Registry) Lookup(header []byte) (Decoder, string, error) {
	format := Sniff(header)
	if format == "" {
		return nil, "", ErrUnknownFormat
	}

	d, ok := r.Get(format)
	if !ok {
		return nil, format, ErrUnsupportedFormat
	}
	return d, format, nil
}
