// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"fmt"
	"io"

	"github.com/ik5/audwave/audio"
	"github.com/jfreymuth/oggvorbis"
)

// oggReader is an interface for oggvorbis.Reader to allow testing
type oggReader interface {
	SampleRate() int
	Channels() int
	Length() int64
	Read([]float32) (int, error)
}

type source struct {
	dec        oggReader
	sampleRate int
	channels   int
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }
func (s *source) Close() error    { return nil }
func (s *source) BufSize() int    { return 4096 }

// Frames relies on oggvorbis reading the last granule position, which
// needs a seekable input. It is 0 otherwise.
func (s *source) Frames() int64 { return s.dec.Length() }

func (s *source) ReadSamples(dst []float32) (int, error) {
	if len(dst) < s.channels {
		return 0, nil
	}

	// oggvorbis fills whole frames and returns the number of values written
	n, err := s.dec.Read(dst[:(len(dst)/s.channels)*s.channels])
	if n == 0 && err == nil {
		return 0, nil
	}
	return n, err
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	return &source{
		dec:        dec,
		sampleRate: dec.SampleRate(),
		channels:   dec.Channels(),
	}, nil
}
