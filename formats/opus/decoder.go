// SPDX-License-Identifier: EPL-2.0

package opus

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/ik5/audwave/audio"
	"github.com/pion/webrtc/v3/pkg/media/oggreader"
	hopus "gopkg.in/hraban/opus.v2"
)

// Opus always decodes at 48kHz regardless of the input rate in the header.
const decodeRate = 48000

// 120ms at 48kHz is the longest packet Opus allows.
const maxPacketFrames = 5760

// pageReader is the part of oggreader.OggReader the source uses.
type pageReader interface {
	ParseNextPage() ([]byte, *oggreader.OggPageHeader, error)
}

// packetDecoder is the part of the libopus decoder the source uses.
type packetDecoder interface {
	DecodeFloat32(data []byte, pcm []float32) (int, error)
}

type source struct {
	pages    pageReader
	dec      packetDecoder
	channels int
	preSkip  int
	pcm      []float32
	pending  []float32
	eof      bool
}

func (s *source) SampleRate() int { return decodeRate }
func (s *source) Channels() int   { return s.channels }
func (s *source) Close() error    { return nil }
func (s *source) BufSize() int    { return cap(s.pcm) }

// Frames is unknown until the last page's granule position is read.
func (s *source) Frames() int64 { return 0 }

func (s *source) ReadSamples(dst []float32) (int, error) {
	written := 0
	for written < len(dst) {
		if len(s.pending) == 0 {
			if s.eof {
				break
			}
			if err := s.decodeNext(); err != nil {
				return written, err
			}
			continue
		}
		n := copy(dst[written:], s.pending)
		s.pending = s.pending[n:]
		written += n
	}

	if written == 0 && s.eof {
		return 0, io.EOF
	}
	return written, nil
}

func (s *source) decodeNext() error {
	payload, _, err := s.pages.ParseNextPage()
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		s.eof = true
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w", err)
	}
	if len(payload) == 0 || bytes.HasPrefix(payload, []byte("OpusTags")) {
		return nil
	}

	n, err := s.dec.DecodeFloat32(payload, s.pcm)
	if err != nil {
		return fmt.Errorf("%w", err)
	}
	out := s.pcm[:n*s.channels]

	if s.preSkip > 0 {
		skip := min(s.preSkip, n)
		s.preSkip -= skip
		out = out[skip*s.channels:]
	}
	s.pending = out
	return nil
}

// Decoder reads Ogg Opus files holding one packet per page, the layout
// written by pion's oggwriter for recorded WebRTC tracks.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	pages, head, err := oggreader.NewWith(r)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	channels := int(head.Channels)
	if channels < 1 || channels > 2 {
		return nil, ErrUnsupportedChannels
	}

	dec, err := hopus.NewDecoder(decodeRate, channels)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	return &source{
		pages:    pages,
		dec:      dec,
		channels: channels,
		preSkip:  int(head.PreSkip),
		pcm:      make([]float32, maxPacketFrames*channels),
	}, nil
}
