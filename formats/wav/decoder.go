// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"
	"github.com/ik5/audwave/audio"
)

const canonicalHeaderLen = 44

// pcm16Source reads canonical 16-bit PCM straight from the data chunk.
type pcm16Source struct {
	r          io.Reader
	sampleRate int
	channels   int
	frames     int64
	buf        []byte
}

func (s *pcm16Source) SampleRate() int { return s.sampleRate }
func (s *pcm16Source) Channels() int   { return s.channels }
func (s *pcm16Source) Close() error    { return nil }
func (s *pcm16Source) BufSize() int    { return cap(s.buf) / 2 }
func (s *pcm16Source) Frames() int64   { return s.frames }

func (s *pcm16Source) ReadSamples(dst []float32) (int, error) {
	if cap(s.buf) < len(dst)*2 {
		s.buf = make([]byte, len(dst)*2)
	}
	s.buf = s.buf[:len(dst)*2]

	n, err := io.ReadFull(s.r, s.buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return 0, fmt.Errorf("%w", err)
	}

	samples := n / 2
	for i := range samples {
		v := int16(binary.LittleEndian.Uint16(s.buf[2*i : 2*i+2]))
		dst[i] = float32(v) / 32768.0
	}

	if err != nil {
		// short read means the data chunk is exhausted
		return samples, io.EOF
	}
	return samples, nil
}

// wavReader is the part of go-audio's wav.Decoder the fallback path uses.
type wavReader interface {
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

// chunkedSource decodes through go-audio/wav for layouts the fast path
// rejects (extra chunks before "data", 8/24/32-bit PCM).
type chunkedSource struct {
	dec        wavReader
	format     *goaudio.Format
	sampleRate int
	channels   int
	frames     int64
	scale      float32
	intBuf     *goaudio.IntBuffer
}

func (s *chunkedSource) SampleRate() int { return s.sampleRate }
func (s *chunkedSource) Channels() int   { return s.channels }
func (s *chunkedSource) Close() error    { return nil }
func (s *chunkedSource) Frames() int64   { return s.frames }
func (s *chunkedSource) BufSize() int {
	if s.intBuf != nil {
		return cap(s.intBuf.Data)
	}
	return 4096
}

func (s *chunkedSource) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	if s.intBuf == nil || cap(s.intBuf.Data) < len(dst) {
		s.intBuf = &goaudio.IntBuffer{Data: make([]int, len(dst)), Format: s.format}
	}
	s.intBuf.Data = s.intBuf.Data[:len(dst)]

	n, err := s.dec.PCMBuffer(s.intBuf)
	if err != nil && err != io.EOF {
		return 0, fmt.Errorf("%w", err)
	}
	if n == 0 {
		return 0, io.EOF
	}

	for i := range n {
		dst[i] = float32(s.intBuf.Data[i]) * s.scale
	}
	if n < len(dst) {
		return n, io.EOF
	}
	return n, nil
}

type Decoder struct{}

// Decode reads a WAV file. Canonical 44-byte PCM16 headers are parsed
// directly; anything else needs a seekable reader and goes through go-audio.
func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	rs, seekable := r.(io.ReadSeeker)

	header := make([]byte, canonicalHeaderLen)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	if !bytes.HasPrefix(header[:4], []byte("RIFF")) || !bytes.HasPrefix(header[8:12], []byte("WAVE")) {
		return nil, ErrNotWavFile
	}

	src, err := decodeCanonical(r, header)
	if err == nil || !seekable {
		return src, err
	}

	if _, serr := rs.Seek(0, io.SeekStart); serr != nil {
		return nil, fmt.Errorf("%w", serr)
	}
	return decodeChunked(rs)
}

func decodeCanonical(r io.Reader, header []byte) (audio.Source, error) {
	if !bytes.HasPrefix(header[12:16], []byte("fmt ")) {
		return nil, ErrUnsupportedWavLayout
	}

	audioFormat := binary.LittleEndian.Uint16(header[20:22])
	channels := int(binary.LittleEndian.Uint16(header[22:24]))
	sampleRate := int(binary.LittleEndian.Uint32(header[24:28]))
	bitsPerSample := int(binary.LittleEndian.Uint16(header[34:36]))

	if audioFormat != 1 || bitsPerSample != 16 {
		return nil, ErrOnlyPCM16bitSupported
	}
	if !bytes.HasPrefix(header[36:40], []byte("data")) {
		return nil, ErrUnsupportedWavChunks
	}
	if channels == 0 || sampleRate == 0 {
		return nil, ErrUnsupportedWavLayout
	}

	var frames int64
	// 0xFFFFFFFF marks a streamed file whose size was never patched
	if dataSize := binary.LittleEndian.Uint32(header[40:44]); dataSize != 0xFFFFFFFF {
		frames = int64(dataSize) / int64(channels*2)
	}

	return &pcm16Source{
		r:          r,
		sampleRate: sampleRate,
		channels:   channels,
		frames:     frames,
		buf:        make([]byte, 4096),
	}, nil
}

func decodeChunked(rs io.ReadSeeker) (audio.Source, error) {
	dec := gowav.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotWavFile
	}
	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	format := dec.Format()
	if format == nil || format.NumChannels == 0 || format.SampleRate == 0 {
		return nil, ErrUnsupportedWavLayout
	}
	if dec.WavAudioFormat != 1 {
		return nil, ErrOnlyPCMSupported
	}

	var scale float32
	switch dec.BitDepth {
	case 8:
		scale = 1.0 / 128.0
	case 16:
		scale = 1.0 / 32768.0
	case 24:
		scale = 1.0 / 8388608.0
	case 32:
		scale = 1.0 / 2147483648.0
	default:
		return nil, ErrUnsupportedBitDepth
	}

	var frames int64
	if bytesPerFrame := int64(format.NumChannels) * int64(dec.BitDepth/8); bytesPerFrame > 0 {
		frames = dec.PCMLen() / bytesPerFrame
	}

	return &chunkedSource{
		dec:        dec,
		format:     format,
		sampleRate: format.SampleRate,
		channels:   format.NumChannels,
		frames:     frames,
		scale:      scale,
	}, nil
}
