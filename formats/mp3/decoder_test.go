// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"
)

// mockMP3Reader simulates the gomp3.Decoder for testing
type mockMP3Reader struct {
	sampleRate int
	samples    []int16
	offset     int
	length     int64
	chunk      int // max bytes per Read, 0 for unlimited
}

func (m *mockMP3Reader) SampleRate() int { return m.sampleRate }
func (m *mockMP3Reader) Length() int64   { return m.length }

func (m *mockMP3Reader) Read(buf []byte) (int, error) {
	if m.offset >= len(m.samples) {
		return 0, io.EOF
	}

	n := min(len(buf)/2, len(m.samples)-m.offset)
	if m.chunk > 0 {
		n = min(n, m.chunk/2)
	}
	for i := range n {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(m.samples[m.offset+i]))
	}
	m.offset += n
	return n * 2, nil
}

func TestDecoder_InvalidInput(t *testing.T) {
	t.Parallel()

	for _, data := range [][]byte{nil, []byte("This is not MP3 data")} {
		if _, err := (Decoder{}).Decode(bytes.NewReader(data)); err == nil {
			t.Errorf("Decode(%q) error = nil, want error", data)
		}
	}
}

func TestSource_ReadSamples(t *testing.T) {
	t.Parallel()

	src := &source{
		dec:        &mockMP3Reader{sampleRate: 44100, samples: []int16{16384, -16384, 0, 32767}, chunk: 2},
		sampleRate: 44100,
	}

	dst := make([]float32, 8)
	n, err := src.ReadSamples(dst)
	if n != 4 {
		t.Fatalf("ReadSamples() n = %d, want 4", n)
	}
	if err != io.EOF {
		t.Errorf("ReadSamples() err = %v, want io.EOF", err)
	}

	want := []float32{0.5, -0.5, 0, 32767.0 / 32768.0}
	for i := range want {
		if dst[i] != want[i] {
			t.Errorf("dst[%d] = %v, want %v", i, dst[i], want[i])
		}
	}

	n, err = src.ReadSamples(dst)
	if n != 0 || err != io.EOF {
		t.Errorf("ReadSamples() after end = %d, %v, want 0, io.EOF", n, err)
	}
}

func TestSource_Frames(t *testing.T) {
	t.Parallel()

	tests := []struct {
		length int64
		want   int64
	}{
		{length: 4000, want: 1000},
		{length: -1, want: 0},
		{length: 0, want: 0},
	}

	for _, tt := range tests {
		src := &source{dec: &mockMP3Reader{length: tt.length}}
		if got := src.Frames(); got != tt.want {
			t.Errorf("Frames() with Length %d = %d, want %d", tt.length, got, tt.want)
		}
	}
}

func TestSource_Metadata(t *testing.T) {
	t.Parallel()

	src := &source{dec: &mockMP3Reader{}, sampleRate: 48000, buf: make([]byte, 8192)}
	if src.SampleRate() != 48000 {
		t.Errorf("SampleRate() = %d, want 48000", src.SampleRate())
	}
	if src.Channels() != 2 {
		t.Errorf("Channels() = %d, want 2", src.Channels())
	}
	if src.BufSize() != 4096 {
		t.Errorf("BufSize() = %d, want 4096", src.BufSize())
	}
}
