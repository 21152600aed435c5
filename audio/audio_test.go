// SPDX-License-Identifier: EPL-2.0

package audio_test

import (
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/ik5/audwave/audio"
	"github.com/ik5/audwave/internal/audiotest"
)

type stubDecoder struct{ name string }

func (stubDecoder) Decode(r io.Reader) (audio.Source, error) {
	return audiotest.NewSilentSource(8000, 1, 10), nil
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	t.Parallel()

	reg := audio.NewRegistry()
	reg.Register(audio.FormatWAV, stubDecoder{name: "wav"})

	d, ok := reg.Get(audio.FormatWAV)
	if !ok {
		t.Fatal("Get() ok = false, want true")
	}
	if d.(stubDecoder).name != "wav" {
		t.Errorf("Get() returned %v", d)
	}

	if _, ok := reg.Get("flac"); ok {
		t.Error("Get(flac) ok = true, want false")
	}
}

func TestRegistry_Formats(t *testing.T) {
	t.Parallel()

	reg := audio.NewRegistry()
	reg.Register(audio.FormatMP3, stubDecoder{})
	reg.Register(audio.FormatAIFF, stubDecoder{})
	reg.Register(audio.FormatWAV, stubDecoder{})

	got := reg.Formats()
	want := []string{"aiff", "mp3", "wav"}
	if len(got) != len(want) {
		t.Fatalf("Formats() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Formats()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRegistry_Lookup(t *testing.T) {
	t.Parallel()

	reg := audio.NewRegistry()
	reg.Register(audio.FormatWAV, stubDecoder{name: "wav"})

	_, format, err := reg.Lookup(audiotest.WAV(8000, 1, []int16{1, 2, 3}))
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if format != audio.FormatWAV {
		t.Errorf("Lookup() format = %q, want wav", format)
	}

	_, _, err = reg.Lookup([]byte("FORM\x00\x00\x00\x00AIFF"))
	if !errors.Is(err, audio.ErrUnsupportedFormat) {
		t.Errorf("Lookup(aiff) error = %v, want ErrUnsupportedFormat", err)
	}

	_, _, err = reg.Lookup([]byte("plain text"))
	if !errors.Is(err, audio.ErrUnknownFormat) {
		t.Errorf("Lookup(text) error = %v, want ErrUnknownFormat", err)
	}
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	reg := audio.NewRegistry()
	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i%2 == 0 {
				reg.Register(audio.FormatWAV, stubDecoder{})
			} else {
				reg.Get(audio.FormatWAV)
			}
		}()
	}
	wg.Wait()

	if _, ok := reg.Get(audio.FormatWAV); !ok {
		t.Error("Get() after concurrent registration failed")
	}
}

func TestSniff(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header []byte
		want   string
	}{
		{name: "wav", header: []byte("RIFF\x24\x00\x00\x00WAVEfmt "), want: audio.FormatWAV},
		{name: "aiff", header: []byte("FORM\x00\x00\x00\x00AIFFCOMM"), want: audio.FormatAIFF},
		{name: "aifc", header: []byte("FORM\x00\x00\x00\x00AIFCFVER"), want: audio.FormatAIFF},
		{name: "vorbis", header: append([]byte("OggS\x00\x02"), []byte("\x00\x00\x00\x00\x01vorbis")...), want: audio.FormatVorbis},
		{name: "opus", header: []byte("OggS\x00\x02\x00\x00OpusHead"), want: audio.FormatOpus},
		{name: "ogg unknown codec", header: []byte("OggS\x00\x02\x00\x00FLAC"), want: ""},
		{name: "mp3 id3", header: []byte("ID3\x04\x00"), want: audio.FormatMP3},
		{name: "mp3 frame sync", header: []byte{0xFF, 0xFB, 0x90, 0x64}, want: audio.FormatMP3},
		{name: "riff but not wave", header: []byte("RIFF\x24\x00\x00\x00AVI "), want: ""},
		{name: "empty", header: nil, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := audio.Sniff(tt.header); got != tt.want {
				t.Errorf("Sniff() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFrames(t *testing.T) {
	t.Parallel()

	src := audiotest.NewSilentSource(8000, 2, 800)
	if got := audio.Frames(src); got != 800 {
		t.Errorf("Frames() = %d, want 800", got)
	}

	src = audiotest.NewSilentSource(8000, 2, 800).WithUnknownLength()
	if got := audio.Frames(src); got != 0 {
		t.Errorf("Frames() unknown = %d, want 0", got)
	}
}
