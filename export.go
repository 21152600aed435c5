// SPDX-License-Identifier: EPL-2.0

package audwave

import (
	"fmt"
	"io"

	"github.com/ik5/audwave/formats/wav"
	"github.com/ik5/audwave/regions"
)

const exportBuffer = 4096

// AddRegion creates a region and announces it.
func (w *Waveform) AddRegion(o regions.Options) (regions.Record, error) {
	w.mu.Lock()
	defer w.unlock()
	if w.destroyed {
		return regions.Record{}, ErrDestroyed
	}
	r, err := w.regions.Add(o)
	if err != nil {
		return regions.Record{}, err
	}
	return r.Record(), nil
}

func (w *Waveform) UpdateRegion(id string, p regions.Patch) error {
	w.mu.Lock()
	defer w.unlock()
	if w.destroyed {
		return ErrDestroyed
	}
	return w.regions.Update(id, p)
}

// RemoveRegion tells the host first, then drops the region. Fixed regions
// and unknown ids are ignored.
func (w *Waveform) RemoveRegion(id string) {
	w.mu.Lock()
	defer w.unlock()
	w.regions.Remove(id)
}

// SelectRegion selects id; playback then loops over the selection.
func (w *Waveform) SelectRegion(id string, additive bool) error {
	w.mu.Lock()
	defer w.unlock()
	r, ok := w.regions.Get(id)
	if !ok {
		return fmt.Errorf("%w: %q", regions.ErrNotFound, id)
	}
	w.regions.Select(r, additive)
	return nil
}

func (w *Waveform) ClearSelection() {
	w.mu.Lock()
	defer w.unlock()
	w.regions.ClearSelection()
}

// Regions returns every region in its persisted shape.
func (w *Waveform) Regions() []regions.Record {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.regions.Records()
}

// ExportRegion writes the region id as a mono 16-bit WAV at rate Hz. A rate
// of 0 keeps the decoded rate.
func (w *Waveform) ExportRegion(id string, out io.Writer, rate int) error {
	w.mu.Lock()
	if w.audio == nil {
		w.mu.Unlock()
		return ErrNotLoaded
	}
	r, ok := w.regions.Get(id)
	if !ok {
		w.mu.Unlock()
		return fmt.Errorf("%w: %q", regions.ErrNotFound, id)
	}
	dec := w.audio.Decoder()
	src := newRangeSource(dec.Chunks(), dec.Channels(), dec.SampleRate(), r.Start(), r.End())
	w.mu.Unlock()

	if src.Frames() == 0 {
		return fmt.Errorf("%w: %q", ErrEmptyRange, id)
	}
	if rate <= 0 {
		rate = src.SampleRate()
	}

	pcm, outRate, err := ResampleToMono16(src, rate, exportBuffer)
	if err != nil {
		return fmt.Errorf("exporting %q: %w", id, err)
	}
	return wav.WriteWAV16(out, outRate, pcm)
}

// rangeSource reads [start, end) seconds of decoded chunks as an
// interleaved audio.Source.
type rangeSource struct {
	chunks   [][][]float32
	channels int
	rate     int

	chunk  int
	offset int
	left   int64
	total  int64
}

func newRangeSource(chunks [][][]float32, channels, rate int, start, end float64) *rangeSource {
	s := &rangeSource{chunks: chunks, channels: max(channels, 1), rate: rate}

	from := int64(start * float64(rate))
	to := int64(end * float64(rate))

	var avail int64
	for _, c := range chunks {
		avail += int64(chunkLen(c))
	}
	from, to = min(from, avail), min(to, avail)
	s.total = max(to-from, 0)
	s.left = s.total

	for s.chunk < len(chunks) && from >= int64(chunkLen(chunks[s.chunk])) {
		from -= int64(chunkLen(chunks[s.chunk]))
		s.chunk++
	}
	s.offset = int(from)
	return s
}

func chunkLen(c [][]float32) int {
	if len(c) == 0 {
		return 0
	}
	return len(c[0])
}

func (s *rangeSource) SampleRate() int { return s.rate }
func (s *rangeSource) Channels() int   { return s.channels }
func (s *rangeSource) BufSize() int    { return exportBuffer }
func (s *rangeSource) Close() error    { return nil }
func (s *rangeSource) Frames() int64   { return s.total }

func (s *rangeSource) ReadSamples(dst []float32) (int, error) {
	n := 0
	for n+s.channels <= len(dst) && s.left > 0 {
		for s.chunk < len(s.chunks) && s.offset >= chunkLen(s.chunks[s.chunk]) {
			s.chunk++
			s.offset = 0
		}
		if s.chunk >= len(s.chunks) {
			s.left = 0
			break
		}
		c := s.chunks[s.chunk]
		for ch := range s.channels {
			dst[n+ch] = c[min(ch, len(c)-1)][s.offset]
		}
		n += s.channels
		s.offset++
		s.left--
	}
	if n == 0 && s.left == 0 {
		return 0, io.EOF
	}
	return n, nil
}
