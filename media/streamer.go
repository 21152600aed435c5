// SPDX-License-Identifier: EPL-2.0

package media

import (
	"fmt"
	"sort"

	"github.com/ik5/audwave/utils"
)

// chunkStreamer plays [chunk][channel] sample data as stereo. Mono data is
// sent to both sides; channels past the second are ignored.
type chunkStreamer struct {
	chunks  [][][]float32
	offsets []int // first frame of every chunk
	total   int
	pos     int
}

func newChunkStreamer(chunks [][][]float32) *chunkStreamer {
	s := &chunkStreamer{chunks: chunks, offsets: make([]int, len(chunks))}
	for i, ch := range chunks {
		s.offsets[i] = s.total
		if len(ch) > 0 {
			s.total += len(ch[0])
		}
	}
	return s
}

func (s *chunkStreamer) Stream(samples [][2]float64) (int, bool) {
	if s.pos >= s.total {
		return 0, false
	}

	n := 0
	for n < len(samples) && s.pos < s.total {
		ci := sort.Search(len(s.offsets), func(i int) bool { return s.offsets[i] > s.pos }) - 1
		chunk := s.chunks[ci]
		i := s.pos - s.offsets[ci]

		avail := len(chunk[0]) - i
		take := min(avail, len(samples)-n)
		for k := range take {
			l := float64(chunk[0][i+k])
			r := l
			if len(chunk) > 1 {
				r = float64(chunk[1][i+k])
			}
			samples[n+k] = [2]float64{l, r}
		}
		n += take
		s.pos += take
	}
	return n, true
}

func (s *chunkStreamer) Err() error    { return nil }
func (s *chunkStreamer) Len() int      { return s.total }
func (s *chunkStreamer) Position() int { return s.pos }

func (s *chunkStreamer) Seek(p int) error {
	if p < 0 || p > s.total {
		return fmt.Errorf("media: seek %d outside [0, %d]", p, s.total)
	}
	s.pos = utils.Clamp(p, 0, s.total)
	return nil
}
