// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/ik5/audwave/utils"
)

// Resampler converts an interleaved Source to another rate with Catmull-Rom
// interpolation. Channel count is preserved. When downsampling, input frames
// go through a one-pole low-pass tuned just below the new Nyquist.
//
// The context decoder backend uses it to bring a file to the output rate.
type Resampler struct {
	src     Source
	srcRate int64
	rate    int64
	ch      int

	// hist[1] is source frame base and hist[2] the one after it; hist[0]
	// and hist[3] shape the curve. real marks frames that came from src
	// rather than edge padding.
	hist   [4][]float32
	real   [4]bool
	base   int64
	out    int64 // frames produced so far
	primed bool

	in       []float32
	inPos    int
	inLen    int
	drained  bool
	err      error
	lowpass  []float32
	alpha    float32
	filtered bool
}

func NewResampler(src Source, dstRate int) *Resampler {
	if dstRate <= 0 {
		dstRate = src.SampleRate()
	}
	ch := src.Channels()
	r := &Resampler{
		src:     src,
		srcRate: int64(src.SampleRate()),
		rate:    int64(dstRate),
		ch:      ch,
		in:      make([]float32, 1024*ch),
		lowpass: make([]float32, ch),
	}
	for i := range r.hist {
		r.hist[i] = make([]float32, ch)
	}

	if dstRate < src.SampleRate() {
		cutoff := 0.45 * float64(dstRate)
		r.alpha = float32(1 - math.Exp(-2*math.Pi*cutoff/float64(src.SampleRate())))
		r.filtered = true
	}
	return r
}

func (r *Resampler) SampleRate() int { return int(r.rate) }
func (r *Resampler) Channels() int   { return r.ch }
func (r *Resampler) BufSize() int    { return r.src.BufSize() }

// Frames scales the source length to the destination rate.
func (r *Resampler) Frames() int64 {
	n := Frames(r.src)
	if n == 0 {
		return 0
	}
	return (n*r.rate + r.srcRate - 1) / r.srcRate
}

func (r *Resampler) Close() error {
	if err := r.src.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// pull copies the next source frame into dst. It reports false once the
// source is drained or failed.
func (r *Resampler) pull(dst []float32) bool {
	if r.inPos >= r.inLen {
		if r.drained {
			return false
		}
		n, err := r.src.ReadSamples(r.in)
		n -= n % r.ch
		r.inPos, r.inLen = 0, n
		switch {
		case errors.Is(err, io.EOF):
			r.drained = true
		case err != nil:
			r.drained = true
			r.err = fmt.Errorf("%w", err)
		}
		if n == 0 {
			return false
		}
	}

	copy(dst, r.in[r.inPos:r.inPos+r.ch])
	r.inPos += r.ch

	if r.filtered {
		for c, v := range dst {
			r.lowpass[c] += r.alpha * (v - r.lowpass[c])
			dst[c] = r.lowpass[c]
		}
	}
	return true
}

// prime fills the window from the first frames of src.
func (r *Resampler) prime() bool {
	r.primed = true

	// the filter starts settled on the first frame
	filtered := r.filtered
	r.filtered = false
	first := make([]float32, r.ch)
	ok := r.pull(first)
	r.filtered = filtered
	if !ok {
		return false
	}
	copy(r.lowpass, first)

	copy(r.hist[0], first)
	copy(r.hist[1], first)
	r.real[1] = true
	for i := 2; i < 4; i++ {
		r.real[i] = r.pull(r.hist[i])
		if !r.real[i] {
			copy(r.hist[i], r.hist[i-1])
		}
	}
	return true
}

// advance slides the window one source frame forward.
func (r *Resampler) advance() {
	first := r.hist[0]
	copy(r.hist[:], r.hist[1:])
	copy(r.real[:], r.real[1:])
	r.hist[3] = first

	r.real[3] = r.pull(r.hist[3])
	if !r.real[3] {
		copy(r.hist[3], r.hist[2])
	}
}

// ReadSamples produces interleaved samples at the destination rate. len(dst)
// must be a multiple of the channel count.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if len(dst)%r.ch != 0 {
		return 0, ErrInvalidDstSize
	}
	if !r.primed && !r.prime() {
		if r.err != nil {
			return 0, r.err
		}
		return 0, io.EOF
	}

	want := len(dst) / r.ch
	n := 0
	for n < want {
		// exact source position of output frame r.out
		at := r.out * r.srcRate
		idx := at / r.rate
		for r.base < idx {
			r.base++
			r.advance()
		}
		if !r.real[1] {
			break
		}

		x := float32(at%r.rate) / float32(r.rate)
		frame := dst[n*r.ch : (n+1)*r.ch]
		for c := range frame {
			frame[c] = utils.CubicInterpolate(r.hist[0][c], r.hist[1][c], r.hist[2][c], r.hist[3][c], x)
		}
		n++
		r.out++
	}

	if n == want {
		return n * r.ch, nil
	}
	if r.err != nil {
		return n * r.ch, r.err
	}
	return n * r.ch, io.EOF
}
