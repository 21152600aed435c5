// SPDX-License-Identifier: EPL-2.0

package visual

import (
	"image"
	"image/color"

	"github.com/ik5/audwave/utils"
	"golang.org/x/image/vector"
)

// trace is everything one waveform pass needs, captured before rendering.
type trace struct {
	channels [][]float32
	spp      int
	start    int
	width    int
	height   int
	padding  int
	color    color.Color
}

// render draws one band per channel. Each screen column aggregates spp
// samples into a min/max pair, so the cost follows the visible width.
func (tr trace) render(img *image.RGBA) error {
	n := len(tr.channels)
	if n == 0 || tr.width <= 0 || tr.height <= 0 {
		return nil
	}

	band := tr.height / n
	for i, samples := range tr.channels {
		r := image.Rect(0, i*band, tr.width, (i+1)*band)
		if i == n-1 {
			r.Max.Y = tr.height
		}
		tr.band(img, r, samples)
	}
	return nil
}

func (tr trace) band(img *image.RGBA, r image.Rectangle, samples []float32) {
	h := float32(r.Dy())
	if h <= 0 || tr.start >= len(samples) {
		return
	}

	end := min(len(samples), tr.start+tr.width*tr.spp)
	visible := samples[tr.start:end]
	cols := (len(visible) + tr.spp - 1) / tr.spp

	mid := h / 2
	amp := max(h/2-float32(tr.padding), 1)
	y := func(v float32) float32 { return utils.Clamp(mid-v*amp, 0, h) }

	tops := make([]float32, cols)
	bottoms := make([]float32, cols)
	for c := range cols {
		win := visible[c*tr.spp : min((c+1)*tr.spp, len(visible))]
		lo, hi := win[0], win[0]
		for _, v := range win[1:] {
			lo = min(lo, v)
			hi = max(hi, v)
		}
		// half a pixel each way keeps silence visible as a line
		tops[c] = max(y(hi)-0.5, 0)
		bottoms[c] = min(y(lo)+0.5, h)
	}

	z := vector.NewRasterizer(r.Dx(), r.Dy())
	z.MoveTo(0, tops[0])
	for c, top := range tops {
		z.LineTo(float32(c), top)
		z.LineTo(float32(c+1), top)
	}
	for c := cols - 1; c >= 0; c-- {
		z.LineTo(float32(c+1), bottoms[c])
		z.LineTo(float32(c), bottoms[c])
	}
	z.ClosePath()
	z.Draw(img, r, image.NewUniform(tr.color), image.Point{})
}
