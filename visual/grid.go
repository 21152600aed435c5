// SPDX-License-Identifier: EPL-2.0

package visual

import (
	"image"
	"image/color"
	"image/draw"
	"math"
)

// gridSteps are the candidate tick intervals in seconds.
var gridSteps = []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 15, 30, 60, 120, 300, 600, 1800}

// minGridSpacing is the closest two grid lines may be, in pixels.
const minGridSpacing = 50

type grid struct {
	vp         Viewport
	background color.Color
	line       color.Color
}

// step picks the smallest interval that keeps lines minGridSpacing apart.
func (g grid) step() float64 {
	if g.vp.Duration <= 0 {
		return 0
	}
	pxPerSec := g.vp.FullWidth() / g.vp.Duration
	for _, s := range gridSteps {
		if s*pxPerSec >= minGridSpacing {
			return s
		}
	}
	return gridSteps[len(gridSteps)-1]
}

func (g grid) render(img *image.RGBA) error {
	b := img.Bounds()
	draw.Draw(img, b, image.NewUniform(g.background), image.Point{}, draw.Src)

	step := g.step()
	if step <= 0 {
		return nil
	}

	first := math.Ceil(g.vp.XToTime(0)/step) * step
	src := image.NewUniform(g.line)
	for t := first; t <= g.vp.Duration; t += step {
		x := int(math.Round(g.vp.TimeToX(t)))
		if x >= b.Max.X {
			break
		}
		if x < b.Min.X {
			continue
		}
		draw.Draw(img, image.Rect(x, b.Min.Y, x+1, b.Max.Y), src, image.Point{}, draw.Over)
	}
	return nil
}
