// SPDX-License-Identifier: EPL-2.0

package regions

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Fill alpha by state.
const (
	alphaIdle     = 0.2
	alphaHovered  = 0.3
	alphaSelected = 0.45
)

var white = colorful.Color{R: 1, G: 1, B: 1}

// Paint draws every visible region onto dst: a translucent body and solid
// edges. Hovered and selected regions are drawn stronger.
func (rs *Regions) Paint(dst draw.Image) {
	if rs.deps.Timeline == nil {
		return
	}
	b := dst.Bounds()
	for _, r := range rs.list {
		if !r.visible {
			continue
		}
		x0 := b.Min.X + int(math.Floor(rs.deps.Timeline.TimeToX(r.start)))
		x1 := b.Min.X + int(math.Ceil(rs.deps.Timeline.TimeToX(r.end)))
		if x1 <= b.Min.X || x0 >= b.Max.X {
			continue
		}

		c, alpha := r.color, alphaIdle
		switch {
		case rs.IsSelected(r):
			alpha = alphaSelected
		case rs.IsHovered(r):
			c, alpha = c.BlendLab(white, 0.15).Clamped(), alphaHovered
		}

		body := image.Rect(x0, b.Min.Y, max(x1, x0+1), b.Max.Y).Intersect(b)
		draw.Draw(dst, body, image.NewUniform(withAlpha(c, alpha)), image.Point{}, draw.Over)

		edge := image.NewUniform(withAlpha(c, 1))
		for _, x := range []int{x0, x1 - 1} {
			line := image.Rect(x, b.Min.Y, x+1, b.Max.Y).Intersect(b)
			draw.Draw(dst, line, edge, image.Point{}, draw.Over)
		}
	}
}

func withAlpha(c colorful.Color, a float64) color.NRGBA {
	r, g, bl := c.RGB255()
	return color.NRGBA{R: r, G: g, B: bl, A: uint8(a*255 + 0.5)}
}
