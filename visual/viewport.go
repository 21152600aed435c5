// SPDX-License-Identifier: EPL-2.0

package visual

import (
	"math"

	"github.com/ik5/audwave/utils"
)

// Viewport maps time to pixels. Scroll is the fraction of the scrollable
// width, (FullWidth - Width), scrolled past.
type Viewport struct {
	Width    int
	Height   int
	Zoom     float64
	Scroll   float64
	Duration float64
}

// FullWidth is the width of the whole file at the current zoom.
func (v Viewport) FullWidth() float64 {
	return float64(v.Width) * v.Zoom
}

func (v Viewport) scrollable() float64 {
	return max(v.FullWidth()-float64(v.Width), 0)
}

// ScrollPixels is the offset of the left edge in full-width pixels.
func (v Viewport) ScrollPixels() float64 {
	return v.Scroll * v.scrollable()
}

func (v Viewport) TimeToX(t float64) float64 {
	if v.Duration <= 0 {
		return 0
	}
	return t/v.Duration*v.FullWidth() - v.ScrollPixels()
}

func (v Viewport) XToTime(x float64) float64 {
	fw := v.FullWidth()
	if fw <= 0 || v.Duration <= 0 {
		return 0
	}
	return utils.Clamp((x+v.ScrollPixels())/fw*v.Duration, 0, v.Duration)
}

// PixelsToSeconds converts a horizontal distance.
func (v Viewport) PixelsToSeconds(px float64) float64 {
	fw := v.FullWidth()
	if fw <= 0 {
		return 0
	}
	return px / fw * v.Duration
}

// ScrollFor returns the scroll fraction that puts t at x pixels from the
// left edge, clamped to the scrollable range.
func (v Viewport) ScrollFor(t, x float64) float64 {
	s := v.scrollable()
	if s <= 0 || v.Duration <= 0 {
		return 0
	}
	px := t/v.Duration*v.FullWidth() - x
	return utils.Clamp(px/s, 0, 1)
}

// SamplesPerPixel for a channel of total samples, never less than 1.
func (v Viewport) SamplesPerPixel(total int) int {
	fw := v.FullWidth()
	if total <= 0 || fw <= 0 {
		return 1
	}
	return max(int(math.Ceil(float64(total)/math.Round(fw))), 1)
}
