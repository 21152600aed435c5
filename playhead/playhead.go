// SPDX-License-Identifier: EPL-2.0

// Package playhead draws the playback position and lets the user drag it.
package playhead

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/ik5/audwave/cursor"
)

// FocusID is the cursor focus token held while dragging.
const FocusID = "playhead"

// Tolerance is how close to the line, in pixels, the pointer grabs it.
const Tolerance = 4.0

const handleSize = 7

type Timeline interface {
	TimeToX(t float64) float64
	XToTime(x float64) float64
}

type Clock interface {
	CurrentTime() float64
}

type Deps struct {
	Timeline Timeline
	Clock    Clock
	Cursor   *cursor.Cursor
	// Seek sets the playback position while dragging.
	Seek func(t float64)
}

type Playhead struct {
	deps Deps

	x        float64
	hovered  bool
	dragging bool
	color    color.Color
}

func New(deps Deps) *Playhead {
	if deps.Cursor == nil {
		deps.Cursor = cursor.New(cursor.Default)
	}
	if deps.Seek == nil {
		deps.Seek = func(float64) {}
	}
	return &Playhead{deps: deps, color: color.NRGBA{R: 0xff, G: 0x55, B: 0x33, A: 0xff}}
}

// Update recomputes X from the clock and reports whether it moved.
func (p *Playhead) Update() bool {
	if p.deps.Timeline == nil || p.deps.Clock == nil {
		return false
	}
	x := p.deps.Timeline.TimeToX(p.deps.Clock.CurrentTime())
	if x == p.x {
		return false
	}
	p.x = x
	return true
}

// X is the position on the surface in pixels; it may lie outside it.
func (p *Playhead) X() float64             { return p.x }
func (p *Playhead) Hovered() bool          { return p.hovered }
func (p *Playhead) Dragging() bool         { return p.dragging }
func (p *Playhead) SetColor(c color.Color) { p.color = c }

func (p *Playhead) near(x float64) bool { return math.Abs(x-p.x) <= Tolerance }

// PointerDown starts a drag if x is on the line and nothing else holds the
// cursor.
func (p *Playhead) PointerDown(x float64) bool {
	if !p.near(x) || !p.deps.Cursor.Acquire(FocusID, cursor.Grabbing) {
		return false
	}
	p.dragging = true
	return true
}

// PointerMove seeks while dragging and tracks hover otherwise.
func (p *Playhead) PointerMove(x float64) {
	if !p.dragging {
		p.hovered = p.near(x)
		if p.hovered {
			p.deps.Cursor.SetGlyph("", cursor.Grab)
		}
		return
	}
	if p.deps.Timeline == nil {
		return
	}
	p.deps.Seek(p.deps.Timeline.XToTime(x))
	p.Update()
}

// PointerUp ends a drag and reports whether there was one.
func (p *Playhead) PointerUp(x float64) bool {
	if !p.dragging {
		return false
	}
	p.PointerMove(x)
	p.dragging = false
	p.deps.Cursor.Release(FocusID)
	return true
}

// Paint draws the line with a handle on top; wider while hovered or dragged.
func (p *Playhead) Paint(dst draw.Image) {
	b := dst.Bounds()
	x := b.Min.X + int(math.Round(p.x))
	if x < b.Min.X || x >= b.Max.X {
		return
	}

	w := 1
	if p.hovered || p.dragging {
		w = 2
	}
	src := image.NewUniform(p.color)
	draw.Draw(dst, image.Rect(x, b.Min.Y, x+w, b.Max.Y).Intersect(b), src, image.Point{}, draw.Over)

	half := handleSize / 2
	handle := image.Rect(x-half, b.Min.Y, x+half+w, b.Min.Y+handleSize).Intersect(b)
	draw.Draw(dst, handle, src, image.Point{}, draw.Over)
}
