// SPDX-License-Identifier: EPL-2.0

// Package cursor tracks the pointer and which interactive element owns it.
package cursor

import (
	"image"
	"image/color"
	"image/draw"
)

// Glyph is the mouse cursor shape.
type Glyph string

const (
	Default    Glyph = "default"
	Pointer    Glyph = "pointer"
	Crosshair  Glyph = "crosshair"
	ColResize  Glyph = "col-resize"
	Grab       Glyph = "grab"
	Grabbing   Glyph = "grabbing"
	NotAllowed Glyph = "not-allowed"
)

// Cursor holds the pointer position and an exclusive focus token. While an
// element holds focus it alone sets the glyph, and click-to-seek is locked.
type Cursor struct {
	x, y   float64
	inside bool

	focus string
	glyph Glyph
	base  Glyph

	color color.Color
}

func New(base Glyph) *Cursor {
	if base == "" {
		base = Default
	}
	return &Cursor{glyph: base, base: base, color: color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0x80}}
}

// Move records the pointer position in surface pixels.
func (c *Cursor) Move(x, y float64) {
	c.x, c.y = x, y
	c.inside = true
}

// Leave marks the pointer as outside the surface.
func (c *Cursor) Leave() { c.inside = false }

func (c *Cursor) Position() (x, y float64) { return c.x, c.y }
func (c *Cursor) Inside() bool             { return c.inside }

// Acquire gives focus to id unless another element holds it.
func (c *Cursor) Acquire(id string, g Glyph) bool {
	if c.focus != "" && c.focus != id {
		return false
	}
	c.focus = id
	if g != "" {
		c.glyph = g
	}
	return true
}

// Release drops focus if id holds it and restores the base glyph.
func (c *Cursor) Release(id string) {
	if c.focus != id {
		return
	}
	c.focus = ""
	c.glyph = c.base
}

// SetGlyph changes the glyph for id. Without focus anyone may set it.
func (c *Cursor) SetGlyph(id string, g Glyph) bool {
	if c.focus != "" && c.focus != id {
		return false
	}
	c.glyph = g
	return true
}

// Focus returns the id holding focus.
func (c *Cursor) Focus() (string, bool) { return c.focus, c.focus != "" }

func (c *Cursor) HasFocus(id string) bool { return id != "" && c.focus == id }

// SeekLocked reports whether click-to-seek is suppressed.
func (c *Cursor) SeekLocked() bool { return c.focus != "" }

func (c *Cursor) Glyph() Glyph { return c.glyph }

func (c *Cursor) SetColor(col color.Color) { c.color = col }

// Paint draws the hover line at the pointer while it is over dst.
func (c *Cursor) Paint(dst draw.Image) {
	if !c.inside {
		return
	}
	b := dst.Bounds()
	x := b.Min.X + int(c.x)
	if x < b.Min.X || x >= b.Max.X {
		return
	}
	line := image.Rect(x, b.Min.Y, x+1, b.Max.Y)
	draw.Draw(dst, line, image.NewUniform(c.color), image.Point{}, draw.Over)
}
