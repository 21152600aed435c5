// SPDX-License-Identifier: EPL-2.0

package cursor

import (
	"image"
	"image/color"
	"testing"

	"gotest.tools/assert"
)

func TestFocus(t *testing.T) {
	t.Parallel()

	c := New("")
	assert.Equal(t, c.Glyph(), Default)
	assert.Assert(t, !c.SeekLocked())

	assert.Assert(t, c.Acquire("region-1", ColResize))
	assert.Assert(t, c.SeekLocked())
	assert.Equal(t, c.Glyph(), ColResize)

	assert.Assert(t, !c.Acquire("playhead", Grab), "second element stole focus")
	assert.Assert(t, !c.SetGlyph("playhead", Grab))
	assert.Equal(t, c.Glyph(), ColResize)

	c.Release("playhead")
	assert.Assert(t, c.HasFocus("region-1"))

	assert.Assert(t, c.Acquire("region-1", ""), "holder may re-acquire")
	c.Release("region-1")
	assert.Assert(t, !c.SeekLocked())
	assert.Equal(t, c.Glyph(), Default)

	id, ok := c.Focus()
	assert.Equal(t, id, "")
	assert.Assert(t, !ok)
}

func TestPaint(t *testing.T) {
	t.Parallel()

	img := image.NewRGBA(image.Rect(0, 0, 10, 4))
	c := New(Crosshair)
	c.SetColor(color.RGBA{R: 255, A: 255})

	c.Paint(img)
	assert.Equal(t, img.RGBAAt(3, 0), color.RGBA{})

	c.Move(3, 1)
	c.Paint(img)
	assert.Equal(t, img.RGBAAt(3, 2), color.RGBA{R: 255, A: 255})
	assert.Equal(t, img.RGBAAt(4, 2), color.RGBA{})

	c.Leave()
	assert.Assert(t, !c.Inside())
}
