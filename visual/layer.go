// SPDX-License-Identifier: EPL-2.0

package visual

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/ik5/audwave/utils"
)

// Standard layers and their z order.
const (
	LayerBackground = "background"
	LayerWaveform   = "waveform"
	LayerRegions    = "regions"
	LayerControls   = "controls"
)

// CompositeMode is how a layer is blended onto the layers below it.
type CompositeMode int

const (
	CompositeOver CompositeMode = iota
	CompositeSource
	CompositeLighter
)

// RenderFunc paints a layer. img has been cleared before the call.
type RenderFunc func(img *image.RGBA) error

// Layer is a named drawing surface. Offscreen layers are only repainted on
// full draws; the others are repainted on every frame, dry ones included.
type Layer struct {
	name      string
	z         int
	offscreen bool
	opacity   float64
	mode      CompositeMode
	visible   bool
	render    RenderFunc

	img *image.RGBA
}

func newLayer(name string, z int, offscreen bool, render RenderFunc, w, h int) *Layer {
	return &Layer{
		name:      name,
		z:         z,
		offscreen: offscreen,
		opacity:   1,
		visible:   true,
		render:    render,
		img:       image.NewRGBA(image.Rect(0, 0, w, h)),
	}
}

func (l *Layer) Name() string            { return l.name }
func (l *Layer) Z() int                  { return l.z }
func (l *Layer) Offscreen() bool         { return l.offscreen }
func (l *Layer) Image() *image.RGBA      { return l.img }
func (l *Layer) Opacity() float64        { return l.opacity }
func (l *Layer) Mode() CompositeMode     { return l.mode }
func (l *Layer) Visible() bool           { return l.visible }
func (l *Layer) SetMode(m CompositeMode) { l.mode = m }
func (l *Layer) SetVisible(v bool)       { l.visible = v }

// SetOpacity clamps o to [0, 1].
func (l *Layer) SetOpacity(o float64) { l.opacity = utils.Clamp(o, 0, 1) }

// SetRenderer replaces the paint function.
func (l *Layer) SetRenderer(fn RenderFunc) { l.render = fn }

// Clear makes the layer fully transparent.
func (l *Layer) Clear() {
	draw.Draw(l.img, l.img.Bounds(), image.Transparent, image.Point{}, draw.Src)
}

func (l *Layer) resize(w, h int) {
	l.img = image.NewRGBA(image.Rect(0, 0, w, h))
}

func (l *Layer) paint() error {
	l.Clear()
	if l.render == nil {
		return nil
	}
	return l.render(l.img)
}

// composite blends src onto dst with the layer's mode and opacity.
func composite(dst *image.RGBA, l *Layer) {
	if !l.visible || l.opacity <= 0 {
		return
	}
	r := dst.Bounds().Intersect(l.img.Bounds())
	mask := image.NewUniform(color.Alpha{A: uint8(l.opacity*255 + 0.5)})

	switch l.mode {
	case CompositeSource:
		draw.DrawMask(dst, r, l.img, r.Min, mask, image.Point{}, draw.Src)
	case CompositeLighter:
		lighter(dst, l.img, r, l.opacity)
	default:
		draw.DrawMask(dst, r, l.img, r.Min, mask, image.Point{}, draw.Over)
	}
}

// lighter adds src to dst channel by channel, saturating at full intensity.
func lighter(dst, src *image.RGBA, r image.Rectangle, opacity float64) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		di := dst.PixOffset(r.Min.X, y)
		si := src.PixOffset(r.Min.X, y)
		for x := r.Min.X; x < r.Max.X; x++ {
			for c := range 4 {
				v := float64(dst.Pix[di+c]) + float64(src.Pix[si+c])*opacity
				dst.Pix[di+c] = uint8(min(v, 255))
			}
			di += 4
			si += 4
		}
	}
}
