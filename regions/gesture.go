// SPDX-License-Identifier: EPL-2.0

package regions

import (
	"math"

	"github.com/ik5/audwave/cursor"
	"github.com/ik5/audwave/events"
	"github.com/ik5/audwave/utils"
)

// Modifiers are the keys held during a pointer press.
type Modifiers struct {
	Shift, Alt, Ctrl, Meta bool
}

func (m Modifiers) any() bool { return m.Shift || m.Alt || m.Ctrl || m.Meta }

type mode int

const (
	idle mode = iota
	resizing
	dragging
	drawing
)

// gesture is the pointer interaction in progress.
type gesture struct {
	mode   mode
	region *Region
	// anchor is the fixed boundary while resizing or drawing; while dragging
	// it is the press time.
	anchor float64
	origin float64
	moved  bool
}

type hit int

const (
	miss hit = iota
	body
	startEdge
	endEdge
)

// hitTest finds the topmost visible region under x.
func (rs *Regions) hitTest(x float64) (*Region, hit) {
	tl := rs.deps.Timeline
	tol := rs.cfg.EdgeTolerance
	for i := len(rs.list) - 1; i >= 0; i-- {
		r := rs.list[i]
		if !r.visible {
			continue
		}
		sx, ex := tl.TimeToX(r.start), tl.TimeToX(r.end)
		if x < sx-tol || x > ex+tol {
			continue
		}
		ds, de := math.Abs(x-sx), math.Abs(x-ex)
		switch {
		case ds <= tol && ds <= de:
			return r, startEdge
		case de <= tol:
			return r, endEdge
		default:
			return r, body
		}
	}
	return nil, miss
}

// PointerDown starts a gesture at surface x and reports whether the
// regions took the press.
func (rs *Regions) PointerDown(x, _ float64, mods Modifiers) bool {
	if rs.deps.Timeline == nil || rs.g.mode != idle {
		return false
	}
	t := rs.deps.Timeline.XToTime(x)
	cur := rs.deps.Cursor

	r, h := rs.hitTest(x)
	switch h {
	case startEdge, endEdge:
		if !r.updateable || !cur.Acquire(r.id, cursor.ColResize) {
			return false
		}
		anchor := r.end
		if h == endEdge {
			anchor = r.start
		}
		rs.g = gesture{mode: resizing, region: r, anchor: anchor}
		return true

	case body:
		if rs.cfg.Select {
			rs.Select(r, mods.Shift)
		}
		if !r.updateable || !cur.Acquire(r.id, cursor.Grabbing) {
			return rs.cfg.Select
		}
		rs.g = gesture{mode: dragging, region: r, anchor: t, origin: r.start}
		return true
	}

	if rs.locked || (rs.Hovered() && !mods.any()) {
		return false
	}
	nr, err := rs.insert(Options{Start: t, End: t})
	if err != nil {
		rs.log.Error().Err(err).Float64("time", t).Msg("starting region")
		return false
	}
	if !cur.Acquire(nr.id, cursor.Crosshair) {
		rs.drop(nr)
		return false
	}
	rs.locked = true
	rs.g = gesture{mode: drawing, region: nr, anchor: t}
	return true
}

// PointerMove updates the gesture in progress, or hover when idle.
func (rs *Regions) PointerMove(x, _ float64) {
	if rs.deps.Timeline == nil {
		return
	}
	if rs.g.mode == idle {
		rs.hover(x)
		return
	}

	t := rs.deps.Timeline.XToTime(x)
	r := rs.g.region
	switch rs.g.mode {
	case resizing, drawing:
		if min(rs.g.anchor, t) == r.start && max(rs.g.anchor, t) == r.end {
			return
		}
		if err := r.UpdatePosition(rs.g.anchor, t); err != nil {
			return
		}
	case dragging:
		length := r.Length()
		start := utils.Clamp(rs.g.origin+t-rs.g.anchor, 0, max(rs.deps.Duration()-length, 0))
		if start == r.start {
			return
		}
		if err := r.UpdatePosition(start, start+length); err != nil {
			return
		}
	}

	rs.g.moved = true
	if rs.g.mode != drawing {
		rs.emit(events.RegionUpdated, r)
	}
	rs.deps.Redraw()
}

// PointerUp ends the gesture. It reports false when nothing was changed,
// so a plain click can fall through to seeking.
func (rs *Regions) PointerUp(x, y float64) bool {
	if rs.g.mode == idle {
		return false
	}
	rs.PointerMove(x, y)

	g := rs.g
	rs.g = gesture{}
	rs.deps.Cursor.Release(g.region.id)

	switch g.mode {
	case drawing:
		rs.locked = false
		if g.region.start == g.region.end {
			rs.drop(g.region)
			rs.deps.Redraw()
			return false
		}
		rs.log.Debug().Str("region", g.region.id).Msg("region drawn")
		rs.emit(events.RegionCreated, g.region)
		return true
	default:
		if g.moved {
			rs.emit(events.RegionUpdatedEnd, g.region)
			return true
		}
		return rs.cfg.Select && g.mode == dragging
	}
}

// hover tracks which regions lie under x and sets the glyph to match.
func (rs *Regions) hover(x float64) {
	under, h := rs.hitTest(x)

	changed := false
	for r := range rs.hovered {
		if r != under {
			delete(rs.hovered, r)
			changed = true
		}
	}
	if under != nil && !rs.IsHovered(under) {
		rs.hovered[under] = struct{}{}
		changed = true
	}

	g := cursor.Default
	switch {
	case under == nil || !under.updateable:
	case h == body:
		g = cursor.Grab
	default:
		g = cursor.ColResize
	}
	rs.deps.Cursor.SetGlyph("", g)

	if changed {
		rs.deps.Redraw()
	}
}
