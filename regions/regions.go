// SPDX-License-Identifier: EPL-2.0

package regions

import (
	"fmt"
	"slices"

	"github.com/ik5/audwave/cursor"
	"github.com/ik5/audwave/events"
	"github.com/ik5/audwave/player"
	"github.com/rs/zerolog"
)

// DefaultEdgeTolerance is how close to a boundary, in pixels, a press
// grabs the edge instead of the body.
const DefaultEdgeTolerance = 5.0

// Timeline maps between surface pixels and seconds.
type Timeline interface {
	TimeToX(t float64) float64
	XToTime(x float64) float64
	PixelsToSeconds(px float64) float64
}

type Config struct {
	EdgeTolerance float64
	// Select makes a click on a region body select it.
	Select bool
	Logger zerolog.Logger
}

type Deps struct {
	Timeline Timeline
	Duration func() float64
	Cursor   *cursor.Cursor
	Emitter  events.Emitter
	// Redraw asks for a dry frame after appearance changes.
	Redraw func()
}

// Regions owns every region and is the only place selection and hover are
// recorded.
type Regions struct {
	cfg  Config
	log  zerolog.Logger
	deps Deps

	list     []*Region
	byID     map[string]*Region
	selected []*Region
	hovered  map[*Region]struct{}

	locked bool
	g      gesture
}

func New(cfg Config, deps Deps) *Regions {
	if cfg.EdgeTolerance <= 0 {
		cfg.EdgeTolerance = DefaultEdgeTolerance
	}
	if deps.Emitter == nil {
		deps.Emitter = events.Discard
	}
	if deps.Cursor == nil {
		deps.Cursor = cursor.New(cursor.Default)
	}
	if deps.Duration == nil {
		deps.Duration = func() float64 { return 0 }
	}
	if deps.Redraw == nil {
		deps.Redraw = func() {}
	}
	return &Regions{
		cfg:     cfg,
		log:     cfg.Logger,
		deps:    deps,
		byID:    make(map[string]*Region),
		hovered: make(map[*Region]struct{}),
	}
}

func (rs *Regions) emit(name events.Name, r *Region) {
	rs.deps.Emitter.Emit(events.Event{Name: name, Subject: r})
}

// Add creates a region and notifies the host.
func (rs *Regions) Add(o Options) (*Region, error) {
	r, err := rs.insert(o)
	if err != nil {
		return nil, err
	}
	rs.emit(events.RegionCreated, r)
	rs.deps.Redraw()
	return r, nil
}

func (rs *Regions) insert(o Options) (*Region, error) {
	if o.ID != "" {
		if _, ok := rs.byID[o.ID]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateID, o.ID)
		}
	}
	r, err := NewRegion(o)
	if err != nil {
		return nil, err
	}
	r.owner = rs
	rs.list = append(rs.list, r)
	rs.byID[r.id] = r
	return r, nil
}

// Patch holds the fields an update changes; nil fields are kept.
type Patch struct {
	Start  *float64
	End    *float64
	Labels []string
	Color  *string
}

// Update applies p to the region with id and notifies the host.
func (rs *Regions) Update(id string, p Patch) error {
	r, ok := rs.byID[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}

	start, end := r.start, r.end
	if p.Start != nil {
		start = *p.Start
	}
	if p.End != nil {
		end = *p.End
	}
	// validate everything before the region changes
	color := r.color
	if p.Color != nil {
		c, err := parseColor(*p.Color)
		if err != nil {
			return err
		}
		color = c
	}
	if err := r.UpdatePosition(start, end); err != nil {
		return err
	}
	r.color = color
	if p.Labels != nil {
		r.SetLabels(p.Labels)
	}

	rs.emit(events.RegionUpdated, r)
	rs.deps.Redraw()
	return nil
}

// Remove removes the region with id. Unknown ids and non-deletable regions
// are ignored.
func (rs *Regions) Remove(id string) {
	if r, ok := rs.byID[id]; ok {
		r.Remove()
	}
}

// remove notifies the host before any teardown so its store stays the
// record of truth.
func (rs *Regions) remove(r *Region) {
	rs.emit(events.RegionRemoved, r)
	rs.drop(r)
	rs.deps.Redraw()
}

func (rs *Regions) drop(r *Region) {
	rs.list = slices.DeleteFunc(rs.list, func(x *Region) bool { return x == r })
	delete(rs.byID, r.id)
	rs.selected = slices.DeleteFunc(rs.selected, func(x *Region) bool { return x == r })
	delete(rs.hovered, r)
	rs.deps.Cursor.Release(r.id)
	if rs.g.region == r {
		rs.g = gesture{}
		rs.locked = false
	}
	r.owner = nil
	r.Destroy()
}

func (rs *Regions) Get(id string) (*Region, bool) {
	r, ok := rs.byID[id]
	return r, ok
}

// List returns the regions in creation order.
func (rs *Regions) List() []*Region { return slices.Clone(rs.list) }

func (rs *Regions) Len() int { return len(rs.list) }

// Select marks r as selected. Unless additive, other regions are
// deselected first.
func (rs *Regions) Select(r *Region, additive bool) {
	if r == nil || r.owner != rs {
		return
	}
	if !additive {
		for _, s := range rs.selected {
			if s != r {
				rs.deps.Emitter.Emit(events.Event{Name: events.RegionSelected, Subject: s, Flag: false})
			}
		}
		rs.selected = rs.selected[:0]
		rs.selected = append(rs.selected, r)
	} else if !rs.IsSelected(r) {
		rs.selected = append(rs.selected, r)
	}
	rs.deps.Emitter.Emit(events.Event{Name: events.RegionSelected, Subject: r, Flag: true})
	rs.deps.Redraw()
}

func (rs *Regions) Deselect(r *Region) {
	if !rs.IsSelected(r) {
		return
	}
	rs.selected = slices.DeleteFunc(rs.selected, func(x *Region) bool { return x == r })
	rs.deps.Emitter.Emit(events.Event{Name: events.RegionSelected, Subject: r, Flag: false})
	rs.deps.Redraw()
}

func (rs *Regions) ClearSelection() {
	for _, r := range slices.Clone(rs.selected) {
		rs.Deselect(r)
	}
}

func (rs *Regions) Selected() []*Region       { return slices.Clone(rs.selected) }
func (rs *Regions) IsSelected(r *Region) bool { return slices.Contains(rs.selected, r) }

func (rs *Regions) IsHovered(r *Region) bool {
	_, ok := rs.hovered[r]
	return ok
}

// Hovered reports whether any region is under the pointer.
func (rs *Regions) Hovered() bool { return len(rs.hovered) > 0 }

// SelectedRanges lists the selected regions as play ranges.
func (rs *Regions) SelectedRanges() []player.Range {
	out := make([]player.Range, 0, len(rs.selected))
	for _, r := range rs.selected {
		out = append(out, player.Range{Start: r.start, End: r.end})
	}
	return out
}

// Lock stops new regions being drawn.
func (rs *Regions) Lock()        { rs.locked = true }
func (rs *Regions) Unlock()      { rs.locked = false }
func (rs *Regions) Locked() bool { return rs.locked }

// Records returns the persisted shape of every region.
func (rs *Regions) Records() []Record {
	out := make([]Record, 0, len(rs.list))
	for _, r := range rs.list {
		out = append(out, r.Record())
	}
	return out
}

// Load replaces all regions with recs. The host already has them, so no
// creation events are emitted. Nothing changes if any record is invalid.
func (rs *Regions) Load(recs []Record) error {
	ids := make(map[string]struct{}, len(recs))
	for _, rec := range recs {
		if _, err := NewRegion(rec.Options()); err != nil {
			return fmt.Errorf("region %q: %w", rec.ID, err)
		}
		if rec.ID == "" {
			continue
		}
		if _, dup := ids[rec.ID]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateID, rec.ID)
		}
		ids[rec.ID] = struct{}{}
	}

	rs.Clear()
	for _, rec := range recs {
		if _, err := rs.insert(rec.Options()); err != nil {
			return err
		}
	}
	rs.log.Debug().Int("regions", len(recs)).Msg("regions loaded")
	rs.deps.Redraw()
	return nil
}

// Clear drops every region without notifying the host.
func (rs *Regions) Clear() {
	for _, r := range slices.Clone(rs.list) {
		rs.drop(r)
	}
}

// Destroy drops everything. It is idempotent.
func (rs *Regions) Destroy() {
	rs.Clear()
	rs.g = gesture{}
	rs.locked = false
}
