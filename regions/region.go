// SPDX-License-Identifier: EPL-2.0

package regions

import (
	"fmt"
	"slices"

	"github.com/lucasb-eyer/go-colorful"
)

// DefaultColor is used when a region is created without one.
const DefaultColor = "#4a90d9"

// Region is a Segment with labels and a display color.
type Region struct {
	Segment

	labels []string
	color  colorful.Color
	owner  *Regions
}

// Options describes a region to create.
type Options struct {
	ID     string
	Start  float64
	End    float64
	Labels []string
	// Color is a hex string; empty means DefaultColor.
	Color string
	// Fixed regions can be neither moved nor removed by the user.
	Fixed bool
}

func NewRegion(o Options) (*Region, error) {
	seg, err := NewSegment(o.ID, o.Start, o.End)
	if err != nil {
		return nil, err
	}
	r := &Region{Segment: *seg, labels: slices.Clone(o.Labels)}
	if err := r.UpdateColor(o.Color); err != nil {
		return nil, err
	}
	if o.Fixed {
		r.updateable = false
		r.deleteable = false
	}
	return r, nil
}

func parseColor(s string) (colorful.Color, error) {
	if s == "" {
		s = DefaultColor
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return colorful.Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	return c, nil
}

func (r *Region) Labels() []string      { return slices.Clone(r.labels) }
func (r *Region) SetLabels(l []string)  { r.labels = slices.Clone(l) }
func (r *Region) Color() colorful.Color { return r.color }

// UpdateColor sets the color from a hex string.
func (r *Region) UpdateColor(hex string) error {
	c, err := parseColor(hex)
	if err != nil {
		return err
	}
	r.color = c
	return nil
}

// Selected and Hovered ask the owning Regions.
func (r *Region) Selected() bool { return r.owner != nil && r.owner.IsSelected(r) }
func (r *Region) Hovered() bool  { return r.owner != nil && r.owner.IsHovered(r) }

// Remove notifies the host, then drops the region from its owner. It does
// nothing for non-deletable regions.
func (r *Region) Remove() {
	if r.owner == nil || r.destroyed || !r.deleteable {
		return
	}
	r.owner.remove(r)
}

// Record is the persisted shape of a region.
func (r *Region) Record() Record {
	return Record{
		ID:     r.id,
		Start:  r.start,
		End:    r.end,
		Labels: slices.Clone(r.labels),
		Color:  r.color.Hex(),
	}
}
