// SPDX-License-Identifier: EPL-2.0

package regions

import (
	"fmt"

	"github.com/rs/xid"
)

// Segment is a time range in seconds with start <= end. Selection and hover
// live in the owning Regions, not here.
type Segment struct {
	id         string
	start, end float64

	updateable bool
	deleteable bool
	visible    bool
	destroyed  bool
}

// NewSegment fails on negative bounds; reversed bounds are swapped. An
// empty id gets a generated one.
func NewSegment(id string, start, end float64) (*Segment, error) {
	s := &Segment{id: id, updateable: true, deleteable: true, visible: true}
	if s.id == "" {
		s.id = xid.New().String()
	}
	if err := s.UpdatePosition(start, end); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Segment) ID() string           { return s.id }
func (s *Segment) Start() float64       { return s.start }
func (s *Segment) End() float64         { return s.end }
func (s *Segment) Length() float64      { return s.end - s.start }
func (s *Segment) Updateable() bool     { return s.updateable }
func (s *Segment) Deleteable() bool     { return s.deleteable }
func (s *Segment) Visible() bool        { return s.visible }
func (s *Segment) Destroyed() bool      { return s.destroyed }
func (s *Segment) SetUpdateable(v bool) { s.updateable = v }
func (s *Segment) SetDeleteable(v bool) { s.deleteable = v }
func (s *Segment) SetVisible(v bool)    { s.visible = v }

// UpdatePosition sets start to min(a, b) and end to max(a, b).
func (s *Segment) UpdatePosition(a, b float64) error {
	if s.destroyed {
		return ErrDestroyed
	}
	if a < 0 || b < 0 {
		return fmt.Errorf("%w: [%g, %g]", ErrNegativeBound, a, b)
	}
	s.start, s.end = min(a, b), max(a, b)
	return nil
}

// Contains reports whether t falls inside the segment, bounds included.
func (s *Segment) Contains(t float64) bool { return t >= s.start && t <= s.end }

// Destroy is idempotent.
func (s *Segment) Destroy() { s.destroyed = true }
