package skeleton

import (
	"slices"

	"github.com/matzehuels/regionroute/pkg/errors"
	"github.com/matzehuels/regionroute/pkg/geo"
	"github.com/matzehuels/regionroute/pkg/gridindex"
	"github.com/matzehuels/regionroute/pkg/roadgraph"
	"github.com/matzehuels/regionroute/pkg/route"
)

// Kind selects the skeleton variant.
type Kind string

const (
	// KindROI admits the nodes inside the region itself.
	KindROI Kind = "roi"
	// KindCells admits the nodes of the visibility cells around the region.
	KindCells Kind = "cells"
)

// Mode selects how edges at the skeleton border are treated.
type Mode string

const (
	// Through accepts an edge when both endpoints are members.
	Through Mode = "through"
	// Around accepts an edge when at least one endpoint is a member.
	Around Mode = "around"
)

// ParseKind validates a kind name.
func ParseKind(s string) (Kind, error) {
	if err := errors.ValidateOneOf("skeleton", s, string(KindCells), string(KindROI)); err != nil {
		return "", err
	}
	return Kind(s), nil
}

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	if err := errors.ValidateOneOf("mode", s, string(Through), string(Around)); err != nil {
		return "", err
	}
	return Mode(s), nil
}

// Skeleton is a node membership test usable as a search filter.
type Skeleton interface {
	route.EdgeFilter
	Contains(roadgraph.NodeID) bool
	// Nodes returns the members in insertion order.
	Nodes() []roadgraph.NodeID
}

// Retargetable is a skeleton whose entry and exit nodes change per query.
type Retargetable interface {
	Skeleton
	Activate(entry, exit roadgraph.NodeID)
}

// membership is a node set with a stable iteration order.
type membership struct {
	in    map[roadgraph.NodeID]bool
	order []roadgraph.NodeID
}

func newMembership() membership {
	return membership{in: make(map[roadgraph.NodeID]bool)}
}

func (m *membership) add(n roadgraph.NodeID) bool {
	if m.in[n] {
		return false
	}
	m.in[n] = true
	m.order = append(m.order, n)
	return true
}

func (m *membership) remove(n roadgraph.NodeID) {
	if !m.in[n] {
		return
	}
	delete(m.in, n)
	if i := slices.Index(m.order, n); i >= 0 {
		m.order = slices.Delete(m.order, i, i+1)
	}
}

// ROI admits the nodes inside a polygon.
type ROI struct {
	members membership
}

// NewROI collects the nodes of g inside roi, boundary included.
func NewROI(g *roadgraph.Graph, roi *geo.Polygon) *ROI {
	s := &ROI{members: newMembership()}
	for _, n := range g.Nodes() {
		if roi.ContainsPoint(n.Point()) {
			s.members.add(n.ID)
		}
	}
	return s
}

// Accept admits edges with both endpoints inside the polygon.
func (s *ROI) Accept(e roadgraph.EdgeState) bool {
	return s.members.in[e.Base] && s.members.in[e.Adj]
}

// Contains reports whether n lies inside the polygon.
func (s *ROI) Contains(n roadgraph.NodeID) bool { return s.members.in[n] }

// Nodes returns the members by ascending id.
func (s *ROI) Nodes() []roadgraph.NodeID { return slices.Clone(s.members.order) }

// Cells admits the nodes of the visibility cells around a polygon plus the
// active entry and exit nodes.
type Cells struct {
	mode    Mode
	members membership
	static  map[roadgraph.NodeID]bool
	active  []roadgraph.NodeID
}

var _ Retargetable = (*Cells)(nil)

// NewCells collects the nodes of the bounded cells in idx that intersect roi
// but are not contained in it.
func NewCells(idx *gridindex.Index, roi *geo.Polygon, mode Mode) *Cells {
	s := &Cells{
		mode:    mode,
		members: newMembership(),
		static:  make(map[roadgraph.NodeID]bool),
	}
	for _, c := range idx.Query(roi) {
		if c.Outer() || c.Polygon().Within(roi) {
			continue
		}
		for _, n := range c.DistinctNodes() {
			if s.members.add(n) {
				s.static[n] = true
			}
		}
	}
	return s
}

// Activate replaces the previous entry and exit nodes with the given pair.
func (s *Cells) Activate(entry, exit roadgraph.NodeID) {
	for _, n := range s.active {
		s.members.remove(n)
	}
	s.active = s.active[:0]
	for _, n := range []roadgraph.NodeID{entry, exit} {
		if !s.static[n] && s.members.add(n) {
			s.active = append(s.active, n)
		}
	}
}

// Accept applies the mode: Through needs both endpoints, Around one.
func (s *Cells) Accept(e roadgraph.EdgeState) bool {
	base, adj := s.members.in[e.Base], s.members.in[e.Adj]
	if s.mode == Around {
		return base || adj
	}
	return base && adj
}

// Contains reports whether n is a cell node or part of the active pair.
func (s *Cells) Contains(n roadgraph.NodeID) bool { return s.members.in[n] }

// Nodes returns the cell nodes in query order followed by the active pair.
func (s *Cells) Nodes() []roadgraph.NodeID { return slices.Clone(s.members.order) }

// Mode returns the acceptance mode.
func (s *Cells) Mode() Mode { return s.mode }

// Build constructs the skeleton of the given kind. Around mode needs the
// cells kind; the cells kind needs an index.
func Build(kind Kind, mode Mode, g *roadgraph.Graph, idx *gridindex.Index, roi *geo.Polygon) (Skeleton, error) {
	switch kind {
	case KindROI:
		if mode == Around {
			return nil, errors.New(errors.ErrCodeInvalidInput, "around mode needs the %q skeleton", KindCells)
		}
		return NewROI(g, roi), nil
	case KindCells:
		if idx == nil {
			return nil, errors.New(errors.ErrCodePrecondition, "cells skeleton needs a grid index")
		}
		return NewCells(idx, roi, mode), nil
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "unknown skeleton kind %q", kind)
}

// BoundaryNodes returns the members of s with at least one neighbour outside
// s, in ascending order.
func BoundaryNodes(g *roadgraph.Graph, s Skeleton) []roadgraph.NodeID {
	var out []roadgraph.NodeID
	for _, n := range s.Nodes() {
		for _, e := range g.Edges(n) {
			if !s.Contains(e.Adj) {
				out = append(out, n)
				break
			}
		}
	}
	slices.Sort(out)
	return out
}
