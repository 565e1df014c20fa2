package route

import (
	"github.com/matzehuels/regionroute/pkg/errors"
	"github.com/matzehuels/regionroute/pkg/roadgraph"
)

// Path is a route between two nodes. A path with Found == false carries only
// its endpoints.
type Path struct {
	Found    bool
	From     roadgraph.NodeID
	To       roadgraph.NodeID
	Steps    []roadgraph.EdgeState
	Distance float64 // meters
	Time     float64 // seconds
}

// NotFound returns an unfound path between from and to.
func NotFound(from, to roadgraph.NodeID) *Path {
	return &Path{From: from, To: to}
}

// FromSteps builds a found path from contiguous steps, summing their weights.
// An empty step list yields the trivial path at from.
func FromSteps(from roadgraph.NodeID, steps []roadgraph.EdgeState) *Path {
	p := &Path{Found: true, From: from, To: from, Steps: steps}
	for _, s := range steps {
		p.Distance += s.Distance
		p.Time += s.Time
		p.To = s.Adj
	}
	return p
}

// Edges returns the edge ids in travel order.
func (p *Path) Edges() []roadgraph.EdgeID {
	out := make([]roadgraph.EdgeID, len(p.Steps))
	for i, s := range p.Steps {
		out[i] = s.Edge
	}
	return out
}

// Nodes returns the visited node sequence including both endpoints.
// It is nil for unfound paths.
func (p *Path) Nodes() []roadgraph.NodeID {
	if !p.Found {
		return nil
	}
	out := make([]roadgraph.NodeID, 0, len(p.Steps)+1)
	out = append(out, p.From)
	for _, s := range p.Steps {
		out = append(out, s.Adj)
	}
	return out
}

// Merger concatenates path segments.
//
// The zero value is ready to use.
type Merger struct {
	path    Path
	started bool
}

// Append adds seg to the end of the merged path. Segments must be found and
// start where the merged path ends; empty segments are compared by node.
func (m *Merger) Append(seg *Path) error {
	if seg == nil || !seg.Found {
		return errors.New(errors.ErrCodeInvalidInput, "cannot merge an unfound segment")
	}
	if !m.started {
		m.path.From, m.path.To = seg.From, seg.From
		m.started = true
	}
	if seg.From != m.path.To {
		return errors.New(errors.ErrCodeInvalidInput, "segment starts at node %d but path ends at node %d", seg.From, m.path.To)
	}
	if n := len(m.path.Steps); n > 0 && len(seg.Steps) > 0 && m.path.Steps[n-1].Adj != seg.Steps[0].Base {
		return errors.New(errors.ErrCodeInvalidInput, "edge %v does not continue edge %v", seg.Steps[0], m.path.Steps[n-1])
	}
	m.path.Steps = append(m.path.Steps, seg.Steps...)
	m.path.Distance += seg.Distance
	m.path.Time += seg.Time
	m.path.To = seg.To
	return nil
}

// Extract returns the merged path marked as found. If nothing was appended
// the result is unfound.
func (m *Merger) Extract() *Path {
	if !m.started {
		return &Path{}
	}
	p := m.path
	p.Steps = append([]roadgraph.EdgeState(nil), m.path.Steps...)
	p.Found = true
	return &p
}

// Merge joins segments in order.
func Merge(segments ...*Path) (*Path, error) {
	var m Merger
	for _, seg := range segments {
		if err := m.Append(seg); err != nil {
			return nil, err
		}
	}
	return m.Extract(), nil
}
