package vcell

import "github.com/matzehuels/regionroute/pkg/roadgraph"

// edgeKey identifies an undirected edge with its endpoints in ascending order.
type edgeKey struct {
	edge   roadgraph.EdgeID
	lo, hi roadgraph.NodeID
}

// canonical normalises a directed state. The left face of B->A is the right
// face of A->B, so states against the canonical direction flip side.
func canonical(s roadgraph.EdgeState, o Orientation) (edgeKey, Orientation) {
	if s.Base > s.Adj {
		return edgeKey{edge: s.Edge, lo: s.Adj, hi: s.Base}, o.Opposite()
	}
	return edgeKey{edge: s.Edge, lo: s.Base, hi: s.Adj}, o
}

// Tracker records which sides of each edge have been traced.
// The left and right maps are independent.
type Tracker struct {
	left  map[edgeKey]bool
	right map[edgeKey]bool
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		left:  make(map[edgeKey]bool),
		right: make(map[edgeKey]bool),
	}
}

func (t *Tracker) side(o Orientation) map[edgeKey]bool {
	if o == Right {
		return t.right
	}
	return t.left
}

// Settle marks side o of s as traced and reports whether it was unsettled.
func (t *Tracker) Settle(s roadgraph.EdgeState, o Orientation) bool {
	k, o := canonical(s, o)
	m := t.side(o)
	if m[k] {
		return false
	}
	m[k] = true
	return true
}

// IsSettled reports whether side o of s has been traced.
func (t *Tracker) IsSettled(s roadgraph.EdgeState, o Orientation) bool {
	k, o := canonical(s, o)
	return t.side(o)[k]
}

// Unsettled returns the edges of g with at least one untraced side, in
// storage order.
func (t *Tracker) Unsettled(g *roadgraph.Graph) []roadgraph.Edge {
	var out []roadgraph.Edge
	for _, e := range g.AllEdges() {
		s := e.State()
		if !t.IsSettled(s, Left) || !t.IsSettled(s, Right) {
			out = append(out, e)
		}
	}
	return out
}
