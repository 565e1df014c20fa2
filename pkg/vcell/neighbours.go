package vcell

import (
	"cmp"
	"slices"

	"github.com/matzehuels/regionroute/pkg/geo"
	"github.com/matzehuels/regionroute/pkg/roadgraph"
)

type scored struct {
	state roadgraph.EdgeState
	angle float64
	ref   bool
}

// neighbourIndex orders the edges leaving one node by their turn angle
// relative to a reference state. The reference sorts last, so the entry
// before it is the most extreme turn.
type neighbourIndex struct {
	g    *roadgraph.Graph
	o    Orientation
	node roadgraph.NodeID
	ref  roadgraph.EdgeState

	skip    roadgraph.EdgeID
	hasSkip bool

	refFrom, refTo geo.Point
	entries        []scored

	memo angleMemo
}

// resolveKey identifies one zero-length resolution. Besides the far node the
// angle depends on the index node, its reference and the skipped edge.
type resolveKey struct {
	o       Orientation
	node    roadgraph.NodeID
	far     roadgraph.NodeID
	refEdge roadgraph.EdgeID
	refBase roadgraph.NodeID
	skip    roadgraph.EdgeID
	hasSkip bool
}

// angleMemo holds resolved angles of zero-length edges. A decomposition
// session shares one across all steps of all its traces.
type angleMemo map[resolveKey]float64

func newNeighbourIndex(g *roadgraph.Graph, o Orientation, node roadgraph.NodeID, ref roadgraph.EdgeState) *neighbourIndex {
	return &neighbourIndex{
		g:       g,
		o:       o,
		node:    node,
		ref:     ref,
		refFrom: g.Point(ref.Base),
		refTo:   g.Point(ref.Adj),
		memo:    make(angleMemo),
	}
}

// sharing makes the index read and fill m instead of a private memo.
func (ix *neighbourIndex) sharing(m angleMemo) *neighbourIndex {
	if m != nil {
		ix.memo = m
	}
	return ix
}

// skipping excludes edge id from the index.
func (ix *neighbourIndex) skipping(id roadgraph.EdgeID) *neighbourIndex {
	ix.skip, ix.hasSkip = id, true
	return ix
}

func (ix *neighbourIndex) excluded(s roadgraph.EdgeState) bool {
	return (ix.hasSkip && s.Edge == ix.skip) || s.Edge == ix.ref.Edge
}

func (ix *neighbourIndex) angle(s roadgraph.EdgeState) float64 {
	return ix.o.Angle(ix.refFrom, ix.refTo, ix.g.Point(s.Base), ix.g.Point(s.Adj))
}

// build scores and orders the incident edges.
func (ix *neighbourIndex) build() *neighbourIndex {
	refIncident := false
	for _, s := range ix.g.Edges(ix.node) {
		if s.SameDirection(ix.ref) {
			refIncident = true
			ix.entries = append(ix.entries, scored{state: s, angle: 0, ref: true})
			continue
		}
		if ix.excluded(s) {
			continue
		}
		a := ix.angle(s)
		if a == Sentinel {
			a = ix.resolve(s.Adj)
			if a == Sentinel {
				continue
			}
		}
		ix.entries = append(ix.entries, scored{state: s, angle: a})
	}
	if !refIncident {
		ix.entries = append(ix.entries, scored{state: ix.ref, angle: 0, ref: true})
	}

	slices.SortStableFunc(ix.entries, func(a, b scored) int {
		if c := cmp.Compare(a.angle, b.angle); c != 0 {
			return c
		}
		if a.ref != b.ref {
			if a.ref {
				return -1
			}
			return 1
		}
		return cmp.Compare(a.state.Edge, b.state.Edge)
	})

	k := slices.IndexFunc(ix.entries, func(e scored) bool { return e.ref })
	ix.entries = slices.Concat(ix.entries[k+1:], ix.entries[:k+1])
	return ix
}

// resolve returns the largest angle among the non-degenerate edges reachable
// from far through zero-length edges. The walk never re-enters the index's own
// node, which bounds it on cycles of coincident nodes.
func (ix *neighbourIndex) resolve(far roadgraph.NodeID) float64 {
	key := resolveKey{
		o: ix.o, node: ix.node, far: far,
		refEdge: ix.ref.Edge, refBase: ix.ref.Base,
		skip: ix.skip, hasSkip: ix.hasSkip,
	}
	if a, ok := ix.memo[key]; ok {
		return a
	}
	best := Sentinel
	seen := map[roadgraph.NodeID]bool{ix.node: true, far: true}
	work := []roadgraph.NodeID{far}
	for len(work) > 0 {
		n := work[0]
		work = work[1:]
		for _, s := range ix.g.Edges(n) {
			if ix.excluded(s) {
				continue
			}
			a := ix.angle(s)
			if a == Sentinel {
				if !seen[s.Adj] {
					seen[s.Adj] = true
					work = append(work, s.Adj)
				}
				continue
			}
			best = max(best, a)
		}
	}
	ix.memo[key] = best
	return best
}

// mostOriented returns the entry just before the reference, and whether that
// entry is the reference itself (no other edge leaves the node).
func (ix *neighbourIndex) mostOriented() (roadgraph.EdgeState, bool) {
	if len(ix.entries) < 2 {
		return ix.ref, true
	}
	e := ix.entries[len(ix.entries)-2]
	return e.state, e.ref
}
