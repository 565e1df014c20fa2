package vcell

import (
	"github.com/matzehuels/regionroute/pkg/errors"
	"github.com/matzehuels/regionroute/pkg/roadgraph"
)

// MaxSteps bounds a single face trace.
const MaxSteps = 10_000

// runner traces one face starting from a directed edge.
type runner struct {
	g       *roadgraph.Graph
	o       Orientation
	tracker *Tracker

	start roadgraph.EdgeState
	chain []roadgraph.EdgeState
	local map[stepKey]bool
	memo  angleMemo

	resettled int
}

// stepKey is the full input of one step. Seeing it twice means the walk
// cycles without returning to its start.
type stepKey struct {
	edge     roadgraph.EdgeID
	base     roadgraph.NodeID
	lastEdge roadgraph.EdgeID
	lastBase roadgraph.NodeID
}

func newRunner(g *roadgraph.Graph, o Orientation, tracker *Tracker, start roadgraph.EdgeState) *runner {
	return &runner{
		g:       g,
		o:       o,
		tracker: tracker,
		start:   start,
		local:   make(map[stepKey]bool),
		memo:    make(angleMemo),
	}
}

func (r *runner) degenerate(s roadgraph.EdgeState) bool {
	return r.g.Point(s.Base) == r.g.Point(s.Adj)
}

// run traces until the walk returns to its start state.
func (r *runner) run() (*Cell, error) {
	if r.degenerate(r.start) {
		return nil, errors.New(errors.ErrCodePrecondition, "cannot trace from zero-length edge %v", r.start)
	}

	r.visit(r.start)
	cur, last := r.start, r.start
	for steps := 1; ; steps++ {
		if steps > MaxSteps {
			return nil, r.fail(steps, "step limit exceeded")
		}
		k := stepKey{edge: cur.Edge, base: cur.Base, lastEdge: last.Edge, lastBase: last.Base}
		if r.local[k] {
			return nil, r.fail(steps, "walk repeats without closing")
		}
		r.local[k] = true

		next := r.next(cur, last)
		if next.SameDirection(r.start) {
			break
		}
		r.visit(next)
		if !r.degenerate(next) {
			last = next
		}
		cur = next
	}
	return r.cell(), nil
}

func (r *runner) visit(s roadgraph.EdgeState) {
	r.chain = append(r.chain, s)
	if !r.tracker.Settle(s, r.o) && !r.degenerate(s) {
		r.resettled++
	}
}

// next picks the most extreme turn at the head of cur, measured against the
// last non-degenerate edge reversed.
func (r *runner) next(cur, last roadgraph.EdgeState) roadgraph.EdgeState {
	node := cur.Adj
	ref := last.Detach()
	ix := newNeighbourIndex(r.g, r.o, node, ref).sharing(r.memo)
	if r.degenerate(cur) {
		ix.skipping(cur.Edge)
	}
	best, isRef := ix.build().mostOriented()
	if !isRef {
		return best
	}
	if ref.Base == node {
		return ref
	}
	// Dead end behind a zero-length edge: step back over it.
	return cur.Detach()
}

func (r *runner) nodes() []roadgraph.NodeID {
	out := make([]roadgraph.NodeID, len(r.chain))
	for i, s := range r.chain {
		out[i] = s.Base
	}
	return out
}

func (r *runner) fail(steps int, reason string) error {
	chain := r.nodes()
	if n := len(r.chain); n > 0 {
		chain = append(chain, r.chain[n-1].Adj)
	}
	te := &TraceError{Orientation: r.o, Start: r.start, Steps: steps, Nodes: chain, Reason: reason}
	return errors.Wrap(errors.ErrCodeInvariantViolation, te, "decompose")
}

// cell wraps the traced chain. Left traces run counter-clockwise around
// bounded faces and are reversed so both orientations yield the same order.
func (r *runner) cell() *Cell {
	ids := r.nodes()
	if r.o == Left {
		for i, j := 0, len(ids)-1; i < j; i, j = i+1, j-1 {
			ids[i], ids[j] = ids[j], ids[i]
		}
	}
	return newCell(r.g, ids)
}
