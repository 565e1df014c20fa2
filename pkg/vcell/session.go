package vcell

import "github.com/matzehuels/regionroute/pkg/roadgraph"

// Stats summarises a decomposition.
type Stats struct {
	Faces           int `json:"faces"`            // traces run
	Cells           int `json:"cells"`            // distinct cells
	DegenerateEdges int `json:"degenerate_edges"` // zero-length edges skipped
	Resettled       int `json:"resettled"`        // sides traced twice; zero on consistent graphs
}

// Session decomposes one graph. It owns the tracker and the cells found so
// far and must not be reused for another graph.
type Session struct {
	g       *roadgraph.Graph
	tracker *Tracker
	cells   []*Cell
	byKey   map[string]*Cell
	memo    angleMemo
	stats   Stats
	done    bool
}

// NewSession starts a decomposition of g.
func NewSession(g *roadgraph.Graph) *Session {
	return &Session{
		g:       g,
		tracker: NewTracker(),
		byKey:   make(map[string]*Cell),
		memo:    make(angleMemo),
	}
}

// Decompose runs a fresh session over g.
func Decompose(g *roadgraph.Graph) ([]*Cell, Stats, error) {
	s := NewSession(g)
	cells, err := s.Run()
	return cells, s.Stats(), err
}

// Run traces every face of the graph. Each stored edge is visited once in
// storage direction; an unsettled left or right side starts a trace. A trace
// that fails to close aborts the run with an INVARIANT_VIOLATION error
// wrapping a [*TraceError].
//
// Run is idempotent: later calls return the cells of the first complete run.
func (s *Session) Run() ([]*Cell, error) {
	if s.done {
		return s.cells, nil
	}
	for _, e := range s.g.AllEdges() {
		st := e.State()
		if s.g.Point(e.Base) == s.g.Point(e.Adj) {
			s.tracker.Settle(st, Left)
			s.tracker.Settle(st, Right)
			s.stats.DegenerateEdges++
			continue
		}
		for _, o := range []Orientation{Left, Right} {
			if s.tracker.IsSettled(st, o) {
				continue
			}
			if _, err := s.Trace(st, o); err != nil {
				return nil, err
			}
		}
	}
	s.done = true
	return s.cells, nil
}

// Trace runs a single trace from start with orientation o, recording the
// cell unless an equal one exists. It returns the cell of the traced face.
//
// A component that is a single cycle bounds its inner and its outer face
// with the same nodes. The bounded walk is kept for that key whichever is
// traced first, so the result does not depend on edge storage direction.
func (s *Session) Trace(start roadgraph.EdgeState, o Orientation) (*Cell, error) {
	r := newRunner(s.g, o, s.tracker, start)
	r.memo = s.memo
	c, err := r.run()
	if err != nil {
		return nil, err
	}
	s.stats.Faces++
	s.stats.Resettled += r.resettled

	key := c.Key()
	if prev, ok := s.byKey[key]; ok {
		if !prev.Outer() || c.Outer() {
			return prev, nil
		}
		c.ID = prev.ID
		s.cells[c.ID] = c
		s.byKey[key] = c
		return c, nil
	}
	c.ID = len(s.cells)
	s.cells = append(s.cells, c)
	s.byKey[key] = c
	s.stats.Cells = len(s.cells)
	return c, nil
}

// Cells returns the cells found so far, ordered by id.
func (s *Session) Cells() []*Cell { return s.cells }

// Stats returns counters for the work done so far.
func (s *Session) Stats() Stats { return s.stats }

// Tracker exposes the settled sides.
func (s *Session) Tracker() *Tracker { return s.tracker }
