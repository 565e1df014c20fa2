package route

import "github.com/matzehuels/regionroute/pkg/roadgraph"

// EdgeFilter restricts which directed edges a search may relax.
type EdgeFilter interface {
	Accept(roadgraph.EdgeState) bool
}

// FilterFunc adapts a function to [EdgeFilter].
type FilterFunc func(roadgraph.EdgeState) bool

// Accept calls f.
func (f FilterFunc) Accept(s roadgraph.EdgeState) bool { return f(s) }

// AcceptAll admits every edge.
var AcceptAll EdgeFilter = FilterFunc(func(roadgraph.EdgeState) bool { return true })

// Weighting selects the edge cost minimised by a search.
type Weighting string

const (
	Fastest  Weighting = "fastest"
	Shortest Weighting = "shortest"
)

// Weight returns the cost of traversing s.
func (w Weighting) Weight(s roadgraph.EdgeState) float64 {
	if w == Shortest {
		return s.Distance
	}
	return s.Time
}

// QueryOptions holds per-query settings.
type QueryOptions struct {
	Filter          EdgeFilter
	MaxVisitedNodes int // 0 means unlimited
	Weighting       Weighting
}

// QueryOption configures a query.
type QueryOption func(*QueryOptions)

// WithFilter restricts the search to edges accepted by f.
func WithFilter(f EdgeFilter) QueryOption {
	return func(o *QueryOptions) { o.Filter = f }
}

// WithMaxVisitedNodes aborts a search after n settled nodes; targets not
// reached by then are reported as not found.
func WithMaxVisitedNodes(n int) QueryOption {
	return func(o *QueryOptions) { o.MaxVisitedNodes = n }
}

// WithWeighting selects the cost function.
func WithWeighting(w Weighting) QueryOption {
	return func(o *QueryOptions) { o.Weighting = w }
}

// ApplyOptions resolves opts over the defaults (no filter, no limit,
// fastest).
func ApplyOptions(opts ...QueryOption) QueryOptions {
	o := QueryOptions{Filter: AcceptAll, Weighting: Fastest}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Filter == nil {
		o.Filter = AcceptAll
	}
	return o
}

// Oracle computes shortest paths. Unknown endpoints are an error; an
// unreachable target is a path with Found == false.
type Oracle interface {
	CalcPath(from, to roadgraph.NodeID, opts ...QueryOption) (*Path, error)
}

// BatchOracle answers many queries sharing an endpoint with one sweep.
// Results are keyed by the varying endpoint and hold an entry for every
// requested node.
type BatchOracle interface {
	Oracle
	OneToMany(from roadgraph.NodeID, targets []roadgraph.NodeID, opts ...QueryOption) (map[roadgraph.NodeID]*Path, error)
	ManyToOne(sources []roadgraph.NodeID, to roadgraph.NodeID, opts ...QueryOption) (map[roadgraph.NodeID]*Path, error)
}
