package regionroute

import (
	"context"

	"github.com/matzehuels/regionroute/pkg/errors"
	"github.com/matzehuels/regionroute/pkg/geo"
	"github.com/matzehuels/regionroute/pkg/gridindex"
	"github.com/matzehuels/regionroute/pkg/roadgraph"
	"github.com/matzehuels/regionroute/pkg/route"
	"github.com/matzehuels/regionroute/pkg/skeleton"
)

// DefaultMaxCandidates is the number of ranked candidates a response keeps.
const DefaultMaxCandidates = 3

// Config holds the router settings shared by all requests.
type Config struct {
	Skeleton        skeleton.Kind
	MaxCandidates   int
	MaxVisitedNodes int
	Weighting       route.Weighting
	PruneMetric     Metric
}

func (c Config) withDefaults() Config {
	if c.Skeleton == "" {
		c.Skeleton = skeleton.KindCells
	}
	if c.MaxCandidates <= 0 {
		c.MaxCandidates = DefaultMaxCandidates
	}
	if c.Weighting == "" {
		c.Weighting = route.Fastest
	}
	if c.PruneMetric == "" {
		c.PruneMetric = MetricTime
	}
	return c
}

// Request asks for a route from Points[0] to Points[1] passing the ROI.
type Request struct {
	Points []geo.Point
	ROI    *geo.Polygon
	Mode   skeleton.Mode
}

// Response is the result of a routing request.
type Response struct {
	Found        bool
	Start        roadgraph.NodeID
	End          roadgraph.NodeID
	Path         *route.Path
	Direct       *route.Path
	Alternatives []*Candidate
	Stats        RouteStats
}

// RouteStats counts what each stage of a request produced.
type RouteStats struct {
	SkeletonNodes int `json:"skeleton_nodes"`
	BoundaryNodes int `json:"boundary_nodes"`
	Entries       int `json:"entries"`
	Exits         int `json:"exits"`
	Candidates    int `json:"candidates"`
	Pruned        int `json:"pruned"`
	Selected      int `json:"selected"`
}

// Router answers ROI routing requests over one graph. It holds no
// per-request state and may be shared between goroutines.
type Router struct {
	g      *roadgraph.Graph
	oracle route.Oracle
	index  *gridindex.Index
	cfg    Config
}

// NewRouter returns a router over g. index may be nil when the ROI skeleton
// kind is configured.
func NewRouter(g *roadgraph.Graph, oracle route.Oracle, index *gridindex.Index, cfg Config) *Router {
	return &Router{g: g, oracle: oracle, index: index, cfg: cfg.withDefaults()}
}

// Config returns the effective configuration.
func (r *Router) Config() Config { return r.cfg }

func (r *Router) queryOptions() []route.QueryOption {
	return []route.QueryOption{
		route.WithWeighting(r.cfg.Weighting),
		route.WithMaxVisitedNodes(r.cfg.MaxVisitedNodes),
	}
}

func validate(req Request) error {
	switch n := len(req.Points); {
	case n > 2:
		return errors.NotImplemented("routing via %d points", n)
	case n < 2:
		return errors.New(errors.ErrCodeInvalidInput, "need a start and an end point, got %d points", n)
	}
	for _, p := range req.Points {
		if err := errors.ValidateLatLon(p.Lat, p.Lon); err != nil {
			return err
		}
	}
	if req.ROI == nil {
		return errors.New(errors.ErrCodeInvalidInput, "missing region of interest")
	}
	return req.ROI.Validate()
}

// Route plans a route through (or around) the request's ROI.
func (r *Router) Route(ctx context.Context, req Request) (*Response, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	mode := req.Mode
	if mode == "" {
		mode = skeleton.Through
	}

	start, ok := r.g.Nearest(req.Points[0].Lat, req.Points[0].Lon)
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "graph has no nodes")
	}
	end, _ := r.g.Nearest(req.Points[1].Lat, req.Points[1].Lon)

	opts := r.queryOptions()
	direct, err := r.oracle.CalcPath(start, end, opts...)
	if err != nil {
		return nil, err
	}
	resp := &Response{Start: start, End: end, Direct: direct}

	skel, err := skeleton.Build(r.cfg.Skeleton, mode, r.g, r.index, req.ROI)
	if err != nil {
		return nil, err
	}
	resp.Stats.SkeletonNodes = len(skel.Nodes())
	boundary := skeleton.BoundaryNodes(r.g, skel)
	resp.Stats.BoundaryNodes = len(boundary)
	if len(boundary) == 0 || !direct.Found {
		return resp, nil
	}

	entries, err := ExtractLOT(r.g, r.oracle, start, boundary, Forward, opts...)
	if err != nil {
		return nil, err
	}
	exits, err := ExtractLOT(r.g, r.oracle, end, boundary, Backward, opts...)
	if err != nil {
		return nil, err
	}
	resp.Stats.Entries, resp.Stats.Exits = len(entries.Nodes), len(exits.Nodes)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mr := NewMultiRouter(r.oracle, skel, opts...)
	if err := mr.ManyToMany(entries.Nodes, exits.Nodes); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var list CandidateList
	for _, in := range entries.Nodes {
		for _, out := range exits.Nodes {
			if in == out {
				continue
			}
			through, _ := mr.Path(in, out)
			c := NewCandidate(direct, entries.Paths[in], through, exits.Paths[out])
			if c.Legal() {
				list = append(list, c)
			}
		}
	}
	resp.Stats.Candidates = len(list)

	list.PruneDominated(r.cfg.PruneMetric)
	resp.Stats.Pruned = resp.Stats.Candidates - len(list)
	best, err := list.SelectBest(r.cfg.MaxCandidates, r.cfg.PruneMetric)
	if err != nil {
		return nil, err
	}
	resp.Stats.Selected = len(best)
	if len(best) == 0 {
		return resp, nil
	}

	path, err := best[0].Path()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "merge candidate %d->%d", best[0].Entry, best[0].Exit)
	}
	resp.Found = true
	resp.Path = path
	resp.Alternatives = best
	return resp, nil
}
