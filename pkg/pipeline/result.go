package pipeline

import (
	"encoding/json"

	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/matzehuels/regionroute/pkg/errors"
	"github.com/matzehuels/regionroute/pkg/geo"
	"github.com/matzehuels/regionroute/pkg/regionroute"
	"github.com/matzehuels/regionroute/pkg/roadgraph"
	"github.com/matzehuels/regionroute/pkg/route"
	"github.com/matzehuels/regionroute/pkg/skeleton"
)

// RouteRequest is the wire form of a routing request. The ROI is either a
// vertex list or a GeoJSON polygon; GeoJSON wins when both are set.
type RouteRequest struct {
	Points     []geo.Point     `json:"points"`
	ROI        []geo.Point     `json:"roi,omitempty"`
	ROIGeoJSON json.RawMessage `json:"roi_geojson,omitempty"`
	Mode       string          `json:"mode,omitempty"`
}

// Polygon returns the request's ROI.
func (r RouteRequest) Polygon() (*geo.Polygon, error) {
	if len(r.ROIGeoJSON) > 0 {
		return geo.ParsePolygon(r.ROIGeoJSON)
	}
	if len(r.ROI) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "missing region of interest")
	}
	p := geo.NewPolygon(r.ROI)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// request converts the wire form, applying defaultMode when none is given.
func (r RouteRequest) request(defaultMode string) (regionroute.Request, error) {
	roi, err := r.Polygon()
	if err != nil {
		return regionroute.Request{}, err
	}
	mode := r.Mode
	if mode == "" {
		mode = defaultMode
	}
	m, err := skeleton.ParseMode(mode)
	if err != nil {
		return regionroute.Request{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "request mode")
	}
	return regionroute.Request{Points: r.Points, ROI: roi, Mode: m}, nil
}

// PathResult is a path with its node coordinates.
type PathResult struct {
	Nodes    []roadgraph.NodeID `json:"nodes"`
	Edges    []roadgraph.EdgeID `json:"edges"`
	Points   []geo.Point        `json:"points"`
	Distance float64            `json:"distance"`
	Time     float64            `json:"time"`
}

func newPathResult(g *roadgraph.Graph, p *route.Path) *PathResult {
	if p == nil || !p.Found {
		return nil
	}
	nodes := p.Nodes()
	pts := make([]geo.Point, len(nodes))
	for i, n := range nodes {
		pts[i] = g.Point(n)
	}
	return &PathResult{Nodes: nodes, Edges: p.Edges(), Points: pts, Distance: p.Distance, Time: p.Time}
}

// Alternative summarises one ranked candidate.
type Alternative struct {
	Entry            roadgraph.NodeID `json:"entry"`
	Exit             roadgraph.NodeID `json:"exit"`
	Gain             float64          `json:"gain"`
	TimeInROI        float64          `json:"time_in_roi"`
	DistanceInROI    float64          `json:"distance_in_roi"`
	DetourTime       float64          `json:"detour_time"`
	SelfIntersecting bool             `json:"self_intersecting"`
	Path             *PathResult      `json:"path,omitempty"`
}

// RouteResult is the wire form of a routing response.
type RouteResult struct {
	Found        bool                   `json:"found"`
	Start        roadgraph.NodeID       `json:"start"`
	End          roadgraph.NodeID       `json:"end"`
	Path         *PathResult            `json:"path,omitempty"`
	Direct       *PathResult            `json:"direct,omitempty"`
	Alternatives []Alternative          `json:"alternatives,omitempty"`
	Stats        regionroute.RouteStats `json:"stats"`
	CacheHit     bool                   `json:"cache_hit"`
}

// NewRouteResult converts a router response.
func NewRouteResult(g *roadgraph.Graph, resp *regionroute.Response) (*RouteResult, error) {
	out := &RouteResult{
		Found:  resp.Found,
		Start:  resp.Start,
		End:    resp.End,
		Path:   newPathResult(g, resp.Path),
		Direct: newPathResult(g, resp.Direct),
		Stats:  resp.Stats,
	}
	for _, c := range resp.Alternatives {
		p, err := c.Path()
		if err != nil {
			return nil, err
		}
		out.Alternatives = append(out.Alternatives, Alternative{
			Entry:            c.Entry,
			Exit:             c.Exit,
			Gain:             c.Gain(),
			TimeInROI:        c.TimeInROI(),
			DistanceInROI:    c.DistanceInROI(),
			DetourTime:       c.DetourTime(),
			SelfIntersecting: c.IsDetourSelfIntersecting(),
			Path:             newPathResult(g, p),
		})
	}
	return out, nil
}

// GeoJSON renders the chosen path, the direct path and every alternative as
// a FeatureCollection of LineStrings.
func (r *RouteResult) GeoJSON() ([]byte, error) {
	var features []*geojson.Feature
	if r.Direct != nil {
		features = append(features, geo.LineFeature(r.Direct.Points, map[string]any{"role": "direct", "time": r.Direct.Time}))
	}
	if r.Path != nil {
		features = append(features, geo.LineFeature(r.Path.Points, map[string]any{"role": "route", "time": r.Path.Time}))
	}
	for i, a := range r.Alternatives {
		if a.Path == nil {
			continue
		}
		features = append(features, geo.LineFeature(a.Path.Points, map[string]any{
			"role": "alternative", "rank": i, "gain": a.Gain, "entry": a.Entry, "exit": a.Exit,
		}))
	}
	return geo.MarshalFeatures(features...)
}
