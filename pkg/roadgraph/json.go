package roadgraph

import (
	"encoding/json"
	"io"
	"os"

	"github.com/matzehuels/regionroute/pkg/errors"
	"github.com/matzehuels/regionroute/pkg/geo"
)

// DefaultSpeed is the speed in m/s used to derive missing edge times (50 km/h).
const DefaultSpeed = 50.0 / 3.6

type document struct {
	Nodes []Node       `json:"nodes"`
	Edges []edgeRecord `json:"edges"`
}

type edgeRecord struct {
	ID       *EdgeID  `json:"id,omitempty"`
	Base     NodeID   `json:"base"`
	Adj      NodeID   `json:"adj"`
	Distance *float64 `json:"distance,omitempty"`
	Time     *float64 `json:"time,omitempty"`
	Oneway   bool     `json:"oneway,omitempty"`
}

func validateNode(n Node) error {
	if err := errors.ValidateLatLon(n.Lat, n.Lon); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidGraph, err, "node %d", n.ID)
	}
	return nil
}

func (g *Graph) document() document {
	doc := document{Nodes: g.Nodes(), Edges: make([]edgeRecord, len(g.edges))}
	for i, e := range g.edges {
		id, dist, t := e.ID, e.Distance, e.Time
		doc.Edges[i] = edgeRecord{ID: &id, Base: e.Base, Adj: e.Adj, Distance: &dist, Time: &t, Oneway: e.Oneway}
	}
	return doc
}

// ReadJSON decodes a graph from r. Errors carry code INVALID_GRAPH and name
// the offending node or edge. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*Graph, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidGraph, err, "decode")
	}

	g := New()
	for _, n := range doc.Nodes {
		if err := g.AddNode(n); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidGraph, err, "node %d", n.ID)
		}
	}
	for i, rec := range doc.Edges {
		e := Edge{ID: EdgeID(i), Base: rec.Base, Adj: rec.Adj, Oneway: rec.Oneway}
		if rec.ID != nil {
			e.ID = *rec.ID
		}
		if rec.Distance != nil {
			e.Distance = *rec.Distance
		} else {
			e.Distance = geo.Distance(g.Point(rec.Base), g.Point(rec.Adj))
		}
		if rec.Time != nil {
			e.Time = *rec.Time
		} else {
			e.Time = e.Distance / DefaultSpeed
		}
		if err := g.AddEdge(e); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidGraph, err, "edge %d->%d", rec.Base, rec.Adj)
		}
	}
	return g, nil
}

// ImportJSON reads the graph file at path.
func ImportJSON(path string) (*Graph, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidGraph, err, "open %s", path)
	}
	defer f.Close()
	return ReadJSON(f)
}

// WriteJSON encodes g with all edge fields filled in. The output round-trips
// through [ReadJSON].
func WriteJSON(g *Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(g.document()); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode")
	}
	return nil
}

// ExportJSON writes g to the file at path.
func ExportJSON(g *Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", path)
	}
	defer f.Close()
	return WriteJSON(g, f)
}
