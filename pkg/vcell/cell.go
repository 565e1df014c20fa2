package vcell

import (
	"encoding/json"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/regionroute/pkg/errors"
	"github.com/matzehuels/regionroute/pkg/geo"
	"github.com/matzehuels/regionroute/pkg/roadgraph"
)

// Cell is one face of the planar embedding: a closed walk of node ids and
// the polygon through their positions. Walks around spurs visit a node more
// than once. Cells are immutable.
type Cell struct {
	ID    int
	Nodes []roadgraph.NodeID

	polygon *geo.Polygon
}

func newCell(g *roadgraph.Graph, ids []roadgraph.NodeID) *Cell {
	pts := make([]geo.Point, len(ids))
	for i, id := range ids {
		pts[i] = g.Point(id)
	}
	return &Cell{Nodes: ids, polygon: geo.NewPolygon(pts)}
}

// Polygon returns the cell outline. It may be degenerate for spur faces.
func (c *Cell) Polygon() *geo.Polygon { return c.polygon }

// BBox returns the bounding box of the outline.
func (c *Cell) BBox() geo.BBox { return c.polygon.BBox() }

// Area returns the signed shoelace area of the outline in square degrees.
// Bounded faces are emitted clockwise and have negative area; the unbounded
// outer face of each connected component has positive area.
func (c *Cell) Area() float64 {
	pts := c.polygon.Points()
	var a float64
	for i := range pts {
		p, q := pts[i].Vec(), pts[(i+1)%len(pts)].Vec()
		a += p.Cross(q)
	}
	return a / 2
}

// Outer reports whether the cell is the unbounded face around a component.
func (c *Cell) Outer() bool { return c.Area() > 0 }

// DistinctNodes returns the node ids of the walk without repetitions, in
// walk order.
func (c *Cell) DistinctNodes() []roadgraph.NodeID {
	out := make([]roadgraph.NodeID, 0, len(c.Nodes))
	seen := make(map[roadgraph.NodeID]bool, len(c.Nodes))
	for _, n := range c.Nodes {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}

// Key returns the canonical form of the node cycle: the lexicographically
// smallest rotation of the walk or its reverse.
func (c *Cell) Key() string {
	ids := c.Nodes
	if len(ids) == 0 {
		return ""
	}
	rev := slices.Clone(ids)
	slices.Reverse(rev)
	best := minRotation(ids)
	if r := minRotation(rev); slices.Compare(r, best) < 0 {
		best = r
	}
	parts := make([]string, len(best))
	for i, id := range best {
		parts[i] = strconv.Itoa(int(id))
	}
	return strings.Join(parts, ",")
}

// Equal reports whether both cells bound the same node cycle.
func (c *Cell) Equal(o *Cell) bool {
	return c.Key() == o.Key()
}

func minRotation(ids []roadgraph.NodeID) []roadgraph.NodeID {
	lo := slices.Min(ids)
	var best []roadgraph.NodeID
	for i, id := range ids {
		if id != lo {
			continue
		}
		rot := slices.Concat(ids[i:], ids[:i])
		if best == nil || slices.Compare(rot, best) < 0 {
			best = rot
		}
	}
	return best
}

type cellRecord struct {
	ID    int                `json:"id"`
	Nodes []roadgraph.NodeID `json:"nodes"`
}

// MarshalCells encodes cells by id and node walk.
func MarshalCells(cells []*Cell) ([]byte, error) {
	recs := make([]cellRecord, len(cells))
	for i, c := range cells {
		recs[i] = cellRecord{ID: c.ID, Nodes: c.Nodes}
	}
	data, err := json.Marshal(recs)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode cells")
	}
	return data, nil
}

// UnmarshalCells decodes cells written by [MarshalCells], rebuilding their
// outlines from the node positions in g.
func UnmarshalCells(data []byte, g *roadgraph.Graph) ([]*Cell, error) {
	var recs []cellRecord
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode cells")
	}
	cells := make([]*Cell, len(recs))
	for i, r := range recs {
		for _, n := range r.Nodes {
			if !g.HasNode(n) {
				return nil, errors.New(errors.ErrCodeInvalidGraph, "cell %d references unknown node %d", r.ID, n)
			}
		}
		c := newCell(g, r.Nodes)
		c.ID = r.ID
		cells[i] = c
	}
	return cells, nil
}
