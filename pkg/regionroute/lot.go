package regionroute

import (
	"slices"

	"github.com/matzehuels/regionroute/pkg/roadgraph"
	"github.com/matzehuels/regionroute/pkg/route"
)

// Direction selects which way LOT paths run relative to the via point.
type Direction int

const (
	// Forward routes from the via point to each boundary node (entries).
	Forward Direction = iota
	// Backward routes from each boundary node to the via point (exits).
	Backward
)

// LOT holds the locally optimal touch nodes of one via point and the paths
// connecting them to it.
type LOT struct {
	Via   roadgraph.NodeID
	Nodes []roadgraph.NodeID
	Paths map[roadgraph.NodeID]*route.Path
}

// ExtractLOT keeps the boundary nodes whose cost to (or from) via is not
// beaten by a neighbouring boundary node. Unreachable boundary nodes are
// dropped. Nodes are returned in ascending order.
func ExtractLOT(g *roadgraph.Graph, o route.Oracle, via roadgraph.NodeID, boundary []roadgraph.NodeID, dir Direction, opts ...route.QueryOption) (*LOT, error) {
	paths, err := pathsFor(o, via, boundary, dir, opts)
	if err != nil {
		return nil, err
	}
	w := route.ApplyOptions(opts...).Weighting
	cost := func(p *route.Path) float64 {
		if w == route.Shortest {
			return p.Distance
		}
		return p.Time
	}

	isBoundary := make(map[roadgraph.NodeID]bool, len(boundary))
	for _, b := range boundary {
		isBoundary[b] = true
	}

	lot := &LOT{Via: via, Paths: make(map[roadgraph.NodeID]*route.Path)}
	for _, b := range boundary {
		p := paths[b]
		if p == nil || !p.Found {
			continue
		}
		local := true
		for _, nb := range g.Neighbors(b) {
			q := paths[nb]
			if isBoundary[nb] && q != nil && q.Found && cost(q) < cost(p) {
				local = false
				break
			}
		}
		if local && lot.Paths[b] == nil {
			lot.Nodes = append(lot.Nodes, b)
			lot.Paths[b] = p
		}
	}
	slices.Sort(lot.Nodes)
	return lot, nil
}

func pathsFor(o route.Oracle, via roadgraph.NodeID, nodes []roadgraph.NodeID, dir Direction, opts []route.QueryOption) (map[roadgraph.NodeID]*route.Path, error) {
	if b, ok := o.(route.BatchOracle); ok {
		if dir == Forward {
			return b.OneToMany(via, nodes, opts...)
		}
		return b.ManyToOne(nodes, via, opts...)
	}
	out := make(map[roadgraph.NodeID]*route.Path, len(nodes))
	for _, n := range nodes {
		from, to := via, n
		if dir == Backward {
			from, to = n, via
		}
		p, err := o.CalcPath(from, to, opts...)
		if err != nil {
			return nil, err
		}
		out[n] = p
	}
	return out, nil
}
