package roadgraph

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/matzehuels/regionroute/pkg/geo"
)

var (
	// ErrDuplicateNode is returned by [Graph.AddNode] when the id is taken.
	ErrDuplicateNode = errors.New("duplicate node id")

	// ErrDuplicateEdge is returned by [Graph.AddEdge] when the id is taken.
	ErrDuplicateEdge = errors.New("duplicate edge id")

	// ErrUnknownNode is returned by [Graph.AddEdge] when an endpoint has not
	// been added.
	ErrUnknownNode = errors.New("unknown node")

	// ErrSelfLoop is returned by [Graph.AddEdge] when base and adj are equal.
	// Self loops bound no face and carry no route.
	ErrSelfLoop = errors.New("edge connects a node to itself")

	// ErrInvalidWeight is returned by [Graph.AddEdge] for negative or
	// non-finite distances and times.
	ErrInvalidWeight = errors.New("edge weight must be finite and non-negative")
)

// NodeID identifies a node.
type NodeID int

// EdgeID identifies a stored, undirected edge.
type EdgeID int

// Node is a graph vertex with a WGS84 position.
type Node struct {
	ID  NodeID  `json:"id"`
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Point returns the node position.
func (n Node) Point() geo.Point { return geo.Point{Lat: n.Lat, Lon: n.Lon} }

// Edge is a stored edge between Base and Adj.
// Oneway edges may only be driven from Base to Adj.
type Edge struct {
	ID       EdgeID
	Base     NodeID
	Adj      NodeID
	Distance float64 // meters
	Time     float64 // seconds
	Oneway   bool
}

// State returns the edge viewed from Base to Adj.
func (e Edge) State() EdgeState {
	return EdgeState{Edge: e.ID, Base: e.Base, Adj: e.Adj, Distance: e.Distance, Time: e.Time, Oneway: e.Oneway}
}

// EdgeState is a directed view of a stored edge. Reverse is set when the
// state runs from the stored Adj to the stored Base.
type EdgeState struct {
	Edge     EdgeID
	Base     NodeID
	Adj      NodeID
	Distance float64
	Time     float64
	Reverse  bool
	Oneway   bool
}

// Detach returns the same edge traversed in the opposite direction.
func (s EdgeState) Detach() EdgeState {
	s.Base, s.Adj = s.Adj, s.Base
	s.Reverse = !s.Reverse
	return s
}

// Traversable reports whether a vehicle may drive the state.
func (s EdgeState) Traversable() bool {
	return !s.Oneway || !s.Reverse
}

// SameDirection reports whether both states view the same edge the same way.
func (s EdgeState) SameDirection(o EdgeState) bool {
	return s.Edge == o.Edge && s.Base == o.Base && s.Adj == o.Adj
}

func (s EdgeState) String() string {
	return fmt.Sprintf("%d[%d->%d]", s.Edge, s.Base, s.Adj)
}

// Graph is an undirected road network with per-direction edge access.
//
// The zero value is not usable; create graphs with [New].
type Graph struct {
	nodes    map[NodeID]Node
	edges    []Edge
	edgeIdx  map[EdgeID]int
	incident map[NodeID][]int // node -> indices into edges
	bbox     geo.BBox
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes:    make(map[NodeID]Node),
		edgeIdx:  make(map[EdgeID]int),
		incident: make(map[NodeID][]int),
		bbox:     geo.EmptyBBox(),
	}
}

// AddNode adds n. Coordinates are validated.
func (g *Graph) AddNode(n Node) error {
	if _, ok := g.nodes[n.ID]; ok {
		return fmt.Errorf("node %d: %w", n.ID, ErrDuplicateNode)
	}
	if err := validateNode(n); err != nil {
		return err
	}
	g.nodes[n.ID] = n
	g.bbox = g.bbox.Extend(n.Point())
	return nil
}

// AddEdge adds e. Both endpoints must exist.
func (g *Graph) AddEdge(e Edge) error {
	if _, ok := g.edgeIdx[e.ID]; ok {
		return fmt.Errorf("edge %d: %w", e.ID, ErrDuplicateEdge)
	}
	if _, ok := g.nodes[e.Base]; !ok {
		return fmt.Errorf("edge %d base %d: %w", e.ID, e.Base, ErrUnknownNode)
	}
	if _, ok := g.nodes[e.Adj]; !ok {
		return fmt.Errorf("edge %d adj %d: %w", e.ID, e.Adj, ErrUnknownNode)
	}
	if e.Base == e.Adj {
		return fmt.Errorf("edge %d: %w", e.ID, ErrSelfLoop)
	}
	if !validWeight(e.Distance) || !validWeight(e.Time) {
		return fmt.Errorf("edge %d: %w", e.ID, ErrInvalidWeight)
	}
	idx := len(g.edges)
	g.edges = append(g.edges, e)
	g.edgeIdx[e.ID] = idx
	g.incident[e.Base] = append(g.incident[e.Base], idx)
	g.incident[e.Adj] = append(g.incident[e.Adj], idx)
	return nil
}

// Node returns the node with the given id.
func (g *Graph) Node(id NodeID) (Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// HasNode reports whether id is part of the graph.
func (g *Graph) HasNode(id NodeID) bool {
	_, ok := g.nodes[id]
	return ok
}

// Point returns the position of id, or the zero point if it is unknown.
func (g *Graph) Point(id NodeID) geo.Point {
	return g.nodes[id].Point()
}

// Nodes returns all nodes ordered by id.
func (g *Graph) Nodes() []Node {
	out := make([]Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		out = append(out, n)
	}
	slices.SortFunc(out, func(a, b Node) int { return int(a.ID) - int(b.ID) })
	return out
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of stored edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Edge returns the stored edge with the given id.
func (g *Graph) Edge(id EdgeID) (Edge, bool) {
	idx, ok := g.edgeIdx[id]
	if !ok {
		return Edge{}, false
	}
	return g.edges[idx], true
}

// State returns edge id viewed as leaving from.
func (g *Graph) State(id EdgeID, from NodeID) (EdgeState, bool) {
	e, ok := g.Edge(id)
	if !ok {
		return EdgeState{}, false
	}
	switch from {
	case e.Base:
		return e.State(), true
	case e.Adj:
		return e.State().Detach(), true
	}
	return EdgeState{}, false
}

// Edges returns the states incident to node, each oriented with Base == node,
// in insertion order.
func (g *Graph) Edges(node NodeID) []EdgeState {
	idxs := g.incident[node]
	out := make([]EdgeState, len(idxs))
	for i, idx := range idxs {
		s := g.edges[idx].State()
		if s.Base != node {
			s = s.Detach()
		}
		out[i] = s
	}
	return out
}

// Degree returns the number of edges incident to node.
func (g *Graph) Degree(node NodeID) int { return len(g.incident[node]) }

// Neighbors returns the distinct nodes adjacent to node.
func (g *Graph) Neighbors(node NodeID) []NodeID {
	var out []NodeID
	for _, s := range g.Edges(node) {
		if !slices.Contains(out, s.Adj) {
			out = append(out, s.Adj)
		}
	}
	return out
}

// AllEdges returns every stored edge once, in storage direction and order.
func (g *Graph) AllEdges() []Edge {
	return slices.Clone(g.edges)
}

// BBox returns the bounding box of all nodes.
func (g *Graph) BBox() geo.BBox { return g.bbox }

// Nearest returns the node closest to (lat, lon) by great-circle distance.
// Ties resolve to the lowest id. It reports false for an empty graph.
func (g *Graph) Nearest(lat, lon float64) (NodeID, bool) {
	p := geo.Point{Lat: lat, Lon: lon}
	var (
		best  NodeID
		bestD float64
		found bool
	)
	for _, n := range g.Nodes() {
		d := geo.Distance(p, n.Point())
		if !found || d < bestD {
			best, bestD, found = n.ID, d, true
		}
	}
	return best, found
}

// Fingerprint returns the hex sha256 of the canonical JSON encoding.
// Graphs with equal fingerprints have identical nodes and edges.
func (g *Graph) Fingerprint() string {
	data, err := json.Marshal(g.document())
	if err != nil {
		// Weights and coordinates are validated as finite on insertion.
		panic(fmt.Sprintf("roadgraph: encode fingerprint: %v", err))
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func validWeight(w float64) bool {
	return w >= 0 && !math.IsInf(w, 1)
}
