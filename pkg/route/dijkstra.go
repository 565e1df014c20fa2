package route

import (
	"container/heap"

	"github.com/matzehuels/regionroute/pkg/errors"
	"github.com/matzehuels/regionroute/pkg/roadgraph"
)

// Dijkstra is a label-setting shortest-path oracle over a road graph.
// Oneway edges are only relaxed in storage direction.
type Dijkstra struct {
	g *roadgraph.Graph
}

var _ BatchOracle = (*Dijkstra)(nil)

// NewDijkstra returns an oracle over g. The graph must not be mutated while
// queries run.
func NewDijkstra(g *roadgraph.Graph) *Dijkstra {
	return &Dijkstra{g: g}
}

// CalcPath returns the cheapest path from from to to.
func (d *Dijkstra) CalcPath(from, to roadgraph.NodeID, opts ...QueryOption) (*Path, error) {
	res, err := d.OneToMany(from, []roadgraph.NodeID{to}, opts...)
	if err != nil {
		return nil, err
	}
	return res[to], nil
}

// OneToMany searches forward from from until every target is settled.
func (d *Dijkstra) OneToMany(from roadgraph.NodeID, targets []roadgraph.NodeID, opts ...QueryOption) (map[roadgraph.NodeID]*Path, error) {
	if err := d.checkNodes(from, targets); err != nil {
		return nil, err
	}
	t := d.search(from, targets, false, ApplyOptions(opts...))
	out := make(map[roadgraph.NodeID]*Path, len(targets))
	for _, target := range targets {
		out[target] = t.forwardPath(from, target)
	}
	return out, nil
}

// ManyToOne searches backward from to, so every returned path ends at to.
func (d *Dijkstra) ManyToOne(sources []roadgraph.NodeID, to roadgraph.NodeID, opts ...QueryOption) (map[roadgraph.NodeID]*Path, error) {
	if err := d.checkNodes(to, sources); err != nil {
		return nil, err
	}
	t := d.search(to, sources, true, ApplyOptions(opts...))
	out := make(map[roadgraph.NodeID]*Path, len(sources))
	for _, src := range sources {
		out[src] = t.backwardPath(src, to)
	}
	return out, nil
}

func (d *Dijkstra) checkNodes(root roadgraph.NodeID, others []roadgraph.NodeID) error {
	if !d.g.HasNode(root) {
		return errors.New(errors.ErrCodeNotFound, "unknown node %d", root)
	}
	for _, n := range others {
		if !d.g.HasNode(n) {
			return errors.New(errors.ErrCodeNotFound, "unknown node %d", n)
		}
	}
	return nil
}

// tree is a shortest-path tree. For forward searches parent[n] is the state
// entering n; for backward searches it is the state leaving n towards the root.
type tree struct {
	settled map[roadgraph.NodeID]bool
	parent  map[roadgraph.NodeID]roadgraph.EdgeState
}

func (d *Dijkstra) search(root roadgraph.NodeID, targets []roadgraph.NodeID, backward bool, o QueryOptions) tree {
	t := tree{
		settled: make(map[roadgraph.NodeID]bool),
		parent:  make(map[roadgraph.NodeID]roadgraph.EdgeState),
	}
	remaining := make(map[roadgraph.NodeID]bool, len(targets))
	for _, n := range targets {
		remaining[n] = true
	}

	dist := map[roadgraph.NodeID]float64{root: 0}
	pq := &nodeQueue{}
	heap.Push(pq, queueItem{node: root})

	visited := 0
	for pq.Len() > 0 && len(remaining) > 0 {
		cur := heap.Pop(pq).(queueItem)
		if t.settled[cur.node] {
			continue
		}
		if o.MaxVisitedNodes > 0 && visited >= o.MaxVisitedNodes {
			break
		}
		t.settled[cur.node] = true
		visited++
		delete(remaining, cur.node)

		for _, s := range d.g.Edges(cur.node) {
			// Backward searches walk edges against travel direction.
			travel := s
			if backward {
				travel = s.Detach()
			}
			if !travel.Traversable() || !o.Filter.Accept(travel) {
				continue
			}
			next := s.Adj
			if t.settled[next] {
				continue
			}
			nd := cur.dist + o.Weighting.Weight(travel)
			if old, ok := dist[next]; ok && nd >= old {
				continue
			}
			dist[next] = nd
			t.parent[next] = travel
			heap.Push(pq, queueItem{node: next, dist: nd})
		}
	}
	return t
}

func (t tree) forwardPath(root, target roadgraph.NodeID) *Path {
	if !t.settled[target] {
		return NotFound(root, target)
	}
	var steps []roadgraph.EdgeState
	for n := target; n != root; {
		s := t.parent[n]
		steps = append(steps, s)
		n = s.Base
	}
	for i, j := 0, len(steps)-1; i < j; i, j = i+1, j-1 {
		steps[i], steps[j] = steps[j], steps[i]
	}
	return FromSteps(root, steps)
}

func (t tree) backwardPath(src, root roadgraph.NodeID) *Path {
	if !t.settled[src] {
		return NotFound(src, root)
	}
	var steps []roadgraph.EdgeState
	for n := src; n != root; {
		s := t.parent[n]
		steps = append(steps, s)
		n = s.Adj
	}
	return FromSteps(src, steps)
}

type queueItem struct {
	node roadgraph.NodeID
	dist float64
}

// nodeQueue orders by distance, then node id, so equal-cost searches settle
// nodes in a fixed order.
type nodeQueue []queueItem

func (q nodeQueue) Len() int { return len(q) }

func (q nodeQueue) Less(i, j int) bool {
	if q[i].dist != q[j].dist {
		return q[i].dist < q[j].dist
	}
	return q[i].node < q[j].node
}

func (q nodeQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *nodeQueue) Push(x any) { *q = append(*q, x.(queueItem)) }

func (q *nodeQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}
