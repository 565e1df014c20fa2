// Package route defines shortest-path results and the oracle interface the
// region router queries.
//
// A [Path] is an ordered chain of [roadgraph.EdgeState] values from one node
// to another. Paths are joined end to end with a [Merger]; segments that do
// not meet at a common node are rejected.
//
// [Oracle] answers single point-to-point queries. [BatchOracle] adds batched
// one-to-many and many-to-one searches, which answer a whole target set with
// a single graph sweep. [Dijkstra] implements both on a [roadgraph.Graph]:
//
//	d := route.NewDijkstra(g)
//	p, err := d.CalcPath(from, to,
//	    route.WithFilter(skeleton),
//	    route.WithMaxVisitedNodes(50_000),
//	)
//	if err != nil {
//	    return err
//	}
//	if !p.Found {
//	    // no admissible path
//	}
//
// Queries hold no state between calls, so a single oracle may serve
// concurrent requests.
package route
