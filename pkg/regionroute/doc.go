// Package regionroute plans routes that deliberately pass through (or around)
// a region of interest, trading detour cost against time spent inside it.
//
// A request names a start, an end and a ROI polygon. The [Router]:
//
//  1. snaps start and end to graph nodes and computes the direct route,
//  2. builds a skeleton of the network around the ROI,
//  3. picks locally optimal touch (LOT) nodes on the skeleton border as
//     entry candidates for the start and exit candidates for the end,
//  4. routes every entry to every exit through the skeleton,
//  5. scores each entry/exit combination as a [Candidate], removes
//     dominated ones and keeps the best few.
//
// The score of a candidate is its gain: time in the ROI divided by the detour
// time plus one second.
//
//	r := regionroute.NewRouter(g, route.NewDijkstra(g), idx, regionroute.Config{})
//	resp, err := r.Route(ctx, regionroute.Request{
//	    Points: []geo.Point{start, end},
//	    ROI:    roi,
//	    Mode:   skeleton.Through,
//	})
//
// Candidates whose segments cannot be routed are dropped; when none remain
// the response reports Found == false without an error.
package regionroute
