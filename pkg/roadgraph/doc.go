// Package roadgraph stores the road network consumed by the routing core.
//
// A [Graph] holds nodes with WGS84 coordinates and undirected edges carrying
// a distance in meters and a travel time in seconds. Every stored edge can be
// viewed in either direction as an [EdgeState]; [Graph.Edges] yields the
// states incident to a node oriented outward, [Graph.AllEdges] yields every
// stored edge once in storage direction.
//
// Graphs are built with [New], [Graph.AddNode] and [Graph.AddEdge], or read
// from JSON with [ReadJSON]:
//
//	{
//	  "nodes": [{"id": 1, "lat": 52.50, "lon": 13.40}, ...],
//	  "edges": [{"base": 1, "adj": 2, "distance": 120, "time": 9.5}, ...]
//	}
//
// Missing edge ids default to the edge's position, missing distances to the
// great-circle distance between the endpoints, and missing times to the
// distance driven at [DefaultSpeed].
//
// A Graph is not safe for concurrent mutation. Once built it is read-only and
// may be shared by concurrent queries.
package roadgraph
