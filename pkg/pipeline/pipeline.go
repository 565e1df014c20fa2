// Package pipeline wires graph loading, cell decomposition, spatial indexing
// and region routing into one cached workflow shared by the CLI and the
// HTTP server.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Read a road graph from JSON
//  2. Prepare: Decompose the graph into visibility cells (cached by graph
//     fingerprint) and build the grid index over them
//  3. Route: Answer routing requests against the prepared [Engine]
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	g, err := runner.LoadGraph(ctx, "city.json")
//	eng, err := runner.Prepare(ctx, g, opts)
//	res, err := runner.Route(ctx, eng, pipeline.RouteRequest{
//	    Points: []geo.Point{from, to},
//	    ROI:    roi,
//	}, opts)
//
// An Engine is read-only once prepared; [Runner.RouteBatch] routes many
// requests concurrently against it.
package pipeline

import (
	"time"

	"github.com/matzehuels/regionroute/pkg/gridindex"
	"github.com/matzehuels/regionroute/pkg/regionroute"
	"github.com/matzehuels/regionroute/pkg/roadgraph"
	"github.com/matzehuels/regionroute/pkg/vcell"
)

// Engine is a graph prepared for routing.
type Engine struct {
	Graph       *roadgraph.Graph
	Fingerprint string
	Cells       []*vcell.Cell
	Index       *gridindex.Index
	Router      *regionroute.Router

	// Stats describes the preparation.
	Stats Stats
}

// Stats contains preparation statistics.
type Stats struct {
	NodeCount     int
	EdgeCount     int
	Decompose     vcell.Stats
	DecomposeTime time.Duration
	IndexTime     time.Duration
	CellsCacheHit bool
}
