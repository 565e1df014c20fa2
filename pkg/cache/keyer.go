package cache

import "strconv"

// CellsKeyOpts are the decomposition settings that change the cached cells.
type CellsKeyOpts struct {
	Format int `json:"format"`
}

// RouteKeyOpts identify a routing request against one graph.
type RouteKeyOpts struct {
	Points          [][2]float64 `json:"points"`
	ROI             [][2]float64 `json:"roi"`
	Mode            string       `json:"mode"`
	Skeleton        string       `json:"skeleton"`
	Resolution      int          `json:"resolution"`
	MaxCandidates   int          `json:"max_candidates"`
	MaxVisitedNodes int          `json:"max_visited_nodes"`
	Weighting       string       `json:"weighting"`
	PruneMetric     string       `json:"prune_metric"`
}

// Keyer derives cache keys. Implementations must be deterministic.
type Keyer interface {
	// CellsKey addresses the decomposition of the graph with the given
	// fingerprint.
	CellsKey(graphHash string, opts CellsKeyOpts) string

	// RouteKey addresses the result of one routing request.
	RouteKey(graphHash string, opts RouteKeyOpts) string
}

// DefaultKeyer hashes the key inputs.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// CellsKey returns "cells:<fingerprint>:<format>".
func (DefaultKeyer) CellsKey(graphHash string, opts CellsKeyOpts) string {
	return "cells:" + graphHash + ":" + strconv.Itoa(opts.Format)
}

// RouteKey returns "route:" followed by a hash of the graph and request.
func (DefaultKeyer) RouteKey(graphHash string, opts RouteKeyOpts) string {
	return hashKey("route", graphHash, opts)
}

var _ Keyer = DefaultKeyer{}
