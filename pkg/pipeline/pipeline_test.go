package pipeline

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/regionroute/pkg/cache"
	"github.com/matzehuels/regionroute/pkg/errors"
	"github.com/matzehuels/regionroute/pkg/geo"
	"github.com/matzehuels/regionroute/pkg/roadgraph"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

// writeLattice exports a 5x5 grid (0.01 degree spacing, 60s per edge) and
// returns the file path.
func writeLattice(t *testing.T) string {
	t.Helper()
	const n = 5
	g := roadgraph.New()
	id := func(r, c int) roadgraph.NodeID { return roadgraph.NodeID(r*n + c) }
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			if err := g.AddNode(roadgraph.Node{ID: id(r, c), Lat: float64(r) * 0.01, Lon: float64(c) * 0.01}); err != nil {
				t.Fatal(err)
			}
		}
	}
	eid := 0
	add := func(a, b roadgraph.NodeID) {
		if err := g.AddEdge(roadgraph.Edge{ID: roadgraph.EdgeID(eid), Base: a, Adj: b, Distance: 1000, Time: 60}); err != nil {
			t.Fatal(err)
		}
		eid++
	}
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			if c+1 < n {
				add(id(r, c), id(r, c+1))
			}
			if r+1 < n {
				add(id(r, c), id(r+1, c))
			}
		}
	}
	path := filepath.Join(t.TempDir(), "lattice.json")
	if err := roadgraph.ExportJSON(g, path); err != nil {
		t.Fatal(err)
	}
	return path
}

func bandRequest() RouteRequest {
	return RouteRequest{
		Points: []geo.Point{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 0.04}},
		ROI: []geo.Point{
			{Lat: 0.015, Lon: 0.005}, {Lat: 0.015, Lon: 0.035},
			{Lat: 0.025, Lon: 0.035}, {Lat: 0.025, Lon: 0.005},
		},
	}
}

func TestOptionsDefaults(t *testing.T) {
	var opts Options
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if opts.Resolution != DefaultResolution || opts.Skeleton != "cells" || opts.Mode != "through" ||
		opts.MaxCandidates != 3 || opts.Weighting != "fastest" || opts.PruneMetric != "time" ||
		opts.Workers != DefaultWorkers || opts.CacheTTL != DefaultCacheTTL || opts.Logger == nil {
		t.Errorf("unexpected defaults: %+v", opts)
	}
	// Idempotent.
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Error(err)
	}
}

func TestOptionsValidation(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"defaults", Options{}, false},
		{"roi through", Options{Skeleton: "roi"}, false},
		{"cells around", Options{Mode: "around"}, false},
		{"unknown skeleton", Options{Skeleton: "hull"}, true},
		{"unknown mode", Options{Mode: "across"}, true},
		{"unknown weighting", Options{Weighting: "scenic"}, true},
		{"unknown metric", Options{PruneMetric: "energy"}, true},
		{"roi around", Options{Skeleton: "roi", Mode: "around"}, true},
		{"negative resolution", Options{Resolution: -1}, true},
		{"negative budget", Options{MaxVisitedNodes: -5}, true},
		{"negative workers", Options{Workers: -2}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("code = %s, want INVALID_CONFIG", errors.GetCode(err))
			}
		})
	}
}

func TestLoadOptionsFile(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
		return p
	}

	good := write("good.toml", `
resolution = 32
skeleton = "roi"
max_candidates = 5
cache_ttl = "1h"
redis_addr = "localhost:6379"
`)
	opts, err := LoadOptionsFile(good)
	if err != nil {
		t.Fatal(err)
	}
	want := Options{Resolution: 32, Skeleton: "roi", MaxCandidates: 5, CacheTTL: time.Hour, RedisAddr: "localhost:6379"}
	if diff := cmp.Diff(want, opts, cmp.AllowUnexported(Options{})); diff != "" {
		t.Errorf("options (-want +got):\n%s", diff)
	}

	if _, err := LoadOptionsFile(write("typo.toml", `resolutoin = 32`)); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("unknown key: err = %v, want INVALID_CONFIG", err)
	}
	if _, err := LoadOptionsFile(write("broken.toml", `resolution = `)); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("syntax error: err = %v, want INVALID_CONFIG", err)
	}
	if _, err := LoadOptionsFile(filepath.Join(dir, "missing.toml")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file: err = %v, want FILE_NOT_FOUND", err)
	}
}

func TestPrepareCachesCells(t *testing.T) {
	ctx := context.Background()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(c, nil, quietLogger())
	g, err := r.LoadGraph(ctx, writeLattice(t))
	if err != nil {
		t.Fatal(err)
	}

	first, err := r.Prepare(ctx, g, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if first.Stats.CellsCacheHit {
		t.Error("first preparation should miss the cache")
	}
	// 16 squares and the outer face.
	if len(first.Cells) != 17 {
		t.Errorf("cells = %d, want 17", len(first.Cells))
	}

	second, err := r.Prepare(ctx, g, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !second.Stats.CellsCacheHit {
		t.Error("second preparation should hit the cache")
	}
	if diff := cmp.Diff(first.Stats.Decompose, second.Stats.Decompose); diff != "" {
		t.Errorf("stats (-first +second):\n%s", diff)
	}
	for i := range first.Cells {
		if first.Cells[i].Key() != second.Cells[i].Key() {
			t.Errorf("cell %d differs after cache round trip", i)
		}
	}

	third, err := r.Prepare(ctx, g, Options{Refresh: true})
	if err != nil {
		t.Fatal(err)
	}
	if third.Stats.CellsCacheHit {
		t.Error("refresh should bypass the cache")
	}
}

func TestRoute(t *testing.T) {
	ctx := context.Background()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(c, nil, quietLogger())
	g, err := r.LoadGraph(ctx, writeLattice(t))
	if err != nil {
		t.Fatal(err)
	}
	eng, err := r.Prepare(ctx, g, Options{})
	if err != nil {
		t.Fatal(err)
	}

	res, err := r.Route(ctx, eng, bandRequest(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Found || res.CacheHit {
		t.Fatalf("found=%v cacheHit=%v", res.Found, res.CacheHit)
	}
	if diff := cmp.Diff([]roadgraph.NodeID{0, 5, 6, 7, 8, 9, 4}, res.Path.Nodes); diff != "" {
		t.Errorf("path (-want +got):\n%s", diff)
	}
	if len(res.Path.Points) != len(res.Path.Nodes) || len(res.Path.Edges) != len(res.Path.Nodes)-1 {
		t.Errorf("path has %d points and %d edges for %d nodes", len(res.Path.Points), len(res.Path.Edges), len(res.Path.Nodes))
	}
	if len(res.Alternatives) != 3 || res.Alternatives[0].Entry != 5 || res.Alternatives[0].Exit != 9 {
		t.Errorf("alternatives = %+v", res.Alternatives)
	}

	again, err := r.Route(ctx, eng, bandRequest(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !again.CacheHit {
		t.Error("second request should hit the cache")
	}
	again.CacheHit = false
	if diff := cmp.Diff(res, again); diff != "" {
		t.Errorf("cached result (-fresh +cached):\n%s", diff)
	}

	data, err := res.GeoJSON()
	if err != nil {
		t.Fatal(err)
	}
	var fc struct {
		Type     string            `json:"type"`
		Features []json.RawMessage `json:"features"`
	}
	if err := json.Unmarshal(data, &fc); err != nil {
		t.Fatal(err)
	}
	// direct, route and three alternatives
	if fc.Type != "FeatureCollection" || len(fc.Features) != 5 {
		t.Errorf("geojson has type %q with %d features", fc.Type, len(fc.Features))
	}
}

func TestRouteRequestErrors(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(nil, nil, quietLogger())
	g, err := r.LoadGraph(ctx, writeLattice(t))
	if err != nil {
		t.Fatal(err)
	}
	eng, err := r.Prepare(ctx, g, Options{})
	if err != nil {
		t.Fatal(err)
	}

	noROI := bandRequest()
	noROI.ROI = nil
	badMode := bandRequest()
	badMode.Mode = "across"
	three := bandRequest()
	three.Points = append(three.Points, geo.Point{Lat: 0.04, Lon: 0.04})

	tests := []struct {
		name string
		req  RouteRequest
		want errors.Code
	}{
		{"missing roi", noROI, errors.ErrCodeInvalidInput},
		{"bad mode", badMode, errors.ErrCodeInvalidInput},
		{"three points", three, errors.ErrCodeUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Route(ctx, eng, tt.req, Options{})
			if got := errors.GetCode(err); got != tt.want {
				t.Errorf("code = %q, want %q (err: %v)", got, tt.want, err)
			}
		})
	}
}

func TestRouteRequestGeoJSON(t *testing.T) {
	req := RouteRequest{ROIGeoJSON: json.RawMessage(`{
		"type": "Polygon",
		"coordinates": [[[0.005, 0.015], [0.035, 0.015], [0.035, 0.025], [0.005, 0.025], [0.005, 0.015]]]
	}`)}
	p, err := req.Polygon()
	if err != nil {
		t.Fatal(err)
	}
	if p.Len() != 4 || !p.Contains(0.02, 0.02) {
		t.Errorf("polygon has %d vertices, contains center: %v", p.Len(), p.Contains(0.02, 0.02))
	}
}

func TestRouteBatch(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(nil, nil, quietLogger())
	g, err := r.LoadGraph(ctx, writeLattice(t))
	if err != nil {
		t.Fatal(err)
	}
	eng, err := r.Prepare(ctx, g, Options{})
	if err != nil {
		t.Fatal(err)
	}

	reverse := bandRequest()
	reverse.Points = []geo.Point{reverse.Points[1], reverse.Points[0]}
	reqs := []RouteRequest{bandRequest(), reverse, bandRequest(), reverse}

	res, err := r.RouteBatch(ctx, eng, reqs, Options{Workers: 2})
	if err != nil {
		t.Fatal(err)
	}
	for i, rr := range res {
		if !rr.Found {
			t.Errorf("request %d not found", i)
		}
		wantStart := roadgraph.NodeID(0)
		if i%2 == 1 {
			wantStart = 4
		}
		if rr.Start != wantStart {
			t.Errorf("request %d starts at %d, want %d", i, rr.Start, wantStart)
		}
	}

	bad := append(reqs, RouteRequest{Points: reqs[0].Points})
	if _, err := r.RouteBatch(ctx, eng, bad, Options{}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("err = %v, want INVALID_INPUT", err)
	}
}

func TestCellsGeoJSON(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(nil, nil, quietLogger())
	g, err := r.LoadGraph(ctx, writeLattice(t))
	if err != nil {
		t.Fatal(err)
	}
	cells, err := r.Decompose(ctx, g, Options{})
	if err != nil {
		t.Fatal(err)
	}

	for _, tt := range []struct {
		withOuter bool
		want      int
	}{{false, 16}, {true, 17}} {
		data, err := CellsGeoJSON(cells, tt.withOuter)
		if err != nil {
			t.Fatal(err)
		}
		var fc struct {
			Features []json.RawMessage `json:"features"`
		}
		if err := json.Unmarshal(data, &fc); err != nil {
			t.Fatal(err)
		}
		if len(fc.Features) != tt.want {
			t.Errorf("withOuter=%v: %d features, want %d", tt.withOuter, len(fc.Features), tt.want)
		}
	}
}
