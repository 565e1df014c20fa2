package roadgraph

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	rrerrors "github.com/matzehuels/regionroute/pkg/errors"
)

func triangle(t *testing.T) *Graph {
	t.Helper()
	g := New()
	for _, n := range []Node{{1, 0, 0}, {2, 0, 1}, {3, 1, 0}} {
		if err := g.AddNode(n); err != nil {
			t.Fatalf("AddNode(%d): %v", n.ID, err)
		}
	}
	for _, e := range []Edge{
		{ID: 10, Base: 1, Adj: 2, Distance: 100, Time: 10},
		{ID: 11, Base: 2, Adj: 3, Distance: 140, Time: 14, Oneway: true},
		{ID: 12, Base: 3, Adj: 1, Distance: 100, Time: 10},
	} {
		if err := g.AddEdge(e); err != nil {
			t.Fatalf("AddEdge(%d): %v", e.ID, err)
		}
	}
	return g
}

func TestAddErrors(t *testing.T) {
	g := triangle(t)
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"duplicate node", g.AddNode(Node{ID: 1}), ErrDuplicateNode},
		{"duplicate edge", g.AddEdge(Edge{ID: 10, Base: 1, Adj: 3}), ErrDuplicateEdge},
		{"unknown base", g.AddEdge(Edge{ID: 20, Base: 9, Adj: 1}), ErrUnknownNode},
		{"unknown adj", g.AddEdge(Edge{ID: 21, Base: 1, Adj: 9}), ErrUnknownNode},
		{"self loop", g.AddEdge(Edge{ID: 22, Base: 1, Adj: 1}), ErrSelfLoop},
		{"negative", g.AddEdge(Edge{ID: 23, Base: 1, Adj: 3, Distance: -1}), ErrInvalidWeight},
		{"nan", g.AddEdge(Edge{ID: 24, Base: 1, Adj: 3, Time: math.NaN()}), ErrInvalidWeight},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.want) {
				t.Errorf("got %v, want %v", tt.err, tt.want)
			}
		})
	}
	if err := g.AddNode(Node{ID: 5, Lat: 91}); !rrerrors.Is(err, rrerrors.ErrCodeInvalidGraph) {
		t.Errorf("AddNode(lat 91) = %v, want INVALID_GRAPH", err)
	}
}

func TestEdgesOrientedOutward(t *testing.T) {
	g := triangle(t)
	got := g.Edges(2)
	want := []EdgeState{
		{Edge: 10, Base: 2, Adj: 1, Distance: 100, Time: 10, Reverse: true},
		{Edge: 11, Base: 2, Adj: 3, Distance: 140, Time: 14, Oneway: true},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Edges(2) mismatch (-want +got):\n%s", diff)
	}
	if got[0].Detach().Detach() != got[0] {
		t.Error("Detach is not an involution")
	}
	if !got[1].Traversable() || got[1].Detach().Traversable() {
		t.Error("oneway edge must only be traversable in storage direction")
	}
	if diff := cmp.Diff([]NodeID{1, 3}, g.Neighbors(2)); diff != "" {
		t.Errorf("Neighbors(2) mismatch (-want +got):\n%s", diff)
	}
}

func TestState(t *testing.T) {
	g := triangle(t)
	s, ok := g.State(12, 1)
	if !ok || s.Base != 1 || s.Adj != 3 || !s.Reverse {
		t.Errorf("State(12, 1) = %v, %v", s, ok)
	}
	if _, ok := g.State(12, 2); ok {
		t.Error("State from a non-endpoint must fail")
	}
}

func TestReadJSONDefaults(t *testing.T) {
	in := `{
		"nodes": [{"id": 1, "lat": 0, "lon": 0}, {"id": 2, "lat": 0, "lon": 0.01}],
		"edges": [{"base": 1, "adj": 2}]
	}`
	g, err := ReadJSON(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadJSON() error: %v", err)
	}
	e, ok := g.Edge(0)
	if !ok {
		t.Fatal("edge 0 missing")
	}
	wantDist := 0.01 * math.Pi / 180 * 6371008.8
	if math.Abs(e.Distance-wantDist) > 1e-6 {
		t.Errorf("Distance = %v, want %v", e.Distance, wantDist)
	}
	if math.Abs(e.Time-wantDist/DefaultSpeed) > 1e-9 {
		t.Errorf("Time = %v, want %v", e.Time, wantDist/DefaultSpeed)
	}
}

func TestReadJSONErrors(t *testing.T) {
	for name, in := range map[string]string{
		"malformed":    `{"nodes": [`,
		"unknown node": `{"nodes": [{"id": 1}], "edges": [{"base": 1, "adj": 2}]}`,
		"duplicate":    `{"nodes": [{"id": 1}, {"id": 1}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ReadJSON(strings.NewReader(in))
			if !rrerrors.Is(err, rrerrors.ErrCodeInvalidGraph) {
				t.Errorf("ReadJSON() error = %v, want INVALID_GRAPH", err)
			}
		})
	}
}

func TestJSONRoundTrip(t *testing.T) {
	g := triangle(t)
	var buf bytes.Buffer
	if err := WriteJSON(g, &buf); err != nil {
		t.Fatalf("WriteJSON() error: %v", err)
	}
	got, err := ReadJSON(&buf)
	if err != nil {
		t.Fatalf("ReadJSON() error: %v", err)
	}
	if diff := cmp.Diff(g.AllEdges(), got.AllEdges()); diff != "" {
		t.Errorf("edges mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(g.Nodes(), got.Nodes()); diff != "" {
		t.Errorf("nodes mismatch (-want +got):\n%s", diff)
	}
	if g.Fingerprint() != got.Fingerprint() {
		t.Error("fingerprint changed across round trip")
	}
}

func TestFingerprintChanges(t *testing.T) {
	a, b := triangle(t), triangle(t)
	if a.Fingerprint() != b.Fingerprint() {
		t.Fatal("equal graphs must share a fingerprint")
	}
	if err := b.AddNode(Node{ID: 4, Lat: 1, Lon: 1}); err != nil {
		t.Fatal(err)
	}
	if a.Fingerprint() == b.Fingerprint() {
		t.Error("fingerprint must change when a node is added")
	}
}

func TestNearest(t *testing.T) {
	g := triangle(t)
	if id, ok := g.Nearest(0.9, 0.1); !ok || id != 3 {
		t.Errorf("Nearest() = %d, %v, want 3", id, ok)
	}
	if _, ok := New().Nearest(0, 0); ok {
		t.Error("Nearest on an empty graph must fail")
	}
}
