package gridindex

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/regionroute/pkg/errors"
	"github.com/matzehuels/regionroute/pkg/geo"
	"github.com/matzehuels/regionroute/pkg/roadgraph"
	"github.com/matzehuels/regionroute/pkg/vcell"
)

func mustDecompose(t *testing.T, g *roadgraph.Graph) []*vcell.Cell {
	t.Helper()
	cells, _, err := vcell.Decompose(g)
	if err != nil {
		t.Fatalf("Decompose() error: %v", err)
	}
	return cells
}

func square(t *testing.T) *roadgraph.Graph {
	t.Helper()
	g := roadgraph.New()
	for _, n := range []roadgraph.Node{{ID: 1, Lat: 0, Lon: 0}, {ID: 2, Lat: 0, Lon: 1}, {ID: 3, Lat: 1, Lon: 1}, {ID: 4, Lat: 1, Lon: 0}} {
		if err := g.AddNode(n); err != nil {
			t.Fatal(err)
		}
	}
	for i, e := range [][2]roadgraph.NodeID{{1, 2}, {2, 3}, {3, 4}, {4, 1}} {
		if err := g.AddEdge(roadgraph.Edge{ID: roadgraph.EdgeID(i), Base: e[0], Adj: e[1], Distance: 1, Time: 1}); err != nil {
			t.Fatal(err)
		}
	}
	return g
}

func lattice(t *testing.T, n int) *roadgraph.Graph {
	t.Helper()
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
		if err := g.AddEdge(roadgraph.Edge{ID: roadgraph.EdgeID(eid), Base: a, Adj: b, Distance: 1, Time: 1}); err != nil {
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
	return g
}

func rect(minLat, minLon, maxLat, maxLon float64) *geo.Polygon {
	return geo.NewBBox(minLat, maxLat, minLon, maxLon).Polygon()
}

func ids(cells []*vcell.Cell) []int {
	var out []int
	for _, c := range cells {
		out = append(out, c.ID)
	}
	return out
}

func TestNewRequiresResolution(t *testing.T) {
	for _, opts := range [][]Option{nil, {WithResolution(0)}, {WithResolution(-3)}} {
		if _, err := New(nil, opts...); !errors.Is(err, errors.ErrCodePrecondition) {
			t.Errorf("New(%d opts) error = %v, want PRECONDITION", len(opts), err)
		}
	}
}

func TestQuerySquare(t *testing.T) {
	cells := mustDecompose(t, square(t))
	if len(cells) != 1 {
		t.Fatalf("got %d cells, want 1", len(cells))
	}
	idx, err := New(cells, WithResolution(4))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		query *geo.Polygon
		want  []int
	}{
		{"straddling", rect(0.5, -0.5, 1.5, 0.5), []int{0}},
		{"inside", rect(0.25, 0.25, 0.75, 0.75), []int{0}},
		{"covering", rect(-1, -1, 2, 2), []int{0}},
		{"touching corner", rect(1, 1, 2, 2), []int{0}},
		{"outside", rect(2, 2, 3, 3), nil},
		{"bbox overlap only", geo.NewPolygon([]geo.Point{{Lat: 1.2, Lon: 0.9}, {Lat: 2, Lon: 2}, {Lat: 0.9, Lon: 1.2}}), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, ids(idx.Query(tt.query))); diff != "" {
				t.Errorf("Query() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestQueryMatchesBruteForce(t *testing.T) {
	cells := mustDecompose(t, lattice(t, 6))
	for _, res := range []int{1, 3, 16} {
		idx, err := New(cells, WithResolution(res))
		if err != nil {
			t.Fatal(err)
		}
		rng := rand.New(rand.NewSource(int64(res)))
		for i := 0; i < 50; i++ {
			lat, lon := rng.Float64()*0.06-0.005, rng.Float64()*0.06-0.005
			q := rect(lat, lon, lat+rng.Float64()*0.02, lon+rng.Float64()*0.02)

			var want []int
			for _, c := range cells {
				if c.Polygon().Intersects(q) {
					want = append(want, c.ID)
				}
			}
			if diff := cmp.Diff(want, ids(idx.Query(q))); diff != "" {
				t.Errorf("res %d query %d mismatch (-want +got):\n%s", res, i, diff)
			}
		}
	}
}

func TestQueryShape(t *testing.T) {
	cells := mustDecompose(t, lattice(t, 3))
	idx, err := New(cells, WithResolution(8))
	if err != nil {
		t.Fatal(err)
	}
	// A small circle in the middle of the lower-left face. The outer face
	// outlines the whole lattice and matches as well.
	c := geo.Circle{Center: geo.Point{Lat: 0.005, Lon: 0.005}, Radius: 50}
	var bounded []*vcell.Cell
	for _, cell := range idx.QueryShape(c) {
		if !cell.Outer() {
			bounded = append(bounded, cell)
		}
	}
	if len(bounded) != 1 {
		t.Fatalf("QueryShape(circle) = %v, want one bounded cell", ids(bounded))
	}
	if !bounded[0].Polygon().ContainsPoint(c.Center) {
		t.Errorf("cell %v does not contain the circle centre", bounded[0].Nodes)
	}
	if n := len(idx.QueryShape(geo.NewBBox(-1, 1, -1, 1))); n != len(cells) {
		t.Errorf("QueryShape(bbox) = %d cells, want %d", n, len(cells))
	}
}

func TestWithBounds(t *testing.T) {
	cells := mustDecompose(t, square(t))
	idx, err := New(cells, WithResolution(2), WithBounds(geo.NewBBox(0, 10, 0, 10)))
	if err != nil {
		t.Fatal(err)
	}
	if got := idx.GridCell(0, 0); len(got.Cells) != 1 || got.BBox.MaxLat() != 5 {
		t.Errorf("GridCell(0, 0) = %+v", got)
	}
	if got := idx.GridCell(1, 1); len(got.Cells) != 0 {
		t.Errorf("GridCell(1, 1) holds %d cells, want 0", len(got.Cells))
	}
	if idx.Occupied() != 1 {
		t.Errorf("Occupied() = %d, want 1", idx.Occupied())
	}
	// Queries outside the domain clamp to the border.
	if got := idx.Query(rect(-5, -5, 0.5, 0.5)); len(got) != 1 {
		t.Errorf("Query(outside) = %v", ids(got))
	}
}

func TestConcurrentQueries(t *testing.T) {
	cells := mustDecompose(t, lattice(t, 5))
	idx, err := New(cells, WithResolution(8))
	if err != nil {
		t.Fatal(err)
	}
	q := rect(0.012, 0.012, 0.028, 0.028)
	want := ids(idx.Query(q))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				if diff := cmp.Diff(want, ids(idx.Query(q))); diff != "" {
					t.Errorf("concurrent Query() mismatch (-want +got):\n%s", diff)
					return
				}
			}
		}()
	}
	wg.Wait()
}
