// Package gridindex buckets visibility cells in a uniform latitude/longitude
// grid for fast region queries.
//
// Cells are registered in every bucket their bounding box overlaps. A query
// collects the buckets under the query's bounding box and keeps the cells that
// truly intersect the query region, so results have neither false positives
// nor false negatives:
//
//	idx, err := gridindex.New(cells,
//	    gridindex.WithResolution(64),
//	    gridindex.WithBounds(g.BBox()),
//	)
//	hits := idx.Query(roi)
//
// An Index is immutable once built and safe for concurrent queries.
package gridindex

import (
	"cmp"
	"math"
	"slices"

	"github.com/matzehuels/regionroute/pkg/errors"
	"github.com/matzehuels/regionroute/pkg/geo"
	"github.com/matzehuels/regionroute/pkg/vcell"
)

// DefaultResolution is the grid size used by the pipeline when none is
// configured.
const DefaultResolution = 64

// boundsMargin pads derived bounds, in degrees.
const boundsMargin = 1e-6

type config struct {
	resolution int
	bounds     geo.BBox
	hasBounds  bool
}

// Option configures an index.
type Option func(*config)

// WithResolution sets the number of rows and columns.
func WithResolution(n int) Option {
	return func(c *config) { c.resolution = n }
}

// WithBounds sets the gridded domain. Without it the domain is the union of
// the cells' bounding boxes, slightly padded.
func WithBounds(b geo.BBox) Option {
	return func(c *config) { c.bounds, c.hasBounds = b, true }
}

// GridCell is one bucket of the grid.
type GridCell struct {
	Row, Col int
	BBox     geo.BBox
	Cells    []*vcell.Cell
}

// Index is a resolution x resolution grid over a bounding box.
type Index struct {
	res      int
	bounds   geo.BBox
	dLat     float64
	dLon     float64
	cells    []*vcell.Cell
	buckets  [][]int // row*res+col -> indices into cells
	occupied int
}

// New builds an index over cells. It fails with code PRECONDITION when the
// resolution is unset or not positive.
func New(cells []*vcell.Cell, opts ...Option) (*Index, error) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.resolution <= 0 {
		return nil, errors.New(errors.ErrCodePrecondition, "grid resolution must be positive, got %d", cfg.resolution)
	}

	bounds := cfg.bounds
	if !cfg.hasBounds {
		bounds = geo.EmptyBBox()
		for _, c := range cells {
			bounds = bounds.Union(c.BBox())
		}
		bounds = bounds.Pad(boundsMargin)
	}
	if bounds.IsEmpty() {
		bounds = geo.NewBBox(0, 0, 0, 0)
	}

	idx := &Index{
		res:     cfg.resolution,
		bounds:  bounds,
		dLat:    span(bounds.MinLat(), bounds.MaxLat()) / float64(cfg.resolution),
		dLon:    span(bounds.MinLon(), bounds.MaxLon()) / float64(cfg.resolution),
		cells:   cells,
		buckets: make([][]int, cfg.resolution*cfg.resolution),
	}
	for i, c := range cells {
		r0, r1, c0, c1 := idx.rangeOf(c.BBox())
		for r := r0; r <= r1; r++ {
			for col := c0; col <= c1; col++ {
				b := r*idx.res + col
				if len(idx.buckets[b]) == 0 {
					idx.occupied++
				}
				idx.buckets[b] = append(idx.buckets[b], i)
			}
		}
	}
	return idx, nil
}

func span(lo, hi float64) float64 {
	if s := hi - lo; s > 0 {
		return s
	}
	return 1e-9
}

func (idx *Index) row(lat float64) int {
	return clamp(int(math.Floor((lat-idx.bounds.MinLat())/idx.dLat)), idx.res)
}

func (idx *Index) col(lon float64) int {
	return clamp(int(math.Floor((lon-idx.bounds.MinLon())/idx.dLon)), idx.res)
}

func clamp(i, n int) int {
	return max(0, min(n-1, i))
}

// rangeOf maps a box to the inclusive bucket rows and columns it overlaps.
// Boxes outside the domain clamp to the border buckets.
func (idx *Index) rangeOf(b geo.BBox) (r0, r1, c0, c1 int) {
	return idx.row(b.MinLat()), idx.row(b.MaxLat()), idx.col(b.MinLon()), idx.col(b.MaxLon())
}

// Query returns the cells intersecting poly, ordered by cell id.
func (idx *Index) Query(poly *geo.Polygon) []*vcell.Cell {
	return idx.collect(poly.BBox(), func(c *vcell.Cell) bool {
		return c.Polygon().Intersects(poly)
	})
}

// QueryShape returns the cells intersecting s, ordered by cell id.
func (idx *Index) QueryShape(s geo.Shape) []*vcell.Cell {
	return idx.collect(s.BBox(), func(c *vcell.Cell) bool {
		return geo.Intersects(c.Polygon(), s)
	})
}

// Candidates returns the cells registered under b without the exact test.
func (idx *Index) Candidates(b geo.BBox) []*vcell.Cell {
	return idx.collect(b, func(*vcell.Cell) bool { return true })
}

func (idx *Index) collect(b geo.BBox, keep func(*vcell.Cell) bool) []*vcell.Cell {
	if b.IsEmpty() || len(idx.cells) == 0 {
		return nil
	}
	seen := make(map[int]bool)
	var out []*vcell.Cell
	r0, r1, c0, c1 := idx.rangeOf(b)
	for r := r0; r <= r1; r++ {
		for col := c0; col <= c1; col++ {
			for _, i := range idx.buckets[r*idx.res+col] {
				if seen[i] {
					continue
				}
				seen[i] = true
				if c := idx.cells[i]; keep(c) {
					out = append(out, c)
				}
			}
		}
	}
	slices.SortFunc(out, func(a, b *vcell.Cell) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

// GridCell returns the bucket at row, col.
func (idx *Index) GridCell(row, col int) GridCell {
	gc := GridCell{
		Row: row,
		Col: col,
		BBox: geo.NewBBox(
			idx.bounds.MinLat()+float64(row)*idx.dLat,
			idx.bounds.MinLat()+float64(row+1)*idx.dLat,
			idx.bounds.MinLon()+float64(col)*idx.dLon,
			idx.bounds.MinLon()+float64(col+1)*idx.dLon,
		),
	}
	for _, i := range idx.buckets[row*idx.res+col] {
		gc.Cells = append(gc.Cells, idx.cells[i])
	}
	return gc
}

// Resolution returns the number of rows and columns.
func (idx *Index) Resolution() int { return idx.res }

// Bounds returns the gridded domain.
func (idx *Index) Bounds() geo.BBox { return idx.bounds }

// Len returns the number of indexed cells.
func (idx *Index) Len() int { return len(idx.cells) }

// Occupied returns the number of non-empty buckets.
func (idx *Index) Occupied() int { return idx.occupied }
