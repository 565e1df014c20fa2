package geo

import (
	"github.com/golang/geo/r2"

	"github.com/matzehuels/regionroute/pkg/errors"
)

// Polygon is an immutable, implicitly closed vertex ring with a precomputed
// bounding box. A trailing vertex equal to the first one is dropped on
// construction.
type Polygon struct {
	pts  []Point
	bbox BBox
}

// NewPolygon copies pts into a new polygon. It does not validate the ring;
// call [Polygon.Validate] for user-supplied input.
func NewPolygon(pts []Point) *Polygon {
	cp := make([]Point, len(pts))
	copy(cp, pts)
	if n := len(cp); n > 1 && cp[0] == cp[n-1] {
		cp = cp[:n-1]
	}
	return &Polygon{pts: cp, bbox: BBoxOf(cp...)}
}

// NewPolygonLatLon builds a polygon from parallel latitude and longitude
// slices.
func NewPolygonLatLon(lats, lons []float64) (*Polygon, error) {
	if len(lats) != len(lons) {
		return nil, errors.New(errors.ErrCodeInvalidPolygon, "got %d latitudes and %d longitudes", len(lats), len(lons))
	}
	pts := make([]Point, len(lats))
	for i := range lats {
		pts[i] = Point{Lat: lats[i], Lon: lons[i]}
	}
	return NewPolygon(pts), nil
}

// Validate checks that the polygon encloses an area: at least three vertices,
// all of them valid coordinates.
func (p *Polygon) Validate() error {
	if len(p.pts) < 3 {
		return errors.New(errors.ErrCodeInvalidPolygon, "polygon needs at least 3 vertices, got %d", len(p.pts))
	}
	for i, pt := range p.pts {
		if err := errors.ValidateLatLon(pt.Lat, pt.Lon); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidPolygon, err, "vertex %d", i)
		}
	}
	return nil
}

// Len returns the number of vertices.
func (p *Polygon) Len() int { return len(p.pts) }

// Vertex returns the i-th vertex.
func (p *Polygon) Vertex(i int) Point { return p.pts[i] }

// Points returns a copy of the vertex ring without the closing vertex.
func (p *Polygon) Points() []Point {
	out := make([]Point, len(p.pts))
	copy(out, p.pts)
	return out
}

// BBox returns the minimal bounding box.
func (p *Polygon) BBox() BBox { return p.bbox }

// Contains reports whether (lat, lon) lies inside or on the boundary.
func (p *Polygon) Contains(lat, lon float64) bool {
	return p.ContainsPoint(Point{Lat: lat, Lon: lon})
}

// ContainsPoint reports whether pt lies inside or on the boundary.
func (p *Polygon) ContainsPoint(pt Point) bool {
	if len(p.pts) == 0 || !p.bbox.ContainsPoint(pt) {
		return false
	}
	if p.onBoundary(pt.Vec()) {
		return true
	}
	return p.crossings(pt.Vec())
}

// Within reports whether every vertex of p lies in o.
func (p *Polygon) Within(o *Polygon) bool {
	if len(p.pts) == 0 {
		return false
	}
	for _, pt := range p.pts {
		if !o.ContainsPoint(pt) {
			return false
		}
	}
	return true
}

// Intersects reports whether the polygons share at least one point: some pair
// of boundary segments crosses or touches, or one polygon contains the other.
func (p *Polygon) Intersects(o *Polygon) bool {
	if len(p.pts) == 0 || len(o.pts) == 0 || !p.bbox.Intersects(o.bbox) {
		return false
	}
	n, m := len(p.pts), len(o.pts)
	for i := 0; i < n; i++ {
		a, b := p.pts[i].Vec(), p.pts[(i+1)%n].Vec()
		for j := 0; j < m; j++ {
			if segmentsIntersect(a, b, o.pts[j].Vec(), o.pts[(j+1)%m].Vec()) {
				return true
			}
		}
	}
	return p.ContainsPoint(o.pts[0]) || o.ContainsPoint(p.pts[0])
}

// IntersectsProperly is the boundary-exclusive variant of Intersects: contacts
// where segments only touch or overlap collinearly do not count.
func (p *Polygon) IntersectsProperly(o *Polygon) bool {
	if len(p.pts) == 0 || len(o.pts) == 0 || !p.bbox.Intersects(o.bbox) {
		return false
	}
	n, m := len(p.pts), len(o.pts)
	for i := 0; i < n; i++ {
		a, b := p.pts[i].Vec(), p.pts[(i+1)%n].Vec()
		for j := 0; j < m; j++ {
			if segmentsCross(a, b, o.pts[j].Vec(), o.pts[(j+1)%m].Vec()) {
				return true
			}
		}
	}
	for _, pt := range o.pts {
		if p.strictlyContains(pt) {
			return true
		}
	}
	for _, pt := range p.pts {
		if o.strictlyContains(pt) {
			return true
		}
	}
	return false
}

func (p *Polygon) strictlyContains(pt Point) bool {
	v := pt.Vec()
	return p.bbox.ContainsPoint(pt) && !p.onBoundary(v) && p.crossings(v)
}

func (p *Polygon) onBoundary(v r2.Point) bool {
	n := len(p.pts)
	for i := 0; i < n; i++ {
		if onSegment(v, p.pts[i].Vec(), p.pts[(i+1)%n].Vec()) {
			return true
		}
	}
	return false
}

// crossings casts a ray from v towards +x, which leaves the bounding box, and
// reports whether it crosses the ring an odd number of times.
func (p *Polygon) crossings(v r2.Point) bool {
	in := false
	n := len(p.pts)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := p.pts[i].Vec(), p.pts[j].Vec()
		if (a.Y > v.Y) != (b.Y > v.Y) {
			x := (b.X-a.X)*(v.Y-a.Y)/(b.Y-a.Y) + a.X
			if v.X < x {
				in = !in
			}
		}
	}
	return in
}

func orient(a, b, c r2.Point) float64 {
	return b.Sub(a).Cross(c.Sub(a))
}

// onSegment reports whether v lies on the closed segment ab.
func onSegment(v, a, b r2.Point) bool {
	if orient(a, b, v) != 0 {
		return false
	}
	ab := b.Sub(a)
	t := v.Sub(a).Dot(ab)
	return t >= 0 && t <= ab.Dot(ab)
}

func sign(f float64) int {
	switch {
	case f > 0:
		return 1
	case f < 0:
		return -1
	}
	return 0
}

// segmentsIntersect reports whether the closed segments ab and cd share a point.
func segmentsIntersect(a, b, c, d r2.Point) bool {
	d1, d2 := sign(orient(c, d, a)), sign(orient(c, d, b))
	d3, d4 := sign(orient(a, b, c)), sign(orient(a, b, d))
	if d1*d2 < 0 && d3*d4 < 0 {
		return true
	}
	return (d1 == 0 && onSegment(a, c, d)) ||
		(d2 == 0 && onSegment(b, c, d)) ||
		(d3 == 0 && onSegment(c, a, b)) ||
		(d4 == 0 && onSegment(d, a, b))
}

// segmentsCross reports whether ab and cd cross at a single interior point.
func segmentsCross(a, b, c, d r2.Point) bool {
	d1, d2 := sign(orient(c, d, a)), sign(orient(c, d, b))
	d3, d4 := sign(orient(a, b, c)), sign(orient(a, b, d))
	return d1*d2 < 0 && d3*d4 < 0
}
