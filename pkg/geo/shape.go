package geo

import (
	"fmt"
	"math"

	"github.com/golang/geo/r2"
)

// Shape is a region that can be tested for intersection. The set of
// implementations is closed: [*Polygon], [BBox] and [Circle].
type Shape interface {
	BBox() BBox
	ContainsPoint(Point) bool
	shape()
}

func (*Polygon) shape() {}
func (BBox) shape()     {}
func (Circle) shape()   {}

// BBox returns the box itself.
func (b BBox) BBox() BBox { return b }

// Circle is a disc around Center with Radius in meters.
type Circle struct {
	Center Point   `json:"center"`
	Radius float64 `json:"radius"`
}

// ContainsPoint reports whether p lies within the radius.
func (c Circle) ContainsPoint(p Point) bool {
	return Distance(c.Center, p) <= c.Radius
}

// BBox returns a box enclosing the circle.
func (c Circle) BBox() BBox {
	dLat := c.Radius / metersPerDegree
	dLon := 180.0
	if cos := math.Cos(c.Center.Lat * math.Pi / 180); cos > 1e-12 {
		dLon = math.Min(180, dLat/cos)
	}
	return NewBBox(c.Center.Lat-dLat, c.Center.Lat+dLat, c.Center.Lon-dLon, c.Center.Lon+dLon)
}

// Intersects reports whether two shapes share at least one point.
func Intersects(a, b Shape) bool {
	if !a.BBox().Intersects(b.BBox()) {
		return false
	}
	switch a := a.(type) {
	case *Polygon:
		switch b := b.(type) {
		case *Polygon:
			return a.Intersects(b)
		case BBox:
			return a.Intersects(b.Polygon())
		case Circle:
			return circlePolygon(b, a)
		}
	case BBox:
		switch b := b.(type) {
		case *Polygon:
			return b.Intersects(a.Polygon())
		case BBox:
			return true
		case Circle:
			return circlePolygon(b, a.Polygon())
		}
	case Circle:
		switch b := b.(type) {
		case *Polygon:
			return circlePolygon(a, b)
		case BBox:
			return circlePolygon(a, b.Polygon())
		case Circle:
			return Distance(a.Center, b.Center) <= a.Radius+b.Radius
		}
	}
	panic(fmt.Sprintf("geo: unknown shape pair %T, %T", a, b))
}

func circlePolygon(c Circle, p *Polygon) bool {
	if p.Len() == 0 {
		return false
	}
	if p.ContainsPoint(c.Center) {
		return true
	}
	f := newLocalFrame(c.Center)
	n := p.Len()
	for i := 0; i < n; i++ {
		a, b := f.project(p.pts[i]), f.project(p.pts[(i+1)%n])
		if segmentDistance(r2.Point{}, a, b) <= c.Radius {
			return true
		}
	}
	return false
}

// segmentDistance returns the planar distance from v to the segment ab.
func segmentDistance(v, a, b r2.Point) float64 {
	ab := b.Sub(a)
	l := ab.Dot(ab)
	if l == 0 {
		return v.Sub(a).Norm()
	}
	t := math.Max(0, math.Min(1, v.Sub(a).Dot(ab)/l))
	return v.Sub(a.Add(ab.Mul(t))).Norm()
}
