package geo

import "github.com/golang/geo/r2"

// BBox is an axis-aligned latitude/longitude rectangle with closed bounds.
// The zero value is a degenerate box at (0,0); use [EmptyBBox] to start an
// accumulation.
type BBox struct {
	r r2.Rect
}

// EmptyBBox returns a box containing no points.
func EmptyBBox() BBox {
	return BBox{r: r2.EmptyRect()}
}

// NewBBox returns the box spanning the given latitude and longitude ranges.
func NewBBox(minLat, maxLat, minLon, maxLon float64) BBox {
	return BBox{r: r2.RectFromPoints(r2.Point{X: minLon, Y: minLat}, r2.Point{X: maxLon, Y: maxLat})}
}

// BBoxOf returns the smallest box containing all points.
func BBoxOf(pts ...Point) BBox {
	b := EmptyBBox()
	for _, p := range pts {
		b = b.Extend(p)
	}
	return b
}

// Extend returns the box grown to include p.
func (b BBox) Extend(p Point) BBox {
	b.r = b.r.AddPoint(p.Vec())
	return b
}

// Union returns the smallest box containing both boxes.
func (b BBox) Union(o BBox) BBox {
	b.r = b.r.Union(o.r)
	return b
}

// Pad returns the box expanded by margin degrees on every side.
func (b BBox) Pad(margin float64) BBox {
	if b.IsEmpty() {
		return b
	}
	b.r = b.r.ExpandedByMargin(margin)
	return b
}

// IsEmpty reports whether the box contains no points.
func (b BBox) IsEmpty() bool { return b.r.IsEmpty() }

func (b BBox) MinLat() float64 { return b.r.Y.Lo }
func (b BBox) MaxLat() float64 { return b.r.Y.Hi }
func (b BBox) MinLon() float64 { return b.r.X.Lo }
func (b BBox) MaxLon() float64 { return b.r.X.Hi }

// ContainsPoint reports whether p lies inside or on the box.
func (b BBox) ContainsPoint(p Point) bool {
	return b.r.ContainsPoint(p.Vec())
}

// Intersects reports whether the boxes share at least one point.
func (b BBox) Intersects(o BBox) bool {
	return b.r.Intersects(o.r)
}

// Polygon returns the box as a counter-clockwise four-vertex polygon.
func (b BBox) Polygon() *Polygon {
	return NewPolygon([]Point{
		{Lat: b.MinLat(), Lon: b.MinLon()},
		{Lat: b.MinLat(), Lon: b.MaxLon()},
		{Lat: b.MaxLat(), Lon: b.MaxLon()},
		{Lat: b.MaxLat(), Lon: b.MinLon()},
	})
}
