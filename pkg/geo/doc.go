// Package geo provides the planar geometry primitives used by region-aware
// routing: points, bounding boxes, polygons and circles, plus GeoJSON
// conversion.
//
// # Coordinates
//
// Points are WGS84 latitude/longitude pairs. Planar predicates (containment,
// segment intersection, turn angles) treat longitude as x and latitude as y
// without projection; distances in meters use the great-circle distance.
//
// # Polygons
//
// A [Polygon] is an ordered, implicitly closed vertex sequence with a
// precomputed bounding box:
//
//	roi := geo.NewPolygon([]geo.Point{
//	    {Lat: 52.50, Lon: 13.38},
//	    {Lat: 52.52, Lon: 13.38},
//	    {Lat: 52.52, Lon: 13.41},
//	})
//	if err := roi.Validate(); err != nil {
//	    return err
//	}
//	roi.Contains(52.51, 13.39) // true
//
// [Polygon.Contains] includes boundary points. [Polygon.Intersects] reports
// any shared point (crossing or touching segments, or containment);
// [Polygon.IntersectsProperly] ignores contacts that only touch the boundary.
//
// # Shapes
//
// [Shape] is a closed set of region types ([*Polygon], [BBox], [Circle]).
// [Intersects] dispatches on the concrete pair.
package geo
