package geo

import (
	"encoding/json"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/matzehuels/regionroute/pkg/errors"
)

// ParsePolygon reads the outer ring of a GeoJSON polygon. The input may be a
// bare Polygon or MultiPolygon geometry, a Feature, or a FeatureCollection; in
// the latter cases the first polygonal geometry is used. Holes are ignored.
func ParsePolygon(data []byte) (*Polygon, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPolygon, err, "decode geojson")
	}

	switch probe.Type {
	case "Feature":
		var f geojson.Feature
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidPolygon, err, "decode feature")
		}
		return polygonFromGeom(f.Geometry)
	case "FeatureCollection":
		var fc geojson.FeatureCollection
		if err := json.Unmarshal(data, &fc); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidPolygon, err, "decode feature collection")
		}
		for _, f := range fc.Features {
			if p, err := polygonFromGeom(f.Geometry); err == nil {
				return p, nil
			}
		}
		return nil, errors.New(errors.ErrCodeInvalidPolygon, "feature collection has no polygon")
	default:
		var g geom.T
		if err := geojson.Unmarshal(data, &g); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidPolygon, err, "decode geometry")
		}
		return polygonFromGeom(g)
	}
}

func polygonFromGeom(g geom.T) (*Polygon, error) {
	switch g := g.(type) {
	case *geom.Polygon:
		if g.NumLinearRings() == 0 {
			return nil, errors.New(errors.ErrCodeInvalidPolygon, "polygon has no rings")
		}
		ring := g.LinearRing(0)
		pts := make([]Point, 0, ring.NumCoords())
		for _, c := range ring.Coords() {
			pts = append(pts, Point{Lat: c.Y(), Lon: c.X()})
		}
		return NewPolygon(pts), nil
	case *geom.MultiPolygon:
		if g.NumPolygons() == 0 {
			return nil, errors.New(errors.ErrCodeInvalidPolygon, "multipolygon is empty")
		}
		return polygonFromGeom(g.Polygon(0))
	case nil:
		return nil, errors.New(errors.ErrCodeInvalidPolygon, "missing geometry")
	default:
		return nil, errors.New(errors.ErrCodeInvalidPolygon, "unsupported geometry %T", g)
	}
}

// PolygonFeature wraps p as a GeoJSON feature with a closed outer ring.
func PolygonFeature(p *Polygon, props map[string]any) *geojson.Feature {
	ring := make([]geom.Coord, 0, p.Len()+1)
	for _, pt := range p.pts {
		ring = append(ring, geom.Coord{pt.Lon, pt.Lat})
	}
	if len(ring) > 0 {
		ring = append(ring, ring[0])
	}
	return &geojson.Feature{
		Geometry:   geom.NewPolygon(geom.XY).MustSetCoords([][]geom.Coord{ring}),
		Properties: props,
	}
}

// LineFeature wraps a point sequence as a GeoJSON LineString feature.
func LineFeature(pts []Point, props map[string]any) *geojson.Feature {
	coords := make([]geom.Coord, len(pts))
	for i, pt := range pts {
		coords[i] = geom.Coord{pt.Lon, pt.Lat}
	}
	return &geojson.Feature{
		Geometry:   geom.NewLineString(geom.XY).MustSetCoords(coords),
		Properties: props,
	}
}

// MarshalFeatures encodes features as a GeoJSON FeatureCollection.
func MarshalFeatures(features ...*geojson.Feature) ([]byte, error) {
	fc := &geojson.FeatureCollection{Features: features}
	data, err := fc.MarshalJSON()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode geojson")
	}
	return data, nil
}
