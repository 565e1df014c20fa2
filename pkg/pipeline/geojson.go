package pipeline

import (
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/matzehuels/regionroute/pkg/geo"
	"github.com/matzehuels/regionroute/pkg/vcell"
)

// CellsGeoJSON renders cells as a FeatureCollection of polygons. The outer
// face is skipped unless withOuter is set.
func CellsGeoJSON(cells []*vcell.Cell, withOuter bool) ([]byte, error) {
	features := make([]*geojson.Feature, 0, len(cells))
	for _, c := range cells {
		outer := c.Outer()
		if outer && !withOuter {
			continue
		}
		features = append(features, geo.PolygonFeature(c.Polygon(), map[string]any{
			"id":    c.ID,
			"nodes": len(c.Nodes),
			"outer": outer,
		}))
	}
	return geo.MarshalFeatures(features...)
}
