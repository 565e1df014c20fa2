package cli

import (
	"os"
	"strconv"
	"strings"

	"github.com/matzehuels/regionroute/pkg/errors"
	"github.com/matzehuels/regionroute/pkg/geo"
)

// parsePoint parses "lat,lon".
func parsePoint(s string) (geo.Point, error) {
	lat, lon, ok := strings.Cut(strings.TrimSpace(s), ",")
	if !ok {
		return geo.Point{}, errors.New(errors.ErrCodeInvalidCoordinate, "want LAT,LON, got %q", s)
	}
	la, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return geo.Point{}, errors.Wrap(errors.ErrCodeInvalidCoordinate, err, "latitude in %q", s)
	}
	lo, err := strconv.ParseFloat(strings.TrimSpace(lon), 64)
	if err != nil {
		return geo.Point{}, errors.Wrap(errors.ErrCodeInvalidCoordinate, err, "longitude in %q", s)
	}
	if err := errors.ValidateLatLon(la, lo); err != nil {
		return geo.Point{}, err
	}
	return geo.Point{Lat: la, Lon: lo}, nil
}

// parseRing parses a semicolon separated vertex list such as
// "52.50,13.37;52.52,13.37;52.52,13.40".
func parseRing(s string) ([]geo.Point, error) {
	var pts []geo.Point
	for i, part := range strings.Split(s, ";") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		p, err := parsePoint(part)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidPolygon, err, "vertex %d", i)
		}
		pts = append(pts, p)
	}
	if len(pts) < 3 {
		return nil, errors.New(errors.ErrCodeInvalidPolygon, "region needs at least 3 vertices, got %d", len(pts))
	}
	return pts, nil
}

// readGeoJSON reads a GeoJSON file and checks that it holds a polygon.
func readGeoJSON(path string) ([]byte, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "region file %s", path)
		}
		return nil, err
	}
	if _, err := geo.ParsePolygon(data); err != nil {
		return nil, err
	}
	return data, nil
}
