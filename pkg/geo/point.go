package geo

import (
	"fmt"
	"math"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/s2"
)

// EarthRadius is the mean earth radius in meters.
const EarthRadius = 6371008.8

// Point is a WGS84 coordinate in degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// String formats the point as "lat,lon".
func (p Point) String() string {
	return fmt.Sprintf("%.6f,%.6f", p.Lat, p.Lon)
}

// Vec returns the point as a planar vector with x = lon and y = lat.
func (p Point) Vec() r2.Point {
	return r2.Point{X: p.Lon, Y: p.Lat}
}

// Distance returns the great-circle distance between a and b in meters.
func Distance(a, b Point) float64 {
	la := s2.LatLngFromDegrees(a.Lat, a.Lon)
	lb := s2.LatLngFromDegrees(b.Lat, b.Lon)
	return la.Distance(lb).Radians() * EarthRadius
}

// metersPerDegree is the length of one degree of latitude.
const metersPerDegree = math.Pi / 180 * EarthRadius

// localFrame projects points onto a tangent plane around an origin, in meters.
// It is accurate for the short distances used by circle tests.
type localFrame struct {
	origin Point
	cosLat float64
}

func newLocalFrame(origin Point) localFrame {
	return localFrame{origin: origin, cosLat: math.Cos(origin.Lat * math.Pi / 180)}
}

func (f localFrame) project(p Point) r2.Point {
	return r2.Point{
		X: (p.Lon - f.origin.Lon) * f.cosLat * metersPerDegree,
		Y: (p.Lat - f.origin.Lat) * metersPerDegree,
	}
}
