package vcell

import (
	"math"

	"github.com/matzehuels/regionroute/pkg/geo"
)

// Orientation selects the turning direction of a trace.
type Orientation int

const (
	// Left follows the face on the left of the start edge.
	Left Orientation = iota
	// Right follows the face on the right of the start edge.
	Right
)

func (o Orientation) String() string {
	if o == Right {
		return "right"
	}
	return "left"
}

// Opposite returns the other orientation.
func (o Orientation) Opposite() Orientation {
	if o == Left {
		return Right
	}
	return Left
}

// Sentinel is the angle of a zero-length vector.
var Sentinel = math.Inf(-1)

const fullTurn = 2 * math.Pi

// Angle returns the turn from the vector refFrom->refTo to from->to in
// [0, 2π), measured counter-clockwise for Left and clockwise for Right.
// It returns Sentinel when either vector has zero length.
func (o Orientation) Angle(refFrom, refTo, from, to geo.Point) float64 {
	r := refTo.Vec().Sub(refFrom.Vec())
	c := to.Vec().Sub(from.Vec())
	if r.Norm() == 0 || c.Norm() == 0 {
		return Sentinel
	}
	a := math.Atan2(r.Cross(c), r.Dot(c))
	if a < 0 {
		a += fullTurn
	}
	if a >= fullTurn {
		a = 0
	}
	if o == Right && a != 0 {
		a = fullTurn - a
	}
	return a
}
