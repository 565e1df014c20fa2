package regionroute

import (
	"math"

	"github.com/matzehuels/regionroute/pkg/roadgraph"
	"github.com/matzehuels/regionroute/pkg/route"
)

// Candidate is one way of passing the ROI: start to entry, entry to exit
// through the skeleton, then exit to end.
type Candidate struct {
	Entry    roadgraph.NodeID
	Exit     roadgraph.NodeID
	Direct   *route.Path
	ToEntry  *route.Path
	Through  *route.Path
	FromExit *route.Path

	merged   *route.Path
	mergeErr error
	done     bool
}

// NewCandidate assembles a candidate from its three segments and the direct
// start-to-end path it is compared against.
func NewCandidate(direct, toEntry, through, fromExit *route.Path) *Candidate {
	c := &Candidate{Direct: direct, ToEntry: toEntry, Through: through, FromExit: fromExit}
	if through != nil {
		c.Entry, c.Exit = through.From, through.To
	}
	return c
}

// Legal reports whether every segment was routed.
func (c *Candidate) Legal() bool {
	return found(c.ToEntry) && found(c.Through) && found(c.FromExit)
}

func found(p *route.Path) bool { return p != nil && p.Found }

// TimeInROI is the travel time of the through segment in seconds.
func (c *Candidate) TimeInROI() float64 { return c.Through.Time }

// DistanceInROI is the length of the through segment in meters.
func (c *Candidate) DistanceInROI() float64 { return c.Through.Distance }

// Time is the total travel time over all three segments.
func (c *Candidate) Time() float64 {
	return c.ToEntry.Time + c.Through.Time + c.FromExit.Time
}

// Distance is the total length over all three segments.
func (c *Candidate) Distance() float64 {
	return c.ToEntry.Distance + c.Through.Distance + c.FromExit.Distance
}

// DetourTime is the extra time over the direct path, never negative.
func (c *Candidate) DetourTime() float64 {
	if !found(c.Direct) {
		return c.Time()
	}
	return math.Max(0, c.Time()-c.Direct.Time)
}

// DetourDistance is the extra length over the direct path, never negative.
func (c *Candidate) DetourDistance() float64 {
	if !found(c.Direct) {
		return c.Distance()
	}
	return math.Max(0, c.Distance()-c.Direct.Distance)
}

// Gain is the time in the ROI per second of detour. The added second keeps
// candidates without detour finite. The detour is clamped at zero, so a
// candidate faster than the direct path scores its full time in the ROI.
func (c *Candidate) Gain() float64 {
	return c.TimeInROI() / (c.DetourTime() + 1)
}

// Path merges the three segments. The result is computed once.
func (c *Candidate) Path() (*route.Path, error) {
	if !c.done {
		c.merged, c.mergeErr = route.Merge(c.ToEntry, c.Through, c.FromExit)
		c.done = true
	}
	return c.merged, c.mergeErr
}

// IsDetourSelfIntersecting reports whether the merged path visits a node
// twice. A candidate that cannot be merged counts as self-intersecting.
func (c *Candidate) IsDetourSelfIntersecting() bool {
	p, err := c.Path()
	if err != nil {
		return true
	}
	seen := make(map[roadgraph.NodeID]bool, len(p.Steps)+1)
	for _, n := range p.Nodes() {
		if seen[n] {
			return true
		}
		seen[n] = true
	}
	return false
}
