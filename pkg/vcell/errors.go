package vcell

import (
	"fmt"
	"strings"

	"github.com/matzehuels/regionroute/pkg/roadgraph"
)

// TraceError reports a face trace that did not close. It indicates an
// inconsistent planar embedding; Nodes holds the visited chain for diagnosis.
type TraceError struct {
	Orientation Orientation
	Start       roadgraph.EdgeState
	Steps       int
	Nodes       []roadgraph.NodeID
	Reason      string
}

func (e *TraceError) Error() string {
	return fmt.Sprintf("%s trace from edge %v did not close after %d steps: %s", e.Orientation, e.Start, e.Steps, e.Reason)
}

// Chain formats the visited nodes, eliding the middle of long chains.
func (e *TraceError) Chain() string {
	const keep = 20
	ids := e.Nodes
	var b strings.Builder
	write := func(ns []roadgraph.NodeID) {
		for i, n := range ns {
			if i > 0 {
				b.WriteString(" -> ")
			}
			fmt.Fprintf(&b, "%d", n)
		}
	}
	if len(ids) <= 2*keep {
		write(ids)
		return b.String()
	}
	write(ids[:keep])
	fmt.Fprintf(&b, " -> ... (%d nodes) ... -> ", len(ids)-2*keep)
	write(ids[len(ids)-keep:])
	return b.String()
}
