// Package vcell decomposes a road network into visibility cells: the faces of
// its planar embedding.
//
// A face is traced by walking the graph and always taking the most extreme
// turn at each node. A [Left] trace takes the leftmost turn and follows the
// face on the left of its start edge; a [Right] trace takes the rightmost
// turn and follows the face on the right. Both are the same algorithm
// parametrised by an [Orientation].
//
// # Angles
//
// Turns are measured against the last traversed edge reversed, so angle 0
// means turning back and the largest angle is the sharpest turn in the trace
// direction. Edges whose endpoints share coordinates have no direction; they
// take the angle of the best edge reachable through them and are otherwise
// skipped.
//
// # Sessions
//
// A [Session] owns the state of one decomposition: the dual [Tracker] that
// records which side of each edge is already traced, and the accumulated
// cells. Sessions are independent, so several graphs (or versions of one
// graph) may be decomposed side by side:
//
//	s := vcell.NewSession(g)
//	cells, err := s.Run()
//	if err != nil {
//	    var te *vcell.TraceError
//	    if errors.As(err, &te) {
//	        // te.Nodes holds the chain that failed to close
//	    }
//	    return err
//	}
//
// Every edge ends up settled on both sides exactly once. Cells are
// deduplicated by node cycle, so the inner and outer face of a simple ring
// yield a single cell.
package vcell
