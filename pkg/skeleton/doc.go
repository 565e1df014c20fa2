// Package skeleton restricts routing to the part of the road network that
// matters for a region of interest (ROI).
//
// A skeleton is both a node membership test and a [route.EdgeFilter]. Two
// variants exist:
//
//   - [ROI] admits the nodes inside the ROI polygon. Membership is fixed.
//   - [Cells] admits the nodes of visibility cells that intersect the ROI
//     without lying inside it: a ring of faces around the polygon. The
//     current entry and exit nodes are added on top and can be replaced
//     before each query with [Cells.Activate].
//
// In [Through] mode an edge is accepted when both endpoints are members, in
// [Around] mode when at least one is.
//
// [BoundaryNodes] lists the members with an edge leaving the skeleton; these
// are the candidate entry and exit points of region-aware routes.
package skeleton
