// Package elevation implements the weighted 2.5-D point model, point
// classification, and the categorized elevation tile container: reduction,
// parent-from-children merging, and binary persistence.
package elevation

import (
	"math"

	"github.com/globequad/globequad/internal/triangulate"
)

// Weight classes. Corner and edge weights are fixed negative sentinels;
// interior/resampled points carry a non-negative weight used by the
// triangulation's reduction heuristic.
const (
	WeightCorner = -3.0
	WeightEdge   = -2.0
)

// classifyEpsilon is the relative tolerance used to decide whether a point's
// coordinate matches a rectangle edge.
const classifyEpsilon = 1e-12

// Point is a weighted elevation sample in the Mercator XY plane, shared with
// the triangulate package so tiles can be inserted into a Delaunay engine
// without conversion.
type Point = triangulate.Point

// flteq reports whether a and b match within a relative tolerance of 1e-12,
// with the convention that 0 == 0 exactly.
func flteq(a, b float64) bool {
	if a == 0 {
		return b == 0
	}
	return math.Abs(a-b) < classifyEpsilon*math.Abs(a)
}
