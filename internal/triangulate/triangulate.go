// Package triangulate implements the Delaunay engine contract the elevation
// and mesh components depend on: incremental point insertion with
// coincident-point rejection, vertex-count reduction that preserves
// mandatory (negative-weight) points, triangle enumeration, and a Wavefront
// OBJ debug export.
//
// The engine is constructed over a bounding rectangle padded outward by
// |x1-x0| on each side (per the reference implementation) to keep the
// initial scaffold triangles away from real data, then builds a standard
// incremental Bowyer-Watson triangulation. Its internal algorithm is not
// pinned by the surrounding spec beyond determinism for a fixed insertion
// order, which this implementation satisfies: insertion order and all
// tie-break comparisons are fixed functions of the input.
package triangulate

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

const coincidentEpsilon = 1e-9

// Point is a weighted elevation sample in the Mercator XY plane. Weight
// encodes provenance class: negative for mandatory corner/edge points,
// non-negative for interior or resampled points eligible for reduction.
// Error is transient runtime-only state, never persisted.
type Point struct {
	X, Y      float64
	Elevation float64
	Weight    float64
	Error     float64
}

// Engine holds the point set and lazily-built triangulation for one tile.
type Engine struct {
	x0, y0, x1, y1 float64
	points         []Point
}

// New constructs an engine over the rectangle [x0,x1]x[y0,y1].
func New(x0, y0, x1, y1 float64) *Engine {
	return &Engine{x0: x0, y0: y0, x1: x1, y1: y1}
}

// Insert adds a point, rejecting it if it coincides (within an epsilon) with
// an already-inserted point.
func (e *Engine) Insert(p Point) {
	for _, q := range e.points {
		if math.Hypot(p.X-q.X, p.Y-q.Y) < coincidentEpsilon {
			return
		}
	}
	e.points = append(e.points, p)
}

// InsertAll inserts every point in order.
func (e *Engine) InsertAll(pts []Point) {
	for _, p := range pts {
		e.Insert(p)
	}
}

// Points returns the current surviving point set, in insertion order.
func (e *Engine) Points() []Point {
	return e.points
}

// Count returns the number of surviving points.
func (e *Engine) Count() int {
	return len(e.points)
}

// ReduceByCount removes the k least-important points, preserving every point
// with weight < 0 (corners and edges are mandatory). Importance is scored by
// how close a point's elevation is to its nearest spatial neighbor relative
// to that neighbor's distance — a point nearly coplanar with its closest
// neighbor contributes least visual detail and is removed first.
func (e *Engine) ReduceByCount(k int) {
	if k <= 0 {
		return
	}
	type candidate struct {
		idx   int
		score float64
	}
	var candidates []candidate
	for i, p := range e.points {
		if p.Weight >= 0 {
			candidates = append(candidates, candidate{i, e.contribution(i)})
		}
	}
	sort.Slice(candidates, func(a, b int) bool {
		if candidates[a].score != candidates[b].score {
			return candidates[a].score < candidates[b].score
		}
		return candidates[a].idx < candidates[b].idx
	})
	if k > len(candidates) {
		k = len(candidates)
	}
	remove := make(map[int]bool, k)
	for i := 0; i < k; i++ {
		remove[candidates[i].idx] = true
	}
	kept := make([]Point, 0, len(e.points)-k)
	for i, p := range e.points {
		if !remove[i] {
			kept = append(kept, p)
		}
	}
	e.points = kept
}

func (e *Engine) contribution(i int) float64 {
	p := e.points[i]
	bestDist := math.Inf(1)
	bestElev := p.Elevation
	for j, q := range e.points {
		if j == i {
			continue
		}
		d := math.Hypot(p.X-q.X, p.Y-q.Y)
		if d < bestDist {
			bestDist = d
			bestElev = q.Elevation
		}
	}
	if math.IsInf(bestDist, 1) || bestDist == 0 {
		return math.Abs(p.Elevation - bestElev)
	}
	return math.Abs(p.Elevation-bestElev) / bestDist
}

// Triangles builds a fresh Delaunay triangulation over the current point set
// and returns triangle index triples referring to Points().
func (e *Engine) Triangles() [][3]int {
	n := len(e.points)
	if n < 3 {
		return nil
	}

	eps := math.Abs(e.x1 - e.x0)
	if eps == 0 {
		eps = 1
	}

	xs := make([]float64, n+4)
	ys := make([]float64, n+4)
	for i, p := range e.points {
		xs[i] = p.X
		ys[i] = p.Y
	}
	// Scaffold corners, padded outward by eps on each side.
	xs[n] = e.x0 - eps
	ys[n] = e.y0 - eps
	xs[n+1] = e.x1 + eps
	ys[n+1] = e.y0 - eps
	xs[n+2] = e.x1 + eps
	ys[n+2] = e.y1 + eps
	xs[n+3] = e.x0 - eps
	ys[n+3] = e.y1 + eps

	tris := []triIdx{{n, n + 1, n + 2}, {n, n + 2, n + 3}}

	for i := 0; i < n; i++ {
		tris = insertPoint(xs, ys, tris, i)
	}

	out := make([][3]int, 0, len(tris))
	for _, t := range tris {
		if t[0] >= n || t[1] >= n || t[2] >= n {
			continue // drop triangles touching the scaffold
		}
		out = append(out, [3]int{t[0], t[1], t[2]})
	}
	return out
}

type triIdx = [3]int

type edgeKey struct{ a, b int }

func makeEdge(a, b int) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{a, b}
}

func insertPoint(xs, ys []float64, tris []triIdx, p int) []triIdx {
	var bad []triIdx
	var good []triIdx
	for _, t := range tris {
		if inCircumcircle(xs, ys, t, p) {
			bad = append(bad, t)
		} else {
			good = append(good, t)
		}
	}

	edgeCount := make(map[edgeKey]int)
	edgeOf := make(map[edgeKey][2]int)
	addEdge := func(a, b int) {
		k := makeEdge(a, b)
		edgeCount[k]++
		edgeOf[k] = [2]int{a, b}
	}
	for _, t := range bad {
		addEdge(t[0], t[1])
		addEdge(t[1], t[2])
		addEdge(t[2], t[0])
	}

	for k, cnt := range edgeCount {
		if cnt != 1 {
			continue
		}
		ab := edgeOf[k]
		tri := orient(xs, ys, ab[0], ab[1], p)
		good = append(good, tri)
	}
	return good
}

// orient returns (a,b,p) ordered counter-clockwise.
func orient(xs, ys []float64, a, b, p int) triIdx {
	cross := (xs[b]-xs[a])*(ys[p]-ys[a]) - (ys[b]-ys[a])*(xs[p]-xs[a])
	if cross < 0 {
		return triIdx{a, p, b}
	}
	return triIdx{a, b, p}
}

func inCircumcircle(xs, ys []float64, t triIdx, p int) bool {
	ax, ay := xs[t[0]], ys[t[0]]
	bx, by := xs[t[1]], ys[t[1]]
	cx, cy := xs[t[2]], ys[t[2]]
	px, py := xs[p], ys[p]

	d := 2 * (ax*(by-cy) + bx*(cy-ay) + cx*(ay-by))
	if math.Abs(d) < 1e-18 {
		return false // degenerate triangle; never a valid candidate
	}
	a2 := ax*ax + ay*ay
	b2 := bx*bx + by*by
	c2 := cx*cx + cy*cy
	ux := (a2*(by-cy) + b2*(cy-ay) + c2*(ay-by)) / d
	uy := (a2*(cx-bx) + b2*(ax-cx) + c2*(bx-ax)) / d

	radiusSq := (ax-ux)*(ax-ux) + (ay-uy)*(ay-uy)
	distSq := (px-ux)*(px-ux) + (py-uy)*(py-uy)
	return distSq <= radiusSq*(1+1e-12)
}

// WriteOBJ emits a Wavefront OBJ text representation of the current
// triangulation for debugging, matching the reference layout: one "v x y z"
// line per vertex followed by one 1-indexed "f a b c" line per triangle.
func (e *Engine) WriteOBJ() string {
	var sb strings.Builder
	for _, p := range e.points {
		fmt.Fprintf(&sb, "v %g %g %g\n", p.X, p.Y, p.Elevation)
	}
	for _, t := range e.Triangles() {
		fmt.Fprintf(&sb, "f %d %d %d\n", t[0]+1, t[1]+1, t[2]+1)
	}
	return sb.String()
}
