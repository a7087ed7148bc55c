package elevation

import "github.com/globequad/globequad/internal/triangulate"

// Reduce brings the tile's point count down to targetPoints if it currently
// exceeds it: all points are inserted into a Delaunay engine constructed
// over the tile's rectangle (corners and edges always pre-sorted by
// AllPoints for deterministic insertion order), the engine removes the
// least-important vertices, and the survivors are re-classified back into
// the five collections. Corners and edge points are weighted negative and
// therefore always survive.
func (t *Tile) Reduce(targetPoints int) {
	if t.NumPoints() <= targetPoints {
		return
	}
	eng := triangulate.New(t.X0, t.Y0, t.X1, t.Y1)
	eng.InsertAll(t.AllPoints())

	n2 := eng.Count()
	if n2 > targetPoints {
		eng.ReduceByCount(n2 - targetPoints)
	}
	t.Classify(eng.Points())
}

// Triangulate builds a fresh Delaunay engine over the tile's current point
// set, suitable for mesh construction or OBJ export.
func (t *Tile) Triangulate() *triangulate.Engine {
	eng := triangulate.New(t.X0, t.Y0, t.X1, t.Y1)
	eng.InsertAll(t.AllPoints())
	return eng
}
