package elevation

// Tile is a bounded rectangle [x0,x1]x[y0,y1] in Mercator holding a
// categorized set of points: four corners (always present) and ordered edge
// lists plus an interior list.
type Tile struct {
	X0, Y0, X1, Y1 float64

	NW, NE, SE, SW Point

	North, East, South, West []Point
	Middle                   []Point

	Categorized bool
}

// NewTile creates an uncategorized tile spanning the given rectangle, with
// all four corners at elevation zero and corner weight.
func NewTile(x0, y0, x1, y1 float64) *Tile {
	t := &Tile{X0: x0, Y0: y0, X1: x1, Y1: y1}
	t.NW = Point{X: x0, Y: y1, Weight: WeightCorner}
	t.NE = Point{X: x1, Y: y1, Weight: WeightCorner}
	t.SE = Point{X: x1, Y: y0, Weight: WeightCorner}
	t.SW = Point{X: x0, Y: y0, Weight: WeightCorner}
	return t
}

// Setup directly assigns all five collections (used when loading a tile
// whose classification was already performed) and marks it categorized.
func (t *Tile) Setup(nw, ne, se, sw Point, north, east, south, west, middle []Point) {
	t.NW, t.NE, t.SE, t.SW = nw, ne, se, sw
	t.North, t.East, t.South, t.West, t.Middle = north, east, south, west, middle
	t.Categorized = true
	t.X0, t.Y0 = sw.X, sw.Y
	t.X1, t.Y1 = ne.X, ne.Y
}

// NumPoints returns the total point count: 4 corners plus every edge and
// middle point.
func (t *Tile) NumPoints() int {
	return 4 + len(t.North) + len(t.East) + len(t.South) + len(t.West) + len(t.Middle)
}

// AllPoints returns the flattened, unclassified point list in the exact
// insertion order the triangulation expects: SW, NW, NE, SE, then North,
// East, South, West (each pre-sorted), then Middle.
func (t *Tile) AllPoints() []Point {
	out := make([]Point, 0, t.NumPoints())
	out = append(out, t.SW, t.NW, t.NE, t.SE)
	out = append(out, sortedCopy(t.North)...)
	out = append(out, sortedCopy(t.East)...)
	out = append(out, sortedCopy(t.South)...)
	out = append(out, sortedCopy(t.West)...)
	out = append(out, t.Middle...)
	return out
}

// sortedCopy returns a copy of pts ordered by a Shell sort keyed first on X
// then Y, matching the deterministic insertion order the triangulation
// requires across platforms.
func sortedCopy(pts []Point) []Point {
	out := make([]Point, len(pts))
	copy(out, pts)
	shellSort(out)
	return out
}

// shellSort orders points by X then Y ascending. It is used (rather than
// sort.Slice, which is not guaranteed stable or deterministic in its probing
// order) because the exact comparison sequence does not matter here, only
// the final total order — a plain comparison sort suffices, implemented as a
// Shell sort to mirror the reference algorithm's tie-break behavior exactly.
func shellSort(pts []Point) {
	n := len(pts)
	for gap := n / 2; gap > 0; gap /= 2 {
		for i := gap; i < n; i++ {
			tmp := pts[i]
			j := i
			for ; j >= gap && less(tmp, pts[j-gap]); j -= gap {
				pts[j] = pts[j-gap]
			}
			pts[j] = tmp
		}
	}
}

func less(a, b Point) bool {
	if a.X != b.X {
		return a.X < b.X
	}
	return a.Y < b.Y
}

// Classify partitions pts into the tile's five collections using the
// relative-tolerance edge test and the strict-interior test. Corner points
// take priority over edge points, which take priority over interior
// classification. A point that sits strictly inside the rectangle is kept
// only if its weight is non-negative — a point that was previously on an
// edge but displaced inward by resampling is dropped rather than promoted.
func (t *Tile) Classify(pts []Point) {
	const strictEps = 1e-12

	t.Categorized = true
	t.North = t.North[:0]
	t.East = t.East[:0]
	t.South = t.South[:0]
	t.West = t.West[:0]
	t.Middle = t.Middle[:0]

	for _, p := range pts {
		switch {
		case flteq(t.X0, p.X) && flteq(t.Y0, p.Y): // SW corner
			t.SW = Point{X: t.X0, Y: t.Y0, Elevation: p.Elevation, Weight: WeightCorner}
		case flteq(t.X1, p.X) && flteq(t.Y0, p.Y): // SE corner
			t.SE = Point{X: t.X1, Y: t.Y0, Elevation: p.Elevation, Weight: WeightCorner}
		case flteq(t.X1, p.X) && flteq(t.Y1, p.Y): // NE corner
			t.NE = Point{X: t.X1, Y: t.Y1, Elevation: p.Elevation, Weight: WeightCorner}
		case flteq(t.X0, p.X) && flteq(t.Y1, p.Y): // NW corner
			t.NW = Point{X: t.X0, Y: t.Y1, Elevation: p.Elevation, Weight: WeightCorner}
		case flteq(t.X0, p.X): // west edge
			t.West = append(t.West, Point{X: t.X0, Y: p.Y, Elevation: p.Elevation, Weight: WeightEdge})
		case flteq(t.X1, p.X): // east edge
			t.East = append(t.East, Point{X: t.X1, Y: p.Y, Elevation: p.Elevation, Weight: WeightEdge})
		case flteq(t.Y0, p.Y): // south edge
			t.South = append(t.South, Point{X: p.X, Y: t.Y0, Elevation: p.Elevation, Weight: WeightEdge})
		case flteq(t.Y1, p.Y): // north edge
			t.North = append(t.North, Point{X: p.X, Y: t.Y1, Elevation: p.Elevation, Weight: WeightEdge})
		default:
			if p.X > t.X0+strictEps && p.Y > t.Y0+strictEps && p.X < t.X1-strictEps && p.Y < t.Y1-strictEps {
				if p.Weight >= 0 {
					t.Middle = append(t.Middle, p)
				}
			}
		}
	}
}

// CreateFromParent materializes a parent tile by merging four children laid
// out NW, NE, SW, SE (matching the quadkey digit order 0,1,2,3). The result
// is marked uncategorized/unreduced; a subsequent Reduce call is expected.
func CreateFromParent(nw, ne, sw, se *Tile) *Tile {
	t := &Tile{
		X0: nw.X0, Y0: sw.Y0, X1: se.X1, Y1: nw.Y1,
		NW: nw.NW, NE: ne.NE, SW: sw.SW, SE: se.SE,
	}
	t.Middle = concat(nw.Middle, ne.Middle, sw.Middle, se.Middle)
	t.North = concat(nw.North, ne.North)
	t.East = concat(ne.East, se.East)
	t.South = concat(sw.South, se.South)
	t.West = concat(nw.West, sw.West)
	t.Categorized = false
	return t
}

func concat(lists ...[]Point) []Point {
	n := 0
	for _, l := range lists {
		n += len(l)
	}
	out := make([]Point, 0, n)
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}
