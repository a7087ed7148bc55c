// Package mesh builds the JSON mesh tile format consumed by downstream
// viewers: a flat vertex/texcoord buffer, a triangle index buffer, a
// per-tile geocentric camera offset, a bounding box, and a trailing curtain
// (skirt) that hides gaps between neighboring tiles at different LODs.
package mesh

import (
	"fmt"
	"math"

	"github.com/globequad/globequad/internal/coord"
	"github.com/globequad/globequad/internal/elevation"
	"github.com/globequad/globequad/internal/triangulate"
)

// Tile is the on-the-wire mesh representation.
type Tile struct {
	VertexSemantic string        `json:"VertexSemantic"`
	Vertices       []float32     `json:"Vertices"`
	IndexSemantic  string        `json:"IndexSemantic"`
	Indices        []int         `json:"Indices"`
	Offset         [3]float64    `json:"Offset"`
	BoundingBox    [2][3]float64 `json:"BoundingBox"`
	CurtainIndex   int           `json:"CurtainIndex"`
}

// perimeter walks the tile's boundary once, corner to corner, in a single
// consistent (clockwise, seen with north up) direction: NW -> north (west to east) -> NE
// -> east (north to south) -> SE -> south (east to west) -> SW -> west
// (south to north) -> back to NW. The edge lists are used in their stored
// order, which is taken to be ascending by X (north/south) or Y (east/west);
// perimeter does not sort them. With that order the north and west legs
// already run in walk order, the east and south legs need reversing. This single consistent winding resolves the ambiguity the
// reference implementation's unreversed east-list pass left open.
func perimeter(tile *elevation.Tile) []elevation.Point {
	out := make([]elevation.Point, 0, 4+len(tile.North)+len(tile.East)+len(tile.South)+len(tile.West))
	out = append(out, tile.NW)
	out = append(out, tile.North...)
	out = append(out, tile.NE)
	out = append(out, reversed(tile.East)...)
	out = append(out, tile.SE)
	out = append(out, reversed(tile.South)...)
	out = append(out, tile.SW)
	out = append(out, tile.West...)
	return out
}

func reversed(pts []elevation.Point) []elevation.Point {
	out := make([]elevation.Point, len(pts))
	for i, p := range pts {
		out[len(pts)-1-i] = p
	}
	return out
}

// Build triangulates tile and emits its JSON mesh representation, including
// the curtain skirt appended after the surface geometry.
func Build(tile *elevation.Tile) (*Tile, error) {
	eng := tile.Triangulate()
	pts := eng.Points()
	tris := eng.Triangles()

	texOffsetX, texOffsetY := tile.SW.X, tile.SW.Y
	texDX := absf(tile.SE.X - tile.SW.X)
	texDY := absf(tile.NW.Y - tile.SW.Y)
	if texDX == 0 || texDY == 0 {
		return nil, fmt.Errorf("mesh: degenerate tile rectangle [%g,%g]-[%g,%g]", tile.X0, tile.Y0, tile.X1, tile.Y1)
	}

	offLon, offLat := coord.MercatorToLonLat(tile.SW.X, tile.SW.Y)
	offX, offY, offZ := geodeticToCartesian(offLon, offLat, tile.SW.Elevation)

	m := &Tile{
		VertexSemantic: "pt",
		IndexSemantic:  "TRIANGLES",
		Offset:         [3]float64{offX, offY, offZ},
	}

	bbMin := [3]float64{math.Inf(1), math.Inf(1), math.Inf(1)}
	bbMax := [3]float64{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	minElev := math.Inf(1)

	appendVertex := func(p triangulate.Point) {
		lon, lat := coord.MercatorToLonLat(p.X, p.Y)
		x, y, z := geodeticToCartesian(lon, lat, p.Elevation)
		growBBox(&bbMin, &bbMax, x, y, z)
		if p.Elevation < minElev {
			minElev = p.Elevation
		}
		u := float32((p.X - texOffsetX) / texDX)
		v := float32((p.Y - texOffsetY) / texDY)
		m.Vertices = append(m.Vertices,
			float32(x-offX), float32(y-offY), float32(z-offZ), u, v)
	}

	for _, p := range pts {
		appendVertex(p)
	}
	for _, t := range tris {
		m.Indices = append(m.Indices, t[0], t[1], t[2])
	}

	m.CurtainIndex = len(m.Vertices) / 5
	curtainElev := minElev - 1000
	appendCurtain(m, perimeter(tile), curtainElev, texOffsetX, texOffsetY, texDX, texDY, offX, offY, offZ, &bbMin, &bbMax)

	m.BoundingBox = [2][3]float64{bbMin, bbMax}
	return m, nil
}

// appendCurtain emits one top+bottom vertex pair per perimeter point, then
// walks the closed loop emitting two triangles per edge (A,B,D) and
// (B,C,D), where A/B are one edge's top/bottom indices and D/C are the
// next's, so each boundary point contributes exactly one vertex pair
// regardless of how many of the loop's edges touch it.
func appendCurtain(m *Tile, loop []elevation.Point, curtainElev, texOffsetX, texOffsetY, texDX, texDY, offX, offY, offZ float64, bbMin, bbMax *[3]float64) {
	n := len(loop)
	if n == 0 {
		return
	}
	base := len(m.Vertices) / 5

	vertex := func(p elevation.Point, elev float64) (x, y, z, u, v float32) {
		lon, lat := coord.MercatorToLonLat(p.X, p.Y)
		cx, cy, cz := geodeticToCartesian(lon, lat, elev)
		growBBox(bbMin, bbMax, cx, cy, cz)
		uu := float32((p.X - texOffsetX) / texDX)
		vv := float32((p.Y - texOffsetY) / texDY)
		return float32(cx - offX), float32(cy - offY), float32(cz - offZ), uu, vv
	}

	for _, p := range loop {
		tx, ty, tz, tu, tv := vertex(p, p.Elevation)
		bx, by, bz, bu, bv := vertex(p, curtainElev)
		m.Vertices = append(m.Vertices, tx, ty, tz, tu, tv, bx, by, bz, bu, bv)
	}

	topIdx := func(i int) int { return base + 2*i }
	botIdx := func(i int) int { return base + 2*i + 1 }

	for i := 0; i < n; i++ {
		j := (i + 1) % n
		idxA, idxB := topIdx(i), botIdx(i)
		idxD, idxC := topIdx(j), botIdx(j)
		m.Indices = append(m.Indices, idxA, idxB, idxD)
		m.Indices = append(m.Indices, idxB, idxC, idxD)
	}
}

func growBBox(bbMin, bbMax *[3]float64, x, y, z float64) {
	v := [3]float64{x, y, z}
	for i := 0; i < 3; i++ {
		if v[i] < bbMin[i] {
			bbMin[i] = v[i]
		}
		if v[i] > bbMax[i] {
			bbMax[i] = v[i]
		}
	}
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
