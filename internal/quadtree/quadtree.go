// Package quadtree implements bidirectional arithmetic between geographic,
// Mercator, pixel, tile, and quadkey coordinates for a Web-Mercator virtual
// globe, plus extent propagation across levels of detail.
package quadtree

import (
	"fmt"

	"github.com/globequad/globequad/internal/coord"
	"github.com/globequad/globequad/internal/ogerr"
)

// TileSize is the pixel dimension of one tile at any LOD.
const TileSize = 256

// TileCoordToQuadkey encodes a tile coordinate as a quadkey string of length
// lod. Character i (MSB first) is derived from bit (lod-1-i) of ty and tx:
// bit(ty)*2 + bit(tx).
func TileCoordToQuadkey(tx, ty int64, lod int) string {
	buf := make([]byte, lod)
	for i := 0; i < lod; i++ {
		shift := uint(lod - 1 - i)
		bitX := (tx >> shift) & 1
		bitY := (ty >> shift) & 1
		buf[i] = byte('0' + bitY*2 + bitX)
	}
	return string(buf)
}

// QuadkeyToTileCoord is the exact inverse of TileCoordToQuadkey. It fails
// with ErrInvalidQuadkey if any character is outside {0,1,2,3}.
func QuadkeyToTileCoord(q string) (tx, ty int64, lod int, err error) {
	lod = len(q)
	for i := 0; i < lod; i++ {
		c := q[i]
		if c < '0' || c > '3' {
			return 0, 0, 0, fmt.Errorf("quadkey %q: %w", q, ogerr.ErrInvalidQuadkey)
		}
		v := int64(c - '0')
		tx = (tx << 1) | (v & 1)
		ty = (ty << 1) | (v >> 1)
	}
	return tx, ty, lod, nil
}

// PixelToTileCoord returns the tile that contains pixel (px, py).
func PixelToTileCoord(px, py int64) (tx, ty int64) {
	return floorDiv(px, TileSize), floorDiv(py, TileSize)
}

// MercatorToPixel maps a point in [-MercatorMax, MercatorMax]^2 to the pixel
// grid at the given LOD, flipping the y axis (Mercator north -> pixel y=0).
// Results are floored to integers.
func MercatorToPixel(mx, my float64, lod int) (px, py int64) {
	worldPixels := float64(TileSize) * pow2(lod)
	worldSize := 2 * coord.MercatorMax
	px = int64(floor((mx + coord.MercatorMax) * worldPixels / worldSize))
	py = int64(floor((coord.MercatorMax - my) * worldPixels / worldSize))
	return
}

// PixelToMercator is the exact inverse of MercatorToPixel.
func PixelToMercator(px, py int64, lod int) (mx, my float64) {
	worldPixels := float64(TileSize) * pow2(lod)
	scale := 2 * coord.MercatorMax / worldPixels
	mx = float64(px)*scale - coord.MercatorMax
	my = coord.MercatorMax - float64(py)*scale
	return
}

// QuadkeyToMercatorCoord returns the Mercator rectangle SW=(x0,y0)/NE=(x1,y1)
// covered by the quadkey.
func QuadkeyToMercatorCoord(q string) (x0, y0, x1, y1 float64, err error) {
	tx, ty, lod, err := QuadkeyToTileCoord(q)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	x0, y1 = PixelToMercator(tx*TileSize, ty*TileSize, lod)
	x1, y0 = PixelToMercator((tx+1)*TileSize, (ty+1)*TileSize, lod)
	return
}

// Extent is an inclusive tile-index rectangle (tx0,ty0)-(tx1,ty1) at a LOD.
type Extent struct {
	TX0, TY0, TX1, TY1 int64
}

// PropagateExtent derives the tile extent at targetLOD from an extent known
// at nativeLOD. Widening (targetLOD > nativeLOD) multiplies by 2^k; narrowing
// (targetLOD < nativeLOD) floor-divides by 2, applied k times.
func PropagateExtent(e Extent, nativeLOD, targetLOD int) Extent {
	if targetLOD > nativeLOD {
		k := targetLOD - nativeLOD
		scale := int64(1) << uint(k)
		return Extent{e.TX0 * scale, e.TY0 * scale, e.TX1 * scale, e.TY1 * scale}
	}
	if targetLOD < nativeLOD {
		out := e
		for i := 0; i < nativeLOD-targetLOD; i++ {
			out.TX0 = floorDiv(out.TX0, 2)
			out.TY0 = floorDiv(out.TY0, 2)
			out.TX1 = floorDiv(out.TX1, 2)
			out.TY1 = floorDiv(out.TY1, 2)
		}
		return out
	}
	return e
}

// CheckExtentSize rejects an extent that is too small to hillshade (width or
// height under 3 tiles) unless border tiles are being processed.
func CheckExtentSize(e Extent, processBorders bool) error {
	width := e.TX1 - e.TX0 + 1
	height := e.TY1 - e.TY0 + 1
	if (width < 3 || height < 3) && !processBorders {
		return fmt.Errorf("extent %dx%d: %w", width, height, ogerr.ErrExtentTooSmall)
	}
	return nil
}

// Parent returns the quadkey of the tile containing q, and false if q is
// already the root (level 0).
func Parent(q string) (string, bool) {
	if len(q) == 0 {
		return "", false
	}
	return q[:len(q)-1], true
}

// Children returns the four child quadkeys of q in NW, NE, SW, SE order.
func Children(q string) [4]string {
	return [4]string{q + "0", q + "1", q + "2", q + "3"}
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func pow2(n int) float64 {
	if n < 0 {
		return 1
	}
	r := 1.0
	for i := 0; i < n; i++ {
		r *= 2
	}
	return r
}

func floor(v float64) float64 {
	i := int64(v)
	if v < 0 && float64(i) != v {
		i--
	}
	return float64(i)
}
