// Package hillshade stitches a 3x3 neighborhood of raw elevation tiles into
// a single oversized input buffer and hands it to a pluggable shading
// kernel. The fixed-point reference implementation streamed each neighbor
// file and recomputed its sub-block offset by a modulo-256 running counter,
// which left stale buffer contents behind whenever a raw file was shorter
// than a full 256x256 tile; this implementation instead pre-fills the whole
// buffer with the missing-data sentinel before stitching any neighbor in.
package hillshade

import (
	"errors"
	"fmt"
	"image"
	"os"

	"github.com/globequad/globequad/internal/quadtree"
)

const (
	// MissingValue fills buffer positions no neighbor tile supplies data
	// for, either because the neighbor file is absent or shorter than a
	// full sub-block.
	MissingValue = -9999.0

	subBlock = 256
	// InputSize is the default stitched-neighborhood side length: three
	// 256x256 sub-blocks per axis.
	InputSize = subBlock * 3
	// OutputSize is the default kernel output tile side length.
	OutputSize = 256
)

// Neighborhood is a contiguous InputSize x InputSize float32 buffer plus the
// Mercator rectangle it covers, ready to hand to a Kernel.
type Neighborhood struct {
	Data           []float32 // row-major, len == InputSize*InputSize
	X0, Y0, X1, Y1 float64
}

// Kernel computes a shaded output tile from a stitched neighborhood.
// Parameters are forwarded verbatim from the caller's lighting
// configuration; Kernel is a pure function of its inputs. Image encoding
// (JPEG/PNG, quality) is the caller's concern, not the kernel's.
type Kernel interface {
	Shade(n Neighborhood, params LightingParams) (image.Image, error)
}

// LightingParams mirrors the reference tool's shading knobs, forwarded to
// the kernel unmodified.
type LightingParams struct {
	Azimuth    float64
	Altitude   float64
	ZDepth     float64
	Scale      float64
	SlopeScale float64
	Colored    bool
	Textured   bool
}

// RawTileLoader reads the native-endian float32 elevation buffer for one
// raw tile, or returns os.ErrNotExist (wrapped) if it has not been
// produced yet.
type RawTileLoader func(lod int, tx, ty int64) ([]float32, error)

// BuildNeighborhood assembles the 3x3 stitched input buffer for the tile at
// (tx,ty,lod), expressed at layerLOD (the coarser LOD whose raw tiles
// actually exist on disk — job tiles finer than the native raster
// resolution share their ancestor's raw neighborhood). The buffer is
// entirely pre-filled with MissingValue before any neighbor is stitched in,
// so a short or absent raw file never leaves stale data from whatever the
// buffer previously held.
func BuildNeighborhood(load RawTileLoader, lod, layerLOD int, tx, ty int64) (Neighborhood, error) {
	parentQuad := quadtree.TileCoordToQuadkey(tx, ty, lod)
	if layerLOD > len(parentQuad) {
		return Neighborhood{}, fmt.Errorf("hillshade: layerLOD %d exceeds tile LOD %d", layerLOD, lod)
	}
	parentQuad = parentQuad[:layerLOD]
	parentX, parentY, parentLOD, err := quadtree.QuadkeyToTileCoord(parentQuad)
	if err != nil {
		return Neighborhood{}, fmt.Errorf("hillshade: derive parent tile: %w", err)
	}

	n := Neighborhood{Data: make([]float32, InputSize*InputSize)}
	for i := range n.Data {
		n.Data[i] = MissingValue
	}

	xMin, yMin := float64(1e20), float64(1e20)
	xMax, yMax := float64(-1e20), float64(-1e20)

	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			nx, ny := parentX+int64(dx), parentY+int64(dy)
			quad := quadtree.TileCoordToQuadkey(nx, ny, parentLOD)
			x0, y0, x1, y1, err := quadtree.QuadkeyToMercatorCoord(quad)
			if err != nil {
				return Neighborhood{}, fmt.Errorf("hillshade: neighbor rectangle: %w", err)
			}
			xMin, xMax = minf(xMin, x0), maxf(xMax, x1)
			yMin, yMax = minf(yMin, y0), maxf(yMax, y1)

			buf, err := load(parentLOD, nx, ny)
			if err != nil {
				if errors.Is(err, os.ErrNotExist) {
					continue // stays MissingValue
				}
				return Neighborhood{}, fmt.Errorf("hillshade: load neighbor (%d,%d,%d): %w", parentLOD, nx, ny, err)
			}
			posX := (dx + 1) * subBlock
			posY := (dy + 1) * subBlock
			stitch(n.Data, buf, posX, posY)
		}
	}

	n.X0, n.Y0, n.X1, n.Y1 = xMin, yMin, xMax, yMax
	return n, nil
}

// stitch copies up to subBlock x subBlock values from src (row-major, up to
// subBlock*subBlock floats) into dst at the given top-left offset. A src
// shorter than a full sub-block leaves its remaining rows/columns at
// whatever dst already holds (the MissingValue sentinel).
func stitch(dst, src []float32, posX, posY int) {
	for row := 0; row < subBlock; row++ {
		rowStart := row * subBlock
		if rowStart >= len(src) {
			break
		}
		rowEnd := rowStart + subBlock
		if rowEnd > len(src) {
			rowEnd = len(src)
		}
		cols := rowEnd - rowStart
		dstRow := (posY + row) * InputSize
		copy(dst[dstRow+posX:dstRow+posX+cols], src[rowStart:rowEnd])
	}
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
