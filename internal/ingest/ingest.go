// Package ingest resamples a source raster (read through internal/cog) into
// the Mercator tile pyramid: classified elevation.Tile records for the mesh
// pipeline, and flat float32 grids for the hillshade pipeline's raw-tile
// input. It is the Go counterpart of adddata/main.cpp's per-tile anchor
// reprojection, generalized from "log four corners" to "actually resample
// the raster at every tile".
package ingest

import (
	"fmt"
	"math"

	"github.com/globequad/globequad/internal/cog"
	"github.com/globequad/globequad/internal/coord"
	"github.com/globequad/globequad/internal/elevation"
	"github.com/globequad/globequad/internal/ogerr"
	"github.com/globequad/globequad/internal/quadtree"
)

// DefaultGridSize is the sample grid resolution (points per axis) used to
// classify an elevation tile's corners, edges, and interior.
const DefaultGridSize = 9

// DefaultRawSize is the sample grid resolution (points per axis) used for
// the flat raw float32 tiles the hillshade pipeline consumes.
const DefaultRawSize = 256

// Source bundles an opened raster reader with the projection that maps its
// native CRS to WGS84.
type Source struct {
	Reader *cog.Reader
	Proj   coord.Projection
}

// Open opens path and resolves its projection from epsg.
func Open(path string, epsg int) (*Source, error) {
	proj := coord.ForEPSG(epsg)
	if proj == nil {
		return nil, fmt.Errorf("%w: unsupported srs EPSG:%d", ogerr.ErrMissingCrsData, epsg)
	}
	r, err := cog.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ogerr.ErrLoadElevation, path, err)
	}
	if !r.IsFloat() {
		r.Close()
		return nil, fmt.Errorf("%w: %s is not a floating-point elevation raster", ogerr.ErrLoadElevation, path)
	}
	return &Source{Reader: r, Proj: proj}, nil
}

// Close releases the underlying raster.
func (s *Source) Close() error { return s.Reader.Close() }

// MercatorBounds returns the source raster's bounding rectangle reprojected
// into Web Mercator meters.
func (s *Source) MercatorBounds() (x0, y0, x1, y1 float64) {
	minX, minY, maxX, maxY := s.Reader.BoundsInCRS()
	corners := [4][2]float64{{minX, minY}, {maxX, minY}, {minX, maxY}, {maxX, maxY}}
	x0, y0 = math.Inf(1), math.Inf(1)
	x1, y1 = math.Inf(-1), math.Inf(-1)
	for _, c := range corners {
		lon, lat := s.Proj.ToWGS84(c[0], c[1])
		mx, my := coord.LonLatToMercator(lon, lat)
		x0, y0 = minf(x0, mx), minf(y0, my)
		x1, y1 = maxf(x1, mx), maxf(y1, my)
	}
	return
}

// TileExtent derives the tile-index rectangle at lod the raster overlaps.
func (s *Source) TileExtent(lod int) quadtree.Extent {
	x0, y0, x1, y1 := s.MercatorBounds()
	px0, py0 := quadtree.MercatorToPixel(x0, y1, lod) // upper-left (max Y)
	px1, py1 := quadtree.MercatorToPixel(x1, y0, lod) // lower-right (min Y)
	tx0, ty0 := quadtree.PixelToTileCoord(px0, py0)
	tx1, ty1 := quadtree.PixelToTileCoord(px1, py1)
	return quadtree.Extent{TX0: tx0, TY0: ty0, TX1: tx1, TY1: ty1}
}

// Clip intersects a with b, returning ok=false if they don't overlap.
func Clip(a, b quadtree.Extent) (quadtree.Extent, bool) {
	out := quadtree.Extent{
		TX0: maxi64(a.TX0, b.TX0),
		TY0: maxi64(a.TY0, b.TY0),
		TX1: mini64(a.TX1, b.TX1),
		TY1: mini64(a.TY1, b.TY1),
	}
	if out.TX0 > out.TX1 || out.TY0 > out.TY1 {
		return quadtree.Extent{}, false
	}
	return out, true
}

// sample bilinearly reads the elevation at a Web Mercator point, returning
// false if the point falls outside the raster's pixel grid.
func (s *Source) sample(mx, my float64) (float32, bool) {
	lon, lat := coord.MercatorToLonLat(mx, my)
	crsX, crsY := s.Proj.FromWGS84(lon, lat)

	geo := s.Reader.GeoInfo()
	if geo.PixelSizeX == 0 || geo.PixelSizeY == 0 {
		return 0, false
	}
	fx := (crsX - geo.OriginX) / geo.PixelSizeX
	fy := (geo.OriginY - crsY) / geo.PixelSizeY
	if fx < 0 || fy < 0 || fx > float64(s.Reader.Width()-1) || fy > float64(s.Reader.Height()-1) {
		return 0, false
	}
	v, err := s.Reader.SampleBilinearFloat(0, fx, fy)
	if err != nil {
		return 0, false
	}
	return v, true
}

// BuildTile samples the raster over the Mercator rectangle of quadkey
// (tx,ty,lod) into a classified elevation.Tile, using a gridSize x gridSize
// sample grid (corners and edges land exactly on the tile boundary so
// Tile.Classify buckets them correctly). Samples that fall outside the
// source raster's coverage keep elevation 0 but are still classified, so a
// raster that only partially covers a tile still yields a usable mesh.
func BuildTile(s *Source, tx, ty int64, lod, gridSize int) (*elevation.Tile, error) {
	quad := quadtree.TileCoordToQuadkey(tx, ty, lod)
	x0, y0, x1, y1, err := quadtree.QuadkeyToMercatorCoord(quad)
	if err != nil {
		return nil, fmt.Errorf("ingest: tile rectangle: %w", err)
	}
	return buildTileFromSampler(x0, y0, x1, y1, gridSize, func(x, y float64) (float32, bool) {
		return s.sample(x, y)
	}), nil
}

// buildTileFromSampler is BuildTile's raster-independent core: it lays out
// a gridSize x gridSize grid across [x0,x1]x[y0,y1] (corners and edges land
// exactly on the rectangle boundary), queries sampleFn for each point's
// elevation, and classifies the result. Factored out so the grid/weight
// logic can be tested without a real raster.
func buildTileFromSampler(x0, y0, x1, y1 float64, gridSize int, sampleFn func(x, y float64) (float32, bool)) *elevation.Tile {
	if gridSize < 2 {
		gridSize = DefaultGridSize
	}
	tile := elevation.NewTile(x0, y0, x1, y1)
	pts := make([]elevation.Point, 0, gridSize*gridSize)
	for row := 0; row < gridSize; row++ {
		v := float64(row) / float64(gridSize-1)
		y := y0 + v*(y1-y0)
		for col := 0; col < gridSize; col++ {
			u := float64(col) / float64(gridSize-1)
			x := x0 + u*(x1-x0)

			weight := elevation.WeightEdge
			if (row == 0 || row == gridSize-1) && (col == 0 || col == gridSize-1) {
				weight = elevation.WeightCorner
			} else if row > 0 && row < gridSize-1 && col > 0 && col < gridSize-1 {
				weight = 0
			}

			elev, _ := sampleFn(x, y)
			pts = append(pts, elevation.Point{X: x, Y: y, Elevation: float64(elev), Weight: weight})
		}
	}
	tile.Classify(pts)
	return tile
}

// BuildRaw samples the raster over the same tile rectangle into a flat,
// row-major rawSize x rawSize float32 grid for the hillshade adapter's raw
// tile input. Samples outside the raster's coverage are written as
// hillshade.MissingValue so an out-of-coverage tile contributes no stale
// shading.
func BuildRaw(s *Source, tx, ty int64, lod, rawSize int, missingValue float32) ([]float32, error) {
	quad := quadtree.TileCoordToQuadkey(tx, ty, lod)
	x0, y0, x1, y1, err := quadtree.QuadkeyToMercatorCoord(quad)
	if err != nil {
		return nil, fmt.Errorf("ingest: tile rectangle: %w", err)
	}
	return buildRawFromSampler(x0, y0, x1, y1, rawSize, missingValue, func(x, y float64) (float32, bool) {
		return s.sample(x, y)
	}), nil
}

// buildRawFromSampler is BuildRaw's raster-independent core.
func buildRawFromSampler(x0, y0, x1, y1 float64, rawSize int, missingValue float32, sampleFn func(x, y float64) (float32, bool)) []float32 {
	if rawSize < 2 {
		rawSize = DefaultRawSize
	}
	out := make([]float32, rawSize*rawSize)
	for row := 0; row < rawSize; row++ {
		v := (float64(row) + 0.5) / float64(rawSize)
		y := y1 - v*(y1-y0) // row 0 = north edge
		for col := 0; col < rawSize; col++ {
			u := (float64(col) + 0.5) / float64(rawSize)
			x := x0 + u*(x1-x0)
			if elev, ok := sampleFn(x, y); ok {
				out[row*rawSize+col] = elev
			} else {
				out[row*rawSize+col] = missingValue
			}
		}
	}
	return out
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

func mini64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

func maxi64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
