// Command adddata resamples one source raster into a tile layer: every tile
// the raster overlaps gets a classified elevation-tile binary (for the mesh
// pipeline) and a flat raw float32 tile (for the hillshade pipeline), both
// under the layer's tile directory tree.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/globequad/globequad/internal/hillshade"
	"github.com/globequad/globequad/internal/ingest"
	"github.com/globequad/globequad/internal/ogerr"
	"github.com/globequad/globequad/internal/quadtree"
)

func main() {
	var (
		imagePath  string
		srs        string
		layer      string
		fill       bool
		overwrite  bool
		numThreads int
		maxLOD     int
		tileDir    string
		rawDir     string
		gridSize   int
		verbose    bool
	)

	flag.StringVar(&imagePath, "image", "", "path to the source elevation raster (GeoTIFF)")
	flag.StringVar(&srs, "srs", "", "spatial reference system of the source raster, e.g. EPSG:4326")
	flag.StringVar(&layer, "layer", "", "name of the layer to add the data to")
	flag.BoolVar(&fill, "fill", false, "fill empty tiles only, don't overwrite already existing data")
	flag.BoolVar(&overwrite, "overwrite", false, "overwrite existing tiles")
	flag.IntVar(&numThreads, "numthreads", 1, "force number of worker threads")
	flag.IntVar(&maxLOD, "maxlod", 0, "maximum level of detail for the layer's tile pyramid")
	flag.StringVar(&tileDir, "tiledir", "", "output directory for classified elevation tiles (<lod>/<tx>/<ty>.bin)")
	flag.StringVar(&rawDir, "rawdir", "", "output directory for raw float32 tiles consumed by the hillshade pipeline (<lod>/<tx>/<ty>.raw)")
	flag.IntVar(&gridSize, "gridsize", ingest.DefaultGridSize, "sample grid resolution per tile axis for elevation-tile classification")
	flag.BoolVar(&verbose, "verbose", false, "verbose output")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: adddata -image FILE -srs EPSG:NNNN -layer NAME {-fill|-overwrite} -tiledir DIR -rawdir DIR [flags]\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	hostname, _ := os.Hostname()
	log.SetPrefix("[" + hostname + "] ")

	if err := run(config{
		imagePath:  imagePath,
		srs:        srs,
		layer:      layer,
		fill:       fill,
		overwrite:  overwrite,
		numThreads: numThreads,
		maxLOD:     maxLOD,
		tileDir:    tileDir,
		rawDir:     rawDir,
		gridSize:   gridSize,
		verbose:    verbose,
	}); err != nil {
		log.Printf("adddata: %v", err)
		os.Exit(ogerr.ExitCode(err))
	}
}

type config struct {
	imagePath, srs, layer string
	fill, overwrite       bool
	numThreads            int
	maxLOD                int
	tileDir, rawDir       string
	gridSize              int
	verbose               bool
}

func validate(cfg config) error {
	if cfg.imagePath == "" || cfg.srs == "" || cfg.layer == "" {
		return fmt.Errorf("%w: -image, -srs and -layer are required", ogerr.ErrBadParams)
	}
	if cfg.fill == cfg.overwrite {
		return fmt.Errorf("%w: specify exactly one of -fill or -overwrite", ogerr.ErrBadParams)
	}
	if cfg.maxLOD <= 0 {
		return fmt.Errorf("%w: -maxlod must be positive", ogerr.ErrBadParams)
	}
	if cfg.tileDir == "" || cfg.rawDir == "" {
		return fmt.Errorf("%w: -tiledir and -rawdir are required", ogerr.ErrBadParams)
	}
	return nil
}

func parseEPSG(srs string) (int, error) {
	if !strings.HasPrefix(srs, "EPSG:") {
		return 0, fmt.Errorf("%w: only srs starting with EPSG: are supported, got %q", ogerr.ErrMissingCrsData, srs)
	}
	epsg, err := strconv.Atoi(srs[len("EPSG:"):])
	if err != nil {
		return 0, fmt.Errorf("%w: invalid EPSG code in %q", ogerr.ErrMissingCrsData, srs)
	}
	return epsg, nil
}

func run(cfg config) error {
	if err := validate(cfg); err != nil {
		return err
	}
	if cfg.numThreads > 0 && cfg.numThreads < 65 && cfg.verbose {
		log.Printf("adddata: forcing number of threads to %d", cfg.numThreads)
	}

	epsg, err := parseEPSG(cfg.srs)
	if err != nil {
		return err
	}

	src, err := ingest.Open(cfg.imagePath, epsg)
	if err != nil {
		return err
	}
	defer src.Close()

	rasterExtent := src.TileExtent(cfg.maxLOD)
	side := int64(1) << uint(cfg.maxLOD)
	layerExtent := quadtree.Extent{TX0: 0, TY0: 0, TX1: side - 1, TY1: side - 1}

	extent, ok := ingest.Clip(rasterExtent, layerExtent)
	if !ok {
		log.Printf("adddata: %s lies outside the layer %q extent, nothing to add", cfg.imagePath, cfg.layer)
		return nil
	}

	if cfg.verbose {
		log.Printf("adddata: layer %q maxlod=%d tiles=(%d,%d)-(%d,%d)",
			cfg.layer, cfg.maxLOD, extent.TX0, extent.TY0, extent.TX1, extent.TY1)
	}

	type job struct{ tx, ty int64 }
	var jobs []job
	for tx := extent.TX0; tx <= extent.TX1; tx++ {
		for ty := extent.TY0; ty <= extent.TY1; ty++ {
			jobs = append(jobs, job{tx, ty})
		}
	}

	threads := cfg.numThreads
	if threads <= 0 {
		threads = 1
	}

	jobCh := make(chan job, len(jobs))
	for _, j := range jobs {
		jobCh <- j
	}
	close(jobCh)

	var added, skipped, failed atomic.Int64
	var wg sync.WaitGroup
	for w := 0; w < threads; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobCh {
				switch processTile(cfg, src, j.tx, j.ty) {
				case tileAdded:
					added.Add(1)
				case tileSkipped:
					skipped.Add(1)
				case tileFailed:
					failed.Add(1)
				}
			}
		}()
	}
	wg.Wait()

	log.Printf("adddata: %d tiles added, %d skipped, %d failed", added.Load(), skipped.Load(), failed.Load())
	if failed.Load() > 0 {
		return fmt.Errorf("%w: %d tile(s) failed to ingest", ogerr.ErrLoadElevation, failed.Load())
	}
	return nil
}

type tileOutcome int

const (
	tileAdded tileOutcome = iota
	tileSkipped
	tileFailed
)

func processTile(cfg config, src *ingest.Source, tx, ty int64) tileOutcome {
	quad := quadtree.TileCoordToQuadkey(tx, ty, cfg.maxLOD)
	binPath := tilePath(cfg.tileDir, cfg.maxLOD, tx, ty, ".bin")
	rawPath := tilePath(cfg.rawDir, cfg.maxLOD, tx, ty, ".raw")

	if cfg.fill {
		if _, err := os.Stat(binPath); err == nil {
			if cfg.verbose {
				log.Printf("adddata: %s (%d,%d) already exists, skipping (fill mode)", quad, tx, ty)
			}
			return tileSkipped
		}
	}

	if cfg.verbose {
		x0, y0, x1, y1, _ := quadtree.QuadkeyToMercatorCoord(quad)
		log.Printf("adddata: processing %s (%d,%d) anchors SW(%.1f,%.1f) NE(%.1f,%.1f)", quad, tx, ty, x0, y0, x1, y1)
	}

	tile, err := ingest.BuildTile(src, tx, ty, cfg.maxLOD, cfg.gridSize)
	if err != nil {
		log.Printf("adddata: %s (%d,%d): %v", quad, tx, ty, err)
		return tileFailed
	}
	if err := os.MkdirAll(filepath.Dir(binPath), 0o755); err != nil {
		log.Printf("adddata: mkdir %s: %v", filepath.Dir(binPath), err)
		return tileFailed
	}
	if err := tile.WriteBinary(binPath); err != nil {
		log.Printf("adddata: write %s: %v", binPath, err)
		return tileFailed
	}

	raw, err := ingest.BuildRaw(src, tx, ty, cfg.maxLOD, ingest.DefaultRawSize, hillshade.MissingValue)
	if err != nil {
		log.Printf("adddata: %s (%d,%d): %v", quad, tx, ty, err)
		return tileFailed
	}
	if err := os.MkdirAll(filepath.Dir(rawPath), 0o755); err != nil {
		log.Printf("adddata: mkdir %s: %v", filepath.Dir(rawPath), err)
		return tileFailed
	}
	if err := writeRawTile(rawPath, raw); err != nil {
		log.Printf("adddata: write %s: %v", rawPath, err)
		return tileFailed
	}

	return tileAdded
}

func tilePath(dir string, lod int, tx, ty int64, ext string) string {
	return filepath.Join(dir, fmt.Sprintf("%d", lod), fmt.Sprintf("%d", tx), fmt.Sprintf("%d%s", ty, ext))
}
