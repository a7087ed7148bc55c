// Command process drives the distributed hillshade pipeline: in
// -generatejobs mode it enumerates a quadtree extent and stages one job per
// tile; otherwise it repeatedly fetches batches from the job queue and
// dispatches them across a worker pool until the queue is drained.
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"

	"github.com/globequad/globequad/internal/driver"
	"github.com/globequad/globequad/internal/encode"
	"github.com/globequad/globequad/internal/hillshade"
	"github.com/globequad/globequad/internal/ogerr"
	"github.com/globequad/globequad/internal/quadtree"
)

func main() {
	var (
		layerName      string
		queuePath      string
		minLOD         int
		maxLOD         int
		layerLOD       int
		generateJobs   bool
		numThreads     int
		amount         int
		zDepth         float64
		azimuth        float64
		altitude       float64
		scale          float64
		slopeScale     float64
		processBorders bool
		noOverride     bool
		colored        bool
		textured       bool
		jpg            bool
		verbose        bool
		tempTileDir    string
		tileDir        string
	)

	flag.StringVar(&layerName, "layername", "", "name of the layer to process")
	flag.StringVar(&queuePath, "queue", "", "job queue file path")
	flag.IntVar(&minLOD, "minlod", -1, "minimum LOD (generate mode)")
	flag.IntVar(&maxLOD, "maxlod", -1, "maximum LOD (generate mode)")
	flag.IntVar(&layerLOD, "layerlod", -1, "native raster LOD raw tiles are stored at (default: the job's own LOD)")
	flag.BoolVar(&generateJobs, "generatejobs", false, "create a job queue instead of consuming one")
	flag.IntVar(&numThreads, "numthreads", 1, "force number of worker threads")
	flag.IntVar(&amount, "amount", 64, "jobs fetched per batch")
	flag.Float64Var(&zDepth, "zdepth", 1, "hillshading z factor")
	flag.Float64Var(&azimuth, "azimut", 315, "hillshading azimuth")
	flag.Float64Var(&altitude, "altitude", 45, "hillshading altitude")
	flag.Float64Var(&scale, "scale", 1, "hillshading scale")
	flag.Float64Var(&slopeScale, "slopescale", 1, "slope scale")
	flag.BoolVar(&processBorders, "processborders", false, "process border tiles")
	flag.BoolVar(&noOverride, "nooverride", false, "disable overriding existing tiles")
	flag.BoolVar(&colored, "colored", false, "color the heights")
	flag.BoolVar(&textured, "textured", false, "generic textured heights")
	flag.BoolVar(&jpg, "jpg", false, "save JPEG (quality 78) instead of PNG")
	flag.BoolVar(&verbose, "verbose", false, "verbose output")
	flag.StringVar(&tempTileDir, "temptiledir", "", "directory holding raw elevation tiles")
	flag.StringVar(&tileDir, "tiledir", "", "output directory for hillshade tiles")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: process -layername NAME -queue PATH [flags]\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	hostname, _ := os.Hostname()
	log.SetPrefix("[" + hostname + "] ")

	if layerName == "" || queuePath == "" {
		flag.Usage()
		os.Exit(ogerr.ExitCode(ogerr.ErrBadParams))
	}

	var err error
	if generateJobs {
		err = runGenerate(queuePath, minLOD, maxLOD, processBorders, verbose)
	} else {
		format := "png"
		quality := 78
		if jpg {
			format = "jpeg"
		}
		enc, encErr := encode.NewEncoder(format, quality)
		if encErr != nil {
			log.Fatalf("process: building encoder: %v", encErr)
		}
		err = runConsume(consumeParams{
			queuePath:   queuePath,
			amount:      amount,
			numThreads:  numThreads,
			layerLOD:    layerLOD,
			tempTileDir: tempTileDir,
			tileDir:     tileDir,
			noOverride:  noOverride,
			encoder:     enc,
			extension:   enc.FileExtension(),
			lighting: hillshade.LightingParams{
				Azimuth:    azimuth,
				Altitude:   altitude,
				ZDepth:     zDepth,
				Scale:      scale,
				SlopeScale: slopeScale,
				Colored:    colored,
				Textured:   textured,
			},
			verbose: verbose,
		})
	}
	if err != nil {
		log.Printf("process: %v", err)
		os.Exit(ogerr.ExitCode(err))
	}
}

func runGenerate(queuePath string, minLOD, maxLOD int, processBorders, verbose bool) error {
	if minLOD < 0 || maxLOD < minLOD {
		return fmt.Errorf("%w: minlod/maxlod must be set with minlod<=maxlod", ogerr.ErrBadParams)
	}
	side := int64(1) << uint(minLOD)
	extent := quadtree.Extent{TX0: 0, TY0: 0, TX1: side - 1, TY1: side - 1}
	if err := quadtree.CheckExtentSize(extent, processBorders); err != nil {
		return err
	}
	n, err := driver.Generate(driver.GenerateConfig{
		QueuePath:  queuePath,
		Codec:      jobCodec{},
		MinLOD:     minLOD,
		MaxLOD:     maxLOD,
		Extent:     extent,
		ExcludeRim: !processBorders,
	})
	if err != nil {
		return err
	}
	if verbose {
		log.Printf("generated %d jobs across lod %d..%d", n, minLOD, maxLOD)
	}
	return nil
}

type consumeParams struct {
	queuePath               string
	amount, numThreads      int
	layerLOD                int
	tempTileDir, tileDir    string
	noOverride              bool
	encoder                 encode.Encoder
	extension               string
	lighting                hillshade.LightingParams
	verbose                 bool
}

func runConsume(p consumeParams) error {
	load := rawTileLoader(p.tempTileDir)
	kernel := hillshade.ClassicKernel{}

	stats, err := driver.Consume(driver.ConsumeConfig{
		QueuePath:  p.queuePath,
		Codec:      jobCodec{},
		Amount:     p.amount,
		NumThreads: p.numThreads,
		Verbose:    p.verbose,
		Work: func(job driver.Job) error {
			return processJob(job, p, load, kernel)
		},
	})
	if err != nil {
		return err
	}
	log.Printf("processed %d jobs (%d failed) across %d batches", stats.Processed, stats.Failed, stats.Batches)
	return nil
}

func processJob(job driver.Job, p consumeParams, load hillshade.RawTileLoader, kernel hillshade.ClassicKernel) error {
	outPath := outputTilePath(p.tileDir, job.LOD, job.TX, job.TY, p.extension)
	if p.noOverride {
		if _, err := os.Stat(outPath); err == nil {
			return nil
		}
	}

	layerLOD := p.layerLOD
	if layerLOD < 0 {
		layerLOD = job.LOD
	}
	n, err := hillshade.BuildNeighborhood(load, job.LOD, layerLOD, job.TX, job.TY)
	if err != nil {
		return err
	}

	img, err := kernel.Shade(n, p.lighting)
	if err != nil {
		return fmt.Errorf("shade tile lod=%d tx=%d ty=%d: %w", job.LOD, job.TX, job.TY, err)
	}
	data, err := p.encoder.Encode(img)
	if err != nil {
		return fmt.Errorf("%w: encode tile: %v", ogerr.ErrIoFailure, err)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("%w: mkdir %s: %v", ogerr.ErrIoFailure, filepath.Dir(outPath), err)
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return fmt.Errorf("%w: write %s: %v", ogerr.ErrIoFailure, outPath, err)
	}
	return nil
}

// rawTileLoader reads a little-endian float32 raster from
// dir/<lod>/<tx>/<ty>.raw, the same layout the raster-ingest side
// (cmd/adddata) writes under tempTileDir.
func rawTileLoader(dir string) hillshade.RawTileLoader {
	return func(lod int, tx, ty int64) ([]float32, error) {
		path := rawTilePath(dir, lod, tx, ty)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		out := make([]float32, len(data)/4)
		for i := range out {
			bits := binary.LittleEndian.Uint32(data[i*4:])
			out[i] = math.Float32frombits(bits)
		}
		return out, nil
	}
}

func rawTilePath(dir string, lod int, tx, ty int64) string {
	return filepath.Join(dir, fmt.Sprintf("%d", lod), fmt.Sprintf("%d", tx), fmt.Sprintf("%d.raw", ty))
}

func outputTilePath(dir string, lod int, tx, ty int64, ext string) string {
	return filepath.Join(dir, fmt.Sprintf("%d", lod), fmt.Sprintf("%d", tx), fmt.Sprintf("%d%s", ty, ext))
}
