// Package driver runs the two-mode distributed pipeline driver: Generate
// walks a quadtree extent and enqueues one job per tile; Consume repeatedly
// fetches bounded batches from the job queue and dispatches them across a
// worker pool until a short batch signals the queue is drained.
package driver

import (
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"github.com/globequad/globequad/internal/coord"
	"github.com/globequad/globequad/internal/jobqueue"
	"github.com/globequad/globequad/internal/quadtree"
)

// Job is one unit of per-tile work a Consume worker executes.
type Job struct {
	LOD    int
	TX, TY int64
}

// RecordCodec encodes/decodes Job to/from the fixed-size records the job
// queue persists.
type RecordCodec interface {
	RecordSize() int
	Encode(Job) jobqueue.Record
	Decode(jobqueue.Record) Job
}

// GenerateConfig describes one Generate invocation.
type GenerateConfig struct {
	QueuePath  string
	Codec      RecordCodec
	MinLOD     int
	MaxLOD     int
	Extent     quadtree.Extent // extent at MinLOD; propagated per level via quadtree.PropagateExtent
	ExcludeRim bool            // skip the 1-tile border at each level, if true
}

// Generate enumerates every tile in cfg.Extent across [MinLOD,MaxLOD],
// staging one job per tile (Hilbert-ordered, for locality across consumers)
// and committing once per level.
func Generate(cfg GenerateConfig) (int, error) {
	total := 0
	extent := cfg.Extent
	for lod := cfg.MinLOD; lod <= cfg.MaxLOD; lod++ {
		q := jobqueue.New(cfg.QueuePath)
		x0, y0, x1, y1 := extent.TX0, extent.TY0, extent.TX1, extent.TY1
		if cfg.ExcludeRim {
			x0++
			y0++
			x1--
			y1--
		}
		tiles := make([][3]int, 0, (x1-x0+1)*(y1-y0+1))
		for tx := x0; tx <= x1; tx++ {
			for ty := y0; ty <= y1; ty++ {
				tiles = append(tiles, [3]int{lod, int(tx), int(ty)})
			}
		}
		coord.SortTilesByHilbert(tiles)
		for _, t := range tiles {
			q.Add(cfg.Codec.Encode(Job{LOD: t[0], TX: int64(t[1]), TY: int64(t[2])}), true)
			total++
		}
		if err := q.Commit(); err != nil {
			return total, fmt.Errorf("commit generate batch at lod %d: %w", lod, err)
		}
		if lod < cfg.MaxLOD {
			extent = quadtree.PropagateExtent(extent, lod, lod+1)
		}
	}
	return total, nil
}

// ConsumeConfig describes one Consume invocation.
type ConsumeConfig struct {
	QueuePath  string
	Codec      RecordCodec
	Amount     int
	NumThreads int
	Verbose    bool
	Work       func(Job) error
}

// ConsumeStats summarizes one Consume run.
type ConsumeStats struct {
	Processed int
	Failed    int
	Batches   int
}

// Consume loops fetching up to cfg.Amount jobs and dispatching them across
// cfg.NumThreads workers, until a fetch returns fewer than cfg.Amount jobs
// (that final partial batch is still processed before returning).
func Consume(cfg ConsumeConfig) (ConsumeStats, error) {
	var stats ConsumeStats
	for {
		batch, err := jobqueue.Fetch(cfg.QueuePath, cfg.Codec.RecordSize(), cfg.Amount, cfg.Verbose)
		if err != nil {
			return stats, fmt.Errorf("fetch job batch: %w", err)
		}
		if len(batch) == 0 {
			return stats, nil
		}
		stats.Batches++

		var processed, failed atomic.Int64
		jobs := make(chan Job, len(batch))
		for _, rec := range batch {
			jobs <- cfg.Codec.Decode(rec)
		}
		close(jobs)

		numWorkers := cfg.NumThreads
		if numWorkers <= 0 {
			numWorkers = 1
		}
		var wg sync.WaitGroup
		for w := 0; w < numWorkers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for job := range jobs {
					if err := cfg.Work(job); err != nil {
						failed.Add(1)
						log.Printf("driver: job lod=%d tx=%d ty=%d failed: %v", job.LOD, job.TX, job.TY, err)
						continue
					}
					processed.Add(1)
				}
			}()
		}
		wg.Wait()

		stats.Processed += int(processed.Load())
		stats.Failed += int(failed.Load())

		if len(batch) < cfg.Amount {
			return stats, nil
		}
	}
}
