package driver

import (
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/globequad/globequad/internal/jobqueue"
	"github.com/globequad/globequad/internal/quadtree"
)

type fixedCodec struct{}

func (fixedCodec) RecordSize() int { return 20 }

func (fixedCodec) Encode(j Job) jobqueue.Record {
	r := make(jobqueue.Record, 20)
	jobqueue.PutUint32(r[0:4], uint32(j.LOD))
	jobqueue.PutUint32(r[4:8], uint32(j.TX))
	jobqueue.PutUint32(r[8:12], uint32(j.TY))
	return r
}

func (fixedCodec) Decode(r jobqueue.Record) Job {
	return Job{
		LOD: int(jobqueue.Uint32(r[0:4])),
		TX:  int64(jobqueue.Uint32(r[4:8])),
		TY:  int64(jobqueue.Uint32(r[8:12])),
	}
}

func TestGenerate_EnqueuesEveryTileInExtent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.bin")
	cfg := GenerateConfig{
		QueuePath: path,
		Codec:     fixedCodec{},
		MinLOD:    3,
		MaxLOD:    3,
		Extent:    quadtree.Extent{TX0: 1, TY0: 1, TX1: 3, TY1: 3},
	}
	n, err := Generate(cfg)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if n != 9 {
		t.Fatalf("got %d jobs, want 9", n)
	}

	batch, err := jobqueue.Fetch(path, cfg.Codec.RecordSize(), 100, false)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(batch) != 9 {
		t.Fatalf("got %d records, want 9", len(batch))
	}
}

func TestConsume_ProcessesEveryJobUntilShortBatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.bin")
	cfg := GenerateConfig{
		QueuePath: path,
		Codec:     fixedCodec{},
		MinLOD:    2,
		MaxLOD:    2,
		Extent:    quadtree.Extent{TX0: 0, TY0: 0, TX1: 3, TY1: 2}, // 4x3 = 12 tiles
	}
	if _, err := Generate(cfg); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	var count atomic.Int64
	stats, err := Consume(ConsumeConfig{
		QueuePath:  path,
		Codec:      fixedCodec{},
		Amount:     5,
		NumThreads: 3,
		Work: func(Job) error {
			count.Add(1)
			return nil
		},
	})
	if err != nil {
		t.Fatalf("Consume: %v", err)
	}
	if stats.Processed != 12 {
		t.Fatalf("got %d processed, want 12", stats.Processed)
	}
	if count.Load() != 12 {
		t.Fatalf("work func ran %d times, want 12", count.Load())
	}
}

func TestConsume_CountsFailures(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.bin")
	cfg := GenerateConfig{
		QueuePath: path,
		Codec:     fixedCodec{},
		MinLOD:    1,
		MaxLOD:    1,
		Extent:    quadtree.Extent{TX0: 0, TY0: 0, TX1: 1, TY1: 1},
	}
	if _, err := Generate(cfg); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	stats, err := Consume(ConsumeConfig{
		QueuePath:  path,
		Codec:      fixedCodec{},
		Amount:     10,
		NumThreads: 2,
		Work: func(j Job) error {
			if j.TX == 0 && j.TY == 0 {
				return errBoom
			}
			return nil
		},
	})
	if err != nil {
		t.Fatalf("Consume: %v", err)
	}
	if stats.Failed != 1 || stats.Processed != 3 {
		t.Fatalf("got processed=%d failed=%d, want processed=3 failed=1", stats.Processed, stats.Failed)
	}
}

var errBoom = &testError{"boom"}

type testError struct{ msg string }

func (e *testError) Error() string { return e.msg }
