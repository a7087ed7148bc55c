package main

import (
	"github.com/globequad/globequad/internal/driver"
	"github.com/globequad/globequad/internal/jobqueue"
)

// jobCodec encodes a driver.Job as a fixed 16-byte record: lod, tx, ty each
// as a little-endian uint32 (tx/ty truncate from int64; tile coordinates at
// any LOD this pipeline processes fit comfortably within 32 bits) plus 4
// bytes of padding to keep the record size a round 16 bytes.
type jobCodec struct{}

func (jobCodec) RecordSize() int { return 16 }

func (jobCodec) Encode(j driver.Job) jobqueue.Record {
	r := make(jobqueue.Record, 16)
	jobqueue.PutUint32(r[0:4], uint32(j.LOD))
	jobqueue.PutUint32(r[4:8], uint32(j.TX))
	jobqueue.PutUint32(r[8:12], uint32(j.TY))
	return r
}

func (jobCodec) Decode(r jobqueue.Record) driver.Job {
	return driver.Job{
		LOD: int(jobqueue.Uint32(r[0:4])),
		TX:  int64(jobqueue.Uint32(r[4:8])),
		TY:  int64(jobqueue.Uint32(r[8:12])),
	}
}
