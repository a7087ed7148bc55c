package main

import (
	"bufio"
	"encoding/binary"
	"math"
	"os"
)

// writeRawTile persists a flat row-major float32 grid as little-endian
// bytes, the format cmd/process's rawTileLoader reads back.
func writeRawTile(path string, data []float32) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	buf := make([]byte, 4)
	for _, v := range data {
		binary.LittleEndian.PutUint32(buf, math.Float32bits(v))
		if _, err := w.Write(buf); err != nil {
			return err
		}
	}
	return w.Flush()
}
