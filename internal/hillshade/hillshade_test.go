package hillshade

import (
	"fmt"
	"os"
	"testing"
)

func fullBlock(v float32) []float32 {
	buf := make([]float32, subBlock*subBlock)
	for i := range buf {
		buf[i] = v
	}
	return buf
}

func TestBuildNeighborhood_MissingNeighborsStaySentinel(t *testing.T) {
	load := func(lod int, tx, ty int64) ([]float32, error) {
		if tx == 2 && ty == 2 {
			return fullBlock(100), nil
		}
		return nil, fmt.Errorf("raw tile %d/%d/%d: %w", lod, tx, ty, os.ErrNotExist)
	}

	n, err := BuildNeighborhood(load, 4, 4, 2, 2)
	if err != nil {
		t.Fatalf("BuildNeighborhood: %v", err)
	}
	if len(n.Data) != InputSize*InputSize {
		t.Fatalf("got buffer len %d, want %d", len(n.Data), InputSize*InputSize)
	}

	// Center sub-block (the tile itself) should be 100.
	centerIdx := subBlock*InputSize + subBlock
	if n.Data[centerIdx] != 100 {
		t.Fatalf("center value = %v, want 100", n.Data[centerIdx])
	}
	// Corner of the buffer belongs to a missing neighbor.
	if n.Data[0] != MissingValue {
		t.Fatalf("missing-neighbor value = %v, want %v", n.Data[0], MissingValue)
	}
}

func TestBuildNeighborhood_ShortRawFileDoesNotLeaveStaleData(t *testing.T) {
	short := make([]float32, 10) // far short of a full 256x256 block
	for i := range short {
		short[i] = 42
	}
	load := func(lod int, tx, ty int64) ([]float32, error) {
		if tx == 1 && ty == 1 {
			return short, nil
		}
		return nil, os.ErrNotExist
	}

	n, err := BuildNeighborhood(load, 4, 4, 1, 1)
	if err != nil {
		t.Fatalf("BuildNeighborhood: %v", err)
	}
	// Row 0 of the center block, beyond the 10 supplied values, must be the
	// sentinel rather than leftover buffer contents.
	centerRowStart := subBlock*InputSize + subBlock
	if n.Data[centerRowStart+20] != MissingValue {
		t.Fatalf("position beyond short tile data = %v, want sentinel %v", n.Data[centerRowStart+20], MissingValue)
	}
	if n.Data[centerRowStart+5] != 42 {
		t.Fatalf("position within short tile data = %v, want 42", n.Data[centerRowStart+5])
	}
}
