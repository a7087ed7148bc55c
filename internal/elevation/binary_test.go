package elevation

import (
	"path/filepath"
	"testing"
)

func TestWriteReadBinary_RoundTrip(t *testing.T) {
	tile := NewTile(0, 0, 1, 1)
	tile.North = []Point{{X: 0.25, Y: 1, Elevation: 10, Weight: WeightEdge}, {X: 0.75, Y: 1, Elevation: 12, Weight: WeightEdge}}
	tile.East = []Point{{X: 1, Y: 0.5, Elevation: 20, Weight: WeightEdge}}
	tile.Middle = []Point{{X: 0.5, Y: 0.5, Elevation: 200, Weight: 0}}
	tile.Categorized = true

	path := filepath.Join(t.TempDir(), "tile.bin")
	if err := tile.WriteBinary(path); err != nil {
		t.Fatalf("WriteBinary: %v", err)
	}

	got, err := ReadTile(path)
	if err != nil {
		t.Fatalf("ReadTile: %v", err)
	}
	if !got.Categorized {
		t.Fatal("loaded tile must be categorized")
	}
	if got.X0 != tile.X0 || got.Y0 != tile.Y0 || got.X1 != tile.X1 || got.Y1 != tile.Y1 {
		t.Fatalf("rectangle mismatch: got %+v, want %+v", got, tile)
	}
	if got.NW != tile.NW || got.NE != tile.NE || got.SE != tile.SE || got.SW != tile.SW {
		t.Fatalf("corner mismatch: got NW=%+v NE=%+v SE=%+v SW=%+v", got.NW, got.NE, got.SE, got.SW)
	}
	if len(got.North) != 2 || got.North[0] != tile.North[0] || got.North[1] != tile.North[1] {
		t.Fatalf("north edge mismatch: got %+v, want %+v", got.North, tile.North)
	}
	if len(got.East) != 1 || got.East[0] != tile.East[0] {
		t.Fatalf("east edge mismatch: got %+v, want %+v", got.East, tile.East)
	}
	if len(got.Middle) != 1 || got.Middle[0] != tile.Middle[0] {
		t.Fatalf("middle mismatch: got %+v, want %+v", got.Middle, tile.Middle)
	}
	for _, p := range got.AllPoints() {
		if p.Error != 0 {
			t.Fatalf("error field must read back as zero, got %v", p.Error)
		}
	}
}

func TestWriteReadBinary_EmptyEdges(t *testing.T) {
	tile := NewTile(-1, -1, 1, 1)
	tile.Categorized = true

	path := filepath.Join(t.TempDir(), "empty.bin")
	if err := tile.WriteBinary(path); err != nil {
		t.Fatalf("WriteBinary: %v", err)
	}
	got, err := ReadTile(path)
	if err != nil {
		t.Fatalf("ReadTile: %v", err)
	}
	if len(got.North) != 0 || len(got.East) != 0 || len(got.South) != 0 || len(got.West) != 0 || len(got.Middle) != 0 {
		t.Fatalf("expected all sections empty, got N=%d E=%d S=%d W=%d M=%d",
			len(got.North), len(got.East), len(got.South), len(got.West), len(got.Middle))
	}
}

func TestCreateFromParent_AfterRoundTrip(t *testing.T) {
	north := []Point{{X: 0.25, Y: 1, Elevation: 5, Weight: WeightEdge}, {X: 0.5, Y: 1, Elevation: 6, Weight: WeightEdge}, {X: 0.75, Y: 1, Elevation: 7, Weight: WeightEdge}}
	nw := NewTile(0, 0, 1, 1)
	nw.North = north
	nw.Categorized = true

	path := filepath.Join(t.TempDir(), "nw.bin")
	if err := nw.WriteBinary(path); err != nil {
		t.Fatalf("WriteBinary: %v", err)
	}
	loaded, err := ReadTile(path)
	if err != nil {
		t.Fatalf("ReadTile: %v", err)
	}

	ne := NewTile(1, 0, 2, 1)
	sw := NewTile(0, -1, 1, 0)
	se := NewTile(1, -1, 2, 0)
	parent := CreateFromParent(loaded, ne, sw, se)
	if len(parent.North) != 3 {
		t.Fatalf("got %d north points, want 3", len(parent.North))
	}
	for i, p := range parent.North {
		if p != north[i] {
			t.Fatalf("north[%d] = %+v, want %+v", i, p, north[i])
		}
	}
}
