package ingest

import (
	"testing"

	"github.com/globequad/globequad/internal/quadtree"
)

func TestClip_Overlapping(t *testing.T) {
	a := quadtree.Extent{TX0: 0, TY0: 0, TX1: 10, TY1: 10}
	b := quadtree.Extent{TX0: 5, TY0: 5, TX1: 15, TY1: 15}
	got, ok := Clip(a, b)
	if !ok {
		t.Fatalf("expected overlap")
	}
	want := quadtree.Extent{TX0: 5, TY0: 5, TX1: 10, TY1: 10}
	if got != want {
		t.Fatalf("got %+v want %+v", got, want)
	}
}

func TestClip_Disjoint(t *testing.T) {
	a := quadtree.Extent{TX0: 0, TY0: 0, TX1: 1, TY1: 1}
	b := quadtree.Extent{TX0: 5, TY0: 5, TX1: 6, TY1: 6}
	if _, ok := Clip(a, b); ok {
		t.Fatalf("expected no overlap")
	}
}

func TestBuildTileFromSampler_PlaneElevationClassifiesCleanly(t *testing.T) {
	plane := func(x, y float64) (float32, bool) {
		return float32(x + y), true
	}
	tile := buildTileFromSampler(0, 0, 100, 100, 5, plane)

	if tile.NW.Elevation != 100 || tile.SE.Elevation != 100 || tile.SW.Elevation != 0 || tile.NE.Elevation != 200 {
		t.Fatalf("unexpected corner elevations: NW=%v NE=%v SE=%v SW=%v", tile.NW.Elevation, tile.NE.Elevation, tile.SE.Elevation, tile.SW.Elevation)
	}
	if len(tile.North) != 3 || len(tile.East) != 3 || len(tile.South) != 3 || len(tile.West) != 3 {
		t.Fatalf("expected 3 edge points per side for a 5x5 grid, got N=%d E=%d S=%d W=%d",
			len(tile.North), len(tile.East), len(tile.South), len(tile.West))
	}
	if len(tile.Middle) != 9 {
		t.Fatalf("expected 9 interior points for a 5x5 grid, got %d", len(tile.Middle))
	}
	for _, p := range tile.Middle {
		if p.Weight < 0 {
			t.Fatalf("interior point kept mandatory weight: %+v", p)
		}
	}
}

func TestBuildTileFromSampler_UncoveredSamplesStayZero(t *testing.T) {
	none := func(x, y float64) (float32, bool) { return 0, false }
	tile := buildTileFromSampler(0, 0, 10, 10, 3, none)
	if tile.NW.Elevation != 0 {
		t.Fatalf("expected zero elevation for uncovered sample, got %v", tile.NW.Elevation)
	}
	if tile.NumPoints() != 9 {
		t.Fatalf("expected all 9 grid points still classified, got %d", tile.NumPoints())
	}
}

func TestBuildRawFromSampler_MissingValueFillsUncoveredSamples(t *testing.T) {
	half := func(x, y float64) (float32, bool) {
		return 0, x < 5
	}
	raw := buildRawFromSampler(0, 0, 10, 10, 4, -9999, half)
	if len(raw) != 16 {
		t.Fatalf("expected 16 samples, got %d", len(raw))
	}
	var missing int
	for _, v := range raw {
		if v == -9999 {
			missing++
		}
	}
	if missing == 0 || missing == len(raw) {
		t.Fatalf("expected a partial mix of missing samples, got %d/%d", missing, len(raw))
	}
}

func TestBuildRawFromSampler_DefaultSizeOnInvalidInput(t *testing.T) {
	flat := func(x, y float64) (float32, bool) { return 1, true }
	raw := buildRawFromSampler(0, 0, 1, 1, 0, 0, flat)
	if len(raw) != DefaultRawSize*DefaultRawSize {
		t.Fatalf("expected default raw size to apply, got %d samples", len(raw))
	}
}
