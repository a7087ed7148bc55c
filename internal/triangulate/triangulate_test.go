package triangulate

import (
	"testing"
)

func square() *Engine {
	e := New(0, 0, 1, 1)
	e.InsertAll([]Point{
		{X: 0, Y: 0, Elevation: 100, Weight: -3},
		{X: 1, Y: 0, Elevation: 100, Weight: -3},
		{X: 1, Y: 1, Elevation: 100, Weight: -3},
		{X: 0, Y: 1, Elevation: 100, Weight: -3},
	})
	return e
}

func TestTriangles_Square(t *testing.T) {
	e := square()
	tris := e.Triangles()
	if len(tris) != 2 {
		t.Fatalf("got %d triangles, want 2", len(tris))
	}
	for _, tri := range tris {
		for _, idx := range tri {
			if idx < 0 || idx >= 4 {
				t.Fatalf("triangle index %d out of range for 4 points", idx)
			}
		}
	}
}

func TestTriangles_WithMiddlePoint(t *testing.T) {
	e := square()
	e.Insert(Point{X: 0.5, Y: 0.5, Elevation: 200, Weight: 0})
	tris := e.Triangles()
	if len(tris) != 4 {
		t.Fatalf("got %d triangles, want 4 (fan around center)", len(tris))
	}
}

func TestInsert_RejectsCoincidentPoint(t *testing.T) {
	e := square()
	before := e.Count()
	e.Insert(Point{X: 1e-15, Y: 1e-15, Elevation: 999, Weight: 5})
	if e.Count() != before {
		t.Fatalf("coincident point was not rejected: count %d -> %d", before, e.Count())
	}
}

func TestReduceByCount_PreservesMandatoryPoints(t *testing.T) {
	e := square()
	e.Insert(Point{X: 0.5, Y: 0.5, Elevation: 200, Weight: 0})
	e.Insert(Point{X: 0.25, Y: 0.25, Elevation: 100.001, Weight: 1})
	e.ReduceByCount(2)
	if e.Count() != 4 {
		t.Fatalf("got %d points after reducing 2 interior points, want 4", e.Count())
	}
	for _, p := range e.Points() {
		if p.Weight >= 0 {
			t.Fatalf("mandatory-only reduction left a non-corner point: %+v", p)
		}
	}
}

func TestReduceByCount_NeverRemovesNegativeWeight(t *testing.T) {
	e := square()
	e.ReduceByCount(10)
	if e.Count() != 4 {
		t.Fatalf("got %d points, want all 4 corners preserved", e.Count())
	}
}

func TestWriteOBJ_Shape(t *testing.T) {
	e := square()
	obj := e.WriteOBJ()
	if obj == "" {
		t.Fatal("expected non-empty OBJ output")
	}
}
