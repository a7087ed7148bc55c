package elevation

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// WriteBinary persists the tile, little-endian, in the fixed layout the
// reference format uses: x0 y0 x1 y1 (4 float64), then NW/NE/SE/SW (each
// x,y,elevation,weight as float64), then five sections in order
// north/east/south/west/middle, each an int32 count followed by that many
// 32-byte point records. Error is transient and is never written.
func (t *Tile) WriteBinary(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create elevation tile %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := writeF64(w, t.X0, t.Y0, t.X1, t.Y1); err != nil {
		return fmt.Errorf("write elevation tile header: %w", err)
	}
	for _, p := range []Point{t.NW, t.NE, t.SE, t.SW} {
		if err := writePoint(w, p); err != nil {
			return fmt.Errorf("write elevation tile corner: %w", err)
		}
	}
	for _, section := range [][]Point{t.North, t.East, t.South, t.West, t.Middle} {
		if err := writeSection(w, section); err != nil {
			return fmt.Errorf("write elevation tile section: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush elevation tile %s: %w", path, err)
	}
	return nil
}

// ReadTile loads a tile previously written by WriteBinary. The result is
// always categorized.
func ReadTile(path string) (*Tile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open elevation tile %s: %w", path, err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	t := &Tile{}
	hdr, err := readF64(r, 4)
	if err != nil {
		return nil, fmt.Errorf("read elevation tile header: %w", err)
	}
	t.X0, t.Y0, t.X1, t.Y1 = hdr[0], hdr[1], hdr[2], hdr[3]

	corners := make([]Point, 4)
	for i := range corners {
		p, err := readPoint(r)
		if err != nil {
			return nil, fmt.Errorf("read elevation tile corner: %w", err)
		}
		corners[i] = p
	}
	t.NW, t.NE, t.SE, t.SW = corners[0], corners[1], corners[2], corners[3]

	sections := make([][]Point, 5)
	for i := range sections {
		s, err := readSection(r)
		if err != nil {
			return nil, fmt.Errorf("read elevation tile section: %w", err)
		}
		sections[i] = s
	}
	t.North, t.East, t.South, t.West, t.Middle = sections[0], sections[1], sections[2], sections[3], sections[4]
	t.Categorized = true
	return t, nil
}

func writeF64(w io.Writer, vals ...float64) error {
	for _, v := range vals {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	return nil
}

func readF64(r io.Reader, n int) ([]float64, error) {
	out := make([]float64, n)
	for i := range out {
		if err := binary.Read(r, binary.LittleEndian, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// writePoint writes x,y,elevation,weight as four float64 (32 bytes). Error
// is transient runtime state and is never persisted.
func writePoint(w io.Writer, p Point) error {
	return writeF64(w, p.X, p.Y, p.Elevation, p.Weight)
}

func readPoint(r io.Reader) (Point, error) {
	vals, err := readF64(r, 4)
	if err != nil {
		return Point{}, err
	}
	return Point{X: vals[0], Y: vals[1], Elevation: vals[2], Weight: vals[3]}, nil
}

func writeSection(w io.Writer, pts []Point) error {
	if err := binary.Write(w, binary.LittleEndian, int32(len(pts))); err != nil {
		return err
	}
	for _, p := range pts {
		if err := writePoint(w, p); err != nil {
			return err
		}
	}
	return nil
}

func readSection(r io.Reader) ([]Point, error) {
	var n int32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	out := make([]Point, n)
	for i := range out {
		p, err := readPoint(r)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}
