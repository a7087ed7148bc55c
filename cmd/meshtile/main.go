// Command meshtile reduces a persisted elevation tile to a target vertex
// budget and emits its JSON mesh representation (surface + curtain).
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/globequad/globequad/internal/elevation"
	"github.com/globequad/globequad/internal/mesh"
	"github.com/globequad/globequad/internal/ogerr"
)

func main() {
	var (
		inputPath  string
		outputPath string
		maxPoints  int
		verbose    bool
	)
	flag.StringVar(&inputPath, "input", "", "path to a persisted elevation tile (.bin)")
	flag.StringVar(&outputPath, "output", "", "path to write the mesh tile JSON")
	flag.IntVar(&maxPoints, "max-points", 0, "reduce to at most this many points before meshing (0 = no reduction)")
	flag.BoolVar(&verbose, "verbose", false, "verbose progress output")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: meshtile -input tile.bin -output tile.json [flags]\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if inputPath == "" || outputPath == "" {
		flag.Usage()
		os.Exit(ogerr.ExitCode(ogerr.ErrBadParams))
	}

	if err := run(inputPath, outputPath, maxPoints, verbose); err != nil {
		log.Printf("meshtile: %v", err)
		os.Exit(ogerr.ExitCode(err))
	}
}

func run(inputPath, outputPath string, maxPoints int, verbose bool) error {
	tile, err := elevation.ReadTile(inputPath)
	if err != nil {
		return fmt.Errorf("%w: %v", ogerr.ErrLoadElevation, err)
	}
	if verbose {
		log.Printf("meshtile: loaded %s with %d points", inputPath, tile.NumPoints())
	}

	if maxPoints > 0 && tile.NumPoints() > maxPoints {
		tile.Reduce(maxPoints)
		if verbose {
			log.Printf("meshtile: reduced to %d points", tile.NumPoints())
		}
	}

	m, err := mesh.Build(tile)
	if err != nil {
		return fmt.Errorf("build mesh: %w", err)
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("%w: create %s: %v", ogerr.ErrIoFailure, outputPath, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("%w: encode mesh: %v", ogerr.ErrIoFailure, err)
	}
	if verbose {
		log.Printf("meshtile: wrote %s (%d vertices, %d indices)", outputPath, len(m.Vertices)/5, len(m.Indices))
	}
	return nil
}
