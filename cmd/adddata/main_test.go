package main

import "testing"

func TestValidate_RequiresFillXorOverwrite(t *testing.T) {
	base := config{imagePath: "a.tif", srs: "EPSG:4326", layer: "l", maxLOD: 10, tileDir: "t", rawDir: "r"}

	neither := base
	if err := validate(neither); err == nil {
		t.Fatalf("expected error when neither -fill nor -overwrite is set")
	}

	both := base
	both.fill, both.overwrite = true, true
	if err := validate(both); err == nil {
		t.Fatalf("expected error when both -fill and -overwrite are set")
	}

	fillOnly := base
	fillOnly.fill = true
	if err := validate(fillOnly); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	overwriteOnly := base
	overwriteOnly.overwrite = true
	if err := validate(overwriteOnly); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_RequiresCoreParams(t *testing.T) {
	cfg := config{fill: true, maxLOD: 10, tileDir: "t", rawDir: "r"}
	if err := validate(cfg); err == nil {
		t.Fatalf("expected error for missing image/srs/layer")
	}
}

func TestValidate_RequiresPositiveMaxLOD(t *testing.T) {
	cfg := config{imagePath: "a.tif", srs: "EPSG:4326", layer: "l", fill: true, tileDir: "t", rawDir: "r"}
	if err := validate(cfg); err == nil {
		t.Fatalf("expected error for non-positive maxlod")
	}
}

func TestParseEPSG(t *testing.T) {
	epsg, err := parseEPSG("EPSG:2056")
	if err != nil || epsg != 2056 {
		t.Fatalf("got (%d, %v), want (2056, nil)", epsg, err)
	}

	if _, err := parseEPSG("2056"); err == nil {
		t.Fatalf("expected error for srs missing EPSG: prefix")
	}
	if _, err := parseEPSG("EPSG:notanumber"); err == nil {
		t.Fatalf("expected error for non-numeric EPSG code")
	}
}

func TestTilePath(t *testing.T) {
	got := tilePath("/tiles", 5, 3, 7, ".bin")
	want := "/tiles/5/3/7.bin"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}
