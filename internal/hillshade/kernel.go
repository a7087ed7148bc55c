package hillshade

import (
	"image"
	"image/color"
	"math"
)

// ClassicKernel computes a Horn-gradient analytical hillshade (the standard
// ESRI-style algorithm) over the center 256x256 sub-block of the stitched
// neighborhood, using the surrounding sub-blocks so every output pixel has
// a full 3x3 sample window even at the tile's own edges. Pixels whose
// window touches a MissingValue sample render as fully transparent.
type ClassicKernel struct{}

// Shade implements Kernel.
func (ClassicKernel) Shade(n Neighborhood, p LightingParams) (image.Image, error) {
	cellSize := (n.X1 - n.X0) / InputSize
	if cellSize <= 0 {
		cellSize = 1
	}
	zFactor := p.ZDepth
	if zFactor == 0 {
		zFactor = 1
	}
	azimuthRad := p.Azimuth * math.Pi / 180.0
	zenithRad := (90.0 - p.Altitude) * math.Pi / 180.0

	img := image.NewNRGBA(image.Rect(0, 0, OutputSize, OutputSize))
	for oy := 0; oy < OutputSize; oy++ {
		for ox := 0; ox < OutputSize; ox++ {
			cx, cy := subBlock+ox, subBlock+oy
			window, ok := sampleWindow(n.Data, cx, cy)
			if !ok {
				img.SetNRGBA(ox, oy, color.NRGBA{})
				continue
			}

			dzdx := float64((window[2]+2*window[5]+window[8])-(window[0]+2*window[3]+window[6])) / (8 * cellSize)
			dzdy := float64((window[6]+2*window[7]+window[8])-(window[0]+2*window[1]+window[2])) / (8 * cellSize)
			dzdx *= zFactor
			dzdy *= zFactor

			slope := math.Atan(math.Sqrt(dzdx*dzdx + dzdy*dzdy) * p.Scale)
			aspect := math.Atan2(dzdy, -dzdx)

			shade := math.Cos(zenithRad)*math.Cos(slope) + math.Sin(zenithRad)*math.Sin(slope)*math.Cos(azimuthRad-aspect)
			if shade < 0 {
				shade = 0
			}
			v := uint8(shade * 255)

			if p.Colored {
				img.SetNRGBA(ox, oy, elevationTint(window[4], v))
			} else {
				img.SetNRGBA(ox, oy, color.NRGBA{R: v, G: v, B: v, A: 255})
			}
		}
	}
	return img, nil
}

// sampleWindow reads the 3x3 elevation window centered on (cx,cy), in
// row-major order index 0..8 (top-left to bottom-right), ok=false if any
// sample is the missing-data sentinel.
func sampleWindow(data []float32, cx, cy int) (window [9]float32, ok bool) {
	i := 0
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			v := data[(cy+dy)*InputSize+(cx+dx)]
			if v == MissingValue {
				return window, false
			}
			window[i] = v
			i++
		}
	}
	return window, true
}

// elevationTint maps elevation to a simple low-to-high color ramp (blue to
// green to brown to white), modulated by the computed shade intensity.
func elevationTint(elevation float32, shade uint8) color.NRGBA {
	var r, g, b float64
	switch {
	case elevation < 0:
		r, g, b = 0.2, 0.4, 0.8
	case elevation < 500:
		r, g, b = 0.3, 0.6, 0.3
	case elevation < 2000:
		r, g, b = 0.5, 0.4, 0.3
	default:
		r, g, b = 0.9, 0.9, 0.9
	}
	f := float64(shade) / 255.0
	return color.NRGBA{
		R: uint8(r * f * 255),
		G: uint8(g * f * 255),
		B: uint8(b * f * 255),
		A: 255,
	}
}
