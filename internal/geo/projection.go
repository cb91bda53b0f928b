package geo

import "math"

// tileSize is the side of a Web Mercator tile in pixels.
const tileSize = 256

// PixelPoint is a projected coordinate in the global pixel space of a zoom level.
type PixelPoint struct {
	X float64
	Y float64
}

// Project maps a geographic point to global pixel coordinates at the given
// zoom level using standard Web Mercator tile math. Latitudes beyond the
// Mercator limit are clamped.
func Project(p Point, zoom int) PixelPoint {
	scale := float64(tileSize) * math.Exp2(float64(zoom))

	x := (p.Lon + 180) / 360 * scale

	sin := math.Sin(p.Lat * math.Pi / 180)
	// Clamp to avoid the projection singularity at the poles.
	if sin > 0.9999 {
		sin = 0.9999
	}
	if sin < -0.9999 {
		sin = -0.9999
	}

	y := (0.5 - math.Log((1+sin)/(1-sin))/(4*math.Pi)) * scale

	return PixelPoint{X: x, Y: y}
}
