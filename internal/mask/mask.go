// Package mask builds visibility masks for die-cut shapes and composites
// rasters through them.
//
// A mask is an *image.Gray of the same size as the raster it is applied to.
// 255 keeps the source pixel, 0 replaces it with the background and values in
// between blend the two.
package mask

import (
	"errors"
	"fmt"
	"image"
	"image/draw"

	"golang.org/x/image/vector"

	"printshop/internal/units"
)

// ErrSizeMismatch is returned when a mask and a raster differ in size.
var ErrSizeMismatch = errors.New("mask size mismatch")

const (
	// DefaultHeightFactor is the ellipse height relative to the arc height.
	DefaultHeightFactor = 2.6
	// DefaultWidthFactor is the ellipse width relative to the mask width.
	DefaultWidthFactor = 3.0

	// cubic Bézier control distance for a quarter ellipse
	kappa = 0.5522847498
)

// Options tunes the half-moon curve.
type Options struct {
	// HeightFactor is the ellipse's vertical extent divided by the arc height.
	// Zero means DefaultHeightFactor. Must be at least 1.
	HeightFactor float64
	// WidthFactor is the ellipse's horizontal span divided by the mask width.
	// Zero means DefaultWidthFactor. Must be at least 1.
	WidthFactor float64
	// Antialias produces soft edges instead of a {0,255} mask.
	Antialias bool
}

// ellipse is the visible region of a half-moon mask in pixel space.
type ellipse struct {
	cx, cy float64
	rx, ry float64
}

// HalfMoon returns a mask of size whose visible region is an arch: the apex
// sits arcHeight pixels above the bottom edge at the horizontal center and
// the curve falls toward the top corners. Everything above the curve is 0.
func HalfMoon(size units.PixelSize, arcHeight int, opts Options) (*image.Gray, error) {
	if !size.Valid() {
		return nil, fmt.Errorf("%w: mask %s", units.ErrInvalidMeasurement, size)
	}
	if arcHeight <= 0 {
		return nil, fmt.Errorf("%w: arc height %dpx", units.ErrInvalidMeasurement, arcHeight)
	}
	e, err := halfMoonEllipse(size, arcHeight, opts)
	if err != nil {
		return nil, err
	}
	if opts.Antialias {
		return e.rasterize(size), nil
	}
	return e.hard(size), nil
}

func halfMoonEllipse(size units.PixelSize, arcHeight int, opts Options) (ellipse, error) {
	hf := opts.HeightFactor
	if hf == 0 {
		hf = DefaultHeightFactor
	}
	wf := opts.WidthFactor
	if wf == 0 {
		wf = DefaultWidthFactor
	}
	if hf < 1 || wf < 1 {
		return ellipse{}, fmt.Errorf("%w: ellipse factors %g x %g must be >= 1", units.ErrInvalidMeasurement, wf, hf)
	}
	ry := hf * float64(arcHeight) / 2
	apex := float64(size.H - arcHeight)
	return ellipse{
		cx: float64(size.W) / 2,
		cy: apex + ry,
		rx: wf * float64(size.W) / 2,
		ry: ry,
	}, nil
}

// contains tests a point against the ellipse.
func (e ellipse) contains(x, y float64) bool {
	dx := (x - e.cx) / e.rx
	dy := (y - e.cy) / e.ry
	return dx*dx+dy*dy <= 1
}

// hard samples each pixel center.
func (e ellipse) hard(size units.PixelSize) *image.Gray {
	m := image.NewGray(size.Rect())
	for y := 0; y < size.H; y++ {
		row := m.Pix[y*m.Stride : y*m.Stride+size.W]
		for x := range row {
			if e.contains(float64(x)+0.5, float64(y)+0.5) {
				row[x] = 255
			}
		}
	}
	return m
}

// rasterize fills the ellipse outline with coverage-based antialiasing.
func (e ellipse) rasterize(size units.PixelSize) *image.Gray {
	z := vector.NewRasterizer(size.W, size.H)
	z.DrawOp = draw.Src

	cx, cy := float32(e.cx), float32(e.cy)
	rx, ry := float32(e.rx), float32(e.ry)
	kx, ky := float32(kappa)*rx, float32(kappa)*ry

	z.MoveTo(cx+rx, cy)
	z.CubeTo(cx+rx, cy+ky, cx+kx, cy+ry, cx, cy+ry)
	z.CubeTo(cx-kx, cy+ry, cx-rx, cy+ky, cx-rx, cy)
	z.CubeTo(cx-rx, cy-ky, cx-kx, cy-ry, cx, cy-ry)
	z.CubeTo(cx+kx, cy-ry, cx+rx, cy-ky, cx+rx, cy)
	z.ClosePath()

	alpha := image.NewAlpha(size.Rect())
	z.Draw(alpha, alpha.Bounds(), image.Opaque, image.Point{})
	return &image.Gray{Pix: alpha.Pix, Stride: alpha.Stride, Rect: alpha.Rect}
}

// Filled returns a mask of size with every pixel set to v.
func Filled(size units.PixelSize, v uint8) *image.Gray {
	m := image.NewGray(size.Rect())
	if v != 0 {
		for i := range m.Pix {
			m.Pix[i] = v
		}
	}
	return m
}
