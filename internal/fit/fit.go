// Package fit resizes rasters to an exact pixel size while preserving aspect
// ratio, either by cropping the excess (cover) or by padding (contain).
package fit

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"

	"printshop/internal/units"
)

// ErrInvalidSource is returned for zero-area or undecodable rasters.
var ErrInvalidSource = errors.New("invalid source image")

// Policy selects how a source is mapped onto the target rectangle.
type Policy int

const (
	// Cover fills the target and crops the overflow symmetrically.
	Cover Policy = iota
	// Contain fits the whole source inside the target and pads with Background.
	Contain
	// Smart crops the window with the target aspect that smartcrop scores
	// highest, then resizes it to the target.
	Smart
)

func (p Policy) String() string {
	switch p {
	case Cover:
		return "cover"
	case Contain:
		return "contain"
	case Smart:
		return "smart"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// ParsePolicy maps a form or config value to a Policy. Empty means Cover.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "cover", "fill":
		return Cover, nil
	case "contain", "fit":
		return Contain, nil
	case "smart":
		return Smart, nil
	default:
		return Cover, fmt.Errorf("unknown fit policy %q", s)
	}
}

// Options configures a single Fit call.
type Options struct {
	Policy Policy
	// Background pads Contain results. Nil means white.
	Background color.Color
	// Filter is the resampling filter. The zero value means Lanczos.
	Filter imaging.ResampleFilter
	// Offset shifts the Cover crop window in pixels from the centered
	// position. It is clamped to the available excess.
	Offset image.Point
}

func (o Options) background() color.Color {
	if o.Background == nil {
		return color.White
	}
	return o.Background
}

func (o Options) filter() imaging.ResampleFilter {
	if o.Filter.Kernel == nil {
		return imaging.Lanczos
	}
	return o.Filter
}

// Fit returns a new raster of exactly target size built from src.
func Fit(src image.Image, target units.PixelSize, opts Options) (*image.NRGBA, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: nil image", ErrInvalidSource)
	}
	if !target.Valid() {
		return nil, fmt.Errorf("%w: target %s", units.ErrInvalidMeasurement, target)
	}
	ss := units.SizeOfImage(src)
	if !ss.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSource, ss)
	}
	if ss == target && opts.Offset == (image.Point{}) {
		return imaging.Clone(src), nil
	}

	switch opts.Policy {
	case Cover:
		return cover(src, ss, target, opts), nil
	case Contain:
		return contain(src, ss, target, opts), nil
	case Smart:
		return smart(src, target, opts)
	default:
		return nil, fmt.Errorf("unknown fit policy %s", opts.Policy)
	}
}

func cover(src image.Image, ss, target units.PixelSize, opts Options) *image.NRGBA {
	scale := math.Max(float64(target.W)/float64(ss.W), float64(target.H)/float64(ss.H))
	rw := max(target.W, int(math.Round(float64(ss.W)*scale)))
	rh := max(target.H, int(math.Round(float64(ss.H)*scale)))

	resized := imaging.Resize(src, rw, rh, opts.filter())
	x0 := clamp((rw-target.W)/2+opts.Offset.X, 0, rw-target.W)
	y0 := clamp((rh-target.H)/2+opts.Offset.Y, 0, rh-target.H)
	return imaging.Crop(resized, target.At(x0, y0))
}

func contain(src image.Image, ss, target units.PixelSize, opts Options) *image.NRGBA {
	scale := math.Min(float64(target.W)/float64(ss.W), float64(target.H)/float64(ss.H))
	nw := clamp(int(math.Round(float64(ss.W)*scale)), 1, target.W)
	nh := clamp(int(math.Round(float64(ss.H)*scale)), 1, target.H)

	dst := imaging.New(target.W, target.H, opts.background())
	resized := imaging.Resize(src, nw, nh, opts.filter())
	return imaging.Paste(dst, resized, image.Pt((target.W-nw)/2, (target.H-nh)/2))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
