// Package sheet composes fitted rasters onto a print sheet.
//
// A sheet is a blank canvas of a fixed pixel size. Placements are pasted in
// order; where two rectangles intersect the later placement is drawn on top,
// but intersections are rejected unless the caller opts in with AllowOverlap.
// Rectangles that run past the sheet edge are clipped, which lets layouts
// bleed off the page on purpose. A rectangle with no part on the sheet is an
// error.
package sheet

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	"printshop/internal/fit"
	"printshop/internal/units"
)

// ErrInvalidPlacement is returned for empty, off-sheet or (by default)
// overlapping placement rectangles.
var ErrInvalidPlacement = errors.New("invalid placement")

// Placement pastes Image at Rect. An Image whose size differs from Rect is
// fitted to it with Fit first.
type Placement struct {
	Rect  image.Rectangle
	Image image.Image
	Fit   fit.Options
}

// Options configures Compose.
type Options struct {
	// Background fills the blank sheet. Nil means white.
	Background   color.Color
	AllowOverlap bool
}

// Compose returns a new raster of size with every placement pasted on it.
func Compose(size units.PixelSize, placements []Placement, opts Options) (*image.NRGBA, error) {
	if !size.Valid() {
		return nil, fmt.Errorf("%w: sheet %s", units.ErrInvalidMeasurement, size)
	}
	rects := make([]image.Rectangle, len(placements))
	for i, p := range placements {
		if p.Image == nil {
			return nil, fmt.Errorf("placement %d: %w: nil image", i, fit.ErrInvalidSource)
		}
		rects[i] = p.Rect
	}
	rep := Inspect(size, rects)
	if len(rep.Invalid) > 0 {
		i := rep.Invalid[0]
		return nil, fmt.Errorf("%w: placement %d at %v is outside sheet %s", ErrInvalidPlacement, i, rects[i], size)
	}
	if len(rep.Overlaps) > 0 && !opts.AllowOverlap {
		o := rep.Overlaps[0]
		return nil, fmt.Errorf("%w: placements %d and %d overlap at %v", ErrInvalidPlacement, o.A, o.B, o.Area)
	}

	bg := opts.Background
	if bg == nil {
		bg = color.White
	}
	dst := imaging.New(size.W, size.H, bg)
	for i, p := range placements {
		img := p.Image
		want := units.PixelSize{W: p.Rect.Dx(), H: p.Rect.Dy()}
		if units.SizeOfImage(img) != want {
			fitted, err := fit.Fit(img, want, p.Fit)
			if err != nil {
				return nil, fmt.Errorf("placement %d: %w", i, err)
			}
			img = fitted
		}
		// Paste clips to the destination bounds.
		dst = imaging.Paste(dst, img, p.Rect.Min)
	}
	return dst, nil
}

// Overlap records two placements whose rectangles intersect.
type Overlap struct {
	A, B int
	Area image.Rectangle
}

// Report describes how a list of rectangles sits on a sheet.
type Report struct {
	// Clipped lists placements that extend past the sheet edge.
	Clipped []int
	// Invalid lists empty placements and placements entirely off the sheet.
	Invalid  []int
	Overlaps []Overlap
}

// OK reports whether the rectangles fit without clipping or overlap.
func (r Report) OK() bool {
	return len(r.Clipped) == 0 && len(r.Invalid) == 0 && len(r.Overlaps) == 0
}

// Inspect checks rects against a sheet of size without drawing anything.
func Inspect(size units.PixelSize, rects []image.Rectangle) Report {
	var rep Report
	bounds := size.Rect()
	for i, r := range rects {
		switch {
		case r.Empty() || !r.Overlaps(bounds):
			rep.Invalid = append(rep.Invalid, i)
			continue
		case !r.In(bounds):
			rep.Clipped = append(rep.Clipped, i)
		}
		for j := 0; j < i; j++ {
			if rects[j].Empty() {
				continue
			}
			if in := r.Intersect(rects[j]); !in.Empty() {
				rep.Overlaps = append(rep.Overlaps, Overlap{A: j, B: i, Area: in})
			}
		}
	}
	return rep
}
