package products

import (
	"image"
	"image/color"

	"printshop/internal/fit"
	"printshop/internal/sheet"
	"printshop/internal/units"
)

const (
	idCols   = 5
	idRows   = 2
	idBorder = 10 // px of white around each photo when Border is set
)

// IDSheetOptions configures IDSheet.
type IDSheetOptions struct {
	DPI    int
	Policy fit.Policy
	// Border adds a white frame around every photo.
	Border bool
	// Spacing is the gap between photos in pixels.
	Spacing int
	// Rotate turns the source clockwise first, in degrees.
	Rotate int
}

// IDSheet tiles ten 3x4cm copies of src, five across and two down, on a
// 15x10cm sheet. The grid is centered when it fits and anchored top-left
// when it does not; photos running past the edge are clipped.
func IDSheet(src image.Image, opts IDSheetOptions) (*image.NRGBA, error) {
	if opts.Spacing < 0 {
		return nil, optionError("spacing %dpx is negative", opts.Spacing)
	}
	page, err := units.SizeOfCm(15, 10, opts.DPI)
	if err != nil {
		return nil, err
	}
	photoSize, err := units.SizeOfCm(3, 4, opts.DPI)
	if err != nil {
		return nil, err
	}
	if opts.Rotate != 0 {
		if src, err = rotate(src, opts.Rotate); err != nil {
			return nil, err
		}
	}
	photo, err := fit.Fit(src, photoSize, fit.Options{Policy: opts.Policy})
	if err != nil {
		return nil, err
	}
	if opts.Border {
		photo = fit.Expand(photo, idBorder, color.White)
	}

	cell := units.SizeOfImage(photo)
	gridW := idCols*cell.W + (idCols-1)*opts.Spacing
	gridH := idRows*cell.H + (idRows-1)*opts.Spacing
	origin := image.Pt(max(0, (page.W-gridW)/2), max(0, (page.H-gridH)/2))

	rects := sheet.Grid(origin, cell, idCols, idRows, opts.Spacing)
	placements := make([]sheet.Placement, len(rects))
	for i, r := range rects {
		placements[i] = sheet.Placement{Rect: r, Image: photo}
	}
	return sheet.Compose(page, placements, sheet.Options{Background: color.White})
}
