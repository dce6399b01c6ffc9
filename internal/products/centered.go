package products

import (
	"image"
	"io"

	"printshop/internal/fit"
	"printshop/internal/pdfpage"
	"printshop/internal/units"
)

// DefaultCenteredCaption is printed under a centered print.
const DefaultCenteredCaption = "Image: 10x15cm - cut along the red lines"

// CenteredOptions configures CenteredPDF.
type CenteredOptions struct {
	DPI     int
	Quality int
	Policy  fit.Policy
	// Page defaults to A4.
	Page pdfpage.PageSize
	// Caption defaults to DefaultCenteredCaption.
	Caption string
}

// CenteredPDF writes a single page with src as a 15x10cm landscape print in
// the middle, outlined with red cut guides.
func CenteredPDF(w io.Writer, src image.Image, opts CenteredOptions) error {
	const wMm, hMm = 150, 100
	size, err := units.SizeOf(units.Mm(wMm), units.Mm(hMm), opts.DPI)
	if err != nil {
		return err
	}
	img, err := fit.Fit(src, size, fit.Options{Policy: opts.Policy})
	if err != nil {
		return err
	}
	page := opts.Page
	if page == (pdfpage.PageSize{}) {
		page = pdfpage.A4
	}
	if page.W < wMm || page.H < hMm {
		return optionError("page %gx%gmm is smaller than the print", page.W, page.H)
	}
	p := pdfpage.Centered(page, img, wMm, hMm)
	p.CutGuides = true
	p.Caption = opts.Caption
	if p.Caption == "" {
		p.Caption = DefaultCenteredCaption
	}
	return pdfpage.Write(w, []pdfpage.Page{p}, pdfpage.Options{Quality: opts.Quality})
}
