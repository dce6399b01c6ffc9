package products

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"io"

	"printshop/internal/fit"
	"printshop/internal/pdfpage"
	"printshop/internal/sheet"
	"printshop/internal/units"
)

// LayoutOptions configures LayoutPages.
type LayoutOptions struct {
	DPI        int
	Policy     fit.Policy
	Background color.Color
}

// LayoutPages fills layout's slots with photos in order, one page per
// len(layout.Slots) photos. The last page leaves unused slots blank.
func LayoutPages(ctx context.Context, photos []image.Image, layout Layout, opts LayoutOptions) ([]*image.NRGBA, error) {
	if len(photos) == 0 {
		return nil, optionError("no photos to lay out")
	}
	page, err := layout.PageSize()
	if err != nil {
		return nil, err
	}
	pagePx, err := page.Pixels(opts.DPI)
	if err != nil {
		return nil, err
	}
	slots, err := sheet.FromMillimeters(layout.Slots, opts.DPI)
	if err != nil {
		return nil, fmt.Errorf("layout %q: %w", layout.Name, err)
	}

	var pages []*image.NRGBA
	for _, span := range sheet.Paginate(len(photos), len(slots)) {
		chunk := photos[span[0]:span[1]]
		jobs := make([]sheet.FitJob, len(chunk))
		for i, img := range chunk {
			jobs[i] = sheet.FitJob{
				Image:  img,
				Target: units.PixelSize{W: slots[i].Dx(), H: slots[i].Dy()},
				Opts:   fit.Options{Policy: opts.Policy, Background: opts.Background},
			}
		}
		fitted, err := sheet.FitAll(ctx, jobs)
		if err != nil {
			return nil, err
		}
		placements := make([]sheet.Placement, len(fitted))
		for i, img := range fitted {
			placements[i] = sheet.Placement{Rect: slots[i], Image: img}
		}
		// slots that touch in millimeters can overlap by a pixel after rounding
		out, err := sheet.Compose(pagePx, placements, sheet.Options{Background: color.White, AllowOverlap: true})
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", len(pages)+1, err)
		}
		pages = append(pages, out)
	}
	return pages, nil
}

// A4Layout is LayoutPages for a named layout from presets.
func A4Layout(ctx context.Context, photos []image.Image, presets *Presets, name string, opts LayoutOptions) ([]*image.NRGBA, error) {
	layout, ok := presets.Layout(name)
	if !ok {
		return nil, optionError("unknown layout %q", name)
	}
	return LayoutPages(ctx, photos, layout, opts)
}

// SheetsPDF writes one full-bleed page of size per sheet.
func SheetsPDF(w io.Writer, sheets []*image.NRGBA, size pdfpage.PageSize, quality int) error {
	if len(sheets) == 0 {
		return optionError("no sheets to export")
	}
	pages := make([]pdfpage.Page, len(sheets))
	for i, s := range sheets {
		pages[i] = pdfpage.Page{
			Size:  size,
			Items: []pdfpage.Item{{Image: s, W: size.W, H: size.H}},
		}
	}
	return pdfpage.Write(w, pages, pdfpage.Options{Quality: quality})
}
