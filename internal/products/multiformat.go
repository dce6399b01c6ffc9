package products

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"printshop/internal/fit"
	"printshop/internal/sheet"
	"printshop/internal/units"
)

const multiGapMm = 5

var (
	annotateLine = color.NRGBA{R: 200, G: 200, B: 200, A: 255}
	annotateText = color.NRGBA{R: 100, G: 100, B: 100, A: 255}
)

// MultiFormatOptions configures MultiFormat.
type MultiFormatOptions struct {
	DPI int
	// Policy defaults to Contain so the whole photo shows in every format.
	Policy *fit.Policy
	// Background fills the padding around contained photos. Nil means white.
	Background color.Color
	// GapMm separates prints on the sheet. Zero means 5mm.
	GapMm float64
	// Annotate outlines every print on the sheet and labels it with its format.
	Annotate bool
}

// Print is one format rendered on its own.
type Print struct {
	Format Format
	Image  *image.NRGBA
}

// MultiFormatResult holds the individual prints and the 10x15 sheets they
// were flowed onto.
type MultiFormatResult struct {
	Prints []Print
	Sheets []*image.NRGBA
}

// MultiFormat renders src once per format and flows the prints onto as many
// 10x15cm sheets as needed.
func MultiFormat(ctx context.Context, src image.Image, formats []Format, opts MultiFormatOptions) (MultiFormatResult, error) {
	if len(formats) == 0 {
		return MultiFormatResult{}, optionError("no formats selected")
	}
	page, err := units.SizeOfCm(10, 15, opts.DPI)
	if err != nil {
		return MultiFormatResult{}, err
	}
	gapMm := opts.GapMm
	if gapMm == 0 {
		gapMm = multiGapMm
	}
	gap, err := units.MmToPx(gapMm, opts.DPI)
	if err != nil {
		return MultiFormatResult{}, err
	}
	policy := fit.Contain
	if opts.Policy != nil {
		policy = *opts.Policy
	}

	jobs := make([]sheet.FitJob, len(formats))
	sizes := make([]units.PixelSize, len(formats))
	for i, f := range formats {
		sizes[i], err = f.Pixels(opts.DPI)
		if err != nil {
			return MultiFormatResult{}, fmt.Errorf("format %q: %w", f.Name, err)
		}
		jobs[i] = sheet.FitJob{
			Image:  src,
			Target: sizes[i],
			Opts:   fit.Options{Policy: policy, Background: opts.Background},
		}
	}
	imgs, err := sheet.FitAll(ctx, jobs)
	if err != nil {
		return MultiFormatResult{}, err
	}
	res := MultiFormatResult{Prints: make([]Print, len(formats))}
	for i, f := range formats {
		res.Prints[i] = Print{Format: f, Image: imgs[i]}
	}

	pages, indexes := sheet.Flow(page, sizes, gap)
	for p, rects := range pages {
		placements := make([]sheet.Placement, len(rects))
		for j, r := range rects {
			placements[j] = sheet.Placement{Rect: r, Image: imgs[indexes[p][j]]}
		}
		out, err := sheet.Compose(page, placements, sheet.Options{Background: color.White})
		if err != nil {
			return MultiFormatResult{}, fmt.Errorf("sheet %d: %w", p+1, err)
		}
		if opts.Annotate {
			if err := annotate(out, rects, indexes[p], formats, opts.DPI); err != nil {
				return MultiFormatResult{}, err
			}
		}
		res.Sheets = append(res.Sheets, out)
	}
	return res, nil
}

func annotate(dst draw.Image, rects []image.Rectangle, idx []int, formats []Format, dpi int) error {
	inset, err := units.MmToPx(0.5, dpi)
	if err != nil {
		return err
	}
	for j, r := range rects {
		f := formats[idx[j]]
		outline(dst, r, annotateLine)
		l, err := newLabel(fmt.Sprintf("%s (%g×%gcm)", f.Name, f.Width, f.Height), textStyle{Size: 6, Color: annotateText}, dpi)
		if err != nil {
			return err
		}
		l.Draw(dst, r.Min.Add(image.Pt(inset, inset)))
		l.Close()
	}
	return nil
}
