package products

import (
	"image"
	"image/color"
	"strings"

	"github.com/disintegration/imaging"

	"printshop/internal/fit"
	"printshop/internal/sheet"
	"printshop/internal/units"
)

var placeholderGray = color.NRGBA{R: 245, G: 245, B: 245, A: 255}

// TriptychOptions configures Triptych.
type TriptychOptions struct {
	DPI       int
	BorderMm  float64
	SpacingMm float64
	Title     string
	// TitleSize and FooterSize are in points.
	TitleSize  float64
	Footer     string
	FooterSize float64
	Background color.Color
}

// DefaultTriptychOptions returns the 300dpi layout with a 10mm border, 8mm
// gaps and a 48pt title.
func DefaultTriptychOptions() TriptychOptions {
	return TriptychOptions{
		DPI:        300,
		BorderMm:   10,
		SpacingMm:  8,
		TitleSize:  48,
		FooterSize: 18,
	}
}

// Triptych places up to three photos side by side on a 20x15cm landscape
// canvas. Each photo is contained in its slot; nil photos and slots past the
// end of photos get a light gray placeholder. A title above and a footer
// below shrink the slots to make room.
func Triptych(photos []image.Image, opts TriptychOptions) (*image.NRGBA, error) {
	if len(photos) == 0 || len(photos) > 3 {
		return nil, optionError("triptych takes 1 to 3 photos, got %d", len(photos))
	}
	canvas, err := units.SizeOfCm(20, 15, opts.DPI)
	if err != nil {
		return nil, err
	}
	if opts.BorderMm < 0 || opts.SpacingMm < 0 {
		return nil, optionError("border %gmm and spacing %gmm must not be negative", opts.BorderMm, opts.SpacingMm)
	}
	border, spacing := mmOrZero(opts.BorderMm, opts.DPI), mmOrZero(opts.SpacingMm, opts.DPI)
	bg := opts.Background
	if bg == nil {
		bg = color.White
	}

	var top, bottom int
	title, err := optionalLabel(opts.Title, textStyle{Size: opts.TitleSize, Bold: true}, opts.DPI)
	if err != nil {
		return nil, err
	}
	if title != nil {
		defer title.Close()
		top = int(float64(title.Height()) * 1.4)
	}
	footer, err := optionalLabel(opts.Footer, textStyle{Size: opts.FooterSize}, opts.DPI)
	if err != nil {
		return nil, err
	}
	if footer != nil {
		defer footer.Close()
		bottom = int(float64(footer.Height()) * 1.4)
	}

	area := image.Rect(border, border+top, canvas.W-border, canvas.H-border-bottom)
	slots, err := sheet.Columns(area, 3, spacing)
	if err != nil {
		return nil, optionError("no room for photos: %v", err)
	}
	placements := make([]sheet.Placement, len(slots))
	for i, r := range slots {
		var img image.Image
		if i < len(photos) {
			img = photos[i]
		}
		if img == nil {
			img = imaging.New(r.Dx(), r.Dy(), placeholderGray)
		}
		placements[i] = sheet.Placement{
			Rect:  r,
			Image: img,
			Fit:   fit.Options{Policy: fit.Contain, Background: color.White},
		}
	}
	out, err := sheet.Compose(canvas, placements, sheet.Options{Background: bg})
	if err != nil {
		return nil, err
	}

	if title != nil {
		title.DrawCentered(out, max(5, border/2))
	}
	if footer != nil {
		footer.DrawCentered(out, canvas.H-border-footer.Height()-5)
	}
	return out, nil
}

func optionalLabel(s string, st textStyle, dpi int) (*label, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if st.Size <= 0 {
		return nil, optionError("text size %gpt must be positive", st.Size)
	}
	return newLabel(s, st, dpi)
}

func mmOrZero(mm float64, dpi int) int {
	if mm == 0 {
		return 0
	}
	px, err := units.MmToPx(mm, dpi)
	if err != nil {
		return 0
	}
	return px
}
