package products

import (
	"image"
	"image/color"
	"unicode/utf8"

	"github.com/disintegration/imaging"

	"printshop/internal/fit"
	"printshop/internal/units"
)

const (
	polaroidBand       = 80 // caption band below the photo, px
	polaroidBorder     = 40
	polaroidCaptionMax = 30
	polaroidCaptionPt  = 20 // at 72 dpi, so points equal pixels
	polaroidCaptionY   = 60 // caption center, px above the bottom edge
)

// PolaroidOptions configures Polaroid.
type PolaroidOptions struct {
	// Size is the frame in pixels. Zero means 800x1000.
	Size units.PixelSize
	// Border is the frame width in pixels. Zero means 40.
	Border      int
	BorderColor color.Color
	Caption     string
	TextColor   color.Color
	Rotate      int
}

// Polaroid puts src inside an instant-photo frame with a wider band at the
// bottom for an optional caption.
func Polaroid(src image.Image, opts PolaroidOptions) (*image.NRGBA, error) {
	size := opts.Size
	if size == (units.PixelSize{}) {
		size = units.PixelSize{W: 800, H: 1000}
	}
	border := opts.Border
	if border == 0 {
		border = polaroidBorder
	}
	if utf8.RuneCountInString(opts.Caption) > polaroidCaptionMax {
		return nil, optionError("caption longer than %d characters", polaroidCaptionMax)
	}
	photo := units.PixelSize{W: size.W - 2*border, H: size.H - 2*border - polaroidBand}
	if border < 0 || !photo.Valid() {
		return nil, optionError("frame %s has no room for the photo with a %dpx border", size, border)
	}
	frameColor := opts.BorderColor
	if frameColor == nil {
		frameColor = color.White
	}

	if opts.Rotate != 0 {
		var err error
		if src, err = rotate(src, opts.Rotate); err != nil {
			return nil, err
		}
	}
	img, err := fit.Fit(src, photo, fit.Options{Policy: fit.Cover})
	if err != nil {
		return nil, err
	}
	out := imaging.New(size.W, size.H, frameColor)
	out = imaging.Paste(out, img, image.Pt((size.W-photo.W)/2, (size.H-photo.H-polaroidBand)/2))

	if opts.Caption != "" {
		l, err := newLabel(opts.Caption, textStyle{Size: polaroidCaptionPt, Color: opts.TextColor}, 72)
		if err != nil {
			return nil, err
		}
		defer l.Close()
		l.DrawCentered(out, size.H-polaroidCaptionY-l.Height()/2)
	}
	return out, nil
}
