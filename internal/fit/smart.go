package fit

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/muesli/smartcrop"

	"printshop/internal/units"
)

// resizer implements the smartcrop resizer interface with imaging.
type resizer struct {
	filter imaging.ResampleFilter
}

func (r resizer) Resize(img image.Image, width, height uint) image.Image {
	return imaging.Resize(img, int(width), int(height), r.filter)
}

func smart(src image.Image, target units.PixelSize, opts Options) (*image.NRGBA, error) {
	// smartcrop needs SubImage and an origin at (0,0).
	img := imaging.Clone(src)

	analyzer := smartcrop.NewAnalyzer(resizer{filter: imaging.Box})
	crop, err := analyzer.FindBestCrop(img, target.W, target.H)
	if err != nil {
		return nil, fmt.Errorf("finding best crop: %w", err)
	}
	if crop.Empty() {
		return cover(src, units.SizeOfImage(src), target, opts), nil
	}
	window := img.SubImage(crop)
	return imaging.Resize(window, target.W, target.H, opts.filter()), nil
}
