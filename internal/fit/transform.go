package fit

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Rotate turns img clockwise by a multiple of 90 degrees. Negative angles
// turn counter-clockwise.
func Rotate(img image.Image, degrees int) (*image.NRGBA, error) {
	switch ((degrees % 360) + 360) % 360 {
	case 0:
		return imaging.Clone(img), nil
	case 90:
		return imaging.Rotate270(img), nil
	case 180:
		return imaging.Rotate180(img), nil
	case 270:
		return imaging.Rotate90(img), nil
	default:
		return nil, fmt.Errorf("rotation must be a multiple of 90 degrees, got %d", degrees)
	}
}

// Expand surrounds img with a uniform border of the given width in pixels.
func Expand(img image.Image, border int, c color.Color) *image.NRGBA {
	if border <= 0 {
		return imaging.Clone(img)
	}
	b := img.Bounds()
	dst := imaging.New(b.Dx()+2*border, b.Dy()+2*border, c)
	return imaging.Paste(dst, img, image.Pt(border, border))
}
