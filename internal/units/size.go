package units

import (
	"fmt"
	"image"
)

// PixelSize is a width/height pair in pixels.
type PixelSize struct {
	W int
	H int
}

// SizeOf converts a physical width and height to a PixelSize at dpi.
func SizeOf(w, h Length, dpi int) (PixelSize, error) {
	pw, err := w.Pixels(dpi)
	if err != nil {
		return PixelSize{}, fmt.Errorf("width: %w", err)
	}
	ph, err := h.Pixels(dpi)
	if err != nil {
		return PixelSize{}, fmt.Errorf("height: %w", err)
	}
	return PixelSize{W: pw, H: ph}, nil
}

// SizeOfCm is SizeOf for centimeter dimensions.
func SizeOfCm(wcm, hcm float64, dpi int) (PixelSize, error) {
	return SizeOf(Cm(wcm), Cm(hcm), dpi)
}

// SizeOfImage returns the pixel size of img's bounds.
func SizeOfImage(img image.Image) PixelSize {
	b := img.Bounds()
	return PixelSize{W: b.Dx(), H: b.Dy()}
}

// Valid reports whether both dimensions are positive.
func (s PixelSize) Valid() bool { return s.W > 0 && s.H > 0 }

// Rect returns the rectangle of this size anchored at the origin.
func (s PixelSize) Rect() image.Rectangle { return image.Rect(0, 0, s.W, s.H) }

// At returns the rectangle of this size with its top-left corner at (x, y).
func (s PixelSize) At(x, y int) image.Rectangle { return image.Rect(x, y, x+s.W, y+s.H) }

func (s PixelSize) String() string { return fmt.Sprintf("%dx%d", s.W, s.H) }
