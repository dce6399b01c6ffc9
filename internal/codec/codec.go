// Package codec decodes uploaded photos into opaque rasters and encodes
// finished rasters as print files carrying their resolution.
package codec

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif" // register decoder
	"io"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // register decoder
	_ "golang.org/x/image/tiff" // register decoder
	_ "golang.org/x/image/webp" // register decoder

	"printshop/internal/fit"
)

// Format is an output file format.
type Format string

const (
	JPEG Format = "jpeg"
	PNG  Format = "png"
	PDF  Format = "pdf"
)

const DefaultQuality = 95

// ParseFormat maps a form value or extension to a Format. Empty means JPEG.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "", "jpg", "jpeg":
		return JPEG, nil
	case "png":
		return PNG, nil
	case "pdf":
		return PDF, nil
	default:
		return "", fmt.Errorf("unsupported output format %q", s)
	}
}

// FormatFromName picks the format from a file name's extension.
func FormatFromName(name string) (Format, error) {
	return ParseFormat(filepath.Ext(name))
}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	switch f {
	case PNG:
		return "image/png"
	case PDF:
		return "application/pdf"
	default:
		return "image/jpeg"
	}
}

// Ext returns the file extension for f, without the dot.
func (f Format) Ext() string {
	if f == JPEG {
		return "jpg"
	}
	return string(f)
}

// DefaultMaxPixels is the pixel cap Decode applies.
const DefaultMaxPixels = 100_000_000

// Decode is DecodeLimit with DefaultMaxPixels.
func Decode(r io.Reader) (*image.NRGBA, string, error) {
	return DecodeLimit(r, DefaultMaxPixels)
}

// DecodeLimit reads an image, applies its EXIF orientation and flattens any
// transparency onto white. The second result is the detected format name.
// Images whose header declares more than maxPixels pixels are rejected
// before any pixel data is decoded.
func DecodeLimit(r io.Reader, maxPixels int) (*image.NRGBA, string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", fmt.Errorf("reading image: %w", err)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", fit.ErrInvalidSource, err)
	}
	if px := int64(cfg.Width) * int64(cfg.Height); maxPixels > 0 && px > int64(maxPixels) {
		return nil, format, fmt.Errorf("%w: %dx%d exceeds %d pixels", fit.ErrInvalidSource, cfg.Width, cfg.Height, maxPixels)
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, format, fmt.Errorf("%w: %v", fit.ErrInvalidSource, err)
	}
	b := img.Bounds()
	if b.Empty() {
		return nil, format, fmt.Errorf("%w: empty image", fit.ErrInvalidSource)
	}
	return flatten(img), format, nil
}

// flatten composites img over white so the pipeline only sees opaque pixels.
func flatten(img image.Image) *image.NRGBA {
	b := img.Bounds()
	bg := imaging.New(b.Dx(), b.Dy(), color.White)
	return imaging.Overlay(bg, img, image.Point{}, 1.0)
}
