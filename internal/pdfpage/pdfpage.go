// Package pdfpage places finished rasters on fixed-size pages and writes a
// paginated PDF. All positions and sizes are millimeters from the top-left
// corner of the page.
package pdfpage

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf/v2"

	"printshop/internal/codec"
	"printshop/internal/units"
)

const (
	guideWidth   = 0.5 * 25.4 / 72 // 0.5pt in mm
	captionSize  = 8
	captionInset = 50 * 25.4 / 72 // 50pt from the bottom-left corner
)

// PageSize is a page's width and height in millimeters.
type PageSize struct {
	W float64 `yaml:"w" json:"w"`
	H float64 `yaml:"h" json:"h"`
}

var (
	A4     = PageSize{W: 210, H: 297}
	A5     = PageSize{W: 148, H: 210}
	Letter = PageSize{W: 215.9, H: 279.4}
	Photo  = PageSize{W: 100, H: 150}
)

var namedSizes = map[string]PageSize{
	"a4":     A4,
	"a5":     A5,
	"letter": Letter,
	"10x15":  Photo,
}

// LookupSize returns a named page size (a4, a5, letter, 10x15).
func LookupSize(name string) (PageSize, bool) {
	s, ok := namedSizes[strings.ToLower(name)]
	return s, ok
}

// Landscape returns the size with the longer side horizontal.
func (s PageSize) Landscape() PageSize {
	if s.W < s.H {
		return PageSize{W: s.H, H: s.W}
	}
	return s
}

// Pixels returns the raster size covering the page at dpi.
func (s PageSize) Pixels(dpi int) (units.PixelSize, error) {
	return units.SizeOf(units.Mm(s.W), units.Mm(s.H), dpi)
}

// Item is one raster on a page.
type Item struct {
	Image      image.Image
	X, Y, W, H float64
}

// Page is a single page of the document.
type Page struct {
	Size  PageSize
	Items []Item
	// CutGuides outlines every item with a thin red line.
	CutGuides bool
	// Caption is printed small in the bottom-left corner.
	Caption string
}

// Options configures Write.
type Options struct {
	// Quality is the JPEG quality used to embed rasters.
	Quality int
	Title   string
}

// PageForImage returns a page exactly the size of img printed at dpi,
// with img filling it.
func PageForImage(img image.Image, dpi int) (Page, error) {
	b := img.Bounds()
	w, err := units.PxToMm(b.Dx(), dpi)
	if err != nil {
		return Page{}, err
	}
	h, err := units.PxToMm(b.Dy(), dpi)
	if err != nil {
		return Page{}, err
	}
	return Page{
		Size:  PageSize{W: w, H: h},
		Items: []Item{{Image: img, W: w, H: h}},
	}, nil
}

// Centered returns a page of size with img drawn at w x h mm in the middle.
func Centered(size PageSize, img image.Image, w, h float64) Page {
	return Page{
		Size:  size,
		Items: []Item{{Image: img, X: (size.W - w) / 2, Y: (size.H - h) / 2, W: w, H: h}},
	}
}

// Write renders pages into a PDF.
func Write(w io.Writer, pages []Page, opts Options) error {
	if len(pages) == 0 {
		return fmt.Errorf("no pages to write")
	}
	first := pages[0].Size
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           gofpdf.SizeType{Wd: first.W, Ht: first.H},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	if opts.Title != "" {
		pdf.SetTitle(opts.Title, true)
	}
	pdf.SetCreator("printshop", true)

	n := 0
	for pi, p := range pages {
		if p.Size.W <= 0 || p.Size.H <= 0 {
			return fmt.Errorf("page %d: %w: size %gx%gmm", pi, units.ErrInvalidMeasurement, p.Size.W, p.Size.H)
		}
		pdf.AddPageFormat("P", gofpdf.SizeType{Wd: p.Size.W, Ht: p.Size.H})
		for _, it := range p.Items {
			name := fmt.Sprintf("img%d", n)
			n++
			if err := placeImage(pdf, name, it, opts.Quality); err != nil {
				return fmt.Errorf("page %d: %w", pi, err)
			}
			if p.CutGuides {
				drawGuides(pdf, it)
			}
		}
		if p.Caption != "" {
			drawCaption(pdf, p)
		}
	}
	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}

// Bytes is Write into a byte slice.
func Bytes(pages []Page, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, pages, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func placeImage(pdf *gofpdf.Fpdf, name string, it Item, quality int) error {
	if it.Image == nil {
		return fmt.Errorf("item %s has no image", name)
	}
	if it.W <= 0 || it.H <= 0 {
		return fmt.Errorf("item %s: %w: size %gx%gmm", name, units.ErrInvalidMeasurement, it.W, it.H)
	}
	var buf bytes.Buffer
	if err := codec.Encode(&buf, it.Image, codec.Options{Format: codec.JPEG, Quality: quality}); err != nil {
		return err
	}
	opt := gofpdf.ImageOptions{ImageType: "JPG", AllowNegativePosition: true}
	pdf.RegisterImageOptionsReader(name, opt, &buf)
	pdf.ImageOptions(name, it.X, it.Y, it.W, it.H, false, opt, 0, "")
	return pdf.Error()
}

// drawGuides outlines the item in red so it can be trimmed by hand.
func drawGuides(pdf *gofpdf.Fpdf, it Item) {
	pdf.SetDrawColor(255, 0, 0)
	pdf.SetLineWidth(guideWidth)
	pdf.Rect(it.X, it.Y, it.W, it.H, "D")
	pdf.SetDrawColor(0, 0, 0)
}

func drawCaption(pdf *gofpdf.Fpdf, p Page) {
	pdf.SetFont("Helvetica", "", captionSize)
	pdf.SetTextColor(0, 0, 0)
	pdf.Text(captionInset, p.Size.H-captionInset, pdf.UnicodeTranslatorFromDescriptor("")(p.Caption))
}
