package pdfpage

import (
	"bytes"
	"errors"
	"image"
	"testing"

	"printshop/internal/units"
)

func solid(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+3] = 200, 255
	}
	return img
}

func pageCount(b []byte) int {
	return bytes.Count(b, []byte("/Type /Page")) - bytes.Count(b, []byte("/Type /Pages"))
}

func TestWrite_NoPages(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, nil, Options{}); err == nil {
		t.Fatal("expected error for empty document")
	}
}

func TestWrite_SinglePage(t *testing.T) {
	p, err := PageForImage(solid(118, 59), 300)
	if err != nil {
		t.Fatalf("PageForImage: %v", err)
	}
	if p.Size.W < 9.9 || p.Size.W > 10.1 || p.Size.H < 4.9 || p.Size.H > 5.1 {
		t.Errorf("page size = %v, want ~10x5mm", p.Size)
	}
	b, err := Bytes([]Page{p}, Options{Title: "Sheet"})
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	if !bytesPrefix(b, []byte("%PDF")) {
		t.Error("output is not a PDF (missing %PDF header)")
	}
	if n := pageCount(b); n != 1 {
		t.Errorf("pages = %d, want 1", n)
	}
}

func TestWrite_MultiPageWithGuidesAndCaption(t *testing.T) {
	img := solid(40, 60)
	pages := []Page{
		Centered(A4, img, 150, 100),
		{Size: Photo, Items: []Item{{Image: img, X: 5, Y: 5, W: 40, H: 60}, {Image: img, X: 50, Y: 5, W: 40, H: 60}}},
		{Size: A5.Landscape(), Items: []Item{{Image: img, W: 10, H: 10}}},
	}
	pages[0].CutGuides = true
	pages[0].Caption = "Cut along the red line"

	b, err := Bytes(pages, Options{Quality: 90})
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	if !bytesPrefix(b, []byte("%PDF")) {
		t.Error("output is not a PDF (missing %PDF header)")
	}
	if n := pageCount(b); n != 3 {
		t.Errorf("pages = %d, want 3", n)
	}
	if !bytes.Contains(b, []byte("/Helvetica")) {
		t.Error("caption font not embedded")
	}
}

func TestWrite_InvalidItem(t *testing.T) {
	pages := []Page{{Size: A4, Items: []Item{{Image: solid(2, 2), W: 0, H: 10}}}}
	err := Write(&bytes.Buffer{}, pages, Options{})
	if !errors.Is(err, units.ErrInvalidMeasurement) {
		t.Errorf("err = %v, want ErrInvalidMeasurement", err)
	}

	pages = []Page{{Size: PageSize{}, Items: nil}}
	if err := Write(&bytes.Buffer{}, pages, Options{}); !errors.Is(err, units.ErrInvalidMeasurement) {
		t.Errorf("err = %v, want ErrInvalidMeasurement", err)
	}

	pages = []Page{{Size: A4, Items: []Item{{W: 10, H: 10}}}}
	if err := Write(&bytes.Buffer{}, pages, Options{}); err == nil {
		t.Error("expected error for item without image")
	}
}

func TestCentered(t *testing.T) {
	p := Centered(A4, image.NewGray(image.Rect(0, 0, 1, 1)), 150, 100)
	it := p.Items[0]
	if it.X != 30 || it.Y != 98.5 {
		t.Errorf("centered at (%g,%g), want (30,98.5)", it.X, it.Y)
	}
}

func TestLookupSize(t *testing.T) {
	for name, want := range map[string]PageSize{"A4": A4, "letter": Letter, "10x15": Photo} {
		got, ok := LookupSize(name)
		if !ok || got != want {
			t.Errorf("LookupSize(%q) = %v, %v", name, got, ok)
		}
	}
	if _, ok := LookupSize("tabloid"); ok {
		t.Error("unknown size should not resolve")
	}
	px, err := A4.Pixels(300)
	if err != nil {
		t.Fatalf("Pixels: %v", err)
	}
	if px != (units.PixelSize{W: 2480, H: 3508}) {
		t.Errorf("A4 at 300dpi = %v", px)
	}
	if l := A4.Landscape(); l.W != 297 {
		t.Errorf("landscape = %v", l)
	}
}

func bytesPrefix(b, prefix []byte) bool {
	if len(b) < len(prefix) {
		return false
	}
	for i := range prefix {
		if b[i] != prefix[i] {
			return false
		}
	}
	return true
}
