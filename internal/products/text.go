package products

import (
	"image"
	"image/color"
	"image/draw"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

var (
	fontsOnce     sync.Once
	regular, bold *opentype.Font
	fontsErr      error
)

func loadFonts() error {
	fontsOnce.Do(func() {
		if regular, fontsErr = opentype.Parse(goregular.TTF); fontsErr != nil {
			return
		}
		bold, fontsErr = opentype.Parse(gobold.TTF)
	})
	return fontsErr
}

// textStyle describes a single line of text. Size is in points and is
// scaled to pixels with the raster's dpi.
type textStyle struct {
	Size  float64
	Bold  bool
	Color color.Color
}

type label struct {
	face   font.Face
	bounds fixed.Rectangle26_6
	text   string
	color  color.Color
}

func newLabel(s string, st textStyle, dpi int) (*label, error) {
	if err := loadFonts(); err != nil {
		return nil, err
	}
	f := regular
	if st.Bold {
		f = bold
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    st.Size,
		DPI:     float64(dpi),
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, err
	}
	b, _ := font.BoundString(face, s)
	c := st.Color
	if c == nil {
		c = color.Black
	}
	return &label{face: face, bounds: b, text: s, color: c}, nil
}

func (l *label) Width() int  { return (l.bounds.Max.X - l.bounds.Min.X).Ceil() }
func (l *label) Height() int { return (l.bounds.Max.Y - l.bounds.Min.Y).Ceil() }

// Draw puts the text's bounding box top-left corner at pt.
func (l *label) Draw(dst draw.Image, pt image.Point) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(l.color),
		Face: l.face,
		Dot:  fixed.P(pt.X, pt.Y).Sub(l.bounds.Min),
	}
	d.DrawString(l.text)
}

// DrawCentered centers the text horizontally on dst with its top at y.
func (l *label) DrawCentered(dst draw.Image, y int) {
	x := (dst.Bounds().Dx() - l.Width()) / 2
	l.Draw(dst, image.Pt(x, y))
}

func (l *label) Close() error { return l.face.Close() }

// outline draws a one pixel rectangle border.
func outline(dst draw.Image, r image.Rectangle, c color.Color) {
	r = r.Intersect(dst.Bounds())
	if r.Empty() {
		return
	}
	for x := r.Min.X; x < r.Max.X; x++ {
		dst.Set(x, r.Min.Y, c)
		dst.Set(x, r.Max.Y-1, c)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		dst.Set(r.Min.X, y, c)
		dst.Set(r.Max.X-1, y, c)
	}
}
