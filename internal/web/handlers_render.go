package web

import (
	"bytes"
	"fmt"
	"image"
	"net/http"

	"printshop/internal/codec"
	"printshop/internal/config"
	"printshop/internal/fit"
	"printshop/internal/pdfpage"
	"printshop/internal/products"
	"printshop/internal/sheet"
	"printshop/internal/units"
)

// output is what a product handler produced: one or more rasters and, for
// products that are PDFs by nature, a finished document.
type output struct {
	name   string
	images []*image.NRGBA
	// page sizes the PDF pages when the rasters are full-page sheets.
	page *pdfpage.PageSize
	pdf  []byte
}

type renderFunc func(r *http.Request, f *form, photos []upload) (output, error)

func (s *Server) renderers() map[string]renderFunc {
	return map[string]renderFunc{
		"portrait":    s.renderPortrait,
		"idsheet":     s.renderIDSheet,
		"polaroid":    s.renderPolaroid,
		"multiformat": s.renderMultiFormat,
		"a4":          s.renderA4,
		"centered":    s.renderCentered,
		"triptych":    s.renderTriptych,
	}
}

// POST /render/{product}
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	product := r.PathValue("product")
	render, ok := s.renderers()[product]
	if !ok {
		http.Error(w, fmt.Sprintf("unknown product %q", product), http.StatusNotFound)
		return
	}
	f, err := s.parseForm(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	photos, err := f.Photos()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if len(photos) == 0 {
		s.writeError(w, r, fmt.Errorf("%w: no photo uploaded", errBadRequest))
		return
	}
	format := f.Format(codec.JPEG)
	dpi := f.DPI()
	out, err := render(r, f, photos)
	if err == nil {
		err = f.Err()
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger().Info("rendered", "product", product, "photos", len(photos), "outputs", len(out.images), "dpi", dpi, "format", format)
	s.sendOutput(w, r, out, format, dpi)
}

func single(img *image.NRGBA, name string) output {
	return output{name: name, images: []*image.NRGBA{img}}
}

func (s *Server) renderPortrait(_ *http.Request, f *form, photos []upload) (output, error) {
	dpi := f.DPI()
	arcCm := f.Float("arc_cm", s.Config.ArcHeightCm)
	if arcCm <= 0 || arcCm > config.MaxArcHeightCm {
		return output{}, fmt.Errorf("%w: arc_cm %g outside (0, %d]", errBadRequest, arcCm, config.MaxArcHeightCm)
	}
	arc, err := units.CmToPx(arcCm, dpi)
	if err != nil {
		return output{}, err
	}
	res, err := products.PortraitFrame(photos[0].Image, products.PortraitOptions{
		DPI:        dpi,
		Policy:     f.Policy(fit.Cover),
		Offset:     f.Int("offset", 0),
		ArcHeight:  arc,
		Mask:       s.Config.MaskOptions(),
		Background: f.Color("background", s.Config.BackgroundColor()),
	})
	if err != nil {
		return output{}, err
	}
	switch part := f.String("part", "window"); part {
	case "window":
		return single(res.Window, "photo_10x6_halfmoon"), nil
	case "print":
		return single(res.Print, "photo_10x15"), nil
	case "preview":
		return single(res.Preview, "photo_10x15_preview"), nil
	case "both":
		return output{name: "photo_frame", images: []*image.NRGBA{res.Print, res.Window}}, nil
	default:
		return output{}, fmt.Errorf("%w: unknown part %q", errBadRequest, part)
	}
}

func (s *Server) renderIDSheet(_ *http.Request, f *form, photos []upload) (output, error) {
	img, err := products.IDSheet(photos[0].Image, products.IDSheetOptions{
		DPI:     f.DPI(),
		Policy:  f.Policy(fit.Cover),
		Border:  f.Bool("border"),
		Spacing: f.Int("spacing", 0),
		Rotate:  f.Int("rotate", 0),
	})
	if err != nil {
		return output{}, err
	}
	return single(img, "photos_3x4_on_10x15"), nil
}

func (s *Server) renderPolaroid(_ *http.Request, f *form, photos []upload) (output, error) {
	name := f.String("frame", "medium")
	frame, ok := s.Presets.Frame(name)
	if !ok {
		return output{}, fmt.Errorf("%w: unknown frame %q", products.ErrInvalidOption, name)
	}
	img, err := products.Polaroid(photos[0].Image, products.PolaroidOptions{
		Size:        units.PixelSize{W: frame.Width, H: frame.Height},
		Border:      f.Int("border", 0),
		BorderColor: f.Color("border_color", nil),
		Caption:     f.String("caption", ""),
		TextColor:   f.Color("text_color", nil),
		Rotate:      f.Int("rotate", 0),
	})
	if err != nil {
		return output{}, err
	}
	return single(img, "polaroid"), nil
}

func (s *Server) renderMultiFormat(r *http.Request, f *form, photos []upload) (output, error) {
	var formats []products.Format
	for _, name := range f.Strings("formats") {
		ft, ok := s.Presets.Format(name)
		if !ok {
			return output{}, fmt.Errorf("%w: unknown format %q", products.ErrInvalidOption, name)
		}
		formats = append(formats, ft)
	}
	if cw, ch := f.Float("custom_w", 0), f.Float("custom_h", 0); cw > 0 || ch > 0 {
		formats = append(formats, products.Format{Name: fmt.Sprintf("%gx%g", cw, ch), Width: cw, Height: ch})
	}
	if len(formats) == 0 {
		formats = s.Presets.Formats
	}
	policy := f.Policy(fit.Contain)
	res, err := products.MultiFormat(r.Context(), photos[0].Image, formats, products.MultiFormatOptions{
		DPI:        f.DPI(),
		Policy:     &policy,
		Background: f.Color("background", s.Config.BackgroundColor()),
		Annotate:   f.Bool("annotate"),
	})
	if err != nil {
		return output{}, err
	}
	if f.String("part", "sheets") == "prints" {
		out := output{name: "formats"}
		for _, p := range res.Prints {
			out.images = append(out.images, p.Image)
		}
		return out, nil
	}
	page := pdfpage.Photo
	return output{name: "sheet_10x15", images: res.Sheets, page: &page}, nil
}

func (s *Server) renderA4(r *http.Request, f *form, photos []upload) (output, error) {
	name := f.String("layout", "a4-10x15")
	layout, ok := s.Presets.Layout(name)
	if !ok {
		return output{}, fmt.Errorf("%w: unknown layout %q", products.ErrInvalidOption, name)
	}
	page, err := layout.PageSize()
	if err != nil {
		return output{}, err
	}
	dpi := f.DPI()
	s.inspectLayout(layout, page, dpi)
	pages, err := products.LayoutPages(r.Context(), images(photos), layout, products.LayoutOptions{
		DPI:        dpi,
		Policy:     f.Policy(fit.Cover),
		Background: f.Color("background", s.Config.BackgroundColor()),
	})
	if err != nil {
		return output{}, err
	}
	return output{name: "a4_photos", images: pages, page: &page}, nil
}

func (s *Server) renderCentered(_ *http.Request, f *form, photos []upload) (output, error) {
	var buf bytes.Buffer
	err := products.CenteredPDF(&buf, photos[0].Image, products.CenteredOptions{
		DPI:     f.DPI(),
		Quality: s.Config.Quality,
		Policy:  f.Policy(fit.Cover),
		Caption: f.String("caption", ""),
	})
	if err != nil {
		return output{}, err
	}
	return output{name: "image_10x15", pdf: buf.Bytes()}, nil
}

func (s *Server) renderTriptych(_ *http.Request, f *form, photos []upload) (output, error) {
	opts := products.DefaultTriptychOptions()
	opts.DPI = f.DPI()
	opts.BorderMm = f.Float("border_mm", opts.BorderMm)
	opts.SpacingMm = f.Float("spacing_mm", opts.SpacingMm)
	opts.Title = f.String("title", "")
	opts.TitleSize = f.Float("title_pt", opts.TitleSize)
	opts.Footer = f.String("footer", "")
	opts.FooterSize = f.Float("footer_pt", opts.FooterSize)
	opts.Background = f.Color("background", nil)
	if len(photos) > 3 {
		photos = photos[:3]
	}
	img, err := products.Triptych(images(photos), opts)
	if err != nil {
		return output{}, err
	}
	return single(img, "triptych_20x15"), nil
}

// inspectLayout logs slots that clip or overlap at dpi. Rounding can make
// slots that touch in millimeters share a pixel row.
func (s *Server) inspectLayout(layout products.Layout, page pdfpage.PageSize, dpi int) {
	size, err := page.Pixels(dpi)
	if err != nil {
		return
	}
	slots, err := sheet.FromMillimeters(layout.Slots, dpi)
	if err != nil {
		return
	}
	if rep := sheet.Inspect(size, slots); !rep.OK() {
		s.logger().Debug("layout slots",
			"layout", layout.Name, "dpi", dpi,
			"clipped", rep.Clipped, "invalid", rep.Invalid, "overlaps", len(rep.Overlaps))
	}
}
