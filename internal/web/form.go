package web

import (
	"fmt"
	"image"
	"image/color"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"printshop/internal/codec"
	"printshop/internal/config"
	"printshop/internal/fit"
	"printshop/internal/products"
)

const photoField = "photo"

// upload is one decoded file from a multipart request.
type upload struct {
	Name  string
	Size  int64
	Image *image.NRGBA
}

// form wraps a parsed multipart request with typed accessors. The first
// parse error is kept and reported by Err.
type form struct {
	r   *http.Request
	cfg config.Config
	err error
}

func (s *Server) parseForm(w http.ResponseWriter, r *http.Request) (*form, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.Config.MaxUploadBytes())
	if err := r.ParseMultipartForm(32 << 20); err != nil && err != http.ErrNotMultipart {
		return nil, fmt.Errorf("%w: %w", errBadRequest, err)
	}
	if r.MultipartForm == nil {
		if err := r.ParseForm(); err != nil {
			return nil, fmt.Errorf("%w: %w", errBadRequest, err)
		}
	}
	return &form{r: r, cfg: s.Config}, nil
}

func (f *form) Err() error { return f.err }

func (f *form) fail(format string, args ...any) {
	if f.err == nil {
		f.err = fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
	}
}

func (f *form) String(key, def string) string {
	if v := strings.TrimSpace(f.r.FormValue(key)); v != "" {
		return v
	}
	return def
}

func (f *form) Strings(key string) []string {
	if err := f.r.ParseForm(); err != nil {
		return nil
	}
	var out []string
	for _, v := range f.r.Form[key] {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func (f *form) Int(key string, def int) int {
	v := f.r.FormValue(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		f.fail("%s: %q is not a whole number", key, v)
		return def
	}
	return n
}

func (f *form) Float(key string, def float64) float64 {
	v := f.r.FormValue(key)
	if v == "" {
		return def
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		f.fail("%s: %q is not a number", key, v)
		return def
	}
	return n
}

func (f *form) Bool(key string) bool {
	switch strings.ToLower(f.r.FormValue(key)) {
	case "1", "on", "true", "yes":
		return true
	}
	return false
}

// DPI reads the dpi field, falling back to the configured default.
func (f *form) DPI() int {
	dpi := f.Int("dpi", f.cfg.DPI)
	if dpi < config.MinDPI || dpi > config.MaxDPI {
		f.fail("dpi %d outside [%d, %d]", dpi, config.MinDPI, config.MaxDPI)
		return f.cfg.DPI
	}
	return dpi
}

func (f *form) Format(def codec.Format) codec.Format {
	v := f.r.FormValue("format")
	if v == "" {
		return def
	}
	format, err := codec.ParseFormat(v)
	if err != nil {
		f.fail("%v", err)
		return def
	}
	return format
}

func (f *form) Policy(def fit.Policy) fit.Policy {
	v := f.r.FormValue("policy")
	if v == "" {
		return def
	}
	p, err := fit.ParsePolicy(v)
	if err != nil {
		f.fail("%v", err)
		return def
	}
	return p
}

func (f *form) Color(key string, def color.Color) color.Color {
	v := f.r.FormValue(key)
	if v == "" {
		return def
	}
	c, err := products.ParseColor(v)
	if err != nil {
		f.fail("%s: %v", key, err)
		return def
	}
	return c
}

// Photos decodes every file sent under the photo field, in order.
func (f *form) Photos() ([]upload, error) {
	if f.r.MultipartForm == nil {
		return nil, nil
	}
	headers := f.r.MultipartForm.File[photoField]
	out := make([]upload, 0, len(headers))
	for _, fh := range headers {
		img, err := decodeUpload(fh, f.cfg.MaxPixels())
		if err != nil {
			return nil, fmt.Errorf("%s: %w", fh.Filename, err)
		}
		out = append(out, upload{Name: fh.Filename, Size: fh.Size, Image: img})
	}
	return out, nil
}

func decodeUpload(fh *multipart.FileHeader, maxPixels int) (*image.NRGBA, error) {
	file, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()
	img, _, err := codec.DecodeLimit(file, maxPixels)
	return img, err
}

func images(ups []upload) []image.Image {
	out := make([]image.Image, len(ups))
	for i, u := range ups {
		out[i] = u.Image
	}
	return out
}
