package web

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"net/http"

	"printshop/internal/codec"
	"printshop/internal/products"
)

// sendOutput encodes a product's result as a download: a single raster as
// JPEG or PNG, several rasters as a zip of them, or any of them as a PDF.
func (s *Server) sendOutput(w http.ResponseWriter, r *http.Request, out output, format codec.Format, dpi int) {
	var buf bytes.Buffer
	switch {
	case out.pdf != nil:
		format = codec.PDF
		buf.Write(out.pdf)
	case format == codec.PDF && out.page != nil:
		if err := products.SheetsPDF(&buf, out.images, *out.page, s.Config.Quality); err != nil {
			s.writeError(w, r, err)
			return
		}
	case format == codec.PDF:
		imgs := make([]image.Image, len(out.images))
		for i, img := range out.images {
			imgs[i] = img
		}
		if err := products.ImagesToPDF(&buf, imgs, dpi, s.Config.Quality, out.name); err != nil {
			s.writeError(w, r, err)
			return
		}
	case len(out.images) == 1:
		opts := codec.Options{Format: format, Quality: s.Config.Quality, DPI: dpi}
		if err := codec.Encode(&buf, out.images[0], opts); err != nil {
			s.writeError(w, r, err)
			return
		}
	default:
		if err := writeZip(&buf, out, format, s.Config.Quality, dpi); err != nil {
			s.writeError(w, r, err)
			return
		}
		sendFile(w, out.name+".zip", "application/zip", buf.Bytes())
		return
	}
	sendFile(w, fmt.Sprintf("%s_%ddpi.%s", out.name, dpi, format.Ext()), format.ContentType(), buf.Bytes())
}

func writeZip(buf *bytes.Buffer, out output, format codec.Format, quality, dpi int) error {
	zw := zip.NewWriter(buf)
	for i, img := range out.images {
		fw, err := zw.Create(fmt.Sprintf("%s_%d_%ddpi.%s", out.name, i+1, dpi, format.Ext()))
		if err != nil {
			return err
		}
		if err := codec.Encode(fw, img, codec.Options{Format: format, Quality: quality, DPI: dpi}); err != nil {
			return err
		}
	}
	return zw.Close()
}

func sendFile(w http.ResponseWriter, name, contentType string, b []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	if _, err := w.Write(b); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
