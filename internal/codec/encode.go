package codec

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"image"
	"io"
	"math"

	"github.com/disintegration/imaging"
)

// Options configures Encode.
type Options struct {
	Format Format
	// Quality is the JPEG quality, 1..100. Zero means DefaultQuality.
	Quality int
	// DPI is written to the file header when positive.
	DPI int
}

// Encode writes img as JPEG or PNG. PDF output goes through pdfpage.
func Encode(w io.Writer, img image.Image, opts Options) error {
	var buf bytes.Buffer
	switch opts.Format {
	case JPEG, "":
		q := opts.Quality
		if q == 0 {
			q = DefaultQuality
		}
		if q < 1 || q > 100 {
			return fmt.Errorf("jpeg quality %d out of range", q)
		}
		if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(q)); err != nil {
			return fmt.Errorf("encoding jpeg: %w", err)
		}
		if opts.DPI > 0 {
			if err := withJFIFDensity(&buf, opts.DPI); err != nil {
				return err
			}
		}
	case PNG:
		if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
			return fmt.Errorf("encoding png: %w", err)
		}
		if opts.DPI > 0 {
			if err := withPNGDensity(&buf, opts.DPI); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("cannot encode %q as a raster", opts.Format)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// EncodeBytes is Encode into a fresh byte slice.
func EncodeBytes(img image.Image, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var errMalformed = errors.New("malformed encoder output")

// withJFIFDensity inserts a JFIF APP0 segment with the resolution right after
// the SOI marker. The stdlib encoder writes none.
func withJFIFDensity(buf *bytes.Buffer, dpi int) error {
	b := buf.Bytes()
	if len(b) < 2 || b[0] != 0xFF || b[1] != 0xD8 {
		return fmt.Errorf("jpeg: %w", errMalformed)
	}
	d := uint16(min(dpi, math.MaxUint16))
	app0 := []byte{
		0xFF, 0xE0, 0x00, 0x10,
		'J', 'F', 'I', 'F', 0x00,
		0x01, 0x01, // version 1.1
		0x01, // density in dots per inch
		byte(d >> 8), byte(d), byte(d >> 8), byte(d),
		0x00, 0x00, // no thumbnail
	}
	out := make([]byte, 0, len(b)+len(app0))
	out = append(out, b[:2]...)
	out = append(out, app0...)
	out = append(out, b[2:]...)
	buf.Reset()
	buf.Write(out)
	return nil
}

const pngIHDREnd = 8 + 4 + 4 + 13 + 4 // signature, length, type, data, crc

// withPNGDensity inserts a pHYs chunk after IHDR.
func withPNGDensity(buf *bytes.Buffer, dpi int) error {
	b := buf.Bytes()
	if len(b) < pngIHDREnd || string(b[12:16]) != "IHDR" {
		return fmt.Errorf("png: %w", errMalformed)
	}
	ppm := uint32(math.Round(float64(dpi) / 0.0254))
	chunk := make([]byte, 4+4+9+4)
	binary.BigEndian.PutUint32(chunk[0:4], 9)
	copy(chunk[4:8], "pHYs")
	binary.BigEndian.PutUint32(chunk[8:12], ppm)
	binary.BigEndian.PutUint32(chunk[12:16], ppm)
	chunk[16] = 1 // unit: meter
	binary.BigEndian.PutUint32(chunk[17:21], crc32.ChecksumIEEE(chunk[4:17]))

	out := make([]byte, 0, len(b)+len(chunk))
	out = append(out, b[:pngIHDREnd]...)
	out = append(out, chunk...)
	out = append(out, b[pngIHDREnd:]...)
	buf.Reset()
	buf.Write(out)
	return nil
}
