package mask

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	"printshop/internal/units"
)

// Apply composites src over a solid background through m. Pixels where m is
// 255 come from src unchanged, pixels where m is 0 take bg, and intermediate
// values blend linearly. Neither src nor m is modified.
func Apply(src image.Image, m *image.Gray, bg color.Color) (*image.NRGBA, error) {
	if src == nil || m == nil {
		return nil, fmt.Errorf("%w: nil input", ErrSizeMismatch)
	}
	ss, ms := units.SizeOfImage(src), units.SizeOfImage(m)
	if ss != ms {
		return nil, fmt.Errorf("%w: source %s, mask %s", ErrSizeMismatch, ss, ms)
	}
	if bg == nil {
		bg = color.White
	}
	b := color.NRGBAModel.Convert(bg).(color.NRGBA)
	back := [4]uint32{uint32(b.R), uint32(b.G), uint32(b.B), uint32(b.A)}

	out := imaging.Clone(src)
	for y := 0; y < ss.H; y++ {
		mrow := m.Pix[y*m.Stride:]
		orow := out.Pix[y*out.Stride:]
		for x := 0; x < ss.W; x++ {
			v := uint32(mrow[x])
			if v == 255 {
				continue
			}
			px := orow[x*4 : x*4+4]
			for c := 0; c < 4; c++ {
				px[c] = uint8((uint32(px[c])*v + back[c]*(255-v) + 127) / 255)
			}
		}
	}
	return out, nil
}
