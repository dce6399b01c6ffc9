package mask

import (
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"printshop/internal/units"
)

var (
	red   = color.NRGBA{R: 255, A: 255}
	white = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
)

func TestHalfMoon_SizeAndValues(t *testing.T) {
	size := units.PixelSize{W: 300, H: 180}
	m, err := HalfMoon(size, 150, Options{})
	require.NoError(t, err)
	assert.Equal(t, size, units.SizeOfImage(m))
	for _, v := range m.Pix {
		if v != 0 && v != 255 {
			t.Fatalf("hard mask contains %d", v)
		}
	}
}

func TestHalfMoon_PortraitWindowScenario(t *testing.T) {
	size, err := units.SizeOfCm(10, 6, 300)
	require.NoError(t, err)
	m, err := HalfMoon(size, 709, Options{})
	require.NoError(t, err)

	out, err := Apply(imaging.New(size.W, size.H, red), m, color.White)
	require.NoError(t, err)
	assert.Equal(t, size, units.SizeOfImage(out))

	for x := 0; x < size.W; x++ {
		require.Equal(t, red, out.NRGBAAt(x, size.H-1), "bottom row x=%d", x)
	}
	cx := size.W / 2
	for y := 0; y < size.H; y++ {
		require.Equal(t, red, out.NRGBAAt(cx, y), "center column y=%d", y)
	}
	assert.Equal(t, white, out.NRGBAAt(0, 0))
	assert.Equal(t, white, out.NRGBAAt(size.W-1, 0))
}

func TestHalfMoon_ApexFollowsArcHeight(t *testing.T) {
	size := units.PixelSize{W: 200, H: 100}
	m, err := HalfMoon(size, 60, Options{HeightFactor: 2})
	require.NoError(t, err)
	cx := size.W / 2
	assert.Equal(t, uint8(0), m.GrayAt(cx, 38).Y)
	assert.Equal(t, uint8(255), m.GrayAt(cx, 41).Y)
	// the curve falls toward the corners
	assert.Equal(t, uint8(0), m.GrayAt(0, 42).Y)
}

func TestHalfMoon_HeightFactorChangesCurvature(t *testing.T) {
	size := units.PixelSize{W: 200, H: 100}
	tall, err := HalfMoon(size, 100, Options{HeightFactor: 2.6})
	require.NoError(t, err)
	short, err := HalfMoon(size, 100, Options{HeightFactor: 2.0})
	require.NoError(t, err)
	// a taller ellipse drops faster toward the corners
	assert.Less(t, visible(size.Rect(), tall), visible(size.Rect(), short))
}

func TestHalfMoon_Antialias(t *testing.T) {
	size := units.PixelSize{W: 240, H: 140}
	m, err := HalfMoon(size, 140, Options{Antialias: true})
	require.NoError(t, err)
	assert.Equal(t, size, units.SizeOfImage(m))
	assert.Equal(t, uint8(255), m.GrayAt(120, 70).Y)
	assert.Equal(t, uint8(255), m.GrayAt(0, 139).Y)
	assert.Equal(t, uint8(0), m.GrayAt(0, 0).Y)

	soft := false
	for _, v := range m.Pix {
		if v != 0 && v != 255 {
			soft = true
			break
		}
	}
	assert.True(t, soft, "antialiased mask should have intermediate values")

	hard, err := HalfMoon(size, 140, Options{})
	require.NoError(t, err)
	diff := 0
	for i := range hard.Pix {
		if (hard.Pix[i] > 127) != (m.Pix[i] > 127) {
			diff++
		}
	}
	assert.Less(t, diff, size.W*2, "soft and hard masks should agree away from the edge")
}

func TestHalfMoon_Errors(t *testing.T) {
	_, err := HalfMoon(units.PixelSize{W: 0, H: 10}, 5, Options{})
	assert.ErrorIs(t, err, units.ErrInvalidMeasurement)
	_, err = HalfMoon(units.PixelSize{W: 10, H: 10}, 0, Options{})
	assert.ErrorIs(t, err, units.ErrInvalidMeasurement)
	_, err = HalfMoon(units.PixelSize{W: 10, H: 10}, 5, Options{HeightFactor: 0.5})
	assert.ErrorIs(t, err, units.ErrInvalidMeasurement)
}

func TestApply_FullAndEmptyMasks(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 17, 9))
	for i := range src.Pix {
		src.Pix[i] = uint8(i*13) | 1
	}
	for i := 3; i < len(src.Pix); i += 4 {
		src.Pix[i] = 255
	}
	size := units.SizeOfImage(src)
	before := append([]uint8(nil), src.Pix...)

	out, err := Apply(src, Filled(size, 255), color.Black)
	require.NoError(t, err)
	assert.Equal(t, src.Pix, out.Pix)

	bg := color.NRGBA{R: 9, G: 8, B: 7, A: 255}
	out, err = Apply(src, Filled(size, 0), bg)
	require.NoError(t, err)
	for y := 0; y < size.H; y++ {
		for x := 0; x < size.W; x++ {
			require.Equal(t, bg, out.NRGBAAt(x, y))
		}
	}
	assert.Equal(t, before, src.Pix, "source must not be modified")
}

func TestApply_Blends(t *testing.T) {
	size := units.PixelSize{W: 2, H: 1}
	out, err := Apply(imaging.New(2, 1, color.Black), Filled(size, 128), color.White)
	require.NoError(t, err)
	c := out.NRGBAAt(0, 0)
	assert.InDelta(t, 127, int(c.R), 1)
	assert.Equal(t, uint8(255), c.A)
}

func TestApply_SizeMismatch(t *testing.T) {
	_, err := Apply(imaging.New(10, 10, red), Filled(units.PixelSize{W: 10, H: 9}, 255), color.White)
	assert.ErrorIs(t, err, ErrSizeMismatch)
	_, err = Apply(imaging.New(10, 10, red), nil, color.White)
	assert.ErrorIs(t, err, ErrSizeMismatch)
}

func visible(r image.Rectangle, m *image.Gray) int {
	n := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if m.GrayAt(x, y).Y > 127 {
				n++
			}
		}
	}
	return n
}
