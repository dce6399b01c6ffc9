package products

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

var namedColors = map[string]string{
	"white": "#ffffff",
	"black": "#000000",
	"gray":  "#808080",
	"grey":  "#808080",
	"red":   "#ff0000",
	"cream": "#f5f0e6",
}

// ParseColor reads a "#rrggbb" or "#rgb" hex color, or one of a few names,
// as an opaque color.
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if hex, ok := namedColors[s]; ok {
		s = hex
	}
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	if len(s) != 4 && len(s) != 7 {
		return color.NRGBA{}, fmt.Errorf("%w: color %q", ErrInvalidOption, s)
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("%w: color %q", ErrInvalidOption, s)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
}
