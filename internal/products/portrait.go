package products

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	"printshop/internal/fit"
	"printshop/internal/mask"
	"printshop/internal/units"
)

// Portrait frame geometry in centimeters: a 10x15 print and the 10x6 window
// that goes behind the frame's arched opening.
const (
	portraitW = 10
	portraitH = 15
	windowH   = 6
)

// PortraitOptions configures PortraitFrame.
type PortraitOptions struct {
	DPI    int
	Policy fit.Policy
	// Offset moves the window down from the middle of the print, in pixels.
	// Negative values move it up. It is clamped to the print.
	Offset int
	// ArcHeight is the dome height in pixels. Zero means the whole window.
	ArcHeight int
	Mask      mask.Options
	// Background replaces the masked-out corners. Nil means white.
	Background color.Color
}

// PortraitResult holds the outputs of PortraitFrame.
type PortraitResult struct {
	// Print is the full 10x15 print.
	Print *image.NRGBA
	// Window is the 10x6 area with the half-moon applied.
	Window *image.NRGBA
	// Preview is Print with the masked window drawn back in place.
	Preview *image.NRGBA
	// WindowRect locates Window inside Print.
	WindowRect image.Rectangle
}

// PortraitFrame builds a 10x15 print of src and the masked 10x6 window cut
// from it.
func PortraitFrame(src image.Image, opts PortraitOptions) (PortraitResult, error) {
	printSize, err := units.SizeOfCm(portraitW, portraitH, opts.DPI)
	if err != nil {
		return PortraitResult{}, err
	}
	winSize, err := units.SizeOfCm(portraitW, windowH, opts.DPI)
	if err != nil {
		return PortraitResult{}, err
	}
	bg := opts.Background
	if bg == nil {
		bg = color.White
	}

	full, err := fit.Fit(src, printSize, fit.Options{Policy: opts.Policy, Background: bg})
	if err != nil {
		return PortraitResult{}, err
	}

	x := (printSize.W - winSize.W) / 2
	y := (printSize.H-winSize.H)/2 + opts.Offset
	y = max(0, min(y, printSize.H-winSize.H))
	rect := winSize.At(x, y)

	arc := opts.ArcHeight
	if arc == 0 {
		arc = winSize.H
	}
	m, err := mask.HalfMoon(winSize, arc, opts.Mask)
	if err != nil {
		return PortraitResult{}, fmt.Errorf("portrait window: %w", err)
	}
	window, err := mask.Apply(imaging.Crop(full, rect), m, bg)
	if err != nil {
		return PortraitResult{}, err
	}

	return PortraitResult{
		Print:      full,
		Window:     window,
		Preview:    imaging.Paste(full, window, rect.Min),
		WindowRect: rect,
	}, nil
}
