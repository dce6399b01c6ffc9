// Package units converts physical print measurements into pixel counts.
package units

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidMeasurement is returned for non-positive lengths or resolutions.
var ErrInvalidMeasurement = errors.New("invalid measurement")

const (
	cmPerInch = 2.54
	mmPerInch = 25.4
	ptPerInch = 72.0
)

// Unit is the physical unit a Length is expressed in.
type Unit int

const (
	Centimeter Unit = iota
	Millimeter
)

func (u Unit) String() string {
	switch u {
	case Centimeter:
		return "cm"
	case Millimeter:
		return "mm"
	default:
		return fmt.Sprintf("unit(%d)", int(u))
	}
}

// Length is a physical measurement tagged with its unit.
type Length struct {
	Value float64
	Unit  Unit
}

// Cm returns a centimeter length.
func Cm(v float64) Length { return Length{Value: v, Unit: Centimeter} }

// Mm returns a millimeter length.
func Mm(v float64) Length { return Length{Value: v, Unit: Millimeter} }

// Millimeters returns the length in millimeters.
func (l Length) Millimeters() float64 {
	if l.Unit == Centimeter {
		return l.Value * 10
	}
	return l.Value
}

// Points returns the length in PDF points (1/72 inch).
func (l Length) Points() float64 {
	return l.Millimeters() / mmPerInch * ptPerInch
}

// Pixels converts the length to whole pixels at dpi.
func (l Length) Pixels(dpi int) (int, error) {
	switch l.Unit {
	case Centimeter:
		return CmToPx(l.Value, dpi)
	case Millimeter:
		return MmToPx(l.Value, dpi)
	default:
		return 0, fmt.Errorf("%w: unknown unit %s", ErrInvalidMeasurement, l.Unit)
	}
}

func (l Length) String() string {
	return fmt.Sprintf("%g%s", l.Value, l.Unit)
}

// CmToPx returns round(cm * dpi / 2.54).
func CmToPx(cm float64, dpi int) (int, error) {
	if err := check(cm, dpi); err != nil {
		return 0, err
	}
	return int(math.Round(cm * float64(dpi) / cmPerInch)), nil
}

// MmToPx returns round(mm * dpi / 25.4).
func MmToPx(mm float64, dpi int) (int, error) {
	if err := check(mm, dpi); err != nil {
		return 0, err
	}
	return int(math.Round(mm * float64(dpi) / mmPerInch)), nil
}

// PxToMm is the inverse of MmToPx without rounding. Used to size PDF pages
// from raster dimensions.
func PxToMm(px, dpi int) (float64, error) {
	if px <= 0 || dpi <= 0 {
		return 0, fmt.Errorf("%w: %dpx at %d dpi", ErrInvalidMeasurement, px, dpi)
	}
	return float64(px) / float64(dpi) * mmPerInch, nil
}

// CheckDPI validates a resolution.
func CheckDPI(dpi int) error {
	if dpi <= 0 {
		return fmt.Errorf("%w: resolution %d dpi", ErrInvalidMeasurement, dpi)
	}
	return nil
}

func check(length float64, dpi int) error {
	if math.IsNaN(length) || math.IsInf(length, 0) || length <= 0 {
		return fmt.Errorf("%w: length %g", ErrInvalidMeasurement, length)
	}
	return CheckDPI(dpi)
}
