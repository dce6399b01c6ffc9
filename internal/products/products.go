// Package products builds the finished print products on top of the layout
// engine: portrait frames, ID photo sheets, polaroids, multi-format sheets,
// A4 layouts, triptychs and PDF exports. Every product is a pure function of
// its inputs and options; the image queue is plain data owned by the caller.
package products

import (
	"errors"
	"fmt"
	"image"

	"printshop/internal/fit"
)

// ErrInvalidOption is returned when a product option is out of range or
// names something that does not exist.
var ErrInvalidOption = errors.New("invalid product option")

func optionError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidOption, fmt.Sprintf(format, args...))
}

func rotate(img image.Image, degrees int) (image.Image, error) {
	out, err := fit.Rotate(img, degrees)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOption, err)
	}
	return out, nil
}
