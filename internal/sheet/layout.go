package sheet

import (
	"fmt"
	"image"

	"printshop/internal/units"
)

// Grid returns rows*cols cells of the given size, row by row, starting at
// origin and separated by spacing pixels.
func Grid(origin image.Point, cell units.PixelSize, cols, rows, spacing int) []image.Rectangle {
	if cols <= 0 || rows <= 0 {
		return nil
	}
	out := make([]image.Rectangle, 0, cols*rows)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			x := origin.X + c*(cell.W+spacing)
			y := origin.Y + r*(cell.H+spacing)
			out = append(out, cell.At(x, y))
		}
	}
	return out
}

// Columns splits area into n equal-width slots separated by spacing. The
// slot width is truncated so the slots never exceed area.
func Columns(area image.Rectangle, n, spacing int) ([]image.Rectangle, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: %d columns", ErrInvalidPlacement, n)
	}
	slotW := (area.Dx() - (n-1)*spacing) / n
	if slotW <= 0 || area.Dy() <= 0 {
		return nil, fmt.Errorf("%w: no room for %d columns in %v", ErrInvalidPlacement, n, area)
	}
	out := make([]image.Rectangle, n)
	for i := range out {
		x := area.Min.X + i*(slotW+spacing)
		out[i] = image.Rect(x, area.Min.Y, x+slotW, area.Max.Y)
	}
	return out, nil
}

// Flow places items left to right with gap pixels between them, wrapping to a
// new row when an item would cross the right edge and to a new page when a
// row would cross the bottom edge. An item larger than the page gets a page
// of its own and is clipped there. The result holds one slice of rectangles
// per page and a parallel slice of item indexes.
func Flow(page units.PixelSize, items []units.PixelSize, gap int) ([][]image.Rectangle, [][]int) {
	var (
		pages   [][]image.Rectangle
		indexes [][]int
		cur     []image.Rectangle
		curIdx  []int
		x, y    int
		rowH    int
	)
	flush := func() {
		if len(cur) > 0 {
			pages = append(pages, cur)
			indexes = append(indexes, curIdx)
		}
		cur, curIdx = nil, nil
		x, y, rowH = 0, 0, 0
	}
	for i, it := range items {
		if len(cur) > 0 {
			nx := x + gap
			if nx+it.W > page.W {
				// wrap
				x, y = 0, y+rowH+gap
				rowH = 0
			} else {
				x = nx
			}
			if y+it.H > page.H {
				flush()
			}
		}
		cur = append(cur, it.At(x, y))
		curIdx = append(curIdx, i)
		x += it.W
		rowH = max(rowH, it.H)
	}
	flush()
	return pages, indexes
}

// Paginate splits n items into pages of at most perPage items and returns the
// [start, end) index range of each page.
func Paginate(n, perPage int) [][2]int {
	if n <= 0 || perPage <= 0 {
		return nil
	}
	var out [][2]int
	for start := 0; start < n; start += perPage {
		out = append(out, [2]int{start, min(start+perPage, n)})
	}
	return out
}

// MmRect is a rectangle in millimeters, origin at the top-left of the page.
type MmRect struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
	W float64 `yaml:"w" json:"w"`
	H float64 `yaml:"h" json:"h"`
}

// FromMillimeters converts mm rectangles to pixel rectangles at dpi. Origins
// may be zero; sizes must be positive.
func FromMillimeters(rects []MmRect, dpi int) ([]image.Rectangle, error) {
	if err := units.CheckDPI(dpi); err != nil {
		return nil, err
	}
	out := make([]image.Rectangle, len(rects))
	for i, r := range rects {
		size, err := units.SizeOf(units.Mm(r.W), units.Mm(r.H), dpi)
		if err != nil {
			return nil, fmt.Errorf("rect %d: %w", i, err)
		}
		x, y := mmOffset(r.X, dpi), mmOffset(r.Y, dpi)
		out[i] = size.At(x, y)
	}
	return out, nil
}

func mmOffset(mm float64, dpi int) int {
	if mm == 0 {
		return 0
	}
	sign := 1
	if mm < 0 {
		sign, mm = -1, -mm
	}
	px, _ := units.MmToPx(mm, dpi)
	return sign * px
}
