package products

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"printshop/internal/pdfpage"
	"printshop/internal/sheet"
	"printshop/internal/units"
)

// Format is a named print size in centimeters, width by height.
type Format struct {
	Name   string  `yaml:"name" json:"name"`
	Width  float64 `yaml:"width_cm" json:"width_cm"`
	Height float64 `yaml:"height_cm" json:"height_cm"`
}

// Pixels returns the format's raster size at dpi.
func (f Format) Pixels(dpi int) (units.PixelSize, error) {
	return units.SizeOfCm(f.Width, f.Height, dpi)
}

// Layout is a named set of millimeter slots on a page. Photos fill the slots
// in order and spill onto further pages.
type Layout struct {
	Name        string         `yaml:"name" json:"name"`
	Description string         `yaml:"description,omitempty" json:"description,omitempty"`
	Page        string         `yaml:"page,omitempty" json:"page,omitempty"`
	Slots       []sheet.MmRect `yaml:"slots" json:"slots"`
}

// PageSize resolves the layout's page name. Empty means A4.
func (l Layout) PageSize() (pdfpage.PageSize, error) {
	if l.Page == "" {
		return pdfpage.A4, nil
	}
	s, ok := pdfpage.LookupSize(l.Page)
	if !ok {
		return pdfpage.PageSize{}, fmt.Errorf("%w: layout %q: unknown page %q", ErrInvalidOption, l.Name, l.Page)
	}
	return s, nil
}

// FrameSize is a named polaroid frame in pixels.
type FrameSize struct {
	Name   string `yaml:"name" json:"name"`
	Width  int    `yaml:"width" json:"width"`
	Height int    `yaml:"height" json:"height"`
}

// Presets holds the named formats, layouts and frames offered to users.
type Presets struct {
	Formats []Format    `yaml:"formats" json:"formats"`
	Layouts []Layout    `yaml:"layouts" json:"layouts"`
	Frames  []FrameSize `yaml:"frames" json:"frames"`
}

// DefaultPresets returns the built-in presets.
func DefaultPresets() *Presets {
	return &Presets{
		Formats: []Format{
			{Name: "9x12", Width: 9, Height: 12},
			{Name: "9x13", Width: 9, Height: 13},
			{Name: "8x10", Width: 8, Height: 10},
			{Name: "7x10", Width: 7, Height: 10},
			{Name: "6x9", Width: 6, Height: 9},
			{Name: "5x7", Width: 5, Height: 7},
		},
		Layouts: []Layout{
			{
				Name:        "a4-10x15",
				Description: "three 10x15 prints per A4",
				Slots: []sheet.MmRect{
					{X: 5, Y: 5, W: 100, H: 150},
					{X: 105, Y: 5, W: 100, H: 150},
					{X: 30, Y: 165, W: 150, H: 100},
				},
			},
			{
				Name:        "a4-combined",
				Description: "two 10x15 and six 5x7 prints per A4",
				Slots: []sheet.MmRect{
					{X: 5, Y: 5, W: 100, H: 150},
					{X: 105, Y: 5, W: 100, H: 150},
					{X: 5, Y: 157, W: 50, H: 70},
					{X: 56, Y: 157, W: 50, H: 70},
					{X: 107, Y: 157, W: 50, H: 70},
					{X: 158, Y: 157, W: 50, H: 70},
					{X: 5, Y: 227, W: 50, H: 70},
					{X: 56, Y: 227, W: 50, H: 70},
				},
			},
		},
		Frames: []FrameSize{
			{Name: "small", Width: 600, Height: 800},
			{Name: "medium", Width: 800, Height: 1000},
			{Name: "large", Width: 1000, Height: 1200},
		},
	}
}

// LoadPresets reads presets from a YAML file. Sections missing from the file
// keep their built-in defaults.
func LoadPresets(path string) (*Presets, error) {
	cleanPath := filepath.Clean(path)
	b, err := os.ReadFile(cleanPath) //nolint:gosec // path comes from the operator's config
	if err != nil {
		return nil, err
	}
	var p Presets
	if err := yaml.Unmarshal(b, &p); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", cleanPath, err)
	}
	def := DefaultPresets()
	if len(p.Formats) == 0 {
		p.Formats = def.Formats
	}
	if len(p.Layouts) == 0 {
		p.Layouts = def.Layouts
	}
	if len(p.Frames) == 0 {
		p.Frames = def.Frames
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", cleanPath, err)
	}
	return &p, nil
}

// Validate checks that every preset has a name, positive dimensions and, for
// layouts, slots that lie on the page.
func (p *Presets) Validate() error {
	for _, f := range p.Formats {
		if f.Name == "" || f.Width <= 0 || f.Height <= 0 {
			return fmt.Errorf("%w: format %q is %gx%gcm", ErrInvalidOption, f.Name, f.Width, f.Height)
		}
	}
	for _, fr := range p.Frames {
		if fr.Name == "" || fr.Width <= 0 || fr.Height <= 0 {
			return fmt.Errorf("%w: frame %q is %dx%dpx", ErrInvalidOption, fr.Name, fr.Width, fr.Height)
		}
	}
	for _, l := range p.Layouts {
		if l.Name == "" || len(l.Slots) == 0 {
			return fmt.Errorf("%w: layout %q has no slots", ErrInvalidOption, l.Name)
		}
		page, err := l.PageSize()
		if err != nil {
			return err
		}
		for i, s := range l.Slots {
			if s.W <= 0 || s.H <= 0 || s.X < 0 || s.Y < 0 || s.X+s.W > page.W || s.Y+s.H > page.H {
				return fmt.Errorf("%w: layout %q slot %d (%g,%g %gx%gmm) is off the %gx%gmm page",
					ErrInvalidOption, l.Name, i, s.X, s.Y, s.W, s.H, page.W, page.H)
			}
		}
	}
	return nil
}

// Format looks up a format by name.
func (p *Presets) Format(name string) (Format, bool) {
	for _, f := range p.Formats {
		if f.Name == name {
			return f, true
		}
	}
	return Format{}, false
}

// Layout looks up a layout by name.
func (p *Presets) Layout(name string) (Layout, bool) {
	for _, l := range p.Layouts {
		if l.Name == name {
			return l, true
		}
	}
	return Layout{}, false
}

// Frame looks up a polaroid frame by name.
func (p *Presets) Frame(name string) (FrameSize, bool) {
	for _, f := range p.Frames {
		if f.Name == name {
			return f, true
		}
	}
	return FrameSize{}, false
}
