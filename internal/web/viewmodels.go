package web

import (
	"printshop/internal/config"
	"printshop/internal/products"
)

// IndexViewModel contains data for rendering the product page.
type IndexViewModel struct {
	Presets *products.Presets
	Config  config.Config
	Queue   []QueueEntry
	MinDPI  int
	MaxDPI  int
	// Products lists the render endpoints in display order.
	Products []ProductView
}

// ProductView describes one product form.
type ProductView struct {
	ID    string
	Title string
	Help  string
	Multi bool // accepts several photos
}

var productViews = []ProductView{
	{ID: "portrait", Title: "Portrait frame", Help: "10x15 print plus a 10x6 half-moon window"},
	{ID: "idsheet", Title: "ID photos", Help: "Ten 3x4 photos on a 10x15 sheet"},
	{ID: "polaroid", Title: "Polaroid", Help: "Bordered print with an optional caption"},
	{ID: "multiformat", Title: "Multi-format", Help: "One photo in several sizes, packed onto 10x15 sheets"},
	{ID: "a4", Title: "A4 sheets", Help: "Photos placed into a preset A4 layout", Multi: true},
	{ID: "centered", Title: "Centered 10x15", Help: "A 10x15 image centered on A4 with cut guides"},
	{ID: "triptych", Title: "Triptych", Help: "Up to three photos side by side on 20x15", Multi: true},
}
