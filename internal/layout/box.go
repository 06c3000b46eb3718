package layout

import (
	"github.com/gompdf/slicepdf/internal/parser/html"
)

// Box is anything placed by the layout engine. Coordinates are CSS px from
// the top-left of the document; X/Y/Width/Height describe the border box.
type Box interface {
	GetX() float64
	GetY() float64
	GetWidth() float64
	GetHeight() float64
	SetPosition(x, y float64)
	GetNode() *html.Node
}

// Edges holds per-side lengths for margins, padding and borders
type Edges struct {
	Top    float64
	Right  float64
	Bottom float64
	Left   float64
}

// Horizontal returns Left + Right
func (e Edges) Horizontal() float64 { return e.Left + e.Right }

// Vertical returns Top + Bottom
func (e Edges) Vertical() float64 { return e.Top + e.Bottom }

// Measurer measures text runs
type Measurer interface {
	Measure(text string, size float64) float64
	SpaceWidth(size float64) float64
}
