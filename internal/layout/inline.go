package layout

import (
	"github.com/gompdf/slicepdf/internal/parser/html"
	"github.com/gompdf/slicepdf/internal/style"
	"github.com/gompdf/slicepdf/internal/text"
)

// InlineBox is a run of text placed on one line
type InlineBox struct {
	// Node is the element the text belongs to
	Node  *html.Node
	Style style.ComputedStyle
	Font  text.Font
	Text  string

	X      float64
	Y      float64
	Width  float64
	Height float64
}

func (b *InlineBox) GetX() float64            { return b.X }
func (b *InlineBox) GetY() float64            { return b.Y }
func (b *InlineBox) GetWidth() float64        { return b.Width }
func (b *InlineBox) GetHeight() float64       { return b.Height }
func (b *InlineBox) SetPosition(x, y float64) { b.X, b.Y = x, y }
func (b *InlineBox) GetNode() *html.Node      { return b.Node }
