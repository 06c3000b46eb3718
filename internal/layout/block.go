package layout

import (
	"github.com/gompdf/slicepdf/internal/parser/html"
	"github.com/gompdf/slicepdf/internal/style"
	"github.com/gompdf/slicepdf/internal/text"
)

// BlockBox represents a block-level box in the layout
type BlockBox struct {
	Node  *html.Node
	Style style.ComputedStyle
	Font  text.Font

	X      float64
	Y      float64
	Width  float64
	Height float64

	Margin  Edges
	Padding Edges
	Border  Edges

	// Marker is the list marker for list items: "disc", "circle",
	// "square", or literal text such as "3." for ordered lists.
	Marker string

	Children []Box
}

// NewBlockBox creates a new block box for an element
func NewBlockBox(node *html.Node, computedStyle style.ComputedStyle) *BlockBox {
	return &BlockBox{
		Node:  node,
		Style: computedStyle,
	}
}

// parseBoxModel resolves margin, padding and border widths against the containing width
func (b *BlockBox) parseBoxModel(containerWidth float64) {
	size := b.Font.Size
	get := func(name string) float64 {
		v := parseLength(b.Style.Get(name), size, containerWidth, 0)
		if v < 0 && name[0] != 'm' {
			return 0
		}
		return v
	}

	b.Margin = Edges{get("margin-top"), get("margin-right"), get("margin-bottom"), get("margin-left")}
	b.Padding = Edges{get("padding-top"), get("padding-right"), get("padding-bottom"), get("padding-left")}
	b.Border = Edges{
		get("border-top-width"),
		get("border-right-width"),
		get("border-bottom-width"),
		get("border-left-width"),
	}
}

// ContentX returns the left edge of the content area
func (b *BlockBox) ContentX() float64 {
	return b.X + b.Border.Left + b.Padding.Left
}

// ContentY returns the top edge of the content area
func (b *BlockBox) ContentY() float64 {
	return b.Y + b.Border.Top + b.Padding.Top
}

// OuterBottom returns the bottom of the margin box
func (b *BlockBox) OuterBottom() float64 {
	return b.Y + b.Height + b.Margin.Bottom
}

func (b *BlockBox) GetX() float64      { return b.X }
func (b *BlockBox) GetY() float64      { return b.Y }
func (b *BlockBox) GetWidth() float64  { return b.Width }
func (b *BlockBox) GetHeight() float64 { return b.Height }

// SetPosition moves the box and everything inside it
func (b *BlockBox) SetPosition(x, y float64) {
	dx, dy := x-b.X, y-b.Y
	b.X, b.Y = x, y
	for _, c := range b.Children {
		c.SetPosition(c.GetX()+dx, c.GetY()+dy)
	}
}

// AddChild appends a child box
func (b *BlockBox) AddChild(child Box) {
	b.Children = append(b.Children, child)
}

func (b *BlockBox) GetNode() *html.Node {
	return b.Node
}

// Walk visits b and every block box below it in document order
func (b *BlockBox) Walk(fn func(*BlockBox)) {
	fn(b)
	for _, c := range b.Children {
		if cb, ok := c.(*BlockBox); ok {
			cb.Walk(fn)
		}
	}
}
