package raster

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/gompdf/slicepdf/internal/layout"
	"github.com/gompdf/slicepdf/internal/style"
	"github.com/gompdf/slicepdf/internal/text"
	xdraw "golang.org/x/image/draw"
)

var placeholderColor = color.RGBA{0xe0, 0xe0, 0xe0, 0xff}

// painter draws a box tree onto an RGBA canvas. Box coordinates are CSS px
// and are multiplied by scale on the way out.
type painter struct {
	dst    *image.RGBA
	scale  float64
	shaper *text.Shaper
}

// rect converts a CSS px rectangle to device pixels, snapping edges outward
func (p *painter) rect(x, y, w, h float64) image.Rectangle {
	return image.Rect(
		int(math.Floor(x*p.scale)),
		int(math.Floor(y*p.scale)),
		int(math.Ceil((x+w)*p.scale)),
		int(math.Ceil((y+h)*p.scale)),
	).Intersect(p.dst.Bounds())
}

func (p *painter) fill(r image.Rectangle, c color.Color) {
	if r.Empty() {
		return
	}
	draw.Draw(p.dst, r, image.NewUniform(c), image.Point{}, draw.Over)
}

func (p *painter) paintBlock(b *layout.BlockBox) {
	if c, ok := style.ParseColor(b.Style.Get("background-color")); ok {
		p.fill(p.rect(b.X, b.Y, b.Width, b.Height), c)
	}
	p.paintBorders(b)
	p.paintMarker(b)

	for _, child := range b.Children {
		switch c := child.(type) {
		case *layout.BlockBox:
			p.paintBlock(c)
		case *layout.InlineBox:
			p.paintText(c)
		case *layout.ImageBox:
			p.paintImage(c)
		}
	}
}

func (p *painter) paintBorders(b *layout.BlockBox) {
	side := func(name string) color.Color {
		if c, ok := style.ParseColor(b.Style.Get("border-" + name + "-color")); ok {
			return c
		}
		return b.Font.Color
	}

	bd := b.Border
	if bd.Top > 0 {
		p.fill(p.rect(b.X, b.Y, b.Width, bd.Top), side("top"))
	}
	if bd.Bottom > 0 {
		p.fill(p.rect(b.X, b.Y+b.Height-bd.Bottom, b.Width, bd.Bottom), side("bottom"))
	}
	if bd.Left > 0 {
		p.fill(p.rect(b.X, b.Y, bd.Left, b.Height), side("left"))
	}
	if bd.Right > 0 {
		p.fill(p.rect(b.X+b.Width-bd.Right, b.Y, bd.Right, b.Height), side("right"))
	}
}

// paintMarker draws a list marker in the space left of the item's content
func (p *painter) paintMarker(b *layout.BlockBox) {
	if b.Marker == "" {
		return
	}
	f := b.Font
	cx, cy := b.ContentX(), b.ContentY()
	mid := cy + f.Size*f.LineHeight/2

	switch b.Marker {
	case "disc", "square", "circle":
		d := f.Size * 0.35
		r := p.rect(cx-f.Size*0.8, mid-d/2, d, d)
		p.fill(r, f.Color)
		if b.Marker == "circle" && r.Dx() > 2 && r.Dy() > 2 {
			p.fill(r.Inset(1), color.White)
		}
	default:
		gap := f.Size * 0.3
		w := p.shaper.Measure(b.Marker, f.Size)
		p.drawText(b.Marker, cx-gap-w, cy+(f.Size*f.LineHeight-f.Size)/2, f)
	}
}

func (p *painter) paintText(t *layout.InlineBox) {
	p.drawText(t.Text, t.X, t.Y, t.Font)
}

func (p *painter) drawText(s string, x, y float64, f text.Font) {
	scaled := f
	scaled.Size = f.Size * p.scale
	p.shaper.Draw(p.dst, s, x*p.scale, y*p.scale, scaled)
}

func (p *painter) paintImage(b *layout.ImageBox) {
	r := image.Rect(
		int(math.Round(b.X*p.scale)),
		int(math.Round(b.Y*p.scale)),
		int(math.Round((b.X+b.Width)*p.scale)),
		int(math.Round((b.Y+b.Height)*p.scale)),
	)
	if r.Empty() {
		return
	}
	if b.Image == nil {
		p.fill(r.Intersect(p.dst.Bounds()), placeholderColor)
		return
	}
	xdraw.CatmullRom.Scale(p.dst, r, b.Image, b.Image.Bounds(), draw.Over, nil)
}
