package layout

import (
	"image"

	"github.com/gompdf/slicepdf/internal/parser/html"
	"github.com/gompdf/slicepdf/internal/style"
)

// ImageResolver fetches and decodes the image behind an <img src>
type ImageResolver func(src string) (image.Image, error)

// ImageBox represents an <img> element laid out as an inline replaced element.
// Image is nil when the source could not be loaded; a placeholder is painted instead.
type ImageBox struct {
	Node  *html.Node
	Style style.ComputedStyle

	X      float64
	Y      float64
	Width  float64
	Height float64

	Src   string
	Image image.Image
}

// size resolves the box size from attributes, CSS and the intrinsic image
// size, keeping the aspect ratio when only one dimension is given and never
// exceeding maxWidth.
func (b *ImageBox) size(fontSize, maxWidth float64) {
	natW, natH := 0.0, 0.0
	if b.Image != nil {
		natW = float64(b.Image.Bounds().Dx())
		natH = float64(b.Image.Bounds().Dy())
	}

	w := parseLength(b.Style.Get("width"), fontSize, maxWidth, -1)
	h := parseLength(b.Style.Get("height"), fontSize, maxWidth, -1)
	if w < 0 {
		if v, ok := b.Node.GetAttr("width"); ok {
			w = parseLength(v, fontSize, maxWidth, -1)
		}
	}
	if h < 0 {
		if v, ok := b.Node.GetAttr("height"); ok {
			h = parseLength(v, fontSize, maxWidth, -1)
		}
	}

	switch {
	case w < 0 && h < 0:
		w, h = natW, natH
	case w < 0:
		if natH > 0 {
			w = h * natW / natH
		} else {
			w = h
		}
	case h < 0:
		if natW > 0 {
			h = w * natH / natW
		} else {
			h = w
		}
	}

	if maxWidth > 0 && w > maxWidth {
		h = h * maxWidth / w
		w = maxWidth
	}
	b.Width, b.Height = w, h
}

func (b *ImageBox) GetX() float64            { return b.X }
func (b *ImageBox) GetY() float64            { return b.Y }
func (b *ImageBox) GetWidth() float64        { return b.Width }
func (b *ImageBox) GetHeight() float64       { return b.Height }
func (b *ImageBox) SetPosition(x, y float64) { b.X, b.Y = x, y }
func (b *ImageBox) GetNode() *html.Node      { return b.Node }
