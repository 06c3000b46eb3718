package text

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Font represents the resolved font of a run of text
type Font struct {
	Size       float64 // CSS px
	LineHeight float64 // multiple of Size
	Bold       bool
	Italic     bool
	Underline  bool
	Color      color.RGBA
}

// Shaper measures and draws text with the 7x13 bitmap face, scaled to the
// requested font size.
type Shaper struct {
	face    font.Face
	advance int
	height  int
	ascent  int
}

// NewShaper creates a shaper over basicfont.Face7x13
func NewShaper() *Shaper {
	face := basicfont.Face7x13
	return &Shaper{
		face:    face,
		advance: face.Advance,
		height:  face.Height,
		ascent:  face.Ascent,
	}
}

func (s *Shaper) scale(size float64) float64 {
	if size <= 0 {
		return 1
	}
	return size / float64(s.height)
}

// Measure returns the width of text at the given size, in CSS px.
func (s *Shaper) Measure(text string, size float64) float64 {
	w := font.MeasureString(s.face, Fold(text)).Round()
	return float64(w) * s.scale(size)
}

// SpaceWidth returns the advance of one space at the given size
func (s *Shaper) SpaceWidth(size float64) float64 {
	return float64(s.advance) * s.scale(size)
}

// Draw paints text with its em box's top-left corner at (x, y), where
// coordinates are already in device pixels and size is the device pixel size.
func (s *Shaper) Draw(dst draw.Image, text string, x, y float64, f Font) {
	text = Fold(text)
	if text == "" {
		return
	}

	w := font.MeasureString(s.face, text).Ceil()
	if f.Bold {
		w++
	}
	if w <= 0 {
		return
	}

	// Render once at the face's native size, then scale into place.
	glyphs := image.NewRGBA(image.Rect(0, 0, w, s.height))
	ink := image.NewUniform(f.Color)
	d := &font.Drawer{
		Dst:  glyphs,
		Src:  ink,
		Face: s.face,
		Dot:  fixed.P(0, s.ascent),
	}
	d.DrawString(text)
	if f.Bold {
		d.Dot = fixed.P(1, s.ascent)
		d.DrawString(text)
	}
	if f.Italic {
		glyphs = shear(glyphs)
	}
	if f.Underline {
		row := s.ascent + 1
		draw.Draw(glyphs, image.Rect(0, row, glyphs.Bounds().Dx(), row+1), ink, image.Point{}, draw.Over)
	}

	k := s.scale(f.Size)
	dr := image.Rect(
		int(math.Round(x)),
		int(math.Round(y)),
		int(math.Round(x+float64(glyphs.Bounds().Dx())*k)),
		int(math.Round(y+float64(s.height)*k)),
	)
	if dr.Empty() {
		return
	}
	if k == 1 {
		draw.Draw(dst, dr, glyphs, image.Point{}, draw.Over)
		return
	}
	xdraw.ApproxBiLinear.Scale(dst, dr, glyphs, glyphs.Bounds(), draw.Over, nil)
}

// shear slants glyphs to fake an italic; rows above the baseline shift right.
func shear(src *image.RGBA) *image.RGBA {
	b := src.Bounds()
	extra := b.Dy() / 4
	out := image.NewRGBA(image.Rect(0, 0, b.Dx()+extra, b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		dx := extra * (b.Dy() - y) / b.Dy()
		row := image.Rect(dx, y, dx+b.Dx(), y+1)
		draw.Draw(out, row, src, image.Pt(0, y), draw.Src)
	}
	return out
}
