package geometry

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrConfiguration is returned when the page geometry leaves no usable area
// or the bitmap has no width.
var ErrConfiguration = errors.New("invalid page geometry")

// Standard page sizes in millimetres
var (
	PageSizeA3     = PageSize{Width: 297, Height: 420, Name: "A3"}
	PageSizeA4     = PageSize{Width: 210, Height: 297, Name: "A4"}
	PageSizeA5     = PageSize{Width: 148, Height: 210, Name: "A5"}
	PageSizeLetter = PageSize{Width: 215.9, Height: 279.4, Name: "Letter"}
	PageSizeLegal  = PageSize{Width: 215.9, Height: 355.6, Name: "Legal"}
)

// PageSize represents a named page size
type PageSize struct {
	Width  float64
	Height float64
	Name   string
}

// LookupPageSize finds a standard page size by name, ignoring case
func LookupPageSize(name string) (PageSize, bool) {
	for _, ps := range []PageSize{PageSizeA3, PageSizeA4, PageSizeA5, PageSizeLetter, PageSizeLegal} {
		if strings.EqualFold(ps.Name, strings.TrimSpace(name)) {
			return ps, true
		}
	}
	return PageSize{}, false
}

// PageGeometry describes one output page and the bands reserved on it.
// All values are in output units (mm).
type PageGeometry struct {
	PageWidth  float64
	PageHeight float64
	Margin     float64
	HeaderBand float64
	FooterBand float64
}

// New validates and returns a page geometry.
func New(pageWidth, pageHeight, margin, headerBand, footerBand float64) (PageGeometry, error) {
	g := PageGeometry{
		PageWidth:  pageWidth,
		PageHeight: pageHeight,
		Margin:     margin,
		HeaderBand: headerBand,
		FooterBand: footerBand,
	}
	if err := g.Validate(); err != nil {
		return PageGeometry{}, err
	}
	return g, nil
}

// Validate reports a configuration error when the usable area is empty.
func (g PageGeometry) Validate() error {
	if g.Margin < 0 || g.HeaderBand < 0 || g.FooterBand < 0 {
		return fmt.Errorf("%w: negative margin or band (margin=%.2f header=%.2f footer=%.2f)",
			ErrConfiguration, g.Margin, g.HeaderBand, g.FooterBand)
	}
	if w := g.UsableWidth(); !(w > 0) {
		return fmt.Errorf("%w: usable width %.2f is not positive", ErrConfiguration, w)
	}
	if h := g.UsableHeight(); !(h > 0) {
		return fmt.Errorf("%w: usable height %.2f is not positive", ErrConfiguration, h)
	}
	return nil
}

// UsableWidth is the page width minus both side margins
func (g PageGeometry) UsableWidth() float64 {
	return g.PageWidth - 2*g.Margin
}

// UsableHeight is the page height minus both margins and the header/footer bands
func (g PageGeometry) UsableHeight() float64 {
	return g.PageHeight - 2*g.Margin - g.HeaderBand - g.FooterBand
}

// ContentOrigin returns where the top-left corner of a page's image goes.
func (g PageGeometry) ContentOrigin() (x, y float64) {
	return g.Margin, g.Margin + g.HeaderBand
}

// Scale relates bitmap pixels to output units along the paginated axis.
// The bitmap is stretched so its full width fills the usable page width.
type Scale struct {
	WidthPx  int
	HeightPx int
	// PxPerUnit is the number of bitmap pixels per output unit.
	PxPerUnit float64
	// ImageHeight is the bitmap height expressed in output units.
	ImageHeight float64
}

// Scale derives the pixel/unit ratio for a bitmap of the given size.
func (g PageGeometry) Scale(widthPx, heightPx int) (Scale, error) {
	if err := g.Validate(); err != nil {
		return Scale{}, err
	}
	if widthPx <= 0 {
		return Scale{}, fmt.Errorf("%w: bitmap width %d is not positive", ErrConfiguration, widthPx)
	}
	if heightPx < 0 {
		return Scale{}, fmt.Errorf("%w: bitmap height %d is negative", ErrConfiguration, heightPx)
	}
	usable := g.UsableWidth()
	return Scale{
		WidthPx:     widthPx,
		HeightPx:    heightPx,
		PxPerUnit:   float64(widthPx) / usable,
		ImageHeight: float64(heightPx) * usable / float64(widthPx),
	}, nil
}

// ToUnits converts a pixel extent to output units.
func (s Scale) ToUnits(px int) float64 {
	return float64(px) / s.PxPerUnit
}

// ToPixels converts an output-unit extent to (fractional) pixels.
func (s Scale) ToPixels(units float64) float64 {
	return units * s.PxPerUnit
}

// PageHeightPx is the whole number of pixels that fills one page's usable
// height. It is truncated, and never less than one pixel.
func (s Scale) PageHeightPx(g PageGeometry) int {
	// widthPx*usableHeight/usableWidth avoids the extra rounding step of
	// going through ImageHeight.
	exact := float64(s.WidthPx) * g.UsableHeight() / g.UsableWidth()
	n := int(math.Floor(exact + 1e-9))
	if n < 1 {
		n = 1
	}
	return n
}
