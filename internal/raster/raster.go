// Package raster renders HTML markup into one tall bitmap and reports where
// the page-break-sensitive sections ended up in it.
package raster

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log/slog"
	"math"

	"github.com/gompdf/slicepdf/internal/layout"
	"github.com/gompdf/slicepdf/internal/parser/css"
	"github.com/gompdf/slicepdf/internal/parser/html"
	"github.com/gompdf/slicepdf/internal/res"
	"github.com/gompdf/slicepdf/internal/sections"
	"github.com/gompdf/slicepdf/internal/style"
	"github.com/gompdf/slicepdf/internal/text"
)

// ErrRender is returned when markup cannot be turned into a bitmap
var ErrRender = errors.New("rasterization failed")

const (
	// DefaultScale renders at twice the CSS pixel density
	DefaultScale = 2.0
	// DefaultSectionClass marks elements that should not be split across pages
	DefaultSectionClass = "pdf-section"
	// DefaultMaxPixels bounds the bitmap at 512 MiB of RGBA
	DefaultMaxPixels = 1 << 27
	// CSSPixelsPerInch is the reference density of CSS lengths
	CSSPixelsPerInch = 96.0
)

// Options configures a Renderer
type Options struct {
	// ViewportWidth is the layout width in CSS px
	ViewportWidth float64
	// Scale is the number of device pixels per CSS px
	Scale float64
	// SectionClass is the class name that marks a section
	SectionClass string
	// UserAgentCSS replaces the built-in user agent stylesheet when set
	UserAgentCSS string
	// MaxPixels caps width*height of the bitmap; zero means DefaultMaxPixels
	MaxPixels int
}

// ViewportWidth converts a width in millimetres to CSS px at dpi
func ViewportWidth(mm, dpi float64) float64 {
	if dpi <= 0 {
		dpi = CSSPixelsPerInch
	}
	return mm / 25.4 * dpi
}

// Result is a rendered document
type Result struct {
	Image *image.RGBA
	// Sections lists the marked elements in device pixels, document order
	Sections []sections.Region
	// ContentHeight is the document height in CSS px
	ContentHeight float64
}

// Width returns the bitmap width in pixels
func (r *Result) Width() int { return r.Image.Bounds().Dx() }

// Height returns the bitmap height in pixels
func (r *Result) Height() int { return r.Image.Bounds().Dy() }

// Renderer lays out and paints markup
type Renderer struct {
	options Options
	loader  *res.Loader
	shaper  *text.Shaper
	logger  *slog.Logger
}

// NewRenderer creates a renderer. loader may be nil, in which case external
// stylesheets and images are skipped.
func NewRenderer(loader *res.Loader, options Options) *Renderer {
	if options.Scale <= 0 {
		options.Scale = DefaultScale
	}
	if options.MaxPixels <= 0 {
		options.MaxPixels = DefaultMaxPixels
	}
	return &Renderer{
		options: options,
		loader:  loader,
		shaper:  text.NewShaper(),
		logger:  slog.Default(),
	}
}

// SetLogger sets the logger
func (r *Renderer) SetLogger(logger *slog.Logger) {
	if logger != nil {
		r.logger = logger
	}
}

// Render parses, styles, lays out and paints markup.
func (r *Renderer) Render(ctx context.Context, markup string) (*Result, error) {
	if r.options.ViewportWidth <= 0 {
		return nil, fmt.Errorf("%w: viewport width %.2f", ErrRender, r.options.ViewportWidth)
	}

	doc, err := html.NewParser().ParseString(markup)
	if err != nil {
		return nil, fmt.Errorf("%w: parse html: %v", ErrRender, err)
	}

	styles, err := r.computeStyles(ctx, doc)
	if err != nil {
		return nil, err
	}

	le := layout.NewEngine(r.shaper)
	le.SetOptions(layout.Options{Width: r.options.ViewportWidth})
	le.SetStyles(styles)
	le.SetLogger(r.logger)
	le.SetImageResolver(func(src string) (image.Image, error) {
		return r.loadImage(ctx, src)
	})
	root := le.Layout(doc)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	scale := r.options.Scale
	contentHeight := layout.ContentHeight(root)
	if math.IsInf(contentHeight, 0) || math.IsNaN(contentHeight) {
		return nil, fmt.Errorf("%w: content height is not finite (%v css px)", ErrRender, contentHeight)
	}
	w := ceilPx(r.options.ViewportWidth * scale)
	h := ceilPx(contentHeight * scale)
	if w <= 0 || h < 0 {
		return nil, fmt.Errorf("%w: bitmap %dx%d", ErrRender, w, h)
	}
	if h > 0 && w > r.options.MaxPixels/h {
		return nil, fmt.Errorf("%w: bitmap %dx%d exceeds %d pixels", ErrRender, w, h, r.options.MaxPixels)
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	p := &painter{dst: img, scale: scale, shaper: r.shaper}
	p.paintBlock(root)

	class := r.options.SectionClass
	if class == "" {
		class = DefaultSectionClass
	}
	found := layout.Sections(root, class, scale)

	r.logger.Debug("rasterized document",
		"width_px", w,
		"height_px", h,
		"content_height_css", contentHeight,
		"sections", len(found))

	return &Result{Image: img, Sections: found, ContentHeight: contentHeight}, nil
}

// ceilPx rounds up to whole pixels, ignoring floating point noise from
// unit conversions such as mm to CSS px.
func ceilPx(v float64) int {
	return int(math.Ceil(v - 1e-6))
}

func (r *Renderer) computeStyles(ctx context.Context, doc *html.Document) (map[*html.Node]style.ComputedStyle, error) {
	parser := css.NewParser()
	engine := style.NewStyleEngine()

	if r.options.UserAgentCSS != "" {
		sheet, err := parser.ParseString(r.options.UserAgentCSS)
		if err != nil {
			return nil, fmt.Errorf("%w: user agent stylesheet: %v", ErrRender, err)
		}
		engine.SetUserAgentStylesheet(sheet)
	}

	for _, cssText := range collectStylesheets(ctx, doc.Root, r.loader, r.logger) {
		sheet, err := parser.ParseString(cssText)
		if err != nil {
			r.logger.Warn("failed to parse stylesheet", "error", err)
			continue
		}
		engine.AddStylesheet(sheet)
	}
	return engine.ComputeStyles(doc), nil
}

func (r *Renderer) loadImage(ctx context.Context, src string) (image.Image, error) {
	if r.loader == nil {
		return nil, res.ErrNotFound
	}
	resource, err := r.loader.LoadImage(ctx, src)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(resource.Data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", resource.MimeType, err)
	}
	return img, nil
}
