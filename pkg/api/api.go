package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gompdf/slicepdf/internal/geometry"
	"github.com/gompdf/slicepdf/internal/pagination"
	"github.com/gompdf/slicepdf/internal/raster"
	"github.com/gompdf/slicepdf/internal/render/pdf"
	"github.com/gompdf/slicepdf/internal/res"
	"github.com/gompdf/slicepdf/internal/sections"
	"github.com/gompdf/slicepdf/internal/slicer"
)

var (
	// ErrEmptyContent is returned when there is no HTML to convert
	ErrEmptyContent = errors.New("html content not provided")
	// ErrConfiguration is returned for page geometry or option errors
	ErrConfiguration = geometry.ErrConfiguration
)

// Converter is the main API for converting HTML to PDF
type Converter struct {
	options Options
	logger  *slog.Logger
}

// Document is the result of one conversion
type Document struct {
	// Data is the complete PDF file
	Data []byte
	// Slices lists where each page's image came from in the bitmap
	Slices []pagination.PageSlice
	// Sections lists the unsplittable regions found in the bitmap
	Sections []sections.Region

	BitmapWidth  int
	BitmapHeight int
}

// Pages returns the number of pages in the document
func (d *Document) Pages() int {
	if len(d.Slices) == 0 {
		return 1
	}
	return len(d.Slices)
}

// New creates a new HTML to PDF converter with default options and opts applied
func New(opts ...Option) *Converter {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return NewWithOptions(options)
}

// NewWithOptions creates a new HTML to PDF converter with the specified options
func NewWithOptions(options Options) *Converter {
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
		if options.Debug {
			logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
		}
	}
	return &Converter{options: options, logger: logger}
}

// Options returns a copy of the converter's options
func (c *Converter) Options() Options {
	o := c.options
	o.ResourcePaths = append([]string(nil), c.options.ResourcePaths...)
	return o
}

// WithOptions returns a new converter with the specified options
func (c *Converter) WithOptions(options Options) *Converter {
	return NewWithOptions(options)
}

// WithOption returns a new converter with the specified option set
func (c *Converter) WithOption(option Option) *Converter {
	newOptions := c.Options()
	option(&newOptions)
	return NewWithOptions(newOptions)
}

// Geometry returns the page geometry the options describe, with width and
// height swapped to match the orientation.
func (c *Converter) Geometry() (geometry.PageGeometry, error) {
	o := c.options
	w, h := o.PageWidth, o.PageHeight
	switch o.PageOrientation {
	case PageOrientationLandscape:
		if w < h {
			w, h = h, w
		}
	case PageOrientationPortrait, "":
		if w > h {
			w, h = h, w
		}
	default:
		return geometry.PageGeometry{}, fmt.Errorf("%w: unknown orientation %q", ErrConfiguration, o.PageOrientation)
	}
	return geometry.New(w, h, o.Margin, o.HeaderBand, o.FooterBand)
}

func (c *Converter) newLoader(base string) *res.Loader {
	loader := res.NewLoader(base)
	loader.SetLogger(c.logger)
	for _, path := range c.options.ResourcePaths {
		loader.AddSearchPath(path)
	}
	return loader
}

// Generate converts HTML to a PDF held in memory
func (c *Converter) Generate(ctx context.Context, htmlContent string) (*Document, error) {
	return c.generate(ctx, htmlContent, c.newLoader(""))
}

func (c *Converter) generate(ctx context.Context, htmlContent string, loader *res.Loader) (*Document, error) {
	if strings.TrimSpace(htmlContent) == "" {
		return nil, ErrEmptyContent
	}

	g, err := c.Geometry()
	if err != nil {
		return nil, err
	}
	format, err := slicer.ParseFormat(string(c.options.ImageFormat))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	viewport := raster.ViewportWidth(g.UsableWidth(), c.options.DPI)
	c.logger.Debug("page geometry",
		"page_w", g.PageWidth, "page_h", g.PageHeight,
		"usable_w", g.UsableWidth(), "usable_h", g.UsableHeight(),
		"viewport_css", viewport)

	renderer := raster.NewRenderer(loader, raster.Options{
		ViewportWidth: viewport,
		Scale:         c.options.RasterScale,
		SectionClass:  c.options.SectionClass,
		UserAgentCSS:  c.options.UserAgentStylesheet,
		MaxPixels:     c.options.MaxBitmapPixels,
	})
	renderer.SetLogger(c.logger)
	bitmap, err := renderer.Render(ctx, htmlContent)
	if err != nil {
		return nil, fmt.Errorf("failed to render HTML: %w", err)
	}

	pe := pagination.NewEngine(g)
	pe.SetOptions(pagination.Options{
		SlackUnits:           c.options.SlackUnits,
		MinSpaceForSectionPx: c.options.MinSpaceForSectionPx,
		MinProgressFraction:  c.options.MinProgressFraction,
	})
	paginator, err := pe.Start(
		pagination.Bitmap{WidthPx: bitmap.Width(), HeightPx: bitmap.Height()},
		sections.NewIndex(bitmap.Sections),
	)
	if err != nil {
		return nil, err
	}

	writer := pdf.NewWriter(g, pdf.RenderOptions{
		Title:      c.options.Title,
		Author:     c.options.Author,
		Subject:    c.options.Subject,
		Keywords:   c.options.Keywords,
		Creator:    c.options.Creator,
		Producer:   "slicepdf",
		HeaderText: c.options.HeaderText,
		FooterText: c.options.FooterText,
	})
	writer.SetLogger(c.logger)
	encoder := slicer.New(slicer.Options{Format: format, Quality: c.options.ImageQuality})

	doc := &Document{
		Sections:     bitmap.Sections,
		BitmapWidth:  bitmap.Width(),
		BitmapHeight: bitmap.Height(),
	}
	if bitmap.Height() == 0 {
		c.logger.Warn("document rendered to an empty bitmap; writing a blank page")
	}

	for {
		s, ok, err := paginator.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}

		frag, err := encoder.Render(bitmap.Image, s)
		if err != nil {
			return nil, fmt.Errorf("failed to encode page %d: %w", s.PageIndex, err)
		}
		if s.PageIndex > 1 {
			writer.NewPage()
		}
		if err := writer.PlaceImage(frag, s.PlacementX, s.PlacementY, s.PlacementWidth, s.PlacementHeight); err != nil {
			return nil, fmt.Errorf("failed to place page %d: %w", s.PageIndex, err)
		}

		c.logger.Debug("page sliced",
			"page", s.PageIndex,
			"top_px", s.SourceTopPx,
			"height_px", s.SourceHeightPx,
			"deferred", s.Deferred)
		doc.Slices = append(doc.Slices, s)
	}

	var buf bytes.Buffer
	if err := writer.Output(&buf); err != nil {
		return nil, err
	}
	doc.Data = buf.Bytes()

	c.logger.Info("pdf generated",
		"pages", doc.Pages(),
		"sections", len(doc.Sections),
		"bitmap_w", doc.BitmapWidth,
		"bitmap_h", doc.BitmapHeight,
		"bytes", len(doc.Data))
	return doc, nil
}

// Convert converts HTML to PDF and writes the result to the specified writer.
// Nothing is written unless the whole conversion succeeds.
func (c *Converter) Convert(ctx context.Context, htmlContent string, output io.Writer) error {
	doc, err := c.Generate(ctx, htmlContent)
	if err != nil {
		return err
	}
	if _, err := output.Write(doc.Data); err != nil {
		return fmt.Errorf("failed to copy PDF to output: %w", err)
	}
	return nil
}

// ConvertToFile converts HTML to PDF and writes the result to the specified file
func (c *Converter) ConvertToFile(ctx context.Context, htmlContent, outputPath string) error {
	doc, err := c.Generate(ctx, htmlContent)
	if err != nil {
		return err
	}
	return writeFile(outputPath, doc.Data)
}

func writeFile(outputPath string, data []byte) error {
	outputDir := filepath.Dir(outputPath)
	if _, err := os.Stat(outputDir); os.IsNotExist(err) {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	return nil
}

// ConvertFile converts an HTML file to PDF and writes the result to the
// specified file. Relative references resolve against the input file.
func (c *Converter) ConvertFile(ctx context.Context, inputPath, outputPath string) error {
	htmlContent, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read HTML file: %w", err)
	}
	doc, err := c.generate(ctx, string(htmlContent), c.newLoader(inputPath))
	if err != nil {
		return err
	}
	return writeFile(outputPath, doc.Data)
}

// ConvertURL converts an HTML URL to PDF and writes the result to the specified file
func (c *Converter) ConvertURL(ctx context.Context, url, outputPath string) error {
	loader := c.newLoader(url)
	resource, err := loader.LoadHTML(ctx, url)
	if err != nil {
		return fmt.Errorf("failed to load HTML from URL: %w", err)
	}
	doc, err := c.generate(ctx, resource.GetString(), loader)
	if err != nil {
		return err
	}
	return writeFile(outputPath, doc.Data)
}

// ConvertMarkdown renders Markdown to HTML, wrapping each top-level heading
// and its content in a section, and converts the result.
func (c *Converter) ConvertMarkdown(ctx context.Context, markdown []byte, output io.Writer) error {
	if len(bytes.TrimSpace(markdown)) == 0 {
		return ErrEmptyContent
	}
	htmlContent, err := MarkdownToHTML(markdown, c.options.Title, c.options.SectionClass)
	if err != nil {
		return err
	}
	return c.Convert(ctx, htmlContent, output)
}

// ConvertMarkdownFile converts a Markdown file to PDF. Relative image
// references resolve against the input file.
func (c *Converter) ConvertMarkdownFile(ctx context.Context, inputPath, outputPath string) error {
	src, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read Markdown file: %w", err)
	}
	if len(bytes.TrimSpace(src)) == 0 {
		return ErrEmptyContent
	}
	htmlContent, err := MarkdownToHTML(src, c.options.Title, c.options.SectionClass)
	if err != nil {
		return err
	}
	doc, err := c.generate(ctx, htmlContent, c.newLoader(inputPath))
	if err != nil {
		return err
	}
	return writeFile(outputPath, doc.Data)
}

// ConvertBytes converts HTML bytes to PDF bytes
func (c *Converter) ConvertBytes(ctx context.Context, htmlContent []byte) ([]byte, error) {
	doc, err := c.Generate(ctx, string(htmlContent))
	if err != nil {
		return nil, err
	}
	return doc.Data, nil
}
