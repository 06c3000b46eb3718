package api

import (
	"log/slog"

	"github.com/gompdf/slicepdf/internal/geometry"
	"github.com/gompdf/slicepdf/internal/pagination"
	"github.com/gompdf/slicepdf/internal/raster"
)

// Options represents configuration options for the HTML to PDF converter.
// Lengths are in millimetres.
type Options struct {
	// Page dimensions
	PageWidth  float64
	PageHeight float64
	// Page orientation: portrait or landscape
	PageOrientation PageOrientation

	// Margin applies to all four sides. HeaderBand and FooterBand are
	// reserved inside the top and bottom margins and receive no content.
	Margin     float64
	HeaderBand float64
	FooterBand float64

	// Rendering options
	// DPI sets the layout viewport: the usable page width at DPI CSS pixels per inch
	DPI float64
	// RasterScale is the number of bitmap pixels per CSS pixel
	RasterScale float64
	// MaxBitmapPixels caps the rendered bitmap; zero uses the rasterizer default
	MaxBitmapPixels int
	Debug           bool
	// Logger receives progress and diagnostics; nil uses slog.Default,
	// or a debug-level stderr logger when Debug is set
	Logger *slog.Logger

	// SectionClass marks elements that should start on a fresh page rather
	// than be cut by a page boundary
	SectionClass string
	// SlackUnits is how far past the nominal page end (mm) a section start is still considered
	SlackUnits float64
	// MinSpaceForSectionPx is the least room (bitmap px) a section needs below its start
	MinSpaceForSectionPx int
	// MinProgressFraction of a page is consumed when a section at the top of a page cannot fit
	MinProgressFraction float64

	// Page images
	ImageFormat  ImageFormat
	ImageQuality int

	// Header and footer text; {page} and {pages} are replaced with numbers
	HeaderText string
	FooterText string

	// Resource paths
	ResourcePaths []string

	// Document metadata
	Title    string
	Author   string
	Subject  string
	Keywords string
	Creator  string

	// UserAgentStylesheet replaces the built-in user agent stylesheet when set
	UserAgentStylesheet string
}

// Option is a function that modifies Options
type Option func(*Options)

// PageOrientation represents page orientation
type PageOrientation string

const (
	// PageOrientationPortrait sets the page to portrait orientation
	PageOrientationPortrait PageOrientation = "portrait"
	// PageOrientationLandscape sets the page to landscape orientation
	PageOrientationLandscape PageOrientation = "landscape"
)

// ImageFormat selects how page images are embedded
type ImageFormat string

const (
	// ImageFormatJPEG embeds JPEG page images
	ImageFormatJPEG ImageFormat = "jpeg"
	// ImageFormatPNG embeds lossless PNG page images
	ImageFormatPNG ImageFormat = "png"
)

// DefaultOptions returns the default options: A4 portrait, 10 mm margins
// and 15 mm header and footer bands.
func DefaultOptions() Options {
	return Options{
		PageWidth:       geometry.PageSizeA4.Width,
		PageHeight:      geometry.PageSizeA4.Height,
		PageOrientation: PageOrientationPortrait,

		Margin:     10,
		HeaderBand: 15,
		FooterBand: 15,

		DPI:         raster.CSSPixelsPerInch,
		RasterScale: raster.DefaultScale,

		SectionClass:         raster.DefaultSectionClass,
		SlackUnits:           pagination.DefaultSlackUnits,
		MinSpaceForSectionPx: pagination.DefaultMinSpaceForSectionPx,
		MinProgressFraction:  pagination.DefaultMinProgressFraction,

		ImageFormat:  ImageFormatJPEG,
		ImageQuality: 100,

		ResourcePaths: []string{},
		Creator:       "slicepdf",
	}
}

// WithPageSize sets the page size in mm
func WithPageSize(width, height float64) Option {
	return func(o *Options) {
		o.PageWidth = width
		o.PageHeight = height
	}
}

// WithPageSizeA3 sets the page size to A3
func WithPageSizeA3() Option {
	return WithPageSize(geometry.PageSizeA3.Width, geometry.PageSizeA3.Height)
}

// WithPageSizeA4 sets the page size to A4
func WithPageSizeA4() Option {
	return WithPageSize(geometry.PageSizeA4.Width, geometry.PageSizeA4.Height)
}

// WithPageSizeA5 sets the page size to A5
func WithPageSizeA5() Option {
	return WithPageSize(geometry.PageSizeA5.Width, geometry.PageSizeA5.Height)
}

// WithPageSizeLetter sets the page size to US Letter
func WithPageSizeLetter() Option {
	return WithPageSize(geometry.PageSizeLetter.Width, geometry.PageSizeLetter.Height)
}

// WithPageSizeLegal sets the page size to US Legal
func WithPageSizeLegal() Option {
	return WithPageSize(geometry.PageSizeLegal.Width, geometry.PageSizeLegal.Height)
}

// WithPageOrientation sets the page orientation
func WithPageOrientation(orientation PageOrientation) Option {
	return func(o *Options) {
		o.PageOrientation = orientation
	}
}

// WithMargin sets the margin on all sides
func WithMargin(margin float64) Option {
	return func(o *Options) {
		o.Margin = margin
	}
}

// WithHeaderBand sets the height reserved for the header
func WithHeaderBand(height float64) Option {
	return func(o *Options) {
		o.HeaderBand = height
	}
}

// WithFooterBand sets the height reserved for the footer
func WithFooterBand(height float64) Option {
	return func(o *Options) {
		o.FooterBand = height
	}
}

// WithDPI sets the DPI
func WithDPI(dpi float64) Option {
	return func(o *Options) {
		o.DPI = dpi
	}
}

// WithRasterScale sets the bitmap pixels per CSS pixel
func WithRasterScale(scale float64) Option {
	return func(o *Options) {
		o.RasterScale = scale
	}
}

// WithMaxBitmapPixels caps the rendered bitmap size
func WithMaxBitmapPixels(n int) Option {
	return func(o *Options) {
		o.MaxBitmapPixels = n
	}
}

// WithDebug sets the debug mode
func WithDebug(debug bool) Option {
	return func(o *Options) {
		o.Debug = debug
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithSectionClass sets the class that marks unsplittable sections
func WithSectionClass(class string) Option {
	return func(o *Options) {
		o.SectionClass = class
	}
}

// WithSlack sets how far past the page end, in mm, section starts are looked for
func WithSlack(mm float64) Option {
	return func(o *Options) {
		o.SlackUnits = mm
	}
}

// WithMinSpaceForSection sets the room in bitmap pixels a section needs to start on a page
func WithMinSpaceForSection(px int) Option {
	return func(o *Options) {
		o.MinSpaceForSectionPx = px
	}
}

// WithMinProgressFraction sets the share of a page consumed when a section cannot be kept whole
func WithMinProgressFraction(f float64) Option {
	return func(o *Options) {
		o.MinProgressFraction = f
	}
}

// WithImageFormat sets the page image encoding
func WithImageFormat(format ImageFormat) Option {
	return func(o *Options) {
		o.ImageFormat = format
	}
}

// WithImageQuality sets the JPEG quality (1-100)
func WithImageQuality(quality int) Option {
	return func(o *Options) {
		o.ImageQuality = quality
	}
}

// WithHeaderText sets the text drawn in the header band
func WithHeaderText(text string) Option {
	return func(o *Options) {
		o.HeaderText = text
	}
}

// WithFooterText sets the text drawn in the footer band
func WithFooterText(text string) Option {
	return func(o *Options) {
		o.FooterText = text
	}
}

// WithResourcePath adds a path to search for resources
func WithResourcePath(path string) Option {
	return func(o *Options) {
		o.ResourcePaths = append(o.ResourcePaths, path)
	}
}

// WithTitle sets the document title
func WithTitle(title string) Option {
	return func(o *Options) {
		o.Title = title
	}
}

// WithAuthor sets the document author
func WithAuthor(author string) Option {
	return func(o *Options) {
		o.Author = author
	}
}

// WithSubject sets the document subject
func WithSubject(subject string) Option {
	return func(o *Options) {
		o.Subject = subject
	}
}

// WithKeywords sets the document keywords
func WithKeywords(keywords string) Option {
	return func(o *Options) {
		o.Keywords = keywords
	}
}

// WithCreator sets the document creator
func WithCreator(creator string) Option {
	return func(o *Options) {
		o.Creator = creator
	}
}

// WithUserAgentStylesheet sets the user agent stylesheet
func WithUserAgentStylesheet(stylesheet string) Option {
	return func(o *Options) {
		o.UserAgentStylesheet = stylesheet
	}
}
