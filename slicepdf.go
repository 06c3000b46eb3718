// Package slicepdf renders HTML into one tall bitmap and slices it into a
// multi-page PDF, moving page cuts up so marked sections are not split.
package slicepdf

import (
	"github.com/gompdf/slicepdf/internal/geometry"
	"github.com/gompdf/slicepdf/pkg/api"
)

type Converter = api.Converter
type Document = api.Document
type Options = api.Options
type Option = api.Option
type PageOrientation = api.PageOrientation
type ImageFormat = api.ImageFormat

func New(opts ...Option) *Converter             { return api.New(opts...) }
func NewWithOptions(options Options) *Converter { return api.NewWithOptions(options) }
func DefaultOptions() Options                   { return api.DefaultOptions() }

var (
	ErrEmptyContent  = api.ErrEmptyContent
	ErrConfiguration = api.ErrConfiguration
)

var (
	MarkdownToHTML = api.MarkdownToHTML

	WithPageSize            = api.WithPageSize
	WithPageSizeA3          = api.WithPageSizeA3
	WithPageSizeA4          = api.WithPageSizeA4
	WithPageSizeA5          = api.WithPageSizeA5
	WithPageSizeLetter      = api.WithPageSizeLetter
	WithPageSizeLegal       = api.WithPageSizeLegal
	WithPageOrientation     = api.WithPageOrientation
	WithMargin              = api.WithMargin
	WithHeaderBand          = api.WithHeaderBand
	WithFooterBand          = api.WithFooterBand
	WithDPI                 = api.WithDPI
	WithRasterScale         = api.WithRasterScale
	WithMaxBitmapPixels     = api.WithMaxBitmapPixels
	WithDebug               = api.WithDebug
	WithLogger              = api.WithLogger
	WithSectionClass        = api.WithSectionClass
	WithSlack               = api.WithSlack
	WithMinSpaceForSection  = api.WithMinSpaceForSection
	WithMinProgressFraction = api.WithMinProgressFraction
	WithImageFormat         = api.WithImageFormat
	WithImageQuality        = api.WithImageQuality
	WithHeaderText          = api.WithHeaderText
	WithFooterText          = api.WithFooterText
	WithResourcePath        = api.WithResourcePath
	WithTitle               = api.WithTitle
	WithAuthor              = api.WithAuthor
	WithSubject             = api.WithSubject
	WithKeywords            = api.WithKeywords
	WithCreator             = api.WithCreator
	WithUserAgentStylesheet = api.WithUserAgentStylesheet
)

const (
	PageOrientationPortrait  = api.PageOrientationPortrait
	PageOrientationLandscape = api.PageOrientationLandscape

	ImageFormatJPEG = api.ImageFormatJPEG
	ImageFormatPNG  = api.ImageFormatPNG
)

// Page sizes in millimetres
var (
	PageSizeA3Width      = geometry.PageSizeA3.Width
	PageSizeA3Height     = geometry.PageSizeA3.Height
	PageSizeA4Width      = geometry.PageSizeA4.Width
	PageSizeA4Height     = geometry.PageSizeA4.Height
	PageSizeA5Width      = geometry.PageSizeA5.Width
	PageSizeA5Height     = geometry.PageSizeA5.Height
	PageSizeLetterWidth  = geometry.PageSizeLetter.Width
	PageSizeLetterHeight = geometry.PageSizeLetter.Height
	PageSizeLegalWidth   = geometry.PageSizeLegal.Width
	PageSizeLegalHeight  = geometry.PageSizeLegal.Height
)
