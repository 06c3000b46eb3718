// Package slicer crops page-sized bands out of the rendered bitmap and
// encodes them as image fragments for the document writer.
package slicer

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"strings"

	"github.com/gompdf/slicepdf/internal/pagination"
	xdraw "golang.org/x/image/draw"
)

// ErrEncode is returned when a slice cannot be cropped or encoded
var ErrEncode = errors.New("slice encoding failed")

// Format is the encoding of a fragment
type Format string

const (
	// FormatJPEG encodes fragments as baseline JPEG
	FormatJPEG Format = "JPG"
	// FormatPNG encodes fragments losslessly
	FormatPNG Format = "PNG"
)

// DefaultQuality is the JPEG quality used when none is set
const DefaultQuality = 100

// ParseFormat maps "jpeg", "jpg" and "png" (any case) to a Format
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "jpg", "jpeg":
		return FormatJPEG, nil
	case "png":
		return FormatPNG, nil
	}
	return "", fmt.Errorf("unknown image format %q", s)
}

// Options configures a Renderer
type Options struct {
	Format  Format
	Quality int
}

// Fragment is one encoded slice
type Fragment struct {
	Data     []byte
	Format   Format
	WidthPx  int
	HeightPx int
}

// Renderer turns page slices into encoded fragments
type Renderer struct {
	options Options
}

// New creates a slice renderer
func New(options Options) *Renderer {
	if options.Format == "" {
		options.Format = FormatJPEG
	}
	if options.Quality <= 0 || options.Quality > 100 {
		options.Quality = DefaultQuality
	}
	return &Renderer{options: options}
}

// Format returns the fragment encoding
func (r *Renderer) Format() Format {
	return r.options.Format
}

// Render copies rows [SourceTopPx, SourceBottomPx) of img, full width, into
// a fresh buffer and encodes it. The buffer is not retained.
func (r *Renderer) Render(img image.Image, s pagination.PageSlice) (Fragment, error) {
	b := img.Bounds()
	if s.SourceHeightPx <= 0 || s.SourceTopPx < 0 || b.Min.Y+s.SourceBottomPx() > b.Max.Y {
		return Fragment{}, fmt.Errorf("%w: rows [%d,%d) outside bitmap of height %d",
			ErrEncode, s.SourceTopPx, s.SourceBottomPx(), b.Dy())
	}

	src := image.Rect(b.Min.X, b.Min.Y+s.SourceTopPx, b.Max.X, b.Min.Y+s.SourceBottomPx())
	crop := image.NewRGBA(image.Rect(0, 0, src.Dx(), src.Dy()))
	xdraw.Copy(crop, image.Point{}, img, src, xdraw.Src, nil)

	var buf bytes.Buffer
	var err error
	switch r.options.Format {
	case FormatPNG:
		err = png.Encode(&buf, crop)
	case FormatJPEG:
		err = jpeg.Encode(&buf, crop, &jpeg.Options{Quality: r.options.Quality})
	default:
		err = fmt.Errorf("unsupported format %q", r.options.Format)
	}
	if err != nil {
		return Fragment{}, fmt.Errorf("%w: page %d: %v", ErrEncode, s.PageIndex, err)
	}

	return Fragment{
		Data:     buf.Bytes(),
		Format:   r.options.Format,
		WidthPx:  crop.Bounds().Dx(),
		HeightPx: crop.Bounds().Dy(),
	}, nil
}
