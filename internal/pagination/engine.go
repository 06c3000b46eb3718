package pagination

import (
	"context"

	"github.com/gompdf/slicepdf/internal/geometry"
	"github.com/gompdf/slicepdf/internal/sections"
)

// Default section-avoidance thresholds
const (
	// DefaultSlackUnits is how far past the nominal cut (in output units) a
	// section start is still noticed.
	DefaultSlackUnits = 5.0
	// DefaultMinSpaceForSectionPx is the least room, in pixels, a section
	// needs below its start for it to begin on the current page.
	DefaultMinSpaceForSectionPx = 50
	// DefaultMinProgressFraction is the share of a nominal page taken when a
	// section sitting at the top of a page does not fit.
	DefaultMinProgressFraction = 0.1
)

// Options represents options for the pagination engine
type Options struct {
	SlackUnits           float64
	MinSpaceForSectionPx int
	MinProgressFraction  float64
}

// DefaultOptions returns the default section-avoidance thresholds
func DefaultOptions() Options {
	return Options{
		SlackUnits:           DefaultSlackUnits,
		MinSpaceForSectionPx: DefaultMinSpaceForSectionPx,
		MinProgressFraction:  DefaultMinProgressFraction,
	}
}

func (o Options) withDefaults() Options {
	if o.SlackUnits < 0 {
		o.SlackUnits = 0
	}
	if o.MinSpaceForSectionPx < 0 {
		o.MinSpaceForSectionPx = 0
	}
	if o.MinProgressFraction <= 0 || o.MinProgressFraction > 1 {
		o.MinProgressFraction = DefaultMinProgressFraction
	}
	return o
}

// Engine handles the pagination process
type Engine struct {
	options  Options
	geometry geometry.PageGeometry
}

// NewEngine creates a new pagination engine
func NewEngine(g geometry.PageGeometry) *Engine {
	return &Engine{
		options:  DefaultOptions(),
		geometry: g,
	}
}

// SetOptions sets the options for the pagination engine
func (e *Engine) SetOptions(options Options) {
	e.options = options
}

// Start begins a fresh run over the bitmap.
func (e *Engine) Start(bitmap Bitmap, index *sections.Index) (*Paginator, error) {
	return NewPaginator(bitmap, index, e.geometry, e.options)
}

// Paginate breaks the bitmap into page slices
func (e *Engine) Paginate(ctx context.Context, bitmap Bitmap, index *sections.Index) ([]PageSlice, error) {
	p, err := e.Start(bitmap, index)
	if err != nil {
		return nil, err
	}
	return p.Collect(ctx)
}

// CalculatePageCount calculates the number of pages needed
func (e *Engine) CalculatePageCount(ctx context.Context, bitmap Bitmap, index *sections.Index) (int, error) {
	slices, err := e.Paginate(ctx, bitmap, index)
	if err != nil {
		return 0, err
	}
	return len(slices), nil
}
