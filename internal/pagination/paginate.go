package pagination

import (
	"context"
	"math"

	"github.com/gompdf/slicepdf/internal/geometry"
	"github.com/gompdf/slicepdf/internal/sections"
)

// Bitmap carries the pixel dimensions of the rendered document.
type Bitmap struct {
	WidthPx  int
	HeightPx int
}

// PageSlice is the part of the bitmap placed on one page, and where it goes.
type PageSlice struct {
	PageIndex int

	SourceTopPx    int
	SourceHeightPx int

	PlacementX      float64
	PlacementY      float64
	PlacementWidth  float64
	PlacementHeight float64

	// Deferred is set when the cut was moved up to keep a section whole.
	Deferred bool
}

// SourceBottomPx returns the first row not covered by the slice
func (s PageSlice) SourceBottomPx() int {
	return s.SourceTopPx + s.SourceHeightPx
}

// Paginator walks the bitmap top to bottom and yields one slice per page.
// A Paginator is single-use: once exhausted it keeps returning false.
type Paginator struct {
	bitmap   Bitmap
	index    *sections.Index
	geometry geometry.PageGeometry
	scale    geometry.Scale
	options  Options

	nominalPx  int
	slackPx    int
	minSlicePx int

	cursor int
	page   int
}

// NewPaginator creates a paginator for one run over the bitmap.
func NewPaginator(bitmap Bitmap, index *sections.Index, g geometry.PageGeometry, options Options) (*Paginator, error) {
	scale, err := g.Scale(bitmap.WidthPx, bitmap.HeightPx)
	if err != nil {
		return nil, err
	}
	options = options.withDefaults()

	nominal := scale.PageHeightPx(g)
	minSlice := int(math.Floor(float64(nominal) * options.MinProgressFraction))
	if minSlice < 1 {
		minSlice = 1
	}

	return &Paginator{
		bitmap:     bitmap,
		index:      index,
		geometry:   g,
		scale:      scale,
		options:    options,
		nominalPx:  nominal,
		slackPx:    int(math.Ceil(scale.ToPixels(options.SlackUnits))),
		minSlicePx: minSlice,
		page:       1,
	}, nil
}

// NominalHeightPx is the slice height used when no section is in the way.
func (p *Paginator) NominalHeightPx() int {
	return p.nominalPx
}

// Scale returns the pixel/unit scale shared by every page of the run.
func (p *Paginator) Scale() geometry.Scale {
	return p.scale
}

// Done reports whether the whole bitmap has been emitted.
func (p *Paginator) Done() bool {
	return p.cursor >= p.bitmap.HeightPx
}

// Next returns the next page slice. It returns false once the bitmap is
// exhausted, and the context's error if ctx is done before the slice is emitted.
func (p *Paginator) Next(ctx context.Context) (PageSlice, bool, error) {
	if p.Done() {
		return PageSlice{}, false, nil
	}
	if err := ctx.Err(); err != nil {
		return PageSlice{}, false, err
	}

	height, deferred := p.sliceHeight()
	if remaining := p.bitmap.HeightPx - p.cursor; height > remaining {
		height = remaining
	}

	x, y := p.geometry.ContentOrigin()
	slice := PageSlice{
		PageIndex:       p.page,
		SourceTopPx:     p.cursor,
		SourceHeightPx:  height,
		PlacementX:      x,
		PlacementY:      y,
		PlacementWidth:  p.geometry.UsableWidth(),
		PlacementHeight: p.scale.ToUnits(height),
		Deferred:        deferred,
	}

	p.cursor += height
	p.page++
	return slice, true, nil
}

// sliceHeight picks the height of the slice starting at the cursor. Only the
// first section starting inside the lookahead window is considered.
func (p *Paginator) sliceHeight() (int, bool) {
	height := p.nominalPx

	region, ok := p.index.FirstStartingIn(p.cursor, p.cursor+p.nominalPx+p.slackPx)
	if !ok {
		return height, false
	}

	top := region.TopPx - p.cursor
	bottom := top + region.HeightPx
	startsTooLow := top > p.nominalPx-p.options.MinSpaceForSectionPx
	overflows := bottom > p.nominalPx
	if !startsTooLow && !overflows {
		return height, false
	}

	height = top
	if height <= 0 {
		// Section already at the top of the page; take a small bite to make progress.
		height = p.minSlicePx
	}
	return height, true
}

// Collect drains the paginator.
func (p *Paginator) Collect(ctx context.Context) ([]PageSlice, error) {
	var slices []PageSlice
	for {
		s, ok, err := p.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return slices, nil
		}
		slices = append(slices, s)
	}
}
