package sections

import (
	"sort"
)

// Region is a do-not-split band of the bitmap, in pixels from its top.
type Region struct {
	TopPx    int
	HeightPx int
	// Label identifies where the region came from (element id or tag); informational only.
	Label string
}

// Bottom returns the first pixel row after the region
func (r Region) Bottom() int {
	return r.TopPx + r.HeightPx
}

// Index answers "which region starts next" queries over an immutable set of regions.
type Index struct {
	regions []Region
}

// NewIndex builds an index from regions listed in order of appearance.
// The input slice is copied; regions with a negative height are dropped.
func NewIndex(regions []Region) *Index {
	sorted := make([]Region, 0, len(regions))
	for _, r := range regions {
		if r.HeightPx < 0 {
			continue
		}
		sorted = append(sorted, r)
	}
	// Stable keeps appearance order among regions that start on the same row.
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TopPx < sorted[j].TopPx
	})
	return &Index{regions: sorted}
}

// Len returns the number of indexed regions
func (x *Index) Len() int {
	if x == nil {
		return 0
	}
	return len(x.regions)
}

// Regions returns a copy of the indexed regions sorted by top.
func (x *Index) Regions() []Region {
	if x == nil {
		return nil
	}
	out := make([]Region, len(x.regions))
	copy(out, x.regions)
	return out
}

// FirstStartingIn returns the region with the smallest top in [from, until).
func (x *Index) FirstStartingIn(from, until int) (Region, bool) {
	if x == nil || until <= from {
		return Region{}, false
	}
	i := sort.Search(len(x.regions), func(i int) bool {
		return x.regions[i].TopPx >= from
	})
	if i < len(x.regions) && x.regions[i].TopPx < until {
		return x.regions[i], true
	}
	return Region{}, false
}
