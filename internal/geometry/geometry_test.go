package geometry

import (
	"errors"
	"math"
	"testing"
)

func TestNew_UsableArea(t *testing.T) {
	g, err := New(210, 297, 10, 15, 15)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := g.UsableWidth(); got != 190 {
		t.Errorf("usable width = %v, want 190", got)
	}
	if got := g.UsableHeight(); got != 247 {
		t.Errorf("usable height = %v, want 247", got)
	}
	x, y := g.ContentOrigin()
	if x != 10 || y != 25 {
		t.Errorf("origin = (%v, %v), want (10, 25)", x, y)
	}
}

func TestNew_ConfigurationErrors(t *testing.T) {
	tests := []struct {
		name                                  string
		width, height, margin, header, footer float64
	}{
		{"margins eat width", 20, 297, 10, 0, 0},
		{"bands eat height", 210, 60, 10, 20, 20},
		{"negative margin", 210, 297, -1, 0, 0},
		{"zero page", 0, 0, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.width, tt.height, tt.margin, tt.header, tt.footer)
			if !errors.Is(err, ErrConfiguration) {
				t.Fatalf("expected ErrConfiguration, got %v", err)
			}
		})
	}
}

func TestScale(t *testing.T) {
	g, err := New(220, 300, 10, 15, 15)
	if err != nil {
		t.Fatal(err)
	}
	s, err := g.Scale(800, 2600)
	if err != nil {
		t.Fatal(err)
	}
	if s.PxPerUnit != 4 {
		t.Errorf("px per unit = %v, want 4", s.PxPerUnit)
	}
	if s.ImageHeight != 650 {
		t.Errorf("image height = %v, want 650", s.ImageHeight)
	}
	if got := s.PageHeightPx(g); got != 1000 {
		t.Errorf("page height px = %d, want 1000", got)
	}
	if got := s.ToUnits(1000); got != 250 {
		t.Errorf("ToUnits(1000) = %v, want 250", got)
	}
	if got := s.ToPixels(5); got != 20 {
		t.Errorf("ToPixels(5) = %v, want 20", got)
	}
	// HeightPx/ImageHeight must agree with PxPerUnit.
	if math.Abs(float64(s.HeightPx)/s.ImageHeight-s.PxPerUnit) > 1e-9 {
		t.Errorf("ratio drift: %v vs %v", float64(s.HeightPx)/s.ImageHeight, s.PxPerUnit)
	}
}

func TestScale_NonIntegralRatioTruncates(t *testing.T) {
	g, err := New(210, 297, 10, 15, 15)
	if err != nil {
		t.Fatal(err)
	}
	s, err := g.Scale(800, 5000)
	if err != nil {
		t.Fatal(err)
	}
	// 800 * 247 / 190 = 1040
	if got := s.PageHeightPx(g); got != 1040 {
		t.Errorf("page height px = %d, want 1040", got)
	}
	s2, _ := g.Scale(718, 5000)
	// 718 * 247 / 190 = 933.4
	if got := s2.PageHeightPx(g); got != 933 {
		t.Errorf("page height px = %d, want 933", got)
	}
}

func TestScale_BadBitmap(t *testing.T) {
	g := PageGeometry{PageWidth: 210, PageHeight: 297, Margin: 10}
	if _, err := g.Scale(0, 100); !errors.Is(err, ErrConfiguration) {
		t.Errorf("zero width: expected ErrConfiguration, got %v", err)
	}
	if _, err := g.Scale(100, -1); !errors.Is(err, ErrConfiguration) {
		t.Errorf("negative height: expected ErrConfiguration, got %v", err)
	}
	if _, err := g.Scale(100, 0); err != nil {
		t.Errorf("zero height should be accepted, got %v", err)
	}
}

func TestLookupPageSize(t *testing.T) {
	ps, ok := LookupPageSize(" letter")
	if !ok || ps != PageSizeLetter {
		t.Errorf("letter = %+v, %v", ps, ok)
	}
	if _, ok := LookupPageSize("B5"); ok {
		t.Error("B5 should not be known")
	}
}
