package slicer

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/gompdf/slicepdf/internal/pagination"
)

// striped returns a w x h bitmap whose rows alternate red/blue every 10 pixels
func striped(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y += 10 {
		c := color.RGBA{255, 0, 0, 255}
		if (y/10)%2 == 1 {
			c = color.RGBA{0, 0, 255, 255}
		}
		draw.Draw(img, image.Rect(0, y, w, y+10), image.NewUniform(c), image.Point{}, draw.Src)
	}
	return img
}

func TestRender_PNGIsPixelExact(t *testing.T) {
	img := striped(30, 100)
	r := New(Options{Format: FormatPNG})

	frag, err := r.Render(img, pagination.PageSlice{PageIndex: 2, SourceTopPx: 10, SourceHeightPx: 25})
	if err != nil {
		t.Fatal(err)
	}
	if frag.WidthPx != 30 || frag.HeightPx != 25 || frag.Format != FormatPNG {
		t.Fatalf("fragment = %dx%d %s", frag.WidthPx, frag.HeightPx, frag.Format)
	}

	decoded, err := png.Decode(bytes.NewReader(frag.Data))
	if err != nil {
		t.Fatal(err)
	}
	for y := 0; y < 25; y++ {
		want := img.At(5, 10+y)
		if got := decoded.At(5, y); !sameColor(got, want) {
			t.Fatalf("row %d = %v, want %v", y, got, want)
		}
	}
}

func TestRender_JPEGDefaults(t *testing.T) {
	r := New(Options{})
	if r.Format() != FormatJPEG || r.options.Quality != DefaultQuality {
		t.Fatalf("defaults = %+v", r.options)
	}

	frag, err := r.Render(striped(16, 40), pagination.PageSlice{SourceTopPx: 30, SourceHeightPx: 10})
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(frag.Data))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 16 || cfg.Height != 10 {
		t.Errorf("jpeg = %dx%d, want 16x10", cfg.Width, cfg.Height)
	}
}

func TestRender_OffsetBounds(t *testing.T) {
	base := striped(10, 60)
	sub := base.SubImage(image.Rect(0, 20, 10, 60))

	frag, err := New(Options{Format: FormatPNG}).Render(sub, pagination.PageSlice{SourceTopPx: 0, SourceHeightPx: 10})
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := png.Decode(bytes.NewReader(frag.Data))
	if err != nil {
		t.Fatal(err)
	}
	if !sameColor(decoded.At(0, 0), base.At(0, 20)) {
		t.Errorf("sub-image slice should start at its own origin")
	}
}

func TestRender_OutOfRange(t *testing.T) {
	r := New(Options{})
	img := striped(10, 50)
	for _, s := range []pagination.PageSlice{
		{SourceTopPx: 40, SourceHeightPx: 20},
		{SourceTopPx: -1, SourceHeightPx: 5},
		{SourceTopPx: 0, SourceHeightPx: 0},
	} {
		if _, err := r.Render(img, s); !errors.Is(err, ErrEncode) {
			t.Errorf("slice %+v: got %v, want ErrEncode", s, err)
		}
	}
}

func TestParseFormat(t *testing.T) {
	tests := map[string]Format{"": FormatJPEG, "jpeg": FormatJPEG, "JPG": FormatJPEG, "png": FormatPNG}
	for in, want := range tests {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("gif"); err == nil {
		t.Error("gif should be rejected")
	}
}

func sameColor(a, b color.Color) bool {
	ar, ag, ab, aa := a.RGBA()
	br, bg, bb, ba := b.RGBA()
	return ar == br && ag == bg && ab == bb && aa == ba
}
