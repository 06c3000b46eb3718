package raster

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gompdf/slicepdf/internal/res"
	"github.com/gompdf/slicepdf/internal/sections"
)

func render(t *testing.T, r *Renderer, markup string) *Result {
	t.Helper()
	out, err := r.Render(context.Background(), markup)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return out
}

func rgba(img *image.RGBA, x, y int) color.RGBA {
	return img.RGBAAt(x, y)
}

func TestRender_SizeBackgroundAndSections(t *testing.T) {
	r := NewRenderer(nil, Options{ViewportWidth: 200, Scale: 2})
	out := render(t, r, `
		<div class="pdf-section" style="height: 100px; background: #ff0000"></div>
		<div style="height: 50px"></div>`)

	if out.Width() != 400 || out.Height() != 300 {
		t.Fatalf("bitmap = %dx%d, want 400x300", out.Width(), out.Height())
	}
	if got := rgba(out.Image, 10, 10); got != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("section pixel = %v, want red", got)
	}
	if got := rgba(out.Image, 10, 250); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("page pixel = %v, want white", got)
	}

	want := []sections.Region{{TopPx: 0, HeightPx: 200, Label: "div"}}
	if len(out.Sections) != 1 || out.Sections[0] != want[0] {
		t.Errorf("sections = %+v, want %+v", out.Sections, want)
	}
}

func TestRender_CustomSectionClassAndBorders(t *testing.T) {
	r := NewRenderer(nil, Options{ViewportWidth: 100, Scale: 1, SectionClass: "keep"})
	out := render(t, r, `
		<div class="pdf-section" style="height: 10px"></div>
		<div class="keep" style="height: 20px; border-top: 4px solid #0000ff"></div>`)

	if len(out.Sections) != 1 || out.Sections[0].TopPx != 10 || out.Sections[0].HeightPx != 24 {
		t.Errorf("sections = %+v, want one at 10 with height 24", out.Sections)
	}
	if got := rgba(out.Image, 50, 11); got != (color.RGBA{0, 0, 255, 255}) {
		t.Errorf("border pixel = %v, want blue", got)
	}
}

func TestRender_EmptyMarkup(t *testing.T) {
	r := NewRenderer(nil, Options{ViewportWidth: 100})
	out := render(t, r, "")
	if out.Height() != 0 || len(out.Sections) != 0 {
		t.Errorf("empty document = height %d, %d sections", out.Height(), len(out.Sections))
	}
	if out.Width() != 200 {
		t.Errorf("width = %d, want viewport times default scale", out.Width())
	}
}

func TestRender_Errors(t *testing.T) {
	if _, err := NewRenderer(nil, Options{}).Render(context.Background(), "<p>x</p>"); !errors.Is(err, ErrRender) {
		t.Errorf("zero viewport: got %v, want ErrRender", err)
	}

	r := NewRenderer(nil, Options{ViewportWidth: 100, Scale: 1, MaxPixels: 1000})
	if _, err := r.Render(context.Background(), `<div style="height: 100px"></div>`); !errors.Is(err, ErrRender) {
		t.Errorf("oversized bitmap: got %v, want ErrRender", err)
	}

	huge := `<div style="height: 1e308px"></div><div style="height: 1e308px"></div>`
	_, err := NewRenderer(nil, Options{ViewportWidth: 100}).Render(context.Background(), huge)
	if !errors.Is(err, ErrRender) || !strings.Contains(err.Error(), "not finite") {
		t.Errorf("overflowing height: got %v, want a non-finite height ErrRender", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewRenderer(nil, Options{ViewportWidth: 100}).Render(ctx, "<p>x</p>"); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled: got %v", err)
	}
}

func TestRender_TextInks(t *testing.T) {
	r := NewRenderer(nil, Options{ViewportWidth: 200, Scale: 1})
	out := render(t, r, `<p style="margin: 0">Hello</p>`)

	inked := false
	b := out.Image.Bounds()
	for y := b.Min.Y; y < b.Max.Y && !inked; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if c := rgba(out.Image, x, y); c.R < 128 {
				inked = true
				break
			}
		}
	}
	if !inked {
		t.Error("no text was drawn")
	}
}

func TestRender_LinkedStylesheetAndDataImage(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "s.css"), []byte(".box { background-color: #0000ff; height: 10px }"), 0o644); err != nil {
		t.Fatal(err)
	}

	src := image.NewRGBA(image.Rect(0, 0, 4, 4))
	draw.Draw(src, src.Bounds(), image.NewUniform(color.RGBA{0, 255, 0, 255}), image.Point{}, draw.Src)
	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		t.Fatal(err)
	}
	dataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())

	r := NewRenderer(res.NewLoader(filepath.Join(dir, "index.html")), Options{ViewportWidth: 50, Scale: 1})
	out := render(t, r, `<html><head><link rel="stylesheet" href="s.css"></head><body>
		<div class="box"></div>
		<div><img src="`+dataURL+`"></div>
	</body></html>`)

	if got := rgba(out.Image, 5, 5); got != (color.RGBA{0, 0, 255, 255}) {
		t.Errorf("linked style pixel = %v, want blue", got)
	}
	if got := rgba(out.Image, 1, 11); got.G < 200 || got.R > 50 || got.B > 50 {
		t.Errorf("image pixel = %v, want green", got)
	}
	if out.Height() != 14 {
		t.Errorf("height = %d, want 14", out.Height())
	}
}

func TestViewportWidth(t *testing.T) {
	if got := ViewportWidth(25.4, 96); got != 96 {
		t.Errorf("ViewportWidth(25.4mm, 96) = %v", got)
	}
	if got := ViewportWidth(25.4, 0); got != 96 {
		t.Errorf("zero dpi should fall back to 96, got %v", got)
	}
}
