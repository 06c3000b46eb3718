package api

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	pdflib "github.com/ledongthuc/pdf"
)

// testConverter lays out 200 CSS px across a 200 mm usable width and
// rasterizes at 4 px per CSS px, so the bitmap is 800 px wide, one page
// holds 1000 px and the lookahead slack is 20 px.
func testConverter(opts ...Option) *Converter {
	base := []Option{
		WithPageSize(220, 300),
		WithMargin(10),
		WithHeaderBand(15),
		WithFooterBand(15),
		WithDPI(25.4),
		WithRasterScale(4),
	}
	return New(append(base, opts...)...)
}

func pageCount(t *testing.T, data []byte) int {
	t.Helper()
	r, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	return r.NumPage()
}

// tallDoc is 650 CSS px high with a 37.5 px section starting at 237.5 px,
// which becomes an 800x2600 bitmap with a section at rows [950,1100).
const tallDoc = `<div style="height: 237.5px"></div>
<div class="pdf-section" style="height: 37.5px; background: #336699"></div>
<div style="height: 375px"></div>`

func TestGenerate_DefersSectionToNextPage(t *testing.T) {
	doc, err := testConverter().Generate(context.Background(), tallDoc)
	if err != nil {
		t.Fatal(err)
	}

	if doc.BitmapWidth != 800 || doc.BitmapHeight != 2600 {
		t.Fatalf("bitmap = %dx%d, want 800x2600", doc.BitmapWidth, doc.BitmapHeight)
	}
	if len(doc.Sections) != 1 || doc.Sections[0].TopPx != 950 || doc.Sections[0].HeightPx != 150 {
		t.Fatalf("sections = %+v", doc.Sections)
	}

	want := [][2]int{{0, 950}, {950, 1000}, {1950, 650}}
	if len(doc.Slices) != len(want) {
		t.Fatalf("got %d slices, want %d", len(doc.Slices), len(want))
	}
	for i, s := range doc.Slices {
		if s.SourceTopPx != want[i][0] || s.SourceHeightPx != want[i][1] || s.PageIndex != i+1 {
			t.Errorf("slice %d = %+v, want top %d height %d", i, s, want[i][0], want[i][1])
		}
		if s.PlacementX != 10 || s.PlacementY != 25 || s.PlacementWidth != 200 {
			t.Errorf("slice %d placed at (%v,%v) width %v", i, s.PlacementX, s.PlacementY, s.PlacementWidth)
		}
	}
	if !doc.Slices[0].Deferred {
		t.Error("first slice should be marked as deferred")
	}
	if doc.Slices[0].PlacementHeight != 237.5 {
		t.Errorf("first placement height = %v, want 237.5", doc.Slices[0].PlacementHeight)
	}

	if n := pageCount(t, doc.Data); n != 3 {
		t.Errorf("pdf has %d pages, want 3", n)
	}
}

func TestGenerate_WithoutSectionsUsesNominalPages(t *testing.T) {
	doc, err := testConverter().Generate(context.Background(), strings.ReplaceAll(tallDoc, "pdf-section", "plain"))
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Slices) != 3 || doc.Slices[1].SourceTopPx != 1000 || doc.Slices[2].SourceHeightPx != 600 {
		t.Errorf("slices = %+v", doc.Slices)
	}
}

func TestGenerate_EmptyBitmapGivesBlankPage(t *testing.T) {
	doc, err := testConverter().Generate(context.Background(), `<div style="display: none">hidden</div>`)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Slices) != 0 || doc.BitmapHeight != 0 {
		t.Errorf("slices = %d, bitmap height = %d", len(doc.Slices), doc.BitmapHeight)
	}
	if doc.Pages() != 1 || pageCount(t, doc.Data) != 1 {
		t.Error("empty document should still be a one page PDF")
	}
}

func TestGenerate_Errors(t *testing.T) {
	ctx := context.Background()

	for _, content := range []string{"", "  \n\t"} {
		if _, err := testConverter().Generate(ctx, content); !errors.Is(err, ErrEmptyContent) {
			t.Errorf("content %q: got %v, want ErrEmptyContent", content, err)
		}
	}
	if _, err := testConverter(WithMargin(120)).Generate(ctx, tallDoc); !errors.Is(err, ErrConfiguration) {
		t.Errorf("oversized margin: got %v, want ErrConfiguration", err)
	}
	if _, err := testConverter(WithHeaderBand(200), WithFooterBand(100)).Generate(ctx, tallDoc); !errors.Is(err, ErrConfiguration) {
		t.Errorf("bands larger than the page: got %v, want ErrConfiguration", err)
	}
	if _, err := testConverter(WithImageFormat("gif")).Generate(ctx, tallDoc); !errors.Is(err, ErrConfiguration) {
		t.Errorf("bad image format: got %v, want ErrConfiguration", err)
	}
	if _, err := testConverter(WithPageOrientation("diagonal")).Generate(ctx, tallDoc); !errors.Is(err, ErrConfiguration) {
		t.Errorf("bad orientation: got %v, want ErrConfiguration", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := testConverter().Generate(cancelled, tallDoc); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled: got %v", err)
	}
}

func TestConvertToFile_NothingWrittenOnFailure(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.pdf")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := testConverter().ConvertToFile(ctx, tallDoc, out); err == nil {
		t.Fatal("expected an error")
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Errorf("output file exists after a failed run: %v", err)
	}

	if err := testConverter().ConvertToFile(context.Background(), tallDoc, out); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if n := pageCount(t, data); n != 3 {
		t.Errorf("pdf has %d pages, want 3", n)
	}
}

func TestConvert_WritesToWriter(t *testing.T) {
	var buf bytes.Buffer
	c := testConverter(WithImageFormat(ImageFormatPNG), WithFooterText("{page}/{pages}"), WithTitle("Report"))
	if err := c.Convert(context.Background(), "<p>Hello</p>", &buf); err != nil {
		t.Fatal(err)
	}
	if n := pageCount(t, buf.Bytes()); n != 1 {
		t.Errorf("pdf has %d pages, want 1", n)
	}

	data, err := c.ConvertBytes(context.Background(), []byte("<p>Hello</p>"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Error("ConvertBytes did not return a PDF")
	}
}

func TestConvertFile_ResolvesRelativeResources(t *testing.T) {
	dir := t.TempDir()
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	img.Set(0, 0, color.Black)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	files := map[string][]byte{
		"logo.png":   buf.Bytes(),
		"style.css":  []byte(".tall { height: 300px }"),
		"index.html": []byte(`<link rel="stylesheet" href="style.css"><img src="logo.png"><div class="tall"></div><div class="tall"></div>`),
	}
	for name, data := range files {
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	out := filepath.Join(dir, "out", "index.pdf")
	if err := testConverter().ConvertFile(context.Background(), filepath.Join(dir, "index.html"), out); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	// the linked stylesheet makes the divs 600 CSS px tall: at least 2400 px, three pages
	if n := pageCount(t, data); n != 3 {
		t.Errorf("pdf has %d pages, want 3", n)
	}
}

func TestConvertURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/doc.html":
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(`<link rel="stylesheet" href="s.css"><div class="x"></div>`))
		case "/s.css":
			w.Header().Set("Content-Type", "text/css")
			_, _ = w.Write([]byte(".x { height: 600px }"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	out := filepath.Join(t.TempDir(), "url.pdf")
	if err := testConverter().ConvertURL(context.Background(), srv.URL+"/doc.html", out); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if n := pageCount(t, data); n != 3 {
		t.Errorf("pdf has %d pages, want 3", n)
	}
}

func TestConvertMarkdown(t *testing.T) {
	md := []byte("# One\n\nFirst part.\n\n## Two\n\n- a\n- b\n\n| x | y |\n|---|---|\n| 1 | 2 |\n")

	html, err := MarkdownToHTML(md, "Notes", "pdf-section")
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(html, `<div class="pdf-section">`); got != 2 {
		t.Errorf("got %d sections, want 2:\n%s", got, html)
	}
	if !strings.Contains(html, "<table>") || !strings.Contains(html, "<title>Notes</title>") {
		t.Errorf("markdown html = %s", html)
	}

	var buf bytes.Buffer
	if err := New().ConvertMarkdown(context.Background(), md, &buf); err != nil {
		t.Fatal(err)
	}
	if n := pageCount(t, buf.Bytes()); n != 1 {
		t.Errorf("pdf has %d pages, want 1", n)
	}
	if err := testConverter().ConvertMarkdown(context.Background(), []byte(" \n"), &buf); !errors.Is(err, ErrEmptyContent) {
		t.Errorf("empty markdown: got %v", err)
	}
}

func TestGeometry_Orientation(t *testing.T) {
	g, err := New(WithPageOrientation(PageOrientationLandscape)).Geometry()
	if err != nil {
		t.Fatal(err)
	}
	if g.PageWidth != 297 || g.PageHeight != 210 {
		t.Errorf("landscape A4 = %vx%v", g.PageWidth, g.PageHeight)
	}

	g, err = New(WithPageSize(297, 210)).Geometry()
	if err != nil {
		t.Fatal(err)
	}
	if g.PageWidth != 210 || g.PageHeight != 297 {
		t.Errorf("portrait should swap a landscape size, got %vx%v", g.PageWidth, g.PageHeight)
	}
	if g.UsableHeight() != 247 {
		t.Errorf("usable height = %v, want 247", g.UsableHeight())
	}
}

func TestWithOption_DoesNotMutate(t *testing.T) {
	c := New(WithResourcePath("a"))
	d := c.WithOption(WithResourcePath("b"))

	if got := c.Options().ResourcePaths; len(got) != 1 {
		t.Errorf("original converter changed: %v", got)
	}
	if got := d.Options().ResourcePaths; len(got) != 2 {
		t.Errorf("derived converter = %v", got)
	}
}
