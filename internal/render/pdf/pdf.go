package pdf

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"codeberg.org/go-pdf/fpdf"
	"github.com/gompdf/slicepdf/internal/geometry"
	"github.com/gompdf/slicepdf/internal/slicer"
)

// PagesAlias is replaced by the total page count in header and footer text
const PagesAlias = "{pages}"

// PageAlias is replaced by the current page number in header and footer text
const PageAlias = "{page}"

// RenderOptions contains options for rendering
type RenderOptions struct {
	Title    string
	Author   string
	Subject  string
	Keywords string
	Creator  string
	Producer string

	// HeaderText and FooterText are drawn centred in the reserved bands
	HeaderText string
	FooterText string
	// FontSize of the header and footer text in points
	FontSize float64
}

// Writer builds a PDF out of page slices. The first page exists from
// construction; NewPage adds the following ones.
type Writer struct {
	pdf      *fpdf.Fpdf
	geometry geometry.PageGeometry
	options  RenderOptions
	tr       func(string) string
	images   int
	logger   *slog.Logger
}

// NewWriter creates a writer for pages of the given geometry, in mm
func NewWriter(g geometry.PageGeometry, options RenderOptions) *Writer {
	orient := "P"
	size := fpdf.SizeType{Wd: g.PageWidth, Ht: g.PageHeight}
	if g.PageWidth > g.PageHeight {
		orient = "L"
		size = fpdf.SizeType{Wd: g.PageHeight, Ht: g.PageWidth}
	}
	if options.FontSize <= 0 {
		options.FontSize = 9
	}

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: orient,
		UnitStr:        "mm",
		Size:           size,
	})
	pdf.SetMargins(g.Margin, g.Margin, g.Margin)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(options.Title, true)
	pdf.SetAuthor(options.Author, true)
	pdf.SetSubject(options.Subject, true)
	pdf.SetKeywords(options.Keywords, true)
	pdf.SetCreator(options.Creator, true)
	pdf.SetProducer(options.Producer, true)
	pdf.AliasNbPages(PagesAlias)

	w := &Writer{
		pdf:      pdf,
		geometry: g,
		options:  options,
		tr:       pdf.UnicodeTranslatorFromDescriptor(""),
		logger:   slog.Default(),
	}
	pdf.SetHeaderFunc(w.header)
	pdf.SetFooterFunc(w.footer)
	pdf.AddPage()
	return w
}

// SetLogger sets the logger
func (w *Writer) SetLogger(logger *slog.Logger) {
	if logger != nil {
		w.logger = logger
	}
}

func (w *Writer) bandText(s string) string {
	s = strings.ReplaceAll(s, PageAlias, strconv.Itoa(w.pdf.PageNo()))
	return w.tr(s)
}

func (w *Writer) header() {
	g := w.geometry
	if w.options.HeaderText == "" || g.HeaderBand <= 0 {
		return
	}
	w.pdf.SetFont("Helvetica", "", w.options.FontSize)
	w.pdf.SetTextColor(96, 96, 96)
	w.pdf.SetXY(g.Margin, g.Margin)
	w.pdf.CellFormat(g.UsableWidth(), g.HeaderBand, w.bandText(w.options.HeaderText), "", 0, "CM", false, 0, "")
}

func (w *Writer) footer() {
	g := w.geometry
	if w.options.FooterText == "" || g.FooterBand <= 0 {
		return
	}
	w.pdf.SetFont("Helvetica", "", w.options.FontSize)
	w.pdf.SetTextColor(96, 96, 96)
	w.pdf.SetXY(g.Margin, g.PageHeight-g.Margin-g.FooterBand)
	w.pdf.CellFormat(g.UsableWidth(), g.FooterBand, w.bandText(w.options.FooterText), "", 0, "CM", false, 0, "")
}

// NewPage starts a new page
func (w *Writer) NewPage() {
	w.pdf.AddPage()
	w.logger.Debug("page added", "page", w.pdf.PageNo())
}

// PlaceImage draws an encoded fragment on the current page at (x, y) with
// size width x height, all in mm.
func (w *Writer) PlaceImage(frag slicer.Fragment, x, y, width, height float64) error {
	if len(frag.Data) == 0 {
		return fmt.Errorf("empty %s fragment", frag.Format)
	}
	w.images++
	name := fmt.Sprintf("slice-%d", w.images)
	opts := fpdf.ImageOptions{ImageType: string(frag.Format)}

	w.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(frag.Data))
	if err := w.pdf.Error(); err != nil {
		return fmt.Errorf("failed to register image: %w", err)
	}
	w.pdf.ImageOptions(name, x, y, width, height, false, opts, 0, "")
	if err := w.pdf.Error(); err != nil {
		return fmt.Errorf("failed to place image: %w", err)
	}

	w.logger.Debug("image placed",
		"page", w.pdf.PageNo(),
		"x", x, "y", y, "w", width, "h", height,
		"bytes", len(frag.Data))
	return nil
}

// PageCount returns the number of pages so far
func (w *Writer) PageCount() int {
	return w.pdf.PageCount()
}

// Output closes the document and writes it to out
func (w *Writer) Output(out io.Writer) error {
	if err := w.pdf.Output(out); err != nil {
		return fmt.Errorf("failed to write pdf: %w", err)
	}
	return nil
}

// Save closes the document and writes it to path, creating the directory
func (w *Writer) Save(outputPath string) error {
	outputDir := filepath.Dir(outputPath)
	if _, err := os.Stat(outputDir); os.IsNotExist(err) {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	return w.pdf.OutputFileAndClose(outputPath)
}
