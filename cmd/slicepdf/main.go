package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/gompdf/slicepdf"
	"github.com/gompdf/slicepdf/internal/geometry"
	"github.com/gompdf/slicepdf/internal/trigger"
)

func main() {
	var (
		inputFile    string
		outputFile   string
		pageSize     string
		orientation  string
		margin       float64
		headerBand   float64
		footerBand   float64
		dpi          float64
		scale        float64
		sectionClass string
		format       string
		quality      int
		headerText   string
		footerText   string
		title        string
		author       string
		resourcePath string
		verbose      bool
	)

	defaults := slicepdf.DefaultOptions()

	flag.StringVar(&inputFile, "input", "", "Input HTML or Markdown file path, or an http(s) URL")
	flag.StringVar(&outputFile, "output", "", "Output PDF file path")
	flag.StringVar(&pageSize, "page-size", "A4", "Page size: A3, A4, A5, Letter or Legal")
	flag.StringVar(&orientation, "orientation", string(slicepdf.PageOrientationPortrait), "Page orientation: portrait or landscape")
	flag.Float64Var(&margin, "margin", defaults.Margin, "Margin on every side in mm")
	flag.Float64Var(&headerBand, "header-band", defaults.HeaderBand, "Height reserved for the header in mm")
	flag.Float64Var(&footerBand, "footer-band", defaults.FooterBand, "Height reserved for the footer in mm")
	flag.Float64Var(&dpi, "dpi", defaults.DPI, "CSS pixels per inch of the layout viewport")
	flag.Float64Var(&scale, "scale", defaults.RasterScale, "Bitmap pixels per CSS pixel")
	flag.StringVar(&sectionClass, "section-class", defaults.SectionClass, "Class of elements that must not be split across pages")
	flag.StringVar(&format, "format", string(defaults.ImageFormat), "Page image format: jpeg or png")
	flag.IntVar(&quality, "quality", defaults.ImageQuality, "JPEG quality (1-100)")
	flag.StringVar(&headerText, "header", "", "Header text; {page} and {pages} are replaced")
	flag.StringVar(&footerText, "footer", "", "Footer text; {page} and {pages} are replaced")
	flag.StringVar(&title, "title", "", "Document title")
	flag.StringVar(&author, "author", "", "Document author")
	flag.StringVar(&resourcePath, "resource-path", "", "Extra directories to search for resources, separated by the OS list separator")
	flag.BoolVar(&verbose, "verbose", false, "Enable verbose logging")
	flag.Parse()

	if inputFile == "" {
		fmt.Println("Error: input file is required")
		flag.Usage()
		os.Exit(1)
	}

	ps, ok := geometry.LookupPageSize(pageSize)
	if !ok {
		fmt.Printf("Error: unknown page size %q\n", pageSize)
		os.Exit(1)
	}

	isURL := strings.HasPrefix(inputFile, "http://") || strings.HasPrefix(inputFile, "https://")
	if outputFile == "" {
		if isURL {
			outputFile = trigger.DefaultFilename
		} else {
			ext := filepath.Ext(inputFile)
			outputFile = inputFile[:len(inputFile)-len(ext)] + ".pdf"
		}
	}

	opts := []slicepdf.Option{
		slicepdf.WithPageSize(ps.Width, ps.Height),
		slicepdf.WithPageOrientation(slicepdf.PageOrientation(strings.ToLower(orientation))),
		slicepdf.WithMargin(margin),
		slicepdf.WithHeaderBand(headerBand),
		slicepdf.WithFooterBand(footerBand),
		slicepdf.WithDPI(dpi),
		slicepdf.WithRasterScale(scale),
		slicepdf.WithSectionClass(sectionClass),
		slicepdf.WithImageFormat(slicepdf.ImageFormat(strings.ToLower(format))),
		slicepdf.WithImageQuality(quality),
		slicepdf.WithHeaderText(headerText),
		slicepdf.WithFooterText(footerText),
		slicepdf.WithTitle(title),
		slicepdf.WithAuthor(author),
		slicepdf.WithDebug(verbose),
	}
	if resourcePath != "" {
		for _, p := range filepath.SplitList(resourcePath) {
			opts = append(opts, slicepdf.WithResourcePath(p))
		}
	}
	converter := slicepdf.New(opts...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	switch {
	case isURL:
		err = converter.ConvertURL(ctx, inputFile, outputFile)
	case isMarkdown(inputFile):
		err = converter.ConvertMarkdownFile(ctx, inputFile, outputFile)
	default:
		err = converter.ConvertFile(ctx, inputFile, outputFile)
	}
	if err != nil {
		fmt.Printf("Error converting file: %v\n", err)
		os.Exit(1)
	}

	if verbose {
		fmt.Printf("Successfully converted %s to %s\n", inputFile, outputFile)
	}
}

func isMarkdown(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return true
	}
	return false
}
