package raster

import (
	"context"
	"log/slog"
	"strings"

	"github.com/gompdf/slicepdf/internal/parser/html"
	"github.com/gompdf/slicepdf/internal/res"
	xhtml "golang.org/x/net/html"
)

// collectStylesheets walks the document in order and returns the author
// stylesheets it references: external <link rel="stylesheet"> files loaded
// through loader, and inline <style> blocks. Source order is preserved so
// later sheets win ties in the cascade.
func collectStylesheets(ctx context.Context, n *html.Node, loader *res.Loader, logger *slog.Logger) []string {
	var styles []string

	var walk func(*html.Node)
	walk = func(cur *html.Node) {
		if cur == nil {
			return
		}

		switch {
		case cur.IsElement("link"):
			rel, _ := cur.GetAttr("rel")
			href, _ := cur.GetAttr("href")
			if href == "" || !strings.Contains(strings.ToLower(rel), "stylesheet") || loader == nil {
				break
			}
			r, err := loader.LoadCSS(ctx, href)
			if err != nil {
				logger.Warn("stylesheet unavailable", "href", href, "error", err)
				break
			}
			logger.Debug("loaded stylesheet", "href", href, "bytes", len(r.Data))
			styles = append(styles, r.GetString())

		case cur.IsElement("style"):
			var b strings.Builder
			for c := cur.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == xhtml.TextNode {
					b.WriteString(c.Data)
					b.WriteString("\n")
				}
			}
			if cssText := strings.TrimSpace(b.String()); cssText != "" {
				styles = append(styles, cssText)
			}
		}

		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(n)
	return styles
}
