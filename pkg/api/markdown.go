package api

import (
	"bytes"
	"fmt"
	"html"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// MarkdownToHTML renders Markdown to an HTML document. Every top-level
// heading of level 1 or 2 opens a new section wrapped in a div carrying
// sectionClass, so headings stay together with the text under them.
func MarkdownToHTML(src []byte, title, sectionClass string) (string, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	doc := md.Parser().Parse(text.NewReader(src))

	var body bytes.Buffer
	open := false
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if h, ok := n.(*ast.Heading); ok && h.Level <= 2 && sectionClass != "" {
			if open {
				body.WriteString("</div>\n")
			}
			fmt.Fprintf(&body, "<div class=\"%s\">\n", html.EscapeString(sectionClass))
			open = true
		}
		if err := md.Renderer().Render(&body, src, n); err != nil {
			return "", fmt.Errorf("failed to render markdown: %w", err)
		}
	}
	if open {
		body.WriteString("</div>\n")
	}

	var out bytes.Buffer
	out.WriteString("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\">")
	if title != "" {
		fmt.Fprintf(&out, "<title>%s</title>", html.EscapeString(title))
	}
	out.WriteString("</head><body>\n")
	out.Write(body.Bytes())
	out.WriteString("</body></html>\n")
	return out.String(), nil
}
