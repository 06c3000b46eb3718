package layout

import (
	"fmt"
	"image/color"
	"log/slog"
	"strconv"
	"strings"
	"unicode"

	"github.com/gompdf/slicepdf/internal/parser/html"
	"github.com/gompdf/slicepdf/internal/style"
	"github.com/gompdf/slicepdf/internal/text"
	xhtml "golang.org/x/net/html"
)

// DefaultFontSize is the root font size in CSS px
const DefaultFontSize = 16.0

// defaultLineHeight is used for line-height: normal
const defaultLineHeight = 1.2

// Options configures the layout engine
type Options struct {
	// Width is the viewport width in CSS px
	Width float64
}

// Engine lays out a styled document into a tree of boxes flowing top to
// bottom inside a fixed-width viewport.
type Engine struct {
	options  Options
	styles   map[*html.Node]style.ComputedStyle
	measurer Measurer
	images   ImageResolver
	logger   *slog.Logger
}

// NewEngine creates a new layout engine measuring text with m
func NewEngine(m Measurer) *Engine {
	return &Engine{
		options:  Options{Width: 720},
		styles:   map[*html.Node]style.ComputedStyle{},
		measurer: m,
		logger:   slog.Default(),
	}
}

// SetOptions sets the layout options
func (e *Engine) SetOptions(options Options) {
	e.options = options
}

// SetStyles sets the computed styles produced by the style engine
func (e *Engine) SetStyles(styles map[*html.Node]style.ComputedStyle) {
	e.styles = styles
}

// SetImageResolver sets the function used to load <img> sources
func (e *Engine) SetImageResolver(fn ImageResolver) {
	e.images = fn
}

// SetLogger sets the logger
func (e *Engine) SetLogger(logger *slog.Logger) {
	if logger != nil {
		e.logger = logger
	}
}

// Layout lays out the document body and returns its box. The body box is
// positioned with its margin at the origin.
func (e *Engine) Layout(doc *html.Document) *BlockBox {
	body := doc.Body()
	if body == nil {
		return &BlockBox{Font: e.rootFont()}
	}

	rootStyle := style.ComputedStyle{}
	var htmlNode *html.Node
	if p := body.Parent; p != nil && p.IsElement("html") {
		htmlNode = p
		rootStyle = style.Inherit(rootStyle, e.styles[p])
	}
	rootFont := e.resolveFont(htmlNode, rootStyle, e.rootFont())

	return e.layoutBlock(body, rootStyle, rootFont, 0, 0, e.options.Width)
}

// ContentHeight returns the height of the laid-out document in CSS px
func ContentHeight(root *BlockBox) float64 {
	if root == nil {
		return 0
	}
	return root.OuterBottom()
}

func (e *Engine) rootFont() text.Font {
	return text.Font{Size: DefaultFontSize, LineHeight: defaultLineHeight, Color: color.RGBA{A: 0xff}}
}

// resolveFont computes the font of node. Font sizes are resolved against the
// parent's computed size, so em values do not compound through inheritance.
func (e *Engine) resolveFont(node *html.Node, st style.ComputedStyle, parent text.Font) text.Font {
	f := parent
	if own, ok := e.styles[node]["font-size"]; ok && node != nil {
		f.Size = parseFontSize(own.Value, parent.Size)
	}
	f.LineHeight = parseLineHeight(st.Get("line-height"), f.Size, defaultLineHeight)

	switch w := strings.ToLower(st.Get("font-weight")); w {
	case "bold", "bolder":
		f.Bold = true
	case "", "normal", "lighter":
		f.Bold = false
	default:
		n, err := strconv.Atoi(w)
		f.Bold = err == nil && n >= 600
	}

	fs := strings.ToLower(st.Get("font-style"))
	f.Italic = fs == "italic" || fs == "oblique"
	f.Underline = strings.Contains(strings.ToLower(st.Get("text-decoration")), "underline")

	if c, ok := style.ParseColor(st.Get("color")); ok {
		f.Color = c
	}
	return f
}

func (e *Engine) display(n *html.Node) string {
	return strings.ToLower(e.styles[n].Get("display"))
}

func (e *Engine) hidden(n *html.Node) bool {
	return n.IsElement() && e.display(n) == "none"
}

var blockTags = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"body": true, "caption": true, "dd": true, "div": true, "dl": true,
	"dt": true, "fieldset": true, "figcaption": true, "figure": true,
	"footer": true, "form": true, "h1": true, "h2": true, "h3": true,
	"h4": true, "h5": true, "h6": true, "header": true, "hr": true,
	"html": true, "li": true, "main": true, "nav": true, "ol": true,
	"p": true, "pre": true, "section": true, "table": true, "tbody": true,
	"td": true, "tfoot": true, "th": true, "thead": true, "tr": true, "ul": true,
}

func (e *Engine) isBlock(n *html.Node) bool {
	if !n.IsElement() {
		return false
	}
	switch e.display(n) {
	case "block", "list-item", "table", "table-row", "table-cell",
		"table-row-group", "table-header-group", "table-footer-group", "flex", "grid":
		return true
	case "inline", "inline-block":
		return false
	}
	return blockTags[strings.ToLower(n.Data)]
}

func (e *Engine) layoutBlock(n *html.Node, parentStyle style.ComputedStyle, parentFont text.Font, x, y, avail float64) *BlockBox {
	st := style.Inherit(parentStyle, e.styles[n])
	b := NewBlockBox(n, st)
	b.Font = e.resolveFont(n, st, parentFont)
	b.parseBoxModel(avail)

	frame := b.Margin.Horizontal() + b.Border.Horizontal() + b.Padding.Horizontal()
	contentW := avail - frame
	borderBox := strings.EqualFold(st.Get("box-sizing"), "border-box")
	// cells take the width their row assigned
	cell := n.IsElement("td", "th")
	if w := parseLength(st.Get("width"), b.Font.Size, avail, -1); w >= 0 && !cell {
		if borderBox {
			w -= b.Border.Horizontal() + b.Padding.Horizontal()
		}
		contentW = w
		// auto side margins centre a sized block
		if st.Get("margin-left") == "auto" && st.Get("margin-right") == "auto" {
			free := avail - contentW - b.Border.Horizontal() - b.Padding.Horizontal()
			if free > 0 {
				b.Margin.Left, b.Margin.Right = free/2, free/2
			}
		}
	}
	if mw := parseLength(st.Get("max-width"), b.Font.Size, avail, -1); mw >= 0 && contentW > mw {
		contentW = mw
	}
	if contentW < 0 {
		contentW = 0
	}

	b.X = x + b.Margin.Left
	b.Y = y + b.Margin.Top

	h := e.layoutContent(b, contentW)
	if eh := parseLength(st.Get("height"), b.Font.Size, 0, -1); eh >= 0 {
		if borderBox {
			eh -= b.Border.Vertical() + b.Padding.Vertical()
		}
		h = max(eh, 0)
	}
	if mh := parseLength(st.Get("min-height"), b.Font.Size, 0, -1); mh > h {
		h = mh
	}

	b.Width = contentW + b.Padding.Horizontal() + b.Border.Horizontal()
	b.Height = h + b.Padding.Vertical() + b.Border.Vertical()
	return b
}

// layoutContent lays out the children of b and returns the content height
func (e *Engine) layoutContent(b *BlockBox, width float64) float64 {
	if b.Node.IsElement("tr") || e.display(b.Node) == "table-row" {
		return e.layoutRow(b, width)
	}
	if b.Node.IsElement("hr") {
		return 0
	}

	cx, cy := b.ContentX(), b.ContentY()
	cursor := cy
	var pending []*html.Node
	items := 0

	flush := func() {
		if len(pending) == 0 {
			return
		}
		cursor += e.layoutInline(b, pending, cx, cursor, width)
		pending = pending[:0]
	}

	for c := b.Node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xhtml.CommentNode || e.hidden(c) {
			continue
		}
		if !e.isBlock(c) {
			pending = append(pending, c)
			continue
		}
		flush()
		child := e.layoutBlock(c, b.Style, b.Font, cx, cursor, width)
		if c.IsElement("li") || e.display(c) == "list-item" {
			items++
			child.Marker = listMarker(b.Node, child.Style, items)
		}
		b.AddChild(child)
		cursor = child.OuterBottom()
	}
	flush()

	return cursor - cy
}

// layoutRow places the cells of a table row side by side and stretches
// them to the tallest cell.
func (e *Engine) layoutRow(row *BlockBox, width float64) float64 {
	var cells []*html.Node
	for c := row.Node.FirstChild; c != nil; c = c.NextSibling {
		if c.IsElement("td", "th") && !e.hidden(c) {
			cells = append(cells, c)
		}
	}
	if len(cells) == 0 {
		return 0
	}

	widths := e.columnWidths(cells, row.Style, row.Font.Size, width)
	x, y := row.ContentX(), row.ContentY()
	rowH := 0.0
	boxes := make([]*BlockBox, 0, len(cells))
	for i, c := range cells {
		cell := e.layoutBlock(c, row.Style, row.Font, x, y, widths[i])
		boxes = append(boxes, cell)
		rowH = max(rowH, cell.OuterBottom()-y)
		x += widths[i]
	}
	for _, cell := range boxes {
		cell.Height = rowH - cell.Margin.Vertical()
		row.AddChild(cell)
	}
	return rowH
}

// columnWidths splits width between cells. Declared widths are honoured
// first, and the remainder is shared equally by the other columns in
// proportion to their colspan.
func (e *Engine) columnWidths(cells []*html.Node, rowStyle style.ComputedStyle, fontSize, width float64) []float64 {
	widths := make([]float64, len(cells))
	spans := make([]int, len(cells))
	fixed, freeSpans := 0.0, 0

	for i, c := range cells {
		spans[i] = 1
		if v, ok := c.GetAttr("colspan"); ok {
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 1 {
				spans[i] = n
			}
		}
		w := parseLength(e.styles[c].Get("width"), fontSize, width, -1)
		if w < 0 {
			if v, ok := c.GetAttr("width"); ok {
				w = parseLength(v, fontSize, width, -1)
			}
		}
		if w > 0 && fixed+w <= width {
			widths[i] = w
			fixed += w
			continue
		}
		widths[i] = -1
		freeSpans += spans[i]
	}

	if freeSpans == 0 {
		return widths
	}
	unit := (width - fixed) / float64(freeSpans)
	for i := range widths {
		if widths[i] < 0 {
			widths[i] = unit * float64(spans[i])
		}
	}
	return widths
}

func listMarker(list *html.Node, itemStyle style.ComputedStyle, n int) string {
	kind := strings.ToLower(itemStyle.Get("list-style-type"))
	if kind == "" {
		if list.IsElement("ol") {
			kind = "decimal"
		} else {
			kind = "disc"
		}
	}
	switch kind {
	case "none":
		return ""
	case "disc", "circle", "square":
		return kind
	case "lower-alpha", "lower-latin":
		return alpha(n, 'a') + "."
	case "upper-alpha", "upper-latin":
		return alpha(n, 'A') + "."
	default:
		return fmt.Sprintf("%d.", n)
	}
}

func alpha(n int, base rune) string {
	var out []rune
	for n > 0 {
		n--
		out = append([]rune{base + rune(n%26)}, out...)
		n /= 26
	}
	return string(out)
}

// inlineItem is a word, an image or a forced break collected from inline content
type inlineItem struct {
	node        *html.Node
	style       style.ComputedStyle
	font        text.Font
	text        string
	spaceBefore bool
	image       *ImageBox
	lineBreak   bool
}

// collectInline flattens inline content into words, images and breaks
func (e *Engine) collectInline(n *html.Node, st style.ComputedStyle, f text.Font, owner *html.Node, out *[]inlineItem, trailingSpace *bool) {
	switch n.Type {
	case xhtml.TextNode:
		ws := strings.ToLower(st.Get("white-space"))
		if ws == "pre" || ws == "pre-wrap" || ws == "pre-line" {
			lines := strings.Split(strings.ReplaceAll(n.Data, "\t", "    "), "\n")
			for i, line := range lines {
				if i > 0 {
					*out = append(*out, inlineItem{lineBreak: true, font: f})
				}
				if ws == "pre-line" {
					line = strings.Join(strings.Fields(line), " ")
				}
				if line != "" {
					*out = append(*out, inlineItem{node: owner, style: st, font: f, text: line, spaceBefore: *trailingSpace})
					*trailingSpace = false
				}
			}
			return
		}

		words := strings.Fields(n.Data)
		leading := n.Data != "" && unicode.IsSpace([]rune(n.Data)[0])
		for i, w := range words {
			*out = append(*out, inlineItem{
				node:        owner,
				style:       st,
				font:        f,
				text:        w,
				spaceBefore: i > 0 || leading || *trailingSpace,
			})
			*trailingSpace = false
		}
		if n.Data != "" {
			r := []rune(n.Data)
			if unicode.IsSpace(r[len(r)-1]) {
				*trailingSpace = true
			}
		}

	case xhtml.ElementNode:
		if e.hidden(n) {
			return
		}
		cst := style.Inherit(st, e.styles[n])
		cf := e.resolveFont(n, cst, f)
		switch {
		case n.IsElement("br"):
			*out = append(*out, inlineItem{lineBreak: true, font: cf})
			*trailingSpace = false
			return
		case n.IsElement("img"):
			*out = append(*out, inlineItem{
				node:        n,
				style:       cst,
				font:        cf,
				image:       e.loadImage(n, cst),
				spaceBefore: *trailingSpace,
			})
			*trailingSpace = false
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			e.collectInline(c, cst, cf, n, out, trailingSpace)
		}
	}
}

func (e *Engine) loadImage(n *html.Node, st style.ComputedStyle) *ImageBox {
	src, _ := n.GetAttr("src")
	box := &ImageBox{Node: n, Style: st, Src: src}
	if src == "" || e.images == nil {
		return box
	}
	img, err := e.images(src)
	if err != nil {
		e.logger.Warn("image unavailable", "src", truncate(src, 80), "error", err)
		return box
	}
	box.Image = img
	return box
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

type placed struct {
	item inlineItem
	x    float64
	w    float64
}

// layoutInline breaks inline content into lines starting at (x, y) and
// returns the height used.
func (e *Engine) layoutInline(b *BlockBox, nodes []*html.Node, x, y, width float64) float64 {
	var items []inlineItem
	trailing := false
	for _, n := range nodes {
		e.collectInline(n, b.Style, b.Font, b.Node, &items, &trailing)
	}
	if len(items) == 0 {
		return 0
	}

	align := strings.ToLower(b.Style.Get("text-align"))
	top := y
	var line []placed
	lineW := 0.0

	finish := func(forced bool) {
		if len(line) == 0 {
			if forced {
				top += b.Font.Size * b.Font.LineHeight
			}
			return
		}
		lineH := 0.0
		for _, p := range line {
			if p.item.image != nil {
				lineH = max(lineH, p.item.image.Height)
			} else {
				lineH = max(lineH, p.item.font.Size*p.item.font.LineHeight)
			}
		}

		shift := 0.0
		switch align {
		case "center":
			shift = (width - lineW) / 2
		case "right", "end":
			shift = width - lineW
		}
		shift = max(shift, 0)

		for _, p := range line {
			if img := p.item.image; img != nil {
				img.X = x + shift + p.x
				img.Y = top + lineH - img.Height
				b.AddChild(img)
				continue
			}
			f := p.item.font
			b.AddChild(&InlineBox{
				Node:   p.item.node,
				Style:  p.item.style,
				Font:   f,
				Text:   p.item.text,
				X:      x + shift + p.x,
				Y:      top + (lineH-f.Size)/2,
				Width:  p.w,
				Height: f.Size,
			})
		}
		top += lineH
		line = line[:0]
		lineW = 0
	}

	for _, it := range items {
		if it.lineBreak {
			finish(true)
			continue
		}

		var w float64
		if it.image != nil {
			it.image.size(it.font.Size, width)
			w = it.image.Width
		} else {
			w = e.measurer.Measure(it.text, it.font.Size)
		}

		sp := 0.0
		if it.spaceBefore && len(line) > 0 {
			sp = e.measurer.SpaceWidth(it.font.Size)
		}
		if len(line) > 0 && lineW+sp+w > width {
			finish(false)
			sp = 0
		}
		line = append(line, placed{item: it, x: lineW + sp, w: w})
		lineW += sp + w
	}
	finish(false)

	return top - y
}
