package style

import (
	"strings"

	"github.com/gompdf/slicepdf/internal/parser/css"
	"github.com/gompdf/slicepdf/internal/parser/html"
)

// Specificity represents the specificity of a CSS selector
type Specificity struct {
	ID      int
	Class   int
	Element int
}

// StyleProperty represents a computed style property
type StyleProperty struct {
	Name        string
	Value       string
	Important   bool
	Source      Source
	Specificity Specificity
	order       int
}

// Source represents the source of a style property
type Source int

const (
	SourceUserAgent Source = iota
	SourceAuthor
	SourceInline
)

// ComputedStyle represents the computed style for an element
type ComputedStyle map[string]StyleProperty

// Get returns the trimmed value of a property, or "" when unset
func (s ComputedStyle) Get(name string) string {
	return strings.TrimSpace(s[name].Value)
}

// inherited lists the properties a child takes from its parent when it does not set them.
var inherited = []string{
	"color",
	"font-family",
	"font-size",
	"font-style",
	"font-weight",
	"line-height",
	"list-style-type",
	"text-align",
	"text-decoration",
	"white-space",
}

// Inherit returns child's style with the inheritable properties it lacks copied from parent.
func Inherit(parent, child ComputedStyle) ComputedStyle {
	out := make(ComputedStyle, len(child)+len(inherited))
	for _, name := range inherited {
		if p, ok := parent[name]; ok {
			out[name] = p
		}
	}
	for k, v := range child {
		if v.Value == "inherit" {
			if p, ok := parent[k]; ok {
				out[k] = p
			}
			continue
		}
		out[k] = v
	}
	return out
}

// StyleEngine handles the CSS cascade and style computation
type StyleEngine struct {
	userAgentStyles *css.Stylesheet
	authorStyles    []*css.Stylesheet
	parser          *css.Parser
}

// NewStyleEngine creates a new style engine
func NewStyleEngine() *StyleEngine {
	return &StyleEngine{
		userAgentStyles: defaultUserAgentStyles(),
		parser:          css.NewParser(),
	}
}

// SetUserAgentStylesheet replaces the built-in defaults
func (e *StyleEngine) SetUserAgentStylesheet(stylesheet *css.Stylesheet) {
	if stylesheet != nil {
		e.userAgentStyles = stylesheet
	}
}

// AddStylesheet adds an author stylesheet to the style engine
func (e *StyleEngine) AddStylesheet(stylesheet *css.Stylesheet) {
	e.authorStyles = append(e.authorStyles, stylesheet)
}

// ComputeStyles computes the cascaded (not yet inherited) style of every element
func (e *StyleEngine) ComputeStyles(doc *html.Document) map[*html.Node]ComputedStyle {
	result := make(map[*html.Node]ComputedStyle)
	for _, n := range doc.Root.Find(func(n *html.Node) bool { return n.IsElement() }) {
		result[n] = e.computeStyleForElement(n)
	}
	return result
}

// computeStyleForElement computes the style for a single element
func (e *StyleEngine) computeStyleForElement(node *html.Node) ComputedStyle {
	style := make(ComputedStyle)
	order := 0

	e.applyStylesheet(style, node, e.userAgentStyles, SourceUserAgent, &order)
	for _, sheet := range e.authorStyles {
		e.applyStylesheet(style, node, sheet, SourceAuthor, &order)
	}
	if inline, ok := node.GetAttr("style"); ok {
		e.applyDeclarations(style, e.parser.ParseDeclarations(inline), Specificity{ID: 1}, SourceInline, &order)
	}
	return style
}

// applyStylesheet applies styles from a stylesheet to an element
func (e *StyleEngine) applyStylesheet(style ComputedStyle, node *html.Node, sheet *css.Stylesheet, source Source, order *int) {
	if sheet == nil {
		return
	}
	for _, rule := range sheet.Rules {
		for _, selector := range rule.Selectors {
			if selectorMatches(node, selector) {
				e.applyDeclarations(style, rule.Declarations, calculateSpecificity(selector), source, order)
			}
		}
	}
}

// applyDeclarations applies declarations that win the cascade against what is already set
func (e *StyleEngine) applyDeclarations(style ComputedStyle, declarations []*css.Declaration, specificity Specificity, source Source, order *int) {
	for _, decl := range declarations {
		*order++
		candidate := StyleProperty{
			Name:        decl.Property,
			Value:       decl.Value,
			Important:   decl.Important,
			Source:      source,
			Specificity: specificity,
			order:       *order,
		}
		for _, expanded := range expandShorthand(candidate) {
			if existing, ok := style[expanded.Name]; !ok || wins(expanded, existing) {
				style[expanded.Name] = expanded
			}
		}
	}
}

// wins reports whether a beats b in the cascade: importance, then origin,
// then specificity, then source order.
func wins(a, b StyleProperty) bool {
	if a.Important != b.Important {
		return a.Important
	}
	if a.Source != b.Source {
		return a.Source > b.Source
	}
	if c := compareSpecificity(a.Specificity, b.Specificity); c != 0 {
		return c > 0
	}
	return a.order > b.order
}

// selectorMatches checks if an element matches a descendant-combinator selector
func selectorMatches(node *html.Node, selector string) bool {
	parts := strings.Fields(strings.ReplaceAll(selector, ">", " "))
	if len(parts) == 0 || node == nil {
		return false
	}
	if !matchCompoundSelector(node, parts[len(parts)-1]) {
		return false
	}

	current := node.Parent
	for i := len(parts) - 2; i >= 0; i-- {
		found := false
		for anc := current; anc != nil; anc = anc.Parent {
			if matchCompoundSelector(anc, parts[i]) {
				found = true
				current = anc.Parent
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// matchCompoundSelector matches tag, #id and .class combinations such as
// div#main.card.wide. Attribute selectors and pseudo-classes never match.
func matchCompoundSelector(node *html.Node, sel string) bool {
	if !node.IsElement() || sel == "" {
		return false
	}

	var wantTag, wantID string
	var wantClasses []string

	i := 0
	if sel[0] != '.' && sel[0] != '#' {
		j := strings.IndexAny(sel, "#.")
		if j < 0 {
			j = len(sel)
		}
		wantTag = sel[:j]
		i = j
	}
	for i < len(sel) {
		kind := sel[i]
		if kind != '#' && kind != '.' {
			return false
		}
		j := i + 1
		for j < len(sel) && sel[j] != '.' && sel[j] != '#' {
			j++
		}
		name := sel[i+1 : j]
		if kind == '#' {
			wantID = name
		} else {
			wantClasses = append(wantClasses, name)
		}
		i = j
	}

	if strings.ContainsAny(wantTag, ":[") || strings.ContainsAny(wantID, ":[") {
		return false
	}
	if wantTag != "" && wantTag != "*" && !strings.EqualFold(wantTag, node.Data) {
		return false
	}
	if wantID != "" {
		if id, _ := node.GetAttr("id"); id != wantID {
			return false
		}
	}
	for _, c := range wantClasses {
		if strings.ContainsAny(c, ":[") || !node.HasClass(c) {
			return false
		}
	}
	return true
}

// calculateSpecificity calculates the specificity of a CSS selector
func calculateSpecificity(selector string) Specificity {
	var s Specificity
	for _, part := range strings.Fields(strings.ReplaceAll(selector, ">", " ")) {
		s.ID += strings.Count(part, "#")
		s.Class += strings.Count(part, ".") + strings.Count(part, "[") + strings.Count(part, ":")
		if part[0] != '.' && part[0] != '#' && part[0] != '*' {
			s.Element++
		}
	}
	return s
}

// compareSpecificity compares two specificities
func compareSpecificity(a, b Specificity) int {
	if a.ID != b.ID {
		return a.ID - b.ID
	}
	if a.Class != b.Class {
		return a.Class - b.Class
	}
	return a.Element - b.Element
}

// defaultUserAgentStyles returns the default user agent stylesheet
func defaultUserAgentStyles() *css.Stylesheet {
	sheet, _ := css.NewParser().ParseString(DefaultUserAgentCSS)
	return sheet
}

// DefaultUserAgentCSS is the built-in stylesheet applied before author styles
const DefaultUserAgentCSS = `
html, body { margin: 0; padding: 0; font-size: 16px; line-height: 1.2; color: #000000; }
head, script, style, title, meta, link, template, noscript { display: none; }
h1 { font-size: 2em; margin: 0.67em 0; font-weight: bold; }
h2 { font-size: 1.5em; margin: 0.75em 0; font-weight: bold; }
h3 { font-size: 1.17em; margin: 0.83em 0; font-weight: bold; }
h4 { margin: 1.12em 0; font-weight: bold; }
h5 { font-size: 0.83em; margin: 1.5em 0; font-weight: bold; }
h6 { font-size: 0.75em; margin: 1.67em 0; font-weight: bold; }
p { margin: 1em 0; }
a { color: #0000EE; text-decoration: underline; }
u { text-decoration: underline; }
b, strong, th { font-weight: bold; }
i, em { font-style: italic; }
pre { white-space: pre; margin: 1em 0; }
ul, ol { margin: 1em 0; padding-left: 40px; }
ul { list-style-type: disc; }
ol { list-style-type: decimal; }
blockquote { margin: 1em 40px; }
hr { border-top: 1px solid #808080; margin: 0.5em 0; }
th, td { padding: 2px 4px; }
`
