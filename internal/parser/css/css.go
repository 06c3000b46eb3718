package css

import (
	"errors"
	"io"
	"strings"
)

// Parser represents a CSS parser
type Parser struct{}

// Rule represents a CSS rule
type Rule struct {
	Selectors    []string
	Declarations []*Declaration
}

// Declaration represents a CSS declaration (property-value pair)
type Declaration struct {
	Property  string
	Value     string
	Important bool
}

// Stylesheet represents a parsed CSS stylesheet
type Stylesheet struct {
	Rules []*Rule
}

// NewParser creates a new CSS parser
func NewParser() *Parser {
	return &Parser{}
}

// ParseString parses CSS from a string
func (p *Parser) ParseString(content string) (*Stylesheet, error) {
	return p.Parse(strings.NewReader(content))
}

// Parse parses CSS from an io.Reader. Invalid rules and at-rules
// (@media, @page, @font-face ...) are skipped.
func (p *Parser) Parse(r io.Reader) (*Stylesheet, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	sheet := &Stylesheet{}
	for _, ruleStr := range splitRules(removeComments(string(content))) {
		rule, err := parseRule(ruleStr)
		if err != nil {
			continue
		}
		sheet.Rules = append(sheet.Rules, rule)
	}
	return sheet, nil
}

// ParseDeclarations parses the body of a style attribute
func (p *Parser) ParseDeclarations(body string) []*Declaration {
	return parseDeclarations(removeComments(body))
}

// parseRule parses a single CSS rule
func parseRule(ruleStr string) (*Rule, error) {
	selectorStr, body, ok := strings.Cut(ruleStr, "{")
	if !ok {
		return nil, errors.New("invalid rule format")
	}
	selectorStr = strings.TrimSpace(selectorStr)
	if strings.HasPrefix(selectorStr, "@") {
		return nil, errors.New("at-rule not supported")
	}

	selectors := parseSelectors(selectorStr)
	if len(selectors) == 0 {
		return nil, errors.New("no selectors found")
	}

	body = strings.TrimSuffix(strings.TrimSpace(body), "}")
	return &Rule{
		Selectors:    selectors,
		Declarations: parseDeclarations(body),
	}, nil
}

// parseSelectors parses CSS selectors
func parseSelectors(selectorStr string) []string {
	parts := strings.Split(selectorStr, ",")
	result := make([]string, 0, len(parts))
	for _, s := range parts {
		if s = strings.Join(strings.Fields(s), " "); s != "" {
			result = append(result, s)
		}
	}
	return result
}

// parseDeclarations parses CSS declarations
func parseDeclarations(declarationsStr string) []*Declaration {
	parts := strings.Split(declarationsStr, ";")
	result := make([]*Declaration, 0, len(parts))

	for _, declStr := range parts {
		property, value, ok := strings.Cut(declStr, ":")
		if !ok {
			continue
		}
		property = strings.ToLower(strings.TrimSpace(property))
		value = strings.TrimSpace(value)
		if property == "" || value == "" {
			continue
		}

		important := false
		if i := strings.LastIndex(strings.ToLower(value), "!important"); i >= 0 {
			important = true
			value = strings.TrimSpace(value[:i])
		}

		result = append(result, &Declaration{
			Property:  property,
			Value:     value,
			Important: important,
		})
	}
	return result
}

// removeComments removes CSS comments
func removeComments(content string) string {
	var b strings.Builder
	for {
		start := strings.Index(content, "/*")
		if start < 0 {
			b.WriteString(content)
			return b.String()
		}
		b.WriteString(content[:start])
		end := strings.Index(content[start+2:], "*/")
		if end < 0 {
			return b.String()
		}
		content = content[start+2+end+2:]
	}
}

// splitRules splits CSS content into top-level rules; a nested block such as
// @media stays inside its enclosing rule.
func splitRules(content string) []string {
	var rules []string
	var cur strings.Builder
	depth := 0

	for i := 0; i < len(content); i++ {
		ch := content[i]
		switch ch {
		case '{':
			depth++
		case '}':
			depth--
			if depth <= 0 {
				depth = 0
				cur.WriteByte(ch)
				rules = append(rules, strings.TrimSpace(cur.String()))
				cur.Reset()
				continue
			}
		case ';':
			// A statement at-rule such as @import or @charset ends here.
			if depth == 0 {
				cur.Reset()
				continue
			}
		}
		cur.WriteByte(ch)
	}
	return rules
}
