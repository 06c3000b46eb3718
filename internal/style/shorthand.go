package style

import (
	"strings"
	"unicode"
)

var sides = [4]string{"top", "right", "bottom", "left"}

var borderStyles = map[string]bool{
	"none": true, "hidden": true, "solid": true, "dashed": true, "dotted": true,
	"double": true, "groove": true, "ridge": true, "inset": true, "outset": true,
}

// expandShorthand turns margin, padding, border and background shorthands
// into their longhand properties; other properties pass through unchanged.
func expandShorthand(p StyleProperty) []StyleProperty {
	with := func(name, value string) StyleProperty {
		q := p
		q.Name, q.Value = name, value
		return q
	}

	switch p.Name {
	case "margin", "padding":
		vals := boxValues(p.Value)
		out := make([]StyleProperty, 0, 4)
		for i, side := range sides {
			out = append(out, with(p.Name+"-"+side, vals[i]))
		}
		return out

	case "border-width", "border-color":
		prop := strings.TrimPrefix(p.Name, "border-")
		vals := boxValues(p.Value)
		out := make([]StyleProperty, 0, 4)
		for i, side := range sides {
			out = append(out, with("border-"+side+"-"+prop, vals[i]))
		}
		return out

	case "border", "border-top", "border-right", "border-bottom", "border-left":
		width, color := splitBorder(p.Value)
		targets := sides[:]
		if side := strings.TrimPrefix(p.Name, "border-"); side != p.Name {
			targets = []string{side}
		}
		out := make([]StyleProperty, 0, 2*len(targets))
		for _, side := range targets {
			out = append(out, with("border-"+side+"-width", width))
			if color != "" {
				out = append(out, with("border-"+side+"-color", color))
			}
		}
		return out

	case "background":
		for _, tok := range splitTokens(p.Value) {
			if looksLikeColor(tok) {
				return []StyleProperty{with("background-color", tok)}
			}
		}
		return nil
	}
	return []StyleProperty{p}
}

// boxValues applies the 1-4 value top/right/bottom/left rule
func boxValues(value string) [4]string {
	parts := strings.Fields(value)
	switch len(parts) {
	case 0:
		return [4]string{"0", "0", "0", "0"}
	case 1:
		return [4]string{parts[0], parts[0], parts[0], parts[0]}
	case 2:
		return [4]string{parts[0], parts[1], parts[0], parts[1]}
	case 3:
		return [4]string{parts[0], parts[1], parts[2], parts[1]}
	default:
		return [4]string{parts[0], parts[1], parts[2], parts[3]}
	}
}

// splitBorder pulls the width and color out of a border shorthand such as "1px solid #ccc"
func splitBorder(value string) (width, color string) {
	width = "medium"
	hasStyle := false
	for _, tok := range splitTokens(value) {
		lower := strings.ToLower(tok)
		switch {
		case lower == "none" || lower == "hidden":
			return "0", ""
		case borderStyles[lower]:
			hasStyle = true
		case lower == "thin" || lower == "medium" || lower == "thick" || startsWithDigit(lower):
			width = lower
		default:
			color = tok
		}
	}
	if !hasStyle {
		return "0", color
	}
	return width, color
}

// splitTokens splits on whitespace that is not inside parentheses, so rgb(1, 2, 3) stays whole
func splitTokens(value string) []string {
	var out []string
	var cur strings.Builder
	depth := 0
	for _, r := range value {
		switch {
		case r == '(':
			depth++
		case r == ')':
			depth--
		case unicode.IsSpace(r) && depth == 0:
			if cur.Len() > 0 {
				out = append(out, cur.String())
				cur.Reset()
			}
			continue
		}
		cur.WriteRune(r)
	}
	if cur.Len() > 0 {
		out = append(out, cur.String())
	}
	return out
}

func startsWithDigit(s string) bool {
	return s != "" && (s[0] >= '0' && s[0] <= '9' || s[0] == '.')
}

func looksLikeColor(tok string) bool {
	lower := strings.ToLower(tok)
	if strings.HasPrefix(lower, "#") || strings.HasPrefix(lower, "rgb") {
		return true
	}
	if strings.HasPrefix(lower, "url(") || startsWithDigit(lower) {
		return false
	}
	switch lower {
	case "none", "repeat", "no-repeat", "repeat-x", "repeat-y", "center", "top", "bottom", "left", "right", "fixed", "scroll":
		return false
	}
	return true
}
