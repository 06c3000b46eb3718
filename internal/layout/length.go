package layout

import (
	"strconv"
	"strings"
)

const rootFontSize = 16.0

// parseLength parses a CSS length. Percentages resolve against container
// and em against fontSize; unparseable values and "auto" return def.
func parseLength(value string, fontSize, container, def float64) float64 {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" || v == "auto" || v == "none" || v == "normal" {
		return def
	}

	switch v {
	case "thin":
		return 1
	case "medium":
		return 3
	case "thick":
		return 5
	}

	units := []struct {
		suffix string
		factor float64
	}{
		{"rem", rootFontSize},
		{"px", 1},
		{"pt", 96.0 / 72.0},
		{"pc", 16},
		{"mm", 96.0 / 25.4},
		{"cm", 96.0 / 2.54},
		{"in", 96},
		{"em", fontSize},
		{"%", container / 100},
	}
	for _, u := range units {
		if num, ok := strings.CutSuffix(v, u.suffix); ok {
			f, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
			if err != nil {
				return def
			}
			return f * u.factor
		}
	}

	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

var fontSizeKeywords = map[string]float64{
	"xx-small": 9,
	"x-small":  10,
	"small":    13,
	"medium":   16,
	"large":    18,
	"x-large":  24,
	"xx-large": 32,
}

// parseFontSize resolves a font-size value against the parent's size
func parseFontSize(value string, parentSize float64) float64 {
	v := strings.ToLower(strings.TrimSpace(value))
	if px, ok := fontSizeKeywords[v]; ok {
		return px
	}
	switch v {
	case "smaller":
		return parentSize / 1.2
	case "larger":
		return parentSize * 1.2
	}
	size := parseLength(v, parentSize, parentSize, parentSize)
	if size <= 0 {
		return parentSize
	}
	return size
}

// parseLineHeight returns line-height as a multiple of the font size
func parseLineHeight(value string, fontSize, def float64) float64 {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" || v == "normal" {
		return def
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		if f <= 0 {
			return def
		}
		return f
	}
	px := parseLength(v, fontSize, fontSize, -1)
	if px <= 0 || fontSize <= 0 {
		return def
	}
	return px / fontSize
}
