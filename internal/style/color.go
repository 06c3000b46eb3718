package style

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

var namedColors = map[string]color.RGBA{
	"black":   {0, 0, 0, 255},
	"white":   {255, 255, 255, 255},
	"red":     {255, 0, 0, 255},
	"green":   {0, 128, 0, 255},
	"blue":    {0, 0, 255, 255},
	"yellow":  {255, 255, 0, 255},
	"orange":  {255, 165, 0, 255},
	"purple":  {128, 0, 128, 255},
	"gray":    {128, 128, 128, 255},
	"grey":    {128, 128, 128, 255},
	"silver":  {192, 192, 192, 255},
	"navy":    {0, 0, 128, 255},
	"teal":    {0, 128, 128, 255},
	"maroon":  {128, 0, 0, 255},
	"olive":   {128, 128, 0, 255},
	"lime":    {0, 255, 0, 255},
	"aqua":    {0, 255, 255, 255},
	"fuchsia": {255, 0, 255, 255},
}

// ParseColor parses #rgb, #rrggbb, rgb(), rgba() and the basic named
// colors. Transparent and unknown values report false.
func ParseColor(value string) (color.RGBA, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" || v == "transparent" || v == "none" {
		return color.RGBA{}, false
	}
	if strings.HasPrefix(v, "#") {
		return parseHexColor(v)
	}
	if c, ok := namedColors[v]; ok {
		return c, true
	}

	var r, g, b int
	var a float64 = 1
	compact := strings.ReplaceAll(v, " ", "")
	if _, err := fmt.Sscanf(compact, "rgba(%d,%d,%d,%g)", &r, &g, &b, &a); err == nil {
		if a <= 0 {
			return color.RGBA{}, false
		}
		return blendOnWhite(r, g, b, a), true
	}
	if _, err := fmt.Sscanf(compact, "rgb(%d,%d,%d)", &r, &g, &b); err == nil {
		return color.RGBA{clamp8(r), clamp8(g), clamp8(b), 255}, true
	}
	return color.RGBA{}, false
}

// blendOnWhite flattens a translucent color onto the white page
func blendOnWhite(r, g, b int, a float64) color.RGBA {
	if a > 1 {
		a = 1
	}
	mix := func(c int) uint8 {
		return clamp8(int(float64(clamp8(c))*a + 255*(1-a) + 0.5))
	}
	return color.RGBA{mix(r), mix(g), mix(b), 255}
}

// parseHexColor parses #RRGGBB or #RGB
func parseHexColor(s string) (color.RGBA, bool) {
	s = strings.TrimPrefix(s, "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return color.RGBA{}, false
	}
	n, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, false
	}
	return color.RGBA{uint8(n >> 16), uint8(n >> 8), uint8(n), 255}, true
}

func clamp8(v int) uint8 {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	}
	return uint8(v)
}
