package layout

import (
	"math"

	"github.com/gompdf/slicepdf/internal/sections"
)

// Sections returns the border boxes of every block carrying class, in
// document order, converted to device pixels with the given scale.
// Nested sections are reported individually.
func Sections(root *BlockBox, class string, scale float64) []sections.Region {
	if root == nil || class == "" {
		return nil
	}
	if scale <= 0 {
		scale = 1
	}

	var out []sections.Region
	root.Walk(func(b *BlockBox) {
		if !b.Node.HasClass(class) {
			return
		}
		top := int(math.Floor(b.Y * scale))
		bottom := int(math.Ceil((b.Y + b.Height) * scale))
		label := b.Node.Data
		if id, ok := b.Node.GetAttr("id"); ok && id != "" {
			label += "#" + id
		}
		out = append(out, sections.Region{TopPx: top, HeightPx: bottom - top, Label: label})
	})
	return out
}
