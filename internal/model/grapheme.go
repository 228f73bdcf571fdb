package model

import (
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

// SnapToGrapheme moves a position that falls inside a grapheme cluster (a
// combining sequence, an emoji with modifiers) back to the cluster start.
func SnapToGrapheme(p Position) Position {
	t := p.TextNode()
	if t == nil {
		return p
	}
	start := t.StartOffset()
	inText := p.Offset() - start

	g := uniseg.NewGraphemes(t.data)
	pos := 0
	for g.Next() {
		n := utf8.RuneCountInString(g.Str())
		if pos+n > inText {
			if pos == inText {
				return p
			}
			return p.WithOffset(start + pos)
		}
		pos += n
	}
	return p
}
