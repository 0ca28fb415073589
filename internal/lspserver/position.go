package lspserver

import lsp "github.com/sourcegraph/go-lsp"

// offsetToPosition and positionToOffset translate between this repo's byte
// offsets and the wire protocol's UTF-16 line/character pairs. Ported from
// elves-elvish/pkg/lsp's walkString/lspPositionToIdx/lspPositionFromIdx: a
// single forward scan produces (offset, Position) pairs and a caller-
// supplied predicate decides where to stop, so both conversions share one
// walk instead of two separate ones written by hand.
func walkString(s string, f func(i int, p lsp.Position) bool) {
	var p lsp.Position
	lastCR := false

	for i, r := range s {
		if !f(i, p) {
			return
		}
		switch {
		case r == '\r':
			p.Line++
			p.Character = 0
		case r == '\n':
			if !lastCR {
				p.Line++
				p.Character = 0
			}
		case r <= 0xFFFF:
			p.Character++
		default:
			p.Character += 2
		}
		lastCR = r == '\r'
	}
	f(len(s), p)
}

func positionToOffset(s string, pos lsp.Position) int {
	var idx int
	walkString(s, func(i int, p lsp.Position) bool {
		idx = i
		return p.Line < pos.Line || (p.Line == pos.Line && p.Character < pos.Character)
	})
	return idx
}

func offsetToPosition(s string, offset int) lsp.Position {
	var pos lsp.Position
	walkString(s, func(i int, p lsp.Position) bool {
		pos = p
		return i < offset
	})
	return pos
}

func rangeFromOffsets(s string, from, to int) lsp.Range {
	return lsp.Range{Start: offsetToPosition(s, from), End: offsetToPosition(s, to)}
}
