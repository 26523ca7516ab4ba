package diagnostics

import (
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

// Locate converts a byte offset into a 1-based line and column. Columns
// count runes. Offsets past the end point just after the last character.
func Locate(source string, offset int) (line, col int) {
	if offset > len(source) {
		offset = len(source)
	}
	if offset < 0 {
		offset = 0
	}
	line = 1 + strings.Count(source[:offset], "\n")
	lineStart := strings.LastIndexByte(source[:offset], '\n') + 1
	col = 1 + utf8.RuneCountInString(source[lineStart:offset])
	return line, col
}

// Caret returns the source line containing offset followed by a line with a
// ^ under the offset. Wide runes before the offset are measured by display
// width and tabs are kept so the caret lines up in a terminal.
func Caret(source string, offset int) string {
	if source == "" {
		return ""
	}
	if offset > len(source) {
		offset = len(source)
	}
	if offset < 0 {
		offset = 0
	}
	lineStart := strings.LastIndexByte(source[:offset], '\n') + 1
	lineEnd := strings.IndexByte(source[offset:], '\n')
	if lineEnd < 0 {
		lineEnd = len(source)
	} else {
		lineEnd += offset
	}
	text := strings.TrimRight(source[lineStart:lineEnd], "\r")
	prefix := source[lineStart:offset]

	var pad strings.Builder
	for _, r := range prefix {
		if r == '\t' {
			pad.WriteByte('\t')
			continue
		}
		pad.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
	}
	return "    " + text + "\n    " + pad.String() + "^"
}
