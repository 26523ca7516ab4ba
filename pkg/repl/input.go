package repl

import (
	"sort"
	"strings"

	"github.com/thomasrohde/whispy/pkg/parser"
)

// NeedsMoreInput reports whether input has unclosed parentheses or an open
// string literal. Text after ; on a line is ignored.
func NeedsMoreInput(input string) bool {
	depth := 0
	inString := false
	inComment := false

	for i := 0; i < len(input); i++ {
		ch := input[i]
		switch {
		case inComment:
			if ch == '\n' {
				inComment = false
			}
		case inString:
			if ch == '\\' {
				i++
			} else if ch == '"' {
				inString = false
			}
		case ch == '"':
			inString = true
		case ch == ';':
			inComment = true
		case ch == '(':
			depth++
		case ch == ')':
			depth--
		}
	}
	return inString || depth > 0
}

// Completer returns liner completion candidates for line, completing the
// word under the cursor against names.
func Completer(names []string) func(line string) []string {
	words := append([]string{}, names...)
	for kw := range parser.Keywords {
		words = append(words, kw)
	}
	sort.Strings(words)

	return func(line string) []string {
		start := strings.LastIndexAny(line, " \t\n()'") + 1
		prefix, word := line[:start], line[start:]
		if word == "" {
			return nil
		}
		var out []string
		for _, w := range words {
			if strings.HasPrefix(w, word) {
				out = append(out, prefix+w)
			}
		}
		return out
	}
}
