// Package lexer implements the whispy tokenizer.
package lexer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/thomasrohde/whispy/pkg/ast"
	"github.com/thomasrohde/whispy/pkg/diagnostics"
)

// TokenType identifies the type of a lexer token.
type TokenType int

const (
	// Literals
	TokInt TokenType = iota
	TokFloat
	TokBool
	TokString

	// Identifiers
	TokSymbol

	// Punctuation
	TokQuote // '
	TokOpen  // (
	TokClose // )

	// Operators, including the word operators and/or/xor/not/eqv
	TokOperator

	// Special
	TokEOF
)

var tokenNames = [...]string{
	TokInt:      "int",
	TokFloat:    "float",
	TokBool:     "bool",
	TokString:   "string",
	TokSymbol:   "symbol",
	TokQuote:    "quote",
	TokOpen:     "open",
	TokClose:    "close",
	TokOperator: "operator",
	TokEOF:      "eof",
}

func (t TokenType) String() string {
	if int(t) < len(tokenNames) {
		return tokenNames[t]
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// Token represents a single lexer token.
type Token struct {
	Type TokenType
	// Text is the exact scanned substring.
	Text string
	// Value is the typed payload: int64, float64, bool or string (decoded
	// string literal, symbol name or operator text). Nil for ( ) ' and EOF.
	Value  any
	Offset int
	Span   ast.Span
}

// Operators lists every operator the lexer recognizes, symbolic ones
// longest first.
var Operators = []string{
	"**", "//", ">=", "<=", "==", "!=", "<<", ">>",
	"+", "-", "*", "%", "/", ">", "<", "=", "&", "|", "^", "~",
	"and", "or", "xor", "not", "eqv",
}

var wordOperators = map[string]bool{
	"and": true, "or": true, "xor": true, "not": true, "eqv": true,
}

// IsOperator reports whether text is a recognized operator.
func IsOperator(text string) bool {
	for _, op := range Operators {
		if op == text {
			return true
		}
	}
	return false
}

type pattern struct {
	typ TokenType
	re  *regexp.Regexp
}

// patterns are tried in order; the first match wins.
var patterns = []pattern{
	{TokBool, regexp.MustCompile(`^#[tf]`)},
	{TokFloat, regexp.MustCompile(`^[0-9]+\.[0-9]+`)},
	{TokInt, regexp.MustCompile(`^[0-9]+`)},
	{TokString, regexp.MustCompile(`(?s)^"(?:[^"\\]|\\.)*"`)},
	{TokSymbol, regexp.MustCompile(`^[a-zA-Z_][a-zA-Z_0-9]*`)},
	{TokQuote, regexp.MustCompile(`^'`)},
	{TokOperator, regexp.MustCompile(`^(?:\*\*|//|>=|<=|==|!=|<<|>>|[-+*%/><=&|^~])`)},
	{TokOpen, regexp.MustCompile(`^\(`)},
	{TokClose, regexp.MustCompile(`^\)`)},
}

type scanner struct {
	source   string
	filename string
	pos      int
	line     int
	col      int
}

func newScanner(source, filename string) *scanner {
	return &scanner{
		source:   source,
		filename: filename,
		pos:      0,
		line:     1,
		col:      1,
	}
}

func (s *scanner) atEnd() bool {
	return s.pos >= len(s.source)
}

func (s *scanner) peek() byte {
	if s.atEnd() {
		return 0
	}
	return s.source[s.pos]
}

// advance consumes n bytes, keeping line and column (in runes) current.
func (s *scanner) advance(n int) {
	end := s.pos + n
	for s.pos < end {
		r, size := utf8.DecodeRuneInString(s.source[s.pos:])
		s.pos += size
		if r == '\n' {
			s.line++
			s.col = 1
		} else {
			s.col++
		}
	}
}

func (s *scanner) span(offset, startLine, startCol int) ast.Span {
	return ast.Span{
		File:      s.filename,
		Offset:    offset,
		StartLine: startLine,
		StartCol:  startCol,
		EndLine:   s.line,
		EndCol:    s.col,
	}
}

func (s *scanner) skipWhitespaceAndComments() {
	for !s.atEnd() {
		ch := s.peek()
		if ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' {
			s.advance(1)
		} else if ch == ';' {
			for !s.atEnd() && s.peek() != '\n' {
				s.advance(1)
			}
		} else {
			break
		}
	}
}

func (s *scanner) syntaxError(offset int, format string, args ...any) error {
	return diagnostics.NewSyntaxError(s.source, s.filename, offset, fmt.Sprintf(format, args...))
}

func (s *scanner) nextToken() (Token, error) {
	rest := s.source[s.pos:]
	for _, p := range patterns {
		loc := p.re.FindStringIndex(rest)
		if loc == nil {
			continue
		}
		text := rest[:loc[1]]
		if p.typ == TokInt && loc[1] < len(rest) && rest[loc[1]] == '.' {
			return Token{}, s.syntaxError(s.pos, "malformed number literal %q", text+".")
		}
		value, typ, err := decode(p.typ, text)
		if err != nil {
			return Token{}, s.syntaxError(s.pos, "%v", err)
		}
		offset, line, col := s.pos, s.line, s.col
		s.advance(len(text))
		return Token{Type: typ, Text: text, Value: value, Offset: offset, Span: s.span(offset, line, col)}, nil
	}

	if s.peek() == '"' {
		return Token{}, s.syntaxError(s.pos, "unterminated string literal")
	}
	r, _ := utf8.DecodeRuneInString(rest)
	return Token{}, s.syntaxError(s.pos, "unrecognized character %q", r)
}

// decode converts matched text into the token's typed value.
func decode(typ TokenType, text string) (any, TokenType, error) {
	switch typ {
	case TokBool:
		return text == "#t", typ, nil
	case TokFloat:
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, typ, fmt.Errorf("invalid float literal %q", text)
		}
		return f, typ, nil
	case TokInt:
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, typ, fmt.Errorf("integer literal %s out of range", text)
		}
		return n, typ, nil
	case TokString:
		return Unescape(text[1 : len(text)-1]), typ, nil
	case TokSymbol:
		if wordOperators[text] {
			return text, TokOperator, nil
		}
		return text, typ, nil
	case TokOperator:
		return text, typ, nil
	default:
		return nil, typ, nil
	}
}

// Unescape decodes \" \\ \n and \t. Other backslash pairs are kept as written.
func Unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch != '\\' || i+1 >= len(s) {
			sb.WriteByte(ch)
			continue
		}
		i++
		switch s[i] {
		case '"':
			sb.WriteByte('"')
		case '\\':
			sb.WriteByte('\\')
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		default:
			sb.WriteByte('\\')
			sb.WriteByte(s[i])
		}
	}
	return sb.String()
}

// Escape is the inverse of Unescape for printing string literals.
func Escape(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// Tokenize converts source text into a sequence of tokens ending with TokEOF.
func Tokenize(source, filename string) ([]Token, error) {
	s := newScanner(source, filename)
	var tokens []Token

	for {
		s.skipWhitespaceAndComments()
		if s.atEnd() {
			tokens = append(tokens, Token{
				Type:   TokEOF,
				Offset: s.pos,
				Span:   s.span(s.pos, s.line, s.col),
			})
			return tokens, nil
		}
		tok, err := s.nextToken()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
	}
}
