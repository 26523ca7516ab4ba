// Package help holds the text behind `whispy help` and the REPL's :help.
package help

import (
	"fmt"
	"sort"
	"strings"

	"github.com/thomasrohde/whispy/pkg/evaluator"
	"github.com/thomasrohde/whispy/pkg/stdlib"
)

// QUICKREF is the overview printed by `whispy help` with no topic.
const QUICKREF = `whispy v0.5 - a small Lisp

USAGE
  whispy <file.wl>               run a program
  whispy run <file.wl> [flags]   run with --pretty, --json, --trace FILE, --watch, --max-depth N
  whispy -r | whispy repl        interactive session
  whispy check <file.wl>         static form checks
  whispy fmt <file.wl> [--write] canonical formatting
  whispy trace <trace.jsonl>     summarize a trace
  whispy config                  print the resolved configuration
  whispy help [topic]            this text, or a topic

TOPICS
  syntax, types, forms, operators, builtins, scope, repl, diagnostics, examples

EXIT CODES
  0 ok, 1 usage or IO, 2 syntax or form, 3 unbound symbol, 4 evaluation or recursion
`

// Topics maps topic names to their text.
var Topics = map[string]string{
	"syntax": `SYNTAX
  A program is a sequence of expressions. Lists are written (head arg...).
  ; starts a comment that runs to the end of the line.

  Literals   42   3.5   #t   #f   "text with \"escapes\"\n"
  Symbols    letters, digits, _ and - ; never start with a digit
  Quote      'x is (quote x); '(1 2) is (quote (1 2))

  There are no negative literals: -1 reads as the operator - and 1.
  Write (- 1) for negative one.
`,
	"types": `TYPES
  int       64-bit integer
  float     64-bit float, always printed with a decimal point
  bool      #t or #f
  string    double-quoted text
  symbol    produced by quote
  list      produced by quote, list, cdr and cons
  function  produced by lambda and (def (name args...) body)
  builtin   sum, print, + ... (see: whispy help builtins)

  Definitions and unmatched conditions produce no value; nothing is printed.
`,
	"forms": `SPECIAL FORMS
  (def name expr)              bind name in the current scope (alias: define)
  (def (name p...) body)       define a function
  (lambda (p...) body)         anonymous function
  (cond (pred expr) ...)       first clause whose predicate is #t (alias: if)

  Predicates must be booleans. (cond) with no matching clause produces no value.
`,
	"operators": `OPERATORS
  Arithmetic   + - * ** / // %
  Comparison   = == != < <= > >=     (chained pairwise: (< 1 2 3))
  Bitwise      << >> & | ^ ~
  Logical      and or xor not eqv

  Operands must share a type; ints are promoted to floats when mixed.
  With one operand, + - * fold in their neutral element ((- 5) negates) and
  = == compare it with itself. Every other binary operator needs at least
  two operands. / on ints is exact when the division is even and a float
  otherwise. Division by zero and integer overflow are errors.
  and / or evaluate every operand; use cond for short-circuiting.
`,
	"scope": `SCOPE
  Lookup order: local bindings, then the scope the function was defined in
  and its own enclosing scopes, then the builtins. A caller's bindings are
  never visible to the callee. def writes to the current scope only and
  shadows outer bindings.

  (def (adder n) (lambda (x) (+ x n)))
  (def add2 (adder 2))
  (add2 40)   ; 42
`,
	"repl": `REPL
  whispy -r starts an interactive session. Input continues on the next line
  while parentheses or a string are open.

  :help [topic]   this text or a help topic
  :env            bindings of the session scope
  :clear          drop every binding
  exit            leave (also Ctrl-D)

  Ctrl-C discards the current input. (quit) ends the session.
`,
	"diagnostics": `DIAGNOSTICS
  E_SYNTAX      lexing or nesting error, with a caret under the offending spot
  E_FORM        malformed def, cond or lambda (reported before running)
  E_UNBOUND     symbol can't be found in scope
  E_EVAL        type mismatch, wrong arity, calling a non-function ...
  E_RECURSION   call depth exceeded max_depth (ends a REPL session)
  E_BUDGET      timeout_ms elapsed
  E_IO          file could not be read or written
  E_CONFIG      configuration file is invalid

  Use --json for machine-readable diagnostics and --pretty for terminals.
`,
	"examples": `EXAMPLES
  (def (fact n) (cond ((= n 1) 1) (#t (* n (fact (- n 1))))))
  (fact 10)                         ; 3628800

  ((lambda (y) (sum 1 y)) 2)        ; 3

  (def xs '(1 2 3))
  (car (cdr xs))                    ; 2

  (print "hello" (+ 1 2))           ; prints: hello 3
`,
}

// TopicList is the ordered list of topic names.
var TopicList = []string{"syntax", "types", "forms", "operators", "builtins", "scope", "repl", "diagnostics", "examples"}

func init() {
	Topics["builtins"] = StdlibIndex()
}

// MatchTopic resolves an exact topic name or a unique prefix.
func MatchTopic(query string) (string, string, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if content, ok := Topics[query]; ok {
		return query, content, nil
	}
	var matches []string
	for _, name := range TopicList {
		if query != "" && strings.HasPrefix(name, query) {
			matches = append(matches, name)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], Topics[matches[0]], nil
	case 0:
		return "", "", fmt.Errorf("unknown help topic %q", query)
	default:
		return "", "", fmt.Errorf("ambiguous help topic %q (matches %s)", query, strings.Join(matches, ", "))
	}
}

var builtinDocs = map[string]string{
	"sum":          "(sum x...) adds numbers; (sum) is 0",
	"sub":          "(sub x y...) subtracts the rest from the first",
	"print":        "(print x...) writes values separated by spaces",
	"simple_input": "(simple_input) reads a line and types it as int, float, bool or string",
	"quit":         "(quit [code]) says goodbye and ends the program",
	"quote":        "(quote x) returns x unevaluated; 'x is shorthand",
	"list":         "(list x...) builds a list",
	"car":          "(car xs) first element",
	"cdr":          "(cdr xs) every element but the first",
	"cons":         "(cons x xs) prepends x",
	"len":          "(len xs) length of a list or string",
}

// StdlibIndex lists the registered builtins with a one-line description each.
func StdlibIndex() string {
	reg := stdlib.NewRegistry()
	stdlib.RegisterDefaults(reg)
	names := reg.Names()
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("BUILTINS\n")
	for _, name := range names {
		doc, ok := builtinDocs[name]
		if !ok {
			doc = "(undocumented)"
		}
		fmt.Fprintf(&b, "  %-13s %s\n", name, doc)
	}
	ops := evaluator.OperatorNames()
	fmt.Fprintf(&b, "\n  operators: %s\n", strings.Join(ops, " "))
	fmt.Fprintf(&b, "\nTotal: %d functions, %d operators\n", len(names), len(ops))
	return b.String()
}
