package repl_test

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"

	"github.com/peterh/liner"

	"github.com/thomasrohde/whispy/pkg/config"
	"github.com/thomasrohde/whispy/pkg/evaluator"
	"github.com/thomasrohde/whispy/pkg/repl"
	"github.com/thomasrohde/whispy/pkg/runtime"
	"github.com/thomasrohde/whispy/pkg/stdlib"
)

// scripted replays inputs: strings are typed lines, errors are returned from
// Prompt. Running out of input behaves like Ctrl-D.
type scripted struct {
	inputs  []any
	prompts []string
	history []string
}

func (s *scripted) Prompt(prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if len(s.inputs) == 0 {
		return "", io.EOF
	}
	next := s.inputs[0]
	s.inputs = s.inputs[1:]
	if err, ok := next.(error); ok {
		return "", err
	}
	return next.(string), nil
}

func (s *scripted) AppendHistory(item string) {
	s.history = append(s.history, item)
}

func session(t *testing.T, inputs []any, opts ...runtime.Option) (*scripted, *bytes.Buffer, int, error) {
	t.Helper()
	out := &bytes.Buffer{}
	in := &scripted{inputs: inputs}
	rt := runtime.New(append([]runtime.Option{runtime.WithStdout(out)}, opts...)...)
	r := repl.New(rt, in, out, config.Defaults().REPL, true)
	code, err := r.Run(context.Background())
	return in, out, code, err
}

func TestDefinitionsPersist(t *testing.T) {
	_, out, code, err := session(t, []any{"(def (sq x) (* x x))", "(sq 7)", "exit"})
	if err != nil || code != 0 {
		t.Fatalf("code %d err %v", code, err)
	}
	if out.String() != "(WL): 49\n" {
		t.Errorf("got %q", out.String())
	}
}

func TestContinuationLines(t *testing.T) {
	in, out, _, _ := session(t, []any{"(sum 1", "", "2)", "exit"})
	if !strings.Contains(out.String(), "(WL): 3") {
		t.Errorf("got %q", out.String())
	}
	wantPrompts := []string{"(WL)$ ", "..... ", "..... ", "(WL)$ "}
	if !reflect.DeepEqual(in.prompts, wantPrompts) {
		t.Errorf("prompts = %q, want %q", in.prompts, wantPrompts)
	}
	if len(in.history) != 1 || in.history[0] != "(sum 1\n\n2)" {
		t.Errorf("history = %q", in.history)
	}
}

func TestErrorsKeepSessionAlive(t *testing.T) {
	_, out, code, err := session(t, []any{"(def y 2)", "undefined_thing", ")", "(+ 1 y)", "exit"})
	if err != nil || code != 0 {
		t.Fatalf("code %d err %v", code, err)
	}
	got := out.String()
	for _, want := range []string{"error[E_UNBOUND]", "error[E_SYNTAX]", "^", "(WL): 3"} {
		if !strings.Contains(got, want) {
			t.Errorf("output lacks %q:\n%s", want, got)
		}
	}
}

func TestQuitEndsSession(t *testing.T) {
	in, out, code, err := session(t, []any{"(quit 3)", "(print 1)"})
	if err != nil {
		t.Fatal(err)
	}
	if code != 3 {
		t.Errorf("code = %d, want 3", code)
	}
	if !strings.Contains(out.String(), stdlib.Farewell) {
		t.Errorf("got %q", out.String())
	}
	if len(in.inputs) != 1 {
		t.Error("session continued after quit")
	}
}

func TestRecursionEndsSession(t *testing.T) {
	_, _, _, err := session(t, []any{"(def (f n) (f n))", "(f 1)", "exit"}, runtime.WithMaxDepth(20))
	var re *evaluator.RecursionError
	if !errors.As(err, &re) {
		t.Fatalf("expected RecursionError, got %v", err)
	}
}

func TestCtrlCClearsBuffer(t *testing.T) {
	_, out, _, _ := session(t, []any{"(sum 1", liner.ErrPromptAborted, "5", "exit"})
	if out.String() != "(WL): 5\n" {
		t.Errorf("got %q", out.String())
	}
}

func TestCtrlDAsksForConfirmation(t *testing.T) {
	in, out, code, err := session(t, []any{io.EOF, "n", "1", io.EOF, "y", "2"})
	if err != nil || code != 0 {
		t.Fatalf("code %d err %v", code, err)
	}
	if out.String() != "(WL): 1\n" {
		t.Errorf("got %q", out.String())
	}
	if len(in.inputs) != 1 {
		t.Errorf("expected the session to stop after y, %d inputs left", len(in.inputs))
	}
}

func TestMetaCommands(t *testing.T) {
	_, out, _, _ := session(t, []any{
		":env", "(def x 5)", ":env", ":clear", ":env", ":help", ":help ex", ":bogus", "exit",
	})
	got := out.String()
	for _, want := range []string{
		"(no bindings)", "  x: int = 5", "Scope cleared", "Topics:", "[examples]", "Unknown command: :bogus",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output lacks %q:\n%s", want, got)
		}
	}
	if strings.Count(got, "(no bindings)") != 2 {
		t.Errorf(":clear should drop bindings:\n%s", got)
	}
}

func TestNeedsMoreInput(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"", false},
		{"(def x 1)", false},
		{"(def x", true},
		{"((lambda (y)\n(sum 1 y))", true},
		{`(print "(")`, false},
		{`(print "a`, true},
		{`(print "a\"b")`, false},
		{"(sum 1 ; (\n2)", false},
		{")", false},
	}
	for _, tt := range tests {
		if got := repl.NeedsMoreInput(tt.input); got != tt.want {
			t.Errorf("NeedsMoreInput(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestCompleter(t *testing.T) {
	complete := repl.Completer([]string{"sum", "sub", "simple_input", "print"})

	if got := complete("(su"); !reflect.DeepEqual(got, []string{"(sub", "(sum"}) {
		t.Errorf("got %q", got)
	}
	if got := complete("(def x (la"); !reflect.DeepEqual(got, []string{"(def x (lambda"}) {
		t.Errorf("got %q", got)
	}
	if got := complete("(sum "); got != nil {
		t.Errorf("expected no candidates, got %q", got)
	}
}

func TestPlainReader(t *testing.T) {
	out := &bytes.Buffer{}
	p := repl.NewPlain(bufio.NewReader(strings.NewReader("(sum 1 2)\r\nlast")), out)

	line, err := p.Prompt("> ")
	if err != nil || line != "(sum 1 2)" {
		t.Fatalf("got %q, %v", line, err)
	}
	line, err = p.Prompt("> ")
	if err != nil || line != "last" {
		t.Fatalf("got %q, %v", line, err)
	}
	if _, err := p.Prompt("> "); err != io.EOF {
		t.Fatalf("expected EOF, got %v", err)
	}
	if out.String() != "> > > " {
		t.Errorf("prompts written: %q", out.String())
	}
}
