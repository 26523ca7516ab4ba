// Package repl implements the interactive whispy session.
package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/peterh/liner"

	"github.com/thomasrohde/whispy/pkg/config"
	"github.com/thomasrohde/whispy/pkg/diagnostics"
	"github.com/thomasrohde/whispy/pkg/evaluator"
	"github.com/thomasrohde/whispy/pkg/help"
	"github.com/thomasrohde/whispy/pkg/runtime"
	"github.com/thomasrohde/whispy/pkg/stdlib"
	"github.com/thomasrohde/whispy/pkg/value"
)

// Source is the file name reported in REPL diagnostics.
const Source = "<repl>"

// LineReader reads one line of input after showing a prompt. Prompt returns
// liner.ErrPromptAborted on Ctrl-C and io.EOF on Ctrl-D.
type LineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

// REPL is one interactive session over a runtime.
type REPL struct {
	rt     *runtime.Runtime
	in     LineReader
	out    io.Writer
	cfg    config.REPLConfig
	pretty bool
}

// New creates a session. Diagnostics are rendered pretty or as JSON.
func New(rt *runtime.Runtime, in LineReader, out io.Writer, cfg config.REPLConfig, pretty bool) *REPL {
	return &REPL{rt: rt, in: in, out: out, cfg: cfg, pretty: pretty}
}

// Banner is printed when a session starts on a terminal.
func Banner(w io.Writer) {
	fmt.Fprintln(w, "whispy - type :help for commands, exit or Ctrl-D to leave")
}

// Run reads and evaluates input until the session ends. It returns the exit
// code requested by quit, or a non-recoverable error such as a
// *evaluator.RecursionError.
func (r *REPL) Run(ctx context.Context) (int, error) {
	var buf strings.Builder

	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		prompt := r.cfg.Prompt
		if buf.Len() > 0 {
			prompt = r.cfg.Continuation
		}
		line, err := r.in.Prompt(prompt)
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				buf.Reset()
				continue
			}
			if errors.Is(err, io.EOF) {
				if r.confirmQuit() {
					return 0, nil
				}
				continue
			}
			return 0, err
		}

		trimmed := strings.TrimSpace(line)
		if buf.Len() == 0 {
			if trimmed == "" {
				continue
			}
			if trimmed == "exit" {
				return 0, nil
			}
			if strings.HasPrefix(trimmed, ":") {
				r.command(trimmed)
				continue
			}
		}

		if buf.Len() > 0 {
			buf.WriteString("\n")
		}
		buf.WriteString(line)

		input := buf.String()
		if NeedsMoreInput(input) {
			continue
		}
		buf.Reset()
		r.in.AppendHistory(input)

		if code, done, err := r.eval(ctx, input); done {
			return code, err
		}
	}
}

// eval runs one complete input. done reports that the session must end.
func (r *REPL) eval(ctx context.Context, input string) (code int, done bool, err error) {
	res, err := r.rt.Run(ctx, input, Source)
	if err == nil {
		if !value.IsNothing(res.Value) {
			fmt.Fprintln(r.out, r.cfg.ResultPrefix+res.Value.String())
		}
		return 0, false, nil
	}

	var exit *stdlib.ExitRequest
	if errors.As(err, &exit) {
		return exit.Code, true, nil
	}
	var budget *evaluator.BudgetError
	if errors.As(err, &budget) {
		fmt.Fprintln(r.out, diagnostics.FormatDiagnostic(budget.Report(), r.pretty))
		return 0, false, nil
	}
	var de diagnostics.Error
	if errors.As(err, &de) {
		fmt.Fprintln(r.out, diagnostics.FormatError(de, r.pretty))
		return 0, false, nil
	}
	return 0, true, err
}

func (r *REPL) confirmQuit() bool {
	for {
		answer, err := r.in.Prompt("Really quit? (y/n) ")
		if err != nil {
			return errors.Is(err, io.EOF)
		}
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes":
			return true
		case "n", "no":
			return false
		}
	}
}

func (r *REPL) command(cmd string) {
	name, arg, _ := strings.Cut(cmd, " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case ":help", ":h", ":?":
		if arg == "" {
			fmt.Fprint(r.out, help.Topics["repl"])
			fmt.Fprintf(r.out, "\nTopics: %s\n", strings.Join(help.TopicList, ", "))
			return
		}
		topic, content, err := help.MatchTopic(arg)
		if err != nil {
			fmt.Fprintln(r.out, err)
			return
		}
		fmt.Fprintf(r.out, "[%s]\n%s", topic, content)

	case ":env":
		scope := r.rt.Scope()
		names := scope.LocalNames()
		if len(names) == 0 {
			fmt.Fprintln(r.out, "(no bindings)")
			return
		}
		for _, n := range names {
			v, _ := scope.Local(value.NewSymbol(n))
			fmt.Fprintf(r.out, "  %s: %s = %s\n", n, v.TypeName(), value.Repr(v))
		}

	case ":clear":
		r.rt.Reset()
		fmt.Fprintln(r.out, "Scope cleared")

	default:
		fmt.Fprintf(r.out, "Unknown command: %s (type :help for commands)\n", cmd)
	}
}
