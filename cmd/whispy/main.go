// Command whispy is the whispy interpreter entry point.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/thomasrohde/whispy/pkg/config"
	"github.com/thomasrohde/whispy/pkg/diagnostics"
	"github.com/thomasrohde/whispy/pkg/evaluator"
	"github.com/thomasrohde/whispy/pkg/formatter"
	"github.com/thomasrohde/whispy/pkg/help"
	"github.com/thomasrohde/whispy/pkg/repl"
	"github.com/thomasrohde/whispy/pkg/runtime"
	"github.com/thomasrohde/whispy/pkg/stdlib"
	"github.com/thomasrohde/whispy/pkg/value"
	"github.com/thomasrohde/whispy/pkg/watch"
)

func main() {
	a := &app{
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
		getenv: os.Getenv,
	}
	os.Exit(a.main(os.Args[1:]))
}

// app holds the process streams so commands can run in tests.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	getenv func(string) string
}

func (a *app) main(args []string) int {
	if len(args) < 1 {
		fmt.Fprintln(a.stderr, "usage: whispy <file.wl> | whispy <command> [options]")
		fmt.Fprintln(a.stderr, "commands: run, repl, check, fmt, trace, config, help")
		return 1
	}

	cmd := args[0]
	switch cmd {
	case "run":
		return a.cmdRun(args[1:])
	case "repl", "-r", "--repl":
		return a.cmdRepl(args[1:])
	case "check":
		return a.cmdCheck(args[1:])
	case "fmt":
		return a.cmdFmt(args[1:])
	case "trace":
		return a.cmdTrace(args[1:])
	case "config":
		return a.cmdConfig(args[1:])
	case "help", "--help", "-h":
		return a.cmdHelp(args[1:])
	default:
		if strings.HasPrefix(cmd, "-") && cmd != "-" {
			fmt.Fprintf(a.stderr, "Unknown command: %s\n", cmd)
			return 1
		}
		return a.cmdRun(args)
	}
}

// flags are the options shared by run, repl and check.
type flags struct {
	file       string
	pretty     bool
	json       bool
	configPath string
	tracePath  string
	watch      bool
	maxDepth   int
	timeoutMs  int64
	write      bool
}

func (a *app) parseFlags(args []string) (*flags, error) {
	f := &flags{}
	for i := 0; i < len(args); i++ {
		arg := args[i]
		needValue := func() (string, error) {
			if i+1 >= len(args) {
				return "", fmt.Errorf("%s requires a value", arg)
			}
			i++
			return args[i], nil
		}
		switch arg {
		case "--pretty":
			f.pretty = true
		case "--json":
			f.json = true
		case "--watch":
			f.watch = true
		case "--write":
			f.write = true
		case "--config":
			v, err := needValue()
			if err != nil {
				return nil, err
			}
			f.configPath = v
		case "--trace":
			v, err := needValue()
			if err != nil {
				return nil, err
			}
			f.tracePath = v
		case "--max-depth":
			v, err := needValue()
			if err != nil {
				return nil, err
			}
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				return nil, fmt.Errorf("--max-depth must be a positive integer, got %q", v)
			}
			f.maxDepth = n
		case "--timeout":
			v, err := needValue()
			if err != nil {
				return nil, err
			}
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil || n < 0 {
				return nil, fmt.Errorf("--timeout must be a non-negative number of milliseconds, got %q", v)
			}
			f.timeoutMs = n
		default:
			if strings.HasPrefix(arg, "-") && arg != "-" {
				return nil, fmt.Errorf("unknown flag: %s", arg)
			}
			f.file = arg
		}
	}
	return f, nil
}

// setup parses flags and loads configuration. A non-zero code means the
// command must stop.
func (a *app) setup(args []string, usage string) (*flags, *config.Config, int) {
	f, err := a.parseFlags(args)
	if err != nil {
		fmt.Fprintf(a.stderr, "%s\nusage: %s\n", err, usage)
		return nil, nil, 1
	}
	cfg, _, err := config.Load(f.configPath, a.getenv)
	if err != nil {
		diag := diagnostics.MakeDiag(diagnostics.EConfig, err.Error(), nil, "")
		fmt.Fprintln(a.stderr, diagnostics.FormatDiagnostics([]diagnostics.Diagnostic{diag}, f.pretty))
		return nil, nil, 1
	}
	if f.maxDepth > 0 {
		cfg.MaxDepth = f.maxDepth
	}
	if f.timeoutMs > 0 {
		cfg.TimeoutMs = f.timeoutMs
	}
	return f, cfg, 0
}

// isPretty decides between human and JSON diagnostics.
func (a *app) isPretty(f *flags, cfg *config.Config) bool {
	switch {
	case f.pretty:
		return true
	case f.json:
		return false
	}
	switch cfg.Output.Format {
	case config.FormatPretty:
		return true
	case config.FormatJSON:
		return false
	}
	return isTerminal(a.stderr)
}

func isTerminal(v any) bool {
	file, ok := v.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
}

func (a *app) runtimeOptions(cfg *config.Config, stdin io.Reader) []runtime.Option {
	return []runtime.Option{
		runtime.WithStdout(a.stdout),
		runtime.WithStdin(stdin),
		runtime.WithMaxDepth(cfg.MaxDepth),
		runtime.WithTimeBudget(cfg.TimeoutMs),
	}
}

func (a *app) cmdRun(args []string) int {
	const usage = "whispy run <file> [--pretty|--json] [--trace <file.jsonl>] [--watch] [--max-depth N] [--timeout MS]"
	f, cfg, code := a.setup(args, usage)
	if code != 0 {
		return code
	}
	if f.file == "" {
		fmt.Fprintln(a.stderr, "usage: "+usage)
		return 1
	}
	pretty := a.isPretty(f, cfg)
	jsonValue := f.json || cfg.Output.Format == config.FormatJSON

	if f.watch {
		if f.file == "-" {
			fmt.Fprintln(a.stderr, "--watch needs a file, not stdin")
			return 1
		}
		return a.watch(f, cfg, pretty, jsonValue)
	}

	source, filename, code := a.readSource(f.file, pretty)
	if code != 0 {
		return code
	}

	opts := a.runtimeOptions(cfg, a.stdin)
	if f.tracePath != "" {
		tw, err := newTraceWriter(f.tracePath)
		if err != nil {
			a.printIOError(err, pretty)
			return 1
		}
		defer tw.Close()
		opts = append(opts, runtime.WithRunID(newRunID()), runtime.WithTrace(tw.Write))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return a.execute(ctx, runtime.New(opts...), source, filename, pretty, jsonValue)
}

// execute runs one program and reports its result. It returns the exit code.
func (a *app) execute(ctx context.Context, rt *runtime.Runtime, source, filename string, pretty, jsonValue bool) int {
	result, err := rt.Run(ctx, source, filename)
	if err != nil {
		return a.reportError(err, pretty)
	}
	if result == nil || value.IsNothing(result.Value) {
		return 0
	}
	if jsonValue {
		fmt.Fprintln(a.stdout, value.ToJSONString(result.Value))
	} else {
		fmt.Fprintln(a.stdout, result.Value.String())
	}
	return 0
}

func (a *app) watch(f *flags, cfg *config.Config, pretty, jsonValue bool) int {
	run := func(ctx context.Context, path string) error {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rt := runtime.New(a.runtimeOptions(cfg, a.stdin)...)
		code := a.execute(ctx, rt, string(data), f.file, pretty, jsonValue)
		if code != 0 {
			return fmt.Errorf("exit status %d", code)
		}
		return nil
	}
	w, err := watch.New(f.file, run, a.stdout, a.stderr)
	if err != nil {
		a.printIOError(err, pretty)
		return 1
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := w.Run(ctx); err != nil {
		a.printIOError(err, pretty)
		return 1
	}
	return 0
}

func (a *app) cmdRepl(args []string) int {
	f, cfg, code := a.setup(args, "whispy repl [--pretty|--json] [--max-depth N] [--timeout MS]")
	if code != 0 {
		return code
	}
	pretty := f.pretty || (!f.json && cfg.Output.Format != config.FormatJSON)

	var (
		rt *runtime.Runtime
		in repl.LineReader
	)
	if isTerminal(a.stdin) && isTerminal(a.stdout) {
		rt = runtime.New(a.runtimeOptions(cfg, a.stdin)...)
		term := repl.NewTerminal(cfg.REPL, rt.Names())
		defer term.Close()
		in = term
		repl.Banner(a.stdout)
	} else {
		br := bufio.NewReader(a.stdin)
		rt = runtime.New(a.runtimeOptions(cfg, br)...)
		in = repl.NewPlain(br, a.stdout)
	}

	exit, err := repl.New(rt, in, a.stdout, cfg.REPL, pretty).Run(context.Background())
	if err != nil {
		return a.reportError(err, pretty)
	}
	return exit
}

func (a *app) cmdCheck(args []string) int {
	f, cfg, code := a.setup(args, "whispy check <file> [--pretty|--json]")
	if code != 0 {
		return code
	}
	if f.file == "" {
		fmt.Fprintln(a.stderr, "usage: whispy check <file> [--pretty|--json]")
		return 1
	}
	pretty := a.isPretty(f, cfg)

	source, filename, code := a.readSource(f.file, pretty)
	if code != 0 {
		return code
	}

	diags := runtime.New().Check(source, filename)
	if len(diags) > 0 {
		fmt.Fprintln(a.stderr, diagnostics.FormatDiagnostics(diags, pretty))
		return 2
	}

	if pretty {
		fmt.Fprintln(a.stdout, "No errors found.")
	} else {
		fmt.Fprintln(a.stdout, "[]")
	}
	return 0
}

func (a *app) cmdFmt(args []string) int {
	f, err := a.parseFlags(args)
	if err != nil || f.file == "" {
		fmt.Fprintln(a.stderr, "usage: whispy fmt <file> [--write]")
		return 1
	}

	source, filename, code := a.readSource(f.file, f.pretty)
	if code != 0 {
		return code
	}

	formatted, fmtErr := runtime.New().Format(source, filename)
	if fmtErr != nil {
		return a.reportError(fmtErr, f.pretty)
	}

	if formatter.HasComments(source) {
		fmt.Fprintln(a.stderr, "warning: comments are not preserved by the formatter")
	}

	if f.write && f.file != "-" {
		if err := os.WriteFile(f.file, []byte(formatted), 0644); err != nil {
			fmt.Fprintf(a.stderr, "error writing file: %s\n", err)
			return 1
		}
		return 0
	}
	fmt.Fprint(a.stdout, formatted)
	return 0
}

func (a *app) cmdTrace(args []string) int {
	var file string
	textOutput := false
	for _, arg := range args {
		switch arg {
		case "--text":
			textOutput = true
		case "--json":
			textOutput = false
		default:
			if !strings.HasPrefix(arg, "-") {
				file = arg
			}
		}
	}
	if file == "" {
		fmt.Fprintln(a.stderr, "usage: whispy trace <file.jsonl> [--json|--text]")
		return 1
	}

	tf, err := os.Open(file)
	if err != nil {
		a.printIOError(fmt.Errorf("cannot read file: %s", file), false)
		return 1
	}
	defer tf.Close()

	summary := computeTraceSummary(tf)
	if textOutput {
		printTraceSummaryText(a.stdout, summary)
		return 0
	}
	b, _ := json.Marshal(summary)
	fmt.Fprintln(a.stdout, string(b))
	return 0
}

func (a *app) cmdConfig(args []string) int {
	f, err := a.parseFlags(args)
	if err != nil {
		fmt.Fprintln(a.stderr, "usage: whispy config [--config <file>]")
		return 1
	}
	cfg, path, err := config.Load(f.configPath, a.getenv)
	if err != nil {
		diag := diagnostics.MakeDiag(diagnostics.EConfig, err.Error(), nil, "")
		fmt.Fprintln(a.stderr, diagnostics.FormatDiagnostics([]diagnostics.Diagnostic{diag}, f.pretty))
		return 1
	}
	data, err := config.Marshal(cfg)
	if err != nil {
		fmt.Fprintln(a.stderr, err)
		return 1
	}
	if path == "" {
		path = "built-in defaults"
	}
	fmt.Fprintf(a.stdout, "# source: %s\n%s", path, data)
	return 0
}

func (a *app) cmdHelp(args []string) int {
	topic := ""
	for _, arg := range args {
		if !strings.HasPrefix(arg, "-") {
			topic = arg
		}
	}
	if topic == "" {
		fmt.Fprint(a.stdout, help.QUICKREF)
		return 0
	}
	_, content, err := help.MatchTopic(topic)
	if err != nil {
		fmt.Fprintf(a.stderr, "%s\nAvailable topics: %s\n", err, strings.Join(help.TopicList, ", "))
		return 1
	}
	fmt.Fprint(a.stdout, content)
	return 0
}

// reportError prints err as diagnostics and maps it to an exit code.
func (a *app) reportError(err error, pretty bool) int {
	var exit *stdlib.ExitRequest
	if errors.As(err, &exit) {
		return exit.Code
	}

	var diagErr *runtime.DiagnosticError
	if errors.As(err, &diagErr) {
		fmt.Fprintln(a.stderr, diagnostics.FormatDiagnostics(diagErr.Diagnostics, pretty))
		return 2
	}

	var diag diagnostics.Diagnostic
	var rec *evaluator.RecursionError
	var budget *evaluator.BudgetError
	var langErr diagnostics.Error
	switch {
	case errors.As(err, &rec):
		diag = rec.Report()
	case errors.As(err, &budget):
		diag = budget.Report()
	case errors.As(err, &langErr):
		if pretty {
			fmt.Fprintln(a.stderr, diagnostics.FormatError(langErr, true))
			return exitCodeForDiag(langErr.Diagnostic().Code)
		}
		diag = langErr.Diagnostic()
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(a.stderr, "interrupted")
		return 130
	default:
		fmt.Fprintln(a.stderr, err.Error())
		return 4
	}
	fmt.Fprintln(a.stderr, diagnostics.FormatDiagnostics([]diagnostics.Diagnostic{diag}, pretty))
	return exitCodeForDiag(diag.Code)
}

func (a *app) printIOError(err error, pretty bool) {
	diag := diagnostics.MakeDiag(diagnostics.EIO, err.Error(), nil, "")
	fmt.Fprintln(a.stderr, diagnostics.FormatDiagnostics([]diagnostics.Diagnostic{diag}, pretty))
}

func (a *app) readSource(file string, pretty bool) (string, string, int) {
	if file == "-" {
		data, err := io.ReadAll(a.stdin)
		if err != nil {
			fmt.Fprintf(a.stderr, "error reading stdin: %s\n", err)
			return "", "", 1
		}
		return string(data), "<stdin>", 0
	}

	source, err := os.ReadFile(file)
	if err != nil {
		a.printIOError(fmt.Errorf("cannot read file: %s", file), pretty)
		return "", "", 1
	}
	return string(source), file, 0
}

func exitCodeForDiag(code string) int {
	switch code {
	case diagnostics.ESyntax, diagnostics.EForm:
		return 2
	case diagnostics.EUnbound:
		return 3
	case diagnostics.EIO, diagnostics.EConfig:
		return 1
	default:
		return 4
	}
}

func newRunID() string {
	return time.Now().UTC().Format("20060102T150405.000000000")
}
