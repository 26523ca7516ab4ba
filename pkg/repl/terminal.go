package repl

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"

	"github.com/thomasrohde/whispy/pkg/config"
)

// Terminal is a LineReader backed by liner with history and tab completion.
type Terminal struct {
	*liner.State
	historyFile string
}

// NewTerminal puts the terminal in line-editing mode. Close restores it and
// saves history when enabled.
func NewTerminal(cfg config.REPLConfig, names []string) *Terminal {
	st := liner.NewLiner()
	st.SetCtrlCAborts(true)
	st.SetCompleter(Completer(names))

	t := &Terminal{State: st}
	if cfg.History && cfg.HistoryFile != "" {
		t.historyFile = cfg.HistoryFile
		if f, err := os.Open(t.historyFile); err == nil {
			st.ReadHistory(f)
			f.Close()
		}
	}
	return t
}

// Close saves history and restores the terminal.
func (t *Terminal) Close() error {
	if t.historyFile != "" {
		if f, err := os.Create(t.historyFile); err == nil {
			t.WriteHistory(f)
			f.Close()
		}
	}
	return t.State.Close()
}

// Plain is a LineReader for non-interactive input such as a pipe. Prompts
// are echoed to w.
type Plain struct {
	r *bufio.Reader
	w io.Writer
}

// NewPlain reads lines from r. Pass the same *bufio.Reader to the runtime so
// simple_input and the session share buffered input.
func NewPlain(r *bufio.Reader, w io.Writer) *Plain {
	return &Plain{r: r, w: w}
}

// Prompt writes prompt and reads one line without its terminator.
func (p *Plain) Prompt(prompt string) (string, error) {
	fmt.Fprint(p.w, prompt)
	line, err := p.r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// AppendHistory is a no-op.
func (p *Plain) AppendHistory(string) {}
