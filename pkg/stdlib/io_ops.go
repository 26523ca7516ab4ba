package stdlib

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/thomasrohde/whispy/pkg/value"
)

// InputPrompt is written before simple_input reads a line.
const InputPrompt = "input: "

// Farewell is printed by quit.
const Farewell = "Thank you! Come again!"

// (print x...) writes display forms separated by spaces and a newline.
func builtinPrint(c *value.Call, args []value.Value) (value.Value, error) {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	if _, err := fmt.Fprintln(c.Stdout, strings.Join(parts, " ")); err != nil {
		return nil, evalErr("print: %v", err)
	}
	return value.Nothing, nil
}

// (simple_input) reads one line and types it as float, int, bool or string.
func builtinSimpleInput(c *value.Call, args []value.Value) (value.Value, error) {
	if len(args) != 0 {
		return nil, evalErr("simple_input takes no arguments, got %d", len(args))
	}
	fmt.Fprint(c.Stdout, InputPrompt)
	line, err := c.Stdin.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			return nil, evalErr("simple_input: end of input")
		}
		return nil, evalErr("simple_input: %v", err)
	}
	return ParseInput(strings.TrimRight(line, "\r\n")), nil
}

// ParseInput types a line of user input: text with a dot that parses as a
// float is a Float, then Int, then #t/#f, otherwise the String itself.
func ParseInput(text string) value.Value {
	if strings.Contains(text, ".") {
		if f, err := strconv.ParseFloat(text, 64); err == nil {
			return value.NewFloat(f)
		}
	}
	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		return value.NewInt(n)
	}
	switch text {
	case "#t":
		return value.NewBool(true)
	case "#f":
		return value.NewBool(false)
	}
	return value.NewString(text)
}

// (quit [code]) ends the session. An int argument is the exit code; any
// other argument is printed and the exit code is 1.
func builtinQuit(c *value.Call, args []value.Value) (value.Value, error) {
	fmt.Fprintln(c.Stdout, Farewell)
	if len(args) == 0 {
		return nil, &ExitRequest{Code: 0}
	}
	if n, ok := args[0].(value.Int); ok {
		return nil, &ExitRequest{Code: int(n.Value)}
	}
	fmt.Fprintln(c.Stdout, args[0].String())
	return nil, &ExitRequest{Code: 1}
}
