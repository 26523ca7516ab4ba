// Package config loads whispy settings from YAML files.
package config

import (
	"os"
	"path/filepath"

	"github.com/thomasrohde/whispy/pkg/evaluator"
)

// Output formats accepted by output.format.
const (
	FormatAuto   = "auto"
	FormatPretty = "pretty"
	FormatJSON   = "json"
)

// Config is the resolved configuration.
type Config struct {
	MaxDepth  int          `yaml:"max_depth"`
	TimeoutMs int64        `yaml:"timeout_ms"`
	REPL      REPLConfig   `yaml:"repl"`
	Output    OutputConfig `yaml:"output"`
}

// REPLConfig holds interactive mode settings.
type REPLConfig struct {
	Prompt       string `yaml:"prompt"`
	Continuation string `yaml:"continuation"`
	ResultPrefix string `yaml:"result_prefix"`
	HistoryFile  string `yaml:"history_file"`
	History      bool   `yaml:"history"`
}

// OutputConfig controls how results and diagnostics are rendered.
type OutputConfig struct {
	Format string `yaml:"format"`
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		MaxDepth: evaluator.DefaultMaxDepth,
		REPL: REPLConfig{
			Prompt:       "(WL)$ ",
			Continuation: "..... ",
			ResultPrefix: "(WL): ",
			HistoryFile:  filepath.Join(os.TempDir(), ".whispy_history"),
			History:      true,
		},
		Output: OutputConfig{
			Format: FormatAuto,
		},
	}
}
