package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned by Resolve when no config file exists.
var ErrNotFound = errors.New("no config file found")

// Load resolves and reads the configuration. With no file found it returns
// Defaults() and an empty path.
func Load(explicit string, getenv func(string) string) (*Config, string, error) {
	path, err := Resolve(explicit, getenv)
	if errors.Is(err, ErrNotFound) {
		return Defaults(), "", nil
	}
	if err != nil {
		return nil, "", err
	}
	cfg, err := LoadFile(path, getenv)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// LoadFile reads one config file over the defaults.
func LoadFile(path string, getenv func(string) string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data, getenv)
}

// Parse decodes YAML config data over the defaults, after interpolating
// environment variables.
func Parse(data []byte, getenv func(string) string) (*Config, error) {
	data = interpolateEnv(data, getenv)

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Resolve finds the config file to use.
// Precedence: explicit path → WHISPY_CONFIG → ./.whispy.yaml → ~/.config/whispy/config.yaml.
func Resolve(explicit string, getenv func(string) string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	if envPath := getenv("WHISPY_CONFIG"); envPath != "" {
		if _, err := os.Stat(envPath); err != nil {
			return "", fmt.Errorf("WHISPY_CONFIG file not found: %s", envPath)
		}
		return envPath, nil
	}

	if _, err := os.Stat(".whispy.yaml"); err == nil {
		return ".whispy.yaml", nil
	}

	home, err := os.UserHomeDir()
	if err == nil {
		userPath := filepath.Join(home, ".config", "whispy", "config.yaml")
		if _, err := os.Stat(userPath); err == nil {
			return userPath, nil
		}
	}

	return "", ErrNotFound
}

// envPattern matches ${VAR} or ${VAR:-default}
var envPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func interpolateEnv(data []byte, getenv func(string) string) []byte {
	return envPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		parts := envPattern.FindSubmatch(match)
		if len(parts) < 2 {
			return match
		}
		v := getenv(string(parts[1]))
		if v == "" && len(parts) >= 3 && len(parts[2]) > 0 {
			v = string(parts[2])
		}
		return []byte(v)
	})
}

// Validate checks ranges and enumerations.
func Validate(cfg *Config) error {
	var errs []string

	if cfg.MaxDepth < 1 {
		errs = append(errs, fmt.Sprintf("max_depth must be at least 1, got %d", cfg.MaxDepth))
	}
	if cfg.TimeoutMs < 0 {
		errs = append(errs, fmt.Sprintf("timeout_ms must not be negative, got %d", cfg.TimeoutMs))
	}
	switch cfg.Output.Format {
	case FormatAuto, FormatPretty, FormatJSON:
	default:
		errs = append(errs, fmt.Sprintf("output.format must be one of auto, pretty, json; got %q", cfg.Output.Format))
	}
	if cfg.REPL.History && cfg.REPL.HistoryFile == "" {
		errs = append(errs, "repl.history_file is required when repl.history is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// Marshal renders cfg as YAML.
func Marshal(cfg *Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}
