// Package cli provides Cargo/rustc-style terminal output for airtsgen: colored
// labels, coded error diagnostics, and aligned tables. Color is used only when
// stdout is a terminal.
package cli

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// OutputMode determines how output is formatted.
type OutputMode int

const (
	// ModeTTY enables colored output for interactive terminals.
	ModeTTY OutputMode = iota
	// ModePlain outputs plain text without colors (pipes, CI, NO_COLOR).
	ModePlain
)

// Config holds CLI output configuration. It is auto-detected.
type Config struct {
	Mode   OutputMode
	Writer io.Writer
}

// DefaultConfig detects the output mode:
//   - stdout is a TTY and NO_COLOR is unset -> ModeTTY
//   - otherwise, or with TERM=dumb -> ModePlain
func DefaultConfig() *Config {
	mode := ModePlain
	if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		mode = ModeTTY
	}
	if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		mode = ModePlain
	}
	return &Config{Mode: mode, Writer: os.Stdout}
}

// IsTTY returns true if running in interactive terminal mode.
func (c *Config) IsTTY() bool {
	return c.Mode == ModeTTY
}

var defaultCfg *Config

// Default returns the global configuration, detecting it on first use.
func Default() *Config {
	if defaultCfg == nil {
		defaultCfg = DefaultConfig()
	}
	return defaultCfg
}

// SetDefault replaces the global configuration. Used by tests.
func SetDefault(cfg *Config) {
	defaultCfg = cfg
}

// EnableColors returns true if colors should be used.
func EnableColors() bool {
	return Default().IsTTY()
}
