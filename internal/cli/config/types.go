// Package config provides configuration management for the leapdbml CLI.
//
// Values are layered with koanf: built-in defaults, then leapdbml.yaml,
// then LEAPDBML_* environment variables, then explicitly set flags.
package config

import (
	"time"

	sharedcfg "github.com/leapstack-labs/leapdbml/internal/config"
	"github.com/leapstack-labs/leapdbml/pkg/format"
)

// Config holds all CLI configuration options.
type Config struct {
	Verbose     bool         `koanf:"verbose"`
	Output      string       `koanf:"output"`
	SchemaDir   string       `koanf:"schema_dir"`
	Include     string       `koanf:"include"`
	Concurrency int          `koanf:"concurrency"`
	Format      FormatConfig `koanf:"format"`
	Watch       WatchConfig  `koanf:"watch"`

	// ProjectRoot is the directory relative paths are resolved against.
	ProjectRoot string `koanf:"-"`
}

// FormatConfig controls the printer.
type FormatConfig struct {
	Indent    string `koanf:"indent"`
	Linebreak string `koanf:"linebreak"`
}

// Options converts the config to printer options.
func (c FormatConfig) Options() format.Options {
	opts := format.DefaultOptions()
	if c.Indent != "" {
		opts.Indent = c.Indent
	}
	if lb, ok := sharedcfg.NormalizeLinebreak(c.Linebreak); ok {
		opts.Linebreak = lb
	}
	return opts
}

// WatchConfig controls the watch command.
type WatchConfig struct {
	Debounce time.Duration `koanf:"debounce"`
}

// Default configuration values - uses shared defaults from internal/config
const (
	DefaultSchemaDir = sharedcfg.DefaultSchemaDir
	DefaultInclude   = sharedcfg.DefaultInclude
	DefaultOutput    = sharedcfg.DefaultOutput
	DefaultDebounce  = sharedcfg.DefaultDebounce
)

// Default returns the configuration used when nothing else is provided.
func Default() *Config {
	return &Config{
		Output:      DefaultOutput,
		SchemaDir:   DefaultSchemaDir,
		Include:     DefaultInclude,
		Concurrency: sharedcfg.DefaultConcurrency,
		Format: FormatConfig{
			Indent:    sharedcfg.DefaultIndent,
			Linebreak: sharedcfg.DefaultLinebreak,
		},
		Watch: WatchConfig{Debounce: DefaultDebounce},
	}
}
