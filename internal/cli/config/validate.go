package config

import (
	"fmt"
	"path/filepath"

	sharedcfg "github.com/leapstack-labs/leapdbml/internal/config"
)

var validOutputs = map[string]bool{"auto": true, "text": true, "markdown": true, "json": true}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if !validOutputs[c.Output] {
		return fmt.Errorf("invalid output %q: expected auto, text, markdown or json", c.Output)
	}
	if c.SchemaDir == "" {
		return fmt.Errorf("schema_dir is required")
	}
	if _, err := filepath.Match(c.Include, ""); err != nil || c.Include == "" {
		return fmt.Errorf("invalid include pattern %q", c.Include)
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("concurrency must not be negative, got %d", c.Concurrency)
	}
	if _, ok := sharedcfg.NormalizeLinebreak(c.Format.Linebreak); !ok {
		return fmt.Errorf("invalid format.linebreak %q: expected lf or crlf", c.Format.Linebreak)
	}
	if c.Watch.Debounce <= 0 {
		return fmt.Errorf("watch.debounce must be positive, got %s", c.Watch.Debounce)
	}
	return nil
}
