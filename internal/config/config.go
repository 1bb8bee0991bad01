// Package config canonicalizes the engine's configuration and loads the
// fixture shape cmd/stepweave consumes: a tmpdir plus a parse tree already
// in the engine's input shape (raw outputs/inputs/tags/method). This is
// deserializing a fixture shaped like the engine's own input contract, not
// a workflow-file DSL.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"stepweave/internal/core"
)

// Config is the fully canonicalized, deterministic description of a run:
// no environment variables are consulted and paths are required to be
// explicit.
type Config struct {
	TmpDir string       `yaml:"tmpdir"`
	Steps  []*core.Step `yaml:"steps"`
}

// Validate rejects an empty or relative TmpDir; dirname.Assign enforces the
// length budget itself.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.TmpDir) == "" {
		return fmt.Errorf("tmpdir is required")
	}
	if !filepath.IsAbs(c.TmpDir) {
		return fmt.Errorf("tmpdir must be an absolute path")
	}
	if len(c.Steps) == 0 {
		return fmt.Errorf("steps is required and must be non-empty")
	}
	return nil
}

// Load reads and validates a Config from a YAML file at path.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %q: %w", path, err)
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parsing config %q: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %q: %w", path, err)
	}
	return &c, nil
}
