// Package config holds the runtime settings shared by the CLI and the
// MCP server: logging level, path enumeration bounds, and analysis
// thresholds. Settings come from ADVGRAPH_* environment variables with
// an optional YAML options file applied on top.
package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/questfoundry/advgraph/internal/graph"
)

// EnvOptionsFile names the environment variable pointing at an optional
// YAML options file. An explicit path passed to Load takes precedence.
const EnvOptionsFile = "ADVGRAPH_CONFIG"

// Config is the full runtime configuration.
type Config struct {
	LogLevel         string  `env:"ADVGRAPH_LOG_LEVEL"       envDefault:"info" yaml:"log_level"`
	MaxPathLength    int     `env:"ADVGRAPH_MAX_PATH_LENGTH" envDefault:"20"   yaml:"max_path_length"`
	MaxPaths         int     `env:"ADVGRAPH_MAX_PATHS"       envDefault:"100"  yaml:"max_paths"`
	MinImpact        float64 `env:"ADVGRAPH_MIN_IMPACT"      envDefault:"0.3"  yaml:"min_impact"`
	StrictValidation bool    `env:"ADVGRAPH_STRICT"          yaml:"strict_validation"`
}

// Load builds the configuration from the environment, then applies the
// YAML options file when one is named, either by path or by
// ADVGRAPH_CONFIG. Keys absent from the file keep their environment
// values.
func Load(path string) (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if path == "" {
		path = os.Getenv(EnvOptionsFile)
	}
	if path != "" {
		if err := cfg.applyFile(path); err != nil {
			return Config{}, err
		}
	}
	if cfg.MinImpact < 0 || cfg.MinImpact > 1 {
		return Config{}, fmt.Errorf("min impact %v out of range [0, 1]", cfg.MinImpact)
	}
	return cfg, nil
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Caps returns the path enumeration bounds, defaulting non-positive
// limits.
func (c Config) Caps() graph.Caps {
	return graph.Caps{MaxPathLength: c.MaxPathLength, MaxPaths: c.MaxPaths}.Normalize()
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read options %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse options %s: %w", path, err)
	}
	return nil
}
