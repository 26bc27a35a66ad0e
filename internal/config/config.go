// Package config loads the optional minic.toml pipeline configuration.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Opt configures the pass pipeline.
type Opt struct {
	// Level is the optimization level, 0..3.
	Level int `toml:"level"`
	// Disable lists pass names excluded from the pipeline.
	Disable []string `toml:"disable"`
	// MaxSweeps bounds the fixed-point loop; 0 keeps the computed
	// default.
	MaxSweeps int `toml:"max_sweeps"`
}

// Snapshot configures per-pass IR snapshots.
type Snapshot struct {
	Enable bool   `toml:"enable"`
	Dir    string `toml:"dir"`
}

// Config is the root of minic.toml.
type Config struct {
	Opt      Opt      `toml:"opt"`
	Snapshot Snapshot `toml:"snapshot"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{}
}

// Load reads and validates a configuration file. Unknown keys are
// rejected so typos do not silently disable anything.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	meta, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return cfg, fmt.Errorf("parse %s: unknown key %q", path, undecoded[0].String())
	}
	if cfg.Opt.Level < 0 || cfg.Opt.Level > 3 {
		return cfg, fmt.Errorf("parse %s: opt.level must be 0..3, got %d", path, cfg.Opt.Level)
	}
	return cfg, nil
}
