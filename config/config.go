// Package config loads pir.toml, the project file naming the Lowerer's
// tunable knobs and the host's logging verbosity. Grounded on
// bootstrap/depm/load_mod.go's TOML-module-file pattern: a small tagged
// struct, pelletier/go-toml unmarshal, then field-by-field validation with
// a default fallback rather than a hard failure on an absent optional
// field.
package config

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml"

	"pirc/lower"
	"pirc/report"
)

// FileName is the project configuration file's fixed name, analogous to
// bootstrap/common's chai-mod.toml constant.
const FileName = "pir.toml"

// tomlConfig is pir.toml's on-disk shape.
type tomlConfig struct {
	LogLevel                string `toml:"log-level"`
	SafepointSlackBytes     int64  `toml:"safepoint-slack-bytes"`
	MaxInlineSafepointSpill int    `toml:"max-inline-safepoint-spill"`
	EnableBindingCache      *bool  `toml:"enable-binding-cache"`
	TargetTriple            string `toml:"target-triple"`
}

// Config is the validated, defaulted project configuration.
type Config struct {
	LogLevel     int
	Lower        lower.Config
	TargetTriple string
}

// Default matches lower.DefaultConfig plus a warn-level logger and the
// host's native triple, used whenever no pir.toml is present.
func Default() Config {
	return Config{
		LogLevel:     report.LogLevelWarn,
		Lower:        lower.DefaultConfig,
		TargetTriple: "x86_64-unknown-linux-gnu",
	}
}

// Load reads pir.toml out of dir, falling back to Default() if the file
// does not exist (a missing config file is not an error, per
// bootstrap/depm/load_mod.go's module-file handling upgraded to treat
// absence as "use defaults" rather than "fatal").
func Load(dir string) (Config, error) {
	path := filepath.Join(dir, FileName)

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("unable to open %s: %w", path, err)
	}
	defer f.Close()

	buf, err := ioutil.ReadAll(f)
	if err != nil {
		return Config{}, fmt.Errorf("error reading %s: %w", path, err)
	}

	var tc tomlConfig
	if err := toml.Unmarshal(buf, &tc); err != nil {
		return Config{}, fmt.Errorf("error parsing %s: %w", path, err)
	}

	return validate(tc)
}

func validate(tc tomlConfig) (Config, error) {
	cfg := Default()

	if tc.LogLevel != "" {
		lvl, ok := report.ParseLogLevel(tc.LogLevel)
		if !ok {
			return Config{}, fmt.Errorf("invalid log-level %q", tc.LogLevel)
		}
		cfg.LogLevel = lvl
	}

	if tc.SafepointSlackBytes > 0 {
		cfg.Lower.SafepointSlackBytes = tc.SafepointSlackBytes
	}
	if tc.MaxInlineSafepointSpill > 0 {
		cfg.Lower.MaxInlineSafepointSpill = tc.MaxInlineSafepointSpill
	}
	if tc.EnableBindingCache != nil {
		cfg.Lower.EnableBindingCache = *tc.EnableBindingCache
	}
	if tc.TargetTriple != "" {
		cfg.TargetTriple = tc.TargetTriple
	}

	return cfg, nil
}
