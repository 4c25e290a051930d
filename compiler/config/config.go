// Package config holds the compiler-wide options that every pipeline
// stage reads from: whether to run the optimizer, whether to keep
// intermediate debug output, whether to emit a visualization report,
// where to find the external assembler, and what extension the
// archiver should give its output. Values come from three layers, each
// overriding the last: built-in defaults, an optional project file
// named ilc.toml, and CLI flags.
package config

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"tlog.app/go/errors"
)

// FileName is the project file config.Load looks for when none is
// given explicitly.
const FileName = "ilc.toml"

// Config is the merged set of options a compilation run uses.
type Config struct {
	Optimize   bool   `toml:"optimize"`
	Debug      bool   `toml:"debug"`
	Visualize  bool   `toml:"visualize"`
	Assembler  string `toml:"assembler"`
	ArchiveExt string `toml:"archive_ext"`
	OutDir     string `toml:"out_dir"`
}

// Default returns the compiler's built-in options, used when no
// project file exists and no flags override them.
func Default() Config {
	return Config{
		Optimize:   false,
		Debug:      false,
		Visualize:  false,
		Assembler:  "lib/jasmin.jar",
		ArchiveExt: ".jar",
		OutDir:     ".",
	}
}

// Load reads path (an ilc.toml-shaped file) and merges it over the
// defaults. A missing file is not an error: Load returns the defaults
// unchanged, since the project file is optional.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}

		return cfg, errors.Wrap(err, "read config file %v", path)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(err, "parse config file %v", path)
	}

	return cfg, nil
}

// Find walks up from dir looking for FileName, returning its path or
// "" if no project file is found before reaching the filesystem root.
func Find(dir string) string {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return ""
	}

	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}

		dir = parent
	}
}

// Merge applies CLI-flag overrides onto cfg, flags always winning over
// the project file and the defaults. A zero-value override field (the
// flag wasn't set) leaves cfg's existing value untouched, except for
// the boolean fields, which are passed by pointer so "not set" and
// "set to false" remain distinguishable.
func (c Config) Merge(o Overrides) Config {
	if o.Optimize != nil {
		c.Optimize = *o.Optimize
	}

	if o.Debug != nil {
		c.Debug = *o.Debug
	}

	if o.Visualize != nil {
		c.Visualize = *o.Visualize
	}

	if o.Assembler != "" {
		c.Assembler = o.Assembler
	}

	if o.ArchiveExt != "" {
		c.ArchiveExt = o.ArchiveExt
	}

	if o.OutDir != "" {
		c.OutDir = o.OutDir
	}

	return c
}

// Overrides carries the subset of Config that CLI flags may set. A nil
// bool pointer means "flag not passed", distinct from an explicit
// false.
type Overrides struct {
	Optimize   *bool
	Debug      *bool
	Visualize  *bool
	Assembler  string
	ArchiveExt string
	OutDir     string
}
