// Package config loads and saves phyx settings from a TOML file.
package config

import (
	"math/big"
	"os"
	"path/filepath"
	"unicode"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"

	"github.com/zephyrtronium/phyxcalc"
	"github.com/zephyrtronium/phyxcalc/internal/format"
)

// Config is the full configuration.
type Config struct {
	Calc     Calc        `toml:"calc"`
	Output   Output      `toml:"output"`
	Units    []UnitDef   `toml:"units,omitempty"`
	Prefixes []PrefixDef `toml:"prefixes,omitempty"`
}

// Calc holds evaluation settings.
type Calc struct {
	// Precision is the precision of real arithmetic in bits.
	Precision uint `toml:"precision"`
	// Fractions evaluates numeric literals as exact fractions.
	Fractions bool `toml:"fractions"`
	// Hex accepts 0x literals.
	Hex bool `toml:"hex"`
}

// Output holds display settings.
type Output struct {
	Format    string `toml:"format"`
	Digits    int    `toml:"digits"`
	Imaginary string `toml:"imaginary"`
	Prefixes  bool   `toml:"prefixes"`
	Hex       bool   `toml:"hex"`
}

// UnitDef declares a unit in terms of an expression, like a "unit" line.
type UnitDef struct {
	Name       string `toml:"name"`
	Value      string `toml:"value"`
	Prefixable bool   `toml:"prefixable,omitempty"`
}

// PrefixDef declares a prefix. Factor is a decimal or a fraction like 1/1024.
type PrefixDef struct {
	Name   string `toml:"name"`
	Factor string `toml:"factor"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Calc:   Calc{Precision: 64, Fractions: true},
		Output: Output{Format: "g", Digits: 15, Imaginary: "i"},
	}
}

// DefaultPath returns the default location of the config file.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(err, "finding config directory")
	}
	return filepath.Join(dir, "phyx", "config.toml"), nil
}

// Load reads the config file at path. Settings missing from the file keep
// their defaults, and a missing file is the default configuration.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, errors.Wrapf(err, "reading %s", path)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parsing %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, errors.Wrapf(err, "invalid config %s", path)
	}
	return cfg, nil
}

// Save writes the configuration to path, creating its directory.
func (c Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "encoding config")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return errors.Wrap(err, "creating config directory")
	}
	return errors.Wrapf(os.WriteFile(path, data, 0o600), "writing %s", path)
}

// Validate checks settings that the file format does not constrain.
func (c Config) Validate() error {
	if c.Calc.Precision < 2 || c.Calc.Precision > 1<<16 {
		return errors.Errorf("precision %d out of range [2, 65536]", c.Calc.Precision)
	}
	switch c.Output.Format {
	case "g", "f", "e":
	default:
		return errors.Errorf("unknown output format %q", c.Output.Format)
	}
	if c.Output.Digits < -1 {
		return errors.Errorf("digits %d must be -1 or more", c.Output.Digits)
	}
	for _, u := range c.Units {
		if !name(u.Name) {
			return errors.Errorf("invalid unit name %q", u.Name)
		}
	}
	for _, p := range c.Prefixes {
		if !name(p.Name) {
			return errors.Errorf("invalid prefix name %q", p.Name)
		}
	}
	return nil
}

// name reports whether s is spelled like an identifier.
func name(s string) bool {
	for i, r := range s {
		switch {
		case r == '_', r == '°', unicode.IsLetter(r):
		case i > 0 && (r == '\'' || unicode.IsDigit(r)):
		default:
			return false
		}
	}
	return s != ""
}

// Apply adds the configured prefixes and units to a registry. Units are
// evaluated in order, so each may use the ones before it.
func (c Config) Apply(reg *phyxcalc.Registry) error {
	for _, p := range c.Prefixes {
		q, ok := new(big.Rat).SetString(p.Factor)
		if !ok {
			return errors.Errorf("prefix %s: invalid factor %q", p.Name, p.Factor)
		}
		if err := reg.AddPrefix(p.Name, q); err != nil {
			return errors.Wrapf(err, "prefix %s", p.Name)
		}
	}
	for _, d := range c.Units {
		v, err := phyxcalc.Eval(d.Value, c.ContextOptions(phyxcalc.WithRegistry(reg))...)
		if err != nil {
			return errors.Wrapf(err, "unit %s", d.Name)
		}
		u, err := phyxcalc.DeriveUnit(d.Name, v, d.Prefixable)
		if err != nil {
			return errors.Wrapf(err, "unit %s", d.Name)
		}
		reg.AddUnit(d.Name, u)
	}
	return nil
}

// ContextOptions returns the evaluation options the configuration selects,
// followed by extra.
func (c Config) ContextOptions(extra ...phyxcalc.ContextOption) []phyxcalc.ContextOption {
	opts := []phyxcalc.ContextOption{phyxcalc.Prec(c.Calc.Precision), phyxcalc.Fractions(c.Calc.Fractions)}
	return append(opts, extra...)
}

// ParseOptions returns the parser options the configuration selects.
func (c Config) ParseOptions() []phyxcalc.ParseOption {
	return []phyxcalc.ParseOption{phyxcalc.AllowHex(c.Calc.Hex)}
}

// FormatOptions returns the display options. reg supplies prefixes.
func (c Config) FormatOptions(reg *phyxcalc.Registry) format.Options {
	o := format.Default()
	if c.Output.Format != "" {
		o.Format = c.Output.Format[0]
	}
	o.Digits = c.Output.Digits
	if c.Output.Imaginary != "" {
		o.Imaginary = c.Output.Imaginary
	}
	o.Fractions = c.Calc.Fractions
	o.Hex = c.Output.Hex
	o.Prefixes = c.Output.Prefixes
	o.Registry = reg
	return o
}
