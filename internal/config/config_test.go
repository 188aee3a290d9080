package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zephyrtronium/phyxcalc"
)

func TestLoadMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadPartial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[calc]
precision = 256

[output]
format = "e"
digits = 6

[[units]]
name = "furlong"
value = "220 yd"

[[prefixes]]
name = "Ki"
factor = "1024"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, uint(256), cfg.Calc.Precision)
	assert.True(t, cfg.Calc.Fractions, "unset settings keep defaults")
	assert.Equal(t, "e", cfg.Output.Format)
	assert.Equal(t, 6, cfg.Output.Digits)
	assert.Equal(t, "i", cfg.Output.Imaginary)
	require.Len(t, cfg.Units, 1)
	assert.Equal(t, UnitDef{Name: "furlong", Value: "220 yd"}, cfg.Units[0])
	require.Len(t, cfg.Prefixes, 1)
	assert.Equal(t, PrefixDef{Name: "Ki", Factor: "1024"}, cfg.Prefixes[0])
}

func TestLoadErrors(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"syntax", "[calc\nprecision = 1"},
		{"precision", "[calc]\nprecision = 1"},
		{"format", "[output]\nformat = \"x\""},
		{"digits", "[output]\ndigits = -2"},
		{"unit name", "[[units]]\nname = \"2x\"\nvalue = \"1 m\""},
		{"prefix name", "[[prefixes]]\nname = \"\"\nfactor = \"2\""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			require.NoError(t, os.WriteFile(path, []byte(c.data), 0o600))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	cfg := Default()
	cfg.Output.Prefixes = true
	cfg.Units = []UnitDef{{Name: "mph", Value: "1 mi/h"}}
	require.NoError(t, cfg.Save(path))
	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestApply(t *testing.T) {
	cfg := Default()
	cfg.Prefixes = []PrefixDef{{Name: "Ki", Factor: "1024"}}
	cfg.Units = []UnitDef{
		{Name: "B", Value: "1", Prefixable: true},
		{Name: "furlong", Value: "220 yd"},
		{Name: "fortnight", Value: "14 d"},
		{Name: "speed", Value: "1 furlong/fortnight"},
	}
	reg := phyxcalc.NewRegistry()
	require.NoError(t, cfg.Apply(reg))

	u, ok := reg.Unit("furlong")
	require.True(t, ok)
	assert.InDelta(t, 201.168, u.Scale(), 1e-9)
	assert.Equal(t, phyxcalc.Dim(1), u.Dim())
	assert.False(t, u.Prefixable())

	u, ok = reg.Unit("speed")
	require.True(t, ok)
	assert.InDelta(t, 201.168/(14*86400), u.Scale(), 1e-15)

	v, err := phyxcalc.Eval("2 KiB", phyxcalc.WithRegistry(reg))
	require.NoError(t, err)
	assert.InDelta(t, 2048, v.Num.Float64(), 0)
}

func TestApplyErrors(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
	}{
		{"factor", Config{Prefixes: []PrefixDef{{Name: "q", Factor: "x"}}}},
		{"negative factor", Config{Prefixes: []PrefixDef{{Name: "q", Factor: "-2"}}}},
		{"unknown", Config{Units: []UnitDef{{Name: "q", Value: "1 blorp"}}}},
		{"negative", Config{Units: []UnitDef{{Name: "q", Value: "-1 m"}}}},
		{"complex", Config{Units: []UnitDef{{Name: "q", Value: "sqrt(-1)"}}}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cfg := c.cfg
			cfg.Calc, cfg.Output = Default().Calc, Default().Output
			assert.Error(t, cfg.Apply(phyxcalc.NewRegistry()))
		})
	}
}

func TestFormatOptions(t *testing.T) {
	cfg := Default()
	cfg.Output = Output{Format: "f", Digits: 3, Imaginary: "j", Prefixes: true, Hex: true}
	reg := phyxcalc.NewRegistry()
	o := cfg.FormatOptions(reg)
	assert.Equal(t, byte('f'), o.Format)
	assert.Equal(t, 3, o.Digits)
	assert.Equal(t, "j", o.Imaginary)
	assert.True(t, o.Prefixes)
	assert.True(t, o.Hex)
	assert.True(t, o.Fractions)
	assert.Same(t, reg, o.Registry)
}

func TestName(t *testing.T) {
	for _, s := range []string{"m", "km2", "°C", "_x", "x'", "µs"} {
		assert.True(t, name(s), s)
	}
	for _, s := range []string{"", "2m", "a b", "m/s", "'x"} {
		assert.False(t, name(s), s)
	}
}
