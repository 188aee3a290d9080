package phyxcalc

import (
	"math"
	"math/big"
	"sort"
	"sync"
	"unicode/utf8"
)

// Prefix is a multiplicative prefix like k or µ.
type Prefix struct {
	Name   string
	Factor *big.Rat
}

// Registry holds named units and prefixes. It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	units    map[string]Unit
	prefixes map[string]Prefix
}

// NewRegistry creates a registry seeded with SI base and derived units, common
// non-SI units, and the SI prefixes.
func NewRegistry() *Registry {
	r := &Registry{
		units:    make(map[string]Unit, len(seedUnits)),
		prefixes: make(map[string]Prefix, len(seedPrefixes)),
	}
	for _, s := range seedUnits {
		r.units[s.name] = s.unit()
	}
	for _, p := range seedPrefixes {
		q, _ := new(big.Rat).SetString(p.factor)
		r.prefixes[p.name] = Prefix{Name: p.name, Factor: q}
	}
	return r
}

// AddUnit adds or replaces a unit under name.
func (r *Registry) AddUnit(name string, u Unit) {
	u = u.Rename(name)
	r.mu.Lock()
	r.units[name] = u
	r.mu.Unlock()
}

// AddPrefix adds or replaces a prefix. The factor must be positive.
func (r *Registry) AddPrefix(name string, factor *big.Rat) error {
	if factor.Sign() <= 0 {
		return ErrCalculation
	}
	r.mu.Lock()
	r.prefixes[name] = Prefix{Name: name, Factor: new(big.Rat).Set(factor)}
	r.mu.Unlock()
	return nil
}

// Unit gets a unit by its exact name.
func (r *Registry) Unit(name string) (Unit, bool) {
	r.mu.RLock()
	u, ok := r.units[name]
	r.mu.RUnlock()
	return u, ok
}

// Prefix gets a prefix by name.
func (r *Registry) Prefix(name string) (Prefix, bool) {
	r.mu.RLock()
	p, ok := r.prefixes[name]
	r.mu.RUnlock()
	return p, ok
}

// Units returns the sorted names of all units.
func (r *Registry) Units() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v := make([]string, 0, len(r.units))
	for k := range r.units {
		v = append(v, k)
	}
	sort.Strings(v)
	return v
}

// Prefixes returns all prefixes, ordered from largest factor to smallest.
func (r *Registry) Prefixes() []Prefix {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v := make([]Prefix, 0, len(r.prefixes))
	for _, p := range r.prefixes {
		v = append(v, p)
	}
	sort.Slice(v, func(i, j int) bool {
		if c := v[i].Factor.Cmp(v[j].Factor); c != 0 {
			return c > 0
		}
		return v[i].Name < v[j].Name
	})
	return v
}

// ApplyPrefix scales a unit by a prefix. The unit must be prefixable and must
// not already carry a prefix.
func ApplyPrefix(p Prefix, u Unit) (Unit, error) {
	if !u.prefixable || u.prefixed {
		return Unit{}, ErrPrefixMismatch
	}
	v := u.Rename(p.Name + u.String())
	if s, ok := u.ExactScale(); ok {
		s.Mul(s, p.Factor)
		v.exact = s
		v.scale, _ = s.Float64()
	} else {
		f, _ := p.Factor.Float64()
		v.scale = u.Scale() * f
	}
	v.prefixable = false
	v.prefixed = true
	return v, nil
}

// Lookup resolves a unit name, splitting it into a prefix and a unit when
// there is no exact match. find resolves plain unit names; if it is nil, the
// registry's own units are used. Among the possible splits, the longest unit
// name wins, so "min" is a minute rather than a milli-inch. If some split
// names a real prefix and unit but the unit cannot take the prefix, the error
// is ErrPrefixMismatch; otherwise it is ErrUnknownSymbol.
func (r *Registry) Lookup(name string, find func(string) (Unit, bool)) (Unit, error) {
	if find == nil {
		find = r.Unit
	}
	if u, ok := find(name); ok {
		return u, nil
	}
	mismatch := false
	for i := 0; i < len(name); {
		_, sz := utf8.DecodeRuneInString(name[i:])
		i += sz
		if i >= len(name) {
			break
		}
		p, ok := r.Prefix(name[:i])
		if !ok {
			continue
		}
		u, ok := find(name[i:])
		if !ok {
			continue
		}
		v, err := ApplyPrefix(p, u)
		if err != nil {
			mismatch = true
			continue
		}
		return v, nil
	}
	if mismatch {
		return Unit{}, ErrPrefixMismatch
	}
	return Unit{}, ErrUnknownSymbol
}

type seedUnit struct {
	name string
	dim  Dimension
	// scale is an exact decimal or fraction string. If it is empty, fscale
	// is used instead.
	scale      string
	fscale     float64
	offset     string
	prefixable bool
	prefixed   bool
}

func (s seedUnit) unit() Unit {
	var u Unit
	if s.scale != "" {
		q, ok := new(big.Rat).SetString(s.scale)
		if !ok {
			panic("phyxcalc: bad seed scale for " + s.name)
		}
		u = NewUnit(s.name, s.dim, q)
	} else {
		u = NewUnitFloat(s.name, s.dim, s.fscale)
	}
	if s.offset != "" {
		q, _ := new(big.Rat).SetString(s.offset)
		u = u.WithOffset(q)
	}
	u.prefixable = s.prefixable
	u.prefixed = s.prefixed
	return u
}

var (
	dimLength   = Dim(1)
	dimMass     = Dim(0, 1)
	dimTime     = Dim(0, 0, 1)
	dimCurrent  = Dim(0, 0, 0, 1)
	dimTemp     = Dim(0, 0, 0, 0, 1)
	dimAmount   = Dim(0, 0, 0, 0, 0, 1)
	dimLuminous = Dim(0, 0, 0, 0, 0, 0, 1)
	dimAngle    = Dim(0, 0, 0, 0, 0, 0, 0, 1)

	dimFreq     = Dim(0, 0, -1)
	dimForce    = Dim(1, 1, -2)
	dimPressure = Dim(-1, 1, -2)
	dimEnergy   = Dim(2, 1, -2)
	dimPower    = Dim(2, 1, -3)
	dimCharge   = Dim(0, 0, 1, 1)
	dimVoltage  = Dim(2, 1, -3, -1)
	dimOhm      = Dim(2, 1, -3, -2)
	dimFarad    = Dim(-2, -1, 4, 2)
	dimHenry    = Dim(2, 1, -2, -2)
	dimTesla    = Dim(0, 1, -2, -1)
	dimWeber    = Dim(2, 1, -2, -1)
	dimVolume   = Dim(3)
)

var seedUnits = []seedUnit{
	// base units
	{name: "m", dim: dimLength, scale: "1", prefixable: true},
	{name: "kg", dim: dimMass, scale: "1", prefixed: true},
	{name: "g", dim: dimMass, scale: "1/1000", prefixable: true},
	{name: "s", dim: dimTime, scale: "1", prefixable: true},
	{name: "A", dim: dimCurrent, scale: "1", prefixable: true},
	{name: "K", dim: dimTemp, scale: "1", prefixable: true},
	{name: "mol", dim: dimAmount, scale: "1", prefixable: true},
	{name: "cd", dim: dimLuminous, scale: "1", prefixable: true},
	{name: "rad", dim: dimAngle, scale: "1", prefixable: true},

	// derived units
	{name: "Hz", dim: dimFreq, scale: "1", prefixable: true},
	{name: "N", dim: dimForce, scale: "1", prefixable: true},
	{name: "Pa", dim: dimPressure, scale: "1", prefixable: true},
	{name: "J", dim: dimEnergy, scale: "1", prefixable: true},
	{name: "W", dim: dimPower, scale: "1", prefixable: true},
	{name: "C", dim: dimCharge, scale: "1", prefixable: true},
	{name: "V", dim: dimVoltage, scale: "1", prefixable: true},
	{name: "Ohm", dim: dimOhm, scale: "1", prefixable: true},
	{name: "Ω", dim: dimOhm, scale: "1", prefixable: true},
	{name: "F", dim: dimFarad, scale: "1", prefixable: true},
	{name: "H", dim: dimHenry, scale: "1", prefixable: true},
	{name: "T", dim: dimTesla, scale: "1", prefixable: true},
	{name: "Wb", dim: dimWeber, scale: "1", prefixable: true},
	{name: "L", dim: dimVolume, scale: "1/1000", prefixable: true},
	{name: "l", dim: dimVolume, scale: "1/1000", prefixable: true},
	{name: "eV", dim: dimEnergy, scale: "1.602176634e-19", prefixable: true},
	{name: "bar", dim: dimPressure, scale: "100000", prefixable: true},
	{name: "t", dim: dimMass, scale: "1000", prefixable: true},
	{name: "cal", dim: dimEnergy, scale: "4.184", prefixable: true},

	// other units
	{name: "min", dim: dimTime, scale: "60"},
	{name: "h", dim: dimTime, scale: "3600"},
	{name: "d", dim: dimTime, scale: "86400"},
	{name: "in", dim: dimLength, scale: "0.0254"},
	{name: "ft", dim: dimLength, scale: "0.3048"},
	{name: "yd", dim: dimLength, scale: "0.9144"},
	{name: "mi", dim: dimLength, scale: "1609.344"},
	{name: "lb", dim: dimMass, scale: "0.45359237"},
	{name: "oz", dim: dimMass, scale: "0.028349523125"},
	{name: "atm", dim: dimPressure, scale: "101325"},
	{name: "°", dim: dimAngle, fscale: math.Pi / 180},
	{name: "deg", dim: dimAngle, fscale: math.Pi / 180},
	{name: "%", scale: "1/100"},
	{name: "°C", dim: dimTemp, scale: "1", offset: "273.15"},
	{name: "°F", dim: dimTemp, scale: "5/9", offset: "45967/180"},
}

var seedPrefixes = []struct {
	name   string
	factor string
}{
	{"Y", "1e24"},
	{"Z", "1e21"},
	{"E", "1e18"},
	{"P", "1e15"},
	{"T", "1e12"},
	{"G", "1e9"},
	{"M", "1e6"},
	{"k", "1e3"},
	{"h", "1e2"},
	{"da", "1e1"},
	{"d", "1e-1"},
	{"c", "1e-2"},
	{"m", "1e-3"},
	{"µ", "1e-6"},
	{"u", "1e-6"},
	{"n", "1e-9"},
	{"p", "1e-12"},
	{"f", "1e-15"},
	{"a", "1e-18"},
	{"z", "1e-21"},
	{"y", "1e-24"},
}
