package unit

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"math"

	"gopkg.in/yaml.v3"
)

//go:embed library.yaml
var libraryYAML []byte

// Definition declares a unit. Dimensionality is optional when Quantity names a
// quantity already known to the dimensionality registry.
type Definition struct {
	Quantity       string  `yaml:"quantity" json:"quantity"`
	Dimensionality string  `yaml:"dimensionality,omitempty" json:"dimensionality,omitempty"`
	Symbol         string  `yaml:"symbol" json:"symbol"`
	Name           string  `yaml:"name" json:"name"`
	Plural         string  `yaml:"plural" json:"plural"`
	Scale          float64 `yaml:"scale" json:"scale"`
	Prefixes       bool    `yaml:"prefixes,omitempty" json:"prefixes,omitempty"`
}

// Validate checks the fields that do not need a registry.
func (d Definition) Validate() error {
	if d.Symbol == "" {
		return fmt.Errorf("unit definition: symbol is required")
	}
	if d.Quantity == "" && d.Dimensionality == "" {
		return fmt.Errorf("unit %q: quantity or dimensionality is required", d.Symbol)
	}
	if d.Scale <= 0 || math.IsInf(d.Scale, 0) || math.IsNaN(d.Scale) {
		return fmt.Errorf("unit %q: scale must be positive and finite, got %v", d.Symbol, d.Scale)
	}
	return nil
}

type libraryFile struct {
	Units []Definition `yaml:"units"`
}

// LoadLibrary decodes a YAML unit library of the form
//
//	units:
//	  - {quantity: length, symbol: m, name: meter, plural: meters, scale: 1, prefixes: true}
func LoadLibrary(r io.Reader) ([]Definition, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var lib libraryFile
	if err := dec.Decode(&lib); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("decode unit library: %w", err)
	}
	for i, def := range lib.Units {
		if err := def.Validate(); err != nil {
			return nil, fmt.Errorf("unit library entry %d: %w", i, err)
		}
	}
	return lib.Units, nil
}

// DefaultLibrary returns the embedded unit library.
func DefaultLibrary() ([]Definition, error) {
	return LoadLibrary(bytes.NewReader(libraryYAML))
}

// prefix is an SI decimal prefix.
type prefix struct {
	symbol   string
	name     string
	exponent int
}

var siPrefixes = []prefix{
	{"Y", "yotta", 24},
	{"Z", "zetta", 21},
	{"E", "exa", 18},
	{"P", "peta", 15},
	{"T", "tera", 12},
	{"G", "giga", 9},
	{"M", "mega", 6},
	{"k", "kilo", 3},
	{"h", "hecto", 2},
	{"da", "deca", 1},
	{"d", "deci", -1},
	{"c", "centi", -2},
	{"m", "milli", -3},
	{"µ", "micro", -6},
	{"n", "nano", -9},
	{"p", "pico", -12},
	{"f", "femto", -15},
	{"a", "atto", -18},
	{"z", "zepto", -21},
	{"y", "yocto", -24},
}

// prefixed returns the definitions of every SI-prefixed variant of def.
func prefixed(def Definition) []Definition {
	out := make([]Definition, 0, len(siPrefixes))
	for _, p := range siPrefixes {
		v := def
		v.Symbol = p.symbol + def.Symbol
		v.Name = p.name + def.Name
		v.Plural = p.name + def.Plural
		v.Scale = def.Scale * math.Pow10(p.exponent)
		v.Prefixes = false
		out = append(out, v)
	}
	return out
}
