// Package unit implements unit expressions, unit algebra and the unit registry.
//
// A Unit is an immutable (symbol, dimensionality, scale) triple interned by its
// canonical symbol. Units are created by a Registry, either from the unit
// library when the registry is built or lazily the first time an expression is
// parsed, and live as long as the registry. Two expressions with the same
// canonical key resolve to the same *Unit.
//
// Algebra comes in reducing and non-reducing forms. The non-reducing forms
// never cancel symbols, so "m/m" (a length ratio) stays distinct from the
// dimensionless "1" exactly as L/L stays distinct from 1 in the dimensionality
// model.
package unit

import (
	"math"

	"github.com/roach88/siquant/internal/dimensionality"
	"github.com/roach88/siquant/internal/qerr"
)

// scaleTolerance is the relative tolerance used when comparing unit scales.
const scaleTolerance = 1e-12

// Unit is a registry-owned unit of measure.
type Unit struct {
	symbol   string
	name     string
	plural   string
	quantity string
	dim      dimensionality.Dimensionality
	scale    float64
	expr     Expression
	defined  bool
	reg      *Registry
}

// Symbol returns the canonical symbol, e.g. "kg•m/s^2".
func (u *Unit) Symbol() string { return u.symbol }

// Name returns the singular name, or the symbol for derived units.
func (u *Unit) Name() string {
	if u.name == "" {
		return u.symbol
	}
	return u.name
}

// PluralName returns the plural name, or the symbol for derived units.
func (u *Unit) PluralName() string {
	if u.plural == "" {
		return u.symbol
	}
	return u.plural
}

// Quantity returns the physical quantity the unit was defined for. Derived
// units have none.
func (u *Unit) Quantity() string { return u.quantity }

// Dimensionality returns the unit's (possibly unreduced) dimensionality.
func (u *Unit) Dimensionality() dimensionality.Dimensionality { return u.dim }

// ScaleToCoherentSI returns the factor converting a value in u to the coherent
// SI unit of u's dimensionality.
func (u *Unit) ScaleToCoherentSI() float64 { return u.scale }

// Expression returns the parsed canonical form of the symbol.
func (u *Unit) Expression() Expression { return u.expr }

// Defined reports whether u came from a definition rather than from algebra.
func (u *Unit) Defined() bool { return u.defined }

// Registry returns the registry that owns u.
func (u *Unit) Registry() *Registry { return u.reg }

// IsDimensionless reports whether u's reduced dimensionality is 1.
func (u *Unit) IsDimensionless() bool { return u.dim.IsDimensionless() }

// IsCoherent reports whether u has a scale of exactly 1.
func (u *Unit) IsCoherent() bool { return u.scale == 1 }

// String implements fmt.Stringer.
func (u *Unit) String() string { return u.symbol }

// ConversionFactor returns the factor f such that a value v in from equals v*f
// in to. The units must share a reduced dimensionality.
func ConversionFactor(from, to *Unit) (float64, error) {
	if !from.dim.SameReduced(to.dim) {
		return 0, qerr.Incompatible(from.dim.Symbol(), to.dim.Symbol())
	}
	if from == to {
		return 1, nil
	}
	return from.scale / to.scale, nil
}

// Equivalent reports whether a and b measure the same dimensionality at the
// same scale, ignoring symbol and name (e.g. "N" and "kg•m/s^2").
func Equivalent(a, b *Unit) bool {
	return a.dim.Equal(b.dim) && sameScale(a.scale, b.scale)
}

func sameScale(a, b float64) bool {
	if a == b {
		return true
	}
	return math.Abs(a-b) <= scaleTolerance*math.Max(math.Abs(a), math.Abs(b))
}
