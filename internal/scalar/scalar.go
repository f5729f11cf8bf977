// Package scalar implements physical quantities: a numeric value in one of
// four representations paired with a unit.
//
// Scalar is an immutable value; every operation returns a new Scalar.
// MutableScalar has the same layout and adds in-place forms of the same
// operations. Values are computed in complex128 and then stored at the width of
// the result's ElementType. A result with a non-zero imaginary part is stored
// in a complex type even when the operands were real; the only narrowing path
// is an explicit WithElementType or SetElementType.
package scalar

import (
	"math"
	"math/cmplx"
	"strconv"

	"github.com/roach88/siquant/internal/qerr"
	"github.com/roach88/siquant/internal/unit"
)

// Number is the set of Go types a Scalar can be constructed from.
type Number interface {
	float32 | float64 | complex64 | complex128
}

// Scalar is a value with a unit.
type Scalar struct {
	unit   *unit.Unit
	typ    ElementType
	re, im float64
}

// MutableScalar is a Scalar that also permits in-place operations. It must not
// be shared between goroutines without external synchronization.
type MutableScalar struct {
	Scalar
}

// New returns a Scalar holding v in u. The element type follows T.
func New[T Number](u *unit.Unit, v T) Scalar {
	switch x := any(v).(type) {
	case float32:
		return settle(u, Float32Type, complex(float64(x), 0))
	case float64:
		return settle(u, Float64Type, complex(x, 0))
	case complex64:
		return settle(u, Complex64Type, complex128(x))
	case complex128:
		return settle(u, Complex128Type, x)
	}
	panic("scalar: unsupported number type")
}

// NewFloat64 returns a float64 Scalar.
func NewFloat64(u *unit.Unit, v float64) Scalar {
	return New(u, v)
}

// NewComplex128 returns a complex128 Scalar.
func NewComplex128(u *unit.Unit, v complex128) Scalar {
	return New(u, v)
}

// Parse reads a numeric literal and a unit expression. Real literals produce a
// float64 Scalar; complex literals such as "3+4i" produce a complex128 one.
func Parse(value, unitExpr string, reg *unit.Registry) (Scalar, error) {
	u, err := reg.Parse(unitExpr)
	if err != nil {
		return Scalar{}, err
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return NewFloat64(u, f), nil
	}
	c, err := strconv.ParseComplex(value, 128)
	if err != nil {
		return Scalar{}, qerr.Malformed(value, "invalid numeric value")
	}
	return NewComplex128(u, c), nil
}

// settle stores v at typ's width, widening a real type to its complex
// counterpart when v has an imaginary part.
func settle(u *unit.Unit, typ ElementType, v complex128) Scalar {
	if !typ.IsComplex() && imag(v) != 0 {
		typ = typ.ComplexOf()
	}
	return narrow(u, typ, v)
}

// narrow stores v at typ's width, discarding whatever does not fit.
func narrow(u *unit.Unit, typ ElementType, v complex128) Scalar {
	re, im := real(v), imag(v)
	switch typ {
	case Float32Type:
		re, im = float64(float32(re)), 0
	case Float64Type:
		im = 0
	case Complex64Type:
		re, im = float64(float32(re)), float64(float32(im))
	}
	return Scalar{unit: u, typ: typ, re: re, im: im}
}

// Unit returns the scalar's unit.
func (s Scalar) Unit() *unit.Unit { return s.unit }

// ElementType returns the current representation.
func (s Scalar) ElementType() ElementType { return s.typ }

// Float32Value returns the real part as a float32.
func (s Scalar) Float32Value() float32 { return float32(s.re) }

// Float64Value returns the real part as a float64.
func (s Scalar) Float64Value() float64 { return s.re }

// Complex64Value returns the value as a complex64.
func (s Scalar) Complex64Value() complex64 { return complex64(s.value()) }

// Complex128Value returns the value as a complex128.
func (s Scalar) Complex128Value() complex128 { return s.value() }

func (s Scalar) value() complex128 { return complex(s.re, s.im) }

// ValueInUnit returns the value expressed in u.
func (s Scalar) ValueInUnit(u *unit.Unit) (complex128, error) {
	f, err := unit.ConversionFactor(s.unit, u)
	if err != nil {
		return 0, err
	}
	return s.value() * complex(f, 0), nil
}

// WithElementType returns s stored as t. Narrowing is lossy: a complex to real
// conversion drops the imaginary part and 64 to 32 bits rounds.
func (s Scalar) WithElementType(t ElementType) Scalar {
	return narrow(s.unit, t, s.value())
}

// Copy returns s. Scalars are values, so this only reads well at call sites.
func (s Scalar) Copy() Scalar { return s }

// MutableCopy returns a mutable copy of s.
func (s Scalar) MutableCopy() *MutableScalar {
	return &MutableScalar{Scalar: s}
}

// IsReal reports whether the imaginary part is zero.
func (s Scalar) IsReal() bool { return s.im == 0 }

// IsImaginary reports whether the value is purely imaginary and non-zero.
func (s Scalar) IsImaginary() bool { return s.re == 0 && s.im != 0 }

// IsComplex reports whether the representation is complex.
func (s Scalar) IsComplex() bool { return s.typ.IsComplex() }

// IsZero reports whether both parts are exactly zero.
func (s Scalar) IsZero() bool { return s.re == 0 && s.im == 0 }

// IsInfinite reports whether either part is infinite.
func (s Scalar) IsInfinite() bool { return math.IsInf(s.re, 0) || math.IsInf(s.im, 0) }

// IsNaN reports whether either part is NaN.
func (s Scalar) IsNaN() bool { return math.IsNaN(s.re) || math.IsNaN(s.im) }

// String renders the value followed by the unit symbol, e.g. "5 ms" or
// "(3+4i) V". Dimensionless values carry no unit.
func (s Scalar) String() string {
	var num string
	if s.typ.IsComplex() {
		num = strconv.FormatComplex(s.value(), 'g', -1, s.typ.Width()*2)
	} else {
		num = strconv.FormatFloat(s.re, 'g', -1, s.typ.Width())
	}
	if s.unit == nil || s.unit.Symbol() == "1" {
		return num
	}
	return num + " " + s.unit.Symbol()
}

// SetFloat32 replaces the value, switching to Float32Type.
func (m *MutableScalar) SetFloat32(v float32) { m.Scalar = New(m.unit, v) }

// SetFloat64 replaces the value, switching to Float64Type.
func (m *MutableScalar) SetFloat64(v float64) { m.Scalar = New(m.unit, v) }

// SetComplex64 replaces the value, switching to Complex64Type.
func (m *MutableScalar) SetComplex64(v complex64) { m.Scalar = New(m.unit, v) }

// SetComplex128 replaces the value, switching to Complex128Type.
func (m *MutableScalar) SetComplex128(v complex128) { m.Scalar = New(m.unit, v) }

// SetUnit replaces the unit without converting the value.
func (m *MutableScalar) SetUnit(u *unit.Unit) { m.unit = u }

// SetElementType converts the stored value to t in place. See WithElementType.
func (m *MutableScalar) SetElementType(t ElementType) {
	m.Scalar = m.WithElementType(t)
}

// Immutable returns the current value as a Scalar.
func (m *MutableScalar) Immutable() Scalar { return m.Scalar }

func isFinite(v complex128) bool {
	return !cmplx.IsInf(v) && !cmplx.IsNaN(v)
}
