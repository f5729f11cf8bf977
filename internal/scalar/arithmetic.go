package scalar

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/roach88/siquant/internal/qerr"
	"github.com/roach88/siquant/internal/unit"
)

// ComplexPart selects a component of a complex value.
type ComplexPart int

const (
	RealPart ComplexPart = iota
	ImaginaryPart
	MagnitudePart
	ArgumentPart
)

func (p ComplexPart) String() string {
	switch p {
	case RealPart:
		return "real"
	case ImaginaryPart:
		return "imaginary"
	case MagnitudePart:
		return "magnitude"
	case ArgumentPart:
		return "argument"
	default:
		return fmt.Sprintf("ComplexPart(%d)", int(p))
	}
}

// ParseComplexPart is the inverse of String.
func ParseComplexPart(s string) (ComplexPart, error) {
	for p := RealPart; p <= ArgumentPart; p++ {
		if p.String() == s {
			return p, nil
		}
	}
	return 0, qerr.Malformed(s, "unknown complex part")
}

// Add returns a+b in a's unit. b is converted into a's unit first.
func Add(a, b Scalar) (Scalar, error) {
	v, err := sum(a, b, 1)
	if err != nil {
		return Scalar{}, err
	}
	return settle(a.unit, BestElementType(a.typ, b.typ), v), nil
}

// Subtract returns a-b in a's unit.
func Subtract(a, b Scalar) (Scalar, error) {
	v, err := sum(a, b, -1)
	if err != nil {
		return Scalar{}, err
	}
	return settle(a.unit, BestElementType(a.typ, b.typ), v), nil
}

func sum(a, b Scalar, sign float64) (complex128, error) {
	da, db := a.unit.Dimensionality(), b.unit.Dimensionality()
	if !da.SameReduced(db) {
		return 0, qerr.Incompatible(da.Symbol(), db.Symbol())
	}
	bv, err := b.ValueInUnit(a.unit)
	if err != nil {
		return 0, err
	}
	return a.value() + complex(sign, 0)*bv, nil
}

// Multiply returns a*b with the unit reduced.
func Multiply(a, b Scalar) (Scalar, error) {
	return product(a, b, a.unit.Registry().Multiply)
}

// MultiplyWithoutReducing returns a*b keeping every unit symbol, so an angle
// times a length stays rad•m.
func MultiplyWithoutReducing(a, b Scalar) (Scalar, error) {
	return product(a, b, a.unit.Registry().MultiplyWithoutReducing)
}

type unitOp func(a, b *unit.Unit) (*unit.Unit, float64, error)

func product(a, b Scalar, op unitOp) (Scalar, error) {
	u, m, err := op(a.unit, b.unit)
	if err != nil {
		return Scalar{}, err
	}
	v := a.value() * b.value() * complex(m, 0)
	return settle(u, BestElementType(a.typ, b.typ), v), nil
}

// Divide returns a/b with the unit reduced. b must not be exactly zero.
func Divide(a, b Scalar) (Scalar, error) {
	return quotient(a, b, a.unit.Registry().Divide)
}

// DivideWithoutReducing returns a/b keeping every unit symbol, so m/m stays
// m/m.
func DivideWithoutReducing(a, b Scalar) (Scalar, error) {
	return quotient(a, b, a.unit.Registry().DivideWithoutReducing)
}

func quotient(a, b Scalar, op unitOp) (Scalar, error) {
	if b.IsZero() {
		return Scalar{}, qerr.DivisionByZero()
	}
	u, m, err := op(a.unit, b.unit)
	if err != nil {
		return Scalar{}, err
	}
	v := a.value() / b.value() * complex(m, 0)
	return settle(u, BestElementType(a.typ, b.typ), v), nil
}

// MultiplyByDimensionlessReal scales the value by c, keeping unit and type.
func MultiplyByDimensionlessReal(s Scalar, c float64) Scalar {
	return settle(s.unit, s.typ, s.value()*complex(c, 0))
}

// MultiplyByDimensionlessComplex scales the value by c, keeping the unit. A
// real scalar becomes complex when the product has an imaginary part.
func MultiplyByDimensionlessComplex(s Scalar, c complex128) Scalar {
	return settle(s.unit, s.typ, s.value()*c)
}

// Power raises s to p with the unit reduced. Integer powers are computed by
// repeated squaring; other powers use the principal complex power.
func Power(s Scalar, p float64) (Scalar, error) {
	return power(s, p, s.unit.Registry().Power)
}

// PowerWithoutReducing raises s to p keeping the unit's symbols.
func PowerWithoutReducing(s Scalar, p float64) (Scalar, error) {
	return power(s, p, s.unit.Registry().PowerWithoutReducing)
}

func power(s Scalar, p float64, op func(*unit.Unit, float64) (*unit.Unit, float64, error)) (Scalar, error) {
	u, m, err := op(s.unit, p)
	if err != nil {
		return Scalar{}, err
	}
	v, err := raise(s.value(), p)
	if err != nil {
		return Scalar{}, err
	}
	return settleFinite(u, s, v*complex(m, 0))
}

// NthRoot takes the nth root of s with the unit reduced. Square roots use the
// square root primitive directly.
func NthRoot(s Scalar, n int) (Scalar, error) {
	u, m, err := s.unit.Registry().NthRoot(s.unit, n)
	if err != nil {
		return Scalar{}, err
	}
	x := s.value()
	var v complex128
	switch {
	case n == 2 && imag(x) == 0 && real(x) >= 0:
		v = complex(math.Sqrt(real(x)), 0)
	case n == 2:
		v = cmplx.Sqrt(x)
	default:
		v, err = raise(x, 1/float64(n))
		if err != nil {
			return Scalar{}, err
		}
	}
	return settleFinite(u, s, v*complex(m, 0))
}

// settleFinite stores v at the width of s and fails when a finite s yields a
// result that does not fit, including one that only overflows once narrowed.
func settleFinite(u *unit.Unit, s Scalar, v complex128) (Scalar, error) {
	res := settle(u, s.typ, v)
	if isFinite(s.value()) && !isFinite(res.value()) {
		return Scalar{}, qerr.Overflow("Power overflow.")
	}
	return res, nil
}

// raise computes x^p, using repeated squaring for integer p.
func raise(x complex128, p float64) (complex128, error) {
	var v complex128
	switch {
	case p == math.Trunc(p) && math.Abs(p) <= math.MaxInt32:
		n := int(p)
		if n < 0 && x == 0 {
			return 0, qerr.DivisionByZero()
		}
		if imag(x) == 0 {
			v = complex(integerPow(real(x), n), 0)
		} else {
			v = integerPow(x, n)
		}
	case imag(x) == 0 && real(x) >= 0:
		v = complex(math.Pow(real(x), p), 0)
	default:
		v = cmplx.Pow(x, complex(p, 0))
	}
	if isFinite(x) && !isFinite(v) {
		return 0, qerr.Overflow("Power overflow.")
	}
	return v, nil
}

// integerPow computes x^n by repeated squaring.
func integerPow[T float64 | complex128](x T, n int) T {
	if n < 0 {
		return 1 / integerPow(x, -n)
	}
	result := T(1)
	for n > 0 {
		if n&1 == 1 {
			result *= x
		}
		x *= x
		n >>= 1
	}
	return result
}

// Abs returns |s|. The magnitude of a complex value is stored in the real type
// of the same width.
func Abs(s Scalar) Scalar {
	if s.typ.IsComplex() {
		return narrow(s.unit, s.typ.RealOf(), complex(cmplx.Abs(s.value()), 0))
	}
	return narrow(s.unit, s.typ, complex(math.Abs(s.re), 0))
}

// Conjugate returns the complex conjugate of s.
func Conjugate(s Scalar) Scalar {
	return narrow(s.unit, s.typ, cmplx.Conj(s.value()))
}

// TakeComplexPart extracts one component as a real scalar of the same width.
// The argument is expressed in radians; the other parts keep s's unit.
func TakeComplexPart(s Scalar, part ComplexPart) (Scalar, error) {
	x := s.value()
	typ := s.typ.RealOf()
	switch part {
	case RealPart:
		return narrow(s.unit, typ, complex(real(x), 0)), nil
	case ImaginaryPart:
		return narrow(s.unit, typ, complex(imag(x), 0)), nil
	case MagnitudePart:
		return narrow(s.unit, typ, complex(cmplx.Abs(x), 0)), nil
	case ArgumentPart:
		rad, err := s.unit.Registry().Parse("rad")
		if err != nil {
			return Scalar{}, err
		}
		return narrow(rad, typ, complex(cmplx.Phase(x), 0)), nil
	default:
		return Scalar{}, qerr.Malformed(part.String(), "unknown complex part")
	}
}

// ZeroPart clears one component: the real or imaginary part, the whole value
// for the magnitude, or the phase for the argument.
func ZeroPart(s Scalar, part ComplexPart) (Scalar, error) {
	x := s.value()
	switch part {
	case RealPart:
		x = complex(0, imag(x))
	case ImaginaryPart:
		x = complex(real(x), 0)
	case MagnitudePart:
		x = 0
	case ArgumentPart:
		x = complex(cmplx.Abs(x), 0)
	default:
		return Scalar{}, qerr.Malformed(part.String(), "unknown complex part")
	}
	return narrow(s.unit, s.typ, x), nil
}

// ReduceUnit re-expresses s in its reduced unit, so 1 (m•s)/s becomes 1 m.
func ReduceUnit(s Scalar) (Scalar, error) {
	u, m, err := s.unit.Registry().Reduce(s.unit)
	if err != nil {
		return Scalar{}, err
	}
	return settle(u, s.typ, s.value()*complex(m, 0)), nil
}

// ConvertToUnit re-expresses s in u.
func ConvertToUnit(s Scalar, u *unit.Unit) (Scalar, error) {
	v, err := s.ValueInUnit(u)
	if err != nil {
		return Scalar{}, err
	}
	return settle(u, s.typ, v), nil
}

// ConvertToCoherentUnit re-expresses s in the coherent SI unit of its
// dimensionality.
func ConvertToCoherentUnit(s Scalar) (Scalar, error) {
	u, err := s.unit.Registry().CoherentUnit(s.unit.Dimensionality())
	if err != nil {
		return Scalar{}, err
	}
	return ConvertToUnit(s, u)
}

// Add adds b into m in place. m keeps its unit and element type unless the
// sum has an imaginary part m cannot hold.
func (m *MutableScalar) Add(b Scalar) error {
	v, err := sum(m.Scalar, b, 1)
	if err != nil {
		return err
	}
	m.Scalar = settle(m.unit, m.typ, v)
	return nil
}

// Subtract subtracts b from m in place. See Add.
func (m *MutableScalar) Subtract(b Scalar) error {
	v, err := sum(m.Scalar, b, -1)
	if err != nil {
		return err
	}
	m.Scalar = settle(m.unit, m.typ, v)
	return nil
}

// Multiply multiplies m by b in place with the unit reduced.
func (m *MutableScalar) Multiply(b Scalar) error {
	return m.apply(Multiply(m.Scalar, b))
}

// MultiplyWithoutReducing multiplies m by b in place keeping unit symbols.
func (m *MutableScalar) MultiplyWithoutReducing(b Scalar) error {
	return m.apply(MultiplyWithoutReducing(m.Scalar, b))
}

// Divide divides m by b in place with the unit reduced.
func (m *MutableScalar) Divide(b Scalar) error {
	return m.apply(Divide(m.Scalar, b))
}

// DivideWithoutReducing divides m by b in place keeping unit symbols.
func (m *MutableScalar) DivideWithoutReducing(b Scalar) error {
	return m.apply(DivideWithoutReducing(m.Scalar, b))
}

// MultiplyByDimensionlessReal scales m by c in place.
func (m *MutableScalar) MultiplyByDimensionlessReal(c float64) {
	m.Scalar = MultiplyByDimensionlessReal(m.Scalar, c)
}

// MultiplyByDimensionlessComplex scales m by c in place.
func (m *MutableScalar) MultiplyByDimensionlessComplex(c complex128) {
	m.Scalar = MultiplyByDimensionlessComplex(m.Scalar, c)
}

// Power raises m to p in place with the unit reduced.
func (m *MutableScalar) Power(p float64) error {
	return m.apply(Power(m.Scalar, p))
}

// PowerWithoutReducing raises m to p in place keeping unit symbols.
func (m *MutableScalar) PowerWithoutReducing(p float64) error {
	return m.apply(PowerWithoutReducing(m.Scalar, p))
}

// NthRoot takes the nth root of m in place.
func (m *MutableScalar) NthRoot(n int) error {
	return m.apply(NthRoot(m.Scalar, n))
}

// Abs replaces m with its absolute value.
func (m *MutableScalar) Abs() { m.Scalar = Abs(m.Scalar) }

// Conjugate replaces m with its complex conjugate.
func (m *MutableScalar) Conjugate() { m.Scalar = Conjugate(m.Scalar) }

// TakeComplexPart replaces m with one of its components.
func (m *MutableScalar) TakeComplexPart(part ComplexPart) error {
	return m.apply(TakeComplexPart(m.Scalar, part))
}

// ZeroPart clears one component of m.
func (m *MutableScalar) ZeroPart(part ComplexPart) error {
	return m.apply(ZeroPart(m.Scalar, part))
}

// ReduceUnit re-expresses m in its reduced unit.
func (m *MutableScalar) ReduceUnit() error {
	return m.apply(ReduceUnit(m.Scalar))
}

// ConvertToUnit re-expresses m in u.
func (m *MutableScalar) ConvertToUnit(u *unit.Unit) error {
	return m.apply(ConvertToUnit(m.Scalar, u))
}

// ConvertToCoherentUnit re-expresses m in its coherent SI unit.
func (m *MutableScalar) ConvertToCoherentUnit() error {
	return m.apply(ConvertToCoherentUnit(m.Scalar))
}

// apply stores s when err is nil. m is left untouched on error.
func (m *MutableScalar) apply(s Scalar, err error) error {
	if err != nil {
		return err
	}
	m.Scalar = s
	return nil
}
