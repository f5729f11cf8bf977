// Package dimensionality models the exponents of the seven SI base dimensions.
//
// A Dimensionality keeps a numerator and a denominator exponent per base
// dimension, so the unreduced quotient L/L (plane angle) stays distinct from the
// dimensionless 1 until a caller explicitly reduces it. Values are small,
// comparable and immutable; every operation returns a new value.
package dimensionality

import (
	"math"

	"github.com/roach88/siquant/internal/qerr"
)

// Base dimension slot indexes.
const (
	Length = iota
	Mass
	Time
	Current
	Temperature
	Amount
	LuminousIntensity

	// NumBase is the number of base dimensions.
	NumBase
)

// maxExponent is the largest exponent a slot can hold.
const maxExponent = math.MaxUint8

const nonIntegerPowerMessage = "Can't raise physical dimensionality to a non-integer power."

// Dimensionality is the exponent vector of a physical quantity.
//
// The zero value is the dimensionless dimensionality. Two values are == iff all
// fourteen exponents match, which is also what Equal reports.
type Dimensionality struct {
	num [NumBase]uint8
	den [NumBase]uint8
}

// New creates a Dimensionality from explicit numerator and denominator exponents.
// The exponents are kept as given; no reduction is applied.
func New(num, den [NumBase]uint8) Dimensionality {
	return Dimensionality{num: num, den: den}
}

// Base returns the dimensionality of a single base dimension, e.g. Base(Length) is L.
func Base(index int) Dimensionality {
	var d Dimensionality
	if index >= 0 && index < NumBase {
		d.num[index] = 1
	}
	return d
}

// Dimensionless returns the dimensionality with every exponent zero.
func Dimensionless() Dimensionality {
	return Dimensionality{}
}

// Numerator returns the numerator exponent of slot i.
func (d Dimensionality) Numerator(i int) uint8 { return d.num[i] }

// Denominator returns the denominator exponent of slot i.
func (d Dimensionality) Denominator(i int) uint8 { return d.den[i] }

// Reduced returns the net exponent (numerator minus denominator) of slot i.
func (d Dimensionality) Reduced(i int) int {
	return int(d.num[i]) - int(d.den[i])
}

// IsDimensionless reports whether every net exponent is zero. L/L is dimensionless.
func (d Dimensionality) IsDimensionless() bool {
	for i := 0; i < NumBase; i++ {
		if d.Reduced(i) != 0 {
			return false
		}
	}
	return true
}

// IsReduced reports whether no slot has both a numerator and a denominator exponent.
func (d Dimensionality) IsReduced() bool {
	for i := 0; i < NumBase; i++ {
		if d.num[i] != 0 && d.den[i] != 0 {
			return false
		}
	}
	return true
}

// IsBase reports whether d is exactly one base dimension to the first power.
func (d Dimensionality) IsBase() bool {
	count := 0
	for i := 0; i < NumBase; i++ {
		if d.den[i] != 0 {
			return false
		}
		switch d.num[i] {
		case 0:
		case 1:
			count++
		default:
			return false
		}
	}
	return count == 1
}

// Equal reports whether all fourteen exponents match.
func (d Dimensionality) Equal(o Dimensionality) bool {
	return d == o
}

// SameReduced reports whether d and o have the same net exponent in every slot.
func (d Dimensionality) SameReduced(o Dimensionality) bool {
	for i := 0; i < NumBase; i++ {
		if d.Reduced(i) != o.Reduced(i) {
			return false
		}
	}
	return true
}

// Reduce cancels each slot's numerator against its denominator.
func (d Dimensionality) Reduce() Dimensionality {
	var r Dimensionality
	for i := 0; i < NumBase; i++ {
		net := d.Reduced(i)
		if net > 0 {
			r.num[i] = uint8(net)
		} else {
			r.den[i] = uint8(-net)
		}
	}
	return r
}

// MultiplyWithoutReducing adds exponents slot-wise, so L/L * L is L^2/L.
func (d Dimensionality) MultiplyWithoutReducing(o Dimensionality) (Dimensionality, error) {
	var r Dimensionality
	for i := 0; i < NumBase; i++ {
		n, ok := addExponents(d.num[i], o.num[i])
		if !ok {
			return Dimensionality{}, exponentOverflow()
		}
		m, ok := addExponents(d.den[i], o.den[i])
		if !ok {
			return Dimensionality{}, exponentOverflow()
		}
		r.num[i], r.den[i] = n, m
	}
	return r, nil
}

// Multiply is MultiplyWithoutReducing followed by Reduce.
func (d Dimensionality) Multiply(o Dimensionality) (Dimensionality, error) {
	r, err := d.MultiplyWithoutReducing(o)
	if err != nil {
		return Dimensionality{}, err
	}
	return r.Reduce(), nil
}

// DivideWithoutReducing adds o's denominator to d's numerator and o's numerator
// to d's denominator, so L / L is L/L.
func (d Dimensionality) DivideWithoutReducing(o Dimensionality) (Dimensionality, error) {
	return d.MultiplyWithoutReducing(o.swap())
}

// Divide is DivideWithoutReducing followed by Reduce.
func (d Dimensionality) Divide(o Dimensionality) (Dimensionality, error) {
	r, err := d.DivideWithoutReducing(o)
	if err != nil {
		return Dimensionality{}, err
	}
	return r.Reduce(), nil
}

// PowerWithoutReducing raises d to power p without cancelling exponents.
//
// Integer powers scale every exponent; negative powers also swap numerator and
// denominator. A non-integer power is only legal when 1/p is an integer root
// that divides every exponent.
func (d Dimensionality) PowerWithoutReducing(p float64) (Dimensionality, error) {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return Dimensionality{}, qerr.Malformed("", nonIntegerPowerMessage)
	}
	if p == math.Trunc(p) {
		return d.integerPower(int(p))
	}
	inverse := 1 / p
	root := math.Round(inverse)
	if root == 0 || math.Abs(inverse-root) > 1e-9 {
		return Dimensionality{}, qerr.Malformed("", nonIntegerPowerMessage)
	}
	r, err := d.NthRootWithoutReducing(int(math.Abs(root)))
	if err != nil {
		return Dimensionality{}, err
	}
	if root < 0 {
		r = r.swap()
	}
	return r, nil
}

// Power reduces d, raises it to power p, and returns the reduced result.
func (d Dimensionality) Power(p float64) (Dimensionality, error) {
	r, err := d.Reduce().PowerWithoutReducing(p)
	if err != nil {
		return Dimensionality{}, err
	}
	return r.Reduce(), nil
}

// NthRootWithoutReducing divides every exponent by n. Every exponent must be
// divisible by n.
func (d Dimensionality) NthRootWithoutReducing(n int) (Dimensionality, error) {
	if n <= 0 {
		return Dimensionality{}, qerr.Malformed("", "root must be a positive integer")
	}
	var r Dimensionality
	for i := 0; i < NumBase; i++ {
		if int(d.num[i])%n != 0 || int(d.den[i])%n != 0 {
			return Dimensionality{}, qerr.Malformed(d.Symbol(), nonIntegerPowerMessage)
		}
		r.num[i] = uint8(int(d.num[i]) / n)
		r.den[i] = uint8(int(d.den[i]) / n)
	}
	return r, nil
}

// NthRoot reduces d before taking the root, so (L^2/L^2) has a square root of 1.
func (d Dimensionality) NthRoot(n int) (Dimensionality, error) {
	return d.Reduce().NthRootWithoutReducing(n)
}

func (d Dimensionality) integerPower(p int) (Dimensionality, error) {
	src := d
	if p < 0 {
		src = d.swap()
		p = -p
	}
	var r Dimensionality
	for i := 0; i < NumBase; i++ {
		if p > maxExponent && (src.num[i] != 0 || src.den[i] != 0) {
			return Dimensionality{}, exponentOverflow()
		}
		n := int(src.num[i]) * p
		m := int(src.den[i]) * p
		if n > maxExponent || m > maxExponent {
			return Dimensionality{}, exponentOverflow()
		}
		r.num[i], r.den[i] = uint8(n), uint8(m)
	}
	return r, nil
}

func (d Dimensionality) swap() Dimensionality {
	return Dimensionality{num: d.den, den: d.num}
}

func addExponents(a, b uint8) (uint8, bool) {
	sum := int(a) + int(b)
	if sum > maxExponent {
		return 0, false
	}
	return uint8(sum), true
}

func exponentOverflow() *qerr.Error {
	return qerr.Overflow("dimensionality exponent exceeds 255")
}
