package unit

import (
	"math"

	"github.com/roach88/siquant/internal/qerr"
)

// The algebra methods return the resulting unit together with a multiplier: a
// value v1 in a combined with v2 in b equals (v1 op v2) * multiplier in the
// result unit. The multiplier is 1 whenever the result is the composed unit
// itself.

// MultiplyWithoutReducing multiplies a by b without cancelling symbols, so
// rad•m stays rad•m and m/m•m stays m^2/m.
func (r *Registry) MultiplyWithoutReducing(a, b *Unit) (*Unit, float64, error) {
	if a == b {
		return r.PowerWithoutReducing(a, 2)
	}
	if _, err := a.dim.MultiplyWithoutReducing(b.dim); err != nil {
		return nil, 0, err
	}
	res, err := r.resolve(a.expr.Multiply(b.expr))
	if err != nil {
		return nil, 0, err
	}
	return res, a.scale * b.scale / res.scale, nil
}

// Multiply multiplies a by b and reduces the result.
func (r *Registry) Multiply(a, b *Unit) (*Unit, float64, error) {
	u, m, err := r.MultiplyWithoutReducing(a, b)
	if err != nil {
		return nil, 0, err
	}
	return r.reduceScaled(u, m)
}

// DivideWithoutReducing divides a by b without cancelling symbols, so m/m is
// kept distinct from 1.
func (r *Registry) DivideWithoutReducing(a, b *Unit) (*Unit, float64, error) {
	if b.scale == 0 {
		return nil, 0, qerr.DivisionByZero()
	}
	if _, err := a.dim.DivideWithoutReducing(b.dim); err != nil {
		return nil, 0, err
	}
	res, err := r.resolve(a.expr.Divide(b.expr))
	if err != nil {
		return nil, 0, err
	}
	return res, a.scale / b.scale / res.scale, nil
}

// Divide divides a by b and reduces the result.
func (r *Registry) Divide(a, b *Unit) (*Unit, float64, error) {
	u, m, err := r.DivideWithoutReducing(a, b)
	if err != nil {
		return nil, 0, err
	}
	return r.reduceScaled(u, m)
}

// PowerWithoutReducing raises u to p. A non-integer p must be the reciprocal of
// an integer n that divides every exponent of u's dimensionality. When the
// root cannot be written with u's own symbols the result is the coherent unit.
func (r *Registry) PowerWithoutReducing(u *Unit, p float64) (*Unit, float64, error) {
	if _, err := u.dim.PowerWithoutReducing(p); err != nil {
		return nil, 0, err
	}
	if p == math.Trunc(p) {
		return r.integerPower(u, int(p))
	}

	n := int(math.Round(1 / p))
	root, m, err := r.rootWithoutReducing(u, absInt(n))
	if err != nil {
		return nil, 0, err
	}
	if n > 0 {
		return root, m, nil
	}
	inv, m2, err := r.integerPower(root, -1)
	if err != nil {
		return nil, 0, err
	}
	return inv, m * m2, nil
}

// Power reduces u, raises it to p and reduces the result, so sqrt(m^3/m) is m.
func (r *Registry) Power(u *Unit, p float64) (*Unit, float64, error) {
	ru, m1, err := r.Reduce(u)
	if err != nil {
		return nil, 0, err
	}
	pu, m2, err := r.PowerWithoutReducing(ru, p)
	if err != nil {
		return nil, 0, err
	}
	return r.reduceScaled(pu, math.Pow(m1, p)*m2)
}

// NthRootWithoutReducing takes the nth root of u without reducing it first.
func (r *Registry) NthRootWithoutReducing(u *Unit, n int) (*Unit, float64, error) {
	return r.rootWithoutReducing(u, n)
}

// NthRoot reduces u, takes its nth root and reduces the result.
func (r *Registry) NthRoot(u *Unit, n int) (*Unit, float64, error) {
	ru, m1, err := r.Reduce(u)
	if err != nil {
		return nil, 0, err
	}
	root, m2, err := r.rootWithoutReducing(ru, n)
	if err != nil {
		return nil, 0, err
	}
	return r.reduceScaled(root, math.Pow(m1, 1/float64(n))*m2)
}

// Reduce cancels symbols that appear on both sides of u. When the cancelled
// unit still carries an unreduced dimensionality, e.g. "rad" or "J/rad", the
// result is the coherent SI unit of the reduced dimensionality instead.
func (r *Registry) Reduce(u *Unit) (*Unit, float64, error) {
	if u.dim.IsReduced() && isCancelled(u.expr) {
		return u, 1, nil
	}
	res, err := r.resolve(u.expr.Reduced())
	if err != nil {
		return nil, 0, err
	}
	if res.dim.IsReduced() && res.dim.SameReduced(u.dim) {
		return res, u.scale / res.scale, nil
	}
	coherent, err := r.CoherentUnit(u.dim.Reduce())
	if err != nil {
		return nil, 0, err
	}
	return coherent, u.scale / coherent.scale, nil
}

func (r *Registry) reduceScaled(u *Unit, m float64) (*Unit, float64, error) {
	ru, m2, err := r.Reduce(u)
	if err != nil {
		return nil, 0, err
	}
	return ru, m * m2, nil
}

func (r *Registry) integerPower(u *Unit, p int) (*Unit, float64, error) {
	if p == 1 {
		return u, 1, nil
	}
	if p > MaxPower || p < -MaxPower {
		return nil, 0, qerr.Overflow("power of unit " + u.symbol + " is not representable")
	}
	res, err := r.resolve(u.expr.Power(p))
	if err != nil {
		return nil, 0, err
	}
	m := math.Pow(u.scale, float64(p)) / res.scale
	if math.IsInf(m, 0) || math.IsNaN(m) || m == 0 {
		return nil, 0, qerr.Overflow("power of unit " + u.symbol + " is not representable")
	}
	return res, m, nil
}

func (r *Registry) rootWithoutReducing(u *Unit, n int) (*Unit, float64, error) {
	d, err := u.dim.NthRootWithoutReducing(n)
	if err != nil {
		return nil, 0, err
	}
	if n == 1 {
		return u, 1, nil
	}

	var res *Unit
	if e, ok := u.expr.Root(n); ok {
		res, err = r.resolve(e)
	} else {
		res, err = r.CoherentUnit(d)
	}
	if err != nil {
		return nil, 0, err
	}
	return res, math.Pow(u.scale, 1/float64(n)) / res.scale, nil
}

// isCancelled reports whether no symbol appears on both sides of e.
func isCancelled(e Expression) bool {
	if len(e.Denominator) == 0 || len(e.Numerator) == 0 {
		return true
	}
	num := make(map[string]struct{}, len(e.Numerator))
	for _, t := range e.Numerator {
		num[t.Symbol] = struct{}{}
	}
	for _, t := range e.Denominator {
		if _, ok := num[t.Symbol]; ok {
			return false
		}
	}
	return true
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
