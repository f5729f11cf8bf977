package scalar

import (
	gscalar "gonum.org/v1/gonum/floats/scalar"

	"github.com/roach88/siquant/internal/qerr"
)

// compareTolerance is the relative tolerance under which two values compare
// as the same.
const compareTolerance = 1e-12

// Ordering is the result of Compare.
type Ordering int

const (
	// Ascending means the left operand is smaller.
	Ascending Ordering = iota - 1
	Same
	Descending
	// Unequal means the values differ but have no order, e.g. complex values
	// with different imaginary parts.
	Unequal
)

func (o Ordering) String() string {
	switch o {
	case Ascending:
		return "ascending"
	case Same:
		return "same"
	case Descending:
		return "descending"
	default:
		return "unequal"
	}
}

// Compare orders a and b after converting b into a's unit. The operands must
// share a reduced dimensionality.
func Compare(a, b Scalar) (Ordering, error) {
	da, db := a.unit.Dimensionality(), b.unit.Dimensionality()
	if !da.SameReduced(db) {
		return Unequal, qerr.Incompatible(da.Symbol(), db.Symbol())
	}
	bv, err := b.ValueInUnit(a.unit)
	if err != nil {
		return Unequal, err
	}
	av := a.value()

	if !gscalar.EqualWithinAbsOrRel(imag(av), imag(bv), 0, compareTolerance) {
		return Unequal, nil
	}
	switch {
	case gscalar.EqualWithinAbsOrRel(real(av), real(bv), 0, compareTolerance):
		return Same, nil
	case real(av) < real(bv):
		return Ascending, nil
	default:
		return Descending, nil
	}
}

// Equal reports whether a and b have the same unit, element type and value.
func Equal(a, b Scalar) bool {
	return a.unit == b.unit && a.typ == b.typ && a.re == b.re && a.im == b.im
}
