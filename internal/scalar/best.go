package scalar

import (
	"math"
	"math/cmplx"
	"strings"

	"github.com/roach88/siquant/internal/qerr"
	"github.com/roach88/siquant/internal/unit"
)

// minMagnitudeGain is how many orders of magnitude a new unit must save before
// BestConversionForQuantity switches to it.
const minMagnitudeGain = 2

// BestConversionForQuantity re-expresses s in the unit whose value has the
// order of magnitude closest to zero, e.g. 0.005 s becomes 5 ms. Candidates are
// the units of the named quantity, or every unit sharing s's reduced
// dimensionality when quantity is empty. s is returned unchanged unless the
// switch gains more than two orders of magnitude.
func BestConversionForQuantity(s Scalar, quantity string) (Scalar, error) {
	reg := s.unit.Registry()
	candidates := reg.ConversionUnits(s.unit)

	if quantity != "" {
		key := strings.ToLower(strings.TrimSpace(quantity))
		if _, ok := reg.Dimensionalities().ForQuantity(key); !ok {
			return Scalar{}, qerr.UnknownQuantity(quantity)
		}
		filtered := candidates[:0]
		for _, u := range candidates {
			if u.Quantity() == key {
				filtered = append(filtered, u)
			}
		}
		candidates = filtered
	}

	size := cmplx.Abs(s.value())
	if size == 0 || math.IsInf(size, 0) || math.IsNaN(size) {
		return s, nil
	}

	original := magnitude(size)
	var best *unit.Unit
	bestMagnitude := math.MaxInt
	for _, u := range candidates {
		f, err := unit.ConversionFactor(s.unit, u)
		if err != nil {
			continue
		}
		if m := magnitude(size * f); m < bestMagnitude {
			best, bestMagnitude = u, m
		}
	}
	if best == nil || original-bestMagnitude <= minMagnitudeGain {
		return s, nil
	}
	return ConvertToUnit(s, best)
}

// magnitude returns |floor(log10(x))| for x > 0.
func magnitude(x float64) int {
	m := int(math.Floor(math.Log10(x)))
	if m < 0 {
		return -m
	}
	return m
}
