package scalar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/siquant/internal/qerr"
)

func TestCompare(t *testing.T) {
	reg := testRegistry(t)
	m := reg.MustParse("m")

	tests := []struct {
		name string
		a, b Scalar
		want Ordering
	}{
		{"same across units", NewFloat64(reg.MustParse("km"), 1), NewFloat64(m, 1000), Same},
		{"foot shorter", NewFloat64(m, 1), NewFloat64(reg.MustParse("ft"), 1), Descending},
		{"inch shorter", NewFloat64(reg.MustParse("in"), 1), NewFloat64(reg.MustParse("cm"), 3), Ascending},
		{"rounding noise", NewFloat64(m, 0.1+0.2), NewFloat64(m, 0.3), Same},
		{"imaginary differs", NewComplex128(m, 1+1i), NewComplex128(m, 1+2i), Unequal},
		{"complex same", NewComplex128(m, 1+1i), New(m, complex64(1+1i)), Same},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compare(tt.a, tt.b)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := Compare(NewFloat64(m, 1), NewFloat64(reg.MustParse("s"), 1))
	require.Error(t, err)
	assert.True(t, qerr.IsIncompatible(err))
}

func TestEqual(t *testing.T) {
	reg := testRegistry(t)
	a := NewFloat64(reg.MustParse("m"), 1)

	assert.True(t, Equal(a, NewFloat64(reg.MustParse("m"), 1)))
	assert.False(t, Equal(a, NewFloat64(reg.MustParse("km"), 0.001)))
	assert.False(t, Equal(a, New(reg.MustParse("m"), float32(1))))
}

func TestBestConversionForQuantity(t *testing.T) {
	reg := testRegistry(t)

	t.Run("5 ms", func(t *testing.T) {
		best, err := BestConversionForQuantity(NewFloat64(reg.MustParse("s"), 0.005), "time")
		require.NoError(t, err)
		assert.Equal(t, "ms", best.Unit().Symbol())
		assert.InDelta(t, 5.0, best.Float64Value(), 1e-12)
	})

	t.Run("small gain keeps unit", func(t *testing.T) {
		s := NewFloat64(reg.MustParse("s"), 0.5)
		best, err := BestConversionForQuantity(s, "time")
		require.NoError(t, err)
		assert.True(t, Equal(s, best))
	})

	t.Run("zero keeps unit", func(t *testing.T) {
		s := NewFloat64(reg.MustParse("s"), 0)
		best, err := BestConversionForQuantity(s, "time")
		require.NoError(t, err)
		assert.True(t, Equal(s, best))
	})

	t.Run("any unit of the dimensionality", func(t *testing.T) {
		best, err := BestConversionForQuantity(NewFloat64(reg.MustParse("m"), 5000), "")
		require.NoError(t, err)
		assert.Equal(t, "km", best.Unit().Symbol())
		assert.InDelta(t, 5.0, best.Float64Value(), 1e-12)
	})

	t.Run("unknown quantity", func(t *testing.T) {
		_, err := BestConversionForQuantity(NewFloat64(reg.MustParse("s"), 1), "flux capacitance")
		require.Error(t, err)
		assert.True(t, qerr.IsUnknown(err))
	})
}
