package dimensionality

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/siquant/internal/qerr"
)

func TestSymbol_Render(t *testing.T) {
	tests := []struct {
		name string
		num  [NumBase]uint8
		den  [NumBase]uint8
		want string
	}{
		{"dimensionless", [NumBase]uint8{}, [NumBase]uint8{}, "1"},
		{"length", [NumBase]uint8{1}, [NumBase]uint8{}, "L"},
		{"inverse time", [NumBase]uint8{}, [NumBase]uint8{0, 0, 1}, "1/T"},
		{"plane angle", [NumBase]uint8{1}, [NumBase]uint8{1}, "L/L"},
		{"force", [NumBase]uint8{1, 1}, [NumBase]uint8{0, 0, 2}, "L•M/T^2"},
		{"pressure", [NumBase]uint8{0, 1}, [NumBase]uint8{1, 0, 2}, "M/(L•T^2)"},
		{"entropy", [NumBase]uint8{2, 1}, [NumBase]uint8{0, 0, 2, 0, 1}, "L^2•M/(T^2•Θ)"},
		{"all slots", [NumBase]uint8{1, 2, 3, 4, 5, 6, 7}, [NumBase]uint8{}, "L•M^2•T^3•I^4•Θ^5•N^6•J^7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, New(tt.num, tt.den).Symbol())
		})
	}
}

func TestParse_RoundTrip(t *testing.T) {
	symbols := []string{
		"1", "L", "1/T", "L/L", "L^2/L^2", "L•M/T^2", "M/(L•T^2)",
		"L^2•M/(T^2•Θ)", "T^4•I^2/(L^3•M)", "L•M^2•T^3/(L^2•M^3)",
		"L^5•M•T^4•I^2/(L^5•M•T^4•I^2)",
	}
	for _, s := range symbols {
		t.Run(s, func(t *testing.T) {
			d, err := Parse(s)
			require.NoError(t, err)
			assert.Equal(t, s, d.Symbol())

			again, err := Parse(d.Symbol())
			require.NoError(t, err)
			assert.True(t, d.Equal(again))
		})
	}
}

func TestParse_Spellings(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"L*M/T^2", "L•M/T^2"},
		{"L·M/T^2", "L•M/T^2"},
		{"@", "Θ"},
		{"ϴ/L", "Θ/L"},
		{"L^-1", "1/L"},
		{"L^(-2)", "1/L^2"},
		{"M/L/T^2", "M/(L•T^2)"},
		{"(L•M)^2/T", "L^2•M^2/T"},
		{"L / (T • T)", "L/T^2"},
		{"1/(L^2/T)", "T/L^2"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			d, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Symbol())
		})
	}
}

func TestParse_Errors(t *testing.T) {
	inputs := []string{"", "   ", "X", "L^", "L^1.5", "(L", "L)", "L*/T", "()", "^2", "L^(x)"}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			_, err := Parse(in)
			require.Error(t, err)
			assert.True(t, qerr.IsMalformed(err), "want malformed, got %v", err)
		})
	}
}

func TestMultiply_NonReducingKeepsQuotient(t *testing.T) {
	angle := MustParse("L/L")

	product, err := angle.MultiplyWithoutReducing(Dimensionless())
	require.NoError(t, err)
	assert.Equal(t, "L/L", product.Symbol())

	reduced, err := angle.Multiply(Dimensionless())
	require.NoError(t, err)
	assert.Equal(t, "1", reduced.Symbol())

	lengthSq, err := angle.MultiplyWithoutReducing(Base(Length))
	require.NoError(t, err)
	assert.Equal(t, "L^2/L", lengthSq.Symbol())
}

func TestDivide(t *testing.T) {
	length := Base(Length)
	timeD := Base(Time)

	speed, err := length.DivideWithoutReducing(timeD)
	require.NoError(t, err)
	assert.Equal(t, "L/T", speed.Symbol())

	ratio, err := length.DivideWithoutReducing(length)
	require.NoError(t, err)
	assert.Equal(t, "L/L", ratio.Symbol())

	one, err := length.Divide(length)
	require.NoError(t, err)
	assert.True(t, one.Equal(Dimensionless()))
}

func TestReduce(t *testing.T) {
	d := MustParse("L^3•M/(L•T^2)")
	assert.Equal(t, "L^2•M/T^2", d.Reduce().Symbol())
	assert.False(t, d.IsReduced())
	assert.True(t, d.Reduce().IsReduced())
	assert.True(t, d.SameReduced(d.Reduce()))
	assert.False(t, d.Equal(d.Reduce()))
}

func TestPower(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		power   float64
		want    string
		reduced bool
	}{
		{"square", "L/T", 2, "L^2/T^2", false},
		{"inverse", "L/T", -1, "T/L", false},
		{"zero", "L/T", 0, "1", false},
		{"square root", "L^2/T^4", 0.5, "L/T^2", false},
		{"inverse square root", "L^2", -0.5, "1/L", false},
		{"unreduced kept", "L/L", 3, "L^3/L^3", false},
		{"reduced", "L^3/L", 0.5, "L", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := MustParse(tt.input)
			var (
				got Dimensionality
				err error
			)
			if tt.reduced {
				got, err = d.Power(tt.power)
			} else {
				got, err = d.PowerWithoutReducing(tt.power)
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Symbol())
		})
	}
}

func TestPower_NonIntegerFails(t *testing.T) {
	_, err := MustParse("L").PowerWithoutReducing(0.5)
	require.Error(t, err)
	assert.True(t, qerr.IsMalformed(err))
	assert.Contains(t, err.Error(), "Can't raise physical dimensionality to a non-integer power.")

	_, err = MustParse("L^2").PowerWithoutReducing(1.5)
	require.Error(t, err)
}

func TestPower_Overflow(t *testing.T) {
	_, err := MustParse("L^200").PowerWithoutReducing(2)
	require.Error(t, err)
	assert.True(t, qerr.IsOverflow(err))
}

func TestParse_ExponentOverflow(t *testing.T) {
	for _, symbol := range []string{
		"(((L^65536)^65536)^65536)^65536",
		"L^256",
		"L^-256",
		"(L^16)^16",
		"L^200*L^100",
		"M/(T^200*T^56)",
		"L^9223372036854775807*L",
	} {
		t.Run(symbol, func(t *testing.T) {
			_, err := Parse(symbol)
			require.Error(t, err)
			assert.True(t, qerr.IsOverflow(err), err)
		})
	}

	d, err := Parse("(L^15)^17")
	require.NoError(t, err)
	assert.Equal(t, "L^255", d.Symbol())
}

func TestNthRoot(t *testing.T) {
	d, err := MustParse("L^2/L^2").NthRoot(2)
	require.NoError(t, err)
	assert.Equal(t, "1", d.Symbol())

	d, err = MustParse("L^2/L^2").NthRootWithoutReducing(2)
	require.NoError(t, err)
	assert.Equal(t, "L/L", d.Symbol())

	_, err = MustParse("L^3").NthRoot(2)
	require.Error(t, err)

	_, err = MustParse("L").NthRoot(0)
	require.Error(t, err)
}

func TestPredicates(t *testing.T) {
	assert.True(t, Dimensionless().IsDimensionless())
	assert.True(t, MustParse("L/L").IsDimensionless())
	assert.False(t, MustParse("L").IsDimensionless())

	assert.True(t, Base(Mass).IsBase())
	assert.False(t, MustParse("L^2").IsBase())
	assert.False(t, MustParse("L/T").IsBase())

	assert.Equal(t, uint8(1), MustParse("L/L").Numerator(Length))
	assert.Equal(t, uint8(1), MustParse("L/L").Denominator(Length))
	assert.Equal(t, -2, MustParse("1/T^2").Reduced(Time))
}
