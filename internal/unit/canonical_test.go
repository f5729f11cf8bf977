package unit

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/siquant/internal/qerr"
)

func TestCanonicalForms_Golden(t *testing.T) {
	inputs := []string{
		"m*kg",
		"kg*m",
		"m*m*m",
		"m/m",
		"kg•m^2/s^2",
		"(m^2*kg/s)^4",
		"m/s/s",
		"m·kg/m",
		"1/s",
		"s^-1",
		"m^(-2)",
		"N × m ÷ rad",
		"kg / (m • s^2)",
		"(m/s)/(m/s)",
		"J/(mol•K)",
		"m^2*m^-2",
		"1",
	}

	var buf bytes.Buffer
	for _, in := range inputs {
		canon, err := Canonicalize(in)
		require.NoError(t, err, in)
		reduced, err := Reduce(in)
		require.NoError(t, err, in)
		fmt.Fprintf(&buf, "%s\t%s\t%s\n", in, canon, reduced)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "canonical_forms", buf.Bytes())
}

func TestCanonicalize_Idempotent(t *testing.T) {
	inputs := []string{
		"m*kg", "kg•m^2/s^2", "(m^2*kg/s)^4", "m/s/s", "m/m", "1/(s•m)",
		"J/(mol•K)", "µm", "°C/h", "(m/s)^-2",
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			once, err := Canonicalize(in)
			require.NoError(t, err)
			twice, err := Canonicalize(once)
			require.NoError(t, err)
			assert.Equal(t, once, twice)
		})
	}
}

func TestCanonicalize_Properties(t *testing.T) {
	a, _ := Canonicalize("m*kg")
	b, _ := Canonicalize("kg*m")
	assert.Equal(t, a, b, "commutative")

	cube, _ := Canonicalize("m*m*m")
	pow, _ := Canonicalize("m^3")
	assert.Equal(t, cube, pow, "power consolidation")

	ratio, _ := Canonicalize("m/m")
	assert.Equal(t, "m/m", ratio)
	one, _ := Reduce("m/m")
	assert.Equal(t, "1", one)

	eq, err := EquivalentExpressions("kg•m/s^2", "m * kg / s / s")
	require.NoError(t, err)
	assert.True(t, eq)
}

func TestCanonicalize_MicroSpellings(t *testing.T) {
	for _, in := range []string{"µm", "μm", "𝜇m"} {
		got, err := Canonicalize(in)
		require.NoError(t, err)
		assert.Equal(t, "µm", got)
	}
}

func TestCanonicalize_Errors(t *testing.T) {
	inputs := []string{
		"", "   ", "m^0.5", "m^(1/2)", "2*m", "m^", "^2", "()", "(m", "m)", "m**s",
		"m/", "kg m", "m^x",
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			_, err := Canonicalize(in)
			require.Error(t, err)
			assert.True(t, qerr.IsMalformed(err), "want malformed, got %v", err)
		})
	}
}

func TestCanonicalize_PowerOverflow(t *testing.T) {
	inputs := []string{
		"(m^4294967296)^4294967296",
		"m^9223372036854775807*m",
		"m^256",
		"1/m^256",
		"(m^16)^16",
		"m^200*m^56",
		"s/(kg^128*kg^128)",
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			_, err := Canonicalize(in)
			require.Error(t, err)
			assert.True(t, qerr.IsOverflow(err), "want overflow, got %v", err)
		})
	}

	got, err := Canonicalize("(m^15)^17/m^255")
	require.NoError(t, err)
	assert.Equal(t, "m^255/m^255", got)
}

func TestExpression_Algebra(t *testing.T) {
	m, err := ParseExpression("m")
	require.NoError(t, err)
	s, err := ParseExpression("s")
	require.NoError(t, err)

	assert.Equal(t, "m/m", m.Divide(m).String())
	assert.Equal(t, "m•s", m.Multiply(s).String())
	assert.Equal(t, "s^2/m^2", m.Divide(s).Power(-2).String())
	assert.Equal(t, "1", m.Power(0).String())

	area, _ := ParseExpression("m^2/s^4")
	root, ok := area.Root(2)
	require.True(t, ok)
	assert.Equal(t, "m/s^2", root.String())

	_, ok = m.Root(2)
	assert.False(t, ok)

	assert.True(t, m.IsAtomic())
	assert.False(t, area.IsAtomic())
	assert.Equal(t, []string{"m", "s"}, area.Symbols())
}
