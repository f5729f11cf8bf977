package unit

import (
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/siquant/internal/catalog"
	"github.com/roach88/siquant/internal/dimensionality"
	"github.com/roach88/siquant/internal/qerr"
)

// newTestRegistry builds a private registry so tests can intern and define
// units without touching Default.
func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	dims, err := catalog.NewRegistry()
	require.NoError(t, err)
	defs, err := DefaultLibrary()
	require.NoError(t, err)
	reg, err := NewRegistry(dims, defs)
	require.NoError(t, err)
	return reg
}

func TestDefault_Library(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)
	assert.Greater(t, reg.Len(), 1000)

	kg := reg.MustParse("kg")
	assert.Equal(t, "kilogram", kg.Name())
	assert.Equal(t, "mass", kg.Quantity())
	assert.InDelta(t, 1.0, kg.ScaleToCoherentSI(), 1e-15)

	ft := reg.MustParse("ft")
	assert.Equal(t, "foot", ft.Name())
	assert.Equal(t, 0.3048, ft.ScaleToCoherentSI())

	pt := reg.MustParse("pt")
	assert.Equal(t, "pint", pt.Name())

	km := reg.MustParse("km")
	assert.Equal(t, "kilometers", km.PluralName())
	assert.Equal(t, 1000.0, km.ScaleToCoherentSI())

	us := reg.MustParse("μs")
	assert.Equal(t, "µs", us.Symbol())
	assert.InEpsilon(t, 1e-6, us.ScaleToCoherentSI(), 1e-12)

	assert.Same(t, reg.Dimensionless(), reg.MustParse("1"))
}

func TestParse_InternsEquivalentExpressions(t *testing.T) {
	reg := newTestRegistry(t)

	a, err := reg.Parse("kg*m/s^2")
	require.NoError(t, err)
	b, err := reg.Parse("m • kg / s / s")
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, "kg•m/s^2", a.Symbol())
	assert.Equal(t, "L•M/T^2", a.Dimensionality().Symbol())
	assert.False(t, a.Defined())
	assert.Equal(t, "kg•m/s^2", a.Name())

	n, ok := reg.ForSymbol("N")
	require.True(t, ok)
	assert.True(t, Equivalent(a, n))
	assert.Same(t, n, reg.ShortestEquivalent(a))
}

func TestParse_Errors(t *testing.T) {
	reg := newTestRegistry(t)

	_, err := reg.Parse("furlongs/fortnight")
	require.Error(t, err)
	assert.True(t, qerr.IsUnknown(err))

	_, err = reg.Parse("2*m")
	require.Error(t, err)
	assert.True(t, qerr.IsMalformed(err))

	_, ok := reg.ForSymbol("m^17")
	assert.False(t, ok)
}

func TestParse_RoundTripEveryDefinedUnit(t *testing.T) {
	reg := newTestRegistry(t)
	for _, u := range reg.Units() {
		again, err := reg.Parse(u.Symbol())
		require.NoError(t, err, u.Symbol())
		assert.Same(t, u, again, u.Symbol())
	}
}

func TestUnitAlgebra_Scenarios(t *testing.T) {
	reg := newTestRegistry(t)

	t.Run("m^2 * m", func(t *testing.T) {
		u, m, err := reg.Multiply(reg.MustParse("m^2"), reg.MustParse("m"))
		require.NoError(t, err)
		assert.Equal(t, "m^3", u.Symbol())
		assert.Equal(t, 1.0, m)
	})

	t.Run("self multiply squares", func(t *testing.T) {
		s := reg.MustParse("s")
		u, m, err := reg.MultiplyWithoutReducing(s, s)
		require.NoError(t, err)
		assert.Equal(t, "s^2", u.Symbol())
		assert.Equal(t, 1.0, m)
	})

	t.Run("reduce (m*s)/s", func(t *testing.T) {
		u, m, err := reg.Reduce(reg.MustParse("(m*s)/s"))
		require.NoError(t, err)
		assert.Equal(t, "m", u.Symbol())
		assert.Equal(t, 1.0, m)
	})

	t.Run("non-reducing divide keeps m/m", func(t *testing.T) {
		meter := reg.MustParse("m")
		u, m, err := reg.DivideWithoutReducing(meter, meter)
		require.NoError(t, err)
		assert.Equal(t, "m/m", u.Symbol())
		assert.Equal(t, "L/L", u.Dimensionality().Symbol())
		assert.Equal(t, 1.0, m)

		u, _, err = reg.Divide(meter, meter)
		require.NoError(t, err)
		assert.Same(t, reg.Dimensionless(), u)
	})

	t.Run("reduce carries scale", func(t *testing.T) {
		u, m, err := reg.Reduce(reg.MustParse("km/m"))
		require.NoError(t, err)
		assert.Equal(t, "1", u.Symbol())
		assert.Equal(t, 1000.0, m)
	})

	t.Run("reduce angle to dimensionless", func(t *testing.T) {
		u, m, err := reg.Reduce(reg.MustParse("°"))
		require.NoError(t, err)
		assert.Equal(t, "1", u.Symbol())
		assert.InDelta(t, 0.017453292519943295, m, 1e-15)
	})

	t.Run("reduce torque to coherent", func(t *testing.T) {
		u, m, err := reg.Reduce(reg.MustParse("J/rad"))
		require.NoError(t, err)
		assert.Equal(t, "kg•m^2/s^2", u.Symbol())
		assert.Equal(t, 1.0, m)
	})

	t.Run("multiply mixed scales", func(t *testing.T) {
		u, m, err := reg.Multiply(reg.MustParse("km"), reg.MustParse("h"))
		require.NoError(t, err)
		assert.Equal(t, "h•km", u.Symbol())
		assert.Equal(t, 1.0, m)
	})
}

func TestUnitAlgebra_Powers(t *testing.T) {
	reg := newTestRegistry(t)

	u, m, err := reg.PowerWithoutReducing(reg.MustParse("m^2/s^4"), 0.5)
	require.NoError(t, err)
	assert.Equal(t, "m/s^2", u.Symbol())
	assert.Equal(t, 1.0, m)

	u, m, err = reg.PowerWithoutReducing(reg.MustParse("ha"), 0.5)
	require.NoError(t, err)
	assert.Equal(t, "m", u.Symbol())
	assert.InDelta(t, 100.0, m, 1e-9)

	u, m, err = reg.PowerWithoutReducing(reg.MustParse("m^2"), -0.5)
	require.NoError(t, err)
	assert.Equal(t, "1/m", u.Symbol())
	assert.Equal(t, 1.0, m)

	u, _, err = reg.NthRoot(reg.MustParse("m^3/m"), 2)
	require.NoError(t, err)
	assert.Equal(t, "m", u.Symbol())

	u, m, err = reg.Power(reg.MustParse("cm"), 3)
	require.NoError(t, err)
	assert.Equal(t, "cm^3", u.Symbol())
	assert.Equal(t, 1.0, m)

	_, _, err = reg.PowerWithoutReducing(reg.MustParse("m"), 0.5)
	require.Error(t, err)
	assert.True(t, qerr.IsMalformed(err))
	assert.Contains(t, err.Error(), "Can't raise physical dimensionality to a non-integer power.")

	_, _, err = reg.NthRoot(reg.MustParse("m"), 0)
	require.Error(t, err)
}

func TestUnitAlgebra_PowerOverflow(t *testing.T) {
	reg := newTestRegistry(t)

	_, err := reg.Parse("(m^4294967296)^4294967296")
	require.Error(t, err)
	assert.True(t, qerr.IsOverflow(err), err)

	ea, err := reg.Define(Definition{Quantity: "dimensionless", Symbol: "ea", Name: "each", Plural: "each", Scale: 1})
	require.NoError(t, err)

	for _, u := range []*Unit{reg.MustParse("rad"), ea} {
		for _, p := range []float64{256, -256, 1 << 40, 1 << 62} {
			_, _, err := reg.PowerWithoutReducing(u, p)
			require.Error(t, err, "%s^%v", u.Symbol(), p)
			assert.True(t, qerr.IsOverflow(err), err)
		}
	}

	ea200, _, err := reg.PowerWithoutReducing(ea, 200)
	require.NoError(t, err)
	assert.Equal(t, "ea^200", ea200.Symbol())
	ea100, _, err := reg.PowerWithoutReducing(ea, 100)
	require.NoError(t, err)

	_, _, err = reg.MultiplyWithoutReducing(ea200, ea100)
	require.Error(t, err)
	assert.True(t, qerr.IsOverflow(err), err)
}

func TestConversionFactor(t *testing.T) {
	reg := newTestRegistry(t)

	f, err := ConversionFactor(reg.MustParse("ft"), reg.MustParse("m"))
	require.NoError(t, err)
	assert.Equal(t, 0.3048, f)

	f, err = ConversionFactor(reg.MustParse("mi"), reg.MustParse("ft"))
	require.NoError(t, err)
	assert.InDelta(t, 5280.0, f, 1e-9)

	f, err = ConversionFactor(reg.MustParse("rad"), reg.MustParse("1"))
	require.NoError(t, err)
	assert.Equal(t, 1.0, f)

	_, err = ConversionFactor(reg.MustParse("m"), reg.MustParse("s"))
	require.Error(t, err)
	assert.True(t, qerr.IsIncompatible(err))
	assert.Contains(t, err.Error(), "Incompatible Dimensionalities.")
}

func TestCoherentUnit(t *testing.T) {
	reg := newTestRegistry(t)

	u, err := reg.CoherentUnit(dimensionality.MustParse("L^2•M/T^2"))
	require.NoError(t, err)
	assert.Equal(t, "kg•m^2/s^2", u.Symbol())
	assert.True(t, u.IsCoherent())

	u, err = reg.CoherentUnit(dimensionality.MustParse("L/L"))
	require.NoError(t, err)
	assert.Equal(t, "m/m", u.Symbol())
	assert.Equal(t, "length ratio", u.Quantity())

	u, err = reg.CoherentUnit(dimensionality.Dimensionless())
	require.NoError(t, err)
	assert.Same(t, reg.Dimensionless(), u)
}

func TestQueries(t *testing.T) {
	reg := newTestRegistry(t)

	times := reg.UnitsForQuantity("Time")
	require.NotEmpty(t, times)
	assert.Equal(t, "s", times[0].Symbol())

	var symbols []string
	for _, u := range reg.ConversionUnits(reg.MustParse("s")) {
		symbols = append(symbols, u.Symbol())
	}
	assert.Equal(t, "d", symbols[0])
	assert.Contains(t, symbols, "ms")
	assert.Contains(t, symbols, "yr")
	assert.NotContains(t, symbols, "Hz")

	dimless := reg.UnitsForReducedDimensionality(dimensionality.Dimensionless())
	var names []string
	for _, u := range dimless {
		names = append(names, u.Symbol())
	}
	assert.Contains(t, names, "rad")
	assert.Contains(t, names, "sr")
	assert.Contains(t, names, "%")

	exact := reg.UnitsForDimensionality(dimensionality.MustParse("L/L"))
	for _, u := range exact {
		assert.Equal(t, "L/L", u.Dimensionality().Symbol())
	}
}

func TestDefine(t *testing.T) {
	reg := newTestRegistry(t)

	smoot, err := reg.Define(Definition{
		Quantity: "length", Symbol: "smoot", Name: "smoot", Plural: "smoots", Scale: 1.7018,
	})
	require.NoError(t, err)
	assert.Equal(t, "smoot", smoot.Symbol())

	speed, err := reg.Parse("smoot/s")
	require.NoError(t, err)
	assert.Equal(t, 1.7018, speed.ScaleToCoherentSI())

	_, err = reg.Define(Definition{Quantity: "length", Symbol: "smoot", Scale: 2})
	require.Error(t, err)

	_, err = reg.Define(Definition{Quantity: "length", Symbol: "sm/s", Scale: 2})
	require.Error(t, err)
	assert.True(t, qerr.IsMalformed(err))

	_, err = reg.Define(Definition{Quantity: "flux capacity", Symbol: "fc", Scale: 1})
	require.Error(t, err)
	assert.True(t, qerr.IsUnknown(err))

	fc, err := reg.Define(Definition{
		Quantity: "flux capacity", Dimensionality: "L^2•M/(T^3•I)", Symbol: "fc", Scale: 1, Prefixes: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "flux capacity", fc.Quantity())

	gfc, ok := reg.ForSymbol("Gfc")
	require.True(t, ok)
	assert.Equal(t, 1e9, gfc.ScaleToCoherentSI())

	_, err = reg.Define(Definition{Quantity: "length", Symbol: "bad", Scale: 0})
	require.Error(t, err)
}

func TestLoadLibrary(t *testing.T) {
	defs, err := LoadLibrary(strings.NewReader(`
units:
  - {quantity: length, symbol: m, name: meter, plural: meters, scale: 1, prefixes: true}
  - {quantity: length, symbol: ft, name: foot, plural: feet, scale: 0.3048}
`))
	require.NoError(t, err)
	require.Len(t, defs, 2)
	assert.True(t, defs[0].Prefixes)
	assert.Equal(t, 0.3048, defs[1].Scale)

	_, err = LoadLibrary(strings.NewReader(`units: [{symbol: m, quantity: length, scale: 1, color: red}]`))
	require.Error(t, err)

	_, err = LoadLibrary(strings.NewReader(`units: [{symbol: m, quantity: length}]`))
	require.Error(t, err)
}

func TestNewRegistry_PrefixesNeverShadowExplicit(t *testing.T) {
	dims, err := catalog.NewRegistry()
	require.NoError(t, err)
	reg, err := NewRegistry(dims, []Definition{
		{Quantity: "mass", Symbol: "t", Name: "tonne", Plural: "tonnes", Scale: 1000, Prefixes: true},
		{Quantity: "length", Symbol: "ft", Name: "foot", Plural: "feet", Scale: 0.3048},
	})
	require.NoError(t, err)

	ft := reg.MustParse("ft")
	assert.Equal(t, "foot", ft.Name())
	assert.Equal(t, "length", ft.Quantity())

	kt := reg.MustParse("kt")
	assert.Equal(t, "kilotonne", kt.Name())
	assert.Equal(t, 1e6, kt.ScaleToCoherentSI())
}

func TestRegistry_Metrics(t *testing.T) {
	reg := newTestRegistry(t)

	hits := testutil.ToFloat64(registryLookups.WithLabelValues("hit"))
	misses := testutil.ToFloat64(registryLookups.WithLabelValues("miss"))
	interned := testutil.ToFloat64(registryInterned)

	_, err := reg.Parse("m^7")
	require.NoError(t, err)
	_, err = reg.Parse("m*m^6")
	require.NoError(t, err)

	assert.Equal(t, misses+1, testutil.ToFloat64(registryLookups.WithLabelValues("miss")))
	assert.Equal(t, hits+1, testutil.ToFloat64(registryLookups.WithLabelValues("hit")))
	assert.Equal(t, interned+1, testutil.ToFloat64(registryInterned))
	assert.Len(t, Metrics(), 2)
}

func TestRegistry_ConcurrentParseConverges(t *testing.T) {
	reg := newTestRegistry(t)
	const goroutines = 50

	var wg sync.WaitGroup
	results := make([]*Unit, goroutines)
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func(idx int) {
			defer wg.Done()
			u, err := reg.Parse("kg•m^5/(A•s)")
			if err == nil {
				results[idx] = u
			}
		}(i)
	}
	wg.Wait()

	require.NotNil(t, results[0])
	for _, u := range results {
		assert.Same(t, results[0], u)
	}
}
