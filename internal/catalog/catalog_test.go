package catalog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/siquant/internal/dimensionality"
)

func TestDefault_CompilesEmbeddedCatalog(t *testing.T) {
	quantities, err := Default()
	require.NoError(t, err)
	assert.Greater(t, len(quantities), 150)

	byName := make(map[string]string, len(quantities))
	for _, q := range quantities {
		byName[q.Name] = q.Dimensionality.Symbol()
	}

	assert.Equal(t, "L", byName["length"])
	assert.Equal(t, "L•M/T^2", byName["force"])
	assert.Equal(t, "L/L", byName["plane angle"])
	assert.Equal(t, "L^2/L^2", byName["solid angle"])
	assert.Equal(t, "Θ", byName["temperature"])
	assert.Equal(t, "1", byName["dimensionless"])
	assert.Equal(t, "M/(L•T^2)", byName["pressure"])
}

func TestCompile_Basic(t *testing.T) {
	quantities, err := Compile(`
		quantities: {
			"speed": dimensionality: "L/T"
			"force": dimensionality: "L•M/T^2"
		}
	`)
	require.NoError(t, err)
	require.Len(t, quantities, 2)
	assert.Equal(t, "speed", quantities[0].Name)
	assert.Equal(t, "L/T", quantities[0].Dimensionality.Symbol())
	assert.Equal(t, "force", quantities[1].Name)
}

func TestCompile_MissingQuantities(t *testing.T) {
	_, err := Compile(`other: 1`)
	require.Error(t, err)

	var ce *CompileError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "quantities", ce.Field)
}

func TestCompile_MissingDimensionality(t *testing.T) {
	_, err := Compile(`quantities: "speed": {}`)
	require.Error(t, err)

	var ce *CompileError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "speed", ce.Field)
	assert.Contains(t, ce.Message, "dimensionality is required")
}

func TestCompile_InvalidSymbol(t *testing.T) {
	_, err := Compile(`quantities: "bogus": dimensionality: "L^x"`)
	require.Error(t, err)

	var ce *CompileError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "bogus", ce.Field)
}

func TestCompile_SyntaxError(t *testing.T) {
	_, err := Compile(`quantities: {`)
	require.Error(t, err)
}

func TestNewRegistry(t *testing.T) {
	reg, err := NewRegistry()
	require.NoError(t, err)

	d, ok := reg.ForQuantity("force")
	require.True(t, ok)
	assert.Equal(t, "L•M/T^2", d.Symbol())

	names := reg.QuantitiesFor(dimensionality.MustParse("L/T"))
	assert.Equal(t, []string{"speed", "velocity"}, names)
}

func TestLoad_Conflict(t *testing.T) {
	reg := dimensionality.NewRegistry()
	require.NoError(t, reg.AddQuantity("speed", dimensionality.Base(dimensionality.Time)))

	err := Load(reg, []Quantity{{Name: "speed", Dimensionality: dimensionality.MustParse("L/T")}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `load quantity "speed"`)
}
