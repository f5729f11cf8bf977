package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/siquant/internal/unit"
)

func TestCompileFilter(t *testing.T) {
	const cols = "SELECT id, symbol, name, plural, quantity, dimensionality, scale, prefixes, seq FROM units"
	const order = " ORDER BY seq ASC, id COLLATE BINARY ASC"

	tests := []struct {
		name       string
		pred       Predicate
		wantWhere  string
		wantParams []any
	}{
		{"nil", nil, "", nil},
		{"equals text", Equals{Field: "quantity", Value: "length"},
			" WHERE quantity COLLATE NOCASE = ?", []any{"length"}},
		{"equals number", &Equals{Field: "scale", Value: 2.0},
			" WHERE scale = ?", []any{2.0}},
		{"in", In{Field: "symbol", Values: []any{"a", "b"}},
			" WHERE symbol COLLATE NOCASE IN (?, ?)", []any{"a", "b"}},
		{"empty in", In{Field: "symbol"}, " WHERE 1 = 0", nil},
		{"empty and", And{}, " WHERE 1 = 1", nil},
		{"empty or", Or{}, " WHERE 1 = 0", nil},
		{"nested", And{Predicates: []Predicate{
			Equals{Field: "quantity", Value: "length"},
			Or{Predicates: []Predicate{
				Equals{Field: "prefixes", Value: true},
				In{Field: "symbol", Values: []any{"x"}},
			}},
		}}, " WHERE (quantity COLLATE NOCASE = ?) AND ((prefixes = ?) OR (symbol COLLATE NOCASE IN (?)))",
			[]any{"length", true, "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, params, err := CompileFilter(tt.pred)
			require.NoError(t, err)
			assert.Equal(t, cols+tt.wantWhere+order, sql)
			assert.Equal(t, tt.wantParams, params)
		})
	}
}

func TestCompileFilter_Errors(t *testing.T) {
	_, _, err := CompileFilter(Equals{Field: "symbol; DROP TABLE units", Value: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown field")

	_, _, err = CompileFilter(And{Predicates: []Predicate{nil}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported predicate type")
}

func TestFindUnits(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	defs := []unit.Definition{
		{Quantity: "length", Symbol: "smoot", Scale: 1.7018},
		{Quantity: "Time", Symbol: "jiffy", Scale: 0.01},
		{Quantity: "length", Symbol: "hand", Scale: 0.1016, Prefixes: true},
	}
	for _, def := range defs {
		_, err := s.DefineUnit(ctx, def)
		require.NoError(t, err)
	}

	symbols := func(records []Record) []string {
		out := make([]string, 0, len(records))
		for _, r := range records {
			out = append(out, r.Symbol)
		}
		return out
	}

	records, err := s.FindUnits(ctx, Equals{Field: "quantity", Value: "LENGTH"})
	require.NoError(t, err)
	assert.Equal(t, []string{"smoot", "hand"}, symbols(records))

	records, err = s.FindUnits(ctx, And{Predicates: []Predicate{
		Equals{Field: "quantity", Value: "length"},
		Equals{Field: "prefixes", Value: true},
	}})
	require.NoError(t, err)
	assert.Equal(t, []string{"hand"}, symbols(records))

	records, err = s.FindUnits(ctx, In{Field: "symbol", Values: []any{"jiffy", "nope"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"jiffy"}, symbols(records))

	records, err = s.FindUnits(ctx, Equals{Field: "quantity", Value: "mass"})
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}
