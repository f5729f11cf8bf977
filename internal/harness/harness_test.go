package harness

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/siquant/internal/catalog"
	"github.com/roach88/siquant/internal/unit"
)

// freshRegistry builds a registry that scenarios may extend without affecting
// other tests.
func freshRegistry(t *testing.T) *unit.Registry {
	t.Helper()
	dims, err := catalog.NewRegistry()
	require.NoError(t, err)
	defs, err := unit.DefaultLibrary()
	require.NoError(t, err)
	reg, err := unit.NewRegistry(dims, defs)
	require.NoError(t, err)
	return reg
}

func TestScenarios_Golden(t *testing.T) {
	files, err := FindScenarios([]string{"testdata/scenarios"})
	require.NoError(t, err)
	require.Len(t, files, 4)

	for _, file := range files {
		scenario, err := LoadScenario(file)
		require.NoError(t, err, file)

		t.Run(scenario.Name, func(t *testing.T) {
			require.NoError(t, RunWithGolden(t, freshRegistry(t), scenario))
		})
	}
}

func TestRun_ReportsFailedExpectations(t *testing.T) {
	want := 3.0
	scenario := &Scenario{
		Name:        "failing",
		Description: "expectations that do not hold",
		Steps: []Step{
			{Op: OpConvert, Value: "1", Unit: "km", Target: "m", Expect: &Expect{Value: &want}},
			{Op: OpAdd, Value: "1", Unit: "m", Value2: "1", Unit2: "s", Expect: &Expect{Unit: "m"}},
			{Op: OpCanonicalize, Unit: "m*s", Expect: &Expect{Error: "MALFORMED_EXPRESSION"}},
			{Op: OpParseUnit, Unit: "qq"},
		},
		Assertions: []Assertion{
			{Type: AssertTraceCount, Op: OpConvert, Count: 2},
		},
	}

	result, err := Run(freshRegistry(t), scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 5)
	assert.Contains(t, result.Errors[0], "value = 1000, want 3")
	assert.Contains(t, result.Errors[1], "unexpected error")
	assert.Contains(t, result.Errors[2], "expected error MALFORMED_EXPRESSION")
	assert.Contains(t, result.Errors[3], "UNKNOWN_SYMBOL")
	assert.Contains(t, result.Errors[4], "Assertion failed: trace_count")

	require.Len(t, result.Trace, 4)
	assert.Equal(t, "INCOMPATIBLE_DIMENSIONALITIES", result.Trace[1].Error)
	assert.Equal(t, "m•s", result.Trace[2].Output)
}

func TestRun_TolerancePerStep(t *testing.T) {
	want := 2.9
	scenario := &Scenario{
		Name:        "tolerance",
		Description: "loose comparison",
		Steps: []Step{
			{Op: OpAdd, Value: "2", Unit: "m", Value2: "3", Unit2: "ft",
				Expect: &Expect{Value: &want, Tolerance: 0.01}},
		},
	}

	result, err := Run(freshRegistry(t), scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
}

func TestRun_InvalidUnitsFail(t *testing.T) {
	scenario := &Scenario{
		Name:        "bad_units",
		Description: "unknown quantity",
		Units:       []unit.Definition{{Quantity: "no such quantity", Symbol: "zork", Scale: 1}},
		Steps:       []Step{{Op: OpParseUnit, Unit: "m"}},
	}

	_, err := Run(freshRegistry(t), scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to define units")
}

func TestParseScenario_Validation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"missing name", "description: d\nsteps: [{op: abs, value: '1', unit: m}]", "name is required"},
		{"missing description", "name: n\nsteps: [{op: abs, value: '1', unit: m}]", "description is required"},
		{"no steps", "name: n\ndescription: d\nsteps: []", "steps list is required"},
		{"unknown op", "name: n\ndescription: d\nsteps: [{op: frobnicate, unit: m}]", "unknown op"},
		{"missing value", "name: n\ndescription: d\nsteps: [{op: abs, unit: m}]", "value is required"},
		{"missing value2", "name: n\ndescription: d\nsteps: [{op: add, value: '1', unit: m, unit2: m}]", "value2 is required"},
		{"missing target", "name: n\ndescription: d\nsteps: [{op: convert, value: '1', unit: m}]", "target is required"},
		{"fractional root", "name: n\ndescription: d\nsteps: [{op: root, value: '1', unit: m, power: 0.5}]", "positive integer power"},
		{"typo", "name: n\ndescription: d\nstep: []", "failed to parse YAML"},
		{"bad assertion", "name: n\ndescription: d\nsteps: [{op: parse_unit, unit: m}]\nassertions: [{type: final_state}]", "unknown assertion type"},
		{"bad unit", "name: n\ndescription: d\nunits: [{quantity: length, symbol: x, scale: -1}]\nsteps: [{op: parse_unit, unit: m}]", "scale must be positive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadScenario_Errors(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestFindScenarios(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.yaml", "a.yml", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	single := filepath.Join(dir, "notes.txt")

	files, err := FindScenarios([]string{dir, single})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.yml"),
		filepath.Join(dir, "b.yaml"),
		single,
	}, files)

	_, err = FindScenarios([]string{filepath.Join(dir, "nope")})
	var nf *ScenarioNotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestRenderTrace(t *testing.T) {
	trace := []TraceEvent{
		{Seq: 1, Op: OpConvert, Input: "1 km -> m", Output: "1000 m <float64>"},
		{Seq: 12, Op: OpAdd, Input: "1 m + 1 kg", Error: "INCOMPATIBLE_DIMENSIONALITIES"},
	}
	got := string(RenderTrace(trace))
	assert.Equal(t, strings.Join([]string{
		"001 convert 1 km -> m => 1000 m <float64>",
		"012 add 1 m + 1 kg => error INCOMPATIBLE_DIMENSIONALITIES",
		"",
	}, "\n"), got)
}
