package harness

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/siquant/internal/unit"
)

// RenderTrace renders a trace one event per line:
//
//	003 convert 1 km -> m => 1000 m <float64>
//	004 add 1 m + 1 kg => error INCOMPATIBLE_DIMENSIONALITIES
func RenderTrace(trace []TraceEvent) []byte {
	var buf strings.Builder
	for _, event := range trace {
		buf.WriteString(renderEvent(event))
		buf.WriteByte('\n')
	}
	return []byte(buf.String())
}

func renderEvent(event TraceEvent) string {
	out := event.Output
	if event.Error != "" {
		out = "error " + event.Error
	}
	return fmt.Sprintf("%03d %s %s => %s", event.Seq, event.Op, event.Input, out)
}

// RunWithGolden executes a scenario, fails t on any failed expectation, and
// compares the rendered trace against testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, reg *unit.Registry, scenario *Scenario) error {
	t.Helper()

	result, err := Run(reg, scenario)
	if err != nil {
		return err
	}
	for _, msg := range result.Errors {
		t.Errorf("%s: %s", scenario.Name, msg)
	}

	AssertGolden(t, scenario.Name, result)
	return nil
}

// AssertGolden compares the given result's trace against a golden file
// without re-running the scenario.
func AssertGolden(t *testing.T, name string, result *Result) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, RenderTrace(result.Trace))
}
