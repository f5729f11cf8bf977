package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/siquant/internal/unit"
)

// Scenario is a sequence of quantity operations with expected outcomes.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Units are defined before the steps run.
	Units []unit.Definition `yaml:"units,omitempty"`

	// Steps run in order. A failing step does not stop the scenario.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final trace.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is one operation. Which operand fields are read depends on Op.
type Step struct {
	Op string `yaml:"op"`

	Value  string `yaml:"value,omitempty"`
	Unit   string `yaml:"unit,omitempty"`
	Value2 string `yaml:"value2,omitempty"`
	Unit2  string `yaml:"unit2,omitempty"`

	// Type optionally stores the first value as float32, float64, complex64
	// or complex128 instead of the type inferred from its literal.
	Type string `yaml:"type,omitempty"`

	// Power is the exponent for power and power_unit, and the root index for
	// root.
	Power float64 `yaml:"power,omitempty"`

	Part     string `yaml:"part,omitempty"`
	Quantity string `yaml:"quantity,omitempty"`
	Target   string `yaml:"target,omitempty"`

	// Expect is optional. Without it the step only contributes to the trace.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect lists the checked properties of a step's outcome. Unset fields are
// not checked.
type Expect struct {
	// Symbol is the textual result: a canonical expression, a unit symbol, or
	// an ordering name for compare.
	Symbol string `yaml:"symbol,omitempty"`

	// Unit is the symbol of the resulting scalar's unit.
	Unit string `yaml:"unit,omitempty"`

	// Value is the real part of a scalar result, or the scale of a parsed unit.
	Value *float64 `yaml:"value,omitempty"`

	Imag       *float64 `yaml:"imag,omitempty"`
	Multiplier *float64 `yaml:"multiplier,omitempty"`

	// Error is the expected error code, e.g. DIVISION_BY_ZERO.
	Error string `yaml:"error,omitempty"`

	// Tolerance is the absolute-or-relative tolerance for numeric checks.
	// Defaults to 1e-9.
	Tolerance float64 `yaml:"tolerance,omitempty"`
}

// Operation names.
const (
	OpCanonicalize     = "canonicalize"
	OpReduceExpression = "reduce_expression"
	OpParseUnit        = "parse_unit"
	OpMultiplyUnits    = "multiply_units"
	OpDivideUnits      = "divide_units"
	OpPowerUnit        = "power_unit"
	OpConvert          = "convert"
	OpAdd              = "add"
	OpSubtract         = "subtract"
	OpMultiply         = "multiply"
	OpDivide           = "divide"
	OpPower            = "power"
	OpRoot             = "root"
	OpReduce           = "reduce"
	OpAbs              = "abs"
	OpPart             = "part"
	OpBest             = "best"
	OpCompare          = "compare"
)

// Assertion validates the final trace.
type Assertion struct {
	// Type is one of trace_contains, trace_count or unit_defined.
	Type string `yaml:"type"`

	// Op selects trace events (trace_contains, trace_count).
	Op string `yaml:"op,omitempty"`

	// Output is the expected rendered output of a matching event
	// (trace_contains).
	Output string `yaml:"output,omitempty"`

	// Count is the expected number of matching events (trace_count).
	Count int `yaml:"count,omitempty"`

	// Symbol must resolve in the registry after the run (unit_defined).
	Symbol string `yaml:"symbol,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceCount    = "trace_count"
	AssertUnitDefined   = "unit_defined"
)

// valueOps need a scalar built from value and unit.
var valueOps = map[string]bool{
	OpConvert: true, OpAdd: true, OpSubtract: true, OpMultiply: true, OpDivide: true,
	OpPower: true, OpRoot: true, OpReduce: true, OpAbs: true, OpPart: true,
	OpBest: true, OpCompare: true,
}

// binaryOps need a second operand in value2/unit2 (or unit2 alone for unit
// operations).
var binaryOps = map[string]bool{
	OpAdd: true, OpSubtract: true, OpMultiply: true, OpDivide: true, OpCompare: true,
	OpMultiplyUnits: true, OpDivideUnits: true,
}

// LoadScenario reads and parses a scenario YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML. Unknown fields are rejected so that
// typos fail loudly.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, def := range s.Units {
		if err := def.Validate(); err != nil {
			return fmt.Errorf("units[%d]: %w", i, err)
		}
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

func validateStep(index int, step *Step) error {
	switch step.Op {
	case OpCanonicalize, OpReduceExpression, OpParseUnit, OpPowerUnit,
		OpMultiplyUnits, OpDivideUnits:
	case "":
		return fmt.Errorf("steps[%d]: op is required", index)
	default:
		if !valueOps[step.Op] {
			return fmt.Errorf("steps[%d]: unknown op %q", index, step.Op)
		}
	}

	if step.Unit == "" {
		return fmt.Errorf("steps[%d]: unit is required for %s", index, step.Op)
	}
	if valueOps[step.Op] && step.Value == "" {
		return fmt.Errorf("steps[%d]: value is required for %s", index, step.Op)
	}
	if binaryOps[step.Op] && step.Unit2 == "" {
		return fmt.Errorf("steps[%d]: unit2 is required for %s", index, step.Op)
	}
	if binaryOps[step.Op] && valueOps[step.Op] && step.Value2 == "" {
		return fmt.Errorf("steps[%d]: value2 is required for %s", index, step.Op)
	}

	switch step.Op {
	case OpConvert:
		if step.Target == "" {
			return fmt.Errorf("steps[%d]: target is required for convert", index)
		}
	case OpPart:
		if step.Part == "" {
			return fmt.Errorf("steps[%d]: part is required for part", index)
		}
	case OpRoot:
		if step.Power < 1 || step.Power != float64(int(step.Power)) {
			return fmt.Errorf("steps[%d]: root needs a positive integer power, got %v", index, step.Power)
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertTraceContains:
		if a.Op == "" {
			return fmt.Errorf("assertions[%d]: op is required for trace_contains", index)
		}
	case AssertTraceCount:
		if a.Op == "" {
			return fmt.Errorf("assertions[%d]: op is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertUnitDefined:
		if a.Symbol == "" {
			return fmt.Errorf("assertions[%d]: symbol is required for unit_defined", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
