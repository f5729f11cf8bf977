package harness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	gscalar "gonum.org/v1/gonum/floats/scalar"

	"github.com/roach88/siquant/internal/qerr"
	"github.com/roach88/siquant/internal/scalar"
	"github.com/roach88/siquant/internal/store"
	"github.com/roach88/siquant/internal/unit"
)

const defaultTolerance = 1e-9

// Harness executes scenario steps against one unit registry.
type Harness struct {
	reg *unit.Registry
	seq int64
}

// outcome is what a step produced.
type outcome struct {
	symbol     string
	value      scalar.Scalar
	hasValue   bool
	scale      float64
	multiplier float64
	output     string
}

// Run executes a scenario and returns the result.
//
// Execution flow:
// 1. Define the scenario's units through an in-memory store
// 2. Execute steps, checking each expect clause
// 3. Evaluate assertions against the trace and registry
//
// Expectation failures are reported in the Result. The returned error is
// reserved for failures of the harness itself.
func Run(reg *unit.Registry, scenario *Scenario) (*Result, error) {
	ctx := context.Background()

	if len(scenario.Units) > 0 {
		if err := defineUnits(ctx, reg, scenario.Units); err != nil {
			return nil, fmt.Errorf("failed to define units: %w", err)
		}
	}

	h := &Harness{reg: reg}
	result := NewResult()
	for i, step := range scenario.Steps {
		h.execute(i, step, result)
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions, reg) {
		result.AddError(msg)
	}

	slog.Debug("scenario finished",
		"scenario", scenario.Name,
		"steps", len(scenario.Steps),
		"pass", result.Pass,
	)
	return result, nil
}

// defineUnits stores defs in a fresh in-memory database and loads them into reg.
func defineUnits(ctx context.Context, reg *unit.Registry, defs []unit.Definition) error {
	st, err := store.Open(":memory:", store.WithIDGenerator(store.NewSequentialGenerator("scenario")))
	if err != nil {
		return fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	for _, def := range defs {
		if _, err := st.DefineUnit(ctx, def); err != nil {
			return err
		}
	}
	_, err = st.LoadInto(ctx, reg)
	return err
}

// execute runs one step and records its trace event and expectation failures.
func (h *Harness) execute(index int, step Step, result *Result) {
	h.seq++
	event := TraceEvent{Seq: h.seq, Op: step.Op, Input: renderInput(step)}

	out, err := h.apply(step)
	if err != nil {
		event.Error = errorCode(err)
	} else {
		event.Output = out.output
	}
	result.AddTrace(event)

	for _, msg := range checkExpect(step.Expect, out, err) {
		result.AddError(fmt.Sprintf("steps[%d] %s %s: %s", index, step.Op, event.Input, msg))
	}

	slog.Debug("step executed",
		"seq", event.Seq,
		"op", step.Op,
		"output", event.Output,
		"error", event.Error,
	)
}

func (h *Harness) apply(step Step) (outcome, error) {
	switch step.Op {
	case OpCanonicalize:
		s, err := unit.Canonicalize(step.Unit)
		return outcome{symbol: s, output: s}, err
	case OpReduceExpression:
		s, err := unit.Reduce(step.Unit)
		return outcome{symbol: s, output: s}, err
	case OpParseUnit:
		u, err := h.reg.Parse(step.Unit)
		if err != nil {
			return outcome{}, err
		}
		return outcome{
			symbol: u.Symbol(),
			scale:  u.ScaleToCoherentSI(),
			output: fmt.Sprintf("%s [%s] %s", u.Symbol(), u.Dimensionality().Symbol(), formatFloat(u.ScaleToCoherentSI())),
		}, nil
	case OpMultiplyUnits, OpDivideUnits, OpPowerUnit:
		return h.applyUnits(step)
	}

	a, err := h.operand(step.Value, step.Unit, step.Type)
	if err != nil {
		return outcome{}, err
	}

	var r scalar.Scalar
	switch step.Op {
	case OpConvert:
		var u *unit.Unit
		if u, err = h.reg.Parse(step.Target); err == nil {
			r, err = scalar.ConvertToUnit(a, u)
		}
	case OpAdd, OpSubtract, OpMultiply, OpDivide, OpCompare:
		var b scalar.Scalar
		if b, err = h.operand(step.Value2, step.Unit2, ""); err != nil {
			return outcome{}, err
		}
		if step.Op == OpCompare {
			ord, err := scalar.Compare(a, b)
			return outcome{symbol: ord.String(), output: ord.String()}, err
		}
		r, err = binary(step.Op, a, b)
	case OpPower:
		r, err = scalar.Power(a, step.Power)
	case OpRoot:
		r, err = scalar.NthRoot(a, int(step.Power))
	case OpReduce:
		r, err = scalar.ReduceUnit(a)
	case OpAbs:
		r = scalar.Abs(a)
	case OpPart:
		var part scalar.ComplexPart
		if part, err = scalar.ParseComplexPart(step.Part); err == nil {
			r, err = scalar.TakeComplexPart(a, part)
		}
	case OpBest:
		r, err = scalar.BestConversionForQuantity(a, step.Quantity)
	default:
		return outcome{}, fmt.Errorf("unknown op %q", step.Op)
	}
	if err != nil {
		return outcome{}, err
	}
	return outcome{
		symbol:   r.Unit().Symbol(),
		value:    r,
		hasValue: true,
		output:   formatScalar(r),
	}, nil
}

func (h *Harness) applyUnits(step Step) (outcome, error) {
	a, err := h.reg.Parse(step.Unit)
	if err != nil {
		return outcome{}, err
	}

	var (
		u *unit.Unit
		m float64
	)
	switch step.Op {
	case OpPowerUnit:
		u, m, err = h.reg.Power(a, step.Power)
	default:
		var b *unit.Unit
		if b, err = h.reg.Parse(step.Unit2); err != nil {
			return outcome{}, err
		}
		if step.Op == OpMultiplyUnits {
			u, m, err = h.reg.Multiply(a, b)
		} else {
			u, m, err = h.reg.Divide(a, b)
		}
	}
	if err != nil {
		return outcome{}, err
	}

	out := u.Symbol()
	if m != 1 {
		out += " x" + formatFloat(m)
	}
	return outcome{symbol: u.Symbol(), multiplier: m, output: out}, nil
}

func (h *Harness) operand(value, unitExpr, typ string) (scalar.Scalar, error) {
	s, err := scalar.Parse(value, unitExpr, h.reg)
	if err != nil {
		return scalar.Scalar{}, err
	}
	if typ == "" {
		return s, nil
	}
	t, err := scalar.ParseElementType(typ)
	if err != nil {
		return scalar.Scalar{}, qerr.Malformed(typ, err.Error())
	}
	return s.WithElementType(t), nil
}

func binary(op string, a, b scalar.Scalar) (scalar.Scalar, error) {
	switch op {
	case OpAdd:
		return scalar.Add(a, b)
	case OpSubtract:
		return scalar.Subtract(a, b)
	case OpMultiply:
		return scalar.Multiply(a, b)
	default:
		return scalar.Divide(a, b)
	}
}

// checkExpect compares a step's outcome with its expect clause and returns one
// message per mismatch.
func checkExpect(exp *Expect, out outcome, err error) []string {
	if exp == nil {
		if err != nil {
			return []string{fmt.Sprintf("unexpected error: %v", err)}
		}
		return nil
	}

	if exp.Error != "" {
		if err == nil {
			return []string{fmt.Sprintf("expected error %s, got %q", exp.Error, out.output)}
		}
		if code := errorCode(err); code != exp.Error {
			return []string{fmt.Sprintf("expected error %s, got %s", exp.Error, code)}
		}
		return nil
	}
	if err != nil {
		return []string{fmt.Sprintf("unexpected error: %v", err)}
	}

	tol := exp.Tolerance
	if tol == 0 {
		tol = defaultTolerance
	}

	var msgs []string
	if exp.Symbol != "" && exp.Symbol != out.symbol {
		msgs = append(msgs, fmt.Sprintf("symbol = %q, want %q", out.symbol, exp.Symbol))
	}
	if exp.Unit != "" {
		switch {
		case !out.hasValue:
			msgs = append(msgs, "unit expected but the step has no value")
		case out.value.Unit().Symbol() != exp.Unit:
			msgs = append(msgs, fmt.Sprintf("unit = %q, want %q", out.value.Unit().Symbol(), exp.Unit))
		}
	}
	if exp.Value != nil {
		got := out.scale
		if out.hasValue {
			got = real(out.value.Complex128Value())
		}
		if !gscalar.EqualWithinAbsOrRel(got, *exp.Value, tol, tol) {
			msgs = append(msgs, fmt.Sprintf("value = %v, want %v", got, *exp.Value))
		}
	}
	if exp.Imag != nil {
		got := imag(out.value.Complex128Value())
		if !gscalar.EqualWithinAbsOrRel(got, *exp.Imag, tol, tol) {
			msgs = append(msgs, fmt.Sprintf("imag = %v, want %v", got, *exp.Imag))
		}
	}
	if exp.Multiplier != nil && !gscalar.EqualWithinAbsOrRel(out.multiplier, *exp.Multiplier, tol, tol) {
		msgs = append(msgs, fmt.Sprintf("multiplier = %v, want %v", out.multiplier, *exp.Multiplier))
	}
	return msgs
}

// errorCode returns the quantity error code of err, or "ERROR" for other
// failures.
func errorCode(err error) string {
	var qe *qerr.Error
	if errors.As(err, &qe) {
		return string(qe.Code)
	}
	return "ERROR"
}

// renderInput describes a step's operands for the trace.
func renderInput(step Step) string {
	first := operandText(step.Value, step.Unit)
	second := operandText(step.Value2, step.Unit2)
	switch step.Op {
	case OpCanonicalize, OpReduceExpression, OpParseUnit:
		return step.Unit
	case OpMultiplyUnits:
		return step.Unit + " * " + step.Unit2
	case OpDivideUnits:
		return step.Unit + " / " + step.Unit2
	case OpPowerUnit:
		return "(" + step.Unit + ")^" + formatFloat(step.Power)
	case OpConvert:
		return first + " -> " + step.Target
	case OpAdd:
		return first + " + " + second
	case OpSubtract:
		return first + " - " + second
	case OpMultiply:
		return first + " * " + second
	case OpDivide:
		return first + " / " + second
	case OpCompare:
		return first + " <=> " + second
	case OpPower:
		return "(" + first + ")^" + formatFloat(step.Power)
	case OpRoot:
		return "root" + formatFloat(step.Power) + "(" + first + ")"
	case OpPart:
		return step.Part + "(" + first + ")"
	case OpBest:
		if step.Quantity == "" {
			return first
		}
		return first + " as " + step.Quantity
	default:
		return first
	}
}

func operandText(value, unitExpr string) string {
	if value == "" {
		return unitExpr
	}
	return value + " " + unitExpr
}

// formatScalar renders s with ten significant digits so that golden output
// does not depend on the last bits of floating point rounding.
func formatScalar(s scalar.Scalar) string {
	v := s.Complex128Value()
	var num string
	if s.ElementType().IsComplex() {
		num = "(" + formatFloat(real(v)) + signed(imag(v)) + "i)"
	} else {
		num = formatFloat(real(v))
	}
	if sym := s.Unit().Symbol(); sym != "1" {
		num += " " + sym
	}
	return num + " <" + s.ElementType().String() + ">"
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', 10, 64)
}

func signed(f float64) string {
	s := formatFloat(f)
	if f >= 0 {
		return "+" + s
	}
	return s
}
