// Package harness runs YAML scenarios against the unit and scalar packages.
//
// # Scenario Format
//
//	name: millisecond_conversion
//	description: "0.005 s prefers ms"
//	units:
//	  - {quantity: length, symbol: smoot, name: smoot, plural: smoots, scale: 1.7018}
//	steps:
//	  - op: best
//	    value: "0.005"
//	    unit: s
//	    quantity: time
//	    expect: {unit: ms, value: 5}
//	  - op: add
//	    value: "1"
//	    unit: m
//	    value2: "1"
//	    unit2: kg
//	    expect: {error: INCOMPATIBLE_DIMENSIONALITIES}
//	assertions:
//	  - type: trace_count
//	    op: add
//	    count: 1
//
// Units listed under units are written to an in-memory store and loaded into
// the registry before the steps run, the same path the CLI takes for
// user-defined units.
//
// # Step Operations
//
// Expression operations take their expression from unit: canonicalize,
// reduce_expression and parse_unit. Unit operations combine unit and unit2:
// multiply_units, divide_units and power_unit. Value operations build a scalar
// from value and unit (and a second one from value2 and unit2): convert, add,
// subtract, multiply, divide, power, root, reduce, abs, part, best and compare.
//
// # Deterministic Testing
//
// Every step appends exactly one TraceEvent with a logical seq, so a scenario
// renders to the same text on every run. RunWithGolden compares that text with
// testdata/golden/<name>.golden.
package harness
