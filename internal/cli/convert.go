package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/siquant/internal/scalar"
	"github.com/roach88/siquant/internal/unit"
)

// ScalarResult is a quantity printed by convert, best and calc.
type ScalarResult struct {
	Value       string  `json:"value"`
	Real        float64 `json:"real"`
	Imag        float64 `json:"imag,omitempty"`
	Unit        string  `json:"unit"`
	ElementType string  `json:"element_type"`
}

func newScalarResult(s scalar.Scalar) ScalarResult {
	v := s.Complex128Value()
	return ScalarResult{
		Value:       s.String(),
		Real:        real(v),
		Imag:        imag(v),
		Unit:        s.Unit().Symbol(),
		ElementType: s.ElementType().String(),
	}
}

func (r ScalarResult) String() string { return r.Value }

// parseOperand parses a value with an optional element type override.
func parseOperand(reg *unit.Registry, value, unitExpr, typ string) (scalar.Scalar, error) {
	s, err := scalar.Parse(value, unitExpr, reg)
	if err != nil {
		return scalar.Scalar{}, err
	}
	if typ == "" {
		return s, nil
	}
	t, err := scalar.ParseElementType(typ)
	if err != nil {
		return scalar.Scalar{}, err
	}
	return s.WithElementType(t), nil
}

// NewConvertCommand creates the convert command.
func NewConvertCommand(rootOpts *RootOptions) *cobra.Command {
	var typ string

	cmd := &cobra.Command{
		Use:   "convert <value> <from> <to>",
		Short: "Convert a value between units",
		Long: `Convert a value between two units of the same reduced dimensionality.

Values may be complex, e.g. "3+4i".

Examples:
  siq convert 1 km m          # 1000 m
  siq convert 3+4i mV V       # (0.003+0.004i) V`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := rootOpts.registry(commandContext(cmd))
			if err != nil {
				return rootOpts.fail(cmd, err)
			}
			s, err := parseOperand(reg, args[0], args[1], typ)
			if err != nil {
				return rootOpts.fail(cmd, err)
			}
			target, err := reg.Parse(args[2])
			if err != nil {
				return rootOpts.fail(cmd, err)
			}
			out, err := scalar.ConvertToUnit(s, target)
			if err != nil {
				return rootOpts.fail(cmd, err)
			}
			return rootOpts.formatter(cmd).Success(newScalarResult(out))
		},
	}

	cmd.Flags().StringVar(&typ, "type", "", "element type (float32|float64|complex64|complex128)")

	return cmd
}

// NewBestCommand creates the best command.
func NewBestCommand(rootOpts *RootOptions) *cobra.Command {
	var quantity string

	cmd := &cobra.Command{
		Use:   "best <value> <unit>",
		Short: "Re-express a value in its most readable unit",
		Long: `Re-express a value in the unit that brings its magnitude closest to 1.

The value only moves when the new unit saves more than two orders of
magnitude. --quantity restricts the candidates to one physical quantity.

Examples:
  siq best 0.005 s               # 5 ms
  siq best 5000 m --quantity length`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := rootOpts.registry(commandContext(cmd))
			if err != nil {
				return rootOpts.fail(cmd, err)
			}
			s, err := parseOperand(reg, args[0], args[1], "")
			if err != nil {
				return rootOpts.fail(cmd, err)
			}
			out, err := scalar.BestConversionForQuantity(s, quantity)
			if err != nil {
				return rootOpts.fail(cmd, err)
			}
			return rootOpts.formatter(cmd).Success(newScalarResult(out))
		},
	}

	cmd.Flags().StringVar(&quantity, "quantity", "", "only consider units of this quantity")

	return cmd
}
