package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/siquant/internal/scalar"
)

// NewCalcCommand creates the calc command.
func NewCalcCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		noReduce bool
		typ      string
	)

	cmd := &cobra.Command{
		Use:   "calc <value> <unit> <op> <value> <unit>",
		Short: "Combine two quantities",
		Long: `Add, subtract, multiply or divide two quantities. op is one of + - * /.

Sums and differences are expressed in the left operand's unit and require
matching reduced dimensionalities. Products and quotients cancel shared
symbols unless --no-reduce is given.

Examples:
  siq calc 2 m + 3 ft            # 2.9144 m
  siq calc 10 m / 2 s            # 5 m/s
  siq calc --no-reduce 1 m*s / 1 s`,
		Args:          cobra.ExactArgs(5),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := rootOpts.registry(commandContext(cmd))
			if err != nil {
				return rootOpts.fail(cmd, err)
			}
			a, err := parseOperand(reg, args[0], args[1], typ)
			if err != nil {
				return rootOpts.fail(cmd, err)
			}
			b, err := parseOperand(reg, args[3], args[4], typ)
			if err != nil {
				return rootOpts.fail(cmd, err)
			}

			var out scalar.Scalar
			switch op := args[2]; {
			case op == "+":
				out, err = scalar.Add(a, b)
			case op == "-":
				out, err = scalar.Subtract(a, b)
			case op == "*" && noReduce:
				out, err = scalar.MultiplyWithoutReducing(a, b)
			case op == "*":
				out, err = scalar.Multiply(a, b)
			case op == "/" && noReduce:
				out, err = scalar.DivideWithoutReducing(a, b)
			case op == "/":
				out, err = scalar.Divide(a, b)
			default:
				err = NewExitError(ExitCommandError, fmt.Sprintf("unknown operator %q: must be one of + - * /", op))
			}
			if err != nil {
				return rootOpts.fail(cmd, err)
			}
			return rootOpts.formatter(cmd).Success(newScalarResult(out))
		},
	}

	cmd.Flags().BoolVar(&noReduce, "no-reduce", false, "keep symbols shared by numerator and denominator")
	cmd.Flags().StringVar(&typ, "type", "", "element type of both operands")

	return cmd
}
