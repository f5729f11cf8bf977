package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/siquant/internal/unit"
)

// CanonResult is the output of the canon command.
type CanonResult struct {
	Input     string `json:"input"`
	Canonical string `json:"canonical"`
}

func (r CanonResult) String() string { return r.Canonical }

// NewCanonCommand creates the canon command.
func NewCanonCommand(rootOpts *RootOptions) *cobra.Command {
	var reduce bool

	cmd := &cobra.Command{
		Use:   "canon <expr>",
		Short: "Print the canonical form of a unit expression",
		Long: `Print the canonical form of a unit expression.

Symbols are sorted within the numerator and denominator and joined with "•".
With --reduce, symbols that appear on both sides cancel.

Examples:
  siq canon "N × m ÷ rad"        # N•m/rad
  siq canon --reduce "(m/s)/(m/s)" # 1`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			canonicalize := unit.Canonicalize
			if reduce {
				canonicalize = unit.Reduce
			}
			out, err := canonicalize(args[0])
			if err != nil {
				return rootOpts.fail(cmd, err)
			}
			return rootOpts.formatter(cmd).Success(CanonResult{Input: args[0], Canonical: out})
		},
	}

	cmd.Flags().BoolVar(&reduce, "reduce", false, "cancel symbols that appear on both sides")

	return cmd
}
