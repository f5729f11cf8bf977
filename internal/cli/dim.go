package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// DimResult is the output of the dim command.
type DimResult struct {
	Symbol     string   `json:"symbol"`
	Reduced    string   `json:"reduced"`
	Quantities []string `json:"quantities"`
}

func (r DimResult) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "symbol:     %s\n", r.Symbol)
	fmt.Fprintf(&b, "reduced:    %s\n", r.Reduced)
	fmt.Fprintf(&b, "quantities: %s", strings.Join(r.Quantities, ", "))
	return b.String()
}

// NewDimCommand creates the dim command.
func NewDimCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dim <symbol>",
		Short: "Describe a dimensionality",
		Long: `Parse a dimensionality symbol over the base letters L M T I Θ N J and
list the physical quantities that share its reduced form.

Examples:
  siq dim "L•M/T^2"
  siq dim "L/L"`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := rootOpts.registry(commandContext(cmd))
			if err != nil {
				return rootOpts.fail(cmd, err)
			}
			dims := reg.Dimensionalities()
			d, err := dims.ForSymbol(args[0])
			if err != nil {
				return rootOpts.fail(cmd, err)
			}
			quantities := dims.QuantitiesForReduced(d)
			if quantities == nil {
				quantities = []string{}
			}
			return rootOpts.formatter(cmd).Success(DimResult{
				Symbol:     d.Symbol(),
				Reduced:    d.Reduce().Symbol(),
				Quantities: quantities,
			})
		},
	}
}
