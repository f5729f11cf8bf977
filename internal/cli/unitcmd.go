package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/siquant/internal/unit"
)

// UnitInfo describes one unit.
type UnitInfo struct {
	Symbol         string  `json:"symbol"`
	Name           string  `json:"name"`
	Plural         string  `json:"plural"`
	Quantity       string  `json:"quantity,omitempty"`
	Dimensionality string  `json:"dimensionality"`
	Scale          float64 `json:"scale"`
	Coherent       bool    `json:"coherent"`
	Defined        bool    `json:"defined"`
}

func newUnitInfo(u *unit.Unit) UnitInfo {
	return UnitInfo{
		Symbol:         u.Symbol(),
		Name:           u.Name(),
		Plural:         u.PluralName(),
		Quantity:       u.Quantity(),
		Dimensionality: u.Dimensionality().Symbol(),
		Scale:          u.ScaleToCoherentSI(),
		Coherent:       u.IsCoherent(),
		Defined:        u.Defined(),
	}
}

func (i UnitInfo) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "symbol:         %s\n", i.Symbol)
	fmt.Fprintf(&b, "name:           %s (%s)\n", i.Name, i.Plural)
	if i.Quantity != "" {
		fmt.Fprintf(&b, "quantity:       %s\n", i.Quantity)
	}
	fmt.Fprintf(&b, "dimensionality: %s\n", i.Dimensionality)
	fmt.Fprintf(&b, "scale:          %s", formatScale(i.Scale))
	return b.String()
}

func formatScale(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }

// NewUnitCommand creates the unit command.
func NewUnitCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "unit <expr>",
		Short: "Describe a unit expression",
		Long: `Resolve a unit expression against the registry and print its symbol,
dimensionality and scale to the coherent SI unit.

Examples:
  siq unit km
  siq unit "kg*m/s^2"`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := rootOpts.registry(commandContext(cmd))
			if err != nil {
				return rootOpts.fail(cmd, err)
			}
			u, err := reg.Parse(args[0])
			if err != nil {
				return rootOpts.fail(cmd, err)
			}
			return rootOpts.formatter(cmd).Success(newUnitInfo(u))
		},
	}
}
