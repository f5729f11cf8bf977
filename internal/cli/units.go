package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/siquant/internal/store"
	"github.com/roach88/siquant/internal/unit"
)

// UnitList is the output of the units command.
type UnitList struct {
	Units []UnitInfo `json:"units"`
}

func (l UnitList) String() string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SYMBOL\tNAME\tQUANTITY\tDIMENSIONALITY\tSCALE")
	for _, u := range l.Units {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", u.Symbol, u.Name, u.Quantity, u.Dimensionality, formatScale(u.Scale))
	}
	w.Flush()
	return strings.TrimSuffix(b.String(), "\n")
}

// NewUnitsCommand creates the units command.
func NewUnitsCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		quantity string
		dim      string
		reduced  bool
		stored   bool
	)

	cmd := &cobra.Command{
		Use:   "units",
		Short: "List defined units",
		Long: `List the defined units, optionally filtered by quantity or dimensionality.

Examples:
  siq units --quantity length
  siq units --dimensionality "L/T"
  siq units --dimensionality "L•T/T^2" --reduced
  siq --db units.db units --stored --quantity length`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if quantity != "" && dim != "" {
				return rootOpts.fail(cmd, NewExitError(ExitCommandError, "--quantity and --dimensionality are mutually exclusive"))
			}
			if stored {
				list, err := listStoredUnits(rootOpts, cmd, quantity, dim)
				if err != nil {
					return rootOpts.fail(cmd, err)
				}
				return rootOpts.formatter(cmd).Success(list)
			}

			reg, err := rootOpts.registry(commandContext(cmd))
			if err != nil {
				return rootOpts.fail(cmd, err)
			}

			var units []*unit.Unit
			switch {
			case quantity != "":
				units = reg.UnitsForQuantity(quantity)
			case dim != "":
				d, err := reg.Dimensionalities().ForSymbol(dim)
				if err != nil {
					return rootOpts.fail(cmd, err)
				}
				if reduced {
					units = reg.UnitsForReducedDimensionality(d)
				} else {
					units = reg.UnitsForDimensionality(d)
				}
			default:
				units = reg.Units()
			}

			list := UnitList{Units: make([]UnitInfo, 0, len(units))}
			for _, u := range units {
				list.Units = append(list.Units, newUnitInfo(u))
			}
			return rootOpts.formatter(cmd).Success(list)
		},
	}

	cmd.Flags().StringVar(&quantity, "quantity", "", "only list units of this quantity")
	cmd.Flags().StringVar(&dim, "dimensionality", "", "only list units of this dimensionality")
	cmd.Flags().BoolVar(&reduced, "reduced", false, "match --dimensionality after reduction")
	cmd.Flags().BoolVar(&stored, "stored", false, "list the definitions stored in --db instead")

	return cmd
}

// listStoredUnits lists the definitions in --db as written, matching
// --quantity and --dimensionality textually.
func listStoredUnits(opts *RootOptions, cmd *cobra.Command, quantity, dim string) (UnitList, error) {
	st, err := opts.openStore()
	if err != nil {
		return UnitList{}, err
	}
	defer st.Close()

	var filter store.And
	if quantity != "" {
		filter.Predicates = append(filter.Predicates, store.Equals{Field: "quantity", Value: quantity})
	}
	if dim != "" {
		filter.Predicates = append(filter.Predicates, store.Equals{Field: "dimensionality", Value: dim})
	}

	records, err := st.FindUnits(commandContext(cmd), filter)
	if err != nil {
		return UnitList{}, err
	}
	list := UnitList{Units: make([]UnitInfo, 0, len(records))}
	for _, rec := range records {
		list.Units = append(list.Units, UnitInfo{
			Symbol:         rec.Symbol,
			Name:           rec.Name,
			Plural:         rec.Plural,
			Quantity:       rec.Quantity,
			Dimensionality: rec.Dimensionality,
			Scale:          rec.Scale,
			Coherent:       rec.Scale == 1,
			Defined:        true,
		})
	}
	return list, nil
}
