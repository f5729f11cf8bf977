package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/siquant/internal/unit"
)

// DefineResult is the output of the define command.
type DefineResult struct {
	Unit   UnitInfo `json:"unit"`
	Stored bool     `json:"stored"`
}

func (r DefineResult) String() string {
	if !r.Stored {
		return fmt.Sprintf("%s already stored", r.Unit.Symbol)
	}
	return fmt.Sprintf("defined %s (%s, %s)", r.Unit.Symbol, r.Unit.Dimensionality, formatScale(r.Unit.Scale))
}

// UndefineResult is the output of the undefine command.
type UndefineResult struct {
	Symbol  string `json:"symbol"`
	Removed bool   `json:"removed"`
}

func (r UndefineResult) String() string {
	if !r.Removed {
		return fmt.Sprintf("%s was not stored", r.Symbol)
	}
	return fmt.Sprintf("removed %s", r.Symbol)
}

// NewDefineCommand creates the define command.
func NewDefineCommand(rootOpts *RootOptions) *cobra.Command {
	var def unit.Definition

	cmd := &cobra.Command{
		Use:   "define <symbol>",
		Short: "Store a user-defined unit",
		Long: `Store a unit in the --db database so later commands can use it.

The definition is checked against the registry before it is written: the
symbol must be unused and the quantity or dimensionality must be known.

Examples:
  siq --db units.db define smoot --quantity length --scale 1.7018 --name smoot --plural smoots
  siq --db units.db define snp --dimensionality "L/T^4" --scale 1 --prefixes`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			def.Symbol = args[0]
			if def.Name == "" {
				def.Name = def.Symbol
			}
			if def.Plural == "" {
				def.Plural = def.Name
			}

			st, err := rootOpts.openStore()
			if err != nil {
				return rootOpts.fail(cmd, err)
			}
			defer st.Close()

			reg, err := rootOpts.registry(commandContext(cmd))
			if err != nil {
				return rootOpts.fail(cmd, err)
			}
			u, err := reg.Define(def)
			if err != nil {
				return rootOpts.fail(cmd, err)
			}
			stored, err := st.DefineUnit(commandContext(cmd), def)
			if err != nil {
				return rootOpts.fail(cmd, err)
			}
			rootOpts.formatter(cmd).VerboseLog("stored %s in %s", u.Symbol(), rootOpts.Database)
			return rootOpts.formatter(cmd).Success(DefineResult{Unit: newUnitInfo(u), Stored: stored})
		},
	}

	cmd.Flags().StringVar(&def.Quantity, "quantity", "", "physical quantity, e.g. length")
	cmd.Flags().StringVar(&def.Dimensionality, "dimensionality", "", "dimensionality symbol, e.g. L/T^2")
	cmd.Flags().Float64Var(&def.Scale, "scale", 0, "scale to the coherent SI unit")
	cmd.Flags().StringVar(&def.Name, "name", "", "singular name (defaults to the symbol)")
	cmd.Flags().StringVar(&def.Plural, "plural", "", "plural name (defaults to the name)")
	cmd.Flags().BoolVar(&def.Prefixes, "prefixes", false, "also define the SI-prefixed variants")
	_ = cmd.MarkFlagRequired("scale")

	return cmd
}

// NewUndefineCommand creates the undefine command.
func NewUndefineCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "undefine <symbol>",
		Short:         "Remove a stored unit",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := rootOpts.openStore()
			if err != nil {
				return rootOpts.fail(cmd, err)
			}
			defer st.Close()

			removed, err := st.DeleteUnit(commandContext(cmd), args[0])
			if err != nil {
				return rootOpts.fail(cmd, err)
			}
			return rootOpts.formatter(cmd).Success(UndefineResult{Symbol: args[0], Removed: removed})
		},
	}
}
