package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/roach88/siquant/internal/catalog"
	"github.com/roach88/siquant/internal/store"
	"github.com/roach88/siquant/internal/unit"
)

// EnvPrefix prefixes the environment variables bound to global flags, e.g.
// SIQ_FORMAT and SIQ_DB.
const EnvPrefix = "SIQ"

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	Database   string // SQLite file with user-defined units
	ConfigFile string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the siq CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "siq",
		Short: "siq - SI quantities",
		Long:  "Dimensionally safe physical quantities: unit expressions, conversions and arithmetic.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.resolve(v); err != nil {
				return err
			}
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			configureLogging(opts.Verbose)
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite database of user-defined units")
	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "YAML config file (keys: format, db, verbose)")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	_ = v.BindPFlags(cmd.PersistentFlags())

	// Add subcommands
	cmd.AddCommand(NewCanonCommand(opts))
	cmd.AddCommand(NewDimCommand(opts))
	cmd.AddCommand(NewUnitCommand(opts))
	cmd.AddCommand(NewConvertCommand(opts))
	cmd.AddCommand(NewBestCommand(opts))
	cmd.AddCommand(NewCalcCommand(opts))
	cmd.AddCommand(NewUnitsCommand(opts))
	cmd.AddCommand(NewDefineCommand(opts))
	cmd.AddCommand(NewUndefineCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// resolve fills opts from flags, SIQ_* environment variables and the config
// file, in that order of precedence.
func (o *RootOptions) resolve(v *viper.Viper) error {
	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}
	o.Verbose = v.GetBool("verbose")
	o.Format = v.GetString("format")
	o.Database = v.GetString("db")
	o.ConfigFile = v.GetString("config")
	return nil
}

// configureLogging installs the default slog handler on stderr.
func configureLogging(verbose bool) {
	logLevel := slog.LevelWarn
	if verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// registry builds a unit registry from the embedded catalog and library, plus
// the units stored in --db when it is set.
func (o *RootOptions) registry(ctx context.Context) (*unit.Registry, error) {
	dims, err := catalog.NewRegistry()
	if err != nil {
		return nil, err
	}
	defs, err := unit.DefaultLibrary()
	if err != nil {
		return nil, err
	}
	reg, err := unit.NewRegistry(dims, defs)
	if err != nil {
		return nil, err
	}
	if o.Database == "" {
		return reg, nil
	}

	st, err := o.openStore()
	if err != nil {
		return nil, err
	}
	defer st.Close()

	n, err := st.LoadInto(ctx, reg)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load stored units", err)
	}
	slog.Debug("registry ready", "units", reg.Len(), "stored", n, "db", o.Database)
	return reg, nil
}

func (o *RootOptions) openStore() (*store.Store, error) {
	if o.Database == "" {
		return nil, NewExitError(ExitCommandError, "--db (or SIQ_DB) is required")
	}
	st, err := store.Open(o.Database)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// fail reports err through the formatter and returns it as an ExitError.
func (o *RootOptions) fail(cmd *cobra.Command, err error) error {
	code := ErrorCode(err)
	_ = o.formatter(cmd).Error(code, err.Error(), nil)
	return WrapExitError(exitCodeFor(err), "command failed", err)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
