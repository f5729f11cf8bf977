// Package catalog compiles the CUE catalog of named physical quantities.
//
// The catalog maps quantity names such as "force" or "plane angle" to
// dimensionality symbols. It is embedded in the binary and validated against the
// #Quantity schema before any symbol is parsed.
package catalog

import (
	_ "embed"
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/siquant/internal/dimensionality"
)

//go:embed quantities.cue
var quantitiesCUE string

// Quantity is a named physical quantity and its dimensionality.
type Quantity struct {
	Name           string
	Dimensionality dimensionality.Dimensionality
}

// CompileError describes a catalog entry that failed to compile.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var defaultCatalog = sync.OnceValues(func() ([]Quantity, error) {
	return Compile(quantitiesCUE)
})

// Default returns the compiled embedded catalog. It is compiled once per process.
func Default() ([]Quantity, error) {
	return defaultCatalog()
}

// Compile parses CUE source declaring a `quantities` struct and returns its
// entries in field order.
func Compile(src string) ([]Quantity, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(src, cue.Filename("quantities.cue"))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	quantitiesVal := v.LookupPath(cue.ParsePath("quantities"))
	if !quantitiesVal.Exists() {
		return nil, &CompileError{
			Field:   "quantities",
			Message: "quantities is required",
			Pos:     v.Pos(),
		}
	}

	iter, err := quantitiesVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var result []Quantity
	for iter.Next() {
		name := iter.Selector().Unquoted()
		entry := iter.Value()

		symVal := entry.LookupPath(cue.ParsePath("dimensionality"))
		if !symVal.Exists() {
			return nil, &CompileError{
				Field:   name,
				Message: "dimensionality is required",
				Pos:     entry.Pos(),
			}
		}
		symbol, err := symVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}

		d, err := dimensionality.Parse(symbol)
		if err != nil {
			return nil, &CompileError{
				Field:   name,
				Message: err.Error(),
				Pos:     symVal.Pos(),
			}
		}
		result = append(result, Quantity{Name: name, Dimensionality: d})
	}
	return result, nil
}

// Load registers every quantity with the dimensionality registry.
func Load(reg *dimensionality.Registry, quantities []Quantity) error {
	for _, q := range quantities {
		if err := reg.AddQuantity(q.Name, q.Dimensionality); err != nil {
			return fmt.Errorf("load quantity %q: %w", q.Name, err)
		}
	}
	return nil
}

// NewRegistry returns a dimensionality registry loaded with the embedded catalog.
func NewRegistry() (*dimensionality.Registry, error) {
	quantities, err := Default()
	if err != nil {
		return nil, err
	}
	reg := dimensionality.NewRegistry()
	if err := Load(reg, quantities); err != nil {
		return nil, err
	}
	return reg, nil
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
