package unit

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/roach88/siquant/internal/catalog"
	"github.com/roach88/siquant/internal/dimensionality"
	"github.com/roach88/siquant/internal/qerr"
)

// coherentSymbols are the coherent SI base units, one per dimensionality slot.
var coherentSymbols = [dimensionality.NumBase]string{"m", "kg", "s", "A", "K", "mol", "cd"}

// Registry interns units by canonical symbol.
//
// Thread-safety: lookups take a read lock. Composition of a new unit happens
// outside the lock; insertion re-checks under the write lock so racing callers
// converge on the first unit inserted.
type Registry struct {
	mu         sync.RWMutex
	dims       *dimensionality.Registry
	units      map[string]*Unit
	defined    []*Unit
	byQuantity map[string][]*Unit
	one        *Unit
}

// NewRegistry builds a registry from unit definitions. Explicit definitions are
// registered first, in order; SI-prefixed variants follow and never replace an
// explicit symbol.
func NewRegistry(dims *dimensionality.Registry, defs []Definition) (*Registry, error) {
	r := &Registry{
		dims:       dims,
		units:      make(map[string]*Unit),
		byQuantity: make(map[string][]*Unit),
	}
	r.one = &Unit{
		symbol:   "1",
		name:     "dimensionless",
		plural:   "dimensionless",
		quantity: "dimensionless",
		dim:      dims.Intern(dimensionality.Dimensionless()),
		scale:    1,
		defined:  true,
		reg:      r,
	}
	r.insertLocked(r.one)

	for _, def := range defs {
		if _, _, err := r.define(def); err != nil {
			return nil, fmt.Errorf("define unit %q: %w", def.Symbol, err)
		}
	}
	for _, def := range defs {
		if !def.Prefixes {
			continue
		}
		for _, p := range prefixed(def) {
			if _, _, err := r.define(p); err != nil {
				return nil, fmt.Errorf("define unit %q: %w", p.Symbol, err)
			}
		}
	}

	slog.Debug("unit registry built", "units", len(r.defined), "quantities", len(r.byQuantity))
	return r, nil
}

var defaultRegistry = sync.OnceValues(func() (*Registry, error) {
	dims, err := catalog.NewRegistry()
	if err != nil {
		return nil, fmt.Errorf("load quantity catalog: %w", err)
	}
	defs, err := DefaultLibrary()
	if err != nil {
		return nil, err
	}
	return NewRegistry(dims, defs)
})

// Default returns the process-wide registry built from the embedded quantity
// catalog and unit library.
func Default() (*Registry, error) {
	return defaultRegistry()
}

// Dimensionalities returns the dimensionality registry the units are built on.
func (r *Registry) Dimensionalities() *dimensionality.Registry {
	return r.dims
}

// Parse resolves a unit expression to its interned unit. Every atomic symbol in
// the expression must already be registered.
func (r *Registry) Parse(expr string) (*Unit, error) {
	e, err := ParseExpression(expr)
	if err != nil {
		return nil, err
	}
	return r.resolve(e)
}

// MustParse is like Parse but panics on error. Only use it with literal
// expressions.
func (r *Registry) MustParse(expr string) *Unit {
	u, err := r.Parse(expr)
	if err != nil {
		panic(err)
	}
	return u
}

// ForSymbol returns the unit already interned under expr's canonical key. It
// never composes a new unit.
func (r *Registry) ForSymbol(expr string) (*Unit, bool) {
	key, err := Canonicalize(expr)
	if err != nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.units[key]
	return u, ok
}

// Dimensionless returns the unit "1".
func (r *Registry) Dimensionless() *Unit {
	return r.one
}

// CoherentUnit returns the coherent SI unit of d, built from m, kg, s, A, K,
// mol and cd. Unreduced exponents are kept, so L/L yields "m/m".
func (r *Registry) CoherentUnit(d dimensionality.Dimensionality) (*Unit, error) {
	acc := newCounts()
	for i := 0; i < dimensionality.NumBase; i++ {
		if n := d.Numerator(i); n > 0 {
			acc.num[coherentSymbols[i]] = int(n)
		}
		if n := d.Denominator(i); n > 0 {
			acc.den[coherentSymbols[i]] = int(n)
		}
	}
	return r.resolve(acc.expression())
}

// Define registers a user-defined unit. The symbol must be a single unused
// symbol. When def.Prefixes is set the prefixed variants are registered too,
// skipping symbols that are taken.
func (r *Registry) Define(def Definition) (*Unit, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	expr, err := ParseExpression(def.Symbol)
	if err != nil {
		return nil, err
	}
	if !expr.IsAtomic() {
		return nil, qerr.Malformed(def.Symbol, "a defined unit symbol must be a single symbol")
	}
	u, inserted, err := r.define(def)
	if err != nil {
		return nil, err
	}
	if !inserted {
		return nil, fmt.Errorf("unit %q is already defined", u.symbol)
	}
	if def.Prefixes {
		for _, p := range prefixed(def) {
			if _, _, err := r.define(p); err != nil {
				return nil, fmt.Errorf("define unit %q: %w", p.Symbol, err)
			}
		}
	}
	slog.Info("defined unit", "symbol", u.symbol, "quantity", u.quantity, "scale", u.scale)
	return u, nil
}

// UnitsForQuantity returns the defined units of a named quantity in
// definition order.
func (r *Registry) UnitsForQuantity(name string) []*Unit {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*Unit(nil), r.byQuantity[quantityKey(name)]...)
}

// UnitsForDimensionality returns the defined units whose dimensionality is
// exactly d.
func (r *Registry) UnitsForDimensionality(d dimensionality.Dimensionality) []*Unit {
	return r.filterDefined(func(u *Unit) bool { return u.dim.Equal(d) })
}

// UnitsForReducedDimensionality returns the defined units sharing d's reduced
// dimensionality, e.g. both "rad" and "sr" for 1.
func (r *Registry) UnitsForReducedDimensionality(d dimensionality.Dimensionality) []*Unit {
	return r.filterDefined(func(u *Unit) bool { return u.dim.SameReduced(d) })
}

// ConversionUnits returns the defined units u can be converted to, ordered by
// symbol length and then symbol.
func (r *Registry) ConversionUnits(u *Unit) []*Unit {
	units := r.UnitsForReducedDimensionality(u.dim)
	sortBySymbol(units)
	return units
}

// ShortestEquivalent returns the equivalent unit with the shortest symbol,
// e.g. "N" for "kg•m/s^2". It returns u when nothing shorter exists.
func (r *Registry) ShortestEquivalent(u *Unit) *Unit {
	best := u
	for _, c := range r.UnitsForDimensionality(u.dim) {
		if !Equivalent(u, c) {
			continue
		}
		if symbolLess(c.symbol, best.symbol) {
			best = c
		}
	}
	return best
}

// Units returns every defined unit ordered by symbol length and then symbol.
func (r *Registry) Units() []*Unit {
	units := r.filterDefined(func(*Unit) bool { return true })
	sortBySymbol(units)
	return units
}

// Len returns the number of interned units, derived ones included.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.units)
}

// define interns a definition, reporting whether it was inserted. An existing
// unit under the same key is returned unchanged.
func (r *Registry) define(def Definition) (*Unit, bool, error) {
	if err := def.Validate(); err != nil {
		return nil, false, err
	}
	expr, err := ParseExpression(def.Symbol)
	if err != nil {
		return nil, false, err
	}
	d, err := r.definitionDimensionality(def)
	if err != nil {
		return nil, false, err
	}
	u := &Unit{
		symbol:   expr.String(),
		name:     def.Name,
		plural:   def.Plural,
		quantity: quantityKey(def.Quantity),
		dim:      r.dims.Intern(d),
		scale:    def.Scale,
		expr:     expr,
		defined:  true,
		reg:      r,
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.units[u.symbol]; ok {
		return existing, false, nil
	}
	r.insertLocked(u)
	return u, true, nil
}

func (r *Registry) definitionDimensionality(def Definition) (dimensionality.Dimensionality, error) {
	if def.Dimensionality == "" {
		d, ok := r.dims.ForQuantity(def.Quantity)
		if !ok {
			return dimensionality.Dimensionality{}, qerr.UnknownQuantity(def.Quantity)
		}
		return d, nil
	}

	d, err := r.dims.ForSymbol(def.Dimensionality)
	if err != nil {
		return dimensionality.Dimensionality{}, err
	}
	if def.Quantity == "" {
		return d, nil
	}
	if qd, ok := r.dims.ForQuantity(def.Quantity); ok {
		if !qd.Equal(d) {
			return dimensionality.Dimensionality{}, fmt.Errorf(
				"quantity %q has dimensionality %s, not %s", def.Quantity, qd, d)
		}
		return d, nil
	}
	if err := r.dims.AddQuantity(def.Quantity, d); err != nil {
		return dimensionality.Dimensionality{}, err
	}
	return d, nil
}

// resolve returns the unit interned under e's canonical key, composing and
// interning it on a miss.
func (r *Registry) resolve(e Expression) (*Unit, error) {
	key := e.String()
	for _, side := range [][]Term{e.Numerator, e.Denominator} {
		for _, t := range side {
			if t.Power > MaxPower {
				return nil, powerOverflow(key)
			}
		}
	}

	r.mu.RLock()
	u, ok := r.units[key]
	r.mu.RUnlock()
	if ok {
		registryLookups.WithLabelValues("hit").Inc()
		return u, nil
	}
	registryLookups.WithLabelValues("miss").Inc()

	u, err := r.compose(e, key)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	if existing, ok := r.units[key]; ok {
		r.mu.Unlock()
		return existing, nil
	}
	r.insertLocked(u)
	r.mu.Unlock()

	registryInterned.Inc()
	slog.Debug("interned unit", "symbol", key, "dimensionality", u.dim.Symbol(), "scale", u.scale)
	return u, nil
}

// compose builds a derived unit from the atomic units named in e.
func (r *Registry) compose(e Expression, key string) (*Unit, error) {
	dim := dimensionality.Dimensionless()
	scale := 1.0

	for _, t := range e.Numerator {
		atom, err := r.atom(t.Symbol)
		if err != nil {
			return nil, err
		}
		d, err := atom.dim.PowerWithoutReducing(float64(t.Power))
		if err != nil {
			return nil, err
		}
		if dim, err = dim.MultiplyWithoutReducing(d); err != nil {
			return nil, err
		}
		scale *= math.Pow(atom.scale, float64(t.Power))
	}
	for _, t := range e.Denominator {
		atom, err := r.atom(t.Symbol)
		if err != nil {
			return nil, err
		}
		d, err := atom.dim.PowerWithoutReducing(float64(t.Power))
		if err != nil {
			return nil, err
		}
		if dim, err = dim.DivideWithoutReducing(d); err != nil {
			return nil, err
		}
		scale /= math.Pow(atom.scale, float64(t.Power))
	}

	if scale == 0 || math.IsInf(scale, 0) || math.IsNaN(scale) {
		return nil, qerr.Overflow("scale of unit " + key + " is not representable")
	}
	return &Unit{
		symbol: key,
		dim:    r.dims.Intern(dim),
		scale:  scale,
		expr:   e,
		reg:    r,
	}, nil
}

func (r *Registry) atom(symbol string) (*Unit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.units[symbol]
	if !ok {
		return nil, qerr.Unknown(symbol)
	}
	return u, nil
}

// insertLocked adds u. The caller holds the write lock or owns r exclusively.
func (r *Registry) insertLocked(u *Unit) {
	r.units[u.symbol] = u
	if !u.defined {
		return
	}
	r.defined = append(r.defined, u)
	if u.quantity != "" {
		r.byQuantity[u.quantity] = append(r.byQuantity[u.quantity], u)
	}
}

func (r *Registry) filterDefined(keep func(*Unit) bool) []*Unit {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Unit
	for _, u := range r.defined {
		if keep(u) {
			out = append(out, u)
		}
	}
	return out
}

func sortBySymbol(units []*Unit) {
	sort.SliceStable(units, func(i, j int) bool {
		return symbolLess(units[i].symbol, units[j].symbol)
	})
}

// symbolLess orders symbols by rune count, then lexically.
func symbolLess(a, b string) bool {
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	if la != lb {
		return la < lb
	}
	return a < b
}

func quantityKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
