package dimensionality

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/roach88/siquant/internal/qerr"
)

// Registry interns dimensionalities by symbol and indexes named physical
// quantities (e.g. "force") by dimensionality.
//
// Thread-safety: lookups take a read lock; insertion is serialized by the write
// lock with insert-if-absent semantics.
type Registry struct {
	mu         sync.RWMutex
	bySymbol   map[string]Dimensionality
	quantities map[string]Dimensionality
	names      map[Dimensionality][]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		bySymbol:   make(map[string]Dimensionality),
		quantities: make(map[string]Dimensionality),
		names:      make(map[Dimensionality][]string),
	}
}

// Intern records d under its rendered symbol and returns the registered value.
func (r *Registry) Intern(d Dimensionality) Dimensionality {
	symbol := d.Symbol()

	r.mu.RLock()
	existing, ok := r.bySymbol[symbol]
	r.mu.RUnlock()
	if ok {
		return existing
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.bySymbol[symbol]; ok {
		return existing
	}
	r.bySymbol[symbol] = d
	return d
}

// ForSymbol parses symbol and interns the result. Symbols seen before are
// answered from the registry without parsing.
func (r *Registry) ForSymbol(symbol string) (Dimensionality, error) {
	r.mu.RLock()
	d, ok := r.bySymbol[symbol]
	r.mu.RUnlock()
	if ok {
		return d, nil
	}

	d, err := Parse(symbol)
	if err != nil {
		return Dimensionality{}, err
	}
	d = r.Intern(d)

	r.mu.Lock()
	if _, ok := r.bySymbol[symbol]; !ok {
		r.bySymbol[symbol] = d
	}
	r.mu.Unlock()
	return d, nil
}

// AddQuantity registers a named physical quantity. Names are case-insensitive.
// Re-adding a name with the same dimensionality is a no-op; re-adding it with a
// different one is an error.
func (r *Registry) AddQuantity(name string, d Dimensionality) error {
	key := quantityKey(name)
	if key == "" {
		return qerr.Malformed(name, "empty quantity name")
	}
	d = r.Intern(d)

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.quantities[key]; ok {
		if existing != d {
			return fmt.Errorf("quantity %q already registered as %s, not %s", key, existing, d)
		}
		return nil
	}
	r.quantities[key] = d
	names := append(r.names[d], key)
	sort.Strings(names)
	r.names[d] = names
	return nil
}

// ForQuantity returns the dimensionality registered for a quantity name.
func (r *Registry) ForQuantity(name string) (Dimensionality, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.quantities[quantityKey(name)]
	return d, ok
}

// QuantitiesFor returns the quantity names whose dimensionality is exactly d.
func (r *Registry) QuantitiesFor(d Dimensionality) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.names[d]...)
}

// QuantitiesForReduced returns the quantity names sharing d's reduced
// dimensionality, e.g. both "plane angle" and "solid angle" for 1.
func (r *Registry) QuantitiesForReduced(d Dimensionality) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []string
	for name, qd := range r.quantities {
		if qd.SameReduced(d) {
			result = append(result, name)
		}
	}
	sort.Strings(result)
	return result
}

// Quantities returns every registered quantity name, sorted.
func (r *Registry) Quantities() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]string, 0, len(r.quantities))
	for name := range r.quantities {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}

// Len returns the number of interned dimensionality symbols.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.bySymbol)
}

func quantityKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
