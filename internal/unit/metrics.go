package unit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// registryLookups counts Parse lookups by result ("hit" or "miss").
	registryLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "siquant_unit_registry_lookups_total",
		Help: "Unit registry expression lookups by result (hit or miss).",
	}, []string{"result"})

	// registryInterned counts derived units added to a registry after it was built.
	registryInterned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "siquant_unit_registry_interned_total",
		Help: "Derived units interned into a unit registry.",
	})
)

// Metrics returns the unit registry collectors for exposition. They are
// registered with the default Prometheus registry at package init.
func Metrics() []prometheus.Collector {
	return []prometheus.Collector{registryLookups, registryInterned}
}
