// Package blocks implements a small example block library: Add, Max,
// PriorityArray, SineWave, Now, grounded on internal/reconcile/ntp.go's
// own-ticker "always" run loop and internal/reconcile/freshness.go's
// map-based latest-value bookkeeping.
package blocks

import "logicmesh/registry"

// Library is the qname prefix every block in this package registers under.
const Library = "core"

// Registry is the process-wide registry populated at package init.
// Callers that want an isolated instance (cmd/enginectl and the tests do)
// call RegisterAll against their own *registry.Registry.
var Registry = registry.New()

func init() {
	RegisterAll(Registry)
}

// RegisterAll registers every block this package implements into reg.
func RegisterAll(reg *registry.Registry) {
	registerAdd(reg)
	registerMax(reg)
	registerPriorityArray(reg)
	registerSineWave(reg)
	registerNow(reg)
}
