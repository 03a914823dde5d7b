// Package network defines the reaction-network collaborator contract the
// trajectory driver integrates against, plus a small self-contained
// analytic implementation used by the shipped binary and the tests. The
// real solver behind this seam (rate evaluation, implicit solve,
// screening) is deliberately opaque to the core.
package network

// View scopes which species participate in an evaluation. Views are
// created once at setup or obtained transiently from the network each
// step; callers never mutate them.
type View interface {
	Species() []string
	Contains(name string) bool
}

// Network is the composition collaborator. Temperature, density, and the
// sub-interval are always passed explicitly; the network holds only the
// composition and its own solver state.
type Network interface {
	// Evolve advances the composition over dt at fixed conditions. The
	// call is authoritative: probing callers must snapshot and restore
	// the abundance vectors around it.
	Evolve(v View, t9, rho, dt float64) error

	// Entropy returns the entropy per nucleon (k_B units) of the current
	// composition at the given conditions.
	Entropy(t9, rho float64) float64

	// EntropyGenerationRate returns ds/dt from reactions inside the view.
	EntropyGenerationRate(v View, t9, rho float64) float64

	// Species lists the species names in storage order.
	Species() []string

	// Abundance vectors, cloned on read so callers can snapshot them.
	Abundances() []float64
	AbundanceChanges() []float64
	SetAbundances(y []float64)
	SetAbundanceChanges(dy []float64)

	// UpdateTimeStep applies the network's own step regulation: growth
	// capped by regT, bounded by relative abundance change against regY
	// for species above yMin. Returns the regulated step.
	UpdateTimeStep(dt, regT, regY, yMin float64) float64

	// Limit prunes species below the cutoff abundance from the evolution
	// view until they are repopulated.
	Limit(cutoff float64)

	// EvolutionView is the network's current evolution subset.
	EvolutionView() View

	// SelectView builds a restricted view from a selector expression
	// ("" or "all" selects every species; otherwise a comma-separated
	// species list).
	SelectView(expr string) (View, error)
}
