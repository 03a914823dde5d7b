// Package zone provides the single computational cell whose thermodynamic
// and compositional state the driver evolves. Each physics role is a typed
// slot wired once at setup, which keeps a seam for substituting
// alternative physics without dynamic lookup.
package zone

import (
	"entroflow/internal/hydro"
	"entroflow/internal/network"
)

// Funcs are the pluggable physics roles. Observer is optional (nil when
// step observation is disabled); every other slot must be wired before the
// first integration step.
type Funcs struct {
	Accel             func(x hydro.State, t float64) float64
	Rho               func(x hydro.State) float64
	T9                func(v network.View) (float64, error)
	Entropy           func() float64
	EntropyGeneration func(v network.View) float64
	Evolve            func(v network.View, dt float64) error
	Observer          func(x, dxdt hydro.State, t float64)
}

// Zone owns the cell's scalar properties and the composition (through the
// network collaborator). It is mutated in place by a single owner; no
// locking is needed.
type Zone struct {
	T9                float64 // working temperature (10^9 K)
	Rho               float64 // density (g/cc)
	Time              float64 // time of the last committed state (s)
	Dtime             float64 // current sub-interval (s)
	EntropyPerNucleon float64 // k_B units
	Particle          string  // particle-count label

	// State components persisted for downstream consumers.
	X0, X1 float64

	// WorkTerm is the quadratic trajectory term the acceleration slot
	// records on every evaluation.
	WorkTerm float64

	Net   network.Network
	Funcs Funcs
}

func New(net network.Network) *Zone {
	return &Zone{Particle: "total", Net: net}
}

// CompositionSnapshot captures the abundance vectors for later structural
// restore around a probing evaluation.
type CompositionSnapshot struct {
	y  []float64
	dy []float64
}

func (z *Zone) SnapshotComposition() CompositionSnapshot {
	return CompositionSnapshot{
		y:  z.Net.Abundances(),
		dy: z.Net.AbundanceChanges(),
	}
}

func (z *Zone) RestoreComposition(s CompositionSnapshot) {
	z.Net.SetAbundances(s.y)
	z.Net.SetAbundanceChanges(s.dy)
}
