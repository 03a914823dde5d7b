package hydro

import "math"

// State component indices.
const (
	IScale     = 0 // scale factor
	IScaleRate = 1 // scale-factor rate term
	IEntropy   = 2 // entropy per nucleon
)

// Dim is the fixed size of the trajectory state.
const Dim = 3

type State []float64

func NewState() State { return make(State, Dim) }

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// System is the derivative oracle fed to an integrator. A Derive call may
// probe collaborator state but must leave no permanent side effect; only
// the driver's committed-step updates stick.
type System interface {
	Derive(x State, t float64) (State, error)
}
