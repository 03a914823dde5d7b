package integrators

import "entroflow/internal/hydro"

// Integrator advances the trajectory state by one sub-step using the
// system's derivative oracle.
type Integrator interface {
	Step(sys hydro.System, x hydro.State, t, dt float64) (hydro.State, error)
}

type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(sys hydro.System, x hydro.State, t, dt float64) (hydro.State, error) {
	dx, err := sys.Derive(x, t)
	if err != nil {
		return nil, err
	}
	result := make(hydro.State, len(x))
	for i := range x {
		result[i] = x[i] + dt*dx[i]
	}
	return result, nil
}
