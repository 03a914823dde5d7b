package integrators

import (
	"math"

	"entroflow/internal/hydro"
)

// AB4 coefficients (uniform step spacing), newest history entry first.
var abCoeff = [4]float64{55.0 / 24.0, -59.0 / 24.0, 37.0 / 24.0, -9.0 / 24.0}

// AdamsBashforth is a 4th-order explicit multistep stepper. It keeps its
// own history of past derivative evaluations; the first three steps, and
// any step after the step size changes, are taken with an internal RK4
// bootstrap while the history refills.
type AdamsBashforth struct {
	boot   *RK4
	hist   []hydro.State // derivative history, newest first
	histDt float64
}

func NewAdamsBashforth() *AdamsBashforth {
	return &AdamsBashforth{boot: NewRK4()}
}

// Reset discards the derivative history. The next step bootstraps again.
func (a *AdamsBashforth) Reset() {
	a.hist = a.hist[:0]
	a.histDt = 0
}

func (a *AdamsBashforth) Step(sys hydro.System, x hydro.State, t, dt float64) (hydro.State, error) {
	// The multistep weights assume uniform spacing; restart the history
	// whenever the controller picks a different step.
	if len(a.hist) > 0 && math.Abs(dt-a.histDt) > 1e-12*math.Abs(a.histDt) {
		a.Reset()
	}
	a.histDt = dt

	f, err := sys.Derive(x, t)
	if err != nil {
		return nil, err
	}
	a.push(f.Clone())

	if len(a.hist) < len(abCoeff) {
		return a.boot.stepFrom(sys, x, f, t, dt)
	}

	result := make(hydro.State, len(x))
	copy(result, x)
	for j, c := range abCoeff {
		fj := a.hist[j]
		for i := range result {
			result[i] += dt * c * fj[i]
		}
	}
	return result, nil
}

func (a *AdamsBashforth) push(f hydro.State) {
	a.hist = append([]hydro.State{f}, a.hist...)
	if len(a.hist) > len(abCoeff) {
		a.hist = a.hist[:len(abCoeff)]
	}
}
