package driver

import (
	"entroflow/internal/hydro"
	"entroflow/internal/network"
	"entroflow/internal/zone"
)

// RHS couples the hydrodynamic state to the network over one candidate
// sub-interval. It implements hydro.System.
type RHS struct {
	Zone *zone.Zone
	View network.View
}

// Derive evaluates the derivative at (x, t). The zone's composition and
// temperature are restored on every exit path; density and the interval
// property are left as written by the probe.
func (r *RHS) Derive(x hydro.State, t float64) (hydro.State, error) {
	z := r.Zone

	snap := z.SnapshotComposition()
	t9Old := z.T9
	defer func() {
		z.RestoreComposition(snap)
		z.T9 = t9Old
	}()

	dt := t - z.Time
	z.Dtime = dt
	z.EntropyPerNucleon = x[hydro.IEntropy]
	z.Rho = z.Funcs.Rho(x)

	t9, err := z.Funcs.T9(r.View)
	if err != nil {
		return nil, err
	}
	z.T9 = t9

	if err := z.Funcs.Evolve(r.View, dt); err != nil {
		return nil, err
	}

	dxdt := hydro.NewState()
	dxdt[hydro.IScale] = x[hydro.IScaleRate]
	dxdt[hydro.IScaleRate] = z.Funcs.Accel(x, t)
	// Entropy generation only; the energy-loss term is deliberately not
	// subtracted here.
	dxdt[hydro.IEntropy] = z.Funcs.EntropyGeneration(r.View)

	if z.Funcs.Observer != nil {
		z.Funcs.Observer(x, dxdt, t)
	}

	return dxdt, nil
}
