package driver

import (
	"fmt"
	"io"

	"entroflow/internal/hydro"
	"entroflow/internal/network"
	"entroflow/internal/rootfind"
	"entroflow/internal/zone"
)

// Wire binds the zone's physics slots to the closed-form hydrodynamics and
// the network collaborator. Parameters and zone are passed explicitly so
// every mutation point stays auditable.
func Wire(z *zone.Zone, p *hydro.Params) {
	net := z.Net

	z.Funcs.Accel = func(x hydro.State, t float64) float64 {
		dv, work := hydro.Acceleration(p, x, t)
		z.WorkTerm = work
		return dv
	}

	z.Funcs.Rho = func(x hydro.State) float64 {
		return hydro.Density(p, x)
	}

	z.Funcs.T9 = func(v network.View) (float64, error) {
		return solveT9(z, p)
	}

	z.Funcs.Entropy = func() float64 {
		return net.Entropy(z.T9, z.Rho)
	}

	z.Funcs.EntropyGeneration = func(v network.View) float64 {
		return net.EntropyGenerationRate(v, z.T9, z.Rho)
	}

	z.Funcs.Evolve = func(v network.View, dt float64) error {
		return net.Evolve(v, z.T9, z.Rho, dt)
	}
}

// WireObserver attaches the probe-time diagnostic printer.
func WireObserver(z *zone.Zone, w io.Writer) {
	z.Funcs.Observer = func(x, dxdt hydro.State, t float64) {
		dt := t - z.Time
		fmt.Fprintf(w, "t = %.5e dt = %.5e\n", t, dt)
		fmt.Fprintf(w, "x = {%.5e, %.5e, %.5e}\n", x[0], x[1], x[2])
		fmt.Fprintf(w, "dxdt = {%.5e, %.5e, %.5e}\n\n", dxdt[0], dxdt[1], dxdt[2])
	}
}

// solveT9 finds the temperature at which the network's entropy matches the
// zone's recorded entropy per nucleon, warm-started from the zone's
// current temperature with a fixed bracket expansion factor.
func solveT9(z *zone.Zone, p *hydro.Params) (float64, error) {
	target := z.EntropyPerNucleon
	rho := z.Rho
	f := func(t9 float64) float64 {
		return z.Net.Entropy(t9, rho) - target
	}
	t9, err := rootfind.Solve(f, z.T9, p.RootFactor)
	if err != nil {
		return 0, fmt.Errorf("driver: temperature solve from s=%g at rho=%g: %w", target, rho, err)
	}
	return t9, nil
}
