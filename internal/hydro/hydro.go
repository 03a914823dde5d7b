package hydro

import "math"

// InitialState builds the trajectory state at the reference epoch. The
// scale factor starts at exactly 1; the rate term follows from the density
// split and the two timescales. The entropy component is left zero here:
// the caller fills it from the entropy collaborator once the zone's
// temperature and density have been set.
func InitialState(p *Params) State {
	x := NewState()
	x[IScale] = 1.0
	x[IScaleRate] = pow4(x[IScale]) *
		(p.RhoSecondary/p.Tau + 2.0*p.RhoRemainder/p.Delta) /
		(3.0 * p.RhoInit)
	return x
}

// Density is the inverse-cube law tying the element's density to its scale
// factor.
func Density(p *Params, x State) float64 {
	return p.RhoInit / pow3(x[IScale])
}

// Acceleration evaluates the trajectory's second-derivative terms at time
// t. The first return value is the rate-term derivative (dxdt[1]); the
// second is the quadratic work term computed alongside it, recorded by
// the caller for diagnostics.
func Acceleration(p *Params, x State, t float64) (float64, float64) {
	decay := math.Exp(-t / p.Tau)

	work := pow3(x[IScale]) *
		(4.0*x[IScaleRate]*(p.RhoSecondary/p.Tau*decay+2.0*p.RhoRemainder/p.Delta) -
			x[IScale]*(p.RhoSecondary/(p.Tau*p.Tau)*decay+6.0*p.RhoRemainder/(p.Delta*p.Delta))) /
		(3.0 * p.RhoInit)

	return x[IScaleRate] / (3.0 * p.Tau), work
}

func pow3(v float64) float64 { return v * v * v }
func pow4(v float64) float64 { return v * v * v * v }
