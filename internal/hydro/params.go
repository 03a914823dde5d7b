package hydro

import (
	"errors"
	"fmt"
)

var (
	ErrDensitySplit = errors.New("hydro: rho_1 must be less than rho_0")
	ErrTimescale    = errors.New("hydro: timescale parameter is zero")
)

// Params are the run parameters of the trajectory. RhoRemainder is derived
// at validation time; everything else comes straight from configuration.
type Params struct {
	T9Init       float64 // initial temperature (10^9 K)
	RhoInit      float64 // rho_0, total initial density (g/cc)
	RhoSecondary float64 // rho_1, exponentially decaying component (g/cc)
	RhoRemainder float64 // rho_2 = rho_0 - rho_1, derived
	Tau          float64 // expansion timescale (s)
	Delta        float64 // cutoff time (s)
	RootFactor   float64 // bracket expansion factor for the T9 root find
}

// DefaultParams returns the fiducial parameter set.
func DefaultParams() *Params {
	return &Params{
		T9Init:       10.0,
		RhoInit:      1.0e8,
		RhoSecondary: 9.0e7,
		Tau:          0.1,
		Delta:        0.1,
		RootFactor:   1.001,
	}
}

// Validate checks the density split and timescales and stores the derived
// remainder density. It must run before any state initialization.
func (p *Params) Validate() error {
	if p.RhoSecondary >= p.RhoInit {
		return fmt.Errorf("%w (rho_1=%g, rho_0=%g)", ErrDensitySplit, p.RhoSecondary, p.RhoInit)
	}
	if p.Tau == 0 {
		return fmt.Errorf("%w: tau", ErrTimescale)
	}
	if p.Delta == 0 {
		return fmt.Errorf("%w: delta", ErrTimescale)
	}
	p.RhoRemainder = p.RhoInit - p.RhoSecondary
	return nil
}

// Limits are the step-regulation constants of the driver loop.
type Limits struct {
	RegT       float64 // network time step change regulator
	RegY       float64 // network abundance change regulator
	XRegT      float64 // state change regulator
	YMinDt     float64 // smallest abundance considered for dt regulation
	LimCutoff  float64 // cutoff abundance for the network limiter
	StateFloor State   // per-component floors below which regulation is skipped
}

func DefaultLimits() Limits {
	return Limits{
		RegT:       0.15,
		RegY:       0.15,
		XRegT:      0.15,
		YMinDt:     1.0e-10,
		LimCutoff:  1.0e-25,
		StateFloor: State{1.0e-10, 1.0, 1.0e-5},
	}
}
