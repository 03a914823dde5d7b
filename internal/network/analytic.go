package network

import (
	"fmt"
	"math"
)

// Analytic is a one-reaction network: fuel burns to ash with an
// Arrhenius-like rate, releasing a fixed entropy per reaction. It exists so
// the repository runs end to end without an external network solver and so
// the driver's rollback and regulation contracts can be tested against a
// collaborator with real state.
type Analytic struct {
	names    []string
	y        []float64
	dy       []float64
	excluded []bool

	rate0 float64 // Arrhenius prefactor (1/s)
	ea    float64 // activation temperature (10^9 K)
	q     float64 // entropy released per reaction (k_B)
	sOff  float64 // entropy offset per nucleon (k_B)
}

const (
	iFuel = 0
	iAsh  = 1
)

func NewAnalytic() *Analytic {
	return &Analytic{
		names: []string{"fuel", "ash"},
		// Ash starts at a trace abundance so the limiter keeps the
		// reaction pair in the evolution view before ignition.
		y:        []float64{0.5, 1.0e-20},
		dy:       []float64{0.0, 0.0},
		excluded: []bool{false, false},
		rate0:    1.0,
		ea:       30.0,
		q:        5.0,
		sOff:     25.0,
	}
}

func (n *Analytic) lambda(t9 float64) float64 {
	if t9 <= 0 {
		return 0
	}
	return n.rate0 * math.Exp(-n.ea/t9)
}

func (n *Analytic) reacts(v View) bool {
	return v.Contains("fuel") && v.Contains("ash")
}

func (n *Analytic) Evolve(v View, t9, rho, dt float64) error {
	if dt < 0 {
		return fmt.Errorf("network: negative evolution interval %g", dt)
	}
	if !n.reacts(v) || dt == 0 {
		n.dy[iFuel], n.dy[iAsh] = 0, 0
		return nil
	}

	// Exact solution of dY_fuel/dt = -lambda * Y_fuel over the interval.
	burned := n.y[iFuel] * (1.0 - math.Exp(-n.lambda(t9)*dt))
	n.y[iFuel] -= burned
	n.y[iAsh] += burned
	n.dy[iFuel] = -burned
	n.dy[iAsh] = burned
	return nil
}

func (n *Analytic) Entropy(t9, rho float64) float64 {
	total := 0.0
	for _, y := range n.y {
		total += y
	}
	return total * (n.sOff + 2.5 + 1.5*math.Log(t9) - math.Log(rho))
}

func (n *Analytic) EntropyGenerationRate(v View, t9, rho float64) float64 {
	if !n.reacts(v) || t9 <= 0 {
		return 0
	}
	return n.q * n.lambda(t9) * n.y[iFuel] / t9
}

func (n *Analytic) Abundances() []float64 {
	out := make([]float64, len(n.y))
	copy(out, n.y)
	return out
}

func (n *Analytic) AbundanceChanges() []float64 {
	out := make([]float64, len(n.dy))
	copy(out, n.dy)
	return out
}

func (n *Analytic) SetAbundances(y []float64)        { copy(n.y, y) }
func (n *Analytic) SetAbundanceChanges(dy []float64) { copy(n.dy, dy) }

func (n *Analytic) UpdateTimeStep(dt, regT, regY, yMin float64) float64 {
	next := dt * (1.0 + regT)
	for i := range n.y {
		if n.y[i] <= yMin || n.dy[i] == 0 {
			continue
		}
		bound := regY * dt * n.y[i] / math.Abs(n.dy[i])
		if bound < next {
			next = bound
		}
	}
	return next
}

func (n *Analytic) Limit(cutoff float64) {
	for i := range n.y {
		n.excluded[i] = n.y[i] < cutoff
	}
}

func (n *Analytic) EvolutionView() View {
	var names []string
	for i, name := range n.names {
		if !n.excluded[i] {
			names = append(names, name)
		}
	}
	return newSpeciesView(names)
}

func (n *Analytic) SelectView(expr string) (View, error) {
	names, err := parseSelector(expr, n.names)
	if err != nil {
		return nil, err
	}
	return newSpeciesView(names), nil
}

// Species returns the network's species names in storage order.
func (n *Analytic) Species() []string {
	out := make([]string, len(n.names))
	copy(out, n.names)
	return out
}
