package driver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"entroflow/internal/hydro"
	"entroflow/internal/network"
	"entroflow/internal/zone"
)

func newWiredZone(t *testing.T) (*zone.Zone, *hydro.Params) {
	t.Helper()
	p := hydro.DefaultParams()
	require.NoError(t, p.Validate())
	z := zone.New(network.NewAnalytic())
	Wire(z, p)
	z.T9 = p.T9Init
	z.Rho = p.RhoInit
	return z, p
}

func TestDeriveLeavesNoPermanentSideEffect(t *testing.T) {
	z, p := newWiredZone(t)

	x := hydro.InitialState(p)
	x[hydro.IEntropy] = z.Funcs.Entropy()
	z.EntropyPerNucleon = x[hydro.IEntropy]
	z.Time = 0

	yBefore := z.Net.Abundances()
	dyBefore := z.Net.AbundanceChanges()
	t9Before := z.T9

	rhs := &RHS{Zone: z, View: z.Net.EvolutionView()}

	first, err := rhs.Derive(x, 1.0e-3)
	require.NoError(t, err)
	second, err := rhs.Derive(x, 1.0e-3)
	require.NoError(t, err)

	assert.Equal(t, yBefore, z.Net.Abundances(), "abundances must be restored")
	assert.Equal(t, dyBefore, z.Net.AbundanceChanges(), "abundance changes must be restored")
	assert.Equal(t, t9Before, z.T9, "temperature must be restored")
	assert.Equal(t, first, second, "repeated probes at the same point must agree")
}

func TestDeriveComponents(t *testing.T) {
	z, p := newWiredZone(t)

	x := hydro.InitialState(p)
	x[hydro.IEntropy] = z.Funcs.Entropy()
	z.EntropyPerNucleon = x[hydro.IEntropy]
	z.Time = 0

	rhs := &RHS{Zone: z, View: z.Net.EvolutionView()}
	dxdt, err := rhs.Derive(x, 1.0e-6)
	require.NoError(t, err)

	assert.Equal(t, x[hydro.IScaleRate], dxdt[hydro.IScale])
	accel, _ := hydro.Acceleration(p, x, 1.0e-6)
	assert.InDelta(t, accel, dxdt[hydro.IScaleRate], 1e-12)
	assert.Greater(t, dxdt[hydro.IEntropy], 0.0, "burning fuel must generate entropy")
}

func TestDeriveRestrictedViewSuppressesGeneration(t *testing.T) {
	z, p := newWiredZone(t)

	x := hydro.InitialState(p)
	x[hydro.IEntropy] = z.Funcs.Entropy()
	z.EntropyPerNucleon = x[hydro.IEntropy]
	z.Time = 0

	v, err := z.Net.SelectView("fuel")
	require.NoError(t, err)

	rhs := &RHS{Zone: z, View: v}
	dxdt, err := rhs.Derive(x, 1.0e-6)
	require.NoError(t, err)
	assert.Zero(t, dxdt[hydro.IEntropy])
}

func TestDeriveCallsObserver(t *testing.T) {
	z, p := newWiredZone(t)

	x := hydro.InitialState(p)
	x[hydro.IEntropy] = z.Funcs.Entropy()
	z.EntropyPerNucleon = x[hydro.IEntropy]
	z.Time = 0

	calls := 0
	z.Funcs.Observer = func(x, dxdt hydro.State, t float64) { calls++ }

	rhs := &RHS{Zone: z, View: z.Net.EvolutionView()}
	_, err := rhs.Derive(x, 1.0e-6)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}
