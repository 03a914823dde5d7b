package driver

import (
	"math"

	"entroflow/internal/hydro"
	"entroflow/internal/network"
)

// NextTimestep proposes the next trial step: the state-change regulation
// bound, the network's own step contract, and the end-time clamp, in that
// order. The returned flag reports that the step was shortened to land
// exactly on tEnd.
func NextTimestep(lim hydro.Limits, xold, x hydro.State, dt float64, net network.Network, t, tEnd float64) (float64, bool) {
	h := math.MaxFloat64
	for i := range x {
		if x[i] == 0 {
			continue
		}
		delta := math.Abs((x[i] - xold[i]) / x[i])
		if delta > 0 && math.Abs(x[i]) > lim.StateFloor[i] {
			if bound := lim.XRegT * dt / delta; bound < h {
				h = bound
			}
		}
	}

	dt = net.UpdateTimeStep(dt, lim.RegT, lim.RegY, lim.YMinDt)
	if dt > h {
		dt = h
	}

	if t+dt >= tEnd {
		return tEnd - t, true
	}
	return dt, false
}
