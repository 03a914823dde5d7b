// Package driver advances the coupled trajectory/composition system. Each
// loop iteration snapshots the committed state, lets the multistep
// integrator advance one sub-step through the probing right-hand side,
// then commits: density and entropy from the new state, temperature
// re-solved from entropy, one authoritative composition evolution over the
// committed interval, periodic snapshots, network limiting, and the next
// step size from the trajectory and network regulators.
//
// The right-hand side is a probe: it mutates the zone to evaluate the
// derivative, then restores composition and temperature before returning,
// so the stepper may call it any number of times per committed step
// without double-applying composition changes.
package driver
