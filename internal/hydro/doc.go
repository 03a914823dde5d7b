// Package hydro holds the core types and closed-form physics for a
// hydrodynamically expanding (or collapsing) fluid element.
//
// The trajectory is carried by a three-component [State]:
//
//   - x0: scale factor of the element (1 at the reference epoch)
//   - x1: scale-factor rate term
//   - x2: entropy per nucleon (k_B units)
//
// Density follows the scale factor as rho0 / x0^3; temperature is not part
// of the state but is solved implicitly from the entropy at every
// evaluation. [Params] collects the validated run parameters and [Limits]
// the step-regulation constants. Systems implementing [System] provide the
// derivative oracle consumed by the integrators package.
package hydro
