// Package sweep runs a parameter grid of trajectories in parallel.
package sweep

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Point is one cell of the parameter grid.
type Point struct {
	Tau   float64
	Delta float64
	Rho1  float64
}

// Grid is the outer product of the listed parameter values. An empty axis
// contributes no points.
type Grid struct {
	Taus   []float64
	Deltas []float64
	Rho1s  []float64
}

func (g Grid) Points() []Point {
	var pts []Point
	for _, tau := range g.Taus {
		for _, delta := range g.Deltas {
			for _, rho1 := range g.Rho1s {
				pts = append(pts, Point{Tau: tau, Delta: delta, Rho1: rho1})
			}
		}
	}
	return pts
}

// Outcome is the per-point result. Err is set when that point's run
// failed; the sweep itself keeps going.
type Outcome struct {
	Point   Point
	Metrics map[string]float64
	Err     error
}

// RunFunc executes one trajectory for a grid point.
type RunFunc func(ctx context.Context, pt Point) (map[string]float64, error)

// Run executes the grid with at most parallelism trajectories in flight.
// Outcomes are returned in grid order. The only error returned is a
// context cancellation; per-point failures land in the outcomes.
func Run(ctx context.Context, g Grid, parallelism int, fn RunFunc) ([]Outcome, error) {
	pts := g.Points()
	outcomes := make([]Outcome, len(pts))

	eg, ctx := errgroup.WithContext(ctx)
	if parallelism > 0 {
		eg.SetLimit(parallelism)
	}

	for i, pt := range pts {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			metrics, err := fn(ctx, pt)
			outcomes[i] = Outcome{Point: pt, Metrics: metrics, Err: err}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return outcomes, err
	}
	return outcomes, nil
}
