package driver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"entroflow/internal/hydro"
	"entroflow/internal/integrators"
	"entroflow/internal/network"
	"entroflow/internal/zone"
)

var ErrInvalidState = errors.New("driver: invalid state (NaN or Inf detected)")

// Config controls a single run. Zero DumpSteps is normalized to 1: every
// committed step dumps a snapshot.
type Config struct {
	Time            float64 // initial time (s)
	Dtime           float64 // initial trial step (s)
	TEnd            float64 // end time (s)
	DumpSteps       int     // snapshot every Nth committed step
	T9Guess         bool    // carry a linear temperature extrapolation between commits
	Observe         bool    // print committed-step summaries
	OutputEveryDump bool    // flush the cumulative snapshot file at every dump
	SdotView        string  // restricted entropy-generation view selector ("" = evolution view)
}

// SnapshotSink persists composition snapshots during a run.
type SnapshotSink interface {
	WriteSnapshot(label string, t float64, z *zone.Zone) error
	Flush() error
}

// CommitObserver is notified after every committed step.
type CommitObserver interface {
	OnCommit(t, dt float64, x hydro.State, t9, rho float64)
}

// Result is the committed trajectory of a run.
type Result struct {
	Times      []float64
	States     []hydro.State
	T9s        []float64
	Rhos       []float64
	StepsTaken int
	Snapshots  int
	Metrics    map[string]float64
}

type Driver struct {
	params  *hydro.Params
	limits  hydro.Limits
	zone    *zone.Zone
	stepper integrators.Integrator
	cfg     Config

	restricted network.View
	sink       SnapshotSink
	metrics    []Metric
	observers  []CommitObserver

	// Out receives committed-step summaries when Observe is set.
	Out io.Writer
}

func New(p *hydro.Params, lim hydro.Limits, z *zone.Zone, stepper integrators.Integrator, cfg Config) (*Driver, error) {
	if cfg.Dtime <= 0 {
		return nil, fmt.Errorf("driver: initial step must be positive, got %g", cfg.Dtime)
	}
	if cfg.DumpSteps <= 0 {
		cfg.DumpSteps = 1
	}

	d := &Driver{
		params:  p,
		limits:  lim,
		zone:    z,
		stepper: stepper,
		cfg:     cfg,
		Out:     os.Stdout,
	}

	if cfg.SdotView != "" {
		v, err := z.Net.SelectView(cfg.SdotView)
		if err != nil {
			return nil, err
		}
		d.restricted = v
	}

	return d, nil
}

func (d *Driver) SetSink(s SnapshotSink)       { d.sink = s }
func (d *Driver) AddMetric(m Metric)           { d.metrics = append(d.metrics, m) }
func (d *Driver) AddObserver(o CommitObserver) { d.observers = append(d.observers, o) }

// Run drives the trajectory from the initial time to the configured end
// time. The returned result holds every committed step, including the
// initial point.
func (d *Driver) Run(ctx context.Context) (*Result, error) {
	p := d.params
	z := d.zone
	net := z.Net

	// Initialize the zone's thermodynamic state before the entropy
	// evaluation; the state's entropy component depends on it.
	z.T9 = p.T9Init
	z.Rho = p.RhoInit

	t9Old := z.T9
	dT9dt := 0.0

	t := d.cfg.Time
	dt := d.cfg.Dtime
	final := false
	if t+dt >= d.cfg.TEnd {
		dt = d.cfg.TEnd - t
		final = true
	}

	x := hydro.InitialState(p)
	x[hydro.IEntropy] = z.Funcs.Entropy()

	net.Limit(d.limits.LimCutoff)

	for _, m := range d.metrics {
		m.Reset()
	}

	res := &Result{Metrics: make(map[string]float64)}
	res.Times = append(res.Times, t)
	res.States = append(res.States, x.Clone())
	res.T9s = append(res.T9s, z.T9)
	res.Rhos = append(res.Rhos, z.Rho)

	step := 0
	label := 0

	for t < d.cfg.TEnd {
		select {
		case <-ctx.Done():
			return res, ctx.Err()
		default:
		}

		z.Time = t
		xold := x.Clone()

		view := d.restricted
		if view == nil {
			view = net.EvolutionView()
		}
		rhs := &RHS{Zone: z, View: view}

		xNew, err := d.stepper.Step(rhs, x, t, dt)
		if err != nil {
			return res, err
		}
		if !xNew.IsValid() {
			return res, fmt.Errorf("%w at t=%g", ErrInvalidState, t)
		}
		x = xNew

		t += dt
		if final {
			t = d.cfg.TEnd
		}

		// Committed updates: the authoritative versions of what the
		// probing evaluations rolled back.
		z.Dtime = dt
		z.Time = t
		z.Rho = z.Funcs.Rho(x)
		z.EntropyPerNucleon = x[hydro.IEntropy]

		if d.cfg.T9Guess {
			z.T9 = t9Old + dT9dt*dt
		}
		t9, err := z.Funcs.T9(net.EvolutionView())
		if err != nil {
			return res, err
		}
		z.T9 = t9
		if d.cfg.T9Guess {
			dT9dt = (z.T9 - t9Old) / dt
			t9Old = z.T9
		}

		if err := z.Funcs.Evolve(net.EvolutionView(), dt); err != nil {
			return res, err
		}

		z.X0 = x[hydro.IScale]
		z.X1 = x[hydro.IScaleRate]

		for _, m := range d.metrics {
			m.Observe(x, t)
		}
		for _, o := range d.observers {
			o.OnCommit(t, dt, x, z.T9, z.Rho)
		}

		if d.cfg.Observe {
			fmt.Fprintf(d.Out, "t = %g, x = {%g, %g, %g}\n\n", t, x[0], x[1], x[2])
			fmt.Fprintf(d.Out, "-----------\n\n")
		}

		res.Times = append(res.Times, t)
		res.States = append(res.States, x.Clone())
		res.T9s = append(res.T9s, z.T9)
		res.Rhos = append(res.Rhos, z.Rho)
		res.StepsTaken++

		dump := step%d.cfg.DumpSteps == 0 || t >= d.cfg.TEnd
		step++
		if dump && d.sink != nil {
			label++
			if err := d.sink.WriteSnapshot(strconv.Itoa(label), t, z); err != nil {
				return res, err
			}
			if d.cfg.OutputEveryDump {
				if err := d.sink.Flush(); err != nil {
					return res, err
				}
			}
		}
		if dump {
			res.Snapshots++
		}

		net.Limit(d.limits.LimCutoff)

		dt, final = NextTimestep(d.limits, xold, x, dt, net, t, d.cfg.TEnd)
	}

	if d.sink != nil {
		if err := d.sink.Flush(); err != nil {
			return res, err
		}
	}

	for _, m := range d.metrics {
		res.Metrics[m.Name()] = m.Value()
	}

	return res, nil
}
