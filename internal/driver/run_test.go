package driver_test

import (
	"context"
	"io"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"entroflow/internal/driver"
	"entroflow/internal/hydro"
	"entroflow/internal/integrators"
	"entroflow/internal/network"
	"entroflow/internal/zone"
)

// memSink collects snapshots in memory.
type memSink struct {
	labels  []string
	times   []float64
	flushes int
}

func (s *memSink) WriteSnapshot(label string, t float64, z *zone.Zone) error {
	s.labels = append(s.labels, label)
	s.times = append(s.times, t)
	return nil
}

func (s *memSink) Flush() error { s.flushes++; return nil }

func defaultConfig() driver.Config {
	return driver.Config{
		Time:      0,
		Dtime:     1.0e-15,
		TEnd:      10.0,
		DumpSteps: 20,
		T9Guess:   true,
	}
}

func runTrajectory(p *hydro.Params, cfg driver.Config) (*driver.Result, *zone.Zone, *memSink, error) {
	z := zone.New(network.NewAnalytic())
	driver.Wire(z, p)

	d, err := driver.New(p, hydro.DefaultLimits(), z, integrators.NewAdamsBashforth(), cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	d.Out = io.Discard

	sink := &memSink{}
	d.SetSink(sink)
	d.AddMetric(driver.NewPeakT9(z))
	d.AddMetric(driver.NewEntropyGain())
	d.AddMetric(driver.NewMinDt(z))

	res, err := d.Run(context.Background())
	return res, z, sink, err
}

var _ = Describe("Run", func() {
	Context("with the fiducial parameters", func() {
		var (
			res  *driver.Result
			z    *zone.Zone
			sink *memSink
		)

		BeforeEach(func() {
			p := hydro.DefaultParams()
			Expect(p.Validate()).To(Succeed())

			var err error
			res, z, sink, err = runTrajectory(p, defaultConfig())
			Expect(err).NotTo(HaveOccurred())
		})

		It("lands exactly on the end time", func() {
			Expect(res.Times[len(res.Times)-1]).To(Equal(10.0))
			Expect(z.Time).To(Equal(10.0))
		})

		It("records one point per committed step plus the initial point", func() {
			Expect(res.Times).To(HaveLen(res.StepsTaken + 1))
			Expect(res.States).To(HaveLen(res.StepsTaken + 1))
			Expect(res.StepsTaken).To(BeNumerically(">", 0))
		})

		It("keeps committed times strictly increasing", func() {
			for i := 1; i < len(res.Times); i++ {
				Expect(res.Times[i]).To(BeNumerically(">", res.Times[i-1]))
			}
		})

		It("expands and cools the element", func() {
			last := res.States[len(res.States)-1]
			Expect(last[hydro.IScale]).To(BeNumerically(">", 1.0))
			Expect(res.T9s[len(res.T9s)-1]).To(BeNumerically("<", res.T9s[0]))
			Expect(res.Rhos[len(res.Rhos)-1]).To(BeNumerically("<", res.Rhos[0]))
		})

		It("never loses entropy", func() {
			Expect(res.Metrics["entropy_gain"]).To(BeNumerically(">=", 0.0))
		})

		It("dumps snapshots on the configured cadence", func() {
			Expect(res.Snapshots).To(BeNumerically(">=", 1))
			Expect(sink.labels).To(HaveLen(res.Snapshots))
			Expect(sink.labels[0]).To(Equal("1"))
			Expect(sink.times[len(sink.times)-1]).To(Equal(10.0))
			Expect(sink.flushes).To(BeNumerically(">=", 1))
		})

		It("reports the peak temperature as the initial one", func() {
			Expect(res.Metrics["peak_t9"]).To(BeNumerically("~", 10.0, 1e-6))
		})

		It("never shrinks the step below the initial trial step", func() {
			Expect(res.Metrics["min_dt"]).To(BeNumerically(">=", 1.0e-15))
		})
	})

	Context("with an invalid density split", func() {
		It("rejects the parameters before any stepping", func() {
			p := hydro.DefaultParams()
			p.RhoSecondary = 1.1e8
			Expect(p.Validate()).To(MatchError(hydro.ErrDensitySplit))
		})

		It("rejects an equal split too", func() {
			p := hydro.DefaultParams()
			p.RhoSecondary = p.RhoInit
			Expect(p.Validate()).To(MatchError(hydro.ErrDensitySplit))
		})
	})

	Context("with the temperature extrapolation disabled", func() {
		It("still converges to the same trajectory", func() {
			p1 := hydro.DefaultParams()
			Expect(p1.Validate()).To(Succeed())
			withGuess, _, _, err := runTrajectory(p1, defaultConfig())
			Expect(err).NotTo(HaveOccurred())

			cfg := defaultConfig()
			cfg.T9Guess = false
			p2 := hydro.DefaultParams()
			Expect(p2.Validate()).To(Succeed())
			without, _, _, err := runTrajectory(p2, cfg)
			Expect(err).NotTo(HaveOccurred())

			lastW := withGuess.States[len(withGuess.States)-1]
			lastWo := without.States[len(without.States)-1]
			for i := range lastW {
				Expect(lastWo[i]).To(BeNumerically("~", lastW[i], 1e-3*absOr(lastW[i], 1e-3)))
			}
		})
	})

	Context("with a non-positive initial step", func() {
		It("refuses to construct the driver", func() {
			p := hydro.DefaultParams()
			Expect(p.Validate()).To(Succeed())
			z := zone.New(network.NewAnalytic())
			driver.Wire(z, p)

			cfg := defaultConfig()
			cfg.Dtime = 0
			_, err := driver.New(p, hydro.DefaultLimits(), z, integrators.NewAdamsBashforth(), cfg)
			Expect(err).To(HaveOccurred())
		})
	})

	Context("with an unknown restricted view", func() {
		It("refuses to construct the driver", func() {
			p := hydro.DefaultParams()
			Expect(p.Validate()).To(Succeed())
			z := zone.New(network.NewAnalytic())
			driver.Wire(z, p)

			cfg := defaultConfig()
			cfg.SdotView = "no-such-species"
			_, err := driver.New(p, hydro.DefaultLimits(), z, integrators.NewAdamsBashforth(), cfg)
			Expect(err).To(HaveOccurred())
		})
	})

	Context("with a canceled context", func() {
		It("stops before committing any step", func() {
			p := hydro.DefaultParams()
			Expect(p.Validate()).To(Succeed())
			z := zone.New(network.NewAnalytic())
			driver.Wire(z, p)

			d, err := driver.New(p, hydro.DefaultLimits(), z, integrators.NewAdamsBashforth(), defaultConfig())
			Expect(err).NotTo(HaveOccurred())
			d.Out = io.Discard

			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			res, err := d.Run(ctx)
			Expect(err).To(MatchError(context.Canceled))
			Expect(res.StepsTaken).To(BeZero())
		})
	})
})

func absOr(v, floor float64) float64 {
	if v < 0 {
		v = -v
	}
	if v < floor {
		return floor
	}
	return v
}
