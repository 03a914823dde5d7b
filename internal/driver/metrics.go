package driver

import (
	"math"

	"entroflow/internal/hydro"
	"entroflow/internal/zone"
)

// Metric observes committed steps and reports a scalar at the end of a
// run.
type Metric interface {
	Name() string
	Observe(x hydro.State, t float64)
	Value() float64
	Reset()
}

// PeakT9 tracks the highest temperature reached across committed steps.
type PeakT9 struct {
	z    *zone.Zone
	peak float64
}

func NewPeakT9(z *zone.Zone) *PeakT9 { return &PeakT9{z: z} }

func (m *PeakT9) Name() string { return "peak_t9" }

func (m *PeakT9) Observe(x hydro.State, t float64) {
	if m.z.T9 > m.peak {
		m.peak = m.z.T9
	}
}

func (m *PeakT9) Value() float64 { return m.peak }
func (m *PeakT9) Reset()         { m.peak = 0 }

// EntropyGain reports the net change of entropy per nucleon over the run.
type EntropyGain struct {
	initial float64
	last    float64
	samples int
}

func NewEntropyGain() *EntropyGain { return &EntropyGain{} }

func (m *EntropyGain) Name() string { return "entropy_gain" }

func (m *EntropyGain) Observe(x hydro.State, t float64) {
	if m.samples == 0 {
		m.initial = x[hydro.IEntropy]
	}
	m.last = x[hydro.IEntropy]
	m.samples++
}

func (m *EntropyGain) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.last - m.initial
}

func (m *EntropyGain) Reset() {
	m.initial = 0
	m.last = 0
	m.samples = 0
}

// MinDt reports the shortest committed step of the run.
type MinDt struct {
	z   *zone.Zone
	min float64
}

func NewMinDt(z *zone.Zone) *MinDt { return &MinDt{z: z, min: math.MaxFloat64} }

func (m *MinDt) Name() string { return "min_dt" }

func (m *MinDt) Observe(x hydro.State, t float64) {
	if m.z.Dtime < m.min {
		m.min = m.z.Dtime
	}
}

func (m *MinDt) Value() float64 {
	if m.min == math.MaxFloat64 {
		return 0
	}
	return m.min
}

func (m *MinDt) Reset() { m.min = math.MaxFloat64 }
