package storage

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"entroflow/internal/driver"
	"entroflow/internal/hydro"
	"entroflow/internal/network"
	"entroflow/internal/zone"
)

func sampleResult() *driver.Result {
	return &driver.Result{
		Times: []float64{0.0, 1.0e-15},
		States: []hydro.State{
			{1.0, 3.6666, 6.26},
			{1.0, 3.6667, 6.27},
		},
		T9s:        []float64{10.0, 9.9999},
		Rhos:       []float64{1.0e8, 9.9999e7},
		StepsTaken: 1,
		Snapshots:  1,
		Metrics:    map[string]float64{"peak_t9": 10.0},
	}
}

func TestStoreFinishLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Begin("run")
	if err != nil {
		t.Fatalf("begin failed: %v", err)
	}
	if runID == "" {
		t.Fatal("expected non-empty run id")
	}

	meta := RunMetadata{T9: 10.0, Rho: 1.0e8, Rho1: 9.0e7, Tau: 0.1, Delta: 0.1, Dtime: 1.0e-15, TEnd: 10.0, Integrator: "adams-bashforth"}
	if err := st.Finish(meta, sampleResult()); err != nil {
		t.Fatalf("finish failed: %v", err)
	}

	loaded, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Tau != 0.1 {
		t.Errorf("expected tau 0.1, got %f", loaded.Tau)
	}
	if loaded.Steps != 1 {
		t.Errorf("expected 1 step, got %d", loaded.Steps)
	}
	if loaded.Metrics["peak_t9"] != 10.0 {
		t.Errorf("expected peak_t9 10, got %f", loaded.Metrics["peak_t9"])
	}

	states, times, err := st.LoadStates(runID)
	if err != nil {
		t.Fatalf("load states failed: %v", err)
	}
	if len(states) != 2 || len(times) != 2 {
		t.Fatalf("expected 2 rows, got %d states, %d times", len(states), len(times))
	}
	// time, then x0 x1 x2 t9 rho
	if len(states[0]) != 5 {
		t.Errorf("expected 5 state columns, got %d", len(states[0]))
	}
}

func TestStoreSnapshots(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	runID, err := st.Begin("run")
	if err != nil {
		t.Fatalf("begin failed: %v", err)
	}

	z := zone.New(network.NewAnalytic())
	z.T9 = 10.0
	z.Rho = 1.0e8
	z.EntropyPerNucleon = 6.27

	if err := st.WriteSnapshot("1", 1.0e-15, z); err != nil {
		t.Fatalf("write snapshot failed: %v", err)
	}
	if err := st.Flush(); err != nil {
		t.Fatalf("flush failed: %v", err)
	}

	snaps, err := st.LoadSnapshots(runID)
	if err != nil {
		t.Fatalf("load snapshots failed: %v", err)
	}
	if len(snaps) != 1 {
		t.Fatalf("expected 1 snapshot, got %d", len(snaps))
	}
	if snaps[0].Label != "1" {
		t.Errorf("expected label 1, got %q", snaps[0].Label)
	}
	if len(snaps[0].Species) != len(snaps[0].Abundances) {
		t.Error("species and abundance lengths must match")
	}
}

func TestStoreSnapshotWithoutBegin(t *testing.T) {
	st := New(t.TempDir())
	z := zone.New(network.NewAnalytic())
	if err := st.WriteSnapshot("1", 0, z); err == nil {
		t.Error("expected error when no run is in progress")
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	for i := 0; i < 2; i++ {
		if _, err := st.Begin("run"); err != nil {
			t.Fatalf("begin failed: %v", err)
		}
		if err := st.Finish(RunMetadata{}, sampleResult()); err != nil {
			t.Fatalf("finish failed: %v", err)
		}
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("expected 2 runs, got %d", len(runs))
	}
}

func TestStoreListEmptyBase(t *testing.T) {
	st := New(t.TempDir() + "/missing")
	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
}

func TestExportJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := writeExportJSON(&buf, "rk4", 1.0e-15, 10.0, sampleResult()); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if data.Integrator != "rk4" {
		t.Errorf("expected integrator rk4, got %s", data.Integrator)
	}
	if data.Steps != 2 {
		t.Errorf("expected 2 points, got %d", data.Steps)
	}
}

func TestExportCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := ExportCSV(&buf, sampleResult()); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "time,x0,x1,x2") {
		t.Errorf("unexpected header: %s", lines[0])
	}
}
