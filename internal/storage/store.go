// Package storage persists trajectory runs: one directory per run holding
// run metadata, the committed states as CSV, and the composition
// snapshots dumped during the run.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"entroflow/internal/driver"
	"entroflow/internal/zone"
)

type Store struct {
	baseDir string
	runID   string
	runDir  string

	snapshots []Snapshot
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// RunMetadata describes a stored run.
type RunMetadata struct {
	ID         string             `json:"id"`
	Timestamp  time.Time          `json:"timestamp"`
	T9         float64            `json:"t9"`
	Rho        float64            `json:"rho"`
	Rho1       float64            `json:"rho_1"`
	Tau        float64            `json:"tau"`
	Delta      float64            `json:"delta"`
	Dtime      float64            `json:"dtime"`
	TEnd       float64            `json:"tend"`
	Integrator string             `json:"integrator"`
	Steps      int                `json:"steps"`
	Snapshots  int                `json:"snapshots"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Snapshot is one composition dump.
type Snapshot struct {
	Label      string    `json:"label"`
	Time       float64   `json:"time"`
	T9         float64   `json:"t9"`
	Rho        float64   `json:"rho"`
	Entropy    float64   `json:"entropy"`
	Species    []string  `json:"species"`
	Abundances []float64 `json:"abundances"`
	Changes    []float64 `json:"changes"`
}

// Begin creates the run directory. It must be called before the run
// starts; WriteSnapshot and Finish write into it.
func (s *Store) Begin(prefix string) (string, error) {
	s.runID = fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano())
	s.runDir = filepath.Join(s.baseDir, s.runID)
	s.snapshots = nil

	if err := os.MkdirAll(s.runDir, 0755); err != nil {
		return "", err
	}
	return s.runID, nil
}

// WriteSnapshot implements driver.SnapshotSink.
func (s *Store) WriteSnapshot(label string, t float64, z *zone.Zone) error {
	if s.runDir == "" {
		return fmt.Errorf("storage: no run in progress")
	}
	s.snapshots = append(s.snapshots, Snapshot{
		Label:      label,
		Time:       t,
		T9:         z.T9,
		Rho:        z.Rho,
		Entropy:    z.EntropyPerNucleon,
		Species:    z.Net.Species(),
		Abundances: z.Net.Abundances(),
		Changes:    z.Net.AbundanceChanges(),
	})
	return nil
}

// Flush rewrites the cumulative snapshot file with everything dumped so
// far.
func (s *Store) Flush() error {
	if s.runDir == "" {
		return fmt.Errorf("storage: no run in progress")
	}
	file, err := os.Create(filepath.Join(s.runDir, "snapshots.json"))
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(s.snapshots)
}

// Finish writes the run metadata and the committed trajectory, closing
// out the run directory.
func (s *Store) Finish(meta RunMetadata, result *driver.Result) error {
	if s.runDir == "" {
		return fmt.Errorf("storage: no run in progress")
	}
	meta.ID = s.runID
	meta.Timestamp = time.Now()
	meta.Steps = result.StepsTaken
	meta.Snapshots = result.Snapshots
	meta.Metrics = result.Metrics

	metaFile, err := os.Create(filepath.Join(s.runDir, "metadata.json"))
	if err != nil {
		return err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return err
	}

	csvFile, err := os.Create(filepath.Join(s.runDir, "states.csv"))
	if err != nil {
		return err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	if err := w.Write([]string{"time", "x0", "x1", "x2", "t9", "rho"}); err != nil {
		return err
	}
	for i := range result.States {
		row := []string{
			strconv.FormatFloat(result.Times[i], 'e', 9, 64),
			strconv.FormatFloat(result.States[i][0], 'e', 9, 64),
			strconv.FormatFloat(result.States[i][1], 'e', 9, 64),
			strconv.FormatFloat(result.States[i][2], 'e', 9, 64),
			strconv.FormatFloat(result.T9s[i], 'e', 9, 64),
			strconv.FormatFloat(result.Rhos[i], 'e', 9, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name(), "metadata.json"))
		if err != nil {
			continue
		}
		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}
		runs = append(runs, meta)
	}
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadStates reads back the committed trajectory of a stored run: the
// state columns (x0, x1, x2, t9, rho) and the times.
func (s *Store) LoadStates(runID string) ([][]float64, []float64, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "states.csv"))
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) < 2 {
		return [][]float64{}, []float64{}, nil
	}

	times := make([]float64, 0, len(records)-1)
	states := make([][]float64, 0, len(records)-1)
	for i := 1; i < len(records); i++ {
		record := records[i]
		if len(record) == 0 {
			continue
		}
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			continue
		}
		state := make([]float64, 0, len(record)-1)
		for j := 1; j < len(record); j++ {
			val, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				continue
			}
			state = append(state, val)
		}
		times = append(times, t)
		states = append(states, state)
	}
	return states, times, nil
}

// LoadSnapshots reads back the composition dumps of a stored run.
func (s *Store) LoadSnapshots(runID string) ([]Snapshot, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "snapshots.json"))
	if err != nil {
		return nil, err
	}
	var snaps []Snapshot
	if err := json.Unmarshal(data, &snaps); err != nil {
		return nil, err
	}
	return snaps, nil
}
