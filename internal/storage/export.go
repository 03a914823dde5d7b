package storage

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"strconv"

	"entroflow/internal/driver"
)

// ExportData is the flat JSON form of a run.
type ExportData struct {
	Integrator string             `json:"integrator"`
	Dtime      float64            `json:"dtime"`
	TEnd       float64            `json:"tend"`
	Steps      int                `json:"steps"`
	Times      []float64          `json:"times"`
	States     [][]float64        `json:"states"`
	T9s        []float64          `json:"t9s"`
	Rhos       []float64          `json:"rhos"`
	Metrics    map[string]float64 `json:"metrics"`
}

func buildExport(integrator string, dtime, tend float64, result *driver.Result) ExportData {
	data := ExportData{
		Integrator: integrator,
		Dtime:      dtime,
		TEnd:       tend,
		Steps:      len(result.Times),
		Times:      result.Times,
		States:     make([][]float64, len(result.States)),
		T9s:        result.T9s,
		Rhos:       result.Rhos,
		Metrics:    result.Metrics,
	}
	for i, s := range result.States {
		data.States[i] = s
	}
	return data
}

func ExportJSON(path string, integrator string, dtime, tend float64, result *driver.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return writeExportJSON(file, integrator, dtime, tend, result)
}

func ExportJSONStdout(integrator string, dtime, tend float64, result *driver.Result) error {
	return writeExportJSON(os.Stdout, integrator, dtime, tend, result)
}

func writeExportJSON(w io.Writer, integrator string, dtime, tend float64, result *driver.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(buildExport(integrator, dtime, tend, result))
}

// ExportCSV writes the committed trajectory as CSV to w.
func ExportCSV(w io.Writer, result *driver.Result) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"time", "x0", "x1", "x2", "t9", "rho"}); err != nil {
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
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	return cw.Error()
}
