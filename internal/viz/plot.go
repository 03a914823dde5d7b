package viz

import (
	"fmt"

	"github.com/guptarohit/asciigraph"
)

// PlotSeries renders one committed-trajectory column as an ASCII chart.
func PlotSeries(series []float64, caption string, width, height int) string {
	if len(series) < 2 {
		return fmt.Sprintf("%s: not enough points to plot", caption)
	}
	return asciigraph.Plot(series,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}
