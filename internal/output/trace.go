package output

import (
	"github.com/guptarohit/asciigraph"
)

// Trace renders one sampled series as a terminal plot.
func Trace(series []float64, caption string) string {
	if len(series) < 2 {
		return ""
	}
	return asciigraph.Plot(series,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(caption),
	)
}
