// Package output writes trajectories and observable tables and keeps
// completed runs on disk.
package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/san-kum/ringmd/internal/sim"
)

// ObservableWriter streams one CSV row per frame: step, time, the
// four reduced energies, then every sampled observable in frame
// order. The header is written lazily from the first frame because
// the observable names arrive with it.
type ObservableWriter struct {
	w      *csv.Writer
	wrote  bool
	fields int
}

func NewObservableWriter(w io.Writer) *ObservableWriter {
	return &ObservableWriter{w: csv.NewWriter(w)}
}

func (o *ObservableWriter) Frame(f sim.Frame) error {
	if !o.wrote {
		header := []string{"step", "time", "kinetic", "potential", "spring", "work"}
		header = append(header, f.Names...)
		if err := o.w.Write(header); err != nil {
			return err
		}
		o.wrote = true
		o.fields = len(header)
	}
	row := make([]string, 0, o.fields)
	row = append(row,
		strconv.Itoa(f.Snap.Step),
		ff(f.Snap.Time),
		ff(f.Energies.Kinetic),
		ff(f.Energies.Potential),
		ff(f.Energies.Spring),
		ff(f.Energies.Work),
	)
	for _, v := range f.Values {
		row = append(row, ff(v))
	}
	if len(row) != o.fields {
		return fmt.Errorf("output: frame has %d fields, header had %d", len(row), o.fields)
	}
	return o.w.Write(row)
}

// Flush must be called once after the last frame.
func (o *ObservableWriter) Flush() error {
	o.w.Flush()
	return o.w.Error()
}

func ff(v float64) string { return strconv.FormatFloat(v, 'g', 10, 64) }
