package output

import (
	"bufio"
	"fmt"
	"io"

	"github.com/san-kum/ringmd/internal/core"
	"github.com/san-kum/ringmd/internal/sim"
)

// XYZWriter appends each frame as one XYZ block holding every bead of
// the ring, replicas concatenated. The species column is the atom's
// group ID, which is what downstream viewers key their coloring on.
type XYZWriter struct {
	w      *bufio.Writer
	groups []core.AtomGroup
}

func NewXYZWriter(w io.Writer, groups []core.AtomGroup) *XYZWriter {
	return &XYZWriter{w: bufio.NewWriter(w), groups: groups}
}

func (x *XYZWriter) Frame(f sim.Frame) error {
	total := 0
	for _, row := range f.Snap.Pos {
		total += len(row)
	}
	if _, err := fmt.Fprintf(x.w, "%d\nstep=%d time=%g\n", total, f.Snap.Step, f.Snap.Time); err != nil {
		return err
	}
	for _, row := range f.Snap.Pos {
		for i, p := range row {
			id := 0
			for _, g := range x.groups {
				if i >= g.Lo && i < g.Hi {
					id = g.ID
					break
				}
			}
			if _, err := fmt.Fprintf(x.w, "G%d %.8f %.8f %.8f\n", id, p[0], p[1], p[2]); err != nil {
				return err
			}
		}
	}
	return nil
}

func (x *XYZWriter) Flush() error { return x.w.Flush() }
