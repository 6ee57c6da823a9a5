// Package tui renders running simulations in the terminal, either as
// a plain ANSI view or through the interactive monitor.
package tui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/san-kum/ringmd/internal/sim"
	"github.com/san-kum/ringmd/internal/vec"
)

const (
	width       = 70
	height      = 20
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
)

// LiveRenderer is a frame sink that draws the ring beads on a rune
// canvas, projected onto the x-y plane, refreshing at most frameRate
// times per second.
type LiveRenderer struct {
	title     string
	frameRate int
	lastFrame time.Time
	canvas    [][]rune
	trail     []struct{ x, y int }
	scale     float64
	out       io.Writer
}

var _ sim.Sink = (*LiveRenderer)(nil)

func NewLiveRenderer(title string, frameRate int) *LiveRenderer {
	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = make([]rune, width)
	}
	return &LiveRenderer{
		title:     title,
		frameRate: frameRate,
		canvas:    canvas,
		trail:     make([]struct{ x, y int }, 0, 50),
		scale:     10,
		out:       os.Stdout,
	}
}

func (r *LiveRenderer) Frame(f sim.Frame) error {
	elapsed := time.Since(r.lastFrame)
	if elapsed < time.Second/time.Duration(r.frameRate) {
		return nil
	}
	r.lastFrame = time.Now()

	r.clear()
	r.drawRing(f.Snap.Pos)
	r.render(f)
	return nil
}

func (r *LiveRenderer) clear() {
	for y := range r.canvas {
		for x := range r.canvas[y] {
			r.canvas[y][x] = ' '
		}
	}
}

func (r *LiveRenderer) set(x, y int, c rune) {
	if x >= 0 && x < width && y >= 0 && y < height {
		r.canvas[y][x] = c
	}
}

// drawRing paints every bead as 'o', the ring bonds of the first atom
// as dots, and the per-atom centroids as 'O', with a fading trail of
// the first centroid.
func (r *LiveRenderer) drawRing(pos [][]vec.Vec3) {
	if len(pos) == 0 || len(pos[0]) == 0 {
		return
	}
	cx, cy := width/2, height/2
	project := func(p vec.Vec3) (int, int) {
		return cx + int(p[0]*r.scale), cy - int(p[1]*r.scale/2)
	}

	for _, row := range pos {
		for _, p := range row {
			x, y := project(p)
			r.set(x, y, 'o')
		}
	}

	// bonds of atom 0 around the ring
	for rep := range pos {
		x1, y1 := project(pos[rep][0])
		x2, y2 := project(pos[(rep+1)%len(pos)][0])
		r.line(x1, y1, x2, y2, '.')
	}

	atoms := len(pos[0])
	for i := 0; i < atoms; i++ {
		c := vec.Vec3{}
		for _, row := range pos {
			c = c.Add(row[i])
		}
		c = c.Scale(1 / float64(len(pos)))
		x, y := project(c)
		if i == 0 {
			r.trail = append(r.trail, struct{ x, y int }{x, y})
			if len(r.trail) > 40 {
				r.trail = r.trail[1:]
			}
		}
		r.set(x, y, 'O')
	}
	for _, pt := range r.trail {
		if r.canvas[clampY(pt.y)][clampX(pt.x)] == ' ' {
			r.set(pt.x, pt.y, '·')
		}
	}
}

func clampX(x int) int { return min(max(x, 0), width-1) }
func clampY(y int) int { return min(max(y, 0), height-1) }

func (r *LiveRenderer) line(x1, y1, x2, y2 int, c rune) {
	dx := abs(x2 - x1)
	dy := abs(y2 - y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}
	err := dx - dy
	for {
		r.set(x1, y1, c)
		if x1 == x2 && y1 == y2 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

func (r *LiveRenderer) render(f sim.Frame) {
	var b strings.Builder
	b.WriteString(clearScreen)
	b.WriteString(fmt.Sprintf("  %s  step=%d t=%.2f\n", r.title, f.Snap.Step, f.Snap.Time))
	b.WriteString("  " + strings.Repeat("-", width) + "\n")
	for _, row := range r.canvas {
		b.WriteString("  ")
		b.WriteString(string(row))
		b.WriteString("\n")
	}
	b.WriteString("  " + strings.Repeat("-", width) + "\n")
	b.WriteString(fmt.Sprintf("  K=%.3f V=%.3f S=%.3f",
		f.Energies.Kinetic, f.Energies.Potential, f.Energies.Spring))
	for i, name := range f.Names {
		b.WriteString(fmt.Sprintf("  %s=%.3f", name, f.Values[i]))
	}
	b.WriteString("\n")
	fmt.Fprint(r.out, b.String())
}

func (r *LiveRenderer) Start() { fmt.Fprint(r.out, hideCursor) }
func (r *LiveRenderer) Stop()  { fmt.Fprint(r.out, showCursor) }

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
