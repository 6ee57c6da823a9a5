package tui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/san-kum/ringmd/internal/sim"
	"github.com/san-kum/ringmd/internal/vec"
)

func testFrame(step int) sim.Frame {
	return sim.Frame{
		Snap: sim.Snapshot{
			Step: step,
			Time: float64(step) * 0.01,
			Pos: [][]vec.Vec3{
				{{0.5, 0.2, 0}},
				{{-0.5, -0.2, 0}},
			},
		},
		Energies: sim.StepEnergies{Kinetic: 1.5, Potential: 0.5, Spring: 0.25},
		Names:    []string{"energy_virial"},
		Values:   []float64{2.0},
	}
}

func TestLiveRendererDrawsFrame(t *testing.T) {
	var buf bytes.Buffer
	r := NewLiveRenderer("ring", 1000)
	r.out = &buf

	require.NoError(t, r.Frame(testFrame(7)))

	out := buf.String()
	require.Contains(t, out, "ring  step=7")
	require.Contains(t, out, "K=1.500 V=0.500 S=0.250")
	require.Contains(t, out, "energy_virial=2.000")
	// beads and their centroid land on the canvas
	require.True(t, strings.ContainsRune(out, 'o'))
	require.True(t, strings.ContainsRune(out, 'O'))
}

func TestLiveRendererThrottles(t *testing.T) {
	var buf bytes.Buffer
	r := NewLiveRenderer("ring", 1)
	r.out = &buf

	require.NoError(t, r.Frame(testFrame(1)))
	require.NotEmpty(t, buf.String())

	buf.Reset()
	require.NoError(t, r.Frame(testFrame(2)))
	require.Empty(t, buf.String(), "second frame inside the interval should be dropped")
}

func TestLiveRendererCursorControl(t *testing.T) {
	var buf bytes.Buffer
	r := NewLiveRenderer("ring", 30)
	r.out = &buf

	r.Start()
	r.Stop()
	require.Equal(t, hideCursor+showCursor, buf.String())
}
