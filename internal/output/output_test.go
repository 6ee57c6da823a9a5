package output

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/ringmd/internal/core"
	"github.com/san-kum/ringmd/internal/sim"
	"github.com/san-kum/ringmd/internal/vec"
)

func frame(step int, t float64) sim.Frame {
	return sim.Frame{
		Snap: sim.Snapshot{
			Step: step,
			Time: t,
			Pos: [][]vec.Vec3{
				{{1, 2, 3}, {4, 5, 6}},
				{{7, 8, 9}, {10, 11, 12}},
			},
		},
		Energies: sim.StepEnergies{Kinetic: 1.5, Potential: 2, Spring: 0.5, Work: 0},
		Names:    []string{"temperature"},
		Values:   []float64{0.25},
	}
}

func TestObservableWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewObservableWriter(&buf)
	require.NoError(t, w.Frame(frame(10, 0.1)))
	require.NoError(t, w.Frame(frame(20, 0.2)))
	require.NoError(t, w.Flush())

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	want := [][]string{
		{"step", "time", "kinetic", "potential", "spring", "work", "temperature"},
		{"10", "0.1", "1.5", "2", "0.5", "0", "0.25"},
		{"20", "0.2", "1.5", "2", "0.5", "0", "0.25"},
	}
	if diff := cmp.Diff(want, records); diff != "" {
		t.Fatalf("csv mismatch (-want +got):\n%s", diff)
	}
}

func TestXYZWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewXYZWriter(&buf, core.Uniform(2, 1.0))
	require.NoError(t, w.Frame(frame(5, 0.05)))
	require.NoError(t, w.Flush())

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 6)
	require.Equal(t, "4", lines[0])
	require.Equal(t, "step=5 time=0.05", lines[1])
	require.True(t, strings.HasPrefix(lines[2], "G0 1.0"), "got %q", lines[2])
	require.True(t, strings.HasPrefix(lines[5], "G0 10.0"), "got %q", lines[5])
}

func TestStoreRoundTrip(t *testing.T) {
	store := NewStore(t.TempDir())
	require.NoError(t, store.Init())

	cfg := sim.Config{Replicas: 4, Atoms: 2, Beta: 2, Dt: 0.01, Seed: 9}
	res := &sim.Result{
		Steps: 3,
		Energies: []sim.StepEnergies{
			{Kinetic: 1, Potential: 2, Spring: 0.5, Work: 0},
			{Kinetic: 1.1, Potential: 1.9, Spring: 0.6, Work: 0.01},
			{Kinetic: 1.2, Potential: 1.8, Spring: 0.7, Work: 0.02},
		},
		SampleSteps: []int{2},
		Series:      map[string][]float64{"temperature": {0.5}},
	}
	id, err := store.Save("double-well", cfg, res)
	require.NoError(t, err)

	meta, err := store.Load(id)
	require.NoError(t, err)
	require.Equal(t, "double-well", meta.Preset)
	require.Equal(t, 4, meta.Replicas)
	require.Equal(t, 3, meta.Steps)

	runs, err := store.List()
	require.NoError(t, err)
	require.Len(t, runs, 1)

	energies, err := store.LoadEnergies(id)
	require.NoError(t, err)
	if diff := cmp.Diff(res.Energies, energies); diff != "" {
		t.Fatalf("energies mismatch (-want +got):\n%s", diff)
	}
}

func TestTrace(t *testing.T) {
	if Trace([]float64{1}, "x") != "" {
		t.Fatal("short series should produce no plot")
	}
	plot := Trace([]float64{1, 2, 3, 2, 1}, "energy")
	require.Contains(t, plot, "energy")
}
