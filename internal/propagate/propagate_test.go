package propagate

import (
	"math"
	"testing"

	"github.com/san-kum/ringmd/internal/core"
	"github.com/san-kum/ringmd/internal/potential"
	"github.com/san-kum/ringmd/internal/vec"
)

func TestDriftAndKick(t *testing.T) {
	pr := New(0.5, core.Uniform(1, 2.0))

	x := []vec.Vec3{{0, 0, 0}}
	p := []vec.Vec3{{4, 0, 0}}
	pr.Drift(x, p)
	// dx = p/m * dt = 4/2 * 0.5 = 1
	if math.Abs(x[0][0]-1.0) > 1e-12 {
		t.Errorf("x after drift = %v", x[0])
	}

	f := []vec.Vec3{{-2, 0, 0}}
	pr.HalfKick(p, f)
	// dp = f*dt/2 = -0.5
	if math.Abs(p[0][0]-3.5) > 1e-12 {
		t.Errorf("p after half kick = %v", p[0])
	}

	if ke := pr.KineticEnergy(p); math.Abs(ke-3.5*3.5/4) > 1e-12 {
		t.Errorf("KE = %v", ke)
	}
}

// A single particle in a harmonic well integrated by full velocity
// Verlet (kick-drift-kick) conserves energy to O(dt^2) over many
// periods.
func TestVerletEnergyConservation(t *testing.T) {
	const (
		dt    = 0.01
		steps = 10000
	)
	groups := core.Uniform(1, 1.0)
	pr := New(dt, groups)
	well := potential.NewHarmonicWell(1.0)

	x := []vec.Vec3{{1, 0, 0}}
	p := []vec.Vec3{{0, 0, 0}}
	f := make([]vec.Vec3, 1)
	well.AddForces(x, f)

	energy := func() float64 { return pr.KineticEnergy(p) + well.Energy(x) }
	e0 := energy()

	for s := 0; s < steps; s++ {
		pr.HalfKick(p, f)
		pr.Drift(x, p)
		vec.Zero(f)
		well.AddForces(x, f)
		pr.HalfKick(p, f)
	}

	if drift := math.Abs(energy()-e0) / e0; drift > 1e-4 {
		t.Fatalf("energy drift %v over %d steps", drift, steps)
	}
}
