package potential

import (
	"math"
	"testing"

	"github.com/san-kum/ringmd/internal/core"
	"github.com/san-kum/ringmd/internal/vec"
)

func TestHarmonicWell(t *testing.T) {
	h := NewHarmonicWell(2.0)
	pos := []vec.Vec3{{1, 0, 0}, {0, 2, 0}}

	if e := h.Energy(pos); math.Abs(e-(1.0+4.0)) > 1e-12 {
		t.Fatalf("Energy = %v, want 5", e)
	}

	f := make([]vec.Vec3, 2)
	e := h.AddForces(pos, f)
	if math.Abs(e-5.0) > 1e-12 {
		t.Errorf("AddForces energy = %v, want 5", e)
	}
	if f[0] != (vec.Vec3{-2, 0, 0}) || f[1] != (vec.Vec3{0, -4, 0}) {
		t.Errorf("forces = %v", f)
	}
}

func TestDoubleWellMinima(t *testing.T) {
	d := NewDoubleWell()
	min := []vec.Vec3{{1, 0, 0}}
	if e := d.Energy(min); math.Abs(e) > 1e-12 {
		t.Errorf("energy at minimum = %v, want 0", e)
	}
	f := make([]vec.Vec3, 1)
	d.AddForces(min, f)
	if f[0].NormSq() > 1e-20 {
		t.Errorf("force at minimum = %v, want 0", f[0])
	}

	// Gradient check at a generic point against finite differences.
	p := []vec.Vec3{{0.3, -0.2, 0.7}}
	f = make([]vec.Vec3, 1)
	d.AddForces(p, f)
	const eps = 1e-6
	for k := 0; k < 3; k++ {
		hi := []vec.Vec3{p[0]}
		lo := []vec.Vec3{p[0]}
		hi[0][k] += eps
		lo[0][k] -= eps
		num := -(d.Energy(hi) - d.Energy(lo)) / (2 * eps)
		if math.Abs(num-f[0][k]) > 1e-5 {
			t.Errorf("axis %d: force %v, finite difference %v", k, f[0][k], num)
		}
	}
}

func TestSpringRing(t *testing.T) {
	groups := core.Uniform(1, 2.0)
	s := NewSpring(4, 2.0, groups) // OmegaN = 2

	cur := []vec.Vec3{{0, 0, 0}}
	next := []vec.Vec3{{1, 0, 0}}
	// E = 1/2 * m * w^2 * |d|^2 = 0.5 * 2 * 4 * 1 = 4
	if e := s.Energy(cur, next); math.Abs(e-4.0) > 1e-12 {
		t.Fatalf("Energy = %v, want 4", e)
	}

	prev := []vec.Vec3{{-1, 0, 0}}
	f := make([]vec.Vec3, 1)
	s.AddForces(prev, cur, next, f)
	// prev + next - 2*cur = 0, so the centered atom feels no force.
	if f[0].NormSq() > 1e-20 {
		t.Errorf("force on centered atom = %v, want 0", f[0])
	}

	// Pull cur off center and check the restoring direction.
	cur[0] = vec.Vec3{0.5, 0, 0}
	vec.Zero(f)
	s.AddForces(prev, cur, next, f)
	if f[0][0] >= 0 {
		t.Errorf("restoring force has wrong sign: %v", f[0])
	}
}
