// Package propagate advances one replica of the ring by velocity
// Verlet. The force half-kicks and the free drift are split so the
// simulation loop can interleave them with thermostat half-steps and
// the cross-replica force exchange.
package propagate

import (
	"github.com/san-kum/ringmd/internal/core"
	"github.com/san-kum/ringmd/internal/vec"
)

type Propagator struct {
	Dt     float64
	Groups []core.AtomGroup
}

func New(dt float64, groups []core.AtomGroup) *Propagator {
	return &Propagator{Dt: dt, Groups: groups}
}

// HalfKick applies half a step of the current forces to the momenta.
func (pr *Propagator) HalfKick(p, f []vec.Vec3) {
	vec.Axpy(pr.Dt/2, f, p)
}

// Drift advances the positions one full step under the current
// momenta.
func (pr *Propagator) Drift(x, p []vec.Vec3) {
	dt := pr.Dt
	for _, g := range pr.Groups {
		a := dt / g.Mass
		for i := g.Lo; i < g.Hi; i++ {
			x[i] = x[i].Add(p[i].Scale(a))
		}
	}
}

// KineticEnergy returns sum p^2 / 2m over the replica.
func (pr *Propagator) KineticEnergy(p []vec.Vec3) float64 {
	e := 0.0
	for _, g := range pr.Groups {
		inv2m := 1 / (2 * g.Mass)
		for i := g.Lo; i < g.Hi; i++ {
			e += p[i].NormSq() * inv2m
		}
	}
	return e
}
