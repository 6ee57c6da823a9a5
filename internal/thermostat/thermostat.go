// Package thermostat provides canonical-ensemble thermalization for
// one replica's momenta.
package thermostat

import (
	"math"
	"math/rand/v2"

	"github.com/san-kum/ringmd/internal/core"
	"github.com/san-kum/ringmd/internal/vec"
)

// Thermostat resamples momenta so the system stays at fixed
// temperature while different energies are explored.
type Thermostat interface {
	// Step applies one thermostat half-step to the momenta and
	// returns the kinetic energy it injected, for energy accounting.
	Step(p []vec.Vec3) float64
}

// None leaves the momenta untouched (microcanonical runs).
type None struct{}

func (None) Step([]vec.Vec3) float64 { return 0 }

// Langevin is the Ornstein-Uhlenbeck momentum update
// p <- c1*p + c2*xi with c1 = exp(-gamma*dt/2) and
// c2 = sqrt((1 - c1^2) * m / beta) per atom, applied as the O part of
// an OBABO splitting.
type Langevin struct {
	c1     float64
	groups []core.AtomGroup
	beta   float64
	rng    *rand.Rand
}

func NewLangevin(gamma, dt, beta float64, groups []core.AtomGroup, seed uint64) *Langevin {
	return &Langevin{
		c1:     math.Exp(-gamma * dt / 2),
		groups: groups,
		beta:   beta,
		rng:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

func (l *Langevin) Step(p []vec.Vec3) float64 {
	dE := 0.0
	for _, g := range l.groups {
		c2 := math.Sqrt((1 - l.c1*l.c1) * g.Mass / l.beta)
		inv2m := 1 / (2 * g.Mass)
		for i := g.Lo; i < g.Hi; i++ {
			old := p[i].NormSq()
			for k := 0; k < 3; k++ {
				p[i][k] = l.c1*p[i][k] + c2*l.rng.NormFloat64()
			}
			dE += (p[i].NormSq() - old) * inv2m
		}
	}
	return dE
}
