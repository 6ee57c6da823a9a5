package potential

import (
	"github.com/san-kum/ringmd/internal/core"
	"github.com/san-kum/ringmd/internal/vec"
)

// Spring is the harmonic coupling between the same atom in adjacent
// replicas of the ring. The stiffness of atom i is m_i * OmegaN^2,
// with OmegaN = replicas / (beta * hbar); in the reduced units used
// here hbar = 1.
type Spring struct {
	OmegaN float64
	Groups []core.AtomGroup
}

func NewSpring(replicas int, beta float64, groups []core.AtomGroup) *Spring {
	return &Spring{OmegaN: float64(replicas) / beta, Groups: groups}
}

// Energy returns the spring energy between one replica and its
// successor on the ring.
func (s *Spring) Energy(cur, next []vec.Vec3) float64 {
	w2 := s.OmegaN * s.OmegaN
	e := 0.0
	for _, g := range s.Groups {
		k := 0.5 * g.Mass * w2
		for i := g.Lo; i < g.Hi; i++ {
			e += k * cur[i].Sub(next[i]).NormSq()
		}
	}
	return e
}

// AddForces accumulates the spring force on cur from both ring
// neighbors into f and returns the energy of the cur-next bond. Each
// bond's energy is counted once per step because every replica
// reports only its successor bond.
func (s *Spring) AddForces(prev, cur, next []vec.Vec3, f []vec.Vec3) float64 {
	w2 := s.OmegaN * s.OmegaN
	e := 0.0
	for _, g := range s.Groups {
		k := g.Mass * w2
		for i := g.Lo; i < g.Hi; i++ {
			d := cur[i].Sub(next[i])
			e += 0.5 * k * d.NormSq()
			// -m w^2 (2 r_i - r_prev - r_next)
			pull := prev[i].Add(next[i]).Sub(cur[i].Scale(2))
			f[i] = f[i].Add(pull.Scale(k))
		}
	}
	return e
}
