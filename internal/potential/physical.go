// Package potential provides the physical potentials acting on each
// replica and the harmonic coupling between adjacent replicas of the
// ring.
package potential

import (
	"math"

	"github.com/san-kum/ringmd/internal/vec"
)

// Physical is an external potential evaluated over one replica's
// atoms.
type Physical interface {
	// Energy returns the potential energy of the configuration.
	Energy(pos []vec.Vec3) float64

	// AddForces accumulates -grad V into f and returns the potential
	// energy. f must have the same length as pos.
	AddForces(pos []vec.Vec3, f []vec.Vec3) float64
}

// HarmonicWell is an isotropic trap V = k/2 * |r|^2 centered at the
// origin.
type HarmonicWell struct {
	K float64
}

func NewHarmonicWell(k float64) *HarmonicWell { return &HarmonicWell{K: k} }

func (h *HarmonicWell) Energy(pos []vec.Vec3) float64 {
	e := 0.0
	for _, r := range pos {
		e += 0.5 * h.K * r.NormSq()
	}
	return e
}

func (h *HarmonicWell) AddForces(pos []vec.Vec3, f []vec.Vec3) float64 {
	e := 0.0
	for i, r := range pos {
		e += 0.5 * h.K * r.NormSq()
		f[i] = f[i].Add(r.Scale(-h.K))
	}
	return e
}

// DoubleWell is a bistable quartic along x with harmonic confinement
// in y and z: V = A*(x^2 - B)^2 + k/2*(y^2 + z^2).
type DoubleWell struct {
	A, B, K float64
}

func NewDoubleWell() *DoubleWell { return &DoubleWell{A: 1.0, B: 1.0, K: 1.0} }

func (d *DoubleWell) Energy(pos []vec.Vec3) float64 {
	e := 0.0
	for _, r := range pos {
		x := r[0]
		e += d.A*math.Pow(x*x-d.B, 2) + 0.5*d.K*(r[1]*r[1]+r[2]*r[2])
	}
	return e
}

func (d *DoubleWell) AddForces(pos []vec.Vec3, f []vec.Vec3) float64 {
	e := 0.0
	for i, r := range pos {
		x := r[0]
		e += d.A*math.Pow(x*x-d.B, 2) + 0.5*d.K*(r[1]*r[1]+r[2]*r[2])
		f[i][0] += -4 * d.A * x * (x*x - d.B)
		f[i][1] += -d.K * r[1]
		f[i][2] += -d.K * r[2]
	}
	return e
}
