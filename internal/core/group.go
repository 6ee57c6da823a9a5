// Package core holds the shared domain types of the ring simulation.
package core

import "fmt"

// AtomGroup describes a contiguous run of atoms of one species inside
// every replica's atom slice.
type AtomGroup struct {
	ID   int
	Lo   int // first atom index, inclusive
	Hi   int // last atom index, exclusive
	Mass float64
}

func (g AtomGroup) Len() int { return g.Hi - g.Lo }

// Validate checks that groups tile [0, atoms) without gaps or
// overlap and carry positive masses.
func Validate(groups []AtomGroup, atoms int) error {
	next := 0
	for i, g := range groups {
		if g.Lo != next {
			return fmt.Errorf("core: group %d starts at %d, want %d", i, g.Lo, next)
		}
		if g.Hi <= g.Lo {
			return fmt.Errorf("core: group %d is empty", i)
		}
		if g.Mass <= 0 {
			return fmt.Errorf("core: group %d has non-positive mass %v", i, g.Mass)
		}
		next = g.Hi
	}
	if next != atoms {
		return fmt.Errorf("core: groups cover %d atoms, want %d", next, atoms)
	}
	return nil
}

// Uniform returns a single group covering all atoms with one mass.
func Uniform(atoms int, mass float64) []AtomGroup {
	return []AtomGroup{{ID: 0, Lo: 0, Hi: atoms, Mass: mass}}
}

// MassOf returns the mass owning atom index i.
func MassOf(groups []AtomGroup, i int) float64 {
	for _, g := range groups {
		if i >= g.Lo && i < g.Hi {
			return g.Mass
		}
	}
	return 0
}
