package sim

import (
	"errors"
	"fmt"

	"github.com/san-kum/ringmd/internal/core"
	"github.com/san-kum/ringmd/internal/fieldlock"
	"github.com/san-kum/ringmd/internal/vec"
)

// ErrConfig indicates an invalid run configuration.
var ErrConfig = errors.New("sim: invalid configuration")

// Config describes one ring-polymer run.
type Config struct {
	Replicas int
	Atoms    int
	Groups   []core.AtomGroup
	Dt       float64
	Steps    int
	Beta     float64
	// Gamma is the Langevin friction; zero disables the thermostat.
	Gamma       float64
	OutputEvery int
	Seed        uint64

	// InitPos places atom i of replica r; nil leaves everything at
	// the origin.
	InitPos func(r, i int) vec.Vec3

	// Alloc backs the per-replica atom buffers; nil selects a pool
	// allocator shared by the three quantities.
	Alloc fieldlock.Allocator[vec.Vec3]
}

func (c *Config) Validate() error {
	if c.Replicas < 1 {
		return fmt.Errorf("%w: replicas %d", ErrConfig, c.Replicas)
	}
	if c.Atoms < 1 {
		return fmt.Errorf("%w: atoms %d", ErrConfig, c.Atoms)
	}
	if c.Dt <= 0 {
		return fmt.Errorf("%w: dt %v", ErrConfig, c.Dt)
	}
	if c.Steps < 1 {
		return fmt.Errorf("%w: steps %d", ErrConfig, c.Steps)
	}
	if c.Beta <= 0 {
		return fmt.Errorf("%w: beta %v", ErrConfig, c.Beta)
	}
	if c.Gamma < 0 {
		return fmt.Errorf("%w: gamma %v", ErrConfig, c.Gamma)
	}
	if c.OutputEvery < 1 {
		return fmt.Errorf("%w: output every %d", ErrConfig, c.OutputEvery)
	}
	return core.Validate(c.Groups, c.Atoms)
}

// StepEnergies is the per-step energy reduction over all replicas.
type StepEnergies struct {
	Kinetic   float64 // sum p^2/2m over the ring
	Potential float64 // physical PE summed over replicas
	Spring    float64 // ring spring energy summed over bonds
	Work      float64 // energy injected by the thermostat
}

func (e *StepEnergies) add(c contribution) {
	e.Kinetic += c.ke
	e.Potential += c.pe
	e.Spring += c.spring
	e.Work += c.work
}

// contribution is one replica's share of a step's energies, sent to
// the collector over the reduction channel.
type contribution struct {
	step   int
	ke     float64
	pe     float64
	spring float64
	work   float64
}

// Snapshot is a deep copy of the ring, each quantity copied under its
// whole-read guard. Poisoned reports whether any quantity carried a
// writer fault at snapshot time.
type Snapshot struct {
	Step     int
	Time     float64
	Pos      [][]vec.Vec3
	Mom      [][]vec.Vec3
	Frc      [][]vec.Vec3
	Poisoned bool
}

// Frame is what observables and sinks receive at every output step.
// Values holds the sampled observables in the order of Names; it is
// empty while the frame is being handed to the observables
// themselves.
type Frame struct {
	Snap     Snapshot
	Energies StepEnergies
	Names    []string
	Values   []float64
}

// Observable samples one scalar per output frame.
type Observable interface {
	Name() string
	Sample(f Frame) float64
}

// Sink consumes completed frames: trajectory writers, observable
// tables, live views.
type Sink interface {
	Frame(f Frame) error
}

// Result summarizes one run.
type Result struct {
	Steps       int
	Energies    []StepEnergies
	SampleSteps []int
	Series      map[string][]float64
	Final       Snapshot
	Poisoned    bool
}
