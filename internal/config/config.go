// Package config loads run configurations from YAML and turns them
// into simulation inputs.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/ringmd/internal/core"
	"github.com/san-kum/ringmd/internal/potential"
	"github.com/san-kum/ringmd/internal/sim"
	"github.com/san-kum/ringmd/internal/vec"
)

const (
	DefaultReplicas    = 16
	DefaultAtoms       = 1
	DefaultBeta        = 8.0
	DefaultDt          = 0.005
	DefaultSteps       = 20000
	DefaultOutputEvery = 50
	DefaultMass        = 1.0
)

type Config struct {
	Potential   string          `yaml:"potential"`
	Replicas    int             `yaml:"replicas"`
	Atoms       int             `yaml:"atoms"`
	Beta        float64         `yaml:"beta"`
	Gamma       float64         `yaml:"gamma"`
	Dt          float64         `yaml:"dt"`
	Steps       int             `yaml:"steps"`
	OutputEvery int             `yaml:"output_every"`
	Seed        uint64          `yaml:"seed"`
	Groups      []GroupConfig   `yaml:"groups"`
	Init        InitConfig      `yaml:"init"`
	Params      PotentialParams `yaml:"potential_params"`
}

// GroupConfig sizes one species by atom count; the contiguous index
// ranges are derived in declaration order.
type GroupConfig struct {
	ID    int     `yaml:"id"`
	Count int     `yaml:"count"`
	Mass  float64 `yaml:"mass"`
}

// InitConfig places the initial beads: every atom starts at Offset on
// x, with the ring opened up by Spread so the spring term is not born
// at zero.
type InitConfig struct {
	Offset float64 `yaml:"offset"`
	Spread float64 `yaml:"spread"`
}

type PotentialParams struct {
	K float64 `yaml:"k"`
	A float64 `yaml:"a"`
	B float64 `yaml:"b"`
}

func DefaultConfig() *Config {
	return &Config{
		Potential:   "harmonic",
		Replicas:    DefaultReplicas,
		Atoms:       DefaultAtoms,
		Beta:        DefaultBeta,
		Gamma:       1.0,
		Dt:          DefaultDt,
		Steps:       DefaultSteps,
		OutputEvery: DefaultOutputEvery,
		Init:        InitConfig{Offset: 0, Spread: 0.1},
		Params:      PotentialParams{K: 1.0, A: 1.0, B: 1.0},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// BuildGroups derives the contiguous atom ranges from the group
// counts. An empty list means a single uniform group.
func (c *Config) BuildGroups() []core.AtomGroup {
	if len(c.Groups) == 0 {
		return core.Uniform(c.Atoms, DefaultMass)
	}
	groups := make([]core.AtomGroup, len(c.Groups))
	lo := 0
	for i, g := range c.Groups {
		groups[i] = core.AtomGroup{ID: g.ID, Lo: lo, Hi: lo + g.Count, Mass: g.Mass}
		lo += g.Count
	}
	return groups
}

func (c *Config) BuildPotential() (potential.Physical, error) {
	switch c.Potential {
	case "harmonic", "":
		return potential.NewHarmonicWell(c.Params.K), nil
	case "double_well":
		d := potential.NewDoubleWell()
		d.A, d.B, d.K = c.Params.A, c.Params.B, c.Params.K
		return d, nil
	default:
		return nil, fmt.Errorf("config: unknown potential %q", c.Potential)
	}
}

// BuildSim assembles the run configuration, including the initial
// bead placement. Placement is deterministic so runs differ only
// through the thermostat seed.
func (c *Config) BuildSim() (sim.Config, error) {
	groups := c.BuildGroups()
	init := c.Init
	replicas := c.Replicas
	cfg := sim.Config{
		Replicas:    c.Replicas,
		Atoms:       c.Atoms,
		Groups:      groups,
		Dt:          c.Dt,
		Steps:       c.Steps,
		Beta:        c.Beta,
		Gamma:       c.Gamma,
		OutputEvery: c.OutputEvery,
		Seed:        c.Seed,
		InitPos: func(r, i int) vec.Vec3 {
			stagger := init.Spread * float64(r) / float64(replicas)
			return vec.Vec3{init.Offset + stagger, init.Spread * float64(i), 0}
		},
	}
	if err := cfg.Validate(); err != nil {
		return sim.Config{}, err
	}
	return cfg, nil
}
