package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/san-kum/ringmd/internal/potential"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.Equal(t, "harmonic", cfg.Potential)
	require.Positive(t, cfg.Dt)
	require.Positive(t, cfg.Beta)

	simCfg, err := cfg.BuildSim()
	require.NoError(t, err)
	require.Equal(t, cfg.Replicas, simCfg.Replicas)
	require.NotNil(t, simCfg.InitPos)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	doc := `
potential: double_well
replicas: 32
beta: 16
groups:
  - {id: 0, count: 2, mass: 1.5}
  - {id: 1, count: 1, mass: 3.0}
atoms: 3
potential_params: {a: 2, b: 1, k: 0.5}
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 32, cfg.Replicas)
	require.Equal(t, 16.0, cfg.Beta)
	// untouched fields keep their defaults
	require.Equal(t, DefaultDt, cfg.Dt)

	groups := cfg.BuildGroups()
	require.Len(t, groups, 2)
	require.Equal(t, 0, groups[0].Lo)
	require.Equal(t, 2, groups[0].Hi)
	require.Equal(t, 2, groups[1].Lo)
	require.Equal(t, 3, groups[1].Hi)
	require.Equal(t, 3.0, groups[1].Mass)

	phys, err := cfg.BuildPotential()
	require.NoError(t, err)
	dw, ok := phys.(*potential.DoubleWell)
	require.True(t, ok)
	require.Equal(t, 2.0, dw.A)
}

func TestBuildPotentialUnknown(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Potential = "morse"
	_, err := cfg.BuildPotential()
	require.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := GetPreset("harmonic", "chain")
	require.NotNil(t, cfg)
	require.NoError(t, Save(path, cfg))

	back, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.Replicas, back.Replicas)
	require.Equal(t, cfg.Groups, back.Groups)
}

func TestGetPreset(t *testing.T) {
	require.Nil(t, GetPreset("harmonic", "nope"))
	require.Nil(t, GetPreset("nope", "small"))
	cfg := GetPreset("double_well", "tunnel")
	require.NotNil(t, cfg)
	require.Equal(t, 32, cfg.Replicas)

	names := ListPresets("harmonic")
	require.Len(t, names, 3)
}
