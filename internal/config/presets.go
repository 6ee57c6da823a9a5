package config

// Presets are ready-made runs keyed by potential, then by scenario.
var Presets = map[string]map[string]*Config{
	"harmonic": {
		"small": {
			Potential: "harmonic", Replicas: 8, Atoms: 1, Beta: 4, Gamma: 1,
			Dt: 0.01, Steps: 10000, OutputEvery: 20,
			Init:   InitConfig{Offset: 0.5, Spread: 0.1},
			Params: PotentialParams{K: 1},
		},
		"cold": {
			Potential: "harmonic", Replicas: 64, Atoms: 1, Beta: 32, Gamma: 1,
			Dt: 0.002, Steps: 50000, OutputEvery: 100,
			Init:   InitConfig{Offset: 0.2, Spread: 0.05},
			Params: PotentialParams{K: 1},
		},
		"chain": {
			Potential: "harmonic", Replicas: 16, Atoms: 8, Beta: 8, Gamma: 0.5,
			Dt: 0.005, Steps: 20000, OutputEvery: 50,
			Groups: []GroupConfig{
				{ID: 0, Count: 4, Mass: 1},
				{ID: 1, Count: 4, Mass: 4},
			},
			Init:   InitConfig{Offset: 0, Spread: 0.2},
			Params: PotentialParams{K: 2},
		},
	},
	"double_well": {
		"tunnel": {
			Potential: "double_well", Replicas: 32, Atoms: 1, Beta: 16, Gamma: 1,
			Dt: 0.002, Steps: 100000, OutputEvery: 200,
			Init:   InitConfig{Offset: 1, Spread: 0.1},
			Params: PotentialParams{A: 1, B: 1, K: 1},
		},
		"classical": {
			Potential: "double_well", Replicas: 1, Atoms: 1, Beta: 2, Gamma: 2,
			Dt: 0.01, Steps: 20000, OutputEvery: 50,
			Init:   InitConfig{Offset: 1, Spread: 0},
			Params: PotentialParams{A: 1, B: 1, K: 1},
		},
	},
}

func GetPreset(pot, preset string) *Config {
	potPresets, ok := Presets[pot]
	if !ok {
		return nil
	}
	cfg, ok := potPresets[preset]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets(pot string) []string {
	potPresets, ok := Presets[pot]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(potPresets))
	for name := range potPresets {
		names = append(names, name)
	}
	return names
}
