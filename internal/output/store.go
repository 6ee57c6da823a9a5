package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/ringmd/internal/sim"
)

// Store keeps completed runs under a base directory, one
// subdirectory per run with a metadata file and the energy table.
type Store struct {
	baseDir string
}

func NewStore(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID          string                      `json:"id"`
	Preset      string                      `json:"preset"`
	Timestamp   time.Time                   `json:"timestamp"`
	Replicas    int                         `json:"replicas"`
	Atoms       int                         `json:"atoms"`
	Beta        float64                     `json:"beta"`
	Dt          float64                     `json:"dt"`
	Steps       int                         `json:"steps"`
	Seed        uint64                      `json:"seed"`
	Poisoned    bool                        `json:"poisoned"`
	Observables map[string]sim.EnsembleStat `json:"observables,omitempty"`
}

// Save writes the run's metadata and per-step energies and returns
// the generated run ID.
func (s *Store) Save(preset string, cfg sim.Config, res *sim.Result) (string, error) {
	runID := fmt.Sprintf("%s_%d", preset, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Preset:    preset,
		Timestamp: time.Now(),
		Replicas:  cfg.Replicas,
		Atoms:     cfg.Atoms,
		Beta:      cfg.Beta,
		Dt:        cfg.Dt,
		Steps:     res.Steps,
		Seed:      cfg.Seed,
		Poisoned:  res.Poisoned,
	}
	if len(res.Series) > 0 {
		meta.Observables = make(map[string]sim.EnsembleStat, len(res.Series))
		for name, series := range res.Series {
			meta.Observables[name] = seriesStat(series)
		}
	}
	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()
	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "energies.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()
	w := csv.NewWriter(csvFile)
	defer w.Flush()

	names := make([]string, 0, len(res.Series))
	for name := range res.Series {
		names = append(names, name)
	}
	sort.Strings(names)

	header := []string{"step", "kinetic", "potential", "spring", "work"}
	if err := w.Write(header); err != nil {
		return "", err
	}
	for i, e := range res.Energies {
		row := []string{
			strconv.Itoa(i + 1),
			ff(e.Kinetic), ff(e.Potential), ff(e.Spring), ff(e.Work),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	if len(names) > 0 {
		obsFile, err := os.Create(filepath.Join(runDir, "observables.csv"))
		if err != nil {
			return "", err
		}
		defer obsFile.Close()
		ow := csv.NewWriter(obsFile)
		defer ow.Flush()
		if err := ow.Write(append([]string{"step"}, names...)); err != nil {
			return "", err
		}
		for i, step := range res.SampleSteps {
			row := []string{strconv.Itoa(step)}
			for _, name := range names {
				row = append(row, ff(res.Series[name][i]))
			}
			if err := ow.Write(row); err != nil {
				return "", err
			}
		}
	}
	return runID, nil
}

func seriesStat(series []float64) sim.EnsembleStat {
	n := float64(len(series))
	if n == 0 {
		return sim.EnsembleStat{}
	}
	var sum, sq float64
	for _, v := range series {
		sum += v
		sq += v * v
	}
	mean := sum / n
	variance := sq/n - mean*mean
	if variance < 0 {
		variance = 0
	}
	return sim.EnsembleStat{Mean: mean, StdErr: math.Sqrt(variance / n), N: int(n)}
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}
	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadEnergies reads back the per-step energy table of a saved run.
func (s *Store) LoadEnergies(runID string) ([]sim.StepEnergies, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "energies.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []sim.StepEnergies{}, nil
	}
	out := make([]sim.StepEnergies, 0, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) != 5 {
			continue
		}
		var e sim.StepEnergies
		var errs [4]error
		e.Kinetic, errs[0] = strconv.ParseFloat(rec[1], 64)
		e.Potential, errs[1] = strconv.ParseFloat(rec[2], 64)
		e.Spring, errs[2] = strconv.ParseFloat(rec[3], 64)
		e.Work, errs[3] = strconv.ParseFloat(rec[4], 64)
		bad := false
		for _, err := range errs {
			if err != nil {
				bad = true
			}
		}
		if bad {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}
