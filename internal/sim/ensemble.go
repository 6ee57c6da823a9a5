package sim

import (
	"context"
	"log/slog"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/ringmd/internal/potential"
)

// Ensemble repeats one run configuration over independent seeds and
// averages the sampled observables. Each trajectory carries its own
// allocations, so the runs are embarrassingly parallel; MaxParallel
// caps how many are in flight at once.
type Ensemble struct {
	cfg         Config
	phys        potential.Physical
	obs         []Observable
	numRuns     int
	MaxParallel int
	log         *slog.Logger
}

func NewEnsemble(cfg Config, phys potential.Physical, numRuns int, log *slog.Logger) *Ensemble {
	if log == nil {
		log = slog.Default()
	}
	return &Ensemble{
		cfg:         cfg,
		phys:        phys,
		numRuns:     numRuns,
		MaxParallel: runtime.GOMAXPROCS(0),
		log:         log,
	}
}

func (e *Ensemble) AddObservable(o Observable) { e.obs = append(e.obs, o) }

// EnsembleStat is the per-observable average over all runs, taken
// over every sampled frame of every trajectory.
type EnsembleStat struct {
	Mean   float64
	StdErr float64
	N      int
}

// Run executes the trajectories and returns the per-run results plus
// the pooled observable statistics.
func (e *Ensemble) Run(ctx context.Context) ([]*Result, map[string]EnsembleStat, error) {
	results := make([]*Result, e.numRuns)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.MaxParallel)
	for i := range e.numRuns {
		g.Go(func() error {
			cfg := e.cfg
			cfg.Seed = e.cfg.Seed + uint64(i)*0x9e3779b9
			r, err := New(cfg, e.phys, e.log.With("run", i))
			if err != nil {
				return err
			}
			for _, o := range e.obs {
				r.AddObservable(o)
			}
			results[i], err = r.Run(ctx)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return results, pool(results), nil
}

func pool(results []*Result) map[string]EnsembleStat {
	sums := make(map[string]*[3]float64) // sum, sum of squares, count
	for _, r := range results {
		for name, series := range r.Series {
			acc, ok := sums[name]
			if !ok {
				acc = new([3]float64)
				sums[name] = acc
			}
			for _, v := range series {
				acc[0] += v
				acc[1] += v * v
				acc[2]++
			}
		}
	}
	stats := make(map[string]EnsembleStat, len(sums))
	for name, acc := range sums {
		n := acc[2]
		if n == 0 {
			continue
		}
		mean := acc[0] / n
		variance := acc[1]/n - mean*mean
		if variance < 0 {
			variance = 0
		}
		stats[name] = EnsembleStat{
			Mean:   mean,
			StdErr: math.Sqrt(variance / n),
			N:      int(n),
		}
	}
	return stats
}
