package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/ringmd/internal/fieldlock"
	"github.com/san-kum/ringmd/internal/potential"
	"github.com/san-kum/ringmd/internal/propagate"
	"github.com/san-kum/ringmd/internal/thermostat"
	"github.com/san-kum/ringmd/internal/vec"
)

// field is the handle shape of one per-replica quantity: the payload
// is one row of atoms per replica, the subfield is a single row.
type (
	fieldHandle = fieldlock.Handle[[]vec.Vec3, [][]vec.Vec3]
	fieldSlice  = fieldlock.UniqueSlice[[]vec.Vec3]
	fieldRow    = fieldlock.Unique[[]vec.Vec3, [][]vec.Vec3]
)

// Runner drives one ring-polymer trajectory. Positions, momenta and
// forces each live in a single shared allocation split into
// per-replica rows; every replica runs on its own goroutine and works
// through its own row handles, so the step loop never needs a mutex
// of its own.
type Runner struct {
	cfg   Config
	phys  potential.Physical
	obs   []Observable
	sinks []Sink
	log   *slog.Logger
}

func New(cfg Config, phys potential.Physical, log *slog.Logger) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if phys == nil {
		return nil, fmt.Errorf("%w: nil physical potential", ErrConfig)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Runner{cfg: cfg, phys: phys, log: log}, nil
}

func (r *Runner) AddObservable(o Observable) { r.obs = append(r.obs, o) }

func (r *Runner) AddSink(s Sink) { r.sinks = append(r.sinks, s) }

// newField builds one quantity: an outer slice with one inner row per
// replica, rows drawn from the atom allocator and returned to it when
// the last handle releases.
func (r *Runner) newField(alloc fieldlock.Allocator[vec.Vec3], init func(rep, i int) vec.Vec3) *fieldSlice {
	return fieldlock.NewSlice(
		fieldlock.HeapAllocator[[]vec.Vec3]{}, r.cfg.Replicas,
		func(rep int) []vec.Vec3 {
			row := alloc.Alloc(r.cfg.Atoms)
			if init != nil {
				for i := range row {
					row[i] = init(rep, i)
				}
			}
			return row
		},
		func(p *[][]vec.Vec3) {
			for _, row := range *p {
				alloc.Free(row)
			}
		})
}

// splitRows consumes a field owner and returns one unique element
// owner per replica. The rows are pairwise disjoint, which is exactly
// what lets the replicas write concurrently.
func splitRows(u *fieldSlice, replicas int) []*fieldRow {
	it := fieldlock.SplitMut(u)
	rows := make([]*fieldRow, 0, replicas)
	for {
		el, ok := it.Next()
		if !ok {
			break
		}
		rows = append(rows, el)
	}
	it.Close()
	return rows
}

func releaseRows(rows []*fieldRow) {
	for _, el := range rows {
		el.Release()
	}
}

// Run executes the configured number of steps and returns the
// collected energies, observable series and final snapshot. On
// context cancellation the trajectory stops at the next step boundary
// and the partial result is returned alongside ctx.Err().
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	cfg := r.cfg
	alloc := cfg.Alloc
	if alloc == nil {
		alloc = fieldlock.NewPoolAllocator[vec.Vec3](cfg.Atoms)
	}

	pos := splitRows(r.newField(alloc, cfg.InitPos), cfg.Replicas)
	mom := splitRows(r.newField(alloc, nil), cfg.Replicas)
	frc := splitRows(r.newField(alloc, nil), cfg.Replicas)
	defer func() {
		releaseRows(pos)
		releaseRows(mom)
		releaseRows(frc)
	}()

	r.log.Info("run starting",
		"replicas", cfg.Replicas, "atoms", cfg.Atoms,
		"steps", cfg.Steps, "dt", cfg.Dt, "beta", cfg.Beta)

	// Three rendezvous per step: after the first half-step, after the
	// force evaluation, and after the second half-step. The collector
	// joins every barrier so its whole-reads always land in a window
	// where no replica holds a write guard.
	b := newBarrier(cfg.Replicas + 1)
	contrib := make(chan contribution, cfg.Replicas)

	res := &Result{Series: make(map[string][]float64)}
	parent := ctx
	g, ctx := errgroup.WithContext(ctx)
	for rep := range cfg.Replicas {
		g.Go(func() error {
			r.worker(ctx, rep, b, contrib, pos, mom, frc)
			return nil
		})
	}
	g.Go(func() error {
		return r.collect(ctx, b, contrib, pos[0].Handle(), mom[0].Handle(), frc[0].Handle(), res)
	})
	err := g.Wait()
	if err == nil {
		// g.Wait cancels the derived context; only the caller's
		// cancellation is an error.
		err = parent.Err()
	}
	r.log.Info("run finished", "steps", res.Steps, "poisoned", res.Poisoned)
	return res, err
}

// worker advances one replica. Each step is three phases separated by
// barriers: O-B-A on its own rows, a whole-read of positions to
// evaluate forces into a private buffer, then B-O plus the force
// write-back. Guards are never held across a barrier.
func (r *Runner) worker(ctx context.Context, rep int, b *cyclicBarrier, out chan<- contribution,
	pos, mom, frc []*fieldRow) {

	cfg := r.cfg
	posH, momH, frcH := pos[rep].Handle(), mom[rep].Handle(), frc[rep].Handle()
	spring := potential.NewSpring(cfg.Replicas, cfg.Beta, cfg.Groups)
	prop := propagate.New(cfg.Dt, cfg.Groups)
	var th thermostat.Thermostat = thermostat.None{}
	if cfg.Gamma > 0 {
		th = thermostat.NewLangevin(cfg.Gamma, cfg.Dt, cfg.Beta, cfg.Groups, cfg.Seed+uint64(rep)+1)
	}
	fbuf := make([]vec.Vec3, cfg.Atoms)

	eval := func() (pe, spr float64) {
		rg, _ := posH.ReadWhole()
		all := *rg.Get()
		vec.Zero(fbuf)
		pe = r.phys.AddForces(all[rep], fbuf)
		prev := all[(rep+cfg.Replicas-1)%cfg.Replicas]
		next := all[(rep+1)%cfg.Replicas]
		spr = spring.AddForces(prev, all[rep], next, fbuf)
		rg.Unlock()
		return pe, spr
	}

	// Forces must be populated before the first half-kick.
	eval()
	fg := frcH.Write()
	copy(*fg.Get(), fbuf)
	fg.Unlock()
	b.wait(false)

	for step := 1; ; step++ {
		// Phase 1: thermostat, half-kick, drift on this replica's rows.
		mg := momH.Write()
		work := th.Step(*mg.Get())
		prop.HalfKick(*mg.Get(), *frcH.Read())
		pg := posH.Write()
		prop.Drift(*pg.Get(), *mg.Get())
		pg.Unlock()
		mg.Unlock()
		b.wait(false)

		// Phase 2: forces at the new positions, read-only fan-out.
		pe, spr := eval()
		b.wait(false)

		// Phase 3: write forces back, finish the momentum update.
		fg := frcH.Write()
		copy(*fg.Get(), fbuf)
		fg.Unlock()
		mg = momH.Write()
		prop.HalfKick(*mg.Get(), fbuf)
		work += th.Step(*mg.Get())
		ke := prop.KineticEnergy(*mg.Get())
		mg.Unlock()

		out <- contribution{step: step, ke: ke, pe: pe, spring: spr, work: work}
		if b.wait(ctx.Err() != nil) {
			return
		}
	}
}

// collect reduces the per-replica contributions, emits frames, and
// casts the stop vote that ends the run. Snapshots are taken while
// every worker is parked at the end-of-step barrier, so they observe
// exactly the just-completed step.
func (r *Runner) collect(ctx context.Context, b *cyclicBarrier, in <-chan contribution,
	posH, momH, frcH *fieldHandle, res *Result) error {

	cfg := r.cfg
	names := make([]string, len(r.obs))
	for i, o := range r.obs {
		names[i] = o.Name()
	}

	b.wait(false) // initial force evaluation
	var sinkErr error
	for step := 1; ; step++ {
		b.wait(false)
		b.wait(false)

		var e StepEnergies
		for range cfg.Replicas {
			e.add(<-in)
		}
		res.Energies = append(res.Energies, e)
		res.Steps = step

		last := step == cfg.Steps
		if sinkErr == nil && (last || step%cfg.OutputEvery == 0) {
			f := Frame{
				Snap:     r.snapshot(step, posH, momH, frcH),
				Energies: e,
				Names:    names,
			}
			if f.Snap.Poisoned && !res.Poisoned {
				res.Poisoned = true
				r.log.Warn("allocation poisoned", "step", step)
			}
			f.Values = make([]float64, len(r.obs))
			for i, o := range r.obs {
				f.Values[i] = o.Sample(f)
				res.Series[names[i]] = append(res.Series[names[i]], f.Values[i])
			}
			res.SampleSteps = append(res.SampleSteps, step)
			for _, s := range r.sinks {
				if err := s.Frame(f); err != nil {
					sinkErr = fmt.Errorf("sim: sink: %w", err)
					break
				}
			}
			if last {
				res.Final = f.Snap
			}
		}

		stop := last || sinkErr != nil || ctx.Err() != nil
		if b.wait(stop) {
			if res.Final.Pos == nil {
				res.Final = r.snapshot(step, posH, momH, frcH)
			}
			return sinkErr
		}
	}
}

// snapshot deep-copies the three quantities under their whole-read
// guards. Callers arrange that no writer is active, so the guards are
// immediate and the copy is a single coherent configuration.
func (r *Runner) snapshot(step int, posH, momH, frcH *fieldHandle) Snapshot {
	s := Snapshot{Step: step, Time: float64(step) * r.cfg.Dt}
	var p1, p2, p3 bool
	s.Pos, p1 = copyField(posH)
	s.Mom, p2 = copyField(momH)
	s.Frc, p3 = copyField(frcH)
	s.Poisoned = p1 || p2 || p3
	return s
}

func copyField(h *fieldHandle) ([][]vec.Vec3, bool) {
	g, err := h.ReadWhole()
	src := *g.Get()
	out := make([][]vec.Vec3, len(src))
	for i, row := range src {
		out[i] = append([]vec.Vec3(nil), row...)
	}
	g.Unlock()
	return out, errors.Is(err, fieldlock.ErrPoisoned)
}
