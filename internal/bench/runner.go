// Package bench drives a scenario workload against the spatial grid and
// summarizes per-query latency.
package bench

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"github.com/gridworks/broadphase/internal/geom"
	"github.com/gridworks/broadphase/internal/scenario"
	"github.com/gridworks/broadphase/internal/sim"
	"github.com/gridworks/broadphase/internal/spatial"
)

// tickDT is the fixed simulated timestep per tick.
const tickDT = 0.05

// Summary aggregates one run. Latencies are microseconds.
type Summary struct {
	Scenario    string
	Entities    int
	Ticks       int
	Queries     int
	MeanMicros  float64
	P50Micros   float64
	P95Micros   float64
	P99Micros   float64
	MaxMicros   float64
	AvgResults  float64
	EnterEvents uint64
	LeaveEvents uint64
	Elapsed     time.Duration
}

// Runner executes scenarios. Stateless apart from the logger; safe to
// reuse across runs.
type Runner struct {
	log *zap.Logger
}

func NewRunner(log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{log: log}
}

// Run builds a fresh world for sc, advances it sc.Ticks times with
// sc.QueriesPerTick timed radius queries per tick, and returns the
// latency summary. Cancellation is honored between ticks.
func (r *Runner) Run(ctx context.Context, sc *scenario.Scenario) (*Summary, error) {
	world, err := sim.NewWorld(sim.Config{
		CellSize:   sc.CellSize,
		Bounds:     sc.Area,
		ViewRadius: sc.Radius,
		Seed:       sc.Seed,
	}, r.log)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
	}
	defer world.Close()

	rng := rand.New(rand.NewSource(sc.Seed))
	if err := r.populate(world, sc, rng); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
	}

	var opts []spatial.QueryOption
	if !sc.Distinct {
		opts = append(opts, spatial.AllowDuplicates())
	}
	if !sc.Exact {
		opts = append(opts, spatial.Approximate())
	}

	samples := make([]float64, 0, sc.Ticks*sc.QueriesPerTick)
	resultTotal := 0
	buf := make([]uint64, 0, 256)
	started := time.Now()

	for tick := 0; tick < sc.Ticks; tick++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		world.Step(tickDT)

		for q := 0; q < sc.QueriesPerTick; q++ {
			center := geom.V(
				sc.Area.Min.X+rng.Float64()*sc.Area.Width(),
				sc.Area.Min.Y+rng.Float64()*sc.Area.Height(),
			)
			t0 := time.Now()
			got, err := world.Grid().Query(center, sc.Radius, &buf, opts...)
			if err != nil {
				return nil, fmt.Errorf("scenario %s: query: %w", sc.Name, err)
			}
			samples = append(samples, float64(time.Since(t0).Nanoseconds())/1e3)
			resultTotal += len(got)
		}
	}

	s := summarize(sc, samples, resultTotal)
	s.EnterEvents = world.EnterEvents()
	s.LeaveEvents = world.LeaveEvents()
	s.Elapsed = time.Since(started)

	r.log.Info("scenario finished",
		zap.String("scenario", sc.Name),
		zap.Int("entities", sc.Entities),
		zap.Int("queries", s.Queries),
		zap.Float64("mean_us", s.MeanMicros),
		zap.Float64("p99_us", s.P99Micros),
		zap.Duration("elapsed", s.Elapsed),
	)
	return s, nil
}

func (r *Runner) populate(world *sim.World, sc *scenario.Scenario, rng *rand.Rand) error {
	if !sc.HasPlacement() {
		world.SpawnRandom(sc.Entities, sc.Speed)
		return nil
	}
	for i := 0; i < sc.Entities; i++ {
		pos, err := sc.Place(i)
		if err != nil {
			return err
		}
		vel := geom.V(
			(rng.Float64()*2-1)*sc.Speed,
			(rng.Float64()*2-1)*sc.Speed,
		)
		world.Spawn(pos, vel)
	}
	return nil
}

func summarize(sc *scenario.Scenario, samples []float64, resultTotal int) *Summary {
	s := &Summary{
		Scenario: sc.Name,
		Entities: sc.Entities,
		Ticks:    sc.Ticks,
		Queries:  len(samples),
	}
	if len(samples) == 0 {
		return s
	}
	sort.Float64s(samples)
	s.MeanMicros = stat.Mean(samples, nil)
	s.P50Micros = stat.Quantile(0.50, stat.Empirical, samples, nil)
	s.P95Micros = stat.Quantile(0.95, stat.Empirical, samples, nil)
	s.P99Micros = stat.Quantile(0.99, stat.Empirical, samples, nil)
	s.MaxMicros = samples[len(samples)-1]
	s.AvgResults = float64(resultTotal) / float64(len(samples))
	return s
}
