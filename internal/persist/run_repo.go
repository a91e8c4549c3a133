package persist

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/gridworks/broadphase/internal/bench"
)

// RunRepo records bench run summaries.
type RunRepo struct {
	db *DB
}

func NewRunRepo(db *DB) *RunRepo {
	return &RunRepo{db: db}
}

// InsertRun stores one summary and returns its generated run ID.
func (r *RunRepo) InsertRun(ctx context.Context, s *bench.Summary) (uuid.UUID, error) {
	id := uuid.New()
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO bench_runs (
			id, scenario, entities, ticks, queries,
			mean_us, p50_us, p95_us, p99_us, max_us,
			avg_results, enter_events, leave_events, elapsed_ms
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		id, s.Scenario, s.Entities, s.Ticks, s.Queries,
		s.MeanMicros, s.P50Micros, s.P95Micros, s.P99Micros, s.MaxMicros,
		s.AvgResults, int64(s.EnterEvents), int64(s.LeaveEvents),
		s.Elapsed.Milliseconds(),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert bench run: %w", err)
	}
	return id, nil
}
