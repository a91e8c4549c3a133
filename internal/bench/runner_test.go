package bench

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridworks/broadphase/internal/scenario"
)

func loadScenario(t *testing.T, src string) *scenario.Scenario {
	t.Helper()
	e := scenario.NewEngine(nil)
	t.Cleanup(e.Close)
	sc, err := e.LoadString(src)
	require.NoError(t, err)
	return sc
}

const smallScenario = `
scenario = {
    name = "test-small",
    cell_size = 8,
    area = { w = 128, h = 128 },
    entities = 50,
    ticks = 5,
    queries_per_tick = 8,
    radius = 16,
    speed = 4,
    seed = 3,
}
`

func TestRun_ProducesSummary(t *testing.T) {
	t.Parallel()
	sc := loadScenario(t, smallScenario)

	s, err := NewRunner(nil).Run(context.Background(), sc)
	require.NoError(t, err)

	assert.Equal(t, "test-small", s.Scenario)
	assert.Equal(t, 50, s.Entities)
	assert.Equal(t, 40, s.Queries)
	assert.Greater(t, s.MeanMicros, 0.0)
	assert.GreaterOrEqual(t, s.P99Micros, s.P50Micros)
	assert.GreaterOrEqual(t, s.MaxMicros, s.P99Micros)
	assert.Greater(t, s.Elapsed.Nanoseconds(), int64(0))
}

func TestRun_PlacedScenario(t *testing.T) {
	t.Parallel()
	sc := loadScenario(t, smallScenario+`
function place(i)
    return 64, 64
end
`)

	// Every entity starts at the center, so a center query sees all of
	// them and AvgResults reflects the cluster.
	s, err := NewRunner(nil).Run(context.Background(), sc)
	require.NoError(t, err)
	assert.Greater(t, s.AvgResults, 0.0)
}

func TestRun_Cancellation(t *testing.T) {
	t.Parallel()
	sc := loadScenario(t, smallScenario)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewRunner(nil).Run(ctx, sc)
	assert.ErrorIs(t, err, context.Canceled)
}
