package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridworks/broadphase/internal/geom"
)

func testConfig() Config {
	return Config{
		CellSize:   10,
		Bounds:     geom.NewRect(geom.V(0, 0), geom.V(100, 100)),
		ViewRadius: 20,
		Seed:       1,
	}
}

func TestNewWorld_Validation(t *testing.T) {
	t.Parallel()

	_, err := NewWorld(Config{CellSize: 0, ViewRadius: 10}, nil)
	assert.Error(t, err)

	_, err = NewWorld(Config{CellSize: 10, ViewRadius: 0}, nil)
	assert.Error(t, err)
}

func TestSpawnDespawn(t *testing.T) {
	t.Parallel()
	w, err := NewWorld(testConfig(), nil)
	require.NoError(t, err)
	defer w.Close()

	id := w.Spawn(geom.V(5, 5), geom.V(0, 0))
	assert.Equal(t, 1, w.EntityCount())
	assert.Equal(t, 1, w.Grid().Len())

	assert.True(t, w.Despawn(id))
	assert.False(t, w.Despawn(id))
	assert.Equal(t, 0, w.EntityCount())
	assert.Equal(t, 0, w.Grid().Len())
}

func TestStep_KeepsGridInSync(t *testing.T) {
	t.Parallel()
	w, err := NewWorld(testConfig(), nil)
	require.NoError(t, err)
	defer w.Close()

	w.SpawnRandom(50, 5)
	for i := 0; i < 100; i++ {
		w.Step(1.0)
	}

	// Every entity still has exactly one grid entry, and no entity
	// escaped the bounds.
	assert.Equal(t, 50, w.Grid().Len())
	buf := []uint64{}
	got, err := w.Grid().QueryRect(w.bounds, &buf)
	require.NoError(t, err)
	assert.Len(t, got, 50)
}

func TestVisibility_EnterAndLeave(t *testing.T) {
	t.Parallel()
	w, err := NewWorld(testConfig(), nil)
	require.NoError(t, err)
	defer w.Close()

	// a sits still; b walks through a's view and out the other side.
	w.Spawn(geom.V(50, 50), geom.V(0, 0))
	w.Spawn(geom.V(10, 50), geom.V(10, 0))

	for i := 0; i < 8; i++ {
		w.Step(1.0)
	}

	// Both sides saw an enter and a leave.
	assert.Equal(t, uint64(2), w.EnterEvents())
	assert.Equal(t, uint64(2), w.LeaveEvents())
}

func TestVisibility_StationaryPairStaysKnown(t *testing.T) {
	t.Parallel()
	w, err := NewWorld(testConfig(), nil)
	require.NoError(t, err)
	defer w.Close()

	w.Spawn(geom.V(50, 50), geom.V(0, 0))
	w.Spawn(geom.V(55, 50), geom.V(0, 0))

	for i := 0; i < 10; i++ {
		w.Step(1.0)
	}

	assert.Equal(t, uint64(2), w.EnterEvents(), "one enter per side, never re-fired")
	assert.Equal(t, uint64(0), w.LeaveEvents())
}
