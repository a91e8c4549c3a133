package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridworks/broadphase/internal/scenario"
)

func TestRun_EmitsLoadableLua(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "workloads.yaml")
	out := filepath.Join(dir, "scenarios")

	require.NoError(t, os.WriteFile(in, []byte(`
scenarios:
  - name: dense
    cell_size: 8
    area_w: 512
    area_h: 512
    entities: 2000
    ticks: 50
    queries_per_tick: 16
    radius: 32
    speed: 12
    distinct: false
    seed: 9
`), 0o644))

	require.NoError(t, run(in, out))

	eng := scenario.NewEngine(nil)
	defer eng.Close()

	scs, err := eng.LoadDir(out)
	require.NoError(t, err)
	require.Len(t, scs, 1)

	sc := scs[0]
	assert.Equal(t, "dense", sc.Name)
	assert.Equal(t, 8.0, sc.CellSize)
	assert.Equal(t, 512.0, sc.Area.Width())
	assert.Equal(t, 2000, sc.Entities)
	assert.Equal(t, 50, sc.Ticks)
	assert.False(t, sc.Distinct)
	assert.True(t, sc.Exact, "unset exact keeps its default")
	assert.Equal(t, int64(9), sc.Seed)
}

func TestRun_RejectsEmptyInput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(in, []byte("scenarios: []\n"), 0o644))

	assert.Error(t, run(in, filepath.Join(dir, "out")))
}
