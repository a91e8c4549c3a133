package scenario

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validScript = `
scenario = {
    name = "uniform-small",
    cell_size = 8,
    area = { w = 256, h = 256 },
    entities = 100,
    ticks = 10,
    queries_per_tick = 4,
    radius = 24,
    seed = 7,
}
`

func TestLoadString_Defaults(t *testing.T) {
	t.Parallel()
	e := NewEngine(nil)
	defer e.Close()

	sc, err := e.LoadString(validScript)
	require.NoError(t, err)

	assert.Equal(t, "uniform-small", sc.Name)
	assert.Equal(t, 8.0, sc.CellSize)
	assert.Equal(t, 100, sc.Entities)
	assert.Equal(t, 256.0, sc.Area.Width())
	assert.True(t, sc.Distinct, "distinct defaults on")
	assert.True(t, sc.Exact, "exact defaults on")
	assert.Equal(t, 10.0, sc.Speed, "speed default")
	assert.False(t, sc.HasPlacement())
}

func TestLoadString_Validation(t *testing.T) {
	t.Parallel()
	e := NewEngine(nil)
	defer e.Close()

	cases := map[string]string{
		"no table":     `x = 1`,
		"bad cellsize": `scenario = { cell_size = 0, area = {w=10,h=10}, entities = 1, radius = 1 }`,
		"no entities":  `scenario = { cell_size = 1, area = {w=10,h=10}, radius = 1 }`,
		"no area":      `scenario = { cell_size = 1, entities = 1, radius = 1 }`,
		"bad radius":   `scenario = { cell_size = 1, area = {w=10,h=10}, entities = 1, radius = -1 }`,
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := e.LoadString(src)
			assert.Error(t, err)
		})
	}
}

func TestPlaceFunction(t *testing.T) {
	t.Parallel()
	e := NewEngine(nil)
	defer e.Close()

	sc, err := e.LoadString(validScript + `
function place(i)
    return i * 2, i * 3
end
`)
	require.NoError(t, err)
	require.True(t, sc.HasPlacement())

	p, err := sc.Place(5)
	require.NoError(t, err)
	assert.Equal(t, 10.0, p.X)
	assert.Equal(t, 15.0, p.Y)
}

func TestPlace_DoesNotLeakAcrossScripts(t *testing.T) {
	t.Parallel()
	e := NewEngine(nil)
	defer e.Close()

	_, err := e.LoadString(validScript + `
function place(i) return 0, 0 end
`)
	require.NoError(t, err)

	sc, err := e.LoadString(validScript)
	require.NoError(t, err)
	assert.False(t, sc.HasPlacement(), "second script defined no place function")
}

func TestLoadDir(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.lua"), []byte(validScript), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.lua"), []byte(`
scenario = {
    name = "clustered",
    cell_size = 4,
    area = { w = 64, h = 64 },
    entities = 10,
    radius = 8,
}
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	e := NewEngine(nil)
	defer e.Close()

	scs, err := e.LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, scs, 2)
	assert.Equal(t, "clustered", scs[0].Name)
	assert.Equal(t, "uniform-small", scs[1].Name)
}

func TestLoadDir_Missing(t *testing.T) {
	t.Parallel()
	e := NewEngine(nil)
	defer e.Close()

	scs, err := e.LoadDir(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, scs)
}
