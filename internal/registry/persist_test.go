package registry

import (
	"bytes"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/scriptvars/internal/geom"
	"github.com/vk/scriptvars/internal/snapshot"
	"github.com/vk/scriptvars/internal/variable"
)

// populate adds one variable of every supported kind.
func populate(t *testing.T, r *Registry, v3 geom.Vector3, f float64) {
	t.Helper()
	entries := []variable.Entry{
		variable.NewInt("Score", 0),
		variable.NewFloat("Speed", f),
		variable.NewBool("Alive", false),
		variable.NewString("Name", ""),
		variable.NewVector2("Aim", geom.Vector2{}),
		variable.NewVector3("Spawn", v3),
		variable.NewQuaternion("Facing", geom.IdentityQuaternion),
		variable.NewColor("Tint", geom.White),
		variable.NewStringList("Tags", nil),
	}
	for _, e := range entries {
		require.NoError(t, r.Add(e))
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saves", "player.json")

	src, _ := newTestRegistry(t)
	populate(t, src, geom.Vector3{}, 0)
	mustLookup[*variable.Int](t, src, "Score").Set(-17)
	mustLookup[*variable.Float](t, src, "Speed").Set(3.14159)
	mustLookup[*variable.Bool](t, src, "Alive").Set(true)
	mustLookup[*variable.String](t, src, "Name").Set(`Zoë "the" hero`)
	mustLookup[*variable.Vector2](t, src, "Aim").Set(geom.Vector2{X: 0.5, Y: -1})
	mustLookup[*variable.Vector3](t, src, "Spawn").Set(geom.Vector3{X: 1.25, Y: 2, Z: -3.5})
	mustLookup[*variable.Quaternion](t, src, "Facing").Set(geom.Quaternion{X: 0, Y: 0.7071, Z: 0, W: 0.7071})
	mustLookup[*variable.Color](t, src, "Tint").Set(geom.Color{R: 0.2, G: 0.4, B: 0.6, A: 0.8})
	mustLookup[*variable.StringList](t, src, "Tags").Set([]string{"a", "b c"})

	require.True(t, src.SaveToPath(path))

	dst, _ := newTestRegistry(t)
	populate(t, dst, geom.Vector3{X: 9}, 99)
	require.True(t, dst.LoadFromPath(path))

	assert.Equal(t, -17, mustLookup[*variable.Int](t, dst, "Score").Get())
	assert.InDelta(t, 3.14159, mustLookup[*variable.Float](t, dst, "Speed").Get(), 1e-12)
	assert.True(t, mustLookup[*variable.Bool](t, dst, "Alive").Get())
	assert.Equal(t, `Zoë "the" hero`, mustLookup[*variable.String](t, dst, "Name").Get())
	assert.Equal(t, geom.Vector2{X: 0.5, Y: -1}, mustLookup[*variable.Vector2](t, dst, "Aim").Get())
	assert.Equal(t, geom.Vector3{X: 1.25, Y: 2, Z: -3.5}, mustLookup[*variable.Vector3](t, dst, "Spawn").Get())
	assert.Equal(t, geom.Quaternion{X: 0, Y: 0.7071, Z: 0, W: 0.7071}, mustLookup[*variable.Quaternion](t, dst, "Facing").Get())
	assert.Equal(t, geom.Color{R: 0.2, G: 0.4, B: 0.6, A: 0.8}, mustLookup[*variable.Color](t, dst, "Tint").Get())
	assert.Equal(t, []string{"a", "b c"}, mustLookup[*variable.StringList](t, dst, "Tags").Get())
}

func TestSaveToPath_Document(t *testing.T) {
	path := filepath.Join(t.TempDir(), "player.json")
	at := time.Date(2025, 6, 1, 12, 30, 45, 0, time.Local)
	r, _ := newTestRegistry(t)
	r.now = func() time.Time { return at }
	require.NoError(t, r.Add(variable.NewInt("Score", 3)))
	require.NoError(t, r.Add(variable.NewVector3("Spawn", geom.Vector3{Y: 1})))

	require.True(t, r.SaveToPath(path))

	doc, err := snapshot.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "player", doc.ContainerName)
	assert.Equal(t, "2025-06-01 12:30:45", doc.SaveTime)
	assert.Equal(t, []snapshot.Record{
		{Name: "Score", Type: "IntVariable", Value: "3"},
		{Name: "Spawn", Type: "Vector3Variable", Value: `{"x":0,"y":1,"z":0}`},
	}, doc.Variables)
}

func TestSaveLoad_NonFiniteComponents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "player.json")
	src, _ := newTestRegistry(t)
	spawn := variable.NewVector3("Spawn", geom.Vector3{})
	aim := variable.NewVector2("Aim", geom.Vector2{})
	require.NoError(t, src.Add(spawn))
	require.NoError(t, src.Add(aim))
	spawn.Set(geom.Vector3{X: math.NaN(), Y: 1})
	aim.Set(geom.Vector2{X: math.Inf(1), Y: math.Inf(-1)})

	var saved bool
	require.NotPanics(t, func() { saved = src.SaveToPath(path) })
	require.True(t, saved)

	dst, _ := newTestRegistry(t)
	populate(t, dst, geom.Vector3{X: 7}, 0)
	require.True(t, dst.LoadFromPath(path))

	gotSpawn := mustLookup[*variable.Vector3](t, dst, "Spawn").Get()
	assert.True(t, math.IsNaN(gotSpawn.X))
	assert.Equal(t, 1.0, gotSpawn.Y)
	assert.Equal(t, geom.Vector2{X: math.Inf(1), Y: math.Inf(-1)}, mustLookup[*variable.Vector2](t, dst, "Aim").Get())
}

func TestSaveToPath_EmptyContainerName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "anon.json")
	logs := &bytes.Buffer{}
	r := New("", WithLogger(slog.New(slog.NewTextHandler(logs, nil))))
	require.NoError(t, r.Add(variable.NewInt("Score", 4)))

	assert.False(t, r.SaveToPath(path), "a file without a container name could not be loaded back")
	assert.Contains(t, logs.String(), "Failed to save registry.")
	_, err := os.Stat(path)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSaveToPath_Unwritable(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))
	r, logs := newTestRegistry(t)
	require.NoError(t, r.Add(variable.NewInt("Score", 3)))

	assert.False(t, r.SaveToPath(filepath.Join(blocker, "state.json")))
	assert.Contains(t, logs.String(), "Failed to save registry.")
}

func TestLoadFromPath_Missing(t *testing.T) {
	r, logs := newTestRegistry(t)
	score := variable.NewInt("Score", 5)
	require.NoError(t, r.Add(score))
	calls := 0
	score.Subscribe(func() { calls++ })

	assert.False(t, r.LoadFromPath(filepath.Join(t.TempDir(), "missing.json")))
	assert.Equal(t, 5, score.Get())
	assert.Zero(t, calls)
	assert.Contains(t, logs.String(), "No saved state found.")
}

func TestLoadFromPath_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{ not json"), 0o644))
	r, _ := newTestRegistry(t)
	require.NoError(t, r.Add(variable.NewInt("Score", 5)))

	assert.False(t, r.LoadFromPath(path))
}

func TestLoadFromPath_PartialDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"containerName": "player",
		"saveTime": "2025-01-01 00:00:00",
		"variables": [
			{"name": "Ghost", "type": "IntVariable", "value": "1"},
			{"name": "Score", "type": "IntVariable", "value": "not a number"},
			{"name": "Speed", "type": "FloatVariable", "value": "2.5"}
		]
	}`), 0o644))

	r, logs := newTestRegistry(t)
	score := variable.NewInt("Score", 5)
	speed := variable.NewFloat("Speed", 1)
	name := variable.NewString("Name", "kept")
	for _, e := range []variable.Entry{score, speed, name} {
		require.NoError(t, r.Add(e))
	}
	name.Set("changed")

	require.True(t, r.LoadFromPath(path), "per-entry failures do not fail the load")

	assert.Equal(t, 5, score.Get(), "bad value leaves the variable untouched")
	assert.Equal(t, 2.5, speed.Get())
	assert.Equal(t, "changed", name.Get(), "variables absent from the file are not reset")
	_, ok := r.GetByName("Ghost")
	assert.False(t, ok, "unknown names are not added")
	assert.Contains(t, logs.String(), "variable=Ghost")
}

func TestApply_Report(t *testing.T) {
	r, logs := newTestRegistry(t)
	require.NoError(t, r.Add(variable.NewInt("Score", 0)))
	require.NoError(t, r.Add(variable.NewFloat("Speed", 0)))

	report := r.Apply(snapshot.Document{
		ContainerName: "enemy",
		Variables: []snapshot.Record{
			{Name: "Score", Type: "FloatVariable", Value: "7"},
			{Name: "Speed", Type: "FloatVariable", Value: "fast"},
			{Name: "Ghost", Type: "IntVariable", Value: "1"},
		},
	})

	assert.Equal(t, []string{"Score"}, report.Applied)
	assert.Equal(t, []string{"Ghost"}, report.Unknown)
	require.Contains(t, report.Failed, "Speed")
	assert.Contains(t, logs.String(), "another container")
	assert.Contains(t, logs.String(), "saved_type=FloatVariable")
}

func mustLookup[T variable.Entry](t *testing.T, r *Registry, name string) T {
	t.Helper()
	v, ok := Lookup[T](r, name)
	require.True(t, ok, "variable %q", name)
	return v
}
