package registry

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/scriptvars/internal/variable"
)

func newTestRegistry(t *testing.T) (*Registry, *bytes.Buffer) {
	t.Helper()
	logs := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return New("player", WithLogger(logger)), logs
}

func TestAdd(t *testing.T) {
	t.Run("rejects duplicates", func(t *testing.T) {
		r, _ := newTestRegistry(t)
		require.NoError(t, r.Add(variable.NewInt("Score", 0)))

		err := r.Add(variable.NewFloat("Score", 0))
		require.ErrorIs(t, err, ErrDuplicateName)

		e, ok := r.GetByName("Score")
		require.True(t, ok)
		assert.Equal(t, "IntVariable", e.Kind(), "first registration wins")
	})

	t.Run("rejects empty and nil", func(t *testing.T) {
		r, _ := newTestRegistry(t)
		require.ErrorIs(t, r.Add(nil), ErrNilEntry)
		require.ErrorIs(t, r.Add(variable.NewInt("", 0)), ErrEmptyName)
		require.ErrorIs(t, r.AddEvent(nil), ErrNilEntry)
		require.ErrorIs(t, r.AddEvent(variable.NewEvent("")), ErrEmptyName)
	})

	t.Run("events have their own namespace", func(t *testing.T) {
		r, _ := newTestRegistry(t)
		require.NoError(t, r.Add(variable.NewBool("Dead", false)))
		require.NoError(t, r.AddEvent(variable.NewEvent("Dead")))
		require.ErrorIs(t, r.AddEvent(variable.NewEvent("Dead")), ErrDuplicateName)
	})
}

func TestLookup(t *testing.T) {
	r, _ := newTestRegistry(t)
	require.NoError(t, r.Add(variable.NewInt("Score", 4)))

	score, ok := Lookup[*variable.Int](r, "Score")
	require.True(t, ok)
	assert.Equal(t, 4, score.Get())

	_, ok = Lookup[*variable.Float](r, "Score")
	assert.False(t, ok, "wrong type is reported as not found")

	_, ok = Lookup[*variable.Int](r, "Missing")
	assert.False(t, ok)

	_, ok = r.GetByName("Missing")
	assert.False(t, ok)
}

func TestEntries_InsertionOrder(t *testing.T) {
	r, _ := newTestRegistry(t)
	for _, name := range []string{"c", "a", "b"} {
		require.NoError(t, r.Add(variable.NewInt(name, 0)))
	}
	require.True(t, r.Remove("a"))
	require.False(t, r.Remove("a"))
	require.NoError(t, r.Add(variable.NewInt("a", 0)))

	var names []string
	for _, e := range r.Entries() {
		names = append(names, e.Name())
	}
	assert.Equal(t, []string{"c", "b", "a"}, names)
	assert.Equal(t, 3, r.Len())
}

func TestResetAll(t *testing.T) {
	r, _ := newTestRegistry(t)
	hp := variable.NewInt("HP", 100)
	name := variable.NewString("Name", "hero", variable.WithoutReset())
	require.NoError(t, r.Add(hp))
	require.NoError(t, r.Add(name))
	hp.Set(10)
	name.Set("villain")

	r.ResetAll()

	assert.Equal(t, 100, hp.Get())
	assert.Equal(t, "villain", name.Get(), "entries without reset are skipped")
}

func TestRaiseAll(t *testing.T) {
	r, _ := newTestRegistry(t)
	var order []string
	for _, n := range []string{"first", "second"} {
		v := variable.NewInt(n, 0)
		v.Subscribe(func() { order = append(order, v.Name()) })
		require.NoError(t, r.Add(v))
	}
	for _, n := range []string{"evA", "evB"} {
		ev := variable.NewEvent(n)
		ev.Subscribe(func() { order = append(order, ev.Name()) })
		require.NoError(t, r.AddEvent(ev))
	}

	r.RaiseAll()
	r.RaiseAllEvents()

	assert.Equal(t, []string{"first", "second", "evA", "evB"}, order)
}

func TestRaiseAll_CallbackMayMutateRegistry(t *testing.T) {
	r, _ := newTestRegistry(t)
	a := variable.NewInt("a", 0)
	a.Subscribe(func() { r.Remove("b") })
	require.NoError(t, r.Add(a))
	require.NoError(t, r.Add(variable.NewInt("b", 0)))

	require.NotPanics(t, r.RaiseAll)
	assert.Equal(t, 1, r.Len())
}

func TestRemove(t *testing.T) {
	r, _ := newTestRegistry(t)
	for _, name := range []string{"A", "B", "C"} {
		require.NoError(t, r.Add(variable.NewInt(name, 0)))
	}
	require.NoError(t, r.AddEvent(variable.NewEvent("B")))

	require.True(t, r.Remove("B"))
	require.False(t, r.Remove("B"))

	_, ok := r.GetByName("B")
	assert.False(t, ok)
	var names []string
	for _, e := range r.Entries() {
		names = append(names, e.Name())
	}
	assert.Equal(t, []string{"A", "C"}, names)
	_, ok = r.EventByName("B")
	assert.True(t, ok, "events live in their own namespace")

	require.NoError(t, r.Add(variable.NewInt("B", 1)), "a removed name can be reused")
}

func TestRemoveEvent(t *testing.T) {
	r, _ := newTestRegistry(t)
	require.NoError(t, r.AddEvent(variable.NewEvent("Boom")))
	require.True(t, r.RemoveEvent("Boom"))
	require.False(t, r.RemoveEvent("Boom"))
	_, ok := r.EventByName("Boom")
	assert.False(t, ok)

	r.Clear()
	assert.Zero(t, r.Len())
	assert.Empty(t, r.Events())
}
