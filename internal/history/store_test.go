package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/scriptvars/internal/snapshot"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	clock := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return s
}

func doc(container string, score string) snapshot.Document {
	d := snapshot.New(container, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	d.Variables = []snapshot.Record{{Name: "Score", Type: "IntVariable", Value: score}}
	return d
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open("  ")
	require.Error(t, err)
}

func TestRecordAndLatest(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	_, err := s.Latest(ctx, "player")
	require.ErrorIs(t, err, ErrNotFound)

	first, err := s.Record(ctx, doc("player", "1"))
	require.NoError(t, err)
	second, err := s.Record(ctx, doc("player", "2"))
	require.NoError(t, err)
	_, err = s.Record(ctx, doc("enemy", "9"))
	require.NoError(t, err)
	assert.Greater(t, second, first)

	latest, err := s.Latest(ctx, "player")
	require.NoError(t, err)
	if diff := cmp.Diff(doc("player", "2"), latest); diff != "" {
		t.Errorf("latest mismatch (-want +got):\n%s", diff)
	}

	got, err := s.Get(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, "1", got.Variables[0].Value)

	_, err = s.Get(ctx, 999)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestList(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	for _, score := range []string{"1", "2", "3"} {
		_, err := s.Record(ctx, doc("player", score))
		require.NoError(t, err)
	}

	metas, err := s.List(ctx, "player", 2)
	require.NoError(t, err)
	require.Len(t, metas, 2)
	assert.Equal(t, int64(3), metas[0].ID, "newest first")
	assert.Equal(t, "player", metas[0].Container)
	assert.Equal(t, 1, metas[0].Variables)
	assert.True(t, metas[0].RecordedAt.After(metas[1].RecordedAt))

	all, err := s.List(ctx, "player", 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	none, err := s.List(ctx, "enemy", 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRecord_CancelledContext(t *testing.T) {
	s := openTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Record(ctx, doc("player", "1"))
	require.ErrorIs(t, err, context.Canceled)
}
