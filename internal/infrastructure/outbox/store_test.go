package outbox

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "outbox.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_EnqueueOrdersByPriorityThenTime(t *testing.T) {
	store := openTestStore(t)
	base := time.Now()

	low, err := NewJob(KindEmail, map[string]string{"to": "a"})
	require.NoError(t, err)
	low.Priority = 5
	low.Timestamp = base

	first, err := NewJob(KindActivityLog, map[string]string{"n": "1"})
	require.NoError(t, err)
	first.Priority = 1
	first.Timestamp = base.Add(time.Millisecond)

	second, err := NewJob(KindActivityLog, map[string]string{"n": "2"})
	require.NoError(t, err)
	second.Priority = 1
	second.Timestamp = base.Add(2 * time.Millisecond)

	require.NoError(t, store.Enqueue(low))
	require.NoError(t, store.Enqueue(second))
	require.NoError(t, store.Enqueue(first))

	jobs, err := store.GetBatch(10)
	require.NoError(t, err)
	require.Len(t, jobs, 3)
	assert.Equal(t, KindActivityLog, jobs[0].Kind)

	var payload map[string]string
	require.NoError(t, jobs[0].Decode(&payload))
	assert.Equal(t, "1", payload["n"])
	assert.Equal(t, KindEmail, jobs[2].Kind)
}

func TestStore_RemoveAndRequeue(t *testing.T) {
	store := openTestStore(t)

	job, err := NewJob(KindTelegramMessage, map[string]string{"text": "hi"})
	require.NoError(t, err)
	require.NoError(t, store.Enqueue(job))

	jobs, err := store.GetBatch(1)
	require.NoError(t, err)
	require.Len(t, jobs, 1)

	require.NoError(t, store.Requeue(jobs[0]))
	size, err := store.Size()
	require.NoError(t, err)
	assert.Equal(t, 1, size)

	jobs, err = store.GetBatch(1)
	require.NoError(t, err)
	assert.Equal(t, 1, jobs[0].Attempts)

	require.NoError(t, store.Remove(jobs[0]))
	size, err = store.Size()
	require.NoError(t, err)
	assert.Zero(t, size)
}

func TestStore_ClaimIsExclusiveUntilExpiry(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	ok, err := store.Claim(ctx, "dispatch:telegram:report:2025-01-01", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Claim(ctx, "dispatch:telegram:report:2025-01-01", time.Hour)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = store.Claim(ctx, "dispatch:email:digest:2025-01-01", -time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Claim(ctx, "dispatch:email:digest:2025-01-01", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok, "expired claim can be taken again")
}

func TestStore_CleanupDropsStaleJobs(t *testing.T) {
	store := openTestStore(t)

	old, err := NewJob(KindEmail, nil)
	require.NoError(t, err)
	old.Timestamp = time.Now().Add(-48 * time.Hour)
	require.NoError(t, store.Enqueue(old))

	fresh, err := NewJob(KindEmail, nil)
	require.NoError(t, err)
	require.NoError(t, store.Enqueue(fresh))

	require.NoError(t, store.Cleanup(time.Now().Add(-24*time.Hour)))

	size, err := store.Size()
	require.NoError(t, err)
	assert.Equal(t, 1, size)
}

func TestStore_TakeHandsOutEachJobOnce(t *testing.T) {
	store := openTestStore(t)
	for i := 0; i < 3; i++ {
		job, err := NewJob(KindTelegramMessage, TelegramPayload{Text: "report"})
		require.NoError(t, err)
		require.NoError(t, store.Enqueue(job))
	}

	first, err := store.Take(2)
	require.NoError(t, err)
	assert.Len(t, first, 2)

	size, err := store.Size()
	require.NoError(t, err)
	assert.Equal(t, 1, size)

	second, err := store.Take(10)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.NotEqual(t, first[0].ID, second[0].ID)
	assert.NotEqual(t, first[1].ID, second[0].ID)

	rest, err := store.Take(10)
	require.NoError(t, err)
	assert.Empty(t, rest)

	// a taken job can still be requeued for another attempt
	require.NoError(t, store.Requeue(second[0]))
	again, err := store.Take(10)
	require.NoError(t, err)
	require.Len(t, again, 1)
	assert.Equal(t, 1, again[0].Attempts)
}
