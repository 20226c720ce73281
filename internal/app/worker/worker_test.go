package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/gautamkshah/wise-academy/internal/domain/model"
	"github.com/gautamkshah/wise-academy/internal/platform/logger"
	"github.com/gautamkshah/wise-academy/internal/platform/queue"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSyncer struct {
	mu    sync.Mutex
	users []string
	swept int
}

func (r *recordingSyncer) SyncUserStats(_ context.Context, userID string) (*model.UserStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = append(r.users, userID)
	return &model.UserStats{UserID: userID}, nil
}

func (r *recordingSyncer) SyncAllUsers(context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.swept++
	return 3, nil
}

func (r *recordingSyncer) synced() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.users...)
}

type staticIDs []string

func (s staticIDs) ListIDs(context.Context) ([]string, error) { return s, nil }

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestSyncWorker_ProcessesQueue(t *testing.T) {
	mr, rdb := setupRedis(t)
	q := queue.NewSyncQueue(rdb, "sync")
	syncer := &recordingSyncer{}
	w := NewSyncWorker(rdb, q, syncer, "lock:", time.Minute, logger.NewNop())
	w.pollWait = 100 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	require.NoError(t, q.Enqueue(ctx, "u1", "u2"))
	require.Eventually(t, func() bool { return len(syncer.synced()) == 2 }, 3*time.Second, 20*time.Millisecond)
	assert.Equal(t, []string{"u1", "u2"}, syncer.synced())
	assert.False(t, mr.Exists("lock:u1"), "lock released after sync")

	cancel()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestSyncWorker_SkipsWhenLocked(t *testing.T) {
	mr, rdb := setupRedis(t)
	syncer := &recordingSyncer{}
	w := NewSyncWorker(rdb, queue.NewSyncQueue(rdb, "sync"), syncer, "lock:", time.Minute, logger.NewNop())

	require.NoError(t, mr.Set("lock:u1", "someone-else"))
	w.process(context.Background(), "u1")
	assert.Empty(t, syncer.synced())

	got, err := mr.Get("lock:u1")
	require.NoError(t, err)
	assert.Equal(t, "someone-else", got, "foreign lock untouched")
}

func TestScheduler_Sweep(t *testing.T) {
	mr, rdb := setupRedis(t)
	syncer := &recordingSyncer{}
	s := NewScheduler("@hourly", rdb, "sweep", time.Hour, syncer, staticIDs{}, queue.NewSyncQueue(rdb, "sync"), logger.NewNop())
	ctx := context.Background()

	n, err := s.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.False(t, mr.Exists("sweep"))

	require.NoError(t, mr.Set("sweep", "other-replica"))
	n, err = s.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, 1, syncer.swept)
}

func TestScheduler_EnqueueAll(t *testing.T) {
	_, rdb := setupRedis(t)
	q := queue.NewSyncQueue(rdb, "sync")
	s := NewScheduler("@hourly", rdb, "sweep", time.Hour, &recordingSyncer{}, staticIDs{"a", "b", "c"}, q, logger.NewNop())

	n, err := s.EnqueueAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	length, err := q.Len(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), length)
}

func TestScheduler_Start(t *testing.T) {
	_, rdb := setupRedis(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bad := NewScheduler("not a schedule", rdb, "sweep", time.Hour, &recordingSyncer{}, staticIDs{}, nil, logger.NewNop())
	assert.Error(t, bad.Start(ctx))

	good := NewScheduler("@every 1h", rdb, "sweep", time.Hour, &recordingSyncer{}, staticIDs{}, nil, logger.NewNop())
	assert.NoError(t, good.Start(ctx))
}
