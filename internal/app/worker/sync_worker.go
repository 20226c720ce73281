package worker

import (
	"context"
	"errors"
	"time"

	"github.com/gautamkshah/wise-academy/internal/app/service"
	"github.com/gautamkshah/wise-academy/internal/platform/logger"
	"github.com/gautamkshah/wise-academy/internal/platform/queue"

	"github.com/redis/go-redis/v9"
)

// SyncWorker drains the stats sync queue one user at a time.
type SyncWorker struct {
	rdb        *redis.Client
	queue      *queue.SyncQueue
	stats      service.StatsSyncer
	lockPrefix string
	lockTTL    time.Duration
	pollWait   time.Duration
	retryDelay time.Duration
	log        *logger.Logger
}

func NewSyncWorker(rdb *redis.Client, q *queue.SyncQueue, stats service.StatsSyncer, lockPrefix string, lockTTL time.Duration, log *logger.Logger) *SyncWorker {
	return &SyncWorker{
		rdb:        rdb,
		queue:      q,
		stats:      stats,
		lockPrefix: lockPrefix,
		lockTTL:    lockTTL,
		pollWait:   5 * time.Second,
		retryDelay: 5 * time.Second,
		log:        log.With("component", "sync_worker"),
	}
}

// Start blocks until ctx is cancelled.
func (w *SyncWorker) Start(ctx context.Context) {
	w.log.Info("Sync worker started")
	for {
		select {
		case <-ctx.Done():
			w.log.Info("Sync worker stopping")
			return
		default:
		}

		userID, err := w.queue.Dequeue(ctx, w.pollWait)
		if err != nil {
			if errors.Is(err, queue.ErrEmpty) {
				continue
			}
			if ctx.Err() != nil {
				continue
			}
			w.log.Error("Failed to pop from sync queue", "error", err)
			select {
			case <-time.After(w.retryDelay):
			case <-ctx.Done():
			}
			continue
		}
		w.process(ctx, userID)
	}
}

// process holds a per-user lock for the duration of the sync. If another
// worker already holds it the job is dropped: that sync recomputes the same row.
func (w *SyncWorker) process(ctx context.Context, userID string) {
	lock, err := queue.TryLock(ctx, w.rdb, w.lockPrefix+userID, w.lockTTL)
	if err != nil {
		w.log.Error("Failed to acquire sync lock", "user_id", userID, "error", err)
		return
	}
	if lock == nil {
		w.log.Debug("Sync already in progress, skipping", "user_id", userID)
		return
	}
	defer func() {
		released, err := lock.Release(context.WithoutCancel(ctx))
		if err != nil {
			w.log.Error("Failed to release sync lock", "user_id", userID, "error", err)
		} else if !released {
			w.log.Warn("Sync lock expired before release", "user_id", userID)
		}
	}()

	if _, err := w.stats.SyncUserStats(ctx, userID); err != nil {
		w.log.Error("Queued stats sync failed", "user_id", userID, "error", err)
	}
}
