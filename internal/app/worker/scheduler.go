package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/gautamkshah/wise-academy/internal/platform/logger"
	"github.com/gautamkshah/wise-academy/internal/platform/queue"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
)

type Sweeper interface {
	SyncAllUsers(ctx context.Context) (int, error)
}

type UserIDLister interface {
	ListIDs(ctx context.Context) ([]string, error)
}

// Scheduler fires the recurring all-users stats sweep. Every replica runs a
// scheduler; the sweep lock in Redis lets only one of them do the work per tick.
type Scheduler struct {
	cron     *cron.Cron
	schedule string
	rdb      *redis.Client
	lockKey  string
	lockTTL  time.Duration
	sweeper  Sweeper
	users    UserIDLister
	queue    *queue.SyncQueue
	log      *logger.Logger
}

func NewScheduler(schedule string, rdb *redis.Client, lockKey string, lockTTL time.Duration, sweeper Sweeper, users UserIDLister, q *queue.SyncQueue, log *logger.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		schedule: schedule,
		rdb:      rdb,
		lockKey:  lockKey,
		lockTTL:  lockTTL,
		sweeper:  sweeper,
		users:    users,
		queue:    q,
		log:      log.With("component", "scheduler"),
	}
}

// Start registers the sweep and starts the cron loop. The loop stops when ctx is done.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.schedule, func() {
		if _, err := s.Sweep(ctx); err != nil {
			s.log.Error("Scheduled stats sweep failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("Scheduler.Start: invalid schedule %q: %w", s.schedule, err)
	}
	s.cron.Start()
	s.log.Info("Stats sweep scheduled", "schedule", s.schedule)

	go func() {
		<-ctx.Done()
		<-s.cron.Stop().Done()
		s.log.Info("Scheduler stopped")
	}()
	return nil
}

// Sweep runs SyncAllUsers under the sweep lock. It returns 0 without error
// when another replica is already sweeping.
func (s *Scheduler) Sweep(ctx context.Context) (int, error) {
	lock, err := queue.TryLock(ctx, s.rdb, s.lockKey, s.lockTTL)
	if err != nil {
		return 0, err
	}
	if lock == nil {
		s.log.Info("Stats sweep already running elsewhere, skipping tick")
		return 0, nil
	}
	defer func() {
		if _, err := lock.Release(context.WithoutCancel(ctx)); err != nil {
			s.log.Error("Failed to release sweep lock", "error", err)
		}
	}()
	return s.sweeper.SyncAllUsers(ctx)
}

// EnqueueAll queues a sync for every user and returns how many were queued.
func (s *Scheduler) EnqueueAll(ctx context.Context) (int, error) {
	ids, err := s.users.ListIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("Scheduler.EnqueueAll: %w", err)
	}
	if err := s.queue.Enqueue(ctx, ids...); err != nil {
		return 0, err
	}
	s.log.Info("Queued stats sync for all users", "count", len(ids))
	return len(ids), nil
}
