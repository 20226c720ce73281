package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gautamkshah/wise-academy/internal/common"
	"github.com/gautamkshah/wise-academy/internal/domain/model"
	"github.com/gautamkshah/wise-academy/internal/domain/repository"
	"github.com/gautamkshah/wise-academy/internal/platform/fetcher"
	"github.com/gautamkshah/wise-academy/internal/platform/logger"
	"github.com/gautamkshah/wise-academy/internal/platform/metrics"

	"golang.org/x/sync/errgroup"
)

// StatsSyncer recomputes a user's aggregate stats.
type StatsSyncer interface {
	SyncUserStats(ctx context.Context, userID string) (*model.UserStats, error)
}

type StatsService struct {
	userRepo     repository.UserRepository
	statsRepo    repository.StatsRepository
	progressRepo repository.ProgressRepository
	fetchers     map[model.Platform]fetcher.StatsFetcher
	fetchTimeout time.Duration
	concurrency  int
	log          *logger.Logger
}

func NewStatsService(
	userRepo repository.UserRepository,
	statsRepo repository.StatsRepository,
	progressRepo repository.ProgressRepository,
	fetchTimeout time.Duration,
	concurrency int,
	log *logger.Logger,
	fetchers ...fetcher.StatsFetcher,
) *StatsService {
	byPlatform := make(map[model.Platform]fetcher.StatsFetcher, len(fetchers))
	for _, f := range fetchers {
		byPlatform[f.Platform()] = f
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &StatsService{
		userRepo:     userRepo,
		statsRepo:    statsRepo,
		progressRepo: progressRepo,
		fetchers:     byPlatform,
		fetchTimeout: fetchTimeout,
		concurrency:  concurrency,
		log:          log.With("service", "stats"),
	}
}

// SyncUserStats rebuilds the UserStats row for userID from the external
// platforms. An unknown user is a no-op. A platform that is unavailable
// contributes zero. A failed upsert is logged and yields nil, nil so a sweep
// can carry on with the next user.
func (s *StatsService) SyncUserStats(ctx context.Context, userID string) (*model.UserStats, error) {
	start := time.Now()
	defer func() { metrics.SyncDuration.Observe(time.Since(start).Seconds()) }()

	user, err := s.userRepo.FindByID(ctx, userID)
	if errors.Is(err, common.ErrNotFound) {
		s.log.Debug("Skipping stats sync for unknown user", "user_id", userID)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("StatsService.SyncUserStats: %w", err)
	}

	results := s.fetchAll(ctx, user)
	lc := results[model.PlatformLeetCode]
	cf := results[model.PlatformCodeForces]
	cc := results[model.PlatformCodeChef]

	stats := &model.UserStats{
		UserID:         user.ID,
		TotalSolved:    lc.Solved + cf.Solved + cc.Solved,
		LeetCodeSolved: lc.Solved,
		LeetCodeRating: lc.Rating,
		CFSolved:       cf.Solved,
		CFRating:       cf.Rating,
		CCSolved:       cc.Solved,
		CCRating:       cc.Rating,
	}

	saved, err := s.statsRepo.Upsert(ctx, stats)
	if err != nil {
		metrics.StatsUpserts.WithLabelValues("error").Inc()
		s.log.Error("Failed to upsert user stats", "user_id", user.ID, "error", err)
		return nil, nil
	}
	metrics.StatsUpserts.WithLabelValues("ok").Inc()

	out := *saved
	if s.progressRepo != nil {
		academy, err := s.progressRepo.CountSolved(ctx, user.ID)
		if err != nil {
			s.log.Warn("Failed to count academy progress", "user_id", user.ID, "error", err)
		}
		out.AcademySolved = academy
	}
	s.log.Info("Synced user stats", "user_id", user.ID, "total_solved", out.TotalSolved, "academy_solved", out.AcademySolved)
	return &out, nil
}

// fetchAll queries every platform the user has a handle on in parallel, each
// bounded by fetchTimeout. Missing entries mean zero.
func (s *StatsService) fetchAll(ctx context.Context, user *model.User) map[model.Platform]model.PlatformStats {
	type result struct {
		platform model.Platform
		stats    model.PlatformStats
	}
	out := make(chan result, len(model.Platforms))

	var g errgroup.Group
	for _, p := range model.Platforms {
		handle := user.Handle(p)
		f, ok := s.fetchers[p]
		if handle == "" || !ok {
			continue
		}
		g.Go(func() error {
			fctx, cancel := s.withFetchTimeout(ctx)
			defer cancel()
			if stats, ok := f.FetchStats(fctx, handle); ok {
				out <- result{platform: p, stats: stats}
			}
			return nil
		})
	}
	_ = g.Wait()
	close(out)

	results := make(map[model.Platform]model.PlatformStats, len(model.Platforms))
	for r := range out {
		results[r.platform] = r.stats
	}
	return results
}

func (s *StatsService) withFetchTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.fetchTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.fetchTimeout)
}

// SyncAllUsers runs SyncUserStats for every known user with at most
// concurrency syncs in flight. Per-user failures are logged. It returns the
// number of users attempted.
func (s *StatsService) SyncAllUsers(ctx context.Context) (int, error) {
	ids, err := s.userRepo.ListIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("StatsService.SyncAllUsers: %w", err)
	}
	s.log.Info("Starting stats sweep", "users", len(ids))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	attempted := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		attempted++
		g.Go(func() error {
			if _, err := s.SyncUserStats(ctx, id); err != nil {
				s.log.Error("Stats sync failed", "user_id", id, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()

	s.log.Info("Stats sweep finished", "attempted", attempted)
	return attempted, ctx.Err()
}
