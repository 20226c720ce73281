package service

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/gautamkshah/wise-academy/internal/domain/model"
	"github.com/gautamkshah/wise-academy/internal/platform/fetcher"
	"github.com/gautamkshah/wise-academy/internal/platform/logger"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

type ContestService struct {
	listers      []fetcher.ContestLister
	rdb          *redis.Client
	cacheKey     string
	cacheTTL     time.Duration
	fetchTimeout time.Duration
	log          *logger.Logger
}

// NewContestService caches the merged list in rdb when it is non-nil.
func NewContestService(rdb *redis.Client, cacheKey string, cacheTTL, fetchTimeout time.Duration, log *logger.Logger, listers ...fetcher.ContestLister) *ContestService {
	return &ContestService{
		listers:      listers,
		rdb:          rdb,
		cacheKey:     cacheKey,
		cacheTTL:     cacheTTL,
		fetchTimeout: fetchTimeout,
		log:          log.With("service", "contest"),
	}
}

// ListUpcoming merges upcoming contests from every platform, sorted by start
// time. A platform that fails contributes nothing.
func (s *ContestService) ListUpcoming(ctx context.Context) []model.Contest {
	if cached, ok := s.fromCache(ctx); ok {
		return cached
	}

	lists := make([][]model.Contest, len(s.listers))
	var g errgroup.Group
	for i, l := range s.listers {
		g.Go(func() error {
			lctx, cancel := context.WithTimeout(ctx, s.timeout())
			defer cancel()
			lists[i] = l.UpcomingContests(lctx)
			return nil
		})
	}
	_ = g.Wait()

	merged := make([]model.Contest, 0)
	for _, l := range lists {
		merged = append(merged, l...)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].StartTime.Before(merged[j].StartTime)
	})

	s.toCache(ctx, merged)
	return merged
}

func (s *ContestService) timeout() time.Duration {
	if s.fetchTimeout <= 0 {
		return 15 * time.Second
	}
	return s.fetchTimeout
}

func (s *ContestService) fromCache(ctx context.Context) ([]model.Contest, bool) {
	if s.rdb == nil {
		return nil, false
	}
	raw, err := s.rdb.Get(ctx, s.cacheKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Warn("Contest cache read failed", "error", err)
		}
		return nil, false
	}
	var contests []model.Contest
	if err := json.Unmarshal(raw, &contests); err != nil {
		s.log.Warn("Discarding corrupt contest cache entry", "error", err)
		return nil, false
	}
	return contests, true
}

// toCache skips empty lists so a total outage is retried on the next request.
func (s *ContestService) toCache(ctx context.Context, contests []model.Contest) {
	if s.rdb == nil || len(contests) == 0 {
		return
	}
	raw, err := json.Marshal(contests)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, s.cacheKey, raw, s.cacheTTL).Err(); err != nil {
		s.log.Warn("Contest cache write failed", "error", err)
	}
}
