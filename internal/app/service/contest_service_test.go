package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gautamkshah/wise-academy/internal/domain/model"
	"github.com/gautamkshah/wise-academy/internal/platform/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLister struct {
	platform model.Platform
	contests []model.Contest
	calls    atomic.Int32
}

func (f *fakeLister) Platform() model.Platform { return f.platform }

func (f *fakeLister) UpcomingContests(context.Context) []model.Contest {
	f.calls.Add(1)
	return f.contests
}

func TestContestService_ListUpcoming(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 11, 1, 14, 0, 0, 0, time.UTC)

	cf := &fakeLister{platform: model.PlatformCodeForces, contests: []model.Contest{
		{Name: "CF Round", Platform: model.PlatformCodeForces, StartTime: base.Add(48 * time.Hour)},
	}}
	lc := &fakeLister{platform: model.PlatformLeetCode, contests: []model.Contest{
		{Name: "Weekly", Platform: model.PlatformLeetCode, StartTime: base},
	}}
	cc := &fakeLister{platform: model.PlatformCodeChef, contests: []model.Contest{}}

	t.Run("MergedAndSorted", func(t *testing.T) {
		svc := NewContestService(nil, "", 0, time.Second, logger.NewNop(), cf, lc, cc)
		contests := svc.ListUpcoming(ctx)
		require.Len(t, contests, 2)
		assert.Equal(t, "Weekly", contests[0].Name)
		assert.Equal(t, "CF Round", contests[1].Name)
	})

	t.Run("CachedInRedis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		defer rdb.Close()

		lister := &fakeLister{platform: model.PlatformLeetCode, contests: lc.contests}
		svc := NewContestService(rdb, "contests:upcoming", 10*time.Minute, time.Second, logger.NewNop(), lister)

		first := svc.ListUpcoming(ctx)
		second := svc.ListUpcoming(ctx)
		assert.Equal(t, int32(1), lister.calls.Load())
		require.Len(t, second, 1)
		assert.True(t, first[0].StartTime.Equal(second[0].StartTime))
		assert.True(t, mr.Exists("contests:upcoming"))

		mr.FastForward(11 * time.Minute)
		svc.ListUpcoming(ctx)
		assert.Equal(t, int32(2), lister.calls.Load())
	})

	t.Run("EmptyListNotCached", func(t *testing.T) {
		mr := miniredis.RunT(t)
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		defer rdb.Close()

		svc := NewContestService(rdb, "contests:upcoming", time.Minute, time.Second, logger.NewNop(), cc)
		contests := svc.ListUpcoming(ctx)
		assert.NotNil(t, contests)
		assert.Empty(t, contests)
		assert.False(t, mr.Exists("contests:upcoming"))
	})
}
