package service

import (
	"context"
	"testing"
	"time"

	"github.com/gautamkshah/wise-academy/internal/domain/model"
	"github.com/gautamkshah/wise-academy/internal/platform/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	aliceID = "11111111-1111-1111-1111-111111111111"
	bobID   = "22222222-2222-2222-2222-222222222222"
)

type statsFixture struct {
	users    *fakeUserRepo
	stats    *fakeStatsRepo
	progress *fakeProgressRepo
	lc       *fakeStatsFetcher
	cf       *fakeStatsFetcher
	cc       *fakeStatsFetcher
	svc      *StatsService
}

func newStatsFixture(users ...*model.User) *statsFixture {
	f := &statsFixture{
		users:    newFakeUserRepo(users...),
		stats:    newFakeStatsRepo(),
		progress: newFakeProgressRepo(),
		lc:       &fakeStatsFetcher{platform: model.PlatformLeetCode},
		cf:       &fakeStatsFetcher{platform: model.PlatformCodeForces},
		cc:       &fakeStatsFetcher{platform: model.PlatformCodeChef},
	}
	f.svc = NewStatsService(f.users, f.stats, f.progress, time.Second, 2, logger.NewNop(), f.lc, f.cf, f.cc)
	return f
}

func TestStatsService_SyncUserStats(t *testing.T) {
	ctx := context.Background()

	t.Run("NoHandlesYieldsZeros", func(t *testing.T) {
		f := newStatsFixture(&model.User{ID: aliceID})
		f.lc.stats, f.lc.ok = model.PlatformStats{Solved: 99, Rating: 99}, true

		stats, err := f.svc.SyncUserStats(ctx, aliceID)
		require.NoError(t, err)
		require.NotNil(t, stats)
		assert.Equal(t, 0, stats.TotalSolved)
		assert.Equal(t, 0, stats.LeetCodeSolved)
		assert.Equal(t, 0, stats.CFRating)
		assert.Equal(t, 0, stats.CCSolved)
		assert.Zero(t, f.lc.calls(), "no fetch without a handle")
	})

	t.Run("LeetCodeOnly", func(t *testing.T) {
		f := newStatsFixture(&model.User{ID: aliceID, LeetCodeID: strPtr("alice")})
		f.lc.stats, f.lc.ok = model.PlatformStats{Solved: 120, Rating: 1550}, true

		_, err := f.svc.SyncUserStats(ctx, aliceID)
		require.NoError(t, err)

		row, err := f.stats.FindByUserID(ctx, aliceID)
		require.NoError(t, err)
		assert.Equal(t, model.UserStats{
			ID: row.ID, UserID: aliceID, UpdatedAt: row.UpdatedAt,
			TotalSolved: 120, LeetCodeSolved: 120, LeetCodeRating: 1550,
		}, *row)
	})

	t.Run("AcademyProgressReportedNotSummed", func(t *testing.T) {
		f := newStatsFixture(&model.User{ID: aliceID, LeetCodeID: strPtr("alice")})
		f.lc.stats, f.lc.ok = model.PlatformStats{Solved: 40, Rating: 1500}, true
		_, _ = f.progress.UpsertStatus(ctx, aliceID, "p1", model.ProgressSolved, time.Now())
		_, _ = f.progress.UpsertStatus(ctx, aliceID, "p2", model.ProgressSolved, time.Now())
		_, _ = f.progress.UpsertStatus(ctx, aliceID, "p3", model.ProgressPending, time.Now())

		stats, err := f.svc.SyncUserStats(ctx, aliceID)
		require.NoError(t, err)
		assert.Equal(t, 2, stats.AcademySolved)
		assert.Equal(t, 40, stats.TotalSolved)

		row, err := f.stats.FindByUserID(ctx, aliceID)
		require.NoError(t, err)
		assert.Equal(t, 40, row.TotalSolved)
	})

	t.Run("UnavailablePlatformContributesZero", func(t *testing.T) {
		f := newStatsFixture(&model.User{ID: aliceID,
			LeetCodeID: strPtr("alice"), CodeForcesID: strPtr("alice_cf"), CodeChefID: strPtr("alice_cc")})
		f.lc.stats, f.lc.ok = model.PlatformStats{Solved: 10, Rating: 1400}, true
		f.cf.ok = false
		f.cc.stats, f.cc.ok = model.PlatformStats{Solved: 5, Rating: 1700}, true

		stats, err := f.svc.SyncUserStats(ctx, aliceID)
		require.NoError(t, err)
		assert.Equal(t, 15, stats.TotalSolved)
		assert.Equal(t, 0, stats.CFSolved)
		assert.Equal(t, 1700, stats.CCRating)
	})

	t.Run("AcademyProgressExcludedFromTotal", func(t *testing.T) {
		f := newStatsFixture(&model.User{ID: aliceID, LeetCodeID: strPtr("alice")})
		f.lc.stats, f.lc.ok = model.PlatformStats{Solved: 3}, true
		_, _ = f.progress.UpsertStatus(ctx, aliceID, "p1", model.ProgressSolved, time.Now())

		stats, err := f.svc.SyncUserStats(ctx, aliceID)
		require.NoError(t, err)
		assert.Equal(t, 3, stats.TotalSolved)
	})

	t.Run("FetchesRunInParallel", func(t *testing.T) {
		f := newStatsFixture(&model.User{ID: aliceID,
			LeetCodeID: strPtr("a"), CodeForcesID: strPtr("b"), CodeChefID: strPtr("c")})
		for _, fe := range []*fakeStatsFetcher{f.lc, f.cf, f.cc} {
			fe.ok, fe.delay = true, 150*time.Millisecond
		}

		start := time.Now()
		_, err := f.svc.SyncUserStats(ctx, aliceID)
		require.NoError(t, err)
		assert.Less(t, time.Since(start), 400*time.Millisecond)
	})

	t.Run("SlowPlatformIsCutOff", func(t *testing.T) {
		f := newStatsFixture(&model.User{ID: aliceID, LeetCodeID: strPtr("a"), CodeForcesID: strPtr("b")})
		f.svc.fetchTimeout = 50 * time.Millisecond
		f.lc.stats, f.lc.ok = model.PlatformStats{Solved: 7}, true
		f.cf.stats, f.cf.ok, f.cf.delay = model.PlatformStats{Solved: 100}, true, time.Second

		stats, err := f.svc.SyncUserStats(ctx, aliceID)
		require.NoError(t, err)
		assert.Equal(t, 7, stats.TotalSolved)
	})

	t.Run("UnknownUserIsNoop", func(t *testing.T) {
		f := newStatsFixture()
		stats, err := f.svc.SyncUserStats(ctx, "ghost")
		assert.NoError(t, err)
		assert.Nil(t, stats)
	})

	t.Run("UpsertFailureSwallowed", func(t *testing.T) {
		f := newStatsFixture(&model.User{ID: aliceID})
		f.stats.failFor[aliceID] = true

		stats, err := f.svc.SyncUserStats(ctx, aliceID)
		assert.NoError(t, err)
		assert.Nil(t, stats)
	})
}

func TestStatsService_SyncAllUsers(t *testing.T) {
	ctx := context.Background()
	f := newStatsFixture(
		&model.User{ID: aliceID, LeetCodeID: strPtr("alice")},
		&model.User{ID: bobID, LeetCodeID: strPtr("bob")},
	)
	f.lc.stats, f.lc.ok = model.PlatformStats{Solved: 4}, true
	f.stats.failFor[aliceID] = true

	n, err := f.svc.SyncAllUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, f.lc.calls())

	_, err = f.stats.FindByUserID(ctx, aliceID)
	assert.Error(t, err, "failed upsert leaves no row")
	bob, err := f.stats.FindByUserID(ctx, bobID)
	require.NoError(t, err)
	assert.Equal(t, 4, bob.TotalSolved)
}
