package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gautamkshah/wise-academy/internal/common"
	"github.com/gautamkshah/wise-academy/internal/domain/model"
	"github.com/gautamkshah/wise-academy/internal/platform/fetcher"
)

func strPtr(s string) *string { return &s }

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newFakeUserRepo(users ...*model.User) *fakeUserRepo {
	r := &fakeUserRepo{users: map[string]*model.User{}}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) UpsertByEmail(_ context.Context, id model.Identity) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == id.Email {
			u.ExternalSubject = strPtr(id.Subject)
			u.Name = id.Name
			return u, nil
		}
	}
	u := &model.User{ID: "00000000-0000-0000-0000-00000000000" + string(rune('a'+len(r.users))),
		ExternalSubject: strPtr(id.Subject), Email: id.Email, Name: id.Name, Role: model.RoleUser}
	r.users[u.ID] = u
	return u, nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, common.ErrNotFound
}

func (r *fakeUserRepo) FindBySubject(_ context.Context, subject string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ExternalSubject != nil && *u.ExternalSubject == subject {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeUserRepo) ListIDs(context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.users))
	for id := range r.users {
		ids = append(ids, id)
	}
	return ids, nil
}

func (r *fakeUserRepo) UpdateHandles(_ context.Context, userID string, h model.HandleUpdate) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return nil, common.ErrNotFound
	}
	set := func(dst **string, v *string) {
		if v == nil {
			return
		}
		if *v == "" {
			*dst = nil
			return
		}
		*dst = strPtr(*v)
	}
	set(&u.LeetCodeID, h.LeetCodeID)
	set(&u.CodeForcesID, h.CodeForcesID)
	set(&u.CodeChefID, h.CodeChefID)
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) Rankings(_ context.Context, limit int) ([]model.LeaderboardEntry, error) {
	out := []model.LeaderboardEntry{}
	for i := 0; i < limit && i < 3; i++ {
		out = append(out, model.LeaderboardEntry{Rank: i + 1})
	}
	return out, nil
}

type fakeStatsRepo struct {
	mu      sync.Mutex
	rows    map[string]*model.UserStats
	failFor map[string]bool
}

func newFakeStatsRepo() *fakeStatsRepo {
	return &fakeStatsRepo{rows: map[string]*model.UserStats{}, failFor: map[string]bool{}}
}

func (r *fakeStatsRepo) Upsert(_ context.Context, s *model.UserStats) (*model.UserStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failFor[s.UserID] {
		return nil, common.Errorf("user_stats: %w", common.ErrConflict)
	}
	cp := *s
	cp.ID = "stats-" + s.UserID
	cp.UpdatedAt = time.Now()
	r.rows[s.UserID] = &cp
	out := cp
	return &out, nil
}

func (r *fakeStatsRepo) FindByUserID(_ context.Context, userID string) (*model.UserStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.rows[userID]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, common.ErrNotFound
}

type fakeProblemRepo struct {
	problems     []model.Problem
	failPlatform model.Platform
}

func (r *fakeProblemRepo) FindByID(_ context.Context, id string) (*model.Problem, error) {
	for i := range r.problems {
		if r.problems[i].ID == id {
			p := r.problems[i]
			return &p, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeProblemRepo) ListByPlatform(_ context.Context, platform model.Platform) ([]model.Problem, error) {
	if platform == r.failPlatform {
		return nil, errBoom
	}
	var out []model.Problem
	for _, p := range r.problems {
		if p.Platform == platform {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeProblemRepo) ListByChapter(_ context.Context, chapterID string) ([]model.Problem, error) {
	var out []model.Problem
	for _, p := range r.problems {
		if p.ChapterID == chapterID {
			out = append(out, p)
		}
	}
	return out, nil
}

// fakeProgressRepo mirrors the single-statement upsert semantics: one row
// per (user, problem), writes serialized under a mutex.
type fakeProgressRepo struct {
	mu       sync.Mutex
	rows     map[string]*model.UserProblem
	failMark map[string]bool
}

func newFakeProgressRepo() *fakeProgressRepo {
	return &fakeProgressRepo{rows: map[string]*model.UserProblem{}}
}

func progressKey(userID, problemID string) string { return userID + "|" + problemID }

func (r *fakeProgressRepo) UpsertStatus(_ context.Context, userID, problemID string, status model.ProgressStatus, at time.Time) (*model.UserProblem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := progressKey(userID, problemID)
	row, ok := r.rows[k]
	if !ok {
		row = &model.UserProblem{ID: k, UserID: userID, ProblemID: problemID, CreatedAt: at}
		r.rows[k] = row
	}
	row.Status = status
	row.UpdatedAt = at
	if status == model.ProgressSolved {
		t := at
		row.SolvedAt = &t
	} else {
		row.SolvedAt = nil
	}
	cp := *row
	return &cp, nil
}

func (r *fakeProgressRepo) MarkSolvedIfNotSolved(_ context.Context, userID, problemID string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failMark[problemID] {
		return false, errBoom
	}
	k := progressKey(userID, problemID)
	row, ok := r.rows[k]
	if ok && row.Status == model.ProgressSolved {
		return false, nil
	}
	if !ok {
		row = &model.UserProblem{ID: k, UserID: userID, ProblemID: problemID, CreatedAt: at}
		r.rows[k] = row
	}
	t := at
	row.Status, row.SolvedAt, row.UpdatedAt = model.ProgressSolved, &t, at
	return true, nil
}

func (r *fakeProgressRepo) ListByUser(_ context.Context, userID string) ([]model.UserProblem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.UserProblem
	for _, row := range r.rows {
		if row.UserID == userID {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (r *fakeProgressRepo) CountSolved(_ context.Context, userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, row := range r.rows {
		if row.UserID == userID && row.Status == model.ProgressSolved {
			n++
		}
	}
	return n, nil
}

func (r *fakeProgressRepo) get(userID, problemID string) *model.UserProblem {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rows[progressKey(userID, problemID)]
}

type fakeStatsFetcher struct {
	platform model.Platform
	stats    model.PlatformStats
	ok       bool
	delay    time.Duration

	mu      sync.Mutex
	handles []string
}

func (f *fakeStatsFetcher) Platform() model.Platform { return f.platform }

func (f *fakeStatsFetcher) FetchStats(ctx context.Context, handle string) (model.PlatformStats, bool) {
	f.mu.Lock()
	f.handles = append(f.handles, handle)
	f.mu.Unlock()
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return model.PlatformStats{}, false
		}
	}
	return f.stats, f.ok
}

func (f *fakeStatsFetcher) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.handles)
}

type fakeSolvedFetcher struct {
	platform model.Platform
	set      fetcher.SolvedSet
	ok       bool
}

func (f *fakeSolvedFetcher) Platform() model.Platform { return f.platform }

func (f *fakeSolvedFetcher) FetchSolvedProblems(context.Context, string) (fetcher.SolvedSet, bool) {
	return f.set, f.ok
}

type fakeSyncer struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (f *fakeSyncer) SyncUserStats(_ context.Context, userID string) (*model.UserStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, userID)
	if f.err != nil {
		return nil, f.err
	}
	return &model.UserStats{UserID: userID}, nil
}

func (f *fakeSyncer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeVerifier struct {
	identity model.Identity
	err      error
}

func (v *fakeVerifier) Verify(context.Context, string) (model.Identity, error) {
	return v.identity, v.err
}

type fakeQueue struct {
	ids []string
	err error
}

func (q *fakeQueue) Enqueue(_ context.Context, ids ...string) error {
	if q.err != nil {
		return q.err
	}
	q.ids = append(q.ids, ids...)
	return nil
}

var errBoom = errors.New("boom")
