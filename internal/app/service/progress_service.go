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
)

type ProgressService struct {
	users        *UserService
	problemRepo  repository.ProblemRepository
	progressRepo repository.ProgressRepository
	stats        StatsSyncer
	solvers      map[model.Platform]fetcher.SolvedSetFetcher
	fetchTimeout time.Duration
	log          *logger.Logger
	now          func() time.Time
}

func NewProgressService(
	users *UserService,
	problemRepo repository.ProblemRepository,
	progressRepo repository.ProgressRepository,
	stats StatsSyncer,
	fetchTimeout time.Duration,
	log *logger.Logger,
	solvers ...fetcher.SolvedSetFetcher,
) *ProgressService {
	byPlatform := make(map[model.Platform]fetcher.SolvedSetFetcher, len(solvers))
	for _, f := range solvers {
		byPlatform[f.Platform()] = f
	}
	return &ProgressService{
		users:        users,
		problemRepo:  problemRepo,
		progressRepo: progressRepo,
		stats:        stats,
		solvers:      byPlatform,
		fetchTimeout: fetchTimeout,
		log:          log.With("service", "progress"),
		now:          time.Now,
	}
}

// identifiers maps a catalog problem to the id its platform's solved set uses.
var identifiers = map[model.Platform]func(p *model.Problem) (string, bool){
	model.PlatformLeetCode: func(p *model.Problem) (string, bool) {
		return fetcher.LeetCodeSlug(p), true
	},
	model.PlatformCodeForces: func(p *model.Problem) (string, bool) {
		return fetcher.CodeForcesID(p.Link())
	},
}

// SyncWithExternalPlatforms marks catalog problems SOLVED when the user's
// external accounts show an accepted verdict for them. It only ever upgrades:
// a SOLVED row is never touched. Stats are refreshed when anything changed.
func (s *ProgressService) SyncWithExternalPlatforms(ctx context.Context, ref string) (model.SyncResult, error) {
	var result model.SyncResult

	user, err := s.users.Resolve(ctx, ref)
	if errors.Is(err, common.ErrNotFound) {
		s.log.Debug("Skipping reconciliation for unknown user", "ref", ref)
		return result, nil
	}
	if err != nil {
		return result, err
	}

	// Platforms fail independently; rows already marked on one stay counted
	// when another errors.
	for _, p := range []model.Platform{model.PlatformLeetCode, model.PlatformCodeForces} {
		n, err := s.reconcile(ctx, user, p)
		if err != nil {
			s.log.Error("Reconciliation failed for platform", "user_id", user.ID, "platform", p, "marked", n, "error", err)
		}
		switch p {
		case model.PlatformLeetCode:
			result.LeetCode = n
		case model.PlatformCodeForces:
			result.CodeForces = n
		}
	}
	result.Total = result.LeetCode + result.CodeForces + result.CodeChef

	if result.Total > 0 {
		if _, err := s.stats.SyncUserStats(ctx, user.ID); err != nil {
			s.log.Error("Stats refresh after reconciliation failed", "user_id", user.ID, "error", err)
		}
	}
	s.log.Info("Reconciled external progress", "user_id", user.ID, "total", result.Total)
	return result, nil
}

func (s *ProgressService) reconcile(ctx context.Context, user *model.User, p model.Platform) (int, error) {
	handle := user.Handle(p)
	solver, ok := s.solvers[p]
	identify := identifiers[p]
	if handle == "" || !ok || identify == nil {
		return 0, nil
	}

	fctx, cancel := context.WithTimeout(ctx, s.timeout())
	solved, ok := solver.FetchSolvedProblems(fctx, handle)
	cancel()
	if !ok || solved.Len() == 0 {
		return 0, nil
	}

	problems, err := s.problemRepo.ListByPlatform(ctx, p)
	if err != nil {
		return 0, fmt.Errorf("ProgressService.reconcile %s: %w", p, err)
	}

	count := 0
	for i := range problems {
		id, ok := identify(&problems[i])
		if !ok || !solved.Has(id) {
			continue
		}
		changed, err := s.progressRepo.MarkSolvedIfNotSolved(ctx, user.ID, problems[i].ID, s.now())
		if err != nil {
			metrics.ReconciledProblems.WithLabelValues(string(p)).Add(float64(count))
			return count, fmt.Errorf("ProgressService.reconcile %s: %w", p, err)
		}
		if changed {
			count++
		}
	}
	metrics.ReconciledProblems.WithLabelValues(string(p)).Add(float64(count))
	return count, nil
}

func (s *ProgressService) timeout() time.Duration {
	if s.fetchTimeout <= 0 {
		return 15 * time.Second
	}
	return s.fetchTimeout
}

// UpdateProblemStatus is the user-initiated toggle. It writes the requested
// status and always refreshes the user's stats.
func (s *ProgressService) UpdateProblemStatus(ctx context.Context, ref, problemID string, status model.ProgressStatus) (*model.UserProblem, error) {
	if !status.Valid() {
		return nil, common.Errorf("status must be PENDING or SOLVED: %w", common.ErrValidation)
	}
	if problemID == "" {
		return nil, common.Errorf("problemId is required: %w", common.ErrBadRequest)
	}

	user, err := s.users.Resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	if _, err := s.problemRepo.FindByID(ctx, problemID); err != nil {
		return nil, fmt.Errorf("ProgressService.UpdateProblemStatus: %w", err)
	}

	up, err := s.progressRepo.UpsertStatus(ctx, user.ID, problemID, status, s.now())
	if err != nil {
		return nil, fmt.Errorf("ProgressService.UpdateProblemStatus: %w", err)
	}

	if _, err := s.stats.SyncUserStats(ctx, user.ID); err != nil {
		s.log.Error("Stats refresh after status update failed", "user_id", user.ID, "error", err)
	}
	return up, nil
}

// GetUserProgress lists the user's progress rows. Unknown users have none.
func (s *ProgressService) GetUserProgress(ctx context.Context, ref string) ([]model.UserProblem, error) {
	user, err := s.users.Resolve(ctx, ref)
	if errors.Is(err, common.ErrNotFound) {
		return []model.UserProblem{}, nil
	}
	if err != nil {
		return nil, err
	}
	list, err := s.progressRepo.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("ProgressService.GetUserProgress: %w", err)
	}
	if list == nil {
		list = []model.UserProblem{}
	}
	return list, nil
}
