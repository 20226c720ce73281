package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/gautamkshah/wise-academy/internal/common"
	"github.com/gautamkshah/wise-academy/internal/domain/model"
	"github.com/gautamkshah/wise-academy/internal/domain/repository"
	"github.com/gautamkshah/wise-academy/internal/platform/logger"

	"github.com/google/uuid"
)

const (
	DefaultRankingLimit = 10
	MaxRankingLimit     = 100
)

var handlePattern = regexp.MustCompile(`^[A-Za-z0-9_.\-]{1,64}$`)

type UserService struct {
	userRepo  repository.UserRepository
	statsRepo repository.StatsRepository
	stats     StatsSyncer
	log       *logger.Logger
}

func NewUserService(userRepo repository.UserRepository, statsRepo repository.StatsRepository, stats StatsSyncer, log *logger.Logger) *UserService {
	return &UserService{
		userRepo:  userRepo,
		statsRepo: statsRepo,
		stats:     stats,
		log:       log.With("service", "user"),
	}
}

// Resolve looks ref up as an identity-provider subject first and as an
// internal id second. The id lookup only runs when ref is a UUID.
func (s *UserService) Resolve(ctx context.Context, ref string) (*model.User, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, common.Errorf("empty user reference: %w", common.ErrNotFound)
	}

	user, err := s.userRepo.FindBySubject(ctx, ref)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("UserService.Resolve: %w", err)
	}

	if _, perr := uuid.Parse(ref); perr != nil {
		return nil, common.Errorf("user %s: %w", ref, common.ErrNotFound)
	}
	user, err = s.userRepo.FindByID(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("UserService.Resolve: %w", err)
	}
	return user, nil
}

// UpdateHandles applies the provided handle changes for the user identified
// by ref and immediately recomputes their stats.
func (s *UserService) UpdateHandles(ctx context.Context, ref string, h model.HandleUpdate) (*model.User, error) {
	for _, v := range []*string{h.LeetCodeID, h.CodeForcesID, h.CodeChefID} {
		if v == nil {
			continue
		}
		if t := strings.TrimSpace(*v); t != "" && !handlePattern.MatchString(t) {
			return nil, common.Errorf("invalid handle %q: %w", t, common.ErrValidation)
		}
	}

	current, err := s.Resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.UpdateHandles(ctx, current.ID, h)
	if err != nil {
		return nil, fmt.Errorf("UserService.UpdateHandles: %w", err)
	}

	stats, err := s.stats.SyncUserStats(ctx, user.ID)
	if err != nil {
		s.log.Error("Stats sync after handle update failed", "user_id", user.ID, "error", err)
	}
	user.Stats = stats
	return user, nil
}

// GetProfile returns the user with their latest stats attached, if any.
func (s *UserService) GetProfile(ctx context.Context, ref string) (*model.User, error) {
	user, err := s.Resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	stats, err := s.statsRepo.FindByUserID(ctx, user.ID)
	switch {
	case err == nil:
		user.Stats = stats
	case errors.Is(err, common.ErrNotFound):
	default:
		return nil, fmt.Errorf("UserService.GetProfile: %w", err)
	}
	return user, nil
}

func (s *UserService) Rankings(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = DefaultRankingLimit
	}
	if limit > MaxRankingLimit {
		limit = MaxRankingLimit
	}
	entries, err := s.userRepo.Rankings(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("UserService.Rankings: %w", err)
	}
	return entries, nil
}
