package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/gautamkshah/wise-academy/internal/common"
	"github.com/gautamkshah/wise-academy/internal/domain/model"
	"github.com/gautamkshah/wise-academy/internal/domain/repository"
	"github.com/gautamkshah/wise-academy/internal/platform/logger"
)

// TokenVerifier decodes an identity-provider bearer token into verified claims.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (model.Identity, error)
}

// SyncEnqueuer schedules background stats syncs.
type SyncEnqueuer interface {
	Enqueue(ctx context.Context, userIDs ...string) error
}

type AuthService struct {
	userRepo repository.UserRepository
	verifier TokenVerifier
	queue    SyncEnqueuer
	log      *logger.Logger
}

func NewAuthService(userRepo repository.UserRepository, verifier TokenVerifier, queue SyncEnqueuer, log *logger.Logger) *AuthService {
	return &AuthService{userRepo: userRepo, verifier: verifier, queue: queue, log: log.With("service", "auth")}
}

type LoginRequest struct {
	Token string `json:"token"`
}

type AuthResponse struct {
	User *model.User `json:"user"`
}

// Login verifies the provider token, creates or refreshes the user keyed by
// email, and queues a stats sync so a new user sees data without waiting for
// the hourly sweep.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	token := strings.TrimSpace(req.Token)
	if token == "" {
		return nil, common.Errorf("missing token: %w", common.ErrBadRequest)
	}

	identity, err := s.verifier.Verify(ctx, token)
	if err != nil {
		return nil, err
	}
	if identity.Subject == "" || identity.Email == "" {
		return nil, common.Errorf("token lacks subject or email: %w", common.ErrUnauthorized)
	}
	if identity.Name == "" {
		identity.Name = strings.SplitN(identity.Email, "@", 2)[0]
	}

	user, err := s.userRepo.UpsertByEmail(ctx, identity)
	if err != nil {
		return nil, fmt.Errorf("AuthService.Login: %w", err)
	}

	if s.queue != nil {
		if err := s.queue.Enqueue(ctx, user.ID); err != nil {
			s.log.Warn("Failed to queue stats sync after login", "user_id", user.ID, "error", err)
		}
	}
	s.log.Info("User logged in", "user_id", user.ID)
	return &AuthResponse{User: user}, nil
}
