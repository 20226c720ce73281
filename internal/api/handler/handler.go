package handler

import (
	"context"
	"net/http"

	"github.com/gautamkshah/wise-academy/internal/app/service"
	"github.com/gautamkshah/wise-academy/internal/common"
	"github.com/gautamkshah/wise-academy/internal/common/security"
	"github.com/gautamkshah/wise-academy/internal/domain/model"
)

// The interfaces below are satisfied by the services in internal/app/service.

type Authenticator interface {
	Login(ctx context.Context, req service.LoginRequest) (*service.AuthResponse, error)
}

type UserUseCases interface {
	Resolve(ctx context.Context, ref string) (*model.User, error)
	UpdateHandles(ctx context.Context, ref string, h model.HandleUpdate) (*model.User, error)
	GetProfile(ctx context.Context, ref string) (*model.User, error)
	Rankings(ctx context.Context, limit int) ([]model.LeaderboardEntry, error)
}

type ProgressUseCases interface {
	SyncWithExternalPlatforms(ctx context.Context, ref string) (model.SyncResult, error)
	UpdateProblemStatus(ctx context.Context, ref, problemID string, status model.ProgressStatus) (*model.UserProblem, error)
	GetUserProgress(ctx context.Context, ref string) ([]model.UserProblem, error)
}

type ProblemCatalog interface {
	ListProblems(ctx context.Context, f service.ProblemFilter) ([]model.Problem, error)
	GetProblem(ctx context.Context, id string) (*model.Problem, error)
}

type SweepTrigger interface {
	EnqueueAll(ctx context.Context) (int, error)
}

type ContestLister interface {
	ListUpcoming(ctx context.Context) []model.Contest
}

func callerIdentity(w http.ResponseWriter, r *http.Request) (model.Identity, bool) {
	id, err := security.IdentityFromContext(r.Context())
	if err != nil {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return model.Identity{}, false
	}
	return id, true
}
