package handler

import (
	"net/http"

	"github.com/gautamkshah/wise-academy/internal/api/middleware"
	"github.com/gautamkshah/wise-academy/internal/common"
	"github.com/gautamkshah/wise-academy/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

type ProgressHandler struct {
	progressService ProgressUseCases
	userService     UserUseCases
}

func NewProgressHandler(ps ProgressUseCases, us UserUseCases) *ProgressHandler {
	return &ProgressHandler{progressService: ps, userService: us}
}

type UpdateStatusRequest struct {
	UserID    string               `json:"userId"`
	ProblemID string               `json:"problemId"`
	Status    model.ProgressStatus `json:"status"`
}

type SyncRequest struct {
	UserID string `json:"userId"`
}

func (h *ProgressHandler) RegisterRoutes(r chi.Router) {
	r.Get("/{userId}", h.getUserProgress)

	r.Group(func(authRouter chi.Router) {
		authRouter.Use(middleware.Authenticator)
		authRouter.Post("/solve", h.updateStatus)
		authRouter.Post("/sync", h.syncExternal)
	})
}

// target returns the user reference a write applies to. Callers may name
// themselves by subject or internal id; acting for someone else needs ADMIN.
func (h *ProgressHandler) target(w http.ResponseWriter, r *http.Request, requested string) (string, bool) {
	caller, ok := callerIdentity(w, r)
	if !ok {
		return "", false
	}
	if requested == "" || requested == caller.Subject {
		return caller.Subject, true
	}

	self, err := h.userService.Resolve(r.Context(), caller.Subject)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return "", false
	}
	if self.ID == requested || self.Role == model.RoleAdmin {
		return requested, true
	}
	common.RespondWithError(w, http.StatusForbidden, "Cannot modify another user's progress")
	return "", false
}

func (h *ProgressHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	ref, ok := h.target(w, r, req.UserID)
	if !ok {
		return
	}
	up, err := h.progressService.UpdateProblemStatus(r.Context(), ref, req.ProblemID, req.Status)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, up)
}

func (h *ProgressHandler) syncExternal(w http.ResponseWriter, r *http.Request) {
	var req SyncRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	ref, ok := h.target(w, r, req.UserID)
	if !ok {
		return
	}
	result, err := h.progressService.SyncWithExternalPlatforms(r.Context(), ref)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, result)
}

func (h *ProgressHandler) getUserProgress(w http.ResponseWriter, r *http.Request) {
	list, err := h.progressService.GetUserProgress(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, list)
}
