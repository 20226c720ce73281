package handler

import (
	"net/http"
	"strconv"

	"github.com/gautamkshah/wise-academy/internal/api/middleware"
	"github.com/gautamkshah/wise-academy/internal/common"
	"github.com/gautamkshah/wise-academy/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

type UserHandler struct {
	userService UserUseCases
}

func NewUserHandler(us UserUseCases) *UserHandler {
	return &UserHandler{userService: us}
}

func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Get("/rankings", h.rankings) // GET /api/v1/users/rankings?limit=10
	r.Get("/{id}", h.getUser)      // GET /api/v1/users/{id}, internal id or provider subject

	r.Group(func(authRouter chi.Router) {
		authRouter.Use(middleware.Authenticator)
		authRouter.Post("/handles", h.updateHandles)
	})
}

func (h *UserHandler) rankings(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			common.RespondWithError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}
	entries, err := h.userService.Rankings(r.Context(), limit)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, entries)
}

func (h *UserHandler) getUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.GetProfile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, user)
}

func (h *UserHandler) updateHandles(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerIdentity(w, r)
	if !ok {
		return
	}
	var req model.HandleUpdate
	if err := common.DecodeJSON(r, &req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	user, err := h.userService.UpdateHandles(r.Context(), caller.Subject, req)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, user)
}
