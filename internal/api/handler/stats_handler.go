package handler

import (
	"net/http"

	"github.com/gautamkshah/wise-academy/internal/api/middleware"
	"github.com/gautamkshah/wise-academy/internal/common"

	"github.com/go-chi/chi/v5"
)

type StatsHandler struct {
	sweeps SweepTrigger
	users  middleware.UserResolver
}

func NewStatsHandler(sweeps SweepTrigger, users middleware.UserResolver) *StatsHandler {
	return &StatsHandler{sweeps: sweeps, users: users}
}

type SyncAllResponse struct {
	Message string `json:"message"`
	Queued  int    `json:"queued"`
}

func (h *StatsHandler) RegisterRoutes(r chi.Router) {
	r.Group(func(adminRouter chi.Router) {
		adminRouter.Use(middleware.Authenticator)
		adminRouter.Use(middleware.AdminOnly(h.users))
		adminRouter.Post("/sync-all", h.syncAll)
	})
}

// syncAll queues every user for the sync worker and returns right away.
func (h *StatsHandler) syncAll(w http.ResponseWriter, r *http.Request) {
	n, err := h.sweeps.EnqueueAll(r.Context())
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusAccepted, SyncAllResponse{Message: "Sync started", Queued: n})
}
