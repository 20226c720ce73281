package handler

import (
	"net/http"

	"github.com/gautamkshah/wise-academy/internal/common"

	"github.com/go-chi/chi/v5"
)

type ContestHandler struct {
	contests ContestLister
}

func NewContestHandler(c ContestLister) *ContestHandler {
	return &ContestHandler{contests: c}
}

func (h *ContestHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.list)
}

func (h *ContestHandler) list(w http.ResponseWriter, r *http.Request) {
	common.RespondWithJSON(w, http.StatusOK, h.contests.ListUpcoming(r.Context()))
}
