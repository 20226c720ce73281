package handler

import (
	"net/http"
	"strings"

	"github.com/gautamkshah/wise-academy/internal/app/service"
	"github.com/gautamkshah/wise-academy/internal/common"
	"github.com/gautamkshah/wise-academy/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

type ProblemHandler struct {
	problems ProblemCatalog
}

func NewProblemHandler(p ProblemCatalog) *ProblemHandler {
	return &ProblemHandler{problems: p}
}

func (h *ProblemHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.listProblems)
	r.Get("/{id}", h.getProblem)
}

// listProblems accepts ?chapter=, ?platform=, ?difficulty= and a
// comma-separated ?tags= list.
func (h *ProblemHandler) listProblems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := service.ProblemFilter{
		ChapterID:  strings.TrimSpace(q.Get("chapter")),
		Platform:   model.Platform(strings.TrimSpace(q.Get("platform"))),
		Difficulty: model.ProblemDifficulty(strings.TrimSpace(q.Get("difficulty"))),
	}
	if tags := q.Get("tags"); tags != "" {
		for _, t := range strings.Split(tags, ",") {
			if t = strings.TrimSpace(t); t != "" {
				filter.Tags = append(filter.Tags, t)
			}
		}
	}

	problems, err := h.problems.ListProblems(r.Context(), filter)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, problems)
}

func (h *ProblemHandler) getProblem(w http.ResponseWriter, r *http.Request) {
	problem, err := h.problems.GetProblem(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), "Problem not found")
		return
	}
	common.RespondWithJSON(w, http.StatusOK, problem)
}
