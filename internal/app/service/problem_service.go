package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/gautamkshah/wise-academy/internal/common"
	"github.com/gautamkshah/wise-academy/internal/domain/model"
	"github.com/gautamkshah/wise-academy/internal/domain/repository"
)

// ProblemService serves the read-only catalog the reconciler matches against.
type ProblemService struct {
	problemRepo repository.ProblemRepository
}

func NewProblemService(problemRepo repository.ProblemRepository) *ProblemService {
	return &ProblemService{problemRepo: problemRepo}
}

type ProblemFilter struct {
	ChapterID  string
	Platform   model.Platform
	Difficulty model.ProblemDifficulty
	Tags       []string
}

// ListProblems needs a chapter or a platform to scope the query. Difficulty
// and tags narrow the result further; a problem must carry every listed tag.
func (s *ProblemService) ListProblems(ctx context.Context, f ProblemFilter) ([]model.Problem, error) {
	if f.Platform != "" && !validPlatform(f.Platform) {
		return nil, common.Errorf("unknown platform %q: %w", f.Platform, common.ErrValidation)
	}

	var (
		problems []model.Problem
		err      error
	)
	switch {
	case f.ChapterID != "":
		problems, err = s.problemRepo.ListByChapter(ctx, f.ChapterID)
	case f.Platform != "":
		problems, err = s.problemRepo.ListByPlatform(ctx, f.Platform)
	default:
		return nil, common.Errorf("chapter or platform is required: %w", common.ErrBadRequest)
	}
	if err != nil {
		return nil, fmt.Errorf("ProblemService.ListProblems: %w", err)
	}

	out := make([]model.Problem, 0, len(problems))
	for _, p := range problems {
		if f.Platform != "" && p.Platform != f.Platform {
			continue
		}
		if f.Difficulty != "" && p.Difficulty != f.Difficulty {
			continue
		}
		if !hasTags(p.Tags, f.Tags) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *ProblemService) GetProblem(ctx context.Context, id string) (*model.Problem, error) {
	p, err := s.problemRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("ProblemService.GetProblem: %w", err)
	}
	return p, nil
}

func validPlatform(p model.Platform) bool {
	for _, known := range model.Platforms {
		if p == known {
			return true
		}
	}
	return false
}

func hasTags(have, want []string) bool {
	for _, w := range want {
		found := false
		for _, h := range have {
			if strings.EqualFold(h, strings.TrimSpace(w)) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
