package model

import (
	"time"
)

type Platform string
type ProblemDifficulty string

const (
	PlatformLeetCode   Platform = "LeetCode"
	PlatformCodeForces Platform = "CodeForces"
	PlatformCodeChef   Platform = "CodeChef"

	DifficultyEasy   ProblemDifficulty = "Easy"
	DifficultyMedium ProblemDifficulty = "Medium"
	DifficultyHard   ProblemDifficulty = "Hard"
)

// Platforms lists every supported external platform in display order.
var Platforms = []Platform{PlatformLeetCode, PlatformCodeForces, PlatformCodeChef}

// Problem is a read-only catalog entry. ReferenceURL doubles as the external
// identifier for CodeForces problems (contest/<id>/problem/<index>).
type Problem struct {
	ID           string            `json:"id"`
	Title        string            `json:"title"`
	Platform     Platform          `json:"platform"`
	Difficulty   ProblemDifficulty `json:"difficulty"`
	ReferenceURL *string           `json:"link,omitempty"`
	Tags         []string          `json:"tags"`
	ChapterID    string            `json:"chapter_id"`
	CreatedAt    time.Time         `json:"created_at"`
}

func (p *Problem) Link() string {
	if p.ReferenceURL == nil {
		return ""
	}
	return *p.ReferenceURL
}
