package model

import "time"

type ProgressStatus string

const (
	ProgressPending ProgressStatus = "PENDING"
	ProgressSolved  ProgressStatus = "SOLVED"
)

func (s ProgressStatus) Valid() bool {
	return s == ProgressPending || s == ProgressSolved
}

// UserProblem is the per-(user, problem) progress row. SolvedAt is set iff Status is SOLVED.
type UserProblem struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	ProblemID string         `json:"problem_id"`
	Status    ProgressStatus `json:"status"`
	SolvedAt  *time.Time     `json:"solved_at"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// SyncResult counts problems newly marked solved by one reconciliation run.
type SyncResult struct {
	LeetCode   int `json:"leetcode"`
	CodeForces int `json:"codeforces"`
	CodeChef   int `json:"codechef"`
	Total      int `json:"total"`
}
