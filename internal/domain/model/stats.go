package model

import "time"

// PlatformStats is the normalized shape every fetcher produces.
type PlatformStats struct {
	Solved int `json:"solved"`
	Rating int `json:"rating"`
}

// UserStats is recomputed from scratch on every sync. TotalSolved sums the
// external platforms only; academy progress is not added on top.
type UserStats struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	TotalSolved    int       `json:"total_solved"`
	LeetCodeSolved int       `json:"leetcode_solved"`
	LeetCodeRating int       `json:"leetcode_rating"`
	CFSolved       int       `json:"cf_solved"`
	CFRating       int       `json:"cf_rating"`
	CCSolved       int       `json:"cc_solved"`
	CCRating       int       `json:"cc_rating"`
	UpdatedAt      time.Time `json:"updated_at"`

	// AcademySolved counts SOLVED catalog progress. It is reported next to the
	// external totals, never added to TotalSolved, and not persisted.
	AcademySolved int `json:"academy_solved"`
}
