package model

type LeaderboardEntry struct {
	Rank        int     `json:"rank"`
	UserID      string  `json:"id"`
	Name        string  `json:"name"`
	Photo       *string `json:"photo,omitempty"`
	SolvedCount int     `json:"solved_count"`
}
