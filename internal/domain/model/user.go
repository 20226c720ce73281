package model

import (
	"time"
)

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

type User struct {
	ID              string     `json:"id"`
	ExternalSubject *string    `json:"firebase_uid,omitempty"`
	Email           string     `json:"email"`
	Name            string     `json:"name"`
	Photo           *string    `json:"photo,omitempty"`
	Role            string     `json:"role"`
	LeetCodeID      *string    `json:"leetcode_id,omitempty"`
	CodeForcesID    *string    `json:"codeforces_id,omitempty"`
	CodeChefID      *string    `json:"codechef_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	Stats           *UserStats `json:"stats,omitempty"`
}

// Handle returns the user's registered handle on p, or "" when none is set.
func (u *User) Handle(p Platform) string {
	var h *string
	switch p {
	case PlatformLeetCode:
		h = u.LeetCodeID
	case PlatformCodeForces:
		h = u.CodeForcesID
	case PlatformCodeChef:
		h = u.CodeChefID
	}
	if h == nil {
		return ""
	}
	return *h
}

// Identity is the verified claim set handed over by the identity provider.
type Identity struct {
	Subject string
	Email   string
	Name    string
	Photo   string
}

// HandleUpdate carries optional handle changes. Nil leaves a handle as is, "" clears it.
type HandleUpdate struct {
	LeetCodeID   *string `json:"leetcode_id,omitempty"`
	CodeForcesID *string `json:"codeforces_id,omitempty"`
	CodeChefID   *string `json:"codechef_id,omitempty"`
}
