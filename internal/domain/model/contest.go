package model

import "time"

type Contest struct {
	Name      string    `json:"name"`
	Platform  Platform  `json:"platform"`
	StartTime time.Time `json:"start_time"`
	Duration  string    `json:"duration"`
	URL       string    `json:"url"`
}
