package domain

import "time"

// Session is a numbered voting round. Exactly one session is active at a
// time; numbers are strictly increasing and never reused.
type Session struct {
	ID        int64     `json:"id"`
	Number    int       `json:"number"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}
