package domain

import "time"

type UserToken struct {
	ID            int64     `json:"id"`
	DiscordUserID string    `json:"discord_user_id"`
	AccessToken   string    `json:"-"`
	RefreshToken  string    `json:"-"`
	Valid         bool      `json:"valid"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Complete reports whether both halves of the token pair are present.
func (t UserToken) Complete() bool {
	return t.AccessToken != "" && t.RefreshToken != ""
}

type TokenStats struct {
	Total       int64      `json:"total"`
	Valid       int64      `json:"valid"`
	Invalid     int64      `json:"invalid"`
	UniqueUsers int64      `json:"unique_users"`
	LastUpdate  *time.Time `json:"last_update,omitempty"`
}
