package domain

import (
	"encoding/json"
	"time"
)

// Vote is one image poll open for reaction-based approval. VoteCount is a
// cached copy of the approval reaction count minus the bot's own seed
// reaction; it is refreshed by the tally poller and at session close, never
// in real time.
type Vote struct {
	ID        int64           `json:"id"`
	Title     string          `json:"title"`
	ImageName string          `json:"image_name"`
	ImageURL  string          `json:"image_url"`
	JSONData  json.RawMessage `json:"json_data,omitempty"`
	ChannelID string          `json:"channel_id"`
	MessageID string          `json:"message_id"`
	CreatedBy string          `json:"created_by"`
	CoordX    int             `json:"coord_x"`
	CoordZ    int             `json:"coord_z"`
	VoteCount int             `json:"vote_count"`
	SessionID int64           `json:"session_id"`
	IsActive  bool            `json:"is_active"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// VotePattern is the immutable archived copy of a session's winning vote.
type VotePattern struct {
	ID             int64           `json:"id"`
	Title          string          `json:"title"`
	ImageName      string          `json:"image_name"`
	ImageURL       string          `json:"image_url"`
	JSONData       json.RawMessage `json:"json_data,omitempty"`
	CoordX         int             `json:"coord_x"`
	CoordZ         int             `json:"coord_z"`
	VoteCount      int             `json:"vote_count"`
	OriginalVoteID int64           `json:"original_vote_id"`
	CreatedAt      time.Time       `json:"created_at"`
}
