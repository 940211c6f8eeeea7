package ports

import (
	"context"
	"encoding/json"

	"github.com/buildvote/bot/internal/core/domain"
)

// VoteOrder selects the row ordering of ListActive. The leaderboard wants
// highest tally first; the poller walks rows in insertion order.
type VoteOrder int

const (
	OrderByTally VoteOrder = iota
	OrderByID
)

type VoteRepository interface {
	// Create inserts the vote and fills in ID and CreatedAt.
	Create(ctx context.Context, vote *domain.Vote) error
	ListActive(ctx context.Context, order VoteOrder) ([]domain.Vote, error)
	// SetTally unconditionally overwrites vote_count and updated_at.
	SetTally(ctx context.Context, voteID int64, count int) error
	// SetTallyByMessage is the close-time resync path, keyed by the
	// announcement message. Reports whether a matching active row exists.
	SetTallyByMessage(ctx context.Context, channelID, messageID string, count int) (bool, error)
	// Winner returns the active vote with the highest tally, or (nil, nil)
	// when no vote is active. Ties break on earliest creation, then lowest
	// id, so the result is deterministic.
	Winner(ctx context.Context) (*domain.Vote, error)
	// Archive copies the winning vote into votes_pattern. Archiving the
	// same vote twice is a no-op.
	Archive(ctx context.Context, vote *domain.Vote) error
	// DeactivateSession marks every vote of the session inactive and
	// returns the number of rows affected.
	DeactivateSession(ctx context.Context, sessionID int64) (int64, error)
}

type CreateVoteInput struct {
	Title     string
	ImageName string
	ImageURL  string
	JSONData  json.RawMessage
	CoordX    int
	CoordZ    int
	CreatedBy string
	GuildID   string
}

type CreateVoteResult struct {
	VoteID    int64
	ChannelID string
	MessageID string
}

type VoteService interface {
	CreateVote(ctx context.Context, input CreateVoteInput) (*CreateVoteResult, error)
	// CloseSession runs the end-of-round workflow: resync tallies, pick and
	// archive the winner, lock the channel, rotate the session and
	// provision the next channel. Returns the new session number.
	CloseSession(ctx context.Context, guildID string) (int, error)
	Leaderboard(ctx context.Context) ([]domain.Vote, error)
}
