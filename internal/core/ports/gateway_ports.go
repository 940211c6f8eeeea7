package ports

import (
	"context"

	"github.com/buildvote/bot/internal/core/domain"
)

// VoteAnnouncement is the embed posted to the session channel when a vote
// is created.
type VoteAnnouncement struct {
	Title     string
	ImageName string
	ImageURL  string
	CoordX    int
	CoordZ    int
}

// ChannelMessage is a bot-authored message in a session channel together
// with the raw count of its approval reaction (including the bot's seed;
// zero when the reaction is absent).
type ChannelMessage struct {
	ID            string
	ApprovalCount int
}

// ChatGateway is the slice of the chat platform the core services depend
// on. The discordgo adapter implements it; tests use fakes.
type ChatGateway interface {
	// EnsureVoteChannel resolves the named text channel in the guild,
	// creating it with the session-channel permission set (everyone may
	// react but not post, the bot has full access) when missing.
	EnsureVoteChannel(ctx context.Context, guildID, name string) (channelID string, err error)
	PostVoteAnnouncement(ctx context.Context, channelID string, a VoteAnnouncement) (messageID string, err error)
	// SeedApproval adds the bot's own approval reaction to the message.
	SeedApproval(ctx context.Context, channelID, messageID string) error
	// ApprovalCount returns the raw approval reaction count on the message,
	// including the bot's seed; zero when nobody (not even the bot) has
	// reacted. Returns domain.ErrMessageGone when the message was deleted.
	ApprovalCount(ctx context.Context, channelID, messageID string) (int, error)
	// BotMessages enumerates the channel's bot-authored messages with their
	// raw approval counts.
	BotMessages(ctx context.Context, channelID string) ([]ChannelMessage, error)
	// LockReactions revokes the add-reaction permission for the everyone
	// role on the channel.
	LockReactions(ctx context.Context, guildID, channelID string) error
	PostWinnerAnnouncement(ctx context.Context, channelID string, winner domain.Vote) error
}
