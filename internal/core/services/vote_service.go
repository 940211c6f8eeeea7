package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/buildvote/bot/internal/core/domain"
	"github.com/buildvote/bot/internal/core/ports"
)

// tallyFromCount converts a raw approval reaction count into a tally by
// excluding the bot's own seed reaction, floored at zero for messages where
// the reaction was removed entirely.
func tallyFromCount(raw int) int {
	if raw <= 1 {
		return 0
	}
	return raw - 1
}

type voteService struct {
	votes         ports.VoteRepository
	sessions      *SessionService
	gateway       ports.ChatGateway
	channelPrefix string
	log           *slog.Logger
}

func NewVoteService(votes ports.VoteRepository, sessions *SessionService, gateway ports.ChatGateway, channelPrefix string, log *slog.Logger) ports.VoteService {
	return &voteService{
		votes:         votes,
		sessions:      sessions,
		gateway:       gateway,
		channelPrefix: channelPrefix,
		log:           log,
	}
}

func (s *voteService) channelName(sessionNumber int) string {
	return fmt.Sprintf("%s%d", s.channelPrefix, sessionNumber)
}

// CreateVote posts the announcement embed into the current session channel,
// seeds the approval reaction and persists the vote row. The platform calls
// and the insert are not transactional: a failed insert leaves the already
// posted message behind.
func (s *voteService) CreateVote(ctx context.Context, input ports.CreateVoteInput) (*ports.CreateVoteResult, error) {
	number, err := s.sessions.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve current session: %w", err)
	}
	sessionID, err := s.sessions.CurrentID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve current session id: %w", err)
	}

	channelID, err := s.gateway.EnsureVoteChannel(ctx, input.GuildID, s.channelName(number))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve vote channel: %w", err)
	}

	messageID, err := s.gateway.PostVoteAnnouncement(ctx, channelID, ports.VoteAnnouncement{
		Title:     input.Title,
		ImageName: input.ImageName,
		ImageURL:  input.ImageURL,
		CoordX:    input.CoordX,
		CoordZ:    input.CoordZ,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to post vote announcement: %w", err)
	}

	if err := s.gateway.SeedApproval(ctx, channelID, messageID); err != nil {
		return nil, fmt.Errorf("failed to seed approval reaction: %w", err)
	}

	vote := &domain.Vote{
		Title:     input.Title,
		ImageName: input.ImageName,
		ImageURL:  input.ImageURL,
		JSONData:  input.JSONData,
		ChannelID: channelID,
		MessageID: messageID,
		CreatedBy: input.CreatedBy,
		CoordX:    input.CoordX,
		CoordZ:    input.CoordZ,
		SessionID: sessionID,
		IsActive:  true,
	}
	if err := s.votes.Create(ctx, vote); err != nil {
		return nil, fmt.Errorf("failed to persist vote: %w", err)
	}

	s.log.Info("vote created",
		"vote_id", vote.ID, "session", number, "channel_id", channelID, "message_id", messageID)

	return &ports.CreateVoteResult{
		VoteID:    vote.ID,
		ChannelID: channelID,
		MessageID: messageID,
	}, nil
}

// CloseSession runs the end-of-round workflow. The phases are sequential
// and not resumable: a crash mid-way leaves the session active with no
// winner archived, and the next invocation starts over.
func (s *voteService) CloseSession(ctx context.Context, guildID string) (int, error) {
	number, err := s.sessions.Current(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve current session: %w", err)
	}
	sessionID, err := s.sessions.CurrentID(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve current session id: %w", err)
	}

	channelID, err := s.gateway.EnsureVoteChannel(ctx, guildID, s.channelName(number))
	if err != nil {
		return 0, fmt.Errorf("failed to resolve vote channel: %w", err)
	}

	s.resyncTallies(ctx, channelID)

	winner, err := s.votes.Winner(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to compute winner: %w", err)
	}

	if winner != nil && winner.VoteCount > 0 {
		if err := s.votes.Archive(ctx, winner); err != nil {
			return 0, fmt.Errorf("failed to archive winner: %w", err)
		}
		if err := s.gateway.PostWinnerAnnouncement(ctx, channelID, *winner); err != nil {
			s.log.Error("failed to announce winner", "vote_id", winner.ID, "error", err)
		}
		s.log.Info("session winner archived", "session", number, "vote_id", winner.ID, "tally", winner.VoteCount)
	} else {
		s.log.Info("session closed without winner", "session", number)
	}

	if err := s.gateway.LockReactions(ctx, guildID, channelID); err != nil {
		s.log.Error("failed to lock reactions on closed channel", "channel_id", channelID, "error", err)
	}

	deactivated, err := s.votes.DeactivateSession(ctx, sessionID)
	if err != nil {
		return 0, fmt.Errorf("failed to deactivate session votes: %w", err)
	}

	next, err := s.sessions.Rotate(ctx)
	if err != nil {
		return 0, err
	}

	if _, err := s.gateway.EnsureVoteChannel(ctx, guildID, s.channelName(next)); err != nil {
		s.log.Error("failed to provision next session channel", "session", next, "error", err)
	}

	s.log.Info("session closed", "closed", number, "next", next, "votes_deactivated", deactivated)
	return next, nil
}

// resyncTallies re-reads every bot-authored message in the session channel
// and writes its tally to the matching vote row. Independent of the poller.
// One message's failure never blocks the rest.
func (s *voteService) resyncTallies(ctx context.Context, channelID string) {
	messages, err := s.gateway.BotMessages(ctx, channelID)
	if err != nil {
		s.log.Error("failed to enumerate channel messages for resync", "channel_id", channelID, "error", err)
		return
	}

	start := time.Now()
	var updated int
	for _, msg := range messages {
		matched, err := s.votes.SetTallyByMessage(ctx, channelID, msg.ID, tallyFromCount(msg.ApprovalCount))
		if err != nil {
			s.log.Error("failed to resync tally", "channel_id", channelID, "message_id", msg.ID, "error", err)
			continue
		}
		if matched {
			updated++
		}
	}

	s.log.Info("tallies resynced", "channel_id", channelID, "updated", updated, "elapsed", time.Since(start))
}

func (s *voteService) Leaderboard(ctx context.Context) ([]domain.Vote, error) {
	votes, err := s.votes.ListActive(ctx, ports.OrderByTally)
	if err != nil {
		return nil, fmt.Errorf("failed to list active votes: %w", err)
	}
	return votes, nil
}
