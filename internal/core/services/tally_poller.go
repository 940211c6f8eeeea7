package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/buildvote/bot/internal/core/domain"
	"github.com/buildvote/bot/internal/core/ports"
)

// TallyPoller periodically re-reads the approval reaction count of every
// active vote from the chat platform and writes the corrected tally back.
// The operation is idempotent and runs on a fixed cadence, so there is no
// backoff or jitter.
type TallyPoller struct {
	votes    ports.VoteRepository
	gateway  ports.ChatGateway
	interval time.Duration
	log      *slog.Logger
}

func NewTallyPoller(votes ports.VoteRepository, gateway ports.ChatGateway, interval time.Duration, log *slog.Logger) *TallyPoller {
	return &TallyPoller{
		votes:    votes,
		gateway:  gateway,
		interval: interval,
		log:      log,
	}
}

// Run blocks until ctx is cancelled. The ready channel gates the first
// pass on the host process (the bot's Ready event); passing nil starts
// immediately.
func (p *TallyPoller) Run(ctx context.Context, ready <-chan struct{}) {
	if ready != nil {
		select {
		case <-ready:
		case <-ctx.Done():
			return
		}
	}

	p.log.Info("tally poller started", "interval", p.interval)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := p.RunOnce(ctx); err != nil {
				p.log.Error("tally pass failed", "error", err)
			}
		case <-ctx.Done():
			p.log.Info("tally poller stopped")
			return
		}
	}
}

// RunOnce executes a single tally pass over all active votes. A vote whose
// announcement message was deleted externally is skipped silently; any
// other per-vote failure is logged and does not block the remaining votes.
// Only the initial listing can fail the pass as a whole.
func (p *TallyPoller) RunOnce(ctx context.Context) error {
	votes, err := p.votes.ListActive(ctx, ports.OrderByID)
	if err != nil {
		return err
	}

	for _, vote := range votes {
		if err := p.pollVote(ctx, vote); err != nil {
			p.log.Error("failed to update tally",
				"vote_id", vote.ID, "channel_id", vote.ChannelID, "message_id", vote.MessageID, "error", err)
		}
	}

	return nil
}

func (p *TallyPoller) pollVote(ctx context.Context, vote domain.Vote) error {
	count, err := p.gateway.ApprovalCount(ctx, vote.ChannelID, vote.MessageID)
	if err != nil {
		if errors.Is(err, domain.ErrMessageGone) {
			return nil
		}
		return err
	}

	return p.votes.SetTally(ctx, vote.ID, tallyFromCount(count))
}
