package postgres

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildvote/bot/internal/core/domain"
	"github.com/buildvote/bot/internal/core/ports"
	"github.com/buildvote/bot/internal/core/services"
)

// stubGateway is an in-memory chat platform for driving the services against
// real repositories.
type stubGateway struct {
	channels map[string]string
	counts   map[string]int
	winners  []domain.Vote
	nextMsg  int
}

func newStubGateway() *stubGateway {
	return &stubGateway{
		channels: map[string]string{},
		counts:   map[string]int{},
	}
}

func (g *stubGateway) key(channelID, messageID string) string {
	return channelID + "/" + messageID
}

func (g *stubGateway) EnsureVoteChannel(_ context.Context, _, name string) (string, error) {
	if id, ok := g.channels[name]; ok {
		return id, nil
	}
	id := "chan-" + name
	g.channels[name] = id
	return id, nil
}

func (g *stubGateway) PostVoteAnnouncement(_ context.Context, channelID string, _ ports.VoteAnnouncement) (string, error) {
	g.nextMsg++
	return fmt.Sprintf("msg-%d", g.nextMsg), nil
}

func (g *stubGateway) SeedApproval(_ context.Context, channelID, messageID string) error {
	g.counts[g.key(channelID, messageID)] = 1
	return nil
}

func (g *stubGateway) ApprovalCount(_ context.Context, channelID, messageID string) (int, error) {
	return g.counts[g.key(channelID, messageID)], nil
}

func (g *stubGateway) BotMessages(_ context.Context, channelID string) ([]ports.ChannelMessage, error) {
	var messages []ports.ChannelMessage
	prefix := channelID + "/"
	for key, count := range g.counts {
		if len(key) > len(prefix) && key[:len(prefix)] == prefix {
			messages = append(messages, ports.ChannelMessage{ID: key[len(prefix):], ApprovalCount: count})
		}
	}
	return messages, nil
}

func (g *stubGateway) LockReactions(context.Context, string, string) error { return nil }

func (g *stubGateway) PostWinnerAnnouncement(_ context.Context, _ string, winner domain.Vote) error {
	g.winners = append(g.winners, winner)
	return nil
}

func TestVoteLifecycle(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	votes := NewVoteRepository(db)
	sessions := services.NewSessionService(NewSessionRepository(db), NewStateRepository(db), log)
	gateway := newStubGateway()
	service := services.NewVoteService(votes, sessions, gateway, "votes-", log)
	poller := services.NewTallyPoller(votes, gateway, time.Minute, log)

	require.NoError(t, sessions.Init(ctx))

	// create a vote in session 1
	result, err := service.CreateVote(ctx, ports.CreateVoteInput{
		Title:     "Test Vote",
		ImageName: "build.png",
		ImageURL:  "https://cdn.example/build.png",
		CoordX:    100,
		CoordZ:    200,
		CreatedBy: "user-1",
		GuildID:   "guild-1",
	})
	require.NoError(t, err)

	active, err := votes.ListActive(ctx, ports.OrderByID)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Zero(t, active[0].VoteCount)
	assert.True(t, active[0].IsActive)

	// five users approve on top of the bot's seed, then a poll pass runs
	gateway.counts[gateway.key(result.ChannelID, result.MessageID)] = 6
	require.NoError(t, poller.RunOnce(ctx))

	active, err = votes.ListActive(ctx, ports.OrderByID)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, 5, active[0].VoteCount)

	// closing the session archives the winner and rotates to session 2
	next, err := service.CloseSession(ctx, "guild-1")
	require.NoError(t, err)
	assert.Equal(t, 2, next)

	require.Len(t, gateway.winners, 1)
	assert.Equal(t, result.VoteID, gateway.winners[0].ID)

	var archived int
	err = db.QueryRow(`SELECT COUNT(*) FROM votes_pattern WHERE original_vote_id = $1`, result.VoteID).Scan(&archived)
	require.NoError(t, err)
	assert.Equal(t, 1, archived)

	active, err = votes.ListActive(ctx, ports.OrderByID)
	require.NoError(t, err)
	assert.Empty(t, active)

	number, err := sessions.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, number)

	// the legacy counter mirrors the new session number
	value, ok, err := NewStateRepository(db).Counter(ctx, "vote_session_number")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, value)

	// the next session channel exists
	assert.Contains(t, gateway.channels, "votes-2")
}
