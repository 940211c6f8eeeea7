package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/buildvote/bot/internal/core/domain"
	"github.com/buildvote/bot/internal/core/ports"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func msgKey(channelID, messageID string) string {
	return channelID + "/" + messageID
}

type fakeVoteRepo struct {
	votes       []domain.Vote
	nextID      int64
	setTallyErr map[int64]error
	listErr     error
	archiveErr  error
	archived    map[int64]domain.Vote
	tallyCalls  []int64
}

func newFakeVoteRepo() *fakeVoteRepo {
	return &fakeVoteRepo{
		nextID:      1,
		setTallyErr: map[int64]error{},
		archived:    map[int64]domain.Vote{},
	}
}

func (f *fakeVoteRepo) Create(_ context.Context, vote *domain.Vote) error {
	vote.ID = f.nextID
	f.nextID++
	vote.CreatedAt = time.Now()
	vote.UpdatedAt = vote.CreatedAt
	f.votes = append(f.votes, *vote)
	return nil
}

func (f *fakeVoteRepo) ListActive(_ context.Context, order ports.VoteOrder) ([]domain.Vote, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var active []domain.Vote
	for _, v := range f.votes {
		if v.IsActive {
			active = append(active, v)
		}
	}
	if order == ports.OrderByTally {
		sort.SliceStable(active, func(i, j int) bool {
			if active[i].VoteCount != active[j].VoteCount {
				return active[i].VoteCount > active[j].VoteCount
			}
			if !active[i].CreatedAt.Equal(active[j].CreatedAt) {
				return active[i].CreatedAt.Before(active[j].CreatedAt)
			}
			return active[i].ID < active[j].ID
		})
	} else {
		sort.SliceStable(active, func(i, j int) bool { return active[i].ID < active[j].ID })
	}
	return active, nil
}

func (f *fakeVoteRepo) SetTally(_ context.Context, voteID int64, count int) error {
	if err := f.setTallyErr[voteID]; err != nil {
		return err
	}
	f.tallyCalls = append(f.tallyCalls, voteID)
	for idx := range f.votes {
		if f.votes[idx].ID == voteID {
			f.votes[idx].VoteCount = count
			return nil
		}
	}
	return nil
}

func (f *fakeVoteRepo) SetTallyByMessage(_ context.Context, channelID, messageID string, count int) (bool, error) {
	for idx := range f.votes {
		v := &f.votes[idx]
		if v.ChannelID == channelID && v.MessageID == messageID && v.IsActive {
			v.VoteCount = count
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeVoteRepo) Winner(ctx context.Context) (*domain.Vote, error) {
	active, err := f.ListActive(ctx, ports.OrderByTally)
	if err != nil {
		return nil, err
	}
	if len(active) == 0 {
		return nil, nil
	}
	winner := active[0]
	return &winner, nil
}

func (f *fakeVoteRepo) Archive(_ context.Context, vote *domain.Vote) error {
	if f.archiveErr != nil {
		return f.archiveErr
	}
	if _, ok := f.archived[vote.ID]; ok {
		return nil
	}
	f.archived[vote.ID] = *vote
	return nil
}

func (f *fakeVoteRepo) DeactivateSession(_ context.Context, sessionID int64) (int64, error) {
	var affected int64
	for idx := range f.votes {
		if f.votes[idx].SessionID == sessionID && f.votes[idx].IsActive {
			f.votes[idx].IsActive = false
			affected++
		}
	}
	return affected, nil
}

func (f *fakeVoteRepo) get(id int64) *domain.Vote {
	for idx := range f.votes {
		if f.votes[idx].ID == id {
			return &f.votes[idx]
		}
	}
	return nil
}

type fakeSessionRepo struct {
	number    int
	id        int64
	rotations int
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{number: 1, id: 1}
}

func (f *fakeSessionRepo) Init(context.Context) error { return nil }

func (f *fakeSessionRepo) Current(context.Context) (int, error) { return f.number, nil }

func (f *fakeSessionRepo) CurrentID(context.Context) (int64, error) { return f.id, nil }

func (f *fakeSessionRepo) CloseAndOpenNext(context.Context) (int, error) {
	f.number++
	f.id++
	f.rotations++
	return f.number, nil
}

type fakeStateRepo struct {
	counters map[string]int
	err      error
}

func newFakeStateRepo() *fakeStateRepo {
	return &fakeStateRepo{counters: map[string]int{}}
}

func (f *fakeStateRepo) SetCounter(_ context.Context, key string, value int) error {
	if f.err != nil {
		return f.err
	}
	f.counters[key] = value
	return nil
}

func (f *fakeStateRepo) Counter(_ context.Context, key string) (int, bool, error) {
	value, ok := f.counters[key]
	return value, ok, f.err
}

type fakeGateway struct {
	channels    map[string]string
	counts      map[string]int
	gone        map[string]bool
	countErr    map[string]error
	botMessages map[string][]ports.ChannelMessage

	posted    []ports.VoteAnnouncement
	seeded    []string
	locked    []string
	winners   []domain.Vote
	nextMsgID int

	ensureErr error
	postErr   error
	seedErr   error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		channels:    map[string]string{},
		counts:      map[string]int{},
		gone:        map[string]bool{},
		countErr:    map[string]error{},
		botMessages: map[string][]ports.ChannelMessage{},
		nextMsgID:   100,
	}
}

func (f *fakeGateway) EnsureVoteChannel(_ context.Context, _, name string) (string, error) {
	if f.ensureErr != nil {
		return "", f.ensureErr
	}
	if id, ok := f.channels[name]; ok {
		return id, nil
	}
	id := fmt.Sprintf("chan-%s", name)
	f.channels[name] = id
	return id, nil
}

func (f *fakeGateway) PostVoteAnnouncement(_ context.Context, channelID string, a ports.VoteAnnouncement) (string, error) {
	if f.postErr != nil {
		return "", f.postErr
	}
	f.posted = append(f.posted, a)
	f.nextMsgID++
	return fmt.Sprintf("msg-%d", f.nextMsgID), nil
}

func (f *fakeGateway) SeedApproval(_ context.Context, channelID, messageID string) error {
	if f.seedErr != nil {
		return f.seedErr
	}
	f.seeded = append(f.seeded, msgKey(channelID, messageID))
	return nil
}

func (f *fakeGateway) ApprovalCount(_ context.Context, channelID, messageID string) (int, error) {
	key := msgKey(channelID, messageID)
	if f.gone[key] {
		return 0, domain.ErrMessageGone
	}
	if err := f.countErr[key]; err != nil {
		return 0, err
	}
	return f.counts[key], nil
}

func (f *fakeGateway) BotMessages(_ context.Context, channelID string) ([]ports.ChannelMessage, error) {
	return f.botMessages[channelID], nil
}

func (f *fakeGateway) LockReactions(_ context.Context, _, channelID string) error {
	f.locked = append(f.locked, channelID)
	return nil
}

func (f *fakeGateway) PostWinnerAnnouncement(_ context.Context, _ string, winner domain.Vote) error {
	f.winners = append(f.winners, winner)
	return nil
}
