package discord

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/buildvote/bot/internal/core/ports"
)

// Bot owns the discordgo session: intents, event handlers, slash command
// registration and teardown.
type Bot struct {
	session *discordgo.Session
	appID   string
	guildID string
	log     *slog.Logger

	handlers *Handlers

	ready     chan struct{}
	readyOnce sync.Once
}

func NewBot(session *discordgo.Session, appID, guildID string, tokens ports.TokenService, votes ports.VoteService, log *slog.Logger) *Bot {
	return &Bot{
		session:  session,
		appID:    appID,
		guildID:  guildID,
		log:      log,
		handlers: NewHandlers(session, tokens, votes, log),
		ready:    make(chan struct{}),
	}
}

// Ready is closed once the gateway reports the Ready event. The tally
// poller gates its first pass on it.
func (b *Bot) Ready() <-chan struct{} {
	return b.ready
}

func (b *Bot) Start() error {
	b.session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMessageReactions

	b.session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		b.log.Info("gateway ready", "user", r.User.Username, "guilds", len(r.Guilds))
		b.readyOnce.Do(func() { close(b.ready) })
	})
	b.session.AddHandler(b.handlers.HandleInteraction)

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open gateway connection: %w", err)
	}

	registered, err := b.session.ApplicationCommandBulkOverwrite(b.appID, b.guildID, commands)
	if err != nil {
		return fmt.Errorf("failed to register slash commands: %w", err)
	}
	b.log.Info("slash commands registered", "count", len(registered))

	return nil
}

func (b *Bot) Stop() {
	if _, err := b.session.ApplicationCommandBulkOverwrite(b.appID, b.guildID, []*discordgo.ApplicationCommand{}); err != nil {
		b.log.Error("failed to unregister slash commands", "error", err)
	}
	if err := b.session.Close(); err != nil {
		b.log.Error("failed to close gateway connection", "error", err)
	}
}
