package discord

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/buildvote/bot/internal/core/ports"
)

const (
	genericErrorReply = "An error occurred while processing the command."
	handlerTimeout    = 2 * time.Minute
)

// Handlers is the slash command surface. Input validation happens here;
// everything below it only sees validated values.
type Handlers struct {
	session *discordgo.Session
	tokens  ports.TokenService
	votes   ports.VoteService
	log     *slog.Logger
	http    *http.Client
}

func NewHandlers(session *discordgo.Session, tokens ports.TokenService, votes ports.VoteService, log *slog.Logger) *Handlers {
	return &Handlers{
		session: session,
		tokens:  tokens,
		votes:   votes,
		log:     log,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (h *Handlers) HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	switch i.ApplicationCommandData().Name {
	case "token":
		h.handleToken(ctx, s, i)
	case "remove-token":
		h.handleRemoveToken(ctx, s, i)
	case "chat":
		h.handleChat(ctx, s, i)
	case "close":
		h.handleClose(ctx, s, i)
	case "create-vote":
		h.handleCreateVote(ctx, s, i)
	case "leaderboard":
		h.handleLeaderboard(ctx, s, i)
	case "end-session":
		h.handleEndSession(ctx, s, i)
	case "list-tokens":
		h.handleListTokens(ctx, s, i)
	case "invalidate-tokens":
		h.handleInvalidateTokens(ctx, s, i)
	case "token-stats":
		h.handleTokenStats(ctx, s, i)
	case "clean-chats":
		h.handleCleanChats(ctx, s, i)
	}
}

func optionMap(i *discordgo.InteractionCreate) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	options := i.ApplicationCommandData().Options
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		m[opt.Name] = opt
	}
	return m
}

func resolvedAttachment(i *discordgo.InteractionCreate, opt *discordgo.ApplicationCommandInteractionDataOption) *discordgo.MessageAttachment {
	id, ok := opt.Value.(string)
	if !ok {
		return nil
	}
	resolved := i.ApplicationCommandData().Resolved
	if resolved == nil {
		return nil
	}
	return resolved.Attachments[id]
}

func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

func isAdmin(i *discordgo.InteractionCreate) bool {
	return i.Member != nil && i.Member.Permissions&discordgo.PermissionAdministrator != 0
}

func (h *Handlers) replyEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		h.log.Error("failed to respond to interaction", "error", err)
	}
}

func (h *Handlers) replyEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
		},
	})
	if err != nil {
		h.log.Error("failed to respond to interaction", "error", err)
	}
}

func (h *Handlers) deferEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate) bool {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		h.log.Error("failed to defer interaction", "error", err)
		return false
	}
	return true
}

func (h *Handlers) followupEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	_, err := s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Content: content,
		Flags:   discordgo.MessageFlagsEphemeral,
	})
	if err != nil {
		h.log.Error("failed to send followup", "error", err)
	}
}
