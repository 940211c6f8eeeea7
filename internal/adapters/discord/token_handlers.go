package discord

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
)

const (
	privateChatRequiredReply = "This command can only be used in a private chat. Use /chat to create one."
	tokenSavedReply          = "Tokens registered successfully."
	tokenErrorReply          = "An error occurred while registering the tokens."
	tokenRemovedReply        = "Tokens removed successfully."
	tokenRemoveErrorReply    = "An error occurred while removing the tokens."
)

func (h *Handlers) handleToken(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !h.isPrivateChat(ctx, i.ChannelID) {
		h.replyEphemeral(s, i, privateChatRequiredReply)
		return
	}

	opts := optionMap(i)
	accessToken := opts["access_token"].StringValue()
	refreshToken := opts["refresh_token"].StringValue()
	userID := interactionUserID(i)

	if !h.tokens.SaveTokens(ctx, userID, accessToken, refreshToken) {
		h.replyEphemeral(s, i, tokenErrorReply)
		return
	}

	h.replyEphemeral(s, i, tokenSavedReply)
	if _, err := s.ChannelMessageSend(i.ChannelID, fmt.Sprintf("Tokens updated for <@%s>", userID), discordgo.WithContext(ctx)); err != nil {
		h.log.Error("failed to post token confirmation", "channel_id", i.ChannelID, "error", err)
	}
}

func (h *Handlers) handleRemoveToken(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !h.isPrivateChat(ctx, i.ChannelID) {
		h.replyEphemeral(s, i, privateChatRequiredReply)
		return
	}

	if !h.tokens.RemoveTokens(ctx, interactionUserID(i)) {
		h.replyEphemeral(s, i, tokenRemoveErrorReply)
		return
	}
	h.replyEphemeral(s, i, tokenRemovedReply)
}

func (h *Handlers) handleListTokens(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !isAdmin(i) {
		h.replyEphemeral(s, i, "You do not have permission to use this command.")
		return
	}

	tokens := h.tokens.AllTokens(ctx)
	if len(tokens) == 0 {
		h.replyEphemeral(s, i, "No tokens registered.")
		return
	}

	var sb strings.Builder
	sb.WriteString("```\nRegistered tokens:\n\n")
	fmt.Fprintf(&sb, "%-22s %-10s %-18s %-18s\n", "User", "Status", "Updated", "Created")
	sb.WriteString(strings.Repeat("-", 70) + "\n")
	for _, t := range tokens {
		status := "valid"
		if !t.Valid {
			status = "invalid"
		}
		fmt.Fprintf(&sb, "%-22s %-10s %-18s %-18s\n",
			t.DiscordUserID, status,
			t.UpdatedAt.Format("2006-01-02 15:04"),
			t.CreatedAt.Format("2006-01-02 15:04"))
	}
	sb.WriteString("```")

	h.replyEphemeral(s, i, sb.String())
}

func (h *Handlers) handleInvalidateTokens(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !isAdmin(i) {
		h.replyEphemeral(s, i, "You do not have permission to use this command.")
		return
	}

	if optionMap(i)["confirmation"].StringValue() != "CONFIRM" {
		h.replyEphemeral(s, i, "To invalidate every token, rerun the command with confirmation:CONFIRM.")
		return
	}

	affected := h.tokens.InvalidateAll(ctx)
	h.replyEphemeral(s, i, fmt.Sprintf("%d tokens invalidated.", affected))
}

func (h *Handlers) handleTokenStats(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !isAdmin(i) {
		h.replyEphemeral(s, i, "You do not have permission to use this command.")
		return
	}

	stats := h.tokens.Stats(ctx)

	lastUpdate := "never"
	if stats.LastUpdate != nil {
		lastUpdate = stats.LastUpdate.Format("2006-01-02 15:04:05")
	}

	var sb strings.Builder
	sb.WriteString("```\nToken statistics:\n\n")
	fmt.Fprintf(&sb, "Total tokens:   %d\n", stats.Total)
	fmt.Fprintf(&sb, "Valid tokens:   %d\n", stats.Valid)
	fmt.Fprintf(&sb, "Invalid tokens: %d\n", stats.Invalid)
	fmt.Fprintf(&sb, "Unique users:   %d\n", stats.UniqueUsers)
	fmt.Fprintf(&sb, "Last update:    %s\n", lastUpdate)
	sb.WriteString("```")

	h.replyEphemeral(s, i, sb.String())
}
