package discord

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

const (
	privateCategoryName = "Private Chats"
	privateChatPrefix   = "chat-"
	idleChatThreshold   = 24 * time.Hour
)

var channelNameChars = regexp.MustCompile(`[^a-z0-9-]`)

// normalizeChannelName turns a display name into a valid channel name.
func normalizeChannelName(name string) string {
	name = strings.ToLower(strings.ReplaceAll(name, " ", "-"))
	name = channelNameChars.ReplaceAllString(name, "")
	for strings.Contains(name, "--") {
		name = strings.ReplaceAll(name, "--", "-")
	}
	return name
}

func (h *Handlers) handleChat(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	userID := interactionUserID(i)

	category, err := h.privateCategory(ctx, s, i.GuildID, true)
	if err != nil {
		h.log.Error("failed to resolve private chat category", "error", err)
		h.replyEphemeral(s, i, "An error occurred while creating the channel.")
		return
	}

	if existing := h.memberChat(ctx, s, i.GuildID, category.ID, userID); existing != "" {
		h.replyEphemeral(s, i, fmt.Sprintf("You already have a private channel: <#%s>", existing))
		return
	}

	displayName := ""
	if i.Member != nil {
		displayName = i.Member.Nick
		if displayName == "" && i.Member.User != nil {
			displayName = i.Member.User.Username
		}
	}

	channel, err := s.GuildChannelCreateComplex(i.GuildID, discordgo.GuildChannelCreateData{
		Name:     privateChatPrefix + normalizeChannelName(displayName),
		Type:     discordgo.ChannelTypeGuildText,
		ParentID: category.ID,
		PermissionOverwrites: []*discordgo.PermissionOverwrite{
			{
				ID:   i.GuildID,
				Type: discordgo.PermissionOverwriteTypeRole,
				Deny: discordgo.PermissionViewChannel,
			},
			{
				ID:    userID,
				Type:  discordgo.PermissionOverwriteTypeMember,
				Allow: discordgo.PermissionViewChannel | discordgo.PermissionSendMessages,
			},
			{
				ID:    s.State.User.ID,
				Type:  discordgo.PermissionOverwriteTypeMember,
				Allow: discordgo.PermissionViewChannel | discordgo.PermissionSendMessages | discordgo.PermissionManageChannels,
			},
		},
	}, discordgo.WithContext(ctx))
	if err != nil {
		h.log.Error("failed to create private channel", "user_id", userID, "error", err)
		h.replyEphemeral(s, i, "I could not create a private channel. Check my permissions.")
		return
	}

	welcome := fmt.Sprintf("Welcome to your private chat, <@%s>!\n", userID) +
		"This channel is only visible to you and the bot.\n" +
		"Available commands:\n" +
		"- `/token` - register your token pair\n" +
		"- `/remove-token` - remove your tokens\n" +
		"- `/close` - close this channel"
	if _, err := s.ChannelMessageSend(channel.ID, welcome, discordgo.WithContext(ctx)); err != nil {
		h.log.Error("failed to send welcome message", "channel_id", channel.ID, "error", err)
	}

	h.replyEphemeral(s, i, fmt.Sprintf("I created a private channel for you: <#%s>", channel.ID))
}

func (h *Handlers) handleClose(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !h.isPrivateChat(ctx, i.ChannelID) {
		h.replyEphemeral(s, i, "This command can only be used in a private chat.")
		return
	}

	h.replyEphemeral(s, i, "Closing the channel...")
	if _, err := s.ChannelDelete(i.ChannelID, discordgo.WithContext(ctx)); err != nil {
		h.log.Error("failed to delete private channel", "channel_id", i.ChannelID, "error", err)
	}
}

func (h *Handlers) handleCleanChats(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !isAdmin(i) {
		h.replyEphemeral(s, i, "You do not have permission to use this command.")
		return
	}

	category, err := h.privateCategory(ctx, s, i.GuildID, false)
	if err != nil || category == nil {
		h.replyEphemeral(s, i, "No private chat category found.")
		return
	}

	if !h.deferEphemeral(s, i) {
		return
	}

	channels, err := s.GuildChannels(i.GuildID, discordgo.WithContext(ctx))
	if err != nil {
		h.log.Error("failed to list channels", "error", err)
		h.followupEphemeral(s, i, genericErrorReply)
		return
	}

	deleted := 0
	for _, ch := range channels {
		if ch.Type != discordgo.ChannelTypeGuildText || ch.ParentID != category.ID {
			continue
		}
		messages, err := s.ChannelMessages(ch.ID, 1, "", "", "", discordgo.WithContext(ctx))
		if err != nil {
			h.log.Error("failed to inspect channel", "channel_id", ch.ID, "error", err)
			continue
		}
		if len(messages) == 0 || time.Since(messages[0].Timestamp) < idleChatThreshold {
			continue
		}
		if _, err := s.ChannelDelete(ch.ID, discordgo.WithContext(ctx)); err != nil {
			h.log.Error("failed to delete idle channel", "channel_id", ch.ID, "error", err)
			continue
		}
		deleted++
	}

	h.followupEphemeral(s, i, fmt.Sprintf("%d idle channels deleted.", deleted))
}

func (h *Handlers) privateCategory(ctx context.Context, s *discordgo.Session, guildID string, create bool) (*discordgo.Channel, error) {
	channels, err := s.GuildChannels(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to list guild channels: %w", err)
	}
	for _, ch := range channels {
		if ch.Type == discordgo.ChannelTypeGuildCategory && ch.Name == privateCategoryName {
			return ch, nil
		}
	}
	if !create {
		return nil, nil
	}
	category, err := s.GuildChannelCreateComplex(guildID, discordgo.GuildChannelCreateData{
		Name: privateCategoryName,
		Type: discordgo.ChannelTypeGuildCategory,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to create private chat category: %w", err)
	}
	return category, nil
}

// memberChat returns the id of the member's existing private channel under
// the category, or empty when none exists.
func (h *Handlers) memberChat(ctx context.Context, s *discordgo.Session, guildID, categoryID, userID string) string {
	channels, err := s.GuildChannels(guildID, discordgo.WithContext(ctx))
	if err != nil {
		h.log.Error("failed to list guild channels", "error", err)
		return ""
	}
	for _, ch := range channels {
		if ch.Type != discordgo.ChannelTypeGuildText || ch.ParentID != categoryID {
			continue
		}
		for _, ow := range ch.PermissionOverwrites {
			if ow.Type == discordgo.PermissionOverwriteTypeMember && ow.ID == userID && ow.Allow&discordgo.PermissionViewChannel != 0 {
				return ch.ID
			}
		}
	}
	return ""
}

func (h *Handlers) isPrivateChat(ctx context.Context, channelID string) bool {
	channel, err := h.session.Channel(channelID, discordgo.WithContext(ctx))
	if err != nil || channel.Type != discordgo.ChannelTypeGuildText || channel.ParentID == "" {
		return false
	}
	if !strings.HasPrefix(channel.Name, privateChatPrefix) {
		return false
	}
	parent, err := h.session.Channel(channel.ParentID, discordgo.WithContext(ctx))
	return err == nil && parent.Name == privateCategoryName
}
