package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/bwmarrin/discordgo"

	"github.com/buildvote/bot/internal/core/domain"
	"github.com/buildvote/bot/internal/core/ports"
)

// ApprovalEmoji is the seed reaction counted as an approval. The bot adds
// it right after posting a vote, which is why every tally subtracts one.
const ApprovalEmoji = "✅"

const embedColor = 0x3498db

// Gateway implements ports.ChatGateway on top of a discordgo session.
type Gateway struct {
	session *discordgo.Session
}

func NewGateway(session *discordgo.Session) *Gateway {
	return &Gateway{session: session}
}

func (g *Gateway) EnsureVoteChannel(ctx context.Context, guildID, name string) (string, error) {
	channels, err := g.session.GuildChannels(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to list guild channels: %w", err)
	}
	for _, ch := range channels {
		if ch.Type == discordgo.ChannelTypeGuildText && ch.Name == name {
			return ch.ID, nil
		}
	}

	botID := g.session.State.User.ID
	channel, err := g.session.GuildChannelCreateComplex(guildID, discordgo.GuildChannelCreateData{
		Name: name,
		Type: discordgo.ChannelTypeGuildText,
		PermissionOverwrites: []*discordgo.PermissionOverwrite{
			{
				// The everyone role shares the guild id.
				ID:    guildID,
				Type:  discordgo.PermissionOverwriteTypeRole,
				Allow: discordgo.PermissionViewChannel | discordgo.PermissionAddReactions | discordgo.PermissionReadMessageHistory,
				Deny:  discordgo.PermissionSendMessages,
			},
			{
				ID:    botID,
				Type:  discordgo.PermissionOverwriteTypeMember,
				Allow: discordgo.PermissionViewChannel | discordgo.PermissionSendMessages | discordgo.PermissionAddReactions | discordgo.PermissionReadMessageHistory | discordgo.PermissionManageChannels | discordgo.PermissionManageMessages,
			},
		},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to create vote channel %q: %w", name, err)
	}
	return channel.ID, nil
}

func (g *Gateway) PostVoteAnnouncement(ctx context.Context, channelID string, a ports.VoteAnnouncement) (string, error) {
	embed := &discordgo.MessageEmbed{
		Title: a.Title,
		Color: embedColor,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Image", Value: a.ImageName},
			{Name: "Coordinates", Value: fmt.Sprintf("X: %d, Z: %d", a.CoordX, a.CoordZ)},
		},
		Image: &discordgo.MessageEmbedImage{URL: a.ImageURL},
	}
	msg, err := g.session.ChannelMessageSendEmbed(channelID, embed, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to send vote embed: %w", err)
	}
	return msg.ID, nil
}

func (g *Gateway) SeedApproval(ctx context.Context, channelID, messageID string) error {
	if err := g.session.MessageReactionAdd(channelID, messageID, ApprovalEmoji, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to add seed reaction: %w", err)
	}
	return nil
}

func (g *Gateway) ApprovalCount(ctx context.Context, channelID, messageID string) (int, error) {
	msg, err := g.session.ChannelMessage(channelID, messageID, discordgo.WithContext(ctx))
	if err != nil {
		if isNotFound(err) {
			return 0, domain.ErrMessageGone
		}
		return 0, fmt.Errorf("failed to fetch message: %w", err)
	}
	return approvalCount(msg), nil
}

func (g *Gateway) BotMessages(ctx context.Context, channelID string) ([]ports.ChannelMessage, error) {
	botID := g.session.State.User.ID

	var result []ports.ChannelMessage
	beforeID := ""
	for {
		batch, err := g.session.ChannelMessages(channelID, 100, beforeID, "", "", discordgo.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("failed to fetch channel history: %w", err)
		}
		if len(batch) == 0 {
			return result, nil
		}
		for _, msg := range batch {
			if msg.Author != nil && msg.Author.ID == botID {
				result = append(result, ports.ChannelMessage{
					ID:            msg.ID,
					ApprovalCount: approvalCount(msg),
				})
			}
		}
		beforeID = batch[len(batch)-1].ID
	}
}

func (g *Gateway) LockReactions(ctx context.Context, guildID, channelID string) error {
	var allow, deny int64
	if channel, err := g.session.Channel(channelID, discordgo.WithContext(ctx)); err == nil {
		for _, ow := range channel.PermissionOverwrites {
			if ow.Type == discordgo.PermissionOverwriteTypeRole && ow.ID == guildID {
				allow, deny = ow.Allow, ow.Deny
				break
			}
		}
	}
	allow &^= discordgo.PermissionAddReactions
	deny |= discordgo.PermissionAddReactions

	err := g.session.ChannelPermissionSet(channelID, guildID, discordgo.PermissionOverwriteTypeRole, allow, deny, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to revoke reaction permission: %w", err)
	}
	return nil
}

func (g *Gateway) PostWinnerAnnouncement(ctx context.Context, channelID string, winner domain.Vote) error {
	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Winner: %s", winner.Title),
		Description: fmt.Sprintf("%s won with %d votes!", winner.ImageName, winner.VoteCount),
		Color:       embedColor,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Coordinates", Value: fmt.Sprintf("X: %d, Z: %d", winner.CoordX, winner.CoordZ)},
		},
		Image: &discordgo.MessageEmbedImage{URL: winner.ImageURL},
	}
	if _, err := g.session.ChannelMessageSendEmbed(channelID, embed, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to send winner embed: %w", err)
	}
	return nil
}

func approvalCount(msg *discordgo.Message) int {
	for _, reaction := range msg.Reactions {
		if reaction.Emoji != nil && reaction.Emoji.Name == ApprovalEmoji {
			return reaction.Count
		}
	}
	return 0
}

func isNotFound(err error) bool {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil {
		return restErr.Response.StatusCode == http.StatusNotFound
	}
	return false
}
