package discord

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/buildvote/bot/internal/core/ports"
)

// maxMetadataSize caps the pattern metadata attachment at 1 MiB.
const maxMetadataSize = 1 << 20

func (h *Handlers) handleCreateVote(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	opts := optionMap(i)

	image := resolvedAttachment(i, opts["image"])
	if image == nil || !strings.HasPrefix(image.ContentType, "image/") {
		h.replyEphemeral(s, i, "The file must be an image.")
		return
	}

	jsonFile := resolvedAttachment(i, opts["json_file"])
	if jsonFile == nil || !strings.HasSuffix(jsonFile.Filename, ".json") {
		h.replyEphemeral(s, i, "The second file must be a JSON file.")
		return
	}

	metadata, err := h.fetchMetadata(ctx, jsonFile.URL)
	if err != nil {
		h.log.Error("failed to read metadata attachment", "url", jsonFile.URL, "error", err)
		h.replyEphemeral(s, i, "The JSON file could not be read.")
		return
	}
	if !json.Valid(metadata) {
		h.replyEphemeral(s, i, "The JSON file is not valid.")
		return
	}

	if !h.deferEphemeral(s, i) {
		return
	}

	result, err := h.votes.CreateVote(ctx, ports.CreateVoteInput{
		Title:     opts["title"].StringValue(),
		ImageName: opts["image_name"].StringValue(),
		ImageURL:  image.URL,
		JSONData:  metadata,
		CoordX:    int(opts["coord_x"].IntValue()),
		CoordZ:    int(opts["coord_z"].IntValue()),
		CreatedBy: interactionUserID(i),
		GuildID:   i.GuildID,
	})
	if err != nil {
		h.log.Error("failed to create vote", "error", err)
		h.followupEphemeral(s, i, "An error occurred while creating the vote.")
		return
	}

	h.followupEphemeral(s, i, fmt.Sprintf("Vote created successfully! ID: %d", result.VoteID))
}

func (h *Handlers) handleLeaderboard(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	votes, err := h.votes.Leaderboard(ctx)
	if err != nil {
		h.log.Error("failed to build leaderboard", "error", err)
		h.replyEphemeral(s, i, genericErrorReply)
		return
	}
	if len(votes) == 0 {
		h.replyEphemeral(s, i, "No active votes.")
		return
	}

	embed := &discordgo.MessageEmbed{
		Title: "Vote leaderboard",
		Color: embedColor,
	}
	for rank, vote := range votes {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  fmt.Sprintf("#%d %s", rank+1, vote.Title),
			Value: fmt.Sprintf("Votes: %d\nCreated: %s", vote.VoteCount, vote.CreatedAt.Format("2006-01-02")),
		})
	}

	h.replyEmbed(s, i, embed)
}

func (h *Handlers) handleEndSession(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !isAdmin(i) {
		h.replyEphemeral(s, i, "You do not have permission to use this command.")
		return
	}

	if !h.deferEphemeral(s, i) {
		return
	}

	next, err := h.votes.CloseSession(ctx, i.GuildID)
	if err != nil {
		h.log.Error("failed to close session", "error", err)
		h.followupEphemeral(s, i, "An error occurred while closing the session.")
		return
	}

	h.followupEphemeral(s, i, fmt.Sprintf("Session closed. Session %d is now open.", next))
}

func (h *Handlers) fetchMetadata(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := h.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d fetching attachment", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxMetadataSize))
}
