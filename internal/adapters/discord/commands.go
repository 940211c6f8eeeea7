package discord

import "github.com/bwmarrin/discordgo"

var adminOnly int64 = discordgo.PermissionAdministrator

var commands = []*discordgo.ApplicationCommand{
	{
		Name:        "token",
		Description: "Register your access and refresh tokens",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "access_token",
				Description: "The access token to register",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "refresh_token",
				Description: "The refresh token to register",
				Required:    true,
			},
		},
	},
	{
		Name:        "remove-token",
		Description: "Remove your registered tokens",
	},
	{
		Name:        "chat",
		Description: "Create a private chat channel for yourself",
	},
	{
		Name:        "close",
		Description: "Close the current private chat channel",
	},
	{
		Name:        "create-vote",
		Description: "Create a new vote with an image",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "title",
				Description: "Vote title",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "image_name",
				Description: "Name of the image",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionAttachment,
				Name:        "image",
				Description: "Image to vote on",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionAttachment,
				Name:        "json_file",
				Description: "JSON file with the pattern metadata",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "coord_x",
				Description: "X coordinate",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "coord_z",
				Description: "Z coordinate",
				Required:    true,
			},
		},
	},
	{
		Name:        "leaderboard",
		Description: "Show the active votes ranked by approvals",
	},
	{
		Name:                     "end-session",
		Description:              "Close the current vote session and open the next one (admin)",
		DefaultMemberPermissions: &adminOnly,
	},
	{
		Name:                     "list-tokens",
		Description:              "List all registered tokens (admin)",
		DefaultMemberPermissions: &adminOnly,
	},
	{
		Name:                     "invalidate-tokens",
		Description:              "Invalidate every registered token (admin)",
		DefaultMemberPermissions: &adminOnly,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "confirmation",
				Description: "Type CONFIRM to invalidate all tokens",
				Required:    true,
			},
		},
	},
	{
		Name:                     "token-stats",
		Description:              "Show token statistics (admin)",
		DefaultMemberPermissions: &adminOnly,
	},
	{
		Name:                     "clean-chats",
		Description:              "Delete private chat channels idle for a day (admin)",
		DefaultMemberPermissions: &adminOnly,
	},
}
