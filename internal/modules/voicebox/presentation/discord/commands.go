package discord

import "github.com/bwmarrin/discordgo"

// Commands returns all slash commands for the voicebox module.
func Commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "join",
			Description: "Join a voice channel",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionChannel,
					Name:        "channel",
					Description: "Voice channel to join (defaults to your current channel)",
					Required:    false,
					ChannelTypes: []discordgo.ChannelType{
						discordgo.ChannelTypeGuildVoice,
						discordgo.ChannelTypeGuildStageVoice,
					},
				},
			},
		},
		{
			Name:        "leave",
			Description: "Leave the voice channel",
		},
		{
			Name:        "play",
			Description: "Add a track or playlist to the end of the queue",
			Options:     []*discordgo.ApplicationCommandOption{queryOption()},
		},
		{
			Name:        "playnext",
			Description: "Add a track or playlist to the front of the queue",
			Options:     []*discordgo.ApplicationCommandOption{queryOption()},
		},
		{
			Name:        "enqueue",
			Description: "Queue several searches, each loaded when its turn comes",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "queries",
					Description: "URLs or search terms separated by ';'",
					Required:    true,
				},
			},
		},
		{
			Name:        "stream",
			Description: "Queue a live stream or radio URL",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "url",
					Description: "Stream URL",
					Required:    true,
				},
			},
		},
		{
			Name:        "skip",
			Description: "Skip the current track",
		},
		{
			Name:        "stop",
			Description: "Stop advancing the queue",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Name:        "keep_playing",
					Description: "Let the current track finish",
					Required:    false,
				},
			},
		},
		{
			Name:        "start",
			Description: "Resume advancing the queue",
		},
		{
			Name:        "nowplaying",
			Description: "Show the current track",
		},
		{
			Name:        "queue",
			Description: "Manage the queue",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "list",
					Description: "Show the current queue",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "page",
							Description: "Page number",
							Required:    false,
							MinValue:    floatPtr(1),
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "remove",
					Description: "Remove an item from the queue",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:         discordgo.ApplicationCommandOptionInteger,
							Name:         "position",
							Description:  "Position of the item to remove (1-indexed, as shown in queue list)",
							Required:     true,
							MinValue:     floatPtr(1),
							Autocomplete: true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "clear",
					Description: "Clear the queue",
				},
			},
		},
		{
			Name:        "mute",
			Description: "Mute the bot",
		},
		{
			Name:        "unmute",
			Description: "Unmute the bot",
		},
		{
			Name:        "bitrate",
			Description: "Set the voice channel bitrate",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "mode",
					Description: "Bitrate to use",
					Required:    true,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "Auto", Value: "auto"},
						{Name: "Max", Value: "max"},
						{Name: "Custom", Value: "custom"},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "kbps",
					Description: "Bitrate in kbps, used with Custom",
					Required:    false,
					MinValue:    floatPtr(8),
					MaxValue:    384,
				},
			},
		},
		{
			Name:        "volume",
			Description: "Set the player volume",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "level",
					Description: "Volume from 0 to 1000 (100 is unchanged)",
					Required:    true,
					MinValue:    floatPtr(0),
					MaxValue:    1000,
				},
			},
		},
	}
}

func queryOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:         discordgo.ApplicationCommandOptionString,
		Name:         "query",
		Description:  "URL or search term",
		Required:     true,
		Autocomplete: true,
	}
}

func floatPtr(f float64) *float64 {
	return &f
}
