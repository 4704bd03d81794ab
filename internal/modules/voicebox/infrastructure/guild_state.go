package infrastructure

import (
	"github.com/bwmarrin/discordgo"
	"github.com/cockroachdb/errors"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/voicebox/internal/modules/voicebox/application/ports"
)

var (
	_ ports.VoiceStateProvider = (*GuildState)(nil)
	_ ports.UserInfoProvider   = (*GuildState)(nil)
)

// GuildState answers voice state and member lookups from the session state
// cache, falling back to the REST API for members that are not cached.
type GuildState struct {
	session *discordgo.Session
}

// NewGuildState creates a GuildState over the session.
func NewGuildState(session *discordgo.Session) *GuildState {
	return &GuildState{session: session}
}

// GetUserVoiceChannel returns the voice channel the user is connected to, or 0.
func (g *GuildState) GetUserVoiceChannel(guildID, userID snowflake.ID) (snowflake.ID, error) {
	guild, err := g.session.State.Guild(guildID.String())
	if err != nil {
		return 0, errors.Wrapf(err, "failed to look up guild %d", guildID)
	}

	return findVoiceChannel(guild.VoiceStates, userID)
}

// GetUserInfo returns how the member is displayed in the guild.
func (g *GuildState) GetUserInfo(guildID, userID snowflake.ID) (*ports.UserInfo, error) {
	member, err := g.session.State.Member(guildID.String(), userID.String())
	if err != nil {
		member, err = g.session.GuildMember(guildID.String(), userID.String())
		if err != nil {
			return nil, errors.Wrapf(err, "failed to fetch member %d", userID)
		}
	}

	return userInfoOf(member), nil
}

func findVoiceChannel(states []*discordgo.VoiceState, userID snowflake.ID) (snowflake.ID, error) {
	for _, state := range states {
		if state.UserID != userID.String() || state.ChannelID == "" {
			continue
		}
		channelID, err := snowflake.Parse(state.ChannelID)
		if err != nil {
			return 0, errors.Wrap(err, "failed to parse voice channel ID")
		}
		return channelID, nil
	}

	return 0, nil
}

// userInfoOf prefers the guild nickname, then the global display name, then
// the username.
func userInfoOf(member *discordgo.Member) *ports.UserInfo {
	info := &ports.UserInfo{AvatarURL: member.AvatarURL("")}
	switch {
	case member.Nick != "":
		info.DisplayName = member.Nick
	case member.User.GlobalName != "":
		info.DisplayName = member.User.GlobalName
	default:
		info.DisplayName = member.User.Username
	}
	return info
}
