package ports

import (
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/voicebox/internal/modules/voicebox/domain"
)

// NotificationSender posts playback notifications to a text channel.
type NotificationSender interface {
	// SendNowPlaying posts a now playing embed and returns its message ID.
	SendNowPlaying(
		guildID, channelID snowflake.ID,
		track *domain.Track,
	) (messageID snowflake.ID, err error)

	// DeleteMessage removes a previously posted notification.
	DeleteMessage(channelID, messageID snowflake.ID) error

	// SendError posts an error embed.
	SendError(channelID snowflake.ID, message string) error
}

// UserInfo is how a member is shown in notifications.
type UserInfo struct {
	DisplayName string
	AvatarURL   string
}

// UserInfoProvider looks up member display information.
type UserInfoProvider interface {
	GetUserInfo(guildID, userID snowflake.ID) (*UserInfo, error)
}
