package playback

import (
	"sync"

	"github.com/disgoorg/snowflake/v2"
	"github.com/google/uuid"
)

// NowPlayingMessage stores the channel and message ID for a "Now Playing" message.
// Both values are needed for deletion since the message may be in a different channel
// than the current notification channel if the user switched channels while playing.
type NowPlayingMessage struct {
	ChannelID snowflake.ID
	MessageID snowflake.ID
	HandleID  uuid.UUID // the playback the message announces
}

// Session is the playback state of one guild: its connection, its queue and
// where notifications go.
type Session struct {
	Connection *Connection
	Queue      *Queue

	mu                    sync.Mutex
	notificationChannelID snowflake.ID
	nowPlayingMessage     *NowPlayingMessage
}

// NewSession creates a Session.
func NewSession(conn *Connection, queue *Queue, notificationChannelID snowflake.ID) *Session {
	return &Session{
		Connection:            conn,
		Queue:                 queue,
		notificationChannelID: notificationChannelID,
	}
}

// GuildID returns the guild ID.
func (s *Session) GuildID() snowflake.ID {
	return s.Connection.GuildID()
}

// NotificationChannelID returns the text channel for notifications.
func (s *Session) NotificationChannelID() snowflake.ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notificationChannelID
}

// SetNotificationChannelID updates the text channel for notifications.
func (s *Session) SetNotificationChannelID(channelID snowflake.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notificationChannelID = channelID
}

// NowPlayingMessage returns the stored "Now Playing" message, or nil.
func (s *Session) NowPlayingMessage() *NowPlayingMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nowPlayingMessage
}

// SwapNowPlayingMessage stores msg and returns the previous message, if any.
// Pass nil to clear it.
func (s *Session) SwapNowPlayingMessage(msg *NowPlayingMessage) *NowPlayingMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.nowPlayingMessage
	s.nowPlayingMessage = msg
	return prev
}

// TakeNowPlayingMessage clears and returns the stored message if it announces
// the playback handleID. It returns nil otherwise.
func (s *Session) TakeNowPlayingMessage(handleID uuid.UUID) *NowPlayingMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.nowPlayingMessage == nil || s.nowPlayingMessage.HandleID != handleID {
		return nil
	}
	msg := s.nowPlayingMessage
	s.nowPlayingMessage = nil
	return msg
}
