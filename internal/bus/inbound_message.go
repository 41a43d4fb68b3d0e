// Package bus defines the message types that flow between chat channels and the command router.
package bus

import "time"

// Metadata keys set by channel adapters on inbound messages.
const (
	MetaMessageID   = "message_id"
	MetaUserID      = "user_id"
	MetaUsername    = "username"
	MetaChatTitle   = "chat_title"
	MetaChatLink    = "chat_link"
	MetaIsGroup     = "is_group"
	MetaBotUsername = "bot_username"
)

// InboundMessage is a message received from a chat channel.
type InboundMessage struct {
	channel   ChannelType    // "telegram", "cli"
	senderId  string         // user identifier within the channel
	chatId    string         // chat / group identifier
	content   string         // message text
	timestamp time.Time      // when the message was received
	metadata  map[string]any // channel-specific extra data (message_id, chat_title, …)
}

// NewInboundMessage creates an InboundMessage with Timestamp set to now.
// Use SetMetadata to attach optional fields.
func NewInboundMessage(channel ChannelType, senderId, chatId, content string) InboundMessage {
	return InboundMessage{
		channel:   channel,
		senderId:  senderId,
		chatId:    chatId,
		content:   content,
		timestamp: time.Now(),
	}
}

func (m InboundMessage) ChatId() string                 { return m.chatId }
func (m InboundMessage) SenderId() string               { return m.senderId }
func (m InboundMessage) Content() string                { return m.content }
func (m InboundMessage) Channel() ChannelType           { return m.channel }
func (m InboundMessage) Timestamp() time.Time           { return m.timestamp }
func (m InboundMessage) Metadata() map[string]any       { return m.metadata }
func (m *InboundMessage) SetMetadata(md map[string]any) { m.metadata = md }

// MetaString returns the metadata value for key as a string, or "".
func (m InboundMessage) MetaString(key string) string {
	s, _ := m.metadata[key].(string)
	return s
}

// MetaInt64 returns the metadata value for key as an int64.
// Adapters store ids as int or int64; JSON round-trips produce float64.
func (m InboundMessage) MetaInt64(key string) (int64, bool) {
	switch v := m.metadata[key].(type) {
	case int:
		return int64(v), true
	case int64:
		return v, true
	case float64:
		return int64(v), true
	}
	return 0, false
}

// MetaBool returns the metadata value for key as a bool.
func (m InboundMessage) MetaBool(key string) bool {
	b, _ := m.metadata[key].(bool)
	return b
}

// RoutingKey returns "channel:chat_id" for the chat the message came from.
func (m InboundMessage) RoutingKey() string {
	return RoutingKey(m.channel, m.chatId)
}

// Preview returns a short snippet of the message content for logging.
func (m InboundMessage) Preview() string {
	preview := m.content
	if len(preview) > 80 {
		preview = preview[:80] + "..."
	}
	return preview
}
