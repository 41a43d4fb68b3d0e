package bus

import "time"

// OutboundKind says what a channel should do with an OutboundMessage.
type OutboundKind int

const (
	// OutboundSend posts content to the chat.
	OutboundSend OutboundKind = iota
	// OutboundDelete removes an existing message from the chat.
	OutboundDelete
)

// OutboundMessage is a send or delete request routed to a channel.
type OutboundMessage struct {
	kind      OutboundKind
	channel   ChannelType   // destination channel name
	chatId    string        // destination chat / channel identifier
	content   string        // text to send
	messageId string        // message to delete (OutboundDelete)
	ttl       time.Duration // delete the sent message after ttl; 0 keeps it
}

func (m OutboundMessage) Kind() OutboundKind   { return m.kind }
func (m OutboundMessage) Channel() ChannelType { return m.channel }
func (m OutboundMessage) ChatId() string       { return m.chatId }
func (m OutboundMessage) Content() string      { return m.content }
func (m OutboundMessage) MessageId() string    { return m.messageId }
func (m OutboundMessage) TTL() time.Duration   { return m.ttl }

// NewSendMessage builds a send request. A positive ttl makes the channel
// remove the message again once it expires.
func NewSendMessage(channel ChannelType, chatId, content string, ttl time.Duration) OutboundMessage {
	return OutboundMessage{
		kind:    OutboundSend,
		channel: channel,
		chatId:  chatId,
		content: content,
		ttl:     ttl,
	}
}

// NewDeleteMessage builds a delete request for messageId in chatId.
func NewDeleteMessage(channel ChannelType, chatId, messageId string) OutboundMessage {
	return OutboundMessage{
		kind:      OutboundDelete,
		channel:   channel,
		chatId:    chatId,
		messageId: messageId,
	}
}
