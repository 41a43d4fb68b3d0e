package bus

// Bus is the contract between chat channels and the command router.
// Implementations may use buffered channels, pub/sub systems, or any other transport.
type Bus interface {
	// PublishInbound delivers a message from a channel to the router.
	PublishInbound(msg InboundMessage)
	// PublishOutbound delivers a send or delete request to a channel.
	PublishOutbound(msg OutboundMessage)
	// InboundChan returns a receive-only channel for the router to consume.
	InboundChan() <-chan InboundMessage
	// OutboundChan returns a receive-only channel for the channel manager to consume.
	OutboundChan() <-chan OutboundMessage
}

// MessageBus is the default in-process Bus implementation backed by buffered Go channels.
//
// Channels push InboundMessages; the router consumes them and pushes
// OutboundMessages back for the channel manager to route.
// Both directions use buffered channels so senders never block on a slow consumer.
type MessageBus struct {
	inbound  chan InboundMessage  // channels -> router
	outbound chan OutboundMessage // router -> channels
}

func NewMessageBus(bufSize int) *MessageBus {
	return &MessageBus{
		inbound:  make(chan InboundMessage, bufSize),
		outbound: make(chan OutboundMessage, bufSize),
	}
}

// PublishInbound sends an InboundMessage to the router.
func (b *MessageBus) PublishInbound(msg InboundMessage) {
	b.inbound <- msg
}

// PublishOutbound sends an OutboundMessage to the channel manager.
func (b *MessageBus) PublishOutbound(msg OutboundMessage) {
	b.outbound <- msg
}

// InboundChan returns a receive-only view of the inbound channel.
func (b *MessageBus) InboundChan() <-chan InboundMessage {
	return b.inbound
}

// OutboundChan returns a receive-only view of the outbound channel.
func (b *MessageBus) OutboundChan() <-chan OutboundMessage {
	return b.outbound
}

func (b *MessageBus) InboundSize() int { return len(b.inbound) }

func (b *MessageBus) OutboundSize() int { return len(b.outbound) }
