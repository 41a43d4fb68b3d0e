package exchange

import (
	"context"
	"log/slog"
	"sync"

	"github.com/segmentio/kafka-go"
)

// Message is one raw record read from the exchange topic.
type Message struct {
	Key   []byte
	Value []byte
}

// Consumer delivers raw exchange messages.
type Consumer interface {
	Start(ctx context.Context) error
	Messages() <-chan Message
	Close() error
}

// KafkaConsumer implements Consumer using segmentio/kafka-go.
type KafkaConsumer struct {
	brokers       []string
	topic         string
	consumerGroup string
	reader        *kafka.Reader
	messages      chan Message
	once          sync.Once
}

// NewKafkaConsumer creates a consumer for topic in consumerGroup.
func NewKafkaConsumer(brokers []string, topic, consumerGroup string) *KafkaConsumer {
	return &KafkaConsumer{
		brokers:       brokers,
		topic:         topic,
		consumerGroup: consumerGroup,
		messages:      make(chan Message, 100),
	}
}

// Start begins reading in the background until ctx is cancelled.
func (c *KafkaConsumer) Start(ctx context.Context) error {
	c.reader = kafka.NewReader(kafka.ReaderConfig{
		Brokers:  c.brokers,
		Topic:    c.topic,
		GroupID:  c.consumerGroup,
		MinBytes: 1,
		MaxBytes: 10e6,
	})

	go func() {
		defer c.closeMessages()
		for {
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				slog.Warn("exchange: read error", "topic", c.topic, "err", err)
				continue
			}
			select {
			case c.messages <- Message{Key: msg.Key, Value: msg.Value}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}

// Messages returns the channel of consumed messages.
func (c *KafkaConsumer) Messages() <-chan Message {
	return c.messages
}

// Close stops the reader.
func (c *KafkaConsumer) Close() error {
	if c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

func (c *KafkaConsumer) closeMessages() {
	c.once.Do(func() { close(c.messages) })
}

// ChannelConsumer is a test/in-process Consumer implementation backed by a Go channel.
type ChannelConsumer struct {
	ch   chan Message
	once sync.Once
}

// NewChannelConsumer creates an in-process consumer.
func NewChannelConsumer() *ChannelConsumer {
	return &ChannelConsumer{ch: make(chan Message, 100)}
}

// Start is a no-op for the channel consumer.
func (c *ChannelConsumer) Start(context.Context) error { return nil }

// Messages returns the message channel.
func (c *ChannelConsumer) Messages() <-chan Message { return c.ch }

// Close closes the channel.
func (c *ChannelConsumer) Close() error {
	c.once.Do(func() { close(c.ch) })
	return nil
}

// Send pushes a message into the channel consumer.
func (c *ChannelConsumer) Send(msg Message) {
	c.ch <- msg
}
