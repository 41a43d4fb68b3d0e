package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/segmentio/kafka-go"
)

// Publisher sends envelopes onto the exchange.
type Publisher interface {
	Publish(ctx context.Context, env Envelope) error
}

// KafkaPublisher implements Publisher using segmentio/kafka-go.
type KafkaPublisher struct {
	w *kafka.Writer
}

// NewKafkaPublisher creates a publisher writing to topic.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		w: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
		},
	}
}

// Publish writes env keyed by its sender.
func (p *KafkaPublisher) Publish(ctx context.Context, env Envelope) error {
	value, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	if err := p.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(env.From),
		Value: value,
	}); err != nil {
		return fmt.Errorf("kafka publish %s/%s: %w", env.Action, env.Type, err)
	}
	return nil
}

// Close flushes and closes the writer.
func (p *KafkaPublisher) Close() error {
	return p.w.Close()
}

// DisabledPublisher drops envelopes; used when the exchange is not configured.
type DisabledPublisher struct{}

func (DisabledPublisher) Publish(_ context.Context, env Envelope) error {
	slog.Warn("exchange: disabled, dropping envelope", "action", env.Action, "type", env.Type, "to", env.To)
	return nil
}

// ChannelPublisher is a test/in-process Publisher that records envelopes and
// optionally forwards them to a ChannelConsumer.
type ChannelPublisher struct {
	mu      sync.Mutex
	sent    []Envelope
	forward *ChannelConsumer
	err     error
}

// NewChannelPublisher creates an in-process publisher. forward may be nil.
func NewChannelPublisher(forward *ChannelConsumer) *ChannelPublisher {
	return &ChannelPublisher{forward: forward}
}

// FailWith makes every later Publish return err.
func (p *ChannelPublisher) FailWith(err error) {
	p.mu.Lock()
	p.err = err
	p.mu.Unlock()
}

func (p *ChannelPublisher) Publish(_ context.Context, env Envelope) error {
	p.mu.Lock()
	if p.err != nil {
		err := p.err
		p.mu.Unlock()
		return err
	}
	p.sent = append(p.sent, env)
	p.mu.Unlock()

	if p.forward != nil {
		value, err := json.Marshal(env)
		if err != nil {
			return err
		}
		p.forward.Send(Message{Key: []byte(env.From), Value: value})
	}
	return nil
}

// Sent returns a copy of every envelope published so far.
func (p *ChannelPublisher) Sent() []Envelope {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Envelope, len(p.sent))
	copy(out, p.sent)
	return out
}
