// Package exchange implements the data-sharing channel between this bot and
// the other services of the network, carried over Kafka.
package exchange

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Envelope is the wire format of every exchange message.
type Envelope struct {
	ID     string          `json:"id"`
	From   string          `json:"from"`
	To     []string        `json:"to"`
	Action string          `json:"action"`
	Type   string          `json:"type"`
	Data   json.RawMessage `json:"data"`
	Time   time.Time       `json:"time"`
}

// Action and type constants.
const (
	ActionConfig = "config"
	ActionBackup = "backup"

	TypeAsk     = "ask"
	TypeCommit  = "commit"
	TypeReply   = "reply"
	TypeConfigs = "configs"
)

// NewEnvelope marshals data and wraps it in an Envelope with a fresh id.
func NewEnvelope(from string, to []string, action, typ string, data any) (Envelope, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s/%s data: %w", action, typ, err)
	}
	return Envelope{
		ID:     uuid.NewString(),
		From:   from,
		To:     to,
		Action: action,
		Type:   typ,
		Data:   raw,
		Time:   time.Now().UTC(),
	}, nil
}

// AddressedTo reports whether name is among the receivers (case-insensitive).
func (e Envelope) AddressedTo(name string) bool {
	for _, to := range e.To {
		if strings.EqualFold(to, name) {
			return true
		}
	}
	return false
}

// Decode unmarshals the envelope data into v.
func (e Envelope) Decode(v any) error {
	if err := json.Unmarshal(e.Data, v); err != nil {
		return fmt.Errorf("decode %s/%s data: %w", e.Action, e.Type, err)
	}
	return nil
}

// ParseEnvelope decodes a raw exchange message.
func ParseEnvelope(value []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(value, &env); err != nil {
		return Envelope{}, fmt.Errorf("parse envelope: %w", err)
	}
	return env, nil
}
