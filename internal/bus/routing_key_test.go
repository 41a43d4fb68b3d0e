package bus

import "testing"

func TestParseRoutingKey_WithChat(t *testing.T) {
	ch, chat := ParseRoutingKey("telegram:-1001234567890")
	if ch != ChannelTelegram {
		t.Errorf("expected channel telegram, got %q", ch)
	}
	if chat != "-1001234567890" {
		t.Errorf("expected chat -1001234567890, got %q", chat)
	}
}

func TestParseRoutingKey_ChannelOnly(t *testing.T) {
	ch, chat := ParseRoutingKey("cli")
	if ch != ChannelCLI || chat != "" {
		t.Errorf("unexpected split: %q %q", ch, chat)
	}
}

func TestRoutingKey_RoundTrip(t *testing.T) {
	key := RoutingKey(ChannelSlack, "C024BE91L")
	ch, chat := ParseRoutingKey(key)
	if ch != ChannelSlack || chat != "C024BE91L" {
		t.Errorf("round trip mismatch: %q -> %q %q", key, ch, chat)
	}
}

func TestInboundMessage_MetaInt64(t *testing.T) {
	msg := NewInboundMessage(ChannelTelegram, "42", "-100", "/config noflood")
	msg.SetMetadata(map[string]any{
		MetaMessageID: 7,
		MetaUserID:    int64(42),
		"float":       float64(9),
	})
	if v, ok := msg.MetaInt64(MetaMessageID); !ok || v != 7 {
		t.Errorf("message_id: got %d %v", v, ok)
	}
	if v, ok := msg.MetaInt64(MetaUserID); !ok || v != 42 {
		t.Errorf("user_id: got %d %v", v, ok)
	}
	if v, ok := msg.MetaInt64("float"); !ok || v != 9 {
		t.Errorf("float: got %d %v", v, ok)
	}
	if _, ok := msg.MetaInt64("missing"); ok {
		t.Error("expected missing key to report false")
	}
}
