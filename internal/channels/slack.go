package channels

import (
	"context"
	"fmt"
	"log/slog"

	slackgo "github.com/slack-go/slack"

	"github.com/back8/github-scp-079-scp-079-noflood/internal/bus"
	"github.com/back8/github-scp-079-scp-079-noflood/internal/config/channel"
)

// SlackChannel is a send-only sink: operator reports can be routed to a Slack
// channel ("slack:C0123456") instead of a Telegram debug group.
type SlackChannel struct {
	Base
	cfg       *channel.SlackConfig
	webClient *slackgo.Client
}

func NewSlackChannel(cfg *channel.SlackConfig, b bus.Bus) *SlackChannel {
	return &SlackChannel{
		Base: NewBase(bus.ChannelSlack, b, nil),
		cfg:  cfg,
	}
}

func (s *SlackChannel) Name() string { return string(bus.ChannelSlack) }

func (s *SlackChannel) Start(ctx context.Context) error {
	if s.cfg.BotToken == "" {
		slog.Warn("slack: bot token not configured")
		<-ctx.Done()
		return ctx.Err()
	}

	s.webClient = slackgo.New(s.cfg.BotToken)
	if resp, err := s.webClient.AuthTestContext(ctx); err == nil {
		slog.Info("slack: connected", "bot_user_id", resp.UserID, "team", resp.Team)
	} else {
		slog.Warn("slack: auth test failed", "err", err)
	}

	<-ctx.Done()
	return ctx.Err()
}

func (s *SlackChannel) Send(ctx context.Context, msg bus.OutboundMessage) error {
	if s.webClient == nil {
		return fmt.Errorf("slack: client not running")
	}
	_, ts, err := s.webClient.PostMessageContext(ctx, msg.ChatId(),
		slackgo.MsgOptionText(markdownToSlack(msg.Content()), false))
	if err != nil {
		return fmt.Errorf("slack: post: %w", err)
	}
	s.expire(msg.TTL(), msg.ChatId(), ts, s.Delete)
	return nil
}

// Delete removes a message by its timestamp.
func (s *SlackChannel) Delete(ctx context.Context, chatID, messageID string) error {
	if s.webClient == nil {
		return fmt.Errorf("slack: client not running")
	}
	if _, _, err := s.webClient.DeleteMessageContext(ctx, chatID, messageID); err != nil {
		return fmt.Errorf("slack: delete: %w", err)
	}
	return nil
}

// markdownToSlack rewrites the report markdown into Slack mrkdwn.
func markdownToSlack(text string) string {
	text = reTGBold1.ReplaceAllString(text, "*$1*")
	return reTGLink.ReplaceAllString(text, "<$2|$1>")
}
