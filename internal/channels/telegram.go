package channels

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/patrickmn/go-cache"

	"github.com/back8/github-scp-079-scp-079-noflood/internal/bus"
	"github.com/back8/github-scp-079-scp-079-noflood/internal/config/channel"
)

// anonymousSender marks a message posted by an anonymous group admin on
// behalf of the group itself.
const anonymousSender = "anonymous"

// TelegramChannel implements the Telegram bot via long polling.
type TelegramChannel struct {
	Base
	cfg    *channel.TelegramConfig
	bot    *tgbotapi.BotAPI
	admins *cache.Cache
}

// NewTelegramChannel creates a TelegramChannel.
func NewTelegramChannel(cfg *channel.TelegramConfig, b bus.Bus) *TelegramChannel {
	ttl := cfg.AdminCacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &TelegramChannel{
		Base:   NewBase(bus.ChannelTelegram, b, cfg.AllowFrom),
		cfg:    cfg,
		admins: cache.New(ttl, 2*ttl),
	}
}

func (t *TelegramChannel) Name() string { return string(bus.ChannelTelegram) }

func (t *TelegramChannel) Start(ctx context.Context) error {
	if t.cfg.Token == "" {
		return fmt.Errorf("telegram: bot token not configured")
	}
	bot, err := t.newBot()
	if err != nil {
		return fmt.Errorf("telegram: create bot: %w", err)
	}
	t.bot = bot
	slog.Info("telegram: connected", "username", bot.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	u.AllowedUpdates = []string{"message"}
	updates := bot.GetUpdatesChan(u)

	for {
		select {
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			t.handleUpdate(update)
		case <-ctx.Done():
			bot.StopReceivingUpdates()
			return ctx.Err()
		}
	}
}

func (t *TelegramChannel) newBot() (*tgbotapi.BotAPI, error) {
	if t.cfg.Proxy == "" {
		return tgbotapi.NewBotAPI(t.cfg.Token)
	}
	proxy, err := url.Parse(t.cfg.Proxy)
	if err != nil {
		return nil, fmt.Errorf("parse proxy: %w", err)
	}
	client := &http.Client{Transport: &http.Transport{Proxy: http.ProxyURL(proxy)}}
	return tgbotapi.NewBotAPIWithClient(t.cfg.Token, tgbotapi.APIEndpoint, client)
}

func (t *TelegramChannel) handleUpdate(update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.Text == "" || msg.Chat == nil {
		return
	}
	if msg.From == nil && msg.SenderChat == nil {
		return
	}

	t.HandleMessage(
		senderIDFor(msg),
		strconv.FormatInt(msg.Chat.ID, 10),
		msg.Text,
		metadataFor(msg, t.bot.Self.UserName),
	)
}

// senderIDFor returns the user id of the author, or anonymousSender when an
// anonymous admin wrote as the group.
func senderIDFor(msg *tgbotapi.Message) string {
	if msg.SenderChat != nil && msg.SenderChat.ID == msg.Chat.ID {
		return anonymousSender
	}
	if msg.From == nil {
		return ""
	}
	return strconv.FormatInt(msg.From.ID, 10)
}

func metadataFor(msg *tgbotapi.Message, botName string) map[string]any {
	md := map[string]any{
		bus.MetaMessageID:   msg.MessageID,
		bus.MetaChatTitle:   msg.Chat.Title,
		bus.MetaIsGroup:     msg.Chat.IsGroup() || msg.Chat.IsSuperGroup(),
		bus.MetaBotUsername: botName,
	}
	if msg.From != nil {
		md[bus.MetaUserID] = msg.From.ID
		md[bus.MetaUsername] = msg.From.UserName
	}
	if msg.Chat.UserName != "" {
		md[bus.MetaChatLink] = "https://t.me/" + msg.Chat.UserName
	}
	return md
}

func (t *TelegramChannel) Send(_ context.Context, msg bus.OutboundMessage) error {
	if t.bot == nil {
		return fmt.Errorf("telegram: bot not running")
	}
	chatID, err := parseChatID(msg.ChatId())
	if err != nil {
		return err
	}
	if msg.Content() == "" {
		return nil
	}

	for _, chunk := range splitMessage(msg.Content(), 4000) {
		m := tgbotapi.NewMessage(chatID, markdownToTelegramHTML(chunk))
		m.ParseMode = tgbotapi.ModeHTML
		m.DisableWebPagePreview = true
		sent, err := t.bot.Send(m)
		if err != nil {
			// Fallback to plain text.
			sent, err = t.bot.Send(tgbotapi.NewMessage(chatID, chunk))
			if err != nil {
				return fmt.Errorf("telegram: send: %w", err)
			}
		}
		t.expire(msg.TTL(), msg.ChatId(), strconv.Itoa(sent.MessageID), t.Delete)
	}
	return nil
}

// Delete removes a message; the bot needs the delete permission in the group.
func (t *TelegramChannel) Delete(_ context.Context, chatID, messageID string) error {
	if t.bot == nil {
		return fmt.Errorf("telegram: bot not running")
	}
	cid, err := parseChatID(chatID)
	if err != nil {
		return err
	}
	mid, err := strconv.Atoi(messageID)
	if err != nil {
		return fmt.Errorf("invalid message_id: %s", messageID)
	}
	if _, err := t.bot.Request(tgbotapi.NewDeleteMessage(cid, mid)); err != nil {
		return fmt.Errorf("telegram: delete %d/%d: %w", cid, mid, err)
	}
	return nil
}

// IsAdmin reports whether senderID is the creator or an administrator of
// chatID. Answers are cached for the configured admin cache TTL.
func (t *TelegramChannel) IsAdmin(_ context.Context, chatID, senderID string) (bool, error) {
	if senderID == anonymousSender {
		return true, nil
	}
	key := chatID + ":" + senderID
	if v, ok := t.admins.Get(key); ok {
		return v.(bool), nil
	}
	if t.bot == nil {
		return false, fmt.Errorf("telegram: bot not running")
	}

	cid, err := parseChatID(chatID)
	if err != nil {
		return false, err
	}
	uid, err := strconv.ParseInt(senderID, 10, 64)
	if err != nil {
		return false, fmt.Errorf("invalid sender: %s", senderID)
	}
	member, err := t.bot.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{ChatID: cid, UserID: uid},
	})
	if err != nil {
		return false, fmt.Errorf("telegram: get chat member: %w", err)
	}

	admin := member.IsCreator() || member.IsAdministrator()
	t.admins.Set(key, admin, cache.DefaultExpiration)
	return admin, nil
}

func parseChatID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid chat_id: %s", s)
	}
	return id, nil
}

// ---------------------------------------------------------------------------
// Markdown → Telegram HTML converter
// ---------------------------------------------------------------------------

var (
	reTGCodeBlock  = regexp.MustCompile("(?s)```[\\w]*\\n?([\\s\\S]*?)```")
	reTGInlineCode = regexp.MustCompile("`([^`]+)`")
	reTGHeader     = regexp.MustCompile(`(?m)^#{1,6}\s+(.+)$`)
	reTGBlockquote = regexp.MustCompile(`(?m)^>\s*(.*)$`)
	reTGLink       = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
	reTGBold1      = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reTGBold2      = regexp.MustCompile(`__(.+?)__`)
	reTGItalic     = regexp.MustCompile(`(?:^|[^a-zA-Z0-9])_([^_]+)_(?:[^a-zA-Z0-9]|$)`)
	reTGStrike     = regexp.MustCompile(`~~(.+?)~~`)
	reTGBullet     = regexp.MustCompile(`(?m)^[-*]\s+`)
)

func markdownToTelegramHTML(text string) string {
	if text == "" {
		return ""
	}

	// 1. Extract code blocks.
	var codeBlocks []string
	text = reTGCodeBlock.ReplaceAllStringFunc(text, func(m string) string {
		groups := reTGCodeBlock.FindStringSubmatch(m)
		codeBlocks = append(codeBlocks, groups[1])
		return fmt.Sprintf("\x00CB%d\x00", len(codeBlocks)-1)
	})

	// 2. Extract inline code.
	var inlineCodes []string
	text = reTGInlineCode.ReplaceAllStringFunc(text, func(m string) string {
		groups := reTGInlineCode.FindStringSubmatch(m)
		inlineCodes = append(inlineCodes, groups[1])
		return fmt.Sprintf("\x00IC%d\x00", len(inlineCodes)-1)
	})

	// 3. Strip headers.
	text = reTGHeader.ReplaceAllString(text, "$1")
	// 4. Strip blockquotes.
	text = reTGBlockquote.ReplaceAllString(text, "$1")

	// 5. HTML escape.
	text = strings.ReplaceAll(text, "&", "&amp;")
	text = strings.ReplaceAll(text, "<", "&lt;")
	text = strings.ReplaceAll(text, ">", "&gt;")

	// 6. Links.
	text = reTGLink.ReplaceAllString(text, `<a href="$2">$1</a>`)
	// 7. Bold.
	text = reTGBold1.ReplaceAllString(text, "<b>$1</b>")
	text = reTGBold2.ReplaceAllString(text, "<b>$1</b>")
	// 8. Italic.
	text = reTGItalic.ReplaceAllString(text, "<i>$1</i>")
	// 9. Strikethrough.
	text = reTGStrike.ReplaceAllString(text, "<s>$1</s>")
	// 10. Bullet lists.
	text = reTGBullet.ReplaceAllString(text, "• ")

	// 11. Restore inline code.
	for i, code := range inlineCodes {
		escaped := htmlEscape(code)
		text = strings.ReplaceAll(text, fmt.Sprintf("\x00IC%d\x00", i),
			"<code>"+escaped+"</code>")
	}
	// 12. Restore code blocks.
	for i, code := range codeBlocks {
		escaped := htmlEscape(code)
		text = strings.ReplaceAll(text, fmt.Sprintf("\x00CB%d\x00", i),
			"<pre><code>"+escaped+"</code></pre>")
	}
	return text
}

func htmlEscape(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}
