package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"
)

// markdownV2Reserved is Telegram's MarkdownV2 reserved character set.
// Every occurrence in human-authored text must be backslash-escaped or
// the API rejects the message.
const markdownV2Reserved = "_*[]()~`>#+=|{}.!\\-"

// Telegram pushes notifications through the Bot API using MarkdownV2
// formatting, with the confirm page as an inline link.
type Telegram struct {
	bot    *tele.Bot
	chatID int64
}

func NewTelegram(token, chatID string, client *http.Client) (*Telegram, error) {
	return newTelegram(token, chatID, "", client)
}

// newTelegram takes the API base URL so tests can point the bot at a
// local double; empty means the real Bot API.
func newTelegram(token, chatID, apiURL string, client *http.Client) (*Telegram, error) {
	if token == "" || chatID == "" {
		return nil, errors.New("telegram bot token or chat id is empty")
	}
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("telegram chat id %q is not numeric", chatID)
	}

	// Offline skips the startup getMe round-trip: this bot only ever
	// sends, and a transient Telegram outage at boot must not disable
	// the channel for the whole process lifetime.
	bot, err := tele.NewBot(tele.Settings{
		Token:   token,
		URL:     apiURL,
		Client:  client,
		Offline: true,
	})
	if err != nil {
		return nil, err
	}

	return &Telegram{bot: bot, chatID: id}, nil
}

func (t *Telegram) Name() string { return "telegram" }

func (t *Telegram) Send(ctx context.Context, content, confirmURL string) error {
	jumpURL, err := url.QueryUnescape(confirmURL)
	if err != nil {
		jumpURL = confirmURL
	}

	// The confirmation link is appended after the escaped body so it
	// renders as a tappable inline link, not as body text.
	text := escapeMarkdownV2(unescapeNewlines(content)) +
		"\n\n👉 [点击确认挪车](" + escapeMarkdownV2URL(jumpURL) + ")"

	// telebot surfaces Bot API rejections as errors carrying the API
	// description, already prefixed with the transport name.
	_, err = t.bot.Send(&tele.Chat{ID: t.chatID}, text, &tele.SendOptions{
		ParseMode:             tele.ModeMarkdownV2,
		DisableWebPagePreview: false,
	})
	return err
}

// escapeMarkdownV2 backslash-escapes every reserved character so user
// text cannot break the message markup.
func escapeMarkdownV2(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r < 128 && strings.ContainsRune(markdownV2Reserved, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// escapeMarkdownV2URL escapes only the characters that can terminate
// an inline-link URL.
func escapeMarkdownV2URL(u string) string {
	var b strings.Builder
	b.Grow(len(u))
	for _, r := range u {
		if r == '\\' || r == ')' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
