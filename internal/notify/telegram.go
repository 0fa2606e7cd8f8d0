package notify

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"

	"stockwatch/internal/model"
)

// TelegramChannel delivers events to per-target chat IDs through a bot token.
// Send-only: the bot never polls for updates.
type TelegramChannel struct {
	bot *tele.Bot
}

func NewTelegramChannel(token string) (*TelegramChannel, error) {
	if strings.TrimSpace(token) == "" {
		return nil, errors.New("telegram token is empty")
	}
	b, err := tele.NewBot(tele.Settings{
		Token:   token,
		Offline: true,
	})
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	return &TelegramChannel{bot: b}, nil
}

func (c *TelegramChannel) Name() string { return "telegram" }

func (c *TelegramChannel) Recipients(t model.Target, st model.StockState) []string {
	var chats []int64
	switch st {
	case model.StateOutOfStock:
		chats = t.TelegramChatsOnOutOfStock
	case model.StateInStock:
		chats = t.TelegramChatsOnInStock
	}
	out := make([]string, 0, len(chats))
	for _, id := range chats {
		out = append(out, strconv.FormatInt(id, 10))
	}
	return out
}

func (c *TelegramChannel) Send(ctx context.Context, ev Event, recipients []string) error {
	text := Subject(ev) + "\n" + Body(ev)
	var firstErr error
	for _, raw := range recipients {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("bad chat id %q: %w", raw, err)
			}
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := c.bot.Send(&tele.Chat{ID: id}, text); err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("chat %d: %w", id, err)
			}
		}
	}
	return firstErr
}
