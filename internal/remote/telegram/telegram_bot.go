package telegram

import (
	"bytes"
	"context"
	"fmt"
	"image/jpeg"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/hectorgimenez/labbot/internal/bot"
	"github.com/hectorgimenez/labbot/internal/config"
	"github.com/hectorgimenez/labbot/internal/event"
)

// Controller is the part of the supervisor the chat commands drive.
type Controller interface {
	Name() string
	Stats() bot.Stats
	TriggerNow()
	Pause()
	Resume()
}

type Bot struct {
	bot        *tgbotapi.BotAPI
	chatID     int64
	supervisor Controller
	logger     *slog.Logger
	settings   func() config.TelegramCfg
	closeOnce  sync.Once
}

func (b *Bot) Start(ctx context.Context) error {
	offset, err := b.getLatestOffset()
	if err != nil {
		return err
	}

	u := tgbotapi.NewUpdate(offset)
	u.Timeout = 5
	updates := b.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.Close()
			for range updates {
			}
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil || update.Message.Chat == nil || update.Message.Chat.ID != b.chatID {
				continue
			}
			if reply := b.command(update.Message.Text); reply != "" {
				if err := b.sendText(reply); err != nil {
					b.logger.Warn("Telegram reply failed", slog.Any("error", err))
				}
			}
		}
	}
}

// command runs a chat command and returns the reply. Commands may be sent with
// or without a leading slash.
func (b *Bot) command(text string) string {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(text), "/")) {
	case "status":
		stats := b.supervisor.Stats()
		msg := fmt.Sprintf("%s is %s\nChecks: %d, rewards handled: %d", b.supervisor.Name(), stats.SupervisorStatus, stats.Checks, stats.Rewards)
		if !stats.NextCheck.IsZero() {
			msg += "\nNext check: " + stats.NextCheck.Format(time.DateTime)
		}
		if stats.LastError != "" {
			msg += "\nLast error: " + stats.LastError
		}
		return msg
	case "reward":
		b.supervisor.TriggerNow()
		return "Research reward check requested"
	case "pause":
		b.supervisor.Pause()
		return "Research checks paused"
	case "resume":
		b.supervisor.Resume()
		return "Research checks resumed"
	default:
		return ""
	}
}

func (b *Bot) Handle(_ context.Context, e event.Event) error {
	cfg := b.settings()

	switch evt := e.(type) {
	case event.ResearchReceivedEvent:
		if !cfg.EnableResearchMessages {
			return nil
		}
		caption := fmt.Sprintf("[%s] claimed the reward of research slot %d", evt.Supervisor(), evt.Slot)
		if e.Image() == nil {
			return b.sendText(caption)
		}
		buf := new(bytes.Buffer)
		if err := jpeg.Encode(buf, e.Image(), &jpeg.Options{Quality: 80}); err != nil {
			return err
		}
		photo := tgbotapi.NewPhoto(b.chatID, tgbotapi.FileBytes{Name: "Screenshot.jpeg", Bytes: buf.Bytes()})
		photo.Caption = caption
		_, err := b.bot.Send(photo)
		return err
	case event.ResearchStartedEvent:
		if !cfg.EnableResearchMessages {
			return nil
		}
		return b.sendText(fmt.Sprintf("[%s] started research slot %d", evt.Supervisor(), evt.Slot))
	case event.CheckFailedEvent:
		return b.sendText(fmt.Sprintf("[%s] %s: %s", evt.Supervisor(), evt.Message(), evt.Err))
	case event.SupervisorPausedEvent:
		return b.sendText(fmt.Sprintf("[%s] %s", evt.Supervisor(), evt.Message()))
	}

	return nil
}

func (b *Bot) sendText(text string) error {
	_, err := b.bot.Send(tgbotapi.NewMessage(b.chatID, text))
	return err
}

func (b *Bot) getLatestOffset() (int, error) {
	upds, err := b.bot.GetUpdates(tgbotapi.NewUpdate(-1))
	if err != nil {
		return 0, err
	}
	offset := 0
	if len(upds) > 0 {
		offset = upds[0].UpdateID + 1
	}
	return offset, nil
}

func (b *Bot) Close() {
	if b == nil || b.bot == nil {
		return
	}
	b.closeOnce.Do(func() {
		b.bot.StopReceivingUpdates()
		if c, ok := b.bot.Client.(*http.Client); ok && c != nil {
			if tr, ok := c.Transport.(*http.Transport); ok && tr != nil {
				tr.CloseIdleConnections()
			}
		}
	})
}
