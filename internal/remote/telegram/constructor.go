package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/hectorgimenez/labbot/internal/config"
	"github.com/hectorgimenez/labbot/internal/utils"
)

const (
	maxRetries  = 3
	retryBaseMs = 2000
	retryGrowth = 2
)

// NewBot creates a Telegram bot with retry logic for transient network failures.
// The underlying tgbotapi.NewBotAPI call contacts api.telegram.org which can
// occasionally fail with TCP resets; retrying avoids a fatal startup failure.
func NewBot(ctx context.Context, cfg config.TelegramCfg, supervisor Controller, logger *slog.Logger) (*Bot, error) {
	return newBot(ctx, cfg, supervisor, logger, tgbotapi.NewBotAPI)
}

func newBot(ctx context.Context, cfg config.TelegramCfg, supervisor Controller, logger *slog.Logger, connect func(token string) (*tgbotapi.BotAPI, error)) (*Bot, error) {
	var api *tgbotapi.BotAPI
	var err error

	delay := time.Duration(retryBaseMs) * time.Millisecond
	for attempt := 1; attempt <= maxRetries; attempt++ {
		api, err = connect(cfg.Token)
		if err == nil {
			break
		}
		if attempt < maxRetries {
			logger.Warn("Telegram API connection failed, retrying",
				slog.Int("attempt", attempt),
				slog.Int("maxRetries", maxRetries),
				slog.Duration("retryIn", delay),
				slog.Any("error", err),
			)
			if sleepErr := utils.SleepContext(ctx, delay); sleepErr != nil {
				return nil, sleepErr
			}
			delay *= retryGrowth
		}
	}
	if err != nil {
		return nil, fmt.Errorf("after %d attempts: %w", maxRetries, err)
	}

	return &Bot{
		bot:        api,
		chatID:     cfg.ChatID,
		supervisor: supervisor,
		logger:     logger,
		settings:   func() config.TelegramCfg { return config.Get().Telegram },
	}, nil
}
