package discord

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/hectorgimenez/labbot/internal/bot"
	"github.com/hectorgimenez/labbot/internal/config"
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
	discordSession *discordgo.Session
	channelID      string
	supervisor     Controller
	useWebhook     bool
	webhookClient  *webhookClient
	settings       func() config.DiscordCfg
}

func NewBot(cfg config.DiscordCfg, supervisor Controller) (*Bot, error) {
	botInstance := &Bot{
		channelID:  cfg.ChannelID,
		supervisor: supervisor,
		useWebhook: cfg.UseWebhook,
		settings:   func() config.DiscordCfg { return config.Get().Discord },
	}

	if cfg.UseWebhook {
		if cfg.WebhookURL == "" {
			return nil, fmt.Errorf("webhook URL is required when using webhook mode")
		}
		botInstance.webhookClient = newWebhookClient(cfg.WebhookURL)
		return botInstance, nil
	}

	dg, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating Discord session: %w", err)
	}

	botInstance.discordSession = dg

	return botInstance, nil
}

func (b *Bot) Start(ctx context.Context) error {
	if b.useWebhook {
		<-ctx.Done()
		return nil
	}

	b.discordSession.AddHandler(b.onMessageCreated)
	// MESSAGE_CONTENT intent is required to read commands
	b.discordSession.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentMessageContent
	err := b.discordSession.Open()
	if err != nil {
		return fmt.Errorf("error opening connection: %w", err)
	}

	<-ctx.Done()

	return b.discordSession.Close()
}

func (b *Bot) onMessageCreated(s *discordgo.Session, m *discordgo.MessageCreate) {
	// Ignore messages from the bot itself
	if m.Author.ID == s.State.User.ID {
		return
	}

	if !slices.Contains(b.settings().BotAdmins, m.Author.ID) {
		return
	}

	// Only process messages that start with !
	if !strings.HasPrefix(m.Content, "!") {
		return
	}

	if reply := b.command(m.Content); reply != "" {
		s.ChannelMessageSend(m.ChannelID, reply)
	}
}
