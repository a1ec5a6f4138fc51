package discord

import (
	"bytes"
	"context"
	"fmt"
	"image/jpeg"

	"github.com/bwmarrin/discordgo"
	"github.com/hectorgimenez/labbot/internal/event"
)

const (
	colorCycle = 0x52bae6
	colorError = 0xce4539
)

func (b *Bot) Handle(ctx context.Context, e event.Event) error {
	if !b.shouldPublish(e) {
		return nil
	}

	switch evt := e.(type) {
	case event.ResearchReceivedEvent:
		message := fmt.Sprintf("**[%s]** claimed the reward of research slot **%d**", evt.Supervisor(), evt.Slot)
		if e.Image() == nil || b.settings().DisableRewardScreenshot {
			return b.sendEventMessage(ctx, message)
		}
		buf := new(bytes.Buffer)
		if err := jpeg.Encode(buf, e.Image(), &jpeg.Options{Quality: 80}); err != nil {
			return err
		}
		return b.sendScreenshot(ctx, message, buf.Bytes())
	case event.ResearchStartedEvent:
		message := fmt.Sprintf("**[%s]** started research slot **%d**", evt.Supervisor(), evt.Slot)
		return b.sendEventMessage(ctx, message)
	case event.ResearchResetEvent:
		message := fmt.Sprintf("**[%s]** %s", evt.Supervisor(), evt.Message())
		return b.sendEventMessage(ctx, message)
	case event.ResearchCycleFinishedEvent:
		return b.sendEmbed(ctx, buildCycleEmbed(evt))
	case event.CheckFailedEvent:
		return b.sendEmbed(ctx, &discordgo.MessageEmbed{
			Title:       fmt.Sprintf("[%s] %s", evt.Supervisor(), evt.Message()),
			Description: evt.Err,
			Color:       colorError,
		})
	case event.SupervisorPausedEvent:
		message := fmt.Sprintf("**[%s]** %s", evt.Supervisor(), evt.Message())
		return b.sendEventMessage(ctx, message)
	default:
		break
	}

	if e.Image() == nil {
		return nil
	}

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, e.Image(), &jpeg.Options{Quality: 80}); err != nil {
		return err
	}

	message := fmt.Sprintf("**[%s]** %s", e.Supervisor(), e.Message())
	return b.sendScreenshot(ctx, message, buf.Bytes())
}

func buildCycleEmbed(evt event.ResearchCycleFinishedEvent) *discordgo.MessageEmbed {
	claimed := "none"
	if evt.Finished >= 0 {
		claimed = fmt.Sprintf("slot %d", evt.Finished)
	}
	return &discordgo.MessageEmbed{
		Title: fmt.Sprintf("[%s] %s", evt.Supervisor(), evt.Message()),
		Color: colorCycle,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Claimed", Value: claimed, Inline: true},
			{Name: "Attempts", Value: fmt.Sprintf("%d", evt.Attempts), Inline: true},
			{Name: "Cycle", Value: evt.CycleID.String()},
		},
		Timestamp: evt.OccurredAt().Format("2006-01-02T15:04:05Z07:00"),
	}
}

func (b *Bot) sendEventMessage(ctx context.Context, message string) error {
	if b.useWebhook {
		return b.webhookClient.Send(ctx, message, "", nil)
	}

	_, err := b.discordSession.ChannelMessageSend(b.channelID, message)
	return err
}

func (b *Bot) sendScreenshot(ctx context.Context, message string, image []byte) error {
	if b.useWebhook {
		return b.webhookClient.Send(ctx, message, "Screenshot.jpeg", image)
	}

	reader := bytes.NewReader(image)
	_, err := b.discordSession.ChannelMessageSendComplex(b.channelID, &discordgo.MessageSend{
		Files:   []*discordgo.File{{Name: "Screenshot.jpeg", ContentType: "image/jpeg", Reader: reader}},
		Content: message,
	})
	return err
}

func (b *Bot) sendEmbed(ctx context.Context, embed *discordgo.MessageEmbed) error {
	if b.useWebhook {
		return b.webhookClient.SendEmbed(ctx, embed)
	}

	_, err := b.discordSession.ChannelMessageSendEmbed(b.channelID, embed)
	return err
}

func (b *Bot) shouldPublish(e event.Event) bool {
	cfg := b.settings()

	switch e.(type) {
	case event.ResearchReceivedEvent, event.ResearchStartedEvent, event.ResearchResetEvent:
		return cfg.EnableResearchMessages
	case event.ResearchCycleFinishedEvent:
		return cfg.EnableCycleMessages
	case event.CheckFailedEvent, event.SupervisorPausedEvent:
		return true
	default:
		break
	}

	return e.Image() != nil
}
