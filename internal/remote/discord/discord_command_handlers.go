package discord

import (
	"fmt"
	"strings"
	"time"

	"github.com/hectorgimenez/labbot/internal/bot"
)

const helpText = "Available commands:\n" +
	"`!status` shows what the bot is doing\n" +
	"`!reward` checks research rewards now\n" +
	"`!pause` stops scheduled checks\n" +
	"`!resume` restarts scheduled checks\n" +
	"`!help` shows this message"

// command runs a chat command and returns the reply.
func (b *Bot) command(content string) string {
	prefix := strings.Fields(content)[0]
	switch prefix {
	case "!status":
		return b.handleStatusRequest()
	case "!reward":
		b.supervisor.TriggerNow()
		return fmt.Sprintf("Research reward check requested for '%s'.", b.supervisor.Name())
	case "!pause":
		b.supervisor.Pause()
		return fmt.Sprintf("Supervisor '%s' has been paused.", b.supervisor.Name())
	case "!resume":
		b.supervisor.Resume()
		return fmt.Sprintf("Supervisor '%s' has been resumed.", b.supervisor.Name())
	case "!help":
		return helpText
	default:
		return fmt.Sprintf("Unknown command: `%s`. Type `!help` for available commands.", prefix)
	}
}

func (b *Bot) handleStatusRequest() string {
	stats := b.supervisor.Stats()
	if stats.SupervisorStatus == bot.NotStarted || stats.SupervisorStatus == "" {
		return fmt.Sprintf("Supervisor '%s' is offline.", b.supervisor.Name())
	}

	return formatStatus(b.supervisor.Name(), stats)
}

func formatStatus(name string, stats bot.Stats) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Supervisor '%s' is %s\n", name, stats.SupervisorStatus))
	sb.WriteString(fmt.Sprintf("Checks: %d, rewards handled: %d\n", stats.Checks, stats.Rewards))
	if !stats.LastCheck.IsZero() {
		sb.WriteString(fmt.Sprintf("Last check: %s\n", stats.LastCheck.Format(time.DateTime)))
	}
	if !stats.NextCheck.IsZero() {
		sb.WriteString(fmt.Sprintf("Next check: %s\n", stats.NextCheck.Format(time.DateTime)))
	}
	if stats.LastError != "" {
		sb.WriteString(fmt.Sprintf("Last error: %s\n", stats.LastError))
	}
	return strings.TrimSpace(sb.String())
}
