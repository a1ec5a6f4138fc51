package discord

import (
	"context"
	"errors"
	"image"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hectorgimenez/labbot/internal/bot"
	"github.com/hectorgimenez/labbot/internal/config"
	"github.com/hectorgimenez/labbot/internal/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type webhookRequest struct {
	content string
	payload string
	file    []byte
}

// webhookServer records every multipart post. The first rateLimited requests
// are answered with 429.
type webhookServer struct {
	*httptest.Server
	mu          sync.Mutex
	requests    []webhookRequest
	rateLimited int
}

func newWebhookServer(t *testing.T) *webhookServer {
	ws := &webhookServer{}
	ws.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws.mu.Lock()
		defer ws.mu.Unlock()
		if ws.rateLimited > 0 {
			ws.rateLimited--
			w.Header().Set("Retry-After", "0.25")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}

		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		req := webhookRequest{
			content: r.FormValue("content"),
			payload: r.FormValue("payload_json"),
		}
		if f, _, err := r.FormFile("file"); err == nil {
			req.file, _ = io.ReadAll(f)
			f.Close()
		}
		ws.requests = append(ws.requests, req)
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(ws.Close)
	return ws
}

func (ws *webhookServer) received() []webhookRequest {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return append([]webhookRequest(nil), ws.requests...)
}

type fakeController struct {
	stats    bot.Stats
	triggers int
	paused   bool
}

func (f *fakeController) Name() string     { return "lab-1" }
func (f *fakeController) Stats() bot.Stats { return f.stats }
func (f *fakeController) TriggerNow()      { f.triggers++ }
func (f *fakeController) Pause()           { f.paused = true }
func (f *fakeController) Resume()          { f.paused = false }

func newWebhookBot(t *testing.T, url string, settings config.DiscordCfg) *Bot {
	t.Helper()
	settings.UseWebhook = true
	settings.WebhookURL = url
	b, err := NewBot(settings, &fakeController{})
	require.NoError(t, err)
	b.settings = func() config.DiscordCfg { return settings }
	b.webhookClient.sleep = func(context.Context, time.Duration) error { return nil }
	return b
}

func TestNewBotRequiresWebhookURL(t *testing.T) {
	_, err := NewBot(config.DiscordCfg{UseWebhook: true}, &fakeController{})
	assert.Error(t, err)
}

func TestWebhookSendWithFile(t *testing.T) {
	ws := newWebhookServer(t)
	c := newWebhookClient(ws.URL)

	require.NoError(t, c.Send(context.Background(), "hello", "Screenshot.jpeg", []byte{1, 2, 3}))
	got := ws.received()
	require.Len(t, got, 1)
	assert.Equal(t, "hello", got[0].content)
	assert.Equal(t, []byte{1, 2, 3}, got[0].file)
}

func TestWebhookRetriesRateLimit(t *testing.T) {
	ws := newWebhookServer(t)
	ws.rateLimited = 1
	c := newWebhookClient(ws.URL)
	var waits []time.Duration
	c.sleep = func(_ context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}

	require.NoError(t, c.Send(context.Background(), "hello", "", nil))
	assert.Equal(t, []time.Duration{250 * time.Millisecond}, waits)
	assert.Len(t, ws.received(), 1)
}

func TestWebhookGivesUpAfterRetries(t *testing.T) {
	ws := newWebhookServer(t)
	ws.rateLimited = webhookMaxAttempts
	c := newWebhookClient(ws.URL)
	c.sleep = func(context.Context, time.Duration) error { return nil }

	err := c.Send(context.Background(), "hello", "", nil)
	assert.ErrorContains(t, err, "429")
}

func TestRetryAfter(t *testing.T) {
	assert.Equal(t, webhookDefaultWait, retryAfter(""))
	assert.Equal(t, 1500*time.Millisecond, retryAfter("1.5"))
	assert.Equal(t, webhookMaxRetryAfter, retryAfter("3600"))
}

func TestHandlePublishesResearchEvents(t *testing.T) {
	cycleID := uuid.New()
	screenshot := image.NewRGBA(image.Rect(0, 0, 8, 8))

	tests := []struct {
		name        string
		settings    config.DiscordCfg
		event       event.Event
		wantContent string
		wantFile    bool
		wantEmbed   bool
		wantNothing bool
	}{
		{
			name:        "started",
			settings:    config.DiscordCfg{EnableResearchMessages: true},
			event:       event.ResearchStarted(event.Text("lab-1", "started"), cycleID, 3),
			wantContent: "**[lab-1]** started research slot **3**",
		},
		{
			name:        "research messages disabled",
			settings:    config.DiscordCfg{},
			event:       event.ResearchStarted(event.Text("lab-1", "started"), cycleID, 3),
			wantNothing: true,
		},
		{
			name:        "received with screenshot",
			settings:    config.DiscordCfg{EnableResearchMessages: true},
			event:       event.ResearchReceived(event.WithScreenshot("lab-1", "received", screenshot), cycleID, 1),
			wantContent: "**[lab-1]** claimed the reward of research slot **1**",
			wantFile:    true,
		},
		{
			name:        "received without screenshot",
			settings:    config.DiscordCfg{EnableResearchMessages: true, DisableRewardScreenshot: true},
			event:       event.ResearchReceived(event.WithScreenshot("lab-1", "received", screenshot), cycleID, 1),
			wantContent: "**[lab-1]** claimed the reward of research slot **1**",
		},
		{
			name:      "cycle summary",
			settings:  config.DiscordCfg{EnableCycleMessages: true},
			event:     event.ResearchCycleFinished(event.Text("lab-1", "Research cycle finished"), cycleID, 2, 4),
			wantEmbed: true,
		},
		{
			name:      "check failure",
			settings:  config.DiscordCfg{},
			event:     event.CheckFailed(event.Text("lab-1", "Research reward check failed"), errors.New("device offline")),
			wantEmbed: true,
		},
		{
			name:        "plain text event",
			settings:    config.DiscordCfg{EnableResearchMessages: true},
			event:       event.Text("lab-1", "something"),
			wantNothing: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws := newWebhookServer(t)
			b := newWebhookBot(t, ws.URL, tt.settings)

			require.NoError(t, b.Handle(context.Background(), tt.event))

			got := ws.received()
			if tt.wantNothing {
				assert.Empty(t, got)
				return
			}
			require.Len(t, got, 1)
			if tt.wantEmbed {
				assert.Contains(t, got[0].payload, `"embeds"`)
				return
			}
			assert.Equal(t, tt.wantContent, got[0].content)
			assert.Equal(t, tt.wantFile, len(got[0].file) > 0)
		})
	}
}

func TestCycleEmbed(t *testing.T) {
	id := uuid.New()
	embed := buildCycleEmbed(event.ResearchCycleFinished(event.Text("lab-1", "Research cycle finished"), id, 2, -1))

	assert.Equal(t, "[lab-1] Research cycle finished", embed.Title)
	require.Len(t, embed.Fields, 3)
	assert.Equal(t, "none", embed.Fields[0].Value)
	assert.Equal(t, "2", embed.Fields[1].Value)
	assert.Equal(t, id.String(), embed.Fields[2].Value)
}

func TestCommands(t *testing.T) {
	ctrl := &fakeController{}
	b := &Bot{supervisor: ctrl}

	assert.Equal(t, "Supervisor 'lab-1' is offline.", b.command("!status"))

	ctrl.stats = bot.Stats{SupervisorStatus: bot.Idle, Checks: 3, Rewards: 1, LastError: "device offline"}
	status := b.command("!status")
	assert.Contains(t, status, "is Idle")
	assert.Contains(t, status, "Checks: 3, rewards handled: 1")
	assert.Contains(t, status, "Last error: device offline")

	b.command("!reward")
	assert.Equal(t, 1, ctrl.triggers)

	b.command("!pause")
	assert.True(t, ctrl.paused)
	b.command("!resume now")
	assert.False(t, ctrl.paused)

	assert.Equal(t, helpText, b.command("!help"))
	assert.Contains(t, b.command("!drops"), "Unknown command: `!drops`")
}
