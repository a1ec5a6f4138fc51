package telegram

import (
	"context"
	"errors"
	"image"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/hectorgimenez/labbot/internal/bot"
	"github.com/hectorgimenez/labbot/internal/config"
	"github.com/hectorgimenez/labbot/internal/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "123:abc"

type sent struct {
	method string
	text   string
}

// apiServer answers the Bot API methods the bot uses and records messages.
type apiServer struct {
	*httptest.Server
	mu   sync.Mutex
	sent []sent
}

func newAPIServer(t *testing.T) *apiServer {
	s := &apiServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
		w.Header().Set("Content-Type", "application/json")

		switch method {
		case "getMe":
			io.WriteString(w, `{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"lab","username":"labbot"}}`)
			return
		case "sendMessage":
			_ = r.ParseForm()
			s.record(method, r.FormValue("text"))
		case "sendPhoto":
			_ = r.ParseMultipartForm(1 << 20)
			s.record(method, r.FormValue("caption"))
		}
		io.WriteString(w, `{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":42,"type":"private"}}}`)
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *apiServer) record(method, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, sent{method: method, text: text})
}

func (s *apiServer) messages() []sent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sent(nil), s.sent...)
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

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestBot(t *testing.T, srv *apiServer, settings config.TelegramCfg, ctrl Controller) *Bot {
	t.Helper()
	connect := func(token string) (*tgbotapi.BotAPI, error) {
		return tgbotapi.NewBotAPIWithClient(token, srv.URL+"/bot%s/%s", srv.Client())
	}
	settings.Token = testToken
	settings.ChatID = 42
	b, err := newBot(context.Background(), settings, ctrl, discardLogger(), connect)
	require.NoError(t, err)
	b.settings = func() config.TelegramCfg { return settings }
	return b
}

func TestNewBotRetries(t *testing.T) {
	srv := newAPIServer(t)
	attempts := 0
	connect := func(token string) (*tgbotapi.BotAPI, error) {
		attempts++
		if attempts < 2 {
			return nil, errors.New("connection reset by peer")
		}
		return tgbotapi.NewBotAPIWithClient(token, srv.URL+"/bot%s/%s", srv.Client())
	}

	b, err := newBot(context.Background(), config.TelegramCfg{Token: testToken}, &fakeController{}, discardLogger(), connect)
	require.NoError(t, err)
	assert.Equal(t, "labbot", b.bot.Self.UserName)
	assert.Equal(t, 2, attempts)
}

func TestNewBotStopsRetryingOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	connect := func(string) (*tgbotapi.BotAPI, error) {
		return nil, errors.New("connection reset by peer")
	}

	_, err := newBot(ctx, config.TelegramCfg{Token: testToken}, &fakeController{}, discardLogger(), connect)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHandle(t *testing.T) {
	cycleID := uuid.New()
	screenshot := image.NewRGBA(image.Rect(0, 0, 8, 8))

	tests := []struct {
		name     string
		settings config.TelegramCfg
		event    event.Event
		want     []sent
	}{
		{
			name:     "reward with photo",
			settings: config.TelegramCfg{EnableResearchMessages: true},
			event:    event.ResearchReceived(event.WithScreenshot("lab-1", "received", screenshot), cycleID, 2),
			want:     []sent{{method: "sendPhoto", text: "[lab-1] claimed the reward of research slot 2"}},
		},
		{
			name:     "started",
			settings: config.TelegramCfg{EnableResearchMessages: true},
			event:    event.ResearchStarted(event.Text("lab-1", "started"), cycleID, 0),
			want:     []sent{{method: "sendMessage", text: "[lab-1] started research slot 0"}},
		},
		{
			name:  "research messages disabled",
			event: event.ResearchStarted(event.Text("lab-1", "started"), cycleID, 0),
		},
		{
			name:  "failure is always sent",
			event: event.CheckFailed(event.Text("lab-1", "Research reward check failed"), errors.New("device offline")),
			want:  []sent{{method: "sendMessage", text: "[lab-1] Research reward check failed: device offline"}},
		},
		{
			name:  "cycle summary is not sent",
			event: event.ResearchCycleFinished(event.Text("lab-1", "done"), cycleID, 1, -1),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newAPIServer(t)
			b := newTestBot(t, srv, tt.settings, &fakeController{})

			require.NoError(t, b.Handle(context.Background(), tt.event))
			assert.Equal(t, tt.want, srv.messages())
		})
	}
}

func TestCommands(t *testing.T) {
	ctrl := &fakeController{stats: bot.Stats{SupervisorStatus: bot.Idle, Checks: 4, Rewards: 2}}
	b := &Bot{supervisor: ctrl}

	assert.Contains(t, b.command("status"), "lab-1 is Idle\nChecks: 4, rewards handled: 2")
	assert.Equal(t, "Research reward check requested", b.command("/reward"))
	assert.Equal(t, 1, ctrl.triggers)
	b.command("PAUSE")
	assert.True(t, ctrl.paused)
	b.command("resume")
	assert.False(t, ctrl.paused)
	assert.Empty(t, b.command("hello"))
}

func TestCloseTwice(t *testing.T) {
	srv := newAPIServer(t)
	b := newTestBot(t, srv, config.TelegramCfg{}, &fakeController{})

	b.Close()
	assert.NotPanics(t, b.Close)
}
